package services

import (
	"log"
	"time"

	"github.com/google/uuid"
)

const sessionSweepInterval = 5 * time.Minute

type sessionSweeper interface {
	Sweep(idle time.Duration, now time.Time) []uuid.UUID
}

// SessionReaper destroys in-memory sessions whose browser has been gone for
// longer than the session TTL.
type SessionReaper struct {
	repo     sessionSweeper
	idle     time.Duration
	interval time.Duration
	stopChan chan struct{}
}

func NewSessionReaper(repo sessionSweeper, idle time.Duration) *SessionReaper {
	return &SessionReaper{
		repo:     repo,
		idle:     idle,
		interval: sweepIntervalFor(idle),
		stopChan: make(chan struct{}),
	}
}

func (r *SessionReaper) Start() {
	if r.repo == nil || r.idle <= 0 {
		return
	}

	go r.loop()
	log.Printf("Session reaper started (idle timeout %s)", r.idle)
}

func (r *SessionReaper) Stop() {
	select {
	case <-r.stopChan:
		return
	default:
		close(r.stopChan)
	}
}

func (r *SessionReaper) loop() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopChan:
			return
		case <-ticker.C:
			r.sweep(time.Now().UTC())
		}
	}
}

func (r *SessionReaper) sweep(now time.Time) int {
	expired := r.repo.Sweep(r.idle, now)
	if len(expired) > 0 {
		log.Printf("session reaper: destroyed %d idle sessions", len(expired))
	}
	return len(expired)
}

// sweepIntervalFor keeps short TTLs responsive without polling long ones too
// often.
func sweepIntervalFor(idle time.Duration) time.Duration {
	if idle <= 0 {
		return sessionSweepInterval
	}
	if half := idle / 2; half < sessionSweepInterval {
		if half < time.Second {
			return time.Second
		}
		return half
	}
	return sessionSweepInterval
}
