package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type contextKey string

const SessionIDKey contextKey = "session_id"

const SessionCookieName = "chat_session"

// SessionCookie binds each browser to a chat session. The cookie holds a
// signed token whose only claim of interest is the session ID; it identifies a
// conversation, it does not authenticate a user.
type SessionCookie struct {
	Secret []byte
	TTL    time.Duration
	Secure bool
}

func NewSessionCookie(secret string, ttl time.Duration, secure bool) *SessionCookie {
	return &SessionCookie{Secret: []byte(secret), TTL: ttl, Secure: secure}
}

// Sign issues a token for sessionID expiring TTL from now.
func (s *SessionCookie) Sign(sessionID uuid.UUID) (string, error) {
	claims := jwt.MapClaims{
		"sid": sessionID.String(),
		"exp": time.Now().Add(s.TTL).Unix(),
		"iat": time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.Secret)
}

// Parse returns the session ID carried by tokenStr.
func (s *SessionCookie) Parse(tokenStr string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.Secret, nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return uuid.Nil, jwt.ErrTokenInvalidClaims
	}

	sid, ok := claims["sid"].(string)
	if !ok {
		return uuid.Nil, jwt.ErrTokenInvalidClaims
	}
	return uuid.Parse(sid)
}

// Middleware attaches the session ID to the request context. A missing,
// tampered or expired cookie starts a new session. The cookie is re-issued on
// every request so an active browser never loses its session.
func (s *SessionCookie) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := uuid.Nil
		if c, err := r.Cookie(SessionCookieName); err == nil {
			if id, err := s.Parse(c.Value); err == nil {
				sessionID = id
			}
		}
		if sessionID == uuid.Nil {
			sessionID = uuid.New()
		}

		token, err := s.Sign(sessionID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "SESSION_ERROR", "Failed to issue session", r)
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookieName,
			Value:    token,
			Path:     "/",
			MaxAge:   int(s.TTL.Seconds()),
			HttpOnly: true,
			Secure:   s.Secure,
			SameSite: http.SameSiteLaxMode,
		})

		ctx := context.WithValue(r.Context(), SessionIDKey, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetSessionID extracts the session ID from request context
func GetSessionID(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(SessionIDKey).(uuid.UUID)
	return id
}
