package models

import (
	"testing"

	"github.com/google/uuid"
)

func TestSession_AppendKeepsInsertionOrder(t *testing.T) {
	s := NewSession(uuid.New())

	s.AppendUser("first")
	s.AppendBot("second")
	s.AppendUser("third")
	s.AppendBot("fourth")

	got := s.Render()
	want := []struct {
		role    Role
		content string
	}{
		{RoleUser, "first"},
		{RoleBot, "second"},
		{RoleUser, "third"},
		{RoleBot, "fourth"},
	}

	if len(got) != len(want) {
		t.Fatalf("expected %d messages, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i].Role != w.role || got[i].Content != w.content {
			t.Errorf("message %d: expected %s/%q, got %s/%q", i, w.role, w.content, got[i].Role, got[i].Content)
		}
	}
}

func TestSession_AppendDoesNotDeduplicate(t *testing.T) {
	s := NewSession(uuid.New())

	s.AppendUser("same")
	s.AppendUser("same")

	if len(s.Messages) != 2 {
		t.Fatalf("expected duplicate messages to be kept, got %d", len(s.Messages))
	}
	if s.Messages[0].ID == s.Messages[1].ID {
		t.Fatalf("expected distinct message IDs")
	}
}

func TestSession_ClearIsIdempotent(t *testing.T) {
	tests := []struct {
		name  string
		count int
	}{
		{"empty", 0},
		{"one turn", 2},
		{"many turns", 50},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := NewSession(uuid.New())
			for i := 0; i < tc.count; i++ {
				s.AppendUser("q")
			}

			s.Clear()
			if len(s.Render()) != 0 {
				t.Fatalf("expected empty session after clear")
			}

			s.Clear()
			if len(s.Render()) != 0 {
				t.Fatalf("expected empty session after second clear")
			}
		})
	}
}

func TestSession_RenderIsACopy(t *testing.T) {
	s := NewSession(uuid.New())
	s.AppendUser("hello")

	rendered := s.Render()
	rendered[0].Content = "changed"
	_ = append(rendered, Message{Content: "extra"})

	if s.Messages[0].Content != "hello" {
		t.Fatalf("render must not expose the underlying slice")
	}
	if len(s.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(s.Messages))
	}
}

func TestSession_Unanswered(t *testing.T) {
	s := NewSession(uuid.New())
	if s.Unanswered() {
		t.Fatalf("empty session has no dangling user message")
	}

	s.AppendUser("hello")
	if !s.Unanswered() {
		t.Fatalf("expected trailing user message to be unanswered")
	}

	s.AppendBot("hi")
	if s.Unanswered() {
		t.Fatalf("expected answered session")
	}
}

func TestSession_CloneIsIndependent(t *testing.T) {
	s := NewSession(uuid.New())
	s.AppendUser("hello")

	c := s.Clone()
	c.AppendBot("hi")
	c.SetPending("draft")

	if len(s.Messages) != 1 {
		t.Fatalf("clone append leaked into original")
	}
	if s.Pending != "" {
		t.Fatalf("clone pending leaked into original")
	}
}
