package treatment

import (
	"errors"
	"testing"
	"time"
)

func draft(author, content string) MessageDraft {
	return MessageDraft{Author: author, Role: "Médico(a)", Content: content, Type: MessageObservation}
}

func assertValidation(t *testing.T, err error, reason ValidationReason) {
	t.Helper()
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if vErr.Reason != reason {
		t.Errorf("expected reason %s, got %s", reason, vErr.Reason)
	}
}

func TestAppendMessage_Success(t *testing.T) {
	rec := &PatientRecord{ID: "1"}
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

	msg, err := AppendMessage(rec, draft("Dr. Carlos Mendes", "Paciente respondeu bem ao tratamento."), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if msg.ID == "" {
		t.Error("expected a fresh message id")
	}
	if !msg.Timestamp.Equal(now) {
		t.Errorf("expected timestamp %v, got %v", now, msg.Timestamp)
	}
	if msg.Edited {
		t.Error("new message must not be marked edited")
	}
	if msg.EditedAt != nil {
		t.Error("new message must not carry editedAt")
	}
	if len(rec.Messages) != 1 {
		t.Fatalf("expected message appended to thread, got %d", len(rec.Messages))
	}
	if rec.Messages[0] != msg {
		t.Error("returned message is not the appended one")
	}
}

func TestAppendMessage_ValidationOrder(t *testing.T) {
	rec := &PatientRecord{ID: "1"}
	now := time.Now()

	// Author missing wins even when content is also bad.
	_, err := AppendMessage(rec, MessageDraft{Author: "   ", Content: ""}, now)
	assertValidation(t, err, MissingAuthor)

	_, err = AppendMessage(rec, MessageDraft{Author: "Enfª Ana", Content: "   "}, now)
	assertValidation(t, err, MissingContent)

	_, err = AppendMessage(rec, MessageDraft{Author: "Enfª Ana", Content: "hi"}, now)
	assertValidation(t, err, ContentTooShort)

	if len(rec.Messages) != 0 {
		t.Errorf("rejected drafts must not be appended, thread has %d", len(rec.Messages))
	}
}

func TestAppendMessage_ContentLengthBoundary(t *testing.T) {
	rec := &PatientRecord{ID: "1"}
	now := time.Now()

	_, err := AppendMessage(rec, draft("Dr. Lima", "hi"), now)
	assertValidation(t, err, ContentTooShort)

	if _, err := AppendMessage(rec, draft("Dr. Lima", "ok!"), now); err != nil {
		t.Errorf("expected 3-char content to pass, got %v", err)
	}

	// Trimming applies before the length check.
	_, err = AppendMessage(rec, draft("Dr. Lima", "  ab  "), now)
	assertValidation(t, err, ContentTooShort)
}

func TestAppendMessage_DefaultsUnknownType(t *testing.T) {
	rec := &PatientRecord{ID: "1"}

	msg, err := AppendMessage(rec, MessageDraft{Author: "Farm. Juliana", Content: "Nível sérico alto.", Type: "nonsense"}, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Type != MessageObservation {
		t.Errorf("expected fallback to observation, got %s", msg.Type)
	}
}

func TestAppendMessage_CreatesThreadWhenAbsent(t *testing.T) {
	rec := &PatientRecord{ID: "1", Messages: nil}

	if _, err := AppendMessage(rec, draft("Dr. Lima", "Iniciado esquema."), time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.Messages) != 1 {
		t.Fatalf("expected thread created with one message, got %d", len(rec.Messages))
	}
}

func TestListMessages_NewestFirstStable(t *testing.T) {
	rec := &PatientRecord{ID: "1"}
	t0 := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)
	t1 := t0.Add(2 * time.Hour)

	a, _ := AppendMessage(rec, draft("A", "primeira nota"), t0)
	b, _ := AppendMessage(rec, draft("B", "segunda nota"), t1)
	// Two messages sharing an instant keep insertion order.
	c1, _ := AppendMessage(rec, draft("C", "terceira nota"), t1)

	got := ListMessages(rec)
	if len(got) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(got))
	}
	if got[0] != b || got[1] != c1 || got[2] != a {
		t.Errorf("unexpected order: %s, %s, %s", got[0].Author, got[1].Author, got[2].Author)
	}

	// The record's own collection keeps insertion order.
	if rec.Messages[0] != a {
		t.Error("ListMessages must not reorder the record's thread")
	}
}
