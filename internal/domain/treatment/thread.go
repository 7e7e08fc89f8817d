package treatment

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MinContentLength is the minimum trimmed length of a clinical note.
const MinContentLength = 3

// MessageDraft is the caller-supplied content of a new clinical note.
type MessageDraft struct {
	Author  string      `json:"author"`
	Role    string      `json:"role"`
	Content string      `json:"content"`
	Type    MessageType `json:"type"`
}

// AppendMessage validates a draft and appends it to the record's thread.
// Checks run in order and the first failure wins: author present, content
// present, content at least MinContentLength characters after trimming.
// An unrecognized or empty type falls back to observation.
//
// Appending is the only message mutation; there is no update or delete.
func AppendMessage(rec *PatientRecord, draft MessageDraft, now time.Time) (*Message, error) {
	author := strings.TrimSpace(draft.Author)
	if author == "" {
		return nil, validationErr("author", MissingAuthor)
	}
	content := strings.TrimSpace(draft.Content)
	if content == "" {
		return nil, validationErr("content", MissingContent)
	}
	if utf8.RuneCountInString(content) < MinContentLength {
		return nil, validationErr("content", ContentTooShort)
	}

	msgType := draft.Type
	switch msgType {
	case MessageObservation, MessageQuestion, MessageAlert:
	default:
		msgType = MessageObservation
	}

	msg := &Message{
		ID:        uuid.New().String(),
		Author:    author,
		Role:      strings.TrimSpace(draft.Role),
		Content:   content,
		Type:      msgType,
		Timestamp: now,
		Edited:    false,
		EditedAt:  nil,
	}

	rec.Messages = append(rec.Messages, msg)
	return msg, nil
}

// ListMessages returns the record's thread newest first. Messages sharing a
// timestamp keep their insertion order. The record is not mutated.
func ListMessages(rec *PatientRecord) []*Message {
	out := make([]*Message, len(rec.Messages))
	copy(out, rec.Messages)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}
