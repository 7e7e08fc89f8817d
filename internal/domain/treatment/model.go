package treatment

import (
	"time"
)

// DateLayout is the calendar-date wire format for treatment start and end
// dates. Dates carry no time component.
const DateLayout = "2006-01-02"

// RecordStatus partitions the board: a record is either under active
// treatment or discharged to history. Legacy records may arrive with an
// empty status, which counts as active.
type RecordStatus string

const (
	StatusActive  RecordStatus = "active"
	StatusHistory RecordStatus = "history"
)

// MessageType classifies a clinical note.
type MessageType string

const (
	MessageObservation MessageType = "observation"
	MessageQuestion    MessageType = "question"
	MessageAlert       MessageType = "alert"
)

// PatientRecord is one antimicrobial treatment for one patient: who, where,
// which drug, when it started and for how many days. The record owns its
// message thread.
type PatientRecord struct {
	ID        string       `db:"id" json:"id"`
	Name      string       `db:"name" json:"name"`
	Location  string       `db:"location" json:"location"`
	Drug      string       `db:"drug" json:"drug"`
	Start     string       `db:"start_date" json:"start"`
	Duration  int          `db:"duration" json:"duration"`
	Status    RecordStatus `db:"status" json:"status"`
	EndDate   string       `db:"end_date" json:"endDate,omitempty"`
	Messages  []*Message   `db:"-" json:"messages"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt time.Time    `db:"updated_at" json:"updated_at"`
}

// Normalize maps the legacy empty status onto the explicit active variant and
// makes sure the message collection is non-nil.
func (r *PatientRecord) Normalize() {
	if r.Status == "" {
		r.Status = StatusActive
	}
	if r.Messages == nil {
		r.Messages = []*Message{}
	}
}

// IsActive reports whether the record belongs to the active partition.
// Anything not explicitly discharged counts as active.
func (r *PatientRecord) IsActive() bool {
	return r.Status != StatusHistory
}

// Message is a single clinical note in a record's thread. Messages are
// append-only; the edited/editedAt fields are carried for a future edit flow
// but no operation sets them today.
type Message struct {
	ID        string      `db:"id" json:"id"`
	Author    string      `db:"author" json:"author"`
	Role      string      `db:"role" json:"role"`
	Content   string      `db:"content" json:"content"`
	Type      MessageType `db:"type" json:"type"`
	Timestamp time.Time   `db:"created_at" json:"timestamp"`
	Edited    bool        `db:"edited" json:"edited"`
	EditedAt  *time.Time  `db:"edited_at" json:"editedAt,omitempty"`
}

// KnownRoles are the professional categories offered by the composer UI.
// Role is not validated against this list; free-form entries are accepted.
var KnownRoles = []string{
	"Médico(a)",
	"Enfermeiro(a)",
	"Farmacêutico(a)",
}
