package treatment

import (
	"context"
)

// Repository persists patient records and their message threads. GetByID and
// List return records with messages attached. Implementations return
// ErrNotFound for missing identifiers.
type Repository interface {
	Create(ctx context.Context, rec *PatientRecord) error
	GetByID(ctx context.Context, id string) (*PatientRecord, error)
	Update(ctx context.Context, rec *PatientRecord) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*PatientRecord, error)
	AddMessage(ctx context.Context, patientID string, msg *Message) error
}
