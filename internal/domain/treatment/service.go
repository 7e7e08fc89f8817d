package treatment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Board is the status-partitioned view of every record in the store.
type Board struct {
	Active    []*PatientRecord `json:"active"`
	Completed []*PatientRecord `json:"completed"`
}

// Service implements the treatment operations over a Repository. Every
// mutation returns the updated record so callers can refresh incrementally
// instead of reloading the whole board.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) today() string {
	return s.now().Format(DateLayout)
}

// Create validates and stores a new record. A missing id gets a fresh uuid;
// a missing status defaults to active. The end-date invariant is enforced:
// active records carry none, history records get today's date when the
// caller supplied a status without one.
func (s *Service) Create(ctx context.Context, rec *PatientRecord) error {
	if strings.TrimSpace(rec.Name) == "" {
		return validationErr("name", MissingRequiredField)
	}
	if strings.TrimSpace(rec.Location) == "" {
		return validationErr("location", MissingRequiredField)
	}
	if strings.TrimSpace(rec.Drug) == "" {
		return validationErr("drug", MissingRequiredField)
	}
	if rec.Start == "" {
		return validationErr("start", MissingRequiredField)
	}
	if _, err := time.ParseInLocation(DateLayout, rec.Start, time.UTC); err != nil {
		return fmt.Errorf("start date %q: %w", rec.Start, ErrInvalidArgument)
	}
	if rec.Duration <= 0 {
		return fmt.Errorf("duration must be positive: %w", ErrInvalidArgument)
	}
	switch rec.Status {
	case "", StatusActive, StatusHistory:
	default:
		return fmt.Errorf("status %q: %w", rec.Status, ErrInvalidArgument)
	}

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	rec.Normalize()
	s.enforceEndDate(rec)

	return s.repo.Create(ctx, rec)
}

// Get fetches one record by id.
func (s *Service) Get(ctx context.Context, id string) (*PatientRecord, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	rec.Normalize()
	return rec, nil
}

// ListBoard returns every record partitioned by status, each partition in
// its display order.
func (s *Service) ListBoard(ctx context.Context) (*Board, error) {
	records, err := s.list(ctx)
	if err != nil {
		return nil, err
	}
	return &Board{
		Active:    Partition(records, TabActive, ""),
		Completed: Partition(records, TabHistory, ""),
	}, nil
}

// View returns the filtered, ordered records for one tab.
func (s *Service) View(ctx context.Context, tab Tab, search string) ([]*PatientRecord, error) {
	records, err := s.list(ctx)
	if err != nil {
		return nil, err
	}
	return Partition(records, tab, search), nil
}

func (s *Service) list(ctx context.Context) ([]*PatientRecord, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		rec.Normalize()
	}
	return records, nil
}

// UpdateRequest carries a partial update; nil fields are left unchanged.
type UpdateRequest struct {
	Name     *string       `json:"name"`
	Location *string       `json:"location"`
	Drug     *string       `json:"drug"`
	Start    *string       `json:"start"`
	Duration *int          `json:"duration"`
	Status   *RecordStatus `json:"status"`
	EndDate  *string       `json:"endDate"`
}

// Update merges the non-nil fields of req into the stored record. Whatever
// the combination, the result keeps the invariant that an end date exists
// exactly when the record is in history: moving to history without an end
// date stamps today, moving to active clears it.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*PatientRecord, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, validationErr("name", MissingRequiredField)
		}
		rec.Name = *req.Name
	}
	if req.Location != nil {
		if strings.TrimSpace(*req.Location) == "" {
			return nil, validationErr("location", MissingRequiredField)
		}
		rec.Location = *req.Location
	}
	if req.Drug != nil {
		if strings.TrimSpace(*req.Drug) == "" {
			return nil, validationErr("drug", MissingRequiredField)
		}
		rec.Drug = *req.Drug
	}
	if req.Start != nil {
		if _, err := time.ParseInLocation(DateLayout, *req.Start, time.UTC); err != nil {
			return nil, fmt.Errorf("start date %q: %w", *req.Start, ErrInvalidArgument)
		}
		rec.Start = *req.Start
	}
	if req.Duration != nil {
		if *req.Duration <= 0 {
			return nil, fmt.Errorf("duration must be positive: %w", ErrInvalidArgument)
		}
		rec.Duration = *req.Duration
	}
	if req.Status != nil {
		switch *req.Status {
		case StatusActive, StatusHistory:
			rec.Status = *req.Status
		default:
			return nil, fmt.Errorf("status %q: %w", *req.Status, ErrInvalidArgument)
		}
	}
	if req.EndDate != nil {
		if *req.EndDate != "" {
			if _, err := time.ParseInLocation(DateLayout, *req.EndDate, time.UTC); err != nil {
				return nil, fmt.Errorf("end date %q: %w", *req.EndDate, ErrInvalidArgument)
			}
		}
		rec.EndDate = *req.EndDate
	}

	s.enforceEndDate(rec)

	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Discharge moves an active record to history, stamping today as the end of
// treatment. Messages stay with the record.
func (s *Service) Discharge(ctx context.Context, id string) (*PatientRecord, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rec.IsActive() {
		return nil, fmt.Errorf("discharge requires an active record: %w", ErrInvalidTransition)
	}

	rec.Status = StatusHistory
	rec.EndDate = s.today()

	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Restore moves a discharged record back to the active partition, clearing
// its end date.
func (s *Service) Restore(ctx context.Context, id string) (*PatientRecord, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Status != StatusHistory {
		return nil, fmt.Errorf("restore requires a discharged record: %w", ErrInvalidTransition)
	}

	rec.Status = StatusActive
	rec.EndDate = ""

	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Delete permanently removes a record. Only discharged records may be
// deleted; an active record must go through discharge first.
func (s *Service) Delete(ctx context.Context, id string) error {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if rec.Status != StatusHistory {
		return fmt.Errorf("delete requires a discharged record: %w", ErrInvalidTransition)
	}
	return s.repo.Delete(ctx, id)
}

// Relocate moves an active patient to a new bed or ward. Only the location
// changes.
func (s *Service) Relocate(ctx context.Context, id, newLocation string) (*PatientRecord, error) {
	if strings.TrimSpace(newLocation) == "" {
		return nil, validationErr("location", MissingRequiredField)
	}

	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rec.IsActive() {
		return nil, fmt.Errorf("relocate requires an active record: %w", ErrInvalidTransition)
	}

	rec.Location = newLocation

	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Extend lengthens an active treatment by extraDays. Non-positive values are
// rejected; shortening a treatment goes through the regular update path
// instead.
func (s *Service) Extend(ctx context.Context, id string, extraDays int) (*PatientRecord, error) {
	if extraDays <= 0 {
		return nil, fmt.Errorf("extension must be positive, got %d: %w", extraDays, ErrInvalidArgument)
	}

	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rec.IsActive() {
		return nil, fmt.Errorf("extend requires an active record: %w", ErrInvalidTransition)
	}

	rec.Duration += extraDays

	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// AddMessage validates the draft, appends it to the record's thread and
// persists it. Works in both partitions: notes may still be added after
// discharge.
func (s *Service) AddMessage(ctx context.Context, id string, draft MessageDraft) (*Message, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	msg, err := AppendMessage(rec, draft, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.repo.AddMessage(ctx, rec.ID, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// Messages returns a record's thread newest first.
func (s *Service) Messages(ctx context.Context, id string) ([]*Message, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return ListMessages(rec), nil
}

// Status evaluates a record's treatment status as of now.
func (s *Service) Status(rec *PatientRecord) (StatusInfo, error) {
	return ComputeStatus(rec, s.now())
}

func (s *Service) enforceEndDate(rec *PatientRecord) {
	if rec.Status == StatusHistory {
		if rec.EndDate == "" {
			rec.EndDate = s.today()
		}
	} else {
		rec.EndDate = ""
	}
}
