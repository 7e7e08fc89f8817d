package treatment

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

// NewRepoPG returns a Repository backed by PostgreSQL.
func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const patientCols = `id, name, location, drug, start_date, duration, status, end_date, created_at, updated_at`

func scanPatient(row pgx.Row) (*PatientRecord, error) {
	var rec PatientRecord
	var start time.Time
	var end *time.Time
	err := row.Scan(&rec.ID, &rec.Name, &rec.Location, &rec.Drug, &start,
		&rec.Duration, &rec.Status, &end, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	rec.Start = start.Format(DateLayout)
	if end != nil {
		rec.EndDate = end.Format(DateLayout)
	}
	return &rec, nil
}

// dateArg converts a wire date string to a nullable DATE parameter.
func dateArg(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func (r *repoPG) Create(ctx context.Context, rec *PatientRecord) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO patient (id, name, location, drug, start_date, duration, status, end_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		rec.ID, rec.Name, rec.Location, rec.Drug, rec.Start,
		rec.Duration, rec.Status, dateArg(rec.EndDate))
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id string) (*PatientRecord, error) {
	rec, err := scanPatient(r.pool.QueryRow(ctx,
		`SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}

	msgs, err := r.messagesFor(ctx, id)
	if err != nil {
		return nil, err
	}
	rec.Messages = msgs
	return rec, nil
}

func (r *repoPG) Update(ctx context.Context, rec *PatientRecord) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE patient SET name=$2, location=$3, drug=$4, start_date=$5,
			duration=$6, status=$7, end_date=$8, updated_at=NOW()
		WHERE id = $1`,
		rec.ID, rec.Name, rec.Location, rec.Drug, rec.Start,
		rec.Duration, rec.Status, dateArg(rec.EndDate))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM patient WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context) ([]*PatientRecord, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+patientCols+` FROM patient ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*PatientRecord
	byID := make(map[string]*PatientRecord)
	for rows.Next() {
		rec, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		rec.Messages = []*Message{}
		records = append(records, rec)
		byID[rec.ID] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	msgRows, err := r.pool.Query(ctx, `
		SELECT patient_id, id, author, role, content, type, created_at, edited, edited_at
		FROM patient_message ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer msgRows.Close()

	for msgRows.Next() {
		var patientID string
		var msg Message
		if err := msgRows.Scan(&patientID, &msg.ID, &msg.Author, &msg.Role,
			&msg.Content, &msg.Type, &msg.Timestamp, &msg.Edited, &msg.EditedAt); err != nil {
			return nil, err
		}
		if rec, ok := byID[patientID]; ok {
			rec.Messages = append(rec.Messages, &msg)
		}
	}
	if err := msgRows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

func (r *repoPG) AddMessage(ctx context.Context, patientID string, msg *Message) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO patient_message (id, patient_id, author, role, content, type, created_at, edited, edited_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		msg.ID, patientID, msg.Author, msg.Role, msg.Content, msg.Type,
		msg.Timestamp, msg.Edited, msg.EditedAt)
	return err
}

func (r *repoPG) messagesFor(ctx context.Context, patientID string) ([]*Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, author, role, content, type, created_at, edited, edited_at
		FROM patient_message WHERE patient_id = $1 ORDER BY created_at`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs := []*Message{}
	for rows.Next() {
		var msg Message
		if err := rows.Scan(&msg.ID, &msg.Author, &msg.Role, &msg.Content,
			&msg.Type, &msg.Timestamp, &msg.Edited, &msg.EditedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return msgs, nil
}
