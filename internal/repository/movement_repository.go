package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexmabud/flowdash-backend/internal/apperrors"
	"github.com/alexmabud/flowdash-backend/internal/model"
	"github.com/alexmabud/flowdash-backend/internal/uid"
)

const movementColumns = `
	id, date, account, direction, amount, source, note,
	reference_table, reference_id, transaction_uid, user, created_at
`

// MovementRepository provides data access methods for the movement_log table.
// It owns the transaction-uid dedupe that makes every cash-affecting
// operation idempotent.
type MovementRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewMovementRepository creates a new MovementRepository with the provided database connection.
func NewMovementRepository(db *sql.DB) *MovementRepository {
	return &MovementRepository{db: db}
}

// WithTx returns a new MovementRepository scoped to the provided transaction.
func (r *MovementRepository) WithTx(tx *sql.Tx) *MovementRepository {
	return &MovementRepository{
		db: r.db,
		tx: tx,
	}
}

// getQuerier returns the active transaction if one is set, otherwise the database connection.
func (r *MovementRepository) getQuerier() interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	Exec(query string, args ...any) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// Post appends one movement row. A missing TransactionUID is derived from the
// row's normalized business tuple, so identical resubmissions collapse onto
// the first row: when the uid already exists no new row is written and the
// existing row's id is returned with duplicate = true.
//
// A row that references nothing references itself: after insert,
// reference_table/reference_id are back-filled to point at the new row.
func (r *MovementRepository) Post(m *model.MovementLogEntry) (int64, bool, error) {
	if m.TransactionUID == "" {
		m.TransactionUID = uid.Movement(
			FormatDate(m.Date),
			m.Account,
			string(m.Direction),
			m.Amount,
			m.Source,
			m.ReferenceTable,
			refIDPart(m.ReferenceID),
			m.Note,
		)
	}

	if existingID, found, err := r.FindByUID(m.TransactionUID); err != nil {
		return 0, false, err
	} else if found {
		m.ID = existingID
		return existingID, true, nil
	}

	query := `
		INSERT INTO movement_log (
			date, account, direction, amount, source, note,
			reference_table, reference_id, transaction_uid, user
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.getQuerier().Exec(query,
		FormatDate(m.Date),
		m.Account,
		string(m.Direction),
		m.Amount,
		m.Source,
		nullStr(m.Note),
		nullStr(m.ReferenceTable),
		nullMovementRef(m.ReferenceID),
		m.TransactionUID,
		nullStr(m.User),
	)
	if err != nil {
		return 0, false, fmt.Errorf("failed to insert movement: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("failed to read movement id: %w", err)
	}

	if m.ReferenceTable == "" {
		if _, err := r.getQuerier().Exec(
			"UPDATE movement_log SET reference_table = 'movement_log', reference_id = ? WHERE id = ?",
			id, id,
		); err != nil {
			return 0, false, fmt.Errorf("failed to back-fill movement reference: %w", err)
		}
		m.ReferenceTable = "movement_log"
		m.ReferenceID = id
	}

	m.ID = id
	return id, false, nil
}

// FindByUID looks up a movement id by transaction uid.
func (r *MovementRepository) FindByUID(transactionUID string) (int64, bool, error) {
	var id int64
	err := r.getQuerier().QueryRow(
		"SELECT id FROM movement_log WHERE transaction_uid = ?", transactionUID,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to query movement uid: %w", err)
	}
	return id, true, nil
}

// GetByID retrieves a single movement row.
func (r *MovementRepository) GetByID(id int64) (model.MovementLogEntry, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM movement_log
		WHERE id = ?
	`

	m, err := scanMovement(r.getQuerier().QueryRow(query, id))
	if err == sql.ErrNoRows {
		return model.MovementLogEntry{}, apperrors.ErrMovementNotFound
	}
	if err != nil {
		return model.MovementLogEntry{}, fmt.Errorf("failed to query movement: %w", err)
	}
	return m, nil
}

// List retrieves movement rows within the inclusive date range, optionally
// narrowed to one account, newest first with insertion order breaking ties.
func (r *MovementRepository) List(startDate, endDate time.Time, account string) ([]model.MovementLogEntry, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM movement_log
		WHERE date >= ? AND date <= ?
	`
	args := []any{FormatDate(startDate), FormatDate(endDate)}

	if account != "" {
		query += " AND account = ?"
		args = append(args, account)
	}

	query += " ORDER BY date DESC, id DESC"

	rows, err := r.getQuerier().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query movement_log table: %w", err)
	}
	defer rows.Close()

	movements := []model.MovementLogEntry{}
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan movement_log results: %w", err)
		}
		movements = append(movements, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating movement_log table: %w", err)
	}
	return movements, nil
}

func scanMovement(row interface{ Scan(dest ...any) error }) (model.MovementLogEntry, error) {
	var m model.MovementLogEntry
	var date, direction string
	var note, referenceTable, transactionUID, user, createdAt sql.NullString
	var referenceID sql.NullInt64

	err := row.Scan(
		&m.ID,
		&date,
		&m.Account,
		&direction,
		&m.Amount,
		&m.Source,
		&note,
		&referenceTable,
		&referenceID,
		&transactionUID,
		&user,
		&createdAt,
	)
	if err != nil {
		return model.MovementLogEntry{}, err
	}

	m.Direction = model.MovementDirection(direction)
	m.Note = note.String
	m.ReferenceTable = referenceTable.String
	m.ReferenceID = referenceID.Int64
	m.TransactionUID = transactionUID.String
	m.User = user.String

	if m.Date, err = ParseTime(date); err != nil {
		return model.MovementLogEntry{}, err
	}
	if createdAt.Valid {
		if m.CreatedAt, err = ParseTime(createdAt.String); err != nil {
			return model.MovementLogEntry{}, err
		}
	}

	return m, nil
}

func refIDPart(id int64) string {
	if id == 0 {
		return ""
	}
	return fmt.Sprintf("%d", id)
}

func nullMovementRef(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}
