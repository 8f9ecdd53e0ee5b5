package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alexmabud/flowdash-backend/internal/apperrors"
	"github.com/alexmabud/flowdash-backend/internal/model"
	"github.com/alexmabud/flowdash-backend/internal/money"
)

const eventColumns = `
	id, obligation_id, obligation_type, event_category, event_date, due_date,
	competence, installment_number, installment_count, amount, principal_paid,
	interest_paid, penalty_paid, discount_applied, gross_paid, status,
	payment_date, creditor, description, payment_method, source, user,
	external_reference_id, created_at
`

// ObligationRepository provides data access methods for the obligation_event
// table: appending events, aggregating invoice charges, and recomputing the
// derived settlement statuses.
type ObligationRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewObligationRepository creates a new ObligationRepository with the provided database connection.
func NewObligationRepository(db *sql.DB) *ObligationRepository {
	return &ObligationRepository{db: db}
}

// WithTx returns a new ObligationRepository scoped to the provided transaction.
func (r *ObligationRepository) WithTx(tx *sql.Tx) *ObligationRepository {
	return &ObligationRepository{
		db: r.db,
		tx: tx,
	}
}

// getQuerier returns the active transaction if one is set, otherwise the database connection.
func (r *ObligationRepository) getQuerier() interface {
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

// InsertEvent appends one event row. When the event's ObligationID is zero
// the new row becomes its own obligation head: obligation_id is back-filled
// with the generated id, and the caller gets that id to thread through any
// follow-up rows of the same debt.
func (r *ObligationRepository) InsertEvent(e *model.ObligationEvent) (int64, error) {
	query := `
		INSERT INTO obligation_event (
			obligation_id, obligation_type, event_category, event_date, due_date,
			competence, installment_number, installment_count, amount,
			principal_paid, interest_paid, penalty_paid, discount_applied,
			gross_paid, status, payment_date, creditor, description,
			payment_method, source, user, external_reference_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	status := e.Status
	if status == "" {
		status = model.DeriveStatus(e.Amount, e.PrincipalPaid)
	}

	result, err := r.getQuerier().Exec(query,
		e.ObligationID,
		string(e.ObligationType),
		string(e.EventCategory),
		FormatDate(e.EventDate),
		nullDate(e.DueDate),
		nullStr(e.Competence),
		nullInt(e.InstallmentNumber),
		nullInt(e.InstallmentCount),
		e.Amount,
		e.PrincipalPaid,
		e.InterestPaid,
		e.PenaltyPaid,
		e.DiscountApplied,
		e.GrossPaid,
		string(status),
		nullDate(e.PaymentDate),
		nullStr(e.Creditor),
		nullStr(e.Description),
		nullStr(e.PaymentMethod),
		nullStr(e.Source),
		nullStr(e.User),
		nullInt64(e.ExternalReferenceID),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert obligation event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read obligation event id: %w", err)
	}

	if e.ObligationID == 0 {
		if _, err := r.getQuerier().Exec(
			"UPDATE obligation_event SET obligation_id = ? WHERE id = ?", id, id,
		); err != nil {
			return 0, fmt.Errorf("failed to back-fill obligation id: %w", err)
		}
		e.ObligationID = id
	}

	e.ID = id
	e.Status = status
	return id, nil
}

// CreateCharge appends a CHARGE row. Credit-card invoice charges for a
// (card, competence) pair that already has an open invoice are merged into
// the existing row instead; the returned bool reports whether that happened.
func (r *ObligationRepository) CreateCharge(e *model.ObligationEvent) (int64, bool, error) {
	if !money.IsPositive(e.Amount) {
		return 0, false, apperrors.ErrInvalidAmount
	}
	e.Amount = money.Round2(e.Amount)

	if e.ObligationType == model.ObligationInvoice && e.Competence != "" {
		existing, err := r.getInvoiceCharge(e.Creditor, e.Competence)
		if err != nil && err != apperrors.ErrChargeNotFound {
			return 0, false, err
		}
		if err == nil {
			newAmount := money.Round2(existing.Amount.Add(e.Amount))
			status := model.DeriveStatus(newAmount, existing.PrincipalPaid)
			if _, err := r.getQuerier().Exec(
				"UPDATE obligation_event SET amount = ?, status = ? WHERE id = ?",
				newAmount, string(status), existing.ID,
			); err != nil {
				return 0, false, fmt.Errorf("failed to aggregate invoice charge: %w", err)
			}
			e.ID = existing.ID
			e.ObligationID = existing.ObligationID
			e.Amount = newAmount
			e.Status = status
			return existing.ID, true, nil
		}
	}

	id, err := r.InsertEvent(e)
	return id, false, err
}

func (r *ObligationRepository) getInvoiceCharge(creditor, competence string) (model.ObligationEvent, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM obligation_event
		WHERE obligation_type = ?
		AND event_category = ?
		AND creditor = ?
		AND competence = ?
	`

	row := r.getQuerier().QueryRow(query,
		string(model.ObligationInvoice), string(model.EventCharge), creditor, competence)

	e, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return model.ObligationEvent{}, apperrors.ErrChargeNotFound
	}
	if err != nil {
		return model.ObligationEvent{}, fmt.Errorf("failed to query invoice charge: %w", err)
	}
	return e, nil
}

// GetChargeByID retrieves a single CHARGE row by its event id.
func (r *ObligationRepository) GetChargeByID(id int64) (model.ObligationEvent, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM obligation_event
		WHERE id = ? AND event_category = ?
	`

	e, err := scanEvent(r.getQuerier().QueryRow(query, id, string(model.EventCharge)))
	if err == sql.ErrNoRows {
		return model.ObligationEvent{}, apperrors.ErrChargeNotFound
	}
	if err != nil {
		return model.ObligationEvent{}, fmt.Errorf("failed to query charge: %w", err)
	}
	return e, nil
}

// ListOpenInstallments retrieves the unsettled CHARGE rows of one obligation
// group in FIFO settlement order: due date ascending with undated rows last,
// insertion order breaking ties.
func (r *ObligationRepository) ListOpenInstallments(key model.ObligationGroupKey) ([]model.ObligationEvent, error) {
	where, args := groupWhere(key)
	query := `
		SELECT ` + eventColumns + `
		FROM obligation_event
		` + where + ` AND status != ?
		ORDER BY due_date IS NULL, due_date ASC, id ASC
	`
	args = append(args, string(model.StatusSettled))

	return r.queryEvents(query, args...)
}

// ListOpenCharges retrieves all unsettled CHARGE rows, optionally narrowed to
// one obligation type, creditor and/or competence, in FIFO order.
func (r *ObligationRepository) ListOpenCharges(obligationType model.ObligationType, creditor, competence string) ([]model.ObligationEvent, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM obligation_event
		WHERE event_category = ? AND status != ?
	`
	args := []any{string(model.EventCharge), string(model.StatusSettled)}

	if obligationType != "" {
		query += " AND obligation_type = ?"
		args = append(args, string(obligationType))
	}
	if creditor != "" {
		query += " AND creditor = ?"
		args = append(args, creditor)
	}
	if competence != "" {
		query += " AND competence = ?"
		args = append(args, competence)
	}

	query += " ORDER BY due_date IS NULL, due_date ASC, id ASC"

	return r.queryEvents(query, args...)
}

// UpdateChargeSettlement persists the payment accumulators of one CHARGE row
// and re-derives its status from the updated principal.
func (r *ObligationRepository) UpdateChargeSettlement(e *model.ObligationEvent) error {
	e.Status = model.DeriveStatus(e.Amount, e.PrincipalPaid)

	query := `
		UPDATE obligation_event
		SET principal_paid = ?, interest_paid = ?, penalty_paid = ?,
		    discount_applied = ?, gross_paid = ?, status = ?, payment_date = ?
		WHERE id = ?
	`

	result, err := r.getQuerier().Exec(query,
		e.PrincipalPaid,
		e.InterestPaid,
		e.PenaltyPaid,
		e.DiscountApplied,
		e.GrossPaid,
		string(e.Status),
		nullDate(e.PaymentDate),
		e.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update charge settlement: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrChargeNotFound
	}
	return nil
}

// GroupStatus derives the aggregate status of one obligation group:
// SETTLED when every installment is settled, OPEN when none has any
// principal applied, PARTIAL otherwise.
func (r *ObligationRepository) GroupStatus(key model.ObligationGroupKey) (model.ObligationStatus, error) {
	where, args := groupWhere(key)
	query := "SELECT status FROM obligation_event " + where

	rows, err := r.getQuerier().Query(query, args...)
	if err != nil {
		return "", fmt.Errorf("failed to query group statuses: %w", err)
	}
	defer rows.Close()

	var total, settled, open int
	for rows.Next() {
		var status string
		if err := rows.Scan(&status); err != nil {
			return "", fmt.Errorf("failed to scan group status: %w", err)
		}
		total++
		switch model.ObligationStatus(status) {
		case model.StatusSettled:
			settled++
		case model.StatusOpen:
			open++
		}
	}
	if err = rows.Err(); err != nil {
		return "", fmt.Errorf("error iterating group statuses: %w", err)
	}

	if total == 0 {
		return "", apperrors.ErrObligationNotFound
	}

	switch {
	case settled == total:
		return model.StatusSettled, nil
	case open == total:
		return model.StatusOpen, nil
	default:
		return model.StatusPartial, nil
	}
}

// ApplyInstallmentPayment folds one payment slice into a CHARGE row inside
// the caller's transaction: accumulators updated, status re-derived, and the
// signed PAYMENT/INTEREST/PENALTY/DISCOUNT event rows appended. Discount
// counts toward principal, so principal_paid gains principal + discount while
// gross_paid gains only the cash portion.
func (r *ObligationRepository) ApplyInstallmentPayment(
	charge *model.ObligationEvent,
	principal, interest, penalty, discount decimal.Decimal,
	paymentDate time.Time,
	paymentMethod, user string,
) (model.InstallmentResult, error) {
	cash := money.Round2(principal.Add(interest).Add(penalty))

	charge.PrincipalPaid = money.Round2(charge.PrincipalPaid.Add(principal).Add(discount))
	charge.InterestPaid = money.Round2(charge.InterestPaid.Add(interest))
	charge.PenaltyPaid = money.Round2(charge.PenaltyPaid.Add(penalty))
	charge.DiscountApplied = money.Round2(charge.DiscountApplied.Add(discount))
	charge.GrossPaid = money.Round2(charge.GrossPaid.Add(cash))

	if model.DeriveStatus(charge.Amount, charge.PrincipalPaid) == model.StatusSettled {
		charge.PaymentDate = &paymentDate
	}

	if err := r.UpdateChargeSettlement(charge); err != nil {
		return model.InstallmentResult{}, err
	}

	appendEvent := func(category model.EventCategory, amount decimal.Decimal) error {
		if money.IsZeroish(amount.Abs()) {
			return nil
		}
		_, err := r.InsertEvent(&model.ObligationEvent{
			ObligationID:   charge.ObligationID,
			ObligationType: charge.ObligationType,
			EventCategory:  category,
			EventDate:      paymentDate,
			Competence:     charge.Competence,
			Amount:         money.Round2(amount),
			Status:         model.StatusSettled,
			Creditor:       charge.Creditor,
			PaymentMethod:  paymentMethod,
			Source:         "SETTLEMENT",
			User:           user,
		})
		return err
	}

	if err := appendEvent(model.EventPayment, cash.Neg()); err != nil {
		return model.InstallmentResult{}, err
	}
	if err := appendEvent(model.EventInterest, interest); err != nil {
		return model.InstallmentResult{}, err
	}
	if err := appendEvent(model.EventPenalty, penalty); err != nil {
		return model.InstallmentResult{}, err
	}
	if err := appendEvent(model.EventDiscount, discount.Neg()); err != nil {
		return model.InstallmentResult{}, err
	}

	return model.InstallmentResult{
		EventID:          charge.ID,
		ObligationID:     charge.ObligationID,
		PrincipalApplied: money.Round2(principal),
		InterestApplied:  money.Round2(interest),
		PenaltyApplied:   money.Round2(penalty),
		DiscountApplied:  money.Round2(discount),
		CashEffect:       cash,
		Status:           charge.Status,
	}, nil
}

// RegisterAdjustment credits principal against an obligation's open
// installments in FIFO order without any cash effect, clamped at the open
// remainder. One negative ADJUSTMENT event records the total credited.
func (r *ObligationRepository) RegisterAdjustment(obligationID int64, amount decimal.Decimal, date time.Time, description, user string) (decimal.Decimal, error) {
	if !money.IsPositive(amount) {
		return decimal.Zero, apperrors.ErrInvalidAmount
	}

	installments, err := r.ListOpenInstallments(model.ObligationGroupKey{ObligationID: obligationID})
	if err != nil {
		return decimal.Zero, err
	}
	if len(installments) == 0 {
		return decimal.Zero, apperrors.ErrInvalidObligationReference
	}

	pool := money.Round2(amount)
	applied := decimal.Zero

	for i := range installments {
		if !money.IsPositive(pool) {
			break
		}
		charge := &installments[i]
		slice := money.Min(pool, money.NonNeg(charge.Open()))
		if !money.IsPositive(slice) {
			continue
		}

		charge.PrincipalPaid = money.Round2(charge.PrincipalPaid.Add(slice))
		if model.DeriveStatus(charge.Amount, charge.PrincipalPaid) == model.StatusSettled {
			d := date
			charge.PaymentDate = &d
		}
		if err := r.UpdateChargeSettlement(charge); err != nil {
			return decimal.Zero, err
		}

		pool = money.Round2(pool.Sub(slice))
		applied = money.Round2(applied.Add(slice))
	}

	if money.IsPositive(applied) {
		if _, err := r.InsertEvent(&model.ObligationEvent{
			ObligationID:   obligationID,
			ObligationType: installments[0].ObligationType,
			EventCategory:  model.EventAdjustment,
			EventDate:      date,
			Amount:         applied.Neg(),
			Status:         model.StatusSettled,
			Creditor:       installments[0].Creditor,
			Description:    description,
			Source:         "ADJUSTMENT",
			User:           user,
		}); err != nil {
			return decimal.Zero, err
		}
	}

	return applied, nil
}

// ListObligationIDs returns the distinct obligation ids that have CHARGE rows.
func (r *ObligationRepository) ListObligationIDs() ([]int64, error) {
	query := `
		SELECT DISTINCT obligation_id
		FROM obligation_event
		WHERE event_category = ?
		ORDER BY obligation_id ASC
	`

	rows, err := r.getQuerier().Query(query, string(model.EventCharge))
	if err != nil {
		return nil, fmt.Errorf("failed to query obligation ids: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan obligation id: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating obligation ids: %w", err)
	}
	return ids, nil
}

// RecomputeObligationStatuses re-derives the status of every CHARGE row of
// one obligation from its stored amount and principal, returning how many
// rows changed. Used by the maintenance sweep after manual data fixes.
func (r *ObligationRepository) RecomputeObligationStatuses(obligationID int64) (int, error) {
	query := `
		SELECT id, amount, principal_paid, status
		FROM obligation_event
		WHERE event_category = ? AND obligation_id = ?
	`

	rows, err := r.getQuerier().Query(query, string(model.EventCharge), obligationID)
	if err != nil {
		return 0, fmt.Errorf("failed to query charges: %w", err)
	}
	defer rows.Close()

	type fix struct {
		id     int64
		status model.ObligationStatus
	}
	var fixes []fix

	for rows.Next() {
		var e model.ObligationEvent
		var status string
		if err := rows.Scan(&e.ID, &e.Amount, &e.PrincipalPaid, &status); err != nil {
			return 0, fmt.Errorf("failed to scan charge: %w", err)
		}
		derived := model.DeriveStatus(e.Amount, e.PrincipalPaid)
		if derived != model.ObligationStatus(status) {
			fixes = append(fixes, fix{id: e.ID, status: derived})
		}
	}
	if err = rows.Err(); err != nil {
		return 0, fmt.Errorf("error iterating charges: %w", err)
	}

	for _, f := range fixes {
		if _, err := r.getQuerier().Exec(
			"UPDATE obligation_event SET status = ? WHERE id = ?", string(f.status), f.id,
		); err != nil {
			return 0, fmt.Errorf("failed to update charge status: %w", err)
		}
	}

	return len(fixes), nil
}

func (r *ObligationRepository) queryEvents(query string, args ...any) ([]model.ObligationEvent, error) {
	rows, err := r.getQuerier().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query obligation events: %w", err)
	}
	defer rows.Close()

	events := []model.ObligationEvent{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan obligation event: %w", err)
		}
		events = append(events, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating obligation events: %w", err)
	}
	return events, nil
}

// groupWhere builds the WHERE clause selecting the CHARGE rows of one
// obligation group. An explicit obligation id wins over the type/creditor
// key; an empty competence means "all competences".
func groupWhere(key model.ObligationGroupKey) (string, []any) {
	where := "WHERE event_category = ?"
	args := []any{string(model.EventCharge)}

	if key.ObligationID != 0 {
		where += " AND obligation_id = ?"
		args = append(args, key.ObligationID)
		return where, args
	}

	where += " AND obligation_type = ? AND creditor = ?"
	args = append(args, string(key.Type), key.Creditor)

	if key.Competence != "" {
		where += " AND competence = ?"
		args = append(args, key.Competence)
	}
	return where, args
}

func scanEvent(row interface{ Scan(dest ...any) error }) (model.ObligationEvent, error) {
	var e model.ObligationEvent
	var obligationType, eventCategory, eventDate, status string
	var dueDate, competence, paymentDate, creditor, description sql.NullString
	var paymentMethod, source, user, createdAt sql.NullString
	var installmentNumber, installmentCount, externalReferenceID sql.NullInt64

	err := row.Scan(
		&e.ID,
		&e.ObligationID,
		&obligationType,
		&eventCategory,
		&eventDate,
		&dueDate,
		&competence,
		&installmentNumber,
		&installmentCount,
		&e.Amount,
		&e.PrincipalPaid,
		&e.InterestPaid,
		&e.PenaltyPaid,
		&e.DiscountApplied,
		&e.GrossPaid,
		&status,
		&paymentDate,
		&creditor,
		&description,
		&paymentMethod,
		&source,
		&user,
		&externalReferenceID,
		&createdAt,
	)
	if err != nil {
		return model.ObligationEvent{}, err
	}

	e.ObligationType = model.ObligationType(obligationType)
	e.EventCategory = model.EventCategory(eventCategory)
	e.Status = model.ObligationStatus(status)
	e.Competence = competence.String
	e.Creditor = creditor.String
	e.Description = description.String
	e.PaymentMethod = paymentMethod.String
	e.Source = source.String
	e.User = user.String
	e.InstallmentNumber = int(installmentNumber.Int64)
	e.InstallmentCount = int(installmentCount.Int64)

	if e.EventDate, err = ParseTime(eventDate); err != nil {
		return model.ObligationEvent{}, err
	}
	if e.DueDate, err = parseNullDate(dueDate); err != nil {
		return model.ObligationEvent{}, err
	}
	if e.PaymentDate, err = parseNullDate(paymentDate); err != nil {
		return model.ObligationEvent{}, err
	}
	if createdAt.Valid {
		if e.CreatedAt, err = ParseTime(createdAt.String); err != nil {
			return model.ObligationEvent{}, err
		}
	}
	if externalReferenceID.Valid {
		id := externalReferenceID.Int64
		e.ExternalReferenceID = &id
	}

	return e, nil
}
