package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/vibast-solutions/ms-go-iranpay/app/entity"
)

var (
	ErrPaymentNotFound        = errors.New("payment not found")
	ErrPaymentAlreadyExists   = errors.New("payment already exists")
	ErrPaymentAlreadyVerified = errors.New("payment already verified")
)

const paymentColumns = `
	id, transaction_id, payable_type, payable_id, amount, gateway, status,
	gateway_payload, raw_responses, error, ref_number, card_number,
	verified_at, settled_at, reversed_at, owned_by_iranpay,
	created_at, updated_at
`

type PaymentRepository struct {
	db DBTX
}

func NewPaymentRepository(db DBTX) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	payloadJSON, err := serializeJSONMap(payment.GatewayPayload)
	if err != nil {
		return err
	}
	responsesJSON, err := serializeJSONMap(payment.RawResponses)
	if err != nil {
		return err
	}

	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}

	query := `
		INSERT INTO payments (
			id, transaction_id, payable_type, payable_id, amount, gateway, status,
			gateway_payload, raw_responses, error, ref_number, card_number,
			verified_at, settled_at, reversed_at, owned_by_iranpay,
			created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		payment.ID,
		payment.TransactionID,
		payment.PayableType,
		payment.PayableID,
		payment.Amount,
		payment.Gateway,
		payment.Status,
		payloadJSON,
		responsesJSON,
		nullableStringValue(payment.Error),
		nullableStringValue(payment.RefNumber),
		nullableStringValue(payment.CardNumber),
		nullableTimeValue(payment.VerifiedAt),
		nullableTimeValue(payment.SettledAt),
		nullableTimeValue(payment.ReversedAt),
		payment.OwnedByIranpay,
		payment.CreatedAt,
		payment.UpdatedAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrPaymentAlreadyExists
		}
		return err
	}

	return nil
}

func (r *PaymentRepository) Update(ctx context.Context, payment *entity.Payment) error {
	payloadJSON, err := serializeJSONMap(payment.GatewayPayload)
	if err != nil {
		return err
	}
	responsesJSON, err := serializeJSONMap(payment.RawResponses)
	if err != nil {
		return err
	}

	query := `
		UPDATE payments SET
			status = ?,
			gateway_payload = ?,
			raw_responses = ?,
			error = ?,
			ref_number = ?,
			card_number = ?,
			verified_at = ?,
			settled_at = ?,
			reversed_at = ?,
			updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		payment.Status,
		payloadJSON,
		responsesJSON,
		nullableStringValue(payment.Error),
		nullableStringValue(payment.RefNumber),
		nullableStringValue(payment.CardNumber),
		nullableTimeValue(payment.VerifiedAt),
		nullableTimeValue(payment.SettledAt),
		nullableTimeValue(payment.ReversedAt),
		payment.UpdatedAt,
		payment.ID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

// MarkVerified persists the verification outcome with a conditional update
// so that a concurrent verification attempt on the same row loses the race
// instead of overwriting verified_at.
func (r *PaymentRepository) MarkVerified(ctx context.Context, payment *entity.Payment) error {
	responsesJSON, err := serializeJSONMap(payment.RawResponses)
	if err != nil {
		return err
	}

	query := `
		UPDATE payments SET
			status = ?,
			raw_responses = ?,
			error = ?,
			ref_number = ?,
			card_number = ?,
			verified_at = ?,
			updated_at = ?
		WHERE id = ? AND verified_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		payment.Status,
		responsesJSON,
		nullableStringValue(payment.Error),
		nullableStringValue(payment.RefNumber),
		nullableStringValue(payment.CardNumber),
		nullableTimeValue(payment.VerifiedAt),
		payment.UpdatedAt,
		payment.ID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrPaymentAlreadyVerified
	}
	return nil
}

func (r *PaymentRepository) FindByTransactionID(ctx context.Context, transactionID string) (*entity.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE transaction_id = ? AND owned_by_iranpay = TRUE
		LIMIT 1
	`

	payment := &entity.Payment{}
	if err := scanPayment(r.db.QueryRowContext(ctx, query, transactionID), payment); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return payment, nil
}

// HasPaymentSchema reports whether the payments table carries the columns
// this service needs. The table is optional; callers probe before relying
// on stored payloads.
func (r *PaymentRepository) HasPaymentSchema(ctx context.Context) (bool, error) {
	query := `
		SELECT COUNT(*)
		FROM information_schema.columns
		WHERE table_schema = DATABASE()
			AND table_name = 'payments'
			AND column_name IN ('transaction_id', 'owned_by_iranpay')
	`

	var count int
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return false, err
	}
	return count == 2, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPayment(row rowScanner, payment *entity.Payment) error {
	var (
		payloadJSON   string
		responsesJSON string
		errMsg        sql.NullString
		refNumber     sql.NullString
		cardNumber    sql.NullString
		verifiedAt    sql.NullTime
		settledAt     sql.NullTime
		reversedAt    sql.NullTime
	)

	if err := row.Scan(
		&payment.ID,
		&payment.TransactionID,
		&payment.PayableType,
		&payment.PayableID,
		&payment.Amount,
		&payment.Gateway,
		&payment.Status,
		&payloadJSON,
		&responsesJSON,
		&errMsg,
		&refNumber,
		&cardNumber,
		&verifiedAt,
		&settledAt,
		&reversedAt,
		&payment.OwnedByIranpay,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	); err != nil {
		return err
	}

	payload, err := parseJSONMap(payloadJSON)
	if err != nil {
		return err
	}
	responses, err := parseJSONMap(responsesJSON)
	if err != nil {
		return err
	}

	payment.GatewayPayload = payload
	payment.RawResponses = responses
	payment.Error = stringPtrFromNull(errMsg)
	payment.RefNumber = stringPtrFromNull(refNumber)
	payment.CardNumber = stringPtrFromNull(cardNumber)
	payment.VerifiedAt = timePtrFromNull(verifiedAt)
	payment.SettledAt = timePtrFromNull(settledAt)
	payment.ReversedAt = timePtrFromNull(reversedAt)

	return nil
}
