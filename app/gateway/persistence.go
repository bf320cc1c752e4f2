package gateway

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vibast-solutions/ms-go-iranpay/app/entity"
)

const (
	operationCreate  = "create"
	operationVerify  = "verify"
	operationSettle  = "settle"
	operationReverse = "reverse"
)

// recordPersistence holds the record-keeping side of the lifecycle so the
// state machine stays free of storage details. A nil store disables every
// hook except loading, which then fails explicitly.
type recordPersistence struct {
	store RecordStore
	clock Clock
}

func newRecordPersistence(store RecordStore, clock Clock) *recordPersistence {
	return &recordPersistence{store: store, clock: clock}
}

func (p *recordPersistence) storeRecord(ctx context.Context, driver Driver, amount int64, payableType, payableID string) (*entity.Payment, error) {
	if p.store == nil {
		return nil, nil
	}

	now := p.clock.Now()
	record := &entity.Payment{
		ID:             uuid.NewString(),
		TransactionID:  driver.TransactionID(),
		PayableType:    payableType,
		PayableID:      payableID,
		Amount:         amount,
		Gateway:        driver.Name(),
		Status:         entity.StatusPending,
		GatewayPayload: driver.GatewayPayload(),
		OwnedByIranpay: true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	record.AddRawResponse(operationCreate, driver.RawResponse(), now)

	if err := p.store.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// loadStoredRecord resolves the record backing a verification that was not
// handed an explicit payload. The schema probe separates "table missing"
// from "record missing" in the resulting error.
func (p *recordPersistence) loadStoredRecord(ctx context.Context, transactionID string) (*entity.Payment, error) {
	if p.store == nil {
		return nil, fmt.Errorf("%w: verification payload was not provided and no record store is configured", ErrMissingVerificationPayload)
	}

	hasSchema, err := p.store.HasPaymentSchema(ctx)
	if err != nil {
		return nil, err
	}
	if !hasSchema {
		return nil, fmt.Errorf("%w: verification payload was not provided and the payments table does not exist", ErrMissingVerificationPayload)
	}

	record, err := p.store.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("%w: verification payload was not provided and no stored payment record was found for transaction ID %q", ErrMissingVerificationPayload, transactionID)
	}
	return record, nil
}

// recordInvalidCallback marks the record failed and verified, with an audit
// entry pairing the suspect callback against the stored payload.
func (p *recordPersistence) recordInvalidCallback(ctx context.Context, record *entity.Payment, cause error, callback map[string]string, gatewayPayload map[string]any) error {
	if p.store == nil || record == nil {
		return nil
	}

	now := p.clock.Now()
	message := cause.Error()
	record.Status = entity.StatusFailed
	record.Error = &message
	record.VerifiedAt = &now
	record.UpdatedAt = now
	record.AddRawResponse(operationVerify, map[string]any{
		"callback": callback,
		"payload":  gatewayPayload,
	}, now)

	return p.store.MarkVerified(ctx, record)
}

func (p *recordPersistence) recordVerification(ctx context.Context, record *entity.Payment, driver Driver, errMessage string) error {
	if p.store == nil || record == nil {
		return nil
	}

	now := p.clock.Now()
	record.VerifiedAt = &now
	record.UpdatedAt = now
	record.AddRawResponse(operationVerify, driver.RawResponse(), now)

	if driver.Successful() {
		record.Status = entity.StatusSuccessful
		record.Error = nil
		if ref := driver.RefNumber(); ref != "" {
			record.RefNumber = &ref
		}
		if card := driver.CardNumber(); card != "" {
			record.CardNumber = &card
		}
	} else {
		record.Status = entity.StatusFailed
		record.Error = &errMessage
	}

	return p.store.MarkVerified(ctx, record)
}

func (p *recordPersistence) recordSettlement(ctx context.Context, record *entity.Payment, driver Driver) error {
	if p.store == nil || record == nil {
		return nil
	}

	now := p.clock.Now()
	record.SettledAt = &now
	record.UpdatedAt = now
	record.AddRawResponse(operationSettle, driver.RawResponse(), now)

	return p.store.Update(ctx, record)
}

func (p *recordPersistence) recordReversal(ctx context.Context, record *entity.Payment, driver Driver) error {
	if p.store == nil || record == nil {
		return nil
	}

	now := p.clock.Now()
	record.ReversedAt = &now
	record.UpdatedAt = now
	record.AddRawResponse(operationReverse, driver.RawResponse(), now)

	return p.store.Update(ctx, record)
}
