package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/vibast-solutions/ms-go-iranpay/app/entity"
	"github.com/vibast-solutions/ms-go-iranpay/app/gateway"
	"github.com/vibast-solutions/ms-go-iranpay/app/repository"
)

type paymentStore interface {
	Create(ctx context.Context, payment *entity.Payment) error
	Update(ctx context.Context, payment *entity.Payment) error
	MarkVerified(ctx context.Context, payment *entity.Payment) error
	FindByTransactionID(ctx context.Context, transactionID string) (*entity.Payment, error)
	HasPaymentSchema(ctx context.Context) (bool, error)
}

// recordStore adapts the MySQL payment repository to the record store the
// gateway lifecycle expects, translating repository sentinels to the
// lifecycle's contract.
type recordStore struct {
	repo paymentStore
}

func NewRecordStore(repo paymentStore) gateway.RecordStore {
	return &recordStore{repo: repo}
}

func (s *recordStore) Create(ctx context.Context, payment *entity.Payment) error {
	return s.repo.Create(ctx, payment)
}

func (s *recordStore) Update(ctx context.Context, payment *entity.Payment) error {
	return s.repo.Update(ctx, payment)
}

func (s *recordStore) MarkVerified(ctx context.Context, payment *entity.Payment) error {
	err := s.repo.MarkVerified(ctx, payment)
	if errors.Is(err, repository.ErrPaymentAlreadyVerified) {
		return fmt.Errorf("%w: transaction %s", gateway.ErrPaymentAlreadyVerified, payment.TransactionID)
	}
	return err
}

func (s *recordStore) FindByTransactionID(ctx context.Context, transactionID string) (*entity.Payment, error) {
	return s.repo.FindByTransactionID(ctx, transactionID)
}

func (s *recordStore) HasPaymentSchema(ctx context.Context) (bool, error) {
	return s.repo.HasPaymentSchema(ctx)
}
