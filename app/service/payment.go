package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vibast-solutions/ms-go-iranpay/app/entity"
	"github.com/vibast-solutions/ms-go-iranpay/app/gateway"
	"github.com/vibast-solutions/ms-go-iranpay/app/types"
	"github.com/vibast-solutions/ms-go-iranpay/config"
)

type paymentRepository interface {
	FindByTransactionID(ctx context.Context, transactionID string) (*entity.Payment, error)
}

// CreatePaymentResult is the outcome of an accepted payment creation.
type CreatePaymentResult struct {
	TransactionID string
	Redirect      *gateway.RedirectData
	Record        *entity.Payment
}

// OperationResult is the outcome of a verification, settlement or reversal.
type OperationResult struct {
	TransactionID string
	Successful    bool
	ErrorMessage  string
	Record        *entity.Payment
}

type PaymentService struct {
	registry    *gateway.Registry
	paymentRepo paymentRepository
	iranpayCfg  config.IranpayConfig
}

func NewPaymentService(registry *gateway.Registry, paymentRepo paymentRepository, iranpayCfg config.IranpayConfig) *PaymentService {
	return &PaymentService{
		registry:    registry,
		paymentRepo: paymentRepo,
		iranpayCfg:  iranpayCfg,
	}
}

// CreatePayment starts a transaction on the requested gateway and returns
// the redirect the caller should send the payer to.
func (s *PaymentService) CreatePayment(ctx context.Context, req *types.CreatePaymentRequest) (*CreatePaymentResult, error) {
	lifecycle, err := s.resolveGateway(strings.TrimSpace(req.Gateway))
	if err != nil {
		return nil, err
	}

	if url := strings.TrimSpace(req.CallbackURL); url != "" {
		lifecycle.CallbackURL(url)
	}
	if req.Store {
		lifecycle.Store(strings.TrimSpace(req.PayableType), strings.TrimSpace(req.PayableID))
	}

	if err := lifecycle.Create(ctx, req.Amount, req.Description, req.Phone); err != nil {
		return nil, err
	}

	successful, err := lifecycle.Successful()
	if err != nil {
		return nil, err
	}
	if !successful {
		message, err := lifecycle.Error()
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", ErrGatewayRejected, message)
	}

	driver := lifecycle.Driver()
	return &CreatePaymentResult{
		TransactionID: driver.TransactionID(),
		Redirect:      driver.RedirectData(),
		Record:        lifecycle.Record(),
	}, nil
}

// HandleGatewayCallback verifies the payment the gateway redirected back
// to us, settling or reversing it as a side effect when configured.
func (s *PaymentService) HandleGatewayCallback(ctx context.Context, req *types.HandleGatewayCallbackRequest) (*OperationResult, error) {
	lifecycle, err := s.registry.Resolve(req.Gateway)
	if err != nil {
		if errors.Is(err, gateway.ErrGatewayNotSupported) {
			return nil, fmt.Errorf("%w: %s", ErrGatewayUnsupported, req.Gateway)
		}
		return nil, err
	}

	if err := lifecycle.FromCallback(req.Payload); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCallbackRejected, err.Error())
	}

	lifecycle.AutoSettle(s.iranpayCfg.AutoSettle).AutoReverse(s.iranpayCfg.AutoReverse)

	if err := lifecycle.Verify(ctx, nil); err != nil {
		return nil, s.mapVerifyError(err)
	}

	return s.operationResult(lifecycle)
}

// GetPayment returns the stored payment record for a transaction.
func (s *PaymentService) GetPayment(ctx context.Context, transactionID string) (*entity.Payment, error) {
	payment, err := s.paymentRepo.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	return payment, nil
}

// SettlePayment re-enters the transaction in no-callback mode and runs the
// settlement. Gateways that require callback data report the sentinel
// failure instead of calling any API.
func (s *PaymentService) SettlePayment(ctx context.Context, transactionID string) (*OperationResult, error) {
	return s.runWithoutCallback(ctx, transactionID, func(lifecycle *gateway.Lifecycle) error {
		return lifecycle.Settle(ctx)
	})
}

// ReversePayment re-enters the transaction in no-callback mode and runs
// the reversal.
func (s *PaymentService) ReversePayment(ctx context.Context, transactionID string) (*OperationResult, error) {
	return s.runWithoutCallback(ctx, transactionID, func(lifecycle *gateway.Lifecycle) error {
		return lifecycle.Reverse(ctx)
	})
}

func (s *PaymentService) runWithoutCallback(ctx context.Context, transactionID string, operation func(*gateway.Lifecycle) error) (*OperationResult, error) {
	record, err := s.paymentRepo.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrPaymentNotFound
	}

	lifecycle, err := s.registry.Resolve(record.Gateway)
	if err != nil {
		if errors.Is(err, gateway.ErrGatewayNotSupported) {
			return nil, fmt.Errorf("%w: %s", ErrGatewayUnsupported, record.Gateway)
		}
		return nil, err
	}
	lifecycle.NoCallback(transactionID)

	// An already verified record is the normal case here; the state check
	// inside the lifecycle still requires the verify step to have run.
	if err := lifecycle.Verify(ctx, nil); err != nil && !errors.Is(err, gateway.ErrPaymentAlreadyVerified) {
		return nil, s.mapVerifyError(err)
	}

	if err := operation(lifecycle); err != nil {
		return nil, err
	}

	return s.operationResult(lifecycle)
}

func (s *PaymentService) mapVerifyError(err error) error {
	switch {
	case errors.Is(err, gateway.ErrMissingVerificationPayload):
		return fmt.Errorf("%w: %s", ErrPaymentNotFound, err.Error())
	case errors.Is(err, gateway.ErrPaymentAlreadyVerified):
		return fmt.Errorf("%w: %s", ErrPaymentAlreadyVerified, err.Error())
	case errors.Is(err, gateway.ErrInvalidCallbackData):
		return fmt.Errorf("%w: %s", ErrCallbackRejected, err.Error())
	default:
		return err
	}
}

func (s *PaymentService) operationResult(lifecycle *gateway.Lifecycle) (*OperationResult, error) {
	successful, err := lifecycle.Successful()
	if err != nil {
		return nil, err
	}
	message, err := lifecycle.Error()
	if err != nil {
		return nil, err
	}

	return &OperationResult{
		TransactionID: lifecycle.Driver().TransactionID(),
		Successful:    successful,
		ErrorMessage:  message,
		Record:        lifecycle.Record(),
	}, nil
}

func (s *PaymentService) resolveGateway(name string) (*gateway.Lifecycle, error) {
	var (
		lifecycle *gateway.Lifecycle
		err       error
	)
	if name == "" {
		lifecycle, err = s.registry.Default()
	} else {
		lifecycle, err = s.registry.Resolve(name)
	}
	if err != nil {
		if errors.Is(err, gateway.ErrGatewayNotSupported) {
			return nil, fmt.Errorf("%w: %s", ErrGatewayUnsupported, name)
		}
		return nil, err
	}
	return lifecycle, nil
}
