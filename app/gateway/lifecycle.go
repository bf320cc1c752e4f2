package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vibast-solutions/ms-go-iranpay/app/entity"
)

const (
	CurrencyRial  = "Rial"
	CurrencyToman = "Toman"
)

const (
	methodCreate = "create"
	methodVerify = "verify"
)

// Settings carries the application-level knobs the lifecycle needs.
type Settings struct {
	// Currency is the application's base currency; Toman amounts are
	// converted to Rial before reaching any driver.
	Currency string

	// BaseURL is the application root used to absolutize relative
	// callback paths.
	BaseURL string
}

// RecordStore persists lifecycle state. Implementations must make
// MarkVerified conditional on the record not being verified yet and return
// an error wrapping ErrPaymentAlreadyVerified when the condition fails, so
// the exactly-once guarantee holds under concurrent verification.
type RecordStore interface {
	Create(ctx context.Context, payment *entity.Payment) error
	Update(ctx context.Context, payment *entity.Payment) error
	MarkVerified(ctx context.Context, payment *entity.Payment) error
	FindByTransactionID(ctx context.Context, transactionID string) (*entity.Payment, error)
	HasPaymentSchema(ctx context.Context) (bool, error)
}

// Options are the collaborators shared by every lifecycle a registry hands
// out. Store may be nil when persistence is not installed.
type Options struct {
	Store    RecordStore
	Clock    Clock
	Settings Settings
}

// verificationSnapshot freezes the caller-visible outcome of a verification
// so auto-settle and auto-reverse cannot overwrite it.
type verificationSnapshot struct {
	successful bool
	errMessage string
	raw        any
}

// Lifecycle is the per-transaction state machine around a Driver. Instances
// are single-use: one transaction attempt, one logical thread of control.
type Lifecycle struct {
	driver      Driver
	persistence *recordPersistence
	clock       Clock
	settings    Settings

	amount             int64
	runtimeCallbackURL string
	calledMethod       string

	storeRequested bool
	payableType    string
	payableID      string
	record         *entity.Payment

	callbackPayload map[string]string

	autoSettle   bool
	autoReverse  bool
	verification *verificationSnapshot
}

func NewLifecycle(driver Driver, opts Options) *Lifecycle {
	clock := opts.Clock
	if clock == nil {
		clock = SystemClock()
	}

	return &Lifecycle{
		driver:      driver,
		persistence: newRecordPersistence(opts.Store, clock),
		clock:       clock,
		settings:    opts.Settings,
	}
}

// Driver exposes the wrapped driver, mainly for test-double configuration.
func (l *Lifecycle) Driver() Driver { return l.driver }

// Gateway is the registry key of the wrapped driver.
func (l *Lifecycle) Gateway() string { return l.driver.Name() }

// CallbackURL overrides the resolved callback URL for this instance only.
func (l *Lifecycle) CallbackURL(url string) *Lifecycle {
	l.runtimeCallbackURL = url
	return l
}

// Store registers the owning entity; the record itself is persisted inside
// Create, and only when creation succeeds.
func (l *Lifecycle) Store(payableType, payableID string) *Lifecycle {
	l.storeRequested = true
	l.payableType = payableType
	l.payableID = payableID
	return l
}

// AutoSettle makes a successful verification settle the payment as a side
// effect.
func (l *Lifecycle) AutoSettle(enabled bool) *Lifecycle {
	l.autoSettle = enabled
	return l
}

// AutoReverse makes a failed verification reverse the payment as a side
// effect.
func (l *Lifecycle) AutoReverse(enabled bool) *Lifecycle {
	l.autoReverse = enabled
	return l
}

// Create normalizes the amount, resolves the callback URL, and delegates to
// the driver. When Store was called and the gateway accepted the request,
// a pending record is persisted with the first raw-response entry.
func (l *Lifecycle) Create(ctx context.Context, amount int64, description, phone string) error {
	l.calledMethod = methodCreate
	l.amount = l.toRial(amount)

	if err := l.driver.CreatePayment(ctx, l.resolveCallbackURL(), l.amount, description, phone); err != nil {
		return err
	}

	if l.storeRequested && l.driver.Successful() {
		record, err := l.persistence.storeRecord(ctx, l.driver, l.amount, l.payableType, l.payableID)
		if err != nil {
			return err
		}
		l.record = record
	}

	return nil
}

// Successful reports the outcome of the last lifecycle operation, or of the
// verification when settle/reverse ran as its side effect.
func (l *Lifecycle) Successful() (bool, error) {
	if err := l.ensureAPICalled(); err != nil {
		return false, err
	}
	if l.verification != nil {
		return l.verification.successful, nil
	}
	return l.driver.Successful(), nil
}

func (l *Lifecycle) Failed() (bool, error) {
	successful, err := l.Successful()
	if err != nil {
		return false, err
	}
	return !successful, nil
}

// Error returns "" on success, otherwise a message built from the gateway
// status code and its fixed message.
func (l *Lifecycle) Error() (string, error) {
	if err := l.ensureAPICalled(); err != nil {
		return "", err
	}
	if l.verification != nil {
		return l.verification.errMessage, nil
	}
	return l.driverError(), nil
}

func (l *Lifecycle) driverError() string {
	if l.driver.Successful() {
		return ""
	}
	return fmt.Sprintf("code %s- %s", l.driver.StatusCode(), l.driver.StatusMessage())
}

// RawResponse is the most recent gateway payload, or the preserved
// verification payload after auto-settle/auto-reverse.
func (l *Lifecycle) RawResponse() (any, error) {
	if err := l.ensureAPICalled(); err != nil {
		return nil, err
	}
	if l.verification != nil {
		return l.verification.raw, nil
	}
	return l.driver.RawResponse(), nil
}

// Record returns the persisted payment record, or nil when nothing was
// stored or fetched.
func (l *Lifecycle) Record() *entity.Payment { return l.record }

// FromCallback primes the driver with gateway redirect data. No network
// call is made; required-key validation happens in the driver.
func (l *Lifecycle) FromCallback(payload map[string]string) error {
	l.callbackPayload = payload

	driver, err := l.driver.FromCallback(payload)
	if err != nil {
		return err
	}
	l.driver = driver
	return nil
}

// NoCallback switches to the degraded-mode driver for a transaction whose
// callback data is unavailable.
func (l *Lifecycle) NoCallback(transactionID string) *Lifecycle {
	l.driver = l.driver.NoCallback(transactionID)
	return l
}

// Verify runs the verification protocol. A nil payload is resolved from the
// stored record; verification of a stored record is exactly-once. A
// callback/payload mismatch marks the record failed with a tamper audit
// entry before the mismatch error is returned.
func (l *Lifecycle) Verify(ctx context.Context, gatewayPayload map[string]any) error {
	l.calledMethod = methodVerify

	if gatewayPayload == nil {
		record, err := l.persistence.loadStoredRecord(ctx, l.driver.TransactionID())
		if err != nil {
			return err
		}
		l.record = record
		gatewayPayload = record.GatewayPayload
	}

	if l.record != nil && l.record.VerifiedAt != nil {
		return fmt.Errorf("%w: payment with transaction ID %q has already been verified", ErrPaymentAlreadyVerified, l.driver.TransactionID())
	}

	if err := l.driver.VerifyPayment(ctx, gatewayPayload); err != nil {
		if errors.Is(err, ErrInvalidCallbackData) {
			if persistErr := l.persistence.recordInvalidCallback(ctx, l.record, err, l.callbackPayload, gatewayPayload); persistErr != nil {
				return errors.Join(err, persistErr)
			}
		}
		return err
	}

	if err := l.persistence.recordVerification(ctx, l.record, l.driver, l.driverError()); err != nil {
		return err
	}

	if l.driver.Successful() {
		if l.autoSettle {
			return l.preservingVerification(func() error { return l.Settle(ctx) })
		}
		return nil
	}
	if l.autoReverse {
		return l.preservingVerification(func() error { return l.Reverse(ctx) })
	}
	return nil
}

// Settle finalizes the fund transfer. Requires a prior Verify on this
// instance.
func (l *Lifecycle) Settle(ctx context.Context) error {
	if err := l.ensureVerifiedFor("settle"); err != nil {
		return err
	}

	if err := l.driver.SettlePayment(ctx); err != nil {
		return err
	}

	return l.persistence.recordSettlement(ctx, l.record, l.driver)
}

// Reverse cancels the transaction. Requires a prior Verify on this
// instance.
func (l *Lifecycle) Reverse(ctx context.Context) error {
	if err := l.ensureVerifiedFor("reverse"); err != nil {
		return err
	}

	if err := l.driver.ReversePayment(ctx); err != nil {
		return err
	}

	return l.persistence.recordReversal(ctx, l.record, l.driver)
}

func (l *Lifecycle) ensureAPICalled() error {
	if l.calledMethod == "" {
		return fmt.Errorf("%w: you must call an API method before checking its status", ErrAPINotCalled)
	}
	return nil
}

func (l *Lifecycle) ensureVerifiedFor(operation string) error {
	if l.calledMethod != methodVerify {
		return fmt.Errorf("%w: you must verify the payment before running %s", ErrPaymentNotVerified, operation)
	}
	return nil
}

// preservingVerification runs fn and pins the pre-call verification outcome
// so later reads reflect the verification, not its side effect.
func (l *Lifecycle) preservingVerification(fn func() error) error {
	snapshot := &verificationSnapshot{
		successful: l.driver.Successful(),
		errMessage: l.driverError(),
		raw:        l.driver.RawResponse(),
	}

	if err := fn(); err != nil {
		return err
	}

	l.verification = snapshot
	return nil
}

func (l *Lifecycle) toRial(amount int64) int64 {
	if l.settings.Currency == CurrencyToman {
		return amount * 10
	}
	return amount
}

func (l *Lifecycle) resolveCallbackURL() string {
	url := l.runtimeCallbackURL
	if url == "" {
		url = l.driver.DefaultCallbackURL()
	}
	return l.absoluteURL(url)
}

func (l *Lifecycle) absoluteURL(url string) string {
	if strings.Contains(url, "://") {
		return url
	}
	return strings.TrimRight(l.settings.BaseURL, "/") + "/" + strings.TrimLeft(url, "/")
}
