package gateway

import "errors"

var (
	// ErrAPINotCalled is returned when a status accessor runs before any
	// lifecycle operation.
	ErrAPINotCalled = errors.New("api is not called")

	// ErrPaymentNotVerified is returned when settle or reverse runs before
	// verify.
	ErrPaymentNotVerified = errors.New("payment is not verified")

	// ErrPaymentAlreadyVerified is returned when verify runs twice on the
	// same stored record. Verification is exactly-once.
	ErrPaymentAlreadyVerified = errors.New("payment already verified")

	// ErrMissingVerificationPayload is returned when verify has no payload
	// and no stored record to fall back on.
	ErrMissingVerificationPayload = errors.New("missing verification payload")

	// ErrMissingCallbackData is returned when an inbound callback lacks a
	// required field.
	ErrMissingCallbackData = errors.New("missing callback data")

	// ErrInvalidCallbackData is returned when callback values do not match
	// the stored gateway payload. The lifecycle records a failed audit
	// trail before re-propagating it.
	ErrInvalidCallbackData = errors.New("invalid callback data")

	// ErrBehaviorNotConfigured is returned by the fake driver when an
	// operation runs without a scripted behavior.
	ErrBehaviorNotConfigured = errors.New("driver behavior not configured")

	// ErrGatewayNotSupported is returned by the registry for unknown
	// gateway names.
	ErrGatewayNotSupported = errors.New("gateway is not supported")
)
