package gateway

import "context"

// Field is one ordered key/value pair of a redirect descriptor. Banks are
// picky about both key casing and field order, so the descriptor carries
// slices instead of maps.
type Field struct {
	Key   string
	Value string
}

// RedirectData describes how a caller-owned HTTP layer should send the end
// user to the bank's hosted payment page.
type RedirectData struct {
	URL     string
	Method  string
	Payload []Field
	Headers []Field
}

// Driver is the per-bank protocol adapter. A driver instance belongs to a
// single transaction attempt; the Lifecycle wrapper enforces call order and
// owns persistence.
//
// Accessors return zero values until the operation that populates them has
// succeeded.
type Driver interface {
	// Name is the registry key of the gateway, e.g. "behpardakht".
	Name() string

	// DefaultCallbackURL is the configured callback URL used when no
	// runtime override is set.
	DefaultCallbackURL() string

	// CreatePayment sends the creation request and retains transaction
	// id, status code, and raw response.
	CreatePayment(ctx context.Context, callbackURL string, amount int64, description, phone string) error

	// StatusCode is the gateway's response code for the last call.
	StatusCode() string

	// StatusMessage maps the status code to the gateway's fixed message.
	// Unknown codes map to a generic message, never an error.
	StatusMessage() string

	// Successful reports whether the last gateway call succeeded.
	Successful() bool

	// RawResponse is the unparsed payload of the last gateway call.
	RawResponse() any

	// VerifyPayment validates the callback against the stored payload and
	// sends the verification request. Mismatches return
	// ErrInvalidCallbackData before any network call.
	VerifyPayment(ctx context.Context, storedPayload map[string]any) error

	SettlePayment(ctx context.Context) error
	ReversePayment(ctx context.Context) error

	// FromCallback builds a driver instance primed with gateway redirect
	// data. No network call is made.
	FromCallback(payload map[string]string) (Driver, error)

	// NoCallback builds a degraded-mode driver instance for a transaction
	// whose callback data is unavailable.
	NoCallback(transactionID string) Driver

	TransactionID() string
	GatewayPayload() map[string]any
	RedirectData() *RedirectData
	RefNumber() string
	CardNumber() string
}
