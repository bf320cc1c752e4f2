package entity

import "time"

const (
	StatusPending    = "pending"
	StatusSuccessful = "successful"
	StatusFailed     = "failed"
)

// Payment is the persisted counterpart of a gateway transaction attempt.
// Rows live in a table that may be shared with other payment code;
// OwnedByIranpay marks the rows this service created.
type Payment struct {
	ID string

	TransactionID string

	PayableType string
	PayableID   string

	Amount  int64
	Gateway string
	Status  string

	GatewayPayload map[string]any
	RawResponses   map[string]any

	Error      *string
	RefNumber  *string
	CardNumber *string

	VerifiedAt *time.Time
	SettledAt  *time.Time
	ReversedAt *time.Time

	OwnedByIranpay bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AddRawResponse appends a gateway response to the audit log without
// overwriting existing entries. Keys carry the operation name and a
// second-resolution timestamp so repeated operations stay distinguishable.
func (p *Payment) AddRawResponse(operation string, response any, now time.Time) {
	if p.RawResponses == nil {
		p.RawResponses = map[string]any{}
	}
	p.RawResponses[operation+"_"+now.Format("20060102150405")] = response
}
