package types

import (
	"errors"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vibast-solutions/ms-go-iranpay/app/entity"
	"github.com/vibast-solutions/ms-go-iranpay/app/gateway"
)

type HealthResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type CreatePaymentRequest struct {
	Gateway     string `json:"gateway"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
	Phone       string `json:"phone"`
	CallbackURL string `json:"callback_url"`
	PayableType string `json:"payable_type"`
	PayableID   string `json:"payable_id"`
	Store       bool   `json:"store"`
}

func NewCreatePaymentRequestFromContext(ctx echo.Context) (*CreatePaymentRequest, error) {
	req := new(CreatePaymentRequest)
	if err := ctx.Bind(req); err != nil {
		return nil, err
	}
	return req, nil
}

func (r *CreatePaymentRequest) Validate() error {
	if r.Amount <= 0 {
		return errors.New("amount must be a positive number")
	}
	if r.Store && (strings.TrimSpace(r.PayableType) == "" || strings.TrimSpace(r.PayableID) == "") {
		return errors.New("payable_type and payable_id are required when store is requested")
	}
	return nil
}

type HandleGatewayCallbackRequest struct {
	Gateway string
	Payload map[string]string
}

// NewHandleGatewayCallbackRequestFromContext collects the gateway redirect
// fields from the form body and the query string. Gateways post
// application/x-www-form-urlencoded bodies; query parameters cover GET
// style redirects.
func NewHandleGatewayCallbackRequestFromContext(ctx echo.Context) (*HandleGatewayCallbackRequest, error) {
	payload := make(map[string]string)

	form, err := ctx.FormParams()
	if err != nil {
		return nil, err
	}
	for key, values := range form {
		if len(values) > 0 {
			payload[key] = values[0]
		}
	}
	for key, values := range ctx.QueryParams() {
		if _, ok := payload[key]; ok {
			continue
		}
		if len(values) > 0 {
			payload[key] = values[0]
		}
	}

	return &HandleGatewayCallbackRequest{
		Gateway: ctx.Param("gateway"),
		Payload: payload,
	}, nil
}

func (r *HandleGatewayCallbackRequest) Validate() error {
	if strings.TrimSpace(r.Gateway) == "" {
		return errors.New("gateway is required")
	}
	if len(r.Payload) == 0 {
		return errors.New("callback payload is required")
	}
	return nil
}

type GetPaymentRequest struct {
	TransactionID string
}

func NewGetPaymentRequestFromContext(ctx echo.Context) (*GetPaymentRequest, error) {
	return &GetPaymentRequest{TransactionID: ctx.Param("transaction_id")}, nil
}

func (r *GetPaymentRequest) Validate() error {
	return validateTransactionID(r.TransactionID)
}

type SettlePaymentRequest struct {
	TransactionID string
}

func NewSettlePaymentRequestFromContext(ctx echo.Context) (*SettlePaymentRequest, error) {
	return &SettlePaymentRequest{TransactionID: ctx.Param("transaction_id")}, nil
}

func (r *SettlePaymentRequest) Validate() error {
	return validateTransactionID(r.TransactionID)
}

type ReversePaymentRequest struct {
	TransactionID string
}

func NewReversePaymentRequestFromContext(ctx echo.Context) (*ReversePaymentRequest, error) {
	return &ReversePaymentRequest{TransactionID: ctx.Param("transaction_id")}, nil
}

func (r *ReversePaymentRequest) Validate() error {
	return validateTransactionID(r.TransactionID)
}

func validateTransactionID(transactionID string) error {
	if strings.TrimSpace(transactionID) == "" {
		return errors.New("transaction_id is required")
	}
	return nil
}

type RedirectResponse struct {
	URL     string            `json:"url"`
	Method  string            `json:"method"`
	Payload map[string]string `json:"payload"`
	Headers map[string]string `json:"headers"`
}

func RedirectToResponse(redirect *gateway.RedirectData) *RedirectResponse {
	if redirect == nil {
		return nil
	}
	return &RedirectResponse{
		URL:     redirect.URL,
		Method:  redirect.Method,
		Payload: fieldsToMap(redirect.Payload),
		Headers: fieldsToMap(redirect.Headers),
	}
}

func fieldsToMap(fields []gateway.Field) map[string]string {
	result := make(map[string]string, len(fields))
	for _, field := range fields {
		result[field.Key] = field.Value
	}
	return result
}

type CreatePaymentResponse struct {
	TransactionID string            `json:"transaction_id"`
	Redirect      *RedirectResponse `json:"redirect,omitempty"`
	Payment       *PaymentResponse  `json:"payment,omitempty"`
}

type CallbackResultResponse struct {
	TransactionID string           `json:"transaction_id"`
	Successful    bool             `json:"successful"`
	Error         string           `json:"error,omitempty"`
	Payment       *PaymentResponse `json:"payment,omitempty"`
}

type OperationResultResponse struct {
	TransactionID string           `json:"transaction_id"`
	Successful    bool             `json:"successful"`
	Error         string           `json:"error,omitempty"`
	Payment       *PaymentResponse `json:"payment,omitempty"`
}

type PaymentResponse struct {
	TransactionID string     `json:"transaction_id"`
	PayableType   string     `json:"payable_type,omitempty"`
	PayableID     string     `json:"payable_id,omitempty"`
	Amount        int64      `json:"amount"`
	Gateway       string     `json:"gateway"`
	Status        string     `json:"status"`
	Error         *string    `json:"error,omitempty"`
	RefNumber     *string    `json:"ref_number,omitempty"`
	CardNumber    *string    `json:"card_number,omitempty"`
	VerifiedAt    *time.Time `json:"verified_at,omitempty"`
	SettledAt     *time.Time `json:"settled_at,omitempty"`
	ReversedAt    *time.Time `json:"reversed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func PaymentToResponse(payment *entity.Payment) *PaymentResponse {
	if payment == nil {
		return nil
	}
	return &PaymentResponse{
		TransactionID: payment.TransactionID,
		PayableType:   payment.PayableType,
		PayableID:     payment.PayableID,
		Amount:        payment.Amount,
		Gateway:       payment.Gateway,
		Status:        payment.Status,
		Error:         payment.Error,
		RefNumber:     payment.RefNumber,
		CardNumber:    payment.CardNumber,
		VerifiedAt:    payment.VerifiedAt,
		SettledAt:     payment.SettledAt,
		ReversedAt:    payment.ReversedAt,
		CreatedAt:     payment.CreatedAt,
	}
}
