package gateway

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vibast-solutions/ms-go-iranpay/app/gateway/soap"
)

// Based on version 1.38 of the Behpardakht (Mellat) IPG documentation.
const (
	behpardakhtWSDLURL            = "https://bpm.shaparak.ir/pgwchannel/services/pgw?wsdl"
	behpardakhtRedirectURL        = "https://bpm.shaparak.ir/pgwchannel/startpay.mellat"
	behpardakhtSandboxWSDLURL     = "https://pgw.dev.bpmellat.ir/pgwchannel/services/pgw?wsdl"
	behpardakhtSandboxRedirectURL = "https://pgw.dev.bpmellat.ir/pgwchannel/startpay.mellat"
)

const behpardakhtGateway = "behpardakht"

type BehpardakhtConfig struct {
	TerminalID  string
	Username    string
	Password    string
	CallbackURL string

	// RefererURL is sent as the Referer header of the redirect form POST.
	RefererURL string

	UseSandbox bool

	// NoCallbackReverseFails makes a no-callback reversal report failure
	// instead of the default assume-auto-reversed success.
	NoCallbackReverseFails bool
}

// Behpardakht drives the Mellat bank internet payment gateway over its SOAP
// API. Instances carry per-transaction state and must not be shared.
type Behpardakht struct {
	cfg    BehpardakhtConfig
	client soap.Client
	clock  Clock
	idgen  *UniqueNumberGenerator
	tehran *time.Location

	orderID    string
	amount     int64
	refID      string
	mobile     string
	cartItem   string
	response   string
	statusCode string
	raw        any
	created    bool

	callback   map[string]string
	refNumber  string
	cardNumber string

	noCallback bool
}

func NewBehpardakht(cfg BehpardakhtConfig, client soap.Client, clock Clock) *Behpardakht {
	if clock == nil {
		clock = SystemClock()
	}

	tehran, err := time.LoadLocation("Asia/Tehran")
	if err != nil {
		tehran = time.FixedZone("Asia/Tehran", int((3*time.Hour + 30*time.Minute).Seconds()))
	}

	return &Behpardakht{
		cfg:    cfg,
		client: client,
		clock:  clock,
		idgen:  NewUniqueNumberGenerator(clock),
		tehran: tehran,
	}
}

func (b *Behpardakht) Name() string { return behpardakhtGateway }

func (b *Behpardakht) DefaultCallbackURL() string { return b.cfg.CallbackURL }

// CreatePayment issues a bpPayRequest and, on a "0,RefId" response, keeps
// the reference ID needed for the redirect form.
func (b *Behpardakht) CreatePayment(ctx context.Context, callbackURL string, amount int64, description, phone string) error {
	b.amount = amount
	b.orderID = b.idgen.Generate()
	b.cartItem = description
	b.mobile = ""
	if phone != "" {
		b.mobile = behpardakhtPhone(phone)
	}

	now := b.clock.Now().In(b.tehran)
	params := []soap.Param{
		{Name: "terminalId", Value: atoiOrZero(b.cfg.TerminalID)},
		{Name: "userName", Value: b.cfg.Username},
		{Name: "userPassword", Value: b.cfg.Password},
		{Name: "orderId", Value: atoiOrZero(b.orderID)},
		{Name: "amount", Value: amount},
		{Name: "localDate", Value: now.Format("20060102")},
		{Name: "localTime", Value: now.Format("150405")},
		{Name: "additionalData", Value: description},
		{Name: "callBackUrl", Value: callbackURL},
		{Name: "payerId", Value: 0},
	}
	if b.mobile != "" {
		params = append(params, soap.Param{Name: "mobileNo", Value: b.mobile})
	}
	if b.cartItem != "" {
		params = append(params, soap.Param{Name: "cartItem", Value: b.cartItem})
	}

	response, err := b.client.Call(ctx, b.wsdlURL(), "bpPayRequest", params)
	if err != nil {
		return err
	}

	b.setResponse(response)
	if _, after, ok := strings.Cut(response, ","); ok {
		b.refID = after
	}
	b.created = true
	return nil
}

func (b *Behpardakht) Successful() bool {
	if b.noCallback && b.statusCode == noCallbackReverseCode {
		return !b.cfg.NoCallbackReverseFails
	}
	return b.statusCode == behpardakhtStatusOK
}

func (b *Behpardakht) StatusCode() string { return b.statusCode }

func (b *Behpardakht) StatusMessage() string {
	if b.noCallback {
		if message, ok := noCallbackMessages[b.statusCode]; ok {
			return message
		}
	}
	return behpardakhtStatusMessage(b.statusCode)
}

func (b *Behpardakht) RawResponse() any { return b.raw }

// VerifyPayment cross-checks the callback against the stored payload and,
// for an accepted callback, confirms the transaction with bpVerifyRequest.
// A failed callback status short-circuits without any API call.
func (b *Behpardakht) VerifyPayment(ctx context.Context, storedPayload map[string]any) error {
	if b.noCallback {
		b.applyNoCallback(noCallbackVerifyCode)
		return nil
	}

	if resCode := b.callback["ResCode"]; resCode != behpardakhtStatusOK {
		b.statusCode = resCode
		b.raw = b.callback
		return nil
	}

	if err := b.matchCallback(storedPayload); err != nil {
		return err
	}

	return b.confirm(ctx, "bpVerifyRequest")
}

// SettlePayment issues a bpSettleRequest for the verified transaction.
func (b *Behpardakht) SettlePayment(ctx context.Context) error {
	if b.noCallback {
		b.applyNoCallback(noCallbackSettleCode)
		return nil
	}
	return b.confirm(ctx, "bpSettleRequest")
}

// ReversePayment issues a bpReversalRequest. In no-callback mode the
// gateway auto-reverses unsettled transactions, so the default outcome is
// success without any API call.
func (b *Behpardakht) ReversePayment(ctx context.Context) error {
	if b.noCallback {
		b.applyNoCallback(noCallbackReverseCode)
		return nil
	}
	return b.confirm(ctx, "bpReversalRequest")
}

// FromCallback builds a fresh driver primed with the gateway's redirect
// payload. RefId, ResCode and SaleOrderId must all be present.
func (b *Behpardakht) FromCallback(payload map[string]string) (Driver, error) {
	for _, key := range []string{"RefId", "ResCode", "SaleOrderId"} {
		if _, ok := payload[key]; !ok {
			return nil, fmt.Errorf("%w: to create behpardakht gateway instance from callback, \"RefId, ResCode, SaleOrderId\" are required. %q is missing", ErrMissingCallbackData, key)
		}
	}

	clone := b.fresh()
	clone.callback = payload
	clone.orderID = payload["SaleOrderId"]
	clone.refID = payload["RefId"]
	clone.refNumber = payload["SaleReferenceId"]
	clone.cardNumber = payload["CardHolderInfo"]
	return clone, nil
}

// NoCallback builds a degraded-mode driver for a transaction whose callback
// data is unavailable.
func (b *Behpardakht) NoCallback(transactionID string) Driver {
	clone := b.fresh()
	clone.orderID = transactionID
	clone.noCallback = true
	return clone
}

func (b *Behpardakht) TransactionID() string { return b.orderID }

func (b *Behpardakht) GatewayPayload() map[string]any {
	if !b.created || !b.Successful() {
		return nil
	}
	return map[string]any{
		"orderId": b.orderID,
		"amount":  b.amount,
		"refId":   b.refID,
	}
}

func (b *Behpardakht) RedirectData() *RedirectData {
	if !b.created || !b.Successful() {
		return nil
	}

	payload := []Field{{Key: "RefId", Value: b.refID}}
	if b.mobile != "" {
		payload = append(payload, Field{Key: "MobileNo", Value: b.mobile})
	}
	if b.cartItem != "" {
		payload = append(payload, Field{Key: "CartItem", Value: b.cartItem})
	}

	return &RedirectData{
		URL:     b.redirectURL(),
		Method:  "POST",
		Payload: payload,
		Headers: []Field{
			{Key: "Content-Type", Value: "application/x-www-form-urlencoded"},
			{Key: "Referer", Value: b.cfg.RefererURL},
		},
	}
}

func (b *Behpardakht) RefNumber() string { return b.refNumber }

func (b *Behpardakht) CardNumber() string { return b.cardNumber }

// confirm runs the shared verify/settle/reverse RPC shape against the
// transaction identified by the callback.
func (b *Behpardakht) confirm(ctx context.Context, method string) error {
	params := []soap.Param{
		{Name: "terminalId", Value: atoiOrZero(b.cfg.TerminalID)},
		{Name: "userName", Value: b.cfg.Username},
		{Name: "userPassword", Value: b.cfg.Password},
		{Name: "orderId", Value: atoiOrZero(b.orderID)},
		{Name: "saleOrderId", Value: atoiOrZero(b.orderID)},
		{Name: "saleReferenceId", Value: atoiOrZero(b.refNumber)},
	}

	response, err := b.client.Call(ctx, b.wsdlURL(), method, params)
	if err != nil {
		return err
	}

	b.setResponse(response)
	return nil
}

// matchCallback cross-checks callback fields against the payload stored at
// creation time. FinalAmount is only checked when the gateway sent it.
func (b *Behpardakht) matchCallback(storedPayload map[string]any) error {
	checks := []struct {
		payloadKey  string
		callbackKey string
		optional    bool
	}{
		{payloadKey: "orderId", callbackKey: "SaleOrderId"},
		{payloadKey: "amount", callbackKey: "FinalAmount", optional: true},
		{payloadKey: "refId", callbackKey: "RefId"},
	}

	for _, check := range checks {
		callbackValue, ok := b.callback[check.callbackKey]
		if !ok && check.optional {
			continue
		}
		if !ok || payloadString(storedPayload[check.payloadKey]) != callbackValue {
			return fmt.Errorf("%w: %q in the callback does not match with %q in the stored gateway payload", ErrInvalidCallbackData, check.callbackKey, check.payloadKey)
		}
	}
	return nil
}

func (b *Behpardakht) setResponse(response string) {
	b.response = response
	b.raw = response
	b.statusCode, _, _ = strings.Cut(response, ",")
}

func (b *Behpardakht) applyNoCallback(statusCode string) {
	b.statusCode = statusCode
	b.response = noCallbackRawResponse
	b.raw = noCallbackRawResponse
}

func (b *Behpardakht) fresh() *Behpardakht {
	return NewBehpardakht(b.cfg, b.client, b.clock)
}

func (b *Behpardakht) wsdlURL() string {
	if b.cfg.UseSandbox {
		return behpardakhtSandboxWSDLURL
	}
	return behpardakhtWSDLURL
}

func (b *Behpardakht) redirectURL() string {
	if b.cfg.UseSandbox {
		return behpardakhtSandboxRedirectURL
	}
	return behpardakhtRedirectURL
}

// behpardakhtPhone canonicalizes an Iranian phone number to the
// 98XXXXXXXXXX format the gateway expects.
func behpardakhtPhone(phone string) string {
	switch {
	case strings.HasPrefix(phone, "09"):
		return "98" + phone[1:]
	case strings.HasPrefix(phone, "+98"):
		return phone[1:]
	case strings.HasPrefix(phone, "9809"):
		return "989" + phone[4:]
	case strings.HasPrefix(phone, "9") && !strings.HasPrefix(phone, "98"):
		return "98" + phone
	default:
		return phone
	}
}

// payloadString renders a stored payload value for comparison against the
// string form the gateway posts back. JSON decoding turns stored integers
// into float64, so integral floats are formatted without an exponent.
func payloadString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	default:
		return fmt.Sprint(v)
	}
}

func atoiOrZero(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
