package types

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/vibast-solutions/ms-go-iranpay/app/gateway"
)

func TestCreatePaymentRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     CreatePaymentRequest
		wantErr bool
	}{
		{name: "valid", req: CreatePaymentRequest{Amount: 1000}},
		{name: "zero amount", req: CreatePaymentRequest{Amount: 0}, wantErr: true},
		{name: "negative amount", req: CreatePaymentRequest{Amount: -5}, wantErr: true},
		{name: "store without payable", req: CreatePaymentRequest{Amount: 1000, Store: true}, wantErr: true},
		{name: "store with payable", req: CreatePaymentRequest{Amount: 1000, Store: true, PayableType: "order", PayableID: "42"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestHandleGatewayCallbackRequestCollectsFormAndQuery(t *testing.T) {
	e := echo.New()
	form := url.Values{"RefId": {"abc"}, "ResCode": {"0"}}
	req := httptest.NewRequest(http.MethodPost, "/payments/callback/behpardakht?SaleOrderId=123&ResCode=9", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	ctx := e.NewContext(req, httptest.NewRecorder())
	ctx.SetParamNames("gateway")
	ctx.SetParamValues("behpardakht")

	parsed, err := NewHandleGatewayCallbackRequestFromContext(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.Gateway != "behpardakht" {
		t.Fatalf("unexpected gateway: %s", parsed.Gateway)
	}
	if parsed.Payload["RefId"] != "abc" {
		t.Fatalf("unexpected payload: %v", parsed.Payload)
	}
	if parsed.Payload["SaleOrderId"] != "123" {
		t.Fatalf("expected query parameter to be collected: %v", parsed.Payload)
	}
	// The form body wins when a key appears in both places.
	if parsed.Payload["ResCode"] != "0" {
		t.Fatalf("expected the form value to win: %v", parsed.Payload)
	}
}

func TestHandleGatewayCallbackRequestValidate(t *testing.T) {
	req := &HandleGatewayCallbackRequest{Gateway: "", Payload: map[string]string{"a": "b"}}
	if err := req.Validate(); err == nil {
		t.Fatal("expected error for missing gateway")
	}

	req = &HandleGatewayCallbackRequest{Gateway: "behpardakht", Payload: map[string]string{}}
	if err := req.Validate(); err == nil {
		t.Fatal("expected error for empty payload")
	}

	req = &HandleGatewayCallbackRequest{Gateway: "behpardakht", Payload: map[string]string{"ResCode": "0"}}
	if err := req.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTransactionIDRequests(t *testing.T) {
	if err := (&GetPaymentRequest{}).Validate(); err == nil {
		t.Fatal("expected error for missing transaction_id")
	}
	if err := (&SettlePaymentRequest{TransactionID: "123"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (&ReversePaymentRequest{TransactionID: " "}).Validate(); err == nil {
		t.Fatal("expected error for blank transaction_id")
	}
}

func TestRedirectToResponse(t *testing.T) {
	if RedirectToResponse(nil) != nil {
		t.Fatal("expected nil for nil redirect")
	}

	redirect := RedirectToResponse(&gateway.RedirectData{
		URL:     "https://bpm.shaparak.ir/pgwchannel/startpay.mellat",
		Method:  "POST",
		Payload: []gateway.Field{{Key: "RefId", Value: "abc"}},
		Headers: []gateway.Field{{Key: "Referer", Value: "http://myapp.com"}},
	})
	if redirect.URL != "https://bpm.shaparak.ir/pgwchannel/startpay.mellat" || redirect.Method != "POST" {
		t.Fatalf("unexpected redirect: %+v", redirect)
	}
	if redirect.Payload["RefId"] != "abc" {
		t.Fatalf("unexpected payload: %v", redirect.Payload)
	}
	if redirect.Headers["Referer"] != "http://myapp.com" {
		t.Fatalf("unexpected headers: %v", redirect.Headers)
	}
}
