package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/vibast-solutions/ms-go-iranpay/app/controller"
	"github.com/vibast-solutions/ms-go-iranpay/app/entity"
	"github.com/vibast-solutions/ms-go-iranpay/app/gateway"
	"github.com/vibast-solutions/ms-go-iranpay/app/service"
	"github.com/vibast-solutions/ms-go-iranpay/config"
)

type memoryPaymentStore struct {
	records map[string]*entity.Payment
}

func newMemoryPaymentStore() *memoryPaymentStore {
	return &memoryPaymentStore{records: make(map[string]*entity.Payment)}
}

func clonePayment(payment *entity.Payment) *entity.Payment {
	clone := *payment
	return &clone
}

func (s *memoryPaymentStore) Create(ctx context.Context, payment *entity.Payment) error {
	s.records[payment.TransactionID] = clonePayment(payment)
	return nil
}

func (s *memoryPaymentStore) Update(ctx context.Context, payment *entity.Payment) error {
	s.records[payment.TransactionID] = clonePayment(payment)
	return nil
}

func (s *memoryPaymentStore) MarkVerified(ctx context.Context, payment *entity.Payment) error {
	existing, ok := s.records[payment.TransactionID]
	if ok && existing.VerifiedAt != nil {
		return fmt.Errorf("%w: transaction %s", gateway.ErrPaymentAlreadyVerified, payment.TransactionID)
	}
	s.records[payment.TransactionID] = clonePayment(payment)
	return nil
}

func (s *memoryPaymentStore) FindByTransactionID(ctx context.Context, transactionID string) (*entity.Payment, error) {
	record, ok := s.records[transactionID]
	if !ok {
		return nil, nil
	}
	return clonePayment(record), nil
}

func (s *memoryPaymentStore) HasPaymentSchema(ctx context.Context) (bool, error) {
	return true, nil
}

func newTestServer(driver *gateway.FakeDriver) *httptest.Server {
	store := newMemoryPaymentStore()
	registry := gateway.NewRegistry("fake", gateway.Options{
		Store:    store,
		Settings: gateway.Settings{Currency: "Rial", BaseURL: "https://myapp.test"},
	})
	registry.Register("fake", gateway.ScopeSession, func() (gateway.Driver, error) {
		return driver, nil
	})

	svc := service.NewPaymentService(registry, store, config.IranpayConfig{})
	paymentController := controller.NewPaymentController(svc)

	e := echo.New()
	e.HideBanner = true
	e.GET("/health", paymentController.Health)
	payments := e.Group("/payments")
	payments.POST("", paymentController.CreatePayment)
	payments.POST("/callback/:gateway", paymentController.HandleGatewayCallback)
	payments.GET("/:transaction_id", paymentController.GetPayment)
	payments.POST("/:transaction_id/settle", paymentController.SettlePayment)
	payments.POST("/:transaction_id/reverse", paymentController.ReversePayment)

	return httptest.NewServer(e)
}

func postJSON(t *testing.T, client *http.Client, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := client.Post(url, echo.MIMEApplicationJSON, strings.NewReader(body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp, decodeJSON(t, resp)
}

func postForm(t *testing.T, client *http.Client, target string, values url.Values) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := client.PostForm(target, values)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp, decodeJSON(t, resp)
}

func decodeJSON(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	return body
}

func TestPaymentLifecycleOverHTTP(t *testing.T) {
	driver := gateway.NewFakeDriver("fake").
		SuccessfulCreate(nil, nil, nil).
		SuccessfulVerify(nil, "999", "6219-****-****-0000").
		SuccessfulSettle(nil)
	server := newTestServer(driver)
	defer server.Close()
	client := server.Client()

	resp, body := postJSON(t, client, server.URL+"/payments", `{"gateway":"fake","amount":1000,"store":true,"payable_type":"order","payable_id":"42"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %v", resp.StatusCode, body)
	}
	transactionID, _ := body["transaction_id"].(string)
	if transactionID == "" {
		t.Fatalf("expected a transaction ID: %v", body)
	}
	if body["redirect"] == nil {
		t.Fatalf("expected redirect data: %v", body)
	}

	resp, body = postForm(t, client, server.URL+"/payments/callback/fake", url.Values{"ResCode": {"0"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", resp.StatusCode, body)
	}
	if successful, _ := body["successful"].(bool); !successful {
		t.Fatalf("expected successful verification: %v", body)
	}

	getResp, err := client.Get(server.URL + "/payments/" + transactionID)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	payment := decodeJSON(t, getResp)
	if getResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", getResp.StatusCode, payment)
	}
	if payment["status"] != "successful" {
		t.Fatalf("expected successful status: %v", payment)
	}
	if payment["ref_number"] != "999" {
		t.Fatalf("expected ref number: %v", payment)
	}

	resp, body = postForm(t, client, server.URL+"/payments/"+transactionID+"/settle", url.Values{})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", resp.StatusCode, body)
	}
	if successful, _ := body["successful"].(bool); !successful {
		t.Fatalf("expected successful settlement: %v", body)
	}
	if body["payment"] == nil {
		t.Fatalf("expected the settled payment in the response: %v", body)
	}
}

func TestDuplicateCallbackRejectedOverHTTP(t *testing.T) {
	driver := gateway.NewFakeDriver("fake").
		SuccessfulCreate(nil, nil, nil).
		SuccessfulVerify(nil, "", "")
	server := newTestServer(driver)
	defer server.Close()
	client := server.Client()

	resp, body := postJSON(t, client, server.URL+"/payments", `{"amount":1000,"store":true,"payable_type":"order","payable_id":"42"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %v", resp.StatusCode, body)
	}

	resp, _ = postForm(t, client, server.URL+"/payments/callback/fake", url.Values{"ResCode": {"0"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp, body = postForm(t, client, server.URL+"/payments/callback/fake", url.Values{"ResCode": {"0"}})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for a duplicate callback, got %d: %v", resp.StatusCode, body)
	}
}

func TestFailedVerificationReversedOverHTTP(t *testing.T) {
	driver := gateway.NewFakeDriver("fake").
		SuccessfulCreate(nil, nil, nil).
		FailedVerify(nil, "17", "cancelled by user").
		SuccessfulReverse(nil)
	server := newTestServer(driver)
	defer server.Close()
	client := server.Client()

	resp, body := postJSON(t, client, server.URL+"/payments", `{"amount":1000,"store":true,"payable_type":"order","payable_id":"42"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %v", resp.StatusCode, body)
	}
	transactionID, _ := body["transaction_id"].(string)

	resp, body = postForm(t, client, server.URL+"/payments/callback/fake", url.Values{"ResCode": {"17"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", resp.StatusCode, body)
	}
	if successful, _ := body["successful"].(bool); successful {
		t.Fatalf("expected failed verification: %v", body)
	}
	if message, _ := body["error"].(string); message != "code 17- cancelled by user" {
		t.Fatalf("unexpected error message: %v", body)
	}

	resp, body = postForm(t, client, server.URL+"/payments/"+transactionID+"/reverse", url.Values{})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", resp.StatusCode, body)
	}
	if successful, _ := body["successful"].(bool); !successful {
		t.Fatalf("expected successful reversal: %v", body)
	}
}
