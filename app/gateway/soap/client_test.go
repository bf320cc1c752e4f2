package soap

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCallSendsEnvelopeAndParsesReturn(t *testing.T) {
	var gotBody string
	var gotAction string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		gotAction = r.Header.Get("SOAPAction")
		_, _ = w.Write([]byte(`<?xml version="1.0"?>
			<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
				<soapenv:Body>
					<ns1:bpPayRequestResponse xmlns:ns1="http://interfaces.core.sw.bps.com/">
						<return>0,AF82041a2Bf6989c7fF9</return>
					</ns1:bpPayRequestResponse>
				</soapenv:Body>
			</soapenv:Envelope>`))
	}))
	defer server.Close()

	client := NewHTTPClient(Config{})
	result, err := client.Call(context.Background(), server.URL, "bpPayRequest", []Param{
		{Name: "terminalId", Value: 1234},
		{Name: "userName", Value: "username"},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result != "0,AF82041a2Bf6989c7fF9" {
		t.Fatalf("unexpected result: %q", result)
	}
	if gotAction != "bpPayRequest" {
		t.Fatalf("unexpected SOAPAction: %q", gotAction)
	}
	if !strings.Contains(gotBody, "<bpPayRequest><terminalId>1234</terminalId><userName>username</userName></bpPayRequest>") {
		t.Fatalf("unexpected request body: %s", gotBody)
	}
}

func TestCallEscapesParameterValues(t *testing.T) {
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		_, _ = w.Write([]byte(`<Envelope><Body><resp><return>0</return></resp></Body></Envelope>`))
	}))
	defer server.Close()

	client := NewHTTPClient(Config{})
	_, err := client.Call(context.Background(), server.URL, "bpPayRequest", []Param{
		{Name: "additionalData", Value: "a<b&c"},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(gotBody, "<additionalData>a&lt;b&amp;c</additionalData>") {
		t.Fatalf("value was not escaped: %s", gotBody)
	}
}

func TestCallFailsOnHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewHTTPClient(Config{})
	_, err := client.Call(context.Background(), server.URL, "bpVerifyRequest", nil)
	if err == nil {
		t.Fatal("expected error for HTTP 500")
	}
}

func TestCallFailsWhenResponseHasNoReturnElement(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<Envelope><Body/></Envelope>`))
	}))
	defer server.Close()

	client := NewHTTPClient(Config{})
	_, err := client.Call(context.Background(), server.URL, "bpPayRequest", nil)
	if err == nil {
		t.Fatal("expected error for missing return element")
	}
}

func TestPreventStrayRequestsFailsFast(t *testing.T) {
	client := NewHTTPClient(Config{PreventStrayRequests: true})

	_, err := client.Call(context.Background(), "https://bpm.shaparak.ir/pgwchannel/services/pgw?wsdl", "bpPayRequest", nil)
	if !errors.Is(err, ErrStrayRequest) {
		t.Fatalf("expected ErrStrayRequest, got %v", err)
	}
	if !strings.Contains(err.Error(), "bpm.shaparak.ir") {
		t.Fatalf("error should name the endpoint: %v", err)
	}
}
