package soap

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrStrayRequest is returned when the client is configured to prevent
// outgoing calls and something still tries to reach a gateway.
var ErrStrayRequest = errors.New("stray request")

// Param is a single named argument of a gateway call. Order matters to the
// bank endpoints, so parameters travel as a slice rather than a map.
type Param struct {
	Name  string
	Value any
}

// Client is the transport used to talk to a bank gateway. One call, one
// blocking round-trip; connection failures propagate unchanged.
type Client interface {
	Call(ctx context.Context, endpoint, method string, params []Param) (string, error)
}

type Config struct {
	Timeout              time.Duration
	PreventStrayRequests bool
}

type HTTPClient struct {
	cfg    Config
	client *http.Client
}

func NewHTTPClient(cfg Config) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &HTTPClient{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Call(ctx context.Context, endpoint, method string, params []Param) (string, error) {
	if c.cfg.PreventStrayRequests {
		return "", fmt.Errorf("%w: attempted request to %q without a matching fake", ErrStrayRequest, endpoint)
	}

	envelope := buildEnvelope(method, params)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(envelope))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", method)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("gateway request failed: method=%s status=%d body=%s", method, resp.StatusCode, string(body))
	}

	return extractReturn(body)
}

func buildEnvelope(method string, params []Param) string {
	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString(`<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">`)
	b.WriteString("<soapenv:Body>")
	b.WriteString("<" + method + ">")
	for _, param := range params {
		b.WriteString("<" + param.Name + ">")
		_ = xml.EscapeText(&b, []byte(fmt.Sprint(param.Value)))
		b.WriteString("</" + param.Name + ">")
	}
	b.WriteString("</" + method + ">")
	b.WriteString("</soapenv:Body>")
	b.WriteString("</soapenv:Envelope>")
	return b.String()
}

// extractReturn pulls the character data of the first `return` element out
// of a response envelope. Every method on the bank endpoints answers with a
// single string result.
func extractReturn(body []byte) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(string(body)))
	inReturn := false
	var value strings.Builder

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "return" {
				inReturn = true
			}
		case xml.EndElement:
			if t.Name.Local == "return" && inReturn {
				return value.String(), nil
			}
		case xml.CharData:
			if inReturn {
				value.Write(t)
			}
		}
	}

	return "", errors.New("gateway response has no return element")
}
