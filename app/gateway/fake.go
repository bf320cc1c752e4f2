package gateway

import (
	"context"
	"errors"
	"fmt"
)

type fakeBehavior struct {
	successful        bool
	errorCode         string
	errorMessage      string
	rawResponse       any
	connectionFailure string
}

// FakeDriver is a scripted driver for tests and local development. Each API
// method plays back the behavior configured for it; calling a method with
// no configured behavior is an error wrapping ErrBehaviorNotConfigured.
//
// Register it with ScopeSession so the instance configured by the test is
// the one the application resolves.
type FakeDriver struct {
	gateway string
	idgen   *UniqueNumberGenerator

	behaviors map[string]fakeBehavior

	successful   bool
	errorCode    string
	errorMessage string
	rawResponse  any

	transactionID  string
	gatewayPayload map[string]any
	redirectData   *RedirectData
	refNumber      string
	cardNumber     string

	invalidCallbackMessage string
}

func NewFakeDriver(gateway string) *FakeDriver {
	return &FakeDriver{
		gateway:   gateway,
		idgen:     NewUniqueNumberGenerator(nil),
		behaviors: make(map[string]fakeBehavior),
	}
}

func (f *FakeDriver) SuccessfulCreate(rawResponse any, gatewayPayload map[string]any, redirectData *RedirectData) *FakeDriver {
	if rawResponse == nil {
		rawResponse = "Creation raw response"
	}
	if gatewayPayload == nil {
		gatewayPayload = map[string]any{"payload": "test value"}
	}
	if redirectData == nil {
		redirectData = &RedirectData{
			URL:     "https://gateway.test",
			Method:  "POST",
			Payload: []Field{{Key: "status", Value: "successful"}},
			Headers: []Field{{Key: "X-Iranpay-Fake", Value: "true"}},
		}
	}

	f.behaviors[operationCreate] = fakeBehavior{successful: true, rawResponse: rawResponse}
	f.gatewayPayload = gatewayPayload
	f.redirectData = redirectData
	f.transactionID = f.idgen.Generate()
	return f
}

func (f *FakeDriver) FailedCreate(rawResponse any, errorCode, errorMessage string) *FakeDriver {
	f.behaviors[operationCreate] = failedBehavior(rawResponse, "Creation raw response", errorCode, errorMessage, "Creation failed")
	return f
}

func (f *FakeDriver) FailedConnectionCreate(message string) *FakeDriver {
	f.behaviors[operationCreate] = connectionBehavior(message, "Creation connection failed")
	return f
}

func (f *FakeDriver) SuccessfulVerify(rawResponse any, refNumber, cardNumber string) *FakeDriver {
	if rawResponse == nil {
		rawResponse = "Verification raw response"
	}
	if refNumber == "" {
		refNumber = "123456789"
	}
	if cardNumber == "" {
		cardNumber = "1234-****-****-1234"
	}

	f.behaviors[operationVerify] = fakeBehavior{successful: true, rawResponse: rawResponse}
	f.refNumber = refNumber
	f.cardNumber = cardNumber
	return f
}

func (f *FakeDriver) FailedVerify(rawResponse any, errorCode, errorMessage string) *FakeDriver {
	f.behaviors[operationVerify] = failedBehavior(rawResponse, "Verification raw response", errorCode, errorMessage, "Verification failed")
	return f
}

func (f *FakeDriver) FailedConnectionVerify(message string) *FakeDriver {
	f.behaviors[operationVerify] = connectionBehavior(message, "Verification connection failed")
	return f
}

// InvalidCallback makes the next verification fail the callback cross-check
// with the given message.
func (f *FakeDriver) InvalidCallback(message string) *FakeDriver {
	if message == "" {
		message = "Invalid callback data"
	}
	f.invalidCallbackMessage = message
	return f
}

func (f *FakeDriver) SuccessfulSettle(rawResponse any) *FakeDriver {
	if rawResponse == nil {
		rawResponse = "Settlement raw response"
	}
	f.behaviors[operationSettle] = fakeBehavior{successful: true, rawResponse: rawResponse}
	return f
}

func (f *FakeDriver) FailedSettle(rawResponse any, errorCode, errorMessage string) *FakeDriver {
	f.behaviors[operationSettle] = failedBehavior(rawResponse, "Settlement raw response", errorCode, errorMessage, "Settlement failed")
	return f
}

func (f *FakeDriver) FailedConnectionSettle(message string) *FakeDriver {
	f.behaviors[operationSettle] = connectionBehavior(message, "Settlement connection failed")
	return f
}

func (f *FakeDriver) SuccessfulReverse(rawResponse any) *FakeDriver {
	if rawResponse == nil {
		rawResponse = "Reversal raw response"
	}
	f.behaviors[operationReverse] = fakeBehavior{successful: true, rawResponse: rawResponse}
	return f
}

func (f *FakeDriver) FailedReverse(rawResponse any, errorCode, errorMessage string) *FakeDriver {
	f.behaviors[operationReverse] = failedBehavior(rawResponse, "Reversal raw response", errorCode, errorMessage, "Reversal failed")
	return f
}

func (f *FakeDriver) FailedConnectionReverse(message string) *FakeDriver {
	f.behaviors[operationReverse] = connectionBehavior(message, "Reversal connection failed")
	return f
}

func (f *FakeDriver) Name() string { return f.gateway }

func (f *FakeDriver) DefaultCallbackURL() string { return "" }

func (f *FakeDriver) CreatePayment(ctx context.Context, callbackURL string, amount int64, description, phone string) error {
	return f.applyBehavior(operationCreate)
}

func (f *FakeDriver) Successful() bool { return f.successful }

func (f *FakeDriver) StatusCode() string { return f.errorCode }

func (f *FakeDriver) StatusMessage() string { return f.errorMessage }

func (f *FakeDriver) RawResponse() any { return f.rawResponse }

func (f *FakeDriver) VerifyPayment(ctx context.Context, storedPayload map[string]any) error {
	if f.invalidCallbackMessage != "" {
		return fmt.Errorf("%w: %s", ErrInvalidCallbackData, f.invalidCallbackMessage)
	}
	return f.applyBehavior(operationVerify)
}

func (f *FakeDriver) SettlePayment(ctx context.Context) error {
	return f.applyBehavior(operationSettle)
}

func (f *FakeDriver) ReversePayment(ctx context.Context) error {
	return f.applyBehavior(operationReverse)
}

func (f *FakeDriver) FromCallback(payload map[string]string) (Driver, error) {
	return f, nil
}

func (f *FakeDriver) NoCallback(transactionID string) Driver {
	f.transactionID = transactionID
	return f
}

func (f *FakeDriver) TransactionID() string { return f.transactionID }

func (f *FakeDriver) GatewayPayload() map[string]any { return f.gatewayPayload }

func (f *FakeDriver) RedirectData() *RedirectData { return f.redirectData }

func (f *FakeDriver) RefNumber() string { return f.refNumber }

func (f *FakeDriver) CardNumber() string { return f.cardNumber }

func (f *FakeDriver) applyBehavior(operation string) error {
	behavior, ok := f.behaviors[operation]
	if !ok {
		return fmt.Errorf("%w: no behavior has been configured for the %q method on the fake driver %q", ErrBehaviorNotConfigured, operation, f.gateway)
	}

	if behavior.connectionFailure != "" {
		return errors.New(behavior.connectionFailure)
	}

	f.successful = behavior.successful
	f.errorCode = behavior.errorCode
	f.errorMessage = behavior.errorMessage
	f.rawResponse = behavior.rawResponse
	return nil
}

func failedBehavior(rawResponse any, defaultRaw, errorCode, errorMessage, defaultMessage string) fakeBehavior {
	if rawResponse == nil {
		rawResponse = defaultRaw
	}
	if errorCode == "" {
		errorCode = "0"
	}
	if errorMessage == "" {
		errorMessage = defaultMessage
	}
	return fakeBehavior{errorCode: errorCode, errorMessage: errorMessage, rawResponse: rawResponse}
}

func connectionBehavior(message, defaultMessage string) fakeBehavior {
	if message == "" {
		message = defaultMessage
	}
	return fakeBehavior{connectionFailure: message}
}
