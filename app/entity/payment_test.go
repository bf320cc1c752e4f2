package entity

import (
	"testing"
	"time"
)

func TestAddRawResponseCreatesLogWhenEmpty(t *testing.T) {
	now := time.Date(2025, 12, 10, 18, 30, 10, 0, time.UTC)
	payment := &Payment{}

	payment.AddRawResponse("create", map[string]any{"key": "value"}, now)

	entry, ok := payment.RawResponses["create_20251210183010"]
	if !ok {
		t.Fatalf("expected create_20251210183010 entry, got %v", payment.RawResponses)
	}
	response, ok := entry.(map[string]any)
	if !ok || response["key"] != "value" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestAddRawResponseDoesNotOverwriteExistingEntries(t *testing.T) {
	now := time.Date(2025, 12, 10, 18, 30, 10, 0, time.UTC)
	payment := &Payment{
		RawResponses: map[string]any{"old_key": "old_value"},
	}

	payment.AddRawResponse("verify", "0", now)

	if payment.RawResponses["old_key"] != "old_value" {
		t.Fatal("existing entry was overwritten")
	}
	if payment.RawResponses["verify_20251210183010"] != "0" {
		t.Fatalf("expected verify entry, got %v", payment.RawResponses)
	}
}

func TestAddRawResponseKeysRepeatedOperationsByTimestamp(t *testing.T) {
	payment := &Payment{}

	payment.AddRawResponse("verify", "first", time.Date(2025, 12, 10, 18, 30, 10, 0, time.UTC))
	payment.AddRawResponse("verify", "second", time.Date(2025, 12, 10, 18, 30, 20, 0, time.UTC))

	if len(payment.RawResponses) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(payment.RawResponses))
	}
	if payment.RawResponses["verify_20251210183010"] != "first" || payment.RawResponses["verify_20251210183020"] != "second" {
		t.Fatalf("unexpected log: %v", payment.RawResponses)
	}
}
