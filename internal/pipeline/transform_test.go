package pipeline

import (
	"errors"
	"testing"

	"github.com/taxpj/backend/internal/domain"
)

func rawOutput(txs ...map[string]interface{}) map[string]interface{} {
	items := make([]interface{}, len(txs))
	for i, tx := range txs {
		items[i] = tx
	}
	return map[string]interface{}{
		"isValidLayout": true,
		"detectedBank":  "BANCO DO BRASIL",
		"transactions":  items,
	}
}

func TestExtractionToTransactions(t *testing.T) {
	raw := rawOutput(map[string]interface{}{
		"date":         "20240115",
		"description":  "rf ref di plus ágil",
		"amount":       -1000.0,
		"yield":        80.0,
		"irrfRetained": 12.0,
		"iof":          0.0,
		"entryType":    "REDEMPTION",
	})

	txs, err := ExtractionToTransactions(raw, domain.LayoutBancoDoBrasil, "imp1")
	if err != nil {
		t.Fatalf("ExtractionToTransactions() error = %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("got %d transactions, want 1", len(txs))
	}

	tx := txs[0]
	if tx.Amount != 1000 {
		t.Errorf("amount = %v, want 1000 (absolute value)", tx.Amount)
	}
	if tx.Description != "RF REF DI PLUS ÁGIL" {
		t.Errorf("description = %q, want uppercased", tx.Description)
	}
	if tx.EntryType != domain.EntryRedemption || tx.Type != domain.TxCredit {
		t.Errorf("entry = %s/%s, want REDEMPTION/CREDIT", tx.EntryType, tx.Type)
	}
	if tx.Yield != 80 || tx.IRRFRetained != 12 || tx.IOF != 0 {
		t.Errorf("components = %v/%v/%v", tx.Yield, tx.IRRFRetained, tx.IOF)
	}
	if tx.ProfileID != domain.ProfilePending {
		t.Errorf("profileId = %q, want PENDING", tx.ProfileID)
	}
	if tx.ImportID != "imp1" {
		t.Errorf("importId = %q, want imp1", tx.ImportID)
	}
	if tx.ID == "" {
		t.Error("transaction id not assigned")
	}
}

func TestExtractionToTransactions_EntryTypeCoercion(t *testing.T) {
	tests := []struct {
		entry string
		want  domain.EntryType
	}{
		{"APPLICATION", domain.EntryApplication},
		{"REDEMPTION", domain.EntryRedemption},
		// Unrecognized values silently become REDEMPTION.
		{"WITHDRAWAL", domain.EntryRedemption},
		{"application", domain.EntryRedemption},
	}

	for _, tt := range tests {
		t.Run(tt.entry, func(t *testing.T) {
			raw := rawOutput(map[string]interface{}{
				"date":      "20240115",
				"amount":    10.0,
				"entryType": tt.entry,
			})
			txs, err := ExtractionToTransactions(raw, domain.LayoutGeneric, "imp1")
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if txs[0].EntryType != tt.want {
				t.Errorf("entryType = %s, want %s", txs[0].EntryType, tt.want)
			}
		})
	}
}

func TestExtractionToTransactions_DefaultDescriptions(t *testing.T) {
	raw := rawOutput(
		map[string]interface{}{"date": "20240115", "amount": 10.0, "entryType": "APPLICATION"},
		map[string]interface{}{"date": "20240115", "amount": 10.0, "entryType": "REDEMPTION"},
	)
	txs, err := ExtractionToTransactions(raw, domain.LayoutGeneric, "imp1")
	if err != nil {
		t.Fatalf("error = %v", err)
	}
	if txs[0].Description != "APLICAÇÃO" {
		t.Errorf("application description = %q", txs[0].Description)
	}
	if txs[1].Description != "RESGATE/RENDIMENTO" {
		t.Errorf("redemption description = %q", txs[1].Description)
	}
}

func TestExtractionToTransactions_LayoutMismatch(t *testing.T) {
	raw := map[string]interface{}{
		"isValidLayout": false,
		"detectedBank":  "ITAÚ",
		"transactions":  []interface{}{},
	}

	_, err := ExtractionToTransactions(raw, domain.LayoutBancoDoBrasil, "imp1")
	var mismatch *domain.LayoutMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("error = %v, want LayoutMismatchError", err)
	}
	if mismatch.Detected != "ITAÚ" {
		t.Errorf("detected = %q, want ITAÚ", mismatch.Detected)
	}

	// The generic layout never triggers the mismatch check.
	_, err = ExtractionToTransactions(raw, domain.LayoutGeneric, "imp1")
	if err != domain.ErrNoTransactions {
		t.Errorf("generic layout error = %v, want ErrNoTransactions", err)
	}
}

func TestExtractionToTransactions_Empty(t *testing.T) {
	raw := map[string]interface{}{
		"isValidLayout": true,
		"transactions":  []interface{}{},
	}
	if _, err := ExtractionToTransactions(raw, domain.LayoutGeneric, "imp1"); err != domain.ErrNoTransactions {
		t.Fatalf("error = %v, want ErrNoTransactions", err)
	}
}

func TestExtractionToTransactions_ShapeViolations(t *testing.T) {
	tests := []struct {
		name string
		tx   map[string]interface{}
	}{
		{"missing date", map[string]interface{}{"amount": 10.0, "entryType": "REDEMPTION"}},
		{"missing amount", map[string]interface{}{"date": "20240115", "entryType": "REDEMPTION"}},
		{"missing entryType", map[string]interface{}{"date": "20240115", "amount": 10.0}},
		{"non-numeric amount", map[string]interface{}{"date": "20240115", "amount": "10", "entryType": "REDEMPTION"}},
		{"non-numeric yield", map[string]interface{}{"date": "20240115", "amount": 10.0, "yield": "80", "entryType": "REDEMPTION"}},
		{"non-string date", map[string]interface{}{"date": 20240115.0, "amount": 10.0, "entryType": "REDEMPTION"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractionToTransactions(rawOutput(tt.tx), domain.LayoutGeneric, "imp1")
			var upstream *domain.UpstreamError
			if !errors.As(err, &upstream) {
				t.Fatalf("error = %v, want UpstreamError", err)
			}
		})
	}
}

func TestExtractionToTransactions_OptionalNumbersDefaultToZero(t *testing.T) {
	raw := rawOutput(map[string]interface{}{
		"date":      "20240115",
		"amount":    10.0,
		"entryType": "REDEMPTION",
		// yield, irrfRetained, iof absent
	})
	txs, err := ExtractionToTransactions(raw, domain.LayoutGeneric, "imp1")
	if err != nil {
		t.Fatalf("error = %v", err)
	}
	tx := txs[0]
	if tx.Yield != 0 || tx.IRRFRetained != 0 || tx.IOF != 0 {
		t.Errorf("optional components = %v/%v/%v, want zeros", tx.Yield, tx.IRRFRetained, tx.IOF)
	}
}

func TestCleanModelJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"fenced no lang", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding prose", "Here you go: {\"a\":1} hope it helps", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanModelJSON(tt.input); got != tt.want {
				t.Errorf("cleanModelJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}
