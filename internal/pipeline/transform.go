package pipeline

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/taxpj/backend/internal/domain"
)

// ExtractionToTransactions validates the raw model output and converts it
// into canonical transactions. Layout and emptiness checks come first:
// a non-generic layout hint that the model flags as invalid is a
// LayoutMismatchError, and an empty transaction list is ErrNoTransactions.
// Any other shape violation is an UpstreamError rather than a silent default.
func ExtractionToTransactions(raw map[string]interface{}, layout domain.LayoutType, importID string) ([]domain.Transaction, error) {
	if valid, ok := raw["isValidLayout"].(bool); ok && !valid && layout != domain.LayoutGeneric {
		detected, _ := raw["detectedBank"].(string)
		return nil, &domain.LayoutMismatchError{Requested: layout, Detected: detected}
	}

	txAny, ok := raw["transactions"]
	if !ok {
		return nil, domain.Upstream("transform", fmt.Errorf("missing 'transactions' key in model output"))
	}
	txSlice, ok := txAny.([]interface{})
	if !ok {
		return nil, domain.Upstream("transform", fmt.Errorf("'transactions' is %T, want array", txAny))
	}
	if len(txSlice) == 0 {
		return nil, domain.ErrNoTransactions
	}

	result := make([]domain.Transaction, 0, len(txSlice))
	for i, item := range txSlice {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, domain.Upstream("transform", fmt.Errorf("element %d is %T, want object", i, item))
		}

		tx, err := transactionFromObject(obj, importID)
		if err != nil {
			return nil, domain.Upstream("transform", fmt.Errorf("transaction %d: %w", i, err))
		}
		result = append(result, tx)
	}

	return result, nil
}

func transactionFromObject(obj map[string]interface{}, importID string) (domain.Transaction, error) {
	dateStr, err := getStringField(obj, "date", true)
	if err != nil {
		return domain.Transaction{}, err
	}
	entryStr, err := getStringField(obj, "entryType", true)
	if err != nil {
		return domain.Transaction{}, err
	}
	desc, err := getStringField(obj, "description", false)
	if err != nil {
		return domain.Transaction{}, err
	}

	amount, err := getMoneyField(obj, "amount", true)
	if err != nil {
		return domain.Transaction{}, err
	}
	yield, err := getMoneyField(obj, "yield", false)
	if err != nil {
		return domain.Transaction{}, err
	}
	irrf, err := getMoneyField(obj, "irrfRetained", false)
	if err != nil {
		return domain.Transaction{}, err
	}
	iof, err := getMoneyField(obj, "iof", false)
	if err != nil {
		return domain.Transaction{}, err
	}

	// Only an exact APPLICATION match counts; any other value falls back to
	// REDEMPTION. Deliberately preserved from the reference behavior.
	entryType := domain.EntryRedemption
	if entryStr == string(domain.EntryApplication) {
		entryType = domain.EntryApplication
	}

	if desc == "" {
		if entryType == domain.EntryApplication {
			desc = "APLICAÇÃO"
		} else {
			desc = "RESGATE/RENDIMENTO"
		}
	}

	return domain.Transaction{
		ID:             uuid.NewString(),
		ImportID:       importID,
		ProfileID:      domain.ProfilePending,
		SourceFileName: "EXTRATO",
		Date:           domain.Date(dateStr),
		Description:    strings.ToUpper(desc),
		Amount:         amount,
		Type:           domain.TypeFor(entryType),
		EntryType:      entryType,
		AssetType:      domain.AssetRendaFixa,
		Yield:          yield,
		IRRFRetained:   irrf,
		IOF:            iof,
	}, nil
}

func getStringField(m map[string]interface{}, key string, required bool) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		if required {
			return "", fmt.Errorf("missing required field %q", key)
		}
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q has type %T, want string", key, v)
	}
	return strings.TrimSpace(s), nil
}

// getMoneyField reads a monetary magnitude: absent optional values are zero,
// present values must be numeric and are coerced to their absolute value.
func getMoneyField(m map[string]interface{}, key string, required bool) (float64, error) {
	v, ok := m[key]
	if !ok || v == nil {
		if required {
			return 0, fmt.Errorf("missing required field %q", key)
		}
		return 0, nil
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("field %q has type %T, want number", key, v)
	}
	return math.Abs(f), nil
}
