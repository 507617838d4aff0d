// Package ledger expands canonical transactions into double-entry
// bookkeeping lines using a bank profile's chart-of-accounts codes.
package ledger

import (
	"strings"

	"github.com/taxpj/backend/internal/domain"
)

// Fixed chart-of-accounts codes for the tax-side counterparties of a
// redemption: yield revenue offset, withheld IRRF and IOF.
const (
	accountIRRF  = "806"
	accountYield = "807"
	accountIOF   = "808"
)

// Entry is one double-entry bookkeeping line.
type Entry struct {
	TransactionID string  `json:"transactionId"`
	Date          string  `json:"date"` // DD/MM/YYYY
	Debit         string  `json:"debit"`
	Credit        string  `json:"credit"`
	History       string  `json:"history"`
	Amount        float64 `json:"amount"`
}

// Project expands one transaction into its ledger lines. An application is a
// single asset/bank line; a redemption emits the principal line always, plus
// yield, IRRF and IOF lines when those amounts are non-zero. Projection never
// fails: callers with a dangling profile reference pass the placeholder from
// domain.RemovedProfile.
func Project(tx domain.Transaction, profile domain.ConfigProfile) []Entry {
	assetName := strings.ToUpper(tx.Description)
	if assetName == "" {
		assetName = "APLICAÇÃO FINANCEIRA"
	}
	bankName := strings.ToUpper(profile.Name)

	monthYear := ""
	if len(tx.Date) == 8 {
		if key, ok := tx.Date.MonthKey(); ok {
			monthYear = key
		}
	}

	history := func(label string) string {
		return label + " - " + bankName + " - " + assetName + " - " + monthYear
	}

	line := func(debit, credit, label string, amount float64) Entry {
		return Entry{
			TransactionID: tx.ID,
			Date:          tx.Date.Display(),
			Debit:         debit,
			Credit:        credit,
			History:       history(label),
			Amount:        amount,
		}
	}

	if tx.EntryType == domain.EntryApplication {
		return []Entry{
			line(profile.AssetCode, profile.BankCode, "APLICAÇÃO FINANCEIRA", tx.Amount),
		}
	}

	// Principal is back-computed: the credited amount minus the yield it
	// contains, grossed back up by the tax withheld before crediting.
	principal := tx.Amount - tx.Yield + tx.IRRFRetained

	entries := []Entry{
		line(profile.BankCode, profile.AssetCode, "RESGATE DE APLICAÇÃO FINANCEIRA", principal),
	}

	if tx.Yield != 0 {
		entries = append(entries, line(profile.LiabilityCode, accountYield,
			"RENDIMENTO DE RESGATE DE APLICAÇÃO FINANCEIRA", tx.Yield))
	}
	if tx.IRRFRetained != 0 {
		entries = append(entries, line(accountIRRF, profile.BankCode,
			"IRRF RETIDO S/RENDIMENTO DE RESGATE DE APLICAÇÃO FINANCEIRA", tx.IRRFRetained))
	}
	if tx.IOF != 0 {
		entries = append(entries, line(accountIOF, profile.BankCode,
			"IOF S/RENDIMENTO DE RESGATE DE APLICAÇÃO FINANCEIRA", tx.IOF))
	}

	return entries
}

// ProjectAll projects every transaction, resolving its profile through lookup
// and falling back to the removed-bank placeholder.
func ProjectAll(txs []domain.Transaction, lookup func(id string) (domain.ConfigProfile, bool)) []Entry {
	var entries []Entry
	for _, tx := range txs {
		profile, ok := lookup(tx.ProfileID)
		if !ok {
			profile = domain.RemovedProfile()
		}
		entries = append(entries, Project(tx, profile)...)
	}
	return entries
}
