package domain

import "strings"

// LayoutType names a known statement layout. The external model receives it
// as a hint; GENERIC_INVESTMENT disables the layout-mismatch check.
type LayoutType string

const (
	LayoutBradescoInvestFacil LayoutType = "BRADESCO_INVEST_FACIL"
	LayoutCaixaFICGiro        LayoutType = "CAIXA_FIC_GIRO"
	LayoutBancoDoBrasil       LayoutType = "BANCO_DO_BRASIL_INVEST"
	LayoutGeneric             LayoutType = "GENERIC_INVESTMENT"
)

// KnownLayouts lists every accepted layout tag, used by input validation.
var KnownLayouts = []LayoutType{
	LayoutBradescoInvestFacil,
	LayoutCaixaFICGiro,
	LayoutBancoDoBrasil,
	LayoutGeneric,
}

// ConfigProfile maps a statement layout to the chart-of-accounts codes used
// by the ledger projector: the bank's cash account, the investment asset
// account and the revenue account for yield.
type ConfigProfile struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	BankCode      string     `json:"bankCode"`
	AssetCode     string     `json:"assetCode"`
	LiabilityCode string     `json:"liabilityCode"`
	LayoutType    LayoutType `json:"layoutType"`
}

// Validate reports ErrInvalidInput when any required field is missing or the
// layout tag is unknown.
func (p ConfigProfile) Validate() error {
	if p.Name == "" || p.BankCode == "" || p.AssetCode == "" || p.LiabilityCode == "" || p.LayoutType == "" {
		return ErrInvalidInput
	}
	for _, l := range KnownLayouts {
		if p.LayoutType == l {
			return nil
		}
	}
	return ErrInvalidInput
}

// BankName returns the display name a layout implies, used to prefill
// profile names.
func (l LayoutType) BankName() string {
	switch l {
	case LayoutBradescoInvestFacil:
		return "BRADESCO"
	case LayoutCaixaFICGiro:
		return "CAIXA ECONÔMICA"
	case LayoutBancoDoBrasil:
		return "BANCO DO BRASIL"
	case LayoutGeneric:
		return "OUTROS"
	}
	return strings.ReplaceAll(string(l), "_", " ")
}

// RemovedProfile is the placeholder substituted when a transaction references
// a profile that was deleted. Ledger rendering must keep working in that case.
func RemovedProfile() ConfigProfile {
	return ConfigProfile{
		Name:          "BANCO REMOVIDO",
		BankCode:      "?",
		AssetCode:     "?",
		LiabilityCode: "?",
	}
}
