package tax

import (
	"github.com/taxpj/backend/internal/domain"
)

// Lucro Presumido rates over gross financial yield. The 10% surcharge
// applies per transaction to the slice of yield above the monthly threshold.
const (
	irpjRate           = 0.15
	csllRate           = 0.09
	surchargeRate      = 0.10
	surchargeThreshold = 20000.0
)

// Law references cited on calculations, constant per asset class.
const (
	LawRendaFixa     = "Lei nº 11.033/2004 - Tabela Regressiva"
	LawFundos        = "Lei nº 14.754/2023 - Nova Lei de Fundos"
	LawRendaVariavel = "Lei nº 9.430/1996 - Ganhos Líquidos"
	LawINRFB         = "IN RFB nº 1.585/2015"
	LawJCP           = "MPV nº 1.303/2025 (Alíquota 20%)"
)

// Calculate derives the tax liability of one redemption transaction under
// the given regime. It is a pure function: absent optional fields count as
// zero and no rounding is applied here; display rounding happens at the
// export/presentation boundary. Callers are responsible for filtering to
// REDEMPTION entries.
//
// Only Lucro Presumido has a computation path. Lucro Real returns
// ErrRegimeNotImplemented rather than an invented formula.
func Calculate(tx domain.Transaction, regime domain.Regime) (domain.TaxCalculation, error) {
	if regime != domain.RegimeLucroPresumido {
		return domain.TaxCalculation{}, domain.ErrRegimeNotImplemented
	}

	grossYield := tx.Yield
	irrf := tx.IRRFRetained

	irpjBase := grossYield * irpjRate
	csll := grossYield * csllRate

	surcharge := 0.0
	if grossYield > surchargeThreshold {
		surcharge = (grossYield - surchargeThreshold) * surchargeRate
	}

	// The withheld IRRF is credited against the 15% IRPJ; the balance on the
	// DARF never goes negative per operation.
	irpjAfterCredit := irpjBase - irrf
	if irpjAfterCredit < 0 {
		irpjAfterCredit = 0
	}

	return domain.TaxCalculation{
		TransactionID: tx.ID,
		GrossYield:    grossYield,
		IRRFAmount:    irrf,
		IRPJBase:      irpjBase,
		IRPJSurcharge: surcharge,
		CSLLAmount:    csll,
		NetToPay:      irpjAfterCredit + surcharge + csll,
		LawReference:  LawRendaFixa,
	}, nil
}
