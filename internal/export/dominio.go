// Package export renders the one-way Domínio report: a semicolon-delimited
// table of redemption tax calculations.
package export

import (
	"fmt"
	"strings"

	"github.com/taxpj/backend/internal/domain"
	"github.com/taxpj/backend/internal/tax"
)

// Header is the fixed first line of the report.
const Header = "Data;Historico;Rendimento_Bruto;IRRF_Extrato;IRPJ_15;CSLL_9;DARF_Final"

// Dominio renders the report for every redemption in txs under Lucro
// Presumido. Dates are reformatted DD/MM/YYYY and monetary fields fixed to
// two decimals — the only place display rounding happens. The report is not
// meant to be reparsed.
func Dominio(txs []domain.Transaction) string {
	var b strings.Builder
	b.WriteString(Header)
	b.WriteByte('\n')

	for _, tx := range txs {
		if tx.EntryType != domain.EntryRedemption {
			continue
		}
		calc, err := tax.Calculate(tx, domain.RegimeLucroPresumido)
		if err != nil {
			continue
		}

		fmt.Fprintf(&b, "%s;%s;%.2f;%.2f;%.2f;%.2f;%.2f\n",
			tx.Date.Display(),
			tx.Description,
			calc.GrossYield,
			calc.IRRFAmount,
			calc.IRPJBase,
			calc.CSLLAmount,
			calc.NetToPay,
		)
	}

	return b.String()
}
