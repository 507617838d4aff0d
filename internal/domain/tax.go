package domain

// Regime is the corporate tax regime the calculation runs under.
type Regime string

const (
	RegimeLucroPresumido Regime = "LUCRO_PRESUMIDO"
	RegimeLucroReal      Regime = "LUCRO_REAL"
)

// TaxCalculation is derived per redemption transaction and never stored; it
// is recomputed whenever the transaction set changes.
type TaxCalculation struct {
	TransactionID string  `json:"transactionId"`
	GrossYield    float64 `json:"grossYield"`
	IRRFAmount    float64 `json:"irrfAmount"`
	IRPJBase      float64 `json:"irpjBase"`
	IRPJSurcharge float64 `json:"irpjSurcharge"`
	CSLLAmount    float64 `json:"csllAmount"`
	NetToPay      float64 `json:"netToPay"`
	LawReference  string  `json:"lawReference"`
}

// DashboardStats summarizes one competence month (or the whole set).
// TotalIRPJ is the month-netted value: summed gross IRPJ plus surcharge,
// reduced by summed IRRF, floored at zero.
type DashboardStats struct {
	TotalInvested   float64 `json:"totalInvested"`
	TotalYield      float64 `json:"totalYield"`
	TotalIRRF       float64 `json:"totalIRRF"`
	TotalIRPJ       float64 `json:"totalIRPJ"`
	TotalCSLL       float64 `json:"totalCSLL"`
	FinalTaxBalance float64 `json:"finalTaxBalance"`
}

// MonthlyGroup is one competence month's transactions plus its summary.
type MonthlyGroup struct {
	MonthYear    string         `json:"monthYear"` // MM/YYYY
	Label        string         `json:"label"`
	Transactions []Transaction  `json:"transactions"`
	Stats        DashboardStats `json:"stats"`
}
