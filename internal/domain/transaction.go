package domain

// EntryType distinguishes money placed into an investment from money
// withdrawn from it. Redemptions may carry yield and withheld taxes.
type EntryType string

const (
	EntryApplication EntryType = "APPLICATION"
	EntryRedemption  EntryType = "REDEMPTION"
)

// TxType is the bookkeeping direction, derived from the entry type.
type TxType string

const (
	TxCredit TxType = "CREDIT"
	TxDebit  TxType = "DEBIT"
)

// AssetType classifies the investment product behind a movement.
type AssetType string

const (
	AssetRendaFixa     AssetType = "RENDA_FIXA"
	AssetRendaVariavel AssetType = "RENDA_VARIAVEL"
	AssetFundos        AssetType = "FUNDOS_INVESTIMENTO"
	AssetFII           AssetType = "FII"
	AssetJCP           AssetType = "JCP"
)

// Sentinel profile IDs stamped by the format adapters. PENDING is replaced
// by the caller once the owning bank profile is known; the text adapters
// keep their fixed internal IDs.
const (
	ProfilePending     = "PENDING"
	ProfileInternalOFX = "INTERNAL_OFX"
	ProfileInternalBB  = "INTERNAL_BB"
)

// Transaction is the canonical record of one financial movement, as produced
// by any of the format adapters. All monetary fields hold non-negative
// magnitudes; direction lives only in Type/EntryType.
type Transaction struct {
	ID             string    `json:"id"`
	ImportID       string    `json:"importId"`
	ProfileID      string    `json:"profileId"`
	SourceFileName string    `json:"sourceFileName"`
	Date           Date      `json:"date"`
	Description    string    `json:"description"`
	Amount         float64   `json:"amount"`
	Type           TxType    `json:"type"`
	EntryType      EntryType `json:"entryType"`
	AssetType      AssetType `json:"assetType"`

	// Optional components of a redemption, zero when absent.
	Yield        float64 `json:"yield"`
	IRRFRetained float64 `json:"irrfRetained"`
	IOF          float64 `json:"iof"`
}

// TypeFor maps an entry type to its bookkeeping direction: applications
// debit the company (money leaves the bank account), redemptions credit it.
func TypeFor(e EntryType) TxType {
	if e == EntryApplication {
		return TxDebit
	}
	return TxCredit
}
