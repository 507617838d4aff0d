package pipeline

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/taxpj/backend/internal/domain"
)

// ParseBBLayout extracts transactions from the fixed-width Banco do Brasil
// return-file layout. Only lines of at least 100 characters whose record
// type (first character) is '1' carry transactions. Field positions:
//
//	[42:45)  category code ('2' prefix marks variable income)
//	[80:86)  date as DDMMYY, normalized to YYYYMMDD in the 2000s
//	[86:104) amount in integer cents
//	[135:150) posting reference, appended to the description
//
// Sign convention and the 10% yield estimate match the OFX adapter.
func ParseBBLayout(content string) []domain.Transaction {
	var txs []domain.Transaction

	for _, line := range strings.Split(content, "\n") {
		if len(line) < 100 || line[0] != '1' {
			continue
		}

		date := line[80:86]
		amountRaw := strings.TrimSpace(line[86:104])
		category := strings.TrimSpace(line[42:45])

		amount, err := strconv.ParseFloat(amountRaw, 64)
		if err != nil {
			amount = 0
		}
		amount /= 100
		if amount == 0 {
			continue
		}

		assetType := domain.AssetRendaFixa
		if strings.HasPrefix(category, "2") {
			assetType = domain.AssetRendaVariavel
		}

		entryType := domain.EntryApplication
		if amount > 0 {
			entryType = domain.EntryRedemption
		}

		magnitude := amount
		if magnitude < 0 {
			magnitude = -magnitude
		}

		txs = append(txs, domain.Transaction{
			ID:             uuid.NewString(),
			ImportID:       domain.ProfileInternalBB,
			ProfileID:      domain.ProfileInternalBB,
			SourceFileName: "BB_LAYOUT_IMPORT",
			Date:           domain.Date("20" + date[4:6] + date[2:4] + date[0:2]),
			Description:    "BB CATEG " + category + " - LANC " + postingRef(line),
			Amount:         magnitude,
			Type:           domain.TypeFor(entryType),
			EntryType:      entryType,
			AssetType:      assetType,
			Yield:          magnitude * yieldEstimateRate,
		})
	}

	return txs
}

// postingRef reads the [135:150) reference field, tolerating lines shorter
// than the full record length.
func postingRef(line string) string {
	if len(line) <= 135 {
		return ""
	}
	end := 150
	if end > len(line) {
		end = len(line)
	}
	return strings.TrimSpace(line[135:end])
}
