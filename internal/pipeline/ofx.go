package pipeline

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/taxpj/backend/internal/domain"
)

var (
	stmtTrnRe  = regexp.MustCompile(`(?is)<STMTTRN>(.*?)</STMTTRN>`)
	dtPostedRe = regexp.MustCompile(`(?i)<DTPOSTED>([^<]*)`)
	trnAmtRe   = regexp.MustCompile(`(?i)<TRNAMT>([^<]*)`)
	memoRe     = regexp.MustCompile(`(?i)<MEMO>([^<]*)`)
)

// ParseOFX extracts transactions from OFX statement content. Each STMTTRN
// block contributes one transaction; blocks without a date or amount, or with
// a zero amount, are skipped. A positive amount is a redemption, a negative
// one an application; the magnitude is always stored unsigned. OFX carries no
// yield or withholding detail, so yield is estimated at 10% of the movement.
func ParseOFX(content string) []domain.Transaction {
	var txs []domain.Transaction

	for _, match := range stmtTrnRe.FindAllStringSubmatch(content, -1) {
		block := match[1]

		dateMatch := dtPostedRe.FindStringSubmatch(block)
		amountMatch := trnAmtRe.FindStringSubmatch(block)
		if dateMatch == nil || amountMatch == nil {
			continue
		}

		amount, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(amountMatch[1], ",", ".")), 64)
		if err != nil || amount == 0 {
			continue
		}

		desc := "TRANSAÇÃO FINANCEIRA"
		if memoMatch := memoRe.FindStringSubmatch(block); memoMatch != nil && strings.TrimSpace(memoMatch[1]) != "" {
			desc = strings.ToUpper(strings.TrimSpace(memoMatch[1]))
		}

		date := strings.TrimSpace(dateMatch[1])
		if len(date) > 8 {
			date = date[:8]
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
			ImportID:       domain.ProfileInternalOFX,
			ProfileID:      domain.ProfileInternalOFX,
			SourceFileName: "OFX_IMPORT",
			Date:           domain.Date(date),
			Description:    desc,
			Amount:         magnitude,
			Type:           domain.TypeFor(entryType),
			EntryType:      entryType,
			AssetType:      identifyAssetType(desc),
			Yield:          magnitude * yieldEstimateRate,
		})
	}

	return txs
}

// identifyAssetType guesses the asset class from keywords in the statement
// description, defaulting to fixed income.
func identifyAssetType(desc string) domain.AssetType {
	lower := strings.ToLower(desc)
	switch {
	case strings.Contains(lower, "cdb"), strings.Contains(lower, "tesouro"),
		strings.Contains(lower, "lci"), strings.Contains(lower, "lca"):
		return domain.AssetRendaFixa
	case strings.Contains(lower, "ação"), strings.Contains(lower, "stock"),
		strings.Contains(lower, "trade"):
		return domain.AssetRendaVariavel
	case strings.Contains(lower, "fundo"), strings.Contains(lower, "invest"):
		return domain.AssetFundos
	case strings.Contains(lower, "fii"), strings.Contains(lower, "imob"):
		return domain.AssetFII
	case strings.Contains(lower, "jcp"), strings.Contains(lower, "juros s/"):
		return domain.AssetJCP
	}
	return domain.AssetRendaFixa
}
