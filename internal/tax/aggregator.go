package tax

import (
	"sort"

	"github.com/taxpj/backend/internal/domain"
)

var monthNames = []string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// GroupByMonth partitions transactions into competence-month buckets and
// computes each bucket's summary under Lucro Presumido. Transactions whose
// date cannot yield a month key are dropped from every aggregate but remain
// untouched in the caller's raw list.
//
// Net IRPJ is computed on the month's summed totals, not per transaction:
// one redemption's excess IRRF offsets another's IRPJ within the same month.
func GroupByMonth(txs []domain.Transaction) []domain.MonthlyGroup {
	buckets := make(map[string][]domain.Transaction)
	for _, tx := range txs {
		key, ok := tx.Date.MonthKey()
		if !ok {
			continue
		}
		buckets[key] = append(buckets[key], tx)
	}

	groups := make([]domain.MonthlyGroup, 0, len(buckets))
	for key, members := range buckets {
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].Date < members[j].Date
		})
		groups = append(groups, domain.MonthlyGroup{
			MonthYear:    key,
			Label:        monthLabel(key),
			Transactions: members,
			Stats:        monthStats(members),
		})
	}

	// Ascending by year then month; the components are zero-padded so plain
	// string comparison orders them correctly.
	sort.Slice(groups, func(i, j int) bool {
		yi, mi := groups[i].MonthYear[3:], groups[i].MonthYear[:2]
		yj, mj := groups[j].MonthYear[3:], groups[j].MonthYear[:2]
		if yi != yj {
			return yi < yj
		}
		return mi < mj
	})

	return groups
}

func monthStats(txs []domain.Transaction) domain.DashboardStats {
	var stats domain.DashboardStats
	var grossIRPJ, surcharge float64

	for _, tx := range txs {
		switch tx.EntryType {
		case domain.EntryApplication:
			stats.TotalInvested += tx.Amount
		case domain.EntryRedemption:
			calc, err := Calculate(tx, domain.RegimeLucroPresumido)
			if err != nil {
				continue
			}
			stats.TotalYield += calc.GrossYield
			stats.TotalIRRF += calc.IRRFAmount
			grossIRPJ += calc.IRPJBase
			surcharge += calc.IRPJSurcharge
			stats.TotalCSLL += calc.CSLLAmount
		}
	}

	netIRPJ := grossIRPJ + surcharge - stats.TotalIRRF
	if netIRPJ < 0 {
		netIRPJ = 0
	}
	stats.TotalIRPJ = netIRPJ
	stats.FinalTaxBalance = netIRPJ + stats.TotalCSLL
	return stats
}

// GlobalStats reduces the monthly summaries by simple addition. Because each
// month nets its own IRPJ first, this is not the same as netting across the
// whole period.
func GlobalStats(groups []domain.MonthlyGroup) domain.DashboardStats {
	var total domain.DashboardStats
	for _, g := range groups {
		total.TotalInvested += g.Stats.TotalInvested
		total.TotalYield += g.Stats.TotalYield
		total.TotalIRRF += g.Stats.TotalIRRF
		total.TotalIRPJ += g.Stats.TotalIRPJ
		total.TotalCSLL += g.Stats.TotalCSLL
		total.FinalTaxBalance += g.Stats.FinalTaxBalance
	}
	return total
}

func monthLabel(key string) string {
	// key is MM/YYYY with zero-padded month.
	m := int(key[0]-'0')*10 + int(key[1]-'0')
	if m < 1 || m > 12 {
		return key
	}
	return monthNames[m-1] + " de " + key[3:]
}
