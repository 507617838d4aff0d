package notionsync

import (
	"github.com/jomei/notionapi"

	"github.com/taxpj/backend/internal/domain"
)

// MonthlyGroupToProperties converts one competence month into Notion page
// properties. The "Competência" title (MM/YYYY) is the idempotency key the
// sync matches existing pages on.
func MonthlyGroupToProperties(group domain.MonthlyGroup) notionapi.Properties {
	props := notionapi.Properties{
		"Competência": notionapi.TitleProperty{
			Title: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: group.MonthYear,
					},
				},
			},
		},
		"Rendimento Bruto": notionapi.NumberProperty{
			Number: group.Stats.TotalYield,
		},
		"IRRF Retido": notionapi.NumberProperty{
			Number: group.Stats.TotalIRRF,
		},
		"IRPJ a Pagar": notionapi.NumberProperty{
			Number: group.Stats.TotalIRPJ,
		},
		"CSLL": notionapi.NumberProperty{
			Number: group.Stats.TotalCSLL,
		},
		"DARF": notionapi.NumberProperty{
			Number: group.Stats.FinalTaxBalance,
		},
		"Lançamentos": notionapi.NumberProperty{
			Number: float64(len(group.Transactions)),
		},
	}

	if group.Label != "" {
		props["Período"] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: group.Label,
					},
				},
			},
		}
	}

	return props
}

// extractMonthKey pulls the competence key (MM/YYYY) out of a synced page.
func extractMonthKey(page notionapi.Page) string {
	prop, ok := page.Properties["Competência"]
	if !ok {
		return ""
	}
	title, ok := prop.(*notionapi.TitleProperty)
	if !ok || len(title.Title) == 0 {
		return ""
	}
	return title.Title[0].PlainText
}
