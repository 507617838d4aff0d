package notionsync

import (
	"context"
	"testing"

	"github.com/jomei/notionapi"

	"github.com/taxpj/backend/internal/domain"
)

type mockNotion struct {
	pages []notionapi.Page

	created  []notionapi.Properties
	updated  map[string]notionapi.Properties
	archived []string
}

func newMockNotion(pages ...notionapi.Page) *mockNotion {
	return &mockNotion{pages: pages, updated: map[string]notionapi.Properties{}}
}

func (m *mockNotion) CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error) {
	m.created = append(m.created, properties)
	return &notionapi.Page{}, nil
}

func (m *mockNotion) UpdatePage(ctx context.Context, pageID string, properties notionapi.Properties) (*notionapi.Page, error) {
	m.updated[pageID] = properties
	return &notionapi.Page{}, nil
}

func (m *mockNotion) QueryDatabase(ctx context.Context, databaseID string, filter *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	return &notionapi.DatabaseQueryResponse{Results: m.pages}, nil
}

func (m *mockNotion) DeletePage(ctx context.Context, pageID string) error {
	m.archived = append(m.archived, pageID)
	return nil
}

func monthPage(id, month string) notionapi.Page {
	return notionapi.Page{
		ID: notionapi.ObjectID(id),
		Properties: notionapi.Properties{
			"Competência": &notionapi.TitleProperty{
				Title: []notionapi.RichText{{PlainText: month}},
			},
		},
	}
}

func summaryGroup(month string) domain.MonthlyGroup {
	return domain.MonthlyGroup{
		MonthYear: month,
		Label:     "Janeiro de 2024",
		Stats: domain.DashboardStats{
			TotalYield:      80,
			TotalIRRF:       12,
			TotalIRPJ:       0,
			TotalCSLL:       7.2,
			FinalTaxBalance: 7.2,
		},
	}
}

func TestSyncMonthlySummaries_CreatesMissingMonth(t *testing.T) {
	mock := newMockNotion()

	err := SyncMonthlySummaries(context.Background(), mock, "db", []domain.MonthlyGroup{summaryGroup("01/2024")}, false)
	if err != nil {
		t.Fatalf("SyncMonthlySummaries() error = %v", err)
	}

	if len(mock.created) != 1 {
		t.Fatalf("created %d pages, want 1", len(mock.created))
	}
	if len(mock.updated) != 0 || len(mock.archived) != 0 {
		t.Errorf("unexpected updates %v or archivals %v", mock.updated, mock.archived)
	}
}

func TestSyncMonthlySummaries_UpdatesExistingMonth(t *testing.T) {
	mock := newMockNotion(monthPage("page-1", "01/2024"))

	err := SyncMonthlySummaries(context.Background(), mock, "db", []domain.MonthlyGroup{summaryGroup("01/2024")}, false)
	if err != nil {
		t.Fatalf("SyncMonthlySummaries() error = %v", err)
	}

	if len(mock.created) != 0 {
		t.Errorf("created %d pages, want 0", len(mock.created))
	}
	if _, ok := mock.updated["page-1"]; !ok {
		t.Error("existing page was not updated")
	}
}

func TestSyncMonthlySummaries_ArchivesStaleMonth(t *testing.T) {
	mock := newMockNotion(monthPage("page-old", "12/2023"))

	err := SyncMonthlySummaries(context.Background(), mock, "db", []domain.MonthlyGroup{summaryGroup("01/2024")}, false)
	if err != nil {
		t.Fatalf("SyncMonthlySummaries() error = %v", err)
	}

	if len(mock.archived) != 1 || mock.archived[0] != "page-old" {
		t.Errorf("archived = %v, want [page-old]", mock.archived)
	}
	if len(mock.created) != 1 {
		t.Errorf("created %d pages, want 1", len(mock.created))
	}
}

func TestSyncMonthlySummaries_DryRunTouchesNothing(t *testing.T) {
	mock := newMockNotion(monthPage("page-old", "12/2023"))

	err := SyncMonthlySummaries(context.Background(), mock, "db", []domain.MonthlyGroup{summaryGroup("01/2024")}, true)
	if err != nil {
		t.Fatalf("SyncMonthlySummaries() error = %v", err)
	}

	if len(mock.created) != 0 || len(mock.updated) != 0 || len(mock.archived) != 0 {
		t.Errorf("dry run mutated Notion: %v %v %v", mock.created, mock.updated, mock.archived)
	}
}

func TestMonthlyGroupToProperties(t *testing.T) {
	props := MonthlyGroupToProperties(summaryGroup("01/2024"))

	title, ok := props["Competência"].(notionapi.TitleProperty)
	if !ok || len(title.Title) == 0 || title.Title[0].Text.Content != "01/2024" {
		t.Fatalf("Competência property = %+v", props["Competência"])
	}

	darf, ok := props["DARF"].(notionapi.NumberProperty)
	if !ok || darf.Number != 7.2 {
		t.Errorf("DARF property = %+v", props["DARF"])
	}

	if _, ok := props["Período"].(notionapi.RichTextProperty); !ok {
		t.Errorf("Período property missing: %+v", props)
	}
}
