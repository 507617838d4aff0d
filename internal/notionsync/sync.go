package notionsync

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"

	"github.com/taxpj/backend/internal/domain"
	"github.com/taxpj/backend/internal/logger"
)

// SyncMonthlySummaries mirrors the given monthly groups into the Notion
// database. Pages are keyed by the "Competência" title (MM/YYYY): existing
// months are updated, missing ones created, and pages for months no longer
// present are archived so the database always matches the current ledger.
func SyncMonthlySummaries(ctx context.Context, client NotionService, databaseID string, groups []domain.MonthlyGroup, dryRun bool) error {
	log := logger.FromContext(ctx)

	log.Info().
		Int("months", len(groups)).
		Bool("dry_run", dryRun).
		Msg("starting monthly summary sync to Notion")

	pages, err := queryAllPages(ctx, client, databaseID)
	if err != nil {
		return fmt.Errorf("query Notion pages: %w", err)
	}

	existing := make(map[string]string, len(pages))
	for _, page := range pages {
		if key := extractMonthKey(page); key != "" {
			existing[key] = string(page.ID)
		}
	}

	valid := make(map[string]bool, len(groups))
	for _, group := range groups {
		valid[group.MonthYear] = true
	}

	var deleted int
	for _, page := range pages {
		key := extractMonthKey(page)
		if key != "" && valid[key] {
			continue
		}
		if dryRun {
			log.Info().
				Str("month", key).
				Str("page_id", string(page.ID)).
				Msg("[DRY RUN] would archive stale Notion page")
			deleted++
			continue
		}
		if err := client.DeletePage(ctx, string(page.ID)); err != nil {
			log.Warn().
				Err(err).
				Str("month", key).
				Str("page_id", string(page.ID)).
				Msg("failed to archive stale Notion page")
			continue
		}
		deleted++
	}

	var created, updated int
	for _, group := range groups {
		props := MonthlyGroupToProperties(group)

		if pageID, ok := existing[group.MonthYear]; ok {
			if dryRun {
				log.Info().Str("month", group.MonthYear).Msg("[DRY RUN] would update Notion page")
				updated++
				continue
			}
			if _, err := client.UpdatePage(ctx, pageID, props); err != nil {
				return fmt.Errorf("update page for %s: %w", group.MonthYear, err)
			}
			updated++
			continue
		}

		if dryRun {
			log.Info().Str("month", group.MonthYear).Msg("[DRY RUN] would create Notion page")
			created++
			continue
		}
		if _, err := client.CreatePage(ctx, databaseID, props); err != nil {
			return fmt.Errorf("create page for %s: %w", group.MonthYear, err)
		}
		created++
	}

	log.Info().
		Int("created", created).
		Int("updated", updated).
		Int("archived", deleted).
		Msg("monthly summary sync completed")

	return nil
}

// queryAllPages pages through the database and returns every page.
func queryAllPages(ctx context.Context, client NotionService, databaseID string) ([]notionapi.Page, error) {
	var allPages []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{
			PageSize: 100,
		}
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := client.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, err
		}

		allPages = append(allPages, resp.Results...)

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	return allPages, nil
}
