// Package pipeline turns raw statement files into canonical transactions.
// Three format adapters share the output contract: a regex-based OFX reader,
// a fixed-width Banco do Brasil layout reader, and an external-model
// extractor for PDFs and images.
package pipeline

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/taxpj/backend/internal/domain"
	"github.com/taxpj/backend/internal/logger"
)

// Importer runs import batches against a statement parser.
type Importer struct {
	parser StatementParser
}

// NewImporter wires an Importer to the given parser.
func NewImporter(parser StatementParser) *Importer {
	return &Importer{parser: parser}
}

// ImportBatch processes the files strictly in order, one at a time, and
// returns every extracted transaction stamped with the batch's import ID and
// the owning profile. The first failing file aborts the remainder of the
// batch; nothing extracted so far is committed by this function, the caller
// decides what to do with the partial slice it never sees.
func (imp *Importer) ImportBatch(ctx context.Context, files []Document, profile domain.ConfigProfile) ([]domain.Transaction, error) {
	log := logger.FromContext(ctx)
	importID := uuid.NewString()

	var all []domain.Transaction
	for _, file := range files {
		txs, err := imp.importFile(ctx, log, file, profile, importID)
		if err != nil {
			return nil, err
		}
		all = append(all, txs...)
	}

	if len(all) == 0 {
		return nil, domain.ErrNoTransactions
	}

	log.Info().
		Str("import_id", importID).
		Int("files", len(files)).
		Int("transactions", len(all)).
		Msg("import batch completed")

	return all, nil
}

func (imp *Importer) importFile(ctx context.Context, log zerolog.Logger, file Document, profile domain.ConfigProfile, importID string) ([]domain.Transaction, error) {
	var txs []domain.Transaction

	switch {
	case isOFX(file):
		txs = ParseOFX(string(file.Data))
	case isBBReturnFile(file):
		txs = ParseBBLayout(string(file.Data))
	default:
		raw, err := imp.parser.ParseStatement(ctx, file, profile.LayoutType)
		if err != nil {
			return nil, err
		}
		txs, err = ExtractionToTransactions(raw, profile.LayoutType, importID)
		if err != nil {
			return nil, err
		}
	}

	log.Debug().
		Str("file", file.Name).
		Int("transactions", len(txs)).
		Msg("file extracted")

	// The batch owns the final binding, but only the external-model path
	// leaves records pending; the text adapters keep their internal
	// sentinel profile.
	for i := range txs {
		txs[i].ImportID = importID
		txs[i].SourceFileName = file.Name
		if txs[i].ProfileID == domain.ProfilePending {
			txs[i].ProfileID = profile.ID
		}
	}

	return txs, nil
}

func isOFX(file Document) bool {
	if strings.HasSuffix(strings.ToLower(file.Name), ".ofx") {
		return true
	}
	head := string(file.Data)
	if len(head) > 512 {
		head = head[:512]
	}
	upper := strings.ToUpper(head)
	return strings.Contains(upper, "OFXHEADER") || strings.Contains(upper, "<OFX>")
}

func isBBReturnFile(file Document) bool {
	name := strings.ToLower(file.Name)
	return strings.HasSuffix(name, ".ret") || strings.HasSuffix(name, ".rem")
}
