// Package handlers implements the HTTP API: profile management, statement
// imports (synchronous and queued), the transaction log, and the derived
// reports.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/taxpj/backend/internal/api/middleware"
	"github.com/taxpj/backend/internal/archive"
	"github.com/taxpj/backend/internal/domain"
	"github.com/taxpj/backend/internal/export"
	"github.com/taxpj/backend/internal/jobs"
	"github.com/taxpj/backend/internal/ledger"
	"github.com/taxpj/backend/internal/pipeline"
	"github.com/taxpj/backend/internal/profiles"
	"github.com/taxpj/backend/internal/state"
	"github.com/taxpj/backend/internal/tax"
)

// maxUploadBytes bounds one import request (all files together).
const maxUploadBytes = 64 << 20

// statusForError maps the domain error kinds onto HTTP status codes.
func statusForError(err error) int {
	var layoutErr *domain.LayoutMismatchError
	var upstreamErr *domain.UpstreamError

	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrFileRead):
		return http.StatusBadRequest
	case errors.As(err, &layoutErr), errors.Is(err, domain.ErrNoTransactions):
		return http.StatusUnprocessableEntity
	case errors.As(err, &upstreamErr):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrRegimeNotImplemented):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// ProfilesHandler handles configuration profile endpoints.
type ProfilesHandler struct {
	store *profiles.Store
	log   zerolog.Logger
}

// NewProfilesHandler creates a new profiles handler.
func NewProfilesHandler(store *profiles.Store, log zerolog.Logger) *ProfilesHandler {
	return &ProfilesHandler{store: store, log: log}
}

// List handles GET /api/profiles
func (h *ProfilesHandler) List(w http.ResponseWriter, r *http.Request) {
	list := h.store.List(r.Context())
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"profiles": list,
		"count":    len(list),
	})
}

// Save handles POST /api/profiles (create) and PUT /api/profiles/{id} (update).
func (h *ProfilesHandler) Save(w http.ResponseWriter, r *http.Request, id string) {
	var p domain.ConfigProfile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "corpo da requisição inválido")
		return
	}
	p.ID = id

	saved, err := h.store.Save(r.Context(), p)
	if err != nil {
		middleware.WriteError(w, statusForError(err), err.Error())
		return
	}

	status := http.StatusOK
	if id == "" {
		status = http.StatusCreated
	}
	middleware.WriteJSON(w, status, saved)
}

// Delete handles DELETE /api/profiles/{id}
func (h *ProfilesHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Delete(r.Context(), id); err != nil {
		middleware.WriteError(w, statusForError(err), err.Error())
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

// Clear handles DELETE /api/profiles
func (h *ProfilesHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Clear(r.Context()); err != nil {
		middleware.WriteError(w, statusForError(err), err.Error())
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// ImportsHandler handles statement import endpoints.
type ImportsHandler struct {
	importer  *pipeline.Importer
	txStore   *state.TransactionStore
	profiles  *profiles.Store
	publisher jobs.Publisher
	archiver  archive.Archiver
	log       zerolog.Logger
}

// NewImportsHandler creates a new imports handler.
func NewImportsHandler(importer *pipeline.Importer, txStore *state.TransactionStore, profileStore *profiles.Store, publisher jobs.Publisher, archiver archive.Archiver, log zerolog.Logger) *ImportsHandler {
	return &ImportsHandler{
		importer:  importer,
		txStore:   txStore,
		profiles:  profileStore,
		publisher: publisher,
		archiver:  archiver,
		log:       log,
	}
}

// readUpload parses the multipart form and returns the target profile plus
// the uploaded files in form order.
func (h *ImportsHandler) readUpload(w http.ResponseWriter, r *http.Request) (domain.ConfigProfile, []pipeline.Document, bool) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "formulário multipart inválido")
		return domain.ConfigProfile{}, nil, false
	}

	profileID := r.FormValue("profileId")
	if profileID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "profileId é obrigatório")
		return domain.ConfigProfile{}, nil, false
	}
	profile, ok := h.profiles.Find(r.Context(), profileID)
	if !ok {
		middleware.WriteError(w, http.StatusNotFound, "perfil não encontrado: "+profileID)
		return domain.ConfigProfile{}, nil, false
	}

	fileHeaders := r.MultipartForm.File["files"]
	if len(fileHeaders) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "nenhum arquivo enviado")
		return domain.ConfigProfile{}, nil, false
	}

	docs := make([]pipeline.Document, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		data, err := readMultipartFile(fh)
		if err != nil {
			h.log.Error().Err(err).Str("file", fh.Filename).Msg("failed to read uploaded file")
			middleware.WriteError(w, http.StatusBadRequest, domain.ErrFileRead.Error())
			return domain.ConfigProfile{}, nil, false
		}
		docs = append(docs, pipeline.Document{
			Name:     fh.Filename,
			MIMEType: fh.Header.Get("Content-Type"),
			Data:     data,
		})
	}
	return profile, docs, true
}

func readMultipartFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()
	return io.ReadAll(f)
}

// Import handles POST /api/imports: runs the batch inline and commits the
// transactions on success.
func (h *ImportsHandler) Import(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profile, docs, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	txs, err := h.importer.ImportBatch(ctx, docs, profile)
	if err != nil {
		h.log.Error().Err(err).Str("profile_id", profile.ID).Msg("import batch failed")
		middleware.WriteError(w, statusForError(err), err.Error())
		return
	}

	h.txStore.Append(txs)

	importID := txs[0].ImportID
	uris := h.archiveBatch(r, importID, docs)

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"importId":     importID,
		"count":        len(txs),
		"transactions": txs,
		"archiveUris":  uris,
	})
}

// archiveBatch stores the original files, best effort.
func (h *ImportsHandler) archiveBatch(r *http.Request, importID string, docs []pipeline.Document) []string {
	var uris []string
	for _, doc := range docs {
		uri, err := h.archiver.Archive(r.Context(), importID, doc.Name, doc.Data)
		if err != nil {
			h.log.Warn().Err(err).Str("file", doc.Name).Msg("failed to archive statement")
			continue
		}
		if uri != "" {
			uris = append(uris, uri)
		}
	}
	return uris
}

// ImportAsync handles POST /api/imports/async: enqueues the batch and
// returns the job ID for polling.
func (h *ImportsHandler) ImportAsync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profile, docs, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	job := &jobs.ImportStatementJob{ProfileID: profile.ID}
	for _, doc := range docs {
		job.Files = append(job.Files, jobs.StatementFile{Name: doc.Name, Data: doc.Data})
	}

	if err := h.publisher.PublishImportStatement(ctx, job); err != nil {
		h.log.Error().Err(err).Msg("failed to enqueue import job")
		middleware.WriteError(w, http.StatusServiceUnavailable, "fila de importação indisponível")
		return
	}

	middleware.WriteJSON(w, http.StatusAccepted, map[string]interface{}{
		"jobId":  job.JobID,
		"status": job.Status,
		"files":  len(job.Files),
	})
}

// TransactionsHandler handles the in-memory transaction log endpoints.
type TransactionsHandler struct {
	txStore *state.TransactionStore
	log     zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(txStore *state.TransactionStore, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{txStore: txStore, log: log}
}

// List handles GET /api/transactions
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	txs := h.txStore.List()
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": txs,
		"count":        len(txs),
	})
}

// Clear handles DELETE /api/transactions
func (h *TransactionsHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.txStore.Clear()
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// ReportsHandler serves the derived views: monthly tax summaries, ledger
// entries, and the accounting-system export.
type ReportsHandler struct {
	txStore  *state.TransactionStore
	profiles *profiles.Store
	log      zerolog.Logger
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(txStore *state.TransactionStore, profileStore *profiles.Store, log zerolog.Logger) *ReportsHandler {
	return &ReportsHandler{txStore: txStore, profiles: profileStore, log: log}
}

// Monthly handles GET /api/reports/monthly
func (h *ReportsHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	if regime := r.URL.Query().Get("regime"); regime != "" && domain.Regime(regime) != domain.RegimeLucroPresumido {
		middleware.WriteError(w, http.StatusNotImplemented, domain.ErrRegimeNotImplemented.Error())
		return
	}

	groups := tax.GroupByMonth(h.txStore.List())
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"months": groups,
		"stats":  tax.GlobalStats(groups),
	})
}

// Ledger handles GET /api/reports/ledger
func (h *ReportsHandler) Ledger(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	entries := ledger.ProjectAll(h.txStore.List(), func(id string) (domain.ConfigProfile, bool) {
		return h.profiles.Find(ctx, id)
	})
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"count":   len(entries),
	})
}

// Export handles GET /api/reports/export, returning the semicolon-separated
// file consumed by the accounting system.
func (h *ReportsHandler) Export(w http.ResponseWriter, r *http.Request) {
	content := export.Dominio(h.txStore.List())

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="relatorio_impostos_dominio.csv"`)
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, content)
}

// JobsHandler handles job status endpoints.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{store: store, log: log}
}

// Get handles GET /api/jobs/{id}
func (h *JobsHandler) Get(w http.ResponseWriter, r *http.Request, jobID string) {
	job, err := h.store.GetJob(r.Context(), jobID)
	if err != nil {
		middleware.WriteError(w, http.StatusNotFound, "job não encontrado: "+jobID)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, job)
}

// List handles GET /api/jobs
func (h *JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := jobs.JobFilter{
		ImportID: r.URL.Query().Get("import_id"),
		Status:   jobs.JobStatus(r.URL.Query().Get("status")),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	list, err := h.store.ListJobs(r.Context(), filter)
	if err != nil {
		middleware.WriteError(w, http.StatusInternalServerError, "falha ao listar jobs")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  list,
		"count": len(list),
	})
}
