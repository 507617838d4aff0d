package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/taxpj/backend/internal/archive"
	"github.com/taxpj/backend/internal/domain"
	"github.com/taxpj/backend/internal/jobs/inmemory"
	"github.com/taxpj/backend/internal/pipeline"
	"github.com/taxpj/backend/internal/profiles"
	"github.com/taxpj/backend/internal/state"
)

const sampleOFX = `OFXHEADER:100
<OFX><BANKTRANLIST>
<STMTTRN>
<DTPOSTED>20240115120000
<TRNAMT>500.00
<MEMO>RESGATE CDB DI
</STMTTRN>
</BANKTRANLIST></OFX>`

type fixture struct {
	profiles *profiles.Store
	txStore  *state.TransactionStore
	imports  *ImportsHandler
	reports  *ReportsHandler
	profile  domain.ConfigProfile
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := zerolog.Nop()
	profileStore := profiles.NewStore(profiles.NewFileKV(filepath.Join(t.TempDir(), "profiles.json")))
	txStore := state.NewTransactionStore()
	jobStore := inmemory.NewStore()
	queue := inmemory.NewQueue(4, jobStore)
	t.Cleanup(func() { queue.Close() })

	saved, err := profileStore.Save(t.Context(), domain.ConfigProfile{
		Name:          "Banco do Brasil",
		BankCode:      "1.1.1.01",
		AssetCode:     "1.1.4.01",
		LiabilityCode: "4.1.1.01",
		LayoutType:    domain.LayoutBancoDoBrasil,
	})
	if err != nil {
		t.Fatalf("seed profile: %v", err)
	}

	importer := pipeline.NewImporter(failingParser{})
	return &fixture{
		profiles: profileStore,
		txStore:  txStore,
		imports:  NewImportsHandler(importer, txStore, profileStore, queue, archive.Noop{}, log),
		reports:  NewReportsHandler(txStore, profileStore, log),
		profile:  saved,
	}
}

// failingParser guards that text-format uploads never reach the model path.
type failingParser struct{}

func (failingParser) ParseStatement(ctx context.Context, doc pipeline.Document, layout domain.LayoutType) (map[string]interface{}, error) {
	return nil, domain.Upstream("parse statement", errors.New("model should not be called"))
}

func multipartUpload(t *testing.T, profileID, fileName, content string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("profileId", profileID); err != nil {
		t.Fatal(err)
	}
	fw, err := mw.CreateFormFile("files", fileName)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte(content))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/imports", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestImport_OFXUpload(t *testing.T) {
	fx := newFixture(t)

	rec := httptest.NewRecorder()
	fx.imports.Import(rec, multipartUpload(t, fx.profile.ID, "extrato.ofx", sampleOFX))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		ImportID     string               `json:"importId"`
		Count        int                  `json:"count"`
		Transactions []domain.Transaction `json:"transactions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 1 || resp.ImportID == "" {
		t.Errorf("resp = %+v", resp)
	}
	if fx.txStore.Len() != 1 {
		t.Errorf("transaction log has %d entries, want 1", fx.txStore.Len())
	}
	if resp.Transactions[0].ProfileID != domain.ProfileInternalOFX {
		t.Errorf("ProfileID = %q, want internal OFX sentinel", resp.Transactions[0].ProfileID)
	}
}

func TestImport_UnknownProfile(t *testing.T) {
	fx := newFixture(t)

	rec := httptest.NewRecorder()
	fx.imports.Import(rec, multipartUpload(t, "nao-existe", "extrato.ofx", sampleOFX))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if fx.txStore.Len() != 0 {
		t.Error("failed import committed transactions")
	}
}

func TestImport_NoFiles(t *testing.T) {
	fx := newFixture(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("profileId", fx.profile.ID)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/imports", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	fx.imports.Import(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestImportAsync_EnqueuesJob(t *testing.T) {
	fx := newFixture(t)

	rec := httptest.NewRecorder()
	fx.imports.ImportAsync(rec, multipartUpload(t, fx.profile.ID, "extrato.ofx", sampleOFX))

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		JobID string `json:"jobId"`
		Files int    `json:"files"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.JobID == "" || resp.Files != 1 {
		t.Errorf("resp = %+v", resp)
	}
	if fx.txStore.Len() != 0 {
		t.Error("async import committed transactions synchronously")
	}
}

func TestReports_MonthlyAfterImport(t *testing.T) {
	fx := newFixture(t)

	rec := httptest.NewRecorder()
	fx.imports.Import(rec, multipartUpload(t, fx.profile.ID, "extrato.ofx", sampleOFX))
	if rec.Code != http.StatusOK {
		t.Fatalf("import failed: %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	fx.reports.Monthly(rec, httptest.NewRequest(http.MethodGet, "/api/reports/monthly", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Months []domain.MonthlyGroup `json:"months"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Months) != 1 || resp.Months[0].MonthYear != "01/2024" {
		t.Errorf("months = %+v", resp.Months)
	}
}

func TestReports_MonthlyRejectsLucroReal(t *testing.T) {
	fx := newFixture(t)

	rec := httptest.NewRecorder()
	fx.reports.Monthly(rec, httptest.NewRequest(http.MethodGet, "/api/reports/monthly?regime=LUCRO_REAL", nil))
	if rec.Code != http.StatusNotImplemented {
		t.Errorf("status = %d, want 501", rec.Code)
	}
}

func TestReports_ExportHeaders(t *testing.T) {
	fx := newFixture(t)

	rec := httptest.NewRecorder()
	fx.reports.Export(rec, httptest.NewRequest(http.MethodGet, "/api/reports/export", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "Data;Historico;") {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestProfilesHandler_CRUD(t *testing.T) {
	fx := newFixture(t)
	h := NewProfilesHandler(fx.profiles, zerolog.Nop())

	body, _ := json.Marshal(domain.ConfigProfile{
		Name:          "Caixa Giro",
		BankCode:      "1.1.1.02",
		AssetCode:     "1.1.4.02",
		LiabilityCode: "4.1.1.02",
		LayoutType:    domain.LayoutCaixaFICGiro,
	})
	rec := httptest.NewRecorder()
	h.Save(rec, httptest.NewRequest(http.MethodPost, "/api/profiles", bytes.NewReader(body)), "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}

	var created domain.ConfigProfile
	json.Unmarshal(rec.Body.Bytes(), &created)

	rec = httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/profiles", nil))
	var listResp struct {
		Count int `json:"count"`
	}
	json.Unmarshal(rec.Body.Bytes(), &listResp)
	if listResp.Count != 2 {
		t.Errorf("count after create = %d, want 2", listResp.Count)
	}

	rec = httptest.NewRecorder()
	h.Delete(rec, httptest.NewRequest(http.MethodDelete, "/api/profiles/"+created.ID, nil), created.ID)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}

	if _, ok := fx.profiles.Find(t.Context(), created.ID); ok {
		t.Error("profile still present after delete")
	}
}

func TestProfilesHandler_RejectsIncomplete(t *testing.T) {
	fx := newFixture(t)
	h := NewProfilesHandler(fx.profiles, zerolog.Nop())

	body, _ := json.Marshal(domain.ConfigProfile{Name: "Sem layout"})
	rec := httptest.NewRecorder()
	h.Save(rec, httptest.NewRequest(http.MethodPost, "/api/profiles", bytes.NewReader(body)), "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "invalid input", err: domain.ErrInvalidInput, want: http.StatusBadRequest},
		{name: "file read", err: domain.ErrFileRead, want: http.StatusBadRequest},
		{name: "layout mismatch", err: &domain.LayoutMismatchError{Requested: domain.LayoutBancoDoBrasil}, want: http.StatusUnprocessableEntity},
		{name: "no transactions", err: domain.ErrNoTransactions, want: http.StatusUnprocessableEntity},
		{name: "upstream", err: domain.Upstream("parse", errors.New("boom")), want: http.StatusBadGateway},
		{name: "regime", err: domain.ErrRegimeNotImplemented, want: http.StatusNotImplemented},
		{name: "unknown", err: errors.New("boom"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusForError(tt.err); got != tt.want {
				t.Errorf("statusForError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
