package ui

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clustereval/adapters/results"
	"clustereval/adapters/spreadsheet"
	"clustereval/app"
	"clustereval/domain/core"
	"clustereval/domain/eval"
	"clustereval/ports"
)

type memoryRepository struct {
	records map[core.RunID]*ports.RunRecord
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{records: make(map[core.RunID]*ports.RunRecord)}
}

func (m *memoryRepository) SaveRun(ctx context.Context, record *ports.RunRecord) error {
	m.records[record.ID] = record
	return nil
}

func (m *memoryRepository) GetRun(ctx context.Context, id core.RunID) (*ports.RunRecord, error) {
	record, ok := m.records[id]
	if !ok {
		return nil, core.ErrRunNotFound
	}
	return record, nil
}

func (m *memoryRepository) ListRuns(ctx context.Context, limit, offset int) ([]ports.RunSummary, error) {
	summaries := make([]ports.RunSummary, 0, len(m.records))
	for _, r := range m.records {
		summaries = append(summaries, ports.RunSummary{
			ID: r.ID, Threshold: r.Threshold, TraitCount: len(r.Rows), CreatedAt: r.CreatedAt,
		})
	}
	return summaries, nil
}

func newTestServer(t *testing.T) (*Server, *memoryRepository, string) {
	t.Helper()
	reader := spreadsheet.NewReader(nil)
	repo := newMemoryRepository()
	service := app.NewEvaluationService(reader, reader, results.NewWriter(), repo, nil)
	dir := t.TempDir()
	return NewServer(service, repo, dir, nil), repo, dir
}

func writeInputs(t *testing.T, dir string) (string, string) {
	t.Helper()
	phenotypes := filepath.Join(dir, "phenotypes.tsv")
	clusters := filepath.Join(dir, "clusters.tsv")
	require.NoError(t, os.WriteFile(phenotypes, []byte(
		"sample\tage\ttissue\n"+
			"s1\t10\tA\n"+
			"s2\t12\tA\n"+
			"s3\t30\tB\n"+
			"s4\t32\tNA\n"), 0o644))
	require.NoError(t, os.WriteFile(clusters, []byte("s1\t1\ns2\t1\ns3\t2\ns4\t2\n"), 0o644))
	return phenotypes, clusters
}

func TestEvaluateEndpoint(t *testing.T) {
	server, repo, dir := newTestServer(t)
	phenotypes, clusters := writeInputs(t, dir)

	body := `{"phenotype_path":"` + phenotypes + `","cluster_path":"` + clusters + `","threshold":2}`
	req := httptest.NewRequest(http.MethodPost, "/api/evaluate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var record ports.RunRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	require.Len(t, record.Rows, 2)
	assert.Equal(t, eval.MeasureFOneway, record.Rows[0].Measure)
	assert.Equal(t, eval.MeasureChiSquare, record.Rows[1].Measure)
	// Sparse 2x2 contingency table: NaN round-trips as JSON null.
	assert.True(t, math.IsNaN(record.Rows[1].Statistic))
	assert.Len(t, repo.records, 1)
}

func TestEvaluateEndpointRejectsBadThreshold(t *testing.T) {
	server, _, dir := newTestServer(t)
	phenotypes, clusters := writeInputs(t, dir)

	body := `{"phenotype_path":"` + phenotypes + `","cluster_path":"` + clusters + `","threshold":0}`
	req := httptest.NewRequest(http.MethodPost, "/api/evaluate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRunEndpoints(t *testing.T) {
	server, repo, _ := newTestServer(t)
	record := &ports.RunRecord{
		ID:        core.RunID("run-1"),
		Threshold: 2,
		CreatedAt: time.Now().UTC(),
		Rows: []eval.Row{
			{TraitName: "age", DistinctValues: 4, SampleCount: 4, Measure: eval.MeasureFOneway, Statistic: 200, PValue: 0.005},
		},
	}
	require.NoError(t, repo.SaveRun(context.Background(), record))

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var summaries []ports.RunSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, 1, summaries[0].TraitCount)

	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs/run-1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs/absent", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReportEndpointRendersHTML(t *testing.T) {
	server, repo, _ := newTestServer(t)
	record := &ports.RunRecord{
		ID:        core.RunID("run-9"),
		Threshold: 3,
		CreatedAt: time.Now().UTC(),
		Rows: []eval.Row{
			{TraitName: "age", Measure: eval.MeasureFOneway, Statistic: 1.5, PValue: 0.3},
		},
	}
	require.NoError(t, repo.SaveRun(context.Background(), record))

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/runs/run-9/report", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "<h1")
	assert.Contains(t, rec.Body.String(), "run-9")
}

func TestRunHistoryDisabled(t *testing.T) {
	reader := spreadsheet.NewReader(nil)
	service := app.NewEvaluationService(reader, reader, results.NewWriter(), nil, nil)
	server := NewServer(service, nil, t.TempDir(), nil)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
