package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/graphbridge/internal/backend"
	"github.com/agenthands/graphbridge/internal/config"
	"github.com/agenthands/graphbridge/internal/driver"
	"github.com/agenthands/graphbridge/internal/rows"
	"github.com/agenthands/graphbridge/internal/snapshot"
)

type stubDriver struct {
	batches [][]driver.Statement
}

func (s *stubDriver) WriteBatch(ctx context.Context, statements []driver.Statement) error {
	s.batches = append(s.batches, statements)
	return nil
}

func (s *stubDriver) ReadAll(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error) {
	return nil, nil
}

func (s *stubDriver) Close(ctx context.Context) error { return nil }

type stubTables struct {
	data map[string][]rows.Row
}

func (s *stubTables) ReadTable(ctx context.Context, name string) ([]rows.Row, error) {
	return s.data[name], nil
}

func (s *stubTables) WriteTable(ctx context.Context, name string, rs []rows.Row) error {
	return nil
}

func testServer(d driver.GraphDriver, tables backend.TableStore) *Server {
	cfg := config.Default()
	var exporter *snapshot.Exporter
	if d != nil {
		exporter = snapshot.NewExporter(d, nil)
	}
	return &Server{
		Config:   cfg,
		Exporter: exporter,
		Selector: backend.NewSelector(nil, tables, nil),
	}
}

func TestExportEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	d := &stubDriver{}
	srv := testServer(d, &stubTables{})
	router := srv.SetupRouter()

	body := `{"entities":[{"title":"Siddhartha","id":"e1","type":"PERSON"}],"relationships":[]}`
	req := httptest.NewRequest("POST", "/export", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var result snapshot.ExportResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 1, result.EntitiesWritten)
	require.Len(t, d.batches, 1)
}

func TestExportEndpointUnavailable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := testServer(nil, &stubTables{})
	router := srv.SetupRouter()

	req := httptest.NewRequest("POST", "/export", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestDatasetEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var r rows.Row
	r.Set("title", rows.String("Siddhartha"))
	tables := &stubTables{data: map[string][]rows.Row{"entities": {r}}}
	srv := testServer(nil, tables)
	router := srv.SetupRouter()

	req := httptest.NewRequest("GET", "/datasets/entities", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Siddhartha")
}

func TestDatasetEndpointBadKind(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := testServer(nil, &stubTables{})
	router := srv.SetupRouter()

	req := httptest.NewRequest("GET", "/datasets/bogus", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
