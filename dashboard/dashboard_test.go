package dashboard

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ArchitYad/Non-block-io-vs-block-io/internal/benchtest"
	"github.com/ArchitYad/Non-block-io-vs-block-io/summary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestServer(t *testing.T, dir string) *Server {
	t.Helper()
	logger := zaptest.NewLogger(t)
	return NewServer(dir, summary.NewLoader(nil, logger), summary.ViewBlocking, logger)
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestIndexDefaultsToBlocking(t *testing.T) {
	s := newTestServer(t, benchtest.WriteAll(t, t.TempDir()))

	rec := get(t, s, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	body := rec.Body.String()
	assert.Contains(t, body, "Select Test Type")
	assert.Contains(t, body, `<option value="blocking" selected>Blocking</option>`)
	assert.Contains(t, body, "Blocking - wrk Performance")
	assert.Contains(t, body, "Blocking - dstat Metrics")
	assert.NotContains(t, body, "Non-blocking - wrk Performance")
	assert.NotContains(t, body, summary.CorrelationTitle)
}

func TestIndexBoth(t *testing.T) {
	s := newTestServer(t, benchtest.WriteAll(t, t.TempDir()))

	rec := get(t, s, "/?view=both")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	for _, want := range []string{
		"1KB - wrk Performance", "1KB - dstat Metrics",
		"8KB - wrk Performance", "8KB - dstat Metrics",
		"1KB: Blocking vs Non-blocking", summary.CorrelationTitle,
		`<option value="both" selected>Both</option>`,
	} {
		assert.Contains(t, body, want)
	}
}

func TestIndexBadView(t *testing.T) {
	s := newTestServer(t, t.TempDir())
	rec := get(t, s, "/?view=sideways")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIndexEmptyDir(t *testing.T) {
	dir := t.TempDir()
	s := newTestServer(t, dir)

	rec := get(t, s, "/?view=non-blocking")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No benchmark artifacts found")
}

func TestIndexMissingCase(t *testing.T) {
	dir := t.TempDir()
	benchtest.WriteCase(t, dir, "Blocking 1KB")
	s := newTestServer(t, dir)

	body := get(t, s, "/").Body.String()
	assert.Contains(t, body, "Missing cases: Blocking 8KB")
}

func TestSummaryAPI(t *testing.T) {
	s := newTestServer(t, benchtest.WriteAll(t, t.TempDir()))

	var got struct {
		Columns []string `json:"columns"`
		Rows    []struct {
			Label  string              `json:"label"`
			Values map[string]*float64 `json:"values"`
		} `json:"rows"`
	}

	rec := get(t, s, "/api/summary")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got.Rows, 4)
	assert.Equal(t, summary.Columns, got.Columns)

	rec = get(t, s, "/api/summary?view=non-blocking")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Rows, 2)
	assert.Equal(t, "Non-blocking 1KB", got.Rows[0].Label)
	require.NotNil(t, got.Rows[0].Values["Requests/sec"])
	assert.InDelta(t, 41000.0, *got.Rows[0].Values["Requests/sec"], 1e-9)

	assert.Equal(t, http.StatusBadRequest, get(t, s, "/api/summary?view=x").Code)
}

func TestCorrelationAPI(t *testing.T) {
	s := newTestServer(t, benchtest.WriteAll(t, t.TempDir()))

	rec := get(t, s, "/api/correlation")
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Columns []string     `json:"columns"`
		Values  [][]*float64 `json:"values"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Values, len(summary.Columns))
	require.NotNil(t, got.Values[0][0])
	assert.InDelta(t, 1.0, *got.Values[0][0], 1e-9)
}

func TestCorrelationAPINulls(t *testing.T) {
	dir := t.TempDir()
	benchtest.WriteCase(t, dir, "Blocking 1KB")
	s := newTestServer(t, dir)

	rec := get(t, s, "/api/correlation")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "null", "a single row has no correlation")
}

type summaryResponse struct {
	Rows []struct {
		Label  string              `json:"label"`
		Values map[string]*float64 `json:"values"`
	} `json:"rows"`
}

func getSummary(t *testing.T, s *Server) summaryResponse {
	t.Helper()
	rec := get(t, s, "/api/summary")
	require.Equal(t, http.StatusOK, rec.Code)
	var got summaryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	return got
}

func TestReloadsArtifactsOnEveryRequest(t *testing.T) {
	dir := t.TempDir()
	benchtest.WriteCase(t, dir, "Blocking 1KB")
	s := newTestServer(t, dir)

	assert.Len(t, getSummary(t, s).Rows, 1)
	assert.Contains(t, get(t, s, "/").Body.String(), "Missing cases: Blocking 8KB")

	// only the wrk half of the second blocking case
	benchtest.WriteWrk(t, dir, "Blocking 8KB")

	got := getSummary(t, s)
	require.Len(t, got.Rows, 2)
	assert.Equal(t, "Blocking 8KB", got.Rows[1].Label)
	require.NotNil(t, got.Rows[1].Values["Requests/sec"])
	assert.InDelta(t, 9000.0, *got.Rows[1].Values["Requests/sec"], 1e-9)
	assert.Nil(t, got.Rows[1].Values["usr"], "dstat half is missing")

	body := get(t, s, "/").Body.String()
	assert.Contains(t, body, `<option value="blocking" selected>Blocking</option>`)
	assert.NotContains(t, body, "Missing cases")

	benchtest.WriteCase(t, dir, "Non-blocking 1KB")
	assert.Len(t, getSummary(t, s).Rows, 3)
}

func TestIndexSingleCaseHasNoCorrelation(t *testing.T) {
	dir := t.TempDir()
	benchtest.WriteCase(t, dir, "Blocking 1KB")
	s := newTestServer(t, dir)

	body := get(t, s, "/?view=both").Body.String()
	assert.Contains(t, body, "1KB - wrk Performance")
	assert.NotContains(t, body, summary.CorrelationTitle)
}

func TestHealthz(t *testing.T) {
	rec := get(t, newTestServer(t, t.TempDir()), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestServeShutsDown(t *testing.T) {
	s := newTestServer(t, benchtest.WriteAll(t, t.TempDir()))
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "ok", strings.TrimSpace(string(body)))

	cancel()
	require.NoError(t, <-done)
	client.CloseIdleConnections()
}

func TestCellNaN(t *testing.T) {
	assert.Equal(t, "-", cell(math.NaN()))
	assert.Equal(t, 1.5, cell(1.5))
}
