package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/assetsplitter/internal/metrics"
	"github.com/mmynk/assetsplitter/internal/models"
	"github.com/mmynk/assetsplitter/internal/notify"
	"github.com/mmynk/assetsplitter/internal/persistence"
	"github.com/mmynk/assetsplitter/internal/session"
	"github.com/mmynk/assetsplitter/internal/storage/memory"
)

type fixture struct {
	router  http.Handler
	session *session.Session
	toast   *notify.Toast
	adapter *persistence.Adapter
	saver   *persistence.Autosaver
}

const stateKey = "bananaData"

func newFixture(t *testing.T) fixture {
	t.Helper()
	toast := notify.NewToast(time.Minute)
	t.Cleanup(toast.Dismiss)

	reg := prometheus.NewRegistry()
	s := session.New(models.StoredState{
		PartyAName: "Al",
		PartyBName: "Bo",
		Assets: []models.Asset{
			{ID: "house", Name: "House", Value: 1000, AllocationType: models.AllocationSplit, PartyAPercentage: 50, PartyBPercentage: 50},
		},
	}, session.WithNotifier(toast))

	adapter := persistence.NewAdapter(memory.New())
	saver := persistence.NewAutosaver(adapter, stateKey, time.Hour, s.Snapshot, nil)
	s.OnChange(saver.Schedule)
	t.Cleanup(saver.Stop)

	return fixture{
		router: NewRouter(RouterConfig{
			Session:   s,
			Toast:     toast,
			Metrics:   metrics.New(reg),
			Autosaver: saver,
			Gatherer:  reg,
			Now:       func() time.Time { return time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC) },
		}),
		session: s,
		toast:   toast,
		adapter: adapter,
		saver:   saver,
	}
}

func (f fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestGetState(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/v1/state", "")
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[stateResponse](t, rec)
	assert.Equal(t, "Al", got.PartyAName)
	assert.Len(t, got.Assets, 1)
	assert.Equal(t, totalsResponse{PartyA: 500, PartyB: 500}, got.Totals)
}

func TestResetState_DeletesStoredDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.session.SetPartyName(models.PartyA, "Alice")
	require.NoError(t, f.saver.Flush(ctx))
	exists, err := f.adapter.Exists(ctx, stateKey)
	require.NoError(t, err)
	require.True(t, exists)

	rec := f.do(t, http.MethodDelete, "/api/v1/state", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "", decode[stateResponse](t, rec).PartyAName)

	exists, err = f.adapter.Exists(ctx, stateKey)
	require.NoError(t, err)
	assert.False(t, exists, "reset leaves nothing saved")
	assert.False(t, f.saver.Pending(), "reset does not write an empty document later")
}

func TestStart(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/start", `{"partyAName":"Cy"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/start", `{"partyAName":"Cy","partyBName":"Di"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	got := decode[stateResponse](t, rec)
	assert.Equal(t, "Di", got.PartyBName)
	assert.Empty(t, got.Assets)
}

func TestAssetLifecycle(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/assets", `{"name":"Car","value":2000}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	car := decode[models.Asset](t, rec)
	assert.NotEmpty(t, car.ID)
	assert.Equal(t, models.AllocationSplit, car.AllocationType)

	rec = f.do(t, http.MethodPatch, "/api/v1/assets/"+car.ID, `{"partyAPercentage":75}`)
	require.Equal(t, http.StatusOK, rec.Code)
	car = decode[models.Asset](t, rec)
	assert.Equal(t, 75.0, car.PartyAPercentage)
	assert.Equal(t, 25.0, car.PartyBPercentage)

	rec = f.do(t, http.MethodPut, "/api/v1/assets/"+car.ID+"/allocation", `{"allocationType":"partyB"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	car = decode[models.Asset](t, rec)
	assert.Equal(t, 0.0, car.PartyAPercentage)
	assert.Equal(t, 100.0, car.PartyBPercentage)

	rec = f.do(t, http.MethodGet, "/api/v1/totals", "")
	assert.Equal(t, totalsResponse{PartyA: 500, PartyB: 2500}, decode[totalsResponse](t, rec))

	rec = f.do(t, http.MethodDelete, "/api/v1/assets/"+car.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = f.do(t, http.MethodDelete, "/api/v1/assets/"+car.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code, "deleting twice is not an error")
	assert.Len(t, f.session.Assets(), 1)
}

func TestAssetErrors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"patch unknown asset", http.MethodPatch, "/api/v1/assets/nope", `{"name":"x"}`, http.StatusNotFound},
		{"patch both percentages", http.MethodPatch, "/api/v1/assets/house", `{"partyAPercentage":10,"partyBPercentage":90}`, http.StatusBadRequest},
		{"patch malformed body", http.MethodPatch, "/api/v1/assets/house", `{`, http.StatusBadRequest},
		{"allocation unknown type", http.MethodPut, "/api/v1/assets/house/allocation", `{"allocationType":"both"}`, http.StatusBadRequest},
		{"allocation unknown asset", http.MethodPut, "/api/v1/assets/nope/allocation", `{"allocationType":"split"}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
		})
	}
}

func TestSetParties(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPut, "/api/v1/parties", `{"partyBName":"Bea"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	snap := f.session.Snapshot()
	assert.Equal(t, "Al", snap.PartyAName)
	assert.Equal(t, "Bea", snap.PartyBName)
}

func TestImportExport(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "asset-splitter-data.json")
	exported := rec.Body.String()

	rec = f.do(t, http.MethodPost, "/api/v1/import", "not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, msgInvalidImport, decode[errorResponse](t, rec).Error)

	rec = f.do(t, http.MethodPost, "/api/v1/import", `{"partyAName":"X","partyBName":"Y"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorResponse](t, rec).Message, "assets")
	assert.Equal(t, "Al", f.session.Snapshot().PartyAName, "rejected imports leave state alone")

	f.session.Reset()
	rec = f.do(t, http.MethodPost, "/api/v1/import?filename=backup.json", exported)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Al", f.session.Snapshot().PartyAName)

	rec = f.do(t, http.MethodGet, "/api/v1/notification", "")
	assert.Equal(t, notificationResponse{Message: notify.MsgSaved, Visible: true}, decode[notificationResponse](t, rec))
}

func TestReport(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/report/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "asset-division-summary.pdf")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))

	rec = f.do(t, http.MethodGet, "/api/v1/report/invoice", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `assetsplitter_reports_total{kind="summary"} 1`)
}

func TestCORS(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/state", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
