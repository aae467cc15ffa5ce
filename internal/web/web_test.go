package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tempocal/internal/config"
	"tempocal/internal/model"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := config.DefaultConfig()
	srv := httptest.NewServer(NewServer(cfg, nil).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestHealth(t *testing.T) {
	t.Parallel()
	srv := testServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMaterializeRecurring(t *testing.T) {
	t.Parallel()
	srv := testServer(t)

	resp := postJSON(t, srv.URL+"/api/materialize", map[string]any{
		"title":           "Standup",
		"description":     "standup every day at 10am",
		"anchorText":      "starting tomorrow",
		"durationMinutes": 15,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got materializeResponse
	decodeBody(t, resp, &got)

	require.NotNil(t, got.SeriesID)
	assert.Len(t, got.Items, 30)
	assert.Equal(t, "Recurring daily (every 1 day(s))", got.RecurrenceDescription)
	assert.Contains(t, got.RecurrenceRule, "FREQ=DAILY")

	for _, it := range got.Items {
		assert.Equal(t, *got.SeriesID, it.RecurringSeriesID)
		assert.Equal(t, 10, it.StartTime.Hour())
	}
}

func TestMaterializeOneOffDefaults(t *testing.T) {
	t.Parallel()
	srv := testServer(t)

	resp := postJSON(t, srv.URL+"/api/materialize", map[string]any{
		"title":           "Dentist",
		"description":     "no schedule words here",
		"durationMinutes": 45,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got materializeResponse
	decodeBody(t, resp, &got)

	assert.Nil(t, got.SeriesID)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "One-time event", got.RecurrenceDescription)
	assert.Empty(t, got.RecurrenceRule)
	// No recognizable time: falls back to the configured 09:00 start.
	assert.Equal(t, 9, got.Items[0].StartTime.Hour())
}

func TestMaterializeRejectsBadDuration(t *testing.T) {
	t.Parallel()
	srv := testServer(t)

	resp := postJSON(t, srv.URL+"/api/materialize", map[string]any{
		"title":           "Broken",
		"durationMinutes": 0,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var got map[string]string
	decodeBody(t, resp, &got)
	assert.Contains(t, got["error"], "durationMinutes")
}

func TestMaterializeRequiresPost(t *testing.T) {
	t.Parallel()
	srv := testServer(t)

	resp, err := http.Get(srv.URL + "/api/materialize")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestConflictsEndpoint(t *testing.T) {
	t.Parallel()
	srv := testServer(t)

	start := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	resp := postJSON(t, srv.URL+"/api/conflicts", map[string]any{
		"items": []model.TimelineItem{
			{ID: "a", LayerID: "work", StartTime: start, DurationMinutes: 60, Status: model.StatusActive},
			{ID: "b", LayerID: "work", StartTime: start.Add(30 * time.Minute), DurationMinutes: 60, Status: model.StatusActive},
			{ID: "c", LayerID: "home", StartTime: start, DurationMinutes: 60, Status: model.StatusActive},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got conflictsResponse
	decodeBody(t, resp, &got)
	require.Len(t, got.Conflicts, 1)
	assert.Equal(t, "a", got.Conflicts[0].Item1ID)
	assert.Equal(t, "b", got.Conflicts[0].Item2ID)
}

func TestFocusEndpoint(t *testing.T) {
	t.Parallel()
	srv := testServer(t)

	start := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	resp := postJSON(t, srv.URL+"/api/focus", map[string]any{
		"items": []model.TimelineItem{
			{
				ID: "deep", LayerID: "work", Title: "Deep work",
				StartTime: start, DurationMinutes: 180,
				AttentionType: model.AttentionCreate, IsNonNegotiable: true,
				Status: model.StatusActive,
			},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got focusResponse
	decodeBody(t, resp, &got)
	require.Len(t, got.FocusBlocks, 1)
	assert.Equal(t, model.ProtectionMaximum, got.FocusBlocks[0].ProtectionLevel)
	assert.Equal(t, 100, got.FocusBlocks[0].Effectiveness)
}

func TestRoleFitEndpointEmptyWeek(t *testing.T) {
	t.Parallel()
	srv := testServer(t)

	resp := postJSON(t, srv.URL+"/api/rolefit", map[string]any{
		"roleSelected":  "maker",
		"zoneSelected":  "office",
		"weekStartDate": "2025-03-03",
		"items":         []model.TimelineItem{},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got model.RoleFitScore
	decodeBody(t, resp, &got)
	assert.Equal(t, 50, got.Score)
	require.Len(t, got.Recommendations, 1)
	assert.Equal(t, "No scheduled activities found for this week", got.Recommendations[0])
}

func TestStateEndpointSweepsOverdue(t *testing.T) {
	t.Parallel()
	srv := testServer(t)

	past := time.Now().Add(-3 * time.Hour)
	resp := postJSON(t, srv.URL+"/api/state", map[string]any{
		"items": []model.TimelineItem{
			{ID: "old", LayerID: "work", StartTime: past, DurationMinutes: 60, Status: model.StatusActive},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got struct {
		Logjammed       []model.TimelineItem `json:"logjammed"`
		Recommendations []string             `json:"recommendations"`
	}
	decodeBody(t, resp, &got)
	require.Len(t, got.Logjammed, 1)
	assert.Equal(t, "old", got.Logjammed[0].ID)
	require.NotEmpty(t, got.Recommendations)
	assert.Contains(t, got.Recommendations[0], "overdue")
}

func TestExportICSEndpoint(t *testing.T) {
	t.Parallel()
	srv := testServer(t)

	start := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	resp := postJSON(t, srv.URL+"/api/export.ics", map[string]any{
		"items": []model.TimelineItem{
			{ID: "solo", LayerID: "work", Title: "One-off", StartTime: start, DurationMinutes: 60, Status: model.StatusActive},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/calendar"))

	buf := new(bytes.Buffer)
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "BEGIN:VCALENDAR")
	assert.Contains(t, buf.String(), "One-off")
}

func TestBasicAuthProtectsAPI(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.BasicAuth = &config.BasicAuthConfig{Username: "ops", Password: "secret"}
	srv := httptest.NewServer(NewServer(cfg, nil).Handler())
	t.Cleanup(srv.Close)

	// Health stays open.
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// API requires credentials.
	resp2, err := http.Post(srv.URL+"/api/conflicts", "application/json", strings.NewReader(`{"items":[]}`))
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp2.StatusCode)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/conflicts", strings.NewReader(`{"items":[]}`))
	require.NoError(t, err)
	req.SetBasicAuth("ops", "secret")
	resp3, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp3.Body.Close()
	assert.Equal(t, http.StatusOK, resp3.StatusCode)
}
