package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wantly/internal/engine"
	"wantly/internal/metrics"
	"wantly/internal/models"
	"wantly/internal/scraper"
)

func newTestServer(t *testing.T) (*httptest.Server, *engine.Engine) {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	eng := engine.New(engine.Params{
		MaxDailyPoints:    3,
		HotThreshold:      10,
		TrendingThreshold: 5,
		TrendWindowDays:   7,
		FreezeCooldown:    50 * time.Millisecond,
	}, engine.NewSystemClock(time.UTC), nil, logger, metrics.New(prometheus.NewRegistry()))
	t.Cleanup(eng.Close)

	srv := httptest.NewServer(NewServer(eng, scraper.New(nil, logger), logger).Handler())
	t.Cleanup(srv.Close)
	return srv, eng
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func createItem(t *testing.T, srv *httptest.Server, name string) models.WishItem {
	t.Helper()
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/items", map[string]any{"name": name})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var item models.WishItem
	decodeBody(t, resp, &item)
	return item
}

func TestServer_CreateItemValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/items", map[string]any{"name": "   "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/items",
		map[string]any{"name": "tv", "price_cents": -100})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestServer_VoteLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)
	item := createItem(t, srv, "turntable")

	voteURL := fmt.Sprintf("%s/api/items/%s/upvote", srv.URL, item.ID)
	for i := 1; i <= 3; i++ {
		resp := doJSON(t, http.MethodPost, voteURL, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var got models.WishItem
		decodeBody(t, resp, &got)
		assert.Equal(t, i, got.Points)
	}

	// Budget exhausted: the fourth vote is a conflict, not a server error.
	resp := doJSON(t, http.MethodPost, voteURL, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	var budget struct {
		Remaining int `json:"remaining"`
		Max       int `json:"max"`
	}
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/budget", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &budget)
	assert.Equal(t, 0, budget.Remaining)
	assert.Equal(t, 3, budget.Max)

	// Downvote refunds a point.
	resp = doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/items/%s/downvote", srv.URL, item.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/budget", nil)
	decodeBody(t, resp, &budget)
	assert.Equal(t, 1, budget.Remaining)
}

func TestServer_DownvoteOnZeroIsConflict(t *testing.T) {
	srv, _ := newTestServer(t)
	item := createItem(t, srv, "fresh")

	resp := doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/items/%s/downvote", srv.URL, item.ID), nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestServer_UnknownItemIs404(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, req := range []struct{ method, path string }{
		{http.MethodGet, "/api/items/nope"},
		{http.MethodDelete, "/api/items/nope"},
		{http.MethodPost, "/api/items/nope/upvote"},
		{http.MethodPut, "/api/items/nope/purchased"},
	} {
		resp := doJSON(t, req.method, srv.URL+req.path, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, "%s %s", req.method, req.path)
		resp.Body.Close()
	}
}

func TestServer_DeleteItem(t *testing.T) {
	srv, _ := newTestServer(t)
	item := createItem(t, srv, "doomed")

	resp := doJSON(t, http.MethodDelete, srv.URL+"/api/items/"+item.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/items/"+item.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestServer_RankingSortParam(t *testing.T) {
	srv, _ := newTestServer(t)
	createItem(t, srv, "a")
	createItem(t, srv, "b")

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/ranking?sort=price", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ranking struct {
		Items  []models.DisplayItem `json:"items"`
		Sort   models.SortMode      `json:"sort"`
		Frozen bool                 `json:"frozen"`
	}
	decodeBody(t, resp, &ranking)
	assert.Equal(t, models.SortPriceDesc, ranking.Sort)
	assert.Len(t, ranking.Items, 2)
	assert.False(t, ranking.Frozen)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/ranking?sort=alphabetical", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestServer_RankingHidePurchased(t *testing.T) {
	srv, eng := newTestServer(t)
	createItem(t, srv, "keep")
	bought := createItem(t, srv, "bought")
	_, err := eng.TogglePurchased(bought.ID)
	require.NoError(t, err)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/ranking?hide_purchased=true", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ranking struct {
		Items []models.DisplayItem `json:"items"`
	}
	decodeBody(t, resp, &ranking)
	require.Len(t, ranking.Items, 1)
	assert.Equal(t, "keep", ranking.Items[0].Name)
}

func TestServer_Options(t *testing.T) {
	srv, _ := newTestServer(t)
	item := createItem(t, srv, "jacket")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/items/"+item.ID+"/options",
		map[string]any{"name": "Navy", "price_cents": 8000})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var got models.WishItem
	decodeBody(t, resp, &got)
	require.Len(t, got.Options, 1)
	optID := got.Options[0].ID

	resp = doJSON(t, http.MethodPut,
		fmt.Sprintf("%s/api/items/%s/options/%s/select", srv.URL, item.ID, optID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &got)
	assert.Equal(t, optID, got.SelectedOptionID)

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/items/"+item.ID+"/selection", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &got)
	assert.Empty(t, got.SelectedOptionID)

	resp = doJSON(t, http.MethodDelete,
		fmt.Sprintf("%s/api/items/%s/options/%s", srv.URL, item.ID, optID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &got)
	assert.Empty(t, got.Options)
}

func TestServer_PrefillScrapeFailureIsEmpty200(t *testing.T) {
	srv, _ := newTestServer(t)

	// An unresolvable host: the scrape fails but prefill stays best-effort.
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/prefill",
		map[string]any{"url": "http://127.0.0.1:1/nothing"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var guess scraper.ProductGuess
	decodeBody(t, resp, &guess)
	assert.True(t, guess.Empty())
}

func TestServer_PrefillRequiresURL(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/prefill", map[string]any{"url": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestServer_MetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
