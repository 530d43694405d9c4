package http

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/aplus/internal/logging"
	"github.com/aretw0/aplus/pkg/adapters/memory"
	"github.com/aretw0/aplus/pkg/domain"
	"github.com/aretw0/aplus/pkg/observability"
	"github.com/aretw0/aplus/pkg/scene"
)

type stubInspector []scene.Frame

func (s stubInspector) Snapshot() []scene.Frame { return s }

func serve(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestHandler_SceneAndHealth(t *testing.T) {
	h := NewHandler(WithInspector(stubInspector{
		{Name: "controller", Phase: domain.PhaseLoaded},
		{Name: "ranking", Phase: domain.PhaseFocused},
	}))

	w := serve(t, h, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = serve(t, h, http.MethodGet, "/scene")
	require.Equal(t, http.StatusOK, w.Code)
	var frames []scene.Frame
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &frames))
	require.Len(t, frames, 2)
	assert.Equal(t, "ranking", frames[1].Name)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestHandler_MissingSourcesAreUnavailable(t *testing.T) {
	h := NewHandler()
	for _, target := range []string{"/scene", "/matches", "/matches/x", "/metrics"} {
		assert.Equal(t, http.StatusServiceUnavailable, serve(t, h, http.MethodGet, target).Code, target)
	}
}

func TestHandler_Matches(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	rec := &domain.MatchRecord{ID: "m1", Map: "campus", RoundsPlayed: 2, FinishedAt: time.Now()}
	require.NoError(t, store.Save(ctx, rec))
	h := NewHandler(WithStore(store))

	w := serve(t, h, http.MethodGet, "/matches")
	require.Equal(t, http.StatusOK, w.Code)
	var list []domain.MatchRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "campus", list[0].Map)

	w = serve(t, h, http.MethodGet, "/matches/m1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"rounds_played":2`)

	assert.Equal(t, http.StatusNotFound, serve(t, h, http.MethodGet, "/matches/nope").Code)

	assert.Equal(t, http.StatusNoContent, serve(t, h, http.MethodDelete, "/matches/m1").Code)
	assert.Equal(t, http.StatusNotFound, serve(t, h, http.MethodGet, "/matches/m1").Code)

	w = serve(t, h, http.MethodGet, "/matches")
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestHandler_Metrics(t *testing.T) {
	metrics := observability.NewMetrics()
	metrics.MatchFinished(&domain.MatchRecord{RoundsPlayed: 3})
	h := NewHandler(WithMetrics(metrics.Handler()))

	w := serve(t, h, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "aplus_matches_total 1")
}

func TestSubscribeEvents_StreamsTransitions(t *testing.T) {
	srv := NewServer()
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/events", nil)
	require.NoError(t, err)
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	require.True(t, lines.Scan())
	assert.Equal(t, "event: ping", lines.Text())
	require.Eventually(t, func() bool { return srv.Streams.Subscribers() == 1 }, time.Second, 10*time.Millisecond)

	srv.Streams.Hooks().OnTransitionEnd(ctx, &domain.TransitionEvent{
		Kind: domain.TransitionPush, From: "controller", To: "selection", Depth: 2,
	})

	var data string
	for lines.Scan() {
		if strings.HasPrefix(lines.Text(), "data: {") {
			data = strings.TrimPrefix(lines.Text(), "data: ")
			break
		}
	}
	var entry observability.Entry
	require.NoError(t, json.Unmarshal([]byte(data), &entry))
	assert.Equal(t, observability.Entry{Kind: domain.TransitionPush, From: "controller", To: "selection", Depth: 2}, entry)

	cancel()
	assert.Eventually(t, func() bool { return srv.Streams.Subscribers() == 0 }, time.Second, 10*time.Millisecond)
}

func TestStreamManager_DropsForSlowClients(t *testing.T) {
	sm := NewStreamManager(logging.NewNop())
	ch, unsubscribe := sm.Subscribe()
	for range cap(ch) + 5 {
		sm.Broadcast("x")
	}
	assert.Len(t, ch, cap(ch))
	unsubscribe()
	unsubscribe()
	for range ch {
	}
	assert.Zero(t, sm.Subscribers())
}
