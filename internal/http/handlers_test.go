package http

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mauv0809/rally-tribble/internal/config"
	"github.com/mauv0809/rally-tribble/internal/database"
	"github.com/mauv0809/rally-tribble/internal/metrics"
	"github.com/mauv0809/rally-tribble/internal/notifier"
	slacknotifier "github.com/mauv0809/rally-tribble/internal/notifier/slack"
	"github.com/mauv0809/rally-tribble/internal/processor"
	"github.com/mauv0809/rally-tribble/internal/pubsub"
	"github.com/mauv0809/rally-tribble/internal/snapshot"
	"github.com/mauv0809/rally-tribble/internal/stats"
	"github.com/mauv0809/rally-tribble/internal/tournament"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

const testSlackSigningSecret = "test-signing-secret"

type testEnv struct {
	server  *Server
	metrics *metrics.Mock
	clock   *clockwork.FakeClock
}

// setupTestServer wires a server on an in-memory database. Events are delivered in-process.
func setupTestServer(t *testing.T, notif notifier.Notifier, slackSigningSecret string) (*testEnv, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	store := tournament.New(db)
	cfg := config.Config{Slack: config.SlackConfig{SigningSecret: slackSigningSecret}}
	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC))

	metricsMock := metrics.NewMock()
	loader := snapshot.NewLoader(store, snapshot.DefaultTTL, clock, metricsMock)
	counters := metrics.New(db)
	proc := processor.New(store, loader, notif, metricsMock, counters)
	local := pubsub.NewLocal(nil)
	local.SetDeliver(proc.Deliver(local))

	reg := prometheus.NewRegistry()
	server := NewServer(store, loader, metricsMock, metrics.NewMetricsHandler(reg), counters, cfg, notif, proc, local)

	teardown := func() {
		if dbTeardown != nil {
			dbTeardown()
		}
	}
	return &testEnv{server: server, metrics: metricsMock, clock: clock}, teardown
}

func (e *testEnv) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	rr := httptest.NewRecorder()
	e.server.Router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func (e *testEnv) addPlayers(t *testing.T, names ...string) []int {
	t.Helper()
	ids := make([]int, 0, len(names))
	for _, name := range names {
		rr := e.do(t, http.MethodPost, "/players", map[string]string{"name": name})
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		ids = append(ids, decode[tournament.Player](t, rr).ID)
	}
	return ids
}

func (e *testEnv) createTournament(t *testing.T, ids []int) tournament.Tournament {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/tournaments", map[string][]int{"player_ids": ids})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[tournament.Tournament](t, rr)
}

func scoreBody(game, s1, s2 int) map[string]int {
	return map[string]int{"game_number": game, "score_team1": s1, "score_team2": s2}
}

// createSlackCommandRequest creates an http.Request suitable for testing Slack slash commands,
// including the necessary signature and timestamp headers for verification.
func createSlackCommandRequest(t *testing.T, targetURL string, form url.Values, signingSecret string) *http.Request {
	t.Helper()

	bodyBytes := []byte(form.Encode())
	req := httptest.NewRequest(http.MethodPost, targetURL, bytes.NewReader(bodyBytes))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	timestamp := time.Now().Unix()
	req.Header.Set("X-Slack-Request-Timestamp", strconv.FormatInt(timestamp, 10))

	baseString := fmt.Sprintf("v0:%d:%s", timestamp, string(bodyBytes))
	h := hmac.New(sha256.New, []byte(signingSecret))
	h.Write([]byte(baseString))
	req.Header.Set("X-Slack-Signature", "v0="+hex.EncodeToString(h.Sum(nil)))

	return req
}

func pushBody(t *testing.T, evt any) map[string]any {
	t.Helper()
	raw, err := msgpack.Marshal(evt)
	require.NoError(t, err)
	return map[string]any{
		"subscription": "projects/rally/subscriptions/push",
		"message": map[string]string{
			"messageId": "1",
			"data":      base64.StdEncoding.EncodeToString(raw),
		},
	}
}

func TestHealthCheckHandler(t *testing.T) {
	env, teardown := setupTestServer(t, notifier.NewMock(), "")
	defer teardown()

	rr := env.do(t, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK!", rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get(requestIDHeader))
}

func TestCountersHandler(t *testing.T) {
	env, teardown := setupTestServer(t, notifier.NewMock(), "")
	defer teardown()

	rr := env.do(t, http.MethodGet, "/counters", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decode[map[string]int](t, rr))

	created := env.createTournament(t, env.addPlayers(t, "Ann", "Ben", "Cat", "Dan"))
	path := fmt.Sprintf("/tournaments/%d", created.ID)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, path+"/scores", scoreBody(1, 21, 15)).Code)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, path+"/scores", scoreBody(2, 9, 21)).Code)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, path+"/complete", nil).Code)

	rr = env.do(t, http.MethodGet, "/counters", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	counters := decode[map[string]int](t, rr)
	assert.Equal(t, 2, counters[metrics.KeyScoresSubmitted])
	assert.Equal(t, 1, counters[metrics.KeyTournamentsCompleted])
	assert.Equal(t, 1, counters[metrics.KeyResultsPosted])
}

func TestRequestID(t *testing.T) {
	env, teardown := setupTestServer(t, notifier.NewMock(), "")
	defer teardown()

	req := httptest.NewRequest(http.MethodGet, "/tournaments/99", nil)
	req.Header.Set(requestIDHeader, "req-123")
	rr := httptest.NewRecorder()
	env.server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "req-123", rr.Header().Get(requestIDHeader))
	assert.Equal(t, errorResponse{Error: tournament.ErrNotFound.Error(), RequestID: "req-123"}, decode[errorResponse](t, rr))
}

func TestPlayersHandlers(t *testing.T) {
	env, teardown := setupTestServer(t, notifier.NewMock(), "")
	defer teardown()

	env.addPlayers(t, "Ann", "Ben")

	rr := env.do(t, http.MethodGet, "/players", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	players := decode[[]tournament.Player](t, rr)
	require.Len(t, players, 2)
	assert.Equal(t, "Ann", players[0].Name)

	t.Run("empty name", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/players", map[string]string{"name": "  "})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/players", strings.NewReader("{"))
		rr := httptest.NewRecorder()
		env.server.Router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		rr := env.do(t, http.MethodDelete, "/players", nil)
		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	})
}

func TestTournamentLifecycle(t *testing.T) {
	notif := notifier.NewMock()
	env, teardown := setupTestServer(t, notif, "")
	defer teardown()

	ids := env.addPlayers(t, "Ann", "Ben", "Cat", "Dan")
	created := env.createTournament(t, ids)

	assert.Equal(t, tournament.StatusActive, created.Status)
	assert.Len(t, created.Games, 3)
	assert.Equal(t, 1, env.metrics.TournamentsCreated())
	assert.Equal(t, 1, env.metrics.EventsProcessed(string(pubsub.EventTournamentCreated)))

	path := fmt.Sprintf("/tournaments/%d", created.ID)

	t.Run("players in an active tournament are busy", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/tournaments", map[string][]int{"player_ids": ids})
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("submit scores", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, path+"/scores", scoreBody(1, 21, 15))
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		updated := decode[tournament.Tournament](t, rr)
		assert.Equal(t, 2, updated.CurrentGame)
		assert.Equal(t, 1, env.metrics.ScoresSubmitted())

		rr = env.do(t, http.MethodPost, path+"/scores", scoreBody(2, 0, 21))
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	})

	t.Run("score errors", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPost, path+"/scores", scoreBody(9, 21, 15)).Code)
		assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, path+"/scores", scoreBody(1, -1, 15)).Code)
		assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, path+"/scores", map[string]int{"game_number": 1, "score_team1": 3}).Code)
		assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPost, "/tournaments/999/scores", scoreBody(1, 21, 15)).Code)
		assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/tournaments/abc/scores", scoreBody(1, 21, 15)).Code)
	})

	t.Run("box score", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, path+"/boxscore", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		report := decode[stats.TournamentReport](t, rr)
		assert.Equal(t, 2, report.GamesScored)
		assert.Equal(t, 3, report.GamesTotal)
		assert.Len(t, report.Standings, 4)
		assert.Nil(t, report.Champion, "active tournaments have no champion")
		assert.Equal(t, 1, env.metrics.StatsObservations("boxscore"))
	})

	t.Run("complete announces the result", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, path+"/complete", nil)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Equal(t, tournament.StatusCompleted, decode[tournament.Tournament](t, rr).Status)
		assert.Equal(t, 1, env.metrics.TournamentsClosed(string(tournament.StatusCompleted)))

		require.Len(t, notif.SendTournamentResultCalls, 1)
		report := notif.SendTournamentResultCalls[0]
		assert.Equal(t, created.ID, report.TournamentID)
		require.NotNil(t, report.Champion)
		assert.False(t, notif.SendTournamentResultDry[0])
	})

	t.Run("closed tournaments reject changes", func(t *testing.T) {
		assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, path+"/scores", scoreBody(3, 21, 15)).Code)
		assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, path+"/cancel", nil).Code)
	})

	t.Run("list by status", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, "/tournaments", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Len(t, decode[[]tournament.Tournament](t, rr), 1)

		rr = env.do(t, http.MethodGet, "/tournaments?status=active", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "[]\n", rr.Body.String())

		assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/tournaments?status=bogus", nil).Code)
	})
}

func TestCreateTournament_NotEnoughPlayers(t *testing.T) {
	env, teardown := setupTestServer(t, notifier.NewMock(), "")
	defer teardown()

	ids := env.addPlayers(t, "Ann", "Ben", "Cat")
	rr := env.do(t, http.MethodPost, "/tournaments", map[string][]int{"player_ids": ids})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, 0, env.metrics.TournamentsCreated())
}

func TestDryRunCompletion(t *testing.T) {
	notif := notifier.NewMock()
	env, teardown := setupTestServer(t, notif, "")
	defer teardown()

	created := env.createTournament(t, env.addPlayers(t, "Ann", "Ben", "Cat", "Dan"))
	rr := env.do(t, http.MethodPost, fmt.Sprintf("/tournaments/%d/cancel?dry_run=true", created.ID), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, notif.SendTournamentResultCalls, "cancelled tournaments are not announced")

	created = env.createTournament(t, env.addPlayers(t, "Eve", "Fay", "Gus", "Hal"))
	rr = env.do(t, http.MethodPost, fmt.Sprintf("/tournaments/%d/complete?dry_run=true", created.ID), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, notif.SendTournamentResultDry, 1)
	assert.True(t, notif.SendTournamentResultDry[0])
}

func TestStatsHandlers(t *testing.T) {
	env, teardown := setupTestServer(t, notifier.NewMock(), "")
	defer teardown()

	ids := env.addPlayers(t, "Ann", "Ben", "Cat", "Dan", "Eve")
	created := env.createTournament(t, ids[:4])
	path := fmt.Sprintf("/tournaments/%d/scores", created.ID)

	rr := env.do(t, http.MethodGet, "/rankings", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	rows := decode[[]map[string]any](t, rr)
	require.Len(t, rows, 5)
	assert.EqualValues(t, 0, rows[0]["games_played"])
	assert.Equal(t, 1, env.metrics.SnapshotMisses())

	for _, g := range created.Games {
		require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, path, scoreBody(g.GameNumber, 21, 10)).Code)
	}

	t.Run("scores invalidate the snapshot", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, "/rankings", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		rows := decode[[]map[string]any](t, rr)
		assert.EqualValues(t, 3, rows[0]["games_played"])
		assert.Contains(t, rows[0], "win_pct")
		assert.Equal(t, 2, env.metrics.SnapshotMisses())
	})

	t.Run("cached reads are hits", func(t *testing.T) {
		hits := env.metrics.SnapshotHits()
		require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/achievements", nil).Code)
		assert.Equal(t, hits+1, env.metrics.SnapshotHits())
	})

	t.Run("expired snapshots reload", func(t *testing.T) {
		misses := env.metrics.SnapshotMisses()
		env.clock.Advance(snapshot.DefaultTTL + time.Second)
		require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/duos", nil).Code)
		assert.Equal(t, misses+1, env.metrics.SnapshotMisses())
	})

	t.Run("achievements", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, "/achievements", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		boards := decode[[]stats.Board](t, rr)
		require.Len(t, boards, 4)
		assert.Equal(t, "Ever-Present", boards[3].Title)
		assert.Len(t, boards[3].Entries, stats.BoardSize)
	})

	t.Run("duos", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, "/duos", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "[]\n", rr.Body.String(), "no pair has three games together")

		rr = env.do(t, http.MethodGet, "/duos?all=true", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Len(t, decode[[]stats.DuoSummary](t, rr), 6)
	})

	t.Run("matchups", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, fmt.Sprintf("/players/%d/matchups", ids[0]), nil)
		require.Equal(t, http.StatusOK, rr.Code)
		report := decode[stats.MatchupReport](t, rr)
		assert.Equal(t, "Ann", report.Name)
		assert.NotNil(t, report.FavouritePartners)

		assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/players/999/matchups", nil).Code)
	})

	t.Run("clear empties the store", func(t *testing.T) {
		require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/clear", nil).Code)
		rr := env.do(t, http.MethodGet, "/rankings", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, decode[[]stats.PlayerSummary](t, rr))
	})
}

func TestPushHandler(t *testing.T) {
	notif := notifier.NewMock()
	env, teardown := setupTestServer(t, notif, "")
	defer teardown()

	created := env.createTournament(t, env.addPlayers(t, "Ann", "Ben", "Cat", "Dan"))
	at := env.clock.Now()

	t.Run("unknown topic", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/pubsub/bogus", pushBody(t, pubsub.NewEvent(pubsub.EventScoreSubmitted, created.ID, 1, at)))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("type must match topic", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/pubsub/tournament-completed", pushBody(t, pubsub.NewEvent(pubsub.EventScoreSubmitted, created.ID, 1, at)))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("bad base64", func(t *testing.T) {
		body := map[string]any{"message": map[string]string{"data": "%%%"}}
		assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/pubsub/score-submitted", body).Code)
	})

	t.Run("completed event is announced", func(t *testing.T) {
		before := env.metrics.EventsProcessed(string(pubsub.EventTournamentCompleted))
		evt := pubsub.NewEvent(pubsub.EventTournamentCompleted, created.ID, 0, at)

		rr := env.do(t, http.MethodPost, "/pubsub/tournament-completed?dry_run=true", pushBody(t, evt))

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Equal(t, "OK", rr.Body.String())
		assert.Equal(t, before+1, env.metrics.EventsProcessed(string(pubsub.EventTournamentCompleted)))
		require.Len(t, notif.SendTournamentResultDry, 1)
		assert.True(t, notif.SendTournamentResultDry[0])
	})

	t.Run("missing tournament asks for redelivery", func(t *testing.T) {
		evt := pubsub.NewEvent(pubsub.EventTournamentCompleted, 999, 0, at)
		rr := env.do(t, http.MethodPost, "/pubsub/tournament-completed", pushBody(t, evt))
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestSlackCommands(t *testing.T) {
	notif := slacknotifier.NewNotifierWithAPI(nil, "C123", metrics.NewMock())
	env, teardown := setupTestServer(t, notif, testSlackSigningSecret)
	defer teardown()

	ids := env.addPlayers(t, "Ann Lee", "Ben", "Cat", "Dan")
	created := env.createTournament(t, ids)
	path := fmt.Sprintf("/tournaments/%d/scores", created.ID)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, path, scoreBody(1, 21, 15)).Code)

	serve := func(req *http.Request) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		env.server.Router.ServeHTTP(rr, req)
		return rr
	}

	t.Run("unsigned requests are rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/slack/command/leaderboard", strings.NewReader("text="))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		assert.Equal(t, http.StatusUnauthorized, serve(req).Code)
	})

	t.Run("wrong secret is rejected", func(t *testing.T) {
		req := createSlackCommandRequest(t, "/slack/command/leaderboard", url.Values{}, "not-the-secret")
		assert.Equal(t, http.StatusUnauthorized, serve(req).Code)
	})

	t.Run("leaderboard", func(t *testing.T) {
		rr := serve(createSlackCommandRequest(t, "/slack/command/leaderboard", url.Values{"command": {"/leaderboard"}}, testSlackSigningSecret))
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Contains(t, rr.Body.String(), "Player Leaderboard")
		assert.Contains(t, rr.Body.String(), "Ann Lee")
	})

	t.Run("achievements", func(t *testing.T) {
		rr := serve(createSlackCommandRequest(t, "/slack/command/achievements", url.Values{"command": {"/achievements"}}, testSlackSigningSecret))
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Contains(t, rr.Body.String(), "Streak Master")
	})

	t.Run("matchups by name prefix", func(t *testing.T) {
		form := url.Values{"command": {"/matchups"}, "text": {"ann"}, "user_name": {"ann"}}
		rr := serve(createSlackCommandRequest(t, "/slack/command/matchups", form, testSlackSigningSecret))
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Contains(t, rr.Body.String(), "Matchups for Ann Lee")
	})

	t.Run("matchups for an unknown player", func(t *testing.T) {
		form := url.Values{"command": {"/matchups"}, "text": {"Zed"}}
		rr := serve(createSlackCommandRequest(t, "/slack/command/matchups", form, testSlackSigningSecret))
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Contains(t, rr.Body.String(), "couldn't find a player matching *Zed*")
	})
}

func TestFindPlayer(t *testing.T) {
	players := []tournament.Player{{ID: 1, Name: "Ann"}, {ID: 2, Name: "Anna"}, {ID: 3, Name: "Ben"}}

	tests := []struct {
		query  string
		wantID int
		found  bool
	}{
		{"ann", 1, true},
		{"ANNA", 2, true},
		{"An", 0, false},
		{"be", 3, true},
		{"#3", 3, true},
		{"2", 2, true},
		{"", 0, false},
		{"zed", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			p, ok := findPlayer(players, tt.query)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.wantID, p.ID)
		})
	}
}
