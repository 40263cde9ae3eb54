package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cricledger/auction-backend/internal/adapter/repository/memory"
	"github.com/cricledger/auction-backend/internal/auth"
	"github.com/cricledger/auction-backend/internal/domain"
	"github.com/cricledger/auction-backend/internal/usecase/auction"
)

const (
	adminToken = "test-admin-token"
	userToken  = "test-user-token"
)

type testEnv struct {
	server *httptest.Server
	ledger *memory.TeamLedger
	teamA  domain.Team
	teamB  domain.Team
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	teamA := domain.Team{ID: uuid.New(), Name: "Royals", TotalPurse: domain.MustMoney("10.0")}
	teamB := domain.Team{ID: uuid.New(), Name: "Kings", TotalPurse: domain.MustMoney("10.0")}
	ledger := memory.NewTeamLedger(teamA, teamB)

	tokens := auth.NewTokenRegistry()
	tokens.Register(adminToken, domain.RoleAdmin)
	tokens.Register(userToken, domain.RoleUser)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := auction.NewService(ledger, auth.RoleGate{}, logger, nil)
	srv := httptest.NewServer(NewServer(engine, ledger, tokens, logger).Router())
	t.Cleanup(srv.Close)

	return &testEnv{server: srv, ledger: ledger, teamA: teamA, teamB: teamB}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeRecord(t *testing.T, resp *http.Response) domain.AuctionRecord {
	t.Helper()
	var rec domain.AuctionRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rec))
	return rec
}

func decodeError(t *testing.T, resp *http.Response) (kind string) {
	t.Helper()
	var payload struct {
		Error string `json:"error"`
		Kind  string `json:"kind"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return payload.Kind
}

func TestAPI_RequiresAuthentication(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/auctions", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/auctions", "wrong-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHealthz_IsPublic(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStartAuction(t *testing.T) {
	env := newTestEnv(t)
	playerID := uuid.New().String()

	resp := env.do(t, http.MethodPost, "/api/auctions/"+playerID+"/start", adminToken,
		startAuctionRequest{StartingBid: "2.0", FixedIncrement: true})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	rec := decodeRecord(t, resp)
	assert.Equal(t, playerID, rec.PlayerID.String())
	assert.Equal(t, domain.StatusActive, rec.Status)
	assert.True(t, rec.HighestBid.Equal(domain.MustMoney("2.0")))
	assert.True(t, rec.FixedIncrement)

	// Second start for the same player conflicts.
	resp = env.do(t, http.MethodPost, "/api/auctions/"+playerID+"/start", adminToken,
		startAuctionRequest{StartingBid: "2.0"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "already_exists", decodeError(t, resp))
}

func TestStartAuction_Rejections(t *testing.T) {
	env := newTestEnv(t)
	playerID := uuid.New().String()

	// Non-admin callers may not start auctions.
	resp := env.do(t, http.MethodPost, "/api/auctions/"+playerID+"/start", userToken,
		startAuctionRequest{StartingBid: "2.0"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "unauthorized", decodeError(t, resp))

	resp = env.do(t, http.MethodPost, "/api/auctions/"+playerID+"/start", adminToken,
		startAuctionRequest{StartingBid: "-1"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "invalid_amount", decodeError(t, resp))

	resp = env.do(t, http.MethodPost, "/api/auctions/not-a-uuid/start", adminToken,
		startAuctionRequest{StartingBid: "2.0"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPlaceBid(t *testing.T) {
	env := newTestEnv(t)
	playerID := uuid.New().String()

	env.do(t, http.MethodPost, "/api/auctions/"+playerID+"/start", adminToken,
		startAuctionRequest{StartingBid: "2.0"})

	resp := env.do(t, http.MethodPost, "/api/auctions/"+playerID+"/bids", userToken,
		placeBidRequest{TeamID: env.teamA.ID.String(), Amount: "2.5"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rec := decodeRecord(t, resp)
	assert.True(t, rec.HighestBid.Equal(domain.MustMoney("2.5")))
	assert.Equal(t, env.teamA.ID, *rec.HighestBidderTeamID)

	// Equal bid from the other team is rejected with a matchable kind.
	resp = env.do(t, http.MethodPost, "/api/auctions/"+playerID+"/bids", userToken,
		placeBidRequest{TeamID: env.teamB.ID.String(), Amount: "2.5"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "not_higher", decodeError(t, resp))

	// Bid exceeding the team's purse.
	resp = env.do(t, http.MethodPost, "/api/auctions/"+playerID+"/bids", userToken,
		placeBidRequest{TeamID: env.teamB.ID.String(), Amount: "11.0"})
	assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
	assert.Equal(t, "insufficient_budget", decodeError(t, resp))
}

func TestPlaceBid_NoAuction(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/auctions/"+uuid.New().String()+"/bids", userToken,
		placeBidRequest{TeamID: env.teamA.ID.String(), Amount: "2.5"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", decodeError(t, resp))
}

func TestStopAndFinalize(t *testing.T) {
	env := newTestEnv(t)
	playerID := uuid.New().String()

	env.do(t, http.MethodPost, "/api/auctions/"+playerID+"/start", adminToken,
		startAuctionRequest{StartingBid: "2.0"})

	// Finalizing an active auction conflicts.
	resp := env.do(t, http.MethodPost, "/api/auctions/"+playerID+"/finalize", adminToken, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "not_stopped", decodeError(t, resp))

	env.do(t, http.MethodPost, "/api/auctions/"+playerID+"/bids", userToken,
		placeBidRequest{TeamID: env.teamA.ID.String(), Amount: "3.5"})

	resp = env.do(t, http.MethodPost, "/api/auctions/"+playerID+"/stop", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, domain.StatusStopped, decodeRecord(t, resp).Status)

	resp = env.do(t, http.MethodPost, "/api/auctions/"+playerID+"/finalize", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, domain.StatusFinalized, decodeRecord(t, resp).Status)

	// The winning team's budget reflects the sale.
	resp = env.do(t, http.MethodGet, "/api/teams/budgets", userToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var budgets []domain.TeamBudget
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&budgets))
	for _, b := range budgets {
		if b.TeamID == env.teamA.ID {
			assert.True(t, b.Committed.Equal(domain.MustMoney("3.5")))
			assert.True(t, b.Remaining.Equal(domain.MustMoney("6.5")))
		}
	}

	// The player shows up as assigned.
	resp = env.do(t, http.MethodGet, "/api/assignments", userToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var assignments map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&assignments))
	assert.Equal(t, env.teamA.ID.String(), assignments[playerID])
}

func TestFinalize_NoBidsConflicts(t *testing.T) {
	env := newTestEnv(t)
	playerID := uuid.New().String()

	env.do(t, http.MethodPost, "/api/auctions/"+playerID+"/start", adminToken,
		startAuctionRequest{StartingBid: "2.0"})
	env.do(t, http.MethodPost, "/api/auctions/"+playerID+"/stop", adminToken, nil)

	resp := env.do(t, http.MethodPost, "/api/auctions/"+playerID+"/finalize", adminToken, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "no_bids", decodeError(t, resp))
}

func TestGetAuction_NotFound(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/auctions/"+uuid.New().String(), userToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWatchAuction_StreamsSnapshots(t *testing.T) {
	env := newTestEnv(t)
	playerID := uuid.New().String()

	env.do(t, http.MethodPost, "/api/auctions/"+playerID+"/start", adminToken,
		startAuctionRequest{StartingBid: "2.0"})

	wsURL := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/api/auctions/" + playerID + "/watch"
	header := http.Header{"Authorization": []string{"Bearer " + userToken}}
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	if resp != nil {
		defer resp.Body.Close()
	}
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg struct {
		Started bool                  `json:"started"`
		State   *domain.AuctionRecord `json:"state"`
	}
	require.NoError(t, conn.ReadJSON(&msg))

	assert.True(t, msg.Started)
	require.NotNil(t, msg.State)
	assert.Equal(t, playerID, msg.State.PlayerID.String())
	assert.True(t, msg.State.HighestBid.Equal(domain.MustMoney("2.0")))
}
