package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/cricledger/auction-backend/internal/auth"
	"github.com/cricledger/auction-backend/internal/domain"
	"github.com/cricledger/auction-backend/internal/usecase/auction"
)

// Server exposes the auction engine over HTTP. Routes map 1:1 to the
// engine's lifecycle operations; all request and response amounts travel
// as decimal strings.
type Server struct {
	Engine *auction.Service
	Ledger domain.TeamLedger
	Tokens *auth.TokenRegistry
	Logger *slog.Logger
}

// NewServer creates the HTTP adapter.
func NewServer(engine *auction.Service, ledger domain.TeamLedger, tokens *auth.TokenRegistry, logger *slog.Logger) *Server {
	return &Server{
		Engine: engine,
		Ledger: ledger,
		Tokens: tokens,
		Logger: logger,
	}
}

// Router builds the route table with authentication and request logging
// applied to the API surface.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(RequestLogging(s.Logger))
	api.Use(Authenticate(s.Tokens))

	api.HandleFunc("/auctions", s.handleListAuctions).Methods(http.MethodGet)
	api.HandleFunc("/auctions/{playerID}", s.handleGetAuction).Methods(http.MethodGet)
	api.HandleFunc("/auctions/{playerID}/start", s.handleStartAuction).Methods(http.MethodPost)
	api.HandleFunc("/auctions/{playerID}/bids", s.handlePlaceBid).Methods(http.MethodPost)
	api.HandleFunc("/auctions/{playerID}/stop", s.handleStopAuction).Methods(http.MethodPost)
	api.HandleFunc("/auctions/{playerID}/finalize", s.handleFinalizeAuction).Methods(http.MethodPost)
	api.HandleFunc("/auctions/{playerID}/watch", s.handleWatchAuction).Methods(http.MethodGet)
	api.HandleFunc("/teams/budgets", s.handleTeamBudgets).Methods(http.MethodGet)
	api.HandleFunc("/assignments", s.handleAssignments).Methods(http.MethodGet)

	return r
}

type startAuctionRequest struct {
	StartingBid    string `json:"startingBid"`
	FixedIncrement bool   `json:"fixedIncrement"`
}

type placeBidRequest struct {
	TeamID string `json:"teamId"`
	Amount string `json:"amount"`
}

func (s *Server) handleStartAuction(w http.ResponseWriter, r *http.Request) {
	playerID, ok := playerIDFrom(w, r)
	if !ok {
		return
	}

	var req startAuctionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid json body")
		return
	}
	startingBid, err := domain.ParseMoney(req.StartingBid)
	if err != nil {
		writeError(w, err)
		return
	}

	caller := auth.CallerFrom(r.Context())
	if err := s.Engine.Start(r.Context(), caller, playerID, startingBid, req.FixedIncrement); err != nil {
		writeError(w, err)
		return
	}

	snap, _ := s.Engine.Get(r.Context(), playerID)
	writeJSON(w, http.StatusCreated, snap)
}

func (s *Server) handlePlaceBid(w http.ResponseWriter, r *http.Request) {
	playerID, ok := playerIDFrom(w, r)
	if !ok {
		return
	}

	var req placeBidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid json body")
		return
	}
	teamID, err := uuid.Parse(req.TeamID)
	if err != nil {
		writeBadRequest(w, "invalid teamId format")
		return
	}
	amount, err := domain.ParseMoney(req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	caller := auth.CallerFrom(r.Context())
	if err := s.Engine.PlaceBid(r.Context(), caller, playerID, teamID, amount); err != nil {
		writeError(w, err)
		return
	}

	snap, _ := s.Engine.Get(r.Context(), playerID)
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleStopAuction(w http.ResponseWriter, r *http.Request) {
	playerID, ok := playerIDFrom(w, r)
	if !ok {
		return
	}

	caller := auth.CallerFrom(r.Context())
	if err := s.Engine.Stop(r.Context(), caller, playerID); err != nil {
		writeError(w, err)
		return
	}

	snap, _ := s.Engine.Get(r.Context(), playerID)
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleFinalizeAuction(w http.ResponseWriter, r *http.Request) {
	playerID, ok := playerIDFrom(w, r)
	if !ok {
		return
	}

	caller := auth.CallerFrom(r.Context())
	if err := s.Engine.Finalize(r.Context(), caller, playerID); err != nil {
		writeError(w, err)
		return
	}

	snap, _ := s.Engine.Get(r.Context(), playerID)
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleGetAuction(w http.ResponseWriter, r *http.Request) {
	playerID, ok := playerIDFrom(w, r)
	if !ok {
		return
	}

	snap, found := s.Engine.Get(r.Context(), playerID)
	if !found {
		writeError(w, domain.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleListAuctions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Engine.List(r.Context()))
}

func (s *Server) handleTeamBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.Ledger.TeamBudgets(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, budgets)
}

func (s *Server) handleAssignments(w http.ResponseWriter, r *http.Request) {
	assignments, err := s.Ledger.Assignments(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make(map[string]string, len(assignments))
	for playerID, teamID := range assignments {
		out[playerID.String()] = teamID.String()
	}
	writeJSON(w, http.StatusOK, out)
}

func playerIDFrom(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	playerID, err := uuid.Parse(mux.Vars(r)["playerID"])
	if err != nil {
		writeBadRequest(w, "invalid playerID format")
		return uuid.UUID{}, false
	}
	return playerID, true
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg, Kind: "bad_request"})
}

// writeError maps engine errors to HTTP statuses. Clients dispatch on the
// kind tag, never on message substrings.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusForError(err), errorResponse{Error: err.Error(), Kind: domain.ErrorKind(err)})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrTeamNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInsufficientBudget):
		return http.StatusPaymentRequired
	case errors.Is(err, domain.ErrAlreadyExists),
		errors.Is(err, domain.ErrAlreadyStopped),
		errors.Is(err, domain.ErrNotStopped),
		errors.Is(err, domain.ErrAlreadyFinalized),
		errors.Is(err, domain.ErrNoBids),
		errors.Is(err, domain.ErrNotActive):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrNotHigher),
		errors.Is(err, domain.ErrIncrementMismatch):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
