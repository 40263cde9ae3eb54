package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cricledger/auction-backend/internal/domain"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The UI is served from a different origin in development.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	watchInterval = time.Second
	writeTimeout  = 5 * time.Second
)

// watchMessage is one frame of the auction state stream. Started reports
// whether a record exists yet; State is absent until it does.
type watchMessage struct {
	Started bool                  `json:"started"`
	State   *domain.AuctionRecord `json:"state,omitempty"`
}

// handleWatchAuction streams auction state snapshots over a websocket: one
// frame immediately on connect, then one per tick until the client goes
// away. The stream is a push form of the polling read model; it takes no
// part in the state machine.
func (s *Server) handleWatchAuction(w http.ResponseWriter, r *http.Request) {
	playerID, ok := playerIDFrom(w, r)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote an HTTP error.
		return
	}
	defer conn.Close()

	// Drain the read side so close frames are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for {
		msg := watchMessage{}
		if snap, found := s.Engine.Get(r.Context(), playerID); found {
			msg.Started = true
			msg.State = &snap
		}

		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(msg); err != nil {
			return
		}

		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}
