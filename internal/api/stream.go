package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/vishwajeetsingh04/interview-engine/internal/models"
	"github.com/vishwajeetsingh04/interview-engine/internal/warnings"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// StreamMessage is the wire format for the live metrics feed
type StreamMessage struct {
	Type     string           `json:"type"`
	Snapshot *models.Snapshot `json:"snapshot,omitempty"`
	Message  string           `json:"message,omitempty"`
}

const pingInterval = 30 * time.Second

// handleSessionStream upgrades the connection and forwards every snapshot
// published for the session. Subscribers join and leave independently of
// ingestion; this handler only ever reads from its hub channel, so a slow
// socket cannot reach back into the ingest path.
func (s *Server) handleSessionStream(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	if sessionID == "" {
		http.Error(w, "session id required", http.StatusBadRequest)
		return
	}

	if _, err := s.registry.Get(sessionID); err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()

	slog.Info("metrics stream connected", "session_id", sessionID)

	sub := s.hub.Subscribe(sessionID)
	defer sub.Unsubscribe()

	if err := conn.WriteJSON(StreamMessage{
		Type:    "connected",
		Message: "subscribed to session " + sessionID,
	}); err != nil {
		return
	}

	// Drain client frames so close handshakes and pongs are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				conn.Close()
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case snap, ok := <-sub.C():
			if !ok {
				// Session ended; tell the observer before hanging up.
				_ = conn.WriteJSON(StreamMessage{Type: "session_ended"})
				slog.Info("metrics stream closed", "session_id", sessionID)
				return
			}

			// Decay: stale warnings fall out of the displayed feed here,
			// never inside the engine. Copy before filtering; the snapshot
			// pointer is shared with every other subscriber.
			view := *snap
			view.Warnings = warnings.Fresh(snap.Warnings, time.Now().UTC(), s.engineCfg.DisplayWindow)

			if err := conn.WriteJSON(StreamMessage{
				Type:     "metrics_update",
				Snapshot: &view,
			}); err != nil {
				slog.Debug("websocket write failed", "error", err, "session_id", sessionID)
				return
			}

		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
