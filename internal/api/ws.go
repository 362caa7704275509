package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/antaresinnovate/eva/internal/conversation"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
)

// ChatSocketHandler serves the realtime chat transport: one websocket per
// session, each inbound message running the same pipeline as POST /api/chat.
type ChatSocketHandler struct {
	svc   *conversation.Service
	isDev bool
}

// NewChatSocketHandler creates a websocket chat handler.
func NewChatSocketHandler(svc *conversation.Service, isDev bool) *ChatSocketHandler {
	return &ChatSocketHandler{svc: svc, isDev: isDev}
}

type wsInbound struct {
	Message string `json:"message"`
}

type wsOutbound struct {
	Type      string      `json:"type"`
	SessionID string      `json:"session_id,omitempty"`
	Message   string      `json:"message,omitempty"`
	Context   interface{} `json:"context,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// ServeHTTP upgrades the connection and pumps chat turns until the client
// disconnects.
func (h *ChatSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	slog.Info("Chat socket connected", "session_id", sessionID, "ip", r.RemoteAddr)

	opts := &websocket.AcceptOptions{}
	if h.isDev {
		opts.OriginPatterns = []string{"*"}
	}
	conn, err := websocket.Accept(w, r, opts)
	if err != nil {
		slog.Error("Failed to accept chat socket", "error", err, "session_id", sessionID)
		return
	}
	defer func() {
		if closeErr := conn.Close(websocket.StatusNormalClosure, "conversation ended"); closeErr != nil {
			slog.Debug("Failed to close chat socket", "error", closeErr, "session_id", sessionID)
		}
	}()

	ctx := r.Context()

	if err := wsjson.Write(ctx, conn, wsOutbound{Type: "connected", SessionID: sessionID}); err != nil {
		slog.Debug("Failed to send connected frame", "error", err, "session_id", sessionID)
		return
	}

	for {
		var in wsInbound
		if err := wsjson.Read(ctx, conn, &in); err != nil {
			if websocket.CloseStatus(err) != -1 || errors.Is(err, context.Canceled) {
				slog.Info("Chat socket closed", "session_id", sessionID)
				return
			}
			slog.Debug("Chat socket read failed", "error", err, "session_id", sessionID)
			return
		}
		if in.Message == "" {
			if err := wsjson.Write(ctx, conn, wsOutbound{Type: "error", Error: "no message provided"}); err != nil {
				return
			}
			continue
		}

		if err := wsjson.Write(ctx, conn, wsOutbound{Type: "typing", SessionID: sessionID}); err != nil {
			return
		}

		res, err := h.svc.Chat(ctx, sessionID, in.Message)
		if err != nil {
			slog.Error("Chat turn failed on socket", "session_id", sessionID, "error", err)
			if writeErr := wsjson.Write(ctx, conn, wsOutbound{Type: "error", Error: err.Error()}); writeErr != nil {
				return
			}
			continue
		}

		out := wsOutbound{
			Type:      "message",
			SessionID: res.SessionID,
			Message:   res.Message,
			Context:   res.Session.Facts,
		}
		if err := wsjson.Write(ctx, conn, out); err != nil {
			slog.Debug("Chat socket write failed", "error", err, "session_id", sessionID)
			return
		}
	}
}
