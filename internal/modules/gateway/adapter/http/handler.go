package http

import (
	"context"
	"net/http"

	"github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/gateway/usecase"
	"github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/gateway/ws"
	"github.com/NDKhanh96/linker-chat-be-sub000/pkg/logger"
	"github.com/NDKhanh96/linker-chat-be-sub000/pkg/service"
	"github.com/gorilla/websocket"
)

// Handler handles WebSocket upgrade requests
type Handler struct {
	useCase *usecase.GatewayUseCase
	manager *ws.Manager
	userSvc service.UserService
}

// NewHandler creates a new gateway handler
func NewHandler(useCase *usecase.GatewayUseCase, manager *ws.Manager, userSvc service.UserService) *Handler {
	return &Handler{
		useCase: useCase,
		manager: manager,
		userSvc: userSvc,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for now
	},
}

// HandleWebSocket authenticates the handshake and promotes the request
// to a live chat connection. The token is checked before the upgrade:
// an unauthenticated request is rejected with 401 and never touches the
// registry.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WebSocketContext(r)
	wsRequestID := logger.GetRequestID(ctx)

	token := r.URL.Query().Get("token")
	if token == "" {
		logger.Warn(ctx).Str("remote_addr", r.RemoteAddr).Msg("ws handshake without token")
		http.Error(w, "authentication token not found", http.StatusUnauthorized)
		return
	}

	identity, err := h.userSvc.ValidateToken(r.Context(), token)
	if err != nil {
		logger.Warn(ctx).Err(err).Str("remote_addr", r.RemoteAddr).Msg("ws handshake token rejected")
		http.Error(w, "authentication failed", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error(ctx).Err(err).Msg("ws upgrade failed")
		return
	}

	client, first := h.manager.Register(conn, identity)

	if err := h.useCase.HandleConnect(ctx, client, first); err != nil {
		logger.Error(ctx).
			Err(err).
			Int64("user_id", identity.UserID).
			Msg("ws connect setup failed")
		h.useCase.HandleDisconnect(ctx, client)
		return
	}

	go client.WritePump()
	go client.ReadPump(
		func(c *ws.Connection, message []byte) {
			msgCtx := logger.WithRequestID(context.Background(), logger.GenerateRequestID())
			msgCtx = logger.WithFields(msgCtx, map[string]interface{}{
				"user_id":       c.UserID(),
				"ws_request_id": wsRequestID,
			})

			h.useCase.HandleFrame(msgCtx, c, message)
		},
		func(c *ws.Connection) {
			disconnectCtx := logger.WithRequestID(context.Background(), wsRequestID)
			h.useCase.HandleDisconnect(disconnectCtx, c)
		},
	)
}
