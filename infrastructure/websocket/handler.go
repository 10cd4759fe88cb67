// Package websocket is the client transport: one socket per connection,
// JSON frames in both directions.
package websocket

import (
	"chat-hub/domain"
	"chat-hub/services"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type Settings struct {
	BufferSize   int
	WriteTimeout time.Duration
	PongTimeout  time.Duration
	// MaxFrameSize closes connections sending a larger frame. Zero means no limit.
	MaxFrameSize int64
}

type Handler struct {
	log      *slog.Logger
	service  services.IChatService
	settings Settings
	upgrader websocket.Upgrader
}

func NewHandler(log *slog.Logger, service services.IChatService, settings Settings) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		settings: settings,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws", h.serve)
}

// serve owns the socket for its whole life. The connection id is assigned here
// and is never reused.
func (h *Handler) serve(w http.ResponseWriter, r *http.Request) {
	socket, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("Websocket upgrade failed", "error", err)
		return
	}

	conn := domain.ConnID(uuid.NewString())
	sink := NewSink(h.settings.BufferSize)
	h.service.Connect(conn, sink)
	h.log.Info("Connection opened", "conn", conn, "remote", r.RemoteAddr)

	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.writePump(ctx, cancel, socket, sink)
		// unblocks readPump when the writer gave up first
		_ = socket.Close()
	}()

	h.readPump(ctx, conn, socket)

	cancel()
	<-done
	h.service.Disconnect(context.WithoutCancel(ctx), conn)
	h.log.Info("Connection closed", "conn", conn)
}

func (h *Handler) readPump(ctx context.Context, conn domain.ConnID, socket *websocket.Conn) {
	if h.settings.MaxFrameSize > 0 {
		socket.SetReadLimit(h.settings.MaxFrameSize)
	}
	_ = socket.SetReadDeadline(time.Now().Add(h.settings.PongTimeout))
	socket.SetPongHandler(func(string) error {
		return socket.SetReadDeadline(time.Now().Add(h.settings.PongTimeout))
	})

	for {
		if ctx.Err() != nil {
			return
		}
		kind, raw, err := socket.ReadMessage()
		if err != nil {
			if errors.Is(err, websocket.ErrReadLimit) {
				h.log.Warn("Frame over the size limit", "conn", conn, "limit", h.settings.MaxFrameSize)
				return
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("Websocket read failed", "conn", conn, "error", err)
			}
			return
		}
		_ = socket.SetReadDeadline(time.Now().Add(h.settings.PongTimeout))
		if kind != websocket.TextMessage {
			continue
		}

		request, cmd, err := services.DecodeCommand(raw)
		if err != nil {
			h.service.Reject(ctx, conn, request, err)
			continue
		}
		_ = h.service.Handle(ctx, conn, cmd)
	}
}

// writePump is the only writer of the socket besides control frames.
func (h *Handler) writePump(ctx context.Context, cancel context.CancelFunc, socket *websocket.Conn, sink *Sink) {
	defer cancel()
	ticker := time.NewTicker(h.settings.PongTimeout * 9 / 10)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = socket.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(h.settings.WriteTimeout))
			return
		case n := <-sink.Notifications:
			frame, err := services.EncodeNotification(n)
			if err != nil {
				h.log.Error("Cannot encode notification", "topic", n.Topic(), "error", err)
				continue
			}
			_ = socket.SetWriteDeadline(time.Now().Add(h.settings.WriteTimeout))
			if err = socket.WriteMessage(websocket.TextMessage, frame); err != nil {
				h.log.Debug("Websocket write failed", "error", err)
				return
			}
		case <-ticker.C:
			if err := socket.WriteControl(websocket.PingMessage, nil, time.Now().Add(h.settings.WriteTimeout)); err != nil {
				return
			}
		}
	}
}
