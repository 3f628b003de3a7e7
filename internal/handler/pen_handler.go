package handler

import (
	"context"
	"encoding/json"
	"time"

	"econote-be/internal/pkg/logger"
	"econote-be/internal/pkg/serverutils"
	"econote-be/internal/service"
	"econote-be/internal/session"
	internalWS "econote-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// flushTick is how often a quiet pen gets its buffered points pushed out.
const flushTick = 50 * time.Millisecond

// PenHandler bridges a pen's BLE notifications, relayed as binary frames, into a drawing session.
type PenHandler struct {
	sessions  service.ISessionService
	jwtSecret string
	logger    logger.ILogger
}

func NewPenHandler(sessions service.ISessionService, jwtSecret string, log logger.ILogger) *PenHandler {
	return &PenHandler{
		sessions:  sessions,
		jwtSecret: jwtSecret,
		logger:    log,
	}
}

func (h *PenHandler) ServeWs(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	userID := serverutils.UserID(c)
	sessionID, err := serverutils.ParamUUID(c, "sessionId")
	if err != nil {
		return err
	}
	s, err := h.sessions.Get(c.UserContext(), userID, sessionID)
	if err != nil {
		return err
	}

	return websocket.New(func(conn *websocket.Conn) {
		h.stream(conn, s)
	})(c)
}

func (h *PenHandler) stream(conn *websocket.Conn, s *session.Session) {
	fields := map[string]interface{}{
		"session_id": s.Id().String(),
		"user_id":    s.UserId().String(),
	}
	h.logger.Info("PenHandler", "Pen connected", fields)

	client := internalWS.NewClient(conn, s.UserId(), h.logger)
	go client.WritePump()

	cancel := s.Observe(func(e session.Event) {
		msg, err := json.Marshal(internalWS.Message{Type: e.Type, Data: e.Data})
		if err != nil {
			return
		}
		if !client.TrySend(msg) {
			h.logger.Warn("PenHandler", "Pen client too slow, event dropped", fields)
		}
	})

	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(flushTick)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.FlushIfDue()
			case <-stop:
				return
			}
		}
	}()

	client.ReadPump(func(messageType int, data []byte) error {
		if messageType != websocket.BinaryMessage {
			return nil
		}
		err := h.sessions.KeepAlive(context.Background(), s.UserId(), s.Id())
		if err == nil {
			err = s.Feed(data)
		}
		if err != nil {
			h.sessionEnded(client, fields, err)
		}
		return err
	})

	close(stop)
	s.EndPenStroke()
	cancel()
	close(client.Send)
	h.logger.Info("PenHandler", "Pen disconnected", fields)
}

// sessionEnded tells the pen client its session is gone so it can reopen one instead of drawing into the void.
func (h *PenHandler) sessionEnded(client *internalWS.Client, fields map[string]interface{}, err error) {
	msg, _ := json.Marshal(internalWS.Message{Type: session.EventSessionClosed, Data: fiber.Map{"message": err.Error()}})
	client.TrySend(msg)
	h.logger.Warn("PenHandler", "Pen stream ended, session is closed", fields)
}

func (h *PenHandler) RegisterRoutes(r fiber.Router) {
	p := r.Group("/pen/v1")
	p.Use(serverutils.JwtMiddleware(h.jwtSecret))
	p.Get("/:sessionId/ws", h.ServeWs)
}
