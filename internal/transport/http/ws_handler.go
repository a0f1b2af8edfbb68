package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"mcq-service/internal/app"
	"mcq-service/internal/auth"
	"mcq-service/internal/domain"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

type WSHandler struct {
	service  *app.QuestionService
	issuer   *auth.TokenIssuer
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuestionService, issuer *auth.TokenIssuer) *WSHandler {
	return &WSHandler{
		service: service,
		issuer:  issuer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type wsAnswerPayload struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS streams the caller-visible snapshot after every mutation and accepts
// answer submissions on the same connection. The caller must already be
// authenticated by RequireToken; the stream ends once the token expires or is
// revoked.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFrom(r.Context())
	rawToken := auth.BearerToken(r)
	snapshots, cancel, err := h.service.Subscribe(r.Context(), principal)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	defer cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	var endOnce sync.Once
	endSession := func() {
		endOnce.Do(func() {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "session ended"),
				time.Now().Add(writeWait))
			_ = conn.Close()
		})
	}
	sessionValid := func() bool {
		_, _, err := h.issuer.Parse(r.Context(), rawToken)
		if err == nil {
			return true
		}
		if !errors.Is(err, domain.ErrUnauthorized) {
			log.Printf("ws token recheck: %v", err)
			return true
		}
		endSession()
		return false
	}
	if claims := auth.ClaimsFrom(r.Context()); claims != nil && claims.ExpiresAt != nil {
		expiry := time.AfterFunc(time.Until(claims.ExpiresAt.Time), endSession)
		defer expiry.Stop()
	}

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	snapshotsDone := make(chan struct{})

	// Single writer: gorilla connections do not support concurrent writes.
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case msg, ok := <-send:
				if !ok {
					_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(msg); err != nil {
					log.Printf("ws write error: %v", err)
					_ = conn.Close()
					return
				}
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					_ = conn.Close()
					return
				}
			}
		}
	}()

	go func() {
		defer close(snapshotsDone)
		for {
			select {
			case snap, ok := <-snapshots:
				if !ok {
					return
				}
				if !sessionValid() {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "snapshot", Payload: snap}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	conn.SetReadLimit(maxBodyBytes)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	reply := func(msg outboundMessage[any]) bool {
		select {
		case send <- msg:
			return true
		case <-writerDone:
			return false
		}
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("ws read error: %v", err)
			}
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		var msg outboundMessage[any]
		switch inbound.Type {
		case "answer":
			if !sessionValid() {
				break
			}
			msg = h.handleAnswer(r, principal, inbound.Payload)
		case "ping":
			msg = outboundMessage[any]{Type: "pong", Payload: struct{}{}}
		default:
			msg = outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
		if msg.Type == "" {
			continue
		}
		if !reply(msg) {
			break
		}
	}

	close(closeSignals)
	<-snapshotsDone
	close(send)
	<-writerDone
}

func (h *WSHandler) handleAnswer(r *http.Request, principal domain.Principal, raw json.RawMessage) outboundMessage[any] {
	var payload wsAnswerPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}}
	}
	submission, err := h.service.SubmitAnswer(r.Context(), principal, payload.QuestionID, payload.Answer)
	if err != nil {
		msg := err.Error()
		if !isClientError(err) {
			log.Printf("ws answer: %v", err)
			msg = "internal error"
		}
		return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
	}
	return outboundMessage[any]{Type: "answerAccepted", Payload: submission}
}

func isClientError(err error) bool {
	return errors.Is(err, domain.ErrInvalidInput) ||
		errors.Is(err, domain.ErrQuestionNotFound) ||
		errors.Is(err, domain.ErrUnauthorized) ||
		errors.Is(err, domain.ErrForbidden)
}
