package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"arcquiz-service/internal/app"
	"arcquiz-service/internal/domain"
	"github.com/gorilla/websocket"
)

const defaultQuestionCount = 10

// WSHandler drives one quiz session per websocket connection.
type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService) *WSHandler {
	return &WSHandler{
		service: service,
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

type startPayload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type resumePayload struct {
	SessionID string `json:"sessionId"`
}

type answerPayload struct {
	Choice int `json:"choice"`
}

type sessionPayload struct {
	SessionID string              `json:"sessionId"`
	Question  domain.QuestionView `json:"question"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and runs the play loop: start (or
// resume), then one answer per question until the session completes.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	sessionID := ""

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws read error: %v", err)
			}
			return
		}

		switch msg.Type {
		case "start":
			var p startPayload
			if err := json.Unmarshal(msg.Payload, &p); err != nil {
				h.writeError(conn, "bad start payload")
				continue
			}
			if p.Name == "" {
				p.Name = "Player"
			}
			if p.Count == 0 {
				p.Count = defaultQuestionCount
				if size := h.service.BankSize(); size < p.Count {
					p.Count = size
				}
			}
			id, view, err := h.service.Start(ctx, p.Name, p.Count)
			if err != nil {
				h.writeError(conn, err.Error())
				continue
			}
			sessionID = id
			h.write(conn, "question", sessionPayload{SessionID: id, Question: view})

		case "resume":
			var p resumePayload
			if err := json.Unmarshal(msg.Payload, &p); err != nil || p.SessionID == "" {
				h.writeError(conn, "bad resume payload")
				continue
			}
			view, err := h.service.Question(ctx, p.SessionID)
			if err != nil {
				h.writeError(conn, err.Error())
				continue
			}
			sessionID = p.SessionID
			h.write(conn, "question", sessionPayload{SessionID: sessionID, Question: view})

		case "answer":
			if sessionID == "" {
				h.writeError(conn, "no active session")
				continue
			}
			var p answerPayload
			if err := json.Unmarshal(msg.Payload, &p); err != nil {
				h.writeError(conn, "bad answer payload")
				continue
			}
			res, err := h.service.Submit(ctx, sessionID, p.Choice)
			if err != nil {
				h.writeError(conn, err.Error())
				continue
			}
			h.write(conn, "answerResult", res)
			if res.Done {
				if h.finish(ctx, conn, sessionID) {
					sessionID = ""
				}
			} else if view, err := h.service.Question(ctx, sessionID); err == nil {
				h.write(conn, "question", sessionPayload{SessionID: sessionID, Question: view})
			}

		case "finish":
			// Retry path for a completed session whose leaderboard
			// write failed.
			if sessionID == "" {
				h.writeError(conn, "no active session")
				continue
			}
			if h.finish(ctx, conn, sessionID) {
				sessionID = ""
			}

		default:
			h.writeError(conn, "unknown message type")
		}
	}
}

func (h *WSHandler) finish(ctx context.Context, conn *websocket.Conn, sessionID string) bool {
	result, err := h.service.Finish(ctx, sessionID)
	if err != nil {
		// Leaderboard write failed; the session stays in the registry
		// so the client can retry with a finish message.
		if !errors.Is(err, domain.ErrSessionNotFound) {
			log.Printf("finish session: %v", err)
		}
		h.writeError(conn, err.Error())
		return false
	}
	h.write(conn, "completed", result)
	return true
}

func (h *WSHandler) write(conn *websocket.Conn, msgType string, payload any) {
	if err := conn.WriteJSON(outboundMessage[any]{Type: msgType, Payload: payload}); err != nil {
		log.Printf("ws write error: %v", err)
	}
}

func (h *WSHandler) writeError(conn *websocket.Conn, message string) {
	h.write(conn, "error", errorPayload{Message: message})
}
