package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"daily-trivia-service/internal/app"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

type WSHandler struct {
	service  *app.GameService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.GameService) *WSHandler {
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

type wagerPayload struct {
	Amount int `json:"amount"`
}

type answerPayload struct {
	Text string `json:"text"`
}

type sharePayload struct {
	Text string `json:"text"`
}

type messagePayload struct {
	Message string `json:"message"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ServeWS upgrades HTTP requests to websockets and drives the player's day
// controller. Every state change is pushed as a "state" message.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("playerId")
	if playerID == "" {
		http.Error(w, "missing playerId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.Warnf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	controller, err := h.service.Join(ctx, playerID)
	if controller == nil {
		_ = conn.WriteJSON(outboundMessage[messagePayload]{Type: "error", Payload: messagePayload{Message: err.Error()}})
		return
	}
	// a fetch failure is reported through the error phase of the state view
	if err != nil {
		logrus.WithField("player", playerID).Warnf("begin day: %v", err)
	}

	updates, cancel := controller.Subscribe()
	defer h.service.Leave(context.Background(), controller)
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// single writer goroutine; gorilla connections allow one concurrent writer
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				logrus.Debugf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case view, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "state", Payload: view}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	reply := func(msg outboundMessage[any]) {
		select {
		case send <- msg:
		case <-writerDone:
		}
	}
	replyError := func(err error) {
		reply(outboundMessage[any]{Type: "error", Payload: messagePayload{Message: err.Error()}})
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "wager":
			var payload wagerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				replyError(errors.New("invalid wager payload"))
				continue
			}
			if _, err := controller.PlaceWager(payload.Amount); err != nil {
				replyError(err)
			}
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				replyError(errors.New("invalid answer payload"))
				continue
			}
			if _, err := controller.SubmitAnswer(ctx, payload.Text); err != nil {
				replyError(err)
			}
		case "next":
			if _, err := controller.Advance(); err != nil {
				replyError(err)
			}
		case "retry":
			if err := controller.Begin(ctx); err != nil {
				replyError(err)
			}
		case "share":
			text, err := controller.ShareText()
			if err != nil {
				replyError(err)
				continue
			}
			reply(outboundMessage[any]{Type: "share", Payload: sharePayload{Text: text}})
		default:
			replyError(errors.New("unsupported message type"))
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}
