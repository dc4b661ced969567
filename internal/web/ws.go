package web

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"reflect"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/jaminalder/unbeatable-tic-tac-toe/internal/app"
	"github.com/jaminalder/unbeatable-tic-tac-toe/internal/domain"
)

// Message represents JSON data sent across socket connections.
type Message struct {
	Type     string      `json:"type"`
	Contents interface{} `json:"contents,omitempty"`
}

// MoveRequest is the contents of a "move" message. Square is required.
type MoveRequest struct {
	Square *int `mapstructure:"square"`
}

const badMoveReason = "Unable to parse move request"

var errBadMove = errors.New("bad move request")

// decodeMove decodes "move" contents. A missing square, unknown keys and
// fractional numbers are rejected rather than defaulted or truncated.
func decodeMove(contents interface{}) (domain.Square, error) {
	var req MoveRequest
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  mapstructure.DecodeHookFuncType(wholeNumbers),
		ErrorUnused: true,
		Result:      &req,
	})
	if err != nil {
		return domain.NoSquare, err
	}
	if err := dec.Decode(contents); err != nil {
		return domain.NoSquare, fmt.Errorf("%w: %v", errBadMove, err)
	}
	if req.Square == nil {
		return domain.NoSquare, fmt.Errorf("%w: square is required", errBadMove)
	}
	return domain.Square(*req.Square), nil
}

// wholeNumbers refuses to decode a JSON number with a fraction into an int.
func wholeNumbers(_, to reflect.Type, data interface{}) (interface{}, error) {
	if to.Kind() == reflect.Ptr {
		to = to.Elem()
	}
	if f, ok := data.(float64); ok && to.Kind() == reflect.Int && f != math.Trunc(f) {
		return nil, fmt.Errorf("%v is not a whole number", f)
	}
	return data, nil
}

// ErrorResponse is the contents of an "error" message.
type ErrorResponse struct {
	Reason string `json:"reason"`
}

func errorMessageFrame(reason string) Message {
	return Message{Type: "error", Contents: ErrorResponse{Reason: reason}}
}

// socket plays a game over a websocket. A reader goroutine feeds requests
// into the loop below, which is the only writer on the connection.
func (h *handlers) socket(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.svc.Get(id); !ok {
		http.NotFound(w, r)
		return
	}
	var pid string
	if c, err := r.Cookie("player_id"); err == nil {
		pid = c.Value
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	log := h.log.With(zap.String("game", id))
	log.Debug("websocket connected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	updates, unsub := h.svc.Subscribe(ctx, id)
	defer unsub()

	requests := make(chan Message)
	go func() {
		defer cancel()
		for {
			var m Message
			if err := conn.ReadJSON(&m); err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Debug("websocket read", zap.Error(err))
				}
				return
			}
			select {
			case requests <- m:
			case <-ctx.Done():
				return
			}
		}
	}()

	send := func(m Message) bool {
		if err := conn.WriteJSON(m); err != nil {
			log.Debug("websocket write", zap.Error(err))
			return false
		}
		return true
	}
	sendState := func() bool {
		gs, ok := h.svc.Get(id)
		if !ok {
			return send(errorMessageFrame("game not found"))
		}
		return send(Message{Type: "state", Contents: newStateView(*gs)})
	}

	if !sendState() {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-updates:
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "game closed"))
				return
			}
			if !sendState() {
				return
			}
		case m := <-requests:
			if reason, ok := h.handleRequest(id, pid, m); !ok {
				if !send(errorMessageFrame(reason)) {
					return
				}
			}
		}
	}
}

// handleRequest applies one client message. Successful requests are
// answered through the subscription; failures return a reason.
func (h *handlers) handleRequest(id, pid string, m Message) (string, bool) {
	var err error
	switch m.Type {
	case "move":
		sq, derr := decodeMove(m.Contents)
		if derr != nil {
			h.log.Debug("bad move request", zap.String("game", id), zap.Error(derr))
			return badMoveReason, false
		}
		_, err = h.svc.Play(id, pid, sq)
	case "restart":
		_, err = h.svc.Restart(id, pid)
	default:
		return "Unknown message type " + m.Type, false
	}
	if err != nil {
		if errors.Is(err, app.ErrNotFound) {
			return "game not found", false
		}
		return errorMessage(err), false
	}
	return "", true
}
