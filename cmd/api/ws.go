package main

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/tmeadows/parliament-api/internal/live"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 64
)

var (
	errSendBufferFull = errors.New("send buffer full")
	errClientGone     = errors.New("client connection closed")
)

// wireEvent is one inbound frame. The flat payload covers every event kind;
// the actor is always the authenticated user, whatever the payload claims.
type wireEvent struct {
	Type    string `json:"type"`
	Payload struct {
		RoomID      string `json:"roomId"`
		Message     string `json:"message"`
		MotionID    string `json:"motionId"`
		Vote        string `json:"vote"`
		UserID      string `json:"userId"`
		Approve     bool   `json:"approve"`
		Reason      string `json:"reason"`
		Title       string `json:"title"`
		Description string `json:"description"`
	} `json:"payload"`
}

type wireError struct {
	Type    string `json:"type"`
	Payload struct {
		Code    string `json:"code"`
		Event   string `json:"event"`
		Message string `json:"message"`
	} `json:"payload"`
}

// client is one websocket connection. It implements live.Subscriber: deltas
// arrive on a buffered channel drained by the write pump, so a slow reader
// backs up only its own buffer and gets detached, never stalling a room.
type client struct {
	id    string
	app   *application
	conn  *websocket.Conn
	actor live.Participant

	send chan any
	done chan struct{}
	once sync.Once
}

func (c *client) ID() string { return c.id }

func (c *client) Send(delta live.Delta) error {
	select {
	case <-c.done:
		return errClientGone
	default:
	}
	select {
	case c.send <- delta:
		return nil
	default:
		return errSendBufferFull
	}
}

func (c *client) close() {
	c.once.Do(func() { close(c.done) })
}

func (app *application) wsHandler(w http.ResponseWriter, r *http.Request) {
	u := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}

	conn, err := u.Upgrade(w, r, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	user := sessionUser(r)
	c := &client{
		id:   uuid.NewString(),
		app:  app,
		conn: conn,
		actor: live.Participant{
			ID:   user.ID,
			Name: user.Name,
			Role: live.Role(user.Role),
		},
		send: make(chan any, sendBufferSize),
		done: make(chan struct{}),
	}

	go c.writePump()
	go c.readPump()
}

func (c *client) readPump() {
	defer func() {
		c.app.dispatcher.Disconnect(context.Background(), c.id, c.actor)
		c.close()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var frame wireEvent
		err := c.conn.ReadJSON(&frame)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.app.logger.Debug().Str("user", c.actor.ID).Err(err).Msg("websocket read failed")
			}
			return
		}
		c.handle(frame)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case v := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(v); err != nil {
				c.close()
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *client) handle(frame wireEvent) {
	ev, err := c.toEvent(frame)
	if err != nil {
		c.sendError(frame.Type, "INVALID_EVENT", err)
		return
	}

	switch ev.Type {
	case live.EventJoinRoom:
		// Subscribe first so this connection observes its own join delta
		// and everything after it.
		c.app.dispatcher.Subscribe(ev.RoomID, c)
		if err := c.app.dispatcher.Dispatch(context.Background(), ev); err != nil {
			c.app.dispatcher.Unsubscribe(ev.RoomID, c)
			c.sendError(frame.Type, liveErrorCode(err), err)
		}
	case live.EventLeaveRoom:
		err := c.app.dispatcher.Dispatch(context.Background(), ev)
		c.app.dispatcher.Unsubscribe(ev.RoomID, c)
		if err != nil {
			c.sendError(frame.Type, liveErrorCode(err), err)
		}
	default:
		if err := c.app.dispatcher.Dispatch(context.Background(), ev); err != nil {
			c.sendError(frame.Type, liveErrorCode(err), err)
		}
	}
}

func (c *client) toEvent(frame wireEvent) (live.Event, error) {
	ev := live.Event{
		RoomID:      frame.Payload.RoomID,
		Actor:       c.actor,
		Text:        frame.Payload.Message,
		MotionID:    frame.Payload.MotionID,
		Choice:      live.Choice(frame.Payload.Vote),
		TargetID:    frame.Payload.UserID,
		Approve:     frame.Payload.Approve,
		Reason:      frame.Payload.Reason,
		Title:       frame.Payload.Title,
		Description: frame.Payload.Description,
	}

	switch frame.Type {
	case "join-room":
		ev.Type = live.EventJoinRoom
	case "leave-room":
		ev.Type = live.EventLeaveRoom
	case "send-message":
		ev.Type = live.EventSendMessage
	case "request-speak":
		ev.Type = live.EventRequestSpeak
	case "resolve-speak":
		ev.Type = live.EventResolveSpeak
	case "submit-motion":
		ev.Type = live.EventSubmitMotion
	case "start-voting":
		ev.Type = live.EventStartVoting
	case "end-voting":
		ev.Type = live.EventEndVoting
	case "cast-vote":
		ev.Type = live.EventCastVote
	case "delete-motion":
		ev.Type = live.EventDeleteMotion
	default:
		return live.Event{}, errors.New("unknown event type: " + frame.Type)
	}

	if ev.RoomID == "" {
		return live.Event{}, errors.New("missing required field: roomId")
	}
	return ev, nil
}

// sendError reports a rejection to this connection only. Rejections are
// never broadcast.
func (c *client) sendError(event, code string, err error) {
	var frame wireError
	frame.Type = "error"
	frame.Payload.Code = code
	frame.Payload.Event = event
	frame.Payload.Message = err.Error()

	select {
	case c.send <- frame:
	default:
		// Buffer full on an error path; the connection is drowning anyway.
	}
}
