package socket

import (
	"context"
	"errors"
	"log"

	"codeduel_server/arena"
	"codeduel_server/utils"

	socketio "github.com/googollee/go-socket.io"
)

// FindMatchPayload is the inbound findMatch event body.
type FindMatchPayload struct {
	EntryFee int `json:"entryFee"`
}

// RematchRequestPayload is the inbound rematchRequest event body.
type RematchRequestPayload struct {
	MatchID  string `json:"matchId"`
	Username string `json:"username"`
}

// RematchResponsePayload is the inbound rematchResponse event body.
type RematchResponsePayload struct {
	MatchID  string `json:"matchId"`
	Accepted bool   `json:"accepted"`
}

// NewSocketServer initializes a Socket.IO server bound to the match engine.
// Every connection must present a valid JWT in the handshake query;
// connections that fail verification are rejected before any engine state is
// touched.
func NewSocketServer(engine *arena.Engine, sessions *SessionRegistry) *socketio.Server {
	server := socketio.NewServer(nil)

	server.OnConnect("/", func(c socketio.Conn) error {
		u := c.URL()
		token := u.Query().Get("token")
		if token == "" {
			log.Printf("❌ Socket %s rejected: no token provided", c.ID())
			return errors.New("authentication error")
		}
		userID, err := utils.ParseToken(token)
		if err != nil {
			log.Printf("❌ Socket %s rejected: %v", c.ID(), err)
			return errors.New("authentication error")
		}

		c.SetContext(userID)
		sessions.Add(c.ID(), c)
		engine.HandleConnect(c.ID(), userID)
		log.Printf("✅ Socket connected: %s (user %s)", c.ID(), userID)
		return nil
	})

	server.OnEvent("/", arena.EventFindMatch, func(c socketio.Conn, data FindMatchPayload) {
		userID, _ := c.Context().(string)
		if userID == "" {
			return
		}
		engine.HandleFindMatch(context.Background(), c.ID(), userID, data.EntryFee)
	})

	server.OnEvent("/", arena.EventCodeSubmission, func(c socketio.Conn, data map[string]interface{}) {
		engine.HandleCodeSubmission(c.ID(), data)
	})

	server.OnEvent("/", arena.EventRematchRequest, func(c socketio.Conn, data RematchRequestPayload) {
		engine.HandleRematchRequest(data.MatchID, c.ID(), data.Username)
	})

	server.OnEvent("/", arena.EventRematchResponse, func(c socketio.Conn, data RematchResponsePayload) {
		engine.HandleRematchResponse(context.Background(), data.MatchID, data.Accepted)
	})

	server.OnError("/", func(c socketio.Conn, e error) {
		log.Printf("❌ Socket error: %v", e)
	})

	server.OnDisconnect("/", func(c socketio.Conn, reason string) {
		sessions.Remove(c.ID())
		engine.HandleDisconnect(c.ID())
		log.Printf("❌ Socket disconnected: %s (%s)", c.ID(), reason)
	})

	return server
}
