package webd

import (
	"encoding/json"
	"log"
	"log/slog"

	"github.com/fieldroute/fieldd/cache"
	"github.com/fieldroute/fieldd/events"
	"github.com/fieldroute/fieldd/types/attendance"
	"github.com/fieldroute/fieldd/types/locpoint"
	"github.com/olahol/melody"
)

type websocketAction string

const (
	websocketActionPopulate websocketAction = "populate"
	websocketActionStored   websocketAction = "stored"
	websocketActionSession  websocketAction = "session"
)

type broadcast struct {
	Action  websocketAction           `json:"action"`
	Points  []*locpoint.LocationPoint `json:"points,omitempty"`
	Session *attendance.Session       `json:"session,omitempty"`
	Event   string                    `json:"event,omitempty"`
}

// initMelody sets up the websocket handler: last-push replay on
// connect, then a firehose of pushes, stored points, and session
// lifecycle events.
func (s *WebDaemon) initMelody() {
	s.melodyInstance = melody.New()

	s.melodyInstance.HandleConnect(func(sess *melody.Session) {
		log.Println("[websocket] connected", sess.Request.RemoteAddr)
		for _, v := range cache.LastPushTTLCache.Items() {
			b, _ := json.Marshal(broadcast{
				Action: websocketActionPopulate,
				Points: v.Value(),
			})
			sess.Write(b)
		}
	})

	// Incoming client messages are logged and dropped.
	s.melodyInstance.HandleMessage(func(sess *melody.Session, msg []byte) {
		log.Println("[websocket] message", string(msg))
	})

	s.melodyInstance.HandleDisconnect(func(sess *melody.Session) {
		log.Println("[websocket] disconnected", sess.Request.RemoteAddr)
	})

	s.melodyInstance.HandleError(func(sess *melody.Session, e error) {
		log.Println("[websocket] error", e, sess.Request.RemoteAddr)
	})

	s.broadcastFeeds()
}

// broadcastFeeds relays the package event feeds to all connected
// clients. Push payloads are as-received: populate enforces its own
// validation and deduplication, and what it stores may differ.
func (s *WebDaemon) broadcastFeeds() {
	pushes := make(chan []*locpoint.LocationPoint)
	pushSub := events.HTTPPopulateFeed.Subscribe(pushes)

	stored := make(chan *locpoint.LocationPoint)
	storedSub := events.NewStoredPointFeed.Subscribe(stored)

	opened := make(chan *attendance.Session)
	openedSub := events.SessionOpenedFeed.Subscribe(opened)

	closed := make(chan *attendance.Session)
	closedSub := events.SessionClosedFeed.Subscribe(closed)

	go func() {
		for {
			select {
			case points := <-pushes:
				s.broadcastJSON(broadcast{Action: websocketActionPopulate, Points: points})
			case p := <-stored:
				s.broadcastJSON(broadcast{Action: websocketActionStored, Points: []*locpoint.LocationPoint{p}})
			case sess := <-opened:
				s.broadcastJSON(broadcast{Action: websocketActionSession, Session: sess, Event: "opened"})
			case sess := <-closed:
				s.broadcastJSON(broadcast{Action: websocketActionSession, Session: sess, Event: "closed"})
			case err := <-pushSub.Err():
				slog.Error("Populate feed subscription failed", "error", err)
				return
			case err := <-storedSub.Err():
				slog.Error("Stored point feed subscription failed", "error", err)
				return
			case err := <-openedSub.Err():
				slog.Error("Session opened feed subscription failed", "error", err)
				return
			case err := <-closedSub.Err():
				slog.Error("Session closed feed subscription failed", "error", err)
				return
			}
		}
	}()
}

func (s *WebDaemon) broadcastJSON(bc broadcast) {
	b, err := json.Marshal(bc)
	if err != nil {
		slog.Error("Failed to marshal websocket event", "error", err)
		return
	}
	if err := s.melodyInstance.Broadcast(b); err != nil {
		slog.Warn("Failed to broadcast websocket event", "error", err)
	}
}
