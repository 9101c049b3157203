package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/gymdemand/internal/adapters/nats"
	"github.com/samirrijal/gymdemand/internal/core/domain"
)

const wsPingInterval = 30 * time.Second

// wsMessage is sent by clients to narrow or widen the relayed estimates.
type wsMessage struct {
	Action string `json:"action"` // "subscribe" | "unsubscribe"
	Study  string `json:"study"`  // study ID filter, "" = all studies
}

// wsReply acknowledges a client message.
type wsReply struct {
	Status  string `json:"status,omitempty"`
	Subject string `json:"subject,omitempty"`
	Error   string `json:"error,omitempty"`
}

// wsSubject maps a study filter to the NATS subject relayed for it.
func wsSubject(studyID string) string {
	if studyID == "" {
		return natsadapter.EstimateSubjects
	}
	return natsadapter.EstimateSubject(studyID)
}

// wsSubscriber is the part of *nats.Conn a session needs.
type wsSubscriber interface {
	Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error)
}

// wsSession is one connected client and its NATS subscriptions. The
// all-studies feed and per-study feeds never overlap, so each estimate is
// relayed once.
type wsSession struct {
	conn *websocket.Conn
	nc   wsSubscriber
	log  *slog.Logger

	writeMu sync.Mutex
	subs    map[string]*nats.Subscription
}

func (s *wsSession) write(messageType int, data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(messageType, data)
}

func (s *wsSession) reply(r wsReply) {
	data, err := json.Marshal(r)
	if err != nil {
		return
	}
	_ = s.write(websocket.TextMessage, data)
}

// relay forwards a published estimate verbatim.
func (s *wsSession) relay(msg *nats.Msg) {
	_ = s.write(websocket.TextMessage, msg.Data)
}

func (s *wsSession) subscribe(subject string) wsReply {
	if _, ok := s.subs[subject]; ok {
		return wsReply{Status: "already subscribed", Subject: subject}
	}
	sub, err := s.nc.Subscribe(subject, s.relay)
	if err != nil {
		return wsReply{Error: "subscribe failed: " + err.Error()}
	}

	// A study feed narrows the all-studies feed; the all-studies feed
	// replaces every study feed.
	all := wsSubject("")
	for subj, old := range s.subs {
		if subject == all || subj == all {
			_ = old.Unsubscribe()
			delete(s.subs, subj)
		}
	}
	s.subs[subject] = sub
	return wsReply{Status: "subscribed", Subject: subject}
}

func (s *wsSession) unsubscribe(subject string) wsReply {
	sub, ok := s.subs[subject]
	if !ok {
		return wsReply{Error: "not subscribed to " + subject}
	}
	_ = sub.Unsubscribe()
	delete(s.subs, subject)
	return wsReply{Status: "unsubscribed", Subject: subject}
}

func (s *wsSession) handle(raw []byte) wsReply {
	var m wsMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return wsReply{Error: "invalid JSON"}
	}
	if m.Study != "" {
		if err := domain.ValidateStudyID(m.Study); err != nil {
			return wsReply{Error: "invalid study id: " + m.Study}
		}
	}
	switch m.Action {
	case "subscribe":
		return s.subscribe(wsSubject(m.Study))
	case "unsubscribe":
		return s.unsubscribe(wsSubject(m.Study))
	default:
		return wsReply{Error: "unknown action: " + m.Action}
	}
}

func (s *wsSession) keepAlive(done <-chan struct{}) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := s.write(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (s *wsSession) close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
}

// WebSocketHandler relays published demand estimates to connected clients.
// Every client starts subscribed to all studies.
// {"action":"subscribe","study":"<id>"} narrows the session to the listed
// studies, {"action":"subscribe"} widens it back to all of them, and
// unsubscribe drops one feed.
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		s := &wsSession{
			conn: c,
			nc:   nc,
			log:  slog.Default().With("remote", c.RemoteAddr().String()),
			subs: make(map[string]*nats.Subscription),
		}
		if nc == nil {
			s.reply(wsReply{Error: "event relay unavailable"})
			return
		}
		if r := s.subscribe(wsSubject("")); r.Error != "" {
			s.log.Error("ws default subscribe failed", "error", r.Error)
			return
		}
		defer s.close()
		s.log.Info("ws client connected")

		done := make(chan struct{})
		defer close(done)
		go s.keepAlive(done)

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}
			s.reply(s.handle(msg))
		}
		s.log.Info("ws client disconnected")
	}
}
