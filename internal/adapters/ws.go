package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"filmbox/internal/app"
	"filmbox/internal/config"
	"filmbox/internal/domain"
	"filmbox/internal/message"
)

var (
	ErrBackpressure = errors.New("outbound buffer full")
	ErrConnClosed   = errors.New("connection closed")
)

// WSController upgrades /api/ws requests and feeds decoded room events
// into the coordinator. One connection maps to one ParticipantID.
type WSController struct {
	coord      *app.Coordinator
	limiter    *EventRateLimiter
	readLimit  int64
	pingPeriod time.Duration
}

func NewWSController(coord *app.Coordinator, cfg *config.Config) *WSController {
	return &WSController{
		coord:      coord,
		limiter:    NewEventRateLimiter(cfg.EventLimit, cfg.EventInterval),
		readLimit:  cfg.ReadLimit,
		pingPeriod: cfg.PingPeriod,
	}
}

type wsConn struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
}

// TrySend never blocks: a slow reader loses frames instead of stalling
// the dispatch loop. The closed check and the channel send share the
// lock with Close, so the dispatch goroutine can never hit a closed
// channel while a broadcast races a disconnect.
func (c *wsConn) TrySend(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.send <- b:
		return nil
	default:
		return ErrBackpressure
	}
}

func (c *wsConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (ctl *WSController) HandleWS(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.ws").Msg("upgrade failed")
		return
	}

	sid := domain.ParticipantID(uuid.NewString())
	log.Info().Str("module", "adapters.ws").Str("sid", string(sid)).Msg("new WS connection")

	conn := &wsConn{
		conn: ws,
		send: make(chan []byte, 32),
	}

	ctx, cancel := context.WithCancel(ctx)
	ctl.coord.Connect(ctx, sid, conn)

	go ctl.writePump(ctx, cancel, conn)
	go ctl.readPump(ctx, cancel, sid, conn)
}

func (ctl *WSController) writePump(ctx context.Context, cancel context.CancelFunc, c *wsConn) {
	ticker := time.NewTicker(ctl.pingPeriod)
	defer func() {
		ticker.Stop()
		cancel()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "adapters.ws").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "adapters.ws").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (ctl *WSController) readPump(ctx context.Context, cancel context.CancelFunc, sid domain.ParticipantID, c *wsConn) {
	defer func() {
		log.Info().Str("module", "adapters.ws").Str("sid", string(sid)).Msg("readPump closing")
		// Run the disconnect even when ctx is already canceled, so the
		// coordinator still removes the participant from its room.
		ctl.coord.Disconnect(context.Background(), sid)
		ctl.limiter.Forget(sid)
		c.Close()
		cancel()
	}()

	c.conn.SetReadLimit(ctl.readLimit)
	pongWait := ctl.pingPeriod * 10 / 9
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Info().Err(err).Str("module", "adapters.ws").Str("sid", string(sid)).Msg("readPump read error")
				return
			}
			ctl.handleFrame(ctx, sid, c, data)
		}
	}
}

func (ctl *WSController) handleFrame(ctx context.Context, sid domain.ParticipantID, c *wsConn, data []byte) {
	if !ctl.limiter.Allow(sid) {
		log.Warn().Str("module", "adapters.ws").Str("sid", string(sid)).Msg("rate limit exceeded, frame dropped")
		return
	}

	var env message.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "adapters.ws").Msg("bad json")
		_ = c.TrySend(message.NewError(message.KindBadPayload, "malformed message"))
		return
	}

	switch env.Type {
	case message.TypeCreateRoom:
		var p message.CreateRoom
		if err := json.Unmarshal(data, &p); err != nil {
			_ = c.TrySend(message.NewError(message.KindBadPayload, "bad createRoom payload"))
			return
		}
		ctl.coord.CreateRoom(ctx, sid, p.Name)
	case message.TypeJoinRoom:
		var p message.JoinRoom
		if err := json.Unmarshal(data, &p); err != nil {
			_ = c.TrySend(message.NewError(message.KindBadPayload, "bad joinRoom payload"))
			return
		}
		ctl.coord.JoinRoom(ctx, sid, p.RoomID, p.Name)
	case message.TypeLeaveRoom:
		ctl.coord.LeaveRoom(ctx, sid)
	case message.TypeStartSession:
		ctl.coord.StartSession(ctx, sid)
	case message.TypeRestartSession:
		ctl.coord.RestartSession(ctx, sid)
	case message.TypeSubmitVote:
		var p message.SubmitVote
		if err := json.Unmarshal(data, &p); err != nil {
			_ = c.TrySend(message.NewError(message.KindBadPayload, "bad submitVote payload"))
			return
		}
		ctl.coord.SubmitVote(ctx, sid, p.MovieID, p.Like)
	case message.TypePing:
		_ = c.TrySend(message.NewPong())
	default:
		log.Warn().Str("module", "adapters.ws").Str("type", env.Type).Msg("unknown message type")
	}
}
