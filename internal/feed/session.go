package feed

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gorilla/websocket"
	"tradelab/internal/common"
	"tradelab/internal/config"
	"tradelab/internal/util"
	"tradelab/pkg/models"
)

// ErrNotConnected is reported by Send when there is no open connection.
// Sending while disconnected is a no-op for the session itself.
var ErrNotConnected = errors.New("feed: not connected")

// State describes the session lifecycle. Offline is terminal: the
// reconnect ceiling was reached and no further dial is attempted.
type State int

const (
	StateDisconnected State = iota
	StateConnected
	StateOffline
)

func (s State) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateOffline:
		return "offline"
	default:
		return "disconnected"
	}
}

type subscribeMessage struct {
	Type   string `json:"type"`
	Symbol string `json:"symbol"`
}

// Session owns one persistent websocket connection to the market-data
// feed. It subscribes to the configured symbol universe once per
// connection, decodes inbound frames, and forwards trade events to the
// trade channel. Read failures trigger reconnects with jittered
// exponential backoff up to a configured ceiling.
type Session struct {
	url        string
	symbols    []string
	grace      time.Duration
	maxRetries int
	decoder    *Decoder
	tradeCh    chan<- models.Trade
	logger     *util.Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	state  State
	closed bool

	stateCh  chan State
	done     chan struct{}
	loopDone chan struct{}
}

func NewSession(cfg *config.Config, tradeCh chan<- models.Trade, logger *util.Logger) *Session {
	url := cfg.GetFeedURL()
	if cfg.Feed.Token != "" {
		url = fmt.Sprintf("%s?token=%s", url, cfg.Feed.Token)
	}
	return &Session{
		url:        url,
		symbols:    cfg.GetSymbols(),
		grace:      cfg.GetSubscribeGrace(),
		maxRetries: cfg.GetMaxReconnectAttempts(),
		decoder:    NewDecoder(logger),
		tradeCh:    tradeCh,
		logger:     logger,
		stateCh:    make(chan State, 1),
		done:       make(chan struct{}),
	}
}

// Connect dials the feed, starts the receive loop, and schedules the
// symbol subscriptions after the grace period. The grace delay avoids
// racing the server's readiness right after the upgrade.
func (s *Session) Connect() error {
	conn, _, err := websocket.DefaultDialer.Dial(s.url, nil)
	if err != nil {
		return fmt.Errorf("feed connect: %w", err)
	}

	s.mu.Lock()
	s.conn = conn
	s.setStateLocked(StateConnected)
	s.loopDone = make(chan struct{})
	s.mu.Unlock()

	s.logger.Info("Feed connected", "url", s.url)

	go s.subscribeAfterGrace()
	go func() {
		defer close(s.loopDone)
		s.readLoop(conn)
	}()
	return nil
}

// Wait blocks until the receive loop has exited. The session still writes
// to the trade channel until then, so the channel's owner must Wait
// between Close and closing the channel.
func (s *Session) Wait() {
	s.mu.Lock()
	loopDone := s.loopDone
	s.mu.Unlock()

	if loopDone == nil {
		return
	}
	<-loopDone
}

// Send writes one text frame if connected. When disconnected it reports
// ErrNotConnected to the caller and does nothing else.
func (s *Session) Send(text string) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()

	if conn == nil {
		return ErrNotConnected
	}
	if err := conn.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
		s.logger.Error(err, common.ErrCodeFeedSendFailed, common.ErrMsgFeedSendFailed, "Feed send failed")
		return fmt.Errorf("feed send: %w", err)
	}
	return nil
}

// State reports the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// States delivers state transitions, latest-wins, buffer of one.
func (s *Session) States() <-chan State {
	return s.stateCh
}

// Close stops the receive loop and closes the connection. The pending
// read is released by closing the underlying connection.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	s.setStateLocked(StateDisconnected)
	s.mu.Unlock()

	close(s.done)
	s.logger.Info("Feed session closed")
}

func (s *Session) subscribeAfterGrace() {
	select {
	case <-time.After(s.grace):
	case <-s.done:
		return
	}
	s.subscribeAll()
}

func (s *Session) subscribeAll() {
	for _, symbol := range s.symbols {
		msg := subscribeMessage{Type: "subscribe", Symbol: symbol}

		s.mu.Lock()
		conn := s.conn
		s.mu.Unlock()
		if conn == nil {
			return
		}

		if err := conn.WriteJSON(msg); err != nil {
			s.logger.Error(err, common.ErrCodeFeedSubscribeFailed, common.ErrMsgFeedSubscribeFailed, "Subscribe failed", "symbol", symbol)
			continue
		}
		s.logger.Debug("Subscribed to trade feed", "symbol", symbol)
	}
	s.logger.Info("Subscribed to trade feed", "symbols", len(s.symbols))
}

func (s *Session) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return
			}

			s.logger.Error(err, common.ErrCodeFeedReadFailed, common.ErrMsgFeedReadFailed, "Feed read error, reconnecting")
			next, ok := s.reconnect()
			if !ok {
				return
			}
			conn = next
			continue
		}

		s.handleMessage(data)
	}
}

func (s *Session) handleMessage(data []byte) {
	kind, trades, err := s.decoder.Decode(data)
	if err != nil {
		s.logger.Error(err, common.ErrCodeDecodeFailed, common.ErrMsgDecodeFailed, "Dropped malformed feed message", "raw", string(data))
		return
	}
	if kind != MessageTrades {
		return
	}
	for _, trade := range trades {
		select {
		case s.tradeCh <- trade:
		default:
			s.logger.Warn(common.ErrCodeChannelFull, common.ErrMsgChannelFull, "Dropped trade, channel full", "symbol", trade.Symbol)
		}
	}
}

// reconnect re-dials with jittered exponential backoff. When the attempt
// ceiling is reached the session transitions to the terminal Offline
// state and downstream consumers simply stop receiving updates.
func (s *Session) reconnect() (*websocket.Conn, bool) {
	s.mu.Lock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	s.setStateLocked(StateDisconnected)
	s.mu.Unlock()

	backoffCfg := backoff.NewExponentialBackOff()

	for attempt := 1; ; attempt++ {
		if attempt > s.maxRetries {
			s.mu.Lock()
			s.setStateLocked(StateOffline)
			s.mu.Unlock()
			s.logger.Error(nil, common.ErrCodeFeedOffline, common.ErrMsgFeedOffline, "Giving up on feed", "attempts", s.maxRetries)
			return nil, false
		}

		sleep := backoffCfg.NextBackOff()
		if sleep == backoff.Stop {
			sleep = backoffCfg.MaxInterval
		}
		select {
		case <-s.done:
			return nil, false
		case <-time.After(sleep):
		}

		conn, _, err := websocket.DefaultDialer.Dial(s.url, nil)
		if err != nil {
			s.logger.Error(err, common.ErrCodeFeedConnectFailed, common.ErrMsgFeedConnectFailed, "Reconnect attempt failed", "attempt", attempt)
			continue
		}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			conn.Close()
			return nil, false
		}
		s.conn = conn
		s.setStateLocked(StateConnected)
		s.mu.Unlock()

		s.logger.Info("Feed reconnected", "attempt", attempt)
		go s.subscribeAfterGrace()
		return conn, true
	}
}

// setStateLocked publishes a transition; callers hold s.mu.
func (s *Session) setStateLocked(state State) {
	if s.state == state {
		return
	}
	s.state = state
	select {
	case s.stateCh <- state:
	default:
		select {
		case <-s.stateCh:
		default:
		}
		select {
		case s.stateCh <- state:
		default:
		}
	}
}
