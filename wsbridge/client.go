package wsbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-hclog"

	"enquirysync/config"
	"enquirysync/store"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	requestTimeout = 30 * time.Second
)

// Client manages the WebSocket connection from an enquirysync instance to commander.
type Client struct {
	cfg     *config.Config
	stores  *store.Bundle
	version string
	logger  hclog.Logger

	ws   *websocket.Conn
	send chan []byte

	mu         sync.Mutex
	pending    map[string]chan *Envelope // requestID → response channel
	instanceID string                    // assigned by commander on register

	// Incoming request handlers
	handlers map[MessageType]RequestHandler

	// Lifecycle
	done chan struct{}
	ctx  context.Context
	stop context.CancelFunc
}

// RequestHandler processes an incoming request from commander and returns a response payload.
type RequestHandler func(env *Envelope) (*Envelope, error)

// NewClient creates a new wsbridge client.
func NewClient(cfg *config.Config, stores *store.Bundle, version string, logger hclog.Logger) *Client {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	ctx, stop := context.WithCancel(context.Background())
	c := &Client{
		cfg:      cfg,
		stores:   stores,
		version:  version,
		logger:   logger,
		send:     make(chan []byte, 256),
		pending:  make(map[string]chan *Envelope),
		handlers: make(map[MessageType]RequestHandler),
		ctx:      ctx,
		stop:     stop,
	}
	c.registerHandlers()
	return c
}

// Connect dials the commander WebSocket endpoint, registers, and starts read/write pumps.
func (c *Client) Connect() error {
	url := c.cfg.Commander.URL
	c.logger.Info("connecting to commander", "url", url)

	ws, _, err := websocket.DefaultDialer.DialContext(c.ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dial commander: %w", err)
	}

	done := make(chan struct{})
	c.mu.Lock()
	c.ws = ws
	c.done = done
	c.mu.Unlock()

	// Start pumps first, register() needs them to send/receive messages
	go c.readPump(ws, done)
	go c.writePump(ws, done)

	// Register with commander
	if err := c.register(); err != nil {
		ws.Close()
		return fmt.Errorf("register: %w", err)
	}

	c.logger.Info("registered with commander", "instance_id", c.InstanceID())
	return nil
}

// Run blocks until ctx is cancelled or the connection drops. With
// auto_reconnect set, dropped connections are re-established instead.
func (c *Client) Run(ctx context.Context) error {
	interval := time.Duration(c.cfg.Commander.ReconnectInterval) * time.Second
	for {
		c.mu.Lock()
		done := c.done
		c.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil
		case <-c.ctx.Done():
			return nil
		case <-done:
		}

		if !c.cfg.Commander.AutoReconnect {
			return fmt.Errorf("connection closed")
		}

		for {
			c.logger.Warn("commander connection lost, reconnecting", "in", interval)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(interval):
			}
			if err := c.Connect(); err != nil {
				c.logger.Warn("reconnect failed", "error", err)
				continue
			}
			break
		}
	}
}

// Close shuts down the client.
func (c *Client) Close() {
	c.stop()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ws != nil {
		c.ws.Close()
	}
}

// InstanceID returns the ID assigned by commander.
func (c *Client) InstanceID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.instanceID
}

func (c *Client) register() error {
	req, err := NewRequest(TypeRegister, &RegisterPayload{
		InstanceName: c.cfg.Commander.InstanceName,
		Version:      c.version,
		Config:       ConfigToInstanceConfig(c.cfg),
	})
	if err != nil {
		return err
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}

	var ack RegisterAckPayload
	if err := DecodePayload(resp, &ack); err != nil {
		return fmt.Errorf("decode register ack: %w", err)
	}

	if !ack.Accepted {
		return fmt.Errorf("registration rejected: %s", ack.Reason)
	}

	c.mu.Lock()
	c.instanceID = ack.InstanceID
	c.mu.Unlock()
	return nil
}

func (c *Client) readPump(ws *websocket.Conn, done chan struct{}) {
	defer func() {
		close(done)
		ws.Close()
	}()

	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read error", "error", err)
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(message, &env); err != nil {
			c.logger.Warn("invalid message from commander", "error", err)
			continue
		}

		c.dispatch(&env)
	}
}

func (c *Client) writePump(ws *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ws.Close()
	}()

	for {
		select {
		case message := <-c.send:
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		case <-c.ctx.Done():
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (c *Client) dispatch(env *Envelope) {
	// Check if this is a response to a pending request
	if env.RequestID != "" {
		c.mu.Lock()
		ch, ok := c.pending[env.RequestID]
		c.mu.Unlock()
		if ok {
			ch <- env
			return
		}
	}

	// Handle incoming requests from commander
	switch env.Type {
	case TypeHeartbeat:
		ack, _ := NewResponse(env.RequestID, TypeHeartbeatAck, &HeartbeatAckPayload{})
		c.sendEnvelope(ack)
	default:
		handler, ok := c.handlers[env.Type]
		if !ok {
			c.logger.Debug("unhandled message type from commander", "type", env.Type)
			return
		}
		resp, err := handler(env)
		if err != nil {
			errResp, _ := NewError(env.RequestID, "handler_error", err.Error())
			c.sendEnvelope(errResp)
			return
		}
		if resp != nil {
			c.sendEnvelope(resp)
		}
	}
}

// sendEnvelope queues env for the write pump. Events are dropped rather than
// blocking the caller when the queue is full.
func (c *Client) sendEnvelope(env *Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	select {
	case c.send <- data:
		return nil
	default:
		return fmt.Errorf("send queue full, dropped %s", env.Type)
	}
}

// SendEvent sends a one-way event to commander (no response expected).
func (c *Client) SendEvent(env *Envelope) error {
	return c.sendEnvelope(env)
}

func (c *Client) sendRequest(env *Envelope) (*Envelope, error) {
	ch := make(chan *Envelope, 1)

	c.mu.Lock()
	c.pending[env.RequestID] = ch
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, env.RequestID)
		c.mu.Unlock()
	}()

	if err := c.sendEnvelope(env); err != nil {
		return nil, err
	}

	select {
	case resp := <-ch:
		if resp.Type == TypeError {
			var e ErrorPayload
			DecodePayload(resp, &e)
			return nil, fmt.Errorf("%s: %s", e.Code, e.Message)
		}
		return resp, nil
	case <-time.After(requestTimeout):
		return nil, fmt.Errorf("request timed out")
	}
}
