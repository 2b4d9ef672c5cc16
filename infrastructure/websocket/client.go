package websocket

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"livechat/contract"
	"livechat/domain"
	"livechat/domain/event"
	"livechat/errors"
	"livechat/services"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second
	// Send pings to peer with this period, must be less than pongWait
	pingPeriod = (pongWait * 9) / 10
)

var _ contract.EventSink = (*Client)(nil)

// Client bridges one websocket connection and the chat service.
// readPump turns inbound frames into service calls, writePump drains the send queue.
type Client struct {
	conn         *websocket.Conn
	send         chan []byte
	closed       chan struct{}
	closeOnce    sync.Once
	service      services.IChatService
	connectionID domain.ConnectionID
	log          *slog.Logger
	addr         string
}

func NewClient(conn *websocket.Conn, service services.IChatService, log *slog.Logger,
	bufferSize int, maxMessageSize int64, addr string) *Client {
	conn.SetReadLimit(maxMessageSize)
	return &Client{
		conn:    conn,
		send:    make(chan []byte, bufferSize),
		closed:  make(chan struct{}),
		service: service,
		log:     log,
		addr:    addr,
	}
}

// Consume enqueues the event without ever blocking the event loop.
// A client too slow to keep up is closed, its disconnect then goes through the normal leave.
func (c *Client) Consume(_ context.Context, e event.DomainEvent) error {
	select {
	case <-c.closed:
		return errors.ErrSinkClosed
	default:
	}

	raw, err := EncodeEvent(e)
	if err != nil {
		return err
	}

	select {
	case c.send <- raw:
		return nil
	case <-c.closed:
		return errors.ErrSinkClosed
	default:
		c.log.Warn("Send queue full, closing client", "addr", c.addr)
		c.Close()
		return errors.ErrSinkFull
	}
}

// Close stops the write pump which then closes the connection. Safe to call many times.
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.closed) })
}

// GoAway tells the peer the server is shutting down, then closes the client.
func (c *Client) GoAway() {
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown")
	if err := c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait)); err != nil {
		c.log.Debug("Unable to send going away", "addr", c.addr, "error", err)
	}
	c.Close()
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.Close()
		// The disconnect must reach the registry even when ctx is already done
		if err := c.service.Disconnect(context.WithoutCancel(ctx), c.connectionID); err != nil {
			c.log.Debug("Disconnect not delivered", "connection_id", c.connectionID, "error", err)
		}
		_ = c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			c.handleReadError(err)
			return
		}
		if err := c.dispatch(ctx, raw); err != nil {
			if stderrors.Is(err, errors.ErrOrchestratorStopped) || stderrors.Is(err, context.Canceled) {
				return
			}
			c.log.Warn("Frame ignored", "connection_id", c.connectionID, "error", err)
		}
	}
}

// dispatch blocks until the command is accepted, so frames of one connection keep their order.
func (c *Client) dispatch(ctx context.Context, raw []byte) error {
	frame, err := DecodeFrame(raw)
	if err != nil {
		return err
	}

	switch frame.Event {
	case event.JoinName:
		identity, err := DecodeIdentity(frame.Data)
		if err != nil {
			return err
		}
		return c.service.Join(ctx, c.connectionID, domain.Identity(identity))
	case event.SendMessageName:
		payload, err := DecodeSendMessage(frame.Data)
		if err != nil {
			return err
		}
		return c.service.SendMessage(ctx, c.connectionID, payload.To, payload.Msg)
	case event.TypingName:
		return c.service.Typing(ctx, c.connectionID)
	case event.StopTypingName:
		return c.service.StopTyping(ctx, c.connectionID)
	default:
		return fmt.Errorf("%w: %q", errors.ErrUnknownEvent, frame.Event)
	}
}

func (c *Client) handleReadError(err error) {
	switch {
	case stderrors.Is(err, websocket.ErrReadLimit):
		c.log.Warn("Message exceeded maximum size", "connection_id", c.connectionID, "addr", c.addr)
	case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived):
		c.log.Debug("Client disconnected", "connection_id", c.connectionID, "addr", c.addr)
	case stderrors.Is(err, io.EOF), stderrors.Is(err, net.ErrClosed):
		c.log.Debug("Client connection closed", "connection_id", c.connectionID, "addr", c.addr)
	default:
		c.log.Info("Websocket read error", "connection_id", c.connectionID, "addr", c.addr, "error", err)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			if err := c.write(websocket.TextMessage, message); err != nil {
				c.log.Debug("Write failed", "connection_id", c.connectionID, "error", err)
				c.Close()
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				c.log.Debug("Ping failed", "connection_id", c.connectionID, "error", err)
				c.Close()
				return
			}
		case <-c.closed:
			_ = c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (c *Client) write(messageType int, payload []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, payload)
}
