package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/cbodonnell/cardbridge/pkg/api/handlers"
	"github.com/cbodonnell/cardbridge/pkg/commands"
	"github.com/cbodonnell/cardbridge/pkg/log"
	"github.com/cbodonnell/cardbridge/pkg/messages"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	defaultSendBuffer = 64
	wsWriteTimeout    = 5 * time.Second
)

// Hub accepts websocket subscribers. Each subscriber can send commands and
// receives every outcome the simulation publishes.
type Hub struct {
	dispatcher handlers.Dispatcher
	sendBuffer int

	lock    sync.Mutex
	clients map[*wsClient]struct{}
}

type wsClient struct {
	conn *websocket.Conn
	send chan *messages.Message
}

type NewHubOptions struct {
	Dispatcher handlers.Dispatcher
	// SendBuffer is how many outbound messages may wait per subscriber
	// before broadcasts to it are dropped.
	SendBuffer int
}

func NewHub(opts NewHubOptions) *Hub {
	h := &Hub{
		dispatcher: opts.Dispatcher,
		sendBuffer: opts.SendBuffer,
		clients:    make(map[*wsClient]struct{}),
	}
	if h.sendBuffer <= 0 {
		h.sendBuffer = defaultSendBuffer
	}
	return h
}

// Broadcast queues msg for every subscriber without blocking. A subscriber
// whose buffer is full misses the message.
func (h *Hub) Broadcast(msg *messages.Message) {
	h.lock.Lock()
	defer h.lock.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			log.Warn("Dropped %s message for slow websocket subscriber", msg.Type)
		}
	}
}

// Len returns the number of connected subscribers.
func (h *Hub) Len() int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return len(h.clients)
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.lock.Lock()
	clients := make([]*wsClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.lock.Unlock()

	for _, c := range clients {
		c.conn.Close(websocket.StatusGoingAway, "server shutting down")
	}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		log.Error("Failed to accept websocket: %v", err)
		return
	}
	log.Debug("New websocket connection from %s", r.RemoteAddr)

	c := &wsClient{
		conn: conn,
		send: make(chan *messages.Message, h.sendBuffer),
	}
	h.add(c)
	defer h.remove(c)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go h.writeLoop(ctx, c)

	err = h.readLoop(ctx, c)
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		log.Trace("Websocket connection closed for %s", r.RemoteAddr)
	default:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Debug("Websocket connection from %s ended: %v", r.RemoteAddr, err)
		}
	}
	conn.Close(websocket.StatusNormalClosure, "")
}

func (h *Hub) add(c *wsClient) {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.clients[c] = struct{}{}
}

func (h *Hub) remove(c *wsClient) {
	h.lock.Lock()
	defer h.lock.Unlock()
	delete(h.clients, c)
}

// readLoop handles commands in arrival order so that writes from one
// subscriber keep their order in the action queue.
func (h *Hub) readLoop(ctx context.Context, c *wsClient) error {
	for {
		msg := &messages.Message{}
		// wsjson closes the connection itself on a frame that is not JSON.
		if err := wsjson.Read(ctx, c.conn, msg); err != nil {
			return err
		}

		reply, err := h.handle(ctx, msg)
		if err != nil {
			log.Error("Failed to build websocket reply: %v", err)
			continue
		}
		h.reply(ctx, c, reply)
	}
}

func (h *Hub) handle(ctx context.Context, msg *messages.Message) (*messages.Message, error) {
	if msg.Type != messages.MessageTypeCommand {
		return errorMessage(msg.ID, &commands.ValidationError{Field: "type", Reason: "unsupported message type " + msg.Type})
	}
	cmd, err := commands.DecodeCommand(bytes.NewReader(msg.Payload))
	if err != nil {
		return errorMessage(msg.ID, err)
	}
	return messages.NewMessage(messages.MessageTypeResponse, msg.ID, h.dispatcher.Dispatch(ctx, cmd))
}

func errorMessage(id string, err error) (*messages.Message, error) {
	return messages.NewMessage(messages.MessageTypeError, id, commands.NewErrorBody(err))
}

func (h *Hub) reply(ctx context.Context, c *wsClient, msg *messages.Message) {
	select {
	case c.send <- msg:
	case <-ctx.Done():
	}
}

func (h *Hub) writeLoop(ctx context.Context, c *wsClient) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-c.send:
			writeCtx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
			err := wsjson.Write(writeCtx, c.conn, msg)
			cancel()
			if err != nil {
				log.Debug("Failed to write %s message to websocket: %v", msg.Type, err)
				c.conn.Close(websocket.StatusInternalError, "write failed")
				return
			}
		}
	}
}
