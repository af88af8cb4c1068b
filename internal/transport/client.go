// Package transport connects a session to the relay over a websocket.
package transport

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"meshsync/internal/mesh"
	"meshsync/internal/vertexsync"
)

const (
	writeWait = 10 * time.Second
	pongWait  = 60 * time.Second
	pingEvery = (pongWait * 9) / 10

	defaultSendBuffer = 256
)

var (
	ErrClosed         = errors.New("transport: client closed")
	ErrSendBufferFull = errors.New("transport: send buffer full")
)

type Config struct {
	URL         string
	Room        string
	Participant string
	SendBuffer  int
	Logger      *log.Logger
}

// Client sends vertex updates to the relay and hands inbound frames to a
// callback. Sends never block: when the buffer is full the update is dropped.
type Client struct {
	conn        *websocket.Conn
	participant string
	send        chan []byte
	logger      *log.Logger

	// wmu serializes writes; gorilla allows one concurrent writer.
	wmu sync.Mutex

	closeOnce sync.Once
	done      chan struct{}
}

func Dial(ctx context.Context, cfg Config) (*Client, error) {
	target, err := dialURL(cfg)
	if err != nil {
		return nil, err
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		return nil, fmt.Errorf("dial relay %s: %w", target, err)
	}
	size := cfg.SendBuffer
	if size <= 0 {
		size = defaultSendBuffer
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		conn:        conn,
		participant: cfg.Participant,
		send:        make(chan []byte, size),
		logger:      logger,
		done:        make(chan struct{}),
	}, nil
}

func dialURL(cfg Config) (string, error) {
	u, err := url.Parse(strings.TrimSpace(cfg.URL))
	if err != nil {
		return "", fmt.Errorf("parse relay url: %w", err)
	}
	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("relay url %q: unsupported scheme", cfg.URL)
	}
	room := strings.TrimSpace(cfg.Room)
	if room == "" {
		return "", fmt.Errorf("room is required")
	}
	q := u.Query()
	q.Set("room", room)
	if p := strings.TrimSpace(cfg.Participant); p != "" {
		q.Set("participant", p)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// SendVertexUpdate queues an update for broadcast to the room.
func (c *Client) SendVertexUpdate(vertex int, position mesh.Vec3, final bool) error {
	raw, err := vertexsync.Encode(vertexsync.Update{Vertex: vertex, Position: position, Final: final}, c.participant)
	if err != nil {
		return err
	}
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	select {
	case c.send <- raw:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Run pumps the connection until ctx is cancelled, the client is closed or
// the connection fails. onMessage runs on the read goroutine.
func (c *Client) Run(ctx context.Context, onMessage func([]byte)) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		select {
		case <-ctx.Done():
		case <-c.done:
		}
		c.Close()
		return nil
	})

	g.Go(func() error {
		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			return err
		}
		c.conn.SetPongHandler(func(string) error {
			return c.conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			msgType, raw, err := c.conn.ReadMessage()
			if err != nil {
				return c.closedErr(err)
			}
			if msgType == websocket.TextMessage && onMessage != nil {
				onMessage(raw)
			}
		}
	})

	g.Go(func() error {
		ticker := time.NewTicker(pingEvery)
		defer ticker.Stop()
		for {
			select {
			case <-c.done:
				return nil
			case raw := <-c.send:
				if err := c.write(websocket.TextMessage, raw); err != nil {
					return c.closedErr(err)
				}
			case <-ticker.C:
				if err := c.write(websocket.PingMessage, nil); err != nil {
					return c.closedErr(err)
				}
			}
		}
	})

	return g.Wait()
}

func (c *Client) write(msgType int, data []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(msgType, data)
}

// closedErr maps errors caused by our own Close to nil.
func (c *Client) closedErr(err error) error {
	select {
	case <-c.done:
		return nil
	default:
	}
	c.logger.Printf("transport: relay connection lost: %v", err)
	c.Close()
	return err
}

func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		err = c.conn.Close()
	})
	return err
}
