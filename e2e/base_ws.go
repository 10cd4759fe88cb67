package e2e

import (
	"chat-hub/internal"
	"chat-hub/internal/app"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"
)

const frameTimeout = 2 * time.Second

type BaseWSSuite struct {
	suite.Suite
	Config Config
	addr   string
	server *httptest.Server
	cancel context.CancelFunc
}

// SetupSuite loads the environment configuration and starts a hub when none is targeted.
func (s *BaseWSSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.HubAddr != "" {
		s.addr = s.Config.HubAddr
		return
	}

	hub, err := app.New(logs.GetLoggerFromLevel(slog.LevelWarn), internal.Config{
		ConnectionBufferSize: 64,
		DeliveryTimeout:      time.Second,
		WriteTimeout:         time.Second,
		PongTimeout:          30 * time.Second,
		MaxContentLength:     2000,
		MaxImageBytes:        1 << 20,
		MaxNameLength:        32,
		CensoredWords:        "darn",
		CharReplacement:      "*",
		RestartInterval:      50 * time.Millisecond,
	})
	s.Require().NoError(err)
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go hub.Supervisor.Run(ctx)
	s.server = httptest.NewServer(hub.Handler)
	s.addr = strings.TrimPrefix(s.server.URL, "http://")
}

func (s *BaseWSSuite) TearDownSuite() {
	if s.server != nil {
		s.server.Close()
	}
	if s.cancel != nil {
		s.cancel()
	}
}

// Client is one websocket connection seen from the test.
type Client struct {
	s    *BaseWSSuite
	name string
	conn *websocket.Conn
}

type frame struct {
	Type string          `json:"type"`
	Room string          `json:"room,omitempty"`
	Data json.RawMessage `json:"data"`
}

// Dial opens a connection and prints a colorized header for the step.
func (s *BaseWSSuite) Dial(t *testing.T, name string) *Client {
	header := fmt.Sprintf("  ====== %s connects ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	t.Log(header)

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+s.addr+"/ws", nil)
	s.Require().NoError(err, "Failed to connect to hub at "+s.addr)
	t.Cleanup(func() { _ = conn.Close() })
	return &Client{s: s, name: name, conn: conn}
}

func (c *Client) Send(request string, data any) {
	body, err := json.Marshal(map[string]any{"type": request, "data": data})
	c.s.Require().NoError(err)
	if c.s.Config.DebugJSON {
		c.s.T().Logf("%s >> %s", c.name, body)
	}
	c.s.Require().NoError(c.conn.WriteMessage(websocket.TextMessage, body))
}

// Expect reads frames until one of the given type arrives, skipping the others.
func (c *Client) Expect(topic string) frame {
	deadline := time.Now().Add(frameTimeout)
	for {
		_ = c.conn.SetReadDeadline(deadline)
		_, raw, err := c.conn.ReadMessage()
		c.s.Require().NoError(err, "%s waited for %s", c.name, topic)
		if c.s.Config.DebugJSON {
			c.s.T().Logf("%s << %s", c.name, raw)
		}
		var f frame
		c.s.Require().NoError(json.Unmarshal(raw, &f))
		if f.Type == topic {
			return f
		}
	}
}

// ExpectEvent waits for a room event carrying the given payload variant.
func (c *Client) ExpectEvent(kind string) (roomEvent, json.RawMessage) {
	for {
		f := c.Expect("room.event")
		var e roomEvent
		c.s.Require().NoError(json.Unmarshal(f.Data, &e))
		if body, ok := e.Data[kind]; ok {
			return e, body
		}
	}
}

// Close ends the connection as a client would.
func (c *Client) Close() {
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = c.conn.Close()
}

type roomEvent struct {
	ID   string                     `json:"id"`
	From string                     `json:"from"`
	Data map[string]json.RawMessage `json:"data"`
}
