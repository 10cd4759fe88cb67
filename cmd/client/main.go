// Command client is a terminal chat client: it joins one room, prints what happens
// there and sends every line typed on stdin as a message.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

type Config struct {
	ServerAddress string `env:"CHAT_SERVER_ADDR,default=localhost:8080"`
	RoomID        string `env:"CHAT_ROOM_ID,required=true"`
	Username      string `env:"CHAT_USERNAME"`
	LogLevel      string `env:"LOG_LEVEL,default=INFO"`
}

type frame struct {
	Type string          `json:"type"`
	Room string          `json:"room,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

type roomEvent struct {
	From      string                     `json:"from"`
	Timestamp time.Time                  `json:"timestamp"`
	Data      map[string]json.RawMessage `json:"data"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	// 1. Configuration
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Connection
	url := fmt.Sprintf("ws://%s/ws", config.ServerAddress)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return exitRuntime, fmt.Errorf("could not connect to %s: %w", url, err)
	}
	defer func() {
		log.Info("Closing connection...")
		_ = conn.Close()
	}()

	if config.Username != "" {
		if err = send(conn, "user.set_username", map[string]any{"username": config.Username}); err != nil {
			return exitRuntime, err
		}
	}
	if err = send(conn, "room.join", map[string]any{"room_id": config.RoomID}); err != nil {
		return exitRuntime, err
	}
	color.Green.Printf(">>> Connected to %s, room %s (Ctrl+C to quit)\n", config.ServerAddress, config.RoomID)

	// 4. Typed lines become messages
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			err := send(conn, "room.send", map[string]any{
				"room":    config.RoomID,
				"payload": map[string]any{"Message": map[string]any{"content": line}},
			})
			if err != nil {
				log.Error("Send failed", "error", err)
				stop()
				return
			}
		}
	}()
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	// 5. Reception loop
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return exitOK, nil
			}
			return exitRuntime, fmt.Errorf("connection lost: %w", err)
		}
		var f frame
		if err = json.Unmarshal(raw, &f); err != nil {
			log.Debug("Unreadable frame", "error", err)
			continue
		}
		display(log, f)
	}
}

func send(conn *websocket.Conn, request string, data any) error {
	body, err := json.Marshal(map[string]any{"type": request, "data": data})
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, body)
}

func display(log *slog.Logger, f frame) {
	switch f.Type {
	case "room.event":
		var e roomEvent
		if err := json.Unmarshal(f.Data, &e); err != nil {
			log.Debug("Unreadable event", "error", err)
			return
		}
		for kind, body := range e.Data {
			at := e.Timestamp.Local().Format(time.TimeOnly)
			switch kind {
			case "Message":
				var m struct {
					Content string `json:"content"`
					Deleted bool   `json:"deleted"`
				}
				_ = json.Unmarshal(body, &m)
				if m.Deleted {
					color.Gray.Printf("[%s] %s: (deleted)\n", at, short(e.From))
					continue
				}
				fmt.Printf("[%s] %s: %s\n", at, short(e.From), m.Content)
			default:
				color.Cyan.Printf("[%s] %s %s\n", at, short(e.From), kind)
			}
		}
	case "error":
		color.Red.Printf("! %s\n", f.Data)
	default:
		log.Debug("Notification", "type", f.Type, "data", string(f.Data))
	}
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
