// Command client is a terminal chat client. It keeps one long-lived
// connection for the whole session and renders hub traffic through the
// update buffer, so bursts of events never repaint the screen more
// than once per flush interval.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vibelink/vibelink-server/internal/buffer"
	"github.com/vibelink/vibelink-server/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("client: %v", err)
		os.Exit(1)
	}
}

// outbound mirrors proto.Outbound with raw data for per-event decoding.
type outbound struct {
	Type  string          `json:"type"`
	Event string          `json:"event,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error *proto.Error    `json:"error,omitempty"`
}

func run() error {
	addr := flag.String("addr", "ws://localhost:5000/ws", "WebSocket address")
	user := flag.String("user", "cli-user", "display name")
	history := flag.Int("history", 5, "visible entries per category")
	flush := flag.Duration("flush", 500*time.Millisecond, "buffer flush interval")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(v interface{}) {
		if writeErr := wsjson.Write(ctx, conn, v); writeErr != nil {
			cancel()
			log.Printf("send: %v", writeErr)
		}
	}

	joinPayload, err := json.Marshal(*user)
	if err != nil {
		return fmt.Errorf("marshal join: %w", err)
	}
	send(proto.Inbound{Type: proto.InboundTypeJoin, Data: joinPayload})

	fmt.Printf("Connected to %s as %s\n", *addr, *user)
	fmt.Println("Type to chat, /vibe <text> to post a vibe. Ctrl+C to exit.")

	buf := buffer.New(*flush, *history, func(cat buffer.Category, visible []any) {
		fmt.Printf("--- %s ---\n", cat)
		for _, entry := range visible {
			fmt.Printf("  %s\n", entry)
		}
	})
	go buf.Run(ctx)

	// Presence and stats lines land often during bursts; debounce the
	// status render instead of printing every update.
	status := buffer.NewDebouncer(200*time.Millisecond, func(line string) {
		fmt.Println(line)
	})
	defer status.Stop()

	go func() {
		defer cancel()
		readLoop(ctx, conn, buf, status)
	}()

	writeLoop(ctx, *user, send)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn, buf *buffer.UpdateBuffer, status *buffer.Debouncer) {
	for {
		var msg outbound
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			return
		}

		if msg.Error != nil {
			fmt.Printf("! server error: %s (%s)\n", msg.Error.Msg, msg.Error.Code)
			continue
		}

		switch msg.Event {
		case proto.EventChatMessage:
			var chat proto.ChatMessageEvent
			if err := json.Unmarshal(msg.Data, &chat); err != nil {
				continue
			}
			buf.Push(buffer.CategoryChat, fmt.Sprintf("%s: %s", chat.Username, chat.Message))

		case proto.EventNewVibe:
			var vibe proto.VibeEvent
			if err := json.Unmarshal(msg.Data, &vibe); err != nil {
				continue
			}
			buf.Push(buffer.CategoryVibe, fmt.Sprintf("%s feels: %s", vibe.User, vibe.Content))

		case proto.EventUserList:
			var users []string
			if err := json.Unmarshal(msg.Data, &users); err != nil {
				continue
			}
			status.Set(fmt.Sprintf("* online: %s", strings.Join(users, ", ")))

		case proto.EventStatsUpdate:
			var stats proto.StatsEvent
			if err := json.Unmarshal(msg.Data, &stats); err != nil {
				continue
			}
			status.Set(fmt.Sprintf("* community: %d posts, %d groups, %d members, %d active today, %d vibes",
				stats.Posts, stats.Groups, stats.Members, stats.ActiveToday, stats.Vibes))
		}
	}
}

func writeLoop(ctx context.Context, user string, send func(interface{})) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if content, ok := strings.CutPrefix(line, "/vibe "); ok {
			data, err := json.Marshal(proto.NewVibeData{User: user, Content: content})
			if err != nil {
				continue
			}
			send(proto.Inbound{Type: proto.InboundTypeNewVibe, Data: data})
			continue
		}

		data, err := json.Marshal(proto.ChatMessageData{Username: user, Message: line})
		if err != nil {
			continue
		}
		send(proto.Inbound{Type: proto.InboundTypeChat, Data: data})
	}
}
