package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vibelink/vibelink-server/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:5000/ws", "WebSocket address")
	user := flag.String("user", "tester", "display name to join with")
	text := flag.String("text", "hello from smoke test", "chat message to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	mustSend := func(v interface{}) error {
		if err := wsjson.Write(ctx, conn, v); err != nil {
			return fmt.Errorf("send: %w", err)
		}
		return nil
	}

	joinPayload, err := json.Marshal(*user)
	if err != nil {
		return fmt.Errorf("marshal join: %w", err)
	}
	if err := mustSend(proto.Inbound{Type: proto.InboundTypeJoin, Data: joinPayload}); err != nil {
		return err
	}

	chatPayload, err := json.Marshal(proto.ChatMessageData{Username: *user, Message: *text})
	if err != nil {
		return fmt.Errorf("marshal chat: %w", err)
	}
	if err := mustSend(proto.Inbound{Type: proto.InboundTypeChat, Data: chatPayload}); err != nil {
		return err
	}

	for {
		var outbound struct {
			Type  string          `json:"type"`
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
			Error *proto.Error    `json:"error"`
		}
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			return fmt.Errorf("read: %w", err)
		}

		fmt.Printf("Received outbound: type=%s", outbound.Type)
		if outbound.Event != "" {
			fmt.Printf(" event=%s", outbound.Event)
		}
		fmt.Println()

		if outbound.Error != nil {
			fmt.Printf("Error: %s (%s)\n", outbound.Error.Msg, outbound.Error.Code)
		}

		switch outbound.Event {
		case proto.EventChatMessage:
			var evt proto.ChatMessageEvent
			if unmarshalErr := json.Unmarshal(outbound.Data, &evt); unmarshalErr != nil {
				fmt.Printf("Raw data: %s\n", string(outbound.Data))
				return fmt.Errorf("unmarshal chat event: %w", unmarshalErr)
			}
			fmt.Printf("ChatMessage: user=%s text=%q ts=%s\n", evt.Username, evt.Message, evt.Timestamp)
			return nil
		case proto.EventUserList:
			var users []string
			if err := json.Unmarshal(outbound.Data, &users); err == nil {
				fmt.Printf("Online: %v\n", users)
			}
		case proto.EventStatsUpdate:
			var evt proto.StatsEvent
			if err := json.Unmarshal(outbound.Data, &evt); err == nil {
				fmt.Printf("Stats: posts=%d groups=%d members=%d activeToday=%d vibes=%d\n",
					evt.Posts, evt.Groups, evt.Members, evt.ActiveToday, evt.Vibes)
			}
		default:
			// keep looping for the chat echo
		}
	}
}
