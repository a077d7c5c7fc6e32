package http

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/vibelink/vibelink-server/internal/core"
	"github.com/vibelink/vibelink-server/internal/proto"
)

func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error, error) {
	switch inbound.Type {
	case proto.InboundTypeJoin:
		var name string
		if err := json.Unmarshal(inbound.Data, &name); err != nil {
			return nil, nil, err
		}
		if strings.TrimSpace(name) == "" {
			return nil, &proto.Error{Code: proto.ErrCodeBadRequest, Msg: "display name is required"}, nil
		}
		return &core.Command{
			Kind: core.CommandJoin,
			Name: name,
		}, nil, nil

	case proto.InboundTypeChat:
		var msg proto.ChatMessageData
		if err := json.Unmarshal(inbound.Data, &msg); err != nil {
			return nil, nil, err
		}
		// Empty bodies are the hub's call: it drops them silently.
		return &core.Command{
			Kind:     core.CommandChatMessage,
			Username: msg.Username,
			Text:     msg.Message,
		}, nil, nil

	case proto.InboundTypeNewVibe:
		var vibe proto.NewVibeData
		if err := json.Unmarshal(inbound.Data, &vibe); err != nil {
			return nil, nil, err
		}
		return &core.Command{
			Kind:     core.CommandNewVibe,
			Username: vibe.User,
			Text:     vibe.Content,
		}, nil, nil

	default:
		return nil, &proto.Error{Code: proto.ErrCodeInvalidMessage, Msg: "unknown message type"}, nil
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventChatMessage:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventChatMessage,
			Data: proto.ChatMessageEvent{
				ID:        event.Chat.SenderID,
				Username:  event.Chat.Username,
				Message:   event.Chat.Body,
				Timestamp: event.Chat.Timestamp.UTC().Format(time.RFC3339),
			},
		}
	case core.EventUserList:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventUserList,
			Data:  event.Users,
		}
	case core.EventNewVibe:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventNewVibe,
			Data: proto.VibeEvent{
				ID:        event.Vibe.ID,
				User:      event.Vibe.User,
				Content:   event.Vibe.Content,
				CreatedAt: event.Vibe.CreatedAt.UTC().Format(time.RFC3339),
			},
		}
	case core.EventStatsUpdate:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventStatsUpdate,
			Data: proto.StatsEvent{
				Posts:       event.Stats.Posts,
				Groups:      event.Stats.Groups,
				Members:     event.Stats.Members,
				ActiveToday: event.Stats.ActiveToday,
				Vibes:       event.Stats.Vibes,
			},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}
