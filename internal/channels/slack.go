// Package channels connects external chat surfaces to the message bus.
package channels

import (
	"context"
	"log/slog"
	"strings"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	"github.com/signaldesk/signaldesk/internal/bus"
	"github.com/signaldesk/signaldesk/internal/config"
)

// ChannelSlack is the bus channel name for Slack traffic.
const ChannelSlack = "slack"

// SlackChannel bridges Slack socket-mode events and the message bus.
type SlackChannel struct {
	api       *slack.Client
	socket    *socketmode.Client
	bus       *bus.MessageBus
	botUserID string
	log       *slog.Logger
}

// NewSlackChannel creates the Slack adapter and subscribes it to
// outbound bus traffic.
func NewSlackChannel(cfg config.SlackConfig, b *bus.MessageBus) *SlackChannel {
	api := slack.New(cfg.BotToken, slack.OptionAppLevelToken(cfg.AppToken))
	c := &SlackChannel{
		api:       api,
		socket:    socketmode.New(api),
		bus:       b,
		botUserID: cfg.BotUserID,
		log:       slog.Default().With("component", "slack"),
	}
	b.Subscribe(ChannelSlack, c.deliver)
	return c
}

// API exposes the underlying client for tool wiring.
func (c *SlackChannel) API() *slack.Client { return c.api }

// Run consumes socket-mode events until the context is cancelled.
func (c *SlackChannel) Run(ctx context.Context) error {
	go c.consumeEvents(ctx)
	return c.socket.RunContext(ctx)
}

func (c *SlackChannel) consumeEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-c.socket.Events:
			if !ok {
				return
			}
			if evt.Type != socketmode.EventTypeEventsAPI {
				continue
			}
			if evt.Request != nil {
				c.socket.Ack(*evt.Request)
			}
			ev, ok := evt.Data.(slackevents.EventsAPIEvent)
			if !ok || ev.Type != slackevents.CallbackEvent {
				continue
			}
			c.handleCallback(ev)
		}
	}
}

func (c *SlackChannel) handleCallback(ev slackevents.EventsAPIEvent) {
	switch in := ev.InnerEvent.Data.(type) {
	case *slackevents.MessageEvent:
		if in == nil || in.User == "" || in.User == c.botUserID || in.BotID != "" {
			return
		}
		c.bus.PublishInbound(&bus.InboundMessage{
			Channel:   ChannelSlack,
			SenderID:  in.User,
			ChannelID: in.Channel,
			Content:   stripMention(in.Text, c.botUserID),
			Mentioned: c.botUserID != "" && strings.Contains(in.Text, "<@"+c.botUserID+">"),
		})
	case *slackevents.AppMentionEvent:
		if in == nil || in.User == "" || in.User == c.botUserID {
			return
		}
		c.bus.PublishInbound(&bus.InboundMessage{
			Channel:   ChannelSlack,
			SenderID:  in.User,
			ChannelID: in.Channel,
			Content:   stripMention(in.Text, c.botUserID),
			Mentioned: true,
		})
	}
}

// deliver posts an outbound bus message to its Slack channel.
func (c *SlackChannel) deliver(msg *bus.OutboundMessage) {
	if msg.Content == "" || msg.ChannelID == "" {
		return
	}
	_, _, err := c.api.PostMessageContext(context.Background(), msg.ChannelID, slack.MsgOptionText(msg.Content, false))
	if err != nil {
		c.log.Error("Slack delivery failed", "channel_id", msg.ChannelID, "error", err)
	}
}

// stripMention removes the bot's own mention token so objectives read
// as plain text.
func stripMention(text, botUserID string) string {
	if botUserID == "" {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(strings.ReplaceAll(text, "<@"+botUserID+">", ""))
}
