package tools

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
)

// slackPoster is the subset of the Slack API the tool needs, split out
// so tests can substitute a fake.
type slackPoster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// PostToSlackTool sends a message to a Slack channel on behalf of the
// agent. This is the only tool with an outward-facing side effect.
type PostToSlackTool struct {
	client         slackPoster
	defaultChannel string
}

// NewPostToSlackTool creates a Slack posting tool. defaultChannel is
// used when the model omits the channel parameter.
func NewPostToSlackTool(client *slack.Client, defaultChannel string) *PostToSlackTool {
	t := &PostToSlackTool{defaultChannel: defaultChannel}
	if client != nil {
		t.client = client
	}
	return t
}

func (t *PostToSlackTool) Name() string { return "post_to_slack" }

func (t *PostToSlackTool) Description() string {
	return "Post a message to a Slack channel. Use only for final, human-ready updates, never for intermediate findings."
}

func (t *PostToSlackTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"message": map[string]any{
				"type":        "string",
				"description": "Message text to post",
			},
			"channel": map[string]any{
				"type":        "string",
				"description": "Channel ID to post to (defaults to the configured channel)",
			},
		},
		"required": []string{"message"},
	}
}

func (t *PostToSlackTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	message := GetString(params, "message", "")
	if message == "" {
		return "Error: message parameter is required", nil
	}
	channel := GetString(params, "channel", t.defaultChannel)
	if channel == "" {
		return "Error: no Slack channel configured", nil
	}
	if t.client == nil {
		return "Error: Slack is not configured", nil
	}

	_, ts, err := t.client.PostMessageContext(ctx, channel, slack.MsgOptionText(message, false))
	if err != nil {
		return fmt.Sprintf("Error posting to Slack: %v", err), nil
	}
	return fmt.Sprintf("Posted to %s at %s", channel, ts), nil
}
