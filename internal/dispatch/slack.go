package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/caesar-ai/caesar-go/internal/connectors/slack"
)

// SlackAPI is the subset of the Slack connector the dispatcher calls.
type SlackAPI interface {
	SendMessage(ctx context.Context, channel, text string) (string, error)
	ListChannels(ctx context.Context) ([]slack.Channel, error)
	GetChannelHistory(ctx context.Context, channel string, limit int) ([]slack.Message, error)
	CreateChannel(ctx context.Context, name string) (slack.Channel, error)
	InviteUsers(ctx context.Context, channel string, userIDs []string) error
}

// RegisterSlackTools binds the slack_* tools to a Slack client.
func RegisterSlackTools(r *Registry, api SlackAPI) {
	r.Register(Tool{
		Name:        "slack_send_message",
		Description: "Sends a message to a Slack channel. Channel may be a name or a channel id.",
		Fields:      []string{"channel", "text"},
		Handler: func(ctx context.Context, args Args) (string, error) {
			if err := args.Require([]string{"channel", "text"}, "channel", "text"); err != nil {
				return "", err
			}
			ts, err := api.SendMessage(ctx, args.Get("channel"), args.Get("text"))
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Message sent to %s (ts %s).", args.Get("channel"), ts), nil
		},
	})

	r.Register(Tool{
		Name:        "slack_list_channels",
		Description: "Lists Slack channels visible to the bot.",
		Fields:      nil,
		Handler: func(ctx context.Context, args Args) (string, error) {
			channels, err := api.ListChannels(ctx)
			if err != nil {
				return "", err
			}
			if len(channels) == 0 {
				return "No channels found.", nil
			}
			var sb strings.Builder
			fmt.Fprintf(&sb, "%d channel(s):\n", len(channels))
			for _, ch := range channels {
				fmt.Fprintf(&sb, "- #%s [id: %s]\n", ch.Name, ch.ID)
			}
			return strings.TrimRight(sb.String(), "\n"), nil
		},
	})

	r.Register(Tool{
		Name:        "slack_get_channel_history",
		Description: "Fetches recent messages from a Slack channel. Optional limit (default 20).",
		Fields:      []string{"channel", "limit"},
		Handler: func(ctx context.Context, args Args) (string, error) {
			if err := args.Require([]string{"channel", "limit"}, "channel"); err != nil {
				return "", err
			}
			msgs, err := api.GetChannelHistory(ctx, args.Get("channel"), args.GetInt("limit", 20))
			if err != nil {
				return "", err
			}
			if len(msgs) == 0 {
				return fmt.Sprintf("No messages in %s.", args.Get("channel")), nil
			}
			var sb strings.Builder
			for _, m := range msgs {
				fmt.Fprintf(&sb, "[%s] %s: %s\n", m.Timestamp, m.User, m.Text)
			}
			return strings.TrimRight(sb.String(), "\n"), nil
		},
	})

	r.Register(Tool{
		Name:        "slack_create_channel",
		Description: "Creates a new Slack channel with the given name.",
		Fields:      []string{"name"},
		Handler: func(ctx context.Context, args Args) (string, error) {
			if err := args.Require([]string{"name"}, "name"); err != nil {
				return "", err
			}
			ch, err := api.CreateChannel(ctx, args.Get("name"))
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Created channel #%s [id: %s]", ch.Name, ch.ID), nil
		},
	})

	r.Register(Tool{
		Name:        "slack_invite_users",
		Description: "Invites users to a Slack channel. Users is a space-separated list of user ids.",
		Fields:      []string{"channel", "users"},
		Handler: func(ctx context.Context, args Args) (string, error) {
			if err := args.Require([]string{"channel", "users"}, "channel", "users"); err != nil {
				return "", err
			}
			users := strings.Fields(args.Get("users"))
			if err := api.InviteUsers(ctx, args.Get("channel"), users); err != nil {
				return "", err
			}
			return fmt.Sprintf("Invited %d user(s) to %s.", len(users), args.Get("channel")), nil
		},
	})
}
