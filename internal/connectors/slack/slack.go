// Package slack is a minimal Slack Web API client covering the
// operations the assistant dispatches: posting messages, listing and
// creating channels, reading history, and inviting users.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// defaultBaseURL is the Slack Web API root.
const defaultBaseURL = "https://slack.com/api"

// Channel is the trimmed channel view returned to tool handlers.
type Channel struct {
	// ID is the Slack channel ID (e.g. "C0123456789").
	ID string `json:"id"`
	// Name is the channel name without the leading '#'.
	Name string `json:"name"`
	// IsPrivate reports whether the channel is private.
	IsPrivate bool `json:"is_private"`
	// NumMembers is the member count reported by Slack.
	NumMembers int `json:"num_members"`
}

// Message is a single channel history entry.
type Message struct {
	// User is the posting user's ID.
	User string `json:"user"`
	// Text is the message body.
	Text string `json:"text"`
	// Timestamp is the Slack message timestamp ("ts").
	Timestamp string `json:"ts"`
}

// Client calls the Slack Web API with a bot token.
type Client struct {
	// token is the bot token used as a Bearer credential.
	token string
	// baseURL is the API root, overridable for tests.
	baseURL string
	// client is the shared HTTP client with a sensible timeout.
	client *http.Client
}

// New constructs a Client from a bot token.
func New(token string) *Client {
	return &Client{
		token:   token,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// NewWithBaseURL constructs a Client pointed at a custom API root.
// Used by tests to target a local fake server.
func NewWithBaseURL(token, baseURL string) *Client {
	c := New(token)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// NormalizeChannelName converts a human channel reference to Slack's
// canonical form: the leading '#' is stripped, letters are lowercased,
// and spaces become hyphens.
func NormalizeChannelName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimPrefix(name, "#")
	name = strings.ToLower(name)
	return strings.ReplaceAll(name, " ", "-")
}

// apiEnvelope is the common portion of every Slack API response.
// Response structs embed it, which also gives them the envelope method
// the transport helpers use to surface in-band errors.
type apiEnvelope struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func (e apiEnvelope) envelope() apiEnvelope { return e }

// SendMessage posts text to a channel, given either a channel ID or a
// human name (with or without '#'). The message timestamp is returned.
func (c *Client) SendMessage(ctx context.Context, channel, text string) (string, error) {
	channelID, err := c.resolveChannel(ctx, channel)
	if err != nil {
		return "", err
	}

	body := map[string]string{"channel": channelID, "text": text}
	var resp struct {
		apiEnvelope
		TS string `json:"ts"`
	}
	if err := c.post(ctx, "chat.postMessage", body, &resp); err != nil {
		return "", err
	}
	return resp.TS, nil
}

// ListChannels returns the public and private channels visible to the bot.
func (c *Client) ListChannels(ctx context.Context) ([]Channel, error) {
	params := url.Values{
		"types": {"public_channel,private_channel"},
		"limit": {"200"},
	}
	var resp struct {
		apiEnvelope
		Channels []Channel `json:"channels"`
	}
	if err := c.get(ctx, "conversations.list", params, &resp); err != nil {
		return nil, err
	}
	return resp.Channels, nil
}

// GetChannelHistory returns the most recent messages of a channel.
func (c *Client) GetChannelHistory(ctx context.Context, channel string, limit int) ([]Message, error) {
	channelID, err := c.resolveChannel(ctx, channel)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}

	params := url.Values{
		"channel": {channelID},
		"limit":   {strconv.Itoa(limit)},
	}
	var resp struct {
		apiEnvelope
		Messages []Message `json:"messages"`
	}
	if err := c.get(ctx, "conversations.history", params, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

// CreateChannel creates a public channel with the normalized name.
func (c *Client) CreateChannel(ctx context.Context, name string) (Channel, error) {
	body := map[string]string{"name": NormalizeChannelName(name)}
	var resp struct {
		apiEnvelope
		Channel Channel `json:"channel"`
	}
	if err := c.post(ctx, "conversations.create", body, &resp); err != nil {
		return Channel{}, err
	}
	return resp.Channel, nil
}

// InviteUsers invites the given user IDs to a channel.
func (c *Client) InviteUsers(ctx context.Context, channel string, userIDs []string) error {
	channelID, err := c.resolveChannel(ctx, channel)
	if err != nil {
		return err
	}

	body := map[string]string{
		"channel": channelID,
		"users":   strings.Join(userIDs, ","),
	}
	var resp apiEnvelope
	return c.post(ctx, "conversations.invite", body, &resp)
}

// resolveChannel maps a channel reference to its ID. Values that already
// look like IDs pass through; names are normalized and looked up.
func (c *Client) resolveChannel(ctx context.Context, channel string) (string, error) {
	channel = strings.TrimSpace(channel)
	if looksLikeChannelID(channel) {
		return channel, nil
	}

	name := NormalizeChannelName(channel)
	channels, err := c.ListChannels(ctx)
	if err != nil {
		return "", err
	}
	for _, ch := range channels {
		if ch.Name == name {
			return ch.ID, nil
		}
	}
	return "", fmt.Errorf("slack: channel %q not found", name)
}

// looksLikeChannelID reports whether s has the shape of a Slack channel
// ID: a C or G prefix followed by uppercase alphanumerics.
func looksLikeChannelID(s string) bool {
	if len(s) < 9 {
		return false
	}
	if s[0] != 'C' && s[0] != 'G' {
		return false
	}
	for _, r := range s[1:] {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// post sends a JSON POST to a Web API method and decodes into out, which
// must embed apiEnvelope-compatible fields.
func (c *Client) post(ctx context.Context, method string, body any, out interface{ envelope() apiEnvelope }) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("slack: marshal %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("slack: create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+c.token)

	return c.do(req, method, out)
}

// get sends a GET to a Web API method and decodes into out.
func (c *Client) get(ctx context.Context, method string, params url.Values, out interface{ envelope() apiEnvelope }) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+method+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("slack: create %s request: %w", method, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	return c.do(req, method, out)
}

// do executes the request and surfaces Slack's in-band error field.
func (c *Client) do(req *http.Request, method string, out interface{ envelope() apiEnvelope }) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("slack: %s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("slack: decode %s response: %w", method, err)
	}
	if env := out.envelope(); !env.OK {
		msg := env.Error
		if msg == "" {
			msg = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
		return fmt.Errorf("slack: %s: %s", method, msg)
	}
	return nil
}
