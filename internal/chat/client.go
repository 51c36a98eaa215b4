// internal/chat/client.go
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Client posts messages to chat-platform channels through the platform's
// message API. Only the one operation the reminder pipeline needs is exposed.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *logrus.Logger
}

// NewClient builds a chat client for the given API base URL and bot token.
func NewClient(baseURL, token string, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

type messageRequest struct {
	ChannelID string `json:"channel_id"`
	Content   string `json:"content"`
}

// SendMessage posts content into the given channel. A non-2xx response is an
// error; rate limits surface as errors too and are retried by the send job's
// attempt budget.
func (c *Client) SendMessage(ctx context.Context, channelID, content string) error {
	body, err := json.Marshal(messageRequest{ChannelID: channelID, Content: content})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bot "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send message to %s: %w", channelID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("send message to %s: status %d", channelID, resp.StatusCode)
	}

	c.logger.WithField("channel", channelID).Debug("chat message delivered")
	return nil
}
