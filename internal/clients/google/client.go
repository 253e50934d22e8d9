// Package google provides REST clients for Gmail and Google Calendar,
// operating on behalf of an authorized user token.
package google

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2"

	"github.com/bobmcallan/dayplan/internal/clients"
	"github.com/bobmcallan/dayplan/internal/common"
	"github.com/bobmcallan/dayplan/internal/interfaces"
	"github.com/bobmcallan/dayplan/internal/models"
)

const (
	DefaultBaseURL = "https://www.googleapis.com"
	DefaultTimeout = 15 * time.Second

	// InboxWindow bounds the summarization query.
	InboxWindow = 48 * time.Hour

	// EventTimezone is the fixed timezone for appended calendar events.
	EventTimezone = "Asia/Kolkata"
)

// Client implements the MailClient and CalendarClient interfaces.
type Client struct {
	baseURL string
	timeout time.Duration
	logger  *common.Logger
	now     func() time.Time
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithClock overrides the clock used for the inbox window. Tests only.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a new Google API client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		timeout: DefaultTimeout,
		logger:  common.NewSilentLogger(),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// authorized builds an HTTP client that sends the bearer token. Refresh is
// the token cache's job; the token here is already resolved.
func (c *Client) authorized(ctx context.Context, token *oauth2.Token) *http.Client {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
	client.Timeout = c.timeout
	return client
}

// doJSON executes a request and decodes the JSON response into result.
func (c *Client) doJSON(ctx context.Context, token *oauth2.Token, method, endpoint string, body io.Reader, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.authorized(ctx, token).Do(req)
	if err != nil {
		return clients.WrapTransport(err, endpoint)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return clients.Upstream(resp.StatusCode, endpoint, string(payload))
	}

	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return clients.Upstream(resp.StatusCode, endpoint, "malformed payload: "+err.Error())
	}
	return nil
}

// --- Gmail ---

type messageList struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
	NextPageToken string `json:"nextPageToken"`
}

type messagePayload struct {
	MimeType string `json:"mimeType"`
	Headers  []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	} `json:"headers"`
	Body struct {
		Data string `json:"data"`
	} `json:"body"`
	Parts []messagePayload `json:"parts"`
}

type message struct {
	ID      string         `json:"id"`
	Payload messagePayload `json:"payload"`
}

// RecentMessages lists full messages received within the inbox window.
func (c *Client) RecentMessages(ctx context.Context, token *oauth2.Token) ([]*models.EmailMessage, error) {
	after := c.now().Add(-InboxWindow).Unix()
	query := "after:" + strconv.FormatInt(after, 10)

	var emails []*models.EmailMessage
	pageToken := ""

	for {
		params := url.Values{}
		params.Set("q", query)
		params.Set("maxResults", "100")
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		var list messageList
		endpoint := "/gmail/v1/users/me/messages?" + params.Encode()
		if err := c.doJSON(ctx, token, http.MethodGet, endpoint, nil, &list); err != nil {
			return nil, err
		}
		if len(list.Messages) == 0 {
			break
		}

		for _, m := range list.Messages {
			var full message
			endpoint := "/gmail/v1/users/me/messages/" + url.PathEscape(m.ID) + "?format=full"
			if err := c.doJSON(ctx, token, http.MethodGet, endpoint, nil, &full); err != nil {
				return nil, err
			}
			emails = append(emails, normalizeMessage(&full))
		}

		pageToken = list.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return emails, nil
}

// normalizeMessage extracts sender, subject, and the first text/plain body.
func normalizeMessage(m *message) *models.EmailMessage {
	email := &models.EmailMessage{
		ID:      m.ID,
		From:    "Unknown",
		Subject: "No Subject",
	}

	for _, h := range m.Payload.Headers {
		switch h.Name {
		case "Subject":
			email.Subject = h.Value
		case "From":
			email.From = h.Value
		}
	}

	email.Body = plainTextBody(&m.Payload)
	return email
}

func plainTextBody(p *messagePayload) string {
	if len(p.Parts) > 0 {
		for _, part := range p.Parts {
			if part.MimeType == "text/plain" && part.Body.Data != "" {
				if decoded, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(part.Body.Data); err == nil {
					return string(decoded)
				}
			}
		}
		return ""
	}
	if p.Body.Data != "" {
		if decoded, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(p.Body.Data); err == nil {
			return string(decoded)
		}
	}
	return ""
}

// Send delivers a plain-text message and returns the upstream message id.
func (c *Client) Send(ctx context.Context, token *oauth2.Token, to, subject, body string) (string, error) {
	raw := fmt.Sprintf("To: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n%s", to, subject, body)

	payload, err := json.Marshal(map[string]string{
		"raw": base64.URLEncoding.EncodeToString([]byte(raw)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode message: %w", err)
	}

	var sent struct {
		ID string `json:"id"`
	}
	endpoint := "/gmail/v1/users/me/messages/send"
	if err := c.doJSON(ctx, token, http.MethodPost, endpoint, bytes.NewReader(payload), &sent); err != nil {
		return "", err
	}

	c.logger.Debug().Str("message_id", sent.ID).Msg("Email sent")
	return sent.ID, nil
}

// --- Calendar ---

// InsertTask appends an event to the user's primary calendar in the fixed
// event timezone.
func (c *Client) InsertTask(ctx context.Context, token *oauth2.Token, task *models.CalendarTask) error {
	event := map[string]interface{}{
		"summary":     task.Title,
		"description": task.Description,
		"start": map[string]string{
			"dateTime": fmt.Sprintf("%sT%s:00", task.Date, task.StartTime),
			"timeZone": EventTimezone,
		},
		"end": map[string]string{
			"dateTime": fmt.Sprintf("%sT%s:00", task.Date, task.EndTime),
			"timeZone": EventTimezone,
		},
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	endpoint := "/calendar/v3/calendars/primary/events"
	return c.doJSON(ctx, token, http.MethodPost, endpoint, bytes.NewReader(payload), nil)
}

// Ensure Client implements both interfaces
var (
	_ interfaces.MailClient     = (*Client)(nil)
	_ interfaces.CalendarClient = (*Client)(nil)
)
