// Package notify delivers urgent findings to a Teams-style webhook as an
// Adaptive Card.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/selimozcann/infoprobe/internal/logger"
	"github.com/selimozcann/infoprobe/internal/model"
)

// DefaultTimeout bounds a webhook POST.
const DefaultTimeout = 10 * time.Second

// ErrDelivery is returned when the webhook could not be reached or answered
// with a non-2xx status.
var ErrDelivery = errors.New("webhook delivery failed")

const (
	summaryText  = "Possible exposed credentials"
	cardSchema   = "http://adaptivecards.io/schemas/adaptive-card.json"
	cardVersion  = "1.6"
	cardMimeType = "application/vnd.microsoft.card.adaptive"
	maxErrorBody = 512
)

// Payload is the message posted to the webhook.
type Payload struct {
	Summary     string       `json:"summary"`
	Type        string       `json:"type"`
	Attachments []Attachment `json:"attachments"`
}

// Attachment wraps a card for Teams.
type Attachment struct {
	ContentType string `json:"contentType"`
	Content     Card   `json:"content"`
}

// Card is an Adaptive Card.
type Card struct {
	Schema  string      `json:"$schema"`
	Type    string      `json:"type"`
	Version string      `json:"version"`
	Body    []TextBlock `json:"body"`
}

// TextBlock is one Adaptive Card text element.
type TextBlock struct {
	Type      string `json:"type"`
	Text      string `json:"text"`
	Size      string `json:"size,omitempty"`
	Weight    string `json:"weight,omitempty"`
	Style     string `json:"style,omitempty"`
	Color     string `json:"color,omitempty"`
	Spacing   string `json:"spacing,omitempty"`
	Wrap      bool   `json:"wrap,omitempty"`
	Separator bool   `json:"separator,omitempty"`
}

// Notifier posts payloads to webhooks.
type Notifier struct {
	client *http.Client
	log    logger.Logger
}

// New creates a Notifier whose requests time out after timeout.
func New(timeout time.Duration, log logger.Logger) *Notifier {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Notifier{client: &http.Client{Timeout: timeout}, log: log}
}

// ShouldNotify reports whether a finished scan warrants a webhook call: only
// urgent findings trigger it, and only when a URL is configured.
func ShouldNotify(r *model.Report, webhookURL string) bool {
	return r != nil && len(r.Urgent) > 0 && webhookURL != ""
}

// BuildPayload formats urgent and redirected findings into a card.
func BuildPayload(urgent, redirected []model.Finding) Payload {
	card := Card{
		Schema:  cardSchema,
		Type:    "AdaptiveCard",
		Version: cardVersion,
		Body: []TextBlock{
			{
				Type:   "TextBlock",
				Size:   "ExtraLarge",
				Weight: "Bolder",
				Text:   "Possible exposed credentials!",
				Style:  "heading",
				Color:  "Attention",
			},
			{
				Type:      "TextBlock",
				Text:      "The following domains may have an `info.php` file exposed and require **urgent** attention:",
				Wrap:      true,
				Separator: true,
			},
			{Type: "TextBlock", Text: linkLines(urgent), Wrap: true, Separator: true},
			{
				Type:      "TextBlock",
				Text:      "**The following domains redirected, so are worth checking:**",
				Wrap:      true,
				Spacing:   "ExtraLarge",
				Separator: true,
			},
			{Type: "TextBlock", Text: linkLines(redirected), Wrap: true, Separator: true},
		},
	}
	return Payload{
		Summary:     summaryText,
		Type:        "message",
		Attachments: []Attachment{{ContentType: cardMimeType, Content: card}},
	}
}

func linkLines(findings []model.Finding) string {
	lines := make([]string, 0, len(findings))
	for _, f := range findings {
		lines = append(lines, fmt.Sprintf("[%s](%s)\n", f.URL, f.URL))
	}
	return strings.Join(lines, "\n")
}

// Notify posts the card for urgent and redirected findings to webhookURL.
// Any failure wraps ErrDelivery; the caller decides what to do with it.
func (n *Notifier) Notify(ctx context.Context, urgent, redirected []model.Finding, webhookURL string) error {
	body, err := json.Marshal(BuildPayload(urgent, redirected))
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrDelivery, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: status %d: %s", ErrDelivery, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	n.log.Info("Webhook notification sent",
		logger.Int("urgent", len(urgent)),
		logger.Int("redirected", len(redirected)))
	return nil
}
