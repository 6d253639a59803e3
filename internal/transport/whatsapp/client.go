package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"crm-gateway/internal/config"
	"crm-gateway/internal/models"
	"crm-gateway/internal/transport"
)

// Client sends messages through the Meta Graph API.
type Client struct {
	cfg  config.WhatsAppConfig
	http *http.Client
}

func NewClient(cfg config.WhatsAppConfig) *Client {
	return &Client{cfg: cfg, http: &http.Client{}}
}

func (c *Client) Channel() string {
	return models.ChannelWhatsApp
}

// --- Message Structures ---

type GenericMessage struct {
	MessagingProduct string    `json:"messaging_product"`
	To               string    `json:"to"`
	Type             string    `json:"type"`
	RecipientType    string    `json:"recipient_type,omitempty"`
	Text             *TextObj  `json:"text,omitempty"`
	Image            *MediaObj `json:"image,omitempty"`
}

type TextObj struct {
	Body       string `json:"body"`
	PreviewUrl bool   `json:"preview_url,omitempty"`
}

type MediaObj struct {
	Link    string `json:"link,omitempty"`
	Caption string `json:"caption,omitempty"`
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// Send delivers content as a text message, or as an image with caption
// when a media URL is present.
func (c *Client) Send(ctx context.Context, to string, content transport.Content) (transport.Result, error) {
	msg := GenericMessage{
		MessagingProduct: "whatsapp",
		To:               to,
	}
	if content.MediaURL != "" {
		msg.Type = "image"
		msg.Image = &MediaObj{Link: content.MediaURL, Caption: content.Body}
	} else {
		msg.Type = "text"
		msg.Text = &TextObj{Body: content.Body}
	}

	url := fmt.Sprintf("%s/%s/messages", c.cfg.BaseURL, c.cfg.PhoneNumberID)
	respBody, err := c.sendRequest(ctx, "POST", url, msg)
	if err != nil {
		return transport.Result{}, err
	}

	var resp sendResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return transport.Result{}, transport.NewError(c.Channel(), "invalid response: %v", err)
	}
	if len(resp.Messages) == 0 {
		return transport.Result{}, transport.NewError(c.Channel(), "no message id in response")
	}

	return transport.Result{MessageID: resp.Messages[0].ID}, nil
}

func (c *Client) sendRequest(ctx context.Context, method, url string, body interface{}) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, transport.NewError(c.Channel(), "marshal request: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, transport.NewError(c.Channel(), "build request: %v", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, transport.NewError(c.Channel(), "%v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transport.NewError(c.Channel(), "read response: %v", err)
	}

	if resp.StatusCode >= 400 {
		return nil, transport.NewError(c.Channel(), "API error: %s - %s", resp.Status, string(respBody))
	}

	return respBody, nil
}
