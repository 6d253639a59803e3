package social

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

// Poster delivers direct messages through one social platform's API.
// All supported platforms share the same request shape; which one a
// Poster talks to is fixed by its config at construction.
type Poster struct {
	cfg  config.SocialConfig
	http *http.Client
}

func NewPoster(cfg config.SocialConfig) *Poster {
	return &Poster{cfg: cfg, http: &http.Client{}}
}

func (p *Poster) Channel() string {
	return models.ChannelSocial
}

func (p *Poster) Platform() string {
	return p.cfg.Platform
}

type messageRequest struct {
	Recipient string `json:"recipient"`
	Message   string `json:"message"`
	MediaURL  string `json:"media_url,omitempty"`
}

type messageResponse struct {
	ID string `json:"id"`
}

func (p *Poster) Send(ctx context.Context, to string, content transport.Content) (transport.Result, error) {
	payload := messageRequest{
		Recipient: to,
		Message:   content.Body,
		MediaURL:  content.MediaURL,
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return transport.Result{}, transport.NewError(p.Channel(), "marshal request: %v", err)
	}

	url := fmt.Sprintf("%s/%s/messages", p.cfg.BaseURL, p.cfg.PageID)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return transport.Result{}, transport.NewError(p.Channel(), "build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return transport.Result{}, transport.NewError(p.Channel(), "%s: %v", p.cfg.Platform, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return transport.Result{}, transport.NewError(p.Channel(), "read response: %v", err)
	}
	if resp.StatusCode >= 400 {
		return transport.Result{}, transport.NewError(p.Channel(), "%s API error: %s - %s", p.cfg.Platform, resp.Status, string(respBody))
	}

	var result messageResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return transport.Result{}, transport.NewError(p.Channel(), "invalid response: %v", err)
	}

	return transport.Result{MessageID: result.ID}, nil
}

// SelectPoster picks the poster for the named platform out of the
// configured set, falling back to the first configured platform when no
// name is given.
func SelectPoster(configs []config.SocialConfig, platform string) (*Poster, error) {
	if len(configs) == 0 {
		return nil, fmt.Errorf("no social platforms configured")
	}
	if platform == "" {
		return NewPoster(configs[0]), nil
	}
	for _, cfg := range configs {
		if cfg.Platform == platform {
			return NewPoster(cfg), nil
		}
	}
	return nil, fmt.Errorf("social platform not configured: %s", platform)
}
