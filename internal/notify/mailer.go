package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const defaultMailTimeout = 10 * time.Second

// HTTPMailer posts messages to a transactional mail API that accepts
// {from, to, subject, html} with a bearer key.
type HTTPMailer struct {
	URL    string
	APIKey string
	From   string
	Client *http.Client
}

func NewHTTPMailer(url, apiKey, from string) *HTTPMailer {
	return &HTTPMailer{
		URL:    url,
		APIKey: apiKey,
		From:   from,
		Client: &http.Client{Timeout: defaultMailTimeout},
	}
}

type mailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (m *HTTPMailer) Send(ctx context.Context, email Email) error {
	data, err := json.Marshal(mailRequest{
		From:    m.From,
		To:      []string{email.To},
		Subject: email.Subject,
		HTML:    email.HTML,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.URL, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if m.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+m.APIKey)
	}

	res, err := m.Client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return fmt.Errorf("mail api status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// LogMailer only logs; used when no mail API is configured.
type LogMailer struct {
	Logger *slog.Logger
}

func (m LogMailer) Send(_ context.Context, email Email) error {
	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("email not sent, no mail api configured", "to", email.To, "subject", email.Subject)
	return nil
}
