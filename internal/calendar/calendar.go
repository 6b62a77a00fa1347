// Package calendar mirrors dated tasks as all-day events in an external
// calendar.
package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/yukikurage/release-planner/internal/models"
)

// DefaultBaseURL is the Google Calendar v3 API root.
const DefaultBaseURL = "https://www.googleapis.com/calendar/v3"

const eventsScope = "https://www.googleapis.com/auth/calendar.events"

var ErrInvalidEvent = errors.New("event needs a start date")

// Event is an all-day event spanning Start through End inclusive.
type Event struct {
	Summary     string
	Description string
	Start       models.Date
	End         models.Date
	Attendees   []string
}

// Provider creates, updates and deletes calendar events.
type Provider interface {
	Create(ctx context.Context, ev Event) (string, error)
	Update(ctx context.Context, eventID string, ev Event) error
	Delete(ctx context.Context, eventID string) error
}

// Noop is used when no calendar is configured.
type Noop struct{}

func (Noop) Create(context.Context, Event) (string, error) { return "", nil }
func (Noop) Update(context.Context, string, Event) error   { return nil }
func (Noop) Delete(context.Context, string) error          { return nil }

// Credentials are the OAuth client and the offline refresh token of the
// calendar owner.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	// TokenURL overrides the Google token endpoint.
	TokenURL string
}

// OAuthClient returns an http.Client that refreshes access tokens as needed.
func OAuthClient(ctx context.Context, creds Credentials) *http.Client {
	endpoint := endpoints.Google
	if creds.TokenURL != "" {
		endpoint.TokenURL = creds.TokenURL
	}
	conf := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint:     endpoint,
		Scopes:       []string{eventsScope},
	}
	return conf.Client(ctx, &oauth2.Token{RefreshToken: creds.RefreshToken})
}

// GoogleClient talks to the Calendar v3 REST API.
type GoogleClient struct {
	client     *http.Client
	baseURL    string
	calendarID string
}

func NewGoogleClient(client *http.Client, baseURL, calendarID string) *GoogleClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if calendarID == "" {
		calendarID = "primary"
	}
	return &GoogleClient{client: client, baseURL: strings.TrimRight(baseURL, "/"), calendarID: calendarID}
}

type eventDate struct {
	Date string `json:"date"`
}

type eventAttendee struct {
	Email string `json:"email"`
}

type eventBody struct {
	ID          string          `json:"id,omitempty"`
	Summary     string          `json:"summary"`
	Description string          `json:"description,omitempty"`
	Start       eventDate       `json:"start"`
	End         eventDate       `json:"end"`
	Attendees   []eventAttendee `json:"attendees,omitempty"`
}

func toBody(ev Event) (eventBody, error) {
	if ev.Start == "" || !ev.Start.Valid() {
		return eventBody{}, ErrInvalidEvent
	}
	end := ev.End
	if end == "" || !end.Valid() || end.Before(ev.Start) {
		end = ev.Start
	}
	body := eventBody{
		Summary:     ev.Summary,
		Description: ev.Description,
		Start:       eventDate{Date: string(ev.Start)},
		// all-day end dates are exclusive
		End: eventDate{Date: string(end.AddDays(1))},
	}
	for _, email := range ev.Attendees {
		if email != "" {
			body.Attendees = append(body.Attendees, eventAttendee{Email: email})
		}
	}
	return body, nil
}

func (c *GoogleClient) eventsURL(eventID string) string {
	u := fmt.Sprintf("%s/calendars/%s/events", c.baseURL, url.PathEscape(c.calendarID))
	if eventID != "" {
		u += "/" + url.PathEscape(eventID)
	}
	return u
}

func (c *GoogleClient) Create(ctx context.Context, ev Event) (string, error) {
	body, err := toBody(ev)
	if err != nil {
		return "", err
	}
	var created eventBody
	if err := c.do(ctx, http.MethodPost, c.eventsURL(""), body, &created); err != nil {
		return "", fmt.Errorf("failed to create calendar event: %w", err)
	}
	return created.ID, nil
}

func (c *GoogleClient) Update(ctx context.Context, eventID string, ev Event) error {
	body, err := toBody(ev)
	if err != nil {
		return err
	}
	if err := c.do(ctx, http.MethodPut, c.eventsURL(eventID), body, nil); err != nil {
		return fmt.Errorf("failed to update calendar event: %w", err)
	}
	return nil
}

// Delete removes the event. An event that is already gone is not an error.
func (c *GoogleClient) Delete(ctx context.Context, eventID string) error {
	err := c.do(ctx, http.MethodDelete, c.eventsURL(eventID), nil, nil)
	var apiErr *APIError
	if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusNotFound || apiErr.StatusCode == http.StatusGone) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete calendar event: %w", err)
	}
	return nil
}

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("calendar api status %d: %s", e.StatusCode, e.Body)
}

func (c *GoogleClient) do(ctx context.Context, method, endpoint string, body any, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, endpoint, &buf)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
