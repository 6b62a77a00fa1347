package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/yukikurage/release-planner/internal/constants"
	"github.com/yukikurage/release-planner/internal/models"
)

var ErrAssistantDisabled = errors.New("content assistant is not configured")

// ContentAssistant drafts publication ideas for a launch with OpenAI.
type ContentAssistant struct {
	client *openai.Client
	ws     *Workspace
	model  string
}

// DraftPublication is a suggested post. Drafts are never saved.
type DraftPublication struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Platform    string       `json:"platform"`
	ContentType string       `json:"content_type"`
	Phase       models.Phase `json:"phase"`
	Hashtags    []string     `json:"hashtags"`
}

// NewContentAssistant returns an assistant; with an empty apiKey every call
// fails with ErrAssistantDisabled.
func NewContentAssistant(apiKey string, ws *Workspace) *ContentAssistant {
	a := &ContentAssistant{ws: ws, model: openai.GPT4o}
	if apiKey != "" {
		a.client = openai.NewClient(apiKey)
	}
	return a
}

// NewContentAssistantWithConfig is used to point the client at another
// OpenAI-compatible endpoint.
func NewContentAssistantWithConfig(cfg openai.ClientConfig, ws *Workspace) *ContentAssistant {
	return &ContentAssistant{client: openai.NewClientWithConfig(cfg), ws: ws, model: openai.GPT4o}
}

// Enabled reports whether an API key was configured.
func (s *ContentAssistant) Enabled() bool {
	return s.client != nil
}

// DraftPublications asks the model for up to count publication drafts for
// a launch, optionally restricted to one phase.
func (s *ContentAssistant) DraftPublications(ctx context.Context, launchID string, phase models.Phase, count int) ([]DraftPublication, error) {
	if s.client == nil {
		return nil, ErrAssistantDisabled
	}
	launch, ok := s.ws.launches.coll.Get(launchID)
	if !ok {
		return nil, ErrLaunchNotFound
	}
	if phase != "" && !phase.Valid() {
		return nil, invalid("unknown phase %q", phase)
	}
	if count <= 0 || count > constants.MaxAIGeneratedDrafts {
		count = constants.MaxAIGeneratedDrafts
	}

	prompt := buildDraftPrompt(launch, phase, count, s.plannedTitles(launchID))

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.7,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	content := stripCodeFence(resp.Choices[0].Message.Content)

	var drafts []DraftPublication
	if err := json.Unmarshal([]byte(content), &drafts); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	out := make([]DraftPublication, 0, len(drafts))
	for _, d := range drafts {
		if strings.TrimSpace(d.Title) == "" {
			continue
		}
		if !d.Phase.Valid() {
			d.Phase = phase
		}
		d.Hashtags = cleanHashtags(d.Hashtags)
		out = append(out, d)
		if len(out) == count {
			break
		}
	}
	return out, nil
}

func (s *ContentAssistant) plannedTitles(launchID string) []string {
	var titles []string
	for _, p := range s.ws.Publications() {
		if p.LaunchID == launchID {
			titles = append(titles, p.Title)
		}
	}
	return titles
}

func buildDraftPrompt(launch models.Launch, phase models.Phase, count int, planned []string) string {
	phases := make([]string, len(models.Phases))
	for i, p := range models.Phases {
		phases[i] = string(p)
	}
	scope := "any phase"
	if phase != "" {
		scope = fmt.Sprintf("the %q phase", phase)
	}
	existing := "none"
	if len(planned) > 0 {
		existing = strings.Join(planned, "; ")
	}

	return fmt.Sprintf(`You are a music marketing assistant. Suggest %d social media or newsletter publications for this release, for %s.

Song: %s
Artist: %s
Release date: %s
Description: %s
Already planned: %s

Return a JSON array only, with no other text:
[
  {
    "title": "short title",
    "description": "what the post shows or says",
    "platform": "Instagram, TikTok, YouTube, Email, ...",
    "content_type": "Post, Reel, Story, Video, Newsletter, ...",
    "phase": "one of %s",
    "hashtags": ["without the # sign"]
  }
]

Do not repeat publications that are already planned.`,
		count, scope, launch.SongName, launch.Artist, launch.LaunchDate, launch.Description, existing, strings.Join(phases, ", "))
}

// stripCodeFence removes a ```json fence some models wrap answers in.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
