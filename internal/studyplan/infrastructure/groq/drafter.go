// Package groq drafts study schedules through Groq's OpenAI-compatible
// chat completions API. Model output is treated as untrusted: fences are
// stripped, dates are clamped into the study window, and anything that
// still fails validation is reported as an error so the caller can fall
// back to the rule-based planner.
package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/edusense/edusense/internal/studyplan/application/services"
	"github.com/edusense/edusense/internal/studyplan/domain"
	"github.com/edusense/edusense/pkg/observability"
)

const (
	defaultBaseURL = "https://api.groq.com/openai/v1"
	defaultModel   = "llama-3.3-70b-versatile"
	defaultTimeout = 60 * time.Second

	defaultBreakerThreshold = 5
	defaultBreakerReset     = 30 * time.Second

	maxPromptChars = 12000
	maxTopics      = 15
	maxTips        = 6
	maxSessions    = 10

	defaultSessionHours = 2.0
	defaultSessionTip   = "Stay focused and take short breaks."
)

// ErrUnavailable is returned while the circuit breaker is open and the
// upstream is not being called at all.
var ErrUnavailable = errors.New("schedule drafter unavailable")

var (
	fenceOpenRe  = regexp.MustCompile("(?i)^```(?:json)?\\s*")
	fenceCloseRe = regexp.MustCompile("\\s*```$")
	jsonBlockRe  = regexp.MustCompile(`\{[\s\S]*\}`)
)

// Config configures the Groq drafter.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration

	// BreakerThreshold is how many consecutive failures open the circuit.
	// BreakerReset is how long the circuit stays open before probing again.
	BreakerThreshold uint32
	BreakerReset     time.Duration
}

// Drafter calls Groq to draft a study schedule. It implements
// services.Drafter.
type Drafter struct {
	config  Config
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[*domain.Draft]
	logger  *slog.Logger
}

// NewDrafter creates a Groq-backed schedule drafter.
func NewDrafter(config Config, logger *slog.Logger) *Drafter {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.Model == "" {
		config.Model = defaultModel
	}
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	if config.BreakerThreshold == 0 {
		config.BreakerThreshold = defaultBreakerThreshold
	}
	if config.BreakerReset == 0 {
		config.BreakerReset = defaultBreakerReset
	}

	settings := gobreaker.Settings{
		Name:        "groq-drafter",
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     config.BreakerReset,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.BreakerThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &Drafter{
		config:  config,
		client:  &http.Client{Timeout: config.Timeout},
		breaker: gobreaker.NewCircuitBreaker[*domain.Draft](settings),
		logger:  logger,
	}
}

// DraftSchedule asks the model for a day-by-day plan inside the request's
// study window.
func (d *Drafter) DraftSchedule(ctx context.Context, req services.DraftRequest) (*domain.Draft, error) {
	timer := observability.StartTimer("groq.draft_schedule").WithLogger(d.logger)

	draft, err := d.breaker.Execute(func() (*domain.Draft, error) {
		return d.draft(ctx, req)
	})
	if err == gobreaker.ErrOpenState {
		err = ErrUnavailable
	}
	timer.StopWithError(err)

	if err != nil {
		return nil, err
	}
	return draft, nil
}

func (d *Drafter) draft(ctx context.Context, req services.DraftRequest) (*domain.Draft, error) {
	body, err := json.Marshal(chatRequest{
		Model: d.config.Model,
		Messages: []chatMessage{
			{Role: "user", Content: buildPrompt(req)},
		},
		MaxTokens:   4096,
		Temperature: 0.3,
	})
	if err != nil {
		return nil, err
	}

	url := d.config.BaseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+d.config.APIKey)

	resp, err := d.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, responseError(resp)
	}

	var completion chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return nil, err
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	payload, err := parseDraftPayload(completion.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	return toDraft(payload, req)
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// draftPayload is the JSON shape the prompt asks the model for.
type draftPayload struct {
	ExtractedTopics []string         `json:"extracted_topics"`
	AISummary       string           `json:"ai_summary"`
	AITips          []string         `json:"ai_tips"`
	Sessions        []sessionPayload `json:"sessions"`
}

type sessionPayload struct {
	Day           int      `json:"day"`
	Date          string   `json:"date"`
	Topics        []string `json:"topics"`
	DurationHours float64  `json:"duration_hours"`
	FocusLevel    string   `json:"focus_level"`
	Tips          string   `json:"tips"`
}

func buildPrompt(req services.DraftRequest) string {
	startStr := req.WindowStart.Format(domain.DateLayout)
	endStr := req.WindowEnd.Format(domain.DateLayout)
	totalDays := int(req.WindowEnd.Sub(req.WindowStart).Hours() / 24)

	material := strings.TrimSpace(req.MaterialText)
	materialSection := fmt.Sprintf("No documents uploaded. Generate a general study plan for %s.", req.Subject)
	if material != "" {
		materialSection = "STUDY MATERIAL CONTENT:\n" + truncateRunes(material, maxPromptChars)
	}

	sessionCap := totalDays
	if sessionCap > maxSessions {
		sessionCap = maxSessions
	}

	return fmt.Sprintf(`You are an expert academic study planner. Create a detailed day-by-day study schedule.

TASK: %s
SUBJECT: %s
STUDY PERIOD: %s to %s (ONLY these dates, do NOT go outside this range)
TOTAL DAYS AVAILABLE: %d

%s

Generate a complete study schedule. Return ONLY a valid JSON object (no markdown, no extra text):
{
  "extracted_topics": ["Topic 1", "Topic 2", "Topic 3"],
  "ai_summary": "2-3 sentence overview of the study plan and approach",
  "ai_tips": ["Study tip 1", "Study tip 2", "Study tip 3", "Study tip 4"],
  "sessions": [
    {
      "day": 1,
      "date": "%s",
      "topics": ["Topic for this day"],
      "duration_hours": 2.0,
      "focus_level": "high",
      "tips": "Specific actionable tip for this session"
    }
  ]
}

STRICT RULES:
1. All "date" values MUST be between %s and %s INCLUSIVE
2. "focus_level" must be exactly "low", "medium", or "high"
3. "duration_hours" must be a number between 0.5 and 4.0
4. "day" starts at 1 and increments for each session
5. Spread topics evenly, do not front-load or back-load all content
6. Generate %d sessions maximum, distributed across the date range
7. Return ONLY valid JSON, no markdown fences, no explanation text`,
		req.Title, req.Subject, startStr, endStr, totalDays,
		materialSection, startStr, startStr, endStr, sessionCap)
}

// cleanJSON strips markdown code fences from a model response.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)
	text = fenceOpenRe.ReplaceAllString(text, "")
	text = fenceCloseRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

func parseDraftPayload(raw string) (*draftPayload, error) {
	var payload draftPayload
	if err := json.Unmarshal([]byte(cleanJSON(raw)), &payload); err == nil {
		return &payload, nil
	}

	// The model sometimes wraps the JSON in prose. Take the outermost
	// object and try again.
	block := jsonBlockRe.FindString(raw)
	if block == "" {
		return nil, fmt.Errorf("model response contains no JSON object")
	}
	if err := json.Unmarshal([]byte(block), &payload); err != nil {
		return nil, fmt.Errorf("parse model response: %w", err)
	}
	return &payload, nil
}

func toDraft(payload *draftPayload, req services.DraftRequest) (*domain.Draft, error) {
	if len(payload.Sessions) == 0 {
		return nil, fmt.Errorf("model draft contains no sessions")
	}

	sessions := make([]domain.StudySession, 0, len(payload.Sessions))
	for i, p := range payload.Sessions {
		date, err := time.Parse(domain.DateLayout, p.Date)
		if err != nil || date.Before(req.WindowStart) || date.After(req.WindowEnd) {
			date = req.WindowStart
		}

		day := p.Day
		if day < 1 {
			day = i + 1
		}

		topics := p.Topics
		if len(topics) == 0 {
			topics = []string{req.Subject}
		}

		hours := p.DurationHours
		if hours == 0 {
			hours = defaultSessionHours
		}
		if hours < domain.MinSessionHours {
			hours = domain.MinSessionHours
		}
		if hours > domain.MaxSessionHours {
			hours = domain.MaxSessionHours
		}

		focus, err := domain.ParseFocusLevel(p.FocusLevel)
		if err != nil {
			focus = domain.FocusMedium
		}

		tips := strings.TrimSpace(p.Tips)
		if tips == "" {
			tips = defaultSessionTip
		}

		session, err := domain.NewStudySession(day, date, topics, hours, focus, tips)
		if err != nil {
			return nil, fmt.Errorf("model session %d: %w", i+1, err)
		}
		sessions = append(sessions, session)
	}

	topics := payload.ExtractedTopics
	if len(topics) == 0 {
		for _, c := range req.Concepts {
			topics = append(topics, c.Title)
		}
	}
	if len(topics) == 0 {
		topics = []string{req.Subject}
	}
	if len(topics) > maxTopics {
		topics = topics[:maxTopics]
	}

	summary := strings.TrimSpace(payload.AISummary)
	if summary == "" {
		summary = "Study plan for " + req.Title
	}

	tips := payload.AITips
	if len(tips) > maxTips {
		tips = tips[:maxTips]
	}

	return &domain.Draft{
		Topics:   topics,
		Sessions: sessions,
		Summary:  summary,
		Tips:     tips,
		Source:   domain.SourceAI,
	}, nil
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func responseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("groq chat completion failed: status=%d body=%s", resp.StatusCode, string(body))
}
