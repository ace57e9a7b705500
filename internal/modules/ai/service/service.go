package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"anoa.com/coursemarket/internal/agent/providers"
	"anoa.com/coursemarket/internal/entity"
	"anoa.com/coursemarket/internal/modules/ai/dto"
	"anoa.com/coursemarket/pkg/apperror"
	"anoa.com/coursemarket/pkg/ratelimiter"
	"anoa.com/coursemarket/pkg/validator"
	"github.com/microcosm-cc/bluemonday"
)

const (
	ActionCourseDraft = "ai_course_draft"
	ActionSummary     = "ai_summary"

	DefaultTimeout = 30 * time.Second
)

var errInvalidDraft = errors.New("course draft does not match schema")

// TextGenerator is the slice of providers.LLMProvider this service needs.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	GenerateStructured(ctx context.Context, prompt string, output any) error
}

type AIService interface {
	GenerateCourseDraft(ctx context.Context, user *entity.User, req dto.CourseDraftRequest) (*dto.CourseDraft, error)
	SummarizeCourse(ctx context.Context, user *entity.User, req dto.SummaryRequest) (*dto.SummaryResponse, error)
}

type Options struct {
	Timeout  time.Duration
	Cooldown time.Duration
}

type aiService struct {
	generator TextGenerator
	limiter   *ratelimiter.Limiter
	opts      Options
	sanitizer *bluemonday.Policy
	logger    *slog.Logger
}

// NewAIService builds the service. A nil generator means no provider is configured.
func NewAIService(generator TextGenerator, limiter *ratelimiter.Limiter, opts Options, logger *slog.Logger) AIService {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &aiService{
		generator: generator,
		limiter:   limiter,
		opts:      opts,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger,
	}
}

func (s *aiService) GenerateCourseDraft(ctx context.Context, user *entity.User, req dto.CourseDraftRequest) (*dto.CourseDraft, error) {
	if s.generator == nil {
		return nil, apperror.New(http.StatusInternalServerError, "AI provider is not configured", nil)
	}

	release, err := s.claim(ctx, user, ActionCourseDraft)
	if err != nil {
		return nil, err
	}

	var draft dto.CourseDraft
	err = s.withTimeout(ctx, func(ctx context.Context) error {
		return s.generator.GenerateStructured(ctx, draftPrompt(req), &draft)
	})
	if err == nil {
		err = s.shapeDraft(&draft)
	}
	if err != nil {
		release()
		if errors.Is(err, providers.ErrInvalidJSON) || errors.Is(err, errInvalidDraft) {
			s.logger.WarnContext(ctx, "invalid course draft from provider", "error", err)
			return nil, apperror.New(http.StatusInternalServerError, "failed to generate course draft, please try again", err)
		}
		return nil, s.upstreamError(ctx, "failed to generate course draft", err)
	}
	return &draft, nil
}

func (s *aiService) SummarizeCourse(ctx context.Context, user *entity.User, req dto.SummaryRequest) (*dto.SummaryResponse, error) {
	if s.generator == nil {
		return nil, apperror.New(http.StatusNotImplemented, "AI key not configured", nil)
	}

	release, err := s.claim(ctx, user, ActionSummary)
	if err != nil {
		return nil, err
	}

	prompt := "You are helping an edtech founder craft a landing page. " +
		"Summarize the following course in 3 bullet lines, focusing on outcomes and credibility:\n\n" +
		req.Description

	text, err := s.generate(ctx, prompt)
	if err != nil {
		release()
		return nil, s.upstreamError(ctx, "failed to generate summary", err)
	}

	return &dto.SummaryResponse{Summary: s.clean(text)}, nil
}

// claim takes the caller's cooldown slot and returns a func that gives it back.
func (s *aiService) claim(ctx context.Context, user *entity.User, action string) (func(), error) {
	if user == nil {
		return nil, fmt.Errorf("ai request: %w", apperror.ErrUnauthorized)
	}
	if err := s.limiter.Allow(ctx, user.ID, action, s.opts.Cooldown); err != nil {
		return nil, err
	}
	return func() {
		if err := s.limiter.Clear(context.WithoutCancel(ctx), user.ID, action); err != nil {
			s.logger.WarnContext(ctx, "failed to clear ai cooldown", "user_id", user.ID, "error", err)
		}
	}, nil
}

func (s *aiService) generate(ctx context.Context, prompt string) (string, error) {
	var text string
	err := s.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		text, err = s.generator.GenerateText(ctx, prompt)
		return err
	})
	return text, err
}

func (s *aiService) withTimeout(ctx context.Context, call func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	err := call(ctx)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	return err
}

func (s *aiService) upstreamError(ctx context.Context, message string, err error) error {
	s.logger.ErrorContext(ctx, message, "error", err)

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return apperror.New(http.StatusInternalServerError, "AI request timed out, please try again", err)
	case errors.Is(err, providers.ErrModelNotFound):
		return apperror.New(http.StatusNotFound, "model not found, check the AI model configuration", err)
	case errors.Is(err, providers.ErrInvalidAPIKey):
		return apperror.New(http.StatusUnauthorized, "invalid or missing AI API key", err)
	}
	return apperror.New(http.StatusInternalServerError, message+", please try again", err)
}

// shapeDraft sanitizes the model's fields and validates the result.
func (s *aiService) shapeDraft(draft *dto.CourseDraft) error {
	draft.Title = s.clean(draft.Title)
	draft.Description = s.clean(draft.Description)
	draft.Category = s.clean(draft.Category)
	draft.Level = strings.ToUpper(strings.TrimSpace(draft.Level))
	draft.CoverImagePrompt = s.clean(draft.CoverImagePrompt)
	draft.Outline = s.cleanAll(draft.Outline)
	draft.Keywords = s.cleanAll(draft.Keywords)

	if err := validator.Validate(draft); err != nil {
		return fmt.Errorf("%w: %v", errInvalidDraft, err)
	}
	return nil
}

func (s *aiService) clean(text string) string {
	sanitized := html.UnescapeString(s.sanitizer.Sanitize(text))
	return strings.TrimSpace(sanitized)
}

func (s *aiService) cleanAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if c := s.clean(item); c != "" {
			out = append(out, c)
		}
	}
	return out
}

func draftPrompt(req dto.CourseDraftRequest) string {
	level := req.Level
	if level == "" {
		level = "Not specified; infer best fit"
	}

	lines := []string{
		"Course topic: " + req.Topic,
		"Audience: " + req.Audience,
		"Level: " + level,
	}
	if req.Goals != "" {
		lines = append(lines, "Goals: "+req.Goals)
	}
	lines = append(lines,
		`Return a JSON object with these exact fields: title (string), description (string), category (string), `+
			`level ("BEGINNER" | "INTERMEDIATE" | "ADVANCED"), priceSuggestion (number in INR), durationHours (number), `+
			`outline (array of strings, 6-8 items), keywords (array of strings, 5-8 items), coverImagePrompt (string).`,
	)
	return strings.Join(lines, "\n")
}
