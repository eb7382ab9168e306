// Package vision analyzes camera images with a generative vision model:
// scene description, text reading, and structured hazard assessment.
package vision

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/hand2voice/internal/hazard"
	"github.com/JaimeStill/hand2voice/internal/prompts"
	"github.com/JaimeStill/hand2voice/pkg/storage"
)

// FallbackDescription is returned when the model produces no text.
const FallbackDescription = "I couldn't generate a description for this image."

// Result is the outcome of one analysis. Hazard is set only in hazard mode.
type Result struct {
	Mode        prompts.Mode   `json:"mode"`
	Description string         `json:"description"`
	Hazard      *hazard.Report `json:"hazard,omitempty"`
}

// System analyzes images. Every call reaches the model; nothing is cached.
type System interface {
	Analyze(ctx context.Context, data []byte, mode prompts.Mode) (*Result, error)
	AnalyzeWithPrompt(ctx context.Context, data []byte, prompt string) (*Result, error)
}

// Options tunes analysis behavior.
type Options struct {
	// Timeout bounds each model call. Zero means no timeout.
	Timeout time.Duration
	// HazardRetries is how many times a malformed hazard report is re-queried.
	HazardRetries int
	// MaxActionWords caps the hazard report's what-to-do phrase.
	MaxActionWords int
	// Archive, when non-nil, receives a copy of every analyzed image.
	Archive storage.System
}

type analyzer struct {
	model  Model
	opts   Options
	logger *slog.Logger
	now    func() time.Time
}

func New(model Model, opts Options, logger *slog.Logger) System {
	return &analyzer{
		model:  model,
		opts:   opts,
		logger: logger.With("system", "vision"),
		now:    time.Now,
	}
}

func (a *analyzer) Analyze(ctx context.Context, data []byte, mode prompts.Mode) (*Result, error) {
	mode = prompts.ParseMode(string(mode))

	img, err := DecodeImage(data)
	if err != nil {
		return nil, err
	}
	a.archive(ctx, img, mode)

	if mode == prompts.ModeHazard {
		return a.assess(ctx, img)
	}

	text, err := a.describe(ctx, prompts.For(mode), img)
	if err != nil {
		return nil, err
	}
	return &Result{Mode: mode, Description: orFallback(text)}, nil
}

func (a *analyzer) AnalyzeWithPrompt(ctx context.Context, data []byte, prompt string) (*Result, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}

	img, err := DecodeImage(data)
	if err != nil {
		return nil, err
	}
	a.archive(ctx, img, prompts.ModeCustom)

	text, err := a.describe(ctx, prompt, img)
	if err != nil {
		return nil, err
	}
	return &Result{Mode: prompts.ModeCustom, Description: orFallback(text)}, nil
}

// assess queries the hazard prompt, re-querying with a format reminder on a
// malformed report. Once retries run out it returns the unknown sentinel.
// A model failure on a re-query also degrades to the sentinel.
func (a *analyzer) assess(ctx context.Context, img Image) (*Result, error) {
	var raw string

	for attempt := 0; attempt <= a.opts.HazardRetries; attempt++ {
		prompt := prompts.For(prompts.ModeHazard)
		if attempt > 0 {
			prompt = prompts.Retry()
		}

		text, err := a.describe(ctx, prompt, img)
		if err != nil {
			if attempt == 0 {
				return nil, err
			}
			a.logger.Warn("hazard re-query failed", "attempt", attempt, "error", err)
			break
		}
		raw = text

		report, err := hazard.Parse(text)
		if err == nil {
			return hazardResult(report.LimitAction(a.opts.MaxActionWords)), nil
		}
		a.logger.Warn("malformed hazard report", "attempt", attempt, "error", err)
	}

	return hazardResult(hazard.Unknown(orFallback(raw)).LimitAction(a.opts.MaxActionWords)), nil
}

func hazardResult(r hazard.Report) *Result {
	return &Result{
		Mode:        prompts.ModeHazard,
		Description: r.Text(),
		Hazard:      &r,
	}
}

func (a *analyzer) describe(ctx context.Context, prompt string, img Image) (string, error) {
	if a.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.Timeout)
		defer cancel()
	}

	start := a.now()
	text, err := a.model.Describe(ctx, prompt, img)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	a.logger.Debug("model responded", "duration", a.now().Sub(start), "chars", len(text))
	return strings.TrimSpace(text), nil
}

func (a *analyzer) archive(ctx context.Context, img Image, mode prompts.Mode) {
	if a.opts.Archive == nil {
		return
	}

	key := fmt.Sprintf(
		"captures/%s/%s-%s.%s",
		mode, a.now().UTC().Format("20060102-150405"), uuid.NewString(), img.Extension(),
	)
	if err := a.opts.Archive.Upload(ctx, key, bytes.NewReader(img.Data), img.MIMEType); err != nil {
		a.logger.Warn("capture archive failed", "key", key, "error", err)
		return
	}
	a.logger.Debug("capture archived", "key", key)
}

func orFallback(text string) string {
	if text == "" {
		return FallbackDescription
	}
	return text
}
