// Package speech transcribes recorded audio clips through a configurable
// speech-to-text provider.
package speech

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// System transcribes audio. Each call makes exactly one provider request.
type System interface {
	Transcribe(ctx context.Context, audio Audio) (string, error)
	Provider() string
}

type transcriber struct {
	provider Provider
	timeout  time.Duration
	logger   *slog.Logger
}

// New wraps provider. A zero timeout leaves the request bounded only by ctx.
func New(provider Provider, timeout time.Duration, logger *slog.Logger) System {
	return &transcriber{
		provider: provider,
		timeout:  timeout,
		logger:   logger.With("system", "speech", "provider", provider.Name()),
	}
}

func (t *transcriber) Provider() string {
	return t.provider.Name()
}

func (t *transcriber) Transcribe(ctx context.Context, audio Audio) (string, error) {
	if len(audio.Data) == 0 {
		return "", ErrNoAudio
	}

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := t.provider.Transcribe(ctx, audio)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	text = strings.TrimSpace(text)
	t.logger.Info(
		"transcription complete",
		"mime_type", audio.MIMEType,
		"bytes", len(audio.Data),
		"chars", len(text),
		"duration", time.Since(start),
	)
	return text, nil
}
