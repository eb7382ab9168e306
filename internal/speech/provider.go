package speech

import (
	"context"

	"github.com/JaimeStill/hand2voice/internal/prompts"
	"github.com/JaimeStill/hand2voice/pkg/gemini"
)

// Provider converts one audio clip to text.
type Provider interface {
	Name() string
	Transcribe(ctx context.Context, audio Audio) (string, error)
}

type geminiProvider struct {
	client   *gemini.Client
	model    string
	language string
}

// NewGeminiProvider transcribes with a Gemini model, sending the clip as
// inline data alongside a verbatim-transcript instruction.
func NewGeminiProvider(client *gemini.Client, model, language string) Provider {
	return &geminiProvider{client: client, model: model, language: language}
}

func (g *geminiProvider) Name() string {
	return "gemini"
}

func (g *geminiProvider) Transcribe(ctx context.Context, audio Audio) (string, error) {
	return g.client.Generate(ctx, g.model, prompts.Transcription(g.language), gemini.Media{
		MIMEType: audio.MIMEType,
		Data:     audio.Data,
	})
}

type unavailableProvider struct {
	name string
	err  error
}

// Unavailable returns a Provider that fails every call with err.
func Unavailable(name string, err error) Provider {
	return unavailableProvider{name: name, err: err}
}

func (u unavailableProvider) Name() string {
	return u.name
}

func (u unavailableProvider) Transcribe(context.Context, Audio) (string, error) {
	return "", u.err
}
