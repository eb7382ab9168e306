package vision

import (
	"context"

	"github.com/JaimeStill/hand2voice/pkg/gemini"
)

// Model describes an image in response to a prompt.
type Model interface {
	Describe(ctx context.Context, prompt string, img Image) (string, error)
}

type geminiModel struct {
	client *gemini.Client
	model  string
}

// NewGeminiModel adapts a Gemini client to Model using the named model.
func NewGeminiModel(client *gemini.Client, model string) Model {
	return &geminiModel{client: client, model: model}
}

func (g *geminiModel) Describe(ctx context.Context, prompt string, img Image) (string, error) {
	return g.client.Generate(ctx, g.model, prompt, gemini.Media{
		MIMEType: img.MIMEType,
		Data:     img.Data,
	})
}

type unavailableModel struct {
	err error
}

// Unavailable returns a Model that fails every call with err. It stands in
// when no model credentials are configured.
func Unavailable(err error) Model {
	return unavailableModel{err: err}
}

func (u unavailableModel) Describe(context.Context, string, Image) (string, error) {
	return "", u.err
}
