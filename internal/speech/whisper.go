package speech

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/JaimeStill/hand2voice/pkg/formatting"
)

// WhisperOptions configures an OpenAI-compatible transcription endpoint.
type WhisperOptions struct {
	BaseURL  string
	Model    string
	Language string
	Token    string
	Client   *http.Client
}

type whisperProvider struct {
	endpoint string
	opts     WhisperOptions
	client   *http.Client
}

type whisperResponse struct {
	Text string `json:"text"`
}

// errorBodyLimit caps how much of a failed response is echoed in the error.
const errorBodyLimit = 512

// NewWhisperProvider posts clips to {BaseURL}/v1/audio/transcriptions.
func NewWhisperProvider(opts WhisperOptions) Provider {
	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}
	return &whisperProvider{
		endpoint: strings.TrimRight(opts.BaseURL, "/") + "/v1/audio/transcriptions",
		opts:     opts,
		client:   client,
	}
}

func (p *whisperProvider) Name() string {
	return "whisper"
}

func (p *whisperProvider) Transcribe(ctx context.Context, audio Audio) (string, error) {
	body, contentType, err := p.form(audio)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, body)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if p.opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+p.opts.Token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(data), errorBodyLimit))
	}

	parsed, err := formatting.Parse[whisperResponse](string(data))
	if err != nil {
		return "", err
	}
	return parsed.Text, nil
}

func (p *whisperProvider) form(audio Audio) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, audio.Filename))
	header.Set("Content-Type", audio.MIMEType)

	fw, err := mw.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := fw.Write(audio.Data); err != nil {
		return nil, "", fmt.Errorf("write file part: %w", err)
	}

	fields := [][2]string{
		{"model", p.opts.Model},
		{"language", p.opts.Language},
		{"response_format", "json"},
	}
	for _, f := range fields {
		if f[1] == "" {
			continue
		}
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, "", fmt.Errorf("write %s: %w", f[0], err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
