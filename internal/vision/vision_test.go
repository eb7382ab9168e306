package vision_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/image/bmp"

	"github.com/JaimeStill/hand2voice/internal/hazard"
	"github.com/JaimeStill/hand2voice/internal/prompts"
	"github.com/JaimeStill/hand2voice/internal/vision"
	"github.com/JaimeStill/hand2voice/pkg/storage"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeModel replays responses in order, repeating the last one.
type fakeModel struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	prompts   []string
	images    []vision.Image
}

func (f *fakeModel) Describe(ctx context.Context, prompt string, img vision.Image) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := len(f.prompts)
	f.prompts = append(f.prompts, prompt)
	f.images = append(f.images, img)

	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if len(f.responses) == 0 {
		return "", nil
	}
	return f.responses[min(i, len(f.responses)-1)], nil
}

func (f *fakeModel) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	return img
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage()); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newAnalyzer(model vision.Model, opts vision.Options) vision.System {
	return vision.New(model, opts, discard)
}

const validHazard = "HAZARD_LEVEL: 2\n\nWHAT I SEE:\nA cable on the floor\n\nWHERE IT IS:\ndirectly ahead\n\nWHY IT'S RISKY:\nYou could trip\n\nWHAT TO DO:\nStep over it slowly and carefully please"

func TestAnalyzeGeneral(t *testing.T) {
	model := &fakeModel{responses: []string{"  A mug on a table.  "}}
	sys := newAnalyzer(model, vision.Options{})

	result, err := sys.Analyze(context.Background(), pngBytes(t), prompts.ModeGeneral)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if result.Description != "A mug on a table." || result.Mode != prompts.ModeGeneral || result.Hazard != nil {
		t.Errorf("result = %+v", result)
	}
	if model.prompts[0] != prompts.For(prompts.ModeGeneral) {
		t.Error("general prompt not sent")
	}
	if model.images[0].MIMEType != "image/png" || model.images[0].Width != 4 {
		t.Errorf("image = %+v", model.images[0])
	}
}

func TestAnalyzeTextMode(t *testing.T) {
	model := &fakeModel{responses: []string{"EXIT"}}
	sys := newAnalyzer(model, vision.Options{})

	result, err := sys.Analyze(context.Background(), pngBytes(t), prompts.ModeText)
	if err != nil {
		t.Fatal(err)
	}
	if result.Mode != prompts.ModeText || model.prompts[0] != prompts.For(prompts.ModeText) {
		t.Errorf("text mode not applied: %+v", result)
	}
}

func TestAnalyzeUnknownModeFallsBack(t *testing.T) {
	model := &fakeModel{responses: []string{"ok"}}
	sys := newAnalyzer(model, vision.Options{})

	result, err := sys.Analyze(context.Background(), pngBytes(t), prompts.Mode("sonar"))
	if err != nil {
		t.Fatal(err)
	}
	if result.Mode != prompts.ModeGeneral || model.prompts[0] != prompts.For(prompts.ModeGeneral) {
		t.Errorf("result mode = %q", result.Mode)
	}
}

func TestAnalyzeInvalidImage(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"text", []byte("definitely not an image")},
		{"truncated png", pngBytes(t)[:12]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &fakeModel{}
			sys := newAnalyzer(model, vision.Options{})

			_, err := sys.Analyze(context.Background(), tt.data, prompts.ModeGeneral)
			if !errors.Is(err, vision.ErrInvalidImage) {
				t.Fatalf("err = %v, want ErrInvalidImage", err)
			}
			if model.calls() != 0 {
				t.Error("model must not be called for invalid images")
			}
		})
	}
}

func TestAnalyzeEmptyResponseFallback(t *testing.T) {
	model := &fakeModel{responses: []string{"   "}}
	sys := newAnalyzer(model, vision.Options{})

	result, err := sys.Analyze(context.Background(), pngBytes(t), prompts.ModeGeneral)
	if err != nil {
		t.Fatal(err)
	}
	if result.Description != vision.FallbackDescription {
		t.Errorf("description = %q", result.Description)
	}
}

func TestAnalyzeUpstreamError(t *testing.T) {
	boom := errors.New("quota exceeded")
	model := &fakeModel{errs: []error{boom}}
	sys := newAnalyzer(model, vision.Options{})

	_, err := sys.Analyze(context.Background(), pngBytes(t), prompts.ModeGeneral)
	if !errors.Is(err, vision.ErrUpstream) || !errors.Is(err, boom) {
		t.Errorf("err = %v, want ErrUpstream wrapping cause", err)
	}
	if vision.MapHTTPStatus(err) != 500 {
		t.Errorf("status = %d", vision.MapHTTPStatus(err))
	}
}

type blockingModel struct{}

func (blockingModel) Describe(ctx context.Context, prompt string, img vision.Image) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestAnalyzeTimeout(t *testing.T) {
	sys := newAnalyzer(blockingModel{}, vision.Options{Timeout: 20 * time.Millisecond})

	_, err := sys.Analyze(context.Background(), pngBytes(t), prompts.ModeGeneral)
	if !errors.Is(err, vision.ErrUpstream) || !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want ErrUpstream wrapping DeadlineExceeded", err)
	}
}

func TestHazardParsed(t *testing.T) {
	model := &fakeModel{responses: []string{validHazard}}
	sys := newAnalyzer(model, vision.Options{HazardRetries: 1, MaxActionWords: 5})

	result, err := sys.Analyze(context.Background(), pngBytes(t), prompts.ModeHazard)
	if err != nil {
		t.Fatal(err)
	}
	if result.Hazard == nil || result.Hazard.Level != 2 {
		t.Fatalf("hazard = %+v", result.Hazard)
	}
	if result.Hazard.WhatToDo != "Step over it slowly and" {
		t.Errorf("what_to_do = %q, want 5 words", result.Hazard.WhatToDo)
	}
	if result.Description != result.Hazard.Text() {
		t.Error("description should be the rendered report")
	}
	if model.calls() != 1 {
		t.Errorf("calls = %d, want 1", model.calls())
	}
}

func TestHazardRetryThenSuccess(t *testing.T) {
	model := &fakeModel{responses: []string{"There is a cable ahead.", validHazard}}
	sys := newAnalyzer(model, vision.Options{HazardRetries: 1, MaxActionWords: 5})

	result, err := sys.Analyze(context.Background(), pngBytes(t), prompts.ModeHazard)
	if err != nil {
		t.Fatal(err)
	}
	if result.Hazard.Level != 2 {
		t.Errorf("level = %d", result.Hazard.Level)
	}
	if model.calls() != 2 || model.prompts[1] != prompts.Retry() {
		t.Errorf("expected one re-query with the retry prompt, calls = %d", model.calls())
	}
}

func TestHazardSentinelAfterRetries(t *testing.T) {
	model := &fakeModel{responses: []string{"free-form text", "still free-form"}}
	sys := newAnalyzer(model, vision.Options{HazardRetries: 1, MaxActionWords: 5})

	result, err := sys.Analyze(context.Background(), pngBytes(t), prompts.ModeHazard)
	if err != nil {
		t.Fatalf("malformed output must not fail the request: %v", err)
	}
	if result.Hazard.Level != hazard.UnknownLevel {
		t.Errorf("level = %d, want sentinel", result.Hazard.Level)
	}
	if result.Hazard.WhatISee != "still free-form" || result.Hazard.WhatToDo != hazard.UnknownAction {
		t.Errorf("sentinel = %+v", result.Hazard)
	}
	if model.calls() != 2 {
		t.Errorf("calls = %d, want 2", model.calls())
	}
}

func TestHazardNoRetries(t *testing.T) {
	model := &fakeModel{responses: []string{"nope"}}
	sys := newAnalyzer(model, vision.Options{HazardRetries: 0})

	result, err := sys.Analyze(context.Background(), pngBytes(t), prompts.ModeHazard)
	if err != nil {
		t.Fatal(err)
	}
	if model.calls() != 1 || result.Hazard.Known() {
		t.Errorf("calls = %d, hazard = %+v", model.calls(), result.Hazard)
	}
}

func TestHazardEmptyResponse(t *testing.T) {
	model := &fakeModel{}
	sys := newAnalyzer(model, vision.Options{HazardRetries: 1})

	result, err := sys.Analyze(context.Background(), pngBytes(t), prompts.ModeHazard)
	if err != nil {
		t.Fatal(err)
	}
	if result.Hazard.WhatISee != vision.FallbackDescription {
		t.Errorf("what_i_see = %q, want fallback phrase", result.Hazard.WhatISee)
	}
}

func TestHazardRetryUpstreamFailureDegrades(t *testing.T) {
	model := &fakeModel{
		responses: []string{"unstructured"},
		errs:      []error{nil, errors.New("503")},
	}
	sys := newAnalyzer(model, vision.Options{HazardRetries: 2})

	result, err := sys.Analyze(context.Background(), pngBytes(t), prompts.ModeHazard)
	if err != nil {
		t.Fatalf("re-query failure should degrade, got %v", err)
	}
	if result.Hazard.Level != hazard.UnknownLevel || result.Hazard.WhatISee != "unstructured" {
		t.Errorf("hazard = %+v", result.Hazard)
	}
	if model.calls() != 2 {
		t.Errorf("calls = %d, want 2", model.calls())
	}
}

func TestHazardFirstCallFailureFails(t *testing.T) {
	model := &fakeModel{errs: []error{errors.New("down")}}
	sys := newAnalyzer(model, vision.Options{HazardRetries: 1})

	if _, err := sys.Analyze(context.Background(), pngBytes(t), prompts.ModeHazard); !errors.Is(err, vision.ErrUpstream) {
		t.Errorf("err = %v, want ErrUpstream", err)
	}
}

func TestAnalyzeWithPrompt(t *testing.T) {
	model := &fakeModel{responses: []string{"Three apples."}}
	sys := newAnalyzer(model, vision.Options{})

	result, err := sys.AnalyzeWithPrompt(context.Background(), pngBytes(t), "  How many apples?  ")
	if err != nil {
		t.Fatal(err)
	}
	if result.Mode != prompts.ModeCustom || result.Description != "Three apples." {
		t.Errorf("result = %+v", result)
	}
	if model.prompts[0] != "How many apples?" {
		t.Errorf("prompt = %q", model.prompts[0])
	}

	if _, err := sys.AnalyzeWithPrompt(context.Background(), pngBytes(t), "  "); !errors.Is(err, vision.ErrEmptyPrompt) {
		t.Errorf("err = %v, want ErrEmptyPrompt", err)
	}
}

func TestArchiveCaptures(t *testing.T) {
	dir := t.TempDir()
	archive := storage.NewLocal(dir, discard)
	model := &fakeModel{responses: []string{"ok"}}
	sys := newAnalyzer(model, vision.Options{Archive: archive})

	if _, err := sys.Analyze(context.Background(), pngBytes(t), prompts.ModeText); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(filepath.Join(dir, "captures", "text"))
	if err != nil {
		t.Fatalf("archive dir: %v", err)
	}
	if len(entries) != 1 || !strings.HasSuffix(entries[0].Name(), ".png") {
		t.Errorf("archived = %v", entries)
	}
}

type failingStore struct{ storage.System }

func (failingStore) Upload(ctx context.Context, key string, r io.Reader, ct string) error {
	return errors.New("disk full")
}

func TestArchiveFailureIgnored(t *testing.T) {
	model := &fakeModel{responses: []string{"ok"}}
	sys := newAnalyzer(model, vision.Options{Archive: failingStore{}})

	if _, err := sys.Analyze(context.Background(), pngBytes(t), prompts.ModeGeneral); err != nil {
		t.Errorf("archive failure leaked: %v", err)
	}
}

func TestDecodeImageFormats(t *testing.T) {
	encoders := map[string]func(io.Writer, image.Image) error{
		"image/png":  png.Encode,
		"image/jpeg": func(w io.Writer, m image.Image) error { return jpeg.Encode(w, m, nil) },
		"image/gif":  func(w io.Writer, m image.Image) error { return gif.Encode(w, m, nil) },
		"image/bmp":  bmp.Encode,
	}

	for mime, encode := range encoders {
		t.Run(mime, func(t *testing.T) {
			var buf bytes.Buffer
			if err := encode(&buf, testImage()); err != nil {
				t.Fatal(err)
			}
			img, err := vision.DecodeImage(buf.Bytes())
			if err != nil {
				t.Fatalf("DecodeImage: %v", err)
			}
			if img.MIMEType != mime || img.Width != 4 || img.Height != 3 {
				t.Errorf("img = %+v", img)
			}
			if img.Extension() == "" {
				t.Error("extension empty")
			}
		})
	}
}
