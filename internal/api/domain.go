package api

import (
	"github.com/JaimeStill/hand2voice/internal/accounts"
	"github.com/JaimeStill/hand2voice/internal/config"
	"github.com/JaimeStill/hand2voice/internal/history"
	"github.com/JaimeStill/hand2voice/internal/speech"
	"github.com/JaimeStill/hand2voice/internal/vision"
	"github.com/JaimeStill/hand2voice/pkg/gemini"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Accounts accounts.System
	History  history.System
	Vision   vision.System
	Speech   speech.System

	// VisionReady and SpeechReady report whether the upstream models are
	// configured.
	VisionReady bool
	SpeechReady bool
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(cfg *config.Config, runtime *Runtime) *Domain {
	accountsRepo, historyRepo := repositories(cfg, runtime)

	historySystem := history.New(historyRepo, cfg.Store.HistoryLimit, runtime.Logger)

	accountsSystem := accounts.New(accountsRepo, accounts.Options{
		Hasher:   accounts.NewHasher(cfg.Auth.BcryptCost),
		Tokens:   runtime.Tokens,
		OnCreate: historySystem.Init,
	}, runtime.Logger)

	visionModel, visionReady := newVisionModel(cfg, runtime)
	visionOpts := vision.Options{
		Timeout:        cfg.Vision.TimeoutDuration(),
		HazardRetries:  cfg.Vision.Retries(),
		MaxActionWords: cfg.Vision.MaxActionWords,
	}
	if cfg.Vision.ArchiveCaptures {
		visionOpts.Archive = runtime.Storage
	}

	speechProvider, speechReady := newSpeechProvider(cfg, runtime)

	return &Domain{
		Accounts:    accountsSystem,
		History:     historySystem,
		Vision:      vision.New(visionModel, visionOpts, runtime.Logger),
		Speech:      speech.New(speechProvider, cfg.Speech.TimeoutDuration(), runtime.Logger),
		VisionReady: visionReady,
		SpeechReady: speechReady,
	}
}

func repositories(cfg *config.Config, runtime *Runtime) (accounts.Repository, history.Repository) {
	if cfg.Store.Driver == config.StoreDriverPostgres {
		db := runtime.Database.Connection()
		return accounts.NewPostgresRepository(db), history.NewPostgresRepository(db)
	}
	return accounts.NewFileRepository(runtime.Storage, cfg.Store.UsersKey, runtime.Logger),
		history.NewFileRepository(runtime.Storage, cfg.Store.HistoryKey, runtime.Logger)
}

func newVisionModel(cfg *config.Config, runtime *Runtime) (vision.Model, bool) {
	if runtime.Gemini == nil {
		return vision.Unavailable(gemini.ErrMissingKey), false
	}
	return vision.NewGeminiModel(runtime.Gemini, cfg.Vision.Model), true
}

func newSpeechProvider(cfg *config.Config, runtime *Runtime) (speech.Provider, bool) {
	if cfg.Speech.Provider == config.SpeechProviderWhisper {
		return speech.NewWhisperProvider(speech.WhisperOptions{
			BaseURL:  cfg.Speech.BaseURL,
			Model:    cfg.Speech.Model,
			Language: cfg.Speech.Language,
			Token:    cfg.Speech.Token,
		}), true
	}
	if runtime.Gemini == nil {
		return speech.Unavailable(config.SpeechProviderGemini, gemini.ErrMissingKey), false
	}
	return speech.NewGeminiProvider(runtime.Gemini, cfg.Speech.Model, cfg.Speech.Language), true
}
