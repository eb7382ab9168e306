// Package history keeps a capped, newest-first log of each account's
// interactions.
package history

import (
	"context"
	"log/slog"
	"time"

	"github.com/JaimeStill/hand2voice/internal/accounts"
)

// System is the history service.
type System interface {
	Get(ctx context.Context, email string) ([]Entry, error)
	Add(ctx context.Context, email string, fields map[string]any) ([]Entry, error)
	Clear(ctx context.Context, email string) error
	// Init starts an empty history for a new account.
	Init(ctx context.Context, email string) error
}

type service struct {
	repo   Repository
	limit  int
	logger *slog.Logger
	now    func() time.Time
}

// New returns a System that keeps at most limit entries per account.
func New(repo Repository, limit int, logger *slog.Logger) System {
	return &service{
		repo:   repo,
		limit:  limit,
		logger: logger.With("system", "history"),
		now:    time.Now,
	}
}

func (s *service) Get(ctx context.Context, email string) ([]Entry, error) {
	email = accounts.NormalizeEmail(email)
	if email == "" {
		return nil, accounts.ErrEmailRequired
	}
	return s.repo.List(ctx, email)
}

func (s *service) Add(ctx context.Context, email string, fields map[string]any) ([]Entry, error) {
	email = accounts.NormalizeEmail(email)
	if email == "" {
		return nil, accounts.ErrEmailRequired
	}
	if len(fields) == 0 {
		return nil, ErrEntryRequired
	}

	entries, err := s.repo.Prepend(ctx, email, NewEntry(fields, s.now()), s.limit)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("history entry added", "email", email, "entries", len(entries))
	return entries, nil
}

func (s *service) Clear(ctx context.Context, email string) error {
	email = accounts.NormalizeEmail(email)
	if email == "" {
		return accounts.ErrEmailRequired
	}
	if err := s.repo.Reset(ctx, email); err != nil {
		return err
	}
	s.logger.Info("history cleared", "email", email)
	return nil
}

func (s *service) Init(ctx context.Context, email string) error {
	return s.repo.Reset(ctx, accounts.NormalizeEmail(email))
}
