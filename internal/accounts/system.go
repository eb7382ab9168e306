// Package accounts manages user signup, login, and profiles.
package accounts

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
)

// System is the account service.
type System interface {
	Signup(ctx context.Context, cmd SignupCommand) (*Session, error)
	Login(ctx context.Context, cmd LoginCommand) (*Session, error)
	UpdateProfile(ctx context.Context, cmd UpdateCommand) (*User, error)
	Find(ctx context.Context, email string) (*User, error)
}

// Options configures the account service.
type Options struct {
	Hasher Hasher
	// Tokens issues a session token on signup and login when non-nil.
	Tokens *Tokens
	// OnCreate runs after a new account is stored.
	OnCreate func(ctx context.Context, email string) error
}

type service struct {
	repo   Repository
	opts   Options
	logger *slog.Logger
	now    func() time.Time
}

func New(repo Repository, opts Options, logger *slog.Logger) System {
	return &service{
		repo:   repo,
		opts:   opts,
		logger: logger.With("system", "accounts"),
		now:    time.Now,
	}
}

func (s *service) Signup(ctx context.Context, cmd SignupCommand) (*Session, error) {
	name := strings.TrimSpace(cmd.Name)
	email := NormalizeEmail(cmd.Email)
	if name == "" || email == "" || cmd.Password == "" {
		return nil, ErrMissingFields
	}

	hash, err := s.opts.Hasher.Hash(cmd.Password)
	if err != nil {
		return nil, err
	}

	account := Account{
		Name:         name,
		Email:        email,
		Password:     hash,
		Disabilities: NormalizeTags(cmd.Disabilities),
		CreatedAt:    timestamp(s.now()),
	}
	if err := s.repo.Create(ctx, account); err != nil {
		return nil, err
	}

	if s.opts.OnCreate != nil {
		if err := s.opts.OnCreate(ctx, email); err != nil {
			s.logger.Warn("post-signup hook failed", "email", email, "error", err)
		}
	}

	s.logger.Info("account created", "email", email)
	return s.session(account)
}

func (s *service) Login(ctx context.Context, cmd LoginCommand) (*Session, error) {
	email := NormalizeEmail(cmd.Email)
	if email == "" || cmd.Password == "" {
		return nil, ErrMissingCredentials
	}

	account, err := s.repo.Find(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !s.opts.Hasher.Verify(account.Password, cmd.Password) {
		return nil, ErrInvalidCredentials
	}

	if s.opts.Hasher.NeedsRehash(account.Password) {
		s.rehash(ctx, email, cmd.Password)
	}

	s.logger.Info("login succeeded", "email", email)
	return s.session(*account)
}

func (s *service) UpdateProfile(ctx context.Context, cmd UpdateCommand) (*User, error) {
	email := NormalizeEmail(cmd.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}

	account, err := s.repo.Update(ctx, email, func(a *Account) {
		if cmd.Name != nil {
			a.Name = strings.TrimSpace(*cmd.Name)
		}
		if cmd.Disabilities != nil {
			a.Disabilities = NormalizeTags(*cmd.Disabilities)
		}
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("profile updated", "email", email)
	user := account.User()
	return &user, nil
}

func (s *service) Find(ctx context.Context, email string) (*User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, ErrEmailRequired
	}

	account, err := s.repo.Find(ctx, email)
	if err != nil {
		return nil, err
	}
	user := account.User()
	return &user, nil
}

// rehash upgrades a legacy or outdated hash. Failure leaves the old hash.
func (s *service) rehash(ctx context.Context, email, password string) {
	hash, err := s.opts.Hasher.Hash(password)
	if err != nil {
		s.logger.Warn("password rehash failed", "email", email, "error", err)
		return
	}
	if _, err := s.repo.Update(ctx, email, func(a *Account) { a.Password = hash }); err != nil {
		s.logger.Warn("password rehash failed", "email", email, "error", err)
		return
	}
	s.logger.Info("password hash upgraded", "email", email)
}

func (s *service) session(a Account) (*Session, error) {
	session := &Session{User: a.User()}
	if s.opts.Tokens != nil {
		token, err := s.opts.Tokens.Issue(a.Email)
		if err != nil {
			return nil, err
		}
		session.Token = token
	}
	return session, nil
}
