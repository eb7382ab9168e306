package accounts

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/hand2voice/pkg/docstore"
	"github.com/JaimeStill/hand2voice/pkg/repository"
	"github.com/JaimeStill/hand2voice/pkg/storage"
)

// Repository persists accounts keyed by normalized email.
type Repository interface {
	Find(ctx context.Context, email string) (*Account, error)
	Create(ctx context.Context, account Account) error
	// Update applies fn to the stored account and persists the result.
	Update(ctx context.Context, email string, fn func(*Account)) (*Account, error)
}

// users is the users.json layout: email to account record.
type users map[string]Account

type fileRepo struct {
	doc *docstore.Document[users]
}

// NewFileRepository keeps every account in a single JSON document.
func NewFileRepository(store storage.System, key string, logger *slog.Logger) Repository {
	return &fileRepo{
		doc: docstore.New(store, key, func() users { return users{} }, logger),
	}
}

func (r *fileRepo) Find(ctx context.Context, email string) (*Account, error) {
	all, err := r.doc.Read(ctx)
	if err != nil {
		return nil, err
	}
	a, ok := all[email]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (r *fileRepo) Create(ctx context.Context, account Account) error {
	return r.doc.Update(ctx, func(all users) (users, error) {
		if all == nil {
			all = users{}
		}
		if _, exists := all[account.Email]; exists {
			return nil, ErrDuplicateEmail
		}
		all[account.Email] = account
		return all, nil
	})
}

func (r *fileRepo) Update(ctx context.Context, email string, fn func(*Account)) (*Account, error) {
	var updated Account
	err := r.doc.Update(ctx, func(all users) (users, error) {
		a, ok := all[email]
		if !ok {
			return nil, ErrNotFound
		}
		fn(&a)
		all[email] = a
		updated = a
		return all, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

type pgRepo struct {
	db *sql.DB
}

// NewPostgresRepository stores accounts in the accounts table.
func NewPostgresRepository(db *sql.DB) Repository {
	return &pgRepo{db: db}
}

const accountColumns = "email, name, password, disabilities, created_at"

func scanAccount(s repository.Scanner) (Account, error) {
	var (
		a    Account
		tags []byte
	)
	if err := s.Scan(&a.Email, &a.Name, &a.Password, &tags, &a.CreatedAt); err != nil {
		return a, err
	}
	if err := json.Unmarshal(tags, &a.Disabilities); err != nil {
		return a, fmt.Errorf("decode disabilities: %w", err)
	}
	return a, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode disabilities: %w", err)
	}
	return string(b), nil
}

func (r *pgRepo) Find(ctx context.Context, email string) (*Account, error) {
	a, err := repository.QueryOne(
		ctx, r.db,
		"SELECT "+accountColumns+" FROM accounts WHERE email = $1",
		[]any{email}, scanAccount,
	)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, nil)
	}
	return &a, nil
}

func (r *pgRepo) Create(ctx context.Context, a Account) error {
	tags, err := encodeTags(a.Disabilities)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(
		ctx,
		"INSERT INTO accounts("+accountColumns+") VALUES ($1, $2, $3, $4::jsonb, $5::timestamptz)",
		a.Email, a.Name, a.Password, tags, a.CreatedAt,
	)
	return repository.MapError(err, nil, ErrDuplicateEmail)
}

func (r *pgRepo) Update(ctx context.Context, email string, fn func(*Account)) (*Account, error) {
	a, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Account, error) {
		a, err := repository.QueryOne(
			ctx, tx,
			"SELECT "+accountColumns+" FROM accounts WHERE email = $1 FOR UPDATE",
			[]any{email}, scanAccount,
		)
		if err != nil {
			return a, err
		}

		fn(&a)
		tags, err := encodeTags(a.Disabilities)
		if err != nil {
			return a, err
		}

		err = repository.ExecExpectOne(
			ctx, tx,
			"UPDATE accounts SET name = $2, password = $3, disabilities = $4::jsonb WHERE email = $1",
			email, a.Name, a.Password, tags,
		)
		return a, err
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, nil)
	}
	return &a, nil
}
