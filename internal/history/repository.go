package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/hand2voice/pkg/docstore"
	"github.com/JaimeStill/hand2voice/pkg/repository"
	"github.com/JaimeStill/hand2voice/pkg/storage"
)

// Repository persists per-account history, newest first.
type Repository interface {
	List(ctx context.Context, email string) ([]Entry, error)
	// Prepend adds entry at the front and trims the list to limit entries.
	Prepend(ctx context.Context, email string, entry Entry, limit int) ([]Entry, error)
	Reset(ctx context.Context, email string) error
}

// ledger is the history.json layout: email to entries, newest first.
type ledger map[string][]Entry

type fileRepo struct {
	doc *docstore.Document[ledger]
}

// NewFileRepository keeps every account's history in one JSON document.
func NewFileRepository(store storage.System, key string, logger *slog.Logger) Repository {
	return &fileRepo{
		doc: docstore.New(store, key, func() ledger { return ledger{} }, logger),
	}
}

func (r *fileRepo) List(ctx context.Context, email string) ([]Entry, error) {
	all, err := r.doc.Read(ctx)
	if err != nil {
		return nil, err
	}
	return nonNil(all[email]), nil
}

func (r *fileRepo) Prepend(ctx context.Context, email string, entry Entry, limit int) ([]Entry, error) {
	var result []Entry
	err := r.doc.Update(ctx, func(all ledger) (ledger, error) {
		if all == nil {
			all = ledger{}
		}
		entries := append([]Entry{entry}, all[email]...)
		if len(entries) > limit {
			entries = entries[:limit]
		}
		all[email] = entries
		result = entries
		return all, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *fileRepo) Reset(ctx context.Context, email string) error {
	return r.doc.Update(ctx, func(all ledger) (ledger, error) {
		if all == nil {
			all = ledger{}
		}
		all[email] = []Entry{}
		return all, nil
	})
}

type pgRepo struct {
	db *sql.DB
}

// NewPostgresRepository stores entries in the history_entries table.
func NewPostgresRepository(db *sql.DB) Repository {
	return &pgRepo{db: db}
}

const listQuery = `
	SELECT payload FROM history_entries
	WHERE email = $1
	ORDER BY seq DESC`

func scanEntry(s repository.Scanner) (Entry, error) {
	var (
		e       Entry
		payload []byte
	)
	if err := s.Scan(&payload); err != nil {
		return e, err
	}
	if err := json.Unmarshal(payload, &e); err != nil {
		return e, fmt.Errorf("decode history entry: %w", err)
	}
	return e, nil
}

func (r *pgRepo) List(ctx context.Context, email string) ([]Entry, error) {
	return repository.QueryMany(ctx, r.db, listQuery, []any{email}, scanEntry)
}

func (r *pgRepo) Prepend(ctx context.Context, email string, entry Entry, limit int) ([]Entry, error) {
	payload, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("encode history entry: %w", err)
	}

	return repository.WithTx(ctx, r.db, func(tx *sql.Tx) ([]Entry, error) {
		if _, err := tx.ExecContext(
			ctx,
			"INSERT INTO history_entries(id, email, payload) VALUES ($1, $2, $3::jsonb)",
			uuid.New(), email, string(payload),
		); err != nil {
			return nil, fmt.Errorf("insert history entry: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			DELETE FROM history_entries
			WHERE email = $1 AND seq NOT IN (
				SELECT seq FROM history_entries
				WHERE email = $1
				ORDER BY seq DESC
				LIMIT $2
			)`,
			email, limit,
		); err != nil {
			return nil, fmt.Errorf("trim history: %w", err)
		}

		return repository.QueryMany(ctx, tx, listQuery, []any{email}, scanEntry)
	})
}

func (r *pgRepo) Reset(ctx context.Context, email string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM history_entries WHERE email = $1", email)
	return err
}

func nonNil(entries []Entry) []Entry {
	if entries == nil {
		return []Entry{}
	}
	return entries
}
