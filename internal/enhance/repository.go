// Package enhance implements the upload -> enhance -> download lifecycle.
package enhance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ultraview/enhancer/internal/transform"
)

// Artifact describes a stored, enhanced upload.
type Artifact struct {
	Token        string              `json:"token"                  example:"1712345678901_sample.mp4"`
	OriginalName string              `json:"originalName,omitempty" example:"sample.mp4"`
	Size         int64               `json:"size"                   example:"1048576"`
	Transformer  string              `json:"transformer,omitempty"  example:"identity"`
	Settings     *transform.Settings `json:"settings,omitempty"`
	CreatedAt    time.Time           `json:"createdAt"              example:"2026-02-27T14:48:34Z"`
}

// ErrNotRecorded is returned by a Ledger that has no row for a token.
var ErrNotRecorded = errors.New("artifact not recorded")

// Ledger keeps an audit record of uploads. It never decides whether an
// artifact can be downloaded; storage stays authoritative for that.
type Ledger interface {
	Record(ctx context.Context, a *Artifact) error
	Get(ctx context.Context, token string) (*Artifact, error)
	MarkDeleted(ctx context.Context, token string) error
}

// Repository is the PostgreSQL Ledger.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Record inserts the artifact row.
func (r *Repository) Record(ctx context.Context, a *Artifact) error {
	settings, err := json.Marshal(a.Settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO artifacts (token, original_name, size_bytes, settings, transformer, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		a.Token, a.OriginalName, a.Size, settings, a.Transformer, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert artifact: %w", err)
	}
	return nil
}

// Get fetches a live (not swept) artifact row by token.
func (r *Repository) Get(ctx context.Context, token string) (*Artifact, error) {
	a := &Artifact{}
	var settings []byte
	err := r.db.QueryRow(ctx,
		`SELECT token, original_name, size_bytes, settings, transformer, created_at
		 FROM artifacts WHERE token = $1 AND deleted_at IS NULL`,
		token,
	).Scan(&a.Token, &a.OriginalName, &a.Size, &settings, &a.Transformer, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotRecorded
	}
	if err != nil {
		return nil, fmt.Errorf("get artifact: %w", err)
	}
	if len(settings) > 0 && string(settings) != "null" {
		var s transform.Settings
		if err := json.Unmarshal(settings, &s); err != nil {
			return nil, fmt.Errorf("decode settings: %w", err)
		}
		a.Settings = &s
	}
	return a, nil
}

// MarkDeleted stamps deleted_at on the artifact row.
func (r *Repository) MarkDeleted(ctx context.Context, token string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE artifacts SET deleted_at = NOW() WHERE token = $1 AND deleted_at IS NULL`,
		token,
	)
	if err != nil {
		return fmt.Errorf("mark artifact deleted: %w", err)
	}
	return nil
}

// nopLedger is used when no database is configured.
type nopLedger struct{}

func (nopLedger) Record(context.Context, *Artifact) error { return nil }

func (nopLedger) Get(context.Context, string) (*Artifact, error) { return nil, ErrNotRecorded }

func (nopLedger) MarkDeleted(context.Context, string) error { return nil }
