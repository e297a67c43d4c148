package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/habedi/solekit/db"
	"github.com/rs/zerolog/log"
)

// repoStore adapts a db.SessionRepository to the Store interface.
type repoStore struct{ repo db.SessionRepository }

// NewRepositoryStore returns a Store persisted through the given repository.
func NewRepositoryStore(repo db.SessionRepository) Store {
	return &repoStore{repo: repo}
}

func (r *repoStore) Get(ctx context.Context) (Session, error) {
	rec, err := r.repo.Get(ctx)
	if err != nil {
		return Session{}, fmt.Errorf("failed to load session: %w", err)
	}
	if rec == nil {
		return Session{}, nil
	}
	s := Session{Credentials: Credentials{AccessToken: rec.AccessToken, RefreshToken: rec.RefreshToken}}
	if rec.User != "" {
		s.User = json.RawMessage(rec.User)
	}
	return s, nil
}

func (r *repoStore) Set(ctx context.Context, s Session) error {
	rec := &db.Session{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		User:         string(s.User),
	}
	if err := r.repo.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	log.Debug().Msg("Session saved")
	return nil
}

func (r *repoStore) SetCredentials(ctx context.Context, c Credentials) error {
	if err := r.repo.UpsertCredentials(ctx, c.AccessToken, c.RefreshToken); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	log.Debug().Msg("Credentials updated")
	return nil
}

func (r *repoStore) Clear(ctx context.Context) error {
	if err := r.repo.Delete(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	log.Debug().Msg("Session cleared")
	return nil
}
