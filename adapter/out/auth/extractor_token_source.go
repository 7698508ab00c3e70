// Package auth persists and refreshes the Google OAuth token the extension
// hands over.
package auth

import (
	"context"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"

	"extractor_server/core/port/out"
	"extractor_server/pkg/apperr"
	"extractor_server/pkg/logger"
)

const tokenKey = "google-calendar-token"

// StoredTokenSource loads the persisted token from the KV store and lets
// the oauth2 config refresh it when expired. Refreshed tokens are written
// back best-effort.
type StoredTokenSource struct {
	oauthConfig *oauth2.Config
	store       out.KVStore
	log         *logger.Logger
}

func NewStoredTokenSource(oauthConfig *oauth2.Config, store out.KVStore, log *logger.Logger) *StoredTokenSource {
	return &StoredTokenSource{
		oauthConfig: oauthConfig,
		store:       store,
		log:         log.WithField("component", "token_source"),
	}
}

// Token returns a valid token, refreshing through the oauth2 config when
// needed. A missing or unreadable token propagates as an error; there is
// no fallback credential.
func (s *StoredTokenSource) Token(ctx context.Context) (*oauth2.Token, error) {
	data, err := s.store.GetItem(ctx, tokenKey)
	if err != nil {
		return nil, apperr.StorageError("load token", err)
	}
	if data == nil {
		return nil, apperr.Unauthorized("no Google token stored")
	}

	var stored oauth2.Token
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, apperr.InvalidToken("stored token is corrupt").WithError(err)
	}

	token, err := s.oauthConfig.TokenSource(ctx, &stored).Token()
	if err != nil {
		return nil, err
	}

	if token.AccessToken != stored.AccessToken {
		if err := s.Save(ctx, token); err != nil {
			s.log.WithError(err).Warn("failed to persist refreshed token")
		}
	}
	return token, nil
}

// Save persists a token handed over by the extension.
func (s *StoredTokenSource) Save(ctx context.Context, token *oauth2.Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return err
	}
	if err := s.store.SetItem(ctx, tokenKey, data); err != nil {
		return apperr.StorageError("save token", err)
	}
	return nil
}

var _ out.TokenSource = (*StoredTokenSource)(nil)
