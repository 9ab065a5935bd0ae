// Package session persists the account→session mapping as a single JSON
// document (sessions.json) and handles per-field encryption through the
// vault.
//
// Every save is a full read-modify-write of the whole document with no
// locking. Concurrent writers from independent processes can race and the
// last write wins; this is an accepted single-operator assumption.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/justonlyforyou/shippingmanager-copilot/internal/filex"
	"github.com/justonlyforyou/shippingmanager-copilot/internal/logging"
	"github.com/justonlyforyou/shippingmanager-copilot/internal/vault"
)

const sessionsFileName = "sessions.json"

// Store loads and persists session records.
type Store struct {
	path  string
	vault *vault.Vault
	log   logging.Logger
	now   func() time.Time
}

// NewStore places sessions.json under dataDir/settings.
func NewStore(dataDir string, v *vault.Vault, log logging.Logger) (*Store, error) {
	settings, err := filex.EnsureSubDir(dataDir, "settings")
	if err != nil {
		return nil, fmt.Errorf("settings dir: %w", err)
	}
	return &Store{
		path:  filepath.Join(settings, sessionsFileName),
		vault: v,
		log:   log,
		now:   time.Now,
	}, nil
}

// Path returns the location of the persisted document.
func (s *Store) Path() string { return s.path }

// SetNow replaces the timestamp source. Tests use it to pin record
// timestamps.
func (s *Store) SetNow(now func() time.Time) { s.now = now }

// Load reads the full document. A missing file is an empty store; an
// unreadable or corrupt one is logged and also treated as empty, never
// raised; losing the cache only costs the operator a re-login.
func (s *Store) Load(ctx context.Context) map[string]Record {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Warn(ctx, "error loading sessions", "path", s.path, "error", err)
		}
		return map[string]Record{}
	}

	sessions := map[string]Record{}
	if err := json.Unmarshal(data, &sessions); err != nil {
		s.log.Warn(ctx, "sessions file corrupt, starting empty", "path", s.path, "error", err)
		return map[string]Record{}
	}
	return sessions
}

// Save encrypts the bundle field-by-field and replaces the record for
// accountID in the full document, then writes it atomically and durably.
// Field identities are namespaced per account so vault slots never collide:
// the session token under the bare id, auxiliary cookies under
// "app_platform_<id>" / "app_version_<id>".
func (s *Store) Save(ctx context.Context, accountID string, b Bundle, companyName, method string) error {
	sessions := s.Load(ctx)

	rec := Record{
		Cookie:      s.vault.Encrypt(ctx, b.SessionToken, accountID),
		Timestamp:   s.now().Unix(),
		CompanyName: companyName,
		LoginMethod: method,
	}
	if b.AppPlatform != "" {
		rec.AppPlatform = s.vault.Encrypt(ctx, b.AppPlatform, "app_platform_"+accountID)
	}
	if b.AppVersion != "" {
		rec.AppVersion = s.vault.Encrypt(ctx, b.AppVersion, "app_version_"+accountID)
	}

	sessions[accountID] = rec

	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sessions: %w", err)
	}
	if err := filex.WriteFileSync(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write sessions: %w", err)
	}

	s.log.Info(ctx, "session saved",
		"company", companyName, "account_id", accountID, "method", method,
		"encrypted", vault.IsEncrypted(rec.Cookie))
	return nil
}

// Remove deletes one record. Missing keys are not an error.
func (s *Store) Remove(ctx context.Context, accountID string) error {
	sessions := s.Load(ctx)
	if _, ok := sessions[accountID]; !ok {
		return nil
	}
	delete(sessions, accountID)

	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sessions: %w", err)
	}
	if err := filex.WriteFileSync(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write sessions: %w", err)
	}
	return nil
}

// DecryptBundle resolves a record's credential fields. Returns false when
// the session token cannot be decrypted (the record is then treated as
// expired); auxiliary fields degrade to empty individually.
func (s *Store) DecryptBundle(ctx context.Context, accountID string, rec Record) (Bundle, bool) {
	token, ok := s.vault.Decrypt(ctx, rec.Cookie, accountID)
	if !ok {
		return Bundle{}, false
	}
	b := Bundle{SessionToken: token}
	if rec.AppPlatform != "" {
		b.AppPlatform, _ = s.vault.Decrypt(ctx, rec.AppPlatform, "app_platform_"+accountID)
	}
	if rec.AppVersion != "" {
		b.AppVersion, _ = s.vault.Decrypt(ctx, rec.AppVersion, "app_version_"+accountID)
	}
	return b, true
}
