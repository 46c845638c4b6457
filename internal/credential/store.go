// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package credential

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/jeranaias/parley/internal/util"
)

// ErrPersistenceFailed indicates the durable credential write failed.
// Non-fatal: the session-scope value remains usable; callers report the
// failure and continue.
var ErrPersistenceFailed = errors.New("credential persistence failed")

// filePerm keeps the credential file owner-only.
const filePerm = 0600

// Store resolves credential keys through three scopes: values set this
// session, the durable env file, and the process environment.
type Store struct {
	mu      sync.RWMutex
	path    string
	session map[string]string
	durable map[string]string
}

// NewStore creates a store backed by the env file at path. A missing or
// unreadable file is not an error; the store starts with what it can read.
func NewStore(path string) *Store {
	s := &Store{
		path:    path,
		session: make(map[string]string),
		durable: make(map[string]string),
	}
	s.Reload()
	return s
}

// Path returns the durable file location.
func (s *Store) Path() string {
	return s.path
}

// Get resolves a credential key. Session scope wins over the durable
// file, which wins over the process environment.
func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	if v, ok := s.session[key]; ok {
		s.mu.RUnlock()
		return v, true
	}
	if v, ok := s.durable[key]; ok {
		s.mu.RUnlock()
		return v, true
	}
	s.mu.RUnlock()

	if v := os.Getenv(key); v != "" {
		return v, true
	}
	return "", false
}

// Set stores a credential. The session scope is written first so the
// value is usable immediately; the durable rewrite follows. A durable
// failure returns ErrPersistenceFailed but leaves the session value set.
func (s *Store) Set(key, secret string) error {
	secret = strings.TrimSpace(secret)

	s.mu.Lock()
	s.session[key] = secret
	s.mu.Unlock()

	if err := s.writeDurable(key, secret); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}
	return nil
}

// Unset removes a credential from both scopes. The durable file keeps
// lines for keys this store never managed.
func (s *Store) Unset(key string) error {
	s.mu.Lock()
	delete(s.session, key)
	delete(s.durable, key)
	s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}

	var kept []string
	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if existing, _, ok := strings.Cut(trimmed, "="); ok &&
			!strings.HasPrefix(trimmed, "#") && strings.TrimSpace(existing) == key {
			continue
		}
		kept = append(kept, line)
	}

	out := strings.Join(kept, "\n")
	if err := util.AtomicWriteFile(s.path, []byte(out), filePerm); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}
	return nil
}

// writeDurable rewrites the env file with the key upserted, preserving
// all unmanaged lines. Atomic replace, last write wins.
func (s *Store) writeDurable(key, secret string) error {
	// Read the current bytes rather than regenerating from the parsed
	// map, so foreign lines survive exactly as written.
	data, err := os.ReadFile(s.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	updated := upsertEnvLine(data, key, secret)
	if err := util.AtomicWriteFile(s.path, updated, filePerm); err != nil {
		return err
	}

	s.mu.Lock()
	s.durable[key] = secret
	s.mu.Unlock()
	return nil
}

// Reload re-reads the durable file, replacing the durable scope.
// Session-scope values are untouched.
func (s *Store) Reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.mu.Lock()
			s.durable = make(map[string]string)
			s.mu.Unlock()
			return nil
		}
		return err
	}

	parsed := parseEnvFile(data)
	s.mu.Lock()
	s.durable = parsed
	s.mu.Unlock()
	return nil
}

// Keys returns the credential keys currently resolvable from the session
// and durable scopes. Values are never included.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool, len(s.session)+len(s.durable))
	var keys []string
	for k := range s.session {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	for k := range s.durable {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	return keys
}

// Fingerprint returns a short SHA-256 identifier for a secret.
// SECURITY: Uses a hash so no part of the secret is ever shown.
func Fingerprint(secret string) string {
	if secret == "" {
		return "none"
	}
	h := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(h[:4])
}

// Mask returns the display form of a secret.
// SECURITY: Never exposes secret fragments - length and fingerprint only.
func Mask(secret string) string {
	if secret == "" {
		return "[not set]"
	}
	return fmt.Sprintf("[REDACTED, length=%d, fingerprint=%s]", len(secret), Fingerprint(secret))
}
