package auth

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/nakamauwu/chatsync/types"
	goerrs "github.com/nicolasparada/go-errs"
	"gopkg.in/yaml.v3"
)

const fileName = "credential.yaml"

var (
	ErrNoCredential = goerrs.UnauthenticatedError("not logged in")
	ErrExpired      = goerrs.UnauthenticatedError("session expired, log in again")
)

// Store persists the credential between runs in a YAML file only the
// current user can read.
type Store struct {
	path string
	now  func() time.Time

	mu   sync.Mutex
	cred *types.Credential
}

func NewStore(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// DefaultPath is the credential file under the user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("user config dir: %w", err)
	}
	return filepath.Join(dir, "chatsync", fileName), nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Load() (types.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cred == nil {
		b, err := os.ReadFile(s.path)
		if errors.Is(err, fs.ErrNotExist) {
			return types.Credential{}, ErrNoCredential
		}
		if err != nil {
			return types.Credential{}, fmt.Errorf("read credential: %w", err)
		}

		var cred types.Credential
		if err := yaml.Unmarshal(b, &cred); err != nil {
			return types.Credential{}, fmt.Errorf("yaml unmarshal credential: %w", err)
		}
		if cred.Token == "" {
			return types.Credential{}, ErrNoCredential
		}
		s.cred = &cred
	}

	if s.cred.Expired(s.now()) {
		return *s.cred, ErrExpired
	}
	return *s.cred, nil
}

func (s *Store) Save(cred types.Credential) error {
	b, err := yaml.Marshal(cred)
	if err != nil {
		return fmt.Errorf("yaml marshal credential: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create credential dir: %w", err)
	}

	f, err := os.CreateTemp(dir, fileName+".*")
	if err != nil {
		return fmt.Errorf("create credential file: %w", err)
	}

	defer os.Remove(f.Name())

	if err := f.Chmod(0o600); err != nil {
		f.Close()
		return fmt.Errorf("chmod credential file: %w", err)
	}
	if _, err := f.Write(b); err != nil {
		f.Close()
		return fmt.Errorf("write credential: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close credential file: %w", err)
	}
	if err := os.Rename(f.Name(), s.path); err != nil {
		return fmt.Errorf("rename credential file: %w", err)
	}

	s.mu.Lock()
	s.cred = &cred
	s.mu.Unlock()

	return nil
}

// Clear forgets the credential. It is what an unauthorized response ends
// up calling.
func (s *Store) Clear() error {
	s.mu.Lock()
	s.cred = nil
	s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove credential: %w", err)
	}
	return nil
}

// Token returns the stored bearer token, or an empty string.
func (s *Store) Token() string {
	cred, err := s.Load()
	if err != nil {
		return ""
	}
	return cred.Token
}
