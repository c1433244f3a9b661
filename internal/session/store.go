package session

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/devhell/todo/internal/store/jsonstore"
)

// EnvToken overrides the stored token when set.
const EnvToken = "TODO_TOKEN"

// Token sources reported in Info.Source.
const (
	SourceEnv    = "env"
	SourceFile   = "file"
	SourceMemory = "memory"
)

// Info is the persisted token record.
type Info struct {
	Token     string     `json:"token"`
	Source    string     `json:"source"`     // "env" | "file" | "memory"
	CreatedAt time.Time  `json:"created_at"` // when it was saved
	ExpiresAt *time.Time `json:"expires_at"` // from the JWT exp claim, if any
}

// Store persists a single token. Load returns nil, nil when nothing is stored.
type Store interface {
	Load() (*Info, error)
	Save(info Info) error
	Delete() error
}

// FileStore keeps the token in a JSON file with mode 0600.
// The TODO_TOKEN environment variable takes precedence on Load.
type FileStore struct {
	path string
	env  string

	mu sync.Mutex
}

// NewFileStore returns a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, env: EnvToken}
}

func (s *FileStore) Load() (*Info, error) {
	if env := stripBearer(os.Getenv(s.env)); env != "" {
		return &Info{Token: env, Source: SourceEnv}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var info Info
	found, err := jsonstore.Load(s.path, &info)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	if !found {
		return nil, nil // not logged in
	}
	info.Token = stripBearer(info.Token)
	info.Source = SourceFile
	return &info, nil
}

func (s *FileStore) Save(info Info) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	info.Source = SourceFile
	if err := jsonstore.Save(s.path, info, 0o600); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

func (s *FileStore) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return jsonstore.Remove(s.path)
}

// MemoryStore keeps the token in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	info *Info
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Load() (*Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.info == nil {
		return nil, nil
	}
	cp := *s.info
	return &cp, nil
}

func (s *MemoryStore) Save(info Info) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	info.Source = SourceMemory
	s.info = &info
	return nil
}

func (s *MemoryStore) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.info = nil
	return nil
}

// stripBearer removes a leading "Bearer" scheme. A bare scheme with no
// credential after it yields "".
func stripBearer(s string) string {
	s = strings.TrimSpace(s)
	scheme, rest, _ := strings.Cut(s, " ")
	if strings.EqualFold(scheme, "bearer") {
		return strings.TrimSpace(rest)
	}
	return s
}
