package credstore

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Credential is the persisted delegated-credential triple.
type Credential struct {
	AppKey      string `json:"appKey"`
	AppSecret   string `json:"appSecret"`
	ConsumerKey string `json:"consumerKey,omitempty"`
}

// Profile is the cached user profile resolved from the credential.
type Profile struct {
	Nichandle    string `json:"nichandle"`
	Email        string `json:"email,omitempty"`
	FirstName    string `json:"firstname,omitempty"`
	Name         string `json:"name,omitempty"`
	SupportLevel string `json:"supportLevel,omitempty"`
	AuthMethod   string `json:"auth,omitempty"`
	Trusted      bool   `json:"isTrusted,omitempty"`
}

// Record is one persisted store entry: the credential triple plus the last
// resolved profile, if any.
type Record struct {
	Credential Credential `json:"credential"`
	Profile    *Profile   `json:"user,omitempty"`
	SavedAt    time.Time  `json:"savedAt"`
}

// Store is the persistence interface injected into the portal. Load returns
// (nil, nil) when no usable record exists; implementations must never return
// a partially decoded record.
type Store interface {
	Load(ctx context.Context) (*Record, error)
	Save(ctx context.Context, record *Record) error
	Clear(ctx context.Context) error
}

func encodeRecord(record *Record) ([]byte, error) {
	return json.Marshal(record)
}

// decodeRecord treats malformed or shape-mismatched data as absent.
func decodeRecord(data []byte) *Record {
	if len(data) == 0 {
		return nil
	}
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil
	}
	if record.Credential.AppKey == "" || record.Credential.AppSecret == "" {
		return nil
	}
	return &record
}

// MemoryStore is an in-process Store holding at most one record. It is the
// default backend and the test fake.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
}

// NewMemoryStore describes the newmemorystore operation and its observable behavior.
//
// NewMemoryStore may return an error when input validation, dependency calls, or security checks fail.
// NewMemoryStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load describes the load operation and its observable behavior.
//
// Load may return an error when input validation, dependency calls, or security checks fail.
// Load does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *MemoryStore) Load(_ context.Context) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return decodeRecord(s.data), nil
}

// Save describes the save operation and its observable behavior.
//
// Save may return an error when input validation, dependency calls, or security checks fail.
// Save does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *MemoryStore) Save(_ context.Context, record *Record) error {
	encoded, err := encodeRecord(record)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = encoded
	return nil
}

// Clear describes the clear operation and its observable behavior.
//
// Clear may return an error when input validation, dependency calls, or security checks fail.
// Clear does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = nil
	return nil
}
