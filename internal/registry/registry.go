// Package registry keeps bookkeeping for relay endpoint registrations.
//
// The dispatch client never reads this; every RegisterDevice call goes to the
// relay and the returned ARN is authoritative. The registry exists so the
// HTTP service can list what it has registered and clean up endpoints the
// relay later reports disabled.
package registry

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned when no registration exists for a (platform
// application, token) pair.
var ErrNotFound = errors.New("registry: registration not found")

// Registration records a relay endpoint issued for a device token.
type Registration struct {
	PlatformApplicationARN string    `json:"platform_application_arn" firestore:"platform_application_arn"`
	Token                  string    `json:"token" firestore:"token"`
	EndpointARN            string    `json:"endpoint_arn" firestore:"endpoint_arn"`
	UpdatedAt              time.Time `json:"updated_at" firestore:"updated_at"`
}

// Store persists endpoint registrations. Save is an upsert keyed on the
// (platform application, token) pair.
type Store interface {
	Save(ctx context.Context, reg Registration) error
	Lookup(ctx context.Context, platformApplicationARN, token string) (*Registration, error)
	Delete(ctx context.Context, platformApplicationARN, token string) error
	List(ctx context.Context, platformApplicationARN string) ([]Registration, error)
}

// Key derives a stable identifier for a registration. Tokens can be long and
// contain characters hostile to document ids and cache keys, so we hash.
func Key(platformApplicationARN, token string) string {
	sum := sha256.Sum256([]byte(platformApplicationARN + "\x00" + token))
	return hex.EncodeToString(sum[:])
}

// MemoryStore is an in-process Store for tests and single-node deployments.
type MemoryStore struct {
	mu   sync.RWMutex
	regs map[string]Registration
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{regs: make(map[string]Registration)}
}

func (s *MemoryStore) Save(_ context.Context, reg Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regs[Key(reg.PlatformApplicationARN, reg.Token)] = reg
	return nil
}

func (s *MemoryStore) Lookup(_ context.Context, platformApplicationARN, token string) (*Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reg, ok := s.regs[Key(platformApplicationARN, token)]
	if !ok {
		return nil, ErrNotFound
	}
	return &reg, nil
}

func (s *MemoryStore) Delete(_ context.Context, platformApplicationARN, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.regs, Key(platformApplicationARN, token))
	return nil
}

func (s *MemoryStore) List(_ context.Context, platformApplicationARN string) ([]Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Registration
	for _, reg := range s.regs {
		if reg.PlatformApplicationARN == platformApplicationARN {
			out = append(out, reg)
		}
	}
	return out, nil
}
