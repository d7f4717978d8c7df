package session

import (
	"net"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// DefaultCapacity is the maximum number of concurrent sessions.
const DefaultCapacity = 10

type Store interface {
	New(username string, addr net.Addr) (Session, error)
	Get(username string) (Session, error)
	ByAddr(addr net.Addr) (Session, error)
	Remove(username string) error
	Usernames() []string
	Len() int
}

// Session binds a username to the address it joined from.
type Session struct {
	ID       uuid.UUID
	Username string
	Addr     net.Addr
}

type MemoryStore struct {
	sessions map[string]Session
	capacity int
	mu       sync.RWMutex
}

// StoreCfg configures a MemoryStore.
type StoreCfg func(*MemoryStore)

// WithCapacity limits the number of concurrent sessions.
func WithCapacity(n int) StoreCfg {
	return func(p *MemoryStore) {
		p.capacity = n
	}
}

func NewMemoryStore(cfgs ...StoreCfg) *MemoryStore {
	p := &MemoryStore{
		sessions: make(map[string]Session),
		capacity: DefaultCapacity,
	}
	for _, cfg := range cfgs {
		cfg(p)
	}
	return p
}

// New creates a session. An existing session with the same username is never replaced.
func (p *MemoryStore) New(username string, addr net.Addr) (Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.sessions) >= p.capacity {
		return Session{}, ErrStoreFull
	}
	if _, ok := p.sessions[username]; ok {
		return Session{}, ErrSessionAlreadyExists
	}
	sess := Session{
		ID:       uuid.New(),
		Username: username,
		Addr:     addr,
	}
	p.sessions[username] = sess
	return sess, nil
}

func (p *MemoryStore) Get(username string) (Session, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if sess, ok := p.sessions[username]; ok {
		return sess, nil
	}
	return Session{}, ErrSessionNotFound
}

// ByAddr finds the session owned by addr with a linear scan; the table is small.
func (p *MemoryStore) ByAddr(addr net.Addr) (Session, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if addr == nil {
		return Session{}, ErrSessionNotFound
	}
	key := addr.String()
	for _, sess := range p.sessions {
		if sess.Addr.String() == key {
			return sess, nil
		}
	}
	return Session{}, ErrSessionNotFound
}

func (p *MemoryStore) Remove(username string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.sessions[username]; !ok {
		return ErrSessionNotFound
	}
	delete(p.sessions, username)
	return nil
}

// Usernames returns the active usernames in sorted order.
func (p *MemoryStore) Usernames() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, 0, len(p.sessions))
	for name := range p.sessions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (p *MemoryStore) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.sessions)
}
