// Package env implements the simulation environment: the registry of users,
// the router that fans out key broadcasts and delivers ciphertext messages,
// and the append-only audit log.
package env

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"go.uber.org/atomic"

	"github.com/MichaelS239/cryptography-sandbox/protocol"
	"github.com/MichaelS239/cryptography-sandbox/user"
)

// Environment owns all users of one simulation. It routes messages between
// them and appends every routed message to the audit log; it never inspects
// plaintext and never holds key material itself.
//
// The simulation model is single-caller and synchronous. The registry is
// still guarded by a lock so that read-only lookups stay safe if a caller
// runs them concurrently, but state-changing operations assume one driver.
type Environment struct {
	scheme protocol.Scheme
	audit  AuditSink
	log    *slog.Logger

	mu    sync.RWMutex
	users map[string]*user.User

	closed atomic.Bool
}

// Config carries the environment's dependencies.
type Config struct {
	// Scheme is the cryptographic protocol every user of this environment
	// operates with.
	Scheme protocol.Scheme

	// Audit is the append-only destination for the message log.
	Audit AuditSink

	// Log is the structured logger for operational diagnostics. Optional;
	// discards when nil. This is separate from the audit log.
	Log *slog.Logger
}

// New creates an environment from the given configuration.
func New(cfg *Config) (*Environment, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.Scheme == nil {
		return nil, errors.New("scheme cannot be nil")
	}
	if cfg.Audit == nil {
		return nil, errors.New("audit sink cannot be nil")
	}
	log := cfg.Log
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Environment{
		scheme: cfg.Scheme,
		audit:  cfg.Audit,
		log:    log,
		users:  make(map[string]*user.User),
	}, nil
}

// FromFile creates an environment whose audit log appends to the file at
// path, creating it if needed.
func FromFile(scheme protocol.Scheme, path string) (*Environment, error) {
	sink, err := NewFileSink(path)
	if err != nil {
		return nil, err
	}
	return New(&Config{Scheme: scheme, Audit: sink})
}

// CreateUser registers a new user with empty key state. A duplicate identity
// fails without mutating the registry.
func (e *Environment) CreateUser(name string) (*user.User, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}
	if name == "" {
		return nil, errors.New("user name cannot be empty")
	}
	if name == protocol.BroadcastReceiver {
		return nil, fmt.Errorf("user name %q is reserved as the broadcast marker", name)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.users[name]; ok {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateUser, name)
	}
	u := user.New(name, e.scheme)
	e.users[name] = u
	e.log.Debug("user registered", "name", name)
	return u, nil
}

// GetUser looks up a registered user by identity.
func (e *Environment) GetUser(name string) (*user.User, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	u, ok := e.users[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUserNotFound, name)
	}
	return u, nil
}

// FindUser reports whether the identity is registered. Never fails.
func (e *Environment) FindUser(name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.users[name]
	return ok
}

// UserNames returns the registered identities in sorted order.
func (e *Environment) UserNames() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.users))
	for name := range e.users {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SendMessage routes a message and appends it to the audit log.
//
// A key broadcast is fanned out to every currently registered user: the key
// is recorded in each user's known-keys map under the sender's identity and
// the broadcast lands in each mailbox. Users registered later do not receive
// it retroactively. A ciphertext message is appended to the receiver's
// mailbox.
//
// Delivery and audit are decoupled: once routing has succeeded, a failed log
// append is reported as ErrLogIO but the delivery stands.
func (e *Environment) SendMessage(msg *protocol.Message) error {
	if e.closed.Load() {
		return ErrClosed
	}
	if msg == nil {
		return errors.New("message cannot be nil")
	}

	if err := e.route(msg); err != nil {
		return err
	}

	if err := e.audit.Append(newRecord(msg)); err != nil {
		e.log.Error("audit append failed", "message_id", msg.ID().String(), "err", err)
		return fmt.Errorf("%w: %v", ErrLogIO, err)
	}
	return nil
}

func (e *Environment) route(msg *protocol.Message) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.users[msg.Sender()]; !ok {
		return fmt.Errorf("%w: sender %q", ErrUserNotFound, msg.Sender())
	}

	switch msg.Kind() {
	case protocol.KindPublicKey:
		key, err := e.scheme.ParsePublicKey(msg.Payload())
		if err != nil {
			return fmt.Errorf("invalid key broadcast from %q: %w", msg.Sender(), err)
		}
		for _, u := range e.users {
			u.LearnKey(msg.Sender(), key)
			u.Deliver(msg)
		}
		e.log.Debug("key broadcast delivered",
			"sender", msg.Sender(),
			"fingerprint", protocol.Fingerprint(key),
			"recipients", len(e.users))
		return nil

	case protocol.KindCiphertext:
		receiver, ok := e.users[msg.Receiver()]
		if !ok {
			return fmt.Errorf("%w: receiver %q", ErrUserNotFound, msg.Receiver())
		}
		receiver.Deliver(msg)
		e.log.Debug("message delivered",
			"sender", msg.Sender(),
			"receiver", msg.Receiver(),
			"message_id", msg.ID().String())
		return nil

	default:
		return fmt.Errorf("unknown payload kind %q", msg.Kind())
	}
}

// Close marks the environment closed and releases the audit sink. Users and
// their state live and die with the environment; there is nothing else to
// tear down.
func (e *Environment) Close() error {
	if e.closed.Swap(true) {
		return nil
	}
	return e.audit.Close()
}
