package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/tasktrack/internal/models"
)

var (
	ErrNoBackends       = errors.New("no authentication backends configured")
	ErrAmbiguousBackend = errors.New("multiple authentication backends are configured, a backend name must be provided")
	ErrInvalidBackend   = errors.New("backend must be a non-blank backend name")
	ErrUnknownBackend   = errors.New("unknown authentication backend")
	ErrDuplicateBackend = errors.New("authentication backend registered twice")
)

// BackendRegistry holds the named authentication strategies in registration order.
type BackendRegistry struct {
	order    []string
	backends map[string]AuthBackend
}

// NewBackendRegistry registers backends in order. At least one is required.
func NewBackendRegistry(backends ...AuthBackend) (*BackendRegistry, error) {
	if len(backends) == 0 {
		return nil, ErrNoBackends
	}

	r := &BackendRegistry{backends: make(map[string]AuthBackend, len(backends))}
	for _, backend := range backends {
		name := backend.Name()
		if strings.TrimSpace(name) == "" {
			return nil, ErrInvalidBackend
		}
		if _, exists := r.backends[name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateBackend, name)
		}
		r.backends[name] = backend
		r.order = append(r.order, name)
	}
	return r, nil
}

// BuildBackendRegistry selects the named backends from the available ones, keeping the order of names.
func BuildBackendRegistry(names []string, available ...AuthBackend) (*BackendRegistry, error) {
	byName := make(map[string]AuthBackend, len(available))
	for _, backend := range available {
		byName[backend.Name()] = backend
	}

	selected := make([]AuthBackend, 0, len(names))
	for _, name := range names {
		backend, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, name)
		}
		selected = append(selected, backend)
	}
	return NewBackendRegistry(selected...)
}

// Names returns the registered backend names in order.
func (r *BackendRegistry) Names() []string {
	return append([]string(nil), r.order...)
}

// Resolve returns the backend registered under name.
func (r *BackendRegistry) Resolve(name string) (AuthBackend, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidBackend
	}
	backend, ok := r.backends[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, name)
	}
	return backend, nil
}

// Default returns the only registered backend.
func (r *BackendRegistry) Default() (AuthBackend, error) {
	if len(r.order) != 1 {
		return nil, ErrAmbiguousBackend
	}
	return r.backends[r.order[0]], nil
}

// Authenticate tries each authenticating backend in order and returns the first match
// with the name of the backend that accepted it.
func (r *BackendRegistry) Authenticate(ctx context.Context, identifier, password string) (*models.User, string, error) {
	for _, name := range r.order {
		authenticator, ok := r.backends[name].(Authenticator)
		if !ok {
			continue
		}

		user, err := authenticator.Authenticate(ctx, identifier, password)
		if err == nil {
			return user, name, nil
		}
		if !errors.Is(err, ErrInvalidCredentials) {
			return nil, "", err
		}
	}
	return nil, "", ErrInvalidCredentials
}
