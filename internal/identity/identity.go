// Package identity resolves who is acting on a session. The API does
// not authenticate; callers present an opaque uid and a display name,
// and the provider pins the local process identity for host commands.
package identity

import (
	"strings"

	"github.com/shuffleraid/raid-api/internal/errors"
	"github.com/shuffleraid/raid-api/internal/pkg/idgen"
)

// MaxDisplayNameLength bounds names before they go into log lines
const MaxDisplayNameLength = 24

// Identity is a resolved participant
type Identity struct {
	UID         string
	DisplayName string
}

// Provider yields the identity of the local process
type Provider interface {
	Identity() Identity
}

// Config holds the configuration for the static provider
type Config struct {
	// UID is optional; when empty one is generated
	UID         string
	DisplayName string
	Generator   idgen.Generator
}

// Validate ensures all required settings are provided
func (c *Config) Validate() error {
	if c.DisplayName == "" {
		return errors.InvalidArgument("display name is required")
	}
	if c.UID == "" && c.Generator == nil {
		return errors.InvalidArgument("id generator is required when uid is empty")
	}
	return nil
}

type staticProvider struct {
	identity Identity
}

// NewStaticProvider creates a provider with a fixed identity
func NewStaticProvider(cfg *Config) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	name, err := SanitizeDisplayName(cfg.DisplayName)
	if err != nil {
		return nil, err
	}

	uid := cfg.UID
	if uid == "" {
		uid = cfg.Generator.Generate()
	}

	return &staticProvider{identity: Identity{UID: uid, DisplayName: name}}, nil
}

var _ Provider = (*staticProvider)(nil)

func (p *staticProvider) Identity() Identity {
	return p.identity
}

// SanitizeDisplayName trims and bounds a player-supplied name
func SanitizeDisplayName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.InvalidArgument("display name cannot be blank")
	}
	if len(name) > MaxDisplayNameLength {
		name = name[:MaxDisplayNameLength]
	}
	return name, nil
}
