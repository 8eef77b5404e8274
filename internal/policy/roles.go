// Package policy decides which role a newly registered user receives.
package policy

import (
	"fmt"
	"strings"

	"taskmanager/internal/model"

	"github.com/BurntSushi/toml"
)

// roleFile is the on-disk format:
//
//	admins  = ["admin@example.com"]
//	masters = ["root@example.com"]
type roleFile struct {
	Admins  []string `toml:"admins"`
	Masters []string `toml:"masters"`
}

// RolePolicy maps e-mail addresses to elevated roles. Everyone else is a Member.
type RolePolicy struct {
	admins  map[string]bool
	masters map[string]bool
}

// New builds a policy from explicit lists.
func New(admins, masters []string) *RolePolicy {
	p := &RolePolicy{admins: map[string]bool{}, masters: map[string]bool{}}
	p.add(admins, masters)
	return p
}

// Load reads the TOML file at path (skipped when path is empty) and merges
// the extra lists coming from the environment.
func Load(path string, admins, masters []string) (*RolePolicy, error) {
	p := New(admins, masters)
	if path == "" {
		return p, nil
	}
	var f roleFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("policy: read %s: %w", path, err)
	}
	p.add(f.Admins, f.Masters)
	return p, nil
}

func (p *RolePolicy) add(admins, masters []string) {
	for _, e := range admins {
		p.admins[normalize(e)] = true
	}
	for _, e := range masters {
		p.masters[normalize(e)] = true
	}
}

// RoleFor returns the role assigned to email at registration. Admin wins
// when an address appears in both lists.
func (p *RolePolicy) RoleFor(email string) model.Role {
	key := normalize(email)
	switch {
	case p.admins[key]:
		return model.RoleAdmin
	case p.masters[key]:
		return model.RoleMaster
	default:
		return model.RoleMember
	}
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
