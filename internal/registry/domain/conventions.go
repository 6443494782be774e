package registry

import (
	"fmt"

	"github.com/zjrosen/roster/internal/loader"
)

// Classifier pairs a role predicate with the facade constructor for that role.
type Classifier struct {
	Role  Role
	Match func(*loader.Type) bool
	Build func(*loader.Type) (Artifact, error)
}

// Conventions is the classification strategy table. Domain is evaluated in
// its own pass over every type; Roles are tried in order during the second
// pass and the first match wins.
type Conventions struct {
	Domain Classifier
	Roles  []Classifier
}

// Validate checks that the table is usable.
func (c Conventions) Validate() error {
	if c.Domain.Role != RoleDomain {
		return fmt.Errorf("%w: domain classifier has role %s", ErrInvalidConventions, c.Domain.Role)
	}
	if err := c.Domain.validate(); err != nil {
		return err
	}
	seen := make(map[Role]bool, len(c.Roles))
	for _, cl := range c.Roles {
		if cl.Role == RoleDomain || !cl.Role.Valid() {
			return fmt.Errorf("%w: role %s cannot be used in the second pass", ErrInvalidConventions, cl.Role)
		}
		if seen[cl.Role] {
			return fmt.Errorf("%w: role %s listed twice", ErrInvalidConventions, cl.Role)
		}
		seen[cl.Role] = true
		if err := cl.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c Classifier) validate() error {
	if c.Match == nil || c.Build == nil {
		return fmt.Errorf("%w: %s classifier needs both a predicate and a constructor", ErrInvalidConventions, c.Role)
	}
	return nil
}
