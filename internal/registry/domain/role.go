package registry

import (
	"fmt"
	"strings"
)

// Role is the part a type plays in an application.
type Role int

const (
	RoleDomain Role = iota
	RoleHandler
	RoleFlow
	RoleDataSource
	RoleService
)

var roleNames = map[Role]string{
	RoleDomain:     "domain",
	RoleHandler:    "handler",
	RoleFlow:       "flow",
	RoleDataSource: "datasource",
	RoleService:    "service",
}

// Roles returns every role in classification order.
func Roles() []Role {
	return []Role{RoleDomain, RoleHandler, RoleFlow, RoleDataSource, RoleService}
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

// ParseRole maps a role name (case-insensitive) to a Role. "controller" is
// accepted for handlers.
func ParseRole(s string) (Role, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "controller" {
		return RoleHandler, nil
	}
	for role, n := range roleNames {
		if n == name {
			return role, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidRole, s)
}
