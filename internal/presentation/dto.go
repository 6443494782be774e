package presentation

import (
	"time"

	"github.com/zjrosen/roster/internal/conventions"
	registry "github.com/zjrosen/roster/internal/registry/domain"
)

// ArtifactDTO represents a published artifact for presentation.
type ArtifactDTO struct {
	Role      string `json:"role"`
	Key       string `json:"key"`
	Name      string `json:"name"`
	FullName  string `json:"full_name"`
	Type      string `json:"type"`
	Resource  string `json:"resource,omitempty"`
	Available bool   `json:"available"`

	// Role-specific details
	URIs          []string       `json:"uris,omitempty"`
	Actions       []string       `json:"actions,omitempty"`
	DefaultAction string         `json:"default_action,omitempty"`
	Steps         []string       `json:"steps,omitempty"`
	Transactional *bool          `json:"transactional,omitempty"`
	Properties    []PropertyDTO  `json:"properties,omitempty"`
	DataSource    *DataSourceDTO `json:"data_source,omitempty"`
}

// PropertyDTO represents a domain property.
type PropertyDTO struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Persistent bool   `json:"persistent"`
}

// DataSourceDTO represents data source settings. The password is never shown.
type DataSourceDTO struct {
	Driver   string `json:"driver"`
	URL      string `json:"url,omitempty"`
	Username string `json:"username,omitempty"`
	Pooled   bool   `json:"pooled"`
	DDL      string `json:"ddl,omitempty"`
}

// BuildDTO represents a catalog build for presentation.
type BuildDTO struct {
	ID             string         `json:"id"`
	SourceDir      string         `json:"source_dir"`
	BuiltAt        time.Time      `json:"built_at"`
	DataSource     string         `json:"data_source,omitempty"`
	Counts         map[string]int `json:"counts"`
	DualRegistered []string       `json:"dual_registered,omitempty"`
}

// FromArtifact converts a registry artifact to a DTO. key is the key the
// artifact is published under.
func FromArtifact(role registry.Role, key string, a registry.Artifact) ArtifactDTO {
	dto := ArtifactDTO{
		Role:      role.String(),
		Key:       key,
		Name:      a.Name(),
		FullName:  a.FullName(),
		Type:      a.Type().QualifiedName(),
		Resource:  a.Type().Resource(),
		Available: a.Available(),
	}

	switch v := a.(type) {
	case *conventions.Domain:
		for _, p := range v.Properties() {
			dto.Properties = append(dto.Properties, PropertyDTO{Name: p.Name, Type: p.Type, Persistent: p.Persistent})
		}
	case *conventions.Handler:
		dto.URIs = v.URIs()
		dto.Actions = v.Actions()
		dto.DefaultAction = v.DefaultAction()
	case *conventions.Flow:
		dto.Steps = v.Steps()
	case *conventions.Service:
		tx := v.Transactional()
		dto.Transactional = &tx
	case *conventions.DataSource:
		s := v.Settings()
		dto.DataSource = &DataSourceDTO{
			Driver:   s.Driver,
			URL:      s.URL,
			Username: s.Username,
			Pooled:   s.Pooled,
			DDL:      s.DDL,
		}
	case registry.Handler:
		dto.URIs = v.URIs()
	}
	return dto
}

// FromRegistry converts the artifacts of the given roles, in role then key
// order. With no roles every role is included.
func FromRegistry(reg *registry.Registry, roles ...registry.Role) []ArtifactDTO {
	if len(roles) == 0 {
		roles = registry.Roles()
	}
	dtos := make([]ArtifactDTO, 0)
	for _, role := range roles {
		keys := reg.Keys(role)
		for i, a := range reg.List(role) {
			dtos = append(dtos, FromArtifact(role, keys[i], a))
		}
	}
	return dtos
}

// FromBuildRecord converts a catalog build to a DTO.
func FromBuildRecord(rec registry.BuildRecord) BuildDTO {
	counts := make(map[string]int, len(rec.Counts))
	for role, n := range rec.Counts {
		counts[role.String()] = n
	}
	return BuildDTO{
		ID:             rec.ID,
		SourceDir:      rec.SourceDir,
		BuiltAt:        rec.BuiltAt,
		DataSource:     rec.DataSource,
		Counts:         counts,
		DualRegistered: rec.DualRegistered,
	}
}

// FromBuildRecords converts a slice of catalog builds to DTOs.
func FromBuildRecords(recs []registry.BuildRecord) []BuildDTO {
	dtos := make([]BuildDTO, len(recs))
	for i, rec := range recs {
		dtos[i] = FromBuildRecord(rec)
	}
	return dtos
}

// FromArtifactRecords converts catalog artifact records to DTOs. Recorded
// artifacts carry no role-specific details and were available when built.
func FromArtifactRecords(recs []registry.ArtifactRecord) []ArtifactDTO {
	out := make([]ArtifactDTO, 0, len(recs))
	for _, rec := range recs {
		out = append(out, ArtifactDTO{
			Role:      rec.Role.String(),
			Key:       rec.Key,
			Name:      rec.Name,
			FullName:  rec.FullName,
			Type:      rec.Type,
			Resource:  rec.Resource,
			Available: true,
		})
	}
	return out
}

// DispatchDTO is a URI resolved to its request handler.
type DispatchDTO struct {
	URI     string      `json:"uri"`
	Action  string      `json:"action,omitempty"`
	Handler ArtifactDTO `json:"handler"`
}

// FromDispatch describes h serving uri. The action is resolved when h is a
// conventions handler.
func FromDispatch(uri string, h registry.Handler) DispatchDTO {
	dto := DispatchDTO{
		URI:     uri,
		Handler: FromArtifact(registry.RoleHandler, h.FullName(), h),
	}
	if ch, ok := h.(*conventions.Handler); ok {
		dto.Action, _ = ch.ActionFor(uri)
	}
	return dto
}
