package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	registry "github.com/zjrosen/roster/internal/registry/domain"
)

// BuildModel represents a row of the builds table.
type BuildModel struct {
	ID             string
	SourceDir      string
	BuiltAt        int64   // Unix nanoseconds
	DataSource     *string // nullable
	Counts         string  // JSON object role -> count
	DualRegistered string  // JSON array of qualified type names
}

// ArtifactModel represents a row of the artifacts table.
type ArtifactModel struct {
	BuildID  string
	Position int
	Role     string
	Key      string
	Name     string
	FullName string
	TypeName string
	Resource string
}

func toBuildModel(rec registry.BuildRecord) (*BuildModel, error) {
	counts := make(map[string]int, len(rec.Counts))
	for role, n := range rec.Counts {
		counts[role.String()] = n
	}
	countsJSON, err := json.Marshal(counts)
	if err != nil {
		return nil, fmt.Errorf("encoding counts: %w", err)
	}

	dual := rec.DualRegistered
	if dual == nil {
		dual = []string{}
	}
	dualJSON, err := json.Marshal(dual)
	if err != nil {
		return nil, fmt.Errorf("encoding dual registrations: %w", err)
	}

	m := &BuildModel{
		ID:             rec.ID,
		SourceDir:      rec.SourceDir,
		BuiltAt:        rec.BuiltAt.UnixNano(),
		Counts:         string(countsJSON),
		DualRegistered: string(dualJSON),
	}
	if rec.DataSource != "" {
		ds := rec.DataSource
		m.DataSource = &ds
	}
	return m, nil
}

func (m *BuildModel) toDomain() (registry.BuildRecord, error) {
	rec := registry.BuildRecord{
		ID:        m.ID,
		SourceDir: m.SourceDir,
		BuiltAt:   time.Unix(0, m.BuiltAt).UTC(),
		Counts:    make(map[registry.Role]int),
	}
	if m.DataSource != nil {
		rec.DataSource = *m.DataSource
	}

	var counts map[string]int
	if err := json.Unmarshal([]byte(m.Counts), &counts); err != nil {
		return rec, fmt.Errorf("decoding counts of build %s: %w", m.ID, err)
	}
	for name, n := range counts {
		role, err := registry.ParseRole(name)
		if err != nil {
			return rec, fmt.Errorf("decoding counts of build %s: %w", m.ID, err)
		}
		rec.Counts[role] = n
	}
	if err := json.Unmarshal([]byte(m.DualRegistered), &rec.DualRegistered); err != nil {
		return rec, fmt.Errorf("decoding dual registrations of build %s: %w", m.ID, err)
	}
	if len(rec.DualRegistered) == 0 {
		rec.DualRegistered = nil
	}
	return rec, nil
}

func toArtifactModel(buildID string, position int, a registry.ArtifactRecord) ArtifactModel {
	return ArtifactModel{
		BuildID:  buildID,
		Position: position,
		Role:     a.Role.String(),
		Key:      a.Key,
		Name:     a.Name,
		FullName: a.FullName,
		TypeName: a.Type,
		Resource: a.Resource,
	}
}

func (m ArtifactModel) toDomain() (registry.ArtifactRecord, error) {
	role, err := registry.ParseRole(m.Role)
	if err != nil {
		return registry.ArtifactRecord{}, fmt.Errorf("decoding artifact %s: %w", m.Key, err)
	}
	return registry.ArtifactRecord{
		Role:     role,
		Key:      m.Key,
		Name:     m.Name,
		FullName: m.FullName,
		Type:     m.TypeName,
		Resource: m.Resource,
	}, nil
}
