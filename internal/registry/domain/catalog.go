package registry

import (
	"context"
	"time"
)

// BuildRecord is the stored summary of one successful build.
type BuildRecord struct {
	ID             string
	SourceDir      string
	BuiltAt        time.Time
	Counts         map[Role]int
	DataSource     string // full name, empty when none
	DualRegistered []string
	Artifacts      []ArtifactRecord
}

// ArtifactRecord is one published artifact within a build.
type ArtifactRecord struct {
	Role     Role
	Key      string
	Name     string
	FullName string
	Type     string // qualified type name
	Resource string
}

// CatalogRepository stores build history.
type CatalogRepository interface {
	SaveBuild(ctx context.Context, rec BuildRecord) error
	ListBuilds(ctx context.Context, limit int) ([]BuildRecord, error)
	ArtifactsForBuild(ctx context.Context, buildID string) ([]ArtifactRecord, error)
}

// Record summarizes r for the catalog. Artifacts are listed role by role in
// classification order, then by key.
func (r *Registry) Record(sourceDir string) BuildRecord {
	rec := BuildRecord{
		ID:             r.id,
		SourceDir:      sourceDir,
		BuiltAt:        r.builtAt,
		Counts:         r.Counts(),
		DualRegistered: r.DualRegistered(),
	}
	if ds, ok := r.DataSource(); ok {
		rec.DataSource = ds.FullName()
	}
	for _, role := range Roles() {
		for _, a := range r.List(role) {
			rec.Artifacts = append(rec.Artifacts, ArtifactRecord{
				Role:     role,
				Key:      publishedKey(role, a),
				Name:     a.Name(),
				FullName: a.FullName(),
				Type:     a.Type().QualifiedName(),
				Resource: a.Type().Resource(),
			})
		}
	}
	return rec
}
