package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	registry "github.com/zjrosen/roster/internal/registry/domain"
)

const buildColumns = `id, source_dir, built_at, data_source, counts, dual_registered`

// catalogRepository implements registry.CatalogRepository using SQLite.
type catalogRepository struct {
	db *sql.DB
}

func newCatalogRepository(db *sql.DB) *catalogRepository {
	return &catalogRepository{db: db}
}

// Ensure catalogRepository implements registry.CatalogRepository.
var _ registry.CatalogRepository = (*catalogRepository)(nil)

// SaveBuild stores a build and its artifacts in one transaction.
func (r *catalogRepository) SaveBuild(ctx context.Context, rec registry.BuildRecord) error {
	model, err := toBuildModel(rec)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO builds (`+buildColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		model.ID, model.SourceDir, model.BuiltAt, model.DataSource, model.Counts, model.DualRegistered,
	)
	if err != nil {
		return fmt.Errorf("failed to insert build %s: %w", rec.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO artifacts (build_id, position, role, key, name, full_name, type_name, resource)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare artifact insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, a := range rec.Artifacts {
		m := toArtifactModel(rec.ID, i, a)
		if _, err := stmt.ExecContext(ctx,
			m.BuildID, m.Position, m.Role, m.Key, m.Name, m.FullName, m.TypeName, m.Resource,
		); err != nil {
			return fmt.Errorf("failed to insert artifact %s: %w", a.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit build %s: %w", rec.ID, err)
	}
	return nil
}

// ListBuilds returns the most recent builds first, without artifacts.
// A limit of zero or less returns every build.
func (r *catalogRepository) ListBuilds(ctx context.Context, limit int) ([]registry.BuildRecord, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+buildColumns+` FROM builds ORDER BY built_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list builds: %w", err)
	}
	defer func() { _ = rows.Close() }()

	builds := []registry.BuildRecord{}
	for rows.Next() {
		var m BuildModel
		if err := rows.Scan(&m.ID, &m.SourceDir, &m.BuiltAt, &m.DataSource, &m.Counts, &m.DualRegistered); err != nil {
			return nil, fmt.Errorf("failed to scan build: %w", err)
		}
		rec, err := m.toDomain()
		if err != nil {
			return nil, err
		}
		builds = append(builds, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate builds: %w", err)
	}
	return builds, nil
}

// ArtifactsForBuild returns the artifacts of one build in recorded order.
// Returns registry.ErrBuildNotFound for an unknown build.
func (r *catalogRepository) ArtifactsForBuild(ctx context.Context, buildID string) ([]registry.ArtifactRecord, error) {
	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM builds WHERE id = ?`, buildID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to find build: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %s", registry.ErrBuildNotFound, buildID)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT build_id, position, role, key, name, full_name, type_name, resource
		FROM artifacts WHERE build_id = ? ORDER BY position`,
		buildID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	artifacts := []registry.ArtifactRecord{}
	for rows.Next() {
		var m ArtifactModel
		if err := rows.Scan(&m.BuildID, &m.Position, &m.Role, &m.Key, &m.Name, &m.FullName, &m.TypeName, &m.Resource); err != nil {
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}
		a, err := m.toDomain()
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate artifacts: %w", err)
	}
	return artifacts, nil
}
