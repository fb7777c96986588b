// Package search implements the search gateway over the sqlite parameter
// index populated at commit time.
package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/medgrid/fhirgate/internal/service/transact/fhir"
)

// SQLiteGateway implements fhir.SearchGateway. A resource matches a query
// when it satisfies every (name, value) pair.
type SQLiteGateway struct {
	db *sqlx.DB
}

func NewSQLiteGateway(db *sqlx.DB) *SQLiteGateway {
	return &SQLiteGateway{db: db}
}

type matchRow struct {
	ResourceID string `db:"resource_id"`
	Version    int    `db:"version"`
}

func (g *SQLiteGateway) Search(ctx context.Context, resourceType string, params []fhir.SearchParam) ([]fhir.SearchMatch, error) {
	if len(params) == 0 {
		return nil, nil
	}

	// Repeated identical pairs must not inflate the per-resource pair count.
	distinct := make([]fhir.SearchParam, 0, len(params))
	seen := make(map[fhir.SearchParam]struct{}, len(params))
	for _, p := range params {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		distinct = append(distinct, p)
	}

	clauses := make([]string, 0, len(distinct))
	args := []any{resourceType}
	for _, p := range distinct {
		clauses = append(clauses, "(name = ? AND value = ?)")
		args = append(args, p.Name, p.Value)
	}
	args = append(args, len(distinct))

	query := fmt.Sprintf(
		`SELECT resource_id, MAX(version) AS version
		   FROM search_params
		  WHERE resource_type = ? AND (%s)
		  GROUP BY resource_id
		 HAVING COUNT(DISTINCT name || '=' || value) = ?
		  ORDER BY resource_id`,
		strings.Join(clauses, " OR "))

	var rows []matchRow
	if err := g.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%w: %v", fhir.ErrSearchUnavailable, err)
	}

	matches := make([]fhir.SearchMatch, 0, len(rows))
	for _, row := range rows {
		matches = append(matches, fhir.SearchMatch{
			ResourceType: resourceType,
			ID:           row.ResourceID,
			Version:      strconv.Itoa(row.Version),
		})
	}
	return matches, nil
}

// Index replaces the indexed parameters for one resource. Called by the
// commit path after an upsert.
func (g *SQLiteGateway) Index(ctx context.Context, resourceType, id string, version string, params []fhir.SearchParam) error {
	v, err := strconv.Atoi(version)
	if err != nil {
		return fmt.Errorf("%w: bad version %q", fhir.ErrSearchUnavailable, version)
	}

	tx, err := g.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", fhir.ErrSearchUnavailable, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM search_params WHERE resource_type = ? AND resource_id = ?`,
		resourceType, id)
	if err != nil {
		return fmt.Errorf("%w: %v", fhir.ErrSearchUnavailable, err)
	}
	for _, p := range params {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO search_params (resource_type, resource_id, version, name, value)
			 VALUES (?, ?, ?, ?, ?)`,
			resourceType, id, v, p.Name, p.Value)
		if err != nil {
			return fmt.Errorf("%w: %v", fhir.ErrSearchUnavailable, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", fhir.ErrSearchUnavailable, err)
	}
	return nil
}
