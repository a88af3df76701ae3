package place

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// Repository defines the interface for the transformed place cache.
//
// The cache holds the last successfully transformed county list so
// browsing keeps working through upstream outages. It is replaced
// wholesale on each successful refresh.
type Repository interface {
	// ReplaceAll swaps the cached county list atomically.
	ReplaceAll(ctx context.Context, counties []County) error

	// ListCounties returns all cached counties with their
	// municipalities, in cached order.
	ListCounties(ctx context.Context) ([]County, error)

	// GetCounty returns one cached county with its municipalities.
	GetCounty(ctx context.Context, id string) (*County, error)

	// ListMunicipalities returns the municipalities of one county.
	ListMunicipalities(ctx context.Context, countyID string) ([]Municipality, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed place cache.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// ReplaceAll swaps the cached county list inside one transaction.
// Sort order preserves the slice order so reads return counties as the
// upstream sent them.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, counties []County) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM municipalities`); err != nil {
		return fmt.Errorf("clearing municipalities: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM counties`); err != nil {
		return fmt.Errorf("clearing counties: %w", err)
	}

	const countyQuery = `INSERT INTO counties (id, name, state, status, alert_message, sort_order)
		VALUES (?, ?, ?, ?, ?, ?)`
	const muniQuery = `INSERT INTO municipalities (id, county_id, name, status, alert_message,
		svc_code, svc_permits, svc_liens, svc_utilities, report_types, sort_order)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	for ci, c := range counties {
		if _, err := tx.ExecContext(ctx, countyQuery,
			c.ID, c.Name, c.State, string(c.Status), c.AlertMessage, ci); err != nil {
			return fmt.Errorf("inserting county %s: %w", c.ID, err)
		}

		for mi, m := range c.Municipalities {
			reportTypes, err := json.Marshal(m.ReportTypes)
			if err != nil {
				return fmt.Errorf("encoding report types for %s: %w", m.ID, err)
			}
			if _, err := tx.ExecContext(ctx, muniQuery,
				m.ID, c.ID, m.Name, string(m.Status), m.AlertMessage,
				m.AvailableServices.Code, m.AvailableServices.Permits,
				m.AvailableServices.Liens, m.AvailableServices.Utilities,
				string(reportTypes), mi); err != nil {
				return fmt.Errorf("inserting municipality %s: %w", m.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing cache replace: %w", err)
	}
	return nil
}

// ListCounties returns all cached counties with municipalities attached.
func (r *SQLiteRepository) ListCounties(ctx context.Context) ([]County, error) {
	const query = `SELECT id, name, state, status, alert_message
		FROM counties ORDER BY sort_order`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying counties: %w", err)
	}
	defer rows.Close()

	counties := []County{}
	for rows.Next() {
		c, err := scanCounty(rows)
		if err != nil {
			return nil, err
		}
		counties = append(counties, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating counties: %w", err)
	}

	for i := range counties {
		munis, err := r.ListMunicipalities(ctx, counties[i].ID)
		if err != nil {
			return nil, err
		}
		counties[i].Municipalities = munis
	}

	return counties, nil
}

// GetCounty returns one cached county with its municipalities.
// Returns ErrCountyNotFound when the ID is not cached.
func (r *SQLiteRepository) GetCounty(ctx context.Context, id string) (*County, error) {
	const query = `SELECT id, name, state, status, alert_message
		FROM counties WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	c, err := scanCounty(row)
	if err != nil {
		return nil, err
	}

	munis, err := r.ListMunicipalities(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.Municipalities = munis
	return c, nil
}

// ListMunicipalities returns the municipalities of one county in
// cached order. An unknown county yields an empty slice.
func (r *SQLiteRepository) ListMunicipalities(ctx context.Context, countyID string) ([]Municipality, error) {
	const query = `SELECT id, county_id, name, status, alert_message,
		svc_code, svc_permits, svc_liens, svc_utilities, report_types
		FROM municipalities WHERE county_id = ? ORDER BY sort_order`

	rows, err := r.db.QueryContext(ctx, query, countyID)
	if err != nil {
		return nil, fmt.Errorf("querying municipalities: %w", err)
	}
	defer rows.Close()

	munis := []Municipality{}
	for rows.Next() {
		var m Municipality
		var status, reportTypes string
		if err := rows.Scan(&m.ID, &m.CountyID, &m.Name, &status, &m.AlertMessage,
			&m.AvailableServices.Code, &m.AvailableServices.Permits,
			&m.AvailableServices.Liens, &m.AvailableServices.Utilities,
			&reportTypes); err != nil {
			return nil, fmt.Errorf("scanning municipality: %w", err)
		}
		m.Status = StatusType(status)
		if err := json.Unmarshal([]byte(reportTypes), &m.ReportTypes); err != nil {
			return nil, fmt.Errorf("decoding report types for %s: %w", m.ID, err)
		}
		munis = append(munis, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating municipalities: %w", err)
	}
	return munis, nil
}

// scanner abstracts *sql.Row and *sql.Rows for shared scanning.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanCounty(s scanner) (*County, error) {
	var c County
	var status string
	if err := s.Scan(&c.ID, &c.Name, &c.State, &status, &c.AlertMessage); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCountyNotFound
		}
		return nil, fmt.Errorf("scanning county: %w", err)
	}
	c.Status = StatusType(status)
	return &c, nil
}
