/*
Package storage
File: airports.go
Description:
    The airport table. It is seeded from the universe file the first time the
    server starts, and distances from the home airport are written back on
    every load.
*/

package storage

import (
	"context"
	"fmt"

	"github.com/everforgeworks/chronoquest/internal/game"
)

// CountAirports returns the number of rows in the airport table.
func (s *Store) CountAirports(ctx context.Context) (int, error) {
	var n int
	if err := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM airports`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count airports: %w", err)
	}
	return n, nil
}

// SeedAirports inserts airports in one transaction, skipping ids that already exist.
func (s *Store) SeedAirports(ctx context.Context, airports []game.Airport) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed airports: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO airports (ident, name, code, city, country, lat, lon, distance)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare seed airports: %w", err)
	}
	defer stmt.Close()

	for _, a := range airports {
		if a.ICAO == "" {
			return fmt.Errorf("seed airports: airport %q has no ICAO code", a.Name)
		}
		if _, err := stmt.ExecContext(ctx, a.ICAO, a.Name, a.Code, a.City, a.Country, a.Lat, a.Lon, a.Distance); err != nil {
			return fmt.Errorf("insert airport %s: %w", a.ICAO, err)
		}
	}

	return tx.Commit()
}

// LoadAirports returns every airport row.
func (s *Store) LoadAirports(ctx context.Context) ([]game.Airport, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT ident, name, code, city, country, lat, lon, distance FROM airports ORDER BY ident`)
	if err != nil {
		return nil, fmt.Errorf("load airports: %w", err)
	}
	defer rows.Close()

	var airports []game.Airport
	for rows.Next() {
		var a game.Airport
		if err := rows.Scan(&a.ICAO, &a.Name, &a.Code, &a.City, &a.Country, &a.Lat, &a.Lon, &a.Distance); err != nil {
			return nil, fmt.Errorf("scan airport: %w", err)
		}
		airports = append(airports, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate airports: %w", err)
	}
	return airports, nil
}

// UpdateDistances persists precomputed distances in a single transaction.
func (s *Store) UpdateDistances(ctx context.Context, airports []game.Airport) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update distances: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `UPDATE airports SET distance = ? WHERE ident = ?`)
	if err != nil {
		return fmt.Errorf("prepare update distances: %w", err)
	}
	defer stmt.Close()

	for _, a := range airports {
		if _, err := stmt.ExecContext(ctx, a.Distance, a.ICAO); err != nil {
			return fmt.Errorf("update distance %s: %w", a.ICAO, err)
		}
	}
	return tx.Commit()
}

// LoadCatalog seeds the airport table when it is empty, then builds the catalog
// and writes the computed distances back.
func (s *Store) LoadCatalog(ctx context.Context, home string, seed []game.Airport) (*game.AirportCatalog, error) {
	n, err := s.CountAirports(ctx)
	if err != nil {
		return nil, err
	}
	if n == 0 && len(seed) > 0 {
		if err := s.SeedAirports(ctx, seed); err != nil {
			return nil, err
		}
	}

	airports, err := s.LoadAirports(ctx)
	if err != nil {
		return nil, err
	}
	catalog := game.NewAirportCatalog(home, airports)
	if catalog.Get(home) == nil {
		return nil, fmt.Errorf("home airport %s is not in the airport table", home)
	}

	if err := s.UpdateDistances(ctx, catalog.List()); err != nil {
		return nil, err
	}
	return catalog, nil
}
