package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"sanjeevani/internal/logging"
)

// LocationsByPlants is the structural filter of the geography domain:
// every location record whose plants list contains any of the given
// values. Matching is case-sensitive; callers try both lower-case and
// title-case forms of a name.
func (s *Store) LocationsByPlants(ctx context.Context, values []string, limit int) ([]LocationRow, error) {
	timer := logging.StartTimer(logging.CategoryStore, "LocationsByPlants")
	defer timer.Stop()

	if len(values) == 0 {
		return nil, nil
	}
	db, err := s.handle()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 100
	}

	var conditions []string
	var args []interface{}
	for _, v := range values {
		conditions = append(conditions, "plants LIKE ?")
		args = append(args, "%"+v+"%")
	}
	args = append(args, limit)

	query := fmt.Sprintf(
		"SELECT id, district, latitude, longitude, plants, soils FROM locations WHERE %s LIMIT ?",
		strings.Join(conditions, " OR "),
	)
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("location filter failed: %w", err)
	}
	defer rows.Close()

	return scanLocationRows(rows)
}

// LocationKeywordSearch is the fallback when the structural filter
// finds nothing: a tokenized case-insensitive search over the plants
// list of each location.
func (s *Store) LocationKeywordSearch(ctx context.Context, text string, limit int) ([]LocationRow, error) {
	timer := logging.StartTimer(logging.CategoryStore, "LocationKeywordSearch")
	defer timer.Stop()

	db, err := s.handle()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}

	tokens := keywordTokens(text)
	if len(tokens) == 0 {
		return nil, nil
	}

	var conditions []string
	var args []interface{}
	for _, tok := range tokens {
		conditions = append(conditions, "LOWER(plants) LIKE ?")
		args = append(args, "%"+tok+"%")
	}
	args = append(args, limit)

	query := fmt.Sprintf(
		"SELECT id, district, latitude, longitude, plants, soils FROM locations WHERE %s LIMIT ?",
		strings.Join(conditions, " OR "),
	)
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("location keyword search failed: %w", err)
	}
	defer rows.Close()

	return scanLocationRows(rows)
}

func scanLocationRows(rows *sql.Rows) ([]LocationRow, error) {
	var out []LocationRow
	for rows.Next() {
		var row LocationRow
		var plants string
		if err := rows.Scan(&row.ID, &row.District, &row.Latitude, &row.Longitude, &plants, &row.Soils); err != nil {
			return nil, fmt.Errorf("location scan failed: %w", err)
		}
		row.Plants = decodeList(plants)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("location iteration failed: %w", err)
	}
	return out, nil
}
