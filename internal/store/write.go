package store

import (
	"context"
	"encoding/json"
	"fmt"

	"sanjeevani/internal/logging"
)

// PutPlant inserts a record into the named collection and, when an
// embedding engine is attached, stores its text-content vector for
// semantic search.
func (s *Store) PutPlant(ctx context.Context, collection string, row PlantRow) error {
	db, err := s.handle()
	if err != nil {
		return err
	}

	res, err := db.ExecContext(ctx, `
		INSERT INTO plants (collection, plant_id, botanical_name, common_names, family,
			traditional_uses, major_constituents, pharmacology, safety_info,
			conservation_status, threat_info, text_content)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		collection, row.PlantID, row.BotanicalName, encodeList(row.CommonNames), row.Family,
		encodeList(row.TraditionalUses), encodeList(row.MajorConstituents),
		row.Pharmacology, row.SafetyInfo,
		row.ConservationStatus, row.ThreatInfo, row.TextContent,
	)
	if err != nil {
		return fmt.Errorf("failed to insert plant: %w", err)
	}

	s.mu.RLock()
	embedder := s.embedder
	s.mu.RUnlock()
	if embedder == nil || row.TextContent == "" {
		return nil
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read insert id: %w", err)
	}
	vec, err := embedder.Embed(ctx, row.TextContent)
	if err != nil {
		// The record is queryable by filter and keyword even without a
		// vector; log and move on.
		logging.Get(logging.CategoryStore).Warn("embedding failed for %s: %v", row.BotanicalName, err)
		return nil
	}
	raw, err := json.Marshal(vec)
	if err != nil {
		return fmt.Errorf("failed to encode embedding: %w", err)
	}
	if _, err := db.ExecContext(ctx,
		"INSERT OR REPLACE INTO vectors (plant_row, collection, embedding) VALUES (?, ?, ?)",
		id, collection, string(raw),
	); err != nil {
		return fmt.Errorf("failed to store embedding: %w", err)
	}
	return nil
}

// PutLocation inserts a geographic distribution record.
func (s *Store) PutLocation(ctx context.Context, row LocationRow) error {
	db, err := s.handle()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO locations (district, latitude, longitude, plants, soils)
		VALUES (?, ?, ?, ?, ?)`,
		row.District, row.Latitude, row.Longitude, encodeList(row.Plants), row.Soils,
	)
	if err != nil {
		return fmt.Errorf("failed to insert location: %w", err)
	}
	return nil
}

// CountPlants reports how many records a collection holds.
func (s *Store) CountPlants(ctx context.Context, collection string) (int, error) {
	db, err := s.handle()
	if err != nil {
		return 0, err
	}
	var n int
	if err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM plants WHERE collection = ?", collection).Scan(&n); err != nil {
		return 0, fmt.Errorf("count failed: %w", err)
	}
	return n, nil
}
