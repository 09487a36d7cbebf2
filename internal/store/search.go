package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"sanjeevani/internal/embedding"
	"sanjeevani/internal/logging"
)

// MatchMode selects how FilteredSearch compares values to a field.
type MatchMode int

const (
	// MatchLike accepts a record when the field contains a value as a
	// substring (case-insensitive).
	MatchLike MatchMode = iota
	// MatchContainsAny accepts a record when any element of a list
	// field contains one of the values (case-insensitive).
	MatchContainsAny
)

// Searchable field names accepted by FilteredSearch and KeywordSearch.
const (
	FieldBotanicalName = "botanical_name"
	FieldCommonNames   = "common_names"
	FieldTextContent   = "text_content"
)

// plantColumns is the scan list shared by every plants query.
const plantColumns = `id, collection, plant_id, botanical_name, common_names, family,
	traditional_uses, major_constituents, pharmacology, safety_info,
	conservation_status, threat_info, text_content`

var searchableColumns = map[string]bool{
	FieldBotanicalName: true,
	FieldCommonNames:   true,
	FieldTextContent:   true,
}

// FilteredSearch returns records of the collection whose field matches
// one of the values. This is the highest-precision tier of the cascade.
func (s *Store) FilteredSearch(ctx context.Context, collection, field string, mode MatchMode, values []string, limit int) ([]PlantRow, error) {
	timer := logging.StartTimer(logging.CategoryStore, "FilteredSearch")
	defer timer.Stop()

	if !searchableColumns[field] {
		return nil, fmt.Errorf("field %q is not searchable", field)
	}
	if len(values) == 0 {
		return nil, nil
	}
	db, err := s.handle()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 5
	}

	// Both modes reduce to substring tests; MatchContainsAny runs them
	// against the JSON-encoded list column.
	var conditions []string
	var args []interface{}
	args = append(args, collection)
	for _, v := range values {
		conditions = append(conditions, fmt.Sprintf("LOWER(%s) LIKE ?", field))
		args = append(args, "%"+strings.ToLower(v)+"%")
	}
	args = append(args, limit)

	query := fmt.Sprintf(
		"SELECT %s FROM plants WHERE collection = ? AND (%s) LIMIT ?",
		plantColumns, strings.Join(conditions, " OR "),
	)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("filtered search failed: %w", err)
	}
	defer rows.Close()

	return scanPlantRows(rows)
}

// SemanticSearch embeds the query text and returns the most similar
// records of the collection by cosine similarity.
func (s *Store) SemanticSearch(ctx context.Context, collection, text string, limit int) ([]PlantRow, error) {
	timer := logging.StartTimer(logging.CategoryStore, "SemanticSearch")
	defer timer.Stop()

	s.mu.RLock()
	embedder := s.embedder
	s.mu.RUnlock()
	if embedder == nil {
		return nil, fmt.Errorf("semantic search unavailable: no embedding engine")
	}
	db, err := s.handle()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 5
	}

	queryVec, err := embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("query embedding failed: %w", err)
	}

	rows, err := db.QueryContext(ctx,
		"SELECT plant_row, embedding FROM vectors WHERE collection = ?", collection)
	if err != nil {
		return nil, fmt.Errorf("vector scan failed: %w", err)
	}
	defer rows.Close()

	var ids []int64
	var corpus [][]float32
	for rows.Next() {
		var id int64
		var raw string
		if err := rows.Scan(&id, &raw); err != nil {
			continue
		}
		var vec []float32
		if err := json.Unmarshal([]byte(raw), &vec); err != nil {
			continue
		}
		ids = append(ids, id)
		corpus = append(corpus, vec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vector scan failed: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	top := embedding.TopK(queryVec, corpus, limit)
	results := make([]PlantRow, 0, len(top))
	for _, hit := range top {
		row, err := s.plantByID(ctx, db, ids[hit.Index])
		if err != nil {
			logging.Get(logging.CategoryStore).Warn("semantic hit %d unreadable: %v", ids[hit.Index], err)
			continue
		}
		row.Similarity = hit.Similarity
		results = append(results, row)
	}
	return results, nil
}

// KeywordSearch is the lowest cascade tier: a tokenized substring
// search over the given fields, ranked by how many query tokens match.
func (s *Store) KeywordSearch(ctx context.Context, collection, text string, fields []string, limit int) ([]PlantRow, error) {
	timer := logging.StartTimer(logging.CategoryStore, "KeywordSearch")
	defer timer.Stop()

	db, err := s.handle()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 5
	}
	if len(fields) == 0 {
		fields = []string{FieldBotanicalName, FieldCommonNames, FieldTextContent}
	}
	for _, f := range fields {
		if !searchableColumns[f] {
			return nil, fmt.Errorf("field %q is not searchable", f)
		}
	}

	tokens := keywordTokens(text)
	if len(tokens) == 0 {
		return nil, nil
	}

	var conditions []string
	var args []interface{}
	args = append(args, collection)
	for _, tok := range tokens {
		for _, f := range fields {
			conditions = append(conditions, fmt.Sprintf("LOWER(%s) LIKE ?", f))
			args = append(args, "%"+tok+"%")
		}
	}
	// Over-fetch so ranking has something to work with.
	args = append(args, limit*4)

	query := fmt.Sprintf(
		"SELECT %s FROM plants WHERE collection = ? AND (%s) LIMIT ?",
		plantColumns, strings.Join(conditions, " OR "),
	)
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("keyword search failed: %w", err)
	}
	defer rows.Close()

	candidates, err := scanPlantRows(rows)
	if err != nil {
		return nil, err
	}

	type scored struct {
		row   PlantRow
		score int
	}
	ranked := make([]scored, 0, len(candidates))
	for _, row := range candidates {
		haystack := strings.ToLower(row.BotanicalName + " " + strings.Join(row.CommonNames, " ") + " " + row.TextContent)
		score := 0
		for _, tok := range tokens {
			if strings.Contains(haystack, tok) {
				score++
			}
		}
		ranked = append(ranked, scored{row, score})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	out := make([]PlantRow, 0, limit)
	for _, r := range ranked {
		if len(out) >= limit {
			break
		}
		out = append(out, r.row)
	}
	return out, nil
}

// keywordTokens splits text into lower-cased search tokens, dropping
// single characters.
func keywordTokens(text string) []string {
	var tokens []string
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		tok = strings.Trim(tok, ".,!?;:'\"()")
		if len(tok) < 2 {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// plantByID fetches a single record.
func (s *Store) plantByID(ctx context.Context, db *sql.DB, id int64) (PlantRow, error) {
	row := db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM plants WHERE id = ?", plantColumns), id)
	return scanPlantRow(row)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPlantRow(r rowScanner) (PlantRow, error) {
	var row PlantRow
	var commonNames, uses, constituents string
	err := r.Scan(
		&row.ID, &row.Collection, &row.PlantID, &row.BotanicalName, &commonNames,
		&row.Family, &uses, &constituents, &row.Pharmacology, &row.SafetyInfo,
		&row.ConservationStatus, &row.ThreatInfo, &row.TextContent,
	)
	if err != nil {
		return PlantRow{}, err
	}
	row.CommonNames = decodeList(commonNames)
	row.TraditionalUses = decodeList(uses)
	row.MajorConstituents = decodeList(constituents)
	return row, nil
}

func scanPlantRows(rows *sql.Rows) ([]PlantRow, error) {
	var out []PlantRow
	for rows.Next() {
		row, err := scanPlantRow(rows)
		if err != nil {
			return nil, fmt.Errorf("row scan failed: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}
	return out, nil
}
