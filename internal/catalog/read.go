package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shoalcove/scalegen/internal/model"
)

// Dimensions returns the full dimension catalog indexed by id, each
// with its modes in declaration order.
func (s *Store) Dimensions(ctx context.Context) (map[string]model.Dimension, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM dimensions`)
	if err != nil {
		return nil, fmt.Errorf("query dimensions: %w", err)
	}
	defer rows.Close()

	dims := make(map[string]model.Dimension)
	for rows.Next() {
		var d model.Dimension
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			return nil, fmt.Errorf("scan dimension: %w", err)
		}
		dims[d.ID] = d
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dimensions: %w", err)
	}

	for id, d := range dims {
		modes, err := s.readModes(ctx, id)
		if err != nil {
			return nil, err
		}
		d.Modes = modes
		dims[id] = d
	}
	return dims, nil
}

func (s *Store) readModes(ctx context.Context, dimensionID string) ([]model.Mode, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name FROM modes
		WHERE dimension_id = ?
		ORDER BY position ASC
	`, dimensionID)
	if err != nil {
		return nil, fmt.Errorf("query modes: %w", err)
	}
	defer rows.Close()

	var modes []model.Mode
	for rows.Next() {
		var m model.Mode
		if err := rows.Scan(&m.ID, &m.Name); err != nil {
			return nil, fmt.Errorf("scan mode: %w", err)
		}
		modes = append(modes, m)
	}
	return modes, rows.Err()
}

// Taxonomies returns the full taxonomy catalog indexed by id, each
// with its terms in declaration order.
func (s *Store) Taxonomies(ctx context.Context) (map[string]*model.Taxonomy, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM taxonomies`)
	if err != nil {
		return nil, fmt.Errorf("query taxonomies: %w", err)
	}
	defer rows.Close()

	taxonomies := make(map[string]*model.Taxonomy)
	for rows.Next() {
		var t model.Taxonomy
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("scan taxonomy: %w", err)
		}
		taxonomies[t.ID] = &t
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate taxonomies: %w", err)
	}

	for _, t := range taxonomies {
		terms, err := s.readTerms(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		t.Terms = terms
	}
	return taxonomies, nil
}

func (s *Store) readTerms(ctx context.Context, taxonomyID string) ([]model.Term, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name FROM terms
		WHERE taxonomy_id = ?
		ORDER BY position ASC
	`, taxonomyID)
	if err != nil {
		return nil, fmt.Errorf("query terms: %w", err)
	}
	defer rows.Close()

	var terms []model.Term
	for rows.Next() {
		var t model.Term
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("scan term: %w", err)
		}
		terms = append(terms, t)
	}
	return terms, rows.Err()
}

// TokenIDs returns the set of all stored token ids, used as the
// collision set for generation.
func (s *Store) TokenIDs(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM tokens`)
	if err != nil {
		return nil, fmt.Errorf("query token ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan token id: %w", err)
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

// Tokens returns all stored tokens for an algorithm, ordered by
// iteration then id for deterministic output.
func (s *Store) Tokens(ctx context.Context, algorithmID string) ([]model.GeneratedToken, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, algorithm_id, iteration, display_name, value,
		       token_type, description, tags, mode_scope, taxonomies
		FROM tokens
		WHERE algorithm_id = ?
		ORDER BY iteration ASC, id ASC
	`, algorithmID)
	if err != nil {
		return nil, fmt.Errorf("query tokens: %w", err)
	}
	defer rows.Close()

	var tokens []model.GeneratedToken
	for rows.Next() {
		var tok model.GeneratedToken
		var tags, modeScope, taxonomies string
		if err := rows.Scan(&tok.ID, &tok.AlgorithmID, &tok.Iteration, &tok.DisplayName,
			&tok.Value, &tok.TokenType, &tok.Description, &tags, &modeScope, &taxonomies); err != nil {
			return nil, fmt.Errorf("scan token: %w", err)
		}
		if err := json.Unmarshal([]byte(tags), &tok.Tags); err != nil {
			return nil, fmt.Errorf("decode tags for token %s: %w", tok.ID, err)
		}
		if err := json.Unmarshal([]byte(modeScope), &tok.ModeScope); err != nil {
			return nil, fmt.Errorf("decode mode scope for token %s: %w", tok.ID, err)
		}
		if err := json.Unmarshal([]byte(taxonomies), &tok.Taxonomies); err != nil {
			return nil, fmt.Errorf("decode taxonomies for token %s: %w", tok.ID, err)
		}
		tokens = append(tokens, tok)
	}
	return tokens, rows.Err()
}
