package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/shoalcove/scalegen/internal/model"
)

// SaveDimension upserts a dimension and its modes in one transaction.
func (s *Store) SaveDimension(ctx context.Context, dim model.Dimension) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO dimensions (id, name) VALUES (?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name
		`, dim.ID, dim.Name); err != nil {
			return fmt.Errorf("write dimension %s: %w", dim.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM modes WHERE dimension_id = ?`, dim.ID); err != nil {
			return fmt.Errorf("clear modes for %s: %w", dim.ID, err)
		}
		for i, mode := range dim.Modes {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO modes (id, dimension_id, name, position) VALUES (?, ?, ?, ?)
			`, mode.ID, dim.ID, mode.Name, i); err != nil {
				return fmt.Errorf("write mode %s: %w", mode.ID, err)
			}
		}
		return nil
	})
}

// SaveTaxonomy upserts a taxonomy and its terms in one transaction.
// Used both for seeding and for persisting taxonomies grown by
// generation.
func (s *Store) SaveTaxonomy(ctx context.Context, tax model.Taxonomy) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO taxonomies (id, name) VALUES (?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name
		`, tax.ID, tax.Name); err != nil {
			return fmt.Errorf("write taxonomy %s: %w", tax.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM terms WHERE taxonomy_id = ?`, tax.ID); err != nil {
			return fmt.Errorf("clear terms for %s: %w", tax.ID, err)
		}
		for i, term := range tax.Terms {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO terms (id, taxonomy_id, name, position) VALUES (?, ?, ?, ?)
			`, term.ID, tax.ID, term.Name, i); err != nil {
				return fmt.Errorf("write term %s: %w", term.ID, err)
			}
		}
		return nil
	})
}

// SaveTokens persists a generated batch in one transaction.
// Duplicate ids are rejected by the primary key; generation already
// screens against the stored set, so a conflict here is a real error.
func (s *Store) SaveTokens(ctx context.Context, tokens []model.GeneratedToken) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, tok := range tokens {
			tags, err := json.Marshal(tok.Tags)
			if err != nil {
				return fmt.Errorf("encode tags for token %s: %w", tok.ID, err)
			}
			modeScope, err := json.Marshal(tok.ModeScope)
			if err != nil {
				return fmt.Errorf("encode mode scope for token %s: %w", tok.ID, err)
			}
			taxonomies, err := json.Marshal(tok.Taxonomies)
			if err != nil {
				return fmt.Errorf("encode taxonomies for token %s: %w", tok.ID, err)
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO tokens
				(id, algorithm_id, iteration, display_name, value, token_type, description, tags, mode_scope, taxonomies)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, tok.ID, tok.AlgorithmID, tok.Iteration, tok.DisplayName, tok.Value,
				tok.TokenType, tok.Description, string(tags), string(modeScope), string(taxonomies)); err != nil {
				return fmt.Errorf("write token %s: %w", tok.ID, err)
			}
		}
		return nil
	})
}

// inTx runs fn inside a transaction, committing on success and
// rolling back on error.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
