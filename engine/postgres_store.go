package engine

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/liamcoop/quorum/body"
)

// PostgresBodyStore implements BodyStore backed by PostgreSQL. The full
// GoverningBody document is kept as a JSONB column; id and name are
// duplicated in plain columns for listing.
type PostgresBodyStore struct {
	db *sql.DB
}

// NewPostgresBodyStore creates a new PostgreSQL-backed BodyStore
func NewPostgresBodyStore(db *sql.DB) *PostgresBodyStore {
	return &PostgresBodyStore{db: db}
}

// Add inserts a new body into the database
func (s *PostgresBodyStore) Add(b *body.GoverningBody) error {
	var exists bool
	err := s.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM bodies WHERE id = $1)
	`, b.ID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check body existence: %w", err)
	}
	if exists {
		return fmt.Errorf("body with ID %s already exists", b.ID)
	}

	doc, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to marshal body: %w", err)
	}

	now := time.Now()
	_, err = s.db.Exec(`
		INSERT INTO bodies (id, name, document, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, b.ID, b.Name, doc, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert body: %w", err)
	}

	return nil
}

// Get retrieves a body by ID
func (s *PostgresBodyStore) Get(id string) (*body.GoverningBody, error) {
	var doc []byte
	err := s.db.QueryRow(`
		SELECT document FROM bodies WHERE id = $1
	`, id).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("body with ID %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query body: %w", err)
	}

	var b body.GoverningBody
	if err := json.Unmarshal(doc, &b); err != nil {
		return nil, fmt.Errorf("failed to unmarshal body %s: %w", id, err)
	}
	return &b, nil
}

// List returns all bodies ordered by creation time
func (s *PostgresBodyStore) List() ([]*body.GoverningBody, error) {
	rows, err := s.db.Query(`
		SELECT document FROM bodies ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list bodies: %w", err)
	}
	defer rows.Close()

	var bodies []*body.GoverningBody
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan body row: %w", err)
		}
		var b body.GoverningBody
		if err := json.Unmarshal(doc, &b); err != nil {
			return nil, fmt.Errorf("failed to unmarshal body: %w", err)
		}
		bodies = append(bodies, &b)
	}
	return bodies, rows.Err()
}

// Update replaces an existing body
func (s *PostgresBodyStore) Update(b *body.GoverningBody) error {
	doc, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to marshal body: %w", err)
	}

	res, err := s.db.Exec(`
		UPDATE bodies SET name = $2, document = $3, updated_at = $4 WHERE id = $1
	`, b.ID, b.Name, doc, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update body: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("body with ID %s not found", b.ID)
	}
	return nil
}

// Delete removes a body
func (s *PostgresBodyStore) Delete(id string) error {
	res, err := s.db.Exec(`DELETE FROM bodies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete body: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("body with ID %s not found", id)
	}
	return nil
}
