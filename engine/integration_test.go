//go:build integration
// +build integration

package engine_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/liamcoop/quorum/body"
	"github.com/liamcoop/quorum/engine"

	_ "github.com/lib/pq"
)

// setupTestDB creates a PostgreSQL container and returns a connection
func setupTestDB(t *testing.T) (*sql.DB, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "quorum_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithStartupTimeout(60 * time.Second),
	}

	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}

	host, err := pgContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := pgContainer.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	connStr := fmt.Sprintf("host=%s port=%s user=test password=test dbname=quorum_test sslmode=disable", host, port.Port())

	var db *sql.DB
	for i := 0; i < 30; i++ {
		db, err = sql.Open("postgres", connStr)
		if err == nil {
			err = db.Ping()
			if err == nil {
				break
			}
		}
		time.Sleep(time.Second)
	}
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	migrationSQL, err := os.ReadFile(filepath.Join("..", "migrations", "000001_initial_schema.up.sql"))
	if err != nil {
		t.Fatalf("Failed to read migration file: %v", err)
	}
	if _, err := db.Exec(string(migrationSQL)); err != nil {
		t.Fatalf("Failed to run migration: %v", err)
	}

	cleanup := func() {
		db.Close()
		pgContainer.Terminate(ctx)
	}
	return db, cleanup
}

func testBody(t *testing.T, id string) *body.GoverningBody {
	t.Helper()
	doc := fmt.Sprintf(`{
		"id": %q,
		"name": "Test Parliament",
		"metrics": {"seats": {"label": "Seats", "default": true}},
		"groups": [
			{"id": "a", "values": {"seats": 60}},
			{"id": "b", "values": {"seats": 40}}
		],
		"rules": [
			{"id": "majority", "name": "Majority", "conditions": [
				{"kind": "sum", "metric": "seats", "op": ">", "threshold": {"kind": "fractionOfTotal", "value": 0.5}}
			]}
		]
	}`, id)

	var b body.GoverningBody
	if err := json.Unmarshal([]byte(doc), &b); err != nil {
		t.Fatalf("failed to decode test body: %v", err)
	}
	return &b
}

func TestPostgresBodyStore(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := engine.NewPostgresBodyStore(db)

	b := testBody(t, "p1")
	if err := store.Add(b); err != nil {
		t.Fatalf("Add() failed: %v", err)
	}
	if err := store.Add(testBody(t, "p1")); err == nil {
		t.Error("Add() should enforce unique ids")
	}

	got, err := store.Get("p1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Name != "Test Parliament" {
		t.Errorf("Get().Name = %q", got.Name)
	}

	// The document round-trips with metric order and rules intact
	if metric, ok := got.DefaultMetric(); !ok || metric != "seats" {
		t.Errorf("DefaultMetric() = (%q, %v), want (seats, true)", metric, ok)
	}
	if len(got.Rules) != 1 || got.Rules[0].ID != "majority" {
		t.Errorf("rules did not survive the round trip: %+v", got.Rules)
	}
	if sum := body.Sum(got.Groups, "seats"); sum != 100 {
		t.Errorf("Sum(seats) after round trip = %v, want 100", sum)
	}

	if err := store.Add(testBody(t, "p2")); err != nil {
		t.Fatalf("Add(p2) failed: %v", err)
	}
	bodies, err := store.List()
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(bodies) != 2 || bodies[0].ID != "p1" || bodies[1].ID != "p2" {
		t.Errorf("List() order wrong: %v, %v", bodies[0].ID, bodies[1].ID)
	}

	b.Name = "Renamed"
	if err := store.Update(b); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	got, _ = store.Get("p1")
	if got.Name != "Renamed" {
		t.Errorf("after Update, Name = %q", got.Name)
	}
	if err := store.Update(testBody(t, "missing")); err == nil {
		t.Error("Update() of a missing body should fail")
	}

	if err := store.Delete("p1"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := store.Get("p1"); err == nil {
		t.Error("Get() after Delete should fail")
	}
	if err := store.Delete("p1"); err == nil {
		t.Error("Delete() of a missing body should fail")
	}
}
