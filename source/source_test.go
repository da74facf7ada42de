package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const bundestag = `{
	"id": "bundestag",
	"name": "Bundestag",
	"metrics": {"seats": {"label": "Seats", "default": true}},
	"groups": [
		{"id": "g1", "values": {"seats": 300}},
		{"id": "g2", "values": {"seats": 200}}
	],
	"rules": [{"id": "majority", "conditions": [
		{"kind": "sum", "metric": "seats", "op": ">", "threshold": {"kind": "fractionOfTotal", "value": 0.5}}
	]}]
}`

func serve(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	for path, payload := range routes {
		body := payload
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		})
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestDiscoverFromManifest(t *testing.T) {
	srv := serve(t, map[string]string{
		"/bodies.json": `[
			{"file": "bundestag.json", "label": "Bundestag"},
			{"file": "senate.json"},
			{"label": "entry without a file is dropped"}
		]`,
	})

	src, err := New(srv.URL, nil)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	entries, err := src.Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Discover() = %d entries, want 2", len(entries))
	}
	if entries[0].File != "bundestag.json" || entries[0].Label != "Bundestag" {
		t.Errorf("entries[0] = %+v", entries[0])
	}
	// Missing labels are derived from the file name
	if entries[1].Label != "senate" {
		t.Errorf("entries[1].Label = %q, want senate", entries[1].Label)
	}
}

func TestDiscoverFallsBackToListing(t *testing.T) {
	srv := serve(t, map[string]string{
		"/": `<html><body><h1>Index of /</h1>
			<a href="../">Parent</a>
			<a href="bundestag.json">bundestag.json</a>
			<a href="senate.json">senate.json</a>
			<a href="bundestag.json">duplicate</a>
			<a href="notes.txt">notes.txt</a>
			<a href="https://elsewhere.example/other.json">foreign</a>
			</body></html>`,
	})

	src, err := New(srv.URL, nil)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	entries, err := src.Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Discover() = %v, want bundestag.json and senate.json", entries)
	}
	if entries[0].File != "bundestag.json" || entries[1].File != "senate.json" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestFetch(t *testing.T) {
	srv := serve(t, map[string]string{
		"/bundestag.json": bundestag,
		"/unnamed.json":   `{"groups": [{"id": "x"}]}`,
	})

	src, err := New(srv.URL, nil)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	b, err := src.Fetch(context.Background(), Entry{File: "bundestag.json"})
	if err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}
	if b.ID != "bundestag" || len(b.Groups) != 2 {
		t.Errorf("unexpected body: id=%q groups=%d", b.ID, len(b.Groups))
	}

	// Documents without an id get one from the file name, and without a
	// name get the entry label
	b, err = src.Fetch(context.Background(), Entry{File: "unnamed.json", Label: "Unnamed Council"})
	if err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}
	if b.ID != "unnamed" {
		t.Errorf("ID = %q, want unnamed", b.ID)
	}
	if b.Name != "Unnamed Council" {
		t.Errorf("Name = %q, want Unnamed Council", b.Name)
	}

	if _, err := src.Fetch(context.Background(), Entry{File: "missing.json"}); err == nil {
		t.Error("Fetch() of a missing file should fail")
	}
}

func TestLoadSkipsBadDocuments(t *testing.T) {
	srv := serve(t, map[string]string{
		"/bodies.json": `[
			{"file": "bundestag.json"},
			{"file": "broken.json"},
			{"file": "invalid.json"},
			{"file": "missing.json"}
		]`,
		"/bundestag.json": bundestag,
		"/broken.json":    `{not json`,
		"/invalid.json":   `{"id": "inv", "groups": [{"id": "a"}, {"id": "a"}]}`,
	})

	src, err := New(srv.URL, nil)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	bodies, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if len(bodies) != 1 || bodies[0].ID != "bundestag" {
		t.Errorf("Load() = %d bodies, want just bundestag", len(bodies))
	}
}

func TestLoadFailsWhenDiscoveryFails(t *testing.T) {
	srv := serve(t, map[string]string{})
	// The mux serves 404 for the manifest and for the listing

	src, err := New(srv.URL+"/nowhere/", nil)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if _, err := src.Load(context.Background()); err == nil {
		t.Error("Load() should fail when neither manifest nor listing exist")
	}
}
