// Package source discovers and fetches governing-body JSON documents
// from a remote "config source": a base URL serving either a JSON
// manifest of {file,label} entries or a plain HTML directory listing.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/liamcoop/quorum/body"
	"github.com/liamcoop/quorum/internal/logger"
)

// DefaultManifestFile is the manifest looked up under the base URL
// before falling back to directory-listing discovery
const DefaultManifestFile = "bodies.json"

// Entry is one discoverable body document
type Entry struct {
	File  string `json:"file"`
	Label string `json:"label,omitempty"`
}

// Source resolves and fetches body documents from a base URL
type Source struct {
	base     *url.URL
	manifest string
	client   *http.Client
}

// New creates a source for the given base URL. A nil client gets a
// default with a request timeout.
func New(baseURL string, client *http.Client) (*Source, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid source URL %q: %w", baseURL, err)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	return &Source{
		base:     base,
		manifest: DefaultManifestFile,
		client:   client,
	}, nil
}

// Discover resolves the list of available body documents: the JSON
// manifest if the base URL serves one, else the links of an HTML
// directory listing.
func (s *Source) Discover(ctx context.Context) ([]Entry, error) {
	entries, err := s.fromManifest(ctx)
	if err == nil {
		return entries, nil
	}
	logger.Debug("manifest unavailable, trying directory listing",
		"url", s.base.String(), "error", err.Error())

	entries, listErr := s.fromListing(ctx)
	if listErr != nil {
		return nil, fmt.Errorf("discovery failed: manifest: %v; listing: %w", err, listErr)
	}
	return entries, nil
}

// fromManifest fetches and parses the JSON manifest. The manifest is a
// JSON array of entries; entries without a label get one derived from
// the file name.
func (s *Source) fromManifest(ctx context.Context) ([]Entry, error) {
	data, err := s.get(ctx, s.manifest)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}

	out := entries[:0]
	for _, e := range entries {
		if e.File == "" {
			continue
		}
		if e.Label == "" {
			e.Label = labelFromFile(e.File)
		}
		out = append(out, e)
	}
	return out, nil
}

// Fetch retrieves and decodes one body document. The document's id
// defaults to its file name when absent.
func (s *Source) Fetch(ctx context.Context, e Entry) (*body.GoverningBody, error) {
	data, err := s.get(ctx, e.File)
	if err != nil {
		return nil, err
	}

	var b body.GoverningBody
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("invalid body document %q: %w", e.File, err)
	}

	if b.ID == "" {
		b.ID = strings.TrimSuffix(path.Base(e.File), path.Ext(e.File))
	}
	if b.Name == "" {
		b.Name = e.Label
	}
	return &b, nil
}

// Load discovers and fetches all bodies. Documents that fail to fetch,
// decode or validate are skipped with a warning; only discovery itself
// failing is an error.
func (s *Source) Load(ctx context.Context) ([]*body.GoverningBody, error) {
	entries, err := s.Discover(ctx)
	if err != nil {
		return nil, err
	}

	bodies := make([]*body.GoverningBody, 0, len(entries))
	for _, e := range entries {
		b, err := s.Fetch(ctx, e)
		if err == nil {
			err = b.Validate()
		}
		if err != nil {
			logger.SkippedDocuments.Add(1)
			logger.Warn("skipping body document", "file", e.File, "error", err.Error())
			continue
		}
		bodies = append(bodies, b)
	}
	return bodies, nil
}

func (s *Source) get(ctx context.Context, file string) ([]byte, error) {
	ref, err := url.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("invalid file reference %q: %w", file, err)
	}
	u := s.base.ResolveReference(ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", u, resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func labelFromFile(file string) string {
	name := strings.TrimSuffix(path.Base(file), path.Ext(file))
	return strings.NewReplacer("-", " ", "_", " ").Replace(name)
}
