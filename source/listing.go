package source

import (
	"bytes"
	"context"
	"net/url"
	"path"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// fromListing discovers body documents by scraping the anchors of an
// HTML directory listing served at the base URL. Only .json files on
// the same host are considered; the manifest file itself is excluded.
func (s *Source) fromListing(ctx context.Context) ([]Entry, error) {
	data, err := s.get(ctx, "")
	if err != nil {
		return nil, err
	}

	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var entries []Entry

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if file, ok := s.listedFile(href(n)); ok && !seen[file] {
				seen[file] = true
				entries = append(entries, Entry{File: file, Label: labelFromFile(file)})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	// Listings come in whatever order the server emits; sort for a
	// stable discovery index.
	sort.Slice(entries, func(i, j int) bool { return entries[i].File < entries[j].File })
	return entries, nil
}

// listedFile reduces an anchor href to a fetchable file name, rejecting
// navigation links, foreign hosts and non-JSON files.
func (s *Source) listedFile(ref string) (string, bool) {
	if ref == "" {
		return "", false
	}

	u, err := url.Parse(ref)
	if err != nil {
		return "", false
	}
	if u.Host != "" && u.Host != s.base.Host {
		return "", false
	}

	file := path.Base(u.Path)
	if !strings.HasSuffix(file, ".json") || file == s.manifest {
		return "", false
	}
	return file, true
}

func href(n *html.Node) string {
	for _, attr := range n.Attr {
		if attr.Key == "href" {
			return attr.Val
		}
	}
	return ""
}
