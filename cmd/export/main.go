// Command export pre-renders static deployment artifacts from a
// directory of governing-body JSON documents: the discovery manifest
// the server's config source consumes, and an aggregate of all
// documents for single-request consumers.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/liamcoop/quorum/body"
	"github.com/liamcoop/quorum/source"
)

const aggregateFile = "all.json"

func main() {
	var inputDir string
	var outputDir string

	flag.StringVar(&inputDir, "in", ".", "Directory containing body JSON documents")
	flag.StringVar(&outputDir, "out", "", "Output directory (defaults to the input directory)")
	flag.Parse()

	if outputDir == "" {
		outputDir = inputDir
	}

	files, err := filepath.Glob(filepath.Join(inputDir, "*.json"))
	if err != nil {
		log.Fatalf("Failed to scan %s: %v", inputDir, err)
	}
	sort.Strings(files)

	var entries []source.Entry
	var bodies []*body.GoverningBody

	for _, file := range files {
		name := filepath.Base(file)
		if name == source.DefaultManifestFile || name == aggregateFile {
			continue
		}

		data, err := os.ReadFile(file)
		if err != nil {
			log.Fatalf("Failed to read %s: %v", file, err)
		}

		var b body.GoverningBody
		if err := json.Unmarshal(data, &b); err != nil {
			log.Printf("Skipping %s: not a valid body document: %v", name, err)
			continue
		}
		if b.ID == "" {
			b.ID = strings.TrimSuffix(name, ".json")
		}
		if err := b.Validate(); err != nil {
			log.Printf("Skipping %s: %v", name, err)
			continue
		}

		label := b.Name
		if label == "" {
			label = strings.TrimSuffix(name, ".json")
		}
		entries = append(entries, source.Entry{File: name, Label: label})
		bodies = append(bodies, &b)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	writeJSON(filepath.Join(outputDir, source.DefaultManifestFile), entries)
	writeJSON(filepath.Join(outputDir, aggregateFile), bodies)

	log.Printf("Exported %d bodies to %s", len(entries), outputDir)
}

func writeJSON(path string, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal %s: %v", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		log.Fatalf("Failed to write %s: %v", path, err)
	}
}
