// Command jurisol-ingest loads law JSON files into the vector store.
// Each input file holds an array of objects; every object becomes one
// document whose fields are stored as metadata and joined into the
// embedded content.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/jurisol/jurisol/internal/adapter/embedding"
	"github.com/jurisol/jurisol/internal/adapter/llm"
	"github.com/jurisol/jurisol/internal/config"
	"github.com/jurisol/jurisol/internal/vectorstore"
)

const batchSize = 50

func main() {
	_ = godotenv.Load()

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <law-file.json> [more.json ...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	var embedder embedding.Embedder
	if cfg.Mode == llm.ModeMock {
		embedder = embedding.NewLocal(256)
	} else {
		embedder = embedding.NewOpenAI(cfg.EmbeddingAPIKey, cfg.EmbeddingBaseURL, cfg.EmbeddingModel)
	}

	var store vectorstore.Store
	switch cfg.VectorStore {
	case "memory":
		log.Fatal("ingestion into the in-memory store is pointless; configure qdrant")
	default:
		store = vectorstore.NewQdrant(vectorstore.QdrantConfig{
			URL:        cfg.QdrantURL,
			APIKey:     cfg.QdrantAPIKey,
			Collection: cfg.QdrantCollection,
		})
	}

	ctx := context.Background()
	total := 0
	for _, path := range flag.Args() {
		n, err := ingestFile(ctx, store, embedder, path)
		if err != nil {
			log.Fatalf("Failed to ingest %s: %v", path, err)
		}
		log.Printf("Ingested %d documents from %s", n, path)
		total += n
	}
	log.Printf("Done: %d documents in collection %s", total, cfg.QdrantCollection)
}

func ingestFile(ctx context.Context, store vectorstore.Store, embedder embedding.Embedder, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	var entries []map[string]any
	if err := json.Unmarshal(data, &entries); err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}

	initialized := false
	batch := make([]vectorstore.Point, 0, batchSize)
	count := 0
	for i, entry := range entries {
		content, metadata := flatten(entry)
		if content == "" {
			log.Printf("WARN: %s entry %d is empty, skipping", path, i)
			continue
		}

		vector, err := embedder.Embed(ctx, content)
		if err != nil {
			return count, fmt.Errorf("embed entry %d: %w", i, err)
		}
		if !initialized {
			if err := store.Init(ctx, len(vector)); err != nil {
				return count, fmt.Errorf("init collection: %w", err)
			}
			initialized = true
		}

		batch = append(batch, vectorstore.Point{
			ID:       uuid.NewString(),
			Vector:   vector,
			Content:  content,
			Metadata: metadata,
		})
		if len(batch) == batchSize {
			if err := store.Upsert(ctx, batch); err != nil {
				return count, fmt.Errorf("upsert batch: %w", err)
			}
			count += len(batch)
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if err := store.Upsert(ctx, batch); err != nil {
			return count, fmt.Errorf("upsert final batch: %w", err)
		}
		count += len(batch)
	}
	return count, nil
}

// flatten joins every field of a law entry into one embeddable string and
// keeps the fields as metadata. Field order is stable so re-ingesting the
// same file produces identical content.
func flatten(entry map[string]any) (string, map[string]string) {
	keys := make([]string, 0, len(entry))
	for k := range entry {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	metadata := make(map[string]string, len(entry))
	parts := make([]string, 0, len(entry))
	for _, k := range keys {
		v := fmt.Sprintf("%v", entry[k])
		if strings.TrimSpace(v) == "" {
			continue
		}
		metadata[k] = v
		parts = append(parts, fmt.Sprintf("%s: %s", k, v))
	}
	return strings.Join(parts, " | "), metadata
}
