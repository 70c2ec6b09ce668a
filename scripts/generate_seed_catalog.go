package main

import (
	"compress/gzip"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
)

// seedLine is one record of a JSON-lines seed catalogue. IDs are assigned at load time.
type seedLine struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	InStock     bool    `json:"inStock"`
}

var catalogue = map[string][]string{
	"Electronics": {"Laptop", "Monitor", "Keyboard", "Headphones", "Webcam"},
	"Appliances":  {"Coffee Maker", "Kettle", "Toaster", "Blender"},
	"Furniture":   {"Desk Chair", "Standing Desk", "Bookshelf", "Lamp"},
}

// generateSeedCatalog writes a gzipped JSON-lines catalogue for SEED_FILE.
// The output is deterministic for a given -seed.
func main() {
	out := flag.String("out", "data/seed/catalog.jsonl.gz", "output file")
	count := flag.Int("n", 100, "number of products")
	seed := flag.Uint64("seed", 1, "random seed")
	flag.Parse()

	if err := os.MkdirAll(filepath.Dir(*out), 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	if err := createSeedFile(*out, generate(*count, *seed)); err != nil {
		log.Fatalf("Failed to create %s: %v", *out, err)
	}

	fmt.Printf("Created %s with %d products\n", *out, *count)
}

func generate(count int, seed uint64) []seedLine {
	rng := rand.New(rand.NewPCG(seed, seed))
	categories := []string{"Electronics", "Appliances", "Furniture"}

	lines := make([]seedLine, 0, count)
	for i := range count {
		category := categories[rng.IntN(len(categories))]
		names := catalogue[category]
		name := names[rng.IntN(len(names))]

		lines = append(lines, seedLine{
			Name:        fmt.Sprintf("%s %d", name, i+1),
			Description: fmt.Sprintf("%s from the %s range", name, category),
			Price:       math.Round((5+rng.Float64()*995)*100) / 100,
			Category:    category,
			InStock:     rng.IntN(4) != 0,
		})
	}
	return lines
}

func createSeedFile(filePath string, lines []seedLine) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	encoder := json.NewEncoder(gzipWriter)
	for _, line := range lines {
		if err := encoder.Encode(line); err != nil {
			return fmt.Errorf("failed to write product: %w", err)
		}
	}

	return nil
}
