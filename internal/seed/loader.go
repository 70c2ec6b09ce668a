package seed

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"catalog-api/internal/model"
	"catalog-api/internal/validation"

	"github.com/rs/zerolog"
)

// fileLoader implements Loader for seed files on the local file system.
type fileLoader struct {
	validator validation.ProductValidator
	logger    zerolog.Logger
}

// NewFileLoader creates a new file-based seed loader. Paths ending in .gz are
// read through a gzip reader.
func NewFileLoader(validator validation.ProductValidator, logger zerolog.Logger) Loader {
	return &fileLoader{
		validator: validator,
		logger:    logger.With().Str("component", "seed-loader").Logger(),
	}
}

// Load reads a seed file and returns its products.
func (l *fileLoader) Load(ctx context.Context, filePath string) ([]model.Product, error) {
	l.logger.Info().Str("file", filePath).Msg("loading seed file")

	file, err := os.Open(filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to open seed file")
		return nil, fmt.Errorf("failed to open seed file %s: %w", filePath, err)
	}
	defer file.Close()

	reader, closeReader, err := maybeGunzip(file, filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to create gzip reader")
		return nil, err
	}
	defer closeReader()

	products, err := decode(ctx, reader, l.validator, filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("error reading seed file")
		return nil, err
	}

	l.logger.Info().
		Str("file", filePath).
		Int("products_loaded", len(products)).
		Msg("seed file loaded successfully")

	return products, nil
}

// maybeGunzip wraps r in a gzip reader when name ends in .gz.
func maybeGunzip(r io.Reader, name string) (io.Reader, func(), error) {
	if !strings.HasSuffix(name, ".gz") {
		return r, func() {}, nil
	}

	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create gzip reader for %s: %w", name, err)
	}
	return gz, func() { _ = gz.Close() }, nil
}
