package config

import "fmt"

// validMetrics are the supported distance metrics for vector search.
var validMetrics = map[string]struct{}{
	MetricCosine:    {},
	MetricEuclidean: {},
	MetricIP:        {},
}

// Validate performs fail-fast validation of the loaded configuration.
// Returns the first violation found, wrapped around a sentinel error.
func (c *Config) Validate() error {
	if c.PostgresHost == "" {
		return fmt.Errorf("%w: host must not be empty", ErrInvalidPostgresHost)
	}
	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: port %d outside range 1-65535", ErrInvalidPostgresPort, c.PostgresPort)
	}
	if c.PostgresDBName == "" {
		return fmt.Errorf("%w: database name must not be empty", ErrInvalidPostgresDBName)
	}

	if _, ok := validMetrics[c.DefaultMetric]; !ok {
		return fmt.Errorf("%w: %q (expected cosine, euclidean or ip)", ErrInvalidMetric, c.DefaultMetric)
	}
	if c.DefaultTopK < 1 {
		return fmt.Errorf("%w: %d (must be >= 1)", ErrInvalidTopK, c.DefaultTopK)
	}
	if c.SemanticWeight < 0 {
		return fmt.Errorf("%w: semantic_weight %f (must be >= 0)", ErrInvalidWeight, c.SemanticWeight)
	}
	if c.LexicalWeight < 0 {
		return fmt.Errorf("%w: lexical_weight %f (must be >= 0)", ErrInvalidWeight, c.LexicalWeight)
	}

	if c.EmbeddingDim < 1 {
		return fmt.Errorf("%w: %d (must be >= 1)", ErrInvalidEmbeddingDim, c.EmbeddingDim)
	}
	if c.EmbedBatchSize < 1 {
		return fmt.Errorf("%w: %d (must be >= 1)", ErrInvalidBatchSize, c.EmbedBatchSize)
	}

	return nil
}
