package knowledge

// Metric selects the vector distance function used for semantic scoring and
// for the ANN index operator class.
type Metric string

const (
	MetricCosine       Metric = "cosine"
	MetricEuclidean    Metric = "euclidean"
	MetricInnerProduct Metric = "ip"
)

// ParseMetric maps a metric name to a Metric, defaulting to cosine for
// unknown input.
func ParseMetric(s string) Metric {
	switch Metric(s) {
	case MetricEuclidean:
		return MetricEuclidean
	case MetricInnerProduct:
		return MetricInnerProduct
	default:
		return MetricCosine
	}
}

// opClass returns the pgvector operator class used when creating ANN indexes.
func (m Metric) opClass() string {
	switch m {
	case MetricEuclidean:
		return "vector_l2_ops"
	case MetricInnerProduct:
		return "vector_ip_ops"
	default:
		return "vector_cosine_ops"
	}
}

// semanticScoreExpr returns the SQL expression computing the semantic score
// for this metric, with the query vector bound as $1.
//
// Cosine distance maps to similarity as 1 - distance. Every other metric
// scores with L2 distance, which is in [0, inf) and maps monotonically into
// (0, 1] as 1 / (1 + distance); the metric choice still selects the ANN
// operator class. The <#> operator is never used for scoring: it returns the
// negated inner product, which is -1 for an exact normalized match and would
// divide the mapping by zero.
func (m Metric) semanticScoreExpr() string {
	switch m {
	case MetricEuclidean, MetricInnerProduct:
		return "1 / (1 + (embedding <-> $1))"
	default:
		return "1 - (embedding <=> $1)"
	}
}

// Entry is a single knowledge unit staged for insertion. The embedding must
// already be normalized by the caller when cosine search is intended.
type Entry struct {
	Category  string
	Tags      []string
	Content   string
	Embedding []float32
}

// StoredEntry is an entry read back from the store, including its assigned id
// and the persisted embedding.
type StoredEntry struct {
	ID        int64
	Category  string
	Tags      []string
	Content   string
	Embedding []float32
}

// SearchParams are the inputs to a hybrid search.
type SearchParams struct {
	// Vector is the query embedding; its length must equal the store dimension.
	Vector []float32

	// Text is the raw query text ranked against the lexical index.
	Text string

	// TopK limits the number of returned rows.
	TopK int

	// Category, when non-empty, restricts candidates by exact match before
	// ranking. It is a filter, not a ranking factor.
	Category string

	// Metric selects the distance function for the semantic score.
	Metric Metric

	// SemanticWeight and LexicalWeight blend the two scores into the fused
	// rank. They are not required to sum to 1.
	SemanticWeight float64
	LexicalWeight  float64

	// Threshold, when set, drops results whose fused rank falls below it.
	// It is applied after the TopK limit, so it can only shrink the result
	// set. Kept for compatibility with the established ranking behavior.
	Threshold *float64
}

// SearchResult is one ranked row of a hybrid search.
type SearchResult struct {
	ID            int64    `json:"id"`
	Category      string   `json:"category"`
	Tags          []string `json:"tags"`
	Content       string   `json:"content"`
	SemanticScore float64  `json:"semantic_score"`
	LexicalScore  float64  `json:"lexical_score"`
	Rank          float64  `json:"rank"`
}
