package faceid

import (
	"context"
	"fmt"
	"math"

	"github.com/your-org/sentinel/internal/models"
	"github.com/your-org/sentinel/internal/observability"
	"github.com/your-org/sentinel/internal/storage"
)

// FaceIndex is the slice of the store the matcher needs.
type FaceIndex interface {
	NearestFace(ctx context.Context, embedding []float32) (*storage.FaceMatch, error)
}

// MatchResult is a single nearest-neighbour answer. Match is nil when no
// embeddings are enrolled. Confident is true only when the cosine distance
// falls under the configured threshold; callers must not treat an
// unconfident match as an identification.
type MatchResult struct {
	Match     *storage.FaceMatch `json:"match,omitempty"`
	Confident bool               `json:"confident"`
}

type Matcher struct {
	index     FaceIndex
	threshold float64
}

func NewMatcher(index FaceIndex, threshold float64) *Matcher {
	return &Matcher{index: index, threshold: threshold}
}

// Match finds the nearest enrolled face for a probe embedding.
func (m *Matcher) Match(ctx context.Context, embedding []float32) (*MatchResult, error) {
	if len(embedding) != models.EmbeddingDim {
		return nil, fmt.Errorf("embedding must have %d dimensions, got %d", models.EmbeddingDim, len(embedding))
	}

	match, err := m.index.NearestFace(ctx, embedding)
	if err != nil {
		return nil, fmt.Errorf("nearest face: %w", err)
	}
	if match == nil {
		observability.FaceSearches.WithLabelValues("no_enrollments").Inc()
		return &MatchResult{}, nil
	}

	confident := match.Distance < m.threshold
	if confident {
		observability.FaceSearches.WithLabelValues("confident").Inc()
	} else {
		observability.FaceSearches.WithLabelValues("unconfident").Inc()
	}
	return &MatchResult{Match: match, Confident: confident}, nil
}

// CosineDistance computes 1 - cosine similarity between two vectors, the
// same measure pgvector's <=> operator uses.
func CosineDistance(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}
