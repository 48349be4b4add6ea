package vectorstore

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/jurisol/jurisol/internal/domain"
)

// Memory is an in-process Store using exact cosine similarity. It serves
// development and tests where a Qdrant instance is not available.
type Memory struct {
	mu     sync.RWMutex
	dim    int
	points map[string]Point
}

func NewMemory() *Memory {
	return &Memory{points: make(map[string]Point)}
}

var _ Store = (*Memory)(nil)

func (m *Memory) Init(_ context.Context, dimension int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dim = dimension
	return nil
}

func (m *Memory) Upsert(_ context.Context, points []Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range points {
		m.points[p.ID] = p
	}
	return nil
}

func (m *Memory) Search(_ context.Context, vector []float64, topK int, filter map[string]string) ([]domain.RetrievedDocument, error) {
	if topK <= 0 {
		topK = 5
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	type scored struct {
		point Point
		score float64
	}
	candidates := make([]scored, 0, len(m.points))
	for _, p := range m.points {
		if !matchesFilter(p.Metadata, filter) {
			continue
		}
		candidates = append(candidates, scored{point: p, score: cosine(vector, p.Vector)})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}

	docs := make([]domain.RetrievedDocument, 0, len(candidates))
	for _, c := range candidates {
		meta := make(map[string]string, len(c.point.Metadata))
		for k, v := range c.point.Metadata {
			meta[k] = v
		}
		docs = append(docs, domain.RetrievedDocument{
			Content:  c.point.Content,
			Metadata: meta,
			Score:    c.score,
		})
	}
	return docs, nil
}

func matchesFilter(meta, filter map[string]string) bool {
	for k, v := range filter {
		if meta[k] != v {
			return false
		}
	}
	return true
}

func cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
