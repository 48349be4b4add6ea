package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"strings"
)

// LocalEmbedder maps text to a deterministic vector without any network
// calls. Tokens are hashed into a fixed number of buckets and the result is
// L2-normalized, so identical texts always embed identically and texts
// sharing vocabulary land near each other.
type LocalEmbedder struct {
	dim int
}

// NewLocal returns an offline embedder with the given dimension.
// Dimensions below 8 are raised to 8.
func NewLocal(dim int) *LocalEmbedder {
	if dim < 8 {
		dim = 8
	}
	return &LocalEmbedder{dim: dim}
}

func (e *LocalEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	vec := make([]float64, e.dim)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		sum := sha256.Sum256([]byte(tok))
		bucket := binary.BigEndian.Uint32(sum[:4]) % uint32(e.dim)
		sign := 1.0
		if sum[4]&1 == 1 {
			sign = -1.0
		}
		vec[bucket] += sign
	}
	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec, nil
}

func (e *LocalEmbedder) Dimension() int { return e.dim }
