package recommend

import (
	"context"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// SimilarityMatrix is a square, symmetric matrix of cosine similarities
// indexed by the student order of the GradeMatrix it was computed from.
type SimilarityMatrix struct {
	n      int
	values []float64
}

// Size returns the number of students.
func (s *SimilarityMatrix) Size() int { return s.n }

// At returns sim(i, j).
func (s *SimilarityMatrix) At(i, j int) float64 {
	return s.values[i*s.n+j]
}

// ComputeSimilarity computes pairwise cosine similarity between the grade
// vectors of m. Similarity involving a zero vector is 0, including on the
// diagonal; the diagonal of a non-zero vector is exactly 1.
//
// Rows are computed concurrently by at most workers goroutines; workers <= 0
// uses GOMAXPROCS. Returns ErrInsufficientData when m has fewer than two
// students.
func ComputeSimilarity(ctx context.Context, m *GradeMatrix, workers int) (*SimilarityMatrix, error) {
	n := m.NumStudents()
	if n < 2 {
		return nil, ErrInsufficientData
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	norms := make([]float64, n)
	for i, row := range m.rows {
		norms[i] = math.Sqrt(dot(row, row))
	}

	sim := &SimilarityMatrix{n: n, values: make([]float64, n*n)}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// Row i owns every cell (i, j) and (j, i) with j >= i, so no
			// two goroutines write the same cell.
			for j := i; j < n; j++ {
				v := cosine(m.rows[i], m.rows[j], norms[i], norms[j])
				if i == j && norms[i] > 0 {
					v = 1
				}
				sim.values[i*n+j] = v
				sim.values[j*n+i] = v
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return sim, nil
}

func cosine(a, b []float64, normA, normB float64) float64 {
	if normA == 0 || normB == 0 {
		return 0
	}
	v := dot(a, b) / (normA * normB)
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	}
	return v
}

func dot(a, b []float64) float64 {
	var sum float64
	for k := range a {
		sum += a[k] * b[k]
	}
	return sum
}
