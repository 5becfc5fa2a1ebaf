package recommend

import (
	"sort"
)

// Default ranking parameters.
const (
	DefaultKNeighbors = 10
	DefaultTopN       = 10
)

// Params controls the ranker. Non-positive values fall back to the defaults.
type Params struct {
	KNeighbors int
	TopN       int
}

// NewDefaultParams returns Params with the default neighbor count and list size.
func NewDefaultParams() Params {
	return Params{KNeighbors: DefaultKNeighbors, TopN: DefaultTopN}
}

func (p Params) withDefaults() Params {
	if p.KNeighbors <= 0 {
		p.KNeighbors = DefaultKNeighbors
	}
	if p.TopN <= 0 {
		p.TopN = DefaultTopN
	}
	return p
}

// CourseSet is a set of course codes.
type CourseSet map[string]struct{}

// NewCourseSet builds a CourseSet from codes.
func NewCourseSet(codes ...string) CourseSet {
	s := make(CourseSet, len(codes))
	for _, c := range codes {
		s[c] = struct{}{}
	}
	return s
}

// Add inserts codes into the set.
func (s CourseSet) Add(codes ...string) {
	for _, c := range codes {
		s[c] = struct{}{}
	}
}

// Contains reports whether code is in the set. A nil set contains nothing.
func (s CourseSet) Contains(code string) bool {
	_, ok := s[code]
	return ok
}

// Candidate is a ranked course with the data behind its rank.
type Candidate struct {
	CourseCode string
	// Score is the mean grade of the selected neighbors, counting neighbors
	// who did not take the course as zero.
	Score float64
	// Contributors is the number of selected neighbors with a non-zero grade.
	Contributors int
	// Neighbors is the number of neighbors the mean was taken over.
	Neighbors int
}

// Recommend returns the top course codes for studentID. See RecommendScored.
func Recommend(studentID string, m *GradeMatrix, sim *SimilarityMatrix, excluded CourseSet, p Params) []string {
	scored := RecommendScored(studentID, m, sim, excluded, p)
	codes := make([]string, len(scored))
	for i, c := range scored {
		codes[i] = c.CourseCode
	}
	return codes
}

// RecommendScored ranks every course studentID has not taken and that is
// not excluded by the mean grade of the student's KNeighbors most similar
// peers. Neighbors are picked by similarity descending with ties broken by
// matrix index ascending; courses are ranked by mean descending with ties
// broken by course code ascending. At most TopN candidates are returned.
//
// An unknown student, or a similarity matrix that does not match m, yields
// an empty result.
func RecommendScored(studentID string, m *GradeMatrix, sim *SimilarityMatrix, excluded CourseSet, p Params) []Candidate {
	if m == nil || sim == nil || sim.Size() != m.NumStudents() {
		return nil
	}
	target, ok := m.StudentIndex(studentID)
	if !ok {
		return nil
	}
	p = p.withDefaults()

	neighbors := nearestNeighbors(sim, target, p.KNeighbors)
	if len(neighbors) == 0 {
		return nil
	}

	own := m.rows[target]
	candidates := make([]Candidate, 0, len(m.courses))
	for j, code := range m.courses {
		if own[j] != 0 || excluded.Contains(code) {
			continue
		}
		var sum float64
		contributors := 0
		for _, nb := range neighbors {
			g := m.rows[nb][j]
			sum += g
			if g != 0 {
				contributors++
			}
		}
		candidates = append(candidates, Candidate{
			CourseCode:   code,
			Score:        sum / float64(len(neighbors)),
			Contributors: contributors,
			Neighbors:    len(neighbors),
		})
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		if candidates[a].Score != candidates[b].Score {
			return candidates[a].Score > candidates[b].Score
		}
		return candidates[a].CourseCode < candidates[b].CourseCode
	})

	if len(candidates) > p.TopN {
		candidates = candidates[:p.TopN]
	}
	return candidates
}

// nearestNeighbors returns up to k row indices other than target ordered by
// similarity descending, then index ascending.
func nearestNeighbors(sim *SimilarityMatrix, target, k int) []int {
	idx := make([]int, 0, sim.Size()-1)
	for i := 0; i < sim.Size(); i++ {
		if i != target {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		sa, sb := sim.At(target, idx[a]), sim.At(target, idx[b])
		if sa != sb {
			return sa > sb
		}
		return idx[a] < idx[b]
	})
	if len(idx) > k {
		idx = idx[:k]
	}
	return idx
}
