package recommend

// Evaluation scores a recommendation list against the courses a student
// actually enrolled in.
type Evaluation struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// Evaluate computes precision, recall and F1 of recommended against enrolled.
// Duplicates in either list are counted once. Empty lists score zero.
func Evaluate(enrolled, recommended []string) Evaluation {
	enrolledSet := NewCourseSet(enrolled...)
	recommendedSet := NewCourseSet(recommended...)

	hits := 0
	for code := range recommendedSet {
		if enrolledSet.Contains(code) {
			hits++
		}
	}

	var e Evaluation
	if len(recommendedSet) > 0 {
		e.Precision = float64(hits) / float64(len(recommendedSet))
	}
	if len(enrolledSet) > 0 {
		e.Recall = float64(hits) / float64(len(enrolledSet))
	}
	if e.Precision+e.Recall > 0 {
		e.F1 = 2 * e.Precision * e.Recall / (e.Precision + e.Recall)
	}
	return e
}

// MeanEvaluation averages evaluations field by field.
func MeanEvaluation(evals []Evaluation) Evaluation {
	if len(evals) == 0 {
		return Evaluation{}
	}
	var sum Evaluation
	for _, e := range evals {
		sum.Precision += e.Precision
		sum.Recall += e.Recall
		sum.F1 += e.F1
	}
	n := float64(len(evals))
	return Evaluation{Precision: sum.Precision / n, Recall: sum.Recall / n, F1: sum.F1 / n}
}
