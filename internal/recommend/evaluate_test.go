package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		enrolled    []string
		recommended []string
		want        Evaluation
	}{
		{name: "no data", want: Evaluation{}},
		{name: "no hits", enrolled: []string{"A"}, recommended: []string{"B", "C"}, want: Evaluation{}},
		{
			name:        "half hits",
			enrolled:    []string{"A", "B"},
			recommended: []string{"A", "C", "D", "E"},
			want:        Evaluation{Precision: 0.25, Recall: 0.5, F1: 1.0 / 3.0},
		},
		{
			name:        "duplicates counted once",
			enrolled:    []string{"A", "A"},
			recommended: []string{"A", "A"},
			want:        Evaluation{Precision: 1, Recall: 1, F1: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Evaluate(tt.enrolled, tt.recommended)
			assert.InDelta(t, tt.want.Precision, got.Precision, 1e-9)
			assert.InDelta(t, tt.want.Recall, got.Recall, 1e-9)
			assert.InDelta(t, tt.want.F1, got.F1, 1e-9)
		})
	}
}

func TestMeanEvaluation(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Evaluation{}, MeanEvaluation(nil))
	got := MeanEvaluation([]Evaluation{{Precision: 1, Recall: 0.5, F1: 0.6}, {Precision: 0, Recall: 0.5, F1: 0.2}})
	assert.InDelta(t, 0.5, got.Precision, 1e-9)
	assert.InDelta(t, 0.5, got.Recall, 1e-9)
	assert.InDelta(t, 0.4, got.F1, 1e-9)
}
