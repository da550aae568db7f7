package metrics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/clfeval/pkg/errors"
)

func vec(xs ...float64) *mat.VecDense {
	if len(xs) == 0 {
		return nil
	}
	return mat.NewVecDense(len(xs), xs)
}

// captureWarnings は テスト中の errors.Warn を横取りする
func captureWarnings(t *testing.T) *[]error {
	t.Helper()
	var got []error
	prev := errors.SetWarningHandler(func(w error) { got = append(got, w) })
	t.Cleanup(func() { errors.SetWarningHandler(prev) })
	return &got
}

func TestAccuracy(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   []float64
		yPred   []float64
		want    float64
		wantErr bool
	}{
		{
			name:  "Ten labels with seven correct",
			yTrue: []float64{0, 1, 0, 1, 1, 0, 0, 1, 1, 0},
			yPred: []float64{0, 1, 1, 1, 0, 0, 0, 1, 0, 0},
			want:  0.7,
		},
		{
			name:  "Churn scenario",
			yTrue: []float64{0, 0, 0, 1, 1, 1, 1, 0},
			yPred: []float64{0, 0, 1, 1, 1, 0, 1, 0},
			want:  0.75,
		},
		{
			name:  "Perfect",
			yTrue: []float64{1, 0, 1},
			yPred: []float64{1, 0, 1},
			want:  1.0,
		},
		{
			name:    "Dimension mismatch",
			yTrue:   []float64{0, 1},
			yPred:   []float64{0},
			wantErr: true,
		},
		{
			name:    "Empty vectors",
			wantErr: true,
		},
		{
			name:    "Non-integer labels",
			yTrue:   []float64{0, 0.5, 1},
			yPred:   []float64{0, 1, 1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Accuracy(vec(tt.yTrue...), vec(tt.yPred...))
			if (err != nil) != tt.wantErr {
				t.Errorf("Accuracy() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Accuracy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAccuracyMatchesDefinition(t *testing.T) {
	yTrue := []float64{0, 1, 1, 0, 1, 0, 1, 1, 0, 0, 1, 0}
	yPred := []float64{1, 1, 0, 0, 1, 1, 1, 0, 0, 0, 0, 0}

	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}

	got, err := Accuracy(vec(yTrue...), vec(yPred...))
	if err != nil {
		t.Fatal(err)
	}
	if want := float64(correct) / float64(len(yTrue)); got != want {
		t.Errorf("Accuracy() = %v, want %v", got, want)
	}
}

func TestLabels(t *testing.T) {
	got, err := Labels(vec(2, 0, 2), vec(1, 1, 0))
	if err != nil {
		t.Fatal(err)
	}
	want := []int{0, 1, 2}
	if len(got) != len(want) {
		t.Fatalf("Labels() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Labels() = %v, want %v", got, want)
		}
	}

	_, err = Labels(vec(0, math.NaN()), vec(0, 1))
	var valErr *errors.ValueError
	if !errors.As(err, &valErr) {
		t.Errorf("expected ValueError for NaN label, got %v", err)
	}
}

func TestConfusionMatrixOf(t *testing.T) {
	yTrue := vec(0, 0, 0, 1, 1, 1, 1, 0)
	yPred := vec(0, 0, 1, 1, 1, 0, 1, 0)

	cm, err := ConfusionMatrixOf(yTrue, yPred, nil)
	if err != nil {
		t.Fatal(err)
	}

	want := [][]int{{3, 1}, {1, 3}}
	for i := range want {
		for j := range want[i] {
			if cm.Counts[i][j] != want[i][j] {
				t.Fatalf("Counts = %v, want %v", cm.Counts, want)
			}
		}
	}
	if cm.Total() != yTrue.Len() {
		t.Errorf("Total() = %d, want %d", cm.Total(), yTrue.Len())
	}
	if cm.Max() != 3 {
		t.Errorf("Max() = %d, want 3", cm.Max())
	}
	if got := cm.Dense().At(0, 1); got != 1 {
		t.Errorf("Dense().At(0,1) = %v, want 1", got)
	}
}

func TestConfusionMatrixFixedLabels(t *testing.T) {
	// 予測も真値も0のみでも、指定したラベル順で2×2になる
	cm, err := ConfusionMatrixOf(vec(0, 0, 0), vec(0, 0, 0), []int{0, 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(cm.Counts) != 2 || cm.Counts[0][0] != 3 || cm.Counts[1][1] != 0 {
		t.Errorf("Counts = %v", cm.Counts)
	}

	if _, err := ConfusionMatrixOf(vec(0, 1), vec(0, 1), []int{0, 0}); err == nil {
		t.Error("expected error for duplicate labels")
	}
}

func TestConfusionMatrixSumInvariant(t *testing.T) {
	cases := [][2][]float64{
		{{0, 1, 1, 0, 1}, {1, 1, 0, 0, 1}},
		{{1, 1, 1}, {0, 0, 0}},
		{{0, 2, 1, 2, 0, 1}, {0, 1, 1, 2, 2, 0}},
	}
	for _, c := range cases {
		cm, err := ConfusionMatrixOf(vec(c[0]...), vec(c[1]...), nil)
		if err != nil {
			t.Fatal(err)
		}
		if cm.Total() != len(c[0]) {
			t.Errorf("Total() = %d, want %d", cm.Total(), len(c[0]))
		}
	}
}

func TestMatthewsCorrCoef(t *testing.T) {
	tests := []struct {
		name  string
		yTrue []float64
		yPred []float64
		want  float64
	}{
		{
			name:  "Churn scenario",
			yTrue: []float64{0, 0, 0, 1, 1, 1, 1, 0},
			yPred: []float64{0, 0, 1, 1, 1, 0, 1, 0},
			want:  0.5,
		},
		{
			name:  "Binary formula",
			yTrue: []float64{1, 1, 1, 0, 0, 0},
			yPred: []float64{1, 1, 0, 0, 0, 1},
			// TP=2 TN=2 FP=1 FN=1 -> (4-1)/sqrt(3*3*3*3)
			want: 1.0 / 3.0,
		},
		{
			name:  "Total disagreement",
			yTrue: []float64{0, 1, 0, 1},
			yPred: []float64{1, 0, 1, 0},
			want:  -1,
		},
		{
			name:  "Single predicted class",
			yTrue: []float64{0, 1, 0, 1, 1},
			yPred: []float64{0, 0, 0, 0, 0},
			want:  0,
		},
		{
			name:  "Single class everywhere",
			yTrue: []float64{1, 1, 1},
			yPred: []float64{1, 1, 1},
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MatthewsCorrCoef(vec(tt.yTrue...), vec(tt.yPred...))
			if err != nil {
				t.Fatalf("MatthewsCorrCoef() error = %v", err)
			}
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("MatthewsCorrCoef() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatthewsCorrCoefMatchesBinaryFormula(t *testing.T) {
	yTrue := []float64{0, 1, 1, 0, 1, 0, 1, 1, 0, 0, 1, 0, 1}
	yPred := []float64{1, 1, 0, 0, 1, 1, 1, 0, 0, 0, 0, 0, 1}

	var tp, tn, fp, fn float64
	for i := range yTrue {
		switch {
		case yTrue[i] == 1 && yPred[i] == 1:
			tp++
		case yTrue[i] == 0 && yPred[i] == 0:
			tn++
		case yTrue[i] == 0 && yPred[i] == 1:
			fp++
		default:
			fn++
		}
	}
	want := (tp*tn - fp*fn) / math.Sqrt((tp+fp)*(tp+fn)*(tn+fp)*(tn+fn))

	got, err := MatthewsCorrCoef(vec(yTrue...), vec(yPred...))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("MatthewsCorrCoef() = %v, want %v", got, want)
	}
}

func TestPrecisionRecallFScoreSupport(t *testing.T) {
	warnings := captureWarnings(t)

	prfs, err := PrecisionRecallFScoreSupport(vec(0, 0, 0, 1, 1, 1, 1, 0), vec(0, 0, 1, 1, 1, 0, 1, 0), nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if prfs.Precision[i] != 0.75 || prfs.Recall[i] != 0.75 || prfs.F1[i] != 0.75 || prfs.Support[i] != 4 {
			t.Errorf("class %d: %+v", i, prfs)
		}
	}
	if len(*warnings) != 0 {
		t.Errorf("unexpected warnings: %v", *warnings)
	}
}

func TestPrecisionRecallFScoreSupportZeroDivision(t *testing.T) {
	warnings := captureWarnings(t)

	// クラス1は一度も予測されない
	prfs, err := PrecisionRecallFScoreSupport(vec(0, 1, 0, 1), vec(0, 0, 0, 0), nil)
	if err != nil {
		t.Fatal(err)
	}

	if prfs.Precision[1] != 0 || prfs.Recall[1] != 0 || prfs.F1[1] != 0 {
		t.Errorf("class 1 metrics should be 0: %+v", prfs)
	}
	if math.Abs(prfs.Precision[0]-0.5) > 1e-12 || prfs.Recall[0] != 1 {
		t.Errorf("class 0 metrics: precision=%v recall=%v", prfs.Precision[0], prfs.Recall[0])
	}

	if len(*warnings) != 1 {
		t.Fatalf("expected one warning, got %v", *warnings)
	}
	var w *errors.UndefinedMetricWarning
	if !errors.As((*warnings)[0], &w) || w.Metric != "Precision" {
		t.Errorf("unexpected warning %v", (*warnings)[0])
	}
}

func TestPrecisionRecallFScoreSupportAbsentLabel(t *testing.T) {
	warnings := captureWarnings(t)

	// ラベル2はどちらにも現れない
	prfs, err := PrecisionRecallFScoreSupport(vec(0, 1), vec(0, 1), []int{0, 1, 2})
	if err != nil {
		t.Fatal(err)
	}
	if prfs.F1[2] != 0 || prfs.Support[2] != 0 {
		t.Errorf("absent label metrics: %+v", prfs)
	}
	if len(*warnings) != 3 {
		t.Errorf("expected precision, recall and F-score warnings, got %v", *warnings)
	}
}
