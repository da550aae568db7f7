package linear

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/clfeval/core/model"
	"github.com/YuminosukeSato/clfeval/pkg/errors"
)

func churnWeights() *model.ModelWeights {
	return &model.ModelWeights{
		ModelType:       ModelType,
		Version:         "1.0",
		Coefficients:    []float64{2, -1},
		Intercept:       -0.5,
		Features:        []string{"tenure", "monthly_charges"},
		Hyperparameters: map[string]interface{}{"threshold": 0.5},
		IsFitted:        true,
	}
}

func TestLogisticClassifier_Predict(t *testing.T) {
	lc, err := NewLogisticClassifierFromWeights(churnWeights())
	require.NoError(t, err)

	// scores: -0.5, 1.5, -1.5, 0.5
	X := mat.NewDense(4, 2, []float64{
		0, 0,
		1, 0,
		0, 1,
		1, 1,
	})

	pred, err := lc.Predict(X)
	require.NoError(t, err)

	r, c := pred.Dims()
	assert.Equal(t, 4, r)
	assert.Equal(t, 1, c)

	expected := []float64{0, 1, 0, 1}
	for i, want := range expected {
		if pred.At(i, 0) != want {
			t.Errorf("row %d: expected %v, got %v", i, want, pred.At(i, 0))
		}
	}
}

func TestLogisticClassifier_PredictProba(t *testing.T) {
	lc, err := NewLogisticClassifierFromWeights(churnWeights())
	require.NoError(t, err)

	X := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	proba, err := lc.PredictProba(X)
	require.NoError(t, err)

	r, c := proba.Dims()
	require.Equal(t, 2, r)
	require.Equal(t, 2, c)

	p := 1 / (1 + math.Exp(-1.5))
	assert.InDelta(t, p, proba.At(0, 1), 1e-12)
	assert.InDelta(t, 1-p, proba.At(0, 0), 1e-12)
	for i := 0; i < r; i++ {
		assert.InDelta(t, 1.0, proba.At(i, 0)+proba.At(i, 1), 1e-12)
	}
	assert.Equal(t, []int{0, 1}, lc.Classes())
}

func TestLogisticClassifier_Threshold(t *testing.T) {
	w := churnWeights()
	w.Hyperparameters["threshold"] = 0.9

	lc, err := NewLogisticClassifierFromWeights(w)
	require.NoError(t, err)
	assert.Equal(t, 0.9, lc.Threshold)

	// sigmoid(1.5) ≈ 0.82 < 0.9
	pred, err := lc.Predict(mat.NewDense(1, 2, []float64{1, 0}))
	require.NoError(t, err)
	assert.Equal(t, 0.0, pred.At(0, 0))

	// オプションは重みファイルの値より優先される
	lc, err = NewLogisticClassifierFromWeights(w, WithThreshold(0.2))
	require.NoError(t, err)
	pred, err = lc.Predict(mat.NewDense(1, 2, []float64{0, 0}))
	require.NoError(t, err)
	assert.Equal(t, 1.0, pred.At(0, 0))
}

func TestLogisticClassifier_DefaultThreshold(t *testing.T) {
	w := churnWeights()
	w.Hyperparameters = nil

	lc, err := NewLogisticClassifierFromWeights(w)
	require.NoError(t, err)
	assert.Equal(t, DefaultThreshold, lc.Threshold)
}

func TestLogisticClassifier_Errors(t *testing.T) {
	t.Run("not fitted", func(t *testing.T) {
		lc := NewLogisticClassifier()
		_, err := lc.Predict(mat.NewDense(1, 2, nil))
		var nf *errors.NotFittedError
		assert.True(t, errors.As(err, &nf))
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		lc, err := NewLogisticClassifierFromWeights(churnWeights())
		require.NoError(t, err)

		_, err = lc.Predict(mat.NewDense(2, 3, nil))
		var de *errors.DimensionError
		assert.True(t, errors.As(err, &de))
	})

	t.Run("wrong model type", func(t *testing.T) {
		w := churnWeights()
		w.ModelType = "XGBClassifier"
		_, err := NewLogisticClassifierFromWeights(w)
		var ve *errors.ValidationError
		assert.True(t, errors.As(err, &ve))
	})

	t.Run("invalid threshold", func(t *testing.T) {
		w := churnWeights()
		w.Hyperparameters["threshold"] = 1.5
		_, err := NewLogisticClassifierFromWeights(w)
		var ve *errors.ValidationError
		assert.True(t, errors.As(err, &ve))

		_, err = NewLogisticClassifierFromWeights(churnWeights(), WithThreshold(0))
		assert.True(t, errors.As(err, &ve))
	})

	t.Run("nan coefficient", func(t *testing.T) {
		w := churnWeights()
		w.Coefficients[1] = math.NaN()
		_, err := NewLogisticClassifierFromWeights(w)
		var ne *errors.NumericalInstabilityError
		assert.True(t, errors.As(err, &ne))
	})

	t.Run("nan feature", func(t *testing.T) {
		lc, err := NewLogisticClassifierFromWeights(churnWeights())
		require.NoError(t, err)

		X := mat.NewDense(3, 2, []float64{0, 0, math.NaN(), 1, 1, 1})
		_, err = lc.Predict(X)
		var ne *errors.NumericalInstabilityError
		require.True(t, errors.As(err, &ne))
		assert.Equal(t, 1, ne.Iteration)
	})

	t.Run("nil weights", func(t *testing.T) {
		_, err := NewLogisticClassifierFromWeights(nil)
		assert.Error(t, err)
	})
}

func TestLogisticClassifier_ParallelMatchesSequential(t *testing.T) {
	lc, err := NewLogisticClassifierFromWeights(churnWeights())
	require.NoError(t, err)

	n := parallelThreshold*3 + 7
	X := mat.NewDense(n, 2, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, float64(i%13)/13)
		X.Set(i, 1, float64(i%7)/7)
	}

	pred, err := lc.Predict(X)
	require.NoError(t, err)

	for i := 0; i < n; i++ {
		s := -0.5 + 2*X.At(i, 0) - X.At(i, 1)
		want := 0.0
		if s >= 0 {
			want = 1
		}
		if pred.At(i, 0) != want {
			t.Fatalf("row %d: expected %v, got %v", i, want, pred.At(i, 0))
		}
	}
}

func TestLogisticClassifier_ExportWeights(t *testing.T) {
	lc, err := NewLogisticClassifierFromWeights(churnWeights())
	require.NoError(t, err)

	w, err := lc.ExportWeights()
	require.NoError(t, err)
	assert.NoError(t, w.Validate())
	assert.Equal(t, []float64{2, -1}, w.Coefficients)
	assert.Equal(t, -0.5, w.Intercept)
	assert.Equal(t, []string{"tenure", "monthly_charges"}, w.Features)
	assert.Equal(t, []string{"tenure", "monthly_charges"}, lc.FeatureNames())

	again, err := NewLogisticClassifierFromWeights(w)
	require.NoError(t, err)
	assert.Equal(t, lc.GetWeights(), again.GetWeights())

	renamed, err := NewLogisticClassifierFromWeights(w, WithFeatureNames("a", "b"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, renamed.FeatureNames())

	_, err = NewLogisticClassifier().ExportWeights()
	assert.Error(t, err)
}

func TestSigmoidExtremes(t *testing.T) {
	assert.Equal(t, 0.5, sigmoid(0))
	assert.InDelta(t, 1.0, sigmoid(1000), 1e-12)
	assert.InDelta(t, 0.0, sigmoid(-1000), 1e-12)
	assert.False(t, math.IsNaN(sigmoid(-1000)))
}

func TestLogisticClassifier_Scaler(t *testing.T) {
	w := churnWeights()
	w.Scaler = &model.ScalerParams{Mean: []float64{10, 50}, Scale: []float64{5, 25}}

	lc, err := NewLogisticClassifierFromWeights(w)
	require.NoError(t, err)
	require.NotNil(t, lc.Scaler)

	// (15, 50) -> (1, 0) -> score 1.5
	scores, err := lc.DecisionFunction(mat.NewDense(1, 2, []float64{15, 50}))
	require.NoError(t, err)
	assert.InDelta(t, 1.5, scores.At(0, 0), 1e-12)

	exported, err := lc.ExportWeights()
	require.NoError(t, err)
	assert.Equal(t, w.Scaler.Mean, exported.Scaler.Mean)
	assert.Equal(t, w.Scaler.Scale, exported.Scaler.Scale)
}

func TestLogisticClassifier_LoadWeightsCopies(t *testing.T) {
	w := churnWeights()
	lc, err := NewLogisticClassifierFromWeights(w)
	require.NoError(t, err)

	w.Coefficients[0] = 100
	w.Features[0] = "renamed"

	assert.Equal(t, []float64{2, -1}, lc.GetWeights())
	assert.Equal(t, []string{"tenure", "monthly_charges"}, lc.FeatureNames())
}
