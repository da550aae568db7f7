// Package linear は学習済みの重みから推論を行う線形分類器を提供する。
package linear

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/clfeval/core/model"
	"github.com/YuminosukeSato/clfeval/core/parallel"
	"github.com/YuminosukeSato/clfeval/pkg/errors"
	"github.com/YuminosukeSato/clfeval/preprocessing"
)

// ModelType は ModelWeights.ModelType に書かれるモデル名
const ModelType = "LogisticRegression"

// 並列処理の閾値（この値以下の行数では逐次処理を使用）
const parallelThreshold = 1000

// LogisticClassifier は二値ロジスティック回帰の推論モデル
//
// 学習は行わない。学習パイプラインが書き出した ModelWeights を読み込んで使う。
type LogisticClassifier struct {
	model.BaseEstimator // BaseEstimatorを埋め込み

	Weights   *mat.VecDense // 重み（係数）
	Intercept float64       // 切片
	NFeatures int           // 特徴量の数
	Threshold float64       // 陽性と判定する確率の閾値

	// Scaler が設定されていれば、スコア計算の前に特徴量を標準化する
	Scaler *preprocessing.StandardScaler

	featureNames []string
}

// NewLogisticClassifier は未学習のロジスティック分類器を作成する
func NewLogisticClassifier(opts ...Option) *LogisticClassifier {
	lc := &LogisticClassifier{Threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(lc)
	}
	return lc
}

// NewLogisticClassifierFromWeights は重みを読み込んだ分類器を作成する
func NewLogisticClassifierFromWeights(w *model.ModelWeights, opts ...Option) (*LogisticClassifier, error) {
	lc := NewLogisticClassifier()
	if err := lc.LoadWeights(w); err != nil {
		return nil, err
	}
	// 明示的なオプションは重みファイルのハイパーパラメータより優先する
	for _, opt := range opts {
		opt(lc)
	}
	if err := validateThreshold(lc.Threshold); err != nil {
		return nil, err
	}
	return lc, nil
}

// LoadWeights は ModelWeights からパラメータを設定する
func (lc *LogisticClassifier) LoadWeights(w *model.ModelWeights) error {
	if w == nil {
		return errors.NewValueError("LogisticClassifier.LoadWeights", "weights are nil")
	}
	if err := w.Validate(); err != nil {
		return err
	}
	if w.ModelType != ModelType {
		return errors.NewValidationError("model_type", "expected "+ModelType, w.ModelType)
	}
	if !w.IsFitted {
		return errors.NewNotFittedError("LogisticClassifier", "LoadWeights")
	}
	if err := errors.CheckNumericalStability("LogisticClassifier.LoadWeights", w.Coefficients); err != nil {
		return err
	}
	if err := errors.CheckScalar("LogisticClassifier.LoadWeights", w.Intercept); err != nil {
		return err
	}

	threshold := w.Float("threshold", DefaultThreshold)
	if err := validateThreshold(threshold); err != nil {
		return err
	}

	var scaler *preprocessing.StandardScaler
	if w.Scaler != nil {
		var err error
		if scaler, err = preprocessing.NewStandardScalerFromParams(w.Scaler); err != nil {
			return err
		}
	}

	// 呼び出し側の重みを後から書き換えられても影響を受けないようにする
	own := w.Clone()
	lc.Weights = mat.NewVecDense(len(own.Coefficients), own.Coefficients)
	lc.Intercept = own.Intercept
	lc.NFeatures = len(own.Coefficients)
	lc.Threshold = threshold
	lc.Scaler = scaler
	lc.featureNames = own.Features

	// モデルを学習済み状態に設定
	lc.SetFitted()
	return nil
}

// ExportWeights はモデルを ModelWeights として書き出す
func (lc *LogisticClassifier) ExportWeights() (*model.ModelWeights, error) {
	if !lc.IsFitted() {
		return nil, errors.NewNotFittedError("LogisticClassifier", "ExportWeights")
	}
	var scaler *model.ScalerParams
	if lc.Scaler != nil {
		scaler = lc.Scaler.Params()
	}
	return &model.ModelWeights{
		ModelType:       ModelType,
		Version:         "1.0",
		Coefficients:    lc.GetWeights(),
		Intercept:       lc.Intercept,
		Features:        append([]string(nil), lc.featureNames...),
		Hyperparameters: lc.GetParams(),
		Scaler:          scaler,
		IsFitted:        true,
	}, nil
}

// DecisionFunction は各行の線形スコア X·w + b を返す（n×1）
func (lc *LogisticClassifier) DecisionFunction(X mat.Matrix) (*mat.Dense, error) {
	if !lc.IsFitted() {
		return nil, errors.NewNotFittedError("LogisticClassifier", "DecisionFunction")
	}

	r, c := X.Dims()
	if r == 0 {
		return nil, errors.NewModelError("LogisticClassifier.DecisionFunction", "empty data", errors.ErrEmptyData)
	}
	if c != lc.NFeatures {
		return nil, errors.NewDimensionError("LogisticClassifier.DecisionFunction", lc.NFeatures, c, 1)
	}
	if lc.Scaler != nil {
		var err error
		if X, err = lc.Scaler.Transform(X); err != nil {
			return nil, err
		}
	}

	scores := mat.NewDense(r, 1, nil)
	err := parallel.FirstError(r, parallelThreshold, func(start, end int) error {
		for i := start; i < end; i++ {
			s := lc.Intercept
			for j := 0; j < c; j++ {
				s += X.At(i, j) * lc.Weights.AtVec(j)
			}
			if math.IsNaN(s) {
				return errors.NewNumericalInstabilityError("LogisticClassifier.DecisionFunction", []float64{s}, i)
			}
			scores.Set(i, 0, s)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return scores, nil
}

// PredictProba は各クラスの確率を返す（n×2、列は [P(0), P(1)]）
func (lc *LogisticClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	scores, err := lc.DecisionFunction(X)
	if err != nil {
		return nil, err
	}

	r, _ := scores.Dims()
	proba := mat.NewDense(r, 2, nil)
	for i := 0; i < r; i++ {
		p := sigmoid(scores.At(i, 0))
		proba.Set(i, 0, 1-p)
		proba.Set(i, 1, p)
	}
	return proba, nil
}

// Predict は入力データに対するクラスラベル（0 または 1）の予測を行う（n×1）
func (lc *LogisticClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	scores, err := lc.DecisionFunction(X)
	if err != nil {
		return nil, err
	}

	r, _ := scores.Dims()
	labels := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		if sigmoid(scores.At(i, 0)) >= lc.Threshold {
			labels.Set(i, 0, 1)
		}
	}
	return labels, nil
}

// Classes は PredictProba の列に対応するクラスラベルを返す
func (lc *LogisticClassifier) Classes() []int {
	return []int{0, 1}
}

// GetWeights は重み（係数）を返す
func (lc *LogisticClassifier) GetWeights() []float64 {
	if lc.Weights == nil {
		return nil
	}
	weights := make([]float64, lc.Weights.Len())
	for i := range weights {
		weights[i] = lc.Weights.AtVec(i)
	}
	return weights
}

// FeatureNames は重みファイルに記録された特徴量名を返す
func (lc *LogisticClassifier) FeatureNames() []string {
	return append([]string(nil), lc.featureNames...)
}

// GetParams はハイパーパラメータを返す
func (lc *LogisticClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"threshold": lc.Threshold,
	}
}

// sigmoid は 1 / (1 + exp(-z))。オーバーフローしないよう符号で分岐する
func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + errors.StabilizeExp(-z))
	}
	e := errors.StabilizeExp(z)
	return e / (1 + e)
}

var (
	_ model.ProbabilisticClassifier = (*LogisticClassifier)(nil)
	_ model.ParameterGetter         = (*LogisticClassifier)(nil)
)
