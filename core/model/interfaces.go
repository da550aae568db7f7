package model

import (
	"gonum.org/v1/gonum/mat"
)

// ProbabilisticClassifier は確率推定が可能な分類器のインターフェース
type ProbabilisticClassifier interface {
	Predictor

	// PredictProba は各クラスの確率推定値を返す（n×クラス数）
	PredictProba(X mat.Matrix) (mat.Matrix, error)

	// Classes は出力列に対応するクラスラベルを返す
	Classes() []int
}

// ParameterGetter is the interface for models that expose their parameters.
type ParameterGetter interface {
	// GetParams returns the model's hyperparameters.
	GetParams() map[string]interface{}
}
