package model

import "gonum.org/v1/gonum/mat"

// Predictor は予測可能なモデルのインターフェース
//
// 評価器はこのインターフェースだけに依存する。返り値は n×1 のラベル列
// （n×k の場合は先頭列をラベルとして扱う）。
type Predictor interface {
	// Predict は入力データに対するクラスラベルの予測を行う
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// PredictorFunc は関数を Predictor として扱うためのアダプタ
type PredictorFunc func(X mat.Matrix) (mat.Matrix, error)

// Predict は f(X) を呼び出す
func (f PredictorFunc) Predict(X mat.Matrix) (mat.Matrix, error) {
	return f(X)
}
