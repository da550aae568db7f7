package preprocessing

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/clfeval/core/model"
	"github.com/YuminosukeSato/clfeval/pkg/errors"
)

// StandardScaler は学習時に求めた平均と標準偏差で特徴量を標準化する
//
// 学習は行わない。重みファイルの "scaler" に保存された統計量を読み込んで使う。
type StandardScaler struct {
	model.BaseEstimator

	// Mean は各特徴量の平均値
	Mean []float64

	// Scale は各特徴量の標準偏差
	Scale []float64

	// NFeatures は特徴量の数
	NFeatures int
}

// NewStandardScalerFromParams は保存済みの統計量から StandardScaler を作成する
//
//	scaler, err := preprocessing.NewStandardScalerFromParams(w.Scaler)
//	XScaled, err := scaler.Transform(X)
func NewStandardScalerFromParams(p *model.ScalerParams) (*StandardScaler, error) {
	if p == nil {
		return nil, errors.NewValueError("StandardScaler", "scaler params are nil")
	}
	if len(p.Mean) == 0 {
		return nil, errors.NewModelError("StandardScaler", "empty statistics", errors.ErrEmptyData)
	}
	if len(p.Scale) != len(p.Mean) {
		return nil, errors.NewDimensionError("StandardScaler", len(p.Mean), len(p.Scale), 1)
	}
	if err := errors.CheckNumericalStability("StandardScaler.Mean", p.Mean); err != nil {
		return nil, err
	}
	if err := errors.CheckNumericalStability("StandardScaler.Scale", p.Scale); err != nil {
		return nil, err
	}

	s := &StandardScaler{
		Mean:      append([]float64(nil), p.Mean...),
		Scale:     make([]float64, len(p.Scale)),
		NFeatures: len(p.Mean),
	}
	for j, v := range p.Scale {
		// 定数特徴量は scikit-learn と同じく 1 で割る
		if v == 0 {
			v = 1
		}
		s.Scale[j] = v
	}
	s.SetFitted()
	return s, nil
}

// Transform は学習済みの統計情報を使ってデータを標準化する
func (s *StandardScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "Transform")
	}

	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, errors.NewDimensionError("StandardScaler.Transform", s.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	result.Apply(func(i, j int, v float64) float64 {
		return (v - s.Mean[j]) / s.Scale[j]
	}, X)
	return result, nil
}

// Params は統計量を ScalerParams として返す
func (s *StandardScaler) Params() *model.ScalerParams {
	return &model.ScalerParams{
		Mean:  append([]float64(nil), s.Mean...),
		Scale: append([]float64(nil), s.Scale...),
	}
}

// String はスケーラーの文字列表現を返す
func (s *StandardScaler) String() string {
	if !s.IsFitted() {
		return "StandardScaler()"
	}
	return fmt.Sprintf("StandardScaler(n_features=%d)", s.NFeatures)
}
