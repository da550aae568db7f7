package model

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/clfeval/pkg/errors"
)

// ModelWeights は学習済みモデルの重みを表す構造体（シリアライゼーション用）
//
// 学習パイプライン側が書き出した JSON をそのまま読み込む。
//
//	{
//	    "model_type": "LogisticRegression",
//	    "version": "1.0",
//	    "coefficients": [0.8, -1.2],
//	    "intercept": 0.1,
//	    "features": ["tenure", "monthly_charges"],
//	    "hyperparameters": {"threshold": 0.5},
//	    "scaler": {"mean": [32.4, 64.8], "scale": [24.6, 30.1]},
//	    "is_fitted": true
//	}
type ModelWeights struct {
	// ModelType はモデルの種類（LogisticRegression等）
	ModelType string `json:"model_type" yaml:"model_type"`

	// Version はモデルのバージョン（互換性チェック用）
	Version string `json:"version" yaml:"version"`

	// Coefficients は重み係数
	Coefficients []float64 `json:"coefficients" yaml:"coefficients"`

	// Intercept は切片
	Intercept float64 `json:"intercept" yaml:"intercept"`

	// Features は特徴量の名前（オプション）
	Features []string `json:"features,omitempty" yaml:"features,omitempty"`

	// Hyperparameters はモデルのハイパーパラメータ
	Hyperparameters map[string]interface{} `json:"hyperparameters" yaml:"hyperparameters"`

	// Scaler は推論前に適用する標準化の統計量（オプション）
	Scaler *ScalerParams `json:"scaler,omitempty" yaml:"scaler,omitempty"`

	// Metadata は追加のメタデータ（学習時の統計等）
	Metadata map[string]interface{} `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	// IsFitted はモデルが学習済みかどうか
	IsFitted bool `json:"is_fitted" yaml:"is_fitted"`
}

// ScalerParams は StandardScaler の学習済み統計量
type ScalerParams struct {
	Mean  []float64 `json:"mean" yaml:"mean"`
	Scale []float64 `json:"scale" yaml:"scale"`
}

// LoadWeights はファイルから ModelWeights を読み込み、検証する。
// 拡張子が .yaml / .yml なら YAML、それ以外は JSON として読む
func LoadWeights(path string) (*ModelWeights, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open weights %s", path)
	}
	defer f.Close()

	read := ReadWeights
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		read = ReadWeightsYAML
	}

	mw, err := read(f)
	if err != nil {
		return nil, errors.Wrapf(err, "read weights %s", path)
	}
	return mw, nil
}

// ReadWeights は Reader から ModelWeights を読み込み、検証する
func ReadWeights(r io.Reader) (*ModelWeights, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "empty weights document")
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.NewValueError("ModelWeights.FromJSON", err.Error())
	}
	if err := ValidateDocument(doc); err != nil {
		return nil, err
	}

	mw := &ModelWeights{}
	if err := mw.FromJSON(data); err != nil {
		return nil, err
	}
	if err := mw.Validate(); err != nil {
		return nil, err
	}
	return mw, nil
}

// ReadWeightsYAML は Reader から YAML 形式の ModelWeights を読み込み、検証する
func ReadWeightsYAML(r io.Reader) (*ModelWeights, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.NewValueError("ModelWeights.FromYAML", err.Error())
	}
	if doc == nil {
		return nil, errors.Wrap(errors.ErrEmptyData, "empty weights document")
	}
	if err := ValidateDocument(doc); err != nil {
		return nil, err
	}

	mw := &ModelWeights{}
	if err := yaml.Unmarshal(data, mw); err != nil {
		return nil, errors.NewValueError("ModelWeights.FromYAML", err.Error())
	}
	if err := mw.Validate(); err != nil {
		return nil, err
	}
	return mw, nil
}

// ToJSON はModelWeightsを LoadWeights で読める JSON 形式にシリアライズ
func (mw *ModelWeights) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(mw, "", "    ")
	if err != nil {
		return nil, errors.Wrap(err, "marshal weights")
	}
	return append(data, '\n'), nil
}

// FromJSON はJSON形式からModelWeightsをデシリアライズ
func (mw *ModelWeights) FromJSON(data []byte) error {
	if err := json.Unmarshal(data, mw); err != nil {
		return errors.NewValueError("ModelWeights.FromJSON", err.Error())
	}
	return nil
}

// Validate はModelWeightsの妥当性を検証
func (mw *ModelWeights) Validate() error {
	if mw.ModelType == "" {
		return errors.NewValidationError("model_type", "is required", mw.ModelType)
	}

	if mw.Version == "" {
		return errors.NewValidationError("version", "is required", mw.Version)
	}

	if !mw.IsFitted && len(mw.Coefficients) > 0 {
		return errors.NewValidationError("coefficients", "unfitted model should not have coefficients", len(mw.Coefficients))
	}

	if mw.IsFitted && len(mw.Coefficients) == 0 {
		return errors.NewValidationError("coefficients", "fitted model must have coefficients", 0)
	}

	if len(mw.Features) > 0 && len(mw.Features) != len(mw.Coefficients) {
		return errors.NewValidationError("features", "must name every coefficient", len(mw.Features))
	}

	if mw.Scaler != nil && (len(mw.Scaler.Mean) != len(mw.Coefficients) || len(mw.Scaler.Scale) != len(mw.Coefficients)) {
		return errors.NewValidationError("scaler", "mean and scale must match the coefficients", len(mw.Scaler.Mean))
	}

	return nil
}

// Float はハイパーパラメータを数値として取り出す。無い場合は def を返す
func (mw *ModelWeights) Float(name string, def float64) float64 {
	v, ok := mw.Hyperparameters[name]
	if !ok {
		return def
	}
	switch x := v.(type) {
	case float64:
		return x
	case int:
		return float64(x)
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return f
		}
	}
	return def
}

// Clone はModelWeightsのディープコピーを作成
func (mw *ModelWeights) Clone() *ModelWeights {
	clone := &ModelWeights{
		ModelType:       mw.ModelType,
		Version:         mw.Version,
		Intercept:       mw.Intercept,
		IsFitted:        mw.IsFitted,
		Coefficients:    make([]float64, len(mw.Coefficients)),
		Features:        make([]string, len(mw.Features)),
		Hyperparameters: make(map[string]interface{}, len(mw.Hyperparameters)),
		Metadata:        make(map[string]interface{}, len(mw.Metadata)),
	}

	copy(clone.Coefficients, mw.Coefficients)
	copy(clone.Features, mw.Features)

	for k, v := range mw.Hyperparameters {
		clone.Hyperparameters[k] = v
	}

	for k, v := range mw.Metadata {
		clone.Metadata[k] = v
	}

	if mw.Scaler != nil {
		clone.Scaler = &ScalerParams{
			Mean:  append([]float64(nil), mw.Scaler.Mean...),
			Scale: append([]float64(nil), mw.Scaler.Scale...),
		}
	}

	return clone
}
