package evaluation

import (
	"io"
	"os"
	"strings"

	"github.com/YuminosukeSato/clfeval/pkg/errors"
	"github.com/YuminosukeSato/clfeval/pkg/log"
	"github.com/YuminosukeSato/clfeval/visualize"
)

// デフォルト設定（チャーン予測パイプラインの XGBoost モデル）
const (
	DefaultModelName   = "xgboost"
	DefaultDisplayName = "XGBoost"
	DefaultDigits      = 2
)

// DefaultClassNames はラベル 0, 1 の表示名
var DefaultClassNames = []string{"No Churn", "Churn"}

// Config は評価器の設定
type Config struct {
	// ModelName は出力ファイル名の接頭辞（{ModelName}_metrics.json など）
	ModelName string
	// DisplayName はコンソールのヘッダと図のタイトルに使う名前。空なら ModelName
	DisplayName string
	// ClassNames はラベル 0..k-1 の表示名。混同行列の行・列の順序も決める
	ClassNames []string
	// ResultsDir は成果物の出力先。既存のディレクトリである必要がある
	ResultsDir string
	// Digits はテキストレポートの小数点以下の桁数
	Digits int
}

// DefaultConfig は resultsDir に出力するデフォルト設定を返す
func DefaultConfig(resultsDir string) Config {
	return Config{
		ModelName:   DefaultModelName,
		DisplayName: DefaultDisplayName,
		ClassNames:  append([]string(nil), DefaultClassNames...),
		ResultsDir:  resultsDir,
		Digits:      DefaultDigits,
	}
}

// Validate は設定の妥当性を検証する
func (c Config) Validate() error {
	if c.ModelName == "" {
		return errors.NewValidationError("model_name", "is required", c.ModelName)
	}
	if strings.ContainsAny(c.ModelName, `/\`) || c.ModelName == "." || c.ModelName == ".." {
		return errors.NewValidationError("model_name", "must not contain path separators", c.ModelName)
	}
	if len(c.ClassNames) < 2 {
		return errors.NewValidationError("class_names", "at least two classes are required", len(c.ClassNames))
	}
	if c.ResultsDir == "" {
		return errors.NewValidationError("results_dir", "is required", c.ResultsDir)
	}
	if c.Digits < 0 || c.Digits > 10 {
		return errors.NewValidationError("digits", "must be in [0, 10]", c.Digits)
	}
	return nil
}

func (c Config) displayName() string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	return c.ModelName
}

// Option は Evaluator の任意設定
type Option func(*Evaluator)

// WithOutput はコンソール出力先を変更する（デフォルトは標準出力）
func WithOutput(w io.Writer) Option {
	return func(e *Evaluator) {
		e.out = w
	}
}

// WithLogger は構造化ログの出力先を変更する
func WithLogger(l log.Logger) Option {
	return func(e *Evaluator) {
		e.logger = l
	}
}

// WithRenderer は混同行列の描画設定を変更する。
// Title と TickLabels が空の場合は Config から補われる
func WithRenderer(opts visualize.Options) Option {
	return func(e *Evaluator) {
		e.render = opts
	}
}

func defaultOutput() io.Writer { return os.Stdout }
