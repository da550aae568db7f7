// Package evaluation は学習済み二値分類器をテストセットで評価し、
// 指標をコンソール・JSON・混同行列の PNG に出力する。
//
//	err := evaluation.EvaluateModel(clf, XTest, yTest, "results")
//
// は results/xgboost_metrics.json と results/xgboost_confusion_matrix.png を書き出す。
package evaluation

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/clfeval/core/model"
	"github.com/YuminosukeSato/clfeval/metrics"
	"github.com/YuminosukeSato/clfeval/pkg/errors"
	"github.com/YuminosukeSato/clfeval/pkg/log"
	"github.com/YuminosukeSato/clfeval/visualize"
)

// Result は1回の評価の結果
type Result struct {
	// RunID はこの評価のログレコードに付く識別子
	RunID string

	Accuracy         float64
	MatthewsCorrCoef float64
	Report           *metrics.Report
	ConfusionMatrix  *metrics.ConfusionMatrix

	MetricsPath string
	FigurePath  string
}

// Evaluator は設定済みの評価器。状態を持たないため複数モデルの評価に使い回せる
type Evaluator struct {
	cfg    Config
	out    io.Writer
	logger log.Logger
	render visualize.Options
}

// EvaluateModel はデフォルト設定でモデルを評価する
func EvaluateModel(m model.Predictor, X mat.Matrix, y *mat.VecDense, resultsDir string) error {
	e, err := New(DefaultConfig(resultsDir))
	if err != nil {
		return err
	}
	_, err = e.Evaluate(m, X, y)
	return err
}

// New は設定を検証して Evaluator を作成する
func New(cfg Config, opts ...Option) (*Evaluator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.ClassNames = append([]string(nil), cfg.ClassNames...)

	render := visualize.DefaultOptions()
	// タイトルは WithRenderer で指定されない限り表示名から作る
	render.Title = ""

	e := &Evaluator{
		cfg:    cfg,
		out:    defaultOutput(),
		logger: log.Default(),
		render: render,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.render.Title == "" {
		e.render.Title = "Confusion Matrix - " + cfg.displayName()
	}
	if len(e.render.TickLabels) == 0 {
		e.render.TickLabels = cfg.ClassNames
	}
	if len(e.render.TickLabels) != len(cfg.ClassNames) {
		return nil, errors.NewValidationError("tick_labels", "must match the number of class names", len(e.render.TickLabels))
	}
	e.logger = e.logger.With(
		log.ComponentKey, "evaluation",
		log.ModelNameKey, cfg.ModelName,
	)
	return e, nil
}

// MetricsPath は指標 JSON の出力先を返す
func (e *Evaluator) MetricsPath() string {
	return filepath.Join(e.cfg.ResultsDir, e.cfg.ModelName+"_metrics.json")
}

// FigurePath は混同行列 PNG の出力先を返す
func (e *Evaluator) FigurePath() string {
	return filepath.Join(e.cfg.ResultsDir, e.cfg.ModelName+"_confusion_matrix.png")
}

// Evaluate はモデルで予測し、指標を計算してコンソール・JSON・PNG に出力する
//
// 出力ファイルは上書きされる。結果ディレクトリは作成しない。
func (e *Evaluator) Evaluate(m model.Predictor, X mat.Matrix, y *mat.VecDense) (*Result, error) {
	start := time.Now()
	runID := newRunID()
	logger := e.logger.With(log.RunIDKey, runID)

	res, err := e.evaluate(logger, m, X, y)
	if err != nil {
		fields := []any{
			log.OperationKey, log.OperationEvaluate,
			log.ErrorCodeKey, errorCode(err),
			log.ErrAttrKey, err,
		}
		if errors.Is(err, os.ErrNotExist) {
			fields = append(fields, log.SuggestionKey, "create the results directory before evaluating")
		}
		logger.Error("evaluation failed", fields...)
		return nil, err
	}
	res.RunID = runID

	logger.Info("evaluation completed",
		log.OperationKey, log.OperationEvaluate,
		log.SamplesKey, y.Len(),
		log.AccuracyKey, res.Accuracy,
		log.MCCKey, res.MatthewsCorrCoef,
		log.MacroF1Key, res.Report.MacroAvg.F1Score,
		log.MetricsPathKey, res.MetricsPath,
		log.FigurePathKey, res.FigurePath,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return res, nil
}

func (e *Evaluator) evaluate(logger log.Logger, m model.Predictor, X mat.Matrix, y *mat.VecDense) (*Result, error) {
	if m == nil {
		return nil, errors.NewValueError("Evaluate", "model is nil")
	}
	if X == nil || y == nil {
		return nil, errors.NewValueError("Evaluate", "features and labels are required")
	}
	rows, cols := X.Dims()
	if rows != y.Len() {
		return nil, errors.NewDimensionError("Evaluate", rows, y.Len(), 0)
	}

	logger.Info("evaluation started",
		log.OperationKey, log.OperationEvaluate,
		log.PhaseKey, log.PhaseTesting,
		log.SamplesKey, rows,
		log.FeaturesKey, cols,
		log.ClassesKey, len(e.cfg.ClassNames),
	)

	yPred, err := e.predict(m, X)
	if err != nil {
		return nil, err
	}
	logger.Debug("predictions received",
		log.OperationKey, log.OperationPredict,
		log.PhaseKey, log.PhaseInference,
		log.SamplesKey, yPred.Len(),
	)
	if yPred.Len() != y.Len() {
		return nil, errors.NewDimensionError("Predict", y.Len(), yPred.Len(), 0)
	}

	accuracy, err := metrics.Accuracy(y, yPred)
	if err != nil {
		return nil, err
	}
	mcc, err := metrics.MatthewsCorrCoef(y, yPred)
	if err != nil {
		return nil, err
	}
	report, err := metrics.ClassificationReport(y, yPred, metrics.ReportOptions{})
	if err != nil {
		return nil, err
	}
	report.SetMatthewsCorrCoef(mcc)

	cm, err := e.confusionMatrix(y, yPred)
	if err != nil {
		return nil, err
	}

	if err := e.printSummary(accuracy, mcc, report); err != nil {
		return nil, err
	}

	res := &Result{
		Accuracy:         accuracy,
		MatthewsCorrCoef: mcc,
		Report:           report,
		ConfusionMatrix:  cm,
		MetricsPath:      e.MetricsPath(),
		FigurePath:       e.FigurePath(),
	}

	if err := writeReport(report, res.MetricsPath); err != nil {
		return nil, err
	}

	if err := visualize.RenderConfusionMatrix(cm, e.render, res.FigurePath); err != nil {
		return nil, errors.Wrap(err, "render confusion matrix")
	}
	logger.Debug("confusion matrix rendered",
		log.OperationKey, log.OperationRender,
		log.FigurePathKey, res.FigurePath,
	)

	return res, nil
}

// newRunID は時刻順に並ぶ UUIDv7 を返す。生成に失敗したら v4 を使う
func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return id.String()
}

// errorCode はログ用にエラーを分類する
func errorCode(err error) string {
	var (
		de *errors.DimensionError
		ve *errors.ValueError
		va *errors.ValidationError
	)
	switch {
	case errors.As(err, &de):
		return log.ErrorDimensionMismatch
	case errors.Is(err, errors.ErrEmptyData):
		return log.ErrorEmptyData
	case errors.As(err, &ve), errors.As(err, &va):
		return log.ErrorInvalidInput
	case errors.Is(err, os.ErrNotExist), errors.Is(err, os.ErrPermission):
		return log.ErrorIO
	}
	return ""
}

// predict はモデルを呼び出し、予測ラベルをベクトルとして返す。
// n×k の出力は先頭列をラベルとして扱う
func (e *Evaluator) predict(m model.Predictor, X mat.Matrix) (pred *mat.VecDense, err error) {
	defer errors.Recover(&err, "Predict")

	out, err := m.Predict(X)
	if err != nil {
		return nil, errors.Wrap(err, "predict")
	}
	if out == nil {
		return nil, errors.NewValueError("Predict", "model returned no predictions")
	}

	switch v := out.(type) {
	case *mat.VecDense:
		return v, nil
	case mat.Vector:
		return mat.VecDenseCopyOf(v), nil
	}

	r, _ := out.Dims()
	pred = mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		pred.SetVec(i, out.At(i, 0))
	}
	return pred, nil
}

// confusionMatrix はラベル 0..k-1（ClassNames の順）で混同行列を作る
func (e *Evaluator) confusionMatrix(y, yPred *mat.VecDense) (*metrics.ConfusionMatrix, error) {
	labels := make([]int, len(e.cfg.ClassNames))
	for i := range labels {
		labels[i] = i
	}

	present, err := metrics.Labels(y, yPred)
	if err != nil {
		return nil, err
	}
	for _, l := range present {
		if l < 0 || l >= len(labels) {
			return nil, errors.NewValueError("ConfusionMatrix",
				"label "+strconv.Itoa(l)+" has no class name; expected labels 0.."+strconv.Itoa(len(labels)-1))
		}
	}

	return metrics.ConfusionMatrixOf(y, yPred, labels)
}

func (e *Evaluator) printSummary(accuracy, mcc float64, report *metrics.Report) error {
	_, err := fmt.Fprintf(e.out, "\n%s Model Evaluation:\nAccuracy: %s\nMCC: %s\n%s\n",
		e.cfg.displayName(), metrics.FormatFloat(accuracy), metrics.FormatFloat(mcc), report.Format(e.cfg.Digits))
	if err != nil {
		return errors.Wrap(err, "write evaluation summary")
	}
	return nil
}

// writeReport はレポートを4スペースインデントの JSON として path に書き出す（上書き）
func writeReport(report *metrics.Report, path string) error {
	data, err := report.IndentedJSON()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "write metrics %s", path)
	}
	return nil
}
