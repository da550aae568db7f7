package metrics

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/clfeval/pkg/errors"
)

// ClassMetrics はレポートの1行分（クラスまたは平均）の指標
type ClassMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1Score   float64 `json:"f1-score"`
	Support   int     `json:"support"`
}

// MarshalJSON は全ての値を浮動小数点として書く（support も 4.0 のように）
func (m ClassMetrics) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Precision reprFloat `json:"precision"`
		Recall    reprFloat `json:"recall"`
		F1Score   reprFloat `json:"f1-score"`
		Support   reprFloat `json:"support"`
	}{
		Precision: reprFloat(m.Precision),
		Recall:    reprFloat(m.Recall),
		F1Score:   reprFloat(m.F1Score),
		Support:   reprFloat(float64(m.Support)),
	})
}

// reprFloat は FormatFloat の表記で JSON に書かれる数値
type reprFloat float64

func (f reprFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, errors.NewValueError("Report.MarshalJSON", "non-finite value "+FormatFloat(v))
	}
	return []byte(FormatFloat(v)), nil
}

// FormatFloat は Python の repr(float) と同じ表記で数値を書く。
// 最短の往復可能な表現で、整数値には ".0" を付け、
// 絶対値が 1e-4 未満または 1e16 以上なら指数表記にする
func FormatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}

	var s string
	if abs := math.Abs(v); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		s = strconv.FormatFloat(v, 'e', -1, 64)
	} else {
		s = strconv.FormatFloat(v, 'f', -1, 64)
	}
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// Report は分類レポート（scikit-learn の classification_report 相当）
//
// JSON では以下の順でキーが並ぶ:
// クラス行（ラベル昇順）, "accuracy", "macro avg", "weighted avg",
// MCC が設定されていれば "matthews_corrcoef"。
type Report struct {
	// Labels はクラス行の順序
	Labels []int
	// TargetNames が設定されていればクラス行のキーとして使う（Labels と同じ長さ）
	TargetNames []string
	// Classes は Labels に対応するクラスごとの指標
	Classes []ClassMetrics

	Accuracy    float64
	MacroAvg    ClassMetrics
	WeightedAvg ClassMetrics

	// MatthewsCorrCoef は評価器がマージする MCC。nil なら出力しない
	MatthewsCorrCoef *float64
}

// ReportOptions は ClassificationReport のオプション
type ReportOptions struct {
	// Labels を指定するとその順序・集合でクラス行を作る
	Labels []int
	// TargetNames はクラス行の表示名
	TargetNames []string
}

// ClassificationReport はクラスごとの適合率・再現率・F1・サポートと、
// 正解率・マクロ平均・重み付き平均をまとめたレポートを作成する
func ClassificationReport(yTrue, yPred *mat.VecDense, opts ReportOptions) (*Report, error) {
	t, p, err := labelPair("ClassificationReport", yTrue, yPred)
	if err != nil {
		return nil, err
	}

	labels := opts.Labels
	if labels == nil {
		labels = uniqueSorted(t, p)
	}
	if opts.TargetNames != nil && len(opts.TargetNames) != len(labels) {
		return nil, errors.NewValueError("ClassificationReport",
			fmt.Sprintf("number of classes, %d, does not match size of target_names, %d", len(labels), len(opts.TargetNames)))
	}

	cm, err := confusion(t, p, labels)
	if err != nil {
		return nil, err
	}
	prfs := cm.PrecisionRecallFScoreSupport()

	r := &Report{
		Labels:      cm.Labels,
		TargetNames: opts.TargetNames,
		Classes:     make([]ClassMetrics, len(labels)),
		Accuracy:    accuracy(t, p),
	}
	for i := range labels {
		r.Classes[i] = ClassMetrics{
			Precision: prfs.Precision[i],
			Recall:    prfs.Recall[i],
			F1Score:   prfs.F1[i],
			Support:   prfs.Support[i],
		}
	}

	if r.MacroAvg, err = macroAverage(prfs); err != nil {
		return nil, err
	}
	r.WeightedAvg = weightedAverage(prfs)

	return r, nil
}

func macroAverage(prfs *PRFS) (ClassMetrics, error) {
	precision, err := stats.Mean(prfs.Precision)
	if err != nil {
		return ClassMetrics{}, errors.Wrap(err, "macro average precision")
	}
	recall, err := stats.Mean(prfs.Recall)
	if err != nil {
		return ClassMetrics{}, errors.Wrap(err, "macro average recall")
	}
	f1, err := stats.Mean(prfs.F1)
	if err != nil {
		return ClassMetrics{}, errors.Wrap(err, "macro average f1")
	}
	return ClassMetrics{
		Precision: precision,
		Recall:    recall,
		F1Score:   f1,
		Support:   supportTotal(prfs.Support),
	}, nil
}

func weightedAverage(prfs *PRFS) ClassMetrics {
	weights := make([]float64, len(prfs.Support))
	for i, s := range prfs.Support {
		weights[i] = float64(s)
	}
	total := floats.Sum(weights)

	avg := func(v []float64) float64 {
		q, _ := errors.SafeDivide(floats.Dot(v, weights), total)
		return q
	}
	return ClassMetrics{
		Precision: avg(prfs.Precision),
		Recall:    avg(prfs.Recall),
		F1Score:   avg(prfs.F1),
		Support:   int(total),
	}
}

func supportTotal(support []int) int {
	total := 0
	for _, s := range support {
		total += s
	}
	return total
}

// SetMatthewsCorrCoef は MCC をレポートにマージする
func (r *Report) SetMatthewsCorrCoef(mcc float64) {
	r.MatthewsCorrCoef = &mcc
}

// classKey はクラス行のキー（表示名があればそれ、なければラベルの文字列表現）
func (r *Report) classKey(i int) string {
	if r.TargetNames != nil {
		return r.TargetNames[i]
	}
	return strconv.Itoa(r.Labels[i])
}

// MarshalJSON はキー順を固定した JSON を出力する
func (r *Report) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	first := true
	write := func(key string, v interface{}) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false

		k, err := json.Marshal(key)
		if err != nil {
			return err
		}
		val, err := json.Marshal(v)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(val)
		return nil
	}

	for i := range r.Classes {
		if err := write(r.classKey(i), r.Classes[i]); err != nil {
			return nil, err
		}
	}
	if err := write("accuracy", reprFloat(r.Accuracy)); err != nil {
		return nil, err
	}
	if err := write("macro avg", r.MacroAvg); err != nil {
		return nil, err
	}
	if err := write("weighted avg", r.WeightedAvg); err != nil {
		return nil, err
	}
	if r.MatthewsCorrCoef != nil {
		if err := write("matthews_corrcoef", reprFloat(*r.MatthewsCorrCoef)); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// IndentedJSON は4スペースでインデントした JSON（末尾改行付き）を返す
func (r *Report) IndentedJSON() ([]byte, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return nil, errors.Wrap(err, "marshal report")
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "    "); err != nil {
		return nil, errors.Wrap(err, "indent report")
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// Format はレポートを表形式のテキストにする（digits は小数点以下の桁数）
//
//	              precision    recall  f1-score   support
//
//	           0       0.75      0.75      0.75         4
//	           1       0.75      0.75      0.75         4
//
//	    accuracy                           0.75         8
//	   macro avg       0.75      0.75      0.75         8
//	weighted avg       0.75      0.75      0.75         8
func (r *Report) Format(digits int) string {
	const lastLine = "weighted avg"

	width := runewidth.StringWidth(lastLine)
	for i := range r.Classes {
		if w := runewidth.StringWidth(r.classKey(i)); w > width {
			width = w
		}
	}
	if digits > width {
		width = digits
	}

	var sb strings.Builder
	row := func(name string, m ClassMetrics) {
		fmt.Fprintf(&sb, "%s  %9.*f %9.*f %9.*f %9d\n",
			padLeft(name, width), digits, m.Precision, digits, m.Recall, digits, m.F1Score, m.Support)
	}

	fmt.Fprintf(&sb, "%s  %9s %9s %9s %9s\n\n", padLeft("", width), "precision", "recall", "f1-score", "support")
	for i := range r.Classes {
		row(r.classKey(i), r.Classes[i])
	}
	sb.WriteByte('\n')

	fmt.Fprintf(&sb, "%s  %9s %9s %9.*f %9d\n",
		padLeft("accuracy", width), "", "", digits, r.Accuracy, r.MacroAvg.Support)
	row("macro avg", r.MacroAvg)
	row(lastLine, r.WeightedAvg)

	return sb.String()
}

// String は小数点以下2桁でレポートを整形する
func (r *Report) String() string {
	return r.Format(2)
}

// padLeft は表示幅が width になるよう左側を空白で埋める
func padLeft(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return strings.Repeat(" ", width-sw) + s
}
