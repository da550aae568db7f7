package metrics

import (
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/clfeval/pkg/errors"
)

// toLabels はラベルベクトルを整数スライスに変換する
// 整数でない値（NaN、小数）は ValueError になる
func toLabels(op string, v *mat.VecDense) ([]int, error) {
	if v == nil || v.Len() == 0 {
		return nil, errors.NewValueError(op, "empty vector")
	}

	out := make([]int, v.Len())
	for i := range out {
		x := v.AtVec(i)
		if math.IsNaN(x) || math.IsInf(x, 0) || x != math.Trunc(x) {
			return nil, errors.NewValueError(op, "labels must be integer valued, got "+
				strconv.FormatFloat(x, 'g', -1, 64)+" at index "+strconv.Itoa(i))
		}
		out[i] = int(x)
	}
	return out, nil
}

// labelPair は yTrue と yPred を検証し、整数ラベルに変換する
func labelPair(op string, yTrue, yPred *mat.VecDense) ([]int, []int, error) {
	t, err := toLabels(op, yTrue)
	if err != nil {
		return nil, nil, err
	}
	p, err := toLabels(op, yPred)
	if err != nil {
		return nil, nil, err
	}
	if len(p) != len(t) {
		return nil, nil, errors.NewDimensionError(op, len(t), len(p), 0)
	}
	return t, p, nil
}

// uniqueSorted は ys に現れるラベルの和集合を昇順で返す
func uniqueSorted(ys ...[]int) []int {
	seen := make(map[int]struct{})
	for _, y := range ys {
		for _, v := range y {
			seen[v] = struct{}{}
		}
	}
	labels := make([]int, 0, len(seen))
	for v := range seen {
		labels = append(labels, v)
	}
	sort.Ints(labels)
	return labels
}

// Labels は yTrue と yPred に現れるクラスラベルの和集合を昇順で返す
func Labels(yTrue, yPred *mat.VecDense) ([]int, error) {
	t, p, err := labelPair("Labels", yTrue, yPred)
	if err != nil {
		return nil, err
	}
	return uniqueSorted(t, p), nil
}

// Accuracy は正解率（予測ラベルが真のラベルと一致した割合）を計算する
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	t, p, err := labelPair("Accuracy", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return accuracy(t, p), nil
}

func accuracy(t, p []int) float64 {
	correct := 0
	for i := range t {
		if t[i] == p[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(t))
}

// ConfusionMatrix は混同行列。行が真のクラス、列が予測クラス
type ConfusionMatrix struct {
	// Labels は行・列の順序を決めるクラスラベル
	Labels []int
	// Counts[i][j] は真のクラスが Labels[i]、予測が Labels[j] のサンプル数
	Counts [][]int
}

// ConfusionMatrixOf は混同行列を計算する
//
// labels が nil の場合は yTrue と yPred の和集合（昇順）を使う。
// labels に含まれないラベルを持つサンプルは集計されない。
func ConfusionMatrixOf(yTrue, yPred *mat.VecDense, labels []int) (*ConfusionMatrix, error) {
	t, p, err := labelPair("ConfusionMatrix", yTrue, yPred)
	if err != nil {
		return nil, err
	}
	if labels == nil {
		labels = uniqueSorted(t, p)
	}
	return confusion(t, p, labels)
}

func confusion(t, p, labels []int) (*ConfusionMatrix, error) {
	if len(labels) == 0 {
		return nil, errors.NewValueError("ConfusionMatrix", "labels must not be empty")
	}

	index := make(map[int]int, len(labels))
	for i, l := range labels {
		if _, dup := index[l]; dup {
			return nil, errors.NewValueError("ConfusionMatrix", "duplicate label "+strconv.Itoa(l))
		}
		index[l] = i
	}

	counts := make([][]int, len(labels))
	for i := range counts {
		counts[i] = make([]int, len(labels))
	}
	for i := range t {
		ti, okT := index[t[i]]
		pi, okP := index[p[i]]
		if okT && okP {
			counts[ti][pi]++
		}
	}

	return &ConfusionMatrix{
		Labels: append([]int(nil), labels...),
		Counts: counts,
	}, nil
}

// Total は混同行列の全セルの合計を返す
func (cm *ConfusionMatrix) Total() int {
	total := 0
	for _, row := range cm.Counts {
		for _, c := range row {
			total += c
		}
	}
	return total
}

// Max は最大のセル値を返す
func (cm *ConfusionMatrix) Max() int {
	max := 0
	for _, row := range cm.Counts {
		for _, c := range row {
			if c > max {
				max = c
			}
		}
	}
	return max
}

// Dense は混同行列を mat.Dense として返す
func (cm *ConfusionMatrix) Dense() *mat.Dense {
	k := len(cm.Labels)
	d := mat.NewDense(k, k, nil)
	for i, row := range cm.Counts {
		for j, c := range row {
			d.Set(i, j, float64(c))
		}
	}
	return d
}

// sums は行和（真のクラス数）、列和（予測クラス数）、対角和を返す
func (cm *ConfusionMatrix) sums() (trueSum, predSum []float64, correct float64) {
	k := len(cm.Labels)
	trueSum = make([]float64, k)
	predSum = make([]float64, k)
	for i, row := range cm.Counts {
		for j, c := range row {
			trueSum[i] += float64(c)
			predSum[j] += float64(c)
		}
		correct += float64(row[i])
	}
	return trueSum, predSum, correct
}

// MatthewsCorrCoef はマシューズ相関係数（MCC）を計算する
//
// 2クラスでは (TP*TN - FP*FN) / sqrt((TP+FP)(TP+FN)(TN+FP)(TN+FN)) と等しい。
// 分母が0になる場合（予測または真のラベルが単一クラス）は0を返す。
func MatthewsCorrCoef(yTrue, yPred *mat.VecDense) (float64, error) {
	t, p, err := labelPair("MatthewsCorrCoef", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	cm, err := confusion(t, p, uniqueSorted(t, p))
	if err != nil {
		return 0, err
	}
	return cm.MatthewsCorrCoef()
}

// MatthewsCorrCoef は混同行列から多クラス一般化した MCC を計算する
func (cm *ConfusionMatrix) MatthewsCorrCoef() (float64, error) {
	trueSum, predSum, correct := cm.sums()
	n := floats.Sum(trueSum)

	covYtYp := correct*n - floats.Dot(trueSum, predSum)
	covYpYp := n*n - floats.Dot(predSum, predSum)
	covYtYt := n*n - floats.Dot(trueSum, trueSum)

	if covYpYp*covYtYt == 0 {
		return 0, nil
	}

	mcc := covYtYp / math.Sqrt(covYtYt*covYpYp)
	if err := errors.CheckScalar("MatthewsCorrCoef", mcc); err != nil {
		return 0, err
	}
	return mcc, nil
}

// PRFS はクラスごとの適合率・再現率・F1・サポート
type PRFS struct {
	Precision []float64
	Recall    []float64
	F1        []float64
	Support   []int
}

// PrecisionRecallFScoreSupport はクラスごとの適合率、再現率、F1、サポートを計算する
//
// labels が nil の場合は yTrue と yPred の和集合（昇順）を使う。
// 分母が0の指標は0とし、UndefinedMetricWarning を errors.Warn で通知する。
func PrecisionRecallFScoreSupport(yTrue, yPred *mat.VecDense, labels []int) (*PRFS, error) {
	t, p, err := labelPair("PrecisionRecallFScoreSupport", yTrue, yPred)
	if err != nil {
		return nil, err
	}
	if labels == nil {
		labels = uniqueSorted(t, p)
	}
	cm, err := confusion(t, p, labels)
	if err != nil {
		return nil, err
	}
	return cm.PrecisionRecallFScoreSupport(), nil
}

// PrecisionRecallFScoreSupport は混同行列からクラスごとの指標を計算する
func (cm *ConfusionMatrix) PrecisionRecallFScoreSupport() *PRFS {
	trueSum, predSum, _ := cm.sums()
	k := len(cm.Labels)

	out := &PRFS{
		Precision: make([]float64, k),
		Recall:    make([]float64, k),
		F1:        make([]float64, k),
		Support:   make([]int, k),
	}

	var noPred, noTrue, noEither bool
	for i := 0; i < k; i++ {
		tp := float64(cm.Counts[i][i])

		var ok bool
		if out.Precision[i], ok = errors.SafeDivide(tp, predSum[i]); !ok {
			noPred = true
		}
		if out.Recall[i], ok = errors.SafeDivide(tp, trueSum[i]); !ok {
			noTrue = true
		}

		// F1 = 2TP / (2TP + FP + FN) は調和平均と等価で、分母0のときだけ未定義
		denom := trueSum[i] + predSum[i]
		if out.F1[i], ok = errors.SafeDivide(2*tp, denom); !ok {
			noEither = true
		}

		out.Support[i] = int(trueSum[i])
	}

	if noPred {
		errors.Warn(errors.NewUndefinedMetricWarning("Precision", "in labels with no predicted samples", 0))
	}
	if noTrue {
		errors.Warn(errors.NewUndefinedMetricWarning("Recall", "in labels with no true samples", 0))
	}
	if noEither {
		errors.Warn(errors.NewUndefinedMetricWarning("F-score", "in labels with no true nor predicted samples", 0))
	}

	return out
}
