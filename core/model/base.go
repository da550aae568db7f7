package model

// EstimatorState はモデルの状態を表す
type EstimatorState int

const (
	// NotFitted は重みが読み込まれていない状態
	NotFitted EstimatorState = iota
	// Fitted は推論可能な状態
	Fitted
)

// BaseEstimator は推論モデルの基底となる構造体
type BaseEstimator struct {
	state EstimatorState
}

// IsFitted はモデルが推論可能かどうかを返す
func (e *BaseEstimator) IsFitted() bool {
	return e.state == Fitted
}

// SetFitted はモデルを推論可能な状態に設定する
func (e *BaseEstimator) SetFitted() {
	e.state = Fitted
}
