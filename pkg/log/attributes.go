// Package log defines standard attribute keys for evaluation runs.
//
// Using the same keys everywhere keeps the JSON log stream filterable: every
// evaluation emits its model name, sample count, headline metrics and the
// paths of the artifacts it wrote under these names.
package log

// Model and Operation Context
const (
	// ModelNameKey identifies the evaluated model, e.g. "xgboost".
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "predict", "evaluate", "render", "load"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is emitting the record.
	// Examples: "evaluation", "dataset", "cli"
	ComponentKey = "ml.component"

	// RunIDKey correlates every record emitted by a single evaluation.
	RunIDKey = "evaluation.run_id"

	// PhaseKey indicates the phase of the model lifecycle.
	PhaseKey = "ml.phase"
)

// Data Shape and Characteristics
const (
	// SamplesKey indicates the number of samples (rows) being evaluated.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns).
	FeaturesKey = "data.features"

	// ClassesKey indicates the number of distinct class labels.
	ClassesKey = "data.classes"

	// SourceKey records where a dataset or weights file was read from.
	SourceKey = "data.source"
)

// Performance Metrics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// AccuracyKey records classification accuracy in [0.0, 1.0].
	AccuracyKey = "metrics.accuracy"

	// MCCKey records the Matthews correlation coefficient in [-1.0, 1.0].
	MCCKey = "metrics.mcc"

	// MacroF1Key records the unweighted mean F1 over classes.
	MacroF1Key = "metrics.macro_f1"
)

// Artifacts
const (
	// MetricsPathKey is the path of the written metrics JSON.
	MetricsPathKey = "artifact.metrics_path"

	// FigurePathKey is the path of the written confusion-matrix PNG.
	FigurePathKey = "artifact.figure_path"
)

// Error and Warning Context
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	ErrorCodeKey = "error.code"

	// ErrorTypeKey categorizes the type of error encountered.
	ErrorTypeKey = "error.type"

	// SuggestionKey provides a hint for resolving the issue.
	SuggestionKey = "error.suggestion"
)

// Standard attribute values.
const (
	OperationPredict  = "predict"
	OperationEvaluate = "evaluate"
	OperationRender   = "render"
	OperationLoad     = "load"

	PhaseTesting   = "testing"
	PhaseInference = "inference"

	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorEmptyData         = "EMPTY_DATA"
	ErrorInvalidInput      = "INVALID_INPUT"
	ErrorIO                = "IO_FAILURE"
)
