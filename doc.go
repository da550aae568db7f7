// Package clfeval evaluates trained binary classifiers on held-out test sets.
//
// An evaluation predicts the test labels, computes accuracy, the Matthews
// correlation coefficient and a per-class precision/recall/F1 report, prints
// them, and writes two artifacts into an existing results directory:
//
//	{results_dir}/{model_name}_metrics.json           4-space indented report + matthews_corrcoef
//	{results_dir}/{model_name}_confusion_matrix.png   annotated heatmap at 300 DPI
//
// # Quick Start
//
//	package main
//
//	import (
//	    "log"
//
//	    "github.com/YuminosukeSato/clfeval/core/model"
//	    "github.com/YuminosukeSato/clfeval/dataset"
//	    "github.com/YuminosukeSato/clfeval/evaluation"
//	    "github.com/YuminosukeSato/clfeval/linear"
//	)
//
//	func main() {
//	    w, err := model.LoadWeights("model.json")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    clf, err := linear.NewLogisticClassifierFromWeights(w)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    ds, err := dataset.Load("test.csv", "Churn")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if err := evaluation.EvaluateModel(clf, ds.Features, ds.Labels, "results"); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// Any type with a Predict(mat.Matrix) (mat.Matrix, error) method can be
// evaluated; model.PredictorFunc adapts a plain function.
//
// # Packages
//
//   - evaluation: the evaluator (predict, metrics, console, JSON, PNG)
//   - metrics: accuracy, confusion matrix, MCC, classification report
//   - visualize: confusion-matrix heatmap rendering (gonum/plot)
//   - linear: logistic classifier loaded from exported weights
//   - preprocessing: standardization applied before scoring
//   - dataset: CSV and Excel test-set loading
//   - core/model: Predictor interfaces and the weights document
//   - core/parallel: row-range parallelism for inference
//   - pkg/errors, pkg/log: error types, warnings and structured logging
//
// The clfeval command (cmd/clfeval) wraps all of this behind cobra and viper:
//
//	clfeval evaluate --weights model.json --data test.csv --results-dir results
package clfeval
