package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/YuminosukeSato/clfeval/core/model"
	"github.com/YuminosukeSato/clfeval/dataset"
	"github.com/YuminosukeSato/clfeval/evaluation"
	"github.com/YuminosukeSato/clfeval/linear"
	"github.com/YuminosukeSato/clfeval/pkg/errors"
	"github.com/YuminosukeSato/clfeval/pkg/log"
)

func evaluateCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate a model on a test set and write its metrics and confusion matrix",
		Example: `  clfeval evaluate --weights model.json --data test.csv --results-dir results
  clfeval evaluate --weights model.json --data test.xlsx --results-dir results \
      --model-name logreg --display-name "Logistic Regression" --class-names "Stay,Leave"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEvaluate(cmd, v)
		},
	}

	cmd.Flags().String("weights", "", "model weights JSON (required)")
	cmd.Flags().String("data", "", "test set, .csv or .xlsx (required)")
	cmd.Flags().String("results-dir", "", "existing directory for the metrics JSON and PNG (required)")
	cmd.Flags().String("label-column", "Churn", "name of the label column in the test set")
	cmd.Flags().String("model-name", evaluation.DefaultModelName, "output filename prefix")
	cmd.Flags().String("display-name", evaluation.DefaultDisplayName, "model name shown in the console and figure title")
	cmd.Flags().StringSlice("class-names", evaluation.DefaultClassNames, "display names for labels 0..k-1")
	cmd.Flags().Int("digits", evaluation.DefaultDigits, "decimal digits in the text report")

	for _, name := range []string{"weights", "data", "results-dir", "label-column", "model-name", "display-name", "class-names", "digits"} {
		_ = v.BindPFlag("evaluate."+name, cmd.Flags().Lookup(name))
	}
	return cmd
}

func runEvaluate(cmd *cobra.Command, v *viper.Viper) error {
	weightsPath := v.GetString("evaluate.weights")
	dataPath := v.GetString("evaluate.data")
	resultsDir := v.GetString("evaluate.results-dir")
	switch {
	case weightsPath == "":
		return errors.NewValidationError("weights", "is required", weightsPath)
	case dataPath == "":
		return errors.NewValidationError("data", "is required", dataPath)
	case resultsDir == "":
		return errors.NewValidationError("results-dir", "is required", resultsDir)
	}

	restore := log.InstallZerologWarnings(os.Stderr)
	defer restore()

	logger := log.Default().With(log.ComponentKey, "cli")

	w, err := model.LoadWeights(weightsPath)
	if err != nil {
		return err
	}
	clf, err := linear.NewLogisticClassifierFromWeights(w)
	if err != nil {
		return err
	}

	ds, err := dataset.Load(dataPath, v.GetString("evaluate.label-column"))
	if err != nil {
		return err
	}
	logger.Info("test set loaded",
		log.OperationKey, log.OperationLoad,
		log.SourceKey, dataPath,
		log.SamplesKey, ds.Len(),
		log.FeaturesKey, len(ds.FeatureNames),
	)
	if err := checkFeatureOrder(w.Features, ds.FeatureNames); err != nil {
		return err
	}

	cfg := evaluation.Config{
		ModelName:   v.GetString("evaluate.model-name"),
		DisplayName: v.GetString("evaluate.display-name"),
		ClassNames:  classNames(v.GetStringSlice("evaluate.class-names")),
		ResultsDir:  resultsDir,
		Digits:      v.GetInt("evaluate.digits"),
	}
	e, err := evaluation.New(cfg, evaluation.WithOutput(cmd.OutOrStdout()))
	if err != nil {
		return err
	}

	_, err = e.Evaluate(clf, ds.Features, ds.Labels)
	return err
}

// checkFeatureOrder は重みに記録された特徴量名とテストセットの列が一致するか確認する
func checkFeatureOrder(want, got []string) error {
	if len(want) == 0 {
		return nil
	}
	if len(want) != len(got) {
		return errors.NewDimensionError("evaluate", len(want), len(got), 1)
	}
	for i := range want {
		if want[i] != got[i] {
			return errors.NewValueError("evaluate",
				"feature column "+got[i]+" does not match weights feature "+want[i])
		}
	}
	return nil
}

// classNames は環境変数や設定ファイルで "a,b" の形で渡された値も分割する
func classNames(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
