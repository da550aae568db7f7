// Command clfeval evaluates a trained binary classifier on a held-out test set.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/YuminosukeSato/clfeval/pkg/errors"
	"github.com/YuminosukeSato/clfeval/pkg/log"
)

var version = "dev"

func main() {
	if err := newRootCmd(viper.New()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	var cfgFile, envFile string

	root := &cobra.Command{
		Use:           "clfeval",
		Short:         "Evaluate a trained binary classifier",
		Long:          "clfeval scores a trained classifier on a test set, prints accuracy, MCC and a\nclassification report, and writes a metrics JSON and a confusion-matrix PNG.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if envFile != "" {
				// 既に設定されている環境変数は上書きしない
				if err := godotenv.Load(envFile); err != nil {
					return errors.Wrapf(err, "load env file %s", envFile)
				}
			}
			return initConfig(v, cfgFile)
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./clfeval.yaml or $HOME/.config/clfeval/clfeval.yaml)")
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file with CLFEVAL_* variables")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-format", "console", "log format (console, json)")

	_ = v.BindPFlag("logging.level", root.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag("logging.format", root.PersistentFlags().Lookup("log-format"))

	root.AddCommand(evaluateCmd(v))
	return root
}

func initConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "clfeval"))
		}
		v.SetConfigName("clfeval")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("CLFEVAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return errors.Wrap(err, "read config")
		}
	}

	if err := log.SetupLogger(v.GetString("logging.level"), v.GetString("logging.format")); err != nil {
		return errors.Wrap(err, "setup logging")
	}
	return nil
}
