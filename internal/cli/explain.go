package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var explainCmd = &cobra.Command{
	Use:   "explain",
	Short: "Build explanation artifacts for a model on a GLUE validation split",
	Long: "Runs the configured explanation techniques (SHAP, LIME or both) over " +
		"the task's validation split and writes one JSON artifact per technique " +
		"under the output directory.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExplain(cmd, getConfig())
	},
}

func init() {
	rootCmd.AddCommand(explainCmd)

	flags := explainCmd.Flags()
	flags.String("model-path", "", "path to the sequence-classification ONNX model")
	flags.String("tokenizer-path", "", "path to the tokenizer.json of the model")
	flags.String("ort-dll", "", "path to the ONNX Runtime shared library")
	flags.String("task", "", "GLUE task to explain (default: parsed from the model path, else sst2)")
	flags.String("method", "", "explanation technique: lime, shap or all (default shap)")
	flags.String("data-dir", "", "root directory of the GLUE data (default data/glue)")
	flags.String("output-dir", "", "root directory for result files (default explanation_results)")
	flags.String("cache-dir", "", "directory for the prediction cache (empty disables it)")
	flags.Int("target-class", -1, "class index whose score is attributed (default 1, 0 selects class 0)")
	flags.Int("num-samples", 0, "LIME perturbation samples per example (default 500)")
	flags.Int("num-features", 0, "LIME features kept per example (default 20)")
	flags.Int("permutations", 0, "SHAP permutation pairs per example (default 4)")
	flags.Int("batch-size", 0, "perturbation batch size through the model (default 16)")
	flags.Int("max-seq-len", 0, "tokenizer truncation length (default 512)")
	flags.Int64("seed", 0, "sampler seed for reproducible artifacts")
	flags.String("log-file", "", "append run logs to this file")

	for key, flag := range map[string]string{
		"modelpath":     "model-path",
		"tokenizerpath": "tokenizer-path",
		"ortdll":        "ort-dll",
		"task":          "task",
		"method":        "method",
		"datadir":       "data-dir",
		"outputdir":     "output-dir",
		"cachedir":      "cache-dir",
		"targetclass":   "target-class",
		"numsamples":    "num-samples",
		"numfeatures":   "num-features",
		"permutations":  "permutations",
		"batchsize":     "batch-size",
		"maxseqlen":     "max-seq-len",
		"seed":          "seed",
		"logfile":       "log-file",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}
}
