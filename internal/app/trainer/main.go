package trainer

import (
	"github.com/spf13/cobra"

	"github.com/setusign/signgo/internal/pkg/cmdapp"
	"github.com/setusign/signgo/internal/pkg/features"
	"github.com/setusign/signgo/internal/pkg/labels"
	"github.com/setusign/signgo/internal/pkg/model"
)

var appName = "ASL Landmark Model Trainer"

var rootCmd = &cobra.Command{
	Use:   "trainer",
	Short: appName,
	Long:  `Builds the classical landmark model from a labelled csv dataset`,
	Run:   run,
}

func init() {
	cmdapp.InitApplication(rootCmd)
	fl := rootCmd.PersistentFlags()
	fl.StringP("data", "d", "", "Labelled csv dataset: label,f1,f2,...")
	fl.StringP("out", "o", "model.json.gz", "Output model file, gzipped if it ends with .gz")
	fl.String("kind", model.KindKNN, "Model kind: knn or centroid")
	fl.Int("k", 5, "Neighbours for knn")
	fl.Bool("header", false, "Skip the first csv line")
	fl.Bool("symbols", false, "Read digit labels as table symbols, not class indexes")
	for _, n := range []string{"data", "out", "kind", "k", "header", "symbols"} {
		cmdapp.Config.BindPFlag("train."+n, fl.Lookup(n))
	}
	cmdapp.Config.SetDefault("features.count", features.LandmarkCount)
}

//Execute runs the trainer
func Execute() {
	cmdapp.Execute(rootCmd)
}

func run(cmd *cobra.Command, args []string) {
	cmdapp.Log.Info("Starting " + appName)

	lt, err := labels.LoadOrDefault(cmdapp.Config.GetString("labels.file"))
	cmdapp.CheckOrPanic(err, "Cannot init labels")

	p := params{
		data:     cmdapp.Config.GetString("train.data"),
		out:      cmdapp.Config.GetString("train.out"),
		kind:     cmdapp.Config.GetString("train.kind"),
		k:        cmdapp.Config.GetInt("train.k"),
		header:   cmdapp.Config.GetBool("train.header"),
		symbols:  cmdapp.Config.GetBool("train.symbols"),
		features: cmdapp.Config.GetInt("features.count"),
		labels:   lt,
	}
	a, err := train(&p)
	cmdapp.CheckOrPanic(err, "Cannot train")
	cmdapp.Log.Infof("Saved %s model to %s: %d vectors, %d features", a.Kind, p.out, len(a.Vectors), a.Features)
}
