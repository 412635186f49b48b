package batch

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/setusign/signgo/internal/pkg/cmdapp"
	"github.com/setusign/signgo/internal/pkg/dataset"
	"github.com/setusign/signgo/internal/pkg/labels"
)

var appName = "ASL Batch Prediction Client"

var rootCmd = &cobra.Command{
	Use:   "batchClient",
	Short: appName,
	Long:  `Sends landmark rows from a csv file to the prediction service`,
	Run:   run,
}

func init() {
	cmdapp.InitApplication(rootCmd)
	fl := rootCmd.PersistentFlags()
	fl.StringP("url", "u", "http://localhost:8000", "Prediction service URL")
	fl.StringP("data", "d", "", "csv file: [label,]f1,f2,...")
	fl.Bool("labelled", false, "First csv column is the expected label")
	fl.Bool("header", false, "Skip the first csv line")
	fl.Bool("symbols", false, "Read digit labels as table symbols, not class indexes")
	fl.Int("retries", 3, "Retries for a failed call")
	for _, n := range []string{"url", "data", "labelled", "header", "symbols", "retries"} {
		cmdapp.Config.BindPFlag("batch."+n, fl.Lookup(n))
	}
}

//Execute runs the client
func Execute() {
	cmdapp.Execute(rootCmd)
}

func run(cmd *cobra.Command, args []string) {
	cl, err := NewClient(cmdapp.Config.GetString("batch.url"), cmdapp.Config.GetInt("batch.retries"))
	cmdapp.CheckOrPanic(err, "Cannot init client")
	lt, err := labels.LoadOrDefault(cmdapp.Config.GetString("labels.file"))
	cmdapp.CheckOrPanic(err, "Cannot init labels")
	samples, err := dataset.ReadFile(cmdapp.Config.GetString("batch.data"), dataset.Options{
		Header: cmdapp.Config.GetBool("batch.header"), Labelled: cmdapp.Config.GetBool("batch.labelled"), Labels: lt,
		Symbols: cmdapp.Config.GetBool("batch.symbols")})
	cmdapp.CheckOrPanic(err, "Cannot read data")

	st, err := process(context.Background(), cl, samples, lt, os.Stdout)
	cmdapp.CheckOrPanic(err, "")
	cmdapp.Log.Infof("Done: %d rows, %d failed", st.total, st.failed)
	if st.labelled > 0 {
		cmdapp.Log.Infof("Accuracy: %.4f (%d/%d)", st.accuracy(), st.correct, st.labelled)
	}
}

type predictor interface {
	Predict(ctx context.Context, landmarks []float32) (interface{}, error)
}

type stats struct {
	total, failed, labelled, correct int
}

func (s *stats) accuracy() float64 {
	if s.labelled == 0 {
		return 0
	}
	return float64(s.correct) / float64(s.labelled)
}

func process(ctx context.Context, p predictor, samples []dataset.Sample, lt *labels.Table, w io.Writer) (*stats, error) {
	res := &stats{}
	for i, s := range samples {
		res.total++
		pr, err := p.Predict(ctx, s.Features)
		if err != nil {
			res.failed++
			cmdapp.Log.Errorf("Row %d: %v", i+1, err)
			if _, err := fmt.Fprintf(w, "%d\t!\t%v\n", i+1, err); err != nil {
				return nil, err
			}
			continue
		}
		line := fmt.Sprintf("%d\t%q", i+1, fmt.Sprint(pr))
		if s.Class != dataset.NoClass {
			res.labelled++
			exp := lt.Symbol(s.Class)
			if matches(pr, s.Class, exp) {
				res.correct++
			}
			line += fmt.Sprintf("\t%q", exp)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// matches accepts both service flavours: label symbols and raw indexes
func matches(pr interface{}, class int, symbol string) bool {
	switch v := pr.(type) {
	case string:
		return v == symbol
	case float64:
		return int(v) == class
	}
	return false
}
