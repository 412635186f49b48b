package deep

import (
	"context"
	"io"
	"os/signal"
	"time"

	"github.com/heptiolabs/healthcheck"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/setusign/signgo/internal/pkg/cmdapp"
	"github.com/setusign/signgo/internal/pkg/labels"
	"github.com/setusign/signgo/internal/pkg/model"
	"github.com/setusign/signgo/internal/pkg/onnx"
	"github.com/setusign/signgo/internal/pkg/predict"
	"github.com/setusign/signgo/internal/pkg/tf"
)

var appName = "ASL Deep Landmark Classifier Service"

var rootCmd = &cobra.Command{
	Use:   "deepService",
	Short: appName,
	Long:  `HTTP server to predict ASL class index from hand landmarks with a neural network`,
	Run:   run,
}

func init() {
	cmdapp.InitApplication(rootCmd)
	rootCmd.PersistentFlags().Int32P("port", "", 8000, "Default service port")
	cmdapp.Config.BindPFlag("port", rootCmd.PersistentFlags().Lookup("port"))
	setDefaults()
}

func setDefaults() {
	cmdapp.Config.SetDefault("port", 8000)
	cmdapp.Config.SetDefault("model.dir", "model")
	cmdapp.Config.SetDefault("tf.waitTimeout", time.Minute)
	cmdapp.Config.SetDefault("features.count", 0)
	cmdapp.Config.SetDefault("labels.enabled", false)
	cmdapp.Config.SetDefault("landmarks.required", false)
	cmdapp.Config.SetDefault("cors.origins", []string{"http://localhost:5173"})
}

//Execute starts the server
func Execute() {
	cmdapp.Execute(rootCmd)
}

func run(cmd *cobra.Command, args []string) {
	cmdapp.Log.Info("Starting " + appName)

	s, err := loadSettings(cmdapp.Config.GetString("model.dir"))
	cmdapp.CheckOrPanic(err, "Cannot init model settings")
	cmdapp.Log.Infof("Model backend: %s, info: %s", s.Backend, s.Info)

	data, err := predict.NewServiceData("deep_service")
	cmdapp.CheckOrPanic(err, "Can't init metrics")
	data.Health = healthcheck.NewHandler()

	closer, err := initPredictor(data, s)
	cmdapp.CheckOrPanic(err, "Cannot init model")
	defer func() { cmdapp.LogIf(closer.Close()) }()

	err = initService(data)
	cmdapp.CheckOrPanic(err, "")

	err = predict.StartWebServer(data)
	cmdapp.CheckOrPanic(err, "")
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func initPredictor(data *predict.ServiceData, s *Settings) (io.Closer, error) {
	switch s.Backend {
	case backendONNX:
		sess, err := onnx.NewSession(s.File, onnx.Settings{Library: cmdapp.Config.GetString("onnx.library"),
			Input: s.Input, Output: s.Output, InputShape: s.InputShape, OutputShape: s.OutputShape})
		if err != nil {
			return nil, err
		}
		data.Predictor = sess
		return closerFunc(func() error { sess.Close(); return nil }), nil
	case backendTFServing:
		w, err := tf.NewWrapper(cmdapp.Config.GetString("tf.url"), tf.Settings{Name: s.Name, Signature: s.Signature,
			Input: s.Input, Output: s.Output, Features: s.Features})
		if err != nil {
			return nil, err
		}
		ctx, cancel := interruptContext()
		defer cancel()
		if err = w.WaitAvailable(ctx, cmdapp.Config.GetDuration("tf.waitTimeout")); err != nil {
			w.Close()
			return nil, err
		}
		data.Health.AddLivenessCheck("tensorflow", healthcheck.Async(w.Healthy, 10*time.Second))
		data.Predictor = w
		return w, nil
	}
	return nil, errors.Errorf("Unknown backend '%s'", s.Backend)
}

// interruptContext is canceled on SIGINT/SIGTERM
func interruptContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sc := cmdapp.NewSignalChannel()
	go func() {
		select {
		case <-sc:
			cmdapp.Log.Info("Interrupted")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sc)
	}()
	return ctx, cancel
}

func initService(data *predict.ServiceData) error {
	if cmdapp.Config.GetBool("labels.enabled") {
		var err error
		if data.Labels, err = labels.LoadOrDefault(cmdapp.Config.GetString("labels.file")); err != nil {
			return err
		}
	}
	data.FeatureCount = cmdapp.Config.GetInt("features.count")
	data.RequireLandmarks = cmdapp.Config.GetBool("landmarks.required")
	data.Origins = cmdapp.GetStrings("cors.origins")
	data.Status = predict.Status{Key: "message", Message: "ASL backend is running!"}
	data.Port = cmdapp.Config.GetInt("port")
	cmdapp.Log.Infof("Features: %d, CORS origins: %v", data.FeatureCount, data.Origins)
	return nil
}

var _ model.Predictor = (*tf.Wrapper)(nil)
var _ model.Predictor = (*onnx.Session)(nil)
