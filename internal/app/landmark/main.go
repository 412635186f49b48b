package landmark

import (
	"github.com/heptiolabs/healthcheck"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/setusign/signgo/internal/pkg/cmdapp"
	"github.com/setusign/signgo/internal/pkg/features"
	"github.com/setusign/signgo/internal/pkg/labels"
	"github.com/setusign/signgo/internal/pkg/model"
	"github.com/setusign/signgo/internal/pkg/predict"
)

var appName = "ASL Landmark Classifier Service"

var rootCmd = &cobra.Command{
	Use:   "landmarkService",
	Short: appName,
	Long:  `HTTP server to predict ASL symbols from hand landmarks with a classical model`,
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
	cmdapp.Config.SetDefault("model.path", "model.json")
	cmdapp.Config.SetDefault("features.count", features.LandmarkCount)
	cmdapp.Config.SetDefault("labels.enabled", true)
	cmdapp.Config.SetDefault("landmarks.required", true)
	cmdapp.Config.SetDefault("cors.origins", []string{"*"})
}

//Execute starts the server
func Execute() {
	cmdapp.Execute(rootCmd)
}

func run(cmd *cobra.Command, args []string) {
	cmdapp.Log.Info("Starting " + appName)

	data, err := newServiceData()
	cmdapp.CheckOrPanic(err, "")

	err = predict.StartWebServer(data)
	cmdapp.CheckOrPanic(err, "")
}

func newServiceData() (*predict.ServiceData, error) {
	data, err := predict.NewServiceData("landmark_service")
	if err != nil {
		return nil, err
	}

	mf := cmdapp.Config.GetString("model.path")
	cmdapp.Log.Infof("Loading model from %s", mf)
	a, err := model.Load(mf)
	if err != nil {
		return nil, err
	}
	data.FeatureCount, err = featureCount(cmdapp.Config.GetInt("features.count"), a.Features)
	if err != nil {
		return nil, errors.Wrapf(err, "Wrong model %s", mf)
	}
	data.Predictor, err = model.NewPredictor(a)
	if err != nil {
		return nil, err
	}

	if cmdapp.Config.GetBool("labels.enabled") {
		data.Labels, err = labels.LoadOrDefault(cmdapp.Config.GetString("labels.file"))
		if err != nil {
			return nil, err
		}
		cmdapp.Log.Infof("Labels: %d", data.Labels.Len())
	}
	data.RequireLandmarks = cmdapp.Config.GetBool("landmarks.required")
	data.Origins = cmdapp.GetStrings("cors.origins")
	data.Status = predict.Status{Key: "status", Message: "Server is running!"}
	data.Health = healthcheck.NewHandler()
	data.Port = cmdapp.Config.GetInt("port")
	cmdapp.Log.Infof("Features: %d, CORS origins: %v", data.FeatureCount, data.Origins)
	return data, nil
}

// featureCount returns the request length repair target: the configured count
// must match the model input, 0 takes it from the model
func featureCount(configured, modelFeatures int) (int, error) {
	if configured <= 0 {
		return modelFeatures, nil
	}
	if configured != modelFeatures {
		return 0, errors.Errorf("features.count %d differs from model input size %d", configured, modelFeatures)
	}
	return configured, nil
}
