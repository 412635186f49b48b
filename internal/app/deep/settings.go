package deep

import (
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const (
	backendONNX      = "onnx"
	backendTFServing = "tfserving"
)

//Settings describes the deep model kept in the model dir
type Settings struct {
	Info        string  `yaml:"info"`
	Backend     string  `yaml:"backend" validate:"oneof=onnx tfserving"`
	File        string  `yaml:"file" validate:"required_if=Backend onnx"`
	Name        string  `yaml:"name" validate:"required_if=Backend tfserving"`
	Signature   string  `yaml:"signature"`
	Input       string  `yaml:"input" validate:"required"`
	Output      string  `yaml:"output" validate:"required_if=Backend onnx"`
	Features    int     `yaml:"features" validate:"gte=0"`
	InputShape  []int64 `yaml:"inputShape,flow" validate:"required_if=Backend onnx"`
	OutputShape []int64 `yaml:"outputShape,flow" validate:"required_if=Backend onnx"`
}

func loadSettings(dir string) (*Settings, error) {
	if dir == "" {
		return nil, errors.New("No model.dir provided")
	}
	file := filepath.Join(dir, "settings.yml")
	f, err := os.Open(file)
	if err != nil {
		return nil, errors.Wrap(err, "Cannot load settings")
	}
	defer f.Close()
	res := Settings{}
	if err = yaml.NewDecoder(f).Decode(&res); err != nil {
		return nil, errors.Wrapf(err, "Cannot decode %s", file)
	}
	if err = validator.New().Struct(&res); err != nil {
		return nil, errors.Wrapf(err, "Wrong settings in %s", file)
	}
	if res.File != "" && !filepath.IsAbs(res.File) {
		res.File = filepath.Join(dir, res.File)
	}
	return &res, nil
}
