package model

import (
	"compress/gzip"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

//Kind of the classical model
const (
	KindKNN      = "knn"
	KindCentroid = "centroid"
)

//Artifact is the serialized classical model
type Artifact struct {
	Kind     string      `json:"kind" validate:"oneof=knn centroid"`
	Features int         `json:"features" validate:"gt=0"`
	K        int         `json:"k,omitempty" validate:"required_if=Kind knn,gte=0"`
	Info     string      `json:"info,omitempty"`
	Vectors  [][]float32 `json:"vectors" validate:"min=1,dive,min=1"`
	Classes  []int       `json:"classes" validate:"min=1,dive,gte=0"`
}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var validate = validator.New()

//Load reads and validates the artifact. Files ending with .gz are gunzipped
func Load(file string) (*Artifact, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't open %s", file)
	}
	defer f.Close()
	var r io.Reader = f
	if strings.HasSuffix(file, ".gz") {
		gr, err := gzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't unzip %s", file)
		}
		defer gr.Close()
		r = gr
	}
	res, err := Read(r)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't load %s", file)
	}
	return res, nil
}

//Read decodes and validates the artifact
func Read(r io.Reader) (*Artifact, error) {
	res := &Artifact{}
	if err := json.NewDecoder(r).Decode(res); err != nil {
		return nil, errors.Wrap(err, "Can't decode model")
	}
	if err := res.Validate(); err != nil {
		return nil, err
	}
	return res, nil
}

//Validate checks the artifact consistency
func (a *Artifact) Validate() error {
	if err := validate.Struct(a); err != nil {
		return errors.Wrap(err, "Wrong model")
	}
	if len(a.Vectors) != len(a.Classes) {
		return errors.Errorf("Wrong model: %d vectors, %d classes", len(a.Vectors), len(a.Classes))
	}
	for i, v := range a.Vectors {
		if len(v) != a.Features {
			return errors.Errorf("Wrong model: vector %d has %d features, expected %d", i, len(v), a.Features)
		}
	}
	return nil
}

//Save writes the artifact. Files ending with .gz are gzipped
func (a *Artifact) Save(file string) error {
	if err := a.Validate(); err != nil {
		return err
	}
	f, err := os.Create(file)
	if err != nil {
		return errors.Wrapf(err, "Can't create %s", file)
	}
	defer f.Close()
	var w io.Writer = f
	var gw *gzip.Writer
	if strings.HasSuffix(file, ".gz") {
		gw = gzip.NewWriter(f)
		w = gw
	}
	if err := json.NewEncoder(w).Encode(a); err != nil {
		return errors.Wrapf(err, "Can't write %s", file)
	}
	if gw != nil {
		if err := gw.Close(); err != nil {
			return errors.Wrapf(err, "Can't write %s", file)
		}
	}
	return f.Close()
}

//NewPredictor creates the classical predictor for the artifact kind
func NewPredictor(a *Artifact) (Predictor, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	switch a.Kind {
	case KindKNN:
		return newKNN(a), nil
	case KindCentroid:
		return newCentroid(a), nil
	}
	return nil, errors.Errorf("Unknown model kind '%s'", a.Kind)
}

//LoadPredictor loads the artifact from file and creates the predictor
func LoadPredictor(file string) (Predictor, error) {
	a, err := Load(file)
	if err != nil {
		return nil, err
	}
	return NewPredictor(a)
}
