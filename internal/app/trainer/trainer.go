package trainer

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/setusign/signgo/internal/pkg/cmdapp"
	"github.com/setusign/signgo/internal/pkg/dataset"
	"github.com/setusign/signgo/internal/pkg/features"
	"github.com/setusign/signgo/internal/pkg/labels"
	"github.com/setusign/signgo/internal/pkg/model"
)

type params struct {
	data     string
	out      string
	kind     string
	k        int
	header   bool
	symbols  bool
	features int
	labels   *labels.Table
}

func train(p *params) (*model.Artifact, error) {
	if p.data == "" {
		return nil, errors.New("No dataset provided")
	}
	if p.out == "" {
		return nil, errors.New("No output file provided")
	}
	if p.features <= 0 {
		return nil, errors.Errorf("Wrong feature count %d", p.features)
	}
	samples, err := dataset.ReadFile(p.data, dataset.Options{Header: p.header, Labelled: true, Labels: p.labels, Symbols: p.symbols})
	if err != nil {
		return nil, err
	}
	cmdapp.Log.Infof("Read %d samples from %s", len(samples), p.data)

	vectors := make([][]float32, len(samples))
	classes := make([]int, len(samples))
	repaired := 0
	for i, s := range samples {
		if len(s.Features) != p.features {
			repaired++
		}
		// the same length repair as the service does on requests
		vectors[i] = features.Normalize(s.Features, p.features)
		classes[i] = s.Class
	}
	if repaired > 0 {
		cmdapp.Log.Warnf("Padded or truncated %d samples to %d features", repaired, p.features)
	}

	a, err := model.Fit(p.kind, p.k, vectors, classes)
	if err != nil {
		return nil, err
	}
	a.Info = fmt.Sprintf("trained from %s, %d samples", p.data, len(samples))
	if err := a.Save(p.out); err != nil {
		return nil, err
	}
	return a, nil
}
