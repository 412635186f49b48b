package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/setusign/signgo/internal/pkg/labels"
)

//NoClass marks an unlabelled sample
const NoClass = -1

//Sample is one landmark row
type Sample struct {
	Class    int
	Features []float32
}

//Options for reading.
//
//A label is read as a class index when it is an integer, otherwise it is
//looked up in Labels. Set Symbols when digit labels mean the table symbols
//("5" is then class 31 in the default table, not class 5).
//The space label may be written as is or quoted: `" ",0.1,...`
type Options struct {
	Header   bool
	Labelled bool
	Labels   *labels.Table
	// Symbols reads every label through Labels
	Symbols bool
}

//ReadFile reads samples from a csv file
func ReadFile(file string, opt Options) ([]Sample, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't open %s", file)
	}
	defer f.Close()
	return Read(f, opt)
}

//Read reads csv rows: `[label,]f1,f2,...`
func Read(r io.Reader, opt Options) ([]Sample, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	var res []Sample
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "Can't read line %d", line)
		}
		if line == 1 && opt.Header {
			continue
		}
		s, err := parse(rec, opt)
		if err != nil {
			return nil, errors.Wrapf(err, "Wrong line %d", line)
		}
		res = append(res, s)
	}
	return res, nil
}

func parse(rec []string, opt Options) (Sample, error) {
	res := Sample{Class: NoClass}
	if opt.Labelled {
		if len(rec) == 0 {
			return res, errors.New("No label")
		}
		c, err := parseClass(rec[0], opt)
		if err != nil {
			return res, err
		}
		res.Class = c
		rec = rec[1:]
	}
	res.Features = make([]float32, len(rec))
	for i, s := range rec {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
		if err != nil {
			return res, errors.Wrapf(err, "Wrong value in column %d", i+1)
		}
		res.Features[i] = float32(v)
	}
	return res, nil
}

func parseClass(s string, opt Options) (int, error) {
	if !opt.Symbols {
		if c, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			if c < 0 {
				return 0, errors.Errorf("Wrong class %d", c)
			}
			return c, nil
		}
	}
	if opt.Labels != nil {
		// space is a label itself, so the raw value is tried first
		if c, f := opt.Labels.Index(s); f {
			return c, nil
		}
		if c, f := opt.Labels.Index(strings.TrimSpace(s)); f {
			return c, nil
		}
	}
	return 0, errors.Errorf("Unknown label '%s'", s)
}
