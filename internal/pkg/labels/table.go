package labels

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

//Unknown is returned for a class index missing in the table
const Unknown = "?"

var defaultSymbols = []string{
	"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L", "M",
	"N", "O", "P", "Q", "R", "S", "T", "U", "V", "W", "X", "Y", "Z",
	"0", "1", "2", "3", "4", "5", "6", "7", "8", "9",
	" ", ".",
}

//Table maps class index to display symbol. It is not modified after creation
type Table struct {
	symbols map[int]string
	indexes map[string]int
}

//Default returns the ASL table: 0..25 letters, 26..35 digits, 36 space, 37 period
func Default() *Table {
	m := make(map[int]string, len(defaultSymbols))
	for i, s := range defaultSymbols {
		m[i] = s
	}
	return newTable(m)
}

func newTable(m map[int]string) *Table {
	res := &Table{symbols: m, indexes: make(map[string]int, len(m))}
	for k, v := range m {
		res.indexes[v] = k
	}
	return res
}

//Load reads a yaml file with `index: symbol` pairs
func Load(file string) (*Table, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't open %s", file)
	}
	defer f.Close()
	m := map[int]string{}
	if err := yaml.NewDecoder(f).Decode(&m); err != nil {
		return nil, errors.Wrapf(err, "Can't decode %s", file)
	}
	if len(m) == 0 {
		return nil, errors.Errorf("No labels in %s", file)
	}
	for k := range m {
		if k < 0 {
			return nil, errors.Errorf("Wrong index %d in %s", k, file)
		}
	}
	return newTable(m), nil
}

//Symbol returns the symbol for index or Unknown
func (t *Table) Symbol(index int) string {
	if s, f := t.symbols[index]; f {
		return s
	}
	return Unknown
}

//Index returns class index for a symbol
func (t *Table) Index(symbol string) (int, bool) {
	i, f := t.indexes[symbol]
	return i, f
}

//Len returns number of known classes
func (t *Table) Len() int {
	return len(t.symbols)
}

//LoadOrDefault loads the table from file, or returns Default for an empty name
func LoadOrDefault(file string) (*Table, error) {
	if file == "" {
		return Default(), nil
	}
	return Load(file)
}
