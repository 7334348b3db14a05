package dataset

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Canonical text form: '#'-prefixed lines are comments, data lines are
// comma-separated floats. Traces carry one (x, y) pair per line. Cycle files
// carry the potential axis on the first data line and one cycle per line
// after it. Grid files carry the x axis, then the y axis, then ny rows of
// currents.

func dataLines(path string) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open dataset")
	}
	defer f.Close()

	var rows [][]float64
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	lineno := 0
	for sc.Scan() {
		lineno++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ",")
		row := make([]float64, 0, len(fields))
		for _, fld := range fields {
			fld = strings.TrimSpace(fld)
			if fld == "" {
				continue
			}
			v, err := strconv.ParseFloat(fld, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d: bad value %q", lineno, fld)
			}
			row = append(row, v)
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read dataset")
	}
	return rows, nil
}

// ReadTrace loads a two-column canonical trace file.
func ReadTrace(path string) (Trace, error) {
	rows, err := dataLines(path)
	if err != nil {
		return Trace{}, err
	}
	t := Trace{X: make([]float64, 0, len(rows)), Y: make([]float64, 0, len(rows))}
	for i, row := range rows {
		if len(row) < 2 {
			return Trace{}, errors.Errorf("data row %d: need 2 columns, got %d", i+1, len(row))
		}
		t.X = append(t.X, row[0])
		t.Y = append(t.Y, row[1])
	}
	if err := t.Validate(); err != nil {
		return Trace{}, err
	}
	return t, nil
}

// ReadCycleMatrix loads a canonical cycle file: potential axis first, then
// one current row per cycle.
func ReadCycleMatrix(path string) (CycleMatrix, error) {
	rows, err := dataLines(path)
	if err != nil {
		return CycleMatrix{}, err
	}
	if len(rows) < 2 {
		return CycleMatrix{}, errors.New("cycle file needs a potential axis and at least one cycle row")
	}
	m := CycleMatrix{Potential: rows[0], Currents: rows[1:]}
	if err := m.Validate(); err != nil {
		return CycleMatrix{}, err
	}
	return m, nil
}

// ReadGrid loads a canonical grid file: x axis, y axis, then ny current rows.
func ReadGrid(path string) (Grid2D, error) {
	rows, err := dataLines(path)
	if err != nil {
		return Grid2D{}, err
	}
	if len(rows) < 3 {
		return Grid2D{}, errors.New("grid file needs x axis, y axis and current rows")
	}
	g := Grid2D{X: rows[0], Y: rows[1], Currents: rows[2:]}
	if err := g.Validate(); err != nil {
		return Grid2D{}, err
	}
	return g, nil
}
