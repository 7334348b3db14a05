package voltammetry

import "github.com/pkg/errors"

// Selection names which cycles of a matrix are kept for export.
type Selection int

const (
	SelectAll Selection = iota
	SelectFirst
	SelectSpecific     // one cycle, 1-based index in Cycle
	SelectSecondOnward // every cycle but the first
)

// String implements fmt.Stringer.
func (s Selection) String() string {
	switch s {
	case SelectAll:
		return "all"
	case SelectFirst:
		return "first"
	case SelectSpecific:
		return "specific"
	case SelectSecondOnward:
		return "second-onward"
	}
	return "unknown"
}

// SelectCycles returns the chosen cycle rows without copying them. cycle is
// the 1-based index used with SelectSpecific and ignored otherwise.
func SelectCycles(currents [][]float64, sel Selection, cycle int) ([][]float64, error) {
	n := len(currents)
	if n == 0 {
		return nil, errors.New("voltammetry: no cycles to select from")
	}
	switch sel {
	case SelectAll:
		return currents, nil
	case SelectFirst:
		return currents[:1], nil
	case SelectSpecific:
		if cycle < 1 || cycle > n {
			return nil, errors.Errorf("voltammetry: cycle %d not in 1..%d", cycle, n)
		}
		return currents[cycle-1 : cycle], nil
	case SelectSecondOnward:
		if n < 2 {
			return nil, errors.Errorf("voltammetry: need at least 2 cycles, have %d", n)
		}
		return currents[1:], nil
	}
	return nil, errors.Errorf("voltammetry: unknown selection %d", int(sel))
}
