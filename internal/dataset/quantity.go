package dataset

import "fmt"

// Quantity is an optionally available derived value. Pipelines hand these to
// the export layer instead of raising on missing inputs or failed fits, so a
// single reshape pass can report every quantity it could compute.
type Quantity struct {
	Value float64
	OK    bool
	Err   error // reason the value is unavailable, nil when OK or toggled off
}

// Calculated wraps an available value.
func Calculated(v float64) Quantity {
	return Quantity{Value: v, OK: true}
}

// NotCalculated marks a value unavailable for the given reason. A nil reason
// means the computation was simply not requested.
func NotCalculated(err error) Quantity {
	return Quantity{Err: err}
}

// Format renders the value for export: the formatted number when available,
// the literal placeholder otherwise.
func (q Quantity) Format(verb string) string {
	if !q.OK {
		if q.Err != nil {
			return "Err"
		}
		return "Not calculated"
	}
	return fmt.Sprintf(verb, q.Value)
}
