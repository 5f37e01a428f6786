package simulator

import "fmt"

// InvalidConfigError reports a risk configuration rejected before any
// simulation runs.
type InvalidConfigError struct {
	Field  string
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s: %s", e.Field, e.Reason)
}

// DataIntegrityError reports a malformed bar encountered mid-series. It is
// fatal for the pair being simulated, not for the whole batch.
type DataIntegrityError struct {
	Symbol   string
	BarIndex int
	Err      error
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("data integrity: %s bar %d: %v", e.Symbol, e.BarIndex, e.Err)
}

func (e *DataIntegrityError) Unwrap() error { return e.Err }
