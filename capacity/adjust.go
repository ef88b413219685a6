// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package capacity

import (
	"math"

	"github.com/go-core-stack/capacity/errors"
	"github.com/go-core-stack/capacity/rate"
	"github.com/go-core-stack/capacity/timeval"
)

// WithBaseRate builds a new model over base keeping the requested
// quotas, active ceiling and sampling workers. Quotas are admitted
// afresh against the new rate.
func (m *Model) WithBaseRate(base rate.UnitaryRate) (*Model, []Rejection, error) {
	return m.derive(base)
}

// ReduceRate slows the base rate down to a single request every
// interval, where the interval moves linearly from the first quota's
// uniform pacing at 0% to the base rate's own pacing at 100%.
func (m *Model) ReduceRate(pct float64) (*Model, []Rejection, error) {
	if pct < 0 || pct > 100 || math.IsNaN(pct) {
		return nil, nil, errors.Wrapf(errors.InvalidArgument, "reduction percentage must be within [0, 100], got %v", pct)
	}
	if len(m.quotas) == 0 {
		return nil, nil, errors.Wrap(errors.InvalidArgument, "rate reduction needs at least one quota")
	}
	if pct == 100 {
		return m, nil, nil
	}

	first := m.quotas[0]
	slowest := first.Period().Milliseconds() / first.Units()
	current := m.rate.Interval()
	interval := slowest - (slowest-current)*pct/100

	base, err := rate.NewUnitaryRate(1, timeval.BestUnit(interval))
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("reduced base rate", "from", m.rate.String(), "to", base.String(), "percentage", pct)
	return m.derive(base)
}
