// Package rate provides the single-tier building blocks of a capacity model.
//
// # Overview
//
// Two step functions are modelled:
//
//   - UnitaryRate: units requests every period, the finest grant cadence of
//     an access policy such as "10 req/s"
//   - QuotaWindow: a cap of units requests per period, renewing in full at
//     every period boundary, such as "1800 req/hour"
//
// Both grant their first batch at t=0, so the capacity by instant t is
//
//	units * floor(t/period + 1)
//
// and MinTime inverts that relation to the earliest instant at which a
// goal is reached.
//
// # Acceleration Factor
//
// A rate of u units per p can be re-expressed as fa units every fa*(p/u)
// without changing its throughput. The largest integer fa for which that
// holds is MaxFactor, and a rate with units == 1 is unitary (MaxFactor 1).
//
//	r, _ := rate.NewUnitaryRate(10, timeval.MustNew(1, timeval.Second))
//	slow, _ := r.EquivalentRate(2) // 2 every 200ms
//
// # Text Form
//
// ParseUnitary and ParseQuota read the "N/duration" form used by the
// command line and scenario files, e.g. "10/1s" or "1800/1h".
//
// # Pacing
//
// Pacer places successive grants of a sustained speed on a virtual clock
// using a token bucket, giving the instants at which a backlog drains
// without ever blocking.
package rate
