// Package capacity models the requests an access policy allows over time.
//
// A Model stacks a base rate and any number of quota windows, finest
// period first:
//
//	base, _ := rate.ParseUnitary("10/1s")
//	hourly, _ := rate.ParseQuota("1800/1h")
//	m, rejected, err := capacity.NewModel(base, capacity.WithQuotas(hourly))
//
// Capacity by instant t recurses down the stack. The base rate grants
// units every period starting at the origin, and each quota tier counts
// its fully elapsed windows and, inside the current window, follows the
// tier below it clamped at its own cap.
//
// Quotas the stack below can never fill within their own period are
// dropped at construction and returned as Rejection records so callers can
// report them. The remaining tiers are frozen for the life of the model.
//
// MinTime inverts the curve without searching, InflectionPoints returns the
// vertices needed to draw it exactly, and Sample evaluates it on the base
// rate grid using a bounded pool of workers.
package capacity
