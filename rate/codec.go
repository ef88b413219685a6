// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package rate

// MarshalText renders the rate in its "N/duration" form.
func (r UnitaryRate) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText reads the "N/duration" form.
func (r *UnitaryRate) UnmarshalText(text []byte) error {
	parsed, err := ParseUnitary(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// MarshalText renders the quota in its "N/duration" form.
func (q QuotaWindow) MarshalText() ([]byte, error) {
	return []byte(q.String()), nil
}

// UnmarshalText reads the "N/duration" form.
func (q *QuotaWindow) UnmarshalText(text []byte) error {
	parsed, err := ParseQuota(string(text))
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}
