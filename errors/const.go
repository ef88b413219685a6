// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package errors

// ErrCode is type for multiple reconizable errors.
type ErrCode int

// error codes
const (
	// if error is unknown
	Unknown ErrCode = 0

	// if the named plan, demand or tier is not found
	NotFound ErrCode = 1

	// if an entry with the same name is already present
	AlreadyExists ErrCode = 2

	// if the argument is not valid, typically a capacity goal,
	// a time range or an acceleration factor failing validation
	InvalidArgument ErrCode = 3

	// if the requested value lies beyond what the model can
	// answer, e.g. a goal not reachable within the active time
	OutOfRange ErrCode = 4
)

// String returns a short name for the error code
func (c ErrCode) String() string {
	switch c {
	case NotFound:
		return "NotFound"
	case AlreadyExists:
		return "AlreadyExists"
	case InvalidArgument:
		return "InvalidArgument"
	case OutOfRange:
		return "OutOfRange"
	}
	return "Unknown"
}
