// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package utils

import "regexp"

// names start with a letter or digit and carry no spaces
var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._\-]*$`)

// IsValidName returns true if the provided string can name a plan or
// a demand.
// Usage:
//
//	valid := utils.IsValidName("pro-2025") // returns true
//	valid := utils.IsValidName("my plan")  // returns false
func IsValidName(name string) bool {
	return nameRegex.MatchString(name)
}
