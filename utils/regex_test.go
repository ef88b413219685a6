// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package utils

import (
	"testing"
)

func TestIsValidName(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"basic", true},
		{"pro-2025", true},
		{"crawler_v2.1", true},
		{"9am", true},
		{"", false},
		{"my plan", false},
		{"-leading", false},
		{".hidden", false},
		{"plan/1h", false},
	}

	for _, test := range tests {
		result := IsValidName(test.input)
		if result != test.expected {
			t.Errorf("IsValidName(%q) = %v; want %v", test.input, result, test.expected)
		}
	}
}
