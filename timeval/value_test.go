// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package timeval

import (
	"math"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/go-core-stack/capacity/errors"
)

func TestNewRejectsUnknownUnit(t *testing.T) {
	_, err := New(1, Unit(42))
	if !errors.IsInvalidArgument(err) {
		t.Fatalf("expected InvalidArgument for unknown unit, got %v", err)
	}
	v, err := New(2, Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Milliseconds() != 2000 {
		t.Fatalf("2s in ms: got %v want 2000", v.Milliseconds())
	}
}

func TestConversions(t *testing.T) {
	t.Run("hour to minutes", func(t *testing.T) {
		got := MustNew(1.5, Hour).To(Minute)
		if got.Magnitude() != 90 || got.Unit() != Minute {
			t.Fatalf("1.5h to min: got %v", got)
		}
	})
	t.Run("month is thirty days", func(t *testing.T) {
		got := MustNew(1, Month).To(Day)
		if got.Magnitude() != 30 {
			t.Fatalf("1month to day: got %v want 30day", got)
		}
	})
	t.Run("year is twelve months", func(t *testing.T) {
		got := MustNew(1, Year).To(Month)
		if got.Magnitude() != 12 {
			t.Fatalf("1year to month: got %v want 12month", got)
		}
	})
}

func TestArithmeticKeepsLeftUnit(t *testing.T) {
	sum := MustNew(1, Minute).Add(MustNew(30, Second))
	if sum.Unit() != Minute || sum.Magnitude() != 1.5 {
		t.Fatalf("1min + 30s: got %v want 1.5min", sum)
	}
	diff := MustNew(2, Second).Sub(MustNew(500, Millisecond))
	if diff.Unit() != Second || diff.Magnitude() != 1.5 {
		t.Fatalf("2s - 500ms: got %v want 1.5s", diff)
	}
	scaled := MustNew(3, Hour).Scale(2)
	if scaled.String() != "6h" {
		t.Fatalf("3h * 2: got %v want 6h", scaled)
	}
	if MustNew(1, Second).Compare(Millis(1000)) != 0 {
		t.Fatalf("1s should compare equal to 1000ms")
	}
	if MustNew(1, Second).Compare(Millis(999)) != 1 {
		t.Fatalf("1s should compare greater than 999ms")
	}
}

func TestFiner(t *testing.T) {
	u, err := Hour.Finer()
	if err != nil || u != Minute {
		t.Fatalf("finer of h: got %v, %v", u, err)
	}
	if _, err := Millisecond.Finer(); !errors.IsInvalidArgument(err) {
		t.Fatalf("expected InvalidArgument below ms, got %v", err)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		ms   float64
		unit Unit
	}{
		{"1h30min", 5400000, Hour},
		{"250ms", 250, Millisecond},
		{"2.5s", 2500, Second},
		{"1 day 12 h", 129600000, Day},
		{"1month", 2592000000, Month},
		{"2week", 1209600000, Week},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(v.Milliseconds()-tt.ms) > 1e-6 {
				t.Fatalf("ms mismatch: got %v want %v", v.Milliseconds(), tt.ms)
			}
			if v.Unit() != tt.unit {
				t.Fatalf("unit mismatch: got %v want %v", v.Unit(), tt.unit)
			}
		})
	}

	if _, err := Parse("soon"); !errors.IsInvalidArgument(err) {
		t.Fatalf("expected InvalidArgument for text without tokens, got %v", err)
	}
}

func TestBestUnit(t *testing.T) {
	tests := []struct {
		ms   float64
		want string
	}{
		{999, "999ms"},
		{1000, "1s"},
		{90000, "1.5min"},
		{3600000, "1h"},
		{86400000, "1day"},
		{604800000, "1week"},
		{2592000000, "1month"},
		{31104000000, "1year"},
	}
	for _, tt := range tests {
		if got := BestUnit(tt.ms).String(); got != tt.want {
			t.Fatalf("BestUnit(%v): got %s want %s", tt.ms, got, tt.want)
		}
	}
}

func TestFormat(t *testing.T) {
	if got := Format(Zero); got != "0s" {
		t.Fatalf("zero: got %q", got)
	}
	if got := Format(Millis(93784005)); got != "1day2h3min4s5ms" {
		t.Fatalf("mixed: got %q", got)
	}
	if got := Format(MustNew(90, Minute)); got != "1h30min" {
		t.Fatalf("90min: got %q", got)
	}
}

func TestYAMLCodec(t *testing.T) {
	var doc struct {
		Window  Value `yaml:"window"`
		Timeout Value `yaml:"timeout"`
	}
	src := "window: 1h30min\ntimeout: 1500\n"
	if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if doc.Window.Milliseconds() != 5400000 {
		t.Fatalf("window: got %v", doc.Window)
	}
	if doc.Timeout.Milliseconds() != 1500 {
		t.Fatalf("timeout: got %v", doc.Timeout)
	}

	out, err := yaml.Marshal(map[string]Value{"period": MustNew(2, Second)})
	if err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}
	if string(out) != "period: 2s\n" {
		t.Fatalf("encoded: got %q", string(out))
	}

	bad := "window: [1, 2]\n"
	if err := yaml.Unmarshal([]byte(bad), &doc); err == nil {
		t.Fatalf("expected error decoding a sequence as a duration")
	}
}
