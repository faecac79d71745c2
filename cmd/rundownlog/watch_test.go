package main

import (
	"testing"

	"github.com/rundownlog/rundownlog-go/pkg/rundownlog/event"
)

func TestValidFormats(t *testing.T) {
	tests := []struct {
		format string
		valid  bool
	}{
		{"jsonl", true},
		{"pretty", true},
		{"json", false},
		{"xml", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			got := ValidFormats[tt.format]
			if got != tt.valid {
				t.Errorf("ValidFormats[%q] = %v, want %v", tt.format, got, tt.valid)
			}
		})
	}
}

func TestBuildKindFilter(t *testing.T) {
	filter, err := buildKindFilter(nil)
	if err != nil {
		t.Fatalf("buildKindFilter(nil) error = %v", err)
	}
	if filter != nil {
		t.Errorf("buildKindFilter(nil) = %v, want nil", filter)
	}

	filter, err = buildKindFilter([]string{"zone", "gatherable"})
	if err != nil {
		t.Fatalf("buildKindFilter() error = %v", err)
	}
	if !filter[event.KindZone] || !filter[event.KindGatherable] {
		t.Errorf("filter = %v, want zone and gatherable allowed", filter)
	}
	if filter[event.KindSeeds] {
		t.Error("filter should not allow seeds")
	}

	if _, err := buildKindFilter([]string{"bogus"}); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestPickStr(t *testing.T) {
	if got := pickStr("flag", "config"); got != "flag" {
		t.Errorf("pickStr = %q, want flag value", got)
	}
	if got := pickStr("", "config"); got != "config" {
		t.Errorf("pickStr = %q, want config value", got)
	}
}
