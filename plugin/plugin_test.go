package plugin

import (
	"context"
	"testing"
)

func TestStatus_String(t *testing.T) {
	cases := map[Status]string{
		StatusIdle:    "idle",
		StatusLoading: "loading",
		StatusActive:  "active",
		StatusFailed:  "failed",
		Status(42):    "unknown",
	}
	for status, want := range cases {
		if got := status.String(); got != want {
			t.Errorf("Status(%d).String() = %q, want %q", status, got, want)
		}
	}
}

func TestCapabilities_Has(t *testing.T) {
	caps := Capabilities{
		Server: func(ctx context.Context) (any, error) { return "srv", nil },
		Hooks:  func(ctx context.Context) (any, error) { return nil, nil },
	}

	if !caps.Has(CapabilityServer) {
		t.Error("server capability should be present")
	}
	if caps.Has(CapabilityComponents) {
		t.Error("components capability should be absent")
	}
	if !caps.Has(CapabilityHooks) {
		t.Error("hooks capability should be present")
	}
	if caps.Has(CapabilityKind("bogus")) {
		t.Error("unknown capability kind should be absent")
	}
}

func TestCapabilities_Kinds(t *testing.T) {
	caps := Capabilities{
		Components: func(ctx context.Context) (any, error) { return nil, nil },
	}
	kinds := caps.Kinds()
	if len(kinds) != 1 || kinds[0] != CapabilityComponents {
		t.Errorf("Kinds() = %v, want [components]", kinds)
	}

	if got := (Capabilities{}).Kinds(); len(got) != 0 {
		t.Errorf("empty set Kinds() = %v, want none", got)
	}
}
