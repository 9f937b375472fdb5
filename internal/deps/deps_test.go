package deps

import "testing"

func TestCheckBinariesFindsKnownCommand(t *testing.T) {
	results := CheckBinaries([]Requirement{
		{Name: "Shell", Command: "sh", Description: "Always present on POSIX systems"},
	})
	if len(results) != 1 {
		t.Fatalf("results = %d", len(results))
	}
	if !results[0].Available {
		t.Fatalf("sh should be available: %s", results[0].Detail)
	}
}

func TestCheckBinariesReportsMissingCommand(t *testing.T) {
	results := CheckBinaries([]Requirement{
		{Name: "Nonsense", Command: "definitely-not-a-real-binary"},
	})
	if results[0].Available {
		t.Fatal("missing binary reported as available")
	}
	if results[0].Detail == "" {
		t.Fatal("expected detail for missing binary")
	}
}

func TestCheckBinariesHandlesEmptyCommand(t *testing.T) {
	results := CheckBinaries([]Requirement{{Name: "Unset"}})
	if results[0].Available {
		t.Fatal("empty command reported as available")
	}
	if results[0].Detail != "command not configured" {
		t.Fatalf("detail = %q", results[0].Detail)
	}
}
