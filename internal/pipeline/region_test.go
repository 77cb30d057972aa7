package pipeline

import (
	"testing"

	"github.com/servsurcp-stack/dashboard-concordance/internal"
)

func regionalFixture() *internal.RawTable {
	t := internal.NewRawTable([]string{
		"Date",
		"REGION",
		"AGENCES/ ANTENNES REGION EST",
		"AGENCES/ANTENNES REGION NORD",
		"AGENCES/ANTENNES REGION OUEST",
		"AGENCES/ANTENNES REGION SUD",
	})
	t.AppendRow([]string{"2024-03-14", "REGION SUD", "", "", "", "SITE-A"})
	t.AppendRow([]string{"2024-03-14", "REGION EST", "SITE-B", "", "", ""})
	t.AppendRow([]string{"2024-03-14", "REGION NORD", "", "SITE-C", "", ""})
	t.AppendRow([]string{"2024-03-14", "REGION OUEST", "", "", "SITE-D", ""})
	t.AppendRow([]string{"2024-03-14", "REGION CENTRE", "X", "X", "X", "X"})
	t.AppendRow([]string{"2024-03-14", "", "X", "X", "X", "X"})
	return t
}

func TestReconcileRegions(t *testing.T) {
	out, diags := ReconcileRegions(regionalFixture())

	wantSites := []string{"SITE-A", "SITE-B", "SITE-C", "SITE-D", "", ""}
	for i, want := range wantSites {
		if got := out.Value(i, "AGENCES/ANTENNES"); got != want {
			t.Fatalf("row %d: got %q want %q", i, got, want)
		}
	}
	if diags.UnknownRegions != 1 {
		t.Fatalf("unknown regions: got %d", diags.UnknownRegions)
	}
}

func TestReconcileRegionsDropsSourceColumns(t *testing.T) {
	out, _ := ReconcileRegions(regionalFixture())
	for _, col := range []string{
		"AGENCES/ ANTENNES REGION EST",
		"AGENCES/ANTENNES REGION NORD",
		"AGENCES/ANTENNES REGION OUEST",
		"AGENCES/ANTENNES REGION SUD",
	} {
		if out.HasColumn(col) {
			t.Fatalf("column %q survived reconciliation", col)
		}
	}
	if !out.HasColumn("AGENCES/ANTENNES") {
		t.Fatal("canonical site column missing")
	}
}

func TestReconcileRegionsEmptyIffUnknown(t *testing.T) {
	out, _ := ReconcileRegions(regionalFixture())
	known := map[string]bool{"REGION EST": true, "REGION NORD": true, "REGION OUEST": true, "REGION SUD": true}
	for i := range out.Rows {
		site := out.Value(i, "AGENCES/ANTENNES")
		if known[out.Value(i, "REGION")] == (site == "") {
			t.Fatalf("row %d: region %q site %q", i, out.Value(i, "REGION"), site)
		}
	}
}

func TestReconcileRegionsDoesNotMutateInput(t *testing.T) {
	in := regionalFixture()
	before := len(in.Columns)
	_, _ = ReconcileRegions(in)
	if len(in.Columns) != before {
		t.Fatal("input table mutated")
	}
}
