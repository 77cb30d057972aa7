package pipeline

import (
	"github.com/servsurcp-stack/dashboard-concordance/internal"
	"github.com/servsurcp-stack/dashboard-concordance/internal/util"
)

const (
	regionColumn = "REGION"
	siteColumn   = "AGENCES/ANTENNES"
)

// regionSiteColumns maps the discriminant region label to the single
// source column holding the site name for that region. The stray space
// in the EST header is how the form actually exports it.
var regionSiteColumns = map[string]string{
	"REGION EST":   "AGENCES/ ANTENNES REGION EST",
	"REGION NORD":  "AGENCES/ANTENNES REGION NORD",
	"REGION OUEST": "AGENCES/ANTENNES REGION OUEST",
	"REGION SUD":   "AGENCES/ANTENNES REGION SUD",
}

// ReconcileRegions collapses the four region-specific site columns into
// one AGENCES/ANTENNES column, selecting per row the column matching
// the REGION discriminant. Rows with a region outside the known set get
// an empty site and are counted in the diagnostics. The four source
// columns never survive into the output.
func ReconcileRegions(t *internal.RawTable) (*internal.RawTable, internal.Diagnostics) {
	out := t.Clone()
	diags := internal.Diagnostics{}

	out.AddColumn(siteColumn)
	for i := range out.Rows {
		region := util.UpperTrim(out.Value(i, regionColumn))
		source, known := regionSiteColumns[region]
		if !known {
			if region != "" {
				diags.UnknownRegions++
			}
			continue
		}
		out.SetValue(i, siteColumn, out.Value(i, source))
	}

	drop := make([]string, 0, len(regionSiteColumns))
	for _, col := range regionSiteColumns {
		drop = append(drop, col)
	}
	out.DropColumns(drop...)
	return out, diags
}
