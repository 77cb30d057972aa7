package pipeline

import (
	"strconv"

	"github.com/servsurcp-stack/dashboard-concordance/internal"
)

// documentaryRenames aligns the documentary extract's headers onto the
// conformity extract's naming for the columns denoting the same concept.
var documentaryRenames = map[string]string{
	"Date du contrôle":                      "Date",
	"Personne en charge de la vérification": "Nom de la personne en charge de la vérification",
	"Tournée / PDA / Nom de la société si besoin": "Tournée / PDA / Nom de la société si DSP",
	"Type de véhicule / Immatriculation":          "Type de véhicule / immatriculation",
}

// AlignDocumentaryHeaders renames the documentary extract's columns to
// the conformity naming convention so both extracts unify cleanly.
func AlignDocumentaryHeaders(t *internal.RawTable) *internal.RawTable {
	out := t.Clone()
	out.RenameColumns(documentaryRenames)
	return out
}

// SourceTable pairs an extract with its provenance flag. The
// loading-conformity extract is the sûreté one (IsSurete=true); the
// documentary/vehicle-state extract is not.
type SourceTable struct {
	Table    *internal.RawTable
	IsSurete bool
}

// Unify concatenates the extracts in the order given (documentary
// first, conformity second, by convention), discarding any pre-existing
// identifier columns, stamping the is_surete provenance flag and
// assigning a fresh contiguous id sequence over the result. No row is
// deduplicated: every input row produces exactly one output row.
func Unify(sources ...SourceTable) *internal.RawTable {
	columns := []string{}
	seen := map[string]bool{}
	for _, src := range sources {
		for _, col := range src.Table.Columns {
			if col == "id" || col == "Id" || seen[col] {
				continue
			}
			seen[col] = true
			columns = append(columns, col)
		}
	}
	if !seen["is_surete"] {
		columns = append(columns, "is_surete")
	}
	if !seen["id"] {
		columns = append(columns, "id")
	}

	out := internal.NewRawTable(columns)
	for _, src := range sources {
		flag := "false"
		if src.IsSurete {
			flag = "true"
		}
		for i := range src.Table.Rows {
			cells := make([]string, len(columns))
			for j, col := range columns {
				cells[j] = src.Table.Value(i, col)
			}
			out.AppendRow(cells)
			out.SetValue(len(out.Rows)-1, "is_surete", flag)
		}
	}
	for i := range out.Rows {
		out.SetValue(i, "id", strconv.Itoa(i+1))
	}
	return out
}
