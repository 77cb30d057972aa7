package storage

import (
	"context"
	"strings"

	"github.com/servsurcp-stack/dashboard-concordance/internal"
)

const TableName = "verifications_chargement"

// Store is the canonical table sink and the read interface handed to
// the reporting layer. ReplaceAll fully overwrites prior content; a
// re-run never appends.
type Store interface {
	ReplaceAll(ctx context.Context, records []internal.Record) error
	List(ctx context.Context, filter internal.Filter) ([]internal.Record, error)
	Close() error
}

// filterWhere renders the multi-select filter as a WHERE clause.
// placeholder receives the 1-based argument index so both ? and $n
// dialects can share it. Empty selections add no condition.
func filterWhere(f internal.Filter, placeholder func(n int) string, args *[]any) string {
	conds := []string{}

	add := func(column string, values []string) {
		if len(values) == 0 {
			return
		}
		ph := make([]string, len(values))
		for i, v := range values {
			*args = append(*args, v)
			ph[i] = placeholder(len(*args))
		}
		conds = append(conds, column+" IN ("+strings.Join(ph, ", ")+")")
	}

	add("agences_antennes", f.Agences)
	add("jour", f.Jours)
	add("type_de_verification", f.Types)
	add("appartenance_du_conducteur", f.Appartenances)

	if n := len(f.IsSurete); n > 0 && n < 2 {
		*args = append(*args, f.IsSurete[0])
		conds = append(conds, "is_surete = "+placeholder(len(*args)))
	}

	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}
