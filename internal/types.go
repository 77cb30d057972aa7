package internal

import (
	"strconv"
	"strings"
	"time"
)

type ExtractKind string

const (
	ExtractConformity  ExtractKind = "conformity"
	ExtractDocumentary ExtractKind = "documentary"
)

// CanonicalColumns is the output column order of the verifications table.
var CanonicalColumns = []string{
	"id",
	"heure_de_debut",
	"heure_de_fin",
	"date",
	"lieu_de_la_verification",
	"appartenance_du_conducteur",
	"tournee_pda_nom_societe",
	"type_de_verification",
	"region",
	"presence_licence_transport",
	"numero_licence",
	"presentation_permis_conduire",
	"verification_liste_nominative",
	"anomalie",
	"anomalie_de_chargement",
	"anomalie_de_vehicule",
	"is_surete",
	"anomalie_suivi_de_tournee",
	"agences_antennes",
	"tournee",
	"pda",
	"nom_de_la_societe",
	"jour",
	"heure_arrondie",
}

// Record is one row of the canonical verifications table. Everything
// except ID and IsSurete is nullable.
type Record struct {
	ID                          int        `json:"id"`
	HeureDeDebut                *time.Time `json:"heure_de_debut"`
	HeureDeFin                  *time.Time `json:"heure_de_fin"`
	Date                        *time.Time `json:"date"`
	LieuDeLaVerification        *string    `json:"lieu_de_la_verification"`
	AppartenanceDuConducteur    *string    `json:"appartenance_du_conducteur"`
	TourneePDANomSociete        *string    `json:"tournee_pda_nom_societe"`
	TypeDeVerification          *string    `json:"type_de_verification"`
	Region                      *string    `json:"region"`
	PresenceLicenceTransport    *string    `json:"presence_licence_transport"`
	NumeroLicence               *string    `json:"numero_licence"`
	PresentationPermisConduire  *string    `json:"presentation_permis_conduire"`
	VerificationListeNominative *string    `json:"verification_liste_nominative"`
	Anomalie                    *string    `json:"anomalie"`
	AnomalieDeChargement        *string    `json:"anomalie_de_chargement"`
	AnomalieDeVehicule          *string    `json:"anomalie_de_vehicule"`
	IsSurete                    bool       `json:"is_surete"`
	AnomalieSuiviDeTournee      *string    `json:"anomalie_suivi_de_tournee"`
	AgencesAntennes             *string    `json:"agences_antennes"`
	Tournee                     *string    `json:"tournee"`
	PDA                         *string    `json:"pda"`
	NomDeLaSociete              *string    `json:"nom_de_la_societe"`
	Jour                        *string    `json:"jour"`
	HeureArrondie               *string    `json:"heure_arrondie"`
}

// RawTable is an in-memory extract: ordered columns keyed by their raw
// (possibly malformed) headers, plus string cells. It only lives for
// the duration of a pipeline run.
type RawTable struct {
	Columns []string
	Rows    [][]string
}

func NewRawTable(columns []string) *RawTable {
	return &RawTable{Columns: append([]string(nil), columns...)}
}

func (t *RawTable) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

func (t *RawTable) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// AppendRow pads or truncates cells to the column count.
func (t *RawTable) AppendRow(cells []string) {
	row := make([]string, len(t.Columns))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

func (t *RawTable) Value(row int, column string) string {
	idx := t.ColumnIndex(column)
	if idx < 0 || row < 0 || row >= len(t.Rows) {
		return ""
	}
	return t.Rows[row][idx]
}

func (t *RawTable) SetValue(row int, column string, value string) {
	idx := t.ColumnIndex(column)
	if idx < 0 || row < 0 || row >= len(t.Rows) {
		return
	}
	t.Rows[row][idx] = value
}

// AddColumn appends an empty column; no-op if it already exists.
func (t *RawTable) AddColumn(name string) {
	if t.HasColumn(name) {
		return
	}
	t.Columns = append(t.Columns, name)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], "")
	}
}

func (t *RawTable) DropColumns(names ...string) {
	drop := map[string]bool{}
	for _, n := range names {
		drop[n] = true
	}
	keep := make([]int, 0, len(t.Columns))
	cols := make([]string, 0, len(t.Columns))
	for i, c := range t.Columns {
		if drop[c] {
			continue
		}
		keep = append(keep, i)
		cols = append(cols, c)
	}
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		next := make([]string, len(keep))
		for j, idx := range keep {
			next[j] = row[idx]
		}
		rows[i] = next
	}
	t.Columns = cols
	t.Rows = rows
}

func (t *RawTable) RenameColumns(mapping map[string]string) {
	for i, c := range t.Columns {
		if renamed, ok := mapping[c]; ok {
			t.Columns[i] = renamed
		}
	}
}

func (t *RawTable) Clone() *RawTable {
	out := NewRawTable(t.Columns)
	out.Rows = make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		out.Rows[i] = append([]string(nil), row...)
	}
	return out
}

// Diagnostics collects the recoverable data-quality findings of a run.
// Nothing in here aborts processing; callers decide what to surface.
type Diagnostics struct {
	MissingColumns   []string
	UnmappedColumns  []string
	UnknownRegions   int
	UnparseableDates int
}

func (d *Diagnostics) Merge(other Diagnostics) {
	d.MissingColumns = append(d.MissingColumns, other.MissingColumns...)
	d.UnmappedColumns = append(d.UnmappedColumns, other.UnmappedColumns...)
	d.UnknownRegions += other.UnknownRegions
	d.UnparseableDates += other.UnparseableDates
}

func (d Diagnostics) Empty() bool {
	return len(d.MissingColumns) == 0 && len(d.UnmappedColumns) == 0 &&
		d.UnknownRegions == 0 && d.UnparseableDates == 0
}

func (d Diagnostics) Summary() string {
	parts := []string{}
	if len(d.MissingColumns) > 0 {
		parts = append(parts, "missing columns: "+strings.Join(d.MissingColumns, ", "))
	}
	if len(d.UnmappedColumns) > 0 {
		parts = append(parts, "unmapped source columns: "+strings.Join(d.UnmappedColumns, ", "))
	}
	if d.UnknownRegions > 0 {
		parts = append(parts, "rows with unknown region: "+strconv.Itoa(d.UnknownRegions))
	}
	if d.UnparseableDates > 0 {
		parts = append(parts, "unparseable date/time cells: "+strconv.Itoa(d.UnparseableDates))
	}
	return strings.Join(parts, "; ")
}

// Filter narrows the canonical table for reporting. Empty slices mean
// no restriction on that column.
type Filter struct {
	Agences       []string
	Jours         []string
	Types         []string
	Appartenances []string
	IsSurete      []bool
}

func StringPtr(v string) *string { return &v }

func TimePtr(v time.Time) *time.Time { return &v }
