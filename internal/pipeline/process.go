package pipeline

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/servsurcp-stack/dashboard-concordance/internal"
	"github.com/servsurcp-stack/dashboard-concordance/internal/util"
)

const (
	vehicleCompoundColumn = "Type de véhicule / immatriculation"
	tourCompoundColumn    = "Tournée / PDA / Nom de la société si DSP"
)

// Options tune a pipeline run.
type Options struct {
	Locale Locale
}

// Result is the outcome of a run: the canonical rows plus the collected
// data-quality diagnostics.
type Result struct {
	Records     []internal.Record
	Diagnostics internal.Diagnostics
}

// RunSingle processes one loading-conformity extract. Every row carries
// is_surete=true so the provenance column is never absent downstream.
func RunSingle(conformityPath string, opts Options) (Result, error) {
	table, err := LoadExtract(conformityPath, internal.ExtractConformity)
	if err != nil {
		return Result{}, err
	}
	return run(opts, SourceTable{Table: table, IsSurete: true})
}

// RunMerged processes the documentary/vehicle-state extract together
// with the loading-conformity extract: documentary rows first, then
// conformity rows, per the unifier's convention.
func RunMerged(documentaryPath, conformityPath string, opts Options) (Result, error) {
	doc, err := LoadExtract(documentaryPath, internal.ExtractDocumentary)
	if err != nil {
		return Result{}, err
	}
	conf, err := LoadExtract(conformityPath, internal.ExtractConformity)
	if err != nil {
		return Result{}, err
	}
	return run(opts,
		SourceTable{Table: AlignDocumentaryHeaders(doc), IsSurete: false},
		SourceTable{Table: conf, IsSurete: true},
	)
}

func run(opts Options, sources ...SourceTable) (Result, error) {
	diags := internal.Diagnostics{}

	prepared := make([]SourceTable, 0, len(sources))
	for _, src := range sources {
		reconciled, d := ReconcileRegions(src.Table)
		diags.Merge(d)
		prepared = append(prepared, SourceTable{Table: extractFields(reconciled), IsSurete: src.IsSurete})
	}

	unified := Unify(prepared...)
	canonical, d := ApplySchema(unified)
	diags.Merge(d)

	records, d := buildRecords(canonical, opts.Locale)
	diags.Merge(d)
	return Result{Records: records, Diagnostics: diags}, nil
}

// extractFields runs the free-text extractors: the vehicle compound
// cell splits into type and plate (both dropped later with the
// compound, they are not part of the canonical schema), the tour
// compound cell splits into tournée, PDA and company while the raw
// compound is retained.
func extractFields(t *internal.RawTable) *internal.RawTable {
	out := t.Clone()

	if out.HasColumn(vehicleCompoundColumn) {
		out.AddColumn("Type de véhicule")
		out.AddColumn("Immatriculation")
		for i := range out.Rows {
			vt, plate := ExtractVehicleInfo(out.Value(i, vehicleCompoundColumn))
			if vt != nil {
				out.SetValue(i, "Type de véhicule", *vt)
			}
			if plate != nil {
				out.SetValue(i, "Immatriculation", *plate)
			}
		}
		out.DropColumns(vehicleCompoundColumn)
	}

	if out.HasColumn(tourCompoundColumn) {
		out.AddColumn("Tournée")
		out.AddColumn("PDA")
		out.AddColumn("Nom de la société")
		for i := range out.Rows {
			tour, pda, company := ExtractTourInfo(out.Value(i, tourCompoundColumn))
			if tour != nil {
				out.SetValue(i, "Tournée", *tour)
			}
			if pda != nil {
				out.SetValue(i, "PDA", *pda)
			}
			if company != nil {
				out.SetValue(i, "Nom de la société", *company)
			}
		}
	}

	return out
}

var appartenanceSynonyms = map[string]string{
	"COLIS PRIVE LIVRAISON": "COLIS PRIVE",
}

// buildRecords coerces the canonical table into typed records: datetime
// parsing (unparseable cells degrade to nil), jour and heure_arrondie
// derivation, the upper-casing pass and the conductor-affiliation
// synonym collapse. Row-level failures never abort the run.
func buildRecords(t *internal.RawTable, locale Locale) ([]internal.Record, internal.Diagnostics) {
	diags := internal.Diagnostics{}
	records := make([]internal.Record, 0, len(t.Rows))

	for i := range t.Rows {
		rec := internal.Record{}
		rec.ID, _ = strconv.Atoi(t.Value(i, "id"))
		rec.IsSurete = t.Value(i, "is_surete") == "true"

		rec.HeureDeDebut = parseCell(t.Value(i, "heure_de_debut"), &diags)
		rec.HeureDeFin = parseCell(t.Value(i, "heure_de_fin"), &diags)
		rec.Date = parseCell(t.Value(i, "date"), &diags)

		rec.LieuDeLaVerification = upperPtr(t.Value(i, "lieu_de_la_verification"))
		rec.AppartenanceDuConducteur = upperPtr(t.Value(i, "appartenance_du_conducteur"))
		rec.TourneePDANomSociete = upperPtr(t.Value(i, "tournee_pda_nom_societe"))
		rec.TypeDeVerification = upperPtr(t.Value(i, "type_de_verification"))
		rec.Region = upperPtr(t.Value(i, "region"))
		rec.PresenceLicenceTransport = strPtr(t.Value(i, "presence_licence_transport"))
		rec.NumeroLicence = strPtr(t.Value(i, "numero_licence"))
		rec.PresentationPermisConduire = strPtr(t.Value(i, "presentation_permis_conduire"))
		rec.VerificationListeNominative = strPtr(t.Value(i, "verification_liste_nominative"))
		rec.Anomalie = upperPtr(t.Value(i, "anomalie"))
		rec.AnomalieDeChargement = upperPtr(t.Value(i, "anomalie_de_chargement"))
		rec.AnomalieDeVehicule = upperPtr(t.Value(i, "anomalie_de_vehicule"))
		rec.AnomalieSuiviDeTournee = upperPtr(t.Value(i, "anomalie_suivi_de_tournee"))
		rec.AgencesAntennes = upperPtr(t.Value(i, "agences_antennes"))
		rec.Tournee = upperPtr(t.Value(i, "tournee"))
		rec.PDA = upperPtr(t.Value(i, "pda"))
		rec.NomDeLaSociete = upperPtr(t.Value(i, "nom_de_la_societe"))

		if rec.AppartenanceDuConducteur != nil {
			if canon, ok := appartenanceSynonyms[*rec.AppartenanceDuConducteur]; ok {
				rec.AppartenanceDuConducteur = internal.StringPtr(canon)
			}
		}

		if rec.HeureDeDebut != nil {
			rec.Jour = internal.StringPtr(WeekdayName(*rec.HeureDeDebut, locale))
			rec.HeureArrondie = internal.StringPtr(RoundToHalfHour(*rec.HeureDeDebut).Format("15:04:05"))
		}

		records = append(records, rec)
	}
	return records, diags
}

func strPtr(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return internal.StringPtr(v)
}

func upperPtr(v string) *string {
	v = util.UpperTrim(v)
	if v == "" {
		return nil
	}
	return internal.StringPtr(v)
}

func parseCell(v string, diags *internal.Diagnostics) *time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	if t := ParseDateTime(v); t != nil {
		return t
	}
	diags.UnparseableDates++
	return nil
}

var dateTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"02-01-2006 15:04:05",
	"02-01-2006",
	"2/1/06 15:04",
	"15:04:05",
	"15:04",
}

// ParseDateTime coerces the date/time renderings the spreadsheet
// exports produce: ISO and day-first layouts plus raw Excel serial
// numbers. Returns nil when nothing matches; never panics.
func ParseDateTime(v string) *time.Time {
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return internal.TimePtr(t)
		}
	}
	if serial, err := strconv.ParseFloat(v, 64); err == nil && serial > 0 && serial < 300000 {
		return internal.TimePtr(fromExcelSerial(serial))
	}
	return nil
}

// fromExcelSerial converts an Excel day-count (epoch 1899-12-30) to a
// timestamp, rounded to the nearest second.
func fromExcelSerial(serial float64) time.Time {
	epoch := time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
	seconds := math.Round(serial * 86400)
	return epoch.Add(time.Duration(seconds) * time.Second)
}
