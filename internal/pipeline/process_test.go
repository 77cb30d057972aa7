package pipeline

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/servsurcp-stack/dashboard-concordance/internal"
)

func writeXLSX(t *testing.T, path string, rows [][]any) {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
}

func conformityFixture(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "conformite.xlsx")
	writeXLSX(t, path, [][]any{
		{
			"Id", "Heure de début", "Heure de fin", "Date",
			"Lieu de la vérification", "Appartenance du conducteur",
			"Tournée / PDA / Nom de la société si DSP", "Type de vérification",
			"REGION",
			"AGENCES/ ANTENNES REGION EST", "AGENCES/ANTENNES REGION NORD",
			"AGENCES/ANTENNES REGION OUEST", "AGENCES/ANTENNES REGION SUD",
			"Type de véhicule / immatriculation",
			"ANOMALIE", "ANOMALIE DE CHARGEMENT ", "ANOMALIE DE VEHICULE",
			"ANOMALIE SUIVI DE TOURNEE", "Commentaires divers ",
		},
		// The export repeats the form labels on the second row.
		{"Id", "Heure de début", "Heure de fin", "Date", "", "", "", "", "", "", "", "", "", "", "", "", "", "", ""},
		{
			"55", "2024-03-14 10:07:00", "2024-03-14 10:31:00", "2024-03-14",
			"Quai 3", "COLIS PRIVE LIVRAISON",
			"123 A Societe X", "Avant chargement",
			"REGION SUD", "", "", "", "SITE-A",
			"Fourgon / AB-123-CD",
			"Oui", "Colis manquant", "", "", "ras",
		},
		{
			"56", "2024-03-15 06:52:00", "", "2024-03-15",
			"Quai 1", "DSP",
			"456", "Après chargement",
			"REGION SUD", "", "", "", "SITE-A",
			"Camion AB123CD",
			"Non", "", "", "", "",
		},
	})
	return path
}

func TestRunSingleEndToEnd(t *testing.T) {
	path := conformityFixture(t, t.TempDir())

	res, err := RunSingle(path, Options{Locale: LocaleFR})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Records) != 2 {
		t.Fatalf("records: got %d want 2", len(res.Records))
	}

	first := res.Records[0]
	if first.ID != 1 || res.Records[1].ID != 2 {
		t.Fatalf("ids not regenerated: %d %d", first.ID, res.Records[1].ID)
	}
	if first.AgencesAntennes == nil || *first.AgencesAntennes != "SITE-A" {
		t.Fatalf("agences_antennes: %v", first.AgencesAntennes)
	}
	if first.Jour == nil || *first.Jour != "JEUDI" {
		t.Fatalf("jour: %v", first.Jour)
	}
	if first.HeureArrondie == nil || *first.HeureArrondie != "10:00:00" {
		t.Fatalf("heure_arrondie: %v", first.HeureArrondie)
	}
	if first.Anomalie == nil || *first.Anomalie != "OUI" {
		t.Fatalf("anomalie: %v", first.Anomalie)
	}
	if first.AnomalieDeChargement == nil || *first.AnomalieDeChargement != "COLIS MANQUANT" {
		t.Fatalf("anomalie_de_chargement: %v", first.AnomalieDeChargement)
	}
	if first.AppartenanceDuConducteur == nil || *first.AppartenanceDuConducteur != "COLIS PRIVE" {
		t.Fatalf("appartenance synonym not collapsed: %v", first.AppartenanceDuConducteur)
	}
	if !first.IsSurete {
		t.Fatal("single-extract rows must be flagged is_surete")
	}

	// Round-trip: re-splitting the retained compound reproduces the
	// derived fields.
	tour, pda, company := ExtractTourInfo(*first.TourneePDANomSociete)
	if tour == nil || *tour != *first.Tournee {
		t.Fatalf("tournee round-trip: %v vs %v", tour, first.Tournee)
	}
	if pda == nil || *pda != *first.PDA {
		t.Fatalf("pda round-trip: %v vs %v", pda, first.PDA)
	}
	if company == nil || *company != *first.NomDeLaSociete {
		t.Fatalf("societe round-trip: %v vs %v", company, first.NomDeLaSociete)
	}

	second := res.Records[1]
	if second.Tournee == nil || *second.Tournee != "456" {
		t.Fatalf("tournee: %v", second.Tournee)
	}
	if second.PDA != nil || second.NomDeLaSociete != nil {
		t.Fatalf("digit-only compound must leave pda/societe nil: %v %v", second.PDA, second.NomDeLaSociete)
	}
	if second.HeureDeFin != nil {
		t.Fatalf("empty heure_de_fin must stay nil: %v", second.HeureDeFin)
	}
	if second.HeureArrondie == nil || *second.HeureArrondie != "07:00:00" {
		t.Fatalf("heure_arrondie: %v", second.HeureArrondie)
	}
}

func TestRunMergedInMemory(t *testing.T) {
	doc := internal.NewRawTable([]string{
		"Id", "Date", "Heure de début", "REGION",
		"AGENCES/ ANTENNES REGION EST", "AGENCES/ANTENNES REGION NORD",
		"AGENCES/ANTENNES REGION OUEST", "AGENCES/ANTENNES REGION SUD",
		"Numéro de la licence",
	})
	doc.AppendRow([]string{"3", "2024-03-11", "2024-03-11 08:02:00", "REGION NORD", "", "SITE-N", "", "", "LIC-9"})

	conf := internal.NewRawTable([]string{
		"id", "Date", "Heure de début", "REGION",
		"AGENCES/ ANTENNES REGION EST", "AGENCES/ANTENNES REGION NORD",
		"AGENCES/ANTENNES REGION OUEST", "AGENCES/ANTENNES REGION SUD",
		"ANOMALIE",
	})
	conf.AppendRow([]string{"9", "2024-03-12", "2024-03-12 14:40:00", "REGION EST", "SITE-E", "", "", "", "Oui"})
	conf.AppendRow([]string{"10", "2024-03-13", "2024-03-13 17:49:00", "REGION EST", "SITE-E", "", "", "", "Non"})

	res, err := run(Options{Locale: LocaleFR},
		SourceTable{Table: doc, IsSurete: false},
		SourceTable{Table: conf, IsSurete: true},
	)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Records) != 3 {
		t.Fatalf("records: got %d want 3", len(res.Records))
	}
	for i, rec := range res.Records {
		if rec.ID != i+1 {
			t.Fatalf("row %d: id %d", i, rec.ID)
		}
	}
	if res.Records[0].IsSurete {
		t.Fatal("documentary row flagged is_surete")
	}
	if !res.Records[1].IsSurete || !res.Records[2].IsSurete {
		t.Fatal("conformity rows must be flagged is_surete")
	}
	if res.Records[0].NumeroLicence == nil || *res.Records[0].NumeroLicence != "LIC-9" {
		t.Fatalf("numero_licence: %v", res.Records[0].NumeroLicence)
	}
	if got := *res.Records[0].AgencesAntennes; got != "SITE-N" {
		t.Fatalf("agences: %q", got)
	}
	if got := *res.Records[2].HeureArrondie; got != "18:00:00" {
		t.Fatalf("heure_arrondie: %q", got)
	}
}

func TestBuildRecordsUnparseableDates(t *testing.T) {
	table := internal.NewRawTable(internal.CanonicalColumns)
	cells := make([]string, len(internal.CanonicalColumns))
	table.AppendRow(cells)
	table.SetValue(0, "id", "1")
	table.SetValue(0, "heure_de_debut", "pas une date")
	table.SetValue(0, "date", "2024-03-14")

	records, diags := buildRecords(table, LocaleFR)
	if records[0].HeureDeDebut != nil {
		t.Fatalf("unparseable cell must degrade to nil: %v", records[0].HeureDeDebut)
	}
	if records[0].Date == nil {
		t.Fatal("valid date dropped")
	}
	if records[0].Jour != nil || records[0].HeureArrondie != nil {
		t.Fatal("derived fields must stay nil without heure_de_debut")
	}
	if diags.UnparseableDates != 1 {
		t.Fatalf("diagnostics: %d", diags.UnparseableDates)
	}
}

func TestParseDateTimeExcelSerial(t *testing.T) {
	got := ParseDateTime("45365.5")
	if got == nil {
		t.Fatal("serial not parsed")
	}
	if got.Format("2006-01-02 15:04:05") != "2024-03-14 12:00:00" {
		t.Fatalf("got %v", got)
	}
}
