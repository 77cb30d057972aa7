package pipeline

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/servsurcp-stack/dashboard-concordance/internal"
)

const timestampLayout = "2006-01-02 15:04:05"

// RecordCells serializes a record into the canonical column order.
// Nils become empty cells; timestamps use one unambiguous layout.
func RecordCells(rec internal.Record) []string {
	return []string{
		strconv.Itoa(rec.ID),
		formatTime(rec.HeureDeDebut),
		formatTime(rec.HeureDeFin),
		formatTime(rec.Date),
		deref(rec.LieuDeLaVerification),
		deref(rec.AppartenanceDuConducteur),
		deref(rec.TourneePDANomSociete),
		deref(rec.TypeDeVerification),
		deref(rec.Region),
		deref(rec.PresenceLicenceTransport),
		deref(rec.NumeroLicence),
		deref(rec.PresentationPermisConduire),
		deref(rec.VerificationListeNominative),
		deref(rec.Anomalie),
		deref(rec.AnomalieDeChargement),
		deref(rec.AnomalieDeVehicule),
		strconv.FormatBool(rec.IsSurete),
		deref(rec.AnomalieSuiviDeTournee),
		deref(rec.AgencesAntennes),
		deref(rec.Tournee),
		deref(rec.PDA),
		deref(rec.NomDeLaSociete),
		deref(rec.Jour),
		deref(rec.HeureArrondie),
	}
}

// ExportCSV writes the canonical table as CSV, fully replacing any
// prior version of the file.
func ExportCSV(records []internal.Record, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(internal.CanonicalColumns); err != nil {
		return err
	}
	for _, rec := range records {
		if err := w.Write(RecordCells(rec)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ExportXLSX writes the canonical table as a workbook for people who
// want to eyeball it in a spreadsheet.
func ExportXLSX(records []internal.Record, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, h := range internal.CanonicalColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	for i, rec := range records {
		for j, v := range RecordCells(rec) {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func formatTime(v *time.Time) string {
	if v == nil {
		return ""
	}
	return v.Format(timestampLayout)
}
