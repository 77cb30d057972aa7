package storage

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/servsurcp-stack/dashboard-concordance/internal"
)

const timestampLayout = "2006-01-02 15:04:05"

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS verifications_chargement (
  id INTEGER PRIMARY KEY,
  heure_de_debut TEXT,
  heure_de_fin TEXT,
  date TEXT,
  lieu_de_la_verification TEXT,
  appartenance_du_conducteur TEXT,
  tournee_pda_nom_societe TEXT,
  type_de_verification TEXT,
  region TEXT,
  presence_licence_transport TEXT,
  numero_licence TEXT,
  presentation_permis_conduire TEXT,
  verification_liste_nominative TEXT,
  anomalie TEXT,
  anomalie_de_chargement TEXT,
  anomalie_de_vehicule TEXT,
  is_surete INTEGER NOT NULL DEFAULT 0,
  anomalie_suivi_de_tournee TEXT,
  agences_antennes TEXT,
  tournee TEXT,
  pda TEXT,
  nom_de_la_societe TEXT,
  jour TEXT,
  heure_arrondie TEXT
);
CREATE INDEX IF NOT EXISTS idx_verifications_agences ON verifications_chargement(agences_antennes);
CREATE INDEX IF NOT EXISTS idx_verifications_jour ON verifications_chargement(jour);
CREATE INDEX IF NOT EXISTS idx_verifications_anomalie ON verifications_chargement(anomalie);
`
	_, err := d.conn.Exec(schema)
	return err
}

// ReplaceAll rewrites the whole canonical table in one transaction.
func (d *DB) ReplaceAll(ctx context.Context, records []internal.Record) error {
	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM verifications_chargement`); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO verifications_chargement (
  id, heure_de_debut, heure_de_fin, date,
  lieu_de_la_verification, appartenance_du_conducteur, tournee_pda_nom_societe,
  type_de_verification, region,
  presence_licence_transport, numero_licence, presentation_permis_conduire,
  verification_liste_nominative,
  anomalie, anomalie_de_chargement, anomalie_de_vehicule, is_surete,
  anomalie_suivi_de_tournee, agences_antennes,
  tournee, pda, nom_de_la_societe, jour, heure_arrondie
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx,
			rec.ID, timeText(rec.HeureDeDebut), timeText(rec.HeureDeFin), timeText(rec.Date),
			rec.LieuDeLaVerification, rec.AppartenanceDuConducteur, rec.TourneePDANomSociete,
			rec.TypeDeVerification, rec.Region,
			rec.PresenceLicenceTransport, rec.NumeroLicence, rec.PresentationPermisConduire,
			rec.VerificationListeNominative,
			rec.Anomalie, rec.AnomalieDeChargement, rec.AnomalieDeVehicule, rec.IsSurete,
			rec.AnomalieSuiviDeTournee, rec.AgencesAntennes,
			rec.Tournee, rec.PDA, rec.NomDeLaSociete, rec.Jour, rec.HeureArrondie,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// List reads back canonical records matching the filter, ordered by id.
func (d *DB) List(ctx context.Context, filter internal.Filter) ([]internal.Record, error) {
	args := []any{}
	where := filterWhere(filter, func(int) string { return "?" }, &args)

	rows, err := d.conn.QueryContext(ctx, `
SELECT id, heure_de_debut, heure_de_fin, date,
       lieu_de_la_verification, appartenance_du_conducteur, tournee_pda_nom_societe,
       type_de_verification, region,
       presence_licence_transport, numero_licence, presentation_permis_conduire,
       verification_liste_nominative,
       anomalie, anomalie_de_chargement, anomalie_de_vehicule, is_surete,
       anomalie_suivi_de_tournee, agences_antennes,
       tournee, pda, nom_de_la_societe, jour, heure_arrondie
FROM verifications_chargement`+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.Record
	for rows.Next() {
		var rec internal.Record
		var debut, fin, date *string
		if err := rows.Scan(
			&rec.ID, &debut, &fin, &date,
			&rec.LieuDeLaVerification, &rec.AppartenanceDuConducteur, &rec.TourneePDANomSociete,
			&rec.TypeDeVerification, &rec.Region,
			&rec.PresenceLicenceTransport, &rec.NumeroLicence, &rec.PresentationPermisConduire,
			&rec.VerificationListeNominative,
			&rec.Anomalie, &rec.AnomalieDeChargement, &rec.AnomalieDeVehicule, &rec.IsSurete,
			&rec.AnomalieSuiviDeTournee, &rec.AgencesAntennes,
			&rec.Tournee, &rec.PDA, &rec.NomDeLaSociete, &rec.Jour, &rec.HeureArrondie,
		); err != nil {
			return nil, err
		}
		rec.HeureDeDebut = textTime(debut)
		rec.HeureDeFin = textTime(fin)
		rec.Date = textTime(date)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func timeText(v *time.Time) *string {
	if v == nil {
		return nil
	}
	s := v.Format(timestampLayout)
	return &s
}

func textTime(v *string) *time.Time {
	if v == nil {
		return nil
	}
	if t, err := time.Parse(timestampLayout, *v); err == nil {
		return &t
	}
	return nil
}
