package storage

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/servsurcp-stack/dashboard-concordance/internal"
)

// Postgres is the shared-dashboard variant of the store. The schema
// mirrors the sqlite one with native timestamp and boolean types.
type Postgres struct {
	pool *pgxpool.Pool
}

func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	p := &Postgres{pool: pool}
	if err := p.init(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func (p *Postgres) init(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS verifications_chargement (
  id INTEGER PRIMARY KEY,
  heure_de_debut TIMESTAMP,
  heure_de_fin TIMESTAMP,
  date TIMESTAMP,
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
  is_surete BOOLEAN NOT NULL DEFAULT FALSE,
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
`
	_, err := p.pool.Exec(ctx, schema)
	if err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

var postgresColumns = []string{
	"id", "heure_de_debut", "heure_de_fin", "date",
	"lieu_de_la_verification", "appartenance_du_conducteur", "tournee_pda_nom_societe",
	"type_de_verification", "region",
	"presence_licence_transport", "numero_licence", "presentation_permis_conduire",
	"verification_liste_nominative",
	"anomalie", "anomalie_de_chargement", "anomalie_de_vehicule", "is_surete",
	"anomalie_suivi_de_tournee", "agences_antennes",
	"tournee", "pda", "nom_de_la_societe", "jour", "heure_arrondie",
}

// ReplaceAll truncates and bulk-loads the canonical table with CopyFrom.
func (p *Postgres) ReplaceAll(ctx context.Context, records []internal.Record) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `TRUNCATE verifications_chargement`); err != nil {
		return err
	}

	rows := make([][]any, len(records))
	for i, rec := range records {
		rows[i] = []any{
			rec.ID, rec.HeureDeDebut, rec.HeureDeFin, rec.Date,
			rec.LieuDeLaVerification, rec.AppartenanceDuConducteur, rec.TourneePDANomSociete,
			rec.TypeDeVerification, rec.Region,
			rec.PresenceLicenceTransport, rec.NumeroLicence, rec.PresentationPermisConduire,
			rec.VerificationListeNominative,
			rec.Anomalie, rec.AnomalieDeChargement, rec.AnomalieDeVehicule, rec.IsSurete,
			rec.AnomalieSuiviDeTournee, rec.AgencesAntennes,
			rec.Tournee, rec.PDA, rec.NomDeLaSociete, rec.Jour, rec.HeureArrondie,
		}
	}

	copied, err := tx.CopyFrom(ctx, pgx.Identifier{TableName}, postgresColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("copy records: %w", err)
	}
	if copied != int64(len(records)) {
		return fmt.Errorf("copy records: wrote %d of %d rows", copied, len(records))
	}

	return tx.Commit(ctx)
}

func (p *Postgres) List(ctx context.Context, filter internal.Filter) ([]internal.Record, error) {
	args := []any{}
	where := filterWhere(filter, func(n int) string { return "$" + strconv.Itoa(n) }, &args)

	rows, err := p.pool.Query(ctx, `
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
		if err := rows.Scan(
			&rec.ID, &rec.HeureDeDebut, &rec.HeureDeFin, &rec.Date,
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
		out = append(out, rec)
	}
	return out, rows.Err()
}
