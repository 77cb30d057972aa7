package pipeline

import (
	"github.com/servsurcp-stack/dashboard-concordance/internal"
	"github.com/servsurcp-stack/dashboard-concordance/internal/util"
)

// headerMapping maps cleaned source headers onto the canonical schema.
// The two long documentary headers are kept verbatim from the form
// export, NBSP and newlines included; CleanHeader flattens both sides
// before matching.
var headerMapping = map[string]string{
	"Id":                         "id",
	"id":                         "id",
	"Heure de début":             "heure_de_debut",
	"Heure de fin":               "heure_de_fin",
	"Date":                       "date",
	"Lieu de la vérification":    "lieu_de_la_verification",
	"Appartenance du conducteur": "appartenance_du_conducteur",
	"Tournée / PDA / Nom de la société si DSP": "tournee_pda_nom_societe",
	"Type de vérification":                     "type_de_verification",
	"REGION":                                   "region",
	"Présence dans le véhicule de la copie numérotée de la licence de transport. \nHypothèse de la non présentation : Contactez le gérant de l'entreprise de Transport afin de l'en informer. \nC'est à lui de ": "presence_licence_transport",
	"Numéro de la licence": "numero_licence",
	"Présentation du Permis de Conduire\nHypothèse de la non présentation du permis de conduire :  Contactez le gérant de l'entreprise de Transport  afin de l'en informer.\nC'est à lui de gérer la situation.": "presentation_permis_conduire",
	"Vérification Liste nominative des salariés affectés à la prestation\nLa personne en charge du contrôle à quai doit se munir de la liste nominative fournie par le gérant de l'entreprise de Transport et ":                      "verification_liste_nominative",
	"ANOMALIE":                  "anomalie",
	"ANOMALIE DE CHARGEMENT":    "anomalie_de_chargement",
	"ANOMALIE DE CHARGEMENT ": "anomalie_de_chargement",
	"ANOMALIE DE VEHICULE":         "anomalie_de_vehicule",
	"ANOMALIE SUIVI DE TOURNEE":    "anomalie_suivi_de_tournee",
	"AGENCES/ANTENNES":             "agences_antennes",
	"Tournée":                      "tournee",
	"PDA":                          "pda",
	"Nom de la société":            "nom_de_la_societe",
	"jour":                         "jour",
	"heure_arrondie":               "heure_arrondie",
	"is_surete":                    "is_surete",
}

// knownDroppedColumns are source columns outside the canonical schema
// that every extract is expected to carry; dropping them is routine and
// not worth a schema-mismatch warning.
var knownDroppedColumns = map[string]bool{
	"Matière dangereuse":       true,
	"Adresse de messagerie":    true,
	"Nom":                      true,
	"Nom de la personne en charge de la vérification": true,
	"Commentaires ( N° de colis...)":                  true,
	"Commentaires":                                    true,
	"Commentaires divers":                             true,
	"Type de véhicule":                                true,
	"Immatriculation":                                 true,
}

func cleanedHeaderMapping() map[string]string {
	out := make(map[string]string, len(headerMapping))
	for k, v := range headerMapping {
		out[util.CleanHeader(k)] = v
	}
	return out
}

// ApplySchema renames matched source columns onto the canonical schema
// and reorders them into the fixed canonical column order. Canonical
// columns absent from the source come out empty and are reported;
// source columns outside the known mapping are reported and dropped.
// Never fatal.
func ApplySchema(t *internal.RawTable) (*internal.RawTable, internal.Diagnostics) {
	mapping := cleanedHeaderMapping()
	diags := internal.Diagnostics{}

	sourceFor := map[string]int{}
	for i, col := range t.Columns {
		cleaned := util.CleanHeader(col)
		canonical, ok := mapping[cleaned]
		if !ok {
			if !knownDroppedColumns[cleaned] {
				diags.UnmappedColumns = append(diags.UnmappedColumns, cleaned)
			}
			continue
		}
		if _, dup := sourceFor[canonical]; !dup {
			sourceFor[canonical] = i
		}
	}

	for _, canonical := range internal.CanonicalColumns {
		if _, ok := sourceFor[canonical]; !ok {
			diags.MissingColumns = append(diags.MissingColumns, canonical)
		}
	}

	out := internal.NewRawTable(internal.CanonicalColumns)
	for _, row := range t.Rows {
		cells := make([]string, len(internal.CanonicalColumns))
		for j, canonical := range internal.CanonicalColumns {
			if idx, ok := sourceFor[canonical]; ok {
				cells[j] = row[idx]
			}
		}
		out.AppendRow(cells)
	}
	return out, diags
}
