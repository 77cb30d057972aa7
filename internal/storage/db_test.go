package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/servsurcp-stack/dashboard-concordance/internal"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "concordance.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testRecords() []internal.Record {
	debut := time.Date(2024, 3, 14, 6, 52, 0, 0, time.UTC)
	fin := time.Date(2024, 3, 14, 7, 10, 0, 0, time.UTC)
	return []internal.Record{
		{
			ID:                       1,
			HeureDeDebut:             &debut,
			HeureDeFin:               &fin,
			AgencesAntennes:          internal.StringPtr("SITE-A"),
			AppartenanceDuConducteur: internal.StringPtr("COLIS PRIVE"),
			Anomalie:                 internal.StringPtr("OUI"),
			Jour:                     internal.StringPtr("JEUDI"),
			HeureArrondie:            internal.StringPtr("07:00:00"),
			IsSurete:                 true,
		},
		{
			ID:              2,
			AgencesAntennes: internal.StringPtr("SITE-B"),
			Anomalie:        internal.StringPtr("NON"),
			Jour:            internal.StringPtr("VENDREDI"),
			IsSurete:        false,
		},
		{
			ID:              3,
			AgencesAntennes: internal.StringPtr("SITE-A"),
			Jour:            internal.StringPtr("VENDREDI"),
			IsSurete:        true,
		},
	}
}

func TestReplaceAllAndList(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.ReplaceAll(ctx, testRecords()); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}

	got, err := db.List(ctx, internal.Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	for i, rec := range got {
		if rec.ID != i+1 {
			t.Fatalf("record %d: id = %d", i, rec.ID)
		}
	}

	first := got[0]
	if first.HeureDeDebut == nil || first.HeureDeDebut.Format("2006-01-02 15:04:05") != "2024-03-14 06:52:00" {
		t.Fatalf("heure_de_debut round-trip: %v", first.HeureDeDebut)
	}
	if first.AgencesAntennes == nil || *first.AgencesAntennes != "SITE-A" {
		t.Fatalf("agences_antennes round-trip: %v", first.AgencesAntennes)
	}
	if !first.IsSurete {
		t.Fatalf("is_surete lost on round-trip")
	}
	if got[1].HeureDeDebut != nil {
		t.Fatalf("nil heure_de_debut should stay nil, got %v", got[1].HeureDeDebut)
	}
}

func TestReplaceAllOverwrites(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.ReplaceAll(ctx, testRecords()); err != nil {
		t.Fatalf("first ReplaceAll: %v", err)
	}
	if err := db.ReplaceAll(ctx, testRecords()[:1]); err != nil {
		t.Fatalf("second ReplaceAll: %v", err)
	}

	got, err := db.List(ctx, internal.Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("re-run should replace, got %d records", len(got))
	}
}

func TestListFilters(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	if err := db.ReplaceAll(ctx, testRecords()); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}

	cases := []struct {
		name    string
		filter  internal.Filter
		wantIDs []int
	}{
		{"by agence", internal.Filter{Agences: []string{"SITE-A"}}, []int{1, 3}},
		{"by jour", internal.Filter{Jours: []string{"VENDREDI"}}, []int{2, 3}},
		{"agence and jour", internal.Filter{Agences: []string{"SITE-A"}, Jours: []string{"VENDREDI"}}, []int{3}},
		{"surete only", internal.Filter{IsSurete: []bool{true}}, []int{1, 3}},
		{"both surete values", internal.Filter{IsSurete: []bool{true, false}}, []int{1, 2, 3}},
		{"no match", internal.Filter{Agences: []string{"SITE-Z"}}, nil},
	}

	for _, tc := range cases {
		got, err := db.List(ctx, tc.filter)
		if err != nil {
			t.Fatalf("%s: List: %v", tc.name, err)
		}
		if len(got) != len(tc.wantIDs) {
			t.Fatalf("%s: got %d records, want %d", tc.name, len(got), len(tc.wantIDs))
		}
		for i, rec := range got {
			if rec.ID != tc.wantIDs[i] {
				t.Fatalf("%s: record %d has id %d, want %d", tc.name, i, rec.ID, tc.wantIDs[i])
			}
		}
	}
}
