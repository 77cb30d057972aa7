package util

import "testing"

func TestCleanHeader(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "Date", want: "Date"},
		{name: "nbsp", input: "ANOMALIE DE CHARGEMENT ", want: "ANOMALIE DE CHARGEMENT"},
		{name: "newline", input: "Présentation du Permis de Conduire\nHypothèse", want: "Présentation du Permis de Conduire Hypothèse"},
		{name: "runs", input: "  Lieu   de\tla   vérification ", want: "Lieu de la vérification"},
		{name: "nbsp inside", input: "le gérant de  l'entreprise", want: "le gérant de l'entreprise"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CleanHeader(tc.input); got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestCleanHeaderIdempotent(t *testing.T) {
	inputs := []string{
		"Tournée / PDA / Nom de la société si DSP",
		"ANOMALIE DE CHARGEMENT ",
		"Vérification Liste nominative\ndes salariés",
	}
	for _, in := range inputs {
		once := CleanHeader(in)
		if twice := CleanHeader(once); twice != once {
			t.Fatalf("not idempotent: %q -> %q -> %q", in, once, twice)
		}
	}
}

func TestUpperTrim(t *testing.T) {
	if got := UpperTrim("  Colis Privé "); got != "COLIS PRIVÉ" {
		t.Fatalf("got %q", got)
	}
}
