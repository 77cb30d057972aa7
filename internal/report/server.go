// The HTTP dashboard renders the aggregations as a single HTML page
// and exposes them as JSON for scripted use.
//
// Routes:
//
//	GET /              → dashboard page, filterable via query params
//	GET /api/dashboard → every aggregation as one JSON document
//	GET /api/records   → filtered canonical rows
package report

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/servsurcp-stack/dashboard-concordance/internal"
	"github.com/servsurcp-stack/dashboard-concordance/internal/storage"
)

// ServerConfig controls server startup. CacheTTL bounds how stale the
// in-memory copy of the store may get.
type ServerConfig struct {
	Addr     string
	CacheTTL time.Duration
}

type Server struct {
	cfg   ServerConfig
	store storage.Store
	mux   *http.ServeMux
	tmpl  *template.Template

	mu        sync.Mutex
	cached    []internal.Record
	fetchedAt time.Time
}

func NewServer(cfg ServerConfig, store storage.Store) *Server {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	s := &Server{
		cfg:   cfg,
		store: store,
		mux:   http.NewServeMux(),
		tmpl:  template.Must(template.New("dashboard").Parse(dashboardHTML)),
	}
	s.routes()
	return s
}

func (s *Server) ListenAndServe() error {
	return http.ListenAndServe(s.cfg.Addr, s.mux)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/", s.handleDashboard)
	s.mux.HandleFunc("/api/dashboard", s.handleAPIDashboard)
	s.mux.HandleFunc("/api/records", s.handleAPIRecords)
}

// records serves the full table from the TTL cache, hitting the store
// only when the copy has expired.
func (s *Server) records(ctx context.Context) ([]internal.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached != nil && time.Since(s.fetchedAt) < s.cfg.CacheTTL {
		return s.cached, nil
	}
	records, err := s.store.List(ctx, internal.Filter{})
	if err != nil {
		return nil, err
	}
	s.cached = records
	s.fetchedAt = time.Now()
	return records, nil
}

func filterFromQuery(r *http.Request) internal.Filter {
	q := r.URL.Query()
	f := internal.Filter{
		Agences:       q["agence"],
		Jours:         q["jour"],
		Types:         q["type"],
		Appartenances: q["appartenance"],
	}
	switch q.Get("surete") {
	case "true":
		f.IsSurete = []bool{true}
	case "false":
		f.IsSurete = []bool{false}
	}
	return f
}

// Dashboard bundles every aggregation the page and the API expose.
type Dashboard struct {
	Summary           Summary       `json:"summary"`
	ControlesParSite  []Count       `json:"controles_par_site"`
	AnomaliesParSite  []Count       `json:"anomalies_par_site"`
	TauxParSite       []Rate        `json:"taux_par_site"`
	TauxParJour       []Rate        `json:"taux_par_jour"`
	TauxParAppart     []Rate        `json:"taux_par_appartenance"`
	HeatmapJour       Heatmap       `json:"heatmap_jour"`
	HeatmapHeure      Heatmap       `json:"heatmap_heure"`
	ParHeure          []HourlyPoint `json:"par_heure"`
	ParSemaine        []WeeklyPoint `json:"par_semaine"`
	TopTournees       []TourneeRate `json:"top_tournees"`
	TypesVerification []Count       `json:"types_verification"`
	AnomaliesCharg    []Count       `json:"anomalies_chargement"`
	AnomaliesVehicule []Count       `json:"anomalies_vehicule"`
	AnomaliesSuivi    []Count       `json:"anomalies_suivi"`
	LicenceTransport  []Count       `json:"licence_transport"`
	PermisConduire    []Count       `json:"permis_conduire"`
	ListeNominative   []Count       `json:"liste_nominative"`
}

func BuildDashboard(records []internal.Record, f internal.Filter) Dashboard {
	filtered := ApplyFilter(records, f)
	return Dashboard{
		Summary:           Summarize(filtered),
		ControlesParSite:  CountsBySite(filtered),
		AnomaliesParSite:  AnomaliesBySite(filtered),
		TauxParSite:       AnomalyRateBySite(filtered),
		TauxParJour:       AnomalyRateByJour(filtered),
		TauxParAppart:     AnomalyRateByAppartenance(filtered),
		HeatmapJour:       HeatmapSiteJour(filtered),
		HeatmapHeure:      HeatmapSiteHeure(filtered),
		ParHeure:          HourlySeries(filtered),
		ParSemaine:        WeeklySeries(filtered),
		TopTournees:       TopTournees(filtered, 20),
		TypesVerification: ValueCounts(filtered, func(r internal.Record) *string { return r.TypeDeVerification }, 0),
		AnomaliesCharg:    ValueCounts(filtered, func(r internal.Record) *string { return r.AnomalieDeChargement }, 5),
		AnomaliesVehicule: ValueCounts(filtered, func(r internal.Record) *string { return r.AnomalieDeVehicule }, 5),
		AnomaliesSuivi:    ValueCounts(filtered, func(r internal.Record) *string { return r.AnomalieSuiviDeTournee }, 5),
		LicenceTransport:  ValueCounts(filtered, func(r internal.Record) *string { return r.PresenceLicenceTransport }, 0),
		PermisConduire:    ValueCounts(filtered, func(r internal.Record) *string { return r.PresentationPermisConduire }, 0),
		ListeNominative:   ValueCounts(filtered, func(r internal.Record) *string { return r.VerificationListeNominative }, 0),
	}
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	records, err := s.records(r.Context())
	if err != nil {
		http.Error(w, "load records: "+err.Error(), http.StatusInternalServerError)
		return
	}
	d := BuildDashboard(records, filterFromQuery(r))
	if err := s.tmpl.Execute(w, d); err != nil {
		fmt.Println("template error:", err)
	}
}

func (s *Server) handleAPIDashboard(w http.ResponseWriter, r *http.Request) {
	records, err := s.records(r.Context())
	if err != nil {
		http.Error(w, "load records: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, BuildDashboard(records, filterFromQuery(r)))
}

func (s *Server) handleAPIRecords(w http.ResponseWriter, r *http.Request) {
	records, err := s.records(r.Context())
	if err != nil {
		http.Error(w, "load records: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, ApplyFilter(records, filterFromQuery(r)))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(v)
}

//go:embed dashboard.tmpl.html
var dashboardHTML string
