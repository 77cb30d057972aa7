// Package report computes the dashboard aggregations over the
// canonical verifications table.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/servsurcp-stack/dashboard-concordance/internal"
)

const anomalyYes = "OUI"

// ApplyFilter keeps records matching every non-empty selection.
func ApplyFilter(records []internal.Record, f internal.Filter) []internal.Record {
	out := make([]internal.Record, 0, len(records))
	for _, rec := range records {
		if !matchString(rec.AgencesAntennes, f.Agences) {
			continue
		}
		if !matchString(rec.Jour, f.Jours) {
			continue
		}
		if !matchString(rec.TypeDeVerification, f.Types) {
			continue
		}
		if !matchString(rec.AppartenanceDuConducteur, f.Appartenances) {
			continue
		}
		if !matchBool(rec.IsSurete, f.IsSurete) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func matchString(value *string, selected []string) bool {
	if len(selected) == 0 {
		return true
	}
	if value == nil {
		return false
	}
	for _, s := range selected {
		if *value == s {
			return true
		}
	}
	return false
}

func matchBool(value bool, selected []bool) bool {
	if len(selected) == 0 {
		return true
	}
	for _, s := range selected {
		if value == s {
			return true
		}
	}
	return false
}

// Summary holds the headline metrics of the dashboard.
type Summary struct {
	TotalControles int     `json:"total_controles"`
	TotalAnomalies int     `json:"total_anomalies"`
	PctAnomalies   float64 `json:"pct_anomalies"`
	NbCP           int     `json:"nb_cp"`
	NbDSP          int     `json:"nb_dsp"`
}

func Summarize(records []internal.Record) Summary {
	s := Summary{TotalControles: len(records)}
	for _, rec := range records {
		if isAnomaly(rec) {
			s.TotalAnomalies++
		}
		if rec.AppartenanceDuConducteur != nil {
			switch *rec.AppartenanceDuConducteur {
			case "COLIS PRIVE":
				s.NbCP++
			case "DSP":
				s.NbDSP++
			}
		}
	}
	if s.TotalControles > 0 {
		s.PctAnomalies = round2(float64(s.TotalAnomalies) / float64(s.TotalControles) * 100)
	}
	return s
}

func isAnomaly(rec internal.Record) bool {
	return rec.Anomalie != nil && *rec.Anomalie == anomalyYes
}

// Count is one labelled bucket of a value count.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// CountsBySite counts controls per site, most controlled site first.
func CountsBySite(records []internal.Record) []Count {
	return countValues(records, func(r internal.Record) *string { return r.AgencesAntennes }, 0)
}

// AnomaliesBySite counts anomaly-positive controls per site.
func AnomaliesBySite(records []internal.Record) []Count {
	anomalous := make([]internal.Record, 0, len(records))
	for _, rec := range records {
		if isAnomaly(rec) {
			anomalous = append(anomalous, rec)
		}
	}
	return countValues(anomalous, func(r internal.Record) *string { return r.AgencesAntennes }, 0)
}

// ValueCounts tallies a documentary or anomaly-detail column, skipping
// blanks and the literal "none" the source forms leave behind. A
// positive limit keeps only the top buckets.
func ValueCounts(records []internal.Record, pick func(internal.Record) *string, limit int) []Count {
	filtered := make([]internal.Record, 0, len(records))
	for _, rec := range records {
		v := pick(rec)
		if v == nil {
			continue
		}
		trimmed := strings.TrimSpace(*v)
		if trimmed == "" || strings.EqualFold(trimmed, "none") {
			continue
		}
		filtered = append(filtered, rec)
	}
	counts := countValues(filtered, pick, limit)
	return counts
}

func countValues(records []internal.Record, pick func(internal.Record) *string, limit int) []Count {
	byLabel := map[string]int{}
	for _, rec := range records {
		v := pick(rec)
		if v == nil || *v == "" {
			continue
		}
		byLabel[*v]++
	}
	out := make([]Count, 0, len(byLabel))
	for label, n := range byLabel {
		out = append(out, Count{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Rate is a bucket with its control volume, anomaly volume and
// anomaly percentage.
type Rate struct {
	Label     string  `json:"label"`
	Controles int     `json:"controles"`
	Anomalies int     `json:"anomalies"`
	Pct       float64 `json:"pct"`
}

// AnomalyRateBySite ranks sites by anomaly percentage, worst first.
func AnomalyRateBySite(records []internal.Record) []Rate {
	rates := rateBy(records, func(r internal.Record) *string { return r.AgencesAntennes })
	sort.Slice(rates, func(i, j int) bool {
		if rates[i].Pct != rates[j].Pct {
			return rates[i].Pct > rates[j].Pct
		}
		return rates[i].Label < rates[j].Label
	})
	return rates
}

var joursFR = []string{"LUNDI", "MARDI", "MERCREDI", "JEUDI", "VENDREDI", "SAMEDI", "DIMANCHE"}
var joursEN = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

func jourSortKey(label string) int {
	for i, j := range joursFR {
		if label == j {
			return i
		}
	}
	for i, j := range joursEN {
		if label == j {
			return i
		}
	}
	capitalized := capitalize(label)
	for i, j := range joursEN {
		if capitalized == j {
			return i
		}
	}
	return len(joursFR)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	lower := strings.ToLower(s)
	return strings.ToUpper(lower[:1]) + lower[1:]
}

// AnomalyRateByJour orders weekdays Monday first regardless of the
// day-name locale the pipeline ran with.
func AnomalyRateByJour(records []internal.Record) []Rate {
	rates := rateBy(records, func(r internal.Record) *string { return r.Jour })
	sort.Slice(rates, func(i, j int) bool {
		ki, kj := jourSortKey(rates[i].Label), jourSortKey(rates[j].Label)
		if ki != kj {
			return ki < kj
		}
		return rates[i].Label < rates[j].Label
	})
	return rates
}

// AnomalyRateByAppartenance splits the anomaly rate between CP and DSP
// drivers.
func AnomalyRateByAppartenance(records []internal.Record) []Rate {
	rates := rateBy(records, func(r internal.Record) *string { return r.AppartenanceDuConducteur })
	sort.Slice(rates, func(i, j int) bool { return rates[i].Label < rates[j].Label })
	return rates
}

func rateBy(records []internal.Record, pick func(internal.Record) *string) []Rate {
	type bucket struct{ controles, anomalies int }
	byLabel := map[string]*bucket{}
	for _, rec := range records {
		v := pick(rec)
		if v == nil || *v == "" {
			continue
		}
		b := byLabel[*v]
		if b == nil {
			b = &bucket{}
			byLabel[*v] = b
		}
		b.controles++
		if isAnomaly(rec) {
			b.anomalies++
		}
	}
	out := make([]Rate, 0, len(byLabel))
	for label, b := range byLabel {
		out = append(out, Rate{
			Label:     label,
			Controles: b.controles,
			Anomalies: b.anomalies,
			Pct:       round2(float64(b.anomalies) / float64(b.controles) * 100),
		})
	}
	return out
}

// Heatmap is a dense site-by-key matrix of control counts. Keys are
// sorted; Values[i][j] is the count for Sites[i] and Keys[j].
type Heatmap struct {
	Sites  []string `json:"sites"`
	Keys   []string `json:"keys"`
	Values [][]int  `json:"values"`
}

// HeatmapSiteJour crosses sites with weekdays, weekdays Monday first.
func HeatmapSiteJour(records []internal.Record) Heatmap {
	return heatmap(records, func(r internal.Record) *string { return r.Jour }, func(keys []string) {
		sort.Slice(keys, func(i, j int) bool {
			ki, kj := jourSortKey(keys[i]), jourSortKey(keys[j])
			if ki != kj {
				return ki < kj
			}
			return keys[i] < keys[j]
		})
	})
}

// HeatmapSiteHeure crosses sites with the rounded half-hour slots.
func HeatmapSiteHeure(records []internal.Record) Heatmap {
	return heatmap(records, func(r internal.Record) *string { return r.HeureArrondie }, sort.Strings)
}

func heatmap(records []internal.Record, pick func(internal.Record) *string, orderKeys func([]string)) Heatmap {
	cells := map[string]map[string]int{}
	keySet := map[string]bool{}
	for _, rec := range records {
		if rec.AgencesAntennes == nil || *rec.AgencesAntennes == "" {
			continue
		}
		k := pick(rec)
		if k == nil || *k == "" {
			continue
		}
		site := *rec.AgencesAntennes
		if cells[site] == nil {
			cells[site] = map[string]int{}
		}
		cells[site][*k]++
		keySet[*k] = true
	}

	hm := Heatmap{}
	for site := range cells {
		hm.Sites = append(hm.Sites, site)
	}
	sort.Strings(hm.Sites)
	for k := range keySet {
		hm.Keys = append(hm.Keys, k)
	}
	orderKeys(hm.Keys)

	hm.Values = make([][]int, len(hm.Sites))
	for i, site := range hm.Sites {
		row := make([]int, len(hm.Keys))
		for j, k := range hm.Keys {
			row[j] = cells[site][k]
		}
		hm.Values[i] = row
	}
	return hm
}

// HourlyPoint is one hour of the intra-day series, keyed by the hour
// of heure_de_debut.
type HourlyPoint struct {
	Hour      int     `json:"hour"`
	Controles int     `json:"controles"`
	Anomalies int     `json:"anomalies"`
	Pct       float64 `json:"pct"`
}

func HourlySeries(records []internal.Record) []HourlyPoint {
	type bucket struct{ controles, anomalies int }
	byHour := map[int]*bucket{}
	for _, rec := range records {
		if rec.HeureDeDebut == nil {
			continue
		}
		h := rec.HeureDeDebut.Hour()
		b := byHour[h]
		if b == nil {
			b = &bucket{}
			byHour[h] = b
		}
		b.controles++
		if isAnomaly(rec) {
			b.anomalies++
		}
	}
	out := make([]HourlyPoint, 0, len(byHour))
	for h, b := range byHour {
		out = append(out, HourlyPoint{
			Hour:      h,
			Controles: b.controles,
			Anomalies: b.anomalies,
			Pct:       round2(float64(b.anomalies) / float64(b.controles) * 100),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hour < out[j].Hour })
	return out
}

// WeeklyPoint is one calendar week of the long-run series. Week labels
// count Monday-started weeks since January 1st, week 00 covering the
// days before the year's first Monday.
type WeeklyPoint struct {
	Week      string  `json:"week"`
	Controles int     `json:"controles"`
	Anomalies int     `json:"anomalies"`
	Pct       float64 `json:"pct"`
}

func WeekLabel(t time.Time) string {
	wday := int(t.Weekday()+6) % 7
	week := (t.YearDay() - 1 + 7 - wday) / 7
	return fmt.Sprintf("%d-W%02d", t.Year(), week)
}

func WeeklySeries(records []internal.Record) []WeeklyPoint {
	type bucket struct{ controles, anomalies int }
	byWeek := map[string]*bucket{}
	for _, rec := range records {
		if rec.Date == nil {
			continue
		}
		w := WeekLabel(*rec.Date)
		b := byWeek[w]
		if b == nil {
			b = &bucket{}
			byWeek[w] = b
		}
		b.controles++
		if isAnomaly(rec) {
			b.anomalies++
		}
	}
	out := make([]WeeklyPoint, 0, len(byWeek))
	for w, b := range byWeek {
		out = append(out, WeeklyPoint{
			Week:      w,
			Controles: b.controles,
			Anomalies: b.anomalies,
			Pct:       round2(float64(b.anomalies) / float64(b.controles) * 100),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Week < out[j].Week })
	return out
}

// TourneeRate is one line of the worst-tournées ranking. Agences lists
// every site the tournée was controlled at, sorted and ";"-joined.
type TourneeRate struct {
	Tournee   string  `json:"tournee"`
	Anomalies int     `json:"anomalies"`
	Controles int     `json:"controles"`
	Pct       float64 `json:"pct"`
	Agences   string  `json:"agences"`
}

// TopTournees ranks tournées by anomaly volume and keeps the top n.
func TopTournees(records []internal.Record, n int) []TourneeRate {
	type bucket struct {
		controles, anomalies int
		agences              map[string]bool
	}
	byTournee := map[string]*bucket{}
	for _, rec := range records {
		if rec.Tournee == nil || *rec.Tournee == "" {
			continue
		}
		b := byTournee[*rec.Tournee]
		if b == nil {
			b = &bucket{agences: map[string]bool{}}
			byTournee[*rec.Tournee] = b
		}
		b.controles++
		if isAnomaly(rec) {
			b.anomalies++
		}
		if rec.AgencesAntennes != nil && *rec.AgencesAntennes != "" {
			b.agences[*rec.AgencesAntennes] = true
		}
	}

	out := make([]TourneeRate, 0, len(byTournee))
	for tournee, b := range byTournee {
		if b.anomalies == 0 {
			continue
		}
		agences := make([]string, 0, len(b.agences))
		for a := range b.agences {
			agences = append(agences, a)
		}
		sort.Strings(agences)
		out = append(out, TourneeRate{
			Tournee:   tournee,
			Anomalies: b.anomalies,
			Controles: b.controles,
			Pct:       round2(float64(b.anomalies) / float64(b.controles) * 100),
			Agences:   strings.Join(agences, "; "),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Anomalies != out[j].Anomalies {
			return out[i].Anomalies > out[j].Anomalies
		}
		return out[i].Tournee < out[j].Tournee
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
