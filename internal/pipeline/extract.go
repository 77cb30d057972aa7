package pipeline

import (
	"regexp"
	"strings"

	"github.com/servsurcp-stack/dashboard-concordance/internal"
	"github.com/servsurcp-stack/dashboard-concordance/internal/util"
)

// UnknownVehicleType is the sentinel used when a cell holds a plate but
// no vehicle description.
const UnknownVehicleType = "INCONNU"

var (
	// Current "AA-123-AA" plates and the older compact dialect, with
	// optional hyphens. Matched against the space-stripped cell.
	rePlate  = regexp.MustCompile(`[A-Z]{1,2}-?\d{2,3}-?[A-Z]{1,2}|[A-Z]{1,2}\d{2,3}[A-Z]{1,2}`)
	reTour   = regexp.MustCompile(`^(\d+)(?:[\s/]*([A-Z]))?(?:[\s/]*(.*))?$`)
	reDigits = regexp.MustCompile(`^\d+$`)
)

// ExtractVehicleInfo splits a "Type de véhicule / immatriculation" cell
// into a vehicle type and a standardized plate number. Cells without a
// plate-like substring keep the whole text as the vehicle type. Empty
// input yields a nil pair; this never fails.
func ExtractVehicleInfo(value string) (vehicleType, plate *string) {
	v := util.UpperTrim(value)
	if v == "" {
		return nil, nil
	}

	matched := rePlate.FindString(strings.ReplaceAll(v, " ", ""))
	if matched == "" {
		return internal.StringPtr(v), nil
	}

	compact := strings.ReplaceAll(matched, "-", "")
	standard := compact
	if len(compact) >= 5 {
		standard = compact[:2] + "-" + compact[2:len(compact)-2] + "-" + compact[len(compact)-2:]
	}

	vt := strings.TrimSpace(strings.ReplaceAll(v, matched, ""))
	vt = strings.TrimSpace(strings.ReplaceAll(vt, "/", ""))
	if vt == "" {
		vt = UnknownVehicleType
	}
	return internal.StringPtr(vt), internal.StringPtr(standard)
}

// ExtractTourInfo splits a "Tournée / PDA / Nom de la société" cell into
// tour number, single-letter PDA code and company name. When the
// compound pattern fails, an all-digit cell becomes the tour and
// anything else the company. Empty input yields nils; this never fails.
func ExtractTourInfo(value string) (tour, pda, company *string) {
	v := util.UpperTrim(value)
	if v == "" {
		return nil, nil, nil
	}

	cleaned := strings.TrimSpace(strings.ReplaceAll(v, "/", " "))
	if m := reTour.FindStringSubmatch(cleaned); m != nil {
		tour = internal.StringPtr(m[1])
		if m[2] != "" {
			pda = internal.StringPtr(m[2])
		}
		if m[3] != "" {
			company = internal.StringPtr(m[3])
		}
	} else if reDigits.MatchString(v) {
		tour = internal.StringPtr(v)
	} else {
		company = internal.StringPtr(v)
	}

	if company != nil {
		c := util.CollapseSpaces(*company)
		if c == "" {
			company = nil
		} else {
			company = internal.StringPtr(c)
		}
	}
	return tour, pda, company
}
