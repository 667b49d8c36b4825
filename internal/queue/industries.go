package queue

import (
	"fmt"
	"slices"
	"strings"
)

// ValidIndustries is the set of industry codes accepted in industry lists.
var ValidIndustries = map[string]struct{}{
	"ACC": {}, "ADM": {}, "ANA": {}, "ARCH": {}, "BANK": {}, "BIO": {}, "BUS": {},
	"CHEM": {}, "COMM": {}, "CONS": {}, "DATA": {}, "DES": {}, "ENG": {}, "ENV": {},
	"FIN": {}, "FINT": {}, "GEOL": {}, "GEOM": {}, "HARD": {}, "HEAL": {}, "LAW": {},
	"MATH": {}, "MECH": {}, "MED": {}, "MUSI": {}, "PHYS": {}, "PROJ": {}, "RES": {},
	"RET": {}, "ROBO": {}, "SERV": {}, "SOFT": {}, "TEAC": {}, "TECH": {}, "WRIT": {},
}

// ValidateIndustries rejects empty, duplicated or unknown industry codes.
func ValidateIndustries(industries string) error {
	if strings.TrimSpace(industries) == "" {
		return fmt.Errorf("no industries")
	}

	codes := SplitIndustries(industries)
	seen := make(map[string]struct{}, len(codes))
	var invalid []string
	for _, code := range codes {
		if _, ok := seen[code]; ok {
			return fmt.Errorf("duplicate industry %q", code)
		}
		seen[code] = struct{}{}

		if _, ok := ValidIndustries[code]; !ok {
			invalid = append(invalid, code)
		}
	}

	if len(invalid) > 0 {
		slices.Sort(invalid)
		return fmt.Errorf("invalid industries: %s", strings.Join(invalid, ","))
	}

	return nil
}
