package textnorm

import (
	"regexp"
	"strings"
)

var plateSuffixRE = regexp.MustCompile(`^(.*?)(\d{5})$`)

// FormatPlate normalizes a license plate to the PREFIX-XXX.XX convention.
//
//	"29H16088"   -> "29H-160.88"
//	"29a-160.25" -> "29A-160.25"
//	"51F 12345"  -> "51F-123.45"
//	"30A1234"    -> "30A1234" (fewer than 5 trailing digits, kept as cleaned)
func FormatPlate(plate string) string {
	cleaned := strings.ToUpper(plate)
	cleaned = strings.NewReplacer(".", "", "-", "", " ", "").Replace(cleaned)

	m := plateSuffixRE.FindStringSubmatch(cleaned)
	if m == nil {
		return cleaned
	}
	prefix, digits := m[1], m[2]
	return prefix + "-" + digits[:3] + "." + digits[3:]
}
