package directory

import "strings"

// Office is one entry of the committee directory.
type Office struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type OfficeList struct {
	Offices []Office `json:"offices"`
}

// excludedNameTerms hide offices that are no longer operating.
var excludedNameTerms = []string{"inactive", "closed", "invalid"}

// IsExcluded reports whether an office name marks it as not operating.
func IsExcluded(name string) bool {
	lower := strings.ToLower(name)
	for _, term := range excludedNameTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// FilterActive drops excluded offices, keeping the upstream order.
func FilterActive(offices []Office) []Office {
	active := make([]Office, 0, len(offices))
	for _, o := range offices {
		if !IsExcluded(o.Name) {
			active = append(active, o)
		}
	}
	return active
}
