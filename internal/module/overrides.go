package module

import "strings"

// Overrides adjust registrations from the layout file.
type Overrides struct {
	Priorities  map[string]int
	DisabledIDs []string
}

func (o Overrides) Disabled(id string) bool {
	for _, d := range o.DisabledIDs {
		if strings.TrimSpace(d) == strings.TrimSpace(id) {
			return true
		}
	}
	return false
}
