package model

import "sort"

// License is the set of statement modalities that the evidential basis
// permits. Computed once per statement by the license deriver; read-only.
type License struct {
	permitted map[Modality]bool
}

// NewLicense constructs a license permitting the given modalities.
func NewLicense(modalities ...Modality) License {
	permitted := make(map[Modality]bool, len(modalities))
	for _, m := range modalities {
		permitted[m] = true
	}
	return License{permitted: permitted}
}

// Permits reports whether the modality is licensed.
func (l License) Permits(m Modality) bool {
	return l.permitted[m]
}

// Modalities returns the permitted modalities in a stable (sorted) order.
func (l License) Modalities() []string {
	names := make([]string, 0, len(l.permitted))
	for m := range l.permitted {
		names = append(names, string(m))
	}
	sort.Strings(names)
	return names
}
