package sources

import "strings"

// Profile is the static, read-only registry entry for one source.
// Profiles are immutable after process start and safe for concurrent
// reads; per-request behavior never mutates them.
type Profile struct {
	// Name is the canonical source name.
	Name string

	// Weight is the source's reputation multiplier in [0,1]. Premium,
	// peer-reviewed catalogs sit near 1.0; unreviewed aggregators lower.
	Weight float64

	// Specializations lists disciplines this source is particularly
	// strong in. A matching request discipline earns a small weight bump.
	Specializations []string

	// MinQuality is the minimum relevance score a candidate from this
	// source needs to stay in the pool. Zero disables the floor.
	MinQuality float64

	// ResultCap bounds how many papers one search may request from this
	// source.
	ResultCap int

	// AllowMissingAuthors exempts this source from the authors-required
	// quality check. Some legitimate catalogs lack structured author
	// metadata.
	AllowMissingAuthors bool

	// AllowUnknownYear exempts this source from the known-year quality
	// check.
	AllowUnknownYear bool
}

// specializationBonus is added to Weight when the request discipline
// matches one of the source's specializations.
const specializationBonus = 0.05

// WeightFor returns the effective reputation weight for a request in the
// given discipline, capped at 1.0.
func (p Profile) WeightFor(discipline string) float64 {
	w := p.Weight
	d := strings.ToLower(strings.TrimSpace(discipline))
	if d != "" {
		for _, s := range p.Specializations {
			if strings.ToLower(s) == d {
				w += specializationBonus
				break
			}
		}
	}
	if w > 1.0 {
		w = 1.0
	}
	return w
}

// DefaultProfile is used for sources without an explicit registry entry.
var DefaultProfile = Profile{
	Weight:    0.5,
	ResultCap: 100,
}

// Profiles is the read-only profile registry. Built once at startup and
// shared across concurrent requests.
type Profiles struct {
	byName map[string]Profile
}

// NewProfiles builds a profile registry from a static list.
func NewProfiles(list []Profile) *Profiles {
	byName := make(map[string]Profile, len(list))
	for _, p := range list {
		byName[p.Name] = p
	}
	return &Profiles{byName: byName}
}

// Get returns the profile for a source, falling back to DefaultProfile
// (with the requested name filled in) for unknown sources.
func (ps *Profiles) Get(name string) Profile {
	if p, ok := ps.byName[name]; ok {
		return p
	}
	p := DefaultProfile
	p.Name = name
	return p
}

// Has reports whether an explicit profile exists for the source.
func (ps *Profiles) Has(name string) bool {
	_, ok := ps.byName[name]
	return ok
}
