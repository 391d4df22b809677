package engine

import (
	"slices"

	"github.com/roach88/dynweather/internal/effect"
)

// Resolver keeps the catalog's DoDisplay flags current and decides when a
// new input warrants a redisplay.
//
// The catalog is copied at construction; its order and every spec's trigger
// kind are fixed from then on. Resolver is not safe for concurrent use; the
// engine calls it only from its event loop.
type Resolver struct {
	catalog []effect.Spec
	hide    effect.Suppress
}

// NewResolver creates a resolver over a copy of catalog.
func NewResolver(catalog []effect.Spec, hide effect.Suppress) *Resolver {
	specs := make([]effect.Spec, len(catalog))
	for i, s := range catalog {
		s.Images = slices.Clone(s.Images)
		s.DoDisplay = false
		specs[i] = s
	}
	return &Resolver{catalog: specs, hide: hide}
}

// Catalog returns a copy of the catalog with current DoDisplay flags.
func (r *Resolver) Catalog() []effect.Spec {
	out := make([]effect.Spec, len(r.catalog))
	copy(out, r.catalog)
	return out
}

// EvaluateDates sets DoDisplay on every date-triggered and always-on spec
// for today. It returns true if a dated spec (not an always-on one) matches;
// that flag alone can start a display once both sources have loaded.
func (r *Resolver) EvaluateDates(today effect.Today) bool {
	dated := false
	for i := range r.catalog {
		s := &r.catalog[i]
		switch s.Trigger() {
		case effect.TriggerAlways:
			s.DoDisplay = true
		case effect.TriggerDate:
			s.DoDisplay = effect.DateEligible(*s, today)
			if s.DoDisplay {
				dated = true
			}
		}
	}
	return dated
}

// ApplyWeather marks weather-coded specs for code and reports whether code
// warrants a redisplay: it must differ from displayed and either show a
// built-in visual or match a configured weather code.
func (r *Resolver) ApplyWeather(code, displayed int) bool {
	matched := false
	for i := range r.catalog {
		s := &r.catalog[i]
		if s.Trigger() != effect.TriggerWeather {
			continue
		}
		s.DoDisplay = s.WeatherCode == code
		if s.DoDisplay {
			matched = true
		}
	}
	if code == displayed {
		return false
	}
	return matched || effect.TriggersBuiltin(code, r.hide)
}

// ApplyHolidays marks holiday specs named in matched and reports whether any
// matched.
func (r *Resolver) ApplyHolidays(matched []string) bool {
	found := false
	for i := range r.catalog {
		s := &r.catalog[i]
		if s.Trigger() != effect.TriggerHoliday {
			continue
		}
		s.DoDisplay = slices.Contains(matched, s.Holiday)
		if s.DoDisplay {
			found = true
		}
	}
	return found
}

// Select returns what should be on screen for code: every configured spec
// with DoDisplay set, in catalog order, then at most one built-in visual.
// Configured effects are not ranked against each other; all of them render.
func (r *Resolver) Select(code int) []effect.Visual {
	var out []effect.Visual
	for i := range r.catalog {
		if !r.catalog[i].DoDisplay {
			continue
		}
		spec := r.catalog[i]
		out = append(out, effect.Visual{Kind: effect.KindCustom, Index: i, Spec: &spec})
	}
	if kind, ok := effect.Builtin(code, r.hide); ok {
		out = append(out, effect.BuiltinVisual(kind))
	}
	return out
}
