package effect

// DateEligible evaluates a date-triggered or always-on spec against today.
//
// A spec with no month, day or year is always eligible. Otherwise month and
// day must equal today's, and a non-zero year must equal today's year. The
// result depends only on its inputs, so re-running it is harmless.
//
// Weather- and holiday-triggered specs are never date-eligible; their
// calendar fields are ignored.
func DateEligible(s Spec, today Today) bool {
	if s.HasWeatherCode() || s.HasHoliday() {
		return false
	}
	if !s.HasDate() {
		return true
	}
	if s.Month != int(today.Month) || s.Day != today.Day {
		return false
	}
	return s.Year == 0 || s.Year == today.Year
}
