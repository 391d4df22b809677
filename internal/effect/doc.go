// Package effect defines the visual effects the engine chooses between.
//
// An effect is either one of the three built-in weather visuals (snow, rain,
// clouds) or a user-configured Spec. A Spec's trigger kind is derived from
// which of its fields are set and is fixed once the catalog is loaded:
//
//   - WeatherCode > 0: shown while the current weather code equals it
//   - Holiday != "":   shown on days the holiday listing names it
//   - Month/Day/Year:  shown on the matching calendar date
//   - none of these:   always shown
//
// Built-in visuals are chosen by inclusive weather-code ranges, checked in
// the order snow, rain, clouds. Each range can be suppressed by
// configuration; configured weather-coded Specs ignore suppression.
//
// Everything in this package is pure: no clocks, no I/O.
package effect
