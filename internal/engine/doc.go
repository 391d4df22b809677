// Package engine decides which ambient effects are shown and runs their
// show/hide cycle.
//
// The engine combines three inputs: the current weather condition code,
// today's holidays (parsed from a holiday listing document) and the
// calendar rules of configured effects. From them it keeps every configured
// effect's DoDisplay flag current and drives a display cycle:
//
//	Idle --eligibility change--> Showing --duration--> Cooldown --delay--> Idle
//
// ARCHITECTURE:
//
// Single-Writer Event Loop:
// All state lives in one State value owned by the Engine. It is mutated only
// while an event is being processed, one event at a time:
//   - weather results (from a poller or DeliverWeather)
//   - holiday results (from a poller or DeliverHolidays)
//   - timer firings (display duration, cooldown, local midnight)
//   - redraw requests
//
// Timer callbacks and pollers never touch State. They enqueue events, so no
// two handlers interleave and a handler always runs to completion.
//
// Cancellation:
// Starting a Showing cycle cancels the previous cycle's pending timer. Timer
// events carry the cycle ID they were scheduled for; a firing for any other
// cycle is dropped, so a timer that raced its cancellation cannot cause a
// second transition.
//
// Failure:
// Nothing in the engine is fatal. A failed fetch is logged and changes only
// the loaded flags; a malformed holiday document counts as no holidays; a
// render failure is logged and the cycle still advances.
package engine
