// Package harness runs display-cycle scenarios against the real engine.
//
// A scenario starts an engine on a fake scheduler, delivers weather and
// holiday results step by step, advances virtual time, and then asserts on
// the journaled transitions and the final engine state.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	now: 2026-02-10T08:00:00Z
//	config:
//	  effectDuration: 120000
//	  effects:
//	    - holiday: Halloween
//	      images: [pumpkin.png]
//	steps:
//	  - weather: { code: 601 }
//	  - holiday: { rows: [{ date: 2019-10-31, names: [Halloween] }] }
//	  - holiday: { doc: pages/listing.html }
//	  - weather: { fail: "503 service unavailable" }
//	  - advance: 3m
//	  - redraw: true
//	assertions:
//	  - type: phase
//	    phase: showing
//	  - type: transition_at
//	    to: cooldown
//	    at: 2m
//	  - type: visuals
//	    visuals: [snow]
//	  - type: transition_count
//	    count: 4
//
// The config mapping is decoded and schema-checked exactly like a YAML
// config file, so scenarios exercise the same defaults.
//
// # Assertion Types
//
//   - phase: the final phase
//   - transition_at: a transition into a phase at an offset from now,
//     optionally with a given reason
//   - visuals: what one Showing entry rendered (1-based index, default last)
//   - transition_count: the number of transitions, optionally only those
//     into one phase
//
// # Deterministic Testing
//
// The harness uses:
//   - testutil.FakeScheduler starting at the scenario's now
//   - sequential cycle IDs (cycle-1, cycle-2, ...)
//   - an in-memory SQLite journal (isolated per run)
//
// Identical scenarios therefore produce identical traces, which golden
// files pin down.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/snow_full_cycle.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        fmt.Println(msg)
//	    }
//	}
package harness
