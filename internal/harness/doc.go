// Package harness runs conformance scenarios against the evaluation engine.
//
// A scenario names a dataset, a CUE plan and the solutions the plan must
// produce. The harness loads the triples into the chosen backend, compiles
// and builds the plan, evaluates it from the empty seed and checks the
// expectations.
//
// # Scenario Format
//
//	name: social_join
//	description: "People joined with who they know"
//	backend: memory            # or sqlite
//	data:
//	  - ["<alice>", "<type>", "<Person>"]
//	  - ["<alice>", "<knows>", "<bob>"]
//	plan: |
//	  query: join: {
//	    on: ["p"]
//	    lhs: pattern: ["?p", "<type>", "<Person>"]
//	    rhs: pattern: ["?p", "<knows>", "?f"]
//	  }
//	limit: 10
//	windows: {lhs: 1, rhs: 1, max: 4}
//	expect:
//	  count: 1
//	  solutions:
//	    - {p: "<alice>", f: "<bob>"}
//
// data_file and plan_file may replace data and plan; they are resolved
// relative to the scenario file.
//
// # Expectations
//
//   - count: exact number of solutions
//   - solutions: the solutions as a multiset, order ignored
//   - contains: solutions that must appear among the results
//   - error: the plan must fail to compile or build with this substring
//
// # Golden Snapshots
//
// RunWithGolden stores the canonical JSON of the sorted solutions under
// testdata/golden/{scenario.Name}.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
