// Package plan defines the query plan tree handed to the evaluator.
//
// A plan is an algebra tree of triple patterns combined by BGPs, joins,
// left joins, unions, filters and slices. It is produced by the compiler
// from CUE plan documents (or built directly in Go), checked by Validate,
// and turned into eval blocks by Build.
//
// ARCHITECTURE:
//
//	[CUE plan] → compiler → [plan.Node] → Validate → Build → [eval.Block]
//
// SEALED INTERFACES:
//
// Node and Predicate are sealed interfaces using the marker method pattern.
// Only types in this package can implement them, so Build and Validate can
// switch over every case.
//
// Plans are not optimized here: children are evaluated in the order given.
package plan
