// Package eval implements lazy evaluation of graph pattern queries.
//
// A Block is a stateless evaluation step: given a seed binding set it
// returns a Stream of solutions, each of which extends the seed. All
// iteration state lives in the returned Stream, so one Block may be
// evaluated any number of times, with any seeds, independently.
//
// ARCHITECTURE:
//
// Pull model:
// Consumers call Stream.Next to advance one solution at a time. No block
// materializes its input eagerly; a consumer that stops after K solutions
// forces only the work needed to find them, even over unbounded inputs.
//
// Blocks:
//   - PatternBlock: one triple pattern against a dataset.Dataset
//   - BGPBlock: nested dependent evaluation of an ordered block list
//   - JoinBlock / LeftJoinBlock: adaptive windowed symmetric hash join
//     over two independently evaluated streams
//   - UnionBlock, FilterBlock, SliceBlock: lazy concatenation,
//     per-solution predicates, and offset/limit
//
// Windowed join:
// Both inputs are pulled in alternating turns of a per-side window. Every
// pulled row probes the other side's hash index and is then indexed on its
// own side. A full round that finds nothing doubles both windows up to a
// maximum. Once one side is exhausted its index is frozen and the other
// side is streamed against it without being indexed.
//
// Concurrency:
// A Stream must not be advanced from multiple goroutines. Distinct streams,
// even from the same Block, share no state.
package eval
