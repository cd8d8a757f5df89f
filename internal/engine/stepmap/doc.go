// Package stepmap provides concrete implementations of the step, position
// map, mapping and transform abstractions that a selective-undo history
// engine treats as opaque host collaborators.
//
// The document type these steps operate over is a plain string, in the
// style of the OT text model in goatee's server/ot package: a Step describes
// a single contiguous replace of a byte range, a PositionMap records how
// that replace shifts later positions, and a Mapping composes a sequence of
// PositionMaps (optionally with mirror bookkeeping) so that positions and
// steps recorded against an old document can be translated to a new one.
package stepmap
