// Package score provides the domain aggregate produced by the import
// pipeline: Score contains Instruments, which contain Staves, which
// contain Voices, which contain Notes. Structural events (tempo, time
// signature, clef, key signature) live on the score or staff level.
//
// This package contains domain types and their validation rules only.
// All other internal packages import score; score imports nothing
// internal. This ensures the aggregate remains the foundational layer
// with no circular dependencies.
//
// Key design constraints:
//   - NO float types anywhere - tempo is integer BPM, time is integer ticks
//   - All JSON tags use snake_case
//   - Entity IDs are deterministic SHA-1 UUIDs minted from a per-import
//     sequence, never random; importing the same input twice yields
//     byte-identical serialized scores
//   - Cross-references between notes (ties) are by NoteID, never by
//     pointer, so the aggregate stays an acyclic value tree
package score
