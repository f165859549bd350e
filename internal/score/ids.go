package score

import (
	"fmt"

	"github.com/google/uuid"
)

// idNamespace is the fixed UUID namespace for all entity IDs.
// Minting IDs as SHA-1 UUIDs of (namespace, kind, sequence) keeps them
// globally unique in form while being fully reproducible: two imports
// of the same document assign identical IDs in identical order.
var idNamespace = uuid.MustParse("6f1c24b2-a94e-5cf1-8d3a-40c3b1de6a97")

// ScoreID identifies a score aggregate.
type ScoreID string

// InstrumentID identifies an instrument within a score.
type InstrumentID string

// StaffID identifies a staff within an instrument.
type StaffID string

// VoiceID identifies a voice within a staff.
type VoiceID string

// NoteID identifies a note within a voice. Ties between notes are
// represented as NoteID references resolved by lookup, never pointers.
type NoteID string

// IDGen mints deterministic entity IDs for one import call.
// Not safe for concurrent use; each import owns its own generator.
type IDGen struct {
	seq uint64
}

// NewIDGen creates a generator whose sequence starts at zero.
func NewIDGen() *IDGen {
	return &IDGen{}
}

func (g *IDGen) next(kind string) string {
	g.seq++
	name := fmt.Sprintf("%s:%d", kind, g.seq)
	return uuid.NewSHA1(idNamespace, []byte(name)).String()
}

// ScoreID mints the next score ID.
func (g *IDGen) ScoreID() ScoreID { return ScoreID(g.next("score")) }

// InstrumentID mints the next instrument ID.
func (g *IDGen) InstrumentID() InstrumentID { return InstrumentID(g.next("instrument")) }

// StaffID mints the next staff ID.
func (g *IDGen) StaffID() StaffID { return StaffID(g.next("staff")) }

// VoiceID mints the next voice ID.
func (g *IDGen) VoiceID() VoiceID { return VoiceID(g.next("voice")) }

// NoteID mints the next note ID.
func (g *IDGen) NoteID() NoteID { return NoteID(g.next("note")) }
