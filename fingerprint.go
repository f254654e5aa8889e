package rasm

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint returns a structural hash of the automaton, suitable for
// keying a process-wide cache of compiled assembly programs.  Automatons
// with equal fingerprints compile to identical programs.
func (a *Automaton) Fingerprint() uint64 {
	d := xxhash.New()
	var buf [8]byte
	writeInt := func(v int) {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		d.Write(buf[:])
	}
	writeInt(len(a.states))
	for i := range a.states {
		s := &a.states[i]
		writeInt(s.MaxDefinitionLevel)
		writeInt(s.MaxRepetitionLevel)
		writeInt(s.Depth)
		for _, cases := range [][]Case{s.DefinedCases, s.UndefinedCases} {
			writeInt(len(cases))
			for j := range cases {
				c := &cases[j]
				writeInt(int(c.motion))
				writeInt(c.startLevel)
				writeInt(c.nextLevel)
				writeInt(c.depth)
				writeInt(c.nextState)
				writeInt(len(c.domain))
				for _, m := range c.domain {
					writeInt(m.Depth)
					writeInt(m.Repetition)
				}
			}
		}
	}
	return d.Sum64()
}
