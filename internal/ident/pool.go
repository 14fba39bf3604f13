package ident

import (
	"fmt"

	"fortio.org/safecast"

	"corec/internal/source"
)

// Pool is the process-wide home for every interned string, integer, and
// float literal value used by a compilation session. It follows
// source.Interner's flyweight design (map + reverse slice) for strings, and
// adds a parallel pair of keyed numeric pools so that distinct literal
// representations with equal value never collide (spec.md §3.1).
//
// The string methods are safe for concurrent use, since source.Interner
// locks internally. The integer and float pools have no lock of their own:
// InternInt, InternFloat, LookupInt and LookupFloat are not safe for
// concurrent use.
type Pool struct {
	strings *source.Interner

	ints       []IntKey
	intIndex   map[IntKey]InternedInt
	floats     []FloatKey
	floatIndex map[FloatKey]InternedFloat
}

// NewPool creates an empty Pool.
func NewPool() *Pool {
	return &Pool{
		strings:    source.NewInterner(),
		ints:       make([]IntKey, 1, 64), // index 0 reserved for NoInternedInt
		intIndex:   make(map[IntKey]InternedInt, 64),
		floats:     make([]FloatKey, 1, 64),
		floatIndex: make(map[FloatKey]InternedFloat, 64),
	}
}

// InternString interns a surface string and returns its handle.
func (p *Pool) InternString(s string) InternedStr {
	return InternedStr(p.strings.Intern(s))
}

// InternIdent interns a surface name and returns its Identifier handle.
func (p *Pool) InternIdent(s string) Identifier {
	return Identifier(p.InternString(s))
}

// LookupString returns the string for a handle.
func (p *Pool) LookupString(id InternedStr) (string, bool) {
	return p.strings.Lookup(source.StringID(id))
}

// LookupIdent returns the surface name for an Identifier.
func (p *Pool) LookupIdent(id Identifier) (string, bool) {
	return p.LookupString(InternedStr(id))
}

// InternInt interns an integer literal's bit pattern, width and signedness.
func (p *Pool) InternInt(bits uint8, signed bool, value uint64) InternedInt {
	key := IntKey{Bits: bits, Signed: signed, Value: value}
	if id, ok := p.intIndex[key]; ok {
		return id
	}
	n, err := safecast.Conv[uint32](len(p.ints))
	if err != nil {
		panic(fmt.Errorf("ident: int pool overflow: %w", err))
	}
	id := InternedInt(n)
	p.ints = append(p.ints, key)
	p.intIndex[key] = id
	return id
}

// LookupInt returns the key for an interned integer literal.
func (p *Pool) LookupInt(id InternedInt) (IntKey, bool) {
	if !id.IsValid() || int(id) >= len(p.ints) {
		return IntKey{}, false
	}
	return p.ints[id], true
}

// InternFloat interns a float literal's bit pattern and width.
func (p *Pool) InternFloat(bits FloatBits, value uint64) InternedFloat {
	key := FloatKey{Bits: bits, Value: value}
	if id, ok := p.floatIndex[key]; ok {
		return id
	}
	n, err := safecast.Conv[uint32](len(p.floats))
	if err != nil {
		panic(fmt.Errorf("ident: float pool overflow: %w", err))
	}
	id := InternedFloat(n)
	p.floats = append(p.floats, key)
	p.floatIndex[key] = id
	return id
}

// LookupFloat returns the key for an interned float literal.
func (p *Pool) LookupFloat(id InternedFloat) (FloatKey, bool) {
	if !id.IsValid() || int(id) >= len(p.floats) {
		return FloatKey{}, false
	}
	return p.floats[id], true
}
