package value

// Str is the heap representation of a Weave string: an immutable UTF-8
// byte sequence plus a precomputed hash, per spec.md §3. Strings live in an
// arena.Arena[Str] (see lang/vm) and are referenced from a Value via a
// PtrString-tagged handle.
type Str struct {
	Data string
	Hash uint32
}

// NewStr builds a Str over s, precomputing its hash.
func NewStr(s string) Str {
	return Str{Data: s, Hash: fnv32(s)}
}

// fnv32 is the 32-bit FNV-1a hash, the same fast non-cryptographic string
// hash nenuphar's lang/machine string map uses for dolthub/swiss bucket
// placement (see lang/vm's globals map, which hashes the Go string key
// itself rather than this precomputed field — Hash is carried for fast
// equality short-circuiting, matching spec.md's "precomputed hash for fast
// equality").
func fnv32(s string) uint32 {
	const (
		offset32 = 2166136261
		prime32  = 16777619
	)
	h := uint32(offset32)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= prime32
	}
	return h
}

// Equal reports whether two Str values hold the same text, using the
// precomputed hash to short-circuit the common unequal case.
func (s Str) Equal(o Str) bool {
	return s.Hash == o.Hash && s.Data == o.Data
}
