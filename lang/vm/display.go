package vm

import (
	"strconv"

	"github.com/swordsmanluke/weave/lang/arena"
	"github.com/swordsmanluke/weave/lang/value"
)

// Display renders v the way "puts" (spec.md §4.6 PRINT) and ADD's
// string-concatenation fallback (§4.6: "each side's display-representation
// is used if one side is a string") both need. Numbers use Go's shortest
// round-tripping decimal form, matching the NaN-box round-trip property
// §8's disassembly/REPL output relies on.
func (m *VM) Display(v value.Value) string {
	switch {
	case v.IsNumber():
		return strconv.FormatFloat(v.AsNumber(), 'g', -1, 64)
	case v.IsBool():
		if v.AsBool() {
			return "true"
		}
		return "false"
	case v.IsNull():
		return "null"
	case v.IsPtr():
		switch v.PtrTag() {
		case value.PtrString:
			s, ok := m.stringAt(v.HandleBits())
			if !ok {
				return ""
			}
			return s
		case value.PtrClosureHandle:
			h := arena.HandleFromBits48(v.HandleBits())
			if c, ok := m.closures.Get(h); ok && c.Fn.Name != "" {
				return "<fn " + c.Fn.Name + ">"
			}
			return "<fn>"
		case value.PtrNativeFn:
			if nf, ok := m.nativeAt(v.HandleBits()); ok {
				return "<native " + nf.Name + ">"
			}
			return "<native>"
		}
	}
	return "<null>"
}
