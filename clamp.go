package typedkv

import "fmt"

// The clamped increment is one server-side atomic unit: increment first
// (which creates an absent key at zero, so a first write is clamped too),
// compare the new value against the bound, conditionally overwrite with the
// bound, and return the final stored value. No other client observes an
// intermediate state; the script executes on the store's single command
// thread.
//
// Four variants exist (integer/float x max/min). They differ only in the
// increment command, the comparison operator and how the result is returned,
// so all four are expanded from one template instead of being maintained as
// near-duplicate script strings.
//
// Integer scripts reply with a native integer. Float scripts reply with the
// INCRBYFLOAT bulk string (or ARGV[2] itself when clamped) so the value
// round-trips as full-precision text; tostring(tonumber(v)) would reformat
// and lose digits.
const clampTemplate = `local v = redis.call('%s', KEYS[1], ARGV[1])
if tonumber(v) %s tonumber(ARGV[2]) then
  redis.call('SET', KEYS[1], ARGV[2])
  return %s
end
return %s`

type clampProgram struct {
	name   string // operation label for errors and spans
	source string // expanded script body; fixed text for the script cache
}

func newClampProgram(name, incrCmd, cmp, clampedRet, valueRet string) clampProgram {
	return clampProgram{
		name:   name,
		source: fmt.Sprintf(clampTemplate, incrCmd, cmp, clampedRet, valueRet),
	}
}

var (
	clampIntMax   = newClampProgram("incr_clamp_max", "INCRBY", ">", "tonumber(ARGV[2])", "v")
	clampIntMin   = newClampProgram("incr_clamp_min", "INCRBY", "<", "tonumber(ARGV[2])", "v")
	clampFloatMax = newClampProgram("incrfloat_clamp_max", "INCRBYFLOAT", ">", "ARGV[2]", "v")
	clampFloatMin = newClampProgram("incrfloat_clamp_min", "INCRBYFLOAT", "<", "ARGV[2]", "v")
)
