package typedkv

// Tracer observes remote operations. Every cache operation opens one span
// around its round trip, labeled with an operation category and the full
// storage key. Implementations MUST be cheap and non-blocking; spans are
// started on hot paths (see trace/asynctrace for an async recorder).
type Tracer interface {
	StartSpan(op, key string) Span
}

// Span is ended exactly once, with the operation's outcome.
type Span interface {
	End(err error)
}

// Operation category labels passed to Tracer.StartSpan.
const (
	opScalarGet     = "scalar.get"
	opScalarSet     = "scalar.set"
	opScalarGetSet  = "scalar.getset"
	opScalarIncr    = "scalar.incr"
	opScalarClamp   = "scalar.incr_clamp"
	opScalarExists  = "scalar.exists"
	opScalarDelete  = "scalar.delete"
	opScalarExpire  = "scalar.expire"
	opScalarCompute = "scalar.get_or_compute"
	opSetAdd        = "set.add"
	opSetRemove     = "set.remove"
	opSetContains   = "set.contains"
	opSetMembers    = "set.members"
	opSetCard       = "set.card"
	opSetRandMember = "set.rand_member"
	opSetPop        = "set.pop"
	opSetExists     = "set.exists"
	opSetExpire     = "set.expire"
	opSetClear      = "set.clear"
)

type NopTracer struct{}

func (NopTracer) StartSpan(string, string) Span { return nopSpan{} }

type nopSpan struct{}

func (nopSpan) End(error) {}
