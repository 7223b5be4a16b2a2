// Package asynctrace records typedkv operation spans off the hot path.
//
// Span.End enqueues a completed Record onto a bounded queue consumed by a
// small worker pool; when the queue is full the record is dropped rather
// than blocking the caller's round trip.
//
// usage:
//
//	tr := asynctrace.New(func(r asynctrace.Record) {
//	    metrics.Observe(r.Op, r.Duration, r.Err)
//	}, 1, 1000) // 1 worker; queue 1000 records
//	defer tr.Close()
//
//	cache, _ := typedkv.NewScalar[User](typedkv.Options[User]{
//	    KeySpace: ks,
//	    Codec:    codec.JSON[User]{},
//	    Tracer:   tr,
//	})
package asynctrace

import (
	"sync"
	"time"

	"github.com/unkn0wn-root/typedkv"
)

// Record describes one completed operation span.
type Record struct {
	Op       string
	Key      string
	Duration time.Duration
	Err      error
}

// RecordFunc consumes completed records on a worker goroutine. It may block;
// only queue capacity is lost while it does.
type RecordFunc func(Record)

type Tracer struct {
	fn   RecordFunc
	q    chan Record
	wg   sync.WaitGroup
	once sync.Once
}

var _ typedkv.Tracer = (*Tracer)(nil)

func New(fn RecordFunc, workers, qlen int) *Tracer {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	t := &Tracer{fn: fn, q: make(chan Record, qlen)}
	t.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer t.wg.Done()
			for r := range t.q {
				t.fn(r)
			}
		}()
	}
	return t
}

// Close drains queued records and stops the workers. Safe to call more than
// once. Callers must not end spans after Close.
func (t *Tracer) Close() {
	t.once.Do(func() {
		close(t.q)
		t.wg.Wait()
	})
}

func (t *Tracer) StartSpan(op, key string) typedkv.Span {
	return span{t: t, op: op, key: key, start: time.Now()}
}

type span struct {
	t     *Tracer
	op    string
	key   string
	start time.Time
}

func (s span) End(err error) {
	r := Record{Op: s.op, Key: s.key, Duration: time.Since(s.start), Err: err}
	select {
	case s.t.q <- r:
	default: // drop
	}
}
