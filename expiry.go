package typedkv

import "time"

// NoExpiry marks an entry as persistent. Operations taking a TTL treat zero
// as "no expiration", matching the store's own convention.
const NoExpiry time.Duration = 0

// SecondsUntil converts an absolute deadline to the relative TTL the store
// expects: deadline minus now, truncated toward zero to whole seconds.
// A deadline in the past yields a negative duration. That is a caller error
// and is deliberately not validated here; the store rejects it or expires
// the key immediately.
func SecondsUntil(deadline, now time.Time) time.Duration {
	return deadline.Sub(now).Truncate(time.Second)
}

// Until is SecondsUntil against the current clock.
func Until(deadline time.Time) time.Duration {
	return SecondsUntil(deadline, time.Now())
}
