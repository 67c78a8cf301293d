package store

import "time"

// Policy configures retention for a MemoryStore.
type Policy struct {
	// TTL is how long a record lives after its last write.
	// If zero, records never expire.
	TTL time.Duration

	// MaxEntries bounds the number of records. When a new key would
	// exceed it, the least recently written record is evicted.
	// If zero, no bound is enforced.
	MaxEntries int

	// Now supplies the current time for expiry.
	// Default: time.Now
	Now func() time.Time
}

// UnboundedPolicy returns a policy that keeps every record for the life of
// the process.
func UnboundedPolicy() Policy {
	return Policy{}
}

// Expires reports whether records written under this policy expire.
func (p Policy) Expires() bool {
	return p.TTL > 0
}

// Bounded reports whether this policy limits the number of records.
func (p Policy) Bounded() bool {
	return p.MaxEntries > 0
}

func (p Policy) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}
