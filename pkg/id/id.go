// Package id issues run identifiers. They are ULIDs, so they sort by
// creation time and carry it.
package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Generator hands out monotonic ULIDs; IDs from the same millisecond still
// increase.
type Generator struct {
	mu      sync.Mutex
	entropy io.Reader
}

// NewGenerator seeds the entropy source. A zero seed is replaced with one
// from crypto/rand.
func NewGenerator(seed int64) *Generator {
	if seed == 0 {
		_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{entropy: ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)}
}

// At returns an ID stamped with t.
func (g *Generator) At(t time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(t.UTC()), g.entropy)
	if err != nil {
		// only on monotonic overflow within one millisecond
		panic(err)
	}
	return id.String()
}

var std = NewGenerator(0)

// New returns an ID for the current time.
func New() string { return std.At(time.Now()) }

// NewAt returns an ID stamped with t, e.g. a run's creation time.
func NewAt(t time.Time) string { return std.At(t) }

// Time extracts the millisecond timestamp from an ID.
func Time(s string) (time.Time, error) {
	u, err := ulid.ParseStrict(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(u.Time()).UTC(), nil
}
