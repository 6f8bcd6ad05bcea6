package model

import (
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ID is a prefixed ULID, e.g. "PRJ01HV7...".
type ID string

// Prefixes of the entity ids.
const (
	ProjectPrefix = "PRJ"
	UserPrefix    = "USR"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewID returns a new id with prefix. IDs generated in the same millisecond sort in
// creation order.
func NewID(prefix string) ID {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ID(prefix + ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String())
}

// HasPrefix reports whether the id belongs to the entity with prefix.
func (id ID) HasPrefix(prefix string) bool {
	return strings.HasPrefix(string(id), prefix)
}

// Valid reports whether the id is a prefix followed by a well-formed ULID.
func (id ID) Valid(prefix string) bool {
	if !id.HasPrefix(prefix) {
		return false
	}
	_, err := ulid.ParseStrict(strings.TrimPrefix(string(id), prefix))
	return err == nil
}

func (id ID) String() string {
	return string(id)
}
