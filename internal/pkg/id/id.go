package id

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// New generates a ULID for the current time.
func New() string {
	return NewAt(time.Now())
}

// NewAt generates a ULID whose timestamp part is t, so ids sort by the time the
// record was created under an injected clock.
func NewAt(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), rand.Reader).String()
}
