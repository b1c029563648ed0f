package ulid

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// NewULID generates a new ULID string.
var NewULID = func() string {
	return ulid.Make().String()
}

// NewULIDAt generates a ULID carrying t as its timestamp. Ids made at increasing times sort in that order.
func NewULIDAt(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), ulid.DefaultEntropy()).String()
}

// Time returns the millisecond timestamp encoded in id.
func Time(id string) (time.Time, error) {
	parsed, err := ulid.ParseStrict(id)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()).UTC(), nil
}
