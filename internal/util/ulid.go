package util

import (
	"github.com/oklog/ulid/v2"
)

// NewULID returns the request id stamped on each LLM call log row. Ids sort by
// creation time, so the log table reads in call order.
func NewULID() string {
	return ulid.Make().String()
}
