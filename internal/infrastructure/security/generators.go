// Package security provides identifier generation and admin token handling
package security

import "github.com/oklog/ulid/v2"

// GenerateULID mints a new ULID string. Used for visitor, session, lead,
// and event identifiers; ULIDs sort by creation time, which keeps the
// events table naturally ordered.
func GenerateULID() string {
	return ulid.Make().String()
}
