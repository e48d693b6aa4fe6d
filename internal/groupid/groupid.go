// Package groupid canonicalizes chat/group identifiers before they are used
// as grouping keys. Telegram supergroups prepend "-100" to the numeric chat
// id; stored rows always use the stripped form, so every query path must
// normalize at the boundary.
package groupid

import "strings"

const supergroupPrefix = "-100"

// Normalize strips the supergroup prefix from the head of a raw chat id.
// Inputs without the prefix pass through unchanged, which makes the function
// idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) string {
	return strings.TrimPrefix(raw, supergroupPrefix)
}
