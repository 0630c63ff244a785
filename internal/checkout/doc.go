// Package checkout implements the checkout/checkin workflow.
//
// A [Service] decides, from a file's current status and owner, whether an
// operation proceeds, needs the user to confirm an override, or is refused.
// When it proceeds it changes the lock file, the read-only bit and the status
// cache in that order, transfers the file, publishes a refresh event and tells
// the user what happened.
//
// Transitions:
//
//	unlocked --checkout--> out(self) --checkin--> locked --checkout--> out(self)
//	out(other) --checkout, confirmed--> out(self)
//	out(other) --checkin, confirmed--> locked
//
// Push uploads without changing the lock state and is refused while someone
// else holds the file or while it is checked in. Pull is always allowed.
//
// Nothing serializes two operations on the same path. Two users checking out
// the same unlocked file at the same moment can both succeed; the last lock
// file written wins.
package checkout
