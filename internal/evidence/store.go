package evidence

import "context"

// Store is a content-addressed, write-once record store. Every decision in
// the pipeline persists its inputs here so it can be traced back later.
// Unavailability is caught and logged by callers; it never fails the
// operation it annotates.
type Store interface {
	// PutImmutable persists the payload and returns its content hash.
	// Storing an identical payload twice returns the same hash.
	PutImmutable(ctx context.Context, payload any) (string, error)
	// VerifyStored reports whether a record with the given hash exists.
	VerifyStored(ctx context.Context, hash string) (bool, error)
}
