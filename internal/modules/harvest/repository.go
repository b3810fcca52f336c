package harvest

import "context"

// Repository tracks which mail messages have already been processed. The
// unique message ID is the system's one real idempotency key: a message seen
// here is never turned into a second order or invoice.
type Repository interface {
	// Seen reports whether the message ID was already processed.
	Seen(ctx context.Context, messageID string) (bool, error)

	// Record marks a message ID as processed with what it produced
	// ("order", "invoice" or "skipped").
	Record(ctx context.Context, messageID, kind string) error
}
