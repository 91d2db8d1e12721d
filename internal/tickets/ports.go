package tickets

import "context"

// Ticket is the projection of a tickets row this service works with. Rows
// pre-exist in Supabase; the service only reads and conditionally updates
// them, never creates or deletes. Once Processed is true, Category and
// Sentiment must both be set — a row violating that is surfaced as an
// inconsistency, not repaired.
type Ticket struct {
	ID        string
	Category  string
	Sentiment string
	Processed bool
}

// ProcessResult is what a processed (or replayed) ticket looks like to the
// caller.
type ProcessResult struct {
	TicketID  string
	Category  string
	Sentiment string
	Processed bool
}

// Repo — persistence against the Supabase Postgres. GetTicket returns
// (nil, nil) when no row matches; errors from either operation are
// *StoreError and fatal to the current request, no retry at this layer.
type Repo interface {
	GetTicket(ctx context.Context, id string) (*Ticket, error)
	UpdateTicket(ctx context.Context, id, category, sentiment string) (*Ticket, error)
	Ping(ctx context.Context) error
}

// Service — orchestration of a single process-ticket request.
type Service interface {
	ProcessTicket(ctx context.Context, ticketID, description string) (*ProcessResult, error)
}
