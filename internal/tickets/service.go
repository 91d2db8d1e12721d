package tickets

import (
	"context"

	"go.uber.org/zap"

	"github.com/nmoralesc/ticket-classifier/internal/ai"
)

type service struct {
	repo   Repo
	ai     ai.Classifier
	logger *zap.Logger
}

func NewService(repo Repo, classifier ai.Classifier, logger *zap.Logger) Service {
	return &service{
		repo:   repo,
		ai:     classifier,
		logger: logger,
	}
}

// ProcessTicket classifies and persists one ticket. The persisted processed
// flag is the sole idempotency key: an already-processed ticket is replayed
// from the store and the classifier is never invoked for it. Two concurrent
// requests for the same unprocessed ticket can both classify, last write
// wins; wasteful but not corrupting.
func (s *service) ProcessTicket(ctx context.Context, ticketID, description string) (*ProcessResult, error) {
	ticket, err := s.repo.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, ErrNotFound
	}

	if ticket.Processed {
		if ticket.Category == "" || ticket.Sentiment == "" {
			s.logger.Error("processed ticket missing classification",
				zap.String("ticket_id", ticketID))
			return nil, ErrInconsistent
		}

		s.logger.Info("idempotent replay",
			zap.String("ticket_id", ticketID),
			zap.String("category", ticket.Category),
			zap.String("sentiment", ticket.Sentiment),
		)
		return &ProcessResult{
			TicketID:  ticketID,
			Category:  ticket.Category,
			Sentiment: ticket.Sentiment,
			Processed: true,
		}, nil
	}

	analysis, err := s.ai.Classify(ctx, description)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.UpdateTicket(ctx, ticketID, analysis.Category, analysis.Sentiment); err != nil {
		return nil, err
	}

	s.logger.Info("ticket classified",
		zap.String("ticket_id", ticketID),
		zap.String("category", analysis.Category),
		zap.String("sentiment", analysis.Sentiment),
	)
	return &ProcessResult{
		TicketID:  ticketID,
		Category:  analysis.Category,
		Sentiment: analysis.Sentiment,
		Processed: true,
	}, nil
}
