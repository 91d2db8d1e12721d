package tickets

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nmoralesc/ticket-classifier/internal/ai"
)

const exampleTicketID = "d3f77bb1-888b-4537-942f-26302190beda"

type fakeRepo struct {
	ticket      *Ticket
	getErr      error
	updateErr   error
	pingErr     error
	getCalls    int
	updateCalls int
}

func (f *fakeRepo) GetTicket(_ context.Context, id string) (*Ticket, error) {
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.ticket == nil || f.ticket.ID != id {
		return nil, nil
	}
	t := *f.ticket
	return &t, nil
}

func (f *fakeRepo) UpdateTicket(_ context.Context, id, category, sentiment string) (*Ticket, error) {
	f.updateCalls++
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.ticket = &Ticket{ID: id, Category: category, Sentiment: sentiment, Processed: true}
	t := *f.ticket
	return &t, nil
}

func (f *fakeRepo) Ping(context.Context) error {
	return f.pingErr
}

type fakeClassifier struct {
	result  ai.Classification
	err     error
	pingErr error
	calls   int
}

func (f *fakeClassifier) Classify(context.Context, string) (ai.Classification, error) {
	f.calls++
	if f.err != nil {
		return ai.Classification{}, f.err
	}
	return f.result, nil
}

func (f *fakeClassifier) Ping(context.Context) error {
	return f.pingErr
}

func newTestService(repo *fakeRepo, classifier *fakeClassifier) Service {
	return NewService(repo, classifier, zap.NewNop())
}

func TestProcessTicketIdempotentReplay(t *testing.T) {
	repo := &fakeRepo{ticket: &Ticket{
		ID:        exampleTicketID,
		Category:  "Tecnico",
		Sentiment: "Negativo",
		Processed: true,
	}}
	classifier := &fakeClassifier{}
	svc := newTestService(repo, classifier)

	result, err := svc.ProcessTicket(context.Background(), exampleTicketID, "No puedo iniciar sesion")
	require.NoError(t, err)
	assert.Equal(t, &ProcessResult{
		TicketID:  exampleTicketID,
		Category:  "Tecnico",
		Sentiment: "Negativo",
		Processed: true,
	}, result)
	// The classifier must never run for an already-processed ticket.
	assert.Equal(t, 0, classifier.calls)
	assert.Equal(t, 0, repo.updateCalls)
}

func TestProcessTicketNotFound(t *testing.T) {
	repo := &fakeRepo{}
	classifier := &fakeClassifier{}
	svc := newTestService(repo, classifier)

	_, err := svc.ProcessTicket(context.Background(), exampleTicketID, "algo")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, classifier.calls)
}

func TestProcessTicketProcessedWithoutClassification(t *testing.T) {
	repo := &fakeRepo{ticket: &Ticket{ID: exampleTicketID, Processed: true}}
	classifier := &fakeClassifier{}
	svc := newTestService(repo, classifier)

	_, err := svc.ProcessTicket(context.Background(), exampleTicketID, "algo")
	assert.ErrorIs(t, err, ErrInconsistent)
	assert.Equal(t, 0, classifier.calls)
}

func TestProcessTicketClassifiesAndPersists(t *testing.T) {
	repo := &fakeRepo{ticket: &Ticket{ID: exampleTicketID}}
	classifier := &fakeClassifier{result: ai.Classification{Category: "Facturacion", Sentiment: "Negativo"}}
	svc := newTestService(repo, classifier)

	result, err := svc.ProcessTicket(context.Background(), exampleTicketID, "me cobraron dos veces")
	require.NoError(t, err)
	assert.Equal(t, "Facturacion", result.Category)
	assert.Equal(t, "Negativo", result.Sentiment)
	assert.True(t, result.Processed)
	assert.Equal(t, 1, classifier.calls)
	assert.Equal(t, 1, repo.updateCalls)
	assert.True(t, repo.ticket.Processed)
}

func TestProcessTicketTwiceClassifiesOnce(t *testing.T) {
	repo := &fakeRepo{ticket: &Ticket{ID: exampleTicketID}}
	classifier := &fakeClassifier{result: ai.Classification{Category: "Comercial", Sentiment: "Positivo"}}
	svc := newTestService(repo, classifier)

	first, err := svc.ProcessTicket(context.Background(), exampleTicketID, "quiero ampliar mi plan")
	require.NoError(t, err)

	second, err := svc.ProcessTicket(context.Background(), exampleTicketID, "quiero ampliar mi plan")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, classifier.calls)
	assert.Equal(t, 1, repo.updateCalls)
}

func TestProcessTicketClassifierErrorPropagates(t *testing.T) {
	llmErr := &ai.LLMError{ExcClass: "APIError", Message: "boom", StatusCode: 500}
	repo := &fakeRepo{ticket: &Ticket{ID: exampleTicketID}}
	classifier := &fakeClassifier{err: llmErr}
	svc := newTestService(repo, classifier)

	_, err := svc.ProcessTicket(context.Background(), exampleTicketID, "algo")
	var got *ai.LLMError
	require.ErrorAs(t, err, &got)
	assert.Equal(t, llmErr, got)
	assert.Equal(t, 0, repo.updateCalls)
}

func TestProcessTicketUpdateFailurePropagates(t *testing.T) {
	repo := &fakeRepo{
		ticket:    &Ticket{ID: exampleTicketID},
		updateErr: &StoreError{Op: "update", Err: errors.New("no row updated")},
	}
	classifier := &fakeClassifier{result: ai.Classification{Category: "Tecnico", Sentiment: "Neutral"}}
	svc := newTestService(repo, classifier)

	_, err := svc.ProcessTicket(context.Background(), exampleTicketID, "algo")
	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "update", storeErr.Op)
}

func TestProcessTicketReadFailurePropagates(t *testing.T) {
	repo := &fakeRepo{getErr: &StoreError{Op: "select", Err: errors.New("connection reset")}}
	classifier := &fakeClassifier{}
	svc := newTestService(repo, classifier)

	_, err := svc.ProcessTicket(context.Background(), exampleTicketID, "algo")
	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "select", storeErr.Op)
	assert.Equal(t, 0, classifier.calls)
}
