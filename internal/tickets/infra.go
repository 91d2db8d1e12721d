package tickets

import (
	"context"
	"database/sql"
	"errors"
)

type repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) Repo {
	return &repo{db: db}
}

func (r *repo) GetTicket(ctx context.Context, id string) (*Ticket, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, category, sentiment, processed
		FROM tickets
		WHERE id = $1
		LIMIT 1
	`, id)

	var t Ticket
	var category, sentiment sql.NullString
	if err := row.Scan(&t.ID, &category, &sentiment, &t.Processed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, &StoreError{Op: "select", Err: err}
	}
	t.Category = category.String
	t.Sentiment = sentiment.String

	return &t, nil
}

func (r *repo) UpdateTicket(ctx context.Context, id, category, sentiment string) (*Ticket, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE tickets
		SET category = $1, sentiment = $2, processed = TRUE
		WHERE id = $3
		RETURNING id, category, sentiment, processed
	`, category, sentiment, id)

	var t Ticket
	if err := row.Scan(&t.ID, &t.Category, &t.Sentiment, &t.Processed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// The id vanished between read and write.
			return nil, &StoreError{Op: "update", Err: errors.New("no row updated")}
		}
		return nil, &StoreError{Op: "update", Err: err}
	}

	return &t, nil
}

func (r *repo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
