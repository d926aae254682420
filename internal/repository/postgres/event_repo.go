package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"eventmanage/internal/domain"
)

const eventColumns = `id, title, description, host_id, start_time, end_time, location, visibility, deleted, created_at, updated_at`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{DB: db}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, description, host_id, start_time, end_time, location, visibility, deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.Title, e.Description, e.HostID, e.StartTime, e.EndTime, e.Location, e.Visibility, e.Deleted, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, id))
}

func (r *eventRepository) GetActiveByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 AND deleted = FALSE`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, id))
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events
		SET title = $1, description = $2, start_time = $3, end_time = $4, location = $5, visibility = $6, updated_at = $7
		WHERE id = $8 AND deleted = FALSE
	`
	res, err := r.DB.ExecContext(ctx, query,
		e.Title, e.Description, e.StartTime, e.EndTime, e.Location, e.Visibility, e.UpdatedAt, e.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) SetDeleted(ctx context.Context, id string, deleted bool) error {
	query := `UPDATE events SET deleted = $1, updated_at = NOW() WHERE id = $2`
	res, err := r.DB.ExecContext(ctx, query, deleted, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) FindOverlapping(ctx context.Context, userID string, start, end time.Time) ([]*domain.Event, error) {
	// Inclusive on both edges so back-to-back events count as overlapping.
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE deleted = FALSE
		  AND (host_id = $1 OR id IN (SELECT event_id FROM attendances WHERE user_id = $1))
		  AND start_time <= $3
		  AND end_time >= $2
		ORDER BY start_time ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (r *eventRepository) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	countQuery := `SELECT COUNT(*) FROM events WHERE deleted = FALSE`
	var total int
	if err := r.DB.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE deleted = FALSE
		ORDER BY start_time ASC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.DB.QueryContext(ctx, query, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	events, err := scanEvents(rows)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepository) ListByHost(ctx context.Context, hostID string, params domain.PaginationParams) ([]*domain.Event, int, error) {
	countQuery := `SELECT COUNT(*) FROM events WHERE host_id = $1 AND deleted = FALSE`
	var total int
	if err := r.DB.QueryRowContext(ctx, countQuery, hostID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE host_id = $1 AND deleted = FALSE
		ORDER BY start_time ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.DB.QueryContext(ctx, query, hostID, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	events, err := scanEvents(rows)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepository) ListByAttendee(ctx context.Context, userID string, params domain.PaginationParams) ([]*domain.Event, int, error) {
	countQuery := `
		SELECT COUNT(*)
		FROM events e
		JOIN attendances a ON a.event_id = e.id
		WHERE a.user_id = $1 AND e.deleted = FALSE
	`
	var total int
	if err := r.DB.QueryRowContext(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT e.id, e.title, e.description, e.host_id, e.start_time, e.end_time, e.location, e.visibility, e.deleted, e.created_at, e.updated_at
		FROM events e
		JOIN attendances a ON a.event_id = e.id
		WHERE a.user_id = $1 AND e.deleted = FALSE
		ORDER BY e.start_time ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.DB.QueryContext(ctx, query, userID, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	events, err := scanEvents(rows)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepository) ListByVisibility(ctx context.Context, visibility domain.Visibility, params domain.PaginationParams) ([]*domain.Event, int, error) {
	countQuery := `SELECT COUNT(*) FROM events WHERE visibility = $1 AND deleted = FALSE`
	var total int
	if err := r.DB.QueryRowContext(ctx, countQuery, visibility).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE visibility = $1 AND deleted = FALSE
		ORDER BY start_time ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.DB.QueryContext(ctx, query, visibility, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	events, err := scanEvents(rows)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepository) ListUpcoming(ctx context.Context, after time.Time, params domain.PaginationParams) ([]*domain.Event, int, error) {
	countQuery := `SELECT COUNT(*) FROM events WHERE start_time > $1 AND deleted = FALSE`
	var total int
	if err := r.DB.QueryRowContext(ctx, countQuery, after).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE start_time > $1 AND deleted = FALSE
		ORDER BY start_time ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.DB.QueryContext(ctx, query, after, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	events, err := scanEvents(rows)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepository) Search(ctx context.Context, term string, params domain.PaginationParams) ([]*domain.Event, int, error) {
	pattern := "%" + term + "%"
	countQuery := `
		SELECT COUNT(*)
		FROM events
		WHERE deleted = FALSE AND (title ILIKE $1 OR description ILIKE $1 OR location ILIKE $1)
	`
	var total int
	if err := r.DB.QueryRowContext(ctx, countQuery, pattern).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE deleted = FALSE AND (title ILIKE $1 OR description ILIKE $1 OR location ILIKE $1)
		ORDER BY start_time ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.DB.QueryContext(ctx, query, pattern, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	events, err := scanEvents(rows)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepository) FindHappeningBetween(ctx context.Context, from, to time.Time) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE deleted = FALSE
		  AND ((start_time >= $1 AND start_time <= $2) OR (start_time < $1 AND end_time > $1))
		ORDER BY start_time ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (r *eventRepository) scanOne(row *sql.Row) (*domain.Event, error) {
	e := &domain.Event{}
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.HostID, &e.StartTime, &e.EndTime,
		&e.Location, &e.Visibility, &e.Deleted, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func scanEvents(rows *sql.Rows) ([]*domain.Event, error) {
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e := &domain.Event{}
		if err := rows.Scan(
			&e.ID, &e.Title, &e.Description, &e.HostID, &e.StartTime, &e.EndTime,
			&e.Location, &e.Visibility, &e.Deleted, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}
