package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"eventmanage/internal/domain"
)

type attendanceRepository struct {
	DB *sql.DB
}

func NewAttendanceRepository(db *sql.DB) domain.AttendanceRepository {
	return &attendanceRepository{DB: db}
}

func (r *attendanceRepository) Create(ctx context.Context, a *domain.Attendance) error {
	query := `
		INSERT INTO attendances (event_id, user_id, status, responded_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.DB.ExecContext(ctx, query, a.EventID, a.UserID, a.Status, a.RespondedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.NewValidationError("You are already attending this event")
		}
		return err
	}
	return nil
}

func (r *attendanceRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Attendance, error) {
	query := `
		SELECT event_id, user_id, status, responded_at
		FROM attendances
		WHERE event_id = $1 AND user_id = $2
	`
	a := &domain.Attendance{}
	err := r.DB.QueryRowContext(ctx, query, eventID, userID).Scan(&a.EventID, &a.UserID, &a.Status, &a.RespondedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *attendanceRepository) Update(ctx context.Context, a *domain.Attendance) error {
	query := `
		UPDATE attendances
		SET status = $1, responded_at = $2
		WHERE event_id = $3 AND user_id = $4
	`
	res, err := r.DB.ExecContext(ctx, query, a.Status, a.RespondedAt, a.EventID, a.UserID)
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

func (r *attendanceRepository) Delete(ctx context.Context, eventID, userID string) error {
	query := `DELETE FROM attendances WHERE event_id = $1 AND user_id = $2`
	res, err := r.DB.ExecContext(ctx, query, eventID, userID)
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

func (r *attendanceRepository) Exists(ctx context.Context, eventID, userID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM attendances WHERE event_id = $1 AND user_id = $2)`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, eventID, userID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *attendanceRepository) ListByEvent(ctx context.Context, eventID string, params domain.PaginationParams) ([]*domain.Attendance, int, error) {
	countQuery := `SELECT COUNT(*) FROM attendances WHERE event_id = $1`
	var total int
	if err := r.DB.QueryRowContext(ctx, countQuery, eventID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT event_id, user_id, status, responded_at
		FROM attendances
		WHERE event_id = $1
		ORDER BY responded_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	records, err := scanAttendances(rows)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *attendanceRepository) ListByUser(ctx context.Context, userID string, params domain.PaginationParams) ([]*domain.Attendance, int, error) {
	countQuery := `SELECT COUNT(*) FROM attendances WHERE user_id = $1`
	var total int
	if err := r.DB.QueryRowContext(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT event_id, user_id, status, responded_at
		FROM attendances
		WHERE user_id = $1
		ORDER BY responded_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.DB.QueryContext(ctx, query, userID, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	records, err := scanAttendances(rows)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *attendanceRepository) CountByEventAndStatus(ctx context.Context, eventID string, status domain.Status) (int, error) {
	query := `SELECT COUNT(*) FROM attendances WHERE event_id = $1 AND status = $2`
	var count int
	if err := r.DB.QueryRowContext(ctx, query, eventID, status).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *attendanceRepository) ListByUserWithEvents(ctx context.Context, userID string) ([]*domain.AttendanceWithEvent, error) {
	query := `
		SELECT a.event_id, a.user_id, a.status, a.responded_at,
		       e.id, e.title, e.description, e.host_id, e.start_time, e.end_time, e.location, e.visibility, e.deleted, e.created_at, e.updated_at
		FROM attendances a
		JOIN events e ON e.id = a.event_id
		WHERE a.user_id = $1 AND e.deleted = FALSE
		ORDER BY e.start_time DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]*domain.AttendanceWithEvent, 0)
	for rows.Next() {
		a := &domain.Attendance{}
		e := &domain.Event{}
		if err := rows.Scan(
			&a.EventID, &a.UserID, &a.Status, &a.RespondedAt,
			&e.ID, &e.Title, &e.Description, &e.HostID, &e.StartTime, &e.EndTime,
			&e.Location, &e.Visibility, &e.Deleted, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, &domain.AttendanceWithEvent{Attendance: a, Event: e})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func scanAttendances(rows *sql.Rows) ([]*domain.Attendance, error) {
	records := make([]*domain.Attendance, 0)
	for rows.Next() {
		a := &domain.Attendance{}
		if err := rows.Scan(&a.EventID, &a.UserID, &a.Status, &a.RespondedAt); err != nil {
			return nil, err
		}
		records = append(records, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
