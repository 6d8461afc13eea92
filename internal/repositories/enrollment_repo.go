package repositories

import (
	"context"
	"fmt"

	"github.com/BradenHooton/training-tracker/internal/database"
	"github.com/BradenHooton/training-tracker/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const enrollmentSelect = `
	SELECT e.id, e.user_id, e.course_id, e.status, e.created_at,
	       c.id, c.title, c.description, c.date, c.icon, c.trainer_id, c.created_at,
	       u.id, u.username, u.firstname, u.lastname, u.email
	FROM enrollments e
	JOIN courses c ON c.id = e.course_id
	JOIN users u ON u.id = e.user_id`

type EnrollmentRepository struct {
	db   *database.DB
	pool *pgxpool.Pool
}

func NewEnrollmentRepository(db *database.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db, pool: db.Pool}
}

// scanEnrollment populates an enrollment together with its course and user
func scanEnrollment(scanner rowScanner) (*models.Enrollment, error) {
	var e models.Enrollment
	course := &models.Course{}
	user := &models.UserSummary{}

	err := scanner.Scan(
		&e.ID, &e.UserID, &e.CourseID, &e.Status, &e.CreatedAt,
		&course.ID, &course.Title, &course.Description, &course.Date, &course.Icon,
		&course.TrainerID, &course.CreatedAt,
		&user.ID, &user.Username, &user.Firstname, &user.Lastname, &user.Email,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	e.Course = course
	e.User = user
	return &e, nil
}

func scanEnrollmentRows(rows pgx.Rows) ([]*models.Enrollment, error) {
	defer rows.Close()

	enrollments := make([]*models.Enrollment, 0)
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan enrollment: %w", err)
		}
		enrollments = append(enrollments, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return enrollments, nil
}

func (r *EnrollmentRepository) GetByID(ctx context.Context, id int64) (*models.Enrollment, error) {
	query := enrollmentSelect + ` WHERE e.id = $1`
	return scanEnrollment(r.pool.QueryRow(ctx, query, id))
}

// List returns enrollments matching every non-zero field of filter
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]*models.Enrollment, error) {
	query := enrollmentSelect + `
	WHERE ($1 = '' OR e.user_id::text = $1)
	  AND ($2 = 0 OR e.course_id = $2)
	ORDER BY c.date ASC, e.id ASC`

	rows, err := r.pool.Query(ctx, query, filter.UserID, filter.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query enrollments: %w", err)
	}

	return scanEnrollmentRows(rows)
}

// Create books the user onto the course. A second booking of the same pair
// returns ErrAlreadyEnrolled; an unknown course or user returns ErrNotFound.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) (*models.Enrollment, error) {
	if enrollment.Status == "" {
		enrollment.Status = models.EnrollmentStatusBooked
	}

	query := `
		INSERT INTO enrollments (user_id, course_id, status)
		VALUES ($1, $2, $3)
		RETURNING id`

	// The joined read shares the insert's transaction so a concurrent
	// cancellation cannot turn a successful booking into a not-found
	var created *models.Enrollment
	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		var id int64
		if err := tx.QueryRow(ctx, query, enrollment.UserID, enrollment.CourseID, enrollment.Status).Scan(&id); err != nil {
			return database.MapPostgresError(err)
		}

		e, err := scanEnrollment(tx.QueryRow(ctx, enrollmentSelect+` WHERE e.id = $1`, id))
		if err != nil {
			return err
		}
		created = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// Delete removes the enrollment, returning ErrNotFound when nothing matched
func (r *EnrollmentRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM enrollments WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
