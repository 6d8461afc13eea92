package repositories

import (
	"context"
	"fmt"

	"github.com/BradenHooton/training-tracker/internal/database"
	"github.com/BradenHooton/training-tracker/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const courseWithTrainerSelect = `
	SELECT c.id, c.title, c.description, c.date, c.icon, c.trainer_id, c.created_at,
	       t.id, t.username, t.firstname, t.lastname, t.email
	FROM courses c
	JOIN users t ON t.id = c.trainer_id`

type CourseRepository struct {
	pool *pgxpool.Pool
}

func NewCourseRepository(db *database.DB) *CourseRepository {
	return &CourseRepository{pool: db.Pool}
}

func scanCourseWithTrainer(scanner rowScanner) (*models.Course, error) {
	var course models.Course
	trainer := &models.UserSummary{}

	err := scanner.Scan(
		&course.ID, &course.Title, &course.Description, &course.Date, &course.Icon,
		&course.TrainerID, &course.CreatedAt,
		&trainer.ID, &trainer.Username, &trainer.Firstname, &trainer.Lastname, &trainer.Email,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	course.Trainer = trainer
	return &course, nil
}

func scanCourseRows(rows pgx.Rows) ([]*models.Course, error) {
	defer rows.Close()

	courses := make([]*models.Course, 0)
	for rows.Next() {
		course, err := scanCourseWithTrainer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, course)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return courses, nil
}

// GetByID returns the course with its trainer summary
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	query := courseWithTrainerSelect + ` WHERE c.id = $1`
	return scanCourseWithTrainer(r.pool.QueryRow(ctx, query, id))
}

// List returns courses ordered by date, optionally restricted to one trainer
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]*models.Course, error) {
	query := courseWithTrainerSelect + `
	WHERE ($1 = '' OR c.trainer_id::text = $1)
	ORDER BY c.date ASC, c.id ASC`

	rows, err := r.pool.Query(ctx, query, filter.TrainerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}

	return scanCourseRows(rows)
}

// Create inserts the course and returns it with its trainer summary
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) (*models.Course, error) {
	query := `
		INSERT INTO courses (title, description, date, icon, trainer_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	var id int64
	err := r.pool.QueryRow(ctx, query,
		course.Title, course.Description, course.Date, course.Icon, course.TrainerID,
	).Scan(&id)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return r.GetByID(ctx, id)
}
