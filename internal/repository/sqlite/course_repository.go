package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"

	"uarchive/internal/domain"
	"uarchive/internal/repository"
)

const selectCourse = `
SELECT id, code, name, department, professor, semester, year, tags, description, problem_count, created_at, updated_at
FROM courses`

type CourseRepository struct {
	db *sql.DB
}

func NewCourseRepository(db *sql.DB) repository.CourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) Create(ctx context.Context, course *domain.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	course.CreatedAt = stamp(course.CreatedAt)
	course.UpdatedAt = course.CreatedAt

	_, err := r.db.ExecContext(ctx, `
INSERT INTO courses (id, code, code_key, name, department, professor, semester, year, tags, description, problem_count, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		course.ID,
		course.Code,
		codeKey(course.Code),
		course.Name,
		course.Department,
		course.Professor,
		course.Semester,
		nullInt(course.Year),
		encodeTags(course.Tags),
		course.Description,
		course.ProblemCount,
		course.CreatedAt,
		course.UpdatedAt,
	)
	if err != nil {
		if mapped := mapWriteError("course", err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("insert course: %w", err)
	}
	return nil
}

func (r *CourseRepository) GetByID(ctx context.Context, id string) (*domain.Course, error) {
	return scanCourse(r.db.QueryRowContext(ctx, selectCourse+` WHERE id = ?`, id))
}

// GetByCode matches on the case-folded code key; its unique index guarantees at most
// one row.
func (r *CourseRepository) GetByCode(ctx context.Context, code string) (*domain.Course, error) {
	return scanCourse(r.db.QueryRowContext(ctx, selectCourse+` WHERE code_key = ?`, codeKey(code)))
}

// List returns courses ordered by code. A filter subject matches the leading segment
// of the code ("CPSC" in "CPSC 413") or the whole code; a filter number matches the
// trailing segment. Both compare case-insensitively.
func (r *CourseRepository) List(ctx context.Context, filter repository.CourseFilter) ([]domain.Course, error) {
	var (
		where []string
		args  []any
	)
	if subject := codeKey(filter.Subject); subject != "" {
		where = append(where, `(code_key = ? OR code_key LIKE ? ESCAPE '\')`)
		args = append(args, subject, escapeLike(subject)+" %")
	}
	if number := codeKey(filter.Number); number != "" {
		where = append(where, `code_key LIKE ? ESCAPE '\'`)
		args = append(args, "% "+escapeLike(number))
	}

	query := selectCourse
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY code ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query courses: %w", err)
	}
	return collectCourses(rows)
}

func (r *CourseRepository) Search(ctx context.Context, query string, limit int) ([]domain.Course, error) {
	pattern := likePattern(strings.TrimSpace(query))
	rows, err := r.db.QueryContext(ctx, selectCourse+`
WHERE code LIKE ? ESCAPE '\' OR name LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\'
ORDER BY code ASC
LIMIT ?`, pattern, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search courses: %w", err)
	}
	return collectCourses(rows)
}

func (r *CourseRepository) IncrementProblemCount(ctx context.Context, id string, delta int64) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE courses SET problem_count = problem_count + ?, updated_at = ? WHERE id = ?`,
		delta, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("increment problem count: %w", err)
	}
	return requireAffected(res, "increment problem count")
}

func collectCourses(rows *sql.Rows) ([]domain.Course, error) {
	defer rows.Close()

	courses := []domain.Course{}
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, *course)
	}
	return courses, rows.Err()
}

func scanCourse(row scanner) (*domain.Course, error) {
	var (
		course domain.Course
		year   sql.NullInt64
		tags   string
	)
	if err := row.Scan(
		&course.ID,
		&course.Code,
		&course.Name,
		&course.Department,
		&course.Professor,
		&course.Semester,
		&year,
		&tags,
		&course.Description,
		&course.ProblemCount,
		timestamp{&course.CreatedAt},
		timestamp{&course.UpdatedAt},
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan course: %w", err)
	}
	course.Year = intPtr(year)
	course.Tags = decodeTags(tags)
	return &course, nil
}

// codeKey folds a course code for case-insensitive comparison, including non-ASCII
// letters.
func codeKey(code string) string {
	return cases.Fold().String(strings.TrimSpace(code))
}
