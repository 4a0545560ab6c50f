package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/campuserp/attendance-api/internal/models"
)

// StudentRepository reads the student subset needed for attendance scoping.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByID loads a student by id.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	const query = `SELECT id, roll_no, full_name, section_id, group_id FROM students WHERE id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// MissingIDs returns the subset of ids that do not resolve to a student.
// Used to reject a marking batch before any write happens.
func (r *StudentRepository) MissingIDs(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const query = `SELECT id FROM students WHERE id = ANY($1)`
	var found []string
	if err := r.db.SelectContext(ctx, &found, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("resolve student ids: %w", err)
	}
	known := make(map[string]struct{}, len(found))
	for _, id := range found {
		known[id] = struct{}{}
	}
	var missing []string
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}
