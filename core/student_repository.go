package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrStudentNotFound is returned when no student row matches the id.
var ErrStudentNotFound = errors.New("student not found")

// Student is the domain entity managed by the CRUD endpoints.
type Student struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	ClassNumber int    `json:"class_number"`
}

// StudentInput is the payload for create/update operations.
type StudentInput struct {
	FirstName   string `json:"first_name" yaml:"first_name"`
	LastName    string `json:"last_name" yaml:"last_name"`
	ClassNumber int    `json:"class_number" yaml:"class_number"`
}

// StudentRepository defines persistence operations for students.
type StudentRepository interface {
	List(ctx context.Context) ([]Student, error)
	Get(ctx context.Context, id int64) (*Student, error)
	Create(ctx context.Context, in StudentInput) (*Student, error)
	Update(ctx context.Context, id int64, in StudentInput) (*Student, error)
	Delete(ctx context.Context, id int64) error
}

// PgStudentRepository implements StudentRepository using pgxpool.
type PgStudentRepository struct {
	db *pgxpool.Pool
}

func NewPgStudentRepository(db *pgxpool.Pool) *PgStudentRepository {
	return &PgStudentRepository{db: db}
}

func (r *PgStudentRepository) List(ctx context.Context) ([]Student, error) {
	rows, err := r.db.Query(ctx, `SELECT id, first_name, last_name, class_number FROM students ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	defer rows.Close()

	var out []Student
	for rows.Next() {
		var s Student
		if err := rows.Scan(&s.ID, &s.FirstName, &s.LastName, &s.ClassNumber); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PgStudentRepository) Get(ctx context.Context, id int64) (*Student, error) {
	const q = `SELECT id, first_name, last_name, class_number FROM students WHERE id=$1`
	var s Student
	if err := r.db.QueryRow(ctx, q, id).Scan(&s.ID, &s.FirstName, &s.LastName, &s.ClassNumber); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("get student %d: %w", id, err)
	}
	return &s, nil
}

func (r *PgStudentRepository) Create(ctx context.Context, in StudentInput) (*Student, error) {
	const q = `INSERT INTO students (first_name, last_name, class_number) VALUES ($1,$2,$3) RETURNING id`
	s := Student{FirstName: in.FirstName, LastName: in.LastName, ClassNumber: in.ClassNumber}
	if err := r.db.QueryRow(ctx, q, in.FirstName, in.LastName, in.ClassNumber).Scan(&s.ID); err != nil {
		return nil, fmt.Errorf("create student: %w", err)
	}
	return &s, nil
}

func (r *PgStudentRepository) Update(ctx context.Context, id int64, in StudentInput) (*Student, error) {
	const q = `UPDATE students SET first_name=$1, last_name=$2, class_number=$3 WHERE id=$4`
	tag, err := r.db.Exec(ctx, q, in.FirstName, in.LastName, in.ClassNumber, id)
	if err != nil {
		return nil, fmt.Errorf("update student %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrStudentNotFound
	}
	return &Student{ID: id, FirstName: in.FirstName, LastName: in.LastName, ClassNumber: in.ClassNumber}, nil
}

func (r *PgStudentRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM students WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete student %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrStudentNotFound
	}
	return nil
}
