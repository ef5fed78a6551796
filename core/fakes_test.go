package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// fakeUserRepo is an in-memory UserRepository for handler and service tests.
type fakeUserRepo struct {
	mu          sync.Mutex
	users       map[string]*UserRecord
	createCalls int
	failWith    error // when set, every operation returns this error
	nextID      int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*UserRecord{}}
}

func (r *fakeUserRepo) addUser(username, password, role string) {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.users[username] = &UserRecord{
		ID:           r.nextID,
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now(),
	}
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*UserRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	u, ok := r.users[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) Create(_ context.Context, username, passwordHash, role string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return 0, r.failWith
	}
	r.createCalls++
	if _, ok := r.users[username]; ok {
		return 0, ErrUsernameTaken
	}
	r.nextID++
	r.users[username] = &UserRecord{
		ID:           r.nextID,
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now(),
	}
	return r.nextID, nil
}

func (r *fakeUserRepo) HasAdmin(_ context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return false, r.failWith
	}
	for _, u := range r.users {
		if u.Role == "ADMIN" {
			return true, nil
		}
	}
	return false, nil
}

// fakeStudentRepo is an in-memory StudentRepository.
type fakeStudentRepo struct {
	mu        sync.Mutex
	students  []Student
	nextID    int64
	failWith  error
	failAfter int // when > 0, Create fails once this many rows exist
}

func newFakeStudentRepo() *fakeStudentRepo {
	return &fakeStudentRepo{}
}

func (r *fakeStudentRepo) List(context.Context) ([]Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	out := make([]Student, len(r.students))
	copy(out, r.students)
	return out, nil
}

func (r *fakeStudentRepo) Get(_ context.Context, id int64) (*Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	for _, s := range r.students {
		if s.ID == id {
			cp := s
			return &cp, nil
		}
	}
	return nil, ErrStudentNotFound
}

func (r *fakeStudentRepo) Create(_ context.Context, in StudentInput) (*Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	if r.failAfter > 0 && len(r.students) >= r.failAfter {
		return nil, errStoreDown
	}
	r.nextID++
	s := Student{ID: r.nextID, FirstName: in.FirstName, LastName: in.LastName, ClassNumber: in.ClassNumber}
	r.students = append(r.students, s)
	return &s, nil
}

func (r *fakeStudentRepo) Update(_ context.Context, id int64, in StudentInput) (*Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	for i, s := range r.students {
		if s.ID == id {
			r.students[i] = Student{ID: id, FirstName: in.FirstName, LastName: in.LastName, ClassNumber: in.ClassNumber}
			cp := r.students[i]
			return &cp, nil
		}
	}
	return nil, ErrStudentNotFound
}

func (r *fakeStudentRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	for i, s := range r.students {
		if s.ID == id {
			r.students = append(r.students[:i], r.students[i+1:]...)
			return nil
		}
	}
	return ErrStudentNotFound
}

var errStoreDown = errors.New("store unreachable")
