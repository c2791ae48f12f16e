package department

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"
)

type stubClock struct {
	now time.Time
}

func (s *stubClock) Now() time.Time {
	return s.now
}

type fakeRepo struct {
	departments map[string]*Department
	order       []string
	seq         int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{departments: make(map[string]*Department)}
}

func (r *fakeRepo) Create(_ context.Context, d *Department) (*Department, error) {
	for _, existing := range r.departments {
		if existing.Code == d.Code {
			return nil, ErrCodeAlreadyExists
		}
	}
	clone := *d
	r.seq++
	clone.ID = fmt.Sprintf("dept-%d", r.seq)
	r.departments[clone.ID] = &clone
	r.order = append(r.order, clone.ID)
	out := clone
	return &out, nil
}

func (r *fakeRepo) Update(_ context.Context, d *Department) (*Department, error) {
	if _, ok := r.departments[d.ID]; !ok {
		return nil, ErrDepartmentNotFound
	}
	clone := *d
	r.departments[d.ID] = &clone
	out := clone
	return &out, nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.departments[id]; !ok {
		return ErrDepartmentNotFound
	}
	delete(r.departments, id)
	for idx, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:idx], r.order[idx+1:]...)
			break
		}
	}
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, id string) (*Department, error) {
	d, ok := r.departments[id]
	if !ok {
		return nil, ErrDepartmentNotFound
	}
	out := *d
	return &out, nil
}

func (r *fakeRepo) FindByCode(_ context.Context, code string) (*Department, error) {
	for _, d := range r.departments {
		if d.Code == code {
			out := *d
			return &out, nil
		}
	}
	return nil, ErrDepartmentNotFound
}

func (r *fakeRepo) List(_ context.Context, filter ListDepartmentsFilter) ([]*Department, string, error) {
	if filter.Offset > len(r.order) {
		return []*Department{}, "", nil
	}
	end := filter.Offset + filter.Limit
	if end > len(r.order) {
		end = len(r.order)
	}
	page := make([]*Department, 0, end-filter.Offset)
	for _, id := range r.order[filter.Offset:end] {
		out := *r.departments[id]
		page = append(page, &out)
	}
	next := ""
	if end < len(r.order) {
		next = strconv.Itoa(end)
	}
	return page, next, nil
}

func TestService_CreateDepartment_Success(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := NewService(newFakeRepo(), &stubClock{now: now}, nil)

	created, err := svc.CreateDepartment(context.Background(), CreateDepartmentInput{Code: " it ", Name: "  Information Technology "})
	if err != nil {
		t.Fatalf("CreateDepartment returned error: %v", err)
	}

	if created.Code != "IT" {
		t.Fatalf("expected normalized code IT, got %s", created.Code)
	}
	if created.Name != "Information Technology" {
		t.Fatalf("expected trimmed name, got %q", created.Name)
	}
	if !created.CreatedAt.Equal(now) || !created.UpdatedAt.Equal(now) {
		t.Fatalf("expected timestamps to use clock now")
	}
}

func TestService_CreateDepartment_DuplicateCode(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeRepo(), &stubClock{now: time.Now().UTC()}, nil)
	if _, err := svc.CreateDepartment(context.Background(), CreateDepartmentInput{Code: "HR", Name: "Human Resources"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := svc.CreateDepartment(context.Background(), CreateDepartmentInput{Code: "hr", Name: "Another"})
	if !errors.Is(err, ErrCodeAlreadyExists) {
		t.Fatalf("expected ErrCodeAlreadyExists, got %v", err)
	}
}

func TestService_CreateDepartment_InvalidInput(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeRepo(), nil, nil)

	if _, err := svc.CreateDepartment(context.Background(), CreateDepartmentInput{Code: "??", Name: "x"}); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}
	if _, err := svc.CreateDepartment(context.Background(), CreateDepartmentInput{Code: "FIN", Name: "  "}); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
}

func TestService_UpdateDepartment_OptionalFields(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	clock := &stubClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	svc := NewService(repo, clock, nil)

	created, err := svc.CreateDepartment(context.Background(), CreateDepartmentInput{Code: "FIN", Name: "Finance"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	clock.now = clock.now.Add(time.Hour)
	name := "Finance & Accounting"
	updated, err := svc.UpdateDepartment(context.Background(), UpdateDepartmentInput{ID: created.ID, Name: &name})
	if err != nil {
		t.Fatalf("UpdateDepartment returned error: %v", err)
	}

	if updated.Code != "FIN" {
		t.Fatalf("code should stay unchanged, got %s", updated.Code)
	}
	if updated.Name != name {
		t.Fatalf("expected name %q, got %q", name, updated.Name)
	}
	if !updated.UpdatedAt.Equal(clock.now) {
		t.Fatalf("expected UpdatedAt to move forward")
	}
}

func TestService_UpdateDepartment_DuplicateCode(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeRepo(), nil, nil)
	if _, err := svc.CreateDepartment(context.Background(), CreateDepartmentInput{Code: "IT", Name: "IT"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hr, err := svc.CreateDepartment(context.Background(), CreateDepartmentInput{Code: "HR", Name: "HR"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	code := "it"
	if _, err := svc.UpdateDepartment(context.Background(), UpdateDepartmentInput{ID: hr.ID, Code: &code}); !errors.Is(err, ErrCodeAlreadyExists) {
		t.Fatalf("expected ErrCodeAlreadyExists, got %v", err)
	}
}

func TestService_ListDepartments_Pagination(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeRepo(), nil, nil)
	for _, code := range []string{"A", "B", "C"} {
		if _, err := svc.CreateDepartment(context.Background(), CreateDepartmentInput{Code: code, Name: code}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	first, err := svc.ListDepartments(context.Background(), ListDepartmentsInput{PageSize: 2})
	if err != nil {
		t.Fatalf("ListDepartments returned error: %v", err)
	}
	if len(first.Departments) != 2 || first.NextPageToken != "2" {
		t.Fatalf("unexpected first page: %d items token %q", len(first.Departments), first.NextPageToken)
	}

	second, err := svc.ListDepartments(context.Background(), ListDepartmentsInput{PageSize: 2, PageToken: first.NextPageToken})
	if err != nil {
		t.Fatalf("ListDepartments returned error: %v", err)
	}
	if len(second.Departments) != 1 || second.NextPageToken != "" {
		t.Fatalf("unexpected second page: %d items token %q", len(second.Departments), second.NextPageToken)
	}

	if _, err := svc.ListDepartments(context.Background(), ListDepartmentsInput{PageSize: maxListPageSize + 1}); !errors.Is(err, ErrInvalidPageSize) {
		t.Fatalf("expected ErrInvalidPageSize, got %v", err)
	}
	if _, err := svc.ListDepartments(context.Background(), ListDepartmentsInput{PageToken: "-1"}); !errors.Is(err, ErrInvalidPageToken) {
		t.Fatalf("expected ErrInvalidPageToken, got %v", err)
	}
}

func TestService_DeleteDepartment(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeRepo(), nil, nil)
	created, err := svc.CreateDepartment(context.Background(), CreateDepartmentInput{Code: "OPS", Name: "Operations"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.DeleteDepartment(context.Background(), DeleteDepartmentInput{ID: created.ID}); err != nil {
		t.Fatalf("DeleteDepartment returned error: %v", err)
	}
	if _, err := svc.GetDepartment(context.Background(), GetDepartmentInput{ID: created.ID}); !errors.Is(err, ErrDepartmentNotFound) {
		t.Fatalf("expected ErrDepartmentNotFound, got %v", err)
	}
	if err := svc.DeleteDepartment(context.Background(), DeleteDepartmentInput{ID: " "}); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}
