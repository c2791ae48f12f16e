package employee

import (
	"context"
	"errors"
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

type stubDepartments map[string]bool

func (s stubDepartments) Exists(_ context.Context, id string) (bool, error) {
	return s[id], nil
}

type fakeEmployeeRepo struct {
	employees map[string]*Employee
	order     []string
}

func newFakeEmployeeRepo() *fakeEmployeeRepo {
	return &fakeEmployeeRepo{employees: make(map[string]*Employee)}
}

func (r *fakeEmployeeRepo) Create(_ context.Context, e *Employee) (*Employee, error) {
	if _, ok := r.employees[e.BadgeID]; ok {
		return nil, ErrBadgeAlreadyExists
	}
	clone := *e
	r.employees[e.BadgeID] = &clone
	r.order = append(r.order, e.BadgeID)
	out := clone
	return &out, nil
}

func (r *fakeEmployeeRepo) Update(_ context.Context, e *Employee) (*Employee, error) {
	if _, ok := r.employees[e.BadgeID]; !ok {
		return nil, ErrEmployeeNotFound
	}
	clone := *e
	r.employees[e.BadgeID] = &clone
	out := clone
	return &out, nil
}

func (r *fakeEmployeeRepo) Delete(_ context.Context, badgeID string) error {
	if _, ok := r.employees[badgeID]; !ok {
		return ErrEmployeeNotFound
	}
	delete(r.employees, badgeID)
	for idx, id := range r.order {
		if id == badgeID {
			r.order = append(r.order[:idx], r.order[idx+1:]...)
			break
		}
	}
	return nil
}

func (r *fakeEmployeeRepo) FindByBadge(_ context.Context, badgeID string) (*Employee, error) {
	emp, ok := r.employees[badgeID]
	if !ok {
		return nil, ErrEmployeeNotFound
	}
	out := *emp
	return &out, nil
}

func (r *fakeEmployeeRepo) List(_ context.Context, filter ListEmployeesFilter) ([]*Employee, string, error) {
	var filtered []*Employee
	for _, id := range r.order {
		emp := r.employees[id]
		if filter.DepartmentID != "" && emp.DepartmentID != filter.DepartmentID {
			continue
		}
		if filter.Status != nil && emp.Status != *filter.Status {
			continue
		}
		out := *emp
		filtered = append(filtered, &out)
	}

	if filter.Offset > len(filtered) {
		return []*Employee{}, "", nil
	}
	end := filter.Offset + filter.Limit
	if end > len(filtered) {
		end = len(filtered)
	}
	next := ""
	if end < len(filtered) {
		next = strconv.Itoa(end)
	}
	return filtered[filter.Offset:end], next, nil
}

func TestService_CreateEmployee_Success(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := NewService(newFakeEmployeeRepo(), stubDepartments{"dept-it": true}, &stubClock{now: now}, nil)

	created, err := svc.CreateEmployee(context.Background(), CreateEmployeeInput{
		BadgeID:      " 0A1B2C3D ",
		EmployeeCode: " e001 ",
		Name:         "  Wang Xiaoming ",
		DepartmentID: "dept-it",
	})
	if err != nil {
		t.Fatalf("CreateEmployee returned error: %v", err)
	}

	if created.BadgeID != "0A1B2C3D" {
		t.Fatalf("expected trimmed badge id, got %q", created.BadgeID)
	}
	if created.EmployeeCode != "E001" {
		t.Fatalf("expected normalized employee code, got %q", created.EmployeeCode)
	}
	if created.Name != "Wang Xiaoming" {
		t.Fatalf("expected trimmed name, got %q", created.Name)
	}
	if created.Status != StatusActive || !created.Active() {
		t.Fatalf("expected default status active, got %s", created.Status)
	}
	if !created.CreatedAt.Equal(now) {
		t.Fatalf("expected CreatedAt to use clock now")
	}
}

func TestService_CreateEmployee_Conflicts(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeEmployeeRepo(), stubDepartments{"dept-it": true}, nil, nil)
	in := CreateEmployeeInput{BadgeID: "CARD1", EmployeeCode: "E1", Name: "A", DepartmentID: "dept-it"}
	if _, err := svc.CreateEmployee(context.Background(), in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.CreateEmployee(context.Background(), in); !errors.Is(err, ErrBadgeAlreadyExists) {
		t.Fatalf("expected ErrBadgeAlreadyExists, got %v", err)
	}

	in.BadgeID = "CARD2"
	in.DepartmentID = "dept-missing"
	if _, err := svc.CreateEmployee(context.Background(), in); !errors.Is(err, ErrDepartmentNotFound) {
		t.Fatalf("expected ErrDepartmentNotFound, got %v", err)
	}
}

func TestService_CreateEmployee_InvalidInput(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeEmployeeRepo(), nil, nil, nil)

	cases := []struct {
		name string
		in   CreateEmployeeInput
		want error
	}{
		{"badge", CreateEmployeeInput{BadgeID: "bad badge", EmployeeCode: "E1", Name: "A", DepartmentID: "d"}, ErrInvalidBadgeID},
		{"code", CreateEmployeeInput{BadgeID: "B1", EmployeeCode: " ", Name: "A", DepartmentID: "d"}, ErrInvalidEmployeeCode},
		{"name", CreateEmployeeInput{BadgeID: "B1", EmployeeCode: "E1", Name: "", DepartmentID: "d"}, ErrInvalidName},
		{"department", CreateEmployeeInput{BadgeID: "B1", EmployeeCode: "E1", Name: "A", DepartmentID: ""}, ErrInvalidDepartmentID},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := svc.CreateEmployee(context.Background(), tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestService_UpdateEmployee_MergesOnlyProvidedFields(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	svc := NewService(repo, stubDepartments{"dept-it": true, "dept-hr": true}, nil, nil)
	if _, err := svc.CreateEmployee(context.Background(), CreateEmployeeInput{BadgeID: "CARD1", EmployeeCode: "E1", Name: "Lin", DepartmentID: "dept-it"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	inactive := StatusInactive
	dept := "dept-hr"
	updated, err := svc.UpdateEmployee(context.Background(), UpdateEmployeeInput{BadgeID: "CARD1", Status: &inactive, DepartmentID: &dept})
	if err != nil {
		t.Fatalf("UpdateEmployee returned error: %v", err)
	}

	if updated.Name != "Lin" || updated.EmployeeCode != "E1" {
		t.Fatalf("unexpected change of untouched fields: %+v", updated)
	}
	if updated.Active() {
		t.Fatalf("expected employee to be inactive")
	}
	if updated.DepartmentID != "dept-hr" {
		t.Fatalf("expected department moved, got %s", updated.DepartmentID)
	}

	missing := "dept-none"
	if _, err := svc.UpdateEmployee(context.Background(), UpdateEmployeeInput{BadgeID: "CARD1", DepartmentID: &missing}); !errors.Is(err, ErrDepartmentNotFound) {
		t.Fatalf("expected ErrDepartmentNotFound, got %v", err)
	}

	bogus := Status("retired")
	if _, err := svc.UpdateEmployee(context.Background(), UpdateEmployeeInput{BadgeID: "CARD1", Status: &bogus}); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestService_ListEmployees_FilterByDepartmentAndStatus(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeEmployeeRepo(), nil, nil, nil)
	inactive := StatusInactive
	seed := []CreateEmployeeInput{
		{BadgeID: "C1", EmployeeCode: "E1", Name: "A", DepartmentID: "it"},
		{BadgeID: "C2", EmployeeCode: "E2", Name: "B", DepartmentID: "it", Status: &inactive},
		{BadgeID: "C3", EmployeeCode: "E3", Name: "C", DepartmentID: "hr"},
	}
	for _, in := range seed {
		if _, err := svc.CreateEmployee(context.Background(), in); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	active := StatusActive
	result, err := svc.ListEmployees(context.Background(), ListEmployeesInput{DepartmentID: "it", Status: &active})
	if err != nil {
		t.Fatalf("ListEmployees returned error: %v", err)
	}
	if len(result.Employees) != 1 || result.Employees[0].BadgeID != "C1" {
		t.Fatalf("unexpected employees: %+v", result.Employees)
	}
}

func TestService_DeleteEmployee(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeEmployeeRepo(), nil, nil, nil)
	if _, err := svc.CreateEmployee(context.Background(), CreateEmployeeInput{BadgeID: "C1", EmployeeCode: "E1", Name: "A", DepartmentID: "it"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.DeleteEmployee(context.Background(), DeleteEmployeeInput{BadgeID: "C1"}); err != nil {
		t.Fatalf("DeleteEmployee returned error: %v", err)
	}
	if _, err := svc.GetEmployee(context.Background(), GetEmployeeInput{BadgeID: "C1"}); !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
}
