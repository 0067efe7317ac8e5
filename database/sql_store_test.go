package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/biosecret/go-tasks/models"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	store, err := OpenSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedUser(t *testing.T, store *SQLStore, id, email string) models.User {
	t.Helper()
	now := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	u := models.User{
		ID:           id,
		Email:        email,
		PasswordHash: "hash",
		DisplayName:  "name-" + id,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := store.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", id, err)
	}
	return u
}

func seedTask(t *testing.T, store *SQLStore, id, userID string) models.Task {
	t.Helper()
	now := time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC)
	task := models.Task{
		ID:        id,
		Name:      "task " + id,
		DueDate:   "2025-01-10",
		Status:    models.StatusNotStarted,
		Priority:  models.PriorityMedium,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.CreateTask(context.Background(), task); err != nil {
		t.Fatalf("create task %s: %v", id, err)
	}
	return task
}

func TestRebindQuestionNumbered(t *testing.T) {
	got := questionNumbered("UPDATE t SET a = $1 WHERE id = $2 AND owner = $10")
	want := "UPDATE t SET a = ?1 WHERE id = ?2 AND owner = ?10"
	if got != want {
		t.Fatalf("questionNumbered = %q, want %q", got, want)
	}
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	store := newTestStore(t)
	seedUser(t, store, "u1", "a@example.com")

	err := store.CreateUser(context.Background(), models.User{ID: "u2", Email: "a@example.com", PasswordHash: "x", DisplayName: "B"})
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	// email phân biệt hoa thường như khi lưu
	if err := store.CreateUser(context.Background(), models.User{ID: "u3", Email: "A@example.com", PasswordHash: "x", DisplayName: "C"}); err != nil {
		t.Fatalf("expected differently-cased email to be accepted: %v", err)
	}
}

func TestGetUser(t *testing.T) {
	store := newTestStore(t)
	seeded := seedUser(t, store, "u1", "a@example.com")

	byEmail, err := store.GetUserByEmail(context.Background(), "a@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if byEmail.ID != "u1" || byEmail.PasswordHash != "hash" {
		t.Fatalf("unexpected user %+v", byEmail)
	}
	if !byEmail.CreatedAt.Equal(seeded.CreatedAt) {
		t.Fatalf("CreatedAt = %v, want %v", byEmail.CreatedAt, seeded.CreatedAt)
	}

	if _, err := store.GetUserByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.GetUserByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateUserProfileAppliesOnlyPresentFields(t *testing.T) {
	store := newTestStore(t)
	seedUser(t, store, "u1", "a@example.com")

	address := "Hanoi"
	later := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	updated, err := store.UpdateUserProfile(context.Background(), "u1", models.ProfilePatch{Address: &address}, later)
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.Address != "Hanoi" {
		t.Fatalf("Address = %q, want Hanoi", updated.Address)
	}
	if updated.DisplayName != "name-u1" || updated.Email != "a@example.com" || updated.PhoneNumber != "" {
		t.Fatalf("unexpected changes to other fields: %+v", updated)
	}
	if !updated.UpdatedAt.Equal(later) {
		t.Fatalf("UpdatedAt = %v, want %v", updated.UpdatedAt, later)
	}

	if _, err := store.UpdateUserProfile(context.Background(), "missing", models.ProfilePatch{Address: &address}, later); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListTasksScopedToOwner(t *testing.T) {
	store := newTestStore(t)
	seedUser(t, store, "u1", "a@example.com")
	seedUser(t, store, "u2", "b@example.com")
	seedTask(t, store, "t1", "u1")
	seedTask(t, store, "t2", "u2")
	seedTask(t, store, "t3", "u1")

	tasks, err := store.ListTasks(context.Background(), "u1")
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	for _, task := range tasks {
		if task.UserID != "u1" {
			t.Fatalf("task %s belongs to %s", task.ID, task.UserID)
		}
	}

	empty, err := store.ListTasks(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", empty)
	}
}

func TestUpdateTaskRequiresOwner(t *testing.T) {
	store := newTestStore(t)
	seedUser(t, store, "u1", "a@example.com")
	seedUser(t, store, "u2", "b@example.com")
	seedTask(t, store, "t1", "u1")

	name := "hijacked"
	_, err := store.UpdateTask(context.Background(), "u2", "t1", models.TaskChanges{Name: &name}, time.Now())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign owner, got %v", err)
	}
	_, err = store.UpdateTask(context.Background(), "u1", "missing", models.TaskChanges{Name: &name}, time.Now())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing task, got %v", err)
	}

	tasks, _ := store.ListTasks(context.Background(), "u1")
	if tasks[0].Name != "task t1" {
		t.Fatalf("task was modified: %+v", tasks[0])
	}

	done := models.StatusDone
	updated, err := store.UpdateTask(context.Background(), "u1", "t1", models.TaskChanges{Status: &done}, time.Now())
	if err != nil {
		t.Fatalf("update task: %v", err)
	}
	if updated.Status != models.StatusDone || updated.Name != "task t1" || updated.Priority != models.PriorityMedium {
		t.Fatalf("unexpected update result %+v", updated)
	}
}

func TestDeleteTaskRequiresOwner(t *testing.T) {
	store := newTestStore(t)
	seedUser(t, store, "u1", "a@example.com")
	seedUser(t, store, "u2", "b@example.com")
	seedTask(t, store, "t1", "u1")

	if err := store.DeleteTask(context.Background(), "u2", "t1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign owner, got %v", err)
	}
	if err := store.DeleteTask(context.Background(), "u1", "t1"); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	if err := store.DeleteTask(context.Background(), "u1", "t1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestTaskRequiresExistingOwner(t *testing.T) {
	store := newTestStore(t)
	err := store.CreateTask(context.Background(), models.Task{ID: "t1", Name: "x", DueDate: "2025-01-10", Status: "not_started", Priority: "medium", UserID: "ghost"})
	if err == nil {
		t.Fatalf("expected foreign key violation for unknown owner")
	}
}

func TestNormalizeLegacyTasks(t *testing.T) {
	store := newTestStore(t)
	seedUser(t, store, "u1", "a@example.com")
	seedTask(t, store, "t1", "u1")

	_, err := store.DB().Exec("UPDATE tasks SET status = 'Hoàn Thành', priority = 'HIGH' WHERE id = 't1'")
	if err != nil {
		t.Fatalf("seed legacy values: %v", err)
	}

	// đọc ra đã được chuẩn hóa dù dữ liệu trong bảng vẫn là giá trị cũ
	tasks, _ := store.ListTasks(context.Background(), "u1")
	if tasks[0].Status != models.StatusDone || tasks[0].Priority != models.PriorityHigh {
		t.Fatalf("expected normalized read, got %+v", tasks[0])
	}

	n, err := store.NormalizeLegacyTasks(context.Background())
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 rewritten values, got %d", n)
	}

	var status, priority string
	if err := store.DB().QueryRow("SELECT status, priority FROM tasks WHERE id = 't1'").Scan(&status, &priority); err != nil {
		t.Fatalf("read raw row: %v", err)
	}
	if status != "done" || priority != "high" {
		t.Fatalf("raw values = %q/%q, want done/high", status, priority)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), Options{Driver: "oracle"}); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
	if _, err := OpenPostgreSQL(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty postgres uri")
	}
	if _, err := OpenSQLite(context.Background(), " "); err == nil {
		t.Fatalf("expected error for empty sqlite path")
	}
}
