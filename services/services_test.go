package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/biosecret/go-tasks/apperrors"
	"github.com/biosecret/go-tasks/database"
	"github.com/biosecret/go-tasks/events"
	"github.com/biosecret/go-tasks/models"
	"github.com/biosecret/go-tasks/utils"
)

type testEnv struct {
	store     *database.SQLStore
	auth      *AuthService
	tasks     *TaskService
	publisher *events.MemoryPublisher
	codec     *utils.TokenCodec
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := database.OpenSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	codec, err := utils.NewTokenCodec("test-secret", 0)
	if err != nil {
		t.Fatalf("token codec: %v", err)
	}
	publisher := &events.MemoryPublisher{}
	return &testEnv{
		store:     store,
		auth:      NewAuthService(store, codec, 4),
		tasks:     NewTaskService(store, publisher),
		publisher: publisher,
		codec:     codec,
	}
}

func (e *testEnv) register(t *testing.T, email string) (models.PublicUser, string) {
	t.Helper()
	user, err := e.auth.Register(context.Background(), models.RegisterInput{Email: email, Password: "secret123", DisplayName: "Lan"})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	res, err := e.auth.Login(context.Background(), models.LoginInput{Email: email, Password: "secret123"})
	if err != nil {
		t.Fatalf("login %s: %v", email, err)
	}
	return user, res.Token
}

func strPtr(s string) *string { return &s }

func TestRegisterLoginResolveRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.auth.Register(ctx, models.RegisterInput{Email: " lan@example.com ", Password: "secret123", DisplayName: "Lan"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "lan@example.com" || user.ID == "" {
		t.Fatalf("unexpected user %+v", user)
	}

	res, err := env.auth.Login(ctx, models.LoginInput{Email: "lan@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Token == "" || res.User.ID != user.ID {
		t.Fatalf("unexpected login result %+v", res)
	}

	current, err := env.auth.ResolveCurrentUser(ctx, res.Token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if current.ID != user.ID || current.DisplayName != "Lan" {
		t.Fatalf("resolved %+v, want user %s", current, user.ID)
	}

	stored, err := env.store.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("get stored user: %v", err)
	}
	if stored.PasswordHash == "secret123" || utils.CheckPassword(stored.PasswordHash, "secret123") != nil {
		t.Fatalf("password must be stored as a bcrypt hash")
	}
}

func TestRegisterReportsAllInvalidFields(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.auth.Register(context.Background(), models.RegisterInput{Email: "not-an-email", Password: "123", DisplayName: "  "})

	appErr := apperrors.From(err)
	if appErr.Kind() != apperrors.KindValidation {
		t.Fatalf("kind = %q, want %q", appErr.Kind(), apperrors.KindValidation)
	}
	fields := map[string]bool{}
	for _, f := range appErr.Fields {
		fields[f.Field] = true
	}
	for _, want := range []string{"email", "password", "username"} {
		if !fields[want] {
			t.Fatalf("expected field error for %s, got %+v", want, appErr.Fields)
		}
	}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "lan@example.com")

	_, err := env.auth.Register(context.Background(), models.RegisterInput{Email: "lan@example.com", Password: "another1", DisplayName: "Other"})
	if apperrors.KindOf(err) != apperrors.KindConflict {
		t.Fatalf("expected ConflictError, got %v", err)
	}

	var count int
	if err := env.store.DB().QueryRow("SELECT COUNT(*) FROM users WHERE email = 'lan@example.com'").Scan(&count); err != nil {
		t.Fatalf("count users: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one user, got %d", count)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "lan@example.com")

	_, wrongPassword := env.auth.Login(context.Background(), models.LoginInput{Email: "lan@example.com", Password: "wrong-pass"})
	_, unknownEmail := env.auth.Login(context.Background(), models.LoginInput{Email: "ghost@example.com", Password: "secret123"})

	a, b := apperrors.From(wrongPassword), apperrors.From(unknownEmail)
	if a == nil || b == nil {
		t.Fatalf("expected both logins to fail")
	}
	if a.Code != b.Code || a.Message != b.Message || a.Code.HTTPStatus() != b.Code.HTTPStatus() {
		t.Fatalf("login failures differ: %+v vs %+v", a, b)
	}
	if a.Kind() != apperrors.KindAuth {
		t.Fatalf("kind = %q, want %q", a.Kind(), apperrors.KindAuth)
	}
}

func TestResolveCurrentUserErrors(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.auth.ResolveCurrentUser(context.Background(), ""); !apperrors.Is(err, apperrors.CodeUnauthenticated) {
		t.Fatalf("expected unauthenticated for empty token, got %v", err)
	}
	if _, err := env.auth.ResolveCurrentUser(context.Background(), "garbage"); !apperrors.Is(err, apperrors.CodeUnauthenticated) {
		t.Fatalf("expected unauthenticated for malformed token, got %v", err)
	}

	orphan, err := env.codec.Issue("deleted-user")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := env.auth.ResolveCurrentUser(context.Background(), orphan); apperrors.KindOf(err) != apperrors.KindNotFound {
		t.Fatalf("expected NotFoundError for deleted user, got %v", err)
	}
}

func TestUpdateProfileMergesFields(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.register(t, "lan@example.com")

	updated, err := env.auth.UpdateProfile(context.Background(), token, models.ProfilePatch{Address: strPtr("Hanoi")})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.Address != "Hanoi" {
		t.Fatalf("Address = %q, want Hanoi", updated.Address)
	}
	if updated.DisplayName != user.DisplayName || updated.Email != user.Email || updated.PhoneNumber != user.PhoneNumber {
		t.Fatalf("other fields changed: %+v vs %+v", updated, user)
	}

	if _, err := env.auth.UpdateProfile(context.Background(), token, models.ProfilePatch{DisplayName: strPtr(" ")}); apperrors.KindOf(err) != apperrors.KindValidation {
		t.Fatalf("expected ValidationError for empty username, got %v", err)
	}
	if _, err := env.auth.UpdateProfile(context.Background(), "bad", models.ProfilePatch{}); !apperrors.Is(err, apperrors.CodeUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}

	same, err := env.auth.UpdateProfile(context.Background(), token, models.ProfilePatch{})
	if err != nil {
		t.Fatalf("empty patch: %v", err)
	}
	if same.Address != "Hanoi" {
		t.Fatalf("empty patch should return current profile, got %+v", same)
	}
}

func TestCreateTaskDefaultsAndRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	user, _ := env.register(t, "lan@example.com")
	ctx := context.Background()

	created, err := env.tasks.Create(ctx, user.ID, models.TaskInput{Name: "Write report", DueDate: "2025-01-10"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != models.StatusNotStarted || created.Priority != models.PriorityMedium {
		t.Fatalf("defaults not applied: %+v", created)
	}

	explicit, err := env.tasks.Create(ctx, user.ID, models.TaskInput{Name: "Ship", DueDate: "2025-01-11", Status: "in_progress", Priority: "high", Description: "v1"})
	if err != nil {
		t.Fatalf("create explicit: %v", err)
	}

	list, err := env.tasks.List(ctx, user.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(list))
	}
	got := list[1]
	if got.ID != explicit.ID || got.Name != "Ship" || got.DueDate != "2025-01-11" || got.Status != models.StatusInProgress || got.Priority != models.PriorityHigh || got.Description != "v1" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.UserID != user.ID {
		t.Fatalf("UserID = %q, want %q", got.UserID, user.ID)
	}

	evs := env.publisher.Events()
	if len(evs) != 2 || evs[0].Action != events.TaskCreated || evs[0].UserID != user.ID {
		t.Fatalf("unexpected events %+v", evs)
	}
}

func TestCreateTaskValidation(t *testing.T) {
	env := newTestEnv(t)
	user, _ := env.register(t, "lan@example.com")

	_, err := env.tasks.Create(context.Background(), user.ID, models.TaskInput{Name: "", DueDate: "2025-13-01", Status: "archived", Priority: "urgent"})
	appErr := apperrors.From(err)
	if appErr.Kind() != apperrors.KindValidation {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(appErr.Fields) != 4 {
		t.Fatalf("expected 4 field errors, got %+v", appErr.Fields)
	}

	legacy, err := env.tasks.Create(context.Background(), user.ID, models.TaskInput{Name: "Old client", DueDate: "2025-01-10T00:00:00.000Z", Status: "Đang Thực Hiện", Priority: "Thấp"})
	if err != nil {
		t.Fatalf("create with legacy vocabulary: %v", err)
	}
	if legacy.Status != models.StatusInProgress || legacy.Priority != models.PriorityLow || legacy.DueDate != "2025-01-10" {
		t.Fatalf("legacy values not normalized: %+v", legacy)
	}
}

func TestListSortsByDueDateThenPriority(t *testing.T) {
	env := newTestEnv(t)
	user, _ := env.register(t, "lan@example.com")
	ctx := context.Background()

	low, _ := env.tasks.Create(ctx, user.ID, models.TaskInput{Name: "low", DueDate: "2025-01-10", Priority: "low"})
	high, _ := env.tasks.Create(ctx, user.ID, models.TaskInput{Name: "high", DueDate: "2025-01-10", Priority: "high"})
	early, _ := env.tasks.Create(ctx, user.ID, models.TaskInput{Name: "early", DueDate: "2025-01-05", Priority: "low"})

	list, err := env.tasks.List(ctx, user.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{early.ID, high.ID, low.ID}
	for i, id := range want {
		if list[i].ID != id {
			t.Fatalf("position %d = %s (%s), want %s", i, list[i].ID, list[i].Name, id)
		}
	}
}

func TestForeignTaskIsNotFoundAndUnmodified(t *testing.T) {
	env := newTestEnv(t)
	owner, _ := env.register(t, "a@example.com")
	other, _ := env.register(t, "b@example.com")
	ctx := context.Background()

	task, err := env.tasks.Create(ctx, owner.ID, models.TaskInput{Name: "private", DueDate: "2025-01-10"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, foreignUpdate := env.tasks.Update(ctx, other.ID, task.ID, models.TaskPatch{Name: strPtr("mine now")})
	_, missingUpdate := env.tasks.Update(ctx, other.ID, "does-not-exist", models.TaskPatch{Name: strPtr("x")})
	foreignDelete := env.tasks.Delete(ctx, other.ID, task.ID)
	missingDelete := env.tasks.Delete(ctx, other.ID, "does-not-exist")

	for name, err := range map[string]error{
		"foreign update": foreignUpdate,
		"missing update": missingUpdate,
		"foreign delete": foreignDelete,
		"missing delete": missingDelete,
	} {
		appErr := apperrors.From(err)
		if appErr == nil || appErr.Code != apperrors.CodeTaskNotFound || appErr.Message != "task not found" {
			t.Fatalf("%s: expected task not found, got %v", name, err)
		}
	}

	list, _ := env.tasks.List(ctx, owner.ID)
	if len(list) != 1 || list[0].Name != "private" || !list[0].UpdatedAt.Equal(task.UpdatedAt) {
		t.Fatalf("task was modified: %+v", list)
	}
}

func TestUpdateAndDeleteOwnTask(t *testing.T) {
	env := newTestEnv(t)
	user, _ := env.register(t, "lan@example.com")
	ctx := context.Background()

	task, _ := env.tasks.Create(ctx, user.ID, models.TaskInput{Name: "draft", DueDate: "2025-01-10", Description: "keep me"})

	env.tasks.now = func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) }
	updated, err := env.tasks.Update(ctx, user.ID, task.ID, models.TaskPatch{Status: strPtr("done"), Priority: strPtr("HIGH")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != models.StatusDone || updated.Priority != models.PriorityHigh {
		t.Fatalf("patch not applied: %+v", updated)
	}
	if updated.Name != "draft" || updated.Description != "keep me" || updated.DueDate != "2025-01-10" {
		t.Fatalf("absent fields changed: %+v", updated)
	}
	if updated.UserID != user.ID {
		t.Fatalf("owner changed: %+v", updated)
	}
	if !updated.UpdatedAt.Equal(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("UpdatedAt = %v", updated.UpdatedAt)
	}

	if _, err := env.tasks.Update(ctx, user.ID, task.ID, models.TaskPatch{DueDate: strPtr("someday")}); apperrors.KindOf(err) != apperrors.KindValidation {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	if err := env.tasks.Delete(ctx, user.ID, task.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	list, _ := env.tasks.List(ctx, user.ID)
	if len(list) != 0 {
		t.Fatalf("expected no tasks after delete, got %d", len(list))
	}

	evs := env.publisher.Events()
	if last := evs[len(evs)-1]; last.Action != events.TaskDeleted || last.TaskID != task.ID || last.Task != nil {
		t.Fatalf("unexpected last event %+v", last)
	}
}

func TestPublishFailureDoesNotFailRequest(t *testing.T) {
	env := newTestEnv(t)
	user, _ := env.register(t, "lan@example.com")
	env.publisher.Err = errors.New("broker unavailable")

	if _, err := env.tasks.Create(context.Background(), user.ID, models.TaskInput{Name: "x", DueDate: "2025-01-10"}); err != nil {
		t.Fatalf("create should succeed when publishing fails: %v", err)
	}
}
