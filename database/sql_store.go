package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/biosecret/go-tasks/models"
)

// dialect gom các khác biệt giữa PostgreSQL và SQLite
type dialect struct {
	name string
	// rebind đổi placeholder $N sang cú pháp của driver
	rebind            func(query string) string
	isUniqueViolation func(err error) bool
}

var dollarParam = regexp.MustCompile(`\$(\d+)`)

func keepDollar(query string) string { return query }

func questionNumbered(query string) string {
	return dollarParam.ReplaceAllString(query, "?$1")
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id VARCHAR(36) PRIMARY KEY,
		email VARCHAR(255) UNIQUE NOT NULL,
		password TEXT NOT NULL,
		username VARCHAR(255) NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		phone_number VARCHAR(50) NOT NULL DEFAULT '',
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id VARCHAR(36) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		due_date VARCHAR(50) NOT NULL,
		status VARCHAR(50) NOT NULL DEFAULT 'not_started',
		priority VARCHAR(50) NOT NULL DEFAULT 'medium',
		user_id VARCHAR(36) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_user_id ON tasks(user_id)`,
}

const (
	userColumns = "id, email, password, username, address, phone_number, created_at, updated_at"
	taskColumns = "id, name, description, due_date, status, priority, user_id, created_at, updated_at"
)

// SQLStore là Store dùng database/sql, chung cho PostgreSQL và SQLite
type SQLStore struct {
	db      *sql.DB
	dialect dialect
}

func newSQLStore(ctx context.Context, db *sql.DB, d dialect) (*SQLStore, error) {
	s := &SQLStore{db: db, dialect: d}
	if err := s.createTables(ctx); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// DB trả về kết nối gốc
func (s *SQLStore) DB() *sql.DB {
	return s.db
}

// Driver trả về tên dialect đang dùng
func (s *SQLStore) Driver() string {
	return s.dialect.name
}

// createTables tạo bảng nếu chưa tồn tại
func (s *SQLStore) createTables(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close đóng kết nối
func (s *SQLStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLStore) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.dialect.rebind(query), args...)
}

func (s *SQLStore) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, s.dialect.rebind(query), args...)
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (models.User, error) {
	var u models.User
	var createdAt, updatedAt int64
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.Address, &u.PhoneNumber, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	u.CreatedAt = fromMillis(createdAt)
	u.UpdatedAt = fromMillis(updatedAt)
	return u, nil
}

func scanTask(row scanner) (models.Task, error) {
	var t models.Task
	var status, priority string
	var createdAt, updatedAt int64
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.DueDate, &status, &priority, &t.UserID, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, ErrNotFound
	}
	if err != nil {
		return models.Task{}, err
	}
	t.Status = models.Status(status)
	t.Priority = models.Priority(priority)
	t.CreatedAt = fromMillis(createdAt)
	t.UpdatedAt = fromMillis(updatedAt)
	return t.Normalize(), nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// CreateUser thêm user mới, trùng email trả về ErrDuplicateEmail
func (s *SQLStore) CreateUser(ctx context.Context, u models.User) error {
	_, err := s.exec(ctx,
		"INSERT INTO users ("+userColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8)",
		u.ID, u.Email, u.PasswordHash, u.DisplayName, u.Address, u.PhoneNumber, toMillis(u.CreatedAt), toMillis(u.UpdatedAt),
	)
	if err != nil {
		if s.dialect.isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetUserByEmail tìm user theo email (phân biệt hoa thường)
func (s *SQLStore) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	return scanUser(s.queryRow(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1", email))
}

// GetUserByID tìm user theo id
func (s *SQLStore) GetUserByID(ctx context.Context, id string) (models.User, error) {
	return scanUser(s.queryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id))
}

// UpdateUserProfile chỉ ghi các trường có trong patch
func (s *SQLStore) UpdateUserProfile(ctx context.Context, id string, patch models.ProfilePatch, updatedAt time.Time) (models.User, error) {
	return scanUser(s.queryRow(ctx, `
		UPDATE users SET
			username = COALESCE($1, username),
			address = COALESCE($2, address),
			phone_number = COALESCE($3, phone_number),
			updated_at = $4
		WHERE id = $5
		RETURNING `+userColumns,
		nullString(patch.DisplayName), nullString(patch.Address), nullString(patch.PhoneNumber), toMillis(updatedAt), id,
	))
}

// ListTasks lấy tất cả task của một user
func (s *SQLStore) ListTasks(ctx context.Context, userID string) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		s.dialect.rebind("SELECT "+taskColumns+" FROM tasks WHERE user_id = $1 ORDER BY due_date, created_at"), userID)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

// CreateTask thêm task mới
func (s *SQLStore) CreateTask(ctx context.Context, t models.Task) error {
	_, err := s.exec(ctx,
		"INSERT INTO tasks ("+taskColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)",
		t.ID, t.Name, t.Description, t.DueDate, string(t.Status), string(t.Priority), t.UserID, toMillis(t.CreatedAt), toMillis(t.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// UpdateTask cập nhật task khớp cả id lẫn user_id trong một câu lệnh
func (s *SQLStore) UpdateTask(ctx context.Context, userID, taskID string, ch models.TaskChanges, updatedAt time.Time) (models.Task, error) {
	var status, priority sql.NullString
	if ch.Status != nil {
		status = sql.NullString{String: string(*ch.Status), Valid: true}
	}
	if ch.Priority != nil {
		priority = sql.NullString{String: string(*ch.Priority), Valid: true}
	}

	return scanTask(s.queryRow(ctx, `
		UPDATE tasks SET
			name = COALESCE($1, name),
			description = COALESCE($2, description),
			due_date = COALESCE($3, due_date),
			status = COALESCE($4, status),
			priority = COALESCE($5, priority),
			updated_at = $6
		WHERE id = $7 AND user_id = $8
		RETURNING `+taskColumns,
		nullString(ch.Name), nullString(ch.Description), nullString(ch.DueDate), status, priority, toMillis(updatedAt), taskID, userID,
	))
}

// DeleteTask xóa task khớp cả id lẫn user_id
func (s *SQLStore) DeleteTask(ctx context.Context, userID, taskID string) error {
	res, err := s.exec(ctx, "DELETE FROM tasks WHERE id = $1 AND user_id = $2", taskID, userID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

// NormalizeLegacyTasks chuyển status/priority cũ về giá trị chuẩn
func (s *SQLStore) NormalizeLegacyTasks(ctx context.Context) (int64, error) {
	var total int64
	for _, st := range models.Statuses() {
		n, err := s.replaceValues(ctx, "status", string(st), models.StatusAliases(st))
		if err != nil {
			return total, err
		}
		total += n
	}
	for _, p := range models.Priorities() {
		n, err := s.replaceValues(ctx, "priority", string(p), models.PriorityAliases(p))
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (s *SQLStore) replaceValues(ctx context.Context, column, canonical string, aliases []string) (int64, error) {
	if len(aliases) == 0 {
		return 0, nil
	}
	args := []any{canonical}
	placeholders := make([]string, 0, len(aliases))
	for i, alias := range aliases {
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+2))
		args = append(args, alias)
	}
	query := fmt.Sprintf("UPDATE tasks SET %s = $1 WHERE %s IN (%s)", column, column, strings.Join(placeholders, ", "))
	res, err := s.exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("normalize %s: %w", column, err)
	}
	return res.RowsAffected()
}
