// Package database chứa các store lưu user và task.
// Mọi thao tác sửa/xóa task đều lọc đồng thời theo id và user_id trong một câu lệnh.
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/biosecret/go-tasks/models"
)

var (
	// ErrNotFound: không có bản ghi nào khớp điều kiện lọc
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail: email đã được đăng ký
	ErrDuplicateEmail = errors.New("email already registered")
)

// Store là các thao tác mà service cần từ cơ sở dữ liệu
type Store interface {
	CreateUser(ctx context.Context, user models.User) error
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	GetUserByID(ctx context.Context, id string) (models.User, error)
	UpdateUserProfile(ctx context.Context, id string, patch models.ProfilePatch, updatedAt time.Time) (models.User, error)

	ListTasks(ctx context.Context, userID string) ([]models.Task, error)
	CreateTask(ctx context.Context, task models.Task) error
	UpdateTask(ctx context.Context, userID, taskID string, changes models.TaskChanges, updatedAt time.Time) (models.Task, error)
	DeleteTask(ctx context.Context, userID, taskID string) error

	// NormalizeLegacyTasks ghi đè các giá trị status/priority cũ bằng giá trị chuẩn
	NormalizeLegacyTasks(ctx context.Context) (int64, error)

	Close() error
}

// Driver names dùng trong cấu hình DB_DRIVER
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongoDB  = "mongodb"
)

// Options là thông tin kết nối cho Open
type Options struct {
	Driver        string
	PostgresURI   string
	SQLitePath    string
	MongoURI      string
	MongoDatabase string
}

// Open mở store theo driver đã cấu hình
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case DriverPostgres, "":
		return OpenPostgreSQL(ctx, opts.PostgresURI)
	case DriverSQLite:
		return OpenSQLite(ctx, opts.SQLitePath)
	case DriverMongoDB:
		return OpenMongoDB(ctx, opts.MongoURI, opts.MongoDatabase)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}
}

var (
	_ Store = (*SQLStore)(nil)
	_ Store = (*MongoStore)(nil)
)
