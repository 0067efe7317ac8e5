package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/biosecret/go-tasks/apperrors"
	"github.com/biosecret/go-tasks/database"
	"github.com/biosecret/go-tasks/events"
	"github.com/biosecret/go-tasks/models"
	"github.com/biosecret/go-tasks/utils"
)

// TaskService là CRUD trên task, luôn giới hạn theo user đang đăng nhập
type TaskService struct {
	store     database.Store
	publisher events.Publisher
	now       func() time.Time
}

// NewTaskService tạo TaskService, publisher nil nghĩa là không phát sự kiện
func NewTaskService(store database.Store, publisher events.Publisher) *TaskService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &TaskService{store: store, publisher: publisher, now: time.Now}
}

// List trả về task của userID theo thứ tự due date rồi độ ưu tiên
func (s *TaskService) List(ctx context.Context, userID string) ([]models.Task, error) {
	tasks, err := s.store.ListTasks(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	models.SortTasks(tasks)
	return tasks, nil
}

// Create kiểm tra input rồi lưu task với owner là userID
func (s *TaskService) Create(ctx context.Context, userID string, in models.TaskInput) (models.Task, error) {
	task, err := validateNewTask(in)
	if err != nil {
		return models.Task{}, err
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	task.ID = utils.GenerateID()
	task.UserID = userID
	task.CreatedAt = now
	task.UpdatedAt = now

	if err := s.store.CreateTask(ctx, task); err != nil {
		return models.Task{}, apperrors.Internal(err)
	}

	s.publish(ctx, events.TaskCreated, userID, task.ID, &task)
	return task, nil
}

// Update sửa task khớp cả taskID và userID; task của người khác cũng là NotFoundError
func (s *TaskService) Update(ctx context.Context, userID, taskID string, patch models.TaskPatch) (models.Task, error) {
	changes, err := validateTaskPatch(patch)
	if err != nil {
		return models.Task{}, err
	}

	task, err := s.store.UpdateTask(ctx, userID, taskID, changes, s.now().UTC())
	if err != nil {
		return models.Task{}, taskError(err)
	}

	s.publish(ctx, events.TaskUpdated, userID, task.ID, &task)
	return task, nil
}

// Delete xóa task khớp cả taskID và userID
func (s *TaskService) Delete(ctx context.Context, userID, taskID string) error {
	if err := s.store.DeleteTask(ctx, userID, taskID); err != nil {
		return taskError(err)
	}

	s.publish(ctx, events.TaskDeleted, userID, taskID, nil)
	return nil
}

// lỗi phát sự kiện chỉ ghi log, không làm hỏng request
func (s *TaskService) publish(ctx context.Context, action events.Action, userID, taskID string, task *models.Task) {
	ev := events.TaskEvent{Action: action, UserID: userID, TaskID: taskID, Task: task, At: s.now().UTC()}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		log.Printf("publish task event %s %s: %v", action, taskID, err)
	}
}

func taskError(err error) error {
	if errors.Is(err, database.ErrNotFound) {
		return apperrors.New(apperrors.CodeTaskNotFound, "task not found")
	}
	return apperrors.Internal(err)
}
