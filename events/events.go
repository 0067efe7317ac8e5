// Package events phát thông báo khi task thay đổi.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/biosecret/go-tasks/models"
)

// Action là loại thay đổi của task
type Action string

const (
	TaskCreated Action = "created"
	TaskUpdated Action = "updated"
	TaskDeleted Action = "deleted"
)

// TaskEvent là nội dung được gửi đi sau mỗi thay đổi thành công
type TaskEvent struct {
	Action Action       `json:"action"`
	UserID string       `json:"userId"`
	TaskID string       `json:"taskId"`
	Task   *models.Task `json:"task,omitempty"`
	At     time.Time    `json:"at"`
}

// Publisher gửi TaskEvent tới hệ thống bên ngoài
type Publisher interface {
	Publish(ctx context.Context, ev TaskEvent) error
}

// NopPublisher bỏ qua mọi sự kiện, dùng khi không cấu hình MQTT_URL
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, TaskEvent) error { return nil }

// MemoryPublisher giữ sự kiện trong bộ nhớ
type MemoryPublisher struct {
	mu     sync.Mutex
	events []TaskEvent
	Err    error // nếu khác nil, Publish trả về lỗi này
}

func (m *MemoryPublisher) Publish(_ context.Context, ev TaskEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.events = append(m.events, ev)
	return nil
}

// Events trả về bản sao các sự kiện đã nhận
func (m *MemoryPublisher) Events() []TaskEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]TaskEvent, len(m.events))
	copy(out, m.events)
	return out
}
