package models

import "time"

// Status là trạng thái của một task
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Priority là độ ưu tiên của một task
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// DateLayout là định dạng của due date (ngày lịch, không có giờ)
const DateLayout = "2006-01-02"

// Task là cấu trúc dữ liệu của một công việc
type Task struct {
	ID          string    `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description" bson:"description"`
	DueDate     string    `json:"dueDate" bson:"due_date"`
	Status      Status    `json:"status" bson:"status"`
	Priority    Priority  `json:"priority" bson:"priority"`
	UserID      string    `json:"userId" bson:"user_id"`
	CreatedAt   time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updated_at"`
}

// TaskInput là body của POST /tasks, chưa được kiểm tra
type TaskInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
}

// TaskPatch là body của PUT /tasks/:id, nil nghĩa là giữ nguyên
type TaskPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	DueDate     *string `json:"dueDate,omitempty"`
	Status      *string `json:"status,omitempty"`
	Priority    *string `json:"priority,omitempty"`
}

// TaskChanges là patch đã được kiểm tra và chuẩn hóa, sẵn sàng ghi xuống store
type TaskChanges struct {
	Name        *string
	Description *string
	DueDate     *string
	Status      *Status
	Priority    *Priority
}
