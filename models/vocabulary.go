package models

import (
	"strings"
	"time"
)

// Bảng ánh xạ các giá trị cũ (tiếng Anh viết hoa, tiếng Việt) sang giá trị chuẩn.
// Mọi chỗ đọc dữ liệu đều đi qua bảng này thay vì tự so sánh chuỗi.
var statusAliases = map[string]Status{
	"not_started":    StatusNotStarted,
	"not started":    StatusNotStarted,
	"NOT_STARTED":    StatusNotStarted,
	"PENDING":        StatusNotStarted,
	"Chưa Bắt Đầu":   StatusNotStarted,
	"in_progress":    StatusInProgress,
	"in progress":    StatusInProgress,
	"IN_PROGRESS":    StatusInProgress,
	"Đang Thực Hiện": StatusInProgress,
	"done":           StatusDone,
	"DONE":           StatusDone,
	"COMPLETED":      StatusDone,
	"Hoàn Thành":     StatusDone,
}

var priorityAliases = map[string]Priority{
	"high":       PriorityHigh,
	"HIGH":       PriorityHigh,
	"Cao":        PriorityHigh,
	"medium":     PriorityMedium,
	"MEDIUM":     PriorityMedium,
	"Trung Bình": PriorityMedium,
	"low":        PriorityLow,
	"LOW":        PriorityLow,
	"Thấp":       PriorityLow,
}

var priorityRank = map[Priority]int{
	PriorityHigh:   1,
	PriorityMedium: 2,
	PriorityLow:    3,
}

// ParseStatus trả về giá trị chuẩn của s, kể cả khi s là giá trị cũ
func ParseStatus(s string) (Status, bool) {
	st, ok := statusAliases[strings.TrimSpace(s)]
	return st, ok
}

// ParsePriority trả về giá trị chuẩn của s, kể cả khi s là giá trị cũ
func ParsePriority(s string) (Priority, bool) {
	p, ok := priorityAliases[strings.TrimSpace(s)]
	return p, ok
}

// StatusAliases trả về các giá trị cũ được ánh xạ về st (không gồm chính st)
func StatusAliases(st Status) []string {
	var out []string
	for alias, canonical := range statusAliases {
		if canonical == st && alias != string(st) {
			out = append(out, alias)
		}
	}
	return out
}

// PriorityAliases trả về các giá trị cũ được ánh xạ về p (không gồm chính p)
func PriorityAliases(p Priority) []string {
	var out []string
	for alias, canonical := range priorityAliases {
		if canonical == p && alias != string(p) {
			out = append(out, alias)
		}
	}
	return out
}

// Statuses liệt kê các trạng thái hợp lệ theo thứ tự
func Statuses() []Status {
	return []Status{StatusNotStarted, StatusInProgress, StatusDone}
}

// Priorities liệt kê các độ ưu tiên hợp lệ từ cao xuống thấp
func Priorities() []Priority {
	return []Priority{PriorityHigh, PriorityMedium, PriorityLow}
}

// Rank: high < medium < low, giá trị lạ xếp cuối
func (p Priority) Rank() int {
	if r, ok := priorityRank[p]; ok {
		return r
	}
	return len(priorityRank) + 1
}

// ParseDueDate chấp nhận "YYYY-MM-DD" hoặc timestamp RFC 3339 và trả về ngày lịch
func ParseDueDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t.Format(DateLayout), true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC().Format(DateLayout), true
	}
	return "", false
}

// Normalize áp dụng bảng ánh xạ lên một task đọc từ store hoặc từ server
func (t Task) Normalize() Task {
	if st, ok := ParseStatus(string(t.Status)); ok {
		t.Status = st
	}
	if p, ok := ParsePriority(string(t.Priority)); ok {
		t.Priority = p
	}
	if d, ok := ParseDueDate(t.DueDate); ok {
		t.DueDate = d
	}
	return t
}
