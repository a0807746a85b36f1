package model

import (
	"time"
)

// RequestLog 代表一条 HTTP 请求日志记录
// Records are insert-only: they are never updated after creation, only
// bulk-deleted by the retention job.
type RequestLog struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Method       string    `gorm:"size:10" json:"method"`
	Path         string    `gorm:"size:2048" json:"path"`
	StatusCode   int       `json:"status_code"`
	ResponseTime int64     `json:"response_time"` // 耗时 (毫秒)
	UserID       *string   `gorm:"index;size:64" json:"user_id,omitempty"`
	IPAddress    string    `gorm:"size:45" json:"ip_address"`
	UserAgent    string    `gorm:"size:512" json:"user_agent,omitempty"`
	RequestBody  string    `gorm:"type:text" json:"request_body,omitempty"`
	QueryParams  string    `gorm:"type:text" json:"query_params,omitempty"`
	ErrorMessage string    `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
}

func (RequestLog) TableName() string {
	return "request_logs"
}

// RequestLogStats 请求日志统计
type RequestLogStats struct {
	Total               int64 `json:"total"`
	Today               int64 `json:"today"`
	Errors              int64 `json:"errors"`
	AverageResponseTime int64 `json:"averageResponseTime"`
}

// CleanupStats 清理任务状态
type CleanupStats struct {
	TotalLogs      int64     `json:"totalLogs"`
	TodayLogs      int64     `json:"todayLogs"`
	RetentionHours int       `json:"retentionHours"`
	NextCleanup    time.Time `json:"nextCleanup"`
}
