package model

// CleanupTriggerRequest represents the incoming JSON body for a manual
// cleanup run. Hours is optional; zero means "use the configured default".
type CleanupTriggerRequest struct {
	Hours int `json:"hours,omitempty"`
}

type CleanupTriggerResponse struct {
	DeletedCount int64  `json:"deleted_count"`
	Message      string `json:"message"`
}

// PagedRequestLogs is the envelope for paginated log listings.
type PagedRequestLogs struct {
	Data        []*RequestLog `json:"data"`
	Total       int64         `json:"total"`
	Count       int           `json:"count"`
	Page        int           `json:"page"`
	Limit       int           `json:"limit"`
	TotalPages  int           `json:"total_pages"`
	HasNext     bool          `json:"has_next"`
	HasPrevious bool          `json:"has_previous"`
}

// NewPagedRequestLogs fills the derived pagination fields.
func NewPagedRequestLogs(data []*RequestLog, total int64, page, limit int) *PagedRequestLogs {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return &PagedRequestLogs{
		Data:        data,
		Total:       total,
		Count:       len(data),
		Page:        page,
		Limit:       limit,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}
}
