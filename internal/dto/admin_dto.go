package dto

type SensitiveWordRequest struct {
	Word  string `json:"word"`
	Level string `json:"level"`
}

type SetUserStatusRequest struct {
	IsActive *bool `json:"is_active"`
}

type SetUserRoleRequest struct {
	Role string `json:"role"`
}

type SetFeaturedRequest struct {
	IsFeatured *bool `json:"is_featured"`
}

type SetSettingRequest struct {
	Value any `json:"value"`
}

// StatsOverview is the admin dashboard headline block.
type StatsOverview struct {
	TotalUsers   int64 `json:"total_users"`
	TotalBoxes   int64 `json:"total_boxes"`
	TotalReplies int64 `json:"total_replies"`
	TotalLikes   int64 `json:"total_likes"`
	NewUsers     int64 `json:"new_users"`
	NewBoxes     int64 `json:"new_boxes"`
	NewReplies   int64 `json:"new_replies"`
	NewLikes     int64 `json:"new_likes"`
}

// StatsViolations counts the moderation states.
type StatsViolations struct {
	InactiveUsers  int64 `json:"inactive_users"`
	ArchivedBoxes  int64 `json:"archived_boxes"`
	DeletedReplies int64 `json:"deleted_replies"`
}

// DailyStat is one point of the per-day time series.
type DailyStat struct {
	Date    string `json:"date"`
	Users   int64  `json:"users"`
	Boxes   int64  `json:"boxes"`
	Replies int64  `json:"replies"`
	Likes   int64  `json:"likes"`
}

type StatsResponse struct {
	Overview   StatsOverview   `json:"overview"`
	Violations StatsViolations `json:"violations"`
	DailyStats []DailyStat     `json:"daily_stats"`
}

// ActiveUser is a ranked row of the active-user boards.
type ActiveUser struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	AnonymousName string `json:"anonymous_name"`
	Count         int64  `json:"count"`
}
