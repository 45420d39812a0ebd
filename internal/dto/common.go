package dto

// Response is the envelope shared by every endpoint:
// { success, message, data?, error? }.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func OK(data any) Response {
	return Response{Success: true, Data: data}
}

func OKMessage(message string, data any) Response {
	return Response{Success: true, Message: message, Data: data}
}

func Fail(message string) Response {
	return Response{Success: false, Message: message}
}

// Pagination mirrors the offset-based shape the frontend expects.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

func NewPagination(page, limit int, total int64) Pagination {
	totalPages := (total + int64(limit) - 1) / int64(limit)
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}
