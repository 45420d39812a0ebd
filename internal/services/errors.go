package services

import "errors"

// Classed errors. Handlers map these onto the HTTP taxonomy: ErrValidation
// wraps bad input (400), ErrNotFound covers absent, soft-deleted and
// archived entities alike (404), ErrConflict covers duplicates (409).
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")

	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrAccountFrozen      = errors.New("账号已被冻结，请联系管理员")
	ErrInvalidToken       = errors.New("刷新令牌无效或已过期")

	// ErrNoBoxAvailable is the draw's normal terminal state, not a fault.
	ErrNoBoxAvailable = errors.New("暂无可抽取的盲盒")
)
