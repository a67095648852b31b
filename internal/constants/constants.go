package constants

// Session and context keys
const (
	SessionCookieName   = "task_session"
	ContextKeyUserID    = "user_id"
	ContextKeyUser      = "current_user"
	ContextKeyTask      = "task"
	ContextKeyRequestID = "request_id"
	HeaderRequestID     = "X-Request-ID"
)

// Account rules
const (
	MinPasswordLength = 8
	UsernamePrefix    = "user"
	ReferenceDigits   = 6
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Routes used for redirects
const (
	RouteHome     = "/"
	RouteLogin    = "/login/"
	RouteTaskList = "/tasks-list/"
)

// MaxAIGeneratedTasks caps the number of drafts accepted from the AI service
const MaxAIGeneratedTasks = 20
