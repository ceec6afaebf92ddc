package middlewares

const (
	ctxEmailKey = "auth.email"
	ctxNameKey  = "auth.name"
	ctxRoleKey  = "auth.role"

	CtxRequestID = "request_id"
)
