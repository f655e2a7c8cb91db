package constants

type ContextKey string

const (
	PoolKey     ContextKey = "pool"
	TxKey       ContextKey = "tx"
	LoggerKey   ContextKey = "logger"
	ParamsKey   ContextKey = "params"
	IdentityKey ContextKey = "identity"

	// TenantContextKey carries the per-request resolved tenant context.
	// It is set once per request by the access guard and never reused
	// across requests.
	TenantContextKey ContextKey = "tenant_context"

	RequestStart ContextKey = "request_start"
)
