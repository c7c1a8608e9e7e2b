package constant

import (
	"time"
)

// Context key types to avoid collisions
type contextKey string

const (
	ContextKeyTenantID contextKey = "tenant_id"
	ContextKeyEmail    contextKey = "email"
	ContextKeyTokenID  contextKey = "token_id"
)

const (
	RequestParamID = "id"

	// RestoreMaxUploadBytes caps restore uploads before any line is parsed.
	RestoreMaxUploadBytes = 10 << 20 // 10 MiB
)

const (
	RequestFormFile             = "file"
	RequestFormMode             = "mode"
	RequestFormTarget           = "target"
	RequestFormSandboxID        = "sandboxId"
	RequestFormConfirmOverwrite = "confirmOverwrite"
	RequestFormConfirmText      = "confirmText"
	RequestFormNormalize        = "normalize"
)

const (
	// OverwriteConfirmPhrase must be supplied verbatim before an overwrite restore runs.
	OverwriteConfirmPhrase = "OVERWRITE"
)

const (
	DateFormat      = "2006-01-02"
	TimestampFormat = time.RFC3339
)

const (
	OtelServiceScopeName    = "service"
	OtelRepositoryScopeName = "repository"
	OtelHandlerScopeName    = "handler"
	OtelStorageScopeName    = "objstore"
)

const (
	RequestHeaderAuthorization      = "Authorization"
	RequestHeaderUserAgent          = "User-Agent"
	RequestHeaderContentType        = "Content-Type"
	RequestHeaderContentDisposition = "Content-Disposition"
	RequestHeaderRateLimit          = "X-RateLimit-Limit"
	RequestHeaderRateLimitRemaining = "X-RateLimit-Remaining"
	RequestHeaderRateLimitWindow    = "X-RateLimit-Window"
	RequestHeaderForwardedFor       = "X-Forwarded-For"
	RequestHeaderRealIP             = "X-Real-IP"

	ResponseHeaderExportCount       = "X-Export-Count"
	ResponseHeaderExportKeyCount    = "X-Export-Key-Count"
	ResponseHeaderExportFailedCount = "X-Export-Failed-Count"
)

const (
	ContentTypeJSON              = "application/json"
	ContentTypeNDJSON            = "application/x-ndjson"
	ContentTypeCSV               = "text/csv"
	ContentTypeMultipartFormData = "multipart/form-data"
)

const (
	ResponseErrorPrepareShutdown      = "SERVER PREPARING TO SHUT DOWN"
	ResponseErrorUnhealthy            = "SERVER UNHEALTHY"
	ResponseErrorRequestLimitExceeded = "REQUEST LIMIT EXCEEDED"
)

const (
	ServerEnvDevelopment = "development"
	ServerEnvProduction  = "production"
)

const (
	Empty = ""
)
