package apperr

type Code string

const (
	CodeUnknown     Code = "UNKNOWN"
	CodeNotFound    Code = "NOT_FOUND"
	CodeUnavailable Code = "UNAVAILABLE"
	CodeInternal    Code = "INTERNAL"
)
