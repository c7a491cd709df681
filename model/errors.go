package model

import "fmt"

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ProviderError is returned when a summarization provider endpoint fails
// the upstream status and message are kept so the API can mirror them to the caller
// the caller credential must never be placed in Message
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return "PROVIDER_ERROR"
}

func NewProviderError(statusCode int, format string, args ...interface{}) *ProviderError {
	return &ProviderError{
		StatusCode: statusCode,
		Message:    fmt.Sprintf(format, args...),
	}
}

func NewAPIError(errReason error) APIError {
	if providerErr, ok := errReason.(*ProviderError); ok {
		return APIError{
			Code:    "PROVIDER_ERROR",
			Message: providerErr.Message,
		}
	}

	switch errReason.Error() {
	case "RATE_LIMIT_REACHED":
		return APIError{
			Code:    "RATE_LIMIT_REACHED",
			Message: "github rate limit reached. consider using a token to increase the limit or wait few minutes and try again",
		}

	case "UPSTREAM_UNAVAILABLE":
		return APIError{
			Code:    "UPSTREAM_UNAVAILABLE",
			Message: "unable to fetch trending repositories from github. wait few minutes and try again",
		}

	case "NO_CACHED_DATA":
		return APIError{
			Code:    "NO_CACHED_DATA",
			Message: "no cached trending repositories available and the upstream fetch failed. try again later",
		}

	case "VALIDATION_ERROR":
		return APIError{
			Code:    "VALIDATION_ERROR",
			Message: "text, api_key and provider are required. provider must be one of: openai, groq",
		}

	default:
		return APIError{
			Code:    errReason.Error(),
			Message: "internal server error. contact our support with the reason code for assistance",
		}
	}
}
