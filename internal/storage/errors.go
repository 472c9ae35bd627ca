package storage

import "fmt"

type ErrorKind int

const (
	TransportFailure ErrorKind = iota // non-2xx status from the upload endpoint
	InvalidResponse                   // 2xx but no content hash in the body
	Timeout                           // transfer stalled past the client deadline
	NetworkError                      // connection-level failure
)

// UploadError is the failure surface of a single upload attempt.
type UploadError struct {
	Kind   ErrorKind
	Status int // HTTP status, set for TransportFailure only
	cause  error
}

func (e *UploadError) Error() string {
	switch e.Kind {
	case TransportFailure:
		return fmt.Sprintf("upload failed: HTTP %d", e.Status)
	case InvalidResponse:
		if e.cause != nil {
			return fmt.Sprintf("upload failed: invalid response: %v", e.cause)
		}
		return "upload failed: invalid response"
	case Timeout:
		return "upload failed: transfer timed out"
	default:
		if e.cause != nil {
			return fmt.Sprintf("upload failed: network error: %v", e.cause)
		}
		return "upload failed: network error"
	}
}

func (e *UploadError) Unwrap() error { return e.cause }

func transportError(status int) *UploadError {
	return &UploadError{Kind: TransportFailure, Status: status}
}

func invalidResponseError(cause error) *UploadError {
	return &UploadError{Kind: InvalidResponse, cause: cause}
}

func timeoutError() *UploadError {
	return &UploadError{Kind: Timeout}
}

func networkError(cause error) *UploadError {
	return &UploadError{Kind: NetworkError, cause: cause}
}
