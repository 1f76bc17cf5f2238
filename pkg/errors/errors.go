package errors

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeNotFound        = "NOT_FOUND"
	CodeBadRequest      = "BAD_REQUEST"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeConflict        = "CONFLICT"
	CodeFolderNotEmpty  = "FOLDER_NOT_EMPTY"
	CodeUploadFailed    = "UPLOAD_FAILED"
	CodeFetchFailed     = "FETCH_FAILED"
	CodeURLResolution   = "URL_RESOLUTION_FAILED"
	CodeTooManyRequests = "TOO_MANY_REQUESTS"
	CodeInternal        = "INTERNAL_ERROR"
)

type AppError struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code string, message string, status int, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Status:  http.StatusNotFound,
		Err:     err,
	}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    CodeBadRequest,
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     err,
	}
}

func Unauthorized(message string, err error) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     err,
	}
}

func Forbidden(message string, err error) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
		Status:  http.StatusForbidden,
		Err:     err,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: message,
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
		Status:  http.StatusConflict,
	}
}

// FolderNotEmpty blocks a folder delete while media still references it.
func FolderNotEmpty(folderID string) *AppError {
	return &AppError{
		Code:    CodeFolderNotEmpty,
		Message: "Folder not empty. Move or delete items first.",
		Status:  http.StatusConflict,
		Err:     fmt.Errorf("folder %s still has media", folderID),
	}
}

// UploadFailed covers a missing payload and object store write failures.
// A missing payload is the caller's fault and maps to 400.
func UploadFailed(message string, err error) *AppError {
	status := http.StatusBadGateway
	if err == nil {
		status = http.StatusBadRequest
	}
	return &AppError{
		Code:    CodeUploadFailed,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

func FetchFailed(message string, err error) *AppError {
	return &AppError{
		Code:    CodeFetchFailed,
		Message: message,
		Status:  http.StatusBadGateway,
		Err:     err,
	}
}

func URLResolutionFailed(path string, err error) *AppError {
	return &AppError{
		Code:    CodeURLResolution,
		Message: fmt.Sprintf("Could not resolve a download URL for %s", path),
		Status:  http.StatusBadGateway,
		Err:     err,
	}
}

func TooManyRequests(message string) *AppError {
	return &AppError{
		Code:    CodeTooManyRequests,
		Message: message,
		Status:  http.StatusTooManyRequests,
	}
}

// Is reports whether err, or anything it wraps, is an AppError with code.
func Is(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
