package errs

import (
	"fmt"
	"net/http"
)

// Fixed error keys shared by every document kind. Kind-specific keys
// (like "coursenotfound") are built by the constructors below.
const (
	CodeNotAuthorized   = "notauthorized"
	CodeAlreadyLiked    = "alreadyliked"
	CodeNotLiked        = "notliked"
	CodeCommentNotFound = "commentnotexists"
)

// NewUnauthorizedError creates a 401 Unauthorized HTTPError.
//
// override lets the error handler know the message is safe to show
// as-is to the client.
func NewUnauthorizedError(message string, override bool) *HTTPError {
	return &HTTPError{
		Code:     MakeUpperCaseWithUnderscores(http.StatusText(http.StatusUnauthorized)),
		Message:  message,
		Status:   http.StatusUnauthorized,
		Override: override,
	}
}

// NewTooManyRequestsError creates a 429 HTTPError for rate limited callers.
func NewTooManyRequestsError(message string) *HTTPError {
	return &HTTPError{
		Code:     MakeUpperCaseWithUnderscores(http.StatusText(http.StatusTooManyRequests)),
		Message:  message,
		Status:   http.StatusTooManyRequests,
		Override: true,
	}
}

// NewBadRequestError creates a 400 Bad Request HTTPError.
//
// code defaults to "BAD_REQUEST" when nil; errors carries per-field
// validation failures and action an optional client instruction.
func NewBadRequestError(message string, override bool, code *string, errors []FieldError, action *Action) *HTTPError {
	formattedCode := MakeUpperCaseWithUnderscores(http.StatusText(http.StatusBadRequest))
	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:     formattedCode,
		Message:  message,
		Status:   http.StatusBadRequest,
		Override: override,
		Errors:   errors,
		Action:   action,
	}
}

// NewNotFoundError creates a 404 Not Found HTTPError.
// code defaults to "NOT_FOUND" when nil.
func NewNotFoundError(message string, override bool, code *string) *HTTPError {
	formattedCode := MakeUpperCaseWithUnderscores(http.StatusText(http.StatusNotFound))
	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:     formattedCode,
		Message:  message,
		Status:   http.StatusNotFound,
		Override: override,
	}
}

// NewInternalServerError creates a generic 500 HTTPError. The real cause
// is logged, never sent to the client.
func NewInternalServerError() *HTTPError {
	return &HTTPError{
		Code:     MakeUpperCaseWithUnderscores(http.StatusText(http.StatusInternalServerError)),
		Message:  http.StatusText(http.StatusInternalServerError),
		Status:   http.StatusInternalServerError,
		Override: false,
	}
}

// NewDocumentNotFoundError is returned when no document of the given kind
// has the requested id, or when the store could not be reached.
func NewDocumentNotFoundError(kind string) *HTTPError {
	code := kind + "notfound"
	return NewNotFoundError(fmt.Sprintf("No %s found", kind), true, &code)
}

// NewNoDocumentsFoundError is returned when listing documents fails.
func NewNoDocumentsFoundError(kind string) *HTTPError {
	code := "no" + kind + "found"
	return NewNotFoundError(fmt.Sprintf("No %ss found", kind), true, &code)
}

// NewNotOwnerError is returned when someone other than the owner tries to
// delete a document.
func NewNotOwnerError() *HTTPError {
	return &HTTPError{
		Code:     CodeNotAuthorized,
		Message:  "User not authorized",
		Status:   http.StatusUnauthorized,
		Override: true,
	}
}

// NewAlreadyLikedError is returned when the caller already likes the document.
func NewAlreadyLikedError(kind string) *HTTPError {
	code := CodeAlreadyLiked
	return NewBadRequestError(fmt.Sprintf("User already liked this %s", kind), true, &code, nil, nil)
}

// NewNotLikedError is returned when the caller unlikes a document they do not like.
func NewNotLikedError(kind string) *HTTPError {
	code := CodeNotLiked
	return NewBadRequestError(fmt.Sprintf("You have not yet liked this %s", kind), true, &code, nil, nil)
}

// NewCommentNotFoundError is returned when a comment id is not present on the document.
func NewCommentNotFoundError() *HTTPError {
	code := CodeCommentNotFound
	return NewNotFoundError("Comment does not exist", true, &code)
}
