package errors

import "github.com/pkg/errors"

var (
	ErrConnectionTimeout = errors.New("connection timeout")

	// account errors (§7 Referential conflict / Validation)
	ErrAccountNameExists     = errors.New("account name already exists")
	ErrAccountNotFound       = errors.New("account not found")
	ErrAccountHasMessages    = errors.New("account has messages and cannot be deleted")

	// message/attachment errors
	ErrMessageNotFound    = errors.New("message not found")
	ErrAttachmentNotFound = errors.New("attachment not found")

	// search errors (§4.8 validation)
	ErrSearchQueryEmpty     = errors.New("search query is empty")
	ErrSearchQueryTooLong   = errors.New("search query exceeds maximum length")
	ErrSearchQueryHasNull   = errors.New("search query contains null bytes")
	ErrSearchQueryInvalid   = errors.New("search query is not a valid regular expression")

	// outbound sender errors (§4.7)
	ErrRecipientsMissing = errors.New("recipients missing")
	ErrInvalidEmail      = errors.New("email address is invalid")
	ErrEmptySubject      = errors.New("empty subject")
	ErrEmptyBody         = errors.New("empty email body")
)
