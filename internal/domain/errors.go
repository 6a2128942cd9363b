package domain

import "errors"

// Resolution errors. Every failure surfaced by the resolver wraps exactly one of these.
var (
	// ErrInvalidURL is returned when the input is not a URL on a recognized host.
	ErrInvalidURL = errors.New("invalid post URL")

	// ErrInvalidPostID is returned when no numeric post id can be extracted.
	ErrInvalidPostID = errors.New("invalid post id")

	// ErrContentPrivate is returned for posts from protected accounts.
	ErrContentPrivate = errors.New("post is private")

	// ErrContentAgeRestricted is returned when the post needs a logged-in session.
	ErrContentAgeRestricted = errors.New("post is age restricted")

	// ErrContentUnavailable is returned when the post was deleted or withheld.
	ErrContentUnavailable = errors.New("post is unavailable")

	// ErrFetchFailed is returned when both upstream APIs are exhausted.
	ErrFetchFailed = errors.New("could not fetch post")

	// ErrFetchEmpty is returned when the upstream answered but had no usable media.
	ErrFetchEmpty = errors.New("post has no downloadable media")

	// ErrNoVideoVariants is returned when a video carries no playable variant.
	ErrNoVideoVariants = errors.New("video has no playable variants")

	// ErrJobNotFound is returned when a job cannot be found.
	ErrJobNotFound = errors.New("job not found")

	// ErrBatchNotFound is returned when a batch cannot be found.
	ErrBatchNotFound = errors.New("batch not found")

	// ErrNoJobs is returned when there are no jobs to process.
	ErrNoJobs = errors.New("no jobs available")
)

// Error codes reported to API and CLI consumers.
const (
	CodeInvalidURL           = "INVALID_URL"
	CodeInvalidPostID        = "INVALID_TWEET_ID"
	CodeContentPrivate       = "CONTENT_PRIVATE"
	CodeContentAgeRestricted = "CONTENT_AGE_RESTRICTED"
	CodeContentUnavailable   = "CONTENT_UNAVAILABLE"
	CodeFetchFailed          = "FETCH_FAIL"
	CodeFetchEmpty           = "FETCH_EMPTY"
	CodeNoVideoVariants      = "NO_VIDEO_VARIANTS"
	CodeInternal             = "INTERNAL"
)

const genericErrorMessage = "Something went wrong while resolving this post."

var errorKinds = []struct {
	err     error
	code    string
	message string
}{
	{ErrInvalidURL, CodeInvalidURL, "This link doesn't look like an X post."},
	{ErrInvalidPostID, CodeInvalidPostID, "Couldn't find a post id in this link."},
	{ErrContentPrivate, CodeContentPrivate, "This post is from a private account."},
	{ErrContentAgeRestricted, CodeContentAgeRestricted, "This post is age restricted and needs a logged-in session."},
	{ErrContentUnavailable, CodeContentUnavailable, "This post is unavailable. It may have been deleted."},
	{ErrFetchFailed, CodeFetchFailed, "Couldn't reach X right now. Try again in a bit."},
	{ErrFetchEmpty, CodeFetchEmpty, "This post doesn't contain any downloadable media."},
	{ErrNoVideoVariants, CodeNoVideoVariants, "This video has no playable versions."},
}

// ErrorCode maps an error to its stable code.
func ErrorCode(err error) string {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.code
		}
	}
	return CodeInternal
}

// ErrorMessage returns the human-readable message for an error.
func ErrorMessage(err error) string {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.message
		}
	}
	return genericErrorMessage
}

// CodeMessage returns the human-readable message for a stored error code.
func CodeMessage(code string) string {
	for _, k := range errorKinds {
		if k.code == code {
			return k.message
		}
	}
	return genericErrorMessage
}

// IsRetryable reports whether a later attempt could succeed.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrFetchFailed)
}

// ResolveError wraps an error with post context.
type ResolveError struct {
	PostID string
	Op     string
	Err    error
}

func (e *ResolveError) Error() string {
	if e.PostID != "" {
		return e.Op + " [" + e.PostID + "]: " + e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}

// NewResolveError creates a new ResolveError.
func NewResolveError(postID, op string, err error) *ResolveError {
	return &ResolveError{
		PostID: postID,
		Op:     op,
		Err:    err,
	}
}
