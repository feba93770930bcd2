package services

import "github.com/DmytroLysachenko/safe-vault/internal/sanitize"

const minUsernameLength = 3

// Submission is a raw form submission before any cleanup.
type Submission struct {
	Username string
	Email    string
}

// SubmissionResult carries the sanitized fields when valid, or the reason for
// rejection. The raw payload is never echoed back.
type SubmissionResult struct {
	Valid    bool
	Username string
	Email    string
	Reason   string
}

// SubmissionService validates free-text form fields by running them through
// the sanitizer pipeline before any structural checks. It is stateless and
// safe for concurrent use.
type SubmissionService struct{}

func NewSubmissionService() *SubmissionService {
	return &SubmissionService{}
}

// Validate sanitizes the submission and checks the surviving values.
func (s *SubmissionService) Validate(sub Submission) SubmissionResult {

	username := sanitize.Sanitize(sub.Username)
	if len(username) < minUsernameLength {
		return SubmissionResult{
			Reason: "Username must be at least 3 characters and cannot include control characters or SQL keywords.",
		}
	}

	email, ok := sanitize.SanitizeEmail(sub.Email)
	if !ok {
		return SubmissionResult{
			Reason: "Provide a valid email address without scripts, whitespace, or SQL tokens.",
		}
	}

	return SubmissionResult{Valid: true, Username: username, Email: email}
}
