package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/strmed/docfinder-backend/internal/doctor/models"
)

var (
	ErrDoctorNotFound = errors.New("doctor not found")
	ErrInvalidKind    = errors.New("invalid document kind")
	ErrNotReviewer    = errors.New("caller is not a reviewer")
	ErrReasonRequired = errors.New("rejection reason is required")
)

// MissingDocumentsError lists exactly the required kinds a doctor has not
// uploaded yet.
type MissingDocumentsError struct {
	Missing []models.DocumentKind
}

func (e *MissingDocumentsError) Error() string {
	kinds := make([]string, len(e.Missing))
	for i, k := range e.Missing {
		kinds[i] = string(k)
	}
	return "missing required documents: " + strings.Join(kinds, ", ")
}

// ValidationFailedError names the external check that blocked a submission.
type ValidationFailedError struct {
	Check  string
	Reason string
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("validation %s failed: %s", e.Check, e.Reason)
}

// InvalidTransitionError is returned when the requested action is not legal
// from the doctor's current verification state.
type InvalidTransitionError struct {
	From   models.VerificationStatus
	Action string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s from state %s", e.Action, e.From)
}
