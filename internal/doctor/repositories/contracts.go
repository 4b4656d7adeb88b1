package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/strmed/docfinder-backend/internal/doctor/models"
)

var ErrNotFound = errors.New("record not found")

// ReviewSubmission carries the profile fields a doctor hands in together
// with the submit-for-review action.
type ReviewSubmission struct {
	LicenseNo    string
	Hospital     string
	Degree       string
	Specialties  string
	Latitude     float64
	Longitude    float64
	AddressLabel string
}

// DoctorRepository is the persistence contract for doctor rows. State
// transitions and availability writes are conditional updates: they report
// false when the guard column no longer matches, so callers can detect
// concurrent mutation instead of silently overwriting it.
type DoctorRepository interface {
	GetByID(ctx context.Context, id int64) (*models.DoctorRecord, error)
	GetByUserID(ctx context.Context, userID int64) (*models.DoctorRecord, error)
	// EnsureForUser returns the doctor row owned by userID, creating an
	// unverified one on first contact.
	EnsureForUser(ctx context.Context, userID int64) (*models.DoctorRecord, error)
	ListEligible(ctx context.Context) ([]models.DoctorRecord, error)
	ListByStatus(ctx context.Context, status models.VerificationStatus) ([]models.DoctorRecord, error)

	// SetStatus moves the verification state from -> to.
	SetStatus(ctx context.Context, doctorID int64, from, to models.VerificationStatus, at time.Time) (bool, error)
	// SaveSubmission stores the submitted profile fields and moves the
	// state from -> under_review in a single conditional write.
	SaveSubmission(ctx context.Context, doctorID int64, sub ReviewSubmission, from models.VerificationStatus, at time.Time) (bool, error)
	// ApplyReview resolves an under_review doctor to approved or rejected,
	// stamping the reviewer and time.
	ApplyReview(ctx context.Context, doctorID int64, approved bool, reviewerID int64, reason string, at time.Time) (bool, error)

	// SetAvailability writes the availability fields, guarded by the
	// version token read beforehand.
	SetAvailability(ctx context.Context, doctorID, expectedVersion int64, online bool, statusMessage string, availableUntil *time.Time, at time.Time) (bool, error)
	// ExpireOverdue flips doctors offline whose available_until has passed
	// and returns the resulting snapshot of each doctor it changed.
	ExpireOverdue(ctx context.Context, now time.Time) ([]models.Availability, error)
}

// DocumentRepository stores verification document metadata.
type DocumentRepository interface {
	Insert(ctx context.Context, doc *models.VerificationDocument) error
	ListByDoctor(ctx context.Context, doctorID int64) ([]models.VerificationDocument, error)
}

// DispatchAuditRepository records contact dispatches for audit.
type DispatchAuditRepository interface {
	Insert(ctx context.Context, audit *models.DispatchAudit) error
}

// UserRepository is what the login flow needs from the users table.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}
