package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/strmed/docfinder-backend/internal/doctor/repositories"
)

// ExternalValidator is one pluggable pre-review check. Failing any one of
// them blocks the submit-for-review transition; the doctor stays where they
// are and must resubmit.
type ExternalValidator interface {
	Name() string
	Validate(ctx context.Context, sub repositories.ReviewSubmission) error
}

// DefaultValidators returns the three checks run on every submission:
// license format, affiliation name and the background-check placeholder.
func DefaultValidators() []ExternalValidator {
	return []ExternalValidator{
		licenseFormatValidator{},
		affiliationValidator{},
		backgroundCheckValidator{},
	}
}

var licensePattern = regexp.MustCompile(`^[A-Z]{2,4}-?\d{4,10}$`)

type licenseFormatValidator struct{}

func (licenseFormatValidator) Name() string { return "license_format" }

func (licenseFormatValidator) Validate(_ context.Context, sub repositories.ReviewSubmission) error {
	license := strings.TrimSpace(sub.LicenseNo)
	if license == "" {
		return fmt.Errorf("license number is required")
	}
	if !licensePattern.MatchString(license) {
		return fmt.Errorf("license number %q does not match the expected format", license)
	}
	return nil
}

type affiliationValidator struct{}

func (affiliationValidator) Name() string { return "affiliation_name" }

func (affiliationValidator) Validate(_ context.Context, sub repositories.ReviewSubmission) error {
	name := strings.TrimSpace(sub.Hospital)
	if len(name) < 3 {
		return fmt.Errorf("hospital affiliation name is too short")
	}
	if len(name) > 120 {
		return fmt.Errorf("hospital affiliation name is too long")
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !strings.ContainsRune(" .,'&-", r) {
			return fmt.Errorf("hospital affiliation name contains invalid character %q", r)
		}
	}
	return nil
}

// backgroundCheckValidator stands in for a future medical-board lookup. It
// always passes.
type backgroundCheckValidator struct{}

func (backgroundCheckValidator) Name() string { return "background_check" }

func (backgroundCheckValidator) Validate(context.Context, repositories.ReviewSubmission) error {
	return nil
}
