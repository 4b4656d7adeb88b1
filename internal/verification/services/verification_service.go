package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/strmed/docfinder-backend/internal/doctor/models"
	"github.com/strmed/docfinder-backend/internal/doctor/repositories"
	"github.com/strmed/docfinder-backend/internal/geo"
	"github.com/strmed/docfinder-backend/pkg/docstore"
)

// SubmissionRequest is the payload of the submit-for-review action.
type SubmissionRequest struct {
	LicenseNo    string  `json:"license_no"`
	Hospital     string  `json:"hospital"`
	Degree       string  `json:"degree"`
	Specialties  string  `json:"specialties"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	AddressLabel string  `json:"address_label"`
}

// StatusReport is what a doctor sees when asking where their verification
// stands.
type StatusReport struct {
	State         models.VerificationStatus     `json:"state"`
	SubmittedDocs []models.VerificationDocument `json:"submitted_docs"`
	MissingDocs   []models.DocumentKind         `json:"missing_docs"`
	ReviewedBy    *int64                        `json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time                    `json:"reviewed_at,omitempty"`
	Reason        string                        `json:"rejection_reason,omitempty"`
}

// VerificationService drives the doctor verification state machine:
// unverified -> documents_incomplete -> under_review -> approved/rejected,
// with rejected allowed back to under_review by resubmitting.
type VerificationService struct {
	Doctors    repositories.DoctorRepository
	Documents  repositories.DocumentRepository
	Store      docstore.Store
	Validators []ExternalValidator
	Logger     *logrus.Logger
}

func NewVerificationService(doctors repositories.DoctorRepository, documents repositories.DocumentRepository, store docstore.Store, validators []ExternalValidator, logger *logrus.Logger) *VerificationService {
	return &VerificationService{
		Doctors:    doctors,
		Documents:  documents,
		Store:      store,
		Validators: validators,
		Logger:     logger,
	}
}

// SubmitDocument stores one verification artifact for the doctor owned by
// userID. The first upload moves an unverified record to
// documents_incomplete.
func (s *VerificationService) SubmitDocument(ctx context.Context, userID int64, kind models.DocumentKind, data []byte) (*models.VerificationDocument, error) {
	if !models.ValidDocumentKind(kind) {
		return nil, ErrInvalidKind
	}

	doctor, err := s.Doctors.EnsureForUser(ctx, userID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}

	ref, err := s.Store.Save(data, docstore.Metadata{DoctorID: doctor.ID, Kind: string(kind)})
	if err != nil {
		return nil, err
	}

	doc := &models.VerificationDocument{
		DoctorID:   doctor.ID,
		Kind:       kind,
		StorageRef: ref,
		UploadedAt: time.Now(),
	}
	if err := s.Documents.Insert(ctx, doc); err != nil {
		return nil, err
	}

	if doctor.Status == models.StatusUnverified {
		if _, err := s.Doctors.SetStatus(ctx, doctor.ID, models.StatusUnverified, models.StatusDocumentsIncomplete, time.Now()); err != nil {
			return nil, err
		}
	}

	s.Logger.WithFields(logrus.Fields{
		"Function": "SubmitDocument",
		"DoctorId": doctor.ID,
		"Kind":     kind,
	}).Info("Verification document stored")

	return doc, nil
}

// missingKinds returns the required kinds not present among docs, in the
// canonical required order.
func missingKinds(docs []models.VerificationDocument) []models.DocumentKind {
	uploaded := make(map[models.DocumentKind]bool, len(docs))
	for _, d := range docs {
		uploaded[d.Kind] = true
	}
	var missing []models.DocumentKind
	for _, k := range models.RequiredDocumentKinds {
		if !uploaded[k] {
			missing = append(missing, k)
		}
	}
	return missing
}

// SubmitForReview attempts the documents_incomplete -> under_review
// transition. It fails with MissingDocumentsError listing the exact unmet
// kinds, or with ValidationFailedError naming the external check that
// blocked it. A rejected doctor resubmits through the same path.
func (s *VerificationService) SubmitForReview(ctx context.Context, userID int64, req SubmissionRequest) error {
	doctor, err := s.Doctors.GetByUserID(ctx, userID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return ErrDoctorNotFound
		}
		return err
	}

	switch doctor.Status {
	case models.StatusUnverified, models.StatusDocumentsIncomplete, models.StatusRejected:
		// legal entry states; an unverified doctor gets the missing-docs
		// answer rather than a transition error
	default:
		return &InvalidTransitionError{From: doctor.Status, Action: "submit for review"}
	}

	docs, err := s.Documents.ListByDoctor(ctx, doctor.ID)
	if err != nil {
		return err
	}
	if missing := missingKinds(docs); len(missing) > 0 {
		return &MissingDocumentsError{Missing: missing}
	}

	if err := geo.ValidateCoordinate(req.Latitude, req.Longitude); err != nil {
		return &ValidationFailedError{Check: "location", Reason: err.Error()}
	}

	sub := repositories.ReviewSubmission{
		LicenseNo:    req.LicenseNo,
		Hospital:     req.Hospital,
		Degree:       req.Degree,
		Specialties:  req.Specialties,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		AddressLabel: req.AddressLabel,
	}
	for _, v := range s.Validators {
		if err := v.Validate(ctx, sub); err != nil {
			s.Logger.WithFields(logrus.Fields{
				"Function": "SubmitForReview",
				"DoctorId": doctor.ID,
				"Check":    v.Name(),
			}).Warn("Submission blocked by validator")
			return &ValidationFailedError{Check: v.Name(), Reason: err.Error()}
		}
	}

	ok, err := s.Doctors.SaveSubmission(ctx, doctor.ID, sub, doctor.Status, time.Now())
	if err != nil {
		return err
	}
	if !ok {
		// State changed under us between read and write.
		return &InvalidTransitionError{From: doctor.Status, Action: "submit for review"}
	}

	s.Logger.WithFields(logrus.Fields{
		"Function": "SubmitForReview",
		"DoctorId": doctor.ID,
	}).Info("Doctor submitted for review")
	return nil
}

// Review resolves an under_review doctor. Only admin callers may review;
// rejections require a reason.
func (s *VerificationService) Review(ctx context.Context, reviewerID int64, reviewerRole string, doctorID int64, approve bool, reason string) error {
	if reviewerRole != "admin" {
		return ErrNotReviewer
	}
	if !approve && reason == "" {
		return ErrReasonRequired
	}

	doctor, err := s.Doctors.GetByID(ctx, doctorID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return ErrDoctorNotFound
		}
		return err
	}
	if doctor.Status != models.StatusUnderReview {
		return &InvalidTransitionError{From: doctor.Status, Action: "review"}
	}

	ok, err := s.Doctors.ApplyReview(ctx, doctorID, approve, reviewerID, reason, time.Now())
	if err != nil {
		return err
	}
	if !ok {
		return &InvalidTransitionError{From: doctor.Status, Action: "review"}
	}

	s.Logger.WithFields(logrus.Fields{
		"Function":   "Review",
		"DoctorId":   doctorID,
		"ReviewerId": reviewerID,
		"Approved":   approve,
	}).Info("Review decision applied")
	return nil
}

// Status reports the doctor's verification state, the documents submitted so
// far and the required kinds still missing.
func (s *VerificationService) Status(ctx context.Context, userID int64) (*StatusReport, error) {
	doctor, err := s.Doctors.GetByUserID(ctx, userID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}

	docs, err := s.Documents.ListByDoctor(ctx, doctor.ID)
	if err != nil {
		return nil, err
	}

	return &StatusReport{
		State:         doctor.Status,
		SubmittedDocs: docs,
		MissingDocs:   missingKinds(docs),
		ReviewedBy:    doctor.ReviewedBy,
		ReviewedAt:    doctor.ReviewedAt,
		Reason:        doctor.RejectionReason,
	}, nil
}

// ListPending returns the doctors waiting for an admin decision.
func (s *VerificationService) ListPending(ctx context.Context) ([]models.DoctorRecord, error) {
	return s.Doctors.ListByStatus(ctx, models.StatusUnderReview)
}
