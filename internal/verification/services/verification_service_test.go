package services

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strmed/docfinder-backend/internal/doctor/models"
)

func newTestService() (*VerificationService, *fakeDoctorRepo, *fakeDocumentRepo) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	doctors := newFakeDoctorRepo()
	documents := &fakeDocumentRepo{}
	svc := NewVerificationService(doctors, documents, &fakeDocStore{}, DefaultValidators(), logger)
	return svc, doctors, documents
}

func validSubmission() SubmissionRequest {
	return SubmissionRequest{
		LicenseNo:    "MD-123456",
		Hospital:     "St. Mary General Hospital",
		Degree:       "MBBS",
		Specialties:  "Cardiology, Internal Medicine",
		Latitude:     -6.2088,
		Longitude:    106.8456,
		AddressLabel: "Jakarta",
	}
}

func uploadAllRequired(t *testing.T, svc *VerificationService, userID int64) {
	t.Helper()
	for _, kind := range models.RequiredDocumentKinds {
		_, err := svc.SubmitDocument(context.Background(), userID, kind, []byte("%PDF-1.4"))
		require.NoError(t, err)
	}
}

func TestSubmitDocumentRejectsInvalidKind(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.SubmitDocument(context.Background(), 1, models.DocumentKind("passport"), []byte("%PDF"))
	assert.ErrorIs(t, err, ErrInvalidKind)
}

func TestSubmitDocumentMovesUnverifiedToIncomplete(t *testing.T) {
	svc, doctors, _ := newTestService()

	doc, err := svc.SubmitDocument(context.Background(), 7, models.KindMedicalLicense, []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "ref-1", doc.StorageRef)

	d, err := doctors.GetByUserID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDocumentsIncomplete, d.Status)
}

func TestSubmitForReviewListsExactMissingKinds(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.SubmitDocument(context.Background(), 7, models.KindMedicalLicense, []byte("%PDF"))
	require.NoError(t, err)

	err = svc.SubmitForReview(context.Background(), 7, validSubmission())
	var missing *MissingDocumentsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []models.DocumentKind{
		models.KindDegreeCertificate,
		models.KindHospitalAffiliation,
	}, missing.Missing)
}

func TestSubmitForReviewBeforeAnyUploadListsAllRequiredKinds(t *testing.T) {
	svc, doctors, _ := newTestService()
	d := doctors.add(models.DoctorRecord{UserID: 7, Status: models.StatusUnverified, AccountActive: true})

	err := svc.SubmitForReview(context.Background(), 7, validSubmission())
	var missing *MissingDocumentsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, models.RequiredDocumentKinds, missing.Missing)

	got, err := doctors.GetByID(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnverified, got.Status)
}

func TestSubmitForReviewBlockedByLicenseValidator(t *testing.T) {
	svc, doctors, _ := newTestService()
	uploadAllRequired(t, svc, 7)

	req := validSubmission()
	req.LicenseNo = "not a license"
	err := svc.SubmitForReview(context.Background(), 7, req)

	var failed *ValidationFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, "license_format", failed.Check)

	// Doctor stays where they were; no transition happened.
	d, err := doctors.GetByUserID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDocumentsIncomplete, d.Status)
}

func TestSubmitForReviewRejectsInvalidLocation(t *testing.T) {
	svc, _, _ := newTestService()
	uploadAllRequired(t, svc, 7)

	req := validSubmission()
	req.Latitude = 95
	err := svc.SubmitForReview(context.Background(), 7, req)

	var failed *ValidationFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, "location", failed.Check)
}

func TestSubmitForReviewSuccess(t *testing.T) {
	svc, doctors, _ := newTestService()
	uploadAllRequired(t, svc, 7)

	require.NoError(t, svc.SubmitForReview(context.Background(), 7, validSubmission()))

	d, err := doctors.GetByUserID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnderReview, d.Status)
	assert.Equal(t, "MD-123456", d.LicenseNo)
	assert.Equal(t, "St. Mary General Hospital", d.Hospital)
}

func TestSubmitForReviewTwiceFails(t *testing.T) {
	svc, _, _ := newTestService()
	uploadAllRequired(t, svc, 7)
	require.NoError(t, svc.SubmitForReview(context.Background(), 7, validSubmission()))

	err := svc.SubmitForReview(context.Background(), 7, validSubmission())
	var invalid *InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, models.StatusUnderReview, invalid.From)
}

func TestReviewRequiresAdminRole(t *testing.T) {
	svc, doctors, _ := newTestService()
	uploadAllRequired(t, svc, 7)
	require.NoError(t, svc.SubmitForReview(context.Background(), 7, validSubmission()))

	d, _ := doctors.GetByUserID(context.Background(), 7)
	err := svc.Review(context.Background(), 99, "doctor", d.ID, true, "")
	assert.ErrorIs(t, err, ErrNotReviewer)

	// State untouched.
	d, _ = doctors.GetByUserID(context.Background(), 7)
	assert.Equal(t, models.StatusUnderReview, d.Status)
}

func TestReviewApproveStampsReviewer(t *testing.T) {
	svc, doctors, _ := newTestService()
	uploadAllRequired(t, svc, 7)
	require.NoError(t, svc.SubmitForReview(context.Background(), 7, validSubmission()))

	d, _ := doctors.GetByUserID(context.Background(), 7)
	require.NoError(t, svc.Review(context.Background(), 42, "admin", d.ID, true, ""))

	d, _ = doctors.GetByUserID(context.Background(), 7)
	assert.Equal(t, models.StatusApproved, d.Status)
	require.NotNil(t, d.ReviewedBy)
	assert.EqualValues(t, 42, *d.ReviewedBy)
	assert.NotNil(t, d.ReviewedAt)
}

func TestReviewRejectRequiresReason(t *testing.T) {
	svc, _, _ := newTestService()
	err := svc.Review(context.Background(), 42, "admin", 1, false, "")
	assert.ErrorIs(t, err, ErrReasonRequired)
}

func TestReviewRejectThenResubmit(t *testing.T) {
	svc, doctors, _ := newTestService()
	uploadAllRequired(t, svc, 7)
	require.NoError(t, svc.SubmitForReview(context.Background(), 7, validSubmission()))

	d, _ := doctors.GetByUserID(context.Background(), 7)
	require.NoError(t, svc.Review(context.Background(), 42, "admin", d.ID, false, "license could not be confirmed"))

	d, _ = doctors.GetByUserID(context.Background(), 7)
	assert.Equal(t, models.StatusRejected, d.Status)
	assert.Equal(t, "license could not be confirmed", d.RejectionReason)

	// Rejected doctors re-enter review by resubmitting.
	require.NoError(t, svc.SubmitForReview(context.Background(), 7, validSubmission()))
	d, _ = doctors.GetByUserID(context.Background(), 7)
	assert.Equal(t, models.StatusUnderReview, d.Status)
	assert.Empty(t, d.RejectionReason)
}

func TestReviewUnknownDoctor(t *testing.T) {
	svc, _, _ := newTestService()
	err := svc.Review(context.Background(), 42, "admin", 12345, true, "")
	assert.ErrorIs(t, err, ErrDoctorNotFound)
}

func TestReviewNotUnderReview(t *testing.T) {
	svc, doctors, _ := newTestService()
	d := doctors.add(models.DoctorRecord{Status: models.StatusApproved, AccountActive: true})

	err := svc.Review(context.Background(), 42, "admin", d.ID, true, "")
	var invalid *InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, models.StatusApproved, invalid.From)
}

func TestStatusReport(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.SubmitDocument(context.Background(), 7, models.KindMedicalLicense, []byte("%PDF"))
	require.NoError(t, err)

	report, err := svc.Status(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDocumentsIncomplete, report.State)
	assert.Len(t, report.SubmittedDocs, 1)
	assert.Equal(t, []models.DocumentKind{
		models.KindDegreeCertificate,
		models.KindHospitalAffiliation,
	}, report.MissingDocs)
}

func TestListPending(t *testing.T) {
	svc, _, _ := newTestService()
	uploadAllRequired(t, svc, 7)
	require.NoError(t, svc.SubmitForReview(context.Background(), 7, validSubmission()))

	pending, err := svc.ListPending(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, models.StatusUnderReview, pending[0].Status)
}
