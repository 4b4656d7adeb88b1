package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/strmed/docfinder-backend/internal/doctor/models"
	"github.com/strmed/docfinder-backend/internal/doctor/repositories"
	"github.com/strmed/docfinder-backend/pkg/docstore"
)

// Compile-time checks that the fakes satisfy the contracts.
var (
	_ repositories.DoctorRepository   = (*fakeDoctorRepo)(nil)
	_ repositories.DocumentRepository = (*fakeDocumentRepo)(nil)
	_ docstore.Store                  = (*fakeDocStore)(nil)
)

// fakeDoctorRepo is an in-memory DoctorRepository that honours the same
// conditional-update semantics as the SQL implementation.
type fakeDoctorRepo struct {
	mu      sync.Mutex
	nextID  int64
	doctors map[int64]*models.DoctorRecord
}

func newFakeDoctorRepo() *fakeDoctorRepo {
	return &fakeDoctorRepo{doctors: make(map[int64]*models.DoctorRecord)}
}

func (f *fakeDoctorRepo) add(d models.DoctorRecord) *models.DoctorRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	d.ID = f.nextID
	if d.UserID == 0 {
		d.UserID = d.ID + 100
	}
	f.doctors[d.ID] = &d
	return &d
}

func (f *fakeDoctorRepo) GetByID(_ context.Context, id int64) (*models.DoctorRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.doctors[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDoctorRepo) GetByUserID(_ context.Context, userID int64) (*models.DoctorRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.doctors {
		if d.UserID == userID {
			cp := *d
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeDoctorRepo) EnsureForUser(ctx context.Context, userID int64) (*models.DoctorRecord, error) {
	if d, err := f.GetByUserID(ctx, userID); err == nil {
		return d, nil
	}
	d := f.add(models.DoctorRecord{
		UserID:        userID,
		Status:        models.StatusUnverified,
		AccountActive: true,
	})
	return d, nil
}

func (f *fakeDoctorRepo) ListEligible(_ context.Context) ([]models.DoctorRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.DoctorRecord
	for id := int64(1); id <= f.nextID; id++ {
		if d, ok := f.doctors[id]; ok && d.Eligible() {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeDoctorRepo) ListByStatus(_ context.Context, status models.VerificationStatus) ([]models.DoctorRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.DoctorRecord
	for id := int64(1); id <= f.nextID; id++ {
		if d, ok := f.doctors[id]; ok && d.Status == status {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeDoctorRepo) SetStatus(_ context.Context, doctorID int64, from, to models.VerificationStatus, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.doctors[doctorID]
	if !ok || d.Status != from {
		return false, nil
	}
	d.Status = to
	d.UpdatedAt = at
	return true, nil
}

func (f *fakeDoctorRepo) SaveSubmission(_ context.Context, doctorID int64, sub repositories.ReviewSubmission, from models.VerificationStatus, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.doctors[doctorID]
	if !ok || d.Status != from {
		return false, nil
	}
	d.LicenseNo = sub.LicenseNo
	d.Hospital = sub.Hospital
	d.Degree = sub.Degree
	d.Specialties = sub.Specialties
	d.Latitude = sub.Latitude
	d.Longitude = sub.Longitude
	d.AddressLabel = sub.AddressLabel
	d.Status = models.StatusUnderReview
	d.RejectionReason = ""
	d.UpdatedAt = at
	return true, nil
}

func (f *fakeDoctorRepo) ApplyReview(_ context.Context, doctorID int64, approved bool, reviewerID int64, reason string, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.doctors[doctorID]
	if !ok || d.Status != models.StatusUnderReview {
		return false, nil
	}
	if approved {
		d.Status = models.StatusApproved
	} else {
		d.Status = models.StatusRejected
	}
	d.ReviewedBy = &reviewerID
	d.ReviewedAt = &at
	d.RejectionReason = reason
	d.UpdatedAt = at
	return true, nil
}

func (f *fakeDoctorRepo) SetAvailability(_ context.Context, doctorID, expectedVersion int64, online bool, statusMessage string, availableUntil *time.Time, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.doctors[doctorID]
	if !ok || d.Version != expectedVersion {
		return false, nil
	}
	d.Online = online
	d.StatusMessage = statusMessage
	d.AvailableUntil = availableUntil
	d.Version++
	d.UpdatedAt = at
	return true, nil
}

func (f *fakeDoctorRepo) ExpireOverdue(_ context.Context, now time.Time) ([]models.Availability, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var expired []models.Availability
	for id := int64(1); id <= f.nextID; id++ {
		d, ok := f.doctors[id]
		if !ok {
			continue
		}
		if d.Online && d.AvailableUntil != nil && d.AvailableUntil.Before(now) {
			d.Online = false
			d.Version++
			d.UpdatedAt = now
			expired = append(expired, models.Availability{
				DoctorID:    d.ID,
				Online:      false,
				LastUpdated: now,
			})
		}
	}
	return expired, nil
}

type fakeDocumentRepo struct {
	mu     sync.Mutex
	nextID int64
	docs   []models.VerificationDocument
}

func (f *fakeDocumentRepo) Insert(_ context.Context, doc *models.VerificationDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	doc.ID = f.nextID
	f.docs = append(f.docs, *doc)
	return nil
}

func (f *fakeDocumentRepo) ListByDoctor(_ context.Context, doctorID int64) ([]models.VerificationDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.VerificationDocument
	for _, d := range f.docs {
		if d.DoctorID == doctorID {
			out = append(out, d)
		}
	}
	return out, nil
}

type fakeDocStore struct {
	mu    sync.Mutex
	saves int
	Err   error
}

func (f *fakeDocStore) Save(data []byte, meta docstore.Metadata) (string, error) {
	if f.Err != nil {
		return "", f.Err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	return fmt.Sprintf("ref-%d", f.saves), nil
}
