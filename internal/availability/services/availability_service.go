package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	doctormodels "github.com/strmed/docfinder-backend/internal/doctor/models"
	"github.com/strmed/docfinder-backend/internal/doctor/repositories"
)

var (
	ErrDoctorNotFound = errors.New("doctor not found")
	// ErrUpdateConflict is returned when the version-guarded write keeps
	// losing to concurrent updates.
	ErrUpdateConflict = errors.New("availability update conflict")
)

const setAvailabilityAttempts = 3

// DoctorAvailabilityRepo is the slice of the doctor repository this service
// needs.
type DoctorAvailabilityRepo interface {
	GetByID(ctx context.Context, id int64) (*doctormodels.DoctorRecord, error)
	GetByUserID(ctx context.Context, userID int64) (*doctormodels.DoctorRecord, error)
	SetAvailability(ctx context.Context, doctorID, expectedVersion int64, online bool, statusMessage string, availableUntil *time.Time, at time.Time) (bool, error)
	ExpireOverdue(ctx context.Context, now time.Time) ([]doctormodels.Availability, error)
}

// AvailabilityService owns the per-doctor online/offline stream. Writes are
// last-writer-wins, applied as version-guarded conditional updates so a
// concurrent write is retried against fresh state instead of being lost.
// Every applied change, including expiry-driven offline flips, is handed to
// Notify so connected clients see it without polling.
type AvailabilityService struct {
	Doctors DoctorAvailabilityRepo
	Logger  *logrus.Logger
	// Notify, when set, receives the snapshot of every applied change.
	Notify func(doctormodels.Availability)
}

func NewAvailabilityService(doctors DoctorAvailabilityRepo, logger *logrus.Logger) *AvailabilityService {
	return &AvailabilityService{Doctors: doctors, Logger: logger}
}

// SetAvailability updates the availability of the doctor owned by userID and
// returns the resulting snapshot.
func (s *AvailabilityService) SetAvailability(ctx context.Context, userID int64, online bool, statusMessage string, availableUntil *time.Time) (*doctormodels.Availability, error) {
	for attempt := 0; attempt < setAvailabilityAttempts; attempt++ {
		doctor, err := s.Doctors.GetByUserID(ctx, userID)
		if err != nil {
			if err == repositories.ErrNotFound {
				return nil, ErrDoctorNotFound
			}
			return nil, err
		}

		now := time.Now()
		ok, err := s.Doctors.SetAvailability(ctx, doctor.ID, doctor.Version, online, statusMessage, availableUntil, now)
		if err != nil {
			return nil, err
		}
		if !ok {
			// Lost the race; re-read and try again.
			continue
		}

		s.Logger.WithFields(logrus.Fields{
			"Function": "SetAvailability",
			"DoctorId": doctor.ID,
			"Online":   online,
		}).Info("Availability updated")

		snapshot := doctormodels.Availability{
			DoctorID:       doctor.ID,
			Online:         online,
			StatusMessage:  statusMessage,
			AvailableUntil: availableUntil,
			LastUpdated:    now,
		}
		if s.Notify != nil {
			s.Notify(snapshot)
		}
		return &snapshot, nil
	}
	return nil, ErrUpdateConflict
}

// GetAvailability returns the current snapshot for a doctor.
func (s *AvailabilityService) GetAvailability(ctx context.Context, doctorID int64) (*doctormodels.Availability, error) {
	doctor, err := s.Doctors.GetByID(ctx, doctorID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}
	return &doctormodels.Availability{
		DoctorID:       doctor.ID,
		Online:         doctor.Online,
		StatusMessage:  doctor.StatusMessage,
		AvailableUntil: doctor.AvailableUntil,
		LastUpdated:    doctor.UpdatedAt,
	}, nil
}

// ExpireOverdue flips doctors offline whose available-until has passed and
// pushes each offline flip to Notify.
func (s *AvailabilityService) ExpireOverdue(ctx context.Context) (int64, error) {
	expired, err := s.Doctors.ExpireOverdue(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	for _, snapshot := range expired {
		if s.Notify != nil {
			s.Notify(snapshot)
		}
	}
	if len(expired) > 0 {
		s.Logger.WithFields(logrus.Fields{
			"Function": "ExpireOverdue",
			"Expired":  len(expired),
		}).Info("Expired overdue availabilities")
	}
	return int64(len(expired)), nil
}
