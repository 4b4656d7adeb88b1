package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	doctormodels "github.com/strmed/docfinder-backend/internal/doctor/models"
	"github.com/strmed/docfinder-backend/internal/doctor/repositories"
	"github.com/strmed/docfinder-backend/internal/dispatch/models"
	"github.com/strmed/docfinder-backend/pkg/queue"
)

var (
	ErrDoctorNotFound = errors.New("doctor not found")
	// ErrDoctorUnavailable covers the search-to-dispatch race: the doctor
	// was returned by a match but went offline (or lost approval) before
	// the contact attempt. Recoverable; the caller re-searches.
	ErrDoctorUnavailable = errors.New("doctor is not available")
	ErrInvalidMethod     = errors.New("unsupported contact method")
	ErrNoContactOnFile   = errors.New("doctor has no contact descriptor for this method")
)

// DoctorGetter is the single read the dispatcher needs.
type DoctorGetter interface {
	GetByID(ctx context.Context, id int64) (*doctormodels.DoctorRecord, error)
}

// contactMethod produces the descriptor for one way of reaching a doctor.
type contactMethod interface {
	Contact(ctx context.Context, requesterID int64, doctor *doctormodels.DoctorRecord) (string, error)
}

type callMethod struct{}

func (callMethod) Contact(_ context.Context, _ int64, doctor *doctormodels.DoctorRecord) (string, error) {
	if doctor.Phone == "" {
		return "", ErrNoContactOnFile
	}
	return doctor.Phone, nil
}

type messageMethod struct {
	producer queue.Producer
}

func (m messageMethod) Contact(ctx context.Context, requesterID int64, doctor *doctormodels.DoctorRecord) (string, error) {
	if doctor.Email == "" {
		return "", ErrNoContactOnFile
	}
	err := m.producer.PublishUrgentMessage(ctx, queue.UrgentMessage{
		RequesterID: requesterID,
		DoctorID:    doctor.ID,
		Channel:     doctor.Email,
		SentAt:      time.Now(),
	})
	if err != nil {
		return "", err
	}
	return doctor.Email, nil
}

type videoCallMethod struct{}

func (videoCallMethod) Contact(context.Context, int64, *doctormodels.DoctorRecord) (string, error) {
	// Opaque session-establishment token; the video collaborator redeems
	// it.
	return uuid.NewString(), nil
}

// DispatchService validates a chosen doctor at dispatch time and produces a
// contact outcome. Nothing is retried here; failures surface to the caller.
type DispatchService struct {
	Doctors DoctorGetter
	Audits  repositories.DispatchAuditRepository
	Logger  *logrus.Logger
	methods map[models.Method]contactMethod
}

func NewDispatchService(doctors DoctorGetter, audits repositories.DispatchAuditRepository, producer queue.Producer, logger *logrus.Logger) *DispatchService {
	return &DispatchService{
		Doctors: doctors,
		Audits:  audits,
		Logger:  logger,
		methods: map[models.Method]contactMethod{
			models.MethodCall:      callMethod{},
			models.MethodMessage:   messageMethod{producer: producer},
			models.MethodVideoCall: videoCallMethod{},
		},
	}
}

// Dispatch re-checks eligibility (never trusting a stale match result) and
// hands back the contact descriptor for the chosen method. Every attempt
// that reaches a contact method leaves an audit row.
func (s *DispatchService) Dispatch(ctx context.Context, requesterID, doctorID int64, method models.Method) (*models.Outcome, error) {
	impl, ok := s.methods[method]
	if !ok {
		return nil, ErrInvalidMethod
	}

	doctor, err := s.Doctors.GetByID(ctx, doctorID)
	if err != nil {
		if err == repositories.ErrNotFound {
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}

	// State may have changed since the match was computed.
	if !doctor.Eligible() {
		return nil, ErrDoctorUnavailable
	}

	now := time.Now()
	descriptor, contactErr := impl.Contact(ctx, requesterID, doctor)

	audit := &doctormodels.DispatchAudit{
		RequesterID: requesterID,
		DoctorID:    doctorID,
		Method:      string(method),
		Success:     contactErr == nil,
		CreatedAt:   now,
	}
	if err := s.Audits.Insert(ctx, audit); err != nil {
		s.Logger.WithError(err).Error("Failed to record dispatch audit")
		return nil, err
	}

	if contactErr != nil {
		return nil, contactErr
	}

	s.Logger.WithFields(logrus.Fields{
		"Function":    "Dispatch",
		"RequesterId": requesterID,
		"DoctorId":    doctorID,
		"Method":      method,
	}).Info("Contact dispatched")

	return &models.Outcome{
		Success:    true,
		Method:     method,
		DoctorID:   doctorID,
		Descriptor: descriptor,
		Timestamp:  now,
	}, nil
}
