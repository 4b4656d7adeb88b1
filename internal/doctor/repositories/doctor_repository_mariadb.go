package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/strmed/docfinder-backend/internal/doctor/models"
)

const doctorColumns = `d.id, d.user_id, d.full_name, d.phone, d.email, d.license_no,
	d.hospital, d.degree, d.specialties, d.bio, d.latitude, d.longitude,
	d.address_label, d.verification_status, d.online, d.status_message,
	d.available_until, d.version, u.active, d.reviewed_by, d.reviewed_at,
	d.rejection_reason, d.created_at, d.updated_at`

type SQLDoctorRepository struct {
	DB *sql.DB
}

func NewSQLDoctorRepository(db *sql.DB) *SQLDoctorRepository {
	return &SQLDoctorRepository{DB: db}
}

var _ DoctorRepository = (*SQLDoctorRepository)(nil)

func scanDoctor(row interface{ Scan(...interface{}) error }) (*models.DoctorRecord, error) {
	var d models.DoctorRecord
	var phone, email, licenseNo, hospital, degree, specialties sql.NullString
	var bio, addressLabel, statusMessage, rejectionReason sql.NullString
	var availableUntil, reviewedAt sql.NullTime
	var reviewedBy sql.NullInt64

	err := row.Scan(
		&d.ID, &d.UserID, &d.FullName, &phone, &email, &licenseNo,
		&hospital, &degree, &specialties, &bio, &d.Latitude, &d.Longitude,
		&addressLabel, &d.Status, &d.Online, &statusMessage,
		&availableUntil, &d.Version, &d.AccountActive, &reviewedBy, &reviewedAt,
		&rejectionReason, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	d.Phone = phone.String
	d.Email = email.String
	d.LicenseNo = licenseNo.String
	d.Hospital = hospital.String
	d.Degree = degree.String
	d.Specialties = specialties.String
	d.Bio = bio.String
	d.AddressLabel = addressLabel.String
	d.StatusMessage = statusMessage.String
	d.RejectionReason = rejectionReason.String
	if availableUntil.Valid {
		t := availableUntil.Time
		d.AvailableUntil = &t
	}
	if reviewedBy.Valid {
		v := reviewedBy.Int64
		d.ReviewedBy = &v
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		d.ReviewedAt = &t
	}
	return &d, nil
}

func (r *SQLDoctorRepository) GetByID(ctx context.Context, id int64) (*models.DoctorRecord, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+doctorColumns+`
		FROM doctors d
		JOIN users u ON u.id = d.user_id
		WHERE d.id = ?`, id)
	d, err := scanDoctor(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return d, err
}

func (r *SQLDoctorRepository) GetByUserID(ctx context.Context, userID int64) (*models.DoctorRecord, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+doctorColumns+`
		FROM doctors d
		JOIN users u ON u.id = d.user_id
		WHERE d.user_id = ?`, userID)
	d, err := scanDoctor(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return d, err
}

func (r *SQLDoctorRepository) EnsureForUser(ctx context.Context, userID int64) (*models.DoctorRecord, error) {
	d, err := r.GetByUserID(ctx, userID)
	if err == nil {
		return d, nil
	}
	if err != ErrNotFound {
		return nil, err
	}

	var fullName string
	err = r.DB.QueryRowContext(ctx,
		`SELECT username FROM users WHERE id = ? AND role = 'doctor'`, userID,
	).Scan(&fullName)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	now := time.Now()
	// Coordinates stay at the origin until the doctor submits a profile.
	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO doctors (user_id, full_name, verification_status, latitude, longitude, online, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 0, 0, ?, ?)`,
		userID, fullName, models.StatusUnverified, 0.0, 0.0, now, now)
	if err != nil {
		return nil, err
	}
	return r.GetByUserID(ctx, userID)
}

func (r *SQLDoctorRepository) ListEligible(ctx context.Context) ([]models.DoctorRecord, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+doctorColumns+`
		FROM doctors d
		JOIN users u ON u.id = d.user_id
		WHERE d.verification_status = ? AND d.online = 1 AND u.active = 1
		ORDER BY d.id`, models.StatusApproved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.DoctorRecord
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func (r *SQLDoctorRepository) ListByStatus(ctx context.Context, status models.VerificationStatus) ([]models.DoctorRecord, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+doctorColumns+`
		FROM doctors d
		JOIN users u ON u.id = d.user_id
		WHERE d.verification_status = ?
		ORDER BY d.updated_at`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.DoctorRecord
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func (r *SQLDoctorRepository) SetStatus(ctx context.Context, doctorID int64, from, to models.VerificationStatus, at time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE doctors
		SET verification_status = ?, updated_at = ?
		WHERE id = ? AND verification_status = ?`,
		to, at, doctorID, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *SQLDoctorRepository) SaveSubmission(ctx context.Context, doctorID int64, sub ReviewSubmission, from models.VerificationStatus, at time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE doctors
		SET license_no = ?, hospital = ?, degree = ?, specialties = ?,
		    latitude = ?, longitude = ?, address_label = ?,
		    verification_status = ?, rejection_reason = '', updated_at = ?
		WHERE id = ? AND verification_status = ?`,
		sub.LicenseNo, sub.Hospital, sub.Degree, sub.Specialties,
		sub.Latitude, sub.Longitude, sub.AddressLabel,
		models.StatusUnderReview, at, doctorID, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *SQLDoctorRepository) ApplyReview(ctx context.Context, doctorID int64, approved bool, reviewerID int64, reason string, at time.Time) (bool, error) {
	to := models.StatusApproved
	if !approved {
		to = models.StatusRejected
	}
	res, err := r.DB.ExecContext(ctx, `
		UPDATE doctors
		SET verification_status = ?, reviewed_by = ?, reviewed_at = ?,
		    rejection_reason = ?, updated_at = ?
		WHERE id = ? AND verification_status = ?`,
		to, reviewerID, at, reason, at, doctorID, models.StatusUnderReview)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *SQLDoctorRepository) SetAvailability(ctx context.Context, doctorID, expectedVersion int64, online bool, statusMessage string, availableUntil *time.Time, at time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE doctors
		SET online = ?, status_message = ?, available_until = ?,
		    version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`,
		online, statusMessage, availableUntil, at, doctorID, expectedVersion)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *SQLDoctorRepository) ExpireOverdue(ctx context.Context, now time.Time) ([]models.Availability, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, status_message, available_until
		FROM doctors
		WHERE online = 1 AND available_until IS NOT NULL AND available_until < ?`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expired []models.Availability
	for rows.Next() {
		var snap models.Availability
		var statusMessage sql.NullString
		var availableUntil sql.NullTime
		if err := rows.Scan(&snap.DoctorID, &statusMessage, &availableUntil); err != nil {
			return nil, err
		}
		snap.StatusMessage = statusMessage.String
		if availableUntil.Valid {
			t := availableUntil.Time
			snap.AvailableUntil = &t
		}
		snap.Online = false
		snap.LastUpdated = now
		expired = append(expired, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(expired) == 0 {
		return nil, nil
	}

	_, err = r.DB.ExecContext(ctx, `
		UPDATE doctors
		SET online = 0, version = version + 1, updated_at = ?
		WHERE online = 1 AND available_until IS NOT NULL AND available_until < ?`,
		now, now)
	if err != nil {
		return nil, err
	}
	return expired, nil
}

type SQLDocumentRepository struct {
	DB *sql.DB
}

func NewSQLDocumentRepository(db *sql.DB) *SQLDocumentRepository {
	return &SQLDocumentRepository{DB: db}
}

var _ DocumentRepository = (*SQLDocumentRepository)(nil)

func (r *SQLDocumentRepository) Insert(ctx context.Context, doc *models.VerificationDocument) error {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO verification_documents (doctor_id, kind, storage_ref, uploaded_at, reviewed)
		VALUES (?, ?, ?, ?, 0)`,
		doc.DoctorID, doc.Kind, doc.StorageRef, doc.UploadedAt)
	if err != nil {
		return err
	}
	doc.ID, err = res.LastInsertId()
	return err
}

func (r *SQLDocumentRepository) ListByDoctor(ctx context.Context, doctorID int64) ([]models.VerificationDocument, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, doctor_id, kind, storage_ref, uploaded_at, reviewed
		FROM verification_documents
		WHERE doctor_id = ?
		ORDER BY uploaded_at`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.VerificationDocument
	for rows.Next() {
		var doc models.VerificationDocument
		if err := rows.Scan(&doc.ID, &doc.DoctorID, &doc.Kind, &doc.StorageRef, &doc.UploadedAt, &doc.Reviewed); err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

type SQLDispatchAuditRepository struct {
	DB *sql.DB
}

func NewSQLDispatchAuditRepository(db *sql.DB) *SQLDispatchAuditRepository {
	return &SQLDispatchAuditRepository{DB: db}
}

var _ DispatchAuditRepository = (*SQLDispatchAuditRepository)(nil)

func (r *SQLDispatchAuditRepository) Insert(ctx context.Context, audit *models.DispatchAudit) error {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO dispatch_audits (requester_id, doctor_id, method, success, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		audit.RequesterID, audit.DoctorID, audit.Method, audit.Success, audit.CreatedAt)
	if err != nil {
		return err
	}
	audit.ID, err = res.LastInsertId()
	return err
}

type SQLUserRepository struct {
	DB *sql.DB
}

func NewSQLUserRepository(db *sql.DB) *SQLUserRepository {
	return &SQLUserRepository{DB: db}
}

var _ UserRepository = (*SQLUserRepository)(nil)

func (r *SQLUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, username, password_hash, role, active, created_at
		FROM users
		WHERE username = ?`, username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.Active, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
