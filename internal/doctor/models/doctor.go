package models

import (
	"strings"
	"time"
)

// VerificationStatus is the explicit state of a doctor inside the
// verification pipeline. It is persisted directly; nothing is inferred from
// other fields.
type VerificationStatus string

const (
	StatusUnverified          VerificationStatus = "unverified"
	StatusDocumentsIncomplete VerificationStatus = "documents_incomplete"
	StatusUnderReview         VerificationStatus = "under_review"
	StatusApproved            VerificationStatus = "approved"
	StatusRejected            VerificationStatus = "rejected"
)

// DocumentKind identifies what a verification upload is supposed to prove.
type DocumentKind string

const (
	KindMedicalLicense      DocumentKind = "medical_license"
	KindDegreeCertificate   DocumentKind = "degree_certificate"
	KindHospitalAffiliation DocumentKind = "hospital_affiliation"
	KindProfessionalPhoto   DocumentKind = "professional_photo"
)

// RequiredDocumentKinds are the kinds a doctor must upload before the record
// can move to under_review. The professional photo is optional.
var RequiredDocumentKinds = []DocumentKind{
	KindMedicalLicense,
	KindDegreeCertificate,
	KindHospitalAffiliation,
}

// ValidDocumentKind reports whether kind is one of the accepted upload kinds.
func ValidDocumentKind(kind DocumentKind) bool {
	switch kind {
	case KindMedicalLicense, KindDegreeCertificate, KindHospitalAffiliation, KindProfessionalPhoto:
		return true
	}
	return false
}

// DoctorRecord is the persisted doctor row. Verification fields and
// availability fields are independent write streams; Version guards the
// availability stream against lost updates.
type DoctorRecord struct {
	ID              int64              `json:"id"`
	UserID          int64              `json:"user_id"`
	FullName        string             `json:"full_name"`
	Phone           string             `json:"phone,omitempty"`
	Email           string             `json:"email,omitempty"`
	LicenseNo       string             `json:"license_no,omitempty"`
	Hospital        string             `json:"hospital,omitempty"`
	Degree          string             `json:"degree,omitempty"`
	Specialties     string             `json:"specialties,omitempty"` // comma separated
	Bio             string             `json:"bio,omitempty"`
	Latitude        float64            `json:"latitude"`
	Longitude       float64            `json:"longitude"`
	AddressLabel    string             `json:"address_label,omitempty"`
	Status          VerificationStatus `json:"verification_status"`
	Online          bool               `json:"online"`
	StatusMessage   string             `json:"status_message,omitempty"`
	AvailableUntil  *time.Time         `json:"available_until,omitempty"`
	Version         int64              `json:"-"`
	AccountActive   bool               `json:"-"`
	ReviewedBy      *int64             `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time         `json:"reviewed_at,omitempty"`
	RejectionReason string             `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// SpecialtyList splits the comma-set specialties column into trimmed names.
func (d *DoctorRecord) SpecialtyList() []string {
	if d.Specialties == "" {
		return nil
	}
	parts := strings.Split(d.Specialties, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Eligible reports whether the doctor may appear in any match result:
// approved, online and backed by an active account.
func (d *DoctorRecord) Eligible() bool {
	return d.Status == StatusApproved && d.Online && d.AccountActive
}

// VerificationDocument is one uploaded artifact tied to a doctor.
type VerificationDocument struct {
	ID         int64        `json:"id"`
	DoctorID   int64        `json:"doctor_id"`
	Kind       DocumentKind `json:"kind"`
	StorageRef string       `json:"storage_ref"`
	UploadedAt time.Time    `json:"uploaded_at"`
	Reviewed   bool         `json:"reviewed"`
}

// Availability is the snapshot returned to patients.
type Availability struct {
	DoctorID       int64      `json:"doctor_id"`
	Online         bool       `json:"online"`
	StatusMessage  string     `json:"status_message,omitempty"`
	AvailableUntil *time.Time `json:"available_until,omitempty"`
	LastUpdated    time.Time  `json:"last_updated"`
}

// User is the account row the Identity Provider authenticates against.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

// DispatchAudit is the persisted trace of a contact dispatch.
type DispatchAudit struct {
	ID          int64     `json:"id"`
	RequesterID int64     `json:"requester_id"`
	DoctorID    int64     `json:"doctor_id"`
	Method      string    `json:"method"`
	Success     bool      `json:"success"`
	CreatedAt   time.Time `json:"created_at"`
}
