package models

import (
	"time"

	doctormodels "github.com/strmed/docfinder-backend/internal/doctor/models"
)

// Default search radii in kilometers.
const (
	DefaultMaxDistanceKm   = 10.0
	EmergencyMaxDistanceKm = 20.0
	DefaultPageSize        = 10
	MaxPageSize            = 50
)

// EmergencyCategory is a coarse, fixed set of emergency flavours a patient
// can report.
type EmergencyCategory string

const (
	CategoryCardiac      EmergencyCategory = "cardiac"
	CategoryTrauma       EmergencyCategory = "trauma"
	CategoryRespiratory  EmergencyCategory = "respiratory"
	CategoryNeurological EmergencyCategory = "neurological"
	CategoryPediatric    EmergencyCategory = "pediatric"
	CategoryGeneral      EmergencyCategory = "general"
)

// CategorySpecialties maps each emergency category to the specialties that
// can handle it. Configuration data, not branching: ranking logic never
// mentions a specific category.
var CategorySpecialties = map[EmergencyCategory][]string{
	CategoryCardiac:      {"Cardiology", "Emergency Medicine"},
	CategoryTrauma:       {"Trauma Surgery", "Orthopedics", "Emergency Medicine"},
	CategoryRespiratory:  {"Pulmonology", "Critical Care", "Emergency Medicine"},
	CategoryNeurological: {"Neurology", "Neurosurgery"},
	CategoryPediatric:    {"Pediatrics", "Emergency Medicine"},
	CategoryGeneral:      {"General Medicine", "Internal Medicine", "Emergency Medicine"},
}

// EmergencySpecialists is the fixed high-priority set used to break ties in
// emergency-flavoured ranking.
var EmergencySpecialists = map[string]bool{
	"Emergency Medicine": true,
	"Cardiology":         true,
	"Trauma Surgery":     true,
	"Critical Care":      true,
}

// ValidCategory reports whether c is one of the six fixed categories.
func ValidCategory(c EmergencyCategory) bool {
	_, ok := CategorySpecialties[c]
	return ok
}

// MatchQuery is the ephemeral search request. It is never persisted.
type MatchQuery struct {
	Latitude      float64
	Longitude     float64
	Specialty     string
	MaxDistanceKm float64
	Page          int
	PageSize      int

	Emergency         bool
	Category          EmergencyCategory
	RequireSpecialist bool
}

// MatchResult is one ranked candidate, derived fresh from current doctor
// state for every query.
type MatchResult struct {
	Doctor                doctormodels.DoctorRecord `json:"doctor"`
	DistanceKm            float64                   `json:"distance_km"`
	EstimatedResponseMins float64                   `json:"estimated_response_minutes"`
	IsEmergencySpecialist bool                      `json:"is_emergency_specialist"`
	Rank                  int                       `json:"rank"`
}

// EmergencyMetadata accompanies emergency search responses.
type EmergencyMetadata struct {
	Category  EmergencyCategory `json:"category"`
	Timestamp time.Time         `json:"timestamp"`
}
