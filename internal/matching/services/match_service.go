package services

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	doctormodels "github.com/strmed/docfinder-backend/internal/doctor/models"
	"github.com/strmed/docfinder-backend/internal/geo"
	"github.com/strmed/docfinder-backend/internal/matching/models"
)

var (
	ErrInvalidLocation = errors.New("invalid requester location")
	ErrInvalidCategory = errors.New("unknown emergency category")
)

// Response-time model: base minutes by specialist status plus two minutes
// per kilometer, capped at an hour.
const (
	baseResponseSpecialist    = 10.0
	baseResponseNonSpecialist = 20.0
	responseMinutesPerKm      = 2.0
	maxResponseMinutes        = 60.0
)

// DoctorFinder is the single read the ranker needs: the currently eligible
// doctors, fetched fresh per query.
type DoctorFinder interface {
	ListEligible(ctx context.Context) ([]doctormodels.DoctorRecord, error)
}

// MatchService filters and orders eligible doctors for a query. Nothing here
// is persisted; abandoned queries leave no state behind.
type MatchService struct {
	Doctors DoctorFinder
	Logger  *logrus.Logger
}

func NewMatchService(doctors DoctorFinder, logger *logrus.Logger) *MatchService {
	return &MatchService{Doctors: doctors, Logger: logger}
}

// Match runs the full pipeline: eligibility read, specialty/category filter,
// distance cut, scoring, three-key stable ordering, then pagination. An
// empty candidate set is an empty list, not an error.
func (s *MatchService) Match(ctx context.Context, q models.MatchQuery) ([]models.MatchResult, int, error) {
	if err := geo.ValidateCoordinate(q.Latitude, q.Longitude); err != nil {
		return nil, 0, ErrInvalidLocation
	}
	if q.Emergency && !models.ValidCategory(q.Category) {
		return nil, 0, ErrInvalidCategory
	}

	maxDistance := q.MaxDistanceKm
	if maxDistance <= 0 {
		if q.Emergency {
			maxDistance = models.EmergencyMaxDistanceKm
		} else {
			maxDistance = models.DefaultMaxDistanceKm
		}
	}

	candidates, err := s.Doctors.ListEligible(ctx)
	if err != nil {
		return nil, 0, err
	}

	var wanted []string
	if q.Emergency {
		wanted = models.CategorySpecialties[q.Category]
	} else if q.Specialty != "" {
		wanted = []string{q.Specialty}
	}

	results := make([]models.MatchResult, 0, len(candidates))
	for i := range candidates {
		d := candidates[i]
		specialties := d.SpecialtyList()
		if wanted != nil && !intersects(specialties, wanted) {
			continue
		}

		specialist := isEmergencySpecialist(specialties)
		if q.Emergency && q.RequireSpecialist && !specialist {
			continue
		}

		distance := geo.HaversineKm(q.Latitude, q.Longitude, d.Latitude, d.Longitude)
		if distance > maxDistance {
			continue
		}

		results = append(results, models.MatchResult{
			Doctor:                d,
			DistanceKm:            distance,
			EstimatedResponseMins: estimateResponseMinutes(distance, specialist),
			IsEmergencySpecialist: specialist,
		})
	}

	orderResults(results, q.Emergency)
	for i := range results {
		results[i].Rank = i + 1
	}

	total := len(results)
	page := paginate(results, q.Page, q.PageSize)

	s.Logger.WithFields(logrus.Fields{
		"Function":   "Match",
		"Emergency":  q.Emergency,
		"Candidates": len(candidates),
		"Matched":    total,
	}).Info("Match query served")

	return page, total, nil
}

func intersects(have, want []string) bool {
	for _, h := range have {
		for _, w := range want {
			if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(w)) {
				return true
			}
		}
	}
	return false
}

func isEmergencySpecialist(specialties []string) bool {
	for _, s := range specialties {
		for name := range models.EmergencySpecialists {
			if strings.EqualFold(strings.TrimSpace(s), name) {
				return true
			}
		}
	}
	return false
}

func estimateResponseMinutes(distanceKm float64, specialist bool) float64 {
	base := baseResponseNonSpecialist
	if specialist {
		base = baseResponseSpecialist
	}
	eta := base + distanceKm*responseMinutesPerKm
	if eta > maxResponseMinutes {
		return maxResponseMinutes
	}
	return eta
}

// orderResults applies the three-key stable ordering: specialists first on
// emergency queries, then ascending distance, then ascending response time.
// Doctor id breaks remaining ties so pagination stays deterministic.
func orderResults(results []models.MatchResult, emergency bool) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if emergency && a.IsEmergencySpecialist != b.IsEmergencySpecialist {
			return a.IsEmergencySpecialist
		}
		if a.DistanceKm != b.DistanceKm {
			return a.DistanceKm < b.DistanceKm
		}
		if a.EstimatedResponseMins != b.EstimatedResponseMins {
			return a.EstimatedResponseMins < b.EstimatedResponseMins
		}
		return a.Doctor.ID < b.Doctor.ID
	})
}

// paginate slices after full ordering, never before.
func paginate(results []models.MatchResult, page, pageSize int) []models.MatchResult {
	if pageSize <= 0 {
		pageSize = models.DefaultPageSize
	}
	if pageSize > models.MaxPageSize {
		pageSize = models.MaxPageSize
	}
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= len(results) {
		return []models.MatchResult{}
	}
	end := start + pageSize
	if end > len(results) {
		end = len(results)
	}
	return results[start:end]
}
