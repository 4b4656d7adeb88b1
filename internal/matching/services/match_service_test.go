package services

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	doctormodels "github.com/strmed/docfinder-backend/internal/doctor/models"
	"github.com/strmed/docfinder-backend/internal/matching/models"
)

// fakeFinder serves whatever records are currently eligible, mirroring the
// fresh-read contract of the SQL repository.
type fakeFinder struct {
	doctors []doctormodels.DoctorRecord
}

func (f *fakeFinder) ListEligible(context.Context) ([]doctormodels.DoctorRecord, error) {
	var out []doctormodels.DoctorRecord
	for _, d := range f.doctors {
		if d.Eligible() {
			out = append(out, d)
		}
	}
	return out, nil
}

// kmToLat converts a north distance in km to degrees of latitude from the
// equator, close enough for ranking assertions.
const kmToLat = 1.0 / 111.195

func doctorAt(id int64, km float64, specialties string) doctormodels.DoctorRecord {
	return doctormodels.DoctorRecord{
		ID:            id,
		FullName:      "Doctor",
		Specialties:   specialties,
		Latitude:      km * kmToLat,
		Longitude:     0,
		Status:        doctormodels.StatusApproved,
		Online:        true,
		AccountActive: true,
	}
}

func newMatchService(doctors ...doctormodels.DoctorRecord) (*MatchService, *fakeFinder) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	finder := &fakeFinder{doctors: doctors}
	return NewMatchService(finder, logger), finder
}

func originQuery() models.MatchQuery {
	return models.MatchQuery{Latitude: 0, Longitude: 0}
}

func TestMatchRejectsInvalidLocation(t *testing.T) {
	svc, _ := newMatchService()
	_, _, err := svc.Match(context.Background(), models.MatchQuery{Latitude: 91, Longitude: 0})
	assert.ErrorIs(t, err, ErrInvalidLocation)

	_, _, err = svc.Match(context.Background(), models.MatchQuery{Latitude: 0, Longitude: -181})
	assert.ErrorIs(t, err, ErrInvalidLocation)
}

func TestMatchRejectsUnknownCategory(t *testing.T) {
	svc, _ := newMatchService()
	q := originQuery()
	q.Emergency = true
	q.Category = "dental"
	_, _, err := svc.Match(context.Background(), q)
	assert.ErrorIs(t, err, ErrInvalidCategory)
}

func TestMatchEmptyResultIsNotAnError(t *testing.T) {
	svc, _ := newMatchService()
	results, total, err := svc.Match(context.Background(), originQuery())
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Zero(t, total)
}

func TestMatchOnlyServesEligibleDoctors(t *testing.T) {
	online := doctorAt(1, 1, "General Medicine")
	offline := doctorAt(2, 1, "General Medicine")
	offline.Online = false
	pending := doctorAt(3, 1, "General Medicine")
	pending.Status = doctormodels.StatusUnderReview
	inactive := doctorAt(4, 1, "General Medicine")
	inactive.AccountActive = false

	svc, finder := newMatchService(online, offline, pending, inactive)

	results, _, err := svc.Match(context.Background(), originQuery())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.EqualValues(t, 1, results[0].Doctor.ID)

	// Toggling the flag changes the very next query, no caching lag.
	finder.doctors[0].Online = false
	results, _, err = svc.Match(context.Background(), originQuery())
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMatchSpecialtyFilter(t *testing.T) {
	svc, _ := newMatchService(
		doctorAt(1, 1, "Cardiology, Internal Medicine"),
		doctorAt(2, 2, "Dermatology"),
	)

	q := originQuery()
	q.Specialty = "cardiology"
	results, _, err := svc.Match(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.EqualValues(t, 1, results[0].Doctor.ID)
}

func TestMatchDefaultRadius(t *testing.T) {
	svc, _ := newMatchService(
		doctorAt(1, 9, "General Medicine"),
		doctorAt(2, 15, "General Medicine"),
	)

	// Ordinary search cuts at 10 km.
	results, _, err := svc.Match(context.Background(), originQuery())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.EqualValues(t, 1, results[0].Doctor.ID)

	// Emergency search reaches 20 km.
	q := originQuery()
	q.Emergency = true
	q.Category = models.CategoryGeneral
	results, _, err = svc.Match(context.Background(), q)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestEmergencySpecialistsRankFirstRegardlessOfDistance(t *testing.T) {
	specialist := doctorAt(1, 8, "Trauma Surgery")
	nonSpecialist := doctorAt(2, 1, "Orthopedics")
	svc, _ := newMatchService(specialist, nonSpecialist)

	q := originQuery()
	q.Emergency = true
	q.Category = models.CategoryTrauma
	results, _, err := svc.Match(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.EqualValues(t, 1, results[0].Doctor.ID)
	assert.True(t, results[0].IsEmergencySpecialist)
	assert.EqualValues(t, 2, results[1].Doctor.ID)

	// Ordinary searches skip the specialist key: nearest first.
	results, _, err = svc.Match(context.Background(), originQuery())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.EqualValues(t, 2, results[0].Doctor.ID)
}

func TestMatchRequireSpecialistFilters(t *testing.T) {
	svc, _ := newMatchService(
		doctorAt(1, 2, "Trauma Surgery"),
		doctorAt(2, 1, "Orthopedics"),
	)

	q := originQuery()
	q.Emergency = true
	q.Category = models.CategoryTrauma
	q.RequireSpecialist = true
	results, _, err := svc.Match(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.EqualValues(t, 1, results[0].Doctor.ID)
}

func TestEstimateResponseMinutes(t *testing.T) {
	assert.Equal(t, 10.0, estimateResponseMinutes(0, true))
	assert.Equal(t, 20.0, estimateResponseMinutes(0, false))
	assert.Equal(t, 20.0, estimateResponseMinutes(5, true))
	assert.Equal(t, 30.0, estimateResponseMinutes(5, false))
	// Capped at 60.
	assert.Equal(t, 60.0, estimateResponseMinutes(50, false))
	assert.Equal(t, 60.0, estimateResponseMinutes(500, true))

	// Monotone in distance for fixed specialist status.
	prev := 0.0
	for d := 0.0; d <= 30; d += 0.5 {
		eta := estimateResponseMinutes(d, false)
		assert.GreaterOrEqual(t, eta, prev)
		prev = eta
	}
}

func TestMatchPaginationIsStable(t *testing.T) {
	svc, _ := newMatchService(
		doctorAt(1, 1, "General Medicine"),
		doctorAt(2, 2, "General Medicine"),
		doctorAt(3, 3, "General Medicine"),
		doctorAt(4, 4, "General Medicine"),
		doctorAt(5, 5, "General Medicine"),
	)

	var seen []int64
	for page := 1; page <= 3; page++ {
		q := originQuery()
		q.Page = page
		q.PageSize = 2
		results, total, err := svc.Match(context.Background(), q)
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		for _, r := range results {
			seen = append(seen, r.Doctor.ID)
		}
	}

	// No duplicates, no omissions, same deterministic ordering.
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, seen)
}

func TestMatchRanksAreGlobalAcrossPages(t *testing.T) {
	svc, _ := newMatchService(
		doctorAt(1, 1, "General Medicine"),
		doctorAt(2, 2, "General Medicine"),
		doctorAt(3, 3, "General Medicine"),
	)

	q := originQuery()
	q.Page = 2
	q.PageSize = 2
	results, _, err := svc.Match(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 3, results[0].Rank)
}

func TestMatchTieBreakByDoctorID(t *testing.T) {
	// Same location, same specialties: id decides.
	svc, _ := newMatchService(
		doctorAt(9, 2, "General Medicine"),
		doctorAt(3, 2, "General Medicine"),
	)

	results, _, err := svc.Match(context.Background(), originQuery())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.EqualValues(t, 3, results[0].Doctor.ID)
	assert.EqualValues(t, 9, results[1].Doctor.ID)
}
