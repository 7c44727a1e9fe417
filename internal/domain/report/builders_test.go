package report

import (
	"testing"
	"time"

	"github.com/donortrack/backend/internal/domain/donation"
	"github.com/donortrack/backend/internal/domain/project"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 12, 31, 12, 0, 0, 0, time.UTC)

type fixture struct {
	donor    uuid.UUID
	projects map[uuid.UUID]*project.Project
}

func newFixture() *fixture {
	return &fixture{donor: uuid.New(), projects: make(map[uuid.UUID]*project.Project)}
}

func (f *fixture) project(title, category string) *project.Project {
	p := &project.Project{Title: title, Category: category, Location: "Nairobi"}
	p.ID = uuid.New()
	f.projects[p.ID] = p
	return p
}

func (f *fixture) donation(p *project.Project, amount string, status donation.Status, at time.Time) *donation.Donation {
	d := &donation.Donation{
		Amount:        decimal.RequireFromString(amount),
		Currency:      "USD",
		DonorID:       f.donor,
		PaymentMethod: "card",
		Status:        status,
	}
	d.ID = uuid.New()
	d.CreatedAt = at
	if p != nil {
		pid := p.ID
		d.ProjectID = &pid
	}
	return d
}

func (f *fixture) input(ds ...*donation.Donation) Input {
	return Input{DonorID: f.donor, Now: testNow, Donations: ds, Projects: f.projects}
}

func sumOf(m map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range m {
		total = total.Add(v)
	}
	return total
}

func TestBuildDonationReport_HealthScenario(t *testing.T) {
	f := newFixture()
	health := f.project("Clinic", "Health")
	in := f.input(
		f.donation(health, "100", donation.StatusCompleted, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)),
		f.donation(health, "200", donation.StatusCompleted, time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)),
		f.donation(health, "300", donation.StatusCompleted, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)),
	)

	r := BuildDonationReport(in)

	assert.Equal(t, "600", r.Summary.TotalAmount.String())
	assert.Equal(t, 3, r.Summary.DonationCount)
	assert.Equal(t, "200", r.Summary.AvgDonation.String())
	require.Len(t, r.Summary.CategoryBreakdown, 1)
	assert.Equal(t, "600", r.Summary.CategoryBreakdown["Health"].String())
	require.Len(t, r.Summary.MonthlyBreakdown, 3)
	assert.Equal(t, "100", r.Summary.MonthlyBreakdown["2024-01"].String())
	assert.Equal(t, "200", r.Summary.MonthlyBreakdown["2024-02"].String())
	assert.Equal(t, "300", r.Summary.MonthlyBreakdown["2024-03"].String())

	// newest first
	require.Len(t, r.Donations, 3)
	assert.Equal(t, "300", r.Donations[0].Amount.String())
	assert.Equal(t, "Clinic", r.Donations[0].Project)
}

func TestBuildDonationReport_CategoryCaseFolding(t *testing.T) {
	f := newFixture()
	older := f.project("Boreholes", "wash")
	newer := f.project("Latrines", "WASH")
	hiv := f.project("Testing", "HIV/AIDS")
	in := f.input(
		f.donation(older, "10", donation.StatusCompleted, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		f.donation(newer, "15", donation.StatusCompleted, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)),
		f.donation(hiv, "5", donation.StatusCompleted, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
	)

	r := BuildDonationReport(in)

	require.Len(t, r.Summary.CategoryBreakdown, 2)
	assert.Equal(t, "25", r.Summary.CategoryBreakdown["WASH"].String())
	assert.Equal(t, "5", r.Summary.CategoryBreakdown["HIV/AIDS"].String())
	for _, row := range r.Donations {
		assert.NotEqual(t, "wash", row.Category)
	}
}

func TestBuildDonationReport_ExactDecimalSums(t *testing.T) {
	f := newFixture()
	edu := f.project("School", "Education")
	water := f.project("Well", "Water")

	amounts := []string{"0.10", "0.20", "19.99", "33.33", "0.01", "1000.07"}
	var ds []*donation.Donation
	expected := decimal.Zero
	for i, a := range amounts {
		p := edu
		if i%2 == 0 {
			p = water
		}
		ds = append(ds, f.donation(p, a, donation.StatusCompleted,
			time.Date(2024, time.Month(i+1), 28, 23, 59, 0, 0, time.UTC)))
		expected = expected.Add(decimal.RequireFromString(a))
	}
	// a donation whose project was deleted
	ds = append(ds, f.donation(nil, "5.55", donation.StatusCompleted, time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)))
	expected = expected.Add(decimal.RequireFromString("5.55"))

	r := BuildDonationReport(f.input(ds...))

	assert.True(t, r.Summary.TotalAmount.Equal(expected), "got %s want %s", r.Summary.TotalAmount, expected)
	assert.True(t, sumOf(r.Summary.CategoryBreakdown).Equal(r.Summary.TotalAmount))
	assert.True(t, sumOf(r.Summary.MonthlyBreakdown).Equal(r.Summary.TotalAmount))
	assert.Equal(t, "5.55", r.Summary.CategoryBreakdown[UnknownCategory].String())
	assert.Equal(t, len(amounts)+1, r.Summary.DonationCount)
	assert.True(t, r.Summary.AvgDonation.Equal(expected.DivRound(decimal.NewFromInt(7), 2)))
}

func TestBuildDonationReport_Filters(t *testing.T) {
	f := newFixture()
	p := f.project("Clinic", "Health")
	jan := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	jun := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	other := f.donation(p, "999", donation.StatusCompleted, jan)
	other.DonorID = uuid.New()

	in := f.input(
		f.donation(p, "10", donation.StatusCompleted, jan),
		f.donation(p, "20", donation.StatusPending, jan),
		f.donation(p, "30", donation.StatusFailed, jan),
		f.donation(p, "40", donation.StatusRefunded, jan),
		f.donation(p, "50", donation.StatusCompleted, jun),
		other,
	)

	t.Run("only completed donations of the donor", func(t *testing.T) {
		r := BuildDonationReport(in)
		assert.Equal(t, "60", r.Summary.TotalAmount.String())
		assert.Equal(t, 2, r.Summary.DonationCount)
	})

	t.Run("inclusive date range", func(t *testing.T) {
		start := jan
		end := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		in.Range = DateRange{Start: &start, End: &end}
		r := BuildDonationReport(in)
		assert.Equal(t, "10", r.Summary.TotalAmount.String())
		assert.Equal(t, &start, r.Summary.DateRange.Start)
	})

	t.Run("future donations are beyond the default end", func(t *testing.T) {
		in.Range = DateRange{}
		in.Donations = append(in.Donations, f.donation(p, "70", donation.StatusCompleted, testNow.Add(time.Hour)))
		r := BuildDonationReport(in)
		assert.Equal(t, "60", r.Summary.TotalAmount.String())
	})
}

func TestBuildDonationReport_MonthKeyIsUTC(t *testing.T) {
	f := newFixture()
	p := f.project("Clinic", "Health")
	tz := time.FixedZone("UTC+3", 3*60*60)
	// local Feb 1st 01:00 is still January in UTC
	at := time.Date(2024, 2, 1, 1, 0, 0, 0, tz)

	r := BuildDonationReport(f.input(f.donation(p, "10", donation.StatusCompleted, at)))
	assert.Contains(t, r.Summary.MonthlyBreakdown, "2024-01")
}

func TestBuilders_EmptyRange(t *testing.T) {
	f := newFixture()
	p := f.project("Clinic", "Health")
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC)
	in := f.input(f.donation(p, "10", donation.StatusCompleted, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	in.Range = DateRange{Start: &start, End: &end}

	dr := BuildDonationReport(in)
	assert.True(t, dr.Summary.TotalAmount.IsZero())
	assert.Equal(t, 0, dr.Summary.DonationCount)
	assert.True(t, dr.Summary.AvgDonation.IsZero())
	assert.NotNil(t, dr.Summary.CategoryBreakdown)
	assert.Empty(t, dr.Summary.CategoryBreakdown)
	assert.NotNil(t, dr.Summary.MonthlyBreakdown)
	assert.Empty(t, dr.Summary.MonthlyBreakdown)
	assert.NotNil(t, dr.Donations)
	assert.True(t, dr.Table().IsEmpty())

	fr := BuildFinancialReport(in)
	assert.True(t, fr.Summary.TotalDonated.IsZero())
	assert.True(t, fr.Summary.AveragePerMonth.IsZero())
	assert.NotNil(t, fr.MonthlyData)
	assert.NotNil(t, fr.Donations)

	ir := BuildImpactReport(in, DefaultImpactRatios())
	assert.True(t, ir.Summary.TotalDonated.IsZero())
	assert.Equal(t, EstimatedImpact{}, ir.EstimatedImpact)
	assert.NotNil(t, ir.Projects)
	assert.Empty(t, ir.Projects)
}

func TestBuildFinancialReport_AveragePerMonthUsesMonthlyTotals(t *testing.T) {
	f := newFixture()
	p := f.project("Clinic", "Health")
	in := f.input(
		f.donation(p, "10", donation.StatusCompleted, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		f.donation(p, "20", donation.StatusCompleted, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)),
		f.donation(p, "30", donation.StatusCompleted, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)),
		f.donation(p, "90", donation.StatusCompleted, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)),
	)

	r := BuildFinancialReport(in)

	assert.Equal(t, "150", r.Summary.TotalDonated.String())
	assert.Equal(t, 4, r.Summary.TotalDonations)
	// (60 + 90) / 2 months, not 150 / 4 donations
	assert.Equal(t, "75", r.Summary.AveragePerMonth.String())

	jan := r.MonthlyData["2024-01"]
	assert.Equal(t, "60", jan.Total.String())
	assert.Equal(t, 3, jan.Count)
	assert.Equal(t, "20", jan.Average.String())
	assert.Equal(t, []string{"2024-01", "2024-02"}, r.Months())

	// oldest first
	require.Len(t, r.Donations, 4)
	assert.Equal(t, "10", r.Donations[0].Amount.String())
	assert.Equal(t, "card", r.Donations[0].PaymentMethod)
}

func TestBuildFinancialReport_AverageRounding(t *testing.T) {
	f := newFixture()
	p := f.project("Clinic", "Health")
	in := f.input(
		f.donation(p, "10", donation.StatusCompleted, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		f.donation(p, "10", donation.StatusCompleted, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)),
		f.donation(p, "0.01", donation.StatusCompleted, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)),
	)
	r := BuildFinancialReport(in)
	assert.Equal(t, "6.67", r.MonthlyData["2024-01"].Average.String())
}

func TestBuildImpactReport(t *testing.T) {
	f := newFixture()
	clinic := f.project("Clinic", "Health")
	school := f.project("School", "Education")
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	in := f.input(
		f.donation(clinic, "100", donation.StatusCompleted, jan),
		f.donation(clinic, "150", donation.StatusCompleted, jan),
		f.donation(school, "75", donation.StatusCompleted, jan),
		f.donation(school, "500", donation.StatusPending, jan),
		f.donation(nil, "30", donation.StatusCompleted, jan),
	)
	in.Metrics = map[uuid.UUID][]*project.ImpactMetric{
		clinic.ID: {{ProjectID: clinic.ID, MetricName: "Patients treated", Value: decimal.NewFromInt(420), Unit: "people", Date: jan}},
	}

	r := BuildImpactReport(in, DefaultImpactRatios())

	assert.Equal(t, "355", r.Summary.TotalDonated.String())
	assert.Equal(t, 2, r.Summary.ProjectsSupported)
	assert.Equal(t, 4, r.Summary.TotalDonations)
	require.Len(t, r.Projects, 2)
	assert.Equal(t, clinic.ID, r.Projects[0].ID)
	assert.Equal(t, "250", r.Projects[0].TotalDonated.String())
	assert.Equal(t, 2, r.Projects[0].DonationCount)
	assert.Equal(t, "75", r.Projects[1].TotalDonated.String())
	require.Len(t, r.Projects[0].ImpactMetrics, 1)
	assert.Equal(t, MetricView{MetricName: "Patients treated", Value: decimal.NewFromInt(420), Unit: "people", Date: jan}, r.Projects[0].ImpactMetrics[0])
	assert.NotNil(t, r.Projects[1].ImpactMetrics)
	assert.Empty(t, r.Projects[1].ImpactMetrics)

	assert.Equal(t, EstimatedImpact{PeopleHelped: 3, TreesPlanted: 35, MealsProvided: 71, EducationHours: 17}, r.EstimatedImpact)

	table := r.Table()
	assert.Equal(t, []string{"id", "title", "category", "location", "totalDonated", "donationCount"}, table.Header())
	assert.Equal(t, "250.00", table.Rows()[0][4])
}

func TestBuilders_Deterministic(t *testing.T) {
	f := newFixture()
	p := f.project("Clinic", "Health")
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	in := f.input(
		f.donation(p, "1", donation.StatusCompleted, at),
		f.donation(p, "2", donation.StatusCompleted, at),
		f.donation(p, "3", donation.StatusCompleted, at),
	)

	first := BuildDonationReport(in)
	reversed := in
	reversed.Donations = []*donation.Donation{in.Donations[2], in.Donations[0], in.Donations[1]}
	second := BuildDonationReport(reversed)

	assert.Equal(t, first.Table().Rows(), second.Table().Rows())
}

func TestParseType(t *testing.T) {
	typ, err := ParseType("")
	require.NoError(t, err)
	assert.Equal(t, TypeDonation, typ)

	typ, err = ParseType("Financial")
	require.NoError(t, err)
	assert.Equal(t, TypeFinancial, typ)

	_, err = ParseType("tax")
	assert.Error(t, err)
}

func TestNewDateRange(t *testing.T) {
	a := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	_, err := NewDateRange(&b, &a)
	assert.Error(t, err)

	r, err := NewDateRange(nil, nil)
	require.NoError(t, err)
	start, end := r.Bounds(testNow)
	assert.Equal(t, time.Unix(0, 0).UTC(), start)
	assert.Equal(t, testNow, end)
}
