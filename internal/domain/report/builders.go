package report

import (
	"sort"
	"strconv"
	"time"

	"github.com/donortrack/backend/internal/domain/project"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DonationRow is one completed donation in a donation report
type DonationRow struct {
	ID       uuid.UUID       `json:"id"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Date     time.Time       `json:"date"`
	Project  string          `json:"project,omitempty"`
	Category string          `json:"category"`
	Status   string          `json:"status"`
	Notes    string          `json:"notes,omitempty"`
}

// DonationSummary aggregates a donation report
type DonationSummary struct {
	TotalAmount       decimal.Decimal            `json:"totalAmount"`
	DonationCount     int                        `json:"donationCount"`
	AvgDonation       decimal.Decimal            `json:"avgDonation"`
	CategoryBreakdown map[string]decimal.Decimal `json:"categoryBreakdown"`
	MonthlyBreakdown  map[string]decimal.Decimal `json:"monthlyBreakdown"`
	DateRange         DateRange                  `json:"dateRange"`
}

// DonationReport lists completed donations newest first with a summary
type DonationReport struct {
	Donations []DonationRow   `json:"donations"`
	Summary   DonationSummary `json:"summary"`
}

// BuildDonationReport sums, averages and groups by category and UTC month.
// Categories differing only in case share one bucket.
func BuildDonationReport(in Input) *DonationReport {
	rows := in.completed()

	r := &DonationReport{
		Donations: make([]DonationRow, 0, len(rows)),
		Summary: DonationSummary{
			TotalAmount:       decimal.Zero,
			CategoryBreakdown: make(map[string]decimal.Decimal),
			MonthlyBreakdown:  make(map[string]decimal.Decimal),
			DateRange:         in.Range,
		},
	}

	// labels maps a folded category to the label of its most recent donation
	labels := make(map[string]string)
	for i := len(rows) - 1; i >= 0; i-- {
		d := rows[i]
		category := UnknownCategory
		title := ""
		if p := in.project(d); p != nil {
			category = p.Category
			title = p.Title
		}
		key := project.CategoryKey(category)
		if label, ok := labels[key]; ok {
			category = label
		} else {
			labels[key] = category
		}

		r.Summary.TotalAmount = r.Summary.TotalAmount.Add(d.Amount)
		r.Summary.CategoryBreakdown[category] = r.Summary.CategoryBreakdown[category].Add(d.Amount)
		month := monthKey(d.CreatedAt)
		r.Summary.MonthlyBreakdown[month] = r.Summary.MonthlyBreakdown[month].Add(d.Amount)

		r.Donations = append(r.Donations, DonationRow{
			ID:       d.ID,
			Amount:   d.Amount,
			Currency: d.Currency,
			Date:     d.CreatedAt,
			Project:  title,
			Category: category,
			Status:   string(d.Status),
			Notes:    d.Notes,
		})
	}

	r.Summary.DonationCount = len(rows)
	r.Summary.AvgDonation = average(r.Summary.TotalAmount, len(rows))
	return r
}

// Type implements Report
func (r *DonationReport) Type() Type { return TypeDonation }

// Table implements Report
func (r *DonationReport) Table() Table {
	t := Table{Records: make([]Record, 0, len(r.Donations))}
	for _, d := range r.Donations {
		t.Records = append(t.Records, Record{
			{"id", d.ID.String()},
			{"amount", d.Amount.StringFixed(2)},
			{"currency", d.Currency},
			{"date", d.Date.UTC().Format(time.RFC3339)},
			{"project", d.Project},
			{"category", d.Category},
			{"status", d.Status},
			{"notes", d.Notes},
		})
	}
	return t
}

// FinancialRow is one completed donation in a financial report
type FinancialRow struct {
	ID            uuid.UUID       `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Date          time.Time       `json:"date"`
	PaymentMethod string          `json:"paymentMethod"`
	Status        string          `json:"status"`
}

// MonthTotals is the per-month triple of a financial report
type MonthTotals struct {
	Total   decimal.Decimal `json:"total"`
	Count   int             `json:"count"`
	Average decimal.Decimal `json:"average"`
}

// FinancialSummary aggregates a financial report. AveragePerMonth is the mean
// of per-month totals, not the mean donation.
type FinancialSummary struct {
	TotalDonated    decimal.Decimal `json:"totalDonated"`
	TotalDonations  int             `json:"totalDonations"`
	AveragePerMonth decimal.Decimal `json:"averagePerMonth"`
	DateRange       DateRange       `json:"dateRange"`
}

// FinancialReport lists completed donations oldest first with monthly totals
type FinancialReport struct {
	Donations   []FinancialRow         `json:"donations"`
	MonthlyData map[string]MonthTotals `json:"monthlyData"`
	Summary     FinancialSummary       `json:"summary"`
}

// BuildFinancialReport groups completed donations by UTC month
func BuildFinancialReport(in Input) *FinancialReport {
	rows := in.completed()

	r := &FinancialReport{
		Donations:   make([]FinancialRow, 0, len(rows)),
		MonthlyData: make(map[string]MonthTotals),
		Summary: FinancialSummary{
			TotalDonated: decimal.Zero,
			DateRange:    in.Range,
		},
	}

	for _, d := range rows {
		month := monthKey(d.CreatedAt)
		m := r.MonthlyData[month]
		m.Total = m.Total.Add(d.Amount)
		m.Count++
		r.MonthlyData[month] = m

		r.Summary.TotalDonated = r.Summary.TotalDonated.Add(d.Amount)
		r.Donations = append(r.Donations, FinancialRow{
			ID:            d.ID,
			Amount:        d.Amount,
			Currency:      d.Currency,
			Date:          d.CreatedAt,
			PaymentMethod: d.PaymentMethod,
			Status:        string(d.Status),
		})
	}

	monthSum := decimal.Zero
	for month, m := range r.MonthlyData {
		m.Average = average(m.Total, m.Count)
		r.MonthlyData[month] = m
		monthSum = monthSum.Add(m.Total)
	}

	r.Summary.TotalDonations = len(rows)
	r.Summary.AveragePerMonth = average(monthSum, len(r.MonthlyData))
	return r
}

// Months returns the month keys in ascending order
func (r *FinancialReport) Months() []string {
	months := make([]string, 0, len(r.MonthlyData))
	for m := range r.MonthlyData {
		months = append(months, m)
	}
	sort.Strings(months)
	return months
}

// Type implements Report
func (r *FinancialReport) Type() Type { return TypeFinancial }

// Table implements Report
func (r *FinancialReport) Table() Table {
	t := Table{Records: make([]Record, 0, len(r.Donations))}
	for _, d := range r.Donations {
		t.Records = append(t.Records, Record{
			{"id", d.ID.String()},
			{"amount", d.Amount.StringFixed(2)},
			{"currency", d.Currency},
			{"date", d.Date.UTC().Format(time.RFC3339)},
			{"paymentMethod", d.PaymentMethod},
			{"status", d.Status},
		})
	}
	return t
}

// MetricView is a measured outcome reported by a supported project
type MetricView struct {
	MetricName string          `json:"metricName"`
	Value      decimal.Decimal `json:"value"`
	Unit       string          `json:"unit"`
	Date       time.Time       `json:"date"`
}

// ProjectContribution is a donor's total toward one project
type ProjectContribution struct {
	ID            uuid.UUID       `json:"id"`
	Title         string          `json:"title"`
	Category      string          `json:"category"`
	Location      string          `json:"location"`
	TotalDonated  decimal.Decimal `json:"totalDonated"`
	DonationCount int             `json:"donationCount"`
	ImpactMetrics []MetricView    `json:"impactMetrics"`
}

// ImpactSummary aggregates an impact report
type ImpactSummary struct {
	TotalDonated      decimal.Decimal `json:"totalDonated"`
	ProjectsSupported int             `json:"projectsSupported"`
	TotalDonations    int             `json:"totalDonations"`
	DateRange         DateRange       `json:"dateRange"`
}

// ImpactReport translates a donor's giving into estimated outcomes
type ImpactReport struct {
	Projects        []ProjectContribution `json:"projects"`
	EstimatedImpact EstimatedImpact       `json:"estimatedImpact"`
	Summary         ImpactSummary         `json:"summary"`
}

// BuildImpactReport totals the donor's contribution per supported project.
// Donations to deleted projects count toward the total but list no project.
func BuildImpactReport(in Input, ratios ImpactRatios) *ImpactReport {
	rows := in.completed()

	total := decimal.Zero
	byProject := make(map[uuid.UUID]*ProjectContribution)
	for _, d := range rows {
		total = total.Add(d.Amount)

		p := in.project(d)
		if p == nil {
			continue
		}
		c, ok := byProject[p.ID]
		if !ok {
			c = &ProjectContribution{
				ID:            p.ID,
				Title:         p.Title,
				Category:      p.Category,
				Location:      p.Location,
				TotalDonated:  decimal.Zero,
				ImpactMetrics: metricViews(in.Metrics[p.ID]),
			}
			byProject[p.ID] = c
		}
		c.TotalDonated = c.TotalDonated.Add(d.Amount)
		c.DonationCount++
	}

	projects := make([]ProjectContribution, 0, len(byProject))
	for _, c := range byProject {
		projects = append(projects, *c)
	}
	sort.Slice(projects, func(i, j int) bool {
		if cmp := projects[i].TotalDonated.Cmp(projects[j].TotalDonated); cmp != 0 {
			return cmp > 0
		}
		return projects[i].ID.String() < projects[j].ID.String()
	})

	return &ImpactReport{
		Projects:        projects,
		EstimatedImpact: ratios.Estimate(total),
		Summary: ImpactSummary{
			TotalDonated:      total,
			ProjectsSupported: len(projects),
			TotalDonations:    len(rows),
			DateRange:         in.Range,
		},
	}
}

func metricViews(metrics []*project.ImpactMetric) []MetricView {
	out := make([]MetricView, 0, len(metrics))
	for _, m := range metrics {
		out = append(out, MetricView{MetricName: m.MetricName, Value: m.Value, Unit: m.Unit, Date: m.Date})
	}
	return out
}

// Type implements Report
func (r *ImpactReport) Type() Type { return TypeImpact }

// Table implements Report
func (r *ImpactReport) Table() Table {
	t := Table{Records: make([]Record, 0, len(r.Projects))}
	for _, p := range r.Projects {
		t.Records = append(t.Records, Record{
			{"id", p.ID.String()},
			{"title", p.Title},
			{"category", p.Category},
			{"location", p.Location},
			{"totalDonated", p.TotalDonated.StringFixed(2)},
			{"donationCount", strconv.Itoa(p.DonationCount)},
		})
	}
	return t
}
