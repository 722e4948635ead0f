package service

import (
	"math"
	"time"

	"leadpipeline_backend/internal/analytics/transport"
	"leadpipeline_backend/internal/domain"

	"github.com/google/uuid"
)

type divisionTotals struct {
	transport.DivisionPerformance
	qualitySum int
}

// Aggregate builds the dashboard over an already scoped lead set. Top
// performers are filled in by the caller.
func Aggregate(leads []domain.Lead, viewer uuid.UUID) transport.DashboardResponse {
	report := transport.DashboardResponse{
		StatusCounts:        make(map[string]int, len(domain.Statuses)),
		StatusRevenue:       make(map[string]float64, len(domain.Statuses)),
		DivisionPerformance: make(map[string]transport.DivisionPerformance, len(domain.Divisions)),
		TopPerformers:       []transport.Performer{},
	}
	for _, s := range domain.Statuses {
		report.StatusCounts[string(s)] = 0
		report.StatusRevenue[string(s)] = 0
	}

	divisions := make(map[domain.Division]*divisionTotals, len(domain.Divisions))
	for _, d := range domain.Divisions {
		divisions[d] = &divisionTotals{}
	}

	activeCount := 0
	qualitySum := 0
	for _, lead := range leads {
		status := string(lead.Status)
		report.StatusCounts[status]++
		report.StatusRevenue[status] += lead.DealValue
		qualitySum += lead.QualityScore

		if lead.AssignedTo != nil && *lead.AssignedTo == viewer {
			report.UserStats.UserAssignedLeads++
		}
		if lead.CreatedBy != nil && *lead.CreatedBy == viewer {
			report.UserStats.UserCreatedLeads++
		}

		div, ok := divisions[lead.Division]
		if !ok {
			div = &divisionTotals{}
			divisions[lead.Division] = div
		}
		div.TotalCount++
		div.TotalRevenue += lead.DealValue
		switch lead.Status {
		case domain.StatusWon:
			div.WonCount++
			div.WonRevenue += lead.DealValue
		case domain.StatusLost:
			div.LostCount++
			div.LostRevenue += lead.DealValue
		}

		if !lead.Status.InPipeline() {
			continue
		}
		activeCount++
		report.TotalPipeline += lead.DealValue
		report.WeightedPipeline += lead.WeightedValue()
		div.Count++
		div.Revenue += lead.DealValue
		div.qualitySum += lead.QualityScore
	}

	total := len(leads)
	report.UserStats.TotalAccessibleLeads = total
	if activeCount > 0 {
		report.AvgDeal = report.TotalPipeline / float64(activeCount)
	}
	if total > 0 {
		report.AvgQuality = roundedAverage(qualitySum, total)
	}

	report.WonCount = report.StatusCounts[string(domain.StatusWon)]
	report.WonValue = report.StatusRevenue[string(domain.StatusWon)]
	report.LostCount = report.StatusCounts[string(domain.StatusLost)]
	report.LostValue = report.StatusRevenue[string(domain.StatusLost)]
	report.ConversionRate = conversionRate(report.WonCount, total)

	for d, totals := range divisions {
		perf := totals.DivisionPerformance
		if perf.Count > 0 {
			perf.AvgQuality = roundedAverage(totals.qualitySum, perf.Count)
		}
		report.DivisionPerformance[string(d)] = perf
	}
	return report
}

// conversionRate is won over all leads in percent, one decimal.
func conversionRate(won, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(won)/float64(total)*1000) / 10
}

// roundedAverage is sum/n rounded half away from zero.
func roundedAverage(sum, n int) int {
	return int(math.Round(float64(sum) / float64(n)))
}

// Snapshot aggregates the global lead set for date.
func Snapshot(leads []domain.Lead, date time.Time) domain.DailySnapshot {
	snap := domain.DailySnapshot{
		Date:                 domain.DateOnly(date),
		TotalLeads:           len(leads),
		StageDistribution:    map[string]int{},
		DivisionDistribution: map[string]int{},
	}
	qualitySum := 0
	for _, lead := range leads {
		snap.TotalPipelineValue += lead.DealValue
		qualitySum += lead.QualityScore
		snap.StageDistribution[string(lead.Status)]++
		snap.DivisionDistribution[string(lead.Division)]++
	}
	if len(leads) > 0 {
		snap.AvgLeadQuality = roundedAverage(qualitySum, len(leads))
	}
	return snap
}

func toPerformer(p domain.PersonnelPerformance) transport.Performer {
	return transport.Performer{
		ID:         p.ID,
		Name:       p.Name(),
		Avatar:     p.Avatar(),
		LeadsCount: p.LeadsCount,
		TotalValue: p.TotalValue,
		WonValue:   p.WonValue,
	}
}

func toSnapshotResponse(s domain.DailySnapshot) transport.SnapshotResponse {
	return transport.SnapshotResponse{
		ID:                   s.ID,
		Date:                 s.Date.Format(time.DateOnly),
		TotalLeads:           s.TotalLeads,
		TotalPipelineValue:   s.TotalPipelineValue,
		AvgLeadQuality:       s.AvgLeadQuality,
		StageDistribution:    s.StageDistribution,
		DivisionDistribution: s.DivisionDistribution,
		CreatedAt:            s.CreatedAt,
		UpdatedAt:            s.UpdatedAt,
	}
}
