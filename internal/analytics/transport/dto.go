package transport

import (
	"time"

	"github.com/google/uuid"
)

type DashboardRequest struct {
	Division string `form:"division" validate:"omitempty,max=20"`
}

type DivisionPerformance struct {
	Count        int     `json:"count"`
	Revenue      float64 `json:"revenue"`
	TotalCount   int     `json:"totalCount"`
	TotalRevenue float64 `json:"totalRevenue"`
	WonCount     int     `json:"wonCount"`
	WonRevenue   float64 `json:"wonRevenue"`
	LostCount    int     `json:"lostCount"`
	LostRevenue  float64 `json:"lostRevenue"`
	AvgQuality   int     `json:"avgQuality"`
}

type Performer struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Avatar     string    `json:"avatar"`
	LeadsCount int       `json:"leadsCount"`
	TotalValue float64   `json:"totalValue"`
	WonValue   float64   `json:"wonValue"`
}

type UserStats struct {
	TotalAccessibleLeads int `json:"totalAccessibleLeads"`
	UserAssignedLeads    int `json:"userAssignedLeads"`
	UserCreatedLeads     int `json:"userCreatedLeads"`
}

type DashboardResponse struct {
	TotalPipeline       float64                        `json:"totalPipeline"`
	AvgDeal             float64                        `json:"avgDeal"`
	ConversionRate      float64                        `json:"conversionRate"`
	StatusCounts        map[string]int                 `json:"statusCounts"`
	StatusRevenue       map[string]float64             `json:"statusRevenue"`
	DivisionPerformance map[string]DivisionPerformance `json:"divisionPerformance"`
	TopPerformers       []Performer                    `json:"topPerformers"`
	LostCount           int                            `json:"lostCount"`
	LostValue           float64                        `json:"lostValue"`
	WonCount            int                            `json:"wonCount"`
	WonValue            float64                        `json:"wonValue"`
	WeightedPipeline    float64                        `json:"weightedPipeline"`
	AvgQuality          int                            `json:"avgQuality"`
	UserStats           UserStats                      `json:"userStats"`
}

type ListSnapshotsRequest struct {
	From string `form:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `form:"to" validate:"omitempty,datetime=2006-01-02"`
}

type SnapshotResponse struct {
	ID                   uuid.UUID      `json:"id"`
	Date                 string         `json:"date"`
	TotalLeads           int            `json:"totalLeads"`
	TotalPipelineValue   float64        `json:"totalPipelineValue"`
	AvgLeadQuality       int            `json:"avgLeadQuality"`
	StageDistribution    map[string]int `json:"stageDistribution"`
	DivisionDistribution map[string]int `json:"divisionDistribution"`
	CreatedAt            time.Time      `json:"createdAt"`
	UpdatedAt            time.Time      `json:"updatedAt"`
}

type SnapshotListResponse struct {
	Items []SnapshotResponse `json:"items"`
}
