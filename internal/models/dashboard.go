package models

// Plot is one allotted parcel in the plot registry
type Plot struct {
	ID                 string     `json:"id" yaml:"id"`
	Name               string     `json:"name" yaml:"name"`
	Status             string     `json:"status" yaml:"status"`
	AreaSqm            float64    `json:"area_sqm" yaml:"area_sqm"`
	Lessee             string     `json:"lessee" yaml:"lessee"`
	AllotmentDate      string     `json:"allotment_date" yaml:"allotment_date"`
	LastInspection     string     `json:"last_inspection" yaml:"last_inspection"`
	LeaseStatus        string     `json:"lease_status" yaml:"lease_status"`
	LeaseAmount        float64    `json:"lease_amount" yaml:"lease_amount"`
	WaterCharges       float64    `json:"water_charges" yaml:"water_charges"`
	DuesPending        float64    `json:"dues_pending" yaml:"dues_pending"`
	ComplianceScore    float64    `json:"compliance_score" yaml:"compliance_score"`
	Coordinates        [2]float64 `json:"coordinates" yaml:"coordinates"`
	IndustrialArea     string     `json:"industrial_area" yaml:"industrial_area"`
	LandUse            string     `json:"land_use" yaml:"land_use"`
	ConstructedAreaPct float64    `json:"constructed_area_pct" yaml:"constructed_area_pct"`
}

// Alert is a compliance notification raised against a plot
type Alert struct {
	ID             string   `json:"id" yaml:"id"`
	Type           string   `json:"type" yaml:"type"`
	Severity       Severity `json:"severity" yaml:"severity"`
	PlotID         string   `json:"plot_id" yaml:"plot_id"`
	PlotName       string   `json:"plot_name" yaml:"plot_name"`
	Message        string   `json:"message" yaml:"message"`
	Timestamp      string   `json:"timestamp" yaml:"timestamp"`
	ActionRequired string   `json:"action_required" yaml:"action_required"`
	Status         string   `json:"status" yaml:"status"`
}

// AlertSummary counts alerts by severity and status
type AlertSummary struct {
	Total    int `json:"total" yaml:"total"`
	Critical int `json:"critical" yaml:"critical"`
	High     int `json:"high" yaml:"high"`
	Medium   int `json:"medium" yaml:"medium"`
	Open     int `json:"open" yaml:"open"`
}

// AlertList is the payload of the alerts endpoint
type AlertList struct {
	Alerts  []Alert      `json:"alerts" yaml:"alerts"`
	Summary AlertSummary `json:"summary" yaml:"summary"`
}

// Filter keeps the alerts of one severity; an empty severity keeps all of them.
func (l AlertList) Filter(severity Severity) []Alert {
	if severity == "" {
		return l.Alerts
	}
	out := make([]Alert, 0, len(l.Alerts))
	for _, a := range l.Alerts {
		if a.Severity == severity {
			out = append(out, a)
		}
	}
	return out
}

// IndustrialArea aggregates the plots of one industrial estate
type IndustrialArea struct {
	ID                 string     `json:"id" yaml:"id"`
	Name               string     `json:"name" yaml:"name"`
	Center             [2]float64 `json:"center" yaml:"center"`
	TotalPlots         int        `json:"total_plots" yaml:"total_plots"`
	MonitoredPlots     int        `json:"monitored_plots" yaml:"monitored_plots"`
	Compliant          int        `json:"compliant" yaml:"compliant"`
	Violations         int        `json:"violations" yaml:"violations"`
	AvgComplianceScore float64    `json:"avg_compliance_score" yaml:"avg_compliance_score"`
}

// DashboardStats is the aggregate statistics payload
type DashboardStats struct {
	TotalPlots               int            `json:"total_plots" yaml:"total_plots"`
	Compliant                int            `json:"compliant" yaml:"compliant"`
	ViolationsDetected       int            `json:"violations_detected" yaml:"violations_detected"`
	Encroachments            int            `json:"encroachments" yaml:"encroachments"`
	VacantPlots              int            `json:"vacant_plots" yaml:"vacant_plots"`
	BoundaryDeviations       int            `json:"boundary_deviations" yaml:"boundary_deviations"`
	UnauthorizedConstruction int            `json:"unauthorized_construction" yaml:"unauthorized_construction"`
	NonCompliantConstruction int            `json:"non_compliant_construction" yaml:"non_compliant_construction"`
	PendingDues              int            `json:"pending_dues" yaml:"pending_dues"`
	TotalDuesAmount          float64        `json:"total_dues_amount" yaml:"total_dues_amount"`
	AverageComplianceScore   float64        `json:"average_compliance_score" yaml:"average_compliance_score"`
	TotalMonitoredAreaSqm    float64        `json:"total_monitored_area_sqm" yaml:"total_monitored_area_sqm"`
	IndustrialAreasCount     int            `json:"industrial_areas_count" yaml:"industrial_areas_count"`
	ActiveAlerts             int            `json:"active_alerts" yaml:"active_alerts"`
	TotalAnalyses            int            `json:"total_analyses" yaml:"total_analyses"`
	LastUpdated              string         `json:"last_updated" yaml:"last_updated"`
	CostComparison           CostComparison `json:"cost_comparison" yaml:"cost_comparison"`
}

// CostComparison contrasts drone surveys with satellite monitoring
type CostComparison struct {
	DroneSurveyCostPerVisit   float64 `json:"drone_survey_cost_per_visit" yaml:"drone_survey_cost_per_visit"`
	DroneSurveysPerYear       int     `json:"drone_surveys_per_year" yaml:"drone_surveys_per_year"`
	AnnualDroneCost           float64 `json:"annual_drone_cost" yaml:"annual_drone_cost"`
	SatelliteMonitoringAnnual float64 `json:"satellite_monitoring_annual" yaml:"satellite_monitoring_annual"`
	AnnualSavings             float64 `json:"annual_savings" yaml:"annual_savings"`
	SavingsPercentage         float64 `json:"savings_percentage" yaml:"savings_percentage"`
}

// AnalysisListing summarizes one stored analysis on the service
type AnalysisListing struct {
	ResultID      string   `json:"result_id" yaml:"result_id"`
	AnalyzedAt    string   `json:"analyzed_at" yaml:"analyzed_at"`
	Summary       *Summary `json:"summary" yaml:"summary"`
	ReferenceFile string   `json:"reference_file" yaml:"reference_file"`
	CurrentFile   string   `json:"current_file" yaml:"current_file"`
}
