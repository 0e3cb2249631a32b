package questionnaire

import (
	"maps"

	"github.com/nyashahama/business-health-backend/internal/safe"
)

// Metrics is the category-specific derived-metric set. Each category has its
// own concrete type; MetricsMap is used when the type is not known (e.g. a
// record decoded from JSON).
type Metrics interface {
	Values() map[string]float64
}

// MetricsMap is the untyped form of Metrics.
type MetricsMap map[string]float64

func (m MetricsMap) Values() map[string]float64 {
	return maps.Clone(map[string]float64(m))
}

// StrategyMetrics: growth_gap is signed; negative means the business already
// beats its growth target.
type StrategyMetrics struct {
	GrowthGap float64 `json:"growth_gap"`
}

func (m StrategyMetrics) Values() map[string]float64 {
	return map[string]float64{"growth_gap": m.GrowthGap}
}

type SalesMetrics struct {
	SalesVelocity float64 `json:"sales_velocity"`
}

func (m SalesMetrics) Values() map[string]float64 {
	return map[string]float64{"sales_velocity": m.SalesVelocity}
}

type MarketingMetrics struct {
	CACLTVRatio float64 `json:"cac_ltv_ratio"`
}

func (m MarketingMetrics) Values() map[string]float64 {
	return map[string]float64{"cac_ltv_ratio": m.CACLTVRatio}
}

type CustomerExperienceMetrics struct {
	ChurnRate float64 `json:"churn_rate"`
}

func (m CustomerExperienceMetrics) Values() map[string]float64 {
	return map[string]float64{"churn_rate": m.ChurnRate}
}

type OperationsMetrics struct {
	OperationalEfficiencyPercent float64 `json:"operational_efficiency_percent"`
	CapacityUtilizationAvg       float64 `json:"capacity_utilization_avg"`
}

func (m OperationsMetrics) Values() map[string]float64 {
	return map[string]float64{
		"operational_efficiency_percent": m.OperationalEfficiencyPercent,
		"capacity_utilization_avg":       m.CapacityUtilizationAvg,
	}
}

// FinancialsMetrics: DebtToAssetRatio divides debt by working capital, not
// total assets. Kept as-is pending product clarification.
type FinancialsMetrics struct {
	CashRatio        float64 `json:"cash_ratio"`
	DebtToAssetRatio float64 `json:"debt_to_asset_ratio"`
}

func (m FinancialsMetrics) Values() map[string]float64 {
	return map[string]float64{
		"cash_ratio":          m.CashRatio,
		"debt_to_asset_ratio": m.DebtToAssetRatio,
	}
}

type HumanResourcesMetrics struct {
	RetentionRate float64 `json:"retention_rate"`
}

func (m HumanResourcesMetrics) Values() map[string]float64 {
	return map[string]float64{"retention_rate": m.RetentionRate}
}

type LeadershipMetrics struct {
	OwnerDependencyIndex float64 `json:"owner_dependency_index"`
}

func (m LeadershipMetrics) Values() map[string]float64 {
	return map[string]float64{"owner_dependency_index": m.OwnerDependencyIndex}
}

type TechnologyMetrics struct {
	DigitalReadinessPercent float64 `json:"digital_readiness_percent"`
}

func (m TechnologyMetrics) Values() map[string]float64 {
	return map[string]float64{"digital_readiness_percent": m.DigitalReadinessPercent}
}

type ITInfrastructureMetrics struct {
	DowntimePercent float64 `json:"downtime_percent"`
}

func (m ITInfrastructureMetrics) Values() map[string]float64 {
	return map[string]float64{"downtime_percent": m.DowntimePercent}
}

type RiskMetrics struct {
	CustomerDiversificationPercent float64 `json:"customer_diversification_percent"`
}

func (m RiskMetrics) Values() map[string]float64 {
	return map[string]float64{"customer_diversification_percent": m.CustomerDiversificationPercent}
}

type ComplianceMetrics struct {
	ViolationsPerAudit float64 `json:"violations_per_audit"`
}

func (m ComplianceMetrics) Values() map[string]float64 {
	return map[string]float64{"violations_per_audit": m.ViolationsPerAudit}
}

// ─── DERIVATIONS ──────────────────────────────────────────────────────────────

func strategyMetrics(a Answers) Metrics {
	return StrategyMetrics{
		GrowthGap: safe.Round(a.Number("target_sales_growth")-a.Number("sales_growth_past_year"), 2),
	}
}

func salesMetrics(a Answers) Metrics {
	if a.Bool("no_sales_cycle") || a.Bool("no_customer_interaction") {
		return SalesMetrics{}
	}
	perCycle := a.Number("average_sale_size") * (a.Number("close_rate") / 100)
	return SalesMetrics{
		SalesVelocity: safe.Round(safe.Divide(perCycle, a.Number("average_sales_cycle_days")), 2),
	}
}

func marketingMetrics(a Answers) Metrics {
	if a.Bool("cac_unknown") || a.Bool("ltv_unknown") {
		return MarketingMetrics{}
	}
	ltv := a.Number("customer_lifetime_value")
	cac := a.Number("customer_acquisition_cost")
	if cac == 0 {
		return MarketingMetrics{}
	}
	return MarketingMetrics{CACLTVRatio: safe.Round(safe.Float(ltv/cac), 2)}
}

func customerExperienceMetrics(a Answers) Metrics {
	return CustomerExperienceMetrics{
		ChurnRate: safe.Round(safe.Clamp(100-a.Number("customer_retention_rate"), 0, 100), 2),
	}
}

func operationsMetrics(a Answers) Metrics {
	util := (a.Number("equipment_utilization") +
		a.Number("staff_utilization") +
		a.Number("facility_utilization")) / 3
	return OperationsMetrics{
		OperationalEfficiencyPercent: scaleAnswer(a, "operational_efficiency_scale") * 20,
		CapacityUtilizationAvg:       safe.Round(util, 1),
	}
}

func financialsMetrics(a Answers) Metrics {
	return FinancialsMetrics{
		CashRatio:        safe.Round(safe.Divide(a.Number("current_cash_available"), a.Number("near_term_expenses")), 2),
		DebtToAssetRatio: safe.Round(safe.Divide(a.Number("total_debt_liabilities"), a.Number("total_working_capital")), 2),
	}
}

func humanResourcesMetrics(a Answers) Metrics {
	return HumanResourcesMetrics{
		RetentionRate: safe.Round(safe.Clamp(100-a.Number("employee_turnover_rate"), 0, 100), 2),
	}
}

func leadershipMetrics(a Answers) Metrics {
	return LeadershipMetrics{
		OwnerDependencyIndex: safe.Round(a.Number("owner_hours_per_week")/40, 2),
	}
}

func technologyMetrics(a Answers) Metrics {
	mean := (scaleAnswer(a, "technology_adoption") + scaleAnswer(a, "digital_tools_usage")) / 2
	return TechnologyMetrics{DigitalReadinessPercent: safe.Round(mean*20, 2)}
}

func itInfrastructureMetrics(a Answers) Metrics {
	return ITInfrastructureMetrics{
		DowntimePercent: safe.Round(safe.Clamp(100-a.Number("system_uptime_percent"), 0, 100), 2),
	}
}

func riskMetrics(a Answers) Metrics {
	return RiskMetrics{
		CustomerDiversificationPercent: safe.Round(safe.Clamp(100-a.Number("customer_concentration_percent"), 0, 100), 2),
	}
}

func complianceMetrics(a Answers) Metrics {
	return ComplianceMetrics{
		ViolationsPerAudit: safe.Round(safe.Divide(a.Number("compliance_violations_past_year"), a.Number("compliance_audits_per_year")), 2),
	}
}
