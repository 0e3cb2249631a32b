package questionnaire

// followUpRule decides whether a question's follow-up prompt was shown.
type followUpRule uint8

const (
	followUpNever followUpRule = iota
	followUpWhenTrue
	followUpWhenFalse
	followUpWhenLowScale // rating ≤ 2
)

// questionSpec is one row of a category catalog. Order within the catalog
// defines question_number and the question_id suffix.
type questionSpec struct {
	Field    string // raw answer key
	Text     string
	Type     ResponseType
	Weight   float64
	Unit     string
	NAFlags  []string // any set → not_applicable
	Estimate string   // raw boolean key marking the answer as an estimate
	Parts    []string // composite_percentage component keys
	FollowUp followUpRule
	// FollowUpField is the raw key holding the optional follow-up text.
	FollowUpField string
}

// categorySpec is the full declarative definition of one category.
type categorySpec struct {
	ID        CategoryID
	Name      string
	Chapter   ChapterID
	Questions []questionSpec
	Metrics   func(Answers) Metrics
}

// Categories lists the twelve category ids in canonical order.
var Categories = []CategoryID{
	CategoryStrategy,
	CategorySales,
	CategoryMarketing,
	CategoryCustomerExperience,
	CategoryOperations,
	CategoryFinancials,
	CategoryHumanResources,
	CategoryLeadership,
	CategoryTechnology,
	CategoryITInfrastructure,
	CategoryRisk,
	CategoryCompliance,
}

// Chapters lists the four chapter ids in canonical order.
var Chapters = []ChapterID{
	ChapterGrowthEngine,
	ChapterPerformanceHealth,
	ChapterPeopleLeadership,
	ChapterResilienceSafeguards,
}

var chapterNames = map[ChapterID]string{
	ChapterGrowthEngine:         "Growth Engine",
	ChapterPerformanceHealth:    "Performance & Health",
	ChapterPeopleLeadership:     "People & Leadership",
	ChapterResilienceSafeguards: "Resilience & Safeguards",
}

// ChapterName returns the display name of a chapter.
func ChapterName(id ChapterID) string { return chapterNames[id] }

// CategoryName returns the display name of a category, or "" if unknown.
func CategoryName(id CategoryID) string {
	if spec, ok := catalog[id]; ok {
		return spec.Name
	}
	return ""
}

var catalog = map[CategoryID]categorySpec{
	CategoryStrategy: {
		ID:      CategoryStrategy,
		Name:    "Strategy",
		Chapter: ChapterGrowthEngine,
		Metrics: strategyMetrics,
		Questions: []questionSpec{
			{Field: "competitive_differentiators_understanding", Text: "How well do you understand what differentiates your business from competitors?", Type: ResponseScale, Weight: 1.5},
			{Field: "local_market_share", Text: "What is your estimated share of your local market?", Type: ResponsePercentage, Weight: 1.0, Unit: "%", NAFlags: []string{"market_share_unknown"}, Estimate: "market_share_estimated"},
			{Field: "sales_growth_past_year", Text: "By how much did sales grow over the past year?", Type: ResponsePercentage, Weight: 1.2, Unit: "%"},
			{Field: "target_sales_growth", Text: "What sales growth are you targeting for the coming year?", Type: ResponsePercentage, Weight: 1.0, Unit: "%"},
			{Field: "business_goals_plan", Text: "How clearly are your business goals documented in a plan?", Type: ResponseScale, Weight: 1.5, FollowUp: followUpWhenLowScale, FollowUpField: "business_goals_plan_notes"},
			{Field: "business_plan_review", Text: "How regularly is the business plan reviewed and updated?", Type: ResponseScale, Weight: 1.0},
			{Field: "growth_exit_plan", Text: "How developed is your long-term growth or exit plan?", Type: ResponseScale, Weight: 1.2},
		},
	},
	CategorySales: {
		ID:      CategorySales,
		Name:    "Sales",
		Chapter: ChapterGrowthEngine,
		Metrics: salesMetrics,
		Questions: []questionSpec{
			{Field: "sales_process_documented", Text: "How well documented and consistently followed is your sales process?", Type: ResponseScale, Weight: 1.5},
			{Field: "average_sale_size", Text: "What is the average size of a sale?", Type: ResponseCurrency, Weight: 1.0, Unit: "USD", Estimate: "average_sale_size_estimated"},
			{Field: "close_rate", Text: "What percentage of qualified opportunities do you close?", Type: ResponsePercentage, Weight: 1.2, Unit: "%", NAFlags: []string{"no_customer_interaction"}},
			{Field: "average_sales_cycle_days", Text: "How many days does a typical sale take from first contact to close?", Type: ResponseNumeric, Weight: 1.0, Unit: "days", NAFlags: []string{"no_sales_cycle", "no_customer_interaction"}},
			{Field: "sales_pipeline_visibility", Text: "How much visibility do you have into your sales pipeline?", Type: ResponseScale, Weight: 1.2},
			{Field: "sales_team_performance", Text: "How would you rate the performance of your sales team?", Type: ResponseScale, Weight: 1.0},
			{Field: "repeat_customer_rate", Text: "What percentage of revenue comes from repeat customers?", Type: ResponsePercentage, Weight: 1.0, Unit: "%"},
			{Field: "sales_forecast_accuracy", Text: "How accurate are your sales forecasts?", Type: ResponseScale, Weight: 0.8},
		},
	},
	CategoryMarketing: {
		ID:      CategoryMarketing,
		Name:    "Marketing",
		Chapter: ChapterGrowthEngine,
		Metrics: marketingMetrics,
		Questions: []questionSpec{
			{Field: "marketing_strategy_clarity", Text: "How clear and documented is your marketing strategy?", Type: ResponseScale, Weight: 1.5},
			{Field: "customer_acquisition_cost", Text: "What does it cost to acquire a new customer?", Type: ResponseCurrency, Weight: 1.2, Unit: "USD", NAFlags: []string{"cac_unknown"}},
			{Field: "customer_lifetime_value", Text: "What is the lifetime value of a typical customer?", Type: ResponseCurrency, Weight: 1.2, Unit: "USD", NAFlags: []string{"ltv_unknown"}},
			{Field: "marketing_budget_percent", Text: "What share of revenue is spent on marketing?", Type: ResponsePercentage, Weight: 0.8, Unit: "%"},
			{Field: "brand_awareness", Text: "How strong is awareness of your brand in your target market?", Type: ResponseScale, Weight: 1.0},
			{Field: "digital_presence", Text: "How effective is your digital presence (website, search, social)?", Type: ResponseScale, Weight: 1.0},
			{Field: "marketing_roi_tracking", Text: "How well do you track return on marketing spend?", Type: ResponseScale, Weight: 1.2},
			{Field: "primary_marketing_channel", Text: "What is your primary marketing channel?", Type: ResponseText, Weight: 0.5},
		},
	},
	CategoryCustomerExperience: {
		ID:      CategoryCustomerExperience,
		Name:    "Customer Experience",
		Chapter: ChapterGrowthEngine,
		Metrics: customerExperienceMetrics,
		Questions: []questionSpec{
			{Field: "customer_satisfaction", Text: "How satisfied are your customers overall?", Type: ResponseScale, Weight: 1.5},
			{Field: "net_promoter_score", Text: "What is your most recent Net Promoter Score?", Type: ResponseNumeric, Weight: 1.0, NAFlags: []string{"nps_unknown"}},
			{Field: "customer_retention_rate", Text: "What percentage of customers do you retain year over year?", Type: ResponsePercentage, Weight: 1.2, Unit: "%", Estimate: "customer_retention_estimated"},
			{Field: "complaint_resolution", Text: "How effectively are customer complaints resolved?", Type: ResponseScale, Weight: 1.0},
			{Field: "feedback_collection", Text: "Do you systematically collect customer feedback?", Type: ResponseBoolean, Weight: 1.0, FollowUp: followUpWhenTrue, FollowUpField: "feedback_collection_method"},
			{Field: "customer_service_quality", Text: "How would you rate the quality of your customer service?", Type: ResponseScale, Weight: 1.2},
			{Field: "average_response_time_hours", Text: "How many hours does it take on average to respond to a customer inquiry?", Type: ResponseNumeric, Weight: 0.8, Unit: "hours"},
		},
	},
	CategoryOperations: {
		ID:      CategoryOperations,
		Name:    "Operations",
		Chapter: ChapterPerformanceHealth,
		Metrics: operationsMetrics,
		Questions: []questionSpec{
			{Field: "operational_efficiency_scale", Text: "How efficient are your day-to-day operations?", Type: ResponseScale, Weight: 1.5},
			{Field: "process_documentation", Text: "How well are core processes documented?", Type: ResponseScale, Weight: 1.2},
			{Field: "capacity_utilization", Text: "How much of your equipment, staff and facility capacity is in use?", Type: ResponseCompositePercentage, Weight: 1.0, Unit: "%", Parts: []string{"equipment_utilization", "staff_utilization", "facility_utilization"}},
			{Field: "quality_control", Text: "How effective are your quality control practices?", Type: ResponseScale, Weight: 1.2},
			{Field: "supply_chain_reliability", Text: "How reliable is your supply chain?", Type: ResponseScale, Weight: 1.0},
			{Field: "inventory_turnover", Text: "How many times per year does inventory turn over?", Type: ResponseNumeric, Weight: 0.8, Unit: "turns/year", NAFlags: []string{"no_inventory"}},
			{Field: "on_time_delivery_rate", Text: "What percentage of orders are delivered on time?", Type: ResponsePercentage, Weight: 1.0, Unit: "%"},
		},
	},
	CategoryFinancials: {
		ID:      CategoryFinancials,
		Name:    "Financials",
		Chapter: ChapterPerformanceHealth,
		Metrics: financialsMetrics,
		Questions: []questionSpec{
			{Field: "financial_statements_review", Text: "How regularly are financial statements prepared and reviewed?", Type: ResponseScale, Weight: 1.5},
			{Field: "current_cash_available", Text: "How much cash is currently available to the business?", Type: ResponseCurrency, Weight: 1.2, Unit: "USD"},
			{Field: "near_term_expenses", Text: "What are your expected expenses over the next 90 days?", Type: ResponseCurrency, Weight: 1.2, Unit: "USD", Estimate: "near_term_expenses_estimated"},
			{Field: "total_debt_liabilities", Text: "What are your total debt and liabilities?", Type: ResponseCurrency, Weight: 1.0, Unit: "USD"},
			{Field: "total_working_capital", Text: "What is your total working capital?", Type: ResponseCurrency, Weight: 1.0, Unit: "USD"},
			{Field: "profit_margin", Text: "What is your net profit margin?", Type: ResponsePercentage, Weight: 1.5, Unit: "%"},
			{Field: "budgeting_process", Text: "How disciplined is your budgeting process?", Type: ResponseScale, Weight: 1.0},
			{Field: "cash_flow_forecasting", Text: "How well do you forecast cash flow?", Type: ResponseScale, Weight: 1.2, FollowUp: followUpWhenLowScale, FollowUpField: "cash_flow_forecasting_notes"},
			{Field: "revenue_past_year", Text: "What was total revenue over the past year?", Type: ResponseCurrency, Weight: 1.0, Unit: "USD"},
		},
	},
	CategoryHumanResources: {
		ID:      CategoryHumanResources,
		Name:    "Human Resources",
		Chapter: ChapterPeopleLeadership,
		Metrics: humanResourcesMetrics,
		Questions: []questionSpec{
			{Field: "hiring_process", Text: "How effective is your hiring process?", Type: ResponseScale, Weight: 1.2},
			{Field: "employee_count", Text: "How many people does the business employ?", Type: ResponseNumeric, Weight: 0.5, Unit: "employees"},
			{Field: "employee_turnover_rate", Text: "What is your annual employee turnover rate?", Type: ResponsePercentage, Weight: 1.2, Unit: "%", Estimate: "employee_turnover_estimated"},
			{Field: "training_programs", Text: "How developed are your training programs?", Type: ResponseScale, Weight: 1.0},
			{Field: "performance_reviews", Text: "How consistently are performance reviews carried out?", Type: ResponseScale, Weight: 1.0},
			{Field: "compensation_competitiveness", Text: "How competitive is your compensation?", Type: ResponseScale, Weight: 1.0},
			{Field: "employee_handbook", Text: "Do you maintain a current employee handbook?", Type: ResponseBoolean, Weight: 0.8},
			{Field: "employee_engagement", Text: "How engaged are your employees?", Type: ResponseScale, Weight: 1.5},
		},
	},
	CategoryLeadership: {
		ID:      CategoryLeadership,
		Name:    "Leadership",
		Chapter: ChapterPeopleLeadership,
		Metrics: leadershipMetrics,
		Questions: []questionSpec{
			{Field: "leadership_vision_clarity", Text: "How clearly does leadership communicate the company's vision?", Type: ResponseScale, Weight: 1.5},
			{Field: "decision_making_effectiveness", Text: "How effective is decision making at the leadership level?", Type: ResponseScale, Weight: 1.2},
			{Field: "succession_plan", Text: "Is there a documented succession plan for key roles?", Type: ResponseBoolean, Weight: 1.2, FollowUp: followUpWhenFalse, FollowUpField: "succession_plan_details"},
			{Field: "leadership_development", Text: "How much is invested in developing future leaders?", Type: ResponseScale, Weight: 1.0},
			{Field: "owner_hours_per_week", Text: "How many hours per week does the owner work in the business?", Type: ResponseNumeric, Weight: 0.8, Unit: "hours"},
			{Field: "delegation_effectiveness", Text: "How effectively is work delegated?", Type: ResponseScale, Weight: 1.0},
			{Field: "communication_effectiveness", Text: "How effective is communication between leadership and staff?", Type: ResponseScale, Weight: 1.0},
		},
	},
	CategoryTechnology: {
		ID:      CategoryTechnology,
		Name:    "Technology",
		Chapter: ChapterResilienceSafeguards,
		Metrics: technologyMetrics,
		Questions: []questionSpec{
			{Field: "technology_adoption", Text: "How readily does the business adopt new technology?", Type: ResponseScale, Weight: 1.2},
			{Field: "software_integration", Text: "How well integrated are your software systems?", Type: ResponseScale, Weight: 1.0},
			{Field: "technology_budget_percent", Text: "What share of revenue is spent on technology?", Type: ResponsePercentage, Weight: 0.8, Unit: "%"},
			{Field: "digital_tools_usage", Text: "How extensively do staff use digital tools in their work?", Type: ResponseScale, Weight: 1.0},
			{Field: "data_analytics_capability", Text: "How capable is the business at analyzing its own data?", Type: ResponseScale, Weight: 1.2},
			{Field: "ecommerce_capability", Text: "Can customers buy from you online?", Type: ResponseBoolean, Weight: 0.8},
		},
	},
	CategoryITInfrastructure: {
		ID:      CategoryITInfrastructure,
		Name:    "IT Infrastructure",
		Chapter: ChapterResilienceSafeguards,
		Metrics: itInfrastructureMetrics,
		Questions: []questionSpec{
			{Field: "network_reliability", Text: "How reliable is your network?", Type: ResponseScale, Weight: 1.0},
			{Field: "data_backup_frequency", Text: "How often is business data backed up?", Type: ResponseText, Weight: 1.2},
			{Field: "cybersecurity_measures", Text: "How strong are your cybersecurity measures?", Type: ResponseScale, Weight: 1.5},
			{Field: "system_uptime_percent", Text: "What percentage of the time are core systems available?", Type: ResponsePercentage, Weight: 1.0, Unit: "%", Estimate: "system_uptime_estimated"},
			{Field: "it_support_quality", Text: "How would you rate your IT support?", Type: ResponseScale, Weight: 1.0},
			{Field: "disaster_recovery_plan", Text: "Do you have a tested disaster recovery plan?", Type: ResponseBoolean, Weight: 1.5, FollowUp: followUpWhenFalse, FollowUpField: "disaster_recovery_notes"},
			{Field: "hardware_age_years", Text: "What is the average age of your hardware in years?", Type: ResponseNumeric, Weight: 0.5, Unit: "years"},
		},
	},
	CategoryRisk: {
		ID:      CategoryRisk,
		Name:    "Risk Management",
		Chapter: ChapterResilienceSafeguards,
		Metrics: riskMetrics,
		Questions: []questionSpec{
			{Field: "risk_assessment_process", Text: "How formal is your process for identifying and assessing risks?", Type: ResponseScale, Weight: 1.5},
			{Field: "insurance_coverage", Text: "How adequate is your insurance coverage?", Type: ResponseScale, Weight: 1.2},
			{Field: "business_continuity_plan", Text: "Do you have a business continuity plan?", Type: ResponseBoolean, Weight: 1.5, FollowUp: followUpWhenFalse, FollowUpField: "business_continuity_notes"},
			{Field: "key_person_dependency", Text: "How well protected is the business against losing a key person?", Type: ResponseScale, Weight: 1.2},
			{Field: "customer_concentration_percent", Text: "What share of revenue comes from your largest customer?", Type: ResponsePercentage, Weight: 1.0, Unit: "%"},
			{Field: "contingency_planning", Text: "How developed are your contingency plans?", Type: ResponseScale, Weight: 1.0},
		},
	},
	CategoryCompliance: {
		ID:      CategoryCompliance,
		Name:    "Compliance",
		Chapter: ChapterResilienceSafeguards,
		Metrics: complianceMetrics,
		Questions: []questionSpec{
			{Field: "regulatory_awareness", Text: "How aware is the business of the regulations that apply to it?", Type: ResponseScale, Weight: 1.5},
			{Field: "compliance_audits_per_year", Text: "How many compliance audits are carried out each year?", Type: ResponseNumeric, Weight: 0.8, Unit: "audits"},
			{Field: "licenses_current", Text: "Are all required licenses and permits current?", Type: ResponseBoolean, Weight: 1.5, FollowUp: followUpWhenFalse, FollowUpField: "licenses_notes"},
			{Field: "data_privacy_compliance", Text: "How well does the business comply with data privacy requirements?", Type: ResponseScale, Weight: 1.2},
			{Field: "compliance_training", Text: "How regularly do staff receive compliance training?", Type: ResponseScale, Weight: 1.0},
			{Field: "documentation_practices", Text: "How thorough are your compliance documentation practices?", Type: ResponseScale, Weight: 1.0},
			{Field: "compliance_violations_past_year", Text: "How many compliance violations occurred in the past year?", Type: ResponseNumeric, Weight: 1.2, Unit: "violations"},
		},
	},
}
