package report

import (
	"fmt"
	"maps"
	"strings"

	"github.com/nyashahama/business-health-backend/internal/questionnaire"
	"github.com/nyashahama/business-health-backend/internal/safe"
)

// Rating thresholds used when deriving findings from scale answers.
const (
	strengthRating = 4
	weaknessRating = 2
)

// InsightsFromResponses derives report input from a normalized response
// record so a submission can be reported on without an external insight
// generator. Category score is avg_scale_score × 20; scale answers rated 4+
// become strengths, 2 or below become weaknesses, each weakness contributing
// one stock recommendation. Composite answers join the category metrics and
// chapter scores are carried through on the same 0–100 scale.
func InsightsFromResponses(r questionnaire.QuestionnaireResponses, companyName, industry string) ReportInput {
	in := ReportInput{
		CompanyName: companyName,
		Industry:    industry,
		Categories:  make([]CategoryInsight, 0, len(r.Categories)),
	}

	for _, id := range questionnaire.Categories {
		cat, ok := r.Categories[id]
		if !ok {
			continue
		}
		insight := CategoryInsight{
			ID:         string(id),
			Name:       cat.CategoryName,
			Score:      safe.Round(cat.Metadata.AvgScaleScore*20, 1),
			Strengths:  []string{},
			Weaknesses: []string{},
		}
		if insight.Name == "" {
			insight.Name = questionnaire.CategoryName(id)
		}
		if cat.Metadata.CalculatedMetrics != nil {
			insight.Metrics = cat.Metadata.CalculatedMetrics.Values()
		}

		for _, q := range cat.Questions {
			if q.ResponseValue.IsComposite() && !q.NotApplicable {
				if insight.Metrics == nil {
					insight.Metrics = map[string]float64{}
				}
				maps.Copy(insight.Metrics, q.ResponseValue.Parts())
				continue
			}
			if q.ResponseType != questionnaire.ResponseScale || q.NotApplicable {
				continue
			}
			rating := int(q.ResponseValue.Number())
			finding := fmt.Sprintf("%s Rated %s (%d/5).", q.QuestionText, questionnaire.ScaleLabel(rating), rating)
			switch {
			case rating >= strengthRating:
				insight.Strengths = append(insight.Strengths, finding)
			case rating <= weaknessRating:
				insight.Weaknesses = append(insight.Weaknesses, finding)
				insight.Recommendations = append(insight.Recommendations, stockRecommendation(q.QuestionID, insight.Name))
			}
		}
		in.Categories = append(in.Categories, insight)
	}
	in.Chapters = chapterInsights(r)
	return in
}

// chapterInsights scales each chapter's average rating to 0–100 and lists the
// member categories present in the record. Chapters without a score or with
// no present members are left out.
func chapterInsights(r questionnaire.QuestionnaireResponses) []ChapterInsight {
	var out []ChapterInsight
	for _, ch := range questionnaire.Chapters {
		avg, ok := r.OverallMetrics.ChapterScores[ch]
		if !ok {
			continue
		}
		var names []string
		for _, id := range questionnaire.ChapterMembers(ch) {
			cat, present := r.Categories[id]
			if !present {
				continue
			}
			name := cat.CategoryName
			if name == "" {
				name = questionnaire.CategoryName(id)
			}
			names = append(names, name)
		}
		if len(names) == 0 {
			continue
		}
		out = append(out, ChapterInsight{
			Name:       questionnaire.ChapterName(ch),
			Score:      safe.Round(avg*20, 1),
			Categories: names,
		})
	}
	return out
}

func stockRecommendation(questionID, categoryName string) Recommendation {
	if r, ok := playbook[questionID]; ok {
		return r
	}
	return Recommendation{
		Title:       fmt.Sprintf("Review %s practices", strings.ToLower(categoryName)),
		Description: fmt.Sprintf("Walk through the weakest %s answers with the team and agree one concrete change for each.", strings.ToLower(categoryName)),
		Effort:      "Medium",
		Impact:      "Medium",
	}
}

// playbook holds one stock recommendation per scale question, keyed by
// question id.
var playbook = map[string]Recommendation{
	// strategy
	"strategy_q1": {"Define your competitive edge", "Write down the three reasons customers choose you over competitors and test them with five recent customers.", "Low", "High"},
	"strategy_q5": {"Write a one-page business plan", "Capture goals, target customers and the three priorities for the next 12 months on a single page.", "Low", "High"},
	"strategy_q6": {"Set a quarterly plan review", "Book a recurring quarterly session to compare results with the plan and adjust priorities.", "Low", "Medium"},
	"strategy_q7": {"Draft a growth and exit outline", "Decide where the business should be in five years and what that means for ownership and investment.", "Medium", "Medium"},
	// sales
	"sales_q1": {"Document the sales process", "Map each stage from first contact to close, with the exit criteria for each stage.", "Low", "High"},
	"sales_q5": {"Track the pipeline weekly", "Keep every open opportunity in one shared list or CRM and review it every week.", "Low", "High"},
	"sales_q6": {"Set individual sales targets", "Give each salesperson monthly targets and review activity and conversion with them.", "Medium", "Medium"},
	"sales_q8": {"Compare forecasts with actuals", "Record the monthly forecast and review the variance to improve the next one.", "Low", "Medium"},
	// marketing
	"marketing_q1": {"Write a marketing plan", "Define target segments, key messages and the channels you will use this year.", "Medium", "High"},
	"marketing_q5": {"Build brand recognition locally", "Choose one community channel or partnership to raise awareness with your target customers.", "Medium", "Medium"},
	"marketing_q6": {"Refresh your online presence", "Update the website, claim business listings and publish customer reviews.", "Low", "Medium"},
	"marketing_q7": {"Track marketing return", "Tag every lead with its source and compare cost per customer across channels monthly.", "Low", "High"},
	// customer experience
	"customer_experience_q1": {"Survey customer satisfaction", "Send a short satisfaction survey after each sale or project and act on the lowest scores.", "Low", "High"},
	"customer_experience_q4": {"Set a complaint resolution standard", "Log every complaint, assign an owner and commit to a resolution time.", "Low", "Medium"},
	"customer_experience_q6": {"Train staff on service standards", "Agree what good service looks like and run a short training session for customer-facing staff.", "Medium", "Medium"},
	// operations
	"operations_q1": {"Remove one operational bottleneck", "Identify the step that delays most work and redesign it with the people who do it.", "Medium", "High"},
	"operations_q2": {"Document core processes", "Write simple checklists for the five processes the business cannot run without.", "Low", "High"},
	"operations_q4": {"Introduce quality checks", "Add a check at the end of each key process and track defects weekly.", "Low", "Medium"},
	"operations_q5": {"Secure backup suppliers", "Identify an alternative supplier for each critical input.", "Medium", "Medium"},
	// financials
	"financials_q1": {"Review financial statements monthly", "Close the books each month and review profit and loss and balance sheet with your accountant.", "Low", "High"},
	"financials_q7": {"Set an annual budget", "Build a simple budget for revenue and major cost lines and compare it with actuals monthly.", "Medium", "High"},
	"financials_q8": {"Build a 13-week cash forecast", "Project weekly cash in and out for the next quarter and update it every week.", "Low", "High"},
	// human resources
	"human_resources_q1": {"Standardise hiring", "Use a written role profile, structured interview questions and reference checks for every hire.", "Low", "Medium"},
	"human_resources_q4": {"Create a training plan", "List the skills each role needs and schedule training for the biggest gaps.", "Medium", "Medium"},
	"human_resources_q5": {"Run regular performance reviews", "Hold a short review with each employee at least twice a year against agreed goals.", "Low", "Medium"},
	"human_resources_q6": {"Benchmark compensation", "Compare pay for key roles with local market rates and close the largest gaps.", "Medium", "Medium"},
	"human_resources_q8": {"Measure employee engagement", "Run an anonymous pulse survey and share the results and actions with staff.", "Low", "High"},
	// leadership
	"leadership_q1": {"Communicate the vision", "Share the company vision and yearly goals with all staff and revisit them quarterly.", "Low", "High"},
	"leadership_q2": {"Set a decision-making cadence", "Agree which decisions are made where and hold a short weekly leadership meeting.", "Low", "Medium"},
	"leadership_q4": {"Develop future leaders", "Pick two potential leaders and give each a stretch responsibility with coaching.", "Medium", "Medium"},
	"leadership_q6": {"Delegate recurring owner tasks", "List the tasks the owner does every week and hand off at least three of them.", "Low", "High"},
	"leadership_q7": {"Hold regular team briefings", "Run a short monthly all-hands covering results, priorities and questions.", "Low", "Medium"},
	// technology
	"technology_q1": {"Create a technology roadmap", "List the tools the business relies on and plan which to adopt, upgrade or retire this year.", "Medium", "Medium"},
	"technology_q2": {"Integrate core systems", "Connect sales, accounting and operations tools so data is entered only once.", "High", "High"},
	"technology_q4": {"Adopt digital collaboration tools", "Move shared documents and task tracking to one cloud tool used by the whole team.", "Low", "Medium"},
	"technology_q5": {"Build a basic KPI dashboard", "Track five key numbers in one place and review them weekly.", "Medium", "High"},
	// IT infrastructure
	"it_infrastructure_q1": {"Stabilise the network", "Have the network assessed and replace the weakest equipment.", "Medium", "Medium"},
	"it_infrastructure_q3": {"Strengthen cybersecurity basics", "Turn on multi-factor authentication, patch systems and train staff on phishing.", "Low", "High"},
	"it_infrastructure_q5": {"Formalise IT support", "Agree a support arrangement with response times for critical systems.", "Medium", "Medium"},
	// risk
	"risk_q1": {"Create a risk register", "List the top ten risks, their likelihood and impact, and an owner for each.", "Low", "High"},
	"risk_q2": {"Review insurance coverage", "Check policies against your risk register with a broker and close material gaps.", "Low", "High"},
	"risk_q4": {"Reduce key-person dependency", "Document the knowledge held by key people and cross-train a backup for each.", "Medium", "High"},
	"risk_q6": {"Write contingency plans", "Plan the first response to your three most likely disruptions.", "Medium", "Medium"},
	// compliance
	"compliance_q1": {"Map your regulatory obligations", "List the regulations that apply to the business and who is responsible for each.", "Low", "High"},
	"compliance_q4": {"Review data privacy practices", "Check how customer data is collected, stored and deleted against current requirements.", "Medium", "High"},
	"compliance_q5": {"Schedule compliance training", "Run annual compliance training for all staff and record attendance.", "Low", "Medium"},
	"compliance_q6": {"Centralise compliance records", "Keep licences, policies and audit evidence in one maintained location.", "Low", "Medium"},
}
