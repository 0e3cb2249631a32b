package questionnaire

import "github.com/nyashahama/business-health-backend/internal/safe"

var chapterMembers = map[ChapterID][]CategoryID{
	ChapterGrowthEngine:         {CategoryStrategy, CategorySales, CategoryMarketing, CategoryCustomerExperience},
	ChapterPerformanceHealth:    {CategoryOperations, CategoryFinancials},
	ChapterPeopleLeadership:     {CategoryHumanResources, CategoryLeadership},
	ChapterResilienceSafeguards: {CategoryTechnology, CategoryITInfrastructure, CategoryRisk, CategoryCompliance},
}

// ChapterMembers returns the fixed category membership of a chapter.
func ChapterMembers(id ChapterID) []CategoryID {
	return append([]CategoryID(nil), chapterMembers[id]...)
}

// Aggregate combines category outputs into overall completion and chapter
// scores. Categories are visited in canonical order so float sums are stable.
func Aggregate(cats map[CategoryID]CategoryResponses) OverallMetrics {
	var m OverallMetrics
	var avgSum float64
	var avgCount int

	for _, id := range Categories {
		c, ok := cats[id]
		if !ok {
			continue
		}
		m.TotalQuestions += c.Metadata.TotalQuestions
		m.TotalAnswered += c.Metadata.QuestionsAnswered
		if c.Metadata.AvgScaleScore > 0 {
			avgSum += c.Metadata.AvgScaleScore
			avgCount++
		}
	}

	if m.TotalQuestions > 0 {
		m.CompletionRate = safe.Round(safe.Clamp(float64(m.TotalAnswered)/float64(m.TotalQuestions)*100, 0, 100), 1)
	}
	if avgCount > 0 {
		m.OverallAvgScaleScore = safe.Round(avgSum/float64(avgCount), 2)
	}

	m.ChapterScores = make(map[ChapterID]float64, len(Chapters))
	for _, ch := range Chapters {
		m.ChapterScores[ch] = chapterScore(cats, chapterMembers[ch])
	}
	return m
}

func chapterScore(cats map[CategoryID]CategoryResponses, members []CategoryID) float64 {
	var sum float64
	var n int
	for _, id := range members {
		c, ok := cats[id]
		if !ok {
			continue
		}
		sum += c.Metadata.AvgScaleScore
		n++
	}
	if n == 0 {
		return 0
	}
	return safe.Round(sum/float64(n), 2)
}
