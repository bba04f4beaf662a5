package store

import (
	"context"
	"time"

	"github.com/ravin1100/Zoop-FNOL-Agent/internal/model"
)

// groupCount is one row of a GROUP BY count query
type groupCount struct {
	Label string
	Total int
}

// Dashboard computes the aggregate reporting payload. The reference time
// anchors the today/this-week/this-month buckets (weeks start Monday,
// months on the 1st).
func (s *Store) Dashboard(ctx context.Context, now time.Time) (*model.Dashboard, error) {
	db := s.db.WithContext(ctx)
	dash := &model.Dashboard{}

	var totalClaims int64
	if err := db.Model(&ClaimRecord{}).Count(&totalClaims).Error; err != nil {
		return nil, &PersistenceError{Err: err}
	}
	dash.TotalClaims = int(totalClaims)

	var err error
	if dash.RiskDistribution, err = s.countBy(ctx, &AssessmentRecord{}, "risk_category"); err != nil {
		return nil, err
	}
	if dash.PriorityDistribution, err = s.countBy(ctx, &AssessmentRecord{}, "priority"); err != nil {
		return nil, err
	}
	if dash.AdjusterDistribution, err = s.countBy(ctx, &AssessmentRecord{}, "adjuster_tier"); err != nil {
		return nil, err
	}
	if dash.ClaimTypeDistribution, err = s.countBy(ctx, &ClaimRecord{}, "type"); err != nil {
		return nil, err
	}

	if err := s.fillProcessingStats(ctx, dash); err != nil {
		return nil, err
	}
	if err := s.fillTimeBuckets(ctx, dash, now); err != nil {
		return nil, err
	}
	if err := s.fillAmountMetrics(ctx, dash); err != nil {
		return nil, err
	}
	if err := s.fillRecentActivity(ctx, dash); err != nil {
		return nil, err
	}
	if err := s.fillHighRiskLocations(ctx, dash); err != nil {
		return nil, err
	}

	return dash, nil
}

// countBy groups rows of the given table by one column
func (s *Store) countBy(ctx context.Context, table any, column string) (map[string]int, error) {
	var rows []groupCount
	err := s.db.WithContext(ctx).
		Model(table).
		Select(column + " AS label, COUNT(*) AS total").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, &PersistenceError{Err: err}
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Label] = row.Total
	}
	return counts, nil
}

func (s *Store) fillProcessingStats(ctx context.Context, dash *model.Dashboard) error {
	db := s.db.WithContext(ctx)

	var total, highRisk int64
	if err := db.Model(&AssessmentRecord{}).Count(&total).Error; err != nil {
		return &PersistenceError{Err: err}
	}
	if err := db.Model(&AssessmentRecord{}).Where("risk_category = ?", string(model.RiskHigh)).Count(&highRisk).Error; err != nil {
		return &PersistenceError{Err: err}
	}

	var avgScore float64
	if err := db.Model(&AssessmentRecord{}).Select("COALESCE(AVG(risk_score), 0)").Scan(&avgScore).Error; err != nil {
		return &PersistenceError{Err: err}
	}

	stats := model.ProcessingStats{
		TotalProcessed: int(total),
		FraudDetected:  int(highRisk),
		AvgRiskScore:   avgScore,
	}
	// Fraud rate is 0 when nothing has been assessed
	if total > 0 {
		stats.FraudRate = float64(highRisk) / float64(total) * 100
	}
	dash.ProcessingStats = stats
	return nil
}

func (s *Store) fillTimeBuckets(ctx context.Context, dash *model.Dashboard, now time.Time) error {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	// Monday-start week
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	weekStart := dayStart.AddDate(0, 0, -(weekday - 1))
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	count := func(since time.Time) (int, error) {
		var n int64
		err := s.db.WithContext(ctx).
			Model(&ClaimRecord{}).
			Where("timestamp_submitted >= ?", since).
			Count(&n).Error
		if err != nil {
			return 0, &PersistenceError{Err: err}
		}
		return int(n), nil
	}

	var err error
	if dash.RecentClaims.Today, err = count(dayStart); err != nil {
		return err
	}
	if dash.RecentClaims.ThisWeek, err = count(weekStart); err != nil {
		return err
	}
	if dash.RecentClaims.ThisMonth, err = count(monthStart); err != nil {
		return err
	}
	return nil
}

func (s *Store) fillAmountMetrics(ctx context.Context, dash *model.Dashboard) error {
	var row struct {
		Total   float64
		Average float64
		Highest float64
		Lowest  float64
	}
	err := s.db.WithContext(ctx).
		Model(&ClaimRecord{}).
		Select("COALESCE(SUM(amount), 0) AS total, COALESCE(AVG(amount), 0) AS average, COALESCE(MAX(amount), 0) AS highest, COALESCE(MIN(amount), 0) AS lowest").
		Scan(&row).Error
	if err != nil {
		return &PersistenceError{Err: err}
	}

	dash.AmountMetrics = model.AmountMetrics{
		TotalAmount:   row.Total,
		AverageAmount: row.Average,
		HighestAmount: row.Highest,
		LowestAmount:  row.Lowest,
	}
	return nil
}

func (s *Store) fillRecentActivity(ctx context.Context, dash *model.Dashboard) error {
	var records []AssessmentRecord
	err := s.db.WithContext(ctx).
		Preload("Claim").
		Order("claim_key DESC").
		Limit(10).
		Find(&records).Error
	if err != nil {
		return &PersistenceError{Err: err}
	}

	dash.RecentActivity = make([]model.RecentActivity, 0, len(records))
	for i := range records {
		r := &records[i]
		dash.RecentActivity = append(dash.RecentActivity, model.RecentActivity{
			ClaimID:   r.Claim.ClaimID,
			Type:      r.Claim.Type,
			Amount:    r.Claim.Amount,
			RiskLevel: r.RiskCategory,
			Priority:  r.Priority,
			Submitted: r.Claim.Submitted,
		})
	}
	return nil
}

func (s *Store) fillHighRiskLocations(ctx context.Context, dash *model.Dashboard) error {
	var rows []groupCount
	err := s.db.WithContext(ctx).
		Model(&AssessmentRecord{}).
		Joins("JOIN claims ON claims.id = claim_assessments.claim_key").
		Where("claim_assessments.risk_category = ?", string(model.RiskHigh)).
		Select("claims.incident_location AS label, COUNT(*) AS total").
		Group("claims.incident_location").
		Order("total DESC").
		Limit(5).
		Scan(&rows).Error
	if err != nil {
		return &PersistenceError{Err: err}
	}

	dash.HighRiskLocations = make([]string, 0, len(rows))
	for _, row := range rows {
		dash.HighRiskLocations = append(dash.HighRiskLocations, row.Label)
	}
	return nil
}
