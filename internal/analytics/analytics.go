package analytics

import (
	"database/sql"
	"fmt"
	"math"
	"sort"
)

// DB is the interface for database queries used by analytics.
type DB interface {
	Conn() *sql.DB
}

// Overview holds aggregate migration stats.
type Overview struct {
	Total       int     `json:"total"`
	Completed   int     `json:"completed"`
	Failed      int     `json:"failed"`
	Running     int     `json:"running"`
	SuccessRate float64 `json:"success_rate_pct"`
	AvgDuration float64 `json:"avg_duration_seconds"`
	UniqueFiles int     `json:"unique_files"`
}

// QueryOverview returns aggregate stats across all migrations. A non-empty
// since filters to migrations started at or after that timestamp.
func QueryOverview(database DB, since string) (*Overview, error) {
	query := `
		SELECT COUNT(*),
			SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END),
			SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END),
			SUM(CASE WHEN status = 'running' THEN 1 ELSE 0 END),
			AVG(CASE WHEN duration_ms IS NOT NULL THEN duration_ms / 1000.0 END),
			COUNT(DISTINCT file_path)
		FROM migrations`

	args := []interface{}{}
	if since != "" {
		query += ` WHERE started_at >= ?`
		args = append(args, since)
	}

	var o Overview
	var completed, failed, running sql.NullInt64
	var avgDur sql.NullFloat64
	err := database.Conn().QueryRow(query, args...).Scan(
		&o.Total, &completed, &failed, &running, &avgDur, &o.UniqueFiles)
	if err != nil {
		return nil, fmt.Errorf("query overview: %w", err)
	}
	o.Completed = int(completed.Int64)
	o.Failed = int(failed.Int64)
	o.Running = int(running.Int64)
	finished := o.Completed + o.Failed
	o.SuccessRate = pct(o.Completed, finished)
	if avgDur.Valid {
		o.AvgDuration = math.Round(avgDur.Float64*10) / 10
	}
	return &o, nil
}

// ComponentStats holds per-component migration stats.
type ComponentStats struct {
	Component   string  `json:"component"`
	Total       int     `json:"total"`
	Completed   int     `json:"completed"`
	Failed      int     `json:"failed"`
	SuccessRate float64 `json:"success_rate_pct"`
	AvgDuration float64 `json:"avg_duration_seconds"`
}

// QueryComponentStats returns migration stats grouped by component, worst
// success rate first.
func QueryComponentStats(database DB, since string) ([]ComponentStats, error) {
	query := `
		SELECT component_name,
			COUNT(*),
			SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END),
			SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END),
			AVG(CASE WHEN duration_ms IS NOT NULL THEN duration_ms / 1000.0 END)
		FROM migrations`

	args := []interface{}{}
	if since != "" {
		query += ` WHERE started_at >= ?`
		args = append(args, since)
	}
	query += ` GROUP BY component_name`

	rows, err := database.Conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query component stats: %w", err)
	}
	defer rows.Close()

	var results []ComponentStats
	for rows.Next() {
		var cs ComponentStats
		var avgDur sql.NullFloat64
		if err := rows.Scan(&cs.Component, &cs.Total, &cs.Completed, &cs.Failed, &avgDur); err != nil {
			return nil, fmt.Errorf("scan component stats: %w", err)
		}
		cs.SuccessRate = pct(cs.Completed, cs.Completed+cs.Failed)
		if avgDur.Valid {
			cs.AvgDuration = math.Round(avgDur.Float64*10) / 10
		}
		results = append(results, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].SuccessRate != results[j].SuccessRate {
			return results[i].SuccessRate < results[j].SuccessRate
		}
		return results[i].Component < results[j].Component
	})
	return results, nil
}

// StepStats holds per-step-type validation stats.
type StepStats struct {
	StepType     string  `json:"step_type"`
	Total        int     `json:"total"`
	PassRate     float64 `json:"pass_rate_pct"`
	AvgAttempts  float64 `json:"avg_attempts"`
	LLMUsedRate  float64 `json:"llm_used_pct"`
	CommonErrors string  `json:"common_errors,omitempty"`
}

// QueryStepStats returns validation stats grouped by step type, including the
// most frequent error messages for each.
func QueryStepStats(database DB, since string) ([]StepStats, error) {
	query := `
		SELECT vs.step_type,
			COUNT(*),
			SUM(CASE WHEN vs.success = 1 THEN 1 ELSE 0 END),
			AVG(vs.attempts),
			SUM(CASE WHEN vs.llm_used = 1 THEN 1 ELSE 0 END)
		FROM validation_steps vs`

	args := []interface{}{}
	if since != "" {
		query += ` JOIN migrations m ON m.id = vs.migration_id WHERE m.started_at >= ?`
		args = append(args, since)
	}
	query += ` GROUP BY vs.step_type`

	rows, err := database.Conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query step stats: %w", err)
	}
	defer rows.Close()

	var results []StepStats
	for rows.Next() {
		var ss StepStats
		var passed, llmUsed int
		var avgAttempts sql.NullFloat64
		if err := rows.Scan(&ss.StepType, &ss.Total, &passed, &avgAttempts, &llmUsed); err != nil {
			return nil, fmt.Errorf("scan step stats: %w", err)
		}
		ss.PassRate = pct(passed, ss.Total)
		ss.LLMUsedRate = pct(llmUsed, ss.Total)
		if avgAttempts.Valid {
			ss.AvgAttempts = math.Round(avgAttempts.Float64*10) / 10
		}
		results = append(results, ss)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Top error messages per step type
	for i := range results {
		msgQuery := `
			SELECT error_message, COUNT(*) as cnt
			FROM error_logs
			WHERE error_type = ? AND error_message != ''`
		mArgs := []interface{}{results[i].StepType}
		if since != "" {
			msgQuery += ` AND created_at >= ?`
			mArgs = append(mArgs, since)
		}
		msgQuery += ` GROUP BY error_message ORDER BY cnt DESC LIMIT 3`

		mRows, err := database.Conn().Query(msgQuery, mArgs...)
		if err != nil {
			continue
		}
		var msgs []string
		for mRows.Next() {
			var msg string
			var cnt int
			if err := mRows.Scan(&msg, &cnt); err != nil {
				break
			}
			msgs = append(msgs, msg)
		}
		_ = mRows.Err()
		mRows.Close()
		if len(msgs) > 0 {
			results[i].CommonErrors = msgs[0]
			if len(msgs) > 1 {
				results[i].CommonErrors += ", " + msgs[1]
			}
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].StepType < results[j].StepType
	})
	return results, nil
}

// WeeklyTrend holds migration throughput for one week.
type WeeklyTrend struct {
	Period      string  `json:"period"`
	Started     int     `json:"started"`
	Completed   int     `json:"completed"`
	Failed      int     `json:"failed"`
	SuccessRate float64 `json:"success_rate_pct"`
}

// QueryWeeklyTrend returns migration counts grouped by week, newest first.
func QueryWeeklyTrend(database DB, since string) ([]WeeklyTrend, error) {
	query := `
		SELECT
			strftime('%Y-W%W', started_at) as period,
			COUNT(*),
			SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END),
			SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END)
		FROM migrations`

	args := []interface{}{}
	if since != "" {
		query += ` WHERE started_at >= ?`
		args = append(args, since)
	}
	query += ` GROUP BY period ORDER BY period DESC LIMIT 10`

	rows, err := database.Conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query weekly trend: %w", err)
	}
	defer rows.Close()

	var results []WeeklyTrend
	for rows.Next() {
		var wt WeeklyTrend
		if err := rows.Scan(&wt.Period, &wt.Started, &wt.Completed, &wt.Failed); err != nil {
			return nil, fmt.Errorf("scan weekly trend: %w", err)
		}
		wt.SuccessRate = pct(wt.Completed, wt.Completed+wt.Failed)
		results = append(results, wt)
	}
	return results, rows.Err()
}

// MigrationEvent holds a single timeline entry for migration-detail view.
type MigrationEvent struct {
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Event     string `json:"event"`
	Detail    string `json:"detail,omitempty"`
}

// QueryMigrationDetail returns the step and error timeline for one migration.
func QueryMigrationDetail(database DB, migrationID string) ([]MigrationEvent, error) {
	var results []MigrationEvent

	stepRows, err := database.Conn().Query(
		`SELECT created_at, step_type, status, attempts, error_count
		 FROM validation_steps WHERE migration_id = ? ORDER BY step_order`,
		migrationID,
	)
	if err != nil {
		return nil, fmt.Errorf("query validation steps: %w", err)
	}
	defer stepRows.Close()

	for stepRows.Next() {
		var ts, stepType, status string
		var attempts, errorCount int
		if err := stepRows.Scan(&ts, &stepType, &status, &attempts, &errorCount); err != nil {
			return nil, fmt.Errorf("scan validation step: %w", err)
		}
		results = append(results, MigrationEvent{
			Timestamp: ts,
			Type:      "step",
			Event:     stepType,
			Detail:    fmt.Sprintf("%s (attempts=%d, errors=%d)", status, attempts, errorCount),
		})
	}
	if err := stepRows.Err(); err != nil {
		return nil, err
	}

	errRows, err := database.Conn().Query(
		`SELECT created_at, error_type, error_code, error_message, line_number
		 FROM error_logs WHERE migration_id = ? ORDER BY created_at, id`,
		migrationID,
	)
	if err != nil {
		return nil, fmt.Errorf("query error logs: %w", err)
	}
	defer errRows.Close()

	for errRows.Next() {
		var ts, errType, msg string
		var code sql.NullString
		var line sql.NullInt64
		if err := errRows.Scan(&ts, &errType, &code, &msg, &line); err != nil {
			return nil, fmt.Errorf("scan error log: %w", err)
		}
		detail := msg
		if code.Valid && code.String != "" {
			detail = code.String + ": " + detail
		}
		if line.Valid {
			detail = fmt.Sprintf("%s (line %d)", detail, line.Int64)
		}
		results = append(results, MigrationEvent{
			Timestamp: ts,
			Type:      "error",
			Event:     errType,
			Detail:    detail,
		})
	}
	if err := errRows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Timestamp < results[j].Timestamp
	})
	return results, nil
}

func pct(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(n)/float64(total)*1000) / 10
}
