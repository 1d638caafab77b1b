package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/banci/banci/pkg/model"
)

// RunRepository 排班运行仓储
type RunRepository struct {
	db DB
}

// NewRunRepository 创建排班运行仓储
func NewRunRepository(db DB) *RunRepository {
	return &RunRepository{db: db}
}

// shiftDetail 班次 JSONB 明细：休息窗口与违规记录
type shiftDetail struct {
	Break      *model.BreakWindow `json:"break,omitempty"`
	MealBreak  *model.BreakWindow `json:"meal_break,omitempty"`
	Violations []model.Violation  `json:"violations,omitempty"`
}

// Create 写入一次运行及其产出班次
func (r *RunRepository) Create(ctx context.Context, run *model.ScheduleRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	now := time.Now()
	run.CreatedAt = now
	run.UpdatedAt = now
	run.ShiftCount = len(run.Shifts)

	payload, err := json.Marshal(run.Payload)
	if err != nil {
		return fmt.Errorf("序列化运行摘要失败: %w", err)
	}

	query := `
		INSERT INTO schedule_runs (
			id, day_type, kind, shift_count, warning_count, payload, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	if _, err := r.db.ExecContext(ctx, query,
		run.ID, run.DayType, run.Kind, run.ShiftCount, run.WarningCount,
		payload, run.CreatedAt, run.UpdatedAt,
	); err != nil {
		return fmt.Errorf("创建运行记录失败: %w", err)
	}

	for _, shift := range run.Shifts {
		if err := r.createShift(ctx, run.ID, shift); err != nil {
			return err
		}
	}

	return nil
}

// createShift 写入单条班次
func (r *RunRepository) createShift(ctx context.Context, runID uuid.UUID, shift *model.Shift) error {
	if shift.ID == uuid.Nil {
		shift.ID = uuid.New()
	}
	now := time.Now()
	shift.CreatedAt = now
	shift.UpdatedAt = now

	detail, err := json.Marshal(shiftDetail{
		Break:      shift.Break,
		MealBreak:  shift.MealBreak,
		Violations: shift.Violations,
	})
	if err != nil {
		return fmt.Errorf("序列化班次明细失败: %w", err)
	}

	query := `
		INSERT INTO shifts (
			id, run_id, code, zone, day_type, start_minute, end_minute,
			total_hours, compliant, origin, vehicle_count, detail, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	if _, err := r.db.ExecContext(ctx, query,
		shift.ID, runID, shift.Code, shift.Zone, shift.DayType,
		shift.StartMinute, shift.EndMinute, shift.TotalHours, shift.Compliant,
		shift.Origin, shift.VehicleCount, detail, shift.CreatedAt, shift.UpdatedAt,
	); err != nil {
		return fmt.Errorf("创建班次失败: %w", err)
	}

	return nil
}

// GetByID 获取运行记录及其班次
func (r *RunRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ScheduleRun, error) {
	query := `
		SELECT id, day_type, kind, shift_count, warning_count, payload, created_at, updated_at
		FROM schedule_runs
		WHERE id = $1
	`

	run := &model.ScheduleRun{}
	var payload []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&run.ID, &run.DayType, &run.Kind, &run.ShiftCount, &run.WarningCount,
		&payload, &run.CreatedAt, &run.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询运行记录失败: %w", err)
	}

	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &run.Payload); err != nil {
			return nil, fmt.Errorf("解析运行摘要失败: %w", err)
		}
	}

	shifts, err := r.listShifts(ctx, id)
	if err != nil {
		return nil, err
	}
	run.Shifts = shifts

	return run, nil
}

// listShifts 加载运行的全部班次，按区域和起点排序
func (r *RunRepository) listShifts(ctx context.Context, runID uuid.UUID) ([]*model.Shift, error) {
	query := `
		SELECT id, code, zone, day_type, start_minute, end_minute,
			total_hours, compliant, origin, vehicle_count, detail, created_at, updated_at
		FROM shifts
		WHERE run_id = $1
		ORDER BY zone, start_minute, code
	`

	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("查询班次失败: %w", err)
	}
	defer rows.Close()

	var shifts []*model.Shift
	for rows.Next() {
		shift := &model.Shift{}
		var detail []byte
		if err := rows.Scan(
			&shift.ID, &shift.Code, &shift.Zone, &shift.DayType,
			&shift.StartMinute, &shift.EndMinute, &shift.TotalHours, &shift.Compliant,
			&shift.Origin, &shift.VehicleCount, &detail, &shift.CreatedAt, &shift.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("扫描班次失败: %w", err)
		}

		if len(detail) > 0 {
			var d shiftDetail
			if err := json.Unmarshal(detail, &d); err != nil {
				return nil, fmt.Errorf("解析班次明细失败: %w", err)
			}
			shift.Break = d.Break
			shift.MealBreak = d.MealBreak
			shift.Violations = d.Violations
		}

		shifts = append(shifts, shift)
	}

	return shifts, rows.Err()
}

// List 按过滤条件查询运行记录（不含班次）
func (r *RunRepository) List(ctx context.Context, filter ListFilter) ([]*model.ScheduleRun, int, error) {
	var conditions []string
	var args []interface{}
	argIdx := 1

	if filter.DayType != "" {
		conditions = append(conditions, fmt.Sprintf("day_type = $%d", argIdx))
		args = append(args, filter.DayType)
		argIdx++
	}
	if filter.Kind != "" {
		conditions = append(conditions, fmt.Sprintf("kind = $%d", argIdx))
		args = append(args, filter.Kind)
		argIdx++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM schedule_runs %s", where)
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("统计运行记录失败: %w", err)
	}

	orderBy := "created_at"
	if filter.OrderBy != "" {
		orderBy = filter.OrderBy
	}
	orderDir := "DESC"
	if strings.EqualFold(filter.OrderDir, "asc") {
		orderDir = "ASC"
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	query := fmt.Sprintf(`
		SELECT id, day_type, kind, shift_count, warning_count, payload, created_at, updated_at
		FROM schedule_runs
		%s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, where, orderBy, orderDir, argIdx, argIdx+1)
	args = append(args, limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("查询运行记录失败: %w", err)
	}
	defer rows.Close()

	var runs []*model.ScheduleRun
	for rows.Next() {
		run := &model.ScheduleRun{}
		var payload []byte
		if err := rows.Scan(
			&run.ID, &run.DayType, &run.Kind, &run.ShiftCount, &run.WarningCount,
			&payload, &run.CreatedAt, &run.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("扫描运行记录失败: %w", err)
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &run.Payload); err != nil {
				return nil, 0, fmt.Errorf("解析运行摘要失败: %w", err)
			}
		}
		runs = append(runs, run)
	}

	return runs, total, rows.Err()
}
