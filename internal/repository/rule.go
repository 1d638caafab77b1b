package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banci/banci/pkg/model"
)

// RuleRepository 劳动规则仓储
type RuleRepository struct {
	db DB
}

// NewRuleRepository 创建劳动规则仓储
func NewRuleRepository(db DB) *RuleRepository {
	return &RuleRepository{db: db}
}

// Create 创建规则
func (r *RuleRepository) Create(ctx context.Context, rule *model.LaborRule) error {
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	now := time.Now()
	rule.CreatedAt = now
	rule.UpdatedAt = now

	query := `
		INSERT INTO labor_rules (
			id, name, category, type, subtype, min_value, max_value, unit, active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(ctx, query,
		rule.ID, rule.Name, rule.Category, rule.Type, rule.Subtype,
		rule.MinValue, rule.MaxValue, rule.Unit, rule.Active, rule.CreatedAt, rule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建规则失败: %w", err)
	}

	return nil
}

// GetByID 根据ID获取规则
func (r *RuleRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.LaborRule, error) {
	query := `
		SELECT id, name, category, type, subtype, min_value, max_value, unit, active, created_at, updated_at
		FROM labor_rules
		WHERE id = $1
	`

	rule := &model.LaborRule{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&rule.ID, &rule.Name, &rule.Category, &rule.Type, &rule.Subtype,
		&rule.MinValue, &rule.MaxValue, &rule.Unit, &rule.Active, &rule.CreatedAt, &rule.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询规则失败: %w", err)
	}

	return rule, nil
}

// Update 更新规则
func (r *RuleRepository) Update(ctx context.Context, rule *model.LaborRule) error {
	rule.UpdatedAt = time.Now()

	query := `
		UPDATE labor_rules SET
			name = $2, category = $3, type = $4, subtype = $5,
			min_value = $6, max_value = $7, unit = $8, active = $9, updated_at = $10
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		rule.ID, rule.Name, rule.Category, rule.Type, rule.Subtype,
		rule.MinValue, rule.MaxValue, rule.Unit, rule.Active, rule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("更新规则失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("规则不存在")
	}

	return nil
}

// Delete 删除规则
func (r *RuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM labor_rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("删除规则失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("规则不存在")
	}

	return nil
}

// ListActive 获取启用中的规则，按创建时间升序（先建规则先匹配）
func (r *RuleRepository) ListActive(ctx context.Context) ([]model.LaborRule, error) {
	query := `
		SELECT id, name, category, type, subtype, min_value, max_value, unit, active, created_at, updated_at
		FROM labor_rules
		WHERE active = TRUE
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询规则失败: %w", err)
	}
	defer rows.Close()

	var rules []model.LaborRule
	for rows.Next() {
		var rule model.LaborRule
		if err := rows.Scan(
			&rule.ID, &rule.Name, &rule.Category, &rule.Type, &rule.Subtype,
			&rule.MinValue, &rule.MaxValue, &rule.Unit, &rule.Active, &rule.CreatedAt, &rule.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("扫描规则失败: %w", err)
		}
		rules = append(rules, rule)
	}

	return rules, rows.Err()
}

// Seed 规则表为空时写入一套标准规则
func (r *RuleRepository) Seed(ctx context.Context, rules []model.LaborRule) error {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM labor_rules`).Scan(&count); err != nil {
		return fmt.Errorf("统计规则失败: %w", err)
	}
	if count > 0 {
		return nil
	}

	for i := range rules {
		if err := r.Create(ctx, &rules[i]); err != nil {
			return err
		}
	}
	return nil
}
