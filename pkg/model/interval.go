package model

// 时间轴均以 15 分钟为粒度，键为距零点的分钟数。
// 04:00 之前的时段视为次日，已在解析时 +1440，因此全天窗口为 [240, 1500)。

// RequirementInterval 需求时段：某日类型某时段各区域所需人数
type RequirementInterval struct {
	DayType     DayType `json:"day_type" db:"day_type"`
	StartMinute int     `json:"start_minute" db:"start_minute"`
	North       int     `json:"north" db:"north"`
	South       int     `json:"south" db:"south"`
	Floater     int     `json:"floater" db:"floater"`
}

// Required 返回指定区域的所需人数
func (r *RequirementInterval) Required(zone Zone) int {
	switch zone {
	case ZoneNorth:
		return r.North
	case ZoneSouth:
		return r.South
	case ZoneFloater:
		return r.Floater
	default:
		return 0
	}
}

// OperationalInterval 运营时段：某日类型某时段各区域实际排勤人数
type OperationalInterval struct {
	DayType     DayType `json:"day_type" db:"day_type"`
	StartMinute int     `json:"start_minute" db:"start_minute"`
	North       int     `json:"north" db:"north"`
	South       int     `json:"south" db:"south"`
	Floater     int     `json:"floater" db:"floater"`
	OnBreak     int     `json:"on_break" db:"on_break"` // 该时段处于休息中的人数
}

// Scheduled 返回指定区域的排勤人数
func (o *OperationalInterval) Scheduled(zone Zone) int {
	switch zone {
	case ZoneNorth:
		return o.North
	case ZoneSouth:
		return o.South
	case ZoneFloater:
		return o.Floater
	default:
		return 0
	}
}

// CoverageStatus 覆盖状态
type CoverageStatus string

const (
	StatusDeficit  CoverageStatus = "deficit"  // 缺口
	StatusBalanced CoverageStatus = "balanced" // 平衡
	StatusExcess   CoverageStatus = "excess"   // 盈余
)

// CoverageInterval 覆盖时段（计算结果，产出后不再修改）
type CoverageInterval struct {
	DayType     DayType `json:"day_type"`
	StartMinute int     `json:"start_minute"`

	RequiredNorth   int `json:"required_north"`
	RequiredSouth   int `json:"required_south"`
	RequiredFloater int `json:"required_floater"`

	OperationalNorth   int `json:"operational_north"`
	OperationalSouth   int `json:"operational_south"`
	OperationalFloater int `json:"operational_floater"`

	// 机动人力分配：先补北区，再补南区
	FloaterToNorth int `json:"floater_to_north"`
	FloaterToSouth int `json:"floater_to_south"`

	NorthExcess   int `json:"north_excess"`
	SouthExcess   int `json:"south_excess"`
	FloaterExcess int `json:"floater_excess"`
	TotalExcess   int `json:"total_excess"`

	Status CoverageStatus `json:"status"`
}

// Required 返回指定区域的需求人力
func (c *CoverageInterval) Required(zone Zone) int {
	switch zone {
	case ZoneNorth:
		return c.RequiredNorth
	case ZoneSouth:
		return c.RequiredSouth
	case ZoneFloater:
		return c.RequiredFloater
	default:
		return 0
	}
}

// Operational 返回指定区域的在班人力
func (c *CoverageInterval) Operational(zone Zone) int {
	switch zone {
	case ZoneNorth:
		return c.OperationalNorth
	case ZoneSouth:
		return c.OperationalSouth
	case ZoneFloater:
		return c.OperationalFloater
	default:
		return 0
	}
}

// Excess 返回指定区域的盈亏
func (c *CoverageInterval) Excess(zone Zone) int {
	switch zone {
	case ZoneNorth:
		return c.NorthExcess
	case ZoneSouth:
		return c.SouthExcess
	case ZoneFloater:
		return c.FloaterExcess
	default:
		return 0
	}
}

// ScaleRange 色阶范围（对称，供展示层渲染热力图）
type ScaleRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// DeficitBlock 缺口区块：同一区域内连续缺口时段的合并
type DeficitBlock struct {
	Zone            Zone    `json:"zone"`
	DayType         DayType `json:"day_type"`
	StartMinute     int     `json:"start_minute"`
	EndMinute       int     `json:"end_minute"`
	DurationMinutes int     `json:"duration_minutes"`
	VehicleHours    float64 `json:"vehicle_hours"`  // Σ 缺口 × 时段长/60
	PeakShortfall   int     `json:"peak_shortfall"` // 区块内最大缺口人数
}
