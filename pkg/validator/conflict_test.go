package validator

import (
	"testing"

	"github.com/banci/banci/pkg/model"
)

func shiftWith(code string, start, end int) *model.Shift {
	return &model.Shift{
		Code:         code,
		Zone:         model.ZoneNorth,
		DayType:      model.DayWeekday,
		StartMinute:  start,
		EndMinute:    end,
		VehicleCount: 1,
	}
}

func countType(conflicts []Conflict, t ConflictType) int {
	n := 0
	for _, c := range conflicts {
		if c.Type == t {
			n++
		}
	}
	return n
}

func TestDetect_Clean(t *testing.T) {
	shifts := []*model.Shift{
		shiftWith("N1", 300, 780),
		shiftWith("N2", 780, 1260),
	}
	if conflicts := Detect(shifts); len(conflicts) != 0 {
		t.Errorf("不应有冲突: %+v", conflicts)
	}
}

func TestDetect_DuplicateCode(t *testing.T) {
	shifts := []*model.Shift{
		shiftWith("N1", 300, 780),
		shiftWith("N1", 780, 1260),
	}
	conflicts := Detect(shifts)
	if countType(conflicts, ConflictDuplicateCode) != 1 {
		t.Errorf("应检出一处编号重复: %+v", conflicts)
	}
}

func TestDetect_OutsideDay(t *testing.T) {
	shifts := []*model.Shift{shiftWith("N1", 180, 600)}
	conflicts := Detect(shifts)
	if countType(conflicts, ConflictOutsideDay) != 1 {
		t.Errorf("应检出越出服务日: %+v", conflicts)
	}
}

func TestDetect_BreakOutside(t *testing.T) {
	s := shiftWith("N1", 600, 1140)
	s.Break = &model.BreakWindow{StartMinute: 570, EndMinute: 610, DurationMinutes: 40}
	conflicts := Detect([]*model.Shift{s})
	if countType(conflicts, ConflictBreakOutside) != 1 {
		t.Errorf("应检出休息越界: %+v", conflicts)
	}
}

func TestDetect_MisalignedAndZeroVehicles(t *testing.T) {
	s := shiftWith("N1", 305, 780)
	s.VehicleCount = 0
	conflicts := Detect([]*model.Shift{s})
	if countType(conflicts, ConflictMisaligned) != 1 {
		t.Errorf("应检出未对齐: %+v", conflicts)
	}
	if countType(conflicts, ConflictZeroVehicles) != 1 {
		t.Errorf("应检出车辆数为零: %+v", conflicts)
	}
}
