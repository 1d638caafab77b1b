// Package optimizer 提供覆盖缺口识别与整改建议
package optimizer

import (
	"github.com/banci/banci/pkg/model"
	"github.com/banci/banci/pkg/timegrid"
)

// DetectBlocks 在覆盖时间轴上按区域独立扫描，把连续的缺口时段
// 合并为缺口区块。时间轴须按时段起点升序。
func DetectBlocks(dayType model.DayType, timeline []model.CoverageInterval) []model.DeficitBlock {
	var blocks []model.DeficitBlock

	for _, zone := range model.AllZones() {
		var current *model.DeficitBlock

		for _, ci := range timeline {
			excess := ci.Excess(zone)

			if excess >= 0 {
				if current != nil {
					blocks = append(blocks, *current)
					current = nil
				}
				continue
			}

			shortfall := -excess
			if current != nil && ci.StartMinute == current.EndMinute {
				// 连续缺口时段并入当前区块
				current.EndMinute = ci.StartMinute + timegrid.StepMinutes
				current.DurationMinutes = current.EndMinute - current.StartMinute
				current.VehicleHours += float64(shortfall) * timegrid.StepMinutes / 60.0
				if shortfall > current.PeakShortfall {
					current.PeakShortfall = shortfall
				}
				continue
			}

			if current != nil {
				blocks = append(blocks, *current)
			}
			current = &model.DeficitBlock{
				Zone:            zone,
				DayType:         dayType,
				StartMinute:     ci.StartMinute,
				EndMinute:       ci.StartMinute + timegrid.StepMinutes,
				DurationMinutes: timegrid.StepMinutes,
				VehicleHours:    float64(shortfall) * timegrid.StepMinutes / 60.0,
				PeakShortfall:   shortfall,
			}
		}

		if current != nil {
			blocks = append(blocks, *current)
		}
	}

	return blocks
}
