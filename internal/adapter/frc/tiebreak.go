package frc

import "EventSync/internal/adapter"

// seasonTiebreakCriteria playoff tiebreak order per game year; fouls are points awarded to the alliance
var seasonTiebreakCriteria = map[int][]adapter.Criterion{
	2023: {
		{Field: "foulPoints"},
		{Field: "totalChargeStationPoints"},
		{Field: "autoPoints"},
	},
	2024: {
		{Field: "foulPoints"},
		{Field: "autoPoints"},
		{Field: "endGameTotalStagePoints"},
	},
	2025: {
		{Field: "foulPoints"},
		{Field: "autoPoints"},
		{Field: "endGameBargePoints"},
	},
}
