package enums

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MissionType maps to the mission_type enum in Postgres. Each tag carries a
// fixed numeric weight; a manpower line's mission weight is the sum of the
// weights of all tags assigned to it and scales its duration cost.
type MissionType string

const (
	MissionInsideCity    MissionType = "inside_city"
	MissionOutsideCity   MissionType = "outside_city"
	MissionOverseas      MissionType = "overseas"
	MissionRemoteSupport MissionType = "remote_support"
)

var missionWeights = map[MissionType]decimal.Decimal{
	MissionInsideCity:    decimal.NewFromInt(1),
	MissionOutsideCity:   decimal.NewFromFloat(1.5),
	MissionOverseas:      decimal.NewFromInt(2),
	MissionRemoteSupport: decimal.NewFromFloat(0.5),
}

var validMissionTypes = []MissionType{
	MissionInsideCity,
	MissionOutsideCity,
	MissionOverseas,
	MissionRemoteSupport,
}

// IsValid reports whether the value matches the canonical mission_type enum.
func (m MissionType) IsValid() bool {
	_, ok := missionWeights[m]
	return ok
}

// Weight returns the fixed multiplier for the tag, zero for unknown tags.
func (m MissionType) Weight() decimal.Decimal {
	if w, ok := missionWeights[m]; ok {
		return w
	}
	return decimal.Zero
}

// MissionWeightSum adds up the weights of every tag in the set.
func MissionWeightSum(tags []MissionType) decimal.Decimal {
	sum := decimal.Zero
	for _, tag := range tags {
		sum = sum.Add(tag.Weight())
	}
	return sum
}

// ParseMissionType converts raw input into MissionType.
func ParseMissionType(value string) (MissionType, error) {
	for _, candidate := range validMissionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid mission type %q", value)
}
