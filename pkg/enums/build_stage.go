package enums

import "fmt"

// BuildStage maps to the build_stage enum in Postgres. It tracks how far a
// draft project has advanced through the staged-build pipeline; each
// association call moves the stage forward explicitly rather than inferring
// it from which collections happen to be non-empty.
type BuildStage string

const (
	BuildStageBasicInfo BuildStage = "basic_info"
	BuildStageVehicles  BuildStage = "vehicles"
	BuildStageManpower  BuildStage = "manpower"
	BuildStageMaterials BuildStage = "materials"
	BuildStageAssets    BuildStage = "assets"
	BuildStageCompleted BuildStage = "completed"
)

var validBuildStages = []BuildStage{
	BuildStageBasicInfo,
	BuildStageVehicles,
	BuildStageManpower,
	BuildStageMaterials,
	BuildStageAssets,
	BuildStageCompleted,
}

var buildStageOrder = map[BuildStage]int{
	BuildStageBasicInfo: 2,
	BuildStageVehicles:  3,
	BuildStageManpower:  4,
	BuildStageMaterials: 5,
	BuildStageAssets:    6,
	BuildStageCompleted: 7,
}

// IsValid reports whether the value matches the canonical build_stage enum.
func (s BuildStage) IsValid() bool {
	for _, candidate := range validBuildStages {
		if candidate == s {
			return true
		}
	}
	return false
}

// StepNumber returns the wizard step the stage corresponds to. Basic info is
// step 2; step 1 (the deal/lead source) lives outside the project pipeline.
func (s BuildStage) StepNumber() int {
	if n, ok := buildStageOrder[s]; ok {
		return n
	}
	return 2
}

// Advance returns the later of the two stages so an out-of-order association
// call never moves a draft backwards.
func (s BuildStage) Advance(to BuildStage) BuildStage {
	if buildStageOrder[to] > buildStageOrder[s] {
		return to
	}
	return s
}

// ParseBuildStage converts raw input into BuildStage.
func ParseBuildStage(value string) (BuildStage, error) {
	for _, candidate := range validBuildStages {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid build stage %q", value)
}
