package enums

import "fmt"

// ActivityAction maps to the activity_action enum in Postgres.
type ActivityAction string

const (
	ActivityProjectCreated     ActivityAction = "project_created"
	ActivityProjectUpdated     ActivityAction = "project_updated"
	ActivityVehiclesAssociated ActivityAction = "vehicles_associated"
	ActivityManpowerAdded      ActivityAction = "manpower_added"
	ActivityManpowerUpdated    ActivityAction = "manpower_updated"
	ActivityManpowerRemoved    ActivityAction = "manpower_removed"
	ActivityMaterialsReplaced  ActivityAction = "materials_replaced"
	ActivityAssetsAssociated   ActivityAction = "assets_associated"
	ActivityProjectCompleted   ActivityAction = "project_completed"
	ActivitySealedEditAttempt  ActivityAction = "sealed_edit_attempt"
)

var validActivityActions = []ActivityAction{
	ActivityProjectCreated,
	ActivityProjectUpdated,
	ActivityVehiclesAssociated,
	ActivityManpowerAdded,
	ActivityManpowerUpdated,
	ActivityManpowerRemoved,
	ActivityMaterialsReplaced,
	ActivityAssetsAssociated,
	ActivityProjectCompleted,
	ActivitySealedEditAttempt,
}

// IsValid reports whether the value matches the canonical activity_action enum.
func (a ActivityAction) IsValid() bool {
	for _, candidate := range validActivityActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseActivityAction converts raw input into ActivityAction.
func ParseActivityAction(value string) (ActivityAction, error) {
	for _, candidate := range validActivityActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid activity action %q", value)
}
