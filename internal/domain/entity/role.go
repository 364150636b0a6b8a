package entity

import (
	"slices"
	"strings"
)

// Role represents the marketplace party a user acts as.
type Role string

const (
	RoleSupplier     Role = "supplier"
	RoleManufacturer Role = "manufacturer"
	RoleStakeholder  Role = "stakeholder"
	RoleHospital     Role = "hospital"
	RoleTransporter  Role = "transporter"
	RoleSuperAdmin   Role = "superadmin"
)

// ParseRole normalizes a role string. Unknown values yield an invalid Role.
func ParseRole(s string) Role {
	return Role(strings.ToLower(strings.TrimSpace(s)))
}

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the Role is a valid value.
func (r Role) IsValid() bool {
	switch r {
	case RoleSupplier, RoleManufacturer, RoleStakeholder, RoleHospital, RoleTransporter, RoleSuperAdmin:
		return true
	default:
		return false
	}
}

// Action is a user-initiated operation gated by role.
type Action string

const (
	ActionCreateRawMaterial      Action = "create_raw_material"
	ActionRequestRawMaterial     Action = "request_raw_material"
	ActionApproveOrCancelRequest Action = "approve_or_cancel_request"
	ActionCreateEquipment        Action = "create_equipment"
	ActionVerifyEquipment        Action = "verify_equipment"
	ActionPlaceOrder             Action = "place_order"
	ActionShipOrder              Action = "ship_order"
	ActionPredictEquipment       Action = "predict_equipment_demand"
	ActionPredictRawMaterial     Action = "predict_raw_material_demand"
	ActionReconcile              Action = "reconcile"
)

// String returns the string representation of the Action.
func (a Action) String() string {
	return string(a)
}

var capabilities = map[Role][]Action{
	RoleSupplier:     {ActionCreateRawMaterial, ActionApproveOrCancelRequest, ActionPredictRawMaterial},
	RoleManufacturer: {ActionRequestRawMaterial, ActionCreateEquipment, ActionPredictEquipment},
	RoleStakeholder:  {ActionVerifyEquipment},
	RoleHospital:     {ActionPlaceOrder},
	RoleTransporter:  {ActionShipOrder},
	RoleSuperAdmin:   {ActionReconcile},
}

// Can reports whether the role is allowed to perform the action.
func (r Role) Can(action Action) bool {
	return slices.Contains(capabilities[r], action)
}

// Actions lists what the role may do.
func (r Role) Actions() []Action {
	return slices.Clone(capabilities[r])
}
