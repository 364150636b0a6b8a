// Package constants holds provider names, contract method names and backend routes.
package constants

const (
	EnvDevelop    = "develop"
	EnvProduction = "production"
)

const (
	PubSubProviderLocal  = "local"
	PubSubProviderGoogle = "google"

	LedgerProviderEthereum = "ethereum"
	LedgerProviderMemory   = "memory"
)

// Contract methods.
const (
	MethodCreateRawMaterial         = "createRawMaterial"
	MethodRequestRawMaterial        = "requestRawMaterial"
	MethodApproveRawMaterialRequest = "approveRawMaterialRequest"
	MethodSupplierCancelRequest     = "supplierCancelRawMaterialRequest"
	MethodCreateEquipment           = "createEquipment"
	MethodVerifyEquipment           = "verifyEquipment"
	MethodOrderEquipment            = "orderEquipment"
	MethodShipEquipment             = "shipEquipment"
	MethodIsEquipmentAvailable      = "isEquipmentAvailableForOrder"
	MethodUserDetails               = "userDetails"
	MethodSuppliers                 = "suppliers"
	MethodRawMaterialCount          = "rawMaterialCount"
	EventRawMaterialCreated         = "RawMaterialCreated"
	EventRawMaterialRequested       = "RawMaterialRequested"
	EventEquipmentCreated           = "EquipmentCreated"
	EventFieldRawID                 = "rawId"
	EventFieldRequestID             = "requestId"
	EventFieldEquipmentID           = "equipmentId"
)

// DefaultGasLimits are the per-method gas limits sent with each write.
//
//nolint:gochecknoglobals
var DefaultGasLimits = map[string]uint64{
	MethodCreateRawMaterial:         300000,
	MethodRequestRawMaterial:        500000,
	MethodApproveRawMaterialRequest: 500000,
	MethodSupplierCancelRequest:     500000,
	MethodCreateEquipment:           500000,
	MethodVerifyEquipment:           500000,
	MethodOrderEquipment:            300000,
	MethodShipEquipment:             300000,
}

// Metadata backend routes.
const (
	EndpointRaw                     = "/api/raw"
	EndpointRawAll                  = "/api/raw/all"
	EndpointRequestAdd              = "/api/raw-material-requests/add"
	EndpointSupplierRequests        = "/api/raw-material-requests/supplier/%s/requests"
	EndpointApprovedAction          = "/api/supplier-approved-requests/action"
	EndpointApprovedUpdateUsed      = "/api/supplier-approved-requests/update-used"
	EndpointApprovedByManufacturer  = "/api/supplier-approved-requests/manufacturer/%s"
	EndpointEquipment               = "/api/equipment"
	EndpointEquipmentCreate         = "/api/equipment/create"
	EndpointEquipmentVerified       = "/api/equipment/verified"
	EndpointEquipmentNames          = "/api/equipment/names"
	EndpointEquipmentVerify         = "/api/equipment/verify/%s"
	EndpointStakeholderVerification = "/api/stakeholder-verification/create"
	EndpointOrders                  = "/api/orders"
	EndpointOrderShip               = "/api/orders/ship/%s"
	EndpointTransporterOrder        = "/api/transporter-orders/create"
	EndpointUserRegister            = "/api/user/register"
	EndpointUserLogin               = "/api/user/login"
	EndpointUserLogout              = "/api/user/logout"
	EndpointUserMe                  = "/api/user/me"
	EndpointUserAll                 = "/api/user/all"
	EndpointUserByWallet            = "/api/user/byWallet/%s"
)

// UnknownName is shown when a party's display name cannot be read.
const UnknownName = "Unknown"
