package entity

// Prediction is the demand estimate for one named item.
type Prediction struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
}

// EquipmentDemandQuery asks how much of each equipment a hospital will need on a date.
type EquipmentDemandQuery struct {
	HospitalEmail string
	Names         []string
	Date          PredictionDate
}

// RawMaterialDemandQuery asks how much of each raw material a manufacturer will need on a date.
type RawMaterialDemandQuery struct {
	SupplierEmail     string
	ManufacturerEmail string
	Names             []string
	Date              PredictionDate
}
