package profile

// Questionnaire holds raw answers from the digital business
// questionnaire before conversion into a Profile. Checkbox answers map
// one-to-one onto feature tags.
type Questionnaire struct {
	BusinessSizeSqm int    `json:"business_size_sqm" yaml:"business_size_sqm"`
	SeatingCapacity int    `json:"seating_capacity" yaml:"seating_capacity"`
	UsesGas         bool   `json:"uses_gas" yaml:"uses_gas"`
	ServesMeat      bool   `json:"serves_meat" yaml:"serves_meat"`
	OffersDelivery  bool   `json:"offers_delivery" yaml:"offers_delivery"`
	ServesAlcohol   bool   `json:"serves_alcohol" yaml:"serves_alcohol"`
	BusinessName    string `json:"business_name,omitempty" yaml:"business_name,omitempty"`
	AdditionalNotes string `json:"additional_notes,omitempty" yaml:"additional_notes,omitempty"`
}

// ToProfile converts the questionnaire answers into a Profile. The
// result still requires Validate before entering the pipeline.
func (q *Questionnaire) ToProfile() *Profile {
	var features []Feature
	if q.UsesGas {
		features = append(features, FeatureGasUsage)
	}
	if q.ServesMeat {
		features = append(features, FeatureMeat)
	}
	if q.OffersDelivery {
		features = append(features, FeatureDelivery)
	}
	if q.ServesAlcohol {
		features = append(features, FeatureAlcohol)
	}

	return &Profile{
		SizeSqm:        q.BusinessSizeSqm,
		CapacityPeople: q.SeatingCapacity,
		Features:       features,
		BusinessType:   DefaultBusiness,
		BusinessName:   q.BusinessName,
		Notes:          q.AdditionalNotes,
	}
}
