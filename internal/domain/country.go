package domain

// Option pairs a submitted form value with its display label.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// CountryOptions maps country codes accepted by the intake form to display names.
var CountryOptions = []Option{
	{Value: "mexico", Label: "Mexico"},
	{Value: "brazil", Label: "Brazil"},
	{Value: "russia", Label: "Russia"},
	{Value: "south-korea", Label: "South Korea"},
	{Value: "france", Label: "France"},
	{Value: "china", Label: "China"},
	{Value: "india", Label: "India"},
}

// VisaOptions lists the visa categories a lead may select.
var VisaOptions = []Option{
	{Value: "O-1", Label: "O-1 Visa"},
	{Value: "EB-1A", Label: "EB-1A Visa"},
	{Value: "EB-2 NIW", Label: "EB-2 NIW"},
	{Value: "I don't know", Label: "I don't know"},
}

// CountryName resolves a country code to its display name.
// Unknown codes are returned unchanged.
func CountryName(code string) string {
	for _, opt := range CountryOptions {
		if opt.Value == code {
			return opt.Label
		}
	}
	return code
}

// IsKnownVisa reports whether v is one of VisaOptions.
func IsKnownVisa(v string) bool {
	for _, opt := range VisaOptions {
		if opt.Value == v {
			return true
		}
	}
	return false
}
