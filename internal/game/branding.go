package game

// Branding is the company identity carried through saves. Rendering lives elsewhere.
type Branding struct {
	CompanyName    string `json:"company_name"`
	LogoStyle      string `json:"logo_style"`
	PrimaryColor   string `json:"primary_color"`
	SecondaryColor string `json:"secondary_color"`
}

// DefaultBranding is used for new games and for saves without branding.
func DefaultBranding() Branding {
	return Branding{
		CompanyName:    "My Tech Company",
		LogoStyle:      "modern",
		PrimaryColor:   "#3b82f6",
		SecondaryColor: "#8b5cf6",
	}
}
