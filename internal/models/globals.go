package models

// SiteSettings is the "settings" global.
type SiteSettings struct {
	SiteName        string       `json:"siteName,omitempty"`
	SiteDescription string       `json:"siteDescription,omitempty"`
	Logo            string       `json:"logo,omitempty"`
	Favicon         string       `json:"favicon,omitempty"`
	Contact         *SiteContact `json:"contact,omitempty"`
	SocialMedia     *SocialMedia `json:"socialMedia,omitempty"`
	Footer          string       `json:"footer,omitempty"`
}

// SiteContact holds organization contact details.
type SiteContact struct {
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// About is the "about" global.
type About struct {
	History     string `json:"history,omitempty"`
	Vision      string `json:"vision,omitempty"`
	Mission     string `json:"mission,omitempty"`
	Values      string `json:"values,omitempty"`
	Description string `json:"description,omitempty"`
}

// NavItem is one menu entry.
type NavItem struct {
	Label    string    `json:"label"`
	URL      string    `json:"url"`
	Children []NavItem `json:"children,omitempty"`
}

// Navigation is the "navigation" global.
type Navigation struct {
	MainMenu   []NavItem `json:"mainMenu,omitempty"`
	FooterMenu []NavItem `json:"footerMenu,omitempty"`
}
