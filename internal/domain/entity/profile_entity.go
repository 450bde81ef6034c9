package entity

// Profile is one public persona of a user. It is owned by exactly one User.
type Profile struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	PhoneNo   string `json:"phoneNo,omitempty"`
	About     string `json:"about,omitempty"`
	Links     []Link `json:"links"`
	URLSlug   string `json:"urlSlug"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// Link is an external link shown on a profile.
type Link struct {
	Platform    string `json:"platform"`
	URL         string `json:"url"`
	IsCustom    bool   `json:"isCustom"`
	CustomTitle string `json:"customTitle,omitempty"`
	IsPrivate   bool   `json:"isPrivate"`
}

// PublicLinks returns the links that may be shown to anonymous visitors.
func (p *Profile) PublicLinks() []Link {
	out := make([]Link, 0, len(p.Links))
	for _, l := range p.Links {
		if !l.IsPrivate {
			out = append(out, l)
		}
	}
	return out
}
