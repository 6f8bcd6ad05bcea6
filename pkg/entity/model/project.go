package model

import (
	"strings"
	"time"
)

// Project is one tracked site owned by a user. SiteCode and APIToken are nil until
// the owner connects the project to the analytics provider.
type Project struct {
	ID        ID        `json:"id"`
	OwnerID   ID        `json:"ownerId"`
	Name      string    `json:"name"`
	SiteCode  *string   `json:"siteCode"`
	APIToken  *string   `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Configured reports whether both the site code and the API token are set.
func (p *Project) Configured() bool {
	return p.SiteCodeValue() != "" && p.APITokenValue() != ""
}

func (p *Project) SiteCodeValue() string {
	if p.SiteCode == nil {
		return ""
	}
	return strings.TrimSpace(*p.SiteCode)
}

func (p *Project) APITokenValue() string {
	if p.APIToken == nil {
		return ""
	}
	return strings.TrimSpace(*p.APIToken)
}
