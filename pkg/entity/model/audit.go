package model

import "time"

// CredentialCheck is the result of verifying one project's credentials.
type CredentialCheck struct {
	ProjectID   ID     `json:"projectId"`
	ProjectName string `json:"projectName"`
	SiteCode    string `json:"siteCode"`
	OK          bool   `json:"ok"`
	Error       string `json:"error,omitempty"`
}

// AuditReport is the outcome of one credential audit run.
type AuditReport struct {
	StartedAt  time.Time         `json:"startedAt"`
	FinishedAt time.Time         `json:"finishedAt"`
	Checks     []CredentialCheck `json:"checks"`
	Failed     int               `json:"failed"`
}

// Failures returns the checks that did not pass.
func (r *AuditReport) Failures() []CredentialCheck {
	var out []CredentialCheck
	for _, c := range r.Checks {
		if !c.OK {
			out = append(out, c)
		}
	}
	return out
}
