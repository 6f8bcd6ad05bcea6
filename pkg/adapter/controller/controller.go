package controller

// Controller struct holds the controller of the entire app
type Controller struct {
	Dashboard       interface{ Dashboard }
	CredentialAudit interface{ CredentialAudit }
}
