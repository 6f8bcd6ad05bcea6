package environment

import "statsboard-backend/config"

// Application environments, re-exported for callers that should not import config directly.
const (
	Development = config.Development
	Test        = config.Test
	E2E         = config.E2E
	Staging     = config.Staging
	Production  = config.Production
)
