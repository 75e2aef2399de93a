package core

// Entity names used in error reports, alert headers and log fields.
const (
	EntityCaseDefinition = "caseDefinition"
	EntityExamine        = "examine"
)

// Resource path segments under /api.
const (
	ResourceCaseDefinitions = "case-definitions"
	ResourceExamines        = "examines"
)

// MaxTextLength bounds every free-text column.
const MaxTextLength = 255

// MaxErrorMessageLength limits error messages returned to clients.
const MaxErrorMessageLength = 500

// Page size bounds for listings.
const (
	DefaultPageSize = 20
	MaxPageSize     = 1000
)
