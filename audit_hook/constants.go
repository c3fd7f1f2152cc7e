package audithook

// Action constants for audit events.
const (
	// Join actions
	ActionMemberJoined  = "member.joined"
	ActionMemberRenewed = "member.renewed"
	ActionJoinRejected  = "member.join_rejected"

	// Query actions
	ActionMembershipChecked = "membership.checked"

	// Lifecycle actions
	ActionServiceStarted = "service.started"
	ActionServiceStopped = "service.stopped"
)

// Resource constants for audit events.
const (
	ResourceMember  = "member"
	ResourcePayment = "payment"
	ResourceService = "service"
)

// Category constants for audit events.
const (
	CategoryMembership = "membership"
	CategoryPayment    = "payment"
	CategoryAccess     = "access"
	CategorySystem     = "system"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
