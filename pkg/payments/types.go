// Package payments implements the unified payment entry: a type-polymorphic
// payment record with a capture/void state machine that settles a linked
// rent invoice or financial record and mirrors itself into the bookkeeping
// table on completion.
package payments

// Flow directions. Derived from the payment type, never set by callers.
const (
	FlowIncome   = "income"
	FlowOutgoing = "outgoing"
)

// The closed set of payment types.
const (
	TypeRent               = "rent"
	TypeMaintenanceExpense = "maintenance_expense"
	TypeSecurityRefund     = "security_refund"
	TypeFee                = "fee"
	TypeOtherIncome        = "other_income"
	TypeOtherOutgoing      = "other_outgoing"
)

// Statuses.
const (
	StatusDraft     = "draft"
	StatusPending   = "pending"
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusPartial   = "partial"
	StatusCancelled = "cancelled"
	StatusFailed    = "failed"
	StatusRefunded  = "refunded"
)

type typeSpec struct {
	Flow               string
	RequiresTenantUnit bool
	DefaultStatus      string
	Label              string
}

var typeSpecs = map[string]typeSpec{
	TypeRent:               {Flow: FlowIncome, RequiresTenantUnit: true, DefaultStatus: StatusPending, Label: "Rent"},
	TypeMaintenanceExpense: {Flow: FlowOutgoing, RequiresTenantUnit: true, DefaultStatus: StatusPending, Label: "Maintenance Expense"},
	TypeSecurityRefund:     {Flow: FlowOutgoing, RequiresTenantUnit: true, DefaultStatus: StatusPending, Label: "Security Deposit Refund"},
	TypeFee:                {Flow: FlowIncome, RequiresTenantUnit: true, DefaultStatus: StatusPending, Label: "Fee"},
	TypeOtherIncome:        {Flow: FlowIncome, RequiresTenantUnit: false, DefaultStatus: StatusPending, Label: "Other Income"},
	TypeOtherOutgoing:      {Flow: FlowOutgoing, RequiresTenantUnit: false, DefaultStatus: StatusPending, Label: "Other Outgoing"},
}

var allowedStatuses = map[string]bool{
	StatusDraft:     true,
	StatusPending:   true,
	StatusScheduled: true,
	StatusCompleted: true,
	StatusPartial:   true,
	StatusCancelled: true,
	StatusFailed:    true,
	StatusRefunded:  true,
}

// IsTerminal reports whether a status accepts no further capture or void.
func IsTerminal(status string) bool {
	return status == StatusCancelled || status == StatusFailed || status == StatusRefunded
}

// IsSettled reports whether a status triggers source update and mirroring.
func IsSettled(status string) bool {
	return status == StatusCompleted || status == StatusPartial
}

// TypeLabel returns the display label for a payment type, or the raw value
// for unknown types.
func TypeLabel(paymentType string) string {
	if spec, ok := typeSpecs[paymentType]; ok {
		return spec.Label
	}
	return paymentType
}
