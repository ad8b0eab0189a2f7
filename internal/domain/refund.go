package domain

import "time"

type RefundRequestStatus string

const (
	RefundRequestStatusPending   RefundRequestStatus = "pending"
	RefundRequestStatusApproved  RefundRequestStatus = "approved"
	RefundRequestStatusRejected  RefundRequestStatus = "rejected"
	RefundRequestStatusProcessed RefundRequestStatus = "processed"
)

type RefundType string

const (
	RefundTypeFull    RefundType = "full"
	RefundTypePartial RefundType = "partial"
)

// RefundRequest is a user-initiated dispute on a completed payment, distinct
// from a direct admin refund. It is adjudicated by an admin, may be appealed
// by the user after rejection, and may be reopened by an admin. Requests are
// never deleted; the decision history lives in RefundDecision rows.
type RefundRequest struct {
	ID                int32               `json:"id"`
	PaymentID         int32               `json:"paymentId"`
	UserID            int32               `json:"userId"`
	Type              RefundType          `json:"type"`
	RequestedAmount   int64               `json:"requestedAmount"`
	AdminRefundAmount *int64              `json:"adminRefundAmount,omitempty"`
	Reason            string              `json:"reason"`
	Status            RefundRequestStatus `json:"status"`
	AdminNotes        string              `json:"adminNotes,omitempty"`
	ProcessedBy       *int32              `json:"processedBy,omitempty"`
	ProcessedAt       *time.Time          `json:"processedAt,omitempty"`
	IsAppealed        bool                `json:"isAppealed"`
	AppealReason      string              `json:"appealReason,omitempty"`
	AppealText        string              `json:"appealText,omitempty"`
	AppealedAt        *time.Time          `json:"appealedAt,omitempty"`
	CaseReopened      bool                `json:"caseReopened"`
	CaseReopenedAt    *time.Time          `json:"caseReopenedAt,omitempty"`
	ReopenReason      string              `json:"reopenReason,omitempty"`
	CreatedOn         time.Time           `json:"createdOn"`
	UpdatedOn         time.Time           `json:"updatedOn"`
}

// Open reports whether the request still occupies its payment's single
// open-request slot.
func (r *RefundRequest) Open() bool {
	return r.Status == RefundRequestStatusPending || r.Status == RefundRequestStatusApproved
}

// RefundDecisionAction labels an entry in a request's append-only audit trail.
type RefundDecisionAction string

const (
	RefundActionRequested RefundDecisionAction = "requested"
	RefundActionApproved  RefundDecisionAction = "approved"
	RefundActionRejected  RefundDecisionAction = "rejected"
	RefundActionProcessed RefundDecisionAction = "processed"
	RefundActionAppealed  RefundDecisionAction = "appealed"
	RefundActionReopened  RefundDecisionAction = "reopened"
)

// RefundDecision is one append-only audit entry for a refund request. Reopening
// a request resets its live fields but these rows are never touched, so the
// full dispute history stays inspectable.
type RefundDecision struct {
	ID        int32                `json:"id"`
	RequestID int32                `json:"requestId"`
	Action    RefundDecisionAction `json:"action"`
	ActorID   int32                `json:"actorId"`
	Notes     string               `json:"notes,omitempty"`
	Amount    *int64               `json:"amount,omitempty"`
	CreatedOn time.Time            `json:"createdOn"`
}
