package workflow

// Trigger represents an action that can cause a status transition
type Trigger string

const (
	TriggerForward         Trigger = "FORWARD"
	TriggerRequestApproval Trigger = "REQUEST_APPROVAL"
	TriggerApprove         Trigger = "APPROVE"
	TriggerReject          Trigger = "REJECT"
	TriggerHold            Trigger = "HOLD"
	TriggerRaiseIssue      Trigger = "RAISE_ISSUE"
	TriggerResume          Trigger = "RESUME"
	TriggerComplete        Trigger = "COMPLETE"
	TriggerMarkReady       Trigger = "MARK_READY"
	TriggerVerify          Trigger = "VERIFY"
	TriggerDispatch        Trigger = "DISPATCH"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
