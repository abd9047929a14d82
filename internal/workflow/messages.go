package workflow

import (
	"github.com/Hernesto-SRL/management-front/internal/inventory"
	"github.com/Hernesto-SRL/management-front/internal/lookup"
	"github.com/Hernesto-SRL/management-front/internal/submission"
)

// LookupDoneMsg carries a resolver outcome back to the controller that issued
// the request identified by Ticket.
type LookupDoneMsg struct {
	Ticket  string
	Code    inventory.ScannedCode
	Outcome lookup.Outcome

	// HandoffErr is the failure of the shared intake context write made
	// before the lookup.
	HandoffErr error
}

// HandoffMsg carries the code a redirect target read from the shared intake
// context.
type HandoffMsg struct {
	Ticket string
	Code   inventory.ScannedCode
	Found  bool
	Err    error
}

// SubmitDoneMsg carries a gateway result.
type SubmitDoneMsg struct {
	Ticket  string
	Payload submission.Payload
	Ack     submission.Ack
	Err     error
}

// RefDataMsg reports a reference collection fetch.
type RefDataMsg struct {
	Collection string
	Err        error
}

// RedirectMsg asks the host to mount Target. The code is already in the
// shared intake context.
type RedirectMsg struct {
	Target inventory.WorkflowKind
	Code   inventory.ScannedCode
}

// CompletedMsg is emitted after a successful submission so the host can
// clear any selection it keeps outside the controller.
type CompletedMsg struct {
	Kind    inventory.WorkflowKind
	Payload submission.Payload
}
