package workflow

import (
	"fmt"

	"github.com/Hernesto-SRL/management-front/internal/inventory"
	"github.com/Hernesto-SRL/management-front/internal/locale"
	"github.com/Hernesto-SRL/management-front/internal/submission"
)

// State is the controller's current screen.
type State int

const (
	Scanning State = iota
	ManualEntry
	Loading
	Disambiguation
	RecordForm
	ErrorDisplay
)

func (s State) String() string {
	switch s {
	case Scanning:
		return "scanning"
	case ManualEntry:
		return "manual-entry"
	case Loading:
		return "loading"
	case Disambiguation:
		return "disambiguation"
	case RecordForm:
		return "record-form"
	case ErrorDisplay:
		return "error-display"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// acceptsCapture reports whether a new code may start a lookup.
func (s State) acceptsCapture() bool {
	return s == Scanning || s == ManualEntry || s == Loading
}

// profile is the per-kind behavior of the shared controller.
type profile struct {
	// disambiguate offers product registration when the code is unknown.
	disambiguate bool
	// blankForm allows opening an empty record form without a lookup.
	blankForm bool
	payload   submission.Kind
	success   string
	failure   string
}

var profiles = map[inventory.WorkflowKind]profile{
	inventory.KindRegisterProduct: {
		blankForm: true,
		payload:   submission.KindProduct,
		success:   locale.SuccessProduct,
		failure:   locale.ErrorProduct,
	},
	inventory.KindRegisterBatch: {
		disambiguate: true,
		payload:      submission.KindBatch,
		success:      locale.SuccessBatch,
		failure:      locale.ErrorBatch,
	},
	inventory.KindStockEntry: {
		disambiguate: true,
		payload:      submission.KindStockEntry,
		success:      locale.SuccessStockEntry,
		failure:      locale.ErrorStock,
	},
	inventory.KindStockExit: {
		payload: submission.KindStockExit,
		success: locale.SuccessStockExit,
		failure: locale.ErrorStock,
	},
}

// SupportsBlankForm reports whether kind can open a record form without a
// lookup.
func SupportsBlankForm(kind inventory.WorkflowKind) bool {
	return profiles[kind].blankForm
}
