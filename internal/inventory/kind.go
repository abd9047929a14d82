package inventory

import (
	"fmt"
	"strings"
)

// WorkflowKind selects which intake flow a controller instance runs.
type WorkflowKind int

const (
	KindRegisterProduct WorkflowKind = iota + 1
	KindRegisterBatch
	KindStockEntry
	KindStockExit
)

// WorkflowKinds lists the intake kinds in menu order.
var WorkflowKinds = []WorkflowKind{
	KindStockEntry,
	KindStockExit,
	KindRegisterProduct,
	KindRegisterBatch,
}

func (k WorkflowKind) String() string {
	switch k {
	case KindRegisterProduct:
		return "register-product"
	case KindRegisterBatch:
		return "register-batch"
	case KindStockEntry:
		return "stock-entry"
	case KindStockExit:
		return "stock-exit"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Valid reports whether k is one of the four intake kinds.
func (k WorkflowKind) Valid() bool {
	return k >= KindRegisterProduct && k <= KindStockExit
}

// ParseWorkflowKind accepts the String form, case-insensitively.
func ParseWorkflowKind(value string) (WorkflowKind, error) {
	target := strings.ToLower(strings.TrimSpace(value))
	for _, kind := range WorkflowKinds {
		if kind.String() == target {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("inventory: unknown workflow kind %q", value)
}
