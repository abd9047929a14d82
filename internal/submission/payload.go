package submission

import (
	"fmt"

	"github.com/Hernesto-SRL/management-front/internal/inventory"
)

// Kind identifies a submission payload shape.
type Kind int

const (
	KindProduct Kind = iota + 1
	KindBatch
	KindStockEntry
	KindStockExit
	KindWarehouse
	KindCategory
)

func (k Kind) String() string {
	switch k {
	case KindProduct:
		return "product"
	case KindBatch:
		return "batch"
	case KindStockEntry:
		return "stock-entry"
	case KindStockExit:
		return "stock-exit"
	case KindWarehouse:
		return "warehouse"
	case KindCategory:
		return "category"
	default:
		return fmt.Sprintf("submission(%d)", int(k))
	}
}

// KindFor maps an intake workflow to the payload it submits.
func KindFor(kind inventory.WorkflowKind) Kind {
	switch kind {
	case inventory.KindRegisterProduct:
		return KindProduct
	case inventory.KindRegisterBatch:
		return KindBatch
	case inventory.KindStockEntry:
		return KindStockEntry
	case inventory.KindStockExit:
		return KindStockExit
	default:
		return 0
	}
}

// Payload is a completed form ready for validation and submission.
type Payload interface {
	Kind() Kind
}

// ProductPayload registers a new catalog product.
type ProductPayload struct {
	Name             string              `json:"name" validate:"required,max=50"`
	Description      string              `json:"description" validate:"max=250"`
	CategoryID       int                 `json:"categoryId" validate:"gt=0"`
	ShelfLife        inventory.ShelfLife `json:"shelfLife" validate:"min=0,max=6"`
	Barcode          string              `json:"barcode" validate:"required,max=128"`
	Supplier         string              `json:"supplier" validate:"max=50"`
	MinStockRequired int                 `json:"minStockRequired" validate:"min=1,max=1000000"`
}

func (ProductPayload) Kind() Kind { return KindProduct }

// BatchPayload opens an empty batch of a product in a warehouse.
type BatchPayload struct {
	ProductID   int `json:"productId" validate:"gt=0"`
	WarehouseID int `json:"warehouseId" validate:"gt=0"`
}

func (BatchPayload) Kind() Kind { return KindBatch }

// StockEntryPayload receives stock into a new or an existing batch.
type StockEntryPayload struct {
	ProductID   int  `json:"productId" validate:"gt=0"`
	Amount      int  `json:"amount" validate:"min=1,max=1000000"`
	NewBatch    bool `json:"newBatch"`
	WarehouseID int  `json:"warehouseId"`
	BatchID     int  `json:"batchId"`
}

func (StockEntryPayload) Kind() Kind { return KindStockEntry }

// StockExitPayload removes stock from an existing batch.
type StockExitPayload struct {
	ProductID int `json:"productId" validate:"gt=0"`
	BatchID   int `json:"batchId" validate:"gt=0"`
	Amount    int `json:"amount" validate:"min=1,max=1000000"`
}

func (StockExitPayload) Kind() Kind { return KindStockExit }

// WarehousePayload creates a storage location.
type WarehousePayload struct {
	Name    string `json:"name" validate:"required,max=25"`
	Address string `json:"address" validate:"required,max=50"`
}

func (WarehousePayload) Kind() Kind { return KindWarehouse }

// CategoryPayload creates a product category.
type CategoryPayload struct {
	Name string `json:"name" validate:"required,max=25"`
}

func (CategoryPayload) Kind() Kind { return KindCategory }

type productBody struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	CategoryID       int    `json:"categoryId"`
	ShelfLife        int    `json:"shelfLife"`
	Barcode          string `json:"barcode"`
	MinStockRequired int    `json:"minStockRequired"`
}

type stockBody struct {
	ProductID   int  `json:"productId"`
	Amount      int  `json:"amount"`
	IsEntry     bool `json:"isEntry"`
	BatchID     *int `json:"batchId,omitempty"`
	WarehouseID *int `json:"warehouseId,omitempty"`
}

// body converts a payload into its wire shape.
func body(p Payload) any {
	switch v := p.(type) {
	case ProductPayload:
		return productBody{
			Name:             v.Name,
			Description:      v.Description,
			CategoryID:       v.CategoryID,
			ShelfLife:        int(v.ShelfLife),
			Barcode:          v.Barcode,
			MinStockRequired: v.MinStockRequired,
		}
	case StockEntryPayload:
		out := stockBody{ProductID: v.ProductID, Amount: v.Amount, IsEntry: true}
		if v.NewBatch {
			id := v.WarehouseID
			out.WarehouseID = &id
		} else {
			id := v.BatchID
			out.BatchID = &id
		}
		return out
	case StockExitPayload:
		id := v.BatchID
		return stockBody{ProductID: v.ProductID, Amount: v.Amount, BatchID: &id}
	default:
		return p
	}
}
