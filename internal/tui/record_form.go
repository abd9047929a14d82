package tui

import (
	"fmt"
	"strconv"

	"github.com/Hernesto-SRL/management-front/internal/inventory"
	"github.com/Hernesto-SRL/management-front/internal/submission"
	"github.com/Hernesto-SRL/management-front/internal/workflow"
)

// newBatchValue marks the "new batch" option of the stock entry form.
const newBatchValue = 0

// references is what the record forms need from the reference collections.
type references struct {
	warehouses []inventory.Warehouse
	categories []inventory.Category
}

func warehouseChoices(ws []inventory.Warehouse) []choice {
	out := make([]choice, 0, len(ws))
	for _, w := range ws {
		out = append(out, choice{label: w.Label(), value: w.ID})
	}
	return out
}

func categoryChoices(cs []inventory.Category) []choice {
	out := make([]choice, 0, len(cs))
	for _, c := range cs {
		out = append(out, choice{label: c.Name, value: c.ID})
	}
	return out
}

func shelfLifeChoices() []choice {
	lives := inventory.ShelfLives()
	out := make([]choice, 0, len(lives))
	for _, s := range lives {
		out = append(out, choice{label: s.String(), value: int(s)})
	}
	return out
}

func batchChoices(draft *workflow.Draft, ws []inventory.Warehouse) []choice {
	if draft == nil || draft.Batches == nil {
		return nil
	}
	out := make([]choice, 0, len(draft.Batches.Batches))
	for _, b := range draft.Batches.Batches {
		out = append(out, choice{label: inventory.BatchLabel(b, ws), value: b.ID})
	}
	return out
}

func intText(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func productLabel(draft *workflow.Draft) string {
	name := draft.ProductName()
	if name == "" {
		return draft.Barcode()
	}
	return fmt.Sprintf("%s (%s)", name, draft.Barcode())
}

// buildRecordForm lays out the fields of kind's record form seeded from draft.
func buildRecordForm(kind inventory.WorkflowKind, draft *workflow.Draft, refs references) *form {
	switch kind {
	case inventory.KindRegisterProduct:
		var seed inventory.Product
		if draft != nil && draft.Product != nil {
			seed = *draft.Product
		}
		return newForm("Nuevo producto",
			newTextField("name", "Nombre", seed.Name),
			newTextField("description", "Descripcion", seed.Description),
			newChoiceField("categoryId", "Categoria", categoryChoices(refs.categories), seed.CategoryID),
			newChoiceField("shelfLife", "Vencimiento", shelfLifeChoices(), int(seed.ShelfLife)),
			newTextField("barcode", "Codigo de barras", draft.Barcode()),
			newTextField("supplier", "Proveedor", ""),
			newTextField("minStockRequired", "Stock minimo", intText(seed.MinStockRequired)),
		)
	case inventory.KindRegisterBatch:
		return newForm("Nuevo lote",
			newReadOnlyField("productId", "Producto", productLabel(draft)),
			newChoiceField("warehouseId", "Deposito", warehouseChoices(refs.warehouses), 0),
		)
	case inventory.KindStockEntry:
		batches := append(batchChoices(draft, refs.warehouses), choice{label: "Lote nuevo", value: newBatchValue})
		return newForm("Ingreso de stock",
			newReadOnlyField("productId", "Producto", productLabel(draft)),
			newChoiceField("batchId", "Lote", batches, -1),
			newChoiceField("warehouseId", "Deposito (lote nuevo)", warehouseChoices(refs.warehouses), 0),
			newTextField("amount", "Cantidad", ""),
		)
	case inventory.KindStockExit:
		return newForm("Egreso de stock",
			newReadOnlyField("productId", "Producto", productLabel(draft)),
			newChoiceField("batchId", "Lote", batchChoices(draft, refs.warehouses), -1),
			newTextField("amount", "Cantidad", ""),
		)
	default:
		return newForm(kind.String())
	}
}

// recordPayload reads f back into the payload kind submits.
func recordPayload(kind inventory.WorkflowKind, draft *workflow.Draft, f *form) submission.Payload {
	intOf := func(key string) int {
		if field := f.field(key); field != nil {
			return field.intValue()
		}
		return 0
	}
	textOf := func(key string) string {
		if field := f.field(key); field != nil && field.kind == textField {
			return field.value()
		}
		return ""
	}
	switch kind {
	case inventory.KindRegisterProduct:
		return submission.ProductPayload{
			Name:             textOf("name"),
			Description:      textOf("description"),
			CategoryID:       intOf("categoryId"),
			ShelfLife:        inventory.ShelfLife(intOf("shelfLife")),
			Barcode:          textOf("barcode"),
			Supplier:         textOf("supplier"),
			MinStockRequired: intOf("minStockRequired"),
		}
	case inventory.KindRegisterBatch:
		return submission.BatchPayload{ProductID: draft.ProductID(), WarehouseID: intOf("warehouseId")}
	case inventory.KindStockEntry:
		p := submission.StockEntryPayload{ProductID: draft.ProductID(), Amount: intOf("amount")}
		if batch := intOf("batchId"); batch == newBatchValue {
			p.NewBatch = true
			p.WarehouseID = intOf("warehouseId")
		} else {
			p.BatchID = batch
		}
		return p
	case inventory.KindStockExit:
		return submission.StockExitPayload{ProductID: draft.ProductID(), BatchID: intOf("batchId"), Amount: intOf("amount")}
	default:
		return nil
	}
}
