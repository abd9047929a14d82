package inventory

import "fmt"

// ShelfLife is the closed set of expiry classes a product can carry.
type ShelfLife int

const (
	ShelfLifeNone ShelfLife = iota
	ShelfLifeFifteenDays
	ShelfLifeOneMonth
	ShelfLifeThreeMonths
	ShelfLifeSixMonths
	ShelfLifeOneYear
	ShelfLifeOverOneYear
)

var shelfLifeLabels = map[ShelfLife]string{
	ShelfLifeNone:        "NO VENCE",
	ShelfLifeFifteenDays: "15 DIAS",
	ShelfLifeOneMonth:    "1 MES",
	ShelfLifeThreeMonths: "3 MESES",
	ShelfLifeSixMonths:   "6 MESES",
	ShelfLifeOneYear:     "1 AÑO",
	ShelfLifeOverOneYear: "MAS DE 1 AÑO",
}

// ShelfLives returns every shelf-life class in ascending order.
func ShelfLives() []ShelfLife {
	out := make([]ShelfLife, 0, len(shelfLifeLabels))
	for s := ShelfLifeNone; s <= ShelfLifeOverOneYear; s++ {
		out = append(out, s)
	}
	return out
}

// Valid reports whether s is part of the enumeration.
func (s ShelfLife) Valid() bool {
	_, ok := shelfLifeLabels[s]
	return ok
}

func (s ShelfLife) String() string {
	if label, ok := shelfLifeLabels[s]; ok {
		return label
	}
	return fmt.Sprintf("shelf-life(%d)", int(s))
}

// Product is the catalog record returned by a product lookup.
type Product struct {
	ID               int       `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	CategoryID       int       `json:"categoryId"`
	Barcode          string    `json:"barcode"`
	MinStockRequired int       `json:"minStockRequired"`
	ShelfLife        ShelfLife `json:"shelfLife"`
}

// Batch is one received lot of a product stored in a warehouse.
type Batch struct {
	ID           int    `json:"id"`
	ProductID    int    `json:"productId"`
	WarehouseID  int    `json:"warehouseId"`
	EntryDate    string `json:"entryDate"`
	CurrentStock int    `json:"currentStock"`
}

// ProductBatches is the batch lookup result: product identity plus its lots.
type ProductBatches struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Barcode     string  `json:"barcode"`
	Batches     []Batch `json:"batches"`
}

// Warehouse is a storage location.
type Warehouse struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Label renders the warehouse as shown in pickers.
func (w Warehouse) Label() string {
	return fmt.Sprintf("%s - %s", w.Name, w.Address)
}

// Category groups products in the catalog.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// BatchLabel renders a batch with its warehouse address and stock.
func BatchLabel(batch Batch, warehouses []Warehouse) string {
	address := ""
	for _, w := range warehouses {
		if w.ID == batch.WarehouseID {
			address = w.Address
			break
		}
	}
	return fmt.Sprintf("%s - %s - (%d)", batch.EntryDate, address, batch.CurrentStock)
}
