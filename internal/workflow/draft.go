package workflow

import (
	"github.com/Hernesto-SRL/management-front/internal/inventory"
)

// Draft is the record form seed owned by one controller. It is discarded on
// success, on cancel and on unmount.
type Draft struct {
	Code    inventory.ScannedCode
	Product *inventory.Product
	Batches *inventory.ProductBatches
	// FieldErrors maps json field names to operator messages.
	FieldErrors map[string]string
}

// Barcode returns the code the form should show as the product barcode.
func (d *Draft) Barcode() string {
	if d == nil {
		return ""
	}
	if d.Product != nil && d.Product.Barcode != "" {
		return d.Product.Barcode
	}
	return d.Code.Value
}

// ProductID returns the id of the looked-up product, or zero.
func (d *Draft) ProductID() int {
	switch {
	case d == nil:
		return 0
	case d.Product != nil:
		return d.Product.ID
	case d.Batches != nil:
		return d.Batches.ID
	default:
		return 0
	}
}

// ProductName returns the name of the looked-up product, or empty.
func (d *Draft) ProductName() string {
	switch {
	case d == nil:
		return ""
	case d.Product != nil:
		return d.Product.Name
	case d.Batches != nil:
		return d.Batches.Name
	default:
		return ""
	}
}

// FieldError returns the message attached to field.
func (d *Draft) FieldError(field string) string {
	if d == nil || d.FieldErrors == nil {
		return ""
	}
	return d.FieldErrors[field]
}

func (d *Draft) setFieldErrors(fields map[string]string) {
	d.FieldErrors = make(map[string]string, len(fields))
	for k, v := range fields {
		d.FieldErrors[k] = v
	}
}

func (d *Draft) setFieldError(field, message string) {
	if d.FieldErrors == nil {
		d.FieldErrors = map[string]string{}
	}
	d.FieldErrors[field] = message
}
