package submission

import (
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Hernesto-SRL/management-front/internal/locale"
)

// ValidationError maps json field names to operator messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "submission: invalid fields: " + strings.Join(names, ", ")
}

// Schema wraps a validator configured for the intake payloads.
type Schema struct {
	validate *validator.Validate
	tr       *locale.Translator
}

// NewSchema builds the validator. Field errors are reported under json names.
func NewSchema(tr *locale.Translator) *Schema {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	v.RegisterStructValidation(validateStockEntry, StockEntryPayload{})
	return &Schema{validate: v, tr: tr}
}

// Validate returns nil or a *ValidationError.
func (s *Schema) Validate(p Payload) error {
	err := s.validate.Struct(p)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !asValidationErrors(err, &fieldErrs) {
		return &ValidationError{Fields: map[string]string{"": s.tr.T(locale.ValidationInvalid)}}
	}
	out := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		if _, seen := out.Fields[fe.Field()]; seen {
			continue
		}
		out.Fields[fe.Field()] = s.message(fe)
	}
	return out
}

func (s *Schema) message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "gt":
		return s.tr.T(locale.ValidationRequired)
	case "max":
		n, _ := strconv.Atoi(fe.Param())
		if fe.Kind() == reflect.String {
			return s.tr.T(locale.ValidationMaxLength, n)
		}
		return s.tr.T(locale.ValidationMaxAmount)
	case "min":
		return s.tr.T(locale.ValidationMinAmount)
	case "batchchoice":
		return s.tr.T(locale.ValidationBatchChoice)
	default:
		return s.tr.T(locale.ValidationInvalid)
	}
}

// validateStockEntry requires a warehouse for a new batch and a batch id
// otherwise.
func validateStockEntry(sl validator.StructLevel) {
	p := sl.Current().Interface().(StockEntryPayload)
	if p.NewBatch && p.WarehouseID <= 0 {
		sl.ReportError(p.WarehouseID, "warehouseId", "WarehouseID", "batchchoice", "")
	}
	if !p.NewBatch && p.BatchID <= 0 {
		sl.ReportError(p.BatchID, "batchId", "BatchID", "batchchoice", "")
	}
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	v, ok := err.(validator.ValidationErrors)
	if ok {
		*target = v
	}
	return ok
}
