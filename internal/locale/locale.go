// internal/locale/locale.go
//
// User-facing text for the intake terminal. Every string shown to the
// operator is looked up by key in an x/text catalog so the Spanish wording
// used on the warehouse floor and the English fallback stay in one place.

package locale

import (
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys.
const (
	LookupFailed   = "lookup.failed"
	LookupNotFound = "lookup.not_found"
	RefDataFailed  = "refdata.failed"
	RefDataPending = "refdata.pending"

	DisambiguationMessage  = "disambiguation.message"
	DisambiguationQuestion = "disambiguation.question"

	SuccessProduct    = "success.product"
	SuccessBatch      = "success.batch"
	SuccessStockEntry = "success.stock_entry"
	SuccessStockExit  = "success.stock_exit"
	SuccessWarehouse  = "success.warehouse"
	SuccessCategory   = "success.category"

	ErrorProduct   = "error.product"
	ErrorBatch     = "error.batch"
	ErrorStock     = "error.stock"
	ErrorWarehouse = "error.warehouse"
	ErrorCategory  = "error.category"

	ConflictBarcode   = "conflict.barcode"
	ConflictWarehouse = "conflict.warehouse"
	ConflictCategory  = "conflict.category"
	RejectedName      = "rejected.name"
	RejectedGeneric   = "rejected.generic"

	ValidationRequired    = "validation.required"
	ValidationMaxLength   = "validation.max_length"
	ValidationMinAmount   = "validation.min_amount"
	ValidationMaxAmount   = "validation.max_amount"
	ValidationInvalid     = "validation.invalid"
	ValidationBatchChoice = "validation.batch_choice"

	AuthDenied     = "auth.denied"
	JournalSaved   = "journal.saved"
	JournalFailed  = "journal.failed"
	JournalEmpty   = "journal.empty"
	HandoffFailed  = "handoff.failed"
	HandoffLost    = "handoff.lost"
	ScannerStopped = "scanner.stopped"
)

var spanish = map[string]string{
	LookupFailed:           "Hubo un error cargando el producto",
	LookupNotFound:         "No se ha encontrado ningun producto con ese codigo de barras.",
	RefDataFailed:          "Hubo un error cargando la informacion necesaria",
	RefDataPending:         "Todavia se esta cargando la informacion necesaria.",
	DisambiguationMessage:  "No se ha encontrado un producto con codigo de barras %s",
	DisambiguationQuestion: "¿Desea registrar un nuevo producto?",
	SuccessProduct:         "Nuevo producto registrado con exito.",
	SuccessBatch:           "Nuevo lote registrado con exito.",
	SuccessStockEntry:      "Ingreso de stock registrado exitosamente",
	SuccessStockExit:       "Egreso de stock registrado con exito.",
	SuccessWarehouse:       "Nuevo deposito registrado con exito.",
	SuccessCategory:        "Nueva categoria registrada con exito.",
	ErrorProduct:           "Ha ocurrido un error registrando el nuevo producto.",
	ErrorBatch:             "Ha ocurrido un error registrando el nuevo lote.",
	ErrorStock:             "Hubo un error tratando de actualizar el stock",
	ErrorWarehouse:         "Ha ocurrido un error registrando el deposito.",
	ErrorCategory:          "Ha ocurrido un error registrando la categoria.",
	ConflictBarcode:        "Ya existe un producto con este codigo de barras.",
	ConflictWarehouse:      "Ya existe un deposito con ese nombre.",
	ConflictCategory:       "Ya existe una categoria con ese nombre.",
	RejectedName:           "El nombre no puede tener más de 25 caracteres.",
	RejectedGeneric:        "El valor ingresado fue rechazado.",
	ValidationRequired:     "Campo Obligatorio",
	ValidationMaxLength:    "El campo no puede contener mas de %d caracteres",
	ValidationMinAmount:    "Debe ingresar un numero mayor a 1",
	ValidationMaxAmount:    "La cantidad no puede ser mayor a 1.000.000",
	ValidationInvalid:      "Valor invalido",
	ValidationBatchChoice:  "Seleccione un lote existente o un deposito para el lote nuevo",
	AuthDenied:             "No tiene permisos para acceder a esta seccion",
	JournalSaved:           "Registro exportado a %s",
	JournalFailed:          "No se pudo exportar el registro",
	JournalEmpty:           "No hay movimientos registrados en esta sesion",
	HandoffFailed:          "No se pudo guardar el codigo escaneado",
	HandoffLost:            "No se pudo recuperar el codigo escaneado",
	ScannerStopped:         "El lector de codigos se detuvo",
}

var english = map[string]string{
	LookupFailed:           "There was an error loading the product",
	LookupNotFound:         "No product was found with that barcode.",
	RefDataFailed:          "There was an error loading the required information",
	RefDataPending:         "The required information is still loading.",
	DisambiguationMessage:  "No product was found with barcode %s",
	DisambiguationQuestion: "Do you want to register a new product?",
	SuccessProduct:         "New product registered.",
	SuccessBatch:           "New batch registered.",
	SuccessStockEntry:      "Stock entry recorded",
	SuccessStockExit:       "Stock exit recorded.",
	SuccessWarehouse:       "New warehouse registered.",
	SuccessCategory:        "New category registered.",
	ErrorProduct:           "An error occurred registering the new product.",
	ErrorBatch:             "An error occurred registering the new batch.",
	ErrorStock:             "There was an error updating the stock",
	ErrorWarehouse:         "An error occurred registering the warehouse.",
	ErrorCategory:          "An error occurred registering the category.",
	ConflictBarcode:        "A product with this barcode already exists.",
	ConflictWarehouse:      "A warehouse with that name already exists.",
	ConflictCategory:       "A category with that name already exists.",
	RejectedName:           "The name cannot be longer than 25 characters.",
	RejectedGeneric:        "The value was rejected.",
	ValidationRequired:     "Required field",
	ValidationMaxLength:    "The field cannot contain more than %d characters",
	ValidationMinAmount:    "Enter a number of at least 1",
	ValidationMaxAmount:    "The amount cannot exceed 1,000,000",
	ValidationInvalid:      "Invalid value",
	ValidationBatchChoice:  "Pick an existing batch or a warehouse for the new batch",
	AuthDenied:             "You are not allowed to access this section",
	JournalSaved:           "Journal exported to %s",
	JournalFailed:          "The journal could not be exported",
	JournalEmpty:           "No movements recorded in this session",
	HandoffFailed:          "The scanned code could not be saved",
	HandoffLost:            "The scanned code could not be recovered",
	ScannerStopped:         "The code reader stopped",
}

// Translator renders message keys in one language. Printers are not safe for
// concurrent use, so T serializes access.
type Translator struct {
	tag     language.Tag
	mu      sync.Mutex
	printer *message.Printer
}

// New returns a translator for "es" or "en". Anything else falls back to Spanish.
func New(lang string) *Translator {
	builder := catalog.NewBuilder(catalog.Fallback(language.Spanish))
	for key, msg := range spanish {
		_ = builder.SetString(language.Spanish, key, msg)
	}
	for key, msg := range english {
		_ = builder.SetString(language.English, key, msg)
	}
	tag := language.Spanish
	if lang == "en" {
		tag = language.English
	}
	return &Translator{tag: tag, printer: message.NewPrinter(tag, message.Catalog(builder))}
}

// Default is the Spanish translator used when none is injected.
func Default() *Translator {
	return New("es")
}

// T formats the message registered under key.
func (t *Translator) T(key string, args ...any) string {
	if t == nil {
		t = Default()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.printer.Sprintf(key, args...)
}

// Lang returns the BCP 47 tag of the translator.
func (t *Translator) Lang() string {
	if t == nil {
		return language.Spanish.String()
	}
	return t.tag.String()
}
