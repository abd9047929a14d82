package locale

import "testing"

func TestCatalogsCoverSameKeys(t *testing.T) {
	for key := range spanish {
		if _, ok := english[key]; !ok {
			t.Fatalf("english catalog missing %s", key)
		}
	}
	if len(spanish) != len(english) {
		t.Fatalf("catalog sizes differ: es=%d en=%d", len(spanish), len(english))
	}
}

func TestTranslatorFormats(t *testing.T) {
	es := New("es")
	if got := es.T(DisambiguationMessage, "7791234567890"); got != "No se ha encontrado un producto con codigo de barras 7791234567890" {
		t.Fatalf("unexpected spanish text %q", got)
	}
	en := New("en")
	if got := en.T(ValidationMaxLength, 50); got != "The field cannot contain more than 50 characters" {
		t.Fatalf("unexpected english text %q", got)
	}
	if New("fr").Lang() != "es" {
		t.Fatalf("unknown language should fall back to spanish")
	}
	var nilTranslator *Translator
	if got := nilTranslator.T(LookupFailed); got != "Hubo un error cargando el producto" {
		t.Fatalf("nil translator should use spanish, got %q", got)
	}
}
