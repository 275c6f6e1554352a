package i18n

import (
	"testing"

	"github.com/marhaba-kitchen/storefront/internal/enum"
	"github.com/marhaba-kitchen/storefront/internal/storage"
)

func TestLookupDottedKey(t *testing.T) {
	tr := New(storage.NewFileStore(t.TempDir()))

	if got := tr.T("cart.total"); got != "Total" {
		t.Errorf("T(cart.total) = %q, want %q", got, "Total")
	}
}

func TestLookupArabic(t *testing.T) {
	tr := New(storage.NewFileStore(t.TempDir()))
	tr.SetLanguage(enum.LanguageArabic)

	if got := tr.T("cart.total"); got != "المجموع" {
		t.Errorf("T(cart.total) in ar = %q", got)
	}
}

func TestMissingKeyReturnsKey(t *testing.T) {
	tr := New(storage.NewFileStore(t.TempDir()))

	for _, key := range []string{"cart.doesNotExist", "no.such.section", "cart"} {
		if got := tr.T(key); got != key {
			t.Errorf("T(%q) = %q, want the key itself", key, got)
		}
	}
}

func TestLanguagePersists(t *testing.T) {
	dir := t.TempDir()
	tr := New(storage.NewFileStore(dir))
	tr.SetLanguage(enum.LanguageArabic)

	tr2 := New(storage.NewFileStore(dir))
	if got := tr2.Language(); got != enum.LanguageArabic {
		t.Errorf("restored language = %q, want ar", got)
	}
}

func TestToggle(t *testing.T) {
	tr := New(storage.NewFileStore(t.TempDir()))

	tr.Toggle()
	if tr.Language() != enum.LanguageArabic {
		t.Fatalf("after toggle, language = %q", tr.Language())
	}
	tr.Toggle()
	if tr.Language() != enum.LanguageEnglish {
		t.Errorf("after second toggle, language = %q", tr.Language())
	}
}

func TestUnknownLanguageIgnored(t *testing.T) {
	tr := New(storage.NewFileStore(t.TempDir()))
	tr.SetLanguage("fr")

	if tr.Language() != enum.LanguageEnglish {
		t.Errorf("unknown language should be ignored, got %q", tr.Language())
	}
}
