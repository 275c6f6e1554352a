package cart

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/marhaba-kitchen/storefront/internal/storage"
)

func item(id, name string, price string) Item {
	return Item{ID: id, Name: name, Price: decimal.RequireFromString(price)}
}

func TestAddMergesByID(t *testing.T) {
	s := NewStore(storage.NewFileStore(t.TempDir()))

	s.Add(item("1", "Chicken Shawarma", "10"), 1)
	s.Add(item("1", "Chicken Shawarma", "10"), 1)
	s.Add(item("2", "Hummus", "5"), 1)

	lines := s.Lines()
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0].Quantity != 2 {
		t.Errorf("merged quantity = %d, want 2", lines[0].Quantity)
	}
	if lines[1].ID != "2" {
		t.Errorf("second line = %q, want item 2", lines[1].ID)
	}
}

func TestAddIgnoresNonPositiveQuantity(t *testing.T) {
	s := NewStore(storage.NewFileStore(t.TempDir()))

	s.Add(item("1", "Hummus", "5"), 0)
	s.Add(item("1", "Hummus", "5"), -3)

	if len(s.Lines()) != 0 {
		t.Error("non-positive quantities should not add lines")
	}
}

func TestTotalAndCount(t *testing.T) {
	s := NewStore(storage.NewFileStore(t.TempDir()))

	s.Add(item("1", "Chicken Shawarma", "10"), 2)
	s.Add(item("2", "Hummus", "5"), 1)

	if got := s.DisplayTotal(); got != "25.00" {
		t.Errorf("total = %s, want 25.00", got)
	}
	if got := s.Count(); got != 3 {
		t.Errorf("count = %d, want 3", got)
	}
}

func TestSetQuantityZeroRemoves(t *testing.T) {
	s := NewStore(storage.NewFileStore(t.TempDir()))

	s.Add(item("1", "Falafel Wrap", "8"), 2)
	s.SetQuantity("1", 0)

	if len(s.Lines()) != 0 {
		t.Error("quantity zero should remove the line")
	}

	s.Add(item("1", "Falafel Wrap", "8"), 2)
	s.SetQuantity("1", -1)
	if len(s.Lines()) != 0 {
		t.Error("negative quantity should remove the line")
	}
}

func TestPersistOnEveryMutation(t *testing.T) {
	dir := t.TempDir()
	st := storage.NewFileStore(dir)
	s := NewStore(st)

	s.Add(item("1", "Hummus", "5"), 1)

	// A fresh store over the same directory sees the mutation.
	s2 := NewStore(storage.NewFileStore(dir))
	if got := s2.Count(); got != 1 {
		t.Fatalf("rehydrated count = %d, want 1", got)
	}

	s.Remove("1")
	s3 := NewStore(storage.NewFileStore(dir))
	if got := s3.Count(); got != 0 {
		t.Errorf("rehydrated count after remove = %d, want 0", got)
	}
}

func TestCorruptStateRehydratesEmpty(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, storage.KeyCart+".json"), []byte("][garbage"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewStore(storage.NewFileStore(dir))
	if len(s.Lines()) != 0 {
		t.Error("corrupt persisted cart should rehydrate as empty")
	}
	if !s.Total().IsZero() {
		t.Error("corrupt persisted cart should have zero total")
	}
}

func TestClear(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(storage.NewFileStore(dir))
	s.Add(item("1", "Hummus", "5"), 3)
	s.Clear()

	if s.Count() != 0 {
		t.Error("clear should empty the cart")
	}
	s2 := NewStore(storage.NewFileStore(dir))
	if s2.Count() != 0 {
		t.Error("clear should persist the empty cart")
	}
}
