package gradle

import (
	"testing"

	"github.com/snapsam/gradle/module"
)

func TestConstraintStoreKeepsDiscoveryOrder(t *testing.T) {
	store := NewConstraintStore()
	id := module.ID{Group: "com.x", Name: "lib"}

	store.Record(module.Constraint{Group: "com.x", Name: "lib", Version: "1.0", Source: "first"})
	store.Record(module.Constraint{Group: "com.x", Name: "lib", Version: "2.0", Source: "second"})
	store.Record(module.Constraint{Group: "com.x", Name: "other", Version: "9.0"})

	got := store.For(id)
	if len(got) != 2 {
		t.Fatalf("For() = %d constraints, want 2", len(got))
	}
	if got[0].Source != "first" || got[1].Source != "second" {
		t.Errorf("order = [%s, %s], want discovery order", got[0].Source, got[1].Source)
	}

	// Duplicates are kept side by side.
	store.Record(module.Constraint{Group: "com.x", Name: "lib", Version: "1.0", Source: "first"})
	if got := store.For(id); len(got) != 3 {
		t.Errorf("after duplicate: %d constraints, want 3", len(got))
	}
}

func TestConstraintStoreForReturnsCopy(t *testing.T) {
	store := NewConstraintStore()
	id := module.ID{Group: "com.x", Name: "lib"}
	store.Record(module.Constraint{Group: "com.x", Name: "lib", Version: "1.0"})

	got := store.For(id)
	got[0].Version = "mutated"

	if store.For(id)[0].Version != "1.0" {
		t.Error("For() must return a copy")
	}
}

func TestConstraintStoreRetract(t *testing.T) {
	store := NewConstraintStore()
	libID := module.ID{Group: "com.x", Name: "lib"}
	otherID := module.ID{Group: "com.x", Name: "other"}

	store.Record(module.Constraint{Group: "com.x", Name: "lib", Version: "1.0", Source: "root"})
	store.RecordAllFrom("com.x:dep:1.0", []module.Constraint{
		{Group: "com.x", Name: "lib", Version: "2.0"},
		{Group: "com.x", Name: "other", Version: "9.0"},
	})
	store.RecordFrom("com.x:dep:2.0", module.Constraint{Group: "com.x", Name: "lib", Version: "3.0"})

	changed := store.Retract("com.x:dep:1.0")
	if len(changed) != 2 {
		t.Fatalf("Retract() changed %d identities, want 2", len(changed))
	}

	got := store.For(libID)
	if len(got) != 2 || got[0].Version != "1.0" || got[1].Version != "3.0" {
		t.Errorf("For(lib) = %v, want root 1.0 and dep:2.0's 3.0", got)
	}
	if got := store.For(otherID); len(got) != 0 {
		t.Errorf("For(other) = %v, want empty after retraction", got)
	}

	// Root-level entries have no contributor and cannot be retracted.
	if changed := store.Retract(""); changed != nil {
		t.Errorf("Retract(\"\") = %v, want nil", changed)
	}
	// Retracting again is a no-op.
	if changed := store.Retract("com.x:dep:1.0"); changed != nil {
		t.Errorf("second Retract = %v, want nil", changed)
	}
}

func TestConstraintStoreStrict(t *testing.T) {
	store := NewConstraintStore()
	id := module.ID{Group: "com.x", Name: "lib"}
	store.RecordAll([]module.Constraint{
		{Group: "com.x", Name: "lib", Version: "1.0", Strength: module.StrengthRequire},
		{Group: "com.x", Name: "lib", Version: "2.0", Strength: module.StrengthStrict},
		{Group: "com.x", Name: "lib", Version: "3.0", Strength: module.StrengthReject},
	})

	strict := store.Strict(id)
	if len(strict) != 1 || strict[0].Version != "2.0" {
		t.Errorf("Strict() = %v, want only the strict 2.0", strict)
	}
	if got := store.For(module.ID{Group: "com.x", Name: "unknown"}); got != nil {
		t.Errorf("For(unknown) = %v, want nil", got)
	}
}
