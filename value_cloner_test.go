package loadability_test

import (
	"testing"

	"github.com/karupanerura/loadability"
)

type clonable struct {
	Tags []string
}

func (s *clonable) Clone() *clonable {
	return &clonable{Tags: append([]string(nil), s.Tags...)}
}

type deepCopyable struct {
	Tags []string
}

func (s *deepCopyable) DeepCopy() *deepCopyable {
	return &deepCopyable{Tags: append([]string(nil), s.Tags...)}
}

type plain struct {
	Tags []string
}

func TestDefaultValueCloner(t *testing.T) {
	t.Parallel()

	t.Run("Clone method", func(t *testing.T) {
		t.Parallel()

		cloner := loadability.DefaultValueCloner[*clonable]()
		if _, ok := cloner.(loadability.ValueClonerFunc[*clonable]); !ok {
			t.Fatalf("DefaultValueCloner() = %T, want ValueClonerFunc", cloner)
		}

		original := &clonable{Tags: []string{"a"}}
		cloned := cloner.CloneValue(original)
		if cloned == original {
			t.Fatal("CloneValue() must return a new value")
		}
		original.Tags[0] = "b"
		if cloned.Tags[0] != "a" {
			t.Errorf("clone shares state with the original: %v", cloned.Tags)
		}
	})

	t.Run("DeepCopy method", func(t *testing.T) {
		t.Parallel()

		cloner := loadability.DefaultValueCloner[*deepCopyable]()
		if _, ok := cloner.(loadability.ValueClonerFunc[*deepCopyable]); !ok {
			t.Fatalf("DefaultValueCloner() = %T, want ValueClonerFunc", cloner)
		}

		original := &deepCopyable{Tags: []string{"a"}}
		cloned := cloner.CloneValue(original)
		original.Tags[0] = "b"
		if cloned.Tags[0] != "a" {
			t.Errorf("clone shares state with the original: %v", cloned.Tags)
		}
	})

	t.Run("no method", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name   string
			cloner any
		}{
			{name: "string", cloner: loadability.DefaultValueCloner[string]()},
			{name: "int", cloner: loadability.DefaultValueCloner[int]()},
			{name: "pointer", cloner: loadability.DefaultValueCloner[*plain]()},
			{name: "slice", cloner: loadability.DefaultValueCloner[[]byte]()},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				switch tt.cloner.(type) {
				case loadability.NopValueCloner[string], loadability.NopValueCloner[int],
					loadability.NopValueCloner[*plain], loadability.NopValueCloner[[]byte]:
				default:
					t.Errorf("DefaultValueCloner() = %T, want NopValueCloner", tt.cloner)
				}
			})
		}

		p := &plain{}
		if got := loadability.DefaultValueCloner[*plain]().CloneValue(p); got != p {
			t.Error("NopValueCloner must return its input")
		}
	})
}

func TestValueClonerFunc(t *testing.T) {
	t.Parallel()

	cloner := loadability.ValueClonerFunc[int](func(v int) int {
		return v * 2
	})
	if got := cloner.CloneValue(21); got != 42 {
		t.Errorf("CloneValue() = %d, want 42", got)
	}
}
