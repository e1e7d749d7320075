package module

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stub string

func (s stub) ID() string { return string(s) }

type fakeResolver map[string][]string

func (f fakeResolver) ServesFileType(service, fileType string) bool {
	for _, ft := range f[service] {
		if ft == fileType {
			return true
		}
	}
	return false
}

func ids(es []Entry) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.ID()
	}
	return out
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	r := New(nil, Overrides{})
	require.NoError(t, r.Register(stub("text"), Options{Type: TypeCenter}))

	err := r.Register(stub("text"), Options{Type: TypeCenter})
	assert.True(t, errors.Is(err, ErrDuplicateModule), "err = %v", err)

	got := r.Modules(Filter{Type: TypeCenter})
	assert.Equal(t, []string{"text"}, ids(got))
}

func TestRegisterValidatesOptions(t *testing.T) {
	r := New(nil, Overrides{})
	assert.ErrorIs(t, r.Register(stub("x"), Options{}), ErrMissingType)
	assert.ErrorIs(t, r.Register(stub("  "), Options{Type: TypeHeader}), ErrInvalidID)
	assert.ErrorIs(t, r.Register(nil, Options{Type: TypeHeader}), ErrInvalidID)
	assert.Panics(t, func() {
		r.MustRegister(stub(""), Options{Type: TypeHeader})
	})
}

func TestModulesOrdering(t *testing.T) {
	r := New(nil, Overrides{})
	r.MustRegister(stub("a"), Options{Type: TypeAccordion})
	r.MustRegister(stub("c"), Options{Type: TypeAccordion})
	r.MustRegister(stub("late"), Options{Type: TypeAccordion, Priority: Priority(30)})
	r.MustRegister(stub("early"), Options{Type: TypeAccordion, Priority: Priority(10)})
	r.MustRegister(stub("tie-b"), Options{Type: TypeAccordion, Priority: Priority(20)})
	r.MustRegister(stub("tie-a"), Options{Type: TypeAccordion, Priority: Priority(20)})
	r.MustRegister(stub("b"), Options{Type: TypeAccordion})
	r.MustRegister(stub("other"), Options{Type: TypeCenter, Priority: Priority(1)})

	got := ids(r.Modules(Filter{Type: TypeAccordion}))
	assert.Equal(t, []string{"early", "tie-a", "tie-b", "late", "c", "b", "a"}, got)
	assert.Len(t, r.Modules(Filter{}), 8)
}

func TestModulesFileTypeFilter(t *testing.T) {
	r := New(fakeResolver{"CppService": {"CPP"}, "PythonService": {"PY"}}, Overrides{})
	r.MustRegister(stub("language.CppService"), Options{Type: TypeDiagram, Service: "CppService"})
	r.MustRegister(stub("language.PythonService"), Options{Type: TypeDiagram, Service: "PythonService"})
	r.MustRegister(stub("filediagrams"), Options{Type: TypeDiagram})

	got := ids(r.Modules(Filter{Type: TypeDiagram, FileType: "CPP"}))
	assert.Equal(t, []string{"language.CppService", "filediagrams"}, got)
}

func TestOverrides(t *testing.T) {
	r := New(nil, Overrides{
		Priorities:  map[string]int{"b": 1},
		DisabledIDs: []string{"gone"},
	})
	r.MustRegister(stub("a"), Options{Type: TypeCenter, Priority: Priority(5)})
	r.MustRegister(stub("b"), Options{Type: TypeCenter})
	require.NoError(t, r.Register(stub("gone"), Options{Type: TypeCenter}))

	assert.Equal(t, []string{"b", "a"}, ids(r.Modules(Filter{Type: TypeCenter})))
	_, ok := r.Get("gone")
	assert.False(t, ok)
}

func TestModuleAsyncResolvesOnLaterRegistration(t *testing.T) {
	r := New(nil, Overrides{})
	f := r.ModuleAsync("diagram")
	assert.Same(t, f, r.ModuleAsync("diagram"))

	select {
	case <-f.Done():
		t.Fatalf("future resolved before registration")
	default:
	}

	r.MustRegister(stub("diagram"), Options{Type: TypeCenter})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	e, err := f.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "diagram", e.ID())

	already, err := r.ModuleAsync("diagram").Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, TypeCenter, already.Type)
}

func TestModuleAsyncWaitHonoursContext(t *testing.T) {
	r := New(nil, Overrides{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.ModuleAsync("never").Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDisabledIDsAreCaseSensitive(t *testing.T) {
	o := Overrides{DisabledIDs: []string{" language.CppService "}}
	assert.True(t, o.Disabled("language.CppService"))
	assert.False(t, o.Disabled("language.cppservice"))
	assert.False(t, o.Disabled("Language.CppService"))
}
