package provider_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/goliatone/go-managed/pkg/provider"
)

func TestFixed_ReturnsValueAndRuntimeType(t *testing.T) {
	s := provider.Fixed(5)

	got, err := s.Get()
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
	if !s.Present() || !s.Immutable() {
		t.Fatalf("expected fixed supplier to be present and immutable")
	}
	if s.Type() != reflect.TypeOf(0) {
		t.Fatalf("expected int type, got %v", s.Type())
	}
	if got := s.String(); got != "fixed(int, 5)" {
		t.Fatalf("unexpected string %q", got)
	}
}

func TestFixed_WithFinalValueIsStable(t *testing.T) {
	external := 5
	s := provider.Fixed(external).WithFinalValue()
	external = 42

	for i := 0; i < 3; i++ {
		got, err := s.Get()
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got != 5 {
			t.Fatalf("call %d: expected 5, got %d (external %d)", i, got, external)
		}
	}
}

func TestMissing_GetSignalsMissingValue(t *testing.T) {
	s := provider.Missing[string]()

	if s.Present() {
		t.Fatalf("expected missing supplier")
	}
	_, err := s.Get()
	if !errors.Is(err, provider.ErrMissingValue) {
		t.Fatalf("expected ErrMissingValue, got %v", err)
	}
	if _, ok := s.Value(); ok {
		t.Fatalf("expected Value to report absence")
	}
	if s.Type() != nil {
		t.Fatalf("expected nil type for missing supplier")
	}
	if s.WithFinalValue().Present() {
		t.Fatalf("expected final value of missing supplier to stay missing")
	}
}

func TestMap_NeverInvokesTransformerOnMissing(t *testing.T) {
	calls := 0
	mapped := provider.Map(provider.Missing[int](), func(v int) string {
		calls++
		return "x"
	})

	if mapped.Present() {
		t.Fatalf("expected mapped supplier to be missing")
	}
	if _, err := mapped.Get(); !errors.Is(err, provider.ErrMissingValue) {
		t.Fatalf("expected ErrMissingValue, got %v", err)
	}
	mapped.WithFinalValue()
	mapped.OrElse("fallback")
	if calls != 0 {
		t.Fatalf("transformer invoked %d times", calls)
	}
}

func TestMap_IsLazy(t *testing.T) {
	calls := 0
	mapped := provider.Map(provider.Fixed(2), func(v int) int {
		calls++
		return v * 10
	})
	if calls != 0 {
		t.Fatalf("expected no evaluation before Get, got %d calls", calls)
	}
	got, err := mapped.Get()
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != 20 || calls != 1 {
		t.Fatalf("expected 20 after one call, got %d after %d calls", got, calls)
	}
	if mapped.Immutable() {
		t.Fatalf("expected mapped supplier to be mutable")
	}
}

func TestMapOptional_ReportsMissingTransformerResult(t *testing.T) {
	mapped := provider.MapOptional(provider.Fixed("in"), func(string) (int, bool) {
		return 0, false
	})
	_, err := mapped.Get()
	if !errors.Is(err, provider.ErrMissingValue) {
		t.Fatalf("expected ErrMissingValue, got %v", err)
	}
	if !strings.Contains(err.Error(), provider.NoTransformerResult) {
		t.Fatalf("expected transformer message, got %q", err.Error())
	}
}

func TestNullable_NilBehavesLikeMissing(t *testing.T) {
	var ptr *int
	cases := map[string]provider.Supplier[*int]{
		"nullable": provider.Nullable(ptr),
		"missing":  provider.Missing[*int](),
	}
	fallback := 7

	for name, s := range cases {
		t.Run(name, func(t *testing.T) {
			if s.Present() {
				t.Fatalf("expected absent")
			}
			if _, err := s.Get(); !errors.Is(err, provider.ErrMissingValue) {
				t.Fatalf("expected ErrMissingValue, got %v", err)
			}
			called := false
			mapped := provider.Map(s, func(*int) int { called = true; return 1 })
			if mapped.Present() || called {
				t.Fatalf("expected map to short-circuit")
			}
			got, err := s.OrElse(&fallback).Get()
			if err != nil || got != &fallback {
				t.Fatalf("expected fallback, got %v (%v)", got, err)
			}
		})
	}
}

func TestNullable_NonNilIsFixed(t *testing.T) {
	s := provider.Nullable([]string{"a"})
	if !s.Present() || !s.Immutable() {
		t.Fatalf("expected present fixed supplier")
	}
	if !provider.Nullable(0).Present() {
		t.Fatalf("zero values of non-nillable kinds are present")
	}
}

func TestOrElse(t *testing.T) {
	present := provider.Fixed("value")
	if present.OrElse("fallback") != present {
		t.Fatalf("expected present supplier to return itself")
	}
	if present.OrElseFrom(provider.Fixed("other")) != present {
		t.Fatalf("expected present supplier to return itself")
	}

	other := provider.Fixed("other")
	if provider.Missing[string]().OrElseFrom(other) != other {
		t.Fatalf("expected missing supplier to return the fallback supplier")
	}
	got, err := provider.Missing[string]().OrElse("fallback").Get()
	if err != nil || got != "fallback" {
		t.Fatalf("expected fallback value, got %q (%v)", got, err)
	}
}

func TestComputed_RecomputesUntilFinalised(t *testing.T) {
	current := 1
	s := provider.Computed(func() (int, bool) { return current, current > 0 })

	if got, _ := s.Get(); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
	current = 2
	if got, _ := s.Get(); got != 2 {
		t.Fatalf("expected recomputed 2, got %d", got)
	}

	final := s.WithFinalValue()
	current = 3
	if got, _ := final.Get(); got != 2 {
		t.Fatalf("expected frozen 2, got %d", got)
	}
	if !final.Immutable() {
		t.Fatalf("expected final supplier to be immutable")
	}

	current = 0
	if s.Present() {
		t.Fatalf("expected computed supplier to report missing")
	}
	if got, _ := s.OrElse(9).Get(); got != 9 {
		t.Fatalf("expected fallback 9, got %d", got)
	}
	if s.WithFinalValue().Present() {
		t.Fatalf("expected finalised missing supplier")
	}
}

func TestFixedOf_TypeMismatch(t *testing.T) {
	_, err := provider.FixedOf[int](provider.Describable("owner"), "x", provider.IdentitySanitizer)
	var mismatch *provider.TypeMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected TypeMismatchError, got %v", err)
	}
	msg := err.Error()
	for _, want := range []string{"owner", "int", "string"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected %q in %q", want, msg)
		}
	}
	if mismatch.Expected != reflect.TypeOf(0) || mismatch.Actual != reflect.TypeOf("") {
		t.Fatalf("unexpected types %v / %v", mismatch.Expected, mismatch.Actual)
	}
}

func TestFixedOf_SanitizesBeforeCheck(t *testing.T) {
	toInt := provider.SanitizerFunc(func(v any) any {
		if s, ok := v.(string); ok {
			return len(s)
		}
		return v
	})
	s, err := provider.FixedOf[int](provider.Describable("owner"), "abc", toInt)
	if err != nil {
		t.Fatalf("fixed: %v", err)
	}
	if got, _ := s.Get(); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
}

func TestHTMLSanitizer_StripsMarkup(t *testing.T) {
	s, err := provider.FixedOf[string](provider.Describable("title"), "<b>hello</b>", provider.HTMLSanitizer())
	if err != nil {
		t.Fatalf("fixed: %v", err)
	}
	if got, _ := s.Get(); got != "hello" {
		t.Fatalf("expected stripped value, got %q", got)
	}
}

func TestBooleanSuppliers(t *testing.T) {
	if v, _ := provider.True.Get(); !v {
		t.Fatalf("expected true")
	}
	if v, _ := provider.False.Get(); v {
		t.Fatalf("expected false")
	}
}

func TestUntyped_KeepsDeferredValuesDeferred(t *testing.T) {
	fixed := provider.Untyped(provider.Fixed(3))
	if got, err := fixed.Get(); err != nil || got != 3 || !fixed.Immutable() {
		t.Fatalf("unexpected fixed conversion: %v %v", got, err)
	}

	missing := provider.Untyped(provider.Missing[int]())
	if _, err := missing.Get(); !errors.Is(err, provider.ErrMissingValue) {
		t.Fatalf("expected missing value, got %v", err)
	}

	calls := 0
	lazy := provider.Untyped(provider.Computed(func() (string, bool) {
		calls++
		return "x", true
	}))
	if calls != 0 || lazy.Immutable() {
		t.Fatalf("expected conversion to stay deferred")
	}
	if got, _ := lazy.Get(); got != "x" || calls != 1 {
		t.Fatalf("unexpected computed conversion: %v after %d calls", got, calls)
	}

	same := provider.Fixed[any]("y")
	if provider.Untyped(same) != same {
		t.Fatalf("expected suppliers of any to be returned unchanged")
	}
}

func TestChecked_RejectsOtherTypesOnRead(t *testing.T) {
	src := provider.Computed(func() (any, bool) { return "x", true })
	checked := provider.Checked("person.age", reflect.TypeFor[int](), src)

	var mismatch *provider.TypeMismatchError
	if _, err := checked.Get(); !errors.As(err, &mismatch) {
		t.Fatalf("expected type mismatch, got %v", err)
	}
	if mismatch.Owner != "person.age" || mismatch.Actual != reflect.TypeFor[string]() {
		t.Fatalf("unexpected mismatch %+v", mismatch)
	}

	ok := provider.Checked("person.age", reflect.TypeFor[int](), provider.Fixed[any](7))
	if got, err := ok.Get(); err != nil || got != 7 {
		t.Fatalf("expected 7, got %v (%v)", got, err)
	}
}
