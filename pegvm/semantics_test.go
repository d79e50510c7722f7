package pegvm

import (
	"testing"
)

func TestSemantics_replayOrder(t *testing.T) {
	var fired []string
	mark := func(name string) Expr {
		return Act(Eps, func(*Semantics) { fired = append(fired, name) })
	}

	g := mustStart(t, Define(Seq(
		mark("one"), Lit("a"), mark("two"), Lit("b"), mark("three"), Eoi,
	)))

	fired = nil
	if !mustParse(t, g, "ab") {
		t.Fatalf("%s: parse failed", t.Name())
	}
	want := []string{"one", "two", "three"}
	if len(fired) != len(want) {
		t.Fatalf("%s: fired %v, want %v", t.Name(), fired, want)
	}
	for i := range want {
		if fired[i] != want[i] {
			t.Fatalf("%s: fired %v, want %v", t.Name(), fired, want)
		}
	}
}

func TestSemantics_failedParseFiresNothing(t *testing.T) {
	var fired int
	g := mustStart(t, Define(Seq(
		Act(Lit("a"), func(*Semantics) { fired++ }),
		Lit("b"), Eoi,
	)))

	fired = 0
	if mustParse(t, g, "ax") {
		t.Fatalf("%s: parse unexpectedly succeeded", t.Name())
	}
	if fired != 0 {
		t.Errorf("%s: %d actions fired on a failed parse", t.Name(), fired)
	}
}

func TestSemantics_escapePrunesSiblings(t *testing.T) {
	var fired []string
	inner := NewRule()
	inner.Define(Seq(
		Act(Eps, func(s *Semantics) {
			fired = append(fired, "escape")
			s.Escape()
		}),
		Act(Lit("a"), func(*Semantics) { fired = append(fired, "pruned") }),
		Act(Eps, func(*Semantics) { fired = append(fired, "pruned2") }),
	))
	root := Define(Seq(
		inner.Ref(1),
		Act(Eps, func(*Semantics) { fired = append(fired, "after") }),
		Eoi,
	))
	g := mustStart(t, root)

	fired = nil
	if !mustParse(t, g, "a") {
		t.Fatalf("%s: parse failed", t.Name())
	}
	want := []string{"escape", "after"}
	if len(fired) != len(want) || fired[0] != want[0] || fired[1] != want[1] {
		t.Errorf("%s: fired %v, want %v", t.Name(), fired, want)
	}
}

func TestSemantics_attributes(t *testing.T) {
	var got int
	g := mustStart(t, Define(Seq(
		Act(Attr(Lit("x"), func() int { return 42 }),
			func(s *Semantics) { got = s.PopAttribute().(int) }),
		Eoi,
	)))

	got = 0
	if !mustParse(t, g, "x") {
		t.Fatalf("%s: parse failed", t.Name())
	}
	if got != 42 {
		t.Errorf("%s: got %d, want 42", t.Name(), got)
	}
}

func TestSemantics_variablePerDepth(t *testing.T) {
	sema := NewSemantics()
	v := NewVariable[string](sema)

	var outerSaw string
	inner := NewRule()
	inner.Define(Seq(
		Act(Lit("b"), func(*Semantics) { v.Set("inner") }),
		Act(Eps, func(*Semantics) {}),
	))
	root := Define(Seq(
		Act(Lit("a"), func(*Semantics) { v.Set("outer") }),
		inner.Ref(1),
		Act(Eps, func(*Semantics) { outerSaw = v.Get() }),
		Eoi,
	))
	g := mustStart(t, root)

	ok, err := ParseWith([]byte("ab"), g, sema)
	if err != nil || !ok {
		t.Fatalf("%s: parse = %v, %v", t.Name(), ok, err)
	}
	if outerSaw != "outer" {
		t.Errorf("%s: outer slot clobbered: %q", t.Name(), outerSaw)
	}
	if v.At(2) != "inner" {
		t.Errorf("%s: inner slot = %q, want %q", t.Name(), v.At(2), "inner")
	}
}

func TestSemantics_bindText(t *testing.T) {
	sema := NewSemantics()
	v := NewVariable[string](sema)

	var got string
	g := mustStart(t, Define(Seq(
		BindText(v, Plus(ChRange('0', '9'))),
		Act(Eps, func(*Semantics) { got = v.Get() }),
		Eoi,
	)))

	ok, err := ParseWith([]byte("2048"), g, sema)
	if err != nil || !ok {
		t.Fatalf("%s: parse = %v, %v", t.Name(), ok, err)
	}
	if got != "2048" {
		t.Errorf("%s: bound %q, want %q", t.Name(), got, "2048")
	}
}

func TestSemantics_predicateDropsSpeculativeResponses(t *testing.T) {
	var fired int
	g := mustStart(t, Define(Seq(
		Cho(
			Seq(Act(Lit("a"), func(*Semantics) { fired++ }),
				Pred(func(*Parser) bool { return false })),
			Lit("a"),
		),
		Eoi,
	)))

	fired = 0
	if !mustParse(t, g, "a") {
		t.Fatalf("%s: parse failed", t.Name())
	}
	if fired != 0 {
		t.Errorf("%s: %d speculative actions survived the failed predicate", t.Name(), fired)
	}
}
