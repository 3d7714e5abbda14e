package bayes

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func threeClassData(t *testing.T) *Data {
	t.Helper()
	d, err := NewData(
		[]string{"de", "en", "fr"},
		[][]float32{
			{-1, -0.5, -2},
			{-3, -0.25, -0.75},
		},
		[]float32{-1.5, -0.5, -1},
	)
	if err != nil {
		t.Fatalf("NewData: %v", err)
	}
	return d
}

func TestScoresDotProductPlusPrior(t *testing.T) {
	d := threeClassData(t)
	got := d.Scores([]uint32{2, 1})
	want := []float32{
		2*-1 + 1*-3 + -1.5,
		2*-0.5 + 1*-0.25 + -0.5,
		2*-2 + 1*-0.75 + -1,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Scores = %v, want %v", got, want)
	}
}

func TestScoresOfEmptyVectorArePriors(t *testing.T) {
	d := threeClassData(t)
	if got := d.Scores([]uint32{0, 0}); !reflect.DeepEqual(got, d.PC) {
		t.Fatalf("Scores(zero) = %v, want priors %v", got, d.PC)
	}
}

func TestScoresAccumulateInFloat32(t *testing.T) {
	// 1 + 1e-8 is not representable in float32; accumulation must round each step.
	d, err := NewData([]string{"a", "b"}, [][]float32{{1, 0}, {1e-8, 0}}, []float32{0, 0})
	if err != nil {
		t.Fatalf("NewData: %v", err)
	}
	got := d.Scores([]uint32{1, 1})
	if got[0] != 1 {
		t.Fatalf("expected float32 rounding to 1, got %v", got[0])
	}
}

func TestPickKeepsLeftmostOnTies(t *testing.T) {
	classes := []string{"a", "b", "c"}
	r, ok := Pick(classes, []float32{-2, -1, -1})
	if !ok || r.Class != "b" || r.Score != -1 {
		t.Fatalf("Pick = %+v, %v", r, ok)
	}
	if _, ok := Pick(nil, nil); ok {
		t.Fatal("Pick on empty input should report no result")
	}
}

func TestSortResultsStableDescending(t *testing.T) {
	classes := []string{"a", "b", "c", "d"}
	got := SortResults(classes, []float32{-3, -1, -2, -1})
	want := []Result{{"b", -1}, {"d", -1}, {"c", -2}, {"a", -3}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SortResults = %v, want %v", got, want)
	}
}

func TestSortResultsToleratesNaN(t *testing.T) {
	nan := float32(math.NaN())
	classes := []string{"a", "b", "c"}
	first := SortResults(classes, []float32{-1, nan, -2})
	second := SortResults(classes, []float32{-1, nan, -2})
	if len(first) != 3 {
		t.Fatalf("expected 3 results, got %d", len(first))
	}
	for i := range first {
		if first[i].Class != second[i].Class {
			t.Fatalf("NaN ordering is not deterministic: %v vs %v", first, second)
		}
	}
}

func TestRestrictKeepsOrderAndColumns(t *testing.T) {
	d := threeClassData(t)
	sub, err := d.Restrict([]string{"fr", "de"})
	if err != nil {
		t.Fatalf("Restrict: %v", err)
	}
	if !reflect.DeepEqual(sub.Classes, []string{"de", "fr"}) {
		t.Fatalf("Classes = %v", sub.Classes)
	}
	if !reflect.DeepEqual(sub.PC, []float32{-1.5, -1}) {
		t.Fatalf("PC = %v", sub.PC)
	}
	wantPTC := [][]float32{{-1, -2}, {-3, -0.75}}
	if !reflect.DeepEqual(sub.PTC, wantPTC) {
		t.Fatalf("PTC = %v, want %v", sub.PTC, wantPTC)
	}
	if len(d.Classes) != 3 || len(d.PTC[0]) != 3 {
		t.Fatal("Restrict modified the receiver")
	}

	// relative scores survive restriction
	fv := []uint32{3, 1}
	full := d.Scores(fv)
	part := sub.Scores(fv)
	if part[0] != full[0] || part[1] != full[2] {
		t.Fatalf("restricted scores %v differ from canonical %v", part, full)
	}
}

func TestRestrictDeduplicates(t *testing.T) {
	d := threeClassData(t)
	if _, err := d.Restrict([]string{"en", "en"}); !errors.Is(err, ErrNoLanguage) {
		t.Fatalf("expected ErrNoLanguage for one distinct code, got %v", err)
	}
	sub, err := d.Restrict([]string{"en", "fr", "en"})
	if err != nil {
		t.Fatalf("Restrict: %v", err)
	}
	if len(sub.Classes) != 2 {
		t.Fatalf("expected 2 classes, got %v", sub.Classes)
	}
}

func TestRestrictErrors(t *testing.T) {
	d := threeClassData(t)

	if _, err := d.Restrict([]string{"en"}); !errors.Is(err, ErrNoLanguage) {
		t.Fatalf("single class: expected ErrNoLanguage, got %v", err)
	}
	if _, err := d.Restrict([]string{}); !errors.Is(err, ErrNoLanguage) {
		t.Fatalf("empty set: expected ErrNoLanguage, got %v", err)
	}

	_, err := d.Restrict([]string{"xx-not-real"})
	var unknown *UnknownLanguageError
	if !errors.As(err, &unknown) || unknown.Code != "xx-not-real" {
		t.Fatalf("expected UnknownLanguageError(xx-not-real), got %v", err)
	}
	if !errors.Is(err, ErrUnknownLanguage) {
		t.Fatalf("errors.Is(ErrUnknownLanguage) failed for %v", err)
	}

	_, err = d.Restrict([]string{"en", "zz", "yy"})
	if !errors.As(err, &unknown) || unknown.Code != "zz" {
		t.Fatalf("expected first unknown code zz, got %v", err)
	}
}

func TestNewDataRejectsBadShape(t *testing.T) {
	if _, err := NewData([]string{"a"}, nil, []float32{1, 2}); !errors.Is(err, ErrShape) {
		t.Fatalf("expected ErrShape, got %v", err)
	}
	if _, err := NewData([]string{"a", "b"}, [][]float32{{1}}, []float32{1, 2}); !errors.Is(err, ErrShape) {
		t.Fatalf("expected ErrShape, got %v", err)
	}
}

func TestNewDataRejectsNonFinite(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))
	cases := []struct {
		name string
		ptc  [][]float32
		pc   []float32
	}{
		{"nan prior", [][]float32{{-1, -2}}, []float32{nan, -1}},
		{"inf prior", [][]float32{{-1, -2}}, []float32{-1, -inf}},
		{"nan likelihood", [][]float32{{-1, nan}}, []float32{-1, -1}},
		{"inf likelihood", [][]float32{{inf, -2}}, []float32{-1, -1}},
	}
	for _, tc := range cases {
		if _, err := NewData([]string{"a", "b"}, tc.ptc, tc.pc); !errors.Is(err, ErrNonFinite) {
			t.Errorf("%s: expected ErrNonFinite, got %v", tc.name, err)
		}
	}
}

func TestSoftmaxHandlesInfiniteScores(t *testing.T) {
	ninf := float32(math.Inf(-1))
	got := Softmax{}.Normalize([]float32{ninf, ninf})
	if !reflect.DeepEqual(got, []float32{0.5, 0.5}) {
		t.Fatalf("Softmax(-Inf, -Inf) = %v, want uniform", got)
	}
	got = Softmax{}.Normalize([]float32{-1, ninf})
	if !reflect.DeepEqual(got, []float32{1, 0}) {
		t.Fatalf("Softmax(-1, -Inf) = %v, want [1 0]", got)
	}
}

func TestSoftmaxSumsToOneAndPreservesOrder(t *testing.T) {
	scores := []float32{-1200, -1190, -1250}
	probs := Softmax{}.Normalize(scores)
	var sum float64
	for _, p := range probs {
		sum += float64(p)
	}
	if math.Abs(sum-1) > 1e-5 {
		t.Fatalf("probabilities sum to %v", sum)
	}
	raw, _ := Pick([]string{"a", "b", "c"}, scores)
	norm, _ := Pick([]string{"a", "b", "c"}, probs)
	if raw.Class != norm.Class {
		t.Fatalf("softmax changed the winner: %s vs %s", raw.Class, norm.Class)
	}
}

func TestIdentityIsPassThrough(t *testing.T) {
	scores := []float32{-1, -2}
	if got := (Identity{}).Normalize(scores); &got[0] != &scores[0] {
		t.Fatal("identity should return the input slice")
	}
}

func TestParseNormalizer(t *testing.T) {
	for name, want := range map[string]string{"": "none", "none": "none", "softmax": "softmax"} {
		n, err := ParseNormalizer(name)
		if err != nil {
			t.Fatalf("ParseNormalizer(%q): %v", name, err)
		}
		if n.Name() != want {
			t.Fatalf("ParseNormalizer(%q).Name() = %q, want %q", name, n.Name(), want)
		}
	}
	if _, err := ParseNormalizer("sigmoid"); err == nil {
		t.Fatal("expected error")
	}
}

func BenchmarkScores(b *testing.B) {
	const feats, classes = 7480, 97
	ptc := make([][]float32, feats)
	for i := range ptc {
		ptc[i] = make([]float32, classes)
		for j := range ptc[i] {
			ptc[i][j] = -float32(i%13+j%7) / 10
		}
	}
	names := make([]string, classes)
	for j := range names {
		names[j] = string(rune('a'+j%26)) + string(rune('a'+j/26))
	}
	d, err := NewData(names, ptc, make([]float32, classes))
	if err != nil {
		b.Fatal(err)
	}
	fv := make([]uint32, feats)
	for i := 0; i < feats; i += 37 {
		fv[i] = 2
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = d.Scores(fv)
	}
}
