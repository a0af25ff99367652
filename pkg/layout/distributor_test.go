package layout

import (
	"regexp"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/field"
)

func TestWidths_SumToTotal(t *testing.T) {
	for _, total := range []int{12, 16, 24} {
		for n := 1; n <= 20; n++ {
			sum := 0
			for _, w := range Widths(n, total) {
				sum += w
			}
			if sum != total {
				t.Fatalf("n=%d total=%d: widths sum to %d", n, total, sum)
			}
		}
	}
}

func TestWidths_LastColumnAbsorbsRemainder(t *testing.T) {
	cases := []struct {
		n    int
		want []int
	}{
		{n: 1, want: []int{12}},
		{n: 2, want: []int{6, 6}},
		{n: 5, want: []int{2, 2, 2, 2, 4}},
		{n: 7, want: []int{1, 1, 1, 1, 1, 1, 6}},
	}
	for _, tc := range cases {
		if diff := cmp.Diff(tc.want, Widths(tc.n, 12)); diff != "" {
			t.Fatalf("n=%d widths mismatch (-want +got):\n%s", tc.n, diff)
		}
	}
	if got := Widths(0, 12); got != nil {
		t.Fatalf("expected nil widths for empty row, got %v", got)
	}
}

func TestPlan_ClassesSumToColumns(t *testing.T) {
	pattern := regexp.MustCompile(`^col-sm-(\d+)$`)
	d := New(0, "")
	for n := 1; n <= 20; n++ {
		children := make([]field.Field, n)
		for i := range children {
			children[i] = field.Text("f"+strconv.Itoa(i), "")
		}
		sum := 0
		for _, class := range d.Plan(children) {
			match := pattern.FindStringSubmatch(class)
			if match == nil {
				t.Fatalf("unexpected class %q", class)
			}
			width, _ := strconv.Atoi(match[1])
			sum += width
		}
		if sum != DefaultColumns {
			t.Fatalf("n=%d: class widths sum to %d", n, sum)
		}
	}
}

func TestAssign_ExplicitClassWins(t *testing.T) {
	d := New(12, "col-md-{width}")
	for n := 1; n <= 6; n++ {
		children := make([]field.Field, n)
		for i := range children {
			children[i] = field.Text("f"+strconv.Itoa(i), "")
		}
		children[0].CSSClass = "pe-2 w-50"

		d.Assign(children)

		if children[0].CSSClass != "pe-2 w-50" {
			t.Fatalf("n=%d: explicit class overwritten with %q", n, children[0].CSSClass)
		}
		for i := 1; i < n; i++ {
			if children[i].CSSClass == "" {
				t.Fatalf("n=%d: child %d left without class", n, i)
			}
		}
	}
}

func TestClass_Template(t *testing.T) {
	d := New(24, "span-{width} grid-{width}")
	if got := d.Class(8); got != "span-8 grid-8" {
		t.Fatalf("class mismatch: %q", got)
	}
}
