package diff_test

import (
	"strings"
	"testing"
	"testing/quick"

	"github.com/nicolagi/linemerge/internal/diff"
	"github.com/stretchr/testify/assert"
)

// without removes the spans from s.
func without(s string, spans []diff.Span) string {
	var b strings.Builder
	prev := 0
	for _, span := range spans {
		b.WriteString(s[prev:span.Start])
		prev = span.End
	}
	b.WriteString(s[prev:])
	return b.String()
}

func TestIntraline(t *testing.T) {
	t.Run("equal lines have no spans", func(t *testing.T) {
		l, r := diff.Intraline("same", "same")
		assert.Empty(t, l)
		assert.Empty(t, r)
	})
	t.Run("pure insertion", func(t *testing.T) {
		l, r := diff.Intraline("", "abc")
		assert.Empty(t, l)
		assert.Equal(t, []diff.Span{{Start: 0, End: 3}}, r)
	})
	t.Run("pure deletion", func(t *testing.T) {
		l, r := diff.Intraline("abc", "")
		assert.Equal(t, []diff.Span{{Start: 0, End: 3}}, l)
		assert.Empty(t, r)
	})
	t.Run("unchanged prefix is not highlighted", func(t *testing.T) {
		l, r := diff.Intraline("return nil", "return err")
		for _, span := range append(l, r...) {
			assert.True(t, span.Start >= len("return "), "span %v covers the common prefix", span)
		}
	})
	t.Run("what remains outside the spans is common", func(t *testing.T) {
		f := func(aw, bw lines) bool {
			a, b := strings.Join(aw, " "), strings.Join(bw, " ")
			l, r := diff.Intraline(a, b)
			return without(a, l) == without(b, r)
		}
		if err := quick.Check(f, nil); err != nil {
			t.Error(err)
		}
	})
}

func TestRegionSpans(t *testing.T) {
	left := []string{"a", "int x = 1;", "int y = 2;", "z"}
	right := []string{"a", "int x = 10;", "z"}
	result := diff.Compute(left, right)
	if len(result) != 1 {
		t.Fatalf("got %d regions, want 1", len(result))
	}
	pairs := diff.RegionSpans(result[0], left, right)
	if len(pairs) != 1 {
		t.Fatalf("got %d pairs, want 1", len(pairs))
	}
	assert.Equal(t, 2, pairs[0].LeftLine)
	assert.Equal(t, 2, pairs[0].RightLine)
	assert.Equal(t, without(left[1], pairs[0].Left), without(right[1], pairs[0].Right))

	insertion := diff.Region{LeftStart: 2, LeftEnd: 1, RightStart: 2, RightEnd: 2, Kind: diff.Insert}
	assert.Nil(t, diff.RegionSpans(insertion, left, right))
}

func TestSplitLines(t *testing.T) {
	testCases := []struct {
		text string
		want []string
	}{
		{"", nil},
		{"\n", []string{""}},
		{"a", []string{"a"}},
		{"a\n", []string{"a"}},
		{"a\nb", []string{"a", "b"}},
		{"a\nb\n", []string{"a", "b"}},
		{"a\n\n", []string{"a", ""}},
		{"a\r\nb\r\n", []string{"a\r", "b\r"}},
	}
	for _, tc := range testCases {
		got := diff.SplitLines(tc.text)
		assert.Equal(t, tc.want, got, "SplitLines(%q)", tc.text)
	}
	assert.Equal(t, "a\n\nb\n", diff.JoinLines([]string{"a", "", "b"}))
	assert.Equal(t, "", diff.JoinLines(nil))
	f := func(a lines) bool {
		return sameLines(a, diff.SplitLines(diff.JoinLines(a)))
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}
