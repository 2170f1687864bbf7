package diff_test

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"testing"

	textdiff "github.com/andreyvit/diff"
	"github.com/nicolagi/linemerge/internal/diff"
	"github.com/stretchr/testify/assert"
)

func numbered(n int) []string {
	var ll []string
	for i := 1; i <= n; i++ {
		ll = append(ll, strconv.Itoa(i))
	}
	return ll
}

func TestUnified(t *testing.T) {
	changedFifth := numbered(20)
	changedFifth[4] = "five"
	twoHunks := numbered(20)
	twoHunks[1] = "two"
	twoHunks[17] = "eighteen"
	testCases := []struct {
		name    string
		left    []string
		right   []string
		options []diff.UnifiedOption
		want    string
	}{
		{
			name:  "no differences, no output",
			left:  numbered(3),
			right: numbered(3),
		},
		{
			name:  "one changed line with default context",
			left:  numbered(20),
			right: changedFifth,
			want:  "@@ -2,7 +2,7 @@\n 2\n 3\n 4\n-5\n+five\n 6\n 7\n 8\n",
		},
		{
			name:    "one changed line without context",
			left:    numbered(20),
			right:   changedFifth,
			options: []diff.UnifiedOption{diff.UnifiedContext(0)},
			want:    "@@ -5 +5 @@\n-5\n+five\n",
		},
		{
			name:    "distant changes make two hunks",
			left:    numbered(20),
			right:   twoHunks,
			options: []diff.UnifiedOption{diff.UnifiedContext(1)},
			want:    "@@ -1,3 +1,3 @@\n 1\n-2\n+two\n 3\n@@ -17,3 +17,3 @@\n 17\n-18\n+eighteen\n 19\n",
		},
		{
			name:  "insertion into nothing",
			right: []string{"a", "b"},
			want:  "@@ -0,0 +1,2 @@\n+a\n+b\n",
		},
		{
			name: "deletion of everything",
			left: []string{"a"},
			want: "@@ -1 +0,0 @@\n-a\n",
		},
		{
			name:    "header names",
			left:    []string{"a"},
			right:   []string{"b"},
			options: []diff.UnifiedOption{diff.UnifiedNames("old", "new")},
			want:    "--- old\n+++ new\n@@ -1 +1 @@\n-a\n+b\n",
		},
		{
			name:  "binary contents",
			left:  []string{"a\x00b"},
			right: []string{"ab"},
			want:  "Binary files differ\n",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := diff.UnifiedString(tc.left, tc.right, diff.Compute(tc.left, tc.right), tc.options...)
			if err != nil {
				t.Fatalf("got %v, want nil error", err)
			}
			if got != tc.want {
				t.Errorf("unified diff mismatch:\n%s", textdiff.LineDiff(tc.want, got))
			}
		})
	}
}

type failingWriter struct {
	err error
}

func (w failingWriter) Write([]byte) (int, error) {
	return 0, w.err
}

func TestUnifiedPassesWriteError(t *testing.T) {
	a, b := []string{"a"}, []string{"b"}
	want := errors.New("disk full")
	err := diff.Unified(failingWriter{err: want}, a, b, diff.Compute(a, b))
	assert.True(t, errors.Is(err, want), "got %v, want %v", err, want)
}

func ExampleUnified() {
	left := diff.SplitLines("one\ntwo\nthree\n")
	right := diff.SplitLines("one\nTWO\nthree\n")
	var buf bytes.Buffer
	_ = diff.Unified(&buf, left, right, diff.Compute(left, right), diff.UnifiedNames("a", "b"))
	fmt.Print(buf.String())
	// Output:
	// --- a
	// +++ b
	// @@ -1,3 +1,3 @@
	//  one
	// -two
	// +TWO
	//  three
}
