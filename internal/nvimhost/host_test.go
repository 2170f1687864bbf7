package nvimhost

import (
	"errors"
	"testing"

	"github.com/neovim/go-client/nvim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEditor struct {
	buffers map[nvim.Buffer][]string
	marks   map[nvim.Buffer][]Mark
	shown   map[nvim.Buffer]int
	echoed  []string
	failSet error
}

func newFakeEditor() *fakeEditor {
	return &fakeEditor{
		buffers: map[nvim.Buffer][]string{
			1: {"a", "b", "c", "d"},
			2: {"a", "x", "y", "b", "c", "D"},
		},
		marks: make(map[nvim.Buffer][]Mark),
		shown: make(map[nvim.Buffer]int),
	}
}

func (e *fakeEditor) Lines(buf nvim.Buffer) ([]string, error) {
	lines, ok := e.buffers[buf]
	if !ok {
		return nil, errors.New("invalid buffer id")
	}
	return append([]string(nil), lines...), nil
}

func (e *fakeEditor) SetLines(buf nvim.Buffer, lines []string) error {
	if e.failSet != nil {
		return e.failSet
	}
	e.buffers[buf] = append([]string(nil), lines...)
	return nil
}

func (e *fakeEditor) Highlight(buf nvim.Buffer, marks []Mark) error {
	e.marks[buf] = marks
	return nil
}

func (e *fakeEditor) Show(buf nvim.Buffer, line int) error {
	e.shown[buf] = line
	return nil
}

func (e *fakeEditor) Echo(msg string) error {
	e.echoed = append(e.echoed, msg)
	return nil
}

func (e *fakeEditor) lastEcho() string {
	if len(e.echoed) == 0 {
		return ""
	}
	return e.echoed[len(e.echoed)-1]
}

func TestHostCompare(t *testing.T) {
	e := newFakeEditor()
	h := New(e)
	require.Nil(t, h.Compare(1, 2))
	assert.Equal(t, "linemerge: region 1/2 (insert 2,1 2,3)", e.lastEcho())
	// The current region is an insertion: nothing to mark on the left but
	// the replaced last line.
	assert.Equal(t, []Mark{{Line: 3, Group: groupChanged, EndCol: -1}}, e.marks[1])
	assert.Equal(t, []Mark{
		{Line: 1, Group: groupCurrent, EndCol: -1},
		{Line: 2, Group: groupCurrent, EndCol: -1},
		{Line: 5, Group: groupChanged, EndCol: -1},
	}, e.marks[2])
	assert.Equal(t, 2, e.shown[1])
	assert.Equal(t, 2, e.shown[2])
}

func TestHostCompareUnknownBuffer(t *testing.T) {
	h := New(newFakeEditor())
	assert.NotNil(t, h.Compare(1, 42))
}

func TestHostNavigation(t *testing.T) {
	e := newFakeEditor()
	h := New(e)
	assert.Equal(t, errNotCompared, h.Next())
	assert.Empty(t, e.echoed)
	require.Nil(t, h.Compare(1, 2))
	require.Nil(t, h.Next())
	assert.Equal(t, "linemerge: region 2/2 (replace 4,4 6,6)", e.lastEcho())
	assert.Equal(t, 4, e.shown[1])
	assert.Equal(t, 6, e.shown[2])
	// The current replacement carries intraline marks on both sides.
	assert.Contains(t, e.marks[1], Mark{Line: 3, Group: groupSpan, StartCol: 0, EndCol: 1})
	assert.Contains(t, e.marks[2], Mark{Line: 5, Group: groupSpan, StartCol: 0, EndCol: 1})
	require.Nil(t, h.Prev())
	assert.Equal(t, "linemerge: region 1/2 (insert 2,1 2,3)", e.lastEcho())
}

func TestHostMerge(t *testing.T) {
	e := newFakeEditor()
	h := New(e)
	require.Nil(t, h.Compare(1, 2))
	require.Nil(t, h.Merge("left"))
	assert.Equal(t, []string{"a", "x", "y", "b", "c", "d"}, e.buffers[1])
	assert.Equal(t, "linemerge: region 1/1 (replace 6,6 6,6)", e.lastEcho())
	require.Nil(t, h.Merge(">"))
	assert.Equal(t, []string{"a", "x", "y", "b", "c", "d"}, e.buffers[2])
	assert.Equal(t, "linemerge: identical", e.lastEcho())
	assert.Empty(t, e.marks[1])
	assert.Empty(t, e.marks[2])
	require.Nil(t, h.Merge("right"))
	assert.Equal(t, "linemerge: nothing to merge", e.lastEcho())
}

func TestHostMergeAfterEdits(t *testing.T) {
	e := newFakeEditor()
	h := New(e)
	require.Nil(t, h.Compare(1, 2))
	require.Nil(t, h.Next())
	// The user changes the first line of the left buffer by hand.
	e.buffers[1] = []string{"A", "b", "c", "d"}
	require.Nil(t, h.Merge("left"))
	assert.Equal(t, []string{"A", "b", "c", "d"}, e.buffers[1], "edits must survive")
	assert.Equal(t, "linemerge: buffers changed, regions recomputed; merge again", e.lastEcho())
	// The second region is still current and merges as expected.
	require.Nil(t, h.Merge("left"))
	assert.Equal(t, []string{"A", "b", "c", "D"}, e.buffers[1])
	assert.Equal(t, []string{"a", "x", "y", "b", "c", "D"}, e.buffers[2])
	assert.Equal(t, "linemerge: region 1/1 (replace 1,1 1,3)", e.lastEcho())
}

func TestHostMergeKeepsCursor(t *testing.T) {
	e := newFakeEditor()
	h := New(e)
	require.Nil(t, h.Compare(1, 2))
	require.Nil(t, h.Next())
	require.Nil(t, h.Merge("right"))
	assert.Equal(t, []string{"a", "x", "y", "b", "c", "d"}, e.buffers[2])
	assert.Equal(t, []string{"a", "b", "c", "d"}, e.buffers[1])
}

func TestHostMergeErrors(t *testing.T) {
	e := newFakeEditor()
	h := New(e)
	assert.Equal(t, errNotCompared, h.Merge("left"))
	require.Nil(t, h.Compare(1, 2))
	assert.NotNil(t, h.Merge("up"))
	e.failSet = errors.New("buffer is not modifiable")
	err := h.Merge("right")
	require.NotNil(t, err)
	assert.True(t, errors.Is(err, e.failSet))
}
