package nvimhost

import (
	"io"

	"github.com/neovim/go-client/nvim"
	log "github.com/sirupsen/logrus"
)

// nvimEditor drives a Neovim instance over msgpack-rpc.
type nvimEditor struct {
	n  *nvim.Nvim
	ns int
}

func newEditor(n *nvim.Nvim) (*nvimEditor, error) {
	e := &nvimEditor{n: n}
	batch := n.NewBatch()
	batch.ExecLua(`return vim.api.nvim_create_namespace('linemerge')`, &e.ns, nil)
	if err := batch.Execute(); err != nil {
		return nil, errorf("newEditor", "%w", err)
	}
	return e, nil
}

func (e *nvimEditor) Lines(buf nvim.Buffer) ([]string, error) {
	var raw [][]byte
	batch := e.n.NewBatch()
	batch.BufferLines(buf, 0, -1, true, &raw)
	if err := batch.Execute(); err != nil {
		return nil, err
	}
	lines := make([]string, len(raw))
	for i, line := range raw {
		lines[i] = string(line)
	}
	return lines, nil
}

func (e *nvimEditor) SetLines(buf nvim.Buffer, lines []string) error {
	raw := make([][]byte, len(lines))
	for i, line := range lines {
		raw[i] = []byte(line)
	}
	batch := e.n.NewBatch()
	batch.SetBufferLines(buf, 0, -1, true, raw)
	return batch.Execute()
}

func (e *nvimEditor) Highlight(buf nvim.Buffer, marks []Mark) error {
	batch := e.n.NewBatch()
	batch.ClearBufferNamespace(buf, e.ns, 0, -1)
	if len(marks) > 0 {
		luaMarks := make([]map[string]any, len(marks))
		for i, m := range marks {
			luaMarks[i] = map[string]any{
				"line":      m.Line,
				"group":     m.Group,
				"start_col": m.StartCol,
				"end_col":   m.EndCol,
			}
		}
		batch.ExecLua(`
			local buf, ns, marks = ...
			for _, m in ipairs(marks) do
				vim.api.nvim_buf_add_highlight(buf, ns, m.group, m.line, m.start_col, m.end_col)
			end
		`, nil, int(buf), e.ns, luaMarks)
	}
	return batch.Execute()
}

func (e *nvimEditor) Show(buf nvim.Buffer, line int) error {
	batch := e.n.NewBatch()
	batch.ExecLua(`
		local buf, line = ...
		for _, win in ipairs(vim.fn.win_findbuf(buf)) do
			vim.api.nvim_win_set_cursor(win, {line, 0})
		end
	`, nil, int(buf), line)
	return batch.Execute()
}

func (e *nvimEditor) Echo(msg string) error {
	batch := e.n.NewBatch()
	batch.ExecLua(`vim.api.nvim_echo({{...}}, false, {})`, nil, msg)
	return batch.Execute()
}

// Register exposes the host to Neovim as the notifications
// linemerge_compare, linemerge_next, linemerge_prev and linemerge_merge.
// Failures are echoed in the editor, as notifications have no reply.
func (h *Host) Register(n *nvim.Nvim) error {
	report := func(name string, err error) {
		if err == nil {
			return
		}
		log.WithField("handler", name).Warnf("Failed: %v", err)
		if err := h.editor.Echo("linemerge: " + err.Error()); err != nil {
			log.WithField("handler", name).Warnf("Could not echo error: %v", err)
		}
	}
	handlers := map[string]interface{}{
		"linemerge_compare": func(_ *nvim.Nvim, left, right int) {
			report("linemerge_compare", h.Compare(nvim.Buffer(left), nvim.Buffer(right)))
		},
		"linemerge_next": func(_ *nvim.Nvim) {
			report("linemerge_next", h.Next())
		},
		"linemerge_prev": func(_ *nvim.Nvim) {
			report("linemerge_prev", h.Prev())
		},
		"linemerge_merge": func(_ *nvim.Nvim, direction string) {
			report("linemerge_merge", h.Merge(direction))
		},
	}
	for name, f := range handlers {
		if err := n.RegisterHandler(name, f); err != nil {
			return errorf("Host.Register", "%s: %w", name, err)
		}
	}
	return nil
}

// Serve talks msgpack-rpc with Neovim over r and w, usually the standard
// input and output of a job started with jobstart(..., {'rpc': v:true}),
// until the connection closes.
func Serve(r io.Reader, w io.Writer, c io.Closer) error {
	n, err := nvim.New(r, w, c, log.Printf)
	if err != nil {
		return errorf("Serve", "%w", err)
	}
	// Requests are only answered while serving, so the namespace is created
	// once the loop runs.
	done := make(chan error, 1)
	go func() {
		done <- n.Serve()
	}()
	editor, err := newEditor(n)
	if err != nil {
		_ = n.Close()
		<-done
		return err
	}
	h := New(editor)
	if err := h.Register(n); err != nil {
		_ = n.Close()
		<-done
		return err
	}
	log.Info("Serving Neovim")
	if err := <-done; err != nil && err != io.EOF {
		return errorf("Serve", "%w", err)
	}
	return nil
}
