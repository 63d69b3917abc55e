package ui

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/jroimartin/gocui"

	"github.com/dantome/json-editor/internal/model"
	"github.com/dantome/json-editor/internal/submit"
)

const submitTimeout = 20 * time.Second

// singleLineEditor is an editor that doesn't consume Enter (lets keybinding
// handle it).
type singleLineEditor struct{}

func (e singleLineEditor) Edit(v *gocui.View, key gocui.Key, ch rune, mod gocui.Modifier) {
	switch {
	case key == gocui.KeyBackspace || key == gocui.KeyBackspace2:
		v.EditDelete(true)
	case key == gocui.KeyDelete:
		v.EditDelete(false)
	case key == gocui.KeyArrowLeft:
		v.MoveCursor(-1, 0, false)
	case key == gocui.KeyArrowRight:
		v.MoveCursor(1, 0, false)
	case key == gocui.KeyHome || key == gocui.KeyCtrlA:
		v.SetCursor(0, 0)
	case key == gocui.KeyEnd || key == gocui.KeyCtrlE:
		line := v.Buffer()
		v.SetCursor(len(line)-1, 0)
	case key == gocui.KeyEnter:
		// don't handle - let keybinding process it
	case ch != 0 && mod == 0:
		v.EditWrite(ch)
	}
}

func (a *App) layoutBuilder(maxX, maxY int) error {
	keep := []string{"document", "inputs"}
	if a.editing {
		keep = append(keep, "edit")
	}
	a.clearMainViews(keep)

	split := maxX * 2 / 3
	if split < 40 {
		split = maxX - 28
	}
	if split < 20 {
		split = maxX / 2
	}

	if v, err := a.g.SetView("document", 0, 2, split, maxY-3); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Wrap = false
		v.Autoscroll = false
	}
	if v, err := a.g.SetView("inputs", split+1, 2, maxX-1, maxY-3); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Highlight = true
		v.SelFgColor = gocui.ColorBlack
		v.SelBgColor = gocui.ColorGreen
		v.Autoscroll = false
	}

	a.renderBuilder()

	if a.editing {
		if _, err := a.g.View("edit"); err == nil {
			a.g.SetViewOnTop("edit")
			a.g.SetCurrentView("edit")
		}
	} else {
		a.setBuilderFocus()
	}
	return nil
}

func (a *App) setBuilderFocus() {
	if a.scr != screenBuilder || a.editing {
		return
	}
	name := "document"
	if a.pane == paneInputs {
		name = "inputs"
	}
	a.g.SetCurrentView(name)
}

func (a *App) renderBuilder() {
	a.renderFooter()

	if v, err := a.g.View("document"); err == nil {
		v.Title = "Document"
		if !a.doc.Valid() {
			v.Title = "Document (invalid json)"
		}
		v.Clear()
		fmt.Fprintln(v, a.doc.Text())
	}

	if v, err := a.g.View("inputs"); err == nil {
		v.Title = "Required inputs"
		v.Clear()
		rows := 0
		for _, in := range a.referencedInputs() {
			if in.header != "" {
				fmt.Fprintf(v, "%s# %s%s\n", colorDim, in.header, colorReset)
				rows++
				continue
			}
			req := ""
			if in.input.Required {
				req = "*"
			}
			val := a.inputs[in.input.Name]
			if val == "" && in.input.Example != "" {
				fmt.Fprintf(v, "%s%s = %s%s%s\n", req, in.input.Name, colorDim, in.input.Example, colorReset)
			} else {
				fmt.Fprintf(v, "%s%s = %s\n", req, in.input.Name, val)
			}
			rows++
		}
		if rows == 0 {
			fmt.Fprintln(v, "(no referenced apis)")
		}
		v.SetCursor(0, a.inputRow)
	}
}

// inputRowData is one rendered row of the inputs pane: either an api section
// header or an input line.
type inputRowData struct {
	header string
	input  model.Input
}

// referencedInputs lists the inputs of every API the document currently
// references, grouped under an api header row.
func (a *App) referencedInputs() []inputRowData {
	var out []inputRowData
	for _, name := range a.doc.ReferencedAPIs() {
		api, ok := a.catalog.Get(name)
		if !ok || len(api.Required) == 0 {
			continue
		}
		out = append(out, inputRowData{header: name})
		for _, in := range api.Required {
			out = append(out, inputRowData{input: in})
		}
	}
	return out
}

func (a *App) moveInputRow(delta int) func(*gocui.Gui, *gocui.View) error {
	return func(g *gocui.Gui, v *gocui.View) error {
		if a.scr != screenBuilder || a.editing {
			return nil
		}
		n := len(a.referencedInputs())
		if n == 0 {
			return nil
		}
		a.inputRow += delta
		if a.inputRow < 0 {
			a.inputRow = 0
		}
		if a.inputRow >= n {
			a.inputRow = n - 1
		}
		if v != nil {
			v.SetCursor(0, a.inputRow)
		}
		return nil
	}
}

// selectedInput returns the input under the cursor, skipping header rows.
func (a *App) selectedInput() (model.Input, bool) {
	rows := a.referencedInputs()
	if a.inputRow < 0 || a.inputRow >= len(rows) {
		return model.Input{}, false
	}
	row := rows[a.inputRow]
	if row.header != "" {
		return model.Input{}, false
	}
	return row.input, true
}

func (a *App) beginEditInput(g *gocui.Gui, v *gocui.View) error {
	if a.scr != screenBuilder || a.editing {
		return nil
	}
	in, ok := a.selectedInput()
	if !ok {
		return nil
	}

	a.editing = true
	a.editTarget = in.Name

	maxX, maxY := g.Size()
	width := 60
	if width > maxX-4 {
		width = maxX - 4
	}
	height := 3
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2

	if ev, err := g.SetView("edit", x0, y0, x0+width, y0+height); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		ev.Title = fmt.Sprintf(" %s (enter=ok, esc=cancel) ", in.Name)
		ev.Editable = true
		ev.Editor = singleLineEditor{}
		ev.BgColor = gocui.ColorBlack
		ev.FgColor = gocui.ColorWhite
	}
	if ev, err := g.View("edit"); err == nil {
		ev.Clear()
		cur := a.inputs[in.Name]
		fmt.Fprint(ev, cur)
		ev.SetCursor(len(cur), 0)
	}
	g.SetCurrentView("edit")
	return nil
}

func (a *App) closeEdit() error {
	if !a.editing {
		return nil
	}
	if v, err := a.g.View("edit"); err == nil {
		v.Clear()
		a.g.DeleteView("edit")
	}
	a.editing = false
	a.editTarget = ""
	a.setBuilderFocus()
	return nil
}

func (a *App) confirmEdit(g *gocui.Gui, v *gocui.View) error {
	if !a.editing {
		return nil
	}
	val := strings.TrimSpace(viewText(v))
	name := a.editTarget

	if val == "" {
		delete(a.inputs, name)
	} else {
		a.inputs[name] = val
	}

	a.closeEdit()
	a.renderBuilder()
	return nil
}

func (a *App) resetInput(*gocui.Gui, *gocui.View) error {
	if a.scr != screenBuilder || a.editing {
		return nil
	}
	in, ok := a.selectedInput()
	if !ok {
		return nil
	}
	delete(a.inputs, in.Name)
	a.renderBuilder()
	return nil
}

func (a *App) formatDocument(*gocui.Gui, *gocui.View) error {
	if a.scr != screenBuilder || a.editing {
		return nil
	}
	if err := a.doc.Format(); err != nil {
		a.errorMsg = "cannot format: " + err.Error()
		a.renderBuilder()
		return nil
	}
	a.errorMsg = ""
	a.renderBuilder()
	return nil
}

func (a *App) editDocInEditor(*gocui.Gui, *gocui.View) error {
	if a.scr != screenBuilder || a.editing {
		return nil
	}

	text := a.doc.Text()
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}

	f, err := os.CreateTemp("", "json-editor-doc-*.json")
	if err != nil {
		return nil
	}
	defer f.Close()
	if _, err := f.WriteString(text); err != nil {
		return nil
	}
	a.suspendEditorFile = f.Name()
	return gocui.ErrQuit
}

func (a *App) runExternalEditor(file string) error {
	editor := strings.TrimSpace(os.Getenv("JSON_EDITOR_EDITOR"))
	if editor == "" {
		editor = strings.TrimSpace(os.Getenv("EDITOR"))
	}
	if editor == "" {
		editor = "vi"
	}

	args := splitCommand(editor)
	cmd := exec.Command(args[0], append(args[1:], file)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return err
	}

	b, err := os.ReadFile(file)
	_ = os.Remove(file)
	if err != nil {
		return err
	}

	// Keep the edited text either way; validity gating handles the rest.
	a.doc.SetText(strings.TrimRight(string(b), "\n"))
	if !a.doc.Valid() {
		return fmt.Errorf("document is not valid json; submission disabled")
	}
	return a.doc.Format()
}

func splitCommand(s string) []string {
	// Minimal shell-like splitting: whitespace, no quotes/escapes.
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return []string{"vi"}
	}
	return fields
}

func (a *App) submitDocument(*gocui.Gui, *gocui.View) error {
	if a.editing {
		return nil
	}

	payload, err := submit.BuildPayload(a.doc, a.catalog, a.inputs)
	if err != nil {
		a.errorMsg = err.Error()
		a.renderFooter()
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
	defer cancel()

	res, err := submit.Submit(ctx, a.submitURL, payload, a.logger)
	if err != nil {
		a.errorMsg = err.Error()
		a.renderFooter()
		return nil
	}

	a.lastRes = res
	a.scr = screenResult
	a.errorMsg = ""
	return nil
}

func (a *App) rerun(*gocui.Gui, *gocui.View) error {
	if a.scr != screenResult {
		return nil
	}
	return a.submitDocument(nil, nil)
}

func viewText(v *gocui.View) string {
	b := v.Buffer()
	// gocui includes a trailing newline
	return strings.TrimSuffix(b, "\n")
}
