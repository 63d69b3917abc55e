package ui

import (
	"fmt"
	"log/slog"

	"github.com/jroimartin/gocui"

	"github.com/dantome/json-editor/internal/model"
	"github.com/dantome/json-editor/internal/schema"
	"github.com/dantome/json-editor/internal/submit"
)

type screen int

const (
	screenCatalog screen = iota
	screenBuilder
	screenResult
)

type focusPane int

const (
	paneDocument focusPane = iota
	paneInputs
)

type App struct {
	g *gocui.Gui

	scr screen

	catalog *model.Catalog
	logger  *slog.Logger

	doc    *schema.Document
	inputs map[string]string

	entries  []entry
	filter   string
	filtered []int
	selected int

	pane       focusPane
	inputRow   int
	editing    bool
	editTarget string

	suspendEditorFile string

	submitURL string
	lastRes   submit.Result
	errorMsg  string
}

func NewApp(cat *model.Catalog, logger *slog.Logger) *App {
	a := &App{
		catalog: cat,
		logger:  logger,
		scr:     screenCatalog,
		doc:     schema.NewDocument(),
		inputs:  map[string]string{},
	}
	a.entries = buildEntries(cat)
	a.recomputeFilter()
	return a
}

func (a *App) SetSubmitURL(u string) {
	a.submitURL = u
}

func (a *App) Run() error {
	// The UI sometimes needs to drop out of the terminal to run an external
	// process ($EDITOR for whole-document editing). gocui has no native
	// suspend/resume, so we exit the main loop, run the editor, and re-create
	// the GUI.
	for {
		g, err := gocui.NewGui(gocui.OutputNormal)
		if err != nil {
			return err
		}
		a.g = g

		g.BgColor = gocui.ColorBlack
		g.FgColor = gocui.ColorWhite
		g.Cursor = true
		g.InputEsc = true
		g.SetManagerFunc(a.layout)

		if err := a.bindKeys(); err != nil {
			g.Close()
			return err
		}

		err = g.MainLoop()
		g.Close()

		if a.suspendEditorFile != "" {
			file := a.suspendEditorFile
			a.suspendEditorFile = ""
			if err := a.runExternalEditor(file); err != nil {
				a.errorMsg = err.Error()
			}
			continue
		}

		if err != nil && err != gocui.ErrQuit {
			return err
		}
		return nil
	}
}

func (a *App) layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()

	if v, err := g.SetView("header", 0, 0, maxX-1, 2); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Frame = false
		v.BgColor = gocui.ColorBlack
		v.FgColor = gocui.ColorWhite
		fmt.Fprintln(v, colorGreen+"json-editor"+colorReset+"  -  schema builder")
	}

	if v, err := g.SetView("footer", 0, maxY-2, maxX-1, maxY); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Frame = false
		v.BgColor = gocui.ColorBlack
		v.FgColor = gocui.ColorWhite
	}
	a.renderFooter()

	switch a.scr {
	case screenCatalog:
		return a.layoutCatalog(maxX, maxY)
	case screenBuilder:
		return a.layoutBuilder(maxX, maxY)
	case screenResult:
		return a.layoutResult(maxX, maxY)
	default:
		return nil
	}
}

func (a *App) layoutCatalog(maxX, maxY int) error {
	a.clearMainViews([]string{"filter", "fields", "preview"})

	split := maxX / 2
	if split < 30 {
		split = maxX - 1
	}

	if v, err := a.g.SetView("filter", 0, 2, split, 4); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Filter"
		v.Editable = false
	}
	if v, err := a.g.SetView("fields", 0, 4, split, maxY-3); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Fields"
		v.Highlight = true
		v.SelFgColor = gocui.ColorBlack
		v.SelBgColor = gocui.ColorGreen
		v.Autoscroll = false
	}
	if split < maxX-1 {
		if v, err := a.g.SetView("preview", split+1, 2, maxX-1, maxY-3); err != nil {
			if err != gocui.ErrUnknownView {
				return err
			}
			v.Wrap = false
		}
	}

	a.renderFilter()
	a.renderFields()
	a.renderPreview()
	if _, err := a.g.SetCurrentView("fields"); err != nil {
		return err
	}
	return nil
}

func (a *App) layoutResult(maxX, maxY int) error {
	a.clearMainViews([]string{"result"})

	if v, err := a.g.SetView("result", 0, 2, maxX-1, maxY-3); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Submission"
		v.Wrap = false
		v.Autoscroll = false
	}
	a.renderResult()
	if _, err := a.g.SetCurrentView("result"); err != nil {
		return err
	}
	return nil
}

func (a *App) clearMainViews(keep []string) {
	keepSet := map[string]bool{"header": true, "footer": true}
	for _, k := range keep {
		keepSet[k] = true
	}
	if a.editing {
		keepSet["edit"] = true
	}

	for _, n := range []string{"filter", "fields", "preview", "document", "inputs", "edit", "result"} {
		if keepSet[n] {
			continue
		}
		if v, err := a.g.View(n); err == nil {
			v.Clear()
			a.g.DeleteView(n)
		}
	}
}

func (a *App) bindKeys() error {
	g := a.g
	if err := g.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone, a.quit); err != nil {
		return err
	}
	if err := g.SetKeybinding("", gocui.KeyEsc, gocui.ModNone, a.back); err != nil {
		return err
	}
	if err := g.SetKeybinding("", gocui.KeyTab, gocui.ModNone, a.tab); err != nil {
		return err
	}
	if err := g.SetKeybinding("", gocui.KeyCtrlR, gocui.ModNone, a.submitDocument); err != nil {
		return err
	}

	// catalog list
	if err := g.SetKeybinding("fields", gocui.KeyArrowDown, gocui.ModNone, a.moveSel(1)); err != nil {
		return err
	}
	if err := g.SetKeybinding("fields", gocui.KeyArrowUp, gocui.ModNone, a.moveSel(-1)); err != nil {
		return err
	}
	if err := g.SetKeybinding("fields", gocui.KeyEnter, gocui.ModNone, a.insertSelected); err != nil {
		return err
	}
	if err := g.SetKeybinding("fields", gocui.KeyBackspace, gocui.ModNone, a.filterBackspace); err != nil {
		return err
	}
	if err := g.SetKeybinding("fields", gocui.KeyBackspace2, gocui.ModNone, a.filterBackspace); err != nil {
		return err
	}
	// typing filters; 'q' included, quit lives on ctrl+c / esc
	for r := rune(32); r <= rune(126); r++ {
		if err := g.SetKeybinding("fields", r, gocui.ModNone, a.appendFilterRune(r)); err != nil {
			return err
		}
	}

	// builder
	if err := g.SetKeybinding("document", gocui.KeyEnter, gocui.ModNone, a.editDocInEditor); err != nil {
		return err
	}
	if err := g.SetKeybinding("document", gocui.KeyArrowDown, gocui.ModNone, a.scrollView("document", 1)); err != nil {
		return err
	}
	if err := g.SetKeybinding("document", gocui.KeyArrowUp, gocui.ModNone, a.scrollView("document", -1)); err != nil {
		return err
	}
	if err := g.SetKeybinding("document", 'f', gocui.ModNone, a.formatDocument); err != nil {
		return err
	}
	if err := g.SetKeybinding("inputs", 'f', gocui.ModNone, a.formatDocument); err != nil {
		return err
	}
	if err := g.SetKeybinding("inputs", gocui.KeyArrowDown, gocui.ModNone, a.moveInputRow(1)); err != nil {
		return err
	}
	if err := g.SetKeybinding("inputs", gocui.KeyArrowUp, gocui.ModNone, a.moveInputRow(-1)); err != nil {
		return err
	}
	if err := g.SetKeybinding("inputs", gocui.KeyEnter, gocui.ModNone, a.beginEditInput); err != nil {
		return err
	}
	if err := g.SetKeybinding("inputs", 'd', gocui.ModNone, a.resetInput); err != nil {
		return err
	}

	// edit modal
	if err := g.SetKeybinding("edit", gocui.KeyEnter, gocui.ModNone, a.confirmEdit); err != nil {
		return err
	}

	// result
	if err := g.SetKeybinding("result", gocui.KeyArrowDown, gocui.ModNone, a.scrollView("result", 1)); err != nil {
		return err
	}
	if err := g.SetKeybinding("result", gocui.KeyArrowUp, gocui.ModNone, a.scrollView("result", -1)); err != nil {
		return err
	}
	if err := g.SetKeybinding("result", 'r', gocui.ModNone, a.rerun); err != nil {
		return err
	}

	return nil
}

func (a *App) quit(*gocui.Gui, *gocui.View) error { return gocui.ErrQuit }

func (a *App) back(*gocui.Gui, *gocui.View) error {
	if a.editing {
		return a.closeEdit()
	}
	switch a.scr {
	case screenResult:
		a.scr = screenBuilder
	case screenBuilder:
		a.scr = screenCatalog
	case screenCatalog:
		return gocui.ErrQuit
	}
	a.errorMsg = ""
	return nil
}

// tab moves between the catalog and builder screens, and between builder
// panes once there.
func (a *App) tab(*gocui.Gui, *gocui.View) error {
	if a.editing {
		return nil
	}
	switch a.scr {
	case screenCatalog:
		a.scr = screenBuilder
		a.pane = paneDocument
		a.errorMsg = ""
	case screenBuilder:
		if a.pane == paneDocument {
			a.pane = paneInputs
		} else {
			a.pane = paneDocument
		}
		a.setBuilderFocus()
	}
	return nil
}

func (a *App) moveSel(delta int) func(*gocui.Gui, *gocui.View) error {
	return func(g *gocui.Gui, v *gocui.View) error {
		if a.scr != screenCatalog || len(a.filtered) == 0 {
			return nil
		}
		a.selected += delta
		if a.selected < 0 {
			a.selected = 0
		}
		if a.selected >= len(a.filtered) {
			a.selected = len(a.filtered) - 1
		}
		if fv, err := a.g.View("fields"); err == nil {
			fv.SetCursor(0, a.selected)
		}
		return nil
	}
}

func (a *App) appendFilterRune(r rune) func(*gocui.Gui, *gocui.View) error {
	return func(g *gocui.Gui, v *gocui.View) error {
		if a.scr != screenCatalog || a.editing {
			return nil
		}
		a.filter += string(r)
		a.recomputeFilter()
		a.renderFilter()
		a.renderFields()
		return nil
	}
}

func (a *App) filterBackspace(*gocui.Gui, *gocui.View) error {
	if a.scr != screenCatalog || a.editing {
		return nil
	}
	if len(a.filter) == 0 {
		return nil
	}
	a.filter = a.filter[:len(a.filter)-1]
	a.recomputeFilter()
	a.renderFilter()
	a.renderFields()
	return nil
}

func (a *App) scrollView(name string, delta int) func(*gocui.Gui, *gocui.View) error {
	return func(g *gocui.Gui, v *gocui.View) error {
		if v == nil {
			return nil
		}
		ox, oy := v.Origin()
		if delta > 0 {
			v.SetOrigin(ox, oy+1)
		} else if oy > 0 {
			v.SetOrigin(ox, oy-1)
		}
		return nil
	}
}

func (a *App) renderFooter() {
	if v, err := a.g.View("footer"); err == nil {
		v.Clear()
		msg := a.errorMsg
		if msg == "" {
			switch a.scr {
			case screenCatalog:
				msg = "type: filter   enter: insert field   tab: builder   ctrl+r: submit   esc: quit"
			case screenBuilder:
				msg = "tab: switch pane   enter: edit   f: format   d: clear input   ctrl+r: submit   esc: back"
			case screenResult:
				msg = "up/down: scroll   r: rerun   esc: back"
			}
			fmt.Fprint(v, msg)
			return
		}
		fmt.Fprint(v, colorRed+msg+colorReset)
	}
}

func (a *App) renderFilter() {
	v, err := a.g.View("filter")
	if err != nil {
		return
	}
	v.Clear()
	fmt.Fprintf(v, "%s", a.filter)
}
