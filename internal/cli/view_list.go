package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/atelier/internal/cli/formatter"
	"github.com/alexanderramin/atelier/internal/domain"
	"github.com/alexanderramin/atelier/internal/service"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type listMode int

const (
	modeBrowse listMode = iota
	modeAdd
	modeSearch
	modeEdit
)

// loadListMsg asks the list scoped to kind/parentID to load itself. The
// load runs inside Update so the list model is only touched from the
// bubbletea loop.
type loadListMsg struct {
	kind     domain.Kind
	parentID string
}

// listView is one screen of the TUI: the clients, the instruments of one
// client, or the notes of one instrument.
type listView struct {
	state  *SharedState
	model  *service.ListModel
	title  string
	cursor int
	mode   listMode
	input  textinput.Model
	editID string
	err    error
}

func newListView(state *SharedState, kind domain.Kind, parentID, title string) *listView {
	ti := textinput.New()
	ti.Prompt = "› "
	ti.CharLimit = 500
	ti.Width = 60

	return &listView{
		state: state,
		model: service.NewListModel(state.App.Entities, kind, parentID, state.App.Observer),
		title: title,
		input: ti,
	}
}

func (v *listView) Init() tea.Cmd {
	kind, parentID := v.model.Kind(), v.model.ParentID()
	return func() tea.Msg { return loadListMsg{kind: kind, parentID: parentID} }
}

func (v *listView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadListMsg:
		if msg.kind == v.model.Kind() && msg.parentID == v.model.ParentID() {
			v.load()
		}
		return v, nil

	case refreshViewMsg:
		v.model.CancelRemove()
		v.load()
		return v, nil

	case tea.WindowSizeMsg:
		v.input.Width = max(msg.Width-6, 10)
		return v, nil

	case tea.KeyMsg:
		if v.mode != modeBrowse {
			return v.handleInputKey(msg)
		}
		return v.handleBrowseKey(msg)
	}

	if v.mode != modeBrowse {
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *listView) load() {
	v.err = v.model.Load(context.Background())
	if v.model.Query() != "" {
		v.model.Search()
	}
	v.clampCursor()
}

func (v *listView) clampCursor() {
	n := len(v.model.Visible())
	if v.cursor >= n {
		v.cursor = n - 1
	}
	if v.cursor < 0 {
		v.cursor = 0
	}
}

func (v *listView) selected() *domain.Entity {
	visible := v.model.Visible()
	if v.cursor < 0 || v.cursor >= len(visible) {
		return nil
	}
	return visible[v.cursor]
}

func (v *listView) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if v.cursor < len(v.model.Visible())-1 {
			v.cursor++
		}
	case "enter":
		child, ok := v.model.Kind().Child()
		sel := v.selected()
		if !ok || sel == nil {
			return v, nil
		}
		return v, pushView(newListView(v.state, child, sel.ID, formatter.Truncate(sel.Text, 24)))
	case "a":
		return v, v.startInput(modeAdd, "", "New "+string(v.model.Kind()))
	case "/":
		return v, v.startInput(modeSearch, v.model.Query(), "Search "+v.model.Kind().Plural())
	case "e":
		sel := v.selected()
		if sel == nil {
			return v, nil
		}
		if !sel.Editable() {
			v.err = fmt.Errorf("editing %s: %w", sel.Kind, domain.ErrEditUnsupported)
			return v, nil
		}
		v.editID = sel.ID
		return v, v.startInput(modeEdit, sel.Text, "")
	case "x":
		if sel := v.selected(); sel != nil {
			return v, v.confirmRemove(sel)
		}
	case "r":
		v.load()
	}
	return v, nil
}

func (v *listView) startInput(mode listMode, value, placeholder string) tea.Cmd {
	v.mode = mode
	v.err = nil
	v.input.SetValue(value)
	v.input.Placeholder = placeholder
	v.input.CursorEnd()
	return v.input.Focus()
}

func (v *listView) stopInput() {
	v.mode = modeBrowse
	v.editID = ""
	v.input.Blur()
	v.input.SetValue("")
}

func (v *listView) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctx := context.Background()

	switch msg.Type {
	case tea.KeyEsc:
		if v.mode == modeSearch {
			v.model.SetQuery("")
		}
		v.err = nil
		v.stopInput()
		v.clampCursor()
		return v, nil

	case tea.KeyEnter:
		value := v.input.Value()
		switch v.mode {
		case modeAdd:
			v.model.SetInput(value)
			if _, err := v.model.Add(ctx); err != nil {
				v.err = err
				return v, nil
			}
			v.cursor = 0
		case modeSearch:
			v.model.SetQuery(value)
			if value != "" {
				v.model.Search()
			}
			v.cursor = 0
		case modeEdit:
			if _, err := v.model.Edit(ctx, v.editID, value); err != nil {
				v.err = err
				return v, nil
			}
		}
		v.err = nil
		v.stopInput()
		v.clampCursor()
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	if v.mode == modeSearch && v.input.Value() == "" {
		v.model.SetQuery("")
		v.clampCursor()
	}
	return v, cmd
}

// confirmRemove pushes a yes/no form; only a yes deletes, cascading for
// clients and instruments.
func (v *listView) confirmRemove(sel *domain.Entity) tea.Cmd {
	prompt, err := v.model.RequestRemove(sel.ID)
	if err != nil {
		v.err = err
		return nil
	}

	confirmed := false
	form := wizardConfirm(prompt, &confirmed)
	return startWizardCmd(v.state, "Remove", form, func() tea.Cmd {
		if !confirmed {
			v.model.CancelRemove()
			return outputCmd(formatter.Dim("Cancelled."))
		}
		if err := v.model.ConfirmRemove(context.Background()); err != nil {
			return outputCmd(errorText(err))
		}
		v.clampCursor()
		return outputCmd(formatter.StyleGreen.Render("✔ Removed: " + sel.Text))
	})
}

func (v *listView) View() string {
	var b strings.Builder
	kind := v.model.Kind()
	visible := v.model.Visible()
	total := len(v.model.Items())

	heading := formatter.StyleHeader.Render(strings.ToUpper(kind.Plural()))
	count := fmt.Sprintf("%d", total)
	if q := v.model.Query(); q != "" {
		count = fmt.Sprintf("%d of %d matching %q", len(visible), total, q)
	}
	b.WriteString(" " + heading + "  " + formatter.Dim(count) + "\n\n")

	if len(visible) == 0 {
		empty := fmt.Sprintf("No %s yet. Press a to add one.", kind.Plural())
		if v.model.Query() != "" {
			empty = "Nothing matches."
		}
		b.WriteString("  " + formatter.Dim(empty) + "\n")
	}

	start, end := v.window(len(visible))
	for i := start; i < end; i++ {
		e := visible[i]
		line := formatter.Truncate(e.Text, max(v.state.Width-20, 20))
		if !e.CreatedAt.IsZero() {
			line += "  " + formatter.Dim(formatter.CreatedLabel(e.CreatedAt))
		}
		if i == v.cursor {
			b.WriteString(formatter.StyleGreen.Render("▸ ") + formatter.Bold(line) + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}

	if v.mode != modeBrowse {
		b.WriteString("\n " + formatter.Dim(v.inputLabel()) + "\n " + v.input.View() + "\n")
	}
	if v.err != nil {
		b.WriteString("\n " + errorText(v.err) + "\n")
	}
	return b.String()
}

// window returns the slice of rows that fits the content area and keeps
// the cursor visible.
func (v *listView) window(n int) (int, int) {
	rows := v.state.ContentHeight() - 6
	if rows < 3 || n <= rows {
		return 0, n
	}
	start := 0
	if v.cursor >= rows {
		start = v.cursor - rows + 1
	}
	return start, min(start+rows, n)
}

func (v *listView) inputLabel() string {
	switch v.mode {
	case modeAdd:
		return "Add " + string(v.model.Kind())
	case modeSearch:
		return "Search"
	case modeEdit:
		return "Edit note"
	}
	return ""
}

func (v *listView) CapturesInput() bool { return v.mode != modeBrowse }

func (v *listView) ID() ViewID {
	switch v.model.Kind() {
	case domain.KindInstrument:
		return ViewInstruments
	case domain.KindNote:
		return ViewNotes
	}
	return ViewClients
}

func (v *listView) Title() string { return v.title }

func (v *listView) ShortHelp() []key.Binding {
	if v.mode == modeSearch {
		return []key.Binding{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search")),
			key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),
		}
	}
	if v.mode != modeBrowse {
		return []key.Binding{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
			key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		}
	}

	bindings := []key.Binding{
		key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	}
	if child, ok := v.model.Kind().Child(); ok {
		bindings = append(bindings, key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", child.Plural())))
	}
	if v.model.Kind() == domain.KindNote {
		bindings = append(bindings, key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")))
	}
	return append(bindings,
		key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove")),
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	)
}

func errorText(err error) string {
	return formatter.StyleRed.Render("Error: " + err.Error())
}
