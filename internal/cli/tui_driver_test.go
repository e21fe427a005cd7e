package cli

import (
	"testing"

	"github.com/alexanderramin/atelier/internal/teatest"
)

// TestDriver wraps teatest.Driver with access to the appModel's view stack.
type TestDriver struct {
	*teatest.Driver
}

// NewTestDriver builds the appModel for app, sets a terminal size and
// drains Init, which loads the clients screen.
func NewTestDriver(t *testing.T, app *App) *TestDriver {
	t.Helper()

	d := teatest.New(t, newAppModel(app), teatest.WithSize(120, 40))
	d.DrainInit()
	return &TestDriver{Driver: d}
}

func (d *TestDriver) appModel() appModel {
	return d.Model.(appModel)
}

// ActiveViewID returns the ViewID of the top view on the stack.
func (d *TestDriver) ActiveViewID() ViewID {
	m := d.appModel()
	v := m.activeView()
	if v == nil {
		return ViewID(-1)
	}
	return v.ID()
}

// ActiveViewTitle returns the Title() of the top view on the stack.
func (d *TestDriver) ActiveViewTitle() string {
	m := d.appModel()
	if v := m.activeView(); v != nil {
		return v.Title()
	}
	return ""
}

// ViewStackLen returns the number of views on the stack.
func (d *TestDriver) ViewStackLen() int {
	return len(d.appModel().viewStack)
}

// ActiveList returns the top view as a list screen, failing the test when
// a form is on top.
func (d *TestDriver) ActiveList() *listView {
	d.T.Helper()
	m := d.appModel()
	v, ok := m.activeView().(*listView)
	if !ok {
		d.T.Fatalf("active view %d is not a list", d.ActiveViewID())
	}
	return v
}

// VisibleTexts returns the texts shown by the active list, in order.
func (d *TestDriver) VisibleTexts() []string {
	d.T.Helper()
	visible := d.ActiveList().model.Visible()
	out := make([]string, 0, len(visible))
	for _, e := range visible {
		out = append(out, e.Text)
	}
	return out
}

// IsQuitting reports whether the app has signalled a quit.
func (d *TestDriver) IsQuitting() bool {
	return d.appModel().quitting || d.Quitting
}

// LastOutput returns the transient output shown in the content area.
func (d *TestDriver) LastOutput() string {
	return d.appModel().lastOutput
}
