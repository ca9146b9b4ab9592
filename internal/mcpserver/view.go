package mcpserver

import (
	"strings"

	"github.com/mark3labs/stepwise/internal/page"
	"github.com/mark3labs/stepwise/internal/wizard"
)

// FieldView is a field with its current value. Secret values are masked.
type FieldView struct {
	page.Field
	Value string `json:"value"`
}

// PageView is the current page.
type PageView struct {
	ID      page.ID     `json:"id"`
	Title   string      `json:"title"`
	Body    string      `json:"body"`
	Fields  []FieldView `json:"fields,omitempty"`
	Summary string      `json:"summary,omitempty"`
}

// StateView is what every tool returns.
type StateView struct {
	RunID      string              `json:"run_id"`
	State      wizard.State        `json:"state"`
	Step       int                 `json:"step"`
	Steps      int                 `json:"steps"`
	Page       *PageView           `json:"page,omitempty"`
	Actions    []wizard.LegendItem `json:"actions"`
	Valid      bool                `json:"valid"`
	Message    string              `json:"message,omitempty"`
	Advisories []string            `json:"advisories,omitempty"`
	Error      string              `json:"error,omitempty"`
}

func viewOf(w *wizard.Wizard) StateView {
	v := StateView{
		RunID:   w.RunID(),
		State:   w.State(),
		Step:    w.Index() + 1,
		Steps:   w.Len(),
		Actions: w.Actions().Legend(),
	}

	id, ctrl, ok := w.Current()
	if !ok || v.State.Terminal() {
		return v
	}

	root, _ := w.Loader().Root(id)
	pv := &PageView{ID: id, Title: root.Title, Body: root.Body}
	if ed, ok := ctrl.(page.FieldEditor); ok {
		for _, f := range ed.Fields() {
			value := ed.FieldValue(f.Name)
			if f.Kind == page.FieldSecret {
				value = strings.Repeat("*", len(value))
			}
			pv.Fields = append(pv.Fields, FieldView{Field: f, Value: value})
		}
	}
	if s, ok := ctrl.(page.Summarizer); ok {
		pv.Summary = s.Summary()
	}
	v.Page = pv

	check := w.Check()
	v.Valid = check.Message == ""
	v.Message = check.Message
	v.Advisories = check.Advisories
	return v
}
