package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/myfiredeal/firedeal/internal/domain"
)

// Form row indexes, in focus order.
const (
	rowName = iota
	rowSector
	rowKind
	rowPartner
	rowStatus
	rowObjective
	rowNextAction
	rowPromptMarketing
	rowPromptPartner
	rowPromptSeller
	rowPromptSpecialist
	rowPriority
	rowIsPublic
	rowCount
)

var promptRows = map[int]string{
	rowPromptMarketing:  "Marketing prompt",
	rowPromptPartner:    "Partner prompt",
	rowPromptSeller:     "Seller prompt",
	rowPromptSpecialist: "Specialist prompt",
}

// projectForm is the full project field set as an editable form, shared by
// the create and detail modals. Selects (kind, priority, visibility) cycle
// with left/right; everything else is free text.
type projectForm struct {
	inputs   map[int]textinput.Model
	prompts  map[int]textarea.Model
	kind     domain.Kind
	priority domain.Priority
	isPublic bool
	focus    int
}

// newProjectForm builds a form pre-filled from the given record. Pass a
// fresh draft for the create modal or a snapshot for editing.
func newProjectForm(p domain.Project) projectForm {
	inputs := make(map[int]textinput.Model)
	for row, field := range map[int]struct{ placeholder, value string }{
		rowName:       {"project name", p.Name},
		rowSector:     {"sector", p.Sector},
		rowPartner:    {"partner / client", p.PartnerClient},
		rowStatus:     {"status", p.Status},
		rowObjective:  {"objective", p.Objective},
		rowNextAction: {"next action", p.NextAction},
	} {
		ti := textinput.New()
		ti.Placeholder = field.placeholder
		ti.CharLimit = 512
		ti.SetValue(field.value)
		inputs[row] = ti
	}
	focused := inputs[rowName]
	focused.Focus()
	inputs[rowName] = focused

	prompts := make(map[int]textarea.Model)
	for row, value := range map[int]string{
		rowPromptMarketing:  p.PromptMarketing,
		rowPromptPartner:    p.PromptPartner,
		rowPromptSeller:     p.PromptSeller,
		rowPromptSpecialist: p.PromptSpecialist,
	} {
		ta := textarea.New()
		ta.Placeholder = "..."
		ta.SetHeight(2)
		ta.SetWidth(60)
		ta.ShowLineNumbers = false
		ta.SetValue(value)
		prompts[row] = ta
	}

	return projectForm{
		inputs:   inputs,
		prompts:  prompts,
		kind:     domain.NormalizeKind(string(p.Kind)),
		priority: domain.NormalizePriority(string(p.Priority)),
		isPublic: p.IsPublic,
	}
}

// setWidth resizes the text components for the terminal width.
func (f *projectForm) setWidth(width int) {
	for row, ta := range f.prompts {
		ta.SetWidth(width - 24)
		f.prompts[row] = ta
	}
	for row, ti := range f.inputs {
		ti.Width = width - 28
		f.inputs[row] = ti
	}
}

// handleKey processes the form's navigation and edit keys. It returns the
// command to run and whether the key was consumed.
func (f *projectForm) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "tab", "enter":
		if _, isPrompt := f.prompts[f.focus]; isPrompt && msg.String() == "enter" {
			// Newline inside a prompt textarea
			return f.updateFocused(msg), true
		}
		f.setFocus((f.focus + 1) % rowCount)
		return textinput.Blink, true

	case "shift+tab":
		f.setFocus((f.focus + rowCount - 1) % rowCount)
		return textinput.Blink, true

	case "left", "right":
		if f.cycleSelect(msg.String() == "right") {
			return nil, true
		}
	}
	return f.updateFocused(msg), true
}

// cycleSelect advances the focused select row. Returns false when the
// focused row is free text, so arrow keys still move the cursor there.
func (f *projectForm) cycleSelect(forward bool) bool {
	switch f.focus {
	case rowKind:
		f.kind = nextKind(f.kind)
		return true
	case rowPriority:
		step := len(domain.Priorities) - 1
		if forward {
			step = 1
		}
		for i, p := range domain.Priorities {
			if p == f.priority {
				f.priority = domain.Priorities[(i+step)%len(domain.Priorities)]
				break
			}
		}
		return true
	case rowIsPublic:
		f.isPublic = !f.isPublic
		return true
	}
	return false
}

// setFocus focuses the row at idx and blurs the rest.
func (f *projectForm) setFocus(idx int) {
	f.focus = idx
	for row, ti := range f.inputs {
		if row == idx {
			ti.Focus()
		} else {
			ti.Blur()
		}
		f.inputs[row] = ti
	}
	for row, ta := range f.prompts {
		if row == idx {
			ta.Focus()
		} else {
			ta.Blur()
		}
		f.prompts[row] = ta
	}
}

// updateFocused forwards a message to the focused text component.
func (f *projectForm) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if ti, ok := f.inputs[f.focus]; ok {
		ti, cmd = ti.Update(msg)
		f.inputs[f.focus] = ti
	} else if ta, ok := f.prompts[f.focus]; ok {
		ta, cmd = ta.Update(msg)
		f.prompts[f.focus] = ta
	}
	return cmd
}

// apply copies the form's editable fields onto base and returns the result.
// Identity fields (id, owner, created_at) pass through untouched.
func (f projectForm) apply(base domain.Project) domain.Project {
	base.Name = strings.TrimSpace(f.inputs[rowName].Value())
	base.Sector = strings.TrimSpace(f.inputs[rowSector].Value())
	base.Kind = f.kind
	base.PartnerClient = strings.TrimSpace(f.inputs[rowPartner].Value())
	base.Status = strings.TrimSpace(f.inputs[rowStatus].Value())
	base.Objective = strings.TrimSpace(f.inputs[rowObjective].Value())
	base.NextAction = strings.TrimSpace(f.inputs[rowNextAction].Value())
	base.PromptMarketing = f.prompts[rowPromptMarketing].Value()
	base.PromptPartner = f.prompts[rowPromptPartner].Value()
	base.PromptSeller = f.prompts[rowPromptSeller].Value()
	base.PromptSpecialist = f.prompts[rowPromptSpecialist].Value()
	base.Priority = f.priority
	base.IsPublic = f.isPublic
	return base
}

// view renders the form rows.
func (f projectForm) view() string {
	var b strings.Builder

	b.WriteString(f.renderInputRow("Name", rowName))
	b.WriteString(f.renderInputRow("Sector", rowSector))
	b.WriteString(f.renderSelectRow("Kind", string(f.kind), rowKind))
	b.WriteString(f.renderInputRow("Partner", rowPartner))
	b.WriteString(f.renderInputRow("Status", rowStatus))
	b.WriteString(f.renderInputRow("Objective", rowObjective))
	b.WriteString(f.renderInputRow("Next action", rowNextAction))

	for _, row := range []int{rowPromptMarketing, rowPromptPartner, rowPromptSeller, rowPromptSpecialist} {
		b.WriteString(f.renderLabel(promptRows[row], row))
		b.WriteString("\n")
		b.WriteString(f.prompts[row].View())
		b.WriteString("\n")
	}

	b.WriteString(f.renderSelectRow("Priority", string(f.priority), rowPriority))
	visibility := "private"
	if f.isPublic {
		visibility = "public"
	}
	b.WriteString(f.renderSelectRow("Visibility", visibility, rowIsPublic))

	return b.String()
}

// renderInputRow renders a single-line text field with its label.
func (f projectForm) renderInputRow(label string, row int) string {
	return f.renderLabel(label, row) + " " + f.inputs[row].View() + "\n"
}

// renderSelectRow renders a cycling select with its current value.
func (f projectForm) renderSelectRow(label, value string, row int) string {
	v := ValueStyle.Render("◀ " + value + " ▶")
	if row == f.focus {
		v = SelectedItemStyle.Render("◀ " + value + " ▶")
	}
	return f.renderLabel(label, row) + " " + v + "\n"
}

// renderLabel renders a right-padded field label, highlighted when focused.
func (f projectForm) renderLabel(label string, row int) string {
	padded := fmt.Sprintf("%-18s", label+":")
	if row == f.focus {
		return SelectedItemStyle.Render(padded)
	}
	return LabelStyle.Render(padded)
}
