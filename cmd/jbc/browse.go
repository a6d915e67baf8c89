package main

import (
	"bytes"
	"flag"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/daimatz/jbc/pkg/classfile"
)

func cmdBrowse(args []string) error {
	fs := flag.NewFlagSet("browse", flag.ExitOnError)
	classPath := fs.String("cp", "", "classpath of directories, jars and jmods")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("browse: expected one class file or class name")
	}

	p := tea.NewProgram(newBrowseModel(fs.Arg(0), *classPath), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

type memberEntry struct {
	kind    string
	label   string
	details string
}

type browseModel struct {
	err       error
	target    string
	classPath string
	title     string
	members   []memberEntry
	visible   []int
	filter    textinput.Model
	selected  int
	expanded  bool
	loaded    bool
}

type classLoadedMsg struct {
	err     error
	title   string
	members []memberEntry
}

func newBrowseModel(target, classPath string) *browseModel {
	ti := textinput.New()
	ti.Placeholder = "filter members"
	ti.Prompt = "/ "
	ti.Width = 40
	ti.Focus()
	return &browseModel{
		target:    target,
		classPath: classPath,
		filter:    ti,
	}
}

func (m *browseModel) Init() tea.Cmd {
	return tea.Batch(m.loadClass, textinput.Blink)
}

func (m *browseModel) loadClass() tea.Msg {
	cf, err := openClass(m.target, m.classPath)
	if err != nil {
		return classLoadedMsg{err: err}
	}
	title, members, err := collectMembers(cf, classfile.DefaultRegistry())
	return classLoadedMsg{err: err, title: title, members: members}
}

// collectMembers renders every field and method of cf with plain styling.
func collectMembers(cf *classfile.ClassFile, reg *classfile.Registry) (string, []memberEntry, error) {
	st := styler{}
	title, err := cf.ClassName()
	if err != nil {
		return "", nil, err
	}

	var members []memberEntry
	for i := range cf.Fields {
		f := &cf.Fields[i]
		var details bytes.Buffer
		writeAttributes(&details, cf, reg, f.Attributes, "    ")
		members = append(members, memberEntry{kind: "field", label: formatField(cf, f, st), details: details.String()})
	}
	for i := range cf.Methods {
		mi := &cf.Methods[i]
		var details bytes.Buffer
		writeAttributes(&details, cf, reg, mi.Attributes, "    ")
		members = append(members, memberEntry{kind: "method", label: formatMethod(cf, reg, mi, st), details: details.String()})
	}
	return title, members, nil
}

// applyFilter keeps the members whose label contains the filter text,
// ignoring case.
func (m *browseModel) applyFilter() {
	query := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	m.visible = m.visible[:0]
	for i, e := range m.members {
		if query == "" || strings.Contains(strings.ToLower(e.label), query) {
			m.visible = append(m.visible, i)
		}
	}
	if m.selected >= len(m.visible) {
		m.selected = max(len(m.visible)-1, 0)
	}
}

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "up", "ctrl+p":
			if m.selected > 0 {
				m.selected--
				m.expanded = false
			}
			return m, nil

		case "down", "ctrl+n":
			if m.selected < len(m.visible)-1 {
				m.selected++
				m.expanded = false
			}
			return m, nil

		case "enter":
			m.expanded = !m.expanded
			return m, nil
		}

	case classLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.title = msg.title
		m.members = msg.members
		m.loaded = true
		m.applyFilter()
		return m, nil
	}

	var cmd tea.Cmd
	before := m.filter.Value()
	m.filter, cmd = m.filter.Update(msg)
	if m.filter.Value() != before {
		m.expanded = false
		m.applyFilter()
	}
	return m, cmd
}

func (m *browseModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress esc to quit.", m.err))
	}
	if !m.loaded {
		return "Loading class..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString(fmt.Sprintf("  %d of %d members\n\n", len(m.visible), len(m.members)))
	b.WriteString(m.filter.View())
	b.WriteString("\n\n")

	for i, idx := range m.visible {
		e := m.members[idx]
		line := fmt.Sprintf("%-6s %s", e.kind, e.label)
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + line))
			b.WriteString("\n")
			if m.expanded {
				if e.details == "" {
					b.WriteString(helpStyle.Render("    no attributes"))
					b.WriteString("\n")
				} else {
					b.WriteString(typeStyle.Render(e.details))
				}
			}
			continue
		}
		b.WriteString("  " + line + "\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("type to filter • ↑/↓ select • enter attributes • esc quit"))
	return b.String()
}
