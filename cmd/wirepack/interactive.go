package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/wirepack/wirepack/value"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	kindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	scalarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD787"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type inspectorModel struct {
	err      error
	filename string
	format   string
	strict   bool
	viewport viewport.Model
	ready    bool
}

type decodedMsg struct {
	err   error
	lines []string
}

func newInspectorModel(filename, format string, strict bool) *inspectorModel {
	return &inspectorModel{filename: filename, format: format, strict: strict}
}

func (m *inspectorModel) Init() tea.Cmd {
	return m.load
}

func (m *inspectorModel) load() tea.Msg {
	data, err := readInput(m.filename)
	if err != nil {
		return decodedMsg{err: err}
	}
	v, err := decodeInput(data, m.format, m.strict)
	if err != nil {
		return decodedMsg{err: err}
	}
	var lines []string
	renderValue(&lines, "", "", v)
	return decodedMsg{lines: lines}
}

func (m *inspectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		headerHeight := 2
		footerHeight := 2
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight - footerHeight
		}

	case decodedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.viewport.SetContent(strings.Join(msg.lines, "\n"))
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *inspectorModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("wirepack inspector"))
	b.WriteString(" ")
	b.WriteString(displayName(m.filename))
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ scroll • q quit"))
	return b.String()
}

// renderValue appends one line per node, indenting children
func renderValue(lines *[]string, indent, label string, v value.Value) {
	prefix := indent
	if label != "" {
		prefix += keyStyle.Render(label) + " "
	}
	tag := kindStyle.Render(v.Kind().String())

	switch v.Kind() {
	case value.KindNil:
		*lines = append(*lines, prefix+tag)
	case value.KindBool:
		*lines = append(*lines, prefix+tag+" "+scalarStyle.Render(strconv.FormatBool(v.Bool())))
	case value.KindInt:
		*lines = append(*lines, prefix+tag+" "+scalarStyle.Render(strconv.FormatInt(v.Int(), 10)))
	case value.KindUint:
		*lines = append(*lines, prefix+tag+" "+scalarStyle.Render(strconv.FormatUint(v.Uint(), 10)))
	case value.KindFloat32:
		*lines = append(*lines, prefix+tag+" "+scalarStyle.Render(strconv.FormatFloat(float64(v.Float32()), 'g', -1, 32)))
	case value.KindFloat64:
		*lines = append(*lines, prefix+tag+" "+scalarStyle.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64)))
	case value.KindChar:
		*lines = append(*lines, prefix+tag+" "+scalarStyle.Render(strconv.QuoteRune(v.Char())))
	case value.KindString:
		*lines = append(*lines, prefix+tag+" "+scalarStyle.Render(strconv.Quote(v.Text())))
	case value.KindBytes:
		*lines = append(*lines, prefix+tag+" "+scalarStyle.Render(fmt.Sprintf("% x", v.Bytes())))
	case value.KindArray:
		elems := v.Elems()
		*lines = append(*lines, prefix+tag+fmt.Sprintf(" (%d)", len(elems)))
		for i, el := range elems {
			renderValue(lines, indent+"  ", "["+strconv.Itoa(i)+"]", el)
		}
	case value.KindMap:
		entries := v.Entries()
		*lines = append(*lines, prefix+tag+fmt.Sprintf(" (%d)", len(entries)))
		for _, ent := range entries {
			renderValue(lines, indent+"  ", mapKeyLabel(ent.Key), ent.Val)
		}
	case value.KindStruct:
		sch := v.Struct()
		*lines = append(*lines, prefix+tag+" "+sch.Name)
		for i, f := range v.Elems() {
			renderValue(lines, indent+"  ", sch.Fields[i], f)
		}
	case value.KindEnum:
		sch, idx := v.Enum()
		name := strconv.Itoa(idx)
		if vs := sch.ByIndex(idx); vs != nil {
			name = vs.Name
		}
		*lines = append(*lines, prefix+tag+" "+sch.Name+"::"+name)
		for i, p := range v.Elems() {
			renderValue(lines, indent+"  ", "["+strconv.Itoa(i)+"]", p)
		}
	}
}

func mapKeyLabel(k value.Value) string {
	switch k.Kind() {
	case value.KindString:
		return strconv.Quote(k.Text())
	case value.KindInt:
		return strconv.FormatInt(k.Int(), 10)
	case value.KindUint:
		return strconv.FormatUint(k.Uint(), 10)
	case value.KindBool:
		return strconv.FormatBool(k.Bool())
	}
	return k.Kind().String()
}

func runInteractive(filename, format string, strict bool) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("interactive mode requires a terminal")
	}
	p := tea.NewProgram(newInspectorModel(filename, format, strict), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
