package repl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/plc/lang"
	"github.com/ardnew/plc/log"
)

const prompt = "plc> "

func helpMessage() string {
	return `
Enter a statement or an expression:

  LET x = 20;           declare a variable for the rest of the session
  x * 2 + 1             evaluate an expression and show its type
  FOR i IN range(0, 3) DO print(i); END

Commands:

  :help    Print this help
  :list    List the variables and functions in scope
  :clear   Clear the screen
  :quit    Exit

Keys:

  Tab / Shift-Tab   cycle through completions
  Up / Down         walk the history
  Esc               cancel completion
  Ctrl-C            clear the line, or exit on an empty line
  Ctrl-D            exit on an empty line
`
}

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	typeStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	outputStyle     = lipgloss.NewStyle()
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	matchStyle      = lipgloss.NewStyle().
			Foreground(lipgloss.Color("4")).
			Bold(true)
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
	selectedMatchStyle = selectedStyle.Bold(true)

	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
)

// model is the Bubble Tea model of the REPL.
type model struct {
	ctxFunc      func() context.Context
	session      *lang.Session
	stdout       *bytes.Buffer
	history      *History
	logger       log.Logger
	input        textinput.Model
	matches      fuzzy.Matches
	preTabText   string
	historyIdx   int
	wordStart    int
	wordEnd      int
	suggIdx      int
	preTabCursor int
	width        int
	tabActive    bool
	quitting     bool
}

// Run reads lines from the terminal and evaluates them in session until the
// user quits. History is kept in cacheDir, or only in memory if cacheDir is
// empty.
func Run(
	ctx context.Context,
	session *lang.Session,
	cacheDir string,
	logger log.Logger,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if session == nil {
		return ErrNoSession
	}

	var path string
	if cacheDir != "" {
		path = filepath.Join(cacheDir, baseHistory)
	}

	history := NewHistory(path)
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history",
			slog.String("path", path),
			slog.Any("error", err),
		)
	}

	logger.TraceContext(ctx, "repl start",
		slog.String("history", path),
		slog.Int("entry_count", history.Len()),
	)

	p := tea.NewProgram(newModel(ctx, session, history, logger), tea.WithContext(ctx))
	_, err = p.Run()

	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	session *lang.Session,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(prompt)
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = defaultWidth

	// Program output is collected and printed above the prompt after each
	// line.
	stdout := new(bytes.Buffer)
	session.SetStdout(stdout)

	return model{
		ctxFunc:    func() context.Context { return ctx },
		session:    session,
		stdout:     stdout,
		history:    history,
		logger:     logger,
		input:      ti,
		historyIdx: history.Len(),
		suggIdx:    -1,
		width:      defaultWidth,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-lipgloss.Width(prompt)-2, 1)

		return m, nil
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	input := m.input.Value()

	if c, ok := detectCall(input, m.input.Position()); ok && !m.tabActive {
		if hint := renderSignatures(m.session, c); hint != "" {
			b.WriteString(hint)
			b.WriteString("\n")

			return b.String()
		}
	}

	switch {
	case m.historyIdx < m.history.Len():
		b.WriteString(hintStyle.Render(fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len())))

	case strings.TrimSpace(input) == "":
		b.WriteString(hintStyle.Render("Enter a statement or expression, or :help"))

	case len(m.matches) > 0:
		b.WriteString(renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width))
	}

	b.WriteString("\n")

	return b.String()
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.historyIdx = m.history.Len()
		m.refreshMatches(false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if m.tabActive && len(m.matches) > 0 {
			m.tabActive = false
			m.refreshMatches(true)

			return m, nil
		}

		return m.executeInput()

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.walkHistory(-1), nil

	case tea.KeyDown:
		return m.walkHistory(1), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			m.refreshMatches(false)
		}

		return m, nil

	case tea.KeyRunes, tea.KeySpace:
		if m.tabActive && msg.Type == tea.KeySpace {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		m.refreshMatches(true)

		return m, cmd
	}

	var cmd tea.Cmd

	m.tabActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	m.refreshMatches(false)

	return m, cmd
}

// cycle selects the next (dir > 0) or previous completion and writes it
// into the input. A sole candidate is accepted immediately.
func (m model) cycle(dir int) model {
	if len(m.matches) == 0 {
		return m
	}

	if len(m.matches) == 1 {
		m.replaceWord(m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m
	}

	if !m.tabActive {
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()

		if dir > 0 {
			m.suggIdx = -1
		} else {
			m.suggIdx = len(m.matches)
		}
	}

	m.suggIdx = (m.suggIdx + dir + len(m.matches)) % len(m.matches)
	m.replaceWord(m.matches[m.suggIdx].Str)

	return m
}

// replaceWord substitutes text for the word under completion.
func (m *model) replaceWord(text string) {
	input := m.input.Value()
	cursor := m.wordStart + len(text)

	m.input.SetValue(input[:m.wordStart] + text + input[m.wordEnd:])
	m.input.SetCursor(cursor)
	m.wordEnd = cursor
}

// refreshMatches recomputes completions. With accept set, a word that
// already equals its sole candidate is accepted.
func (m *model) refreshMatches(accept bool) {
	m.matches, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !accept || len(m.matches) != 1 {
		return
	}

	if m.input.Value()[m.wordStart:m.wordEnd] == m.matches[0].Str {
		m.matches = nil
	}
}

func (m model) walkHistory(dir int) model {
	n := m.history.Len()
	i := m.historyIdx + dir

	switch {
	case i < 0:
		return m
	case i >= n:
		m.historyIdx = n
		m.input.SetValue("")
	default:
		line, err := m.history.Entry(i)
		if err != nil {
			return m
		}

		m.historyIdx = i
		m.input.SetValue(line)
		m.input.SetCursor(len(line))
	}

	m.tabActive = false
	m.refreshMatches(false)

	return m
}

func (m model) executeInput() (model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	if line == "" {
		return m, nil
	}

	m.input.SetValue("")
	m.matches = nil

	if err := m.history.Add(line); err != nil {
		m.logger.WarnContext(m.ctxFunc(), "could not save history", slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	echo := tea.Println(promptStyle.Render(prompt) + inputStyle.Render(line))

	if name, ok := strings.CutPrefix(line, commandPrefix); ok {
		return m.executeCommand(echo, strings.TrimSpace(name))
	}

	m.logger.TraceContext(m.ctxFunc(), "repl eval", slog.String("input", line))

	m.stdout.Reset()

	value, typ, err := m.session.Eval(m.ctxFunc(), line)

	cmds := []tea.Cmd{echo}

	if out := strings.TrimSuffix(m.stdout.String(), "\n"); out != "" {
		cmds = append(cmds, tea.Println(outputStyle.Render(out)))
	}

	switch {
	case err != nil:
		cmds = append(cmds, tea.Println(errorStyle.Render(describe(line, err))))
	case typ != lang.TypeNil:
		cmds = append(cmds, tea.Println(
			resultStyle.Render(value.String())+typeStyle.Render(" : "+typ.String())))
	}

	return m, tea.Sequence(cmds...)
}

// describe renders err, with a caret under its column when it has one.
func describe(line string, err error) string {
	var lerr *lang.Error
	if errors.As(err, &lerr) {
		if _, col, ok := lerr.Position(line); ok {
			pad := []rune(strings.Repeat(" ", lipgloss.Width(prompt)+col-1))

			// Keep tabs from the line so the marker stays under its column.
			for i, r := range []rune(line)[:min(col-1, len([]rune(line)))] {
				if r == '\t' {
					pad[lipgloss.Width(prompt)+i] = '\t'
				}
			}

			return string(pad) + "^\n" + "error: " + err.Error()
		}
	}

	return "error: " + err.Error()
}

func (m model) executeCommand(echo tea.Cmd, name string) (model, tea.Cmd) {
	m.logger.TraceContext(m.ctxFunc(), "repl command", slog.String("command", name))

	switch name {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echo, tea.Println(helpMessage()))

	case "l", "list":
		return m, tea.Sequence(echo, tea.Println(m.listSymbols()))

	case "c", "clear":
		return m, tea.ClearScreen

	default:
		return m, tea.Sequence(echo,
			tea.Println(errorStyle.Render("unknown command :"+name+" (try :help)")))
	}
}

func (m model) listSymbols() string {
	var b strings.Builder

	for s := range m.session.Symbols() {
		name, rest, ok := strings.Cut(s, ":")
		if !ok {
			b.WriteString("  " + s + "\n")

			continue
		}

		b.WriteString("  " + name + typeStyle.Render(":"+rest) + "\n")
	}

	return strings.TrimSuffix(b.String(), "\n")
}
