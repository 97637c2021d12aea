package repl

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/plc/lang"
)

// commands are the names accepted after the command prefix.
var commands = []string{"help", "list", "clear", "quit"}

const commandPrefix = ":"

// isWordBoundary reports whether r separates identifiers in program text.
func isWordBoundary(r rune) bool {
	switch r {
	case ' ', '\t', '.', ',', ';', ':',
		'(', ')', '+', '-', '*', '/',
		'<', '>', '=', '!', '&', '|', '"', '\'':
		return true
	}

	return false
}

// wordBounds returns the word under the cursor and its byte offsets in
// input. The word is empty when the cursor sits between two boundaries.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(cursor, len(input))

	start = cursor
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor
	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// candidates returns the completions available for input: command names
// after the command prefix, or else keywords and every name in scope.
func candidates(session *lang.Session, input string) []string {
	if strings.HasPrefix(strings.TrimSpace(input), commandPrefix) {
		return commands
	}

	names := lang.Keywords()

	if session != nil {
		for name := range session.Names() {
			if !slices.Contains(names, name) {
				names = append(names, name)
			}
		}
	}

	return names
}

// computeMatches ranks the candidates for the word under the cursor, best
// first. An empty word has no matches so the hint line stays visible.
func (m model) computeMatches() (matches fuzzy.Matches, wordStart, wordEnd int) {
	input := m.input.Value()

	word, wordStart, wordEnd := wordBounds(input, m.input.Position())
	if word == "" {
		return nil, wordStart, wordEnd
	}

	return fuzzy.Find(word, candidates(m.session, input)), wordStart, wordEnd
}

// renderCandidateBar lays matches out on one line, truncated with an
// ellipsis to fit width.
func renderCandidateBar(matches fuzzy.Matches, selected int, cycling bool, width int) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	ellipsis := hintStyle.Render("...")
	reserve := lipgloss.Width(sep) + lipgloss.Width(ellipsis)

	var (
		b    strings.Builder
		used int
	)

	for i, match := range matches {
		rendered := renderCandidate(match, cycling && i == selected)
		w := lipgloss.Width(rendered)

		if i > 0 {
			w += lipgloss.Width(sep)

			if i < len(matches)-1 && used+w+reserve > width {
				b.WriteString(sep + ellipsis)

				break
			}

			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += w
	}

	return b.String()
}

// renderCandidate highlights the characters of match that the typed word
// matched.
func renderCandidate(match fuzzy.Match, selected bool) string {
	base, hit := suggestionStyle, matchStyle
	if selected {
		base, hit = selectedStyle, selectedMatchStyle
	}

	var b strings.Builder

	for i, r := range match.Str {
		if slices.Contains(match.MatchedIndexes, i) {
			b.WriteString(hit.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	return b.String()
}

// call describes the innermost open call around the cursor.
type call struct {
	name     string
	argIndex int
}

// detectCall finds the innermost unclosed parenthesis before the cursor
// that follows a name, and counts the arguments already typed inside it.
func detectCall(input string, cursor int) (call, bool) {
	cursor = min(cursor, len(input))

	depth := 0
	open := -1

	for i := cursor - 1; i >= 0 && open < 0; i-- {
		switch input[i] {
		case ')':
			depth++
		case '(':
			if depth == 0 {
				open = i
			} else {
				depth--
			}
		}
	}

	if open < 0 {
		return call{}, false
	}

	name, _, _ := wordBounds(input, open)
	if name == "" {
		return call{}, false
	}

	c := call{name: name}
	depth = 0

	for _, r := range input[open+1 : cursor] {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				c.argIndex++
			}
		}
	}

	return c, true
}

// renderSignatures renders every visible overload of c.name with the
// parameter at the cursor highlighted.
func renderSignatures(session *lang.Session, c call) string {
	if session == nil {
		return ""
	}

	var hints []string

	for f := range session.Functions() {
		if f.Name != c.name {
			continue
		}

		var b strings.Builder

		b.WriteString(signatureNameStyle.Render(f.Name))
		b.WriteString(signatureStyle.Render("("))

		for i, p := range f.Params {
			if i > 0 {
				b.WriteString(signatureStyle.Render(", "))
			}

			style := signatureStyle
			if i == c.argIndex {
				style = currentParamStyle
			}

			b.WriteString(style.Render(p.String()))
		}

		b.WriteString(signatureStyle.Render("): " + f.Returns.String()))

		hints = append(hints, b.String())
	}

	return strings.Join(hints, signatureStyle.Render("  |  "))
}
