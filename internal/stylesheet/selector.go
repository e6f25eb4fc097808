package stylesheet

import (
	"fmt"
	"strings"

	"github.com/tdewolff/parse/v2/css"
)

// Selector is one complex selector of a rule's selector list.
type Selector struct {
	text       string
	structural string
	classes    []string
	ids        []string
	tags       []string
	attribute  bool
	universal  bool
}

// ParseSelector analyses a single selector (no top-level commas).
func ParseSelector(text string) (Selector, error) {
	sheet, err := Parse([]byte(text + "{}"))
	if err != nil {
		return Selector{}, err
	}
	sels := sheet.Selectors()
	if len(sels) != 1 {
		return Selector{}, fmt.Errorf("expected one selector, got %d in %q", len(sels), text)
	}
	return sels[0], nil
}

func (s Selector) String() string { return s.text }

// Classes returns the class names the selector requires, excluding names
// that only appear inside pseudo-class arguments such as :not().
func (s Selector) Classes() []string { return s.classes }
func (s Selector) IDs() []string     { return s.ids }
func (s Selector) Tags() []string    { return s.tags }

// HasAttribute reports whether the selector has an attribute condition.
func (s Selector) HasAttribute() bool { return s.attribute }

// Universal reports whether the selector uses *.
func (s Selector) Universal() bool { return s.universal }

// Structural is the selector with pseudo-classes and pseudo-elements
// removed, e.g. "a:hover .x::before" becomes "a .x". It is empty for
// selectors made only of pseudo parts such as ":root".
func (s Selector) Structural() string { return s.structural }

func newSelector(toks []token) Selector {
	sel := Selector{text: selectorText(toks)}
	var structural []token

	// A compound left empty by dropping its pseudo parts becomes "*", so
	// "ul > :first-child" keeps matching as "ul > *".
	compoundEmpty, stripped, hasContent := true, false, false
	closeCompound := func() {
		if compoundEmpty && stripped {
			structural = append(structural, token{tt: css.DelimToken, data: "*"})
		}
		compoundEmpty, stripped = true, false
	}

	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch t.tt {
		case css.WhitespaceToken:
			closeCompound()
			structural = append(structural, t)
			continue
		case css.ColonToken:
			j := i + 1
			if j < len(toks) && toks[j].tt == css.ColonToken {
				j++
			}
			if j < len(toks) && toks[j].tt == css.FunctionToken {
				j = skipBalanced(toks, j)
			}
			i = j
			stripped = true
			continue
		case css.LeftBracketToken:
			sel.attribute = true
			end := skipBalanced(toks, i)
			structural = append(structural, toks[i:end+1]...)
			i = end
			compoundEmpty, hasContent = false, true
			continue
		case css.DelimToken:
			switch t.data {
			case ">", "+", "~":
				closeCompound()
				structural = append(structural, t)
				continue
			case ".":
				if i+1 < len(toks) && toks[i+1].tt == css.IdentToken {
					sel.classes = append(sel.classes, unescape(toks[i+1].data))
					structural = append(structural, t, toks[i+1])
					i++
					compoundEmpty, hasContent = false, true
					continue
				}
			case "*":
				sel.universal = true
			}
		case css.HashToken:
			sel.ids = append(sel.ids, unescape(strings.TrimPrefix(t.data, "#")))
		case css.IdentToken:
			sel.tags = append(sel.tags, strings.ToLower(t.data))
		}
		structural = append(structural, t)
		compoundEmpty, hasContent = false, true
	}
	closeCompound()

	if hasContent {
		sel.structural = selectorText(structural)
	}
	return sel
}

// selectorText writes selector tokens with one space around combinators.
func selectorText(toks []token) string {
	var sb strings.Builder
	depth := 0
	for _, t := range toks {
		switch t.tt {
		case css.FunctionToken, css.LeftParenthesisToken, css.LeftBracketToken:
			depth++
		case css.RightParenthesisToken, css.RightBracketToken:
			depth--
		case css.WhitespaceToken:
			sb.WriteByte(' ')
			continue
		case css.DelimToken:
			if depth == 0 && (t.data == ">" || t.data == "+" || t.data == "~") {
				sb.WriteString(" " + t.data + " ")
				continue
			}
		}
		sb.WriteString(t.data)
	}
	return strings.TrimSpace(sb.String())
}

// skipBalanced returns the index of the token closing the group opened at
// toks[i], or the last index if it is never closed.
func skipBalanced(toks []token, i int) int {
	depth := 0
	for ; i < len(toks); i++ {
		switch toks[i].tt {
		case css.FunctionToken, css.LeftParenthesisToken, css.LeftBracketToken:
			depth++
		case css.RightParenthesisToken, css.RightBracketToken:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return len(toks) - 1
}

func unescape(s string) string {
	return strings.ReplaceAll(s, `\`, "")
}
