package stylesheet

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

type token struct {
	tt   css.TokenType
	data string
}

var utf8BOM = []byte("\xef\xbb\xbf")

var errUnterminatedBlock = errors.New("unexpected end of stylesheet: missing }")

// frame is an open block: the top level, or an at-rule's body.
type frame struct {
	at    *AtRule
	rule  *Rule
	sels  []Selector
	nodes []Node
	raw   strings.Builder
}

// opaque frames keep their body as text.
func (f *frame) opaque() bool {
	return f.at != nil && !groupingAtRules[f.at.Name] && !declarationAtRules[f.at.Name]
}

func (f *frame) add(n Node) {
	if f.opaque() {
		writeNodes(&f.raw, []Node{n}, 0)
		return
	}
	f.nodes = append(f.nodes, n)
}

// Parse reads a stylesheet. Comments and a leading byte order mark are
// dropped.
func Parse(src []byte) (*Sheet, error) {
	src = bytes.TrimPrefix(src, utf8BOM)
	p := css.NewParser(parse.NewInputBytes(src), false)
	stack := []*frame{{}}

	for {
		gt, _, data := p.Next()
		top := stack[len(stack)-1]

		switch gt {
		case css.ErrorGrammar:
			if p.HasParseError() {
				return nil, fmt.Errorf("error parsing stylesheet: %w", p.Err())
			}
			if err := p.Err(); err != nil && !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("error reading stylesheet: %w", err)
			}
			if len(stack) > 1 || top.rule != nil {
				return nil, errUnterminatedBlock
			}
			return &Sheet{Nodes: top.nodes}, nil

		case css.CommentGrammar:

		case css.AtRuleGrammar:
			top.add(&AtRule{Name: string(data), Prelude: joinTokens(values(p))})

		case css.BeginAtRuleGrammar:
			at := &AtRule{Name: string(data), Prelude: joinTokens(values(p)), Block: true}
			stack = append(stack, &frame{at: at})

		case css.EndAtRuleGrammar:
			if string(data) != "}" || len(stack) == 1 {
				return nil, errUnterminatedBlock
			}
			stack = stack[:len(stack)-1]
			at, err := closeAtRule(top)
			if err != nil {
				return nil, err
			}
			stack[len(stack)-1].add(at)

		case css.QualifiedRuleGrammar:
			if sel := newSelector(values(p)); sel.text != "" {
				top.sels = append(top.sels, sel)
			}

		case css.BeginRulesetGrammar:
			if sel := newSelector(values(p)); sel.text != "" {
				top.sels = append(top.sels, sel)
			}
			if len(top.sels) == 0 {
				return nil, errors.New("style rule without selector")
			}
			top.rule = &Rule{Selectors: top.sels}
			top.sels = nil

		case css.EndRulesetGrammar:
			if string(data) != "}" || top.rule == nil {
				return nil, errUnterminatedBlock
			}
			top.add(top.rule)
			top.rule = nil

		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			d := declaration(gt, data, values(p))
			switch {
			case top.rule != nil:
				top.rule.Declarations = append(top.rule.Declarations, d)
			case top.at != nil:
				top.at.Declarations = append(top.at.Declarations, d)
			}

		case css.TokenGrammar:
			if top.at != nil {
				top.raw.Write(data)
			}
		}
	}
}

// closeAtRule finishes the at-rule of f. Bodies the grammar left as plain
// tokens (@container, @counter-style and the like) are parsed here.
func closeAtRule(f *frame) (*AtRule, error) {
	at := f.at
	raw := f.raw.String()
	switch {
	case groupingAtRules[at.Name]:
		at.Nodes = f.nodes
		if strings.TrimSpace(raw) != "" {
			inner, err := Parse([]byte(raw))
			if err != nil {
				return nil, fmt.Errorf("error parsing %s: %w", at.Name, err)
			}
			at.Nodes = append(at.Nodes, inner.Nodes...)
		}
	case declarationAtRules[at.Name]:
		if strings.TrimSpace(raw) != "" {
			decls, err := parseDeclarations(raw)
			if err != nil {
				return nil, fmt.Errorf("error parsing %s: %w", at.Name, err)
			}
			at.Declarations = append(at.Declarations, decls...)
		}
	default:
		at.Raw = raw
		at.Declarations = nil
	}
	return at, nil
}

func parseDeclarations(src string) ([]Declaration, error) {
	p := css.NewParser(parse.NewInputString(src), true)
	var decls []Declaration
	for {
		gt, _, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			if p.HasParseError() {
				return nil, p.Err()
			}
			return decls, nil
		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			decls = append(decls, declaration(gt, data, values(p)))
		}
	}
}

func declaration(gt css.GrammarType, name []byte, vals []token) Declaration {
	d := Declaration{Property: string(name)}
	if gt == css.CustomPropertyGrammar {
		d.Value = strings.TrimSpace(joinTokens(vals))
		return d
	}
	var sb strings.Builder
	for i, t := range vals {
		if t.tt == css.DelimToken && t.data == "!" && i > 0 && vals[i-1].tt != css.WhitespaceToken {
			sb.WriteByte(' ')
		}
		if t.tt == css.WhitespaceToken {
			sb.WriteByte(' ')
			continue
		}
		sb.WriteString(t.data)
	}
	d.Value = strings.TrimSpace(sb.String())
	return d
}

// values copies the parser's token buffer, which is reused by Next.
func values(p *css.Parser) []token {
	vals := p.Values()
	toks := make([]token, 0, len(vals))
	for _, v := range vals {
		toks = append(toks, token{tt: v.TokenType, data: string(v.Data)})
	}
	return toks
}

// joinTokens concatenates tokens, collapsing whitespace runs to one space.
func joinTokens(toks []token) string {
	var sb strings.Builder
	pendingSpace := false
	for _, t := range toks {
		if t.tt == css.WhitespaceToken {
			pendingSpace = true
			continue
		}
		if pendingSpace && sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		pendingSpace = false
		sb.WriteString(t.data)
	}
	return sb.String()
}
