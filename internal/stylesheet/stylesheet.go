// Package stylesheet parses compiled CSS into a flat tree of style rules and
// at-rules, analyses selectors, and writes the tree back out. It is the shared
// model behind purging and critical-path extraction.
package stylesheet

import (
	"strings"
)

// Node is either a *Rule or an *AtRule.
type Node interface {
	isNode()
}

type Declaration struct {
	Property string
	Value    string
}

// Rule is a style rule: a selector list and its declaration block.
type Rule struct {
	Selectors    []Selector
	Declarations []Declaration
}

// AtRule covers statement at-rules (@import, @charset), grouping at-rules
// whose block holds rules (@media, @supports), declaration at-rules
// (@font-face, @page) and opaque ones (@keyframes and anything unknown),
// whose block is kept verbatim in Raw.
type AtRule struct {
	Name         string
	Prelude      string
	Block        bool
	Nodes        []Node
	Declarations []Declaration
	Raw          string
}

func (*Rule) isNode()   {}
func (*AtRule) isNode() {}

// Grouping reports whether the at-rule's block contains style rules.
func (a *AtRule) Grouping() bool {
	return a.Block && groupingAtRules[a.Name]
}

var groupingAtRules = map[string]bool{
	"@media":     true,
	"@supports":  true,
	"@document":  true,
	"@container": true,
	"@layer":     true,
}

var declarationAtRules = map[string]bool{
	"@font-face":     true,
	"@page":          true,
	"@counter-style": true,
	"@property":      true,
	"@viewport":      true,
}

// Sheet is a parsed stylesheet.
type Sheet struct {
	Nodes []Node
}

// Selectors lists every selector of every style rule, including rules nested
// in grouping at-rules, in document order.
func (s *Sheet) Selectors() []Selector {
	var out []Selector
	walkRules(s.Nodes, func(r *Rule) {
		out = append(out, r.Selectors...)
	})
	return out
}

// Rules counts style rules.
func (s *Sheet) Rules() int {
	n := 0
	walkRules(s.Nodes, func(*Rule) { n++ })
	return n
}

func walkRules(nodes []Node, fn func(*Rule)) {
	for _, n := range nodes {
		switch v := n.(type) {
		case *Rule:
			fn(v)
		case *AtRule:
			if v.Grouping() {
				walkRules(v.Nodes, fn)
			}
		}
	}
}

// Split partitions the sheet by selector. Selectors for which match reports
// true move to matched; the rest stay in rest. A rule whose selectors split
// appears in both sheets with the same declarations. Grouping at-rules are
// recreated on each side that has content; every other at-rule stays in rest.
func (s *Sheet) Split(match func(Selector) bool) (matched, rest *Sheet) {
	m, r := splitNodes(s.Nodes, match)
	return &Sheet{Nodes: m}, &Sheet{Nodes: r}
}

func splitNodes(nodes []Node, match func(Selector) bool) (matched, rest []Node) {
	for _, n := range nodes {
		switch v := n.(type) {
		case *Rule:
			var in, out []Selector
			for _, sel := range v.Selectors {
				if match(sel) {
					in = append(in, sel)
				} else {
					out = append(out, sel)
				}
			}
			if len(in) > 0 {
				matched = append(matched, &Rule{Selectors: in, Declarations: v.Declarations})
			}
			if len(out) > 0 {
				rest = append(rest, &Rule{Selectors: out, Declarations: v.Declarations})
			}
		case *AtRule:
			if !v.Grouping() {
				rest = append(rest, v)
				continue
			}
			in, out := splitNodes(v.Nodes, match)
			if len(in) > 0 {
				matched = append(matched, &AtRule{Name: v.Name, Prelude: v.Prelude, Block: true, Nodes: in})
			}
			if len(out) > 0 {
				rest = append(rest, &AtRule{Name: v.Name, Prelude: v.Prelude, Block: true, Nodes: out})
			}
		}
	}
	return matched, rest
}

// String writes the sheet in an expanded, deterministic form.
func (s *Sheet) String() string {
	var sb strings.Builder
	writeNodes(&sb, s.Nodes, 0)
	return sb.String()
}

func writeNodes(sb *strings.Builder, nodes []Node, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, n := range nodes {
		switch v := n.(type) {
		case *Rule:
			sb.WriteString(indent)
			for i, sel := range v.Selectors {
				if i > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(sel.String())
			}
			sb.WriteString(" {\n")
			writeDeclarations(sb, v.Declarations, depth+1)
			sb.WriteString(indent)
			sb.WriteString("}\n")
		case *AtRule:
			sb.WriteString(indent)
			sb.WriteString(v.Name)
			if v.Prelude != "" {
				sb.WriteString(" ")
				sb.WriteString(v.Prelude)
			}
			switch {
			case !v.Block:
				sb.WriteString(";\n")
			case v.Grouping():
				sb.WriteString(" {\n")
				writeNodes(sb, v.Nodes, depth+1)
				sb.WriteString(indent)
				sb.WriteString("}\n")
			case len(v.Declarations) > 0:
				sb.WriteString(" {\n")
				writeDeclarations(sb, v.Declarations, depth+1)
				sb.WriteString(indent)
				sb.WriteString("}\n")
			default:
				sb.WriteString(" {")
				sb.WriteString(v.Raw)
				sb.WriteString("}\n")
			}
		}
	}
}

func writeDeclarations(sb *strings.Builder, decls []Declaration, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, d := range decls {
		sb.WriteString(indent)
		sb.WriteString(d.Property)
		sb.WriteString(": ")
		sb.WriteString(d.Value)
		sb.WriteString(";\n")
	}
}
