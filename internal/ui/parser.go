package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// ParseCSS parses a stylesheet. Only simple .class and #id selectors are kept (selector
// lists like ".a, .b" become one rule per selector); other selectors and everything
// inside at-rules are skipped. Later rules override earlier for the same selector.
func ParseCSS(content string) (*Stylesheet, error) {
	sheet := &Stylesheet{}
	p := css.NewParser(parse.NewInputString(content), false)

	var selectors []string
	var props map[string]string
	atDepth := 0
	for {
		gt, _, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			if err := p.Err(); err != nil && !errors.Is(err, io.EOF) {
				return sheet, fmt.Errorf("ui: css: %w", err)
			}
			return sheet, nil
		case css.BeginAtRuleGrammar:
			atDepth++
		case css.EndAtRuleGrammar:
			if atDepth > 0 {
				atDepth--
			}
		case css.QualifiedRuleGrammar:
			if atDepth == 0 {
				selectors = append(selectors, joinTokens(p.Values()))
			}
		case css.BeginRulesetGrammar:
			if atDepth == 0 {
				selectors = append(selectors, joinTokens(p.Values()))
				props = make(map[string]string)
			}
		case css.DeclarationGrammar:
			if props != nil {
				props[strings.ToLower(string(data))] = joinValues(p.Values())
			}
		case css.EndRulesetGrammar:
			if props != nil {
				for _, sel := range selectors {
					if simpleSelector(sel) {
						sheet.Rules = append(sheet.Rules, Rule{Selector: sel, Props: props})
					}
				}
			}
			selectors, props = nil, nil
		}
	}
}

func joinTokens(tokens []css.Token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.Write(t.Data)
	}
	return strings.TrimSpace(b.String())
}

// joinValues joins declaration value tokens with single spaces.
func joinValues(tokens []css.Token) string {
	parts := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t.TokenType == css.WhitespaceToken {
			continue
		}
		parts = append(parts, string(t.Data))
	}
	return strings.Join(parts, " ")
}

// simpleSelector reports whether sel is a single ".class" or "#id".
func simpleSelector(sel string) bool {
	if len(sel) < 2 || (sel[0] != '.' && sel[0] != '#') {
		return false
	}
	return !strings.ContainsAny(sel[1:], " .#>+~:[*,")
}
