package pjs

import (
	"strconv"
	"strings"
)

// Compile tokenizes and parses text. Unscannable text is reported as a
// *LexError before parsing starts.
func Compile(text string) ([]Term, error) {
	toks := Tokenize(text)
	for _, tok := range toks {
		if tok.Kind == TokenUnknown {
			return nil, &LexError{Offset: tok.Offset, Text: tok.Text}
		}
	}
	return Parse(toks)
}

// Parse builds the top level term sequence from toks.
func Parse(toks []Token) ([]Term, error) {
	var terms []Term
	for i := 0; i < len(toks); {
		t, next, err := parseOneTerm(toks, i)
		if err != nil {
			return nil, err
		}
		if t != nil {
			terms = append(terms, t)
		}
		i = next
	}
	return terms, nil
}

// parseOneTerm parses the term starting at toks[i], returning a nil term for
// discarded whitespace.
func parseOneTerm(toks []Token, i int) (Term, int, error) {
	tok := toks[i]
	switch tok.Kind {
	case TokenSpace:
		return nil, i + 1, nil
	case TokenWord:
		return wordTerm(tok.Text), i + 1, nil
	case TokenNumber:
		val, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return nil, i, &ParseError{tok.Offset, tok.Text, "invalid number"}
		}
		return NumberLit{Value: val, Src: tok.Text}, i + 1, nil
	case TokenTagOpen:
		return TagOpen{Name: tok.TagName()}, i + 1, nil
	case TokenTagClose:
		return TagClose{Name: tok.TagName()}, i + 1, nil
	case TokenTagSelfClosed:
		return TagSelfClosed{Name: tok.TagName()}, i + 1, nil
	case TokenOpenBrace:
		return parseBrace(toks, i)
	case TokenOpenCall:
		return parseGroup(toks, i, CallBlock, TokenClose)
	case TokenOpenQuote:
		return parseGroup(toks, i, QuoteBlock, TokenClose)
	case TokenOpenArray:
		return parseGroup(toks, i, ArrayBlock, TokenCloseArray)
	case TokenClose, TokenCloseArray, TokenCloseBrace:
		return nil, i, &ParseError{tok.Offset, tok.Text, "unbalanced close bracket"}
	default:
		return nil, i, &ParseError{tok.Offset, tok.Text, "unknown token"}
	}
}

func parseGroup(toks []Token, i int, kind GroupKind, closer TokenKind) (Term, int, error) {
	open := toks[i]
	g := Group{Kind: kind}
	for i++; i < len(toks); {
		switch tok := toks[i]; tok.Kind {
		case closer:
			return g, i + 1, nil
		case TokenClose, TokenCloseArray:
			return nil, i, &ParseError{tok.Offset, tok.Text, "mismatched close for " + open.Text}
		}
		t, next, err := parseOneTerm(toks, i)
		if err != nil {
			return nil, i, err
		}
		if t != nil {
			g.Terms = append(g.Terms, t)
		}
		i = next
	}
	return nil, i, &ParseError{open.Offset, open.Text, "unterminated block"}
}

// parseBrace captures everything up to the matching close brace verbatim,
// nested braces included.
func parseBrace(toks []Token, i int) (Term, int, error) {
	open := toks[i]
	var sb strings.Builder
	depth := 1
	for i++; i < len(toks); i++ {
		tok := toks[i]
		switch tok.Kind {
		case TokenUnknown:
			return nil, i, &ParseError{tok.Offset, tok.Text, "unknown token"}
		case TokenOpenBrace:
			depth++
		case TokenCloseBrace:
			if depth--; depth == 0 {
				return StringLit{Text: sb.String()}, i + 1, nil
			}
		}
		sb.WriteString(tok.Text)
	}
	return nil, i, &ParseError{open.Offset, open.Text, "unterminated brace"}
}
