package pjs

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenKind classifies a scanned token.
type TokenKind uint8

const (
	TokenUnknown TokenKind = iota
	TokenWord
	TokenNumber
	TokenSpace
	TokenOpenCall      // (
	TokenOpenQuote     // (:
	TokenClose         // )
	TokenOpenArray     // [
	TokenCloseArray    // ]
	TokenOpenBrace     // {
	TokenCloseBrace    // }
	TokenTagOpen       // <name>
	TokenTagClose      // </name>
	TokenTagSelfClosed // <name/>
)

var tokenKindNames = [...]string{
	TokenUnknown:       "unknown",
	TokenWord:          "word",
	TokenNumber:        "number",
	TokenSpace:         "space",
	TokenOpenCall:      "(",
	TokenOpenQuote:     "(:",
	TokenClose:         ")",
	TokenOpenArray:     "[",
	TokenCloseArray:    "]",
	TokenOpenBrace:     "{",
	TokenCloseBrace:    "}",
	TokenTagOpen:       "tag-open",
	TokenTagClose:      "tag-close",
	TokenTagSelfClosed: "tag-selfclosed",
}

func (kind TokenKind) String() string {
	if int(kind) < len(tokenKindNames) {
		return tokenKindNames[kind]
	}
	return fmt.Sprintf("TokenKind(%d)", uint8(kind))
}

// Token is one lexical unit of source text. Text is always the exact source
// text, so that brace blocks can be reassembled verbatim.
type Token struct {
	Kind   TokenKind
	Text   string
	Offset int
}

func (tok Token) String() string { return fmt.Sprintf("%v %q @%v", tok.Kind, tok.Text, tok.Offset) }

// TagName returns the bare element name of a tag token, or "" for any other
// kind of token.
func (tok Token) TagName() string {
	switch tok.Kind {
	case TokenTagOpen:
		return tok.Text[1 : len(tok.Text)-1]
	case TokenTagClose:
		return tok.Text[2 : len(tok.Text)-1]
	case TokenTagSelfClosed:
		return tok.Text[1 : len(tok.Text)-2]
	}
	return ""
}

var tagPattern = regexp.MustCompile(`^(?:<([a-zA-Z][-a-zA-Z0-9]*)>|</([a-zA-Z][-a-zA-Z0-9]*)>|<([a-zA-Z][-a-zA-Z0-9]*)/>)$`)

func tagKind(text string) (TokenKind, bool) {
	m := tagPattern.FindStringSubmatch(text)
	switch {
	case m == nil:
		return TokenWord, false
	case m[1] != "":
		return TokenTagOpen, true
	case m[2] != "":
		return TokenTagClose, true
	default:
		return TokenTagSelfClosed, true
	}
}

// Tokenize scans text into tokens, left to right. Tokenize never fails: any
// run of text that cannot be scanned becomes a TokenUnknown token, which
// Compile and Parse then reject.
func Tokenize(text string) []Token {
	var toks []Token
	base := len(text) - len(strings.TrimLeftFunc(text, unicode.IsSpace))
	text = strings.TrimSpace(text)
	for i := 0; i < len(text); {
		kind, n := scanToken(text[i:])
		tok := Token{Kind: kind, Text: text[i : i+n], Offset: base + i}
		i += n

		if kind == TokenWord && n > 1 && strings.HasSuffix(tok.Text, ".") {
			// words may contain a period but never end with one
			word, dot := tok, tok
			word.Text = tok.Text[:n-1]
			dot.Text = "."
			dot.Offset += n - 1
			toks = append(toks, word, dot)
		} else {
			toks = append(toks, tok)
		}

		last := len(toks) - 1
		if toks[last].Kind == TokenWord && toks[last].Text == "." && last > 0 {
			last--
		}
		if toks[last].Kind == TokenWord {
			if tk, isTag := tagKind(toks[last].Text); isTag {
				toks[last].Kind = tk
			}
		}
	}
	return toks
}

// scanToken matches a single token at the start of s, trying numbers before
// words, then brackets, separators and spaces.
func scanToken(s string) (TokenKind, int) {
	if n := scanNumber(s); n > 0 {
		return TokenNumber, n
	}
	if n := scanWord(s); n > 0 {
		return TokenWord, n
	}
	switch s[0] {
	case '(':
		if strings.HasPrefix(s, "(:") {
			return TokenOpenQuote, 2
		}
		return TokenOpenCall, 1
	case ')':
		return TokenClose, 1
	case '[':
		return TokenOpenArray, 1
	case ']':
		return TokenCloseArray, 1
	case '{':
		return TokenOpenBrace, 1
	case '}':
		return TokenCloseBrace, 1
	case ',', ';':
		return TokenWord, 1
	}
	if n := scanSpace(s); n > 0 {
		return TokenSpace, n
	}
	return TokenUnknown, scanUnknown(s)
}

// scanNumber matches [-+]?[0-9]+(\.[0-9]+)?
func scanNumber(s string) int {
	i := 0
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		i++
	}
	digits := scanDigits(s[i:])
	if digits == 0 {
		return 0
	}
	i += digits
	if i < len(s) && s[i] == '.' {
		if frac := scanDigits(s[i+1:]); frac > 0 {
			i += 1 + frac
		}
	}
	return i
}

func scanDigits(s string) int {
	i := 0
	for i < len(s) && '0' <= s[i] && s[i] <= '9' {
		i++
	}
	return i
}

func isDelimiter(r rune) bool {
	switch r {
	case '(', ')', '[', ']', '{', '}', ',', ';':
		return true
	}
	return unicode.IsSpace(r)
}

func scanWord(s string) int {
	i := 0
	for i < len(s) {
		r, n := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && n <= 1 || isDelimiter(r) {
			break
		}
		i += n
	}
	return i
}

func scanSpace(s string) int {
	i := 0
	for i < len(s) {
		r, n := utf8.DecodeRuneInString(s[i:])
		if !unicode.IsSpace(r) {
			break
		}
		i += n
	}
	return i
}

// scanUnknown consumes a run of undecodable bytes.
func scanUnknown(s string) int {
	i := 0
	for i < len(s) {
		r, n := utf8.DecodeRuneInString(s[i:])
		if r != utf8.RuneError || n > 1 {
			break
		}
		i += n
	}
	if i == 0 {
		i = 1
	}
	return i
}
