package pjs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func num(src string, val float64) NumberLit { return NumberLit{Value: val, Src: src} }

func TestCompile(t *testing.T) {
	for _, tc := range []struct {
		name  string
		in    string
		terms []Term
	}{
		{"empty", "", nil},
		{"numbers", "-12 3.5", []Term{num("-12", -12), num("3.5", 3.5)}},
		{"words", "dup end.", []Term{Word{"dup"}, Word{"end"}, Word{"."}}},
		{"string", "{a{b}c}", []Term{StringLit{"a{b}c"}}},
		{"string keeps spacing", "{ two  words }", []Term{StringLit{" two  words "}}},
		{"empty string", "{}", []Term{StringLit{""}}},
		{"tags", "<div> <img/> </div>", []Term{
			TagOpen{"div"}, TagSelfClosed{"img"}, TagClose{"div"},
		}},
		{"call block", "(1 (dup))", []Term{
			Group{CallBlock, []Term{num("1", 1), Group{Kind: CallBlock, Terms: []Term{Word{"dup"}}}}},
		}},
		{"quote block", "(: dup +)", []Term{
			Group{QuoteBlock, []Term{Word{"dup"}, Word{"+"}}},
		}},
		{"array block", "[1 2]", []Term{
			Group{ArrayBlock, []Term{num("1", 1), num("2", 2)}},
		}},
		{"empty blocks", "() (:) []", []Term{
			Group{Kind: CallBlock}, Group{Kind: QuoteBlock}, Group{Kind: ArrayBlock},
		}},
		{"sigils", ":double :.greet @href @=href .n .=n ~onclick", []Term{
			Define{Name: "double"},
			Define{Name: "greet", Scoped: true},
			AttrGet{"href"},
			AttrSet{"href"},
			FieldGet{"n"},
			FieldSet{"n"},
			OnEvent{"click"},
		}},
		{"lone sigils", ": @ @= . .= ~on", []Term{
			Word{":"}, Word{"@"}, Word{"@="}, Word{"."}, Word{".="}, Word{"~on"},
		}},
		{"sigil precedence", ":@x @.x .@x", []Term{
			Define{Name: "@x"}, AttrGet{".x"}, FieldGet{"@x"},
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			terms, err := Compile(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.terms, terms)
		})
	}
}

func TestCompile_errors(t *testing.T) {
	for _, tc := range []struct {
		name   string
		in     string
		offset int
		reason string
	}{
		{"unterminated call", "1 (2", 2, "unterminated block"},
		{"unterminated quote", "(: 2", 0, "unterminated block"},
		{"unterminated array", "[2", 0, "unterminated block"},
		{"stray close", "1 )", 2, "unbalanced close bracket"},
		{"stray array close", "]", 0, "unbalanced close bracket"},
		{"stray brace close", "}", 0, "unbalanced close bracket"},
		{"mismatched close", "(1]", 2, "mismatched close for ("},
		{"unterminated brace", "{a {b}", 0, "unterminated brace"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Compile(tc.in)
			var perr *ParseError
			if assert.ErrorAs(t, err, &perr) {
				assert.Equal(t, tc.offset, perr.Offset, "offset")
				assert.Equal(t, tc.reason, perr.Reason, "reason")
			}
		})
	}
}

func TestCompile_unknown(t *testing.T) {
	_, err := Compile("dup \xff")
	var lerr *LexError
	if assert.ErrorAs(t, err, &lerr) {
		assert.Equal(t, 4, lerr.Offset)
		assert.Equal(t, "\xff", lerr.Text)
	}

	_, err = Parse(Tokenize("dup \xff"))
	var perr *ParseError
	if assert.ErrorAs(t, err, &perr) {
		assert.Equal(t, "unknown token", perr.Reason)
	}

	_, err = Parse(Tokenize("{a \xff}"))
	if assert.ErrorAs(t, err, &perr) {
		assert.Equal(t, "unknown token", perr.Reason)
	}
}

func TestCompile_deterministic(t *testing.T) {
	const src = `<ul> (: {x} log) 3 times </ul> . :f (1 -> 2 ; 3) [a b]`
	first, err := Compile(src)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		terms, err := Compile(src)
		require.NoError(t, err)
		assert.Equal(t, first, terms)
	}
}

func TestTerm_String(t *testing.T) {
	terms, err := Compile(`1 {a b} (: dup [2]) <p> </p> <br/> :.x @=y ~onclick`)
	require.NoError(t, err)
	g := Group{Kind: CallBlock, Terms: terms}
	assert.Equal(t, `(1 {a b} (:dup [2]) <p> </p> <br/> :.x @=y ~onclick)`, g.String())
}

func TestProgram(t *testing.T) {
	terms, err := Compile("1 2 3")
	require.NoError(t, err)
	p := NewProgram(terms)
	assert.Equal(t, "^ 1 2 3", p.String())

	term, p := p.Next()
	assert.Equal(t, num("1", 1), term)
	assert.Equal(t, "1 ^ 2 3", p.String())
	assert.Equal(t, terms[1:], p.Remaining())

	p = p.Slice(1, 2)
	_, p = p.Next()
	assert.True(t, p.Done())
	assert.Equal(t, "1 2 ^", p.String())

	assert.Equal(t, NewProgram(terms), p.Restart())
}
