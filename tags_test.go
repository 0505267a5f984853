package pjs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTags(t *testing.T) {
	evalTestCases{
		evalTest("commit into open tag").
			withRootSelected().
			eval("<p> {hello} . </p>").
			expect(func(t *testing.T, res evalResult) {
				data := res.data.Slice()
				require.Len(t, data, 1)
				p := data[0].(*testObj)
				assert.Equal(t, "p(hello)", p.render())
				assert.False(t, p.IsOpen(), "expected p to be closed")
				assert.Equal(t, Object(res.doc.root), p.Parent())
			}).
			expectDoc("root"),

		evalTest("close collects").
			withDocument().
			eval("<p> {hello} 42 </p>").
			expect(func(t *testing.T, res evalResult) {
				assert.Equal(t, "p(hello 42)", res.data.Slice()[0].(*testObj).render())
			}),

		evalTest("nesting").
			withDocument().
			eval("<ul> <li> {a} </li> <li/> {b} </ul> .").
			expectData().
			expectDoc("root(ul(li(a) li b))"),

		evalTest("collected ahead of committed").
			withDocument().
			eval("<p> {a} {b} . </p> .").
			expectDoc("root(p(a b))"),

		evalTest("selection inside tag").
			withRootSelected().
			eval("<p> its .=self </p> its").
			expect(func(t *testing.T, res evalResult) {
				data := res.data.Slice()
				require.Len(t, data, 2)
				assert.Equal(t, Value(res.doc.root), data[1], "expected selection restored")
				p := data[0].(*testObj)
				self, _ := p.Field("self")
				assert.Equal(t, Value(p), self)
			}),

		evalTest("self closed keeps selection").
			withRootSelected().
			eval("<br/> its").
			expect(func(t *testing.T, res evalResult) {
				data := res.data.Slice()
				require.Len(t, data, 2)
				assert.Equal(t, Value(res.doc.root), data[1])
				assert.False(t, data[0].(*testObj).IsOpen())
			}),

		evalTest("tag names are case insensitive").
			withDocument().
			eval("<P> </p> .").
			expectDoc("root(p)"),

		evalTest("commit text").withDocument().eval("{hi} . 1 .").expectDoc("root(hi 1)"),
		evalTest("commit to selection").
			withSelection(twoParas).
			eval("{x} .").
			expectDoc("root(p(x) p)"),
		evalTest("commit open tag").withDocument().eval("<p> .").expectError(new(*StructuralError)),
		evalTest("commit without document").eval("1 .").expectError(new(*StructuralError)),
		evalTest("commit underflow").withDocument().eval(".").expectError(new(*StackShapeError)),

		evalTest("mismatched close").withDocument().eval("<p> </div>").expectError(new(*StructuralError)),
		evalTest("close already closed").withDocument().eval("<p/> </p>").expectError(new(*StructuralError)),
		evalTest("close with nothing open").withDocument().eval("1 </p>").expectError(new(*StructuralError)),
		evalTest("open without document").eval("<p>").expectError(new(*StructuralError)),
	}.run(t)
}
