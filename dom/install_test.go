package dom

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pjslang/pjs"
)

const installPage = `<html>
<head><script type="text/f">:greet ({hello} .)</script></head>
<body>
<p f="greet"></p>
<div f&="{bg} @=started"></div>
<script>ignored()</script>
<script type="text/f">:shout ({HELLO} .)</script>
<h1 f="shout"></h1>
</body>
</html>`

func TestInstall(t *testing.T) {
	h := newHost(t, mustParse(t, installPage))
	div := queryOne(t, h.doc, "div")
	_, ok := div.Attr("f&")
	require.True(t, ok, "expected the page to carry an f& attribute")

	tasks, err := Install(context.Background(), h.vm, h.doc, h.dict)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.NoError(t, tasks[0].Wait(context.Background()))

	assert.Equal(t, "hello", queryOne(t, h.doc, "p").Text())
	assert.Equal(t, "HELLO", queryOne(t, h.doc, "h1").Text())
	started, _ := div.Attr("started")
	assert.Equal(t, "bg", started)
}

func TestInstall_errors(t *testing.T) {
	for _, tc := range []struct {
		name string
		page string
		want interface{}
	}{
		{"script", `<script type="text/f">nope</script>`, new(*pjs.ResolutionError)},
		{"attribute", `<p f="(1"></p>`, new(*pjs.ParseError)},
		{"task", `<p f&="(1"></p>`, new(*pjs.ParseError)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			h := newHost(t, mustParse(t, tc.page))
			_, err := Install(context.Background(), h.vm, h.doc, h.dict)
			assert.ErrorAs(t, err, tc.want)
		})
	}
}
