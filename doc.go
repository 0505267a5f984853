/*
Package pjs implements a small concatenative language for building and
scripting document trees.

A program is a flat sequence of space separated terms. Numbers, and words
wrapped in braces, push themselves onto the data stack; every other word is
looked up and run against the stack, so the first line below leaves 3:

	1 2 +
	{hello} {, world} + log

Parentheses group terms. A plain group runs in place, a group starting with
":" is a quote that is pushed unevaluated, and a bracketed group collects what
it pushes into an array, here [1 2 9]:

	(: dup *) :square
	[1 2 3 square]

Control flow is built from words that edit the current block rather than from
syntax: "," and ";" short circuit, "cond -> then ; else" branches, "repeat"
and "while" restart the enclosing block, "end" leaves it, and "times" runs a
quote once per index.

Tags build host objects. An open tag pushes a new object and selects it, the
matching close tag gathers everything pushed since into the object as
children, and "." commits the finished object to the selection:

	<ul> <li> {one} </li> <li> {two} </li> </ul> .

Words may be defined globally, or privately on the selected objects with the
":." form; a private word shadows the global dictionary only while its object
is selected. The "@name" and "@=name" forms read and write host attributes,
".name" and ".=name" read and write fields that the machine keeps itself, and
"~onclick" registers an event handler.

The machine never recurses: the data stack and the continuation stack are
persistent lists threaded through an explicit step loop, so a word may take
over the rest of its block, block on the host, or hand a quote to "&" to be run
as an independent Task.

Package dom supplies a host Document over parsed HTML; cmd/pjs is a command
line runner and REPL around it.
*/
package pjs
