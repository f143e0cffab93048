package minify

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSS(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "comments and whitespace",
			input:    "/* header */\n.btn  {\n  color : red ;\n}\n",
			expected: ".btn{color:red}",
		},
		{
			name:     "combinators",
			input:    ".a > .b + .c ~ .d , .e { margin: 0 ; }",
			expected: ".a>.b+.c~.d,.e{margin:0}",
		},
		{
			name:     "media query keeps space before paren",
			input:    "@media screen and (max-width: 600px) {\n  .a { display: none; }\n}",
			expected: "@media screen and (max-width:600px){.a{display:none}}",
		},
		{
			name:     "quoted content untouched",
			input:    ".q::before { content: \"a  //  b\"; }",
			expected: ".q::before{content:\"a  //  b\"}",
		},
		{
			name:     "unquoted url untouched",
			input:    ".hero { background: url( http://cdn.example.com/img/a.png ) no-repeat; }",
			expected: ".hero{background:url(http://cdn.example.com/img/a.png)no-repeat}",
		},
		{
			name:     "quoted url",
			input:    ".hero { background: url('//cdn.example.com/a  b.png'); }",
			expected: ".hero{background:url('//cdn.example.com/a  b.png')}",
		},
		{
			name:     "comment looking text inside string",
			input:    ".x { content: '/* not a comment */'; }",
			expected: ".x{content:'/* not a comment */'}",
		},
		{
			name:     "unterminated comment",
			input:    ".a { color: red; } /* trailing",
			expected: ".a{color:red}",
		},
		{
			name:     "empty",
			input:    "  \n\t ",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CSS(tt.input))
		})
	}
}

func TestJS(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name: "statements and keywords",
			input: `// comment
const url = "http://example.com//x"; /* block */
function  add(a,  b) {
  return a + b;
}
if (x) { y(); } else { z(); }`,
			expected: `const url="http://example.com//x"; function add(a,b){return a+b;} if (x){y();} else {z();}`,
		},
		{
			name:     "string whitespace preserved",
			input:    "var msg = 'hello    world';",
			expected: "var msg='hello    world';",
		},
		{
			name:     "template literal preserved",
			input:    "let s = `line one\n   // not a comment\n`;",
			expected: "let s=`line one\n   // not a comment\n`;",
		},
		{
			name:     "regex literal preserved",
			input:    "const re = /'+ \\/\\//g;\nre.test(s);",
			expected: "const re=/'+ \\/\\//g;re.test(s);",
		},
		{
			name:     "division is not a regex",
			input:    "var half = total / 2; var q = a / b;",
			expected: "var half=total/2; var q=a/b;",
		},
		{
			name:     "return keyword is not glued",
			input:    "function f() { return (a); }",
			expected: "function f(){return (a);}",
		},
		{
			name:     "identifiers containing keywords",
			input:    "returnValue = format(x);",
			expected: "returnValue=format(x);",
		},
		{
			name:     "escaped quote in string",
			input:    `var s = "say \"hi\"  // there";`,
			expected: `var s="say \"hi\"  // there";`,
		},
		{
			name:     "subtracting a negation",
			input:    "var d = a - -b;",
			expected: "var d=a- -b;",
		},
		{
			name:     "adding a unary plus",
			input:    "var s = a + +b;",
			expected: "var s=a+ +b;",
		},
		{
			name:     "postfix increment then plus",
			input:    "var n = i++ + j;",
			expected: "var n=i++ +j;",
		},
		{
			name:     "repeated negation",
			input:    "x = a - - -b;",
			expected: "x=a- - -b;",
		},
		{
			name:     "decrement untouched",
			input:    "i--; j = k-1;",
			expected: "i--;j=k-1;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, JS(tt.input))
		})
	}
}

var (
	blockComment   = regexp.MustCompile(`/\*[\s\S]*?\*/`)
	doubleSpace    = regexp.MustCompile(`\s\s`)
	placeholderHit = regexp.MustCompile("\x00")
)

func TestMinifiedOutputHasNoCommentsOutsideStrings(t *testing.T) {
	input := `/**
 * Banner
 */
(function (Drupal) {
  'use strict';
  // namespace
  Drupal.site = Drupal.site || {};   /* trailing */

  Drupal.site.api = "https://api.example.com/v1";
})(Drupal);
`
	out := JS(input)

	masked, _ := mask(out, true)
	assert.NotRegexp(t, blockComment, masked)
	assert.NotContains(t, masked, "//")
	assert.NotRegexp(t, doubleSpace, masked)
	assert.NotRegexp(t, placeholderHit, out)
	assert.Contains(t, out, `"https://api.example.com/v1"`)
}

func TestMaskRestoreRoundTrip(t *testing.T) {
	inputs := []string{
		`a = "x" + 'y' + ` + "`z`" + `;`,
		`.a{background:url(data:image/png;base64,AAAA)}`,
		`unterminated = "abc`,
	}
	for _, in := range inputs {
		for _, js := range []bool{true, false} {
			masked, lits := mask(in, js)
			assert.Equal(t, in, restore(masked, lits), "js=%v input=%q", js, in)
		}
	}
}

func TestMaskDropsComments(t *testing.T) {
	masked, lits := mask("a /* one */ b // two\nc", true)
	require.Empty(t, lits)
	assert.Equal(t, "a   b \nc", masked)

	// CSS has no line comments.
	masked, _ = mask("a // b", false)
	assert.Equal(t, "a // b", masked)
}

func TestFunc(t *testing.T) {
	assert.NotNil(t, Func(".css"))
	assert.NotNil(t, Func(".JS"))
	assert.NotNil(t, Func(".mjs"))
	assert.Nil(t, Func(".html"))
}
