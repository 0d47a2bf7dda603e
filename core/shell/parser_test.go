package shell

import (
	"fmt"
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestFieldsTokenizer(t *testing.T) {
	cases := []struct {
		line     string
		expected []string
	}{
		{"", nil},
		{"    ", nil},
		{"maik foo.txt", []string{"maik", "foo.txt"}},
		{"  start   /bin/ls  -l ", []string{"start", "/bin/ls", "-l"}},
		{"repeat\t3 /bin/sleep 5", []string{"repeat", "3", "/bin/sleep", "5"}},
		{`maik "a b"`, []string{"maik", `"a`, `b"`}},
	}

	for _, tc := range cases {
		t.Run(tc.line, func(t *testing.T) {
			actual, err := FieldsTokenizer{}.Split(tc.line)

			assert.Nil(t, err)
			assert.Equal(t, len(tc.expected), len(actual))
			for i := range tc.expected {
				assert.Equal(t, tc.expected[i], actual[i])
			}
		})
	}
}

func TestFieldsTokenizer_properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		line := rapid.StringOfN(rapid.RuneFrom([]rune("ab/. \t-1")), 0, 40, -1).Draw(t, "line")

		tokens, err := FieldsTokenizer{}.Split(line)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for _, tok := range tokens {
			if tok == "" {
				t.Fatalf("empty token in %q", line)
			}
			if strings.IndexFunc(tok, unicode.IsSpace) >= 0 {
				t.Fatalf("token %q contains whitespace", tok)
			}
		}

		if IsBlank(line) != (len(tokens) == 0) {
			t.Fatalf("IsBlank(%q) disagrees with %d tokens", line, len(tokens))
		}
	})
}

func TestShlexTokenizer(t *testing.T) {
	tokens, err := ShlexTokenizer{}.Split(`maik "a b" c`)
	assert.Nil(t, err)
	assert.Equal(t, []string{"maik", "a b", "c"}, tokens)

	_, err = ShlexTokenizer{}.Split(`maik "unterminated`)
	assert.NotNil(t, err)
}

func TestNewTokenizer(t *testing.T) {
	tok, err := NewTokenizer("")
	assert.Nil(t, err)
	assert.IsType(t, FieldsTokenizer{}, tok)

	tok, err = NewTokenizer(TokenizerShlex)
	assert.Nil(t, err)
	assert.IsType(t, ShlexTokenizer{}, tok)

	_, err = NewTokenizer("bash")
	assert.NotNil(t, err)
}

func TestParse(t *testing.T) {
	cmd, ok, err := Parse(FieldsTokenizer{}, " repeat 3 /bin/sleep 5 ")
	assert.Nil(t, err)
	assert.True(t, ok)
	assert.Equal(t, "repeat", cmd.Verb)
	assert.Equal(t, []string{"3", "/bin/sleep", "5"}, cmd.Args)
	assert.Equal(t, " repeat 3 /bin/sleep 5 ", cmd.Line)
	assert.Equal(t, []string{"repeat", "3", "/bin/sleep", "5"}, cmd.Argv())

	_, ok, err = Parse(FieldsTokenizer{}, "   ")
	assert.Nil(t, err)
	assert.False(t, ok)
}

func ExampleVerb() {
	fmt.Printf("%q\n", Verb("  replay 0"))
	fmt.Printf("%q\n", Verb(""))

	// Output: "replay"
	// ""
}
