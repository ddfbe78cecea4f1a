package pyi

import "testing"

type scanStep struct {
	tok token
	lit string
}

func scanAll(t *testing.T, src string) []scanStep {
	t.Helper()
	s := newScanner("test.pyi", []byte(src))
	var steps []scanStep
	for {
		s.next()
		steps = append(steps, scanStep{s.tok, s.lit})
		if s.tok == tokEOF {
			break
		}
		if len(steps) > 1000 {
			t.Fatal("scanner did not terminate")
		}
	}
	if s.err != nil {
		t.Fatalf("scan error: %v", s.err)
	}
	return steps
}

func checkSteps(t *testing.T, got []scanStep, want []scanStep) {
	t.Helper()
	for i, w := range want {
		if i >= len(got) {
			t.Fatalf("token %d: stream ended early, want %s", i, w.tok)
		}
		if got[i].tok != w.tok || got[i].lit != w.lit {
			t.Errorf("token %d: got %s %q, want %s %q", i, got[i].tok, got[i].lit, w.tok, w.lit)
		}
	}
	if len(got) != len(want) {
		t.Errorf("got %d tokens, want %d", len(got), len(want))
	}
}

func TestScanClassHeader(t *testing.T) {
	got := scanAll(t, "class Foo(Bar):\n    count: int = 1\n")
	want := []scanStep{
		{tokName, "class"}, {tokName, "Foo"}, {tokLparen, "("}, {tokName, "Bar"},
		{tokRparen, ")"}, {tokColon, ":"}, {tokNewline, ""},
		{tokIndent, ""},
		{tokName, "count"}, {tokColon, ":"}, {tokName, "int"}, {tokEqual, "="},
		{tokNumber, "1"}, {tokNewline, ""},
		{tokDedent, ""},
		{tokEOF, ""},
	}
	checkSteps(t, got, want)
}

func TestScanImplicitLineJoining(t *testing.T) {
	src := "def f(\n    a: int,\n    b: str,\n) -> None: ...\n"
	got := scanAll(t, src)
	want := []scanStep{
		{tokName, "def"}, {tokName, "f"}, {tokLparen, "("},
		{tokName, "a"}, {tokColon, ":"}, {tokName, "int"}, {tokComma, ","},
		{tokName, "b"}, {tokColon, ":"}, {tokName, "str"}, {tokComma, ","},
		{tokRparen, ")"}, {tokArrow, "->"}, {tokName, "None"}, {tokColon, ":"},
		{tokEllipsis, "..."}, {tokNewline, ""},
		{tokEOF, ""},
	}
	checkSteps(t, got, want)
}

func TestScanTripleQuotedString(t *testing.T) {
	src := "class A:\n    \"\"\"Doc line\n    more\"\"\"\n\n    x: float\n"
	got := scanAll(t, src)
	want := []scanStep{
		{tokName, "class"}, {tokName, "A"}, {tokColon, ":"}, {tokNewline, ""},
		{tokIndent, ""},
		{tokString, "Doc line\n    more"}, {tokNewline, ""},
		{tokName, "x"}, {tokColon, ":"}, {tokName, "float"}, {tokNewline, ""},
		{tokDedent, ""},
		{tokEOF, ""},
	}
	checkSteps(t, got, want)
}

func TestScanBlankLinesAndComments(t *testing.T) {
	src := "# header comment\n\nx: int  # trailing\n\n# another\ny: str\n"
	got := scanAll(t, src)
	want := []scanStep{
		{tokName, "x"}, {tokColon, ":"}, {tokName, "int"}, {tokNewline, ""},
		{tokName, "y"}, {tokColon, ":"}, {tokName, "str"}, {tokNewline, ""},
		{tokEOF, ""},
	}
	checkSteps(t, got, want)
}

func TestScanOperators(t *testing.T) {
	got := scanAll(t, "a = -1\nb = x | y\nc = d.e\nf = *g\n")
	want := []scanStep{
		{tokName, "a"}, {tokEqual, "="}, {tokMinus, "-"}, {tokNumber, "1"}, {tokNewline, ""},
		{tokName, "b"}, {tokEqual, "="}, {tokName, "x"}, {tokPipe, "|"}, {tokName, "y"}, {tokNewline, ""},
		{tokName, "c"}, {tokEqual, "="}, {tokName, "d"}, {tokDot, "."}, {tokName, "e"}, {tokNewline, ""},
		{tokName, "f"}, {tokEqual, "="}, {tokStar, "*"}, {tokName, "g"}, {tokNewline, ""},
		{tokEOF, ""},
	}
	checkSteps(t, got, want)
}

func TestScanStringVariants(t *testing.T) {
	cases := []struct {
		name string
		src  string
		lit  string
	}{
		{"single quotes", "x = 'WORLD'\n", "WORLD"},
		{"double quotes", "x = \"WORLD\"\n", "WORLD"},
		{"empty", "x = ''\n", ""},
		{"escapes", "x = 'a\\n\\tb'\n", "a\n\tb"},
		{"raw prefix", "x = r'a\\nb'\n", "a\\nb"},
		{"bytes prefix", "x = b'ab'\n", "ab"},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got := scanAll(t, tt.src)
			// x = STRING NEWLINE EOF
			if len(got) != 5 {
				t.Fatalf("got %d tokens, want 5", len(got))
			}
			if got[2].tok != tokString || got[2].lit != tt.lit {
				t.Errorf("got %s %q, want string %q", got[2].tok, got[2].lit, tt.lit)
			}
		})
	}
}

func TestScanNestedIndentation(t *testing.T) {
	src := "class A:\n    class B:\n        x: int\n    y: str\n"
	got := scanAll(t, src)
	want := []scanStep{
		{tokName, "class"}, {tokName, "A"}, {tokColon, ":"}, {tokNewline, ""},
		{tokIndent, ""},
		{tokName, "class"}, {tokName, "B"}, {tokColon, ":"}, {tokNewline, ""},
		{tokIndent, ""},
		{tokName, "x"}, {tokColon, ":"}, {tokName, "int"}, {tokNewline, ""},
		{tokDedent, ""},
		{tokName, "y"}, {tokColon, ":"}, {tokName, "str"}, {tokNewline, ""},
		{tokDedent, ""},
		{tokEOF, ""},
	}
	checkSteps(t, got, want)
}

func TestScanMissingFinalNewline(t *testing.T) {
	got := scanAll(t, "class A:\n    x: int")
	last := got[len(got)-1]
	if last.tok != tokEOF {
		t.Fatalf("stream should end with EOF, got %s", last.tok)
	}
	// the final line must still be terminated and the block closed
	var sawNewline, sawDedent bool
	for _, s := range got[len(got)-4:] {
		if s.tok == tokNewline {
			sawNewline = true
		}
		if s.tok == tokDedent {
			sawDedent = true
		}
	}
	if !sawNewline || !sawDedent {
		t.Errorf("expected synthetic newline and dedent before EOF, got %v", got)
	}
}

func TestScanBadIndentation(t *testing.T) {
	s := newScanner("test.pyi", []byte("class A:\n        x: int\n    y: str\n"))
	for s.tok != tokEOF {
		s.next()
	}
	if s.err == nil {
		t.Fatal("expected an indentation error")
	}
	if s.err.File != "test.pyi" {
		t.Errorf("error file = %q, want test.pyi", s.err.File)
	}
}

func TestScanUnterminatedString(t *testing.T) {
	s := newScanner("test.pyi", []byte("x = 'oops\n"))
	for s.tok != tokEOF {
		s.next()
	}
	if s.err == nil {
		t.Fatal("expected an unterminated string error")
	}
}
