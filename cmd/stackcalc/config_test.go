package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zephyrtronium/stackcalc"
)

func writeConfig(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stackcalc.yaml")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
arith: big
prec: 128
max_depth: 32
scope: filter
fill: -1
given:
  r: "2"
  h: "r + 1"
prelude:
  - def area(r) = pi r^2
`)
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Arith != "big" || cfg.Prec != 128 || cfg.MaxDepth != 32 || cfg.Scope != "filter" || cfg.Fill != -1 {
		t.Errorf("wrong config: %+v", cfg)
	}
	if len(cfg.Given) != 2 || cfg.Given["h"] != "r + 1" {
		t.Errorf("wrong givens: %v", cfg.Given)
	}
	if len(cfg.Prelude) != 1 {
		t.Errorf("wrong prelude: %v", cfg.Prelude)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Arith != "float64" || cfg.MaxDepth != 256 || cfg.Scope != "chain" {
		t.Errorf("wrong defaults: %+v", cfg)
	}
	cfg, err = loadConfig(writeConfig(t, "scope: copy\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Arith != "float64" || cfg.Scope != "copy" {
		t.Errorf("file didn't override defaults: %+v", cfg)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"arith", "arith: complex\n"},
		{"depth", "max_depth: 0\n"},
		{"scope", "scope: dynamic\n"},
		{"yaml", "given: [\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := loadConfig(writeConfig(t, c.text)); err == nil {
				t.Error("no error")
			}
		})
	}
	if _, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("no error for missing file")
	}
}

func TestGivenList(t *testing.T) {
	got := givenList(map[string]string{"b": "2", "a": "1"}, [][2]string{{"c", "a + b"}, {"a", "5"}})
	want := [][2]string{{"a", "1"}, {"b", "2"}, {"c", "a + b"}, {"a", "5"}}
	if len(got) != len(want) {
		t.Fatalf("want %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d: want %v, got %v", i, want[i], got[i])
		}
	}
}

func TestRunArgs(t *testing.T) {
	var out bytes.Buffer
	env := stackcalc.NewEnv[float64](stackcalc.Float64{})
	r := runner{
		args: []string{"area(1) / pi", "r + h", "stop(r)", "1 + 1"},
		out:  &out,
	}
	given := [][2]string{{"r", "2"}, {"h", "r + 1"}}
	prelude := []string{"def area(r) = pi r^2"}
	if err := run(r, env, given, prelude); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("want 3 lines of output, got %q", out.String())
	}
	if lines[0] != "1" || lines[1] != "5" {
		t.Errorf("wrong results %q", lines[:2])
	}
	if !strings.Contains(lines[2], "2") {
		t.Errorf("termination doesn't carry its value: %q", lines[2])
	}
}

func TestRunPreludeError(t *testing.T) {
	env := stackcalc.NewEnv[float64](stackcalc.Float64{})
	r := runner{args: []string{"1"}, out: new(bytes.Buffer)}
	if err := run(r, env, nil, []string{"sqrt(-1)"}); err == nil {
		t.Error("no error from failing prelude")
	}
	if err := run(r, env, [][2]string{{"x", "1 +"}}, nil); err == nil {
		t.Error("no error from failing given")
	}
}

func TestBatch(t *testing.T) {
	in := strings.NewReader("# comment\nlet x = 3\n\nx^2\nsqrt(-1)\nx + 1\nstop(x)\nx + 100\n")
	var out bytes.Buffer
	env := stackcalc.NewEnv[float64](stackcalc.Float64{})
	if err := batch(&out, env, in, true); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("want 5 lines of output, got %q", out.String())
	}
	want := []string{"let x = 3 : 3", "x^2 : 9", "", "x + 1 : 4", ""}
	for i, w := range want {
		if w != "" && lines[i] != w {
			t.Errorf("line %d: want %q, got %q", i, w, lines[i])
		}
	}
	if !strings.HasPrefix(lines[2], "sqrt(-1) : ") || !strings.Contains(lines[2], "sqrt") {
		t.Errorf("wrong error line %q", lines[2])
	}
	if strings.Contains(out.String(), "103") {
		t.Errorf("batch continued after termination: %q", out.String())
	}
}

func TestComplete(t *testing.T) {
	names := []string{"sin", "sqrt", "sum", "x"}
	cases := []struct {
		line  string
		pos   int
		head  string
		comps []string
		tail  string
	}{
		{"s", 1, "", []string{"sin", "sqrt", "sum"}, ""},
		{"1 + sq", 6, "1 + ", []string{"sqrt"}, ""},
		{"2*su(x)", 4, "2*", []string{"sum"}, "(x)"},
		{"1 + ", 4, "1 + ", nil, ""},
		{"π×s", 3, "π×", []string{"sin", "sqrt", "sum"}, ""},
	}
	for _, c := range cases {
		head, comps, tail := complete(names, c.line, c.pos)
		if head != c.head || tail != c.tail || strings.Join(comps, ",") != strings.Join(c.comps, ",") {
			t.Errorf("%q at %d: want %q %v %q, got %q %v %q", c.line, c.pos, c.head, c.comps, c.tail, head, comps, tail)
		}
	}
}
