package lint

import (
	"strings"
	"testing"

	"github.com/yigitcukuren/mago-sub000/internal/php/syntax"
)

func noopVisit(*Pass, *syntax.Node) {}

func testRule(code string, mutate ...func(*Rule)) *Rule {
	rule := &Rule{
		Code:     code,
		Doc:      "test rule",
		Category: CategoryCorrectness,
		Level:    LevelWarning,
		Default:  true,
		Visit:    noopVisit,
	}
	for _, m := range mutate {
		m(rule)
	}
	return rule
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name    string
		rule    *Rule
		wantErr string
	}{
		{"empty code", testRule(""), "empty code"},
		{"uppercase code", testRule("NoEval"), "kebab-case"},
		{"leading hyphen", testRule("-bad"), "kebab-case"},
		{"trailing hyphen", testRule("bad-"), "kebab-case"},
		{"unknown category", testRule("ok", func(r *Rule) { r.Category = "made-up" }), "unknown category"},
		{"nil visit", testRule("ok", func(r *Rule) { r.Visit = nil }), "no visit function"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewRegistry().Register(tt.rule)
			if err == nil {
				t.Fatal("expected error")
			}
			if !IsConfigError(err) {
				t.Errorf("err = %v, want a configuration error", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(testRule("dup")); err != nil {
		t.Fatal(err)
	}
	if err := registry.Register(testRule("dup")); err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("err = %v, want duplicate error", err)
	}
}

func TestResolveDefaults(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(
		testRule("on-by-default"),
		testRule("off-by-default", func(r *Rule) { r.Default = false }),
	); err != nil {
		t.Fatal(err)
	}

	effective, err := registry.Resolve(ResolveConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if len(effective) != 1 || effective[0].Rule.Code != "on-by-default" {
		t.Errorf("effective = %v, want only the default-enabled rule", codes(effective))
	}
}

func TestResolveOverrides(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(
		testRule("alpha"),
		testRule("beta", func(r *Rule) { r.Default = false }),
	); err != nil {
		t.Fatal(err)
	}

	off, on := false, true
	levelNote := LevelNote
	effective, err := registry.Resolve(ResolveConfig{Overrides: map[string]RuleOverride{
		"alpha": {Enabled: &off},
		"beta":  {Enabled: &on, Level: &levelNote},
	}})
	if err != nil {
		t.Fatal(err)
	}
	if len(effective) != 1 || effective[0].Rule.Code != "beta" {
		t.Fatalf("effective = %v, want only beta", codes(effective))
	}
	if effective[0].Level != LevelNote {
		t.Errorf("beta level = %v, want note override", effective[0].Level)
	}
}

func TestResolveUnknownOverride(t *testing.T) {
	registry := NewRegistry()
	_, err := registry.Resolve(ResolveConfig{Overrides: map[string]RuleOverride{"ghost": {}}})
	if err == nil || !strings.Contains(err.Error(), "unknown rule: ghost") {
		t.Errorf("err = %v, want unknown rule error", err)
	}
}

func TestResolvePedantic(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(
		testRule("normal"),
		testRule("opt-in", func(r *Rule) { r.Default = false }),
		testRule("modern", func(r *Rule) { r.MinPHPVersion = "9.9" }),
	); err != nil {
		t.Fatal(err)
	}

	effective, err := registry.Resolve(ResolveConfig{Pedantic: true, PHPVersion: "7.4"})
	if err != nil {
		t.Fatal(err)
	}
	// Pedantic ignores both default-disabled flags and version gates.
	if len(effective) != 3 {
		t.Errorf("effective = %v, want all three rules", codes(effective))
	}
}

func TestResolveOnly(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(
		testRule("wanted", func(r *Rule) { r.Default = false; r.MinPHPVersion = "9.9" }),
		testRule("unwanted"),
	); err != nil {
		t.Fatal(err)
	}

	// Only bypasses defaults and version constraints.
	effective, err := registry.Resolve(ResolveConfig{Only: []string{"wanted", "wanted"}, PHPVersion: "7.4"})
	if err != nil {
		t.Fatal(err)
	}
	if len(effective) != 1 || effective[0].Rule.Code != "wanted" {
		t.Errorf("effective = %v, want exactly the wanted rule once", codes(effective))
	}

	if _, err := registry.Resolve(ResolveConfig{Only: []string{"ghost"}}); err == nil {
		t.Error("unknown rule in Only should be an error")
	}
}

func TestResolveIntegrations(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(
		testRule("laravel-rule", func(r *Rule) {
			r.Default = false
			r.Integrations = []string{"laravel"}
		}),
	); err != nil {
		t.Fatal(err)
	}

	effective, err := registry.Resolve(ResolveConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if len(effective) != 0 {
		t.Errorf("effective = %v, want none without the integration", codes(effective))
	}

	effective, err = registry.Resolve(ResolveConfig{Integrations: []string{"laravel"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(effective) != 1 {
		t.Errorf("effective = %v, want the integration rule", codes(effective))
	}

	// An explicit disable wins over the integration.
	off := false
	effective, err = registry.Resolve(ResolveConfig{
		Integrations: []string{"laravel"},
		Overrides:    map[string]RuleOverride{"laravel-rule": {Enabled: &off}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(effective) != 0 {
		t.Errorf("effective = %v, want none after explicit disable", codes(effective))
	}
}

func TestResolveVersionGate(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(
		testRule("php8", func(r *Rule) { r.MinPHPVersion = "8.0" }),
	); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		version string
		want    int
	}{
		{"", 1}, // no constraint configured
		{"7.4", 0},
		{"8.0", 1},
		{"8.3", 1},
	}
	for _, tt := range tests {
		effective, err := registry.Resolve(ResolveConfig{PHPVersion: tt.version})
		if err != nil {
			t.Fatal(err)
		}
		if len(effective) != tt.want {
			t.Errorf("version %q: effective = %v, want %d rules", tt.version, codes(effective), tt.want)
		}
	}

	if _, err := registry.Resolve(ResolveConfig{PHPVersion: "eight"}); err == nil {
		t.Error("malformed version should be an error")
	}
}

func TestResolveOptions(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(testRule("with-opts", func(r *Rule) {
		r.Options = []Option{
			{Name: "limit", Kind: OptionInt, Default: 10},
			{Name: "names", Kind: OptionStringList, Default: []string{"a"}},
		}
	})); err != nil {
		t.Fatal(err)
	}

	effective, err := registry.Resolve(ResolveConfig{Overrides: map[string]RuleOverride{
		"with-opts": {Options: map[string]any{
			"limit": int64(5), // TOML integers arrive as int64
			"names": []any{"x", "y"},
		}},
	}})
	if err != nil {
		t.Fatal(err)
	}
	opts := effective[0].Options
	if got := opts.Int("limit"); got != 5 {
		t.Errorf("limit = %d, want 5", got)
	}
	if got := opts.StringList("names"); len(got) != 2 || got[0] != "x" {
		t.Errorf("names = %v, want [x y]", got)
	}

	// Unknown option key.
	_, err = registry.Resolve(ResolveConfig{Overrides: map[string]RuleOverride{
		"with-opts": {Options: map[string]any{"ghost": true}},
	}})
	if err == nil || !strings.Contains(err.Error(), "no option") {
		t.Errorf("err = %v, want unknown option error", err)
	}

	// Mistyped option value.
	_, err = registry.Resolve(ResolveConfig{Overrides: map[string]RuleOverride{
		"with-opts": {Options: map[string]any{"limit": "many"}},
	}})
	if err == nil || !strings.Contains(err.Error(), "expected int") {
		t.Errorf("err = %v, want type error", err)
	}
}

func TestResolveDeterministicOrder(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(testRule("zeta"), testRule("alpha"), testRule("mid")); err != nil {
		t.Fatal(err)
	}
	effective, err := registry.Resolve(ResolveConfig{})
	if err != nil {
		t.Fatal(err)
	}
	got := codes(effective)
	want := []string{"alpha", "mid", "zeta"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func codes(effective []EffectiveRule) []string {
	out := make([]string, len(effective))
	for i, er := range effective {
		out[i] = er.Rule.Code
	}
	return out
}
