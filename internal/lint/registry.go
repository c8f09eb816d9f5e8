package lint

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/yigitcukuren/mago-sub000/internal/sortutil"
)

// Registry owns the canonical set of lint rules. It is populated once at
// startup and immutable afterwards, which makes it safe for concurrent
// reads from file workers.
type Registry struct {
	rules map[string]*Rule
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{rules: make(map[string]*Rule)}
}

// Register adds rules to the registry and validates them. Registering a
// duplicate code, an invalid code, an unknown category, or a rule
// without a Visit function is a configuration error.
func (r *Registry) Register(rules ...*Rule) error {
	for _, rule := range rules {
		if rule.Code == "" {
			return configErrorf("rule has empty code")
		}
		if !isValidRuleCode(rule.Code) {
			return configErrorf("invalid rule code %q: must be kebab-case (lowercase with hyphens)", rule.Code)
		}
		if _, exists := r.rules[rule.Code]; exists {
			return configErrorf("duplicate rule code: %s", rule.Code)
		}
		if !validCategory(rule.Category) {
			return configErrorf("rule %s has unknown category %q", rule.Code, rule.Category)
		}
		if rule.Visit == nil {
			return configErrorf("rule %s has no visit function", rule.Code)
		}
		r.rules[rule.Code] = rule
	}
	return nil
}

// Rule returns the rule registered under code.
func (r *Registry) Rule(code string) (*Rule, bool) {
	rule, ok := r.rules[code]
	return rule, ok
}

// All returns all registered rules sorted by code.
func (r *Registry) All() []*Rule {
	rules := make([]*Rule, 0, len(r.rules))
	for _, rule := range r.rules {
		rules = append(rules, rule)
	}
	sortutil.ByName(rules, func(rule *Rule) string { return rule.Code })
	return rules
}

// RulesByCategory returns all rules in the given category, sorted by code.
func (r *Registry) RulesByCategory(category Category) []*Rule {
	var rules []*Rule
	for _, rule := range r.All() {
		if rule.Category == category {
			rules = append(rules, rule)
		}
	}
	return rules
}

// RuleOverride carries the per-rule configuration for Resolve. Nil
// pointers mean "not configured".
type RuleOverride struct {
	Enabled *bool
	Level   *Level
	Options map[string]any
}

// ResolveConfig is the input to Resolve.
type ResolveConfig struct {
	// Overrides maps rule codes to their configured settings.
	Overrides map[string]RuleOverride

	// Integrations lists enabled framework integrations; rules tagged
	// with one of these names are enabled even if not in the default
	// set.
	Integrations []string

	// Pedantic force-enables every registered rule, ignoring version
	// constraints and default-disabled flags.
	Pedantic bool

	// Only, when non-empty, short-circuits everything else: exactly
	// the named rules run, at their configured (or default) level.
	Only []string

	// PHPVersion is the configured target version (e.g. "8.1"). Rules
	// whose MinPHPVersion exceeds it are silently skipped. Empty means
	// no version constraint.
	PHPVersion string
}

// EffectiveRule is one entry of the resolved rule set.
type EffectiveRule struct {
	Rule    *Rule
	Level   Level
	Options OptionSet
}

// Resolve computes the effective rule set for a configuration. The
// returned slice is ordered by rule code so execution and reporting are
// deterministic. Unknown rule codes and unknown or mistyped option keys
// are configuration errors.
func (r *Registry) Resolve(cfg ResolveConfig) ([]EffectiveRule, error) {
	phpVersion, err := parsePHPVersion(cfg.PHPVersion)
	if err != nil {
		return nil, err
	}

	for code := range cfg.Overrides {
		if _, ok := r.rules[code]; !ok {
			return nil, configErrorf("unknown rule: %s", code)
		}
	}

	if len(cfg.Only) > 0 {
		return r.resolveOnly(cfg)
	}

	var effective []EffectiveRule
	for _, rule := range r.All() {
		override := cfg.Overrides[rule.Code]

		enabled := rule.Default
		if !cfg.Pedantic {
			if override.Enabled != nil {
				enabled = *override.Enabled
			} else if !enabled && hasIntegration(rule, cfg.Integrations) {
				enabled = true
			}
			if !enabled {
				continue
			}
			// Rules requiring newer syntax are silently skipped.
			if !versionAtLeast(phpVersion, rule.MinPHPVersion) {
				continue
			}
		}

		er, err := r.effectiveRule(rule, override)
		if err != nil {
			return nil, err
		}
		effective = append(effective, er)
	}
	return effective, nil
}

// resolveOnly handles --only: exactly the named rules run, regardless of
// defaults, pedantic mode, integrations, or version constraints.
func (r *Registry) resolveOnly(cfg ResolveConfig) ([]EffectiveRule, error) {
	codes := slices.Clone(cfg.Only)
	slices.Sort(codes)
	codes = slices.Compact(codes)

	var effective []EffectiveRule
	for _, code := range codes {
		rule, ok := r.rules[code]
		if !ok {
			return nil, configErrorf("unknown rule: %s", code)
		}
		er, err := r.effectiveRule(rule, cfg.Overrides[code])
		if err != nil {
			return nil, err
		}
		effective = append(effective, er)
	}
	return effective, nil
}

// effectiveRule merges an override over a rule's defaults.
func (r *Registry) effectiveRule(rule *Rule, override RuleOverride) (EffectiveRule, error) {
	level := rule.Level
	if override.Level != nil {
		level = *override.Level
	}

	options := make(OptionSet, len(rule.Options))
	for _, opt := range rule.Options {
		options[opt.Name] = opt.Default
	}
	for key, value := range override.Options {
		spec, ok := findOption(rule.Options, key)
		if !ok {
			return EffectiveRule{}, configErrorf("rule %s has no option %q", rule.Code, key)
		}
		coerced, err := coerceOption(spec, value)
		if err != nil {
			return EffectiveRule{}, configErrorf("rule %s option %q: %v", rule.Code, key, err)
		}
		options[key] = coerced
	}

	return EffectiveRule{Rule: rule, Level: level, Options: options}, nil
}

func findOption(opts []Option, name string) (Option, bool) {
	for _, opt := range opts {
		if opt.Name == name {
			return opt, true
		}
	}
	return Option{}, false
}

// coerceOption validates a configured value against the option schema.
// TOML decodes integers as int64 and lists as []any, so both are
// normalized here.
func coerceOption(spec Option, value any) (any, error) {
	switch spec.Kind {
	case OptionBool:
		if v, ok := value.(bool); ok {
			return v, nil
		}
	case OptionInt:
		switch v := value.(type) {
		case int:
			return v, nil
		case int64:
			return int(v), nil
		}
	case OptionString:
		if v, ok := value.(string); ok {
			return v, nil
		}
	case OptionStringList:
		switch v := value.(type) {
		case []string:
			return v, nil
		case []any:
			out := make([]string, len(v))
			for i, item := range v {
				s, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("expected %s, got element %T", spec.Kind, item)
				}
				out[i] = s
			}
			return out, nil
		}
	}
	return nil, fmt.Errorf("expected %s, got %T", spec.Kind, value)
}

func hasIntegration(rule *Rule, integrations []string) bool {
	for _, tag := range rule.Integrations {
		if slices.Contains(integrations, tag) {
			return true
		}
	}
	return false
}

// isValidRuleCode checks that a code follows kebab-case convention.
func isValidRuleCode(code string) bool {
	for i, ch := range code {
		switch {
		case ch >= 'a' && ch <= 'z':
		case ch >= '0' && ch <= '9' && i > 0:
		case ch == '-' && i > 0 && i < len(code)-1:
		default:
			return false
		}
	}
	return code != ""
}

// parsePHPVersion parses a dotted version like "8.1" into numeric parts.
// An empty string means "no constraint" and returns nil.
func parsePHPVersion(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ".")
	version := make([]int, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return nil, configErrorf("invalid php version %q", s)
		}
		version[i] = n
	}
	return version, nil
}

// versionAtLeast reports whether the configured version satisfies a
// rule's minimum. A nil configured version or empty minimum always
// satisfies. The minimum comes from registered rule definitions and is
// trusted to be well-formed.
func versionAtLeast(configured []int, minimum string) bool {
	if configured == nil || minimum == "" {
		return true
	}
	min, err := parsePHPVersion(minimum)
	if err != nil {
		return true
	}
	for i := 0; i < len(min); i++ {
		c := 0
		if i < len(configured) {
			c = configured[i]
		}
		if c != min[i] {
			return c > min[i]
		}
	}
	return true
}
