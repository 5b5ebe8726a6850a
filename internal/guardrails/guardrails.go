// Package guardrails loads the YAML-defined safety policy and verifies
// generated instruction text against it before it reaches the user.
package guardrails

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/firstaidguide/firstaid-api/pkg/logging"
)

// Policy is the parsed guardrails configuration. DisallowedTopics feed the
// scope gate's deny list; the output rules are enforced by Verify.
type Policy struct {
	AppName          string   `yaml:"app_name"`
	Purpose          string   `yaml:"purpose"`
	DisallowedTopics []string `yaml:"disallowed_topics"`
	OutputRules      []string `yaml:"output_rules"`
}

// DefaultPolicy is used when no config file is present. The service must
// keep working with sane guardrails even on a bare deployment.
func DefaultPolicy() *Policy {
	return &Policy{
		AppName: "first_aid_guide",
		Purpose: "Provide first-aid guidance for common injuries and symptoms.",
		DisallowedTopics: []string{
			"gambling", "lottery", "dating", "politics", "religion",
		},
	}
}

// Load reads the policy from path. A missing or malformed file is logged and
// replaced with the default policy; policy loading never fails the process.
func Load(path string, logger *logging.Logger) *Policy {
	if logger == nil {
		logger = logging.Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("guardrails config missing, using defaults", "path", path, "error", err)
		return DefaultPolicy()
	}

	var policy Policy
	if err := yaml.Unmarshal(data, &policy); err != nil {
		logger.Warn("guardrails config unreadable, using defaults", "path", path, "error", err)
		return DefaultPolicy()
	}
	if policy.AppName == "" {
		policy.AppName = DefaultPolicy().AppName
	}
	return &policy
}

// Verification is the result of checking generated text against the policy.
type Verification struct {
	Passed      bool     `json:"passed"`
	PolicyFlags []string `json:"policy_flags"`
}

// outputPattern flags instruction text that must never be sent: dismissing
// professional care, specific drug dosing, or leaked disallowed topics.
type outputPattern struct {
	re   *regexp.Regexp
	flag string
}

var outputPatterns = []outputPattern{
	{regexp.MustCompile(`(?i)\bno need (?:to|for) (?:see|call|visit) (?:a )?(?:doctor|physician|emergency)`), "discourages_care"},
	{regexp.MustCompile(`(?i)\b\d+\s?(?:mg|ml|milligrams?|millilitres?)\b`), "specific_dosage"},
	{regexp.MustCompile(`(?i)\bguaranteed (?:cure|recovery)\b`), "overpromise"},
	{regexp.MustCompile(`(?i)\bignore (?:the|any) (?:pain|symptoms)\b`), "dismisses_symptoms"},
}

// Verify scans generated instruction text. A deny-topic appearing as a whole
// word, or any output pattern firing, fails verification with the matching
// flags attached.
func (p *Policy) Verify(text string) Verification {
	lowered := strings.ToLower(text)

	var flags []string
	for _, topic := range p.DisallowedTopics {
		topic = strings.ToLower(strings.TrimSpace(topic))
		if topic == "" {
			continue
		}
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(topic) + `\b`)
		if re.MatchString(lowered) {
			flags = append(flags, fmt.Sprintf("disallowed_topic:%s", topic))
		}
	}
	for _, p := range outputPatterns {
		if p.re.MatchString(text) {
			flags = append(flags, p.flag)
		}
	}

	return Verification{Passed: len(flags) == 0, PolicyFlags: flags}
}
