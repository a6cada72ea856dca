package validation

import "regexp"

// defaultSpamPatterns are matched case-insensitively against the sanitized
// message. Any match is a hard rejection; there is no scoring.
var defaultSpamPatterns = []string{
	`(?i)\b(viagra|cialis|lottery|casino|bitcoin giveaway|work from home)\b`,
	// bare URLs with 50+ contiguous non-space characters after the scheme
	`(?i)https?://\S{50,}`,
	// runs of repeated exclamation marks or dollar signs
	`!{3,}`,
	`\${3,}`,
}

func compileSpamPatterns(overrides []string) []*regexp.Regexp {
	patterns := overrides
	if patterns == nil {
		patterns = defaultSpamPatterns
	}
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			continue
		}
		compiled = append(compiled, re)
	}
	return compiled
}

func (v *Validator) isSpam(message string) bool {
	for _, re := range v.spam {
		if re.MatchString(message) {
			return true
		}
	}
	return false
}
