package pipeline

import (
	"strings"

	"github.com/theirongolddev/adburn/internal/config"
)

// Rule routes campaign names starting with Prefix into a bucket.
type Rule struct {
	Prefix string
	Code   string
	Label  string
}

// Bucket identifies one product line.
type Bucket struct {
	Code  string
	Label string
}

// Classifier assigns campaign names to buckets by case-insensitive prefix.
// Rules are tried in order and the first match wins; anything else falls
// into the fallback bucket.
type Classifier struct {
	rules    []Rule
	fallback Bucket
}

// NewClassifier builds a classifier from an ordered rule list. Rules with an
// empty prefix or code are ignored.
func NewClassifier(rules []Rule, fallback Bucket) *Classifier {
	c := &Classifier{fallback: fallback}
	for _, r := range rules {
		r.Prefix = strings.ToUpper(strings.TrimSpace(r.Prefix))
		if r.Prefix == "" || r.Code == "" {
			continue
		}
		c.rules = append(c.rules, r)
	}
	return c
}

// DefaultClassifier returns the built-in four product lines plus fallback.
func DefaultClassifier() *Classifier {
	return ClassifierFromConfig(config.DefaultConfig())
}

// ClassifierFromConfig builds the classifier from [[products]] and [fallback].
func ClassifierFromConfig(cfg config.Config) *Classifier {
	rules := make([]Rule, 0, len(cfg.Products))
	for _, p := range cfg.Products {
		rules = append(rules, Rule{Prefix: p.Prefix, Code: p.Code, Label: p.Label})
	}
	fb := Bucket{Code: cfg.Fallback.Code, Label: cfg.Fallback.Label}
	if fb.Code == "" {
		fb.Code = "OTROS"
	}
	if fb.Label == "" {
		fb.Label = "Others / No Code"
	}
	return NewClassifier(rules, fb)
}

// Classify returns the bucket for a campaign display name.
func (c *Classifier) Classify(name string) Bucket {
	upper := strings.ToUpper(name)
	for _, r := range c.rules {
		if strings.HasPrefix(upper, r.Prefix) {
			return Bucket{Code: r.Code, Label: r.Label}
		}
	}
	return c.fallback
}

// Buckets lists every distinct bucket in rule order, fallback last.
func (c *Classifier) Buckets() []Bucket {
	seen := make(map[string]bool, len(c.rules)+1)
	out := make([]Bucket, 0, len(c.rules)+1)
	for _, r := range c.rules {
		if seen[r.Code] {
			continue
		}
		seen[r.Code] = true
		out = append(out, Bucket{Code: r.Code, Label: r.Label})
	}
	if !seen[c.fallback.Code] {
		out = append(out, c.fallback)
	}
	return out
}
