package s3storage

import (
	"sort"
	"strings"
)

// BucketRouter picks the bucket for a normalized key
type BucketRouter interface {
	BucketFor(key string) string
}

// PrefixRule maps a key prefix to a bucket
type PrefixRule struct {
	Prefix string
	Bucket string
}

// PrefixRouter routes keys to buckets, longest prefix first
type PrefixRouter struct {
	rules    []PrefixRule
	fallback string
}

// NewPrefixRouter creates PrefixRouter
func NewPrefixRouter(rules []PrefixRule, fallback string) *PrefixRouter {
	sorted := append([]PrefixRule(nil), rules...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Prefix) > len(sorted[j].Prefix)
	})
	return &PrefixRouter{rules: sorted, fallback: fallback}
}

// ParsePrefixRules parses "prefix=bucket" pairs separated by commas
func ParsePrefixRules(s string) (rules []PrefixRule) {
	for _, pair := range strings.Split(s, ",") {
		prefix, bucket, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || bucket == "" {
			continue
		}
		rules = append(rules, PrefixRule{Prefix: strings.Trim(prefix, "/"), Bucket: bucket})
	}
	return
}

// BucketFor returns the bucket of the longest matching prefix, or the fallback
func (r *PrefixRouter) BucketFor(key string) string {
	key = strings.TrimLeft(key, "/")
	for _, rule := range r.rules {
		if strings.HasPrefix(key, rule.Prefix) {
			return rule.Bucket
		}
	}
	return r.fallback
}
