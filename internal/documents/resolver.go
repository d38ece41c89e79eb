// internal/documents/resolver.go
// Package documents locates uploaded-document URLs inside arbitrarily-shaped
// documents/docs blobs. Key lists and fuzzy rules are configuration, not
// code, so new document categories slot in without touching the algorithm.
package documents

import (
	"sort"
	"strings"

	"homecare-admin/internal/normalize"
)

// FuzzyRule matches object keys case-insensitively: a key qualifies when it
// contains all tokens in All (if any) and at least one token in Any (if any).
type FuzzyRule struct {
	All []string
	Any []string
}

func (r FuzzyRule) matches(key string) bool {
	lower := strings.ToLower(key)
	for _, token := range r.All {
		if !strings.Contains(lower, strings.ToLower(token)) {
			return false
		}
	}
	if len(r.Any) == 0 {
		return true
	}
	for _, token := range r.Any {
		if strings.Contains(lower, strings.ToLower(token)) {
			return true
		}
	}
	return false
}

// Resolve finds a document value. Phase 1 tries the candidate keys exactly,
// in order. Phase 2, only when nothing matched and a fuzzy rule is supplied,
// scans all keys against the rule. Returns nil when nothing qualifies.
func Resolve(docs map[string]interface{}, candidateKeys []string, fuzzy *FuzzyRule) interface{} {
	if len(docs) == 0 {
		return nil
	}

	for _, key := range candidateKeys {
		if v, ok := docs[key]; ok && v != nil {
			return v
		}
	}

	if fuzzy == nil {
		return nil
	}

	// Sorted key order keeps the fuzzy phase deterministic.
	keys := make([]string, 0, len(docs))
	for k := range docs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if fuzzy.matches(key) && docs[key] != nil {
			return docs[key]
		}
	}
	return nil
}

// ResolveURL resolves a document and normalizes it to a single URL.
func ResolveURL(docs map[string]interface{}, candidateKeys []string, fuzzy *FuzzyRule) string {
	return URL(Resolve(docs, candidateKeys, fuzzy))
}

// URL extracts a single URL from a resolved value: a bare string, the first
// usable entry of an array, or an object carrying url/link. Never panics on
// unexpected shapes.
func URL(value interface{}) string {
	urls := URLs(value)
	if len(urls) == 0 {
		return ""
	}
	return urls[0]
}

// URLs extracts every URL a resolved value carries, dropping falsy entries.
func URLs(value interface{}) []string {
	out := []string{}

	switch v := normalize.MaybeJSON(value).(type) {
	case string:
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	case []interface{}:
		for _, item := range v {
			out = append(out, URLs(item)...)
		}
	case map[string]interface{}:
		for _, key := range []string{"url", "link", "href", "file_url", "fileUrl"} {
			if s := strings.TrimSpace(normalize.Stringify(v[key])); s != "" {
				out = append(out, s)
				break
			}
		}
	}

	return out
}
