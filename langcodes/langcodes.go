// Package langcodes defines the closed set of languages the translation
// pipeline understands. Each language is addressed by a lowercase human
// identifier (the key used in configuration, CLI flags and the cache file)
// and maps to the ISO-style code the translation service expects.
package langcodes

import (
	"fmt"
	"sort"
	"strings"
)

// Meta describes one supported language.
type Meta struct {
	// Code is the service-facing language code (e.g. "DE").
	Code string
	// Name is the English display name.
	Name string
}

// Registry contains the supported languages, keyed by identifier.
// The set is closed: the cache schema and the translation service contract
// both depend on it, so adding a language is a deliberate change here.
var Registry = map[string]Meta{
	"english": {Code: "EN", Name: "English"},
	"german":  {Code: "DE", Name: "German"},
	"chinese": {Code: "ZH", Name: "Chinese"},
	"polish":  {Code: "PL", Name: "Polish"},
}

// Resolve returns the metadata for a language identifier.
func Resolve(lang string) (Meta, error) {
	m, ok := Registry[strings.ToLower(strings.TrimSpace(lang))]
	if !ok {
		return Meta{}, fmt.Errorf("unsupported language %q (supported: %s)",
			lang, strings.Join(Identifiers(), ", "))
	}
	return m, nil
}

// Supported reports whether lang is a recognized identifier.
func Supported(lang string) bool {
	_, ok := Registry[strings.ToLower(strings.TrimSpace(lang))]
	return ok
}

// Code returns the service code for a language identifier, or "" if the
// identifier is not supported.
func Code(lang string) string {
	m, err := Resolve(lang)
	if err != nil {
		return ""
	}
	return m.Code
}

// Identifiers returns all supported identifiers in sorted order.
func Identifiers() []string {
	ids := make([]string, 0, len(Registry))
	for id := range Registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
