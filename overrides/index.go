/*
index.go - Employee-keyed lookup shared by every override sheet

PURPOSE:
  Override sheets (paid leave, custom shifts, overtime grants, full-night
  stays, maintenance lists, break punches) identify employees loosely:
  codes with or without leading zeros, with stray punctuation, or only a
  name. All of them resolve through the same Index.

RESOLUTION ORDER:
  1. Code variants, strongest first (trimmed raw, alphanumeric, no leading zeros)
  2. Normalized name
  A miss returns the zero value and false. It is never an error.

DUPLICATES:
  The first entry registered under a key wins. Exact code keys of every entry
  are registered before the weaker variants, so a loose variant of one
  employee can never shadow another employee's exact code.
*/
package overrides

import (
	"strings"
	"unicode"
)

// NormalizeCode upper-cases a code and drops everything that isn't a
// letter or digit.
func NormalizeCode(code string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(code) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CodeVariants returns the lookup forms of a code, strongest first, without
// duplicates or empty strings.
func CodeVariants(code string) []string {
	raw := strings.ToUpper(strings.TrimSpace(code))
	alnum := NormalizeCode(code)
	trimmed := strings.TrimLeft(alnum, "0")

	out := make([]string, 0, 3)
	for _, v := range []string{raw, alnum, trimmed} {
		if v == "" {
			continue
		}
		dup := false
		for _, have := range out {
			if have == v {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, v)
		}
	}
	return out
}

// NormalizeName lower-cases a name, keeps letters and digits, and collapses
// everything else into single spaces.
func NormalizeName(name string) string {
	fields := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(fields, " ")
}

// Entry is one row of an override sheet.
type Entry[T any] struct {
	EmpCode string
	EmpName string
	Value   T
}

// Index resolves an employee to a value. It is read-only once built and
// safe for concurrent use.
type Index[T any] struct {
	byCode map[string]T
	byName map[string]T
	size   int
}

// NewIndex builds an index from entries.
func NewIndex[T any](entries []Entry[T]) *Index[T] {
	ix := &Index[T]{
		byCode: make(map[string]T, len(entries)*2),
		byName: make(map[string]T, len(entries)),
		size:   len(entries),
	}

	variants := make([][]string, len(entries))
	maxVariants := 0
	for i, e := range entries {
		variants[i] = CodeVariants(e.EmpCode)
		if len(variants[i]) > maxVariants {
			maxVariants = len(variants[i])
		}
	}
	// Strength-major order: every entry's exact key, then every entry's
	// alphanumeric key, and so on.
	for level := 0; level < maxVariants; level++ {
		for i, e := range entries {
			if level < len(variants[i]) {
				putFirst(ix.byCode, variants[i][level], e.Value)
			}
		}
	}

	for _, e := range entries {
		if name := NormalizeName(e.EmpName); name != "" {
			putFirst(ix.byName, name, e.Value)
		}
	}
	return ix
}

func putFirst[T any](m map[string]T, key string, v T) {
	if _, exists := m[key]; !exists {
		m[key] = v
	}
}

// Lookup tries every code variant, then the name.
func (ix *Index[T]) Lookup(code, name string) (T, bool) {
	var zero T
	if ix == nil {
		return zero, false
	}
	for _, v := range CodeVariants(code) {
		if val, ok := ix.byCode[v]; ok {
			return val, true
		}
	}
	if n := NormalizeName(name); n != "" {
		if val, ok := ix.byName[n]; ok {
			return val, true
		}
	}
	return zero, false
}

// Len is the number of entries the index was built from.
func (ix *Index[T]) Len() int {
	if ix == nil {
		return 0
	}
	return ix.size
}
