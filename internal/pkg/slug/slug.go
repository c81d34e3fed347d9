// Package slug turns titles into URL-safe identifiers and resolves collisions
// against a set of slugs that are already taken.
package slug

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxLength caps a base slug, in bytes, before any -N suffix.
const MaxLength = 180

// Untitled is the base slug used for blank titles.
const Untitled = "untitled"

// Make normalises title into a lowercase, hyphenated ASCII slug.
// It returns "" when nothing slug-worthy is left.
func Make(title string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		title,
	)
	if err != nil {
		folded = title
	}
	folded = strings.ToLower(folded)
	folded = strings.ReplaceAll(folded, "&", " and ")

	var sb strings.Builder
	sb.Grow(len(folded))
	pendingDash := false
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			pendingDash = false
			sb.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return truncate(sb.String(), MaxLength)
}

// truncate cuts s to at most n bytes, preferring the last hyphen boundary.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := s[:n]
	if i := strings.LastIndexByte(cut, '-'); i > 0 {
		cut = cut[:i]
	}
	return strings.Trim(cut, "-")
}

// Base returns Make(title), or a deterministic fallback when that is empty:
// "untitled" for blank titles, "p-<hash>" for titles with no ASCII-foldable text.
func Base(title string) string {
	if s := Make(title); s != "" {
		return s
	}
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return Untitled
	}
	sum := sha256.Sum256([]byte(trimmed))
	return "p-" + hex.EncodeToString(sum[:])[:10]
}

// Normalize cleans a caller-supplied slug with the same rules as a title.
func Normalize(raw string) string {
	return Make(raw)
}

// Unique returns a slug for title that is not in known, registering it.
// Collisions get -1, -2, ... appended to the base slug.
func Unique(title string, known map[string]struct{}) string {
	return claim(Base(title), known)
}

// UniqueFrom is Unique for an already normalised base slug.
func UniqueFrom(base string, known map[string]struct{}) string {
	if base == "" {
		base = Untitled
	}
	return claim(base, known)
}

func claim(base string, known map[string]struct{}) string {
	candidate := base
	for n := 1; ; n++ {
		if _, taken := known[candidate]; !taken {
			break
		}
		candidate = base + "-" + strconv.Itoa(n)
	}
	known[candidate] = struct{}{}
	return candidate
}

// Registry is a known-slug set safe for concurrent use.
type Registry struct {
	mu    sync.Mutex
	known map[string]struct{}
}

// NewRegistry seeds a registry with existing slugs.
func NewRegistry(existing ...string) *Registry {
	r := &Registry{known: make(map[string]struct{}, len(existing))}
	for _, s := range existing {
		if s != "" {
			r.known[s] = struct{}{}
		}
	}
	return r
}

// Next claims a unique slug for title.
func (r *Registry) Next(title string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return claim(Base(title), r.known)
}

// Reserve marks slug as taken. It reports false when it already was.
func (r *Registry) Reserve(slug string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.known[slug]; ok {
		return false
	}
	r.known[slug] = struct{}{}
	return true
}

// Release forgets slug so it can be handed out again.
func (r *Registry) Release(slug string) {
	r.mu.Lock()
	delete(r.known, slug)
	r.mu.Unlock()
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.known)
}
