// Package metadata resolves an authoritative alternate title for a book by
// chaining identifier lookups and keyword searches over external
// bibliographic services. Every external call is best-effort: a failure at
// any step falls through to the next one, and the worst-case result is an
// empty string.
package metadata

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/zeepubs/zeepubs/pkg/identifiers"
)

// ISBNLookup fetches the bibliographic title registered for a validated
// ISBN-13.
type ISBNLookup interface {
	LookupISBN(ctx context.Context, isbn string) (string, error)
}

// ISBNGuesser guesses an ISBN-13 from a free-text title search.
type ISBNGuesser interface {
	GuessISBN(ctx context.Context, title string) (string, error)
}

// KeywordSearcher returns candidate titles matching a keyword, in the
// provider's ranking order.
type KeywordSearcher interface {
	SearchTitles(ctx context.Context, keyword string) ([]string, error)
}

// ResolverOptions tunes the fallback chain.
type ResolverOptions struct {
	// Timeout bounds each individual provider call. Defaults to 5 seconds.
	Timeout time.Duration
	// FlaggedGroups lists ISBN registration groups whose editions are
	// regional reprints; a non-flagged edition is preferred when both are
	// present. Defaults to group 84.
	FlaggedGroups []string
	// FirstCandidateFallback returns the first keyword-search candidate when
	// no volume number is targeted, instead of the historical behavior of
	// matching the literal digit "0" in candidate titles.
	FirstCandidateFallback bool
}

// Resolver runs the title resolution chain. Providers may be nil; a nil
// provider is treated as a failed step.
type Resolver struct {
	lookup   ISBNLookup
	guesser  ISBNGuesser
	searcher KeywordSearcher
	opts     ResolverOptions
}

func NewResolver(lookup ISBNLookup, guesser ISBNGuesser, searcher KeywordSearcher, opts ResolverOptions) *Resolver {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.FlaggedGroups == nil {
		opts.FlaggedGroups = []string{"84"}
	}
	return &Resolver{
		lookup:   lookup,
		guesser:  guesser,
		searcher: searcher,
		opts:     opts,
	}
}

// volumeMarkerPattern splits a title into the part before a vol/volumen
// marker and the digits after it. The word boundary keeps titles like
// "Revolver" intact.
var volumeMarkerPattern = regexp.MustCompile(`(?i)^(.*?)\s*\bvol(?:umen)?\.?\s*(\d*)`)

const searchKeyMaxLen = 40

// Resolve returns the alternate title for a book, or the empty string when
// no provider could produce one. It never returns an error.
func (r *Resolver) Resolve(ctx context.Context, rawTitle string, ids []string) string {
	// Step 1: a validated ISBN identifier wins outright.
	if title := r.resolveByIdentifier(ctx, ids); title != "" {
		return title
	}

	key, volume := ExtractSearchKey(rawTitle)
	if key == "" {
		return ""
	}

	// Step 2: guess an ISBN from the title search key.
	isbn := r.guessISBN(ctx, key)

	// Step 3: fetch the guessed ISBN's title. Digits are stripped because
	// publishers leak volume numbers into the registered title.
	if isbn != "" {
		if title := r.lookupISBN(ctx, isbn); title != "" {
			title = stripDigits(title)
			if volume == "" {
				return title
			}
			if matched := r.searchByKeyword(ctx, title+" Vol. "+volume, volume); matched != "" {
				return matched
			}
			return title
		}
	}

	// Step 4: plain keyword search over the catalog.
	return r.searchByKeyword(ctx, key, volume)
}

func (r *Resolver) resolveByIdentifier(ctx context.Context, ids []string) string {
	if r.lookup == nil {
		return ""
	}

	candidates := identifiers.ExtractISBN13s(ids)
	if len(candidates) == 0 {
		return ""
	}

	isbn := identifiers.PreferEdition(candidates, r.opts.FlaggedGroups)
	return r.lookupISBN(ctx, isbn)
}

func (r *Resolver) lookupISBN(ctx context.Context, isbn string) string {
	if r.lookup == nil {
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	title, err := r.lookup.LookupISBN(ctx, isbn)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(title)
}

func (r *Resolver) guessISBN(ctx context.Context, key string) string {
	if r.guesser == nil {
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	isbn, err := r.guesser.GuessISBN(ctx, key)
	if err != nil {
		return ""
	}
	isbn = identifiers.NormalizeISBN(isbn)
	if !identifiers.ValidateISBN13(isbn) {
		return ""
	}
	return isbn
}

// searchByKeyword returns the first candidate whose text contains the target
// volume number. With no target volume the historical behavior matches the
// literal digit "0"; FirstCandidateFallback returns the first candidate
// instead.
func (r *Resolver) searchByKeyword(ctx context.Context, keyword, volume string) string {
	if r.searcher == nil {
		return ""
	}

	searchCtx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	candidates, err := r.searcher.SearchTitles(searchCtx, keyword)
	if err != nil || len(candidates) == 0 {
		return ""
	}

	if volume == "" {
		if r.opts.FirstCandidateFallback {
			return candidates[0]
		}
		volume = "0"
	}

	for _, candidate := range candidates {
		if strings.Contains(candidate, volume) {
			return candidate
		}
	}
	return ""
}

// ExtractSearchKey splits a raw title at its volume marker: the part before
// the marker, capped at 40 characters, becomes the search key, and the
// digits after it become the volume number. A title without a marker is its
// own search key with no volume.
func ExtractSearchKey(rawTitle string) (key, volume string) {
	rawTitle = strings.TrimSpace(rawTitle)
	if rawTitle == "" {
		return "", ""
	}

	if m := volumeMarkerPattern.FindStringSubmatch(rawTitle); m != nil {
		key = strings.TrimSpace(m[1])
		volume = m[2]
	} else {
		key = rawTitle
	}

	runes := []rune(key)
	if len(runes) > searchKeyMaxLen {
		key = strings.TrimSpace(string(runes[:searchKeyMaxLen]))
	}
	return key, volume
}

func stripDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(strings.ReplaceAll(b.String(), "  ", " "))
}
