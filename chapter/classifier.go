package chapter

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// PrefaceFile is the file open before any marker is seen.
const PrefaceFile = "00.txt"

// Decision is the outcome of classifying one page of text.
type Decision struct {
	// Matched is false when no rule applied; the caller changes nothing.
	Matched bool
	// Rule is the prefix of the rule that was considered, if any.
	Rule string
	// NewFile names the file that becomes current. Empty keeps the
	// current one.
	NewFile string
	// CanWrite is the new state of the write gate, or nil to keep it.
	CanWrite *bool
	// Reason explains a rule that matched the prefix but could not apply.
	Reason string
}

// Action turns the text following a matched prefix into a decision.
type Action func(rest string) Decision

// Rule pairs a literal page prefix with what to do about it.
type Rule struct {
	Prefix string
	Action Action
}

// Classifier holds an ordered rule table. The first rule whose prefix
// starts the page text decides.
type Classifier struct {
	rules      []Rule
	distinct   bool
	appendices int
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithDistinctAppendices gives each appendix its own file, A.txt, B.txt
// and so on, instead of overwriting A.txt.
func WithDistinctAppendices(on bool) Option {
	return func(c *Classifier) { c.distinct = on }
}

// New returns a classifier with the book-heading rules:
// Introduction, Chapter, Appendix, Part and Index.
func New(opts ...Option) *Classifier {
	c := &Classifier{}
	for _, opt := range opts {
		opt(c)
	}
	c.rules = []Rule{
		{Prefix: "Introduction", Action: resume},
		{Prefix: "Chapter ", Action: chapterFile},
		{Prefix: "Appendix", Action: c.appendixFile},
		{Prefix: "Part ", Action: suppress},
		{Prefix: "Index", Action: suppress},
	}
	return c
}

// Rules returns a copy of the rule table in evaluation order.
func (c *Classifier) Rules() []Rule {
	return append([]Rule(nil), c.rules...)
}

// Classify evaluates the rules against the literal start of text.
func (c *Classifier) Classify(text string) Decision {
	for _, r := range c.rules {
		if strings.HasPrefix(text, r.Prefix) {
			d := r.Action(text[len(r.Prefix):])
			d.Rule = r.Prefix
			return d
		}
	}
	return Decision{}
}

func gate(on bool) *bool { return &on }

func resume(string) Decision {
	return Decision{Matched: true, CanWrite: gate(true)}
}

func suppress(string) Decision {
	return Decision{Matched: true, CanWrite: gate(false)}
}

func chapterFile(rest string) Decision {
	n, ok := ChapterNumber(rest)
	if !ok {
		return Decision{Reason: fmt.Sprintf("no chapter number in %q", head(rest, 2))}
	}
	return Decision{Matched: true, NewFile: fmt.Sprintf("%02d.txt", n), CanWrite: gate(true)}
}

// ChapterNumber reads the number that follows "Chapter ". The two
// characters after the marker are read as a two-digit number; failing
// that, the first one alone as a single digit.
func ChapterNumber(rest string) (int, bool) {
	two := head(rest, 2)
	if utf8.RuneCountInString(two) == 2 && isDigits(two) {
		n, err := strconv.Atoi(two)
		return n, err == nil
	}
	r, _ := utf8.DecodeRuneInString(rest)
	if r >= '0' && r <= '9' {
		return int(r - '0'), true
	}
	return 0, false
}

func (c *Classifier) appendixFile(string) Decision {
	name := "A.txt"
	if c.distinct {
		name = appendixLetters(c.appendices) + ".txt"
	}
	c.appendices++
	return Decision{Matched: true, NewFile: name, CanWrite: gate(true)}
}

// appendixLetters numbers appendices A..Z, then AA, AB and so on.
func appendixLetters(n int) string {
	s := ""
	for n++; n > 0; n = (n - 1) / 26 {
		s = string(rune('A'+(n-1)%26)) + s
	}
	return s
}

// head returns the first n runes of s.
func head(s string, n int) string {
	i := 0
	for k := 0; k < n && i < len(s); k++ {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return s[:i]
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
