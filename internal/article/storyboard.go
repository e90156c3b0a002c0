package article

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/reelwright/reelwright/internal/templates"
)

// MaxHeadlineRunes bounds overlay headline length.
const MaxHeadlineRunes = 60

// CTAHeadline closes every storyboard.
const CTAHeadline = "Read More"

var (
	leadingNumber = regexp.MustCompile(`^\d+\s`)
	stepHeading   = regexp.MustCompile(`(?i)^step\s*\d+`)
	comparisonRe  = regexp.MustCompile(`(?i)\b(vs\.?|versus|compared to|before and after)\b`)
	productRe     = regexp.MustCompile(`(?i)(\$\d|\bprice\b|\bbuy\b|\bdiscount\b|\bshop\b)`)
)

// Analyze derives template-selection signals from the article's structure.
func Analyze(a *Article) templates.Analysis {
	title := strings.ToLower(a.Title)
	text := a.Text()

	var out templates.Analysis
	switch {
	case strings.Contains(title, "how to"):
		out.ArticleType = "how_to"
	case strings.Contains(title, "case study"):
		out.ArticleType = "case_study"
	case strings.Contains(title, "review"):
		out.ArticleType = "review"
	case leadingNumber.MatchString(title):
		out.ArticleType = "listicle"
	}

	steps := 0
	for _, h := range a.Headings {
		if stepHeading.MatchString(h) {
			steps++
		}
	}
	out.HasSteps = steps >= 2
	out.HasComparison = comparisonRe.MatchString(text)
	out.HasQuotes = len(a.Quotes) > 0
	out.HasProduct = productRe.MatchString(text)
	return out
}

// Storyboard fills a template's scenes from the article. The hook carries the
// title, the CTA carries CTAHeadline, and the scenes in between take section
// headings, then list items, then paragraph leads in document order. Images
// are assigned to scenes in order until they run out.
func Storyboard(a *Article, tmpl templates.Template) []templates.Scene {
	pool := make([]string, 0, len(a.Headings)+len(a.ListItems)+len(a.Paragraphs))
	pool = append(pool, a.Headings...)
	pool = append(pool, a.ListItems...)
	for _, p := range a.Paragraphs {
		pool = append(pool, lead(p))
	}

	scenes := make([]templates.Scene, 0, len(tmpl.Scenes))
	next := 0
	for i, spec := range tmpl.Scenes {
		var text string
		switch spec.Role {
		case templates.RoleHook:
			text = a.Title
		case templates.RoleCTA:
			text = CTAHeadline
		default:
			if next < len(pool) {
				text = pool[next]
				next++
			} else {
				text = a.Title
			}
		}

		scene := templates.Scene{
			Role:            spec.Role,
			Headline:        Headline(text),
			DurationSeconds: float64(spec.Duration),
		}
		if i < len(a.Images) {
			scene.Asset = a.Images[i]
			scene.AssetKind = "image"
		}
		scenes = append(scenes, scene)
	}
	return scenes
}

// Headline normalises whitespace, cuts text to MaxHeadlineRunes on a word
// boundary and title-cases it.
func Headline(s string) string {
	s = clean(s)
	if utf8.RuneCountInString(s) > MaxHeadlineRunes {
		cut := string([]rune(s)[:MaxHeadlineRunes])
		if i := strings.LastIndex(cut, " "); i > 0 {
			cut = cut[:i]
		}
		s = strings.TrimRight(cut, " ,;:-")
	}
	// Casers keep state between calls and cannot be shared.
	return cases.Title(language.English, cases.NoLower).String(s)
}

func lead(p string) string {
	if i := strings.Index(p, ". "); i > 0 {
		return p[:i]
	}
	return p
}
