package format

import (
	"fmt"
	"strings"

	"github.com/coolbeans/firegate/pkg/match"
	"github.com/coolbeans/firegate/pkg/profile"
)

// renderFull produces the full-detail Hebrew rendering: every match
// with its regulatory text and justification.
func renderFull(matches []match.Match) string {
	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		var sb strings.Builder
		fmt.Fprintf(&sb, "פרק %d - סעיף %s\n", m.Chapter, m.Section)
		sb.WriteString(m.Title)
		sb.WriteString("\n\n")
		sb.WriteString(m.BodyText)
		if len(m.MatchReasons) > 0 {
			sb.WriteString("\n\nסיבת החלה: ")
			sb.WriteString(strings.Join(m.MatchReasons, " | "))
		}
		parts = append(parts, sb.String())
	}

	separator := "\n\n" + strings.Repeat("=", 50) + "\n\n"
	return strings.Join(parts, separator)
}

// renderSummary produces the condensed bullet rendering, limited to
// critical and important matches.
func renderSummary(matches []match.Match) string {
	var sb strings.Builder
	sb.WriteString("דרישות מרכזיות:")

	for _, m := range matches {
		if m.Priority > match.PriorityImportant {
			continue
		}
		fmt.Fprintf(&sb, "\n• סעיף %s: %s", m.Section, m.Title)
		if len(m.MatchReasons) > 0 {
			fmt.Fprintf(&sb, " (%s)", m.MatchReasons[0])
		}
	}

	return sb.String()
}

// renderProfile produces the Hebrew business-profile description.
func renderProfile(p *profile.Profile) string {
	features := "ללא"
	if names := p.FeaturesHebrew(); len(names) > 0 {
		features = strings.Join(names, ", ")
	}

	var sb strings.Builder
	sb.WriteString("פרופיל העסק:\n")
	fmt.Fprintf(&sb, "• גודל: %d מ\"ר\n", p.SizeSqm)
	fmt.Fprintf(&sb, "• תפוסה: %d איש\n", p.CapacityPeople)
	fmt.Fprintf(&sb, "• מאפיינים מיוחדים: %s\n", features)
	fmt.Fprintf(&sb, "• סוג עסק: %s", p.Type())
	return sb.String()
}

// PromptContext assembles the condensed context block handed to the
// report generator: profile description, key categories, the summary
// rendering, headline counts, and writing guidance.
func PromptContext(r *Result) string {
	var categories []string
	for _, g := range r.ByCategory {
		if g.Priority <= match.PriorityImportant {
			categories = append(categories, fmt.Sprintf("%s (%d דרישות)", g.CategoryHebrew, g.Count))
		}
	}
	categoriesText := "ללא קטגוריות מיוחדות"
	if len(categories) > 0 {
		categoriesText = strings.Join(categories, ", ")
	}

	var sb strings.Builder
	sb.WriteString(r.ProfileText)
	sb.WriteString("\n\nקטגוריות דרישות חשובות: ")
	sb.WriteString(categoriesText)
	sb.WriteString("\n\n")
	sb.WriteString(r.SummaryText)
	fmt.Fprintf(&sb, "\n\nסה\"כ דרישות חלות: %d\n", r.TotalRequirements)
	fmt.Fprintf(&sb, "דרישות קריטיות: %d\n", r.Statistics.ByPriority.Critical)
	fmt.Fprintf(&sb, "דרישות חשובות: %d\n", r.Statistics.ByPriority.Important)
	sb.WriteString(`
הנחיות לכתיבת הדוח:
1. התמקד בדרישות הקריטיות והחשובות בלבד
2. הסבר בשפה פשוטה ועסקית, לא משפטית
3. תן עדיפות לצעדים מעשיים וברורים
4. ציין זמני יישום ועלויות משוערות כאשר זה רלוונטי
5. הדגש את הסיכונים של אי-עמידה בדרישות`)

	return sb.String()
}

// combineText concatenates the regulatory text of a category's matches.
func combineText(matches []match.Match) string {
	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		parts = append(parts, fmt.Sprintf("סעיף %s: %s\n%s", m.Section, m.Title, m.BodyText))
	}
	return strings.Join(parts, "\n\n")
}
