package report

import (
	"fmt"
	"strings"
)

// ─── DOCUMENT SHELL ───────────────────────────────────────────────────────────

const documentStyle = `body { font-family: sans-serif; color: #1a1a1a; max-width: 860px; margin: 0 auto; padding: 24px; }
  h1 { margin-bottom: 8px; }
  h2 { border-bottom: 1px solid #e5e7eb; padding-bottom: 4px; margin-top: 40px; }
  table { border-collapse: collapse; width: 100%; }
  th, td { text-align: left; padding: 6px 8px; border-bottom: 1px solid #f3f4f6; }
  .badge { padding: 2px 8px; border-radius: 9999px; font-size: 12px; font-weight: 600; }
  .callout { background: #f8fafc; border-left: 4px solid #0f172a; padding: 12px 16px; }
  .gap-row { display: flex; align-items: center; gap: 8px; margin: 4px 0; }
  .gap-row .label { width: 180px; }
  .gap-row .bar { display: inline-block; height: 10px; border-radius: 4px; }
  .severity { font-size: 12px; font-weight: 600; color: #b91c1c; margin-right: 4px; }
  .projection { color: #6b7280; font-size: 14px; }
  footer { color: #9ca3af; font-size: 12px; margin-top: 48px; }`

// renderDocument wraps the section payloads in the HTML document.
func renderDocument(title string, sections []Section) string {
	var body strings.Builder
	for _, s := range sections {
		fmt.Fprintf(&body, "<section class=\"report-section\" id=\"%s\">\n%s\n</section>\n", sectionID(s.Name), s.HTML)
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
  %s
</style>
</head>
<body>
%s<footer>Business Health Assessment · Scores are indicative and based on self-reported answers.</footer>
</body>
</html>`, esc(title), documentStyle, body.String())
}

// sectionID turns a display name into an anchor id: "90-Day Action Plan" →
// "90-day-action-plan".
func sectionID(name string) string {
	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			dash = false
		case !dash && sb.Len() > 0:
			sb.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(sb.String(), "-")
}
