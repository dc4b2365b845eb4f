package export

import (
	"regexp"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
)

const (
	fontName  = "Yu Mincho"
	fontSize  = 11
	fontColor = "000000"
)

var (
	reHeading  = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	reBold     = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBullet   = regexp.MustCompile(`^[\-\*]\s+(.+)$`)
	reEmphasis = regexp.MustCompile(`^_(.+)_$`)
)

// writeDocx lays the markdown export out as a styled document. The raw
// transcript, when present, follows the summary.
func writeDocx(doc Document, path string) error {
	d, err := godocx.NewDocument()
	if err != nil {
		return err
	}

	for _, line := range strings.Split(Markdown(doc), "\n") {
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "" || trimmed == "---":
			continue
		case reHeading.MatchString(trimmed):
			m := reHeading.FindStringSubmatch(trimmed)
			addStyledRun(d.AddParagraph(""), m[2], true, headingSize(len(m[1])))
		case reBullet.MatchString(trimmed):
			addRichText(d.AddParagraph(""), "• "+reBullet.FindStringSubmatch(trimmed)[1])
		case reEmphasis.MatchString(trimmed):
			p := d.AddParagraph("")
			p.AddText(reEmphasis.FindStringSubmatch(trimmed)[1]).Font(fontName).Size(fontSize - 1).Color("555555").Italic(true)
		default:
			addRichText(d.AddParagraph(""), trimmed)
		}
	}

	if t := strings.TrimSpace(doc.Transcript); t != "" {
		addStyledRun(d.AddParagraph(""), "文字起こし", true, headingSize(2))
		for _, para := range strings.Split(t, "\n") {
			if para = strings.TrimSpace(para); para != "" {
				d.AddParagraph("").AddText(para).Font(fontName).Size(fontSize).Color(fontColor)
			}
		}
	}

	return d.SaveTo(path)
}

func headingSize(level int) uint64 {
	switch level {
	case 1:
		return 18
	case 2:
		return 15
	case 3:
		return 13
	default:
		return fontSize
	}
}

func addStyledRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	run := p.AddText(cleanMarkdownInline(text)).Font(fontName).Size(size).Color(fontColor)
	if bold {
		run.Bold(true)
	}
}

// addRichText keeps **bold** spans bold and strips other inline markup.
func addRichText(p *docx.Paragraph, text string) {
	parts := reBold.Split(text, -1)
	matches := reBold.FindAllStringSubmatch(text, -1)

	for i, part := range parts {
		if part != "" {
			p.AddText(cleanMarkdownInline(part)).Font(fontName).Size(fontSize).Color(fontColor)
		}
		if i < len(matches) {
			p.AddText(cleanMarkdownInline(matches[i][1])).Font(fontName).Size(fontSize).Color(fontColor).Bold(true)
		}
	}
}

func cleanMarkdownInline(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "__", "")
	s = strings.ReplaceAll(s, "`", "")
	return s
}
