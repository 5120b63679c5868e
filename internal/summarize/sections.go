package summarize

import (
	"strings"
	"unicode/utf8"
)

// Section is a contiguous slice of an article with its line span.
type Section struct {
	Text      string
	StartLine int
	EndLine   int
}

// SplitSections splits text into sections of at most maxChars bytes, breaking on
// markdown headings and blank lines first and on line boundaries when a single
// block is still too large. Text that already fits returns a single section.
func SplitSections(text string, maxChars int) []Section {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if maxChars <= 0 || len(text) <= maxChars {
		return []Section{{Text: text, StartLine: 1, EndLine: strings.Count(text, "\n") + 1}}
	}
	return mergeBlocks(splitBlocks(text), maxChars)
}

// splitBlocks splits text on heading lines and blank lines.
func splitBlocks(text string) []Section {
	lines := strings.Split(text, "\n")
	var blocks []Section
	var current []string
	startLine := 1

	flush := func(endLine int) {
		if t := strings.TrimSpace(strings.Join(current, "\n")); t != "" {
			blocks = append(blocks, Section{Text: t, StartLine: startLine, EndLine: endLine})
		}
		current = nil
		startLine = endLine + 1
	}

	for i, line := range lines {
		lineNum := i + 1
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "#") && len(current) > 0 {
			flush(lineNum - 1)
		}
		if trimmed == "" {
			if len(current) > 0 {
				flush(lineNum)
			} else {
				startLine = lineNum + 1
			}
			continue
		}
		current = append(current, line)
	}
	flush(len(lines))

	return blocks
}

// mergeBlocks packs consecutive blocks up to maxChars and hard-splits oversized ones.
func mergeBlocks(blocks []Section, maxChars int) []Section {
	var out []Section
	var accum Section

	flushAccum := func() {
		if accum.Text == "" {
			return
		}
		if len(accum.Text) > maxChars {
			out = append(out, hardSplit(accum.Text, accum.StartLine, maxChars)...)
		} else {
			out = append(out, accum)
		}
		accum = Section{}
	}

	for _, b := range blocks {
		if accum.Text == "" {
			accum = b
			continue
		}
		combined := accum.Text + "\n\n" + b.Text
		if len(combined) <= maxChars {
			accum.Text = combined
			accum.EndLine = b.EndLine
			continue
		}
		flushAccum()
		accum = b
	}
	flushAccum()

	return out
}

// hardSplit breaks text on line boundaries; a single line longer than maxChars is cut.
func hardSplit(text string, startLine, maxChars int) []Section {
	lines := strings.Split(text, "\n")
	var out []Section
	var current []string
	curStart := startLine
	curLen := 0

	emit := func(endLine int) {
		if t := strings.TrimSpace(strings.Join(current, "\n")); t != "" {
			out = append(out, Section{Text: t, StartLine: curStart, EndLine: endLine})
		}
		current = nil
		curLen = 0
	}

	for i, line := range lines {
		lineNum := startLine + i
		for len(line) > maxChars {
			if len(current) > 0 {
				emit(lineNum - 1)
			}
			cut := maxChars
			for cut > 0 && !utf8.RuneStart(line[cut]) {
				cut--
			}
			if cut == 0 {
				cut = maxChars
			}
			curStart = lineNum
			current = []string{line[:cut]}
			emit(lineNum)
			line = line[cut:]
		}
		if curLen+len(line) > maxChars && len(current) > 0 {
			emit(lineNum - 1)
		}
		if len(current) == 0 {
			curStart = lineNum
		}
		current = append(current, line)
		curLen += len(line) + 1
	}
	if len(current) > 0 {
		emit(startLine + len(lines) - 1)
	}

	return out
}
