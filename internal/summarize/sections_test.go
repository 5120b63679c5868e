package summarize

import (
	"strings"
	"testing"
)

func TestSplitSections_ShortText(t *testing.T) {
	secs := SplitSections("Hello world", 100)
	if len(secs) != 1 {
		t.Fatalf("expected 1 section, got %d", len(secs))
	}
	if secs[0].Text != "Hello world" {
		t.Errorf("expected 'Hello world', got %q", secs[0].Text)
	}
}

func TestSplitSections_Unlimited(t *testing.T) {
	text := strings.Repeat("word ", 1000)
	if secs := SplitSections(text, 0); len(secs) != 1 {
		t.Errorf("expected 1 section when unlimited, got %d", len(secs))
	}
}

func TestSplitSections_Empty(t *testing.T) {
	if secs := SplitSections("   \n\n  ", 10); secs != nil {
		t.Errorf("expected nil for blank text, got %v", secs)
	}
}

func TestSplitSections_Headings(t *testing.T) {
	text := "# Intro\n" + strings.Repeat("Some intro text here. ", 5) +
		"\n\n# Body\n" + strings.Repeat("Body content goes here. ", 5) +
		"\n\n# End\nDone."

	secs := SplitSections(text, 130)
	if len(secs) < 2 {
		t.Fatalf("expected heading splits, got %d sections", len(secs))
	}
	if !strings.HasPrefix(secs[0].Text, "# Intro") {
		t.Errorf("first section should start at the first heading, got %q", secs[0].Text[:10])
	}
	for i, s := range secs {
		if len(s.Text) > 130 {
			t.Errorf("section %d exceeds limit: %d", i, len(s.Text))
		}
		if s.StartLine > s.EndLine {
			t.Errorf("section %d has inverted span %d-%d", i, s.StartLine, s.EndLine)
		}
	}
}

func TestSplitSections_HardSplitLongLine(t *testing.T) {
	line := strings.Repeat("é", 30) // 60 bytes, no break points
	secs := SplitSections(line, 25)
	var joined strings.Builder
	for i, s := range secs {
		if len(s.Text) > 25 {
			t.Errorf("section %d exceeds limit: %d", i, len(s.Text))
		}
		joined.WriteString(s.Text)
	}
	if joined.String() != line {
		t.Error("hard split lost or corrupted text")
	}
}

func TestSplitSections_PreservesContent(t *testing.T) {
	var paras []string
	for i := 0; i < 20; i++ {
		paras = append(paras, strings.Repeat("x", 10+i*3))
	}
	text := strings.Join(paras, "\n\n")

	secs := SplitSections(text, 120)
	var got []string
	for _, s := range secs {
		got = append(got, strings.Split(s.Text, "\n\n")...)
	}
	if strings.Join(got, "|") != strings.Join(paras, "|") {
		t.Error("sections do not reproduce the original paragraphs in order")
	}
}
