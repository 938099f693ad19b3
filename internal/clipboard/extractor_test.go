package clipboard

import "testing"

func TestExtractPrefersRich(t *testing.T) {
	x := NewExtractor(true, true)
	snap := Snapshot{Plain: "plain form", Rich: []byte("<b>bold text</b>")}
	c, ok := x.Extract(snap, "com.example.editor")
	if !ok {
		t.Fatal("no candidate")
	}
	if string(c.RichBytes) != "<b>bold text</b>" {
		t.Fatalf("rich bytes not carried: %q", c.RichBytes)
	}
	if c.PlainText != "bold text" {
		t.Fatalf("derived plain = %q", c.PlainText)
	}
	if c.SourceApp != "com.example.editor" {
		t.Fatalf("source app = %q", c.SourceApp)
	}
}

func TestExtractRichDisabledFallsBackToPlain(t *testing.T) {
	x := NewExtractor(false, true)
	c, ok := x.Extract(Snapshot{Plain: "plain form", Rich: []byte("<b>x</b>")}, "")
	if !ok {
		t.Fatal("no candidate")
	}
	if c.RichBytes != nil || c.PlainText != "plain form" {
		t.Fatalf("unexpected candidate: %+v", c)
	}
}

func TestExtractDerivationFallbacks(t *testing.T) {
	x := NewExtractor(true, true)

	// Markup with no text, plain representation present.
	c, ok := x.Extract(Snapshot{Plain: "fallback", Rich: []byte("<div><img src=\"x\"/></div>")}, "")
	if !ok || c.PlainText != "fallback" {
		t.Fatalf("expected plain fallback, got %+v (ok=%v)", c, ok)
	}

	// Markup with no text and no plain representation.
	c, ok = x.Extract(Snapshot{Rich: []byte("<div></div>")}, "")
	if !ok || c.PlainText != RichPlaceholder {
		t.Fatalf("expected placeholder, got %+v (ok=%v)", c, ok)
	}

	// Non-UTF-8 rich payload.
	c, ok = x.Extract(Snapshot{Rich: []byte{0xFF, 0xFE, 0x00}}, "")
	if !ok || c.PlainText != RichPlaceholder {
		t.Fatalf("expected placeholder for binary payload, got %+v (ok=%v)", c, ok)
	}
}

func TestExtractEntityUnescape(t *testing.T) {
	x := NewExtractor(true, false)
	c, ok := x.Extract(Snapshot{Rich: []byte("<p>a &amp; b</p>")}, "")
	if !ok || c.PlainText != "a & b" {
		t.Fatalf("entities not unescaped: %+v", c)
	}
}

func TestExtractNothingUsable(t *testing.T) {
	x := NewExtractor(true, true)
	if _, ok := x.Extract(Snapshot{}, ""); ok {
		t.Fatal("empty snapshot produced a candidate")
	}
	disabled := NewExtractor(false, false)
	if _, ok := disabled.Extract(Snapshot{Plain: "text"}, ""); ok {
		t.Fatal("fully disabled extractor produced a candidate")
	}
}
