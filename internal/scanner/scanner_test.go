package scanner

import (
	"testing"

	"github.com/goliatone/go-crossref/pkg/interfaces"
)

func TestScan_SingleMarker(t *testing.T) {
	refs := Scan("See [User](ash:Sertantai.Accounts.User) for details.")

	if len(refs) != 1 {
		t.Fatalf("Scan() expected 1 reference, got %d", len(refs))
	}
	ref := refs[0]
	if ref.Kind != interfaces.KindResource {
		t.Fatalf("Scan() wrong kind, got %s", ref.Kind)
	}
	if ref.Target != "Sertantai.Accounts.User" {
		t.Fatalf("Scan() wrong target, got %q", ref.Target)
	}
	if ref.DisplayText != "User" {
		t.Fatalf("Scan() wrong display text, got %q", ref.DisplayText)
	}
	if ref.LineNumber != 1 {
		t.Fatalf("Scan() wrong line number, got %d", ref.LineNumber)
	}
	if ref.Valid != nil || ref.URL != "" {
		t.Fatalf("Scan() must not pre-populate validation fields")
	}
}

func TestScan_MultipleMarkersPerLine(t *testing.T) {
	refs := Scan("[A](ash:Foo.A) then [B](exdoc:Foo.B) then [C](dev:guides/b)")

	if len(refs) != 3 {
		t.Fatalf("Scan() expected 3 references, got %d", len(refs))
	}
	wantKinds := []interfaces.Kind{interfaces.KindResource, interfaces.KindModule, interfaces.KindDevDoc}
	for i, kind := range wantKinds {
		if refs[i].Kind != kind {
			t.Fatalf("Scan() reference %d: expected kind %s, got %s", i, kind, refs[i].Kind)
		}
	}
}

func TestScan_DocumentOrderAcrossLines(t *testing.T) {
	source := "intro\n[First](ash:One)\ntext\n[Second](user:two) and [Third](dev:three)"
	refs := Scan(source)

	if len(refs) != 3 {
		t.Fatalf("Scan() expected 3 references, got %d", len(refs))
	}
	if refs[0].LineNumber != 2 || refs[1].LineNumber != 4 || refs[2].LineNumber != 4 {
		t.Fatalf("Scan() wrong line numbers: %d %d %d", refs[0].LineNumber, refs[1].LineNumber, refs[2].LineNumber)
	}
	if refs[1].Target != "two" || refs[2].Target != "three" {
		t.Fatalf("Scan() lost left-to-right order on shared line")
	}
}

func TestScan_SkipsFencedCodeBlocks(t *testing.T) {
	source := "```\n[X](ash:Foo)\n```"
	if refs := Scan(source); len(refs) != 0 {
		t.Fatalf("Scan() expected 0 references inside fence, got %d", len(refs))
	}
}

func TestScan_FenceLineItselfNotScanned(t *testing.T) {
	source := "```elixir [X](ash:Foo)\ncode\n```\n[Y](ash:Bar)"
	refs := Scan(source)

	if len(refs) != 1 {
		t.Fatalf("Scan() expected 1 reference, got %d", len(refs))
	}
	if refs[0].Target != "Bar" {
		t.Fatalf("Scan() expected reference after fence, got %q", refs[0].Target)
	}
}

func TestScan_ResumesAfterFence(t *testing.T) {
	source := "[A](ash:Before)\n```\n[B](ash:Inside)\n```\n[C](ash:After)"
	refs := Scan(source)

	if len(refs) != 2 {
		t.Fatalf("Scan() expected 2 references, got %d", len(refs))
	}
	if refs[0].Target != "Before" || refs[1].Target != "After" {
		t.Fatalf("Scan() wrong targets: %q %q", refs[0].Target, refs[1].Target)
	}
	if refs[1].LineNumber != 5 {
		t.Fatalf("Scan() wrong line number after fence, got %d", refs[1].LineNumber)
	}
}

func TestScan_DiscardsEmptyTargets(t *testing.T) {
	if refs := Scan("[Empty](ash:) and [Blank](dev:   )"); len(refs) != 0 {
		t.Fatalf("Scan() expected empty targets to be discarded, got %d", len(refs))
	}
}

func TestScan_UnknownKindsNotMatched(t *testing.T) {
	if refs := Scan("[W](wiki:Some.Page) and [H](https://example.com)"); len(refs) != 0 {
		t.Fatalf("Scan() expected unknown schemes to be ignored, got %d", len(refs))
	}
}

func TestScan_EmptyInput(t *testing.T) {
	if refs := Scan(""); len(refs) != 0 {
		t.Fatalf("Scan() expected no references for empty input, got %d", len(refs))
	}
}

func TestScanMatches_RawPreservesLiteralMarker(t *testing.T) {
	matches := ScanMatches("before [User](ash:Accounts.User) after")

	if len(matches) != 1 {
		t.Fatalf("ScanMatches() expected 1 match, got %d", len(matches))
	}
	if matches[0].Raw != "[User](ash:Accounts.User)" {
		t.Fatalf("ScanMatches() wrong raw marker, got %q", matches[0].Raw)
	}
}
