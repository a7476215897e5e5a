package align

import (
	"strings"
	"testing"
)

func uniformQuals(n int, q byte) []byte {
	quals := make([]byte, n)
	for i := range quals {
		quals[i] = q
	}
	return quals
}

func TestAlignPerfectMatchHasEvidence(t *testing.T) {
	template := []byte(strings.Repeat("A", 20) + "G" + strings.Repeat("C", 20))
	offset := int32(20)
	read := strings.Repeat("A", 20) + "G" + strings.Repeat("C", 20)
	a := New()
	got := a.Align(read, uniformQuals(len(read), 35), template, offset)

	if !got.HasEvidence {
		t.Fatalf("expected evidence for a perfect match spanning the offset, got %+v", got)
	}
	if got.Evidence <= 0 {
		t.Fatalf("has_evidence=true but evidence=%v", got.Evidence)
	}
}

func TestAlignShortReadReturnsNullAlignment(t *testing.T) {
	template := []byte(strings.Repeat("A", 40))
	a := New()
	got := a.Align("ACGT", uniformQuals(4, 30), template, 20)

	if got.HasEvidence {
		t.Fatalf("expected no evidence for a too-short read, got %+v", got)
	}
	if got.Evidence != 0 {
		t.Fatalf("has_evidence=false but evidence=%v", got.Evidence)
	}
}

func TestAlignNoEvidenceHasZeroEvidence(t *testing.T) {
	// A read that matches nowhere near the offset well: every placement
	// scores roughly the same (all mismatches), so no anchor wins.
	template := []byte(strings.Repeat("A", 60))
	read := strings.Repeat("T", 25)
	a := New()
	got := a.Align(read, uniformQuals(len(read), 30), template, 30)

	if got.HasEvidence && got.Evidence <= 0 {
		t.Fatalf("has_evidence=true but evidence=%v", got.Evidence)
	}
	if !got.HasEvidence && got.Evidence != 0 {
		t.Fatalf("has_evidence=false but evidence=%v", got.Evidence)
	}
}
