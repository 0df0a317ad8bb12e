package bmv2

import (
	"strings"
	"testing"

	"github.com/nerpa-project/p4check/internal/inject"
)

func TestFrameStringDecodesUDP(t *testing.T) {
	spec, err := inject.ForSelector("0")
	if err != nil {
		t.Fatalf("ForSelector() error = %v", err)
	}
	wire, err := spec.Serialize()
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}

	s := Frame(wire).String()
	for _, want := range []string{
		"eth(dst=00:22:22:00:00:00, src=00:11:11:00:00:00)",
		"ipv4(dst=1.2.3.4",
		"udp(dst=2345, src=1234)",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("Frame string %q missing %q", s, want)
		}
	}
}

func TestFrameStringTruncatedFrame(t *testing.T) {
	s := Frame{0x00, 0x01}.String()
	if s == "" {
		t.Error("Frame string is empty for truncated frame, want diagnostic")
	}
}
