package serial

import "testing"

func TestBit7WriteCapturesByte(t *testing.T) {
	c := NewController()
	c.WriteSB('A')
	c.WriteSC(0x81)

	log := c.Log()
	if len(log) != 1 || log[0] != 'A' {
		t.Fatalf("expected log to capture 'A', got %v", log)
	}
}

func TestWriteWithoutBit7DoesNotCapture(t *testing.T) {
	c := NewController()
	c.WriteSB('B')
	c.WriteSC(0x01)

	if len(c.Log()) != 0 {
		t.Fatalf("expected no capture without bit 7 set, got %v", c.Log())
	}
}

func TestReadSCAlwaysSetsUnusedBits(t *testing.T) {
	c := NewController()
	c.WriteSC(0x00)
	if got := c.ReadSC(); got&0x7E != 0x7E {
		t.Fatalf("expected unused bits 1-6 set, got %#x", got)
	}
}
