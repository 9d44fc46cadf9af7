package timer

import (
	"testing"

	"github.com/hhowser/gbcore/internal/interrupts"
)

func TestControllerOverflowIsTwoStage(t *testing.T) {
	irq := interrupts.NewService()
	c := NewController(irq)
	irq.Enable = interrupts.TimerFlag

	c.WriteTAC(0x05) // enabled, bit 3 selected
	c.WriteTMA(0x12)
	c.WriteTIMA(0xFF)

	// tick until the selected bit falls and TIMA wraps to 0.
	for i := 0; i < 16 && c.TIMA() != 0; i++ {
		c.Tick()
	}
	if c.TIMA() != 0 {
		t.Fatalf("expected TIMA to wrap to 0, got %#x", c.TIMA())
	}
	if irq.Pending() {
		t.Fatal("Timer IRQ must not be requested the same tick TIMA wraps")
	}

	c.Tick()
	if c.TIMA() != 0x12 {
		t.Fatalf("expected TIMA reloaded from TMA on the following tick, got %#x", c.TIMA())
	}
	if !irq.Pending() {
		t.Fatal("expected Timer IRQ requested once TIMA reloads")
	}
}

func TestDivWriteResetsCounter(t *testing.T) {
	irq := interrupts.NewService()
	c := NewController(irq)
	for i := 0; i < 300; i++ {
		c.Tick()
	}
	if c.DIV() == 0 {
		t.Fatal("expected DIV to have advanced")
	}
	c.WriteDIV()
	if c.DIV() != 0 {
		t.Fatalf("expected DIV reset to 0, got %#x", c.DIV())
	}
}

func TestTACDisabledNeverIncrementsTIMA(t *testing.T) {
	irq := interrupts.NewService()
	c := NewController(irq)
	c.WriteTAC(0x01) // bit 3 selected, but not enabled
	for i := 0; i < 1000; i++ {
		c.Tick()
	}
	if c.TIMA() != 0 {
		t.Fatalf("expected TIMA to remain 0 while disabled, got %#x", c.TIMA())
	}
}
