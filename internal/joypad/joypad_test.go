package joypad

import (
	"testing"

	"github.com/hhowser/gbcore/internal/interrupts"
)

func TestReadNoSelectionReportsReleased(t *testing.T) {
	irq := interrupts.NewService()
	s := New(irq)
	if got := s.Read() & 0xF; got != 0xF {
		t.Fatalf("expected all columns released, got %#x", got)
	}
}

func TestPressRaisesIRQOnlyWhenColumnSelected(t *testing.T) {
	irq := interrupts.NewService()
	s := New(irq)
	irq.Enable = interrupts.JoypadFlag

	s.Press(ButtonA)
	if irq.Pending() {
		t.Fatal("press of an unselected column must not raise Joypad IRQ")
	}

	s.Write(0xDF) // select action column (bit5=0)
	s.Release(ButtonA)
	s.Press(ButtonA)
	if !irq.Pending() {
		t.Fatal("expected Joypad IRQ once the action column is selected and A is pressed")
	}
}

func TestReadReflectsSelectedColumn(t *testing.T) {
	irq := interrupts.NewService()
	s := New(irq)

	s.Press(ButtonStart)
	s.Press(ButtonDown)

	s.Write(0xDF) // select action keys
	if got := s.Read() & (1 << 3); got != 0 {
		t.Fatalf("expected Start reported pressed in the action column, got bit set")
	}

	s.Write(0xEF) // select direction keys
	if got := s.Read() & (1 << 3); got != 0 {
		t.Fatalf("expected Down reported pressed in the direction column, got bit set")
	}
}

func TestReadPassesSelectBitsThroughUnflipped(t *testing.T) {
	irq := interrupts.NewService()
	s := New(irq)

	s.Write(0xDF) // bit5=0 (select action), bit4=1 (direction not selected)
	if got := s.Read() & 0x30; got != 0x10 {
		t.Fatalf("expected bits 4-5 to read back as written (0x10), got %#x", got)
	}

	s.Write(0xEF) // bit5=1, bit4=0
	if got := s.Read() & 0x30; got != 0x20 {
		t.Fatalf("expected bits 4-5 to read back as written (0x20), got %#x", got)
	}
}

func TestBothColumnsCanBeSelectedSimultaneously(t *testing.T) {
	irq := interrupts.NewService()
	s := New(irq)

	for _, b := range []Button{ButtonA, ButtonB, ButtonSelect, ButtonStart, ButtonRight, ButtonLeft, ButtonUp, ButtonDown} {
		s.Press(b)
	}

	s.Write(0xCF) // bit5=0 and bit4=0: both columns selected
	if got := s.Read() & 0xF; got != 0 {
		t.Fatalf("expected every button reported pressed with both columns selected, got %#x", got)
	}
}
