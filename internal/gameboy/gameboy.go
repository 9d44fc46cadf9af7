// Package gameboy wires every subsystem - CPU, bus, PPU, timer,
// joypad, serial, interrupts, cartridge - into one runnable unit and
// exposes the suspension points a host shell drives it through:
// RunUntil, RunToNextFrame, RunToNextScanline.
package gameboy

import (
	"github.com/hhowser/gbcore/internal/cartridge"
	"github.com/hhowser/gbcore/internal/cpu"
	"github.com/hhowser/gbcore/internal/interrupts"
	"github.com/hhowser/gbcore/internal/joypad"
	"github.com/hhowser/gbcore/internal/mmu"
	"github.com/hhowser/gbcore/internal/ppu"
	"github.com/hhowser/gbcore/internal/rewind"
	"github.com/hhowser/gbcore/internal/serial"
	"github.com/hhowser/gbcore/internal/timer"
	"github.com/hhowser/gbcore/internal/types"
	"github.com/hhowser/gbcore/pkg/log"
	"github.com/hhowser/gbcore/pkg/save"
)

// GameBoy is the assembled console: every component plus the rewind
// buffer and save-RAM path derived from the cartridge it was built
// from.
type GameBoy struct {
	CPU       *cpu.CPU
	Bus       *mmu.Bus
	PPU       *ppu.PPU
	Timer     *timer.Controller
	Joypad    *joypad.State
	Serial    *serial.Controller
	Cartridge cartridge.Cartridge

	irq    *interrupts.Service
	rewind *rewind.Rewind
	log    log.Logger

	rom       []byte
	ticks     uint64
	dotsInRun int
}

// GameBoyOpt configures a GameBoy at construction, following the
// functional-options pattern the teacher's own constructor used.
type GameBoyOpt func(*GameBoy)

// WithLogger overrides the default stderr logger.
func WithLogger(l log.Logger) GameBoyOpt {
	return func(g *GameBoy) { g.log = l }
}

// WithRewind enables the delta-compressed rewind buffer with the given
// limits in place of the package defaults.
func WithRewind(maxBytes, maxBuckets, framesPerBucket int) GameBoyOpt {
	return func(g *GameBoy) {
		g.rewind = rewind.NewWithLimits(g, maxBytes, maxBuckets, framesPerBucket)
	}
}

// NoRewind disables the rewind buffer entirely, for short-lived runs
// (e.g. a headless frame-count harness) that don't need it.
func NoRewind() GameBoyOpt {
	return func(g *GameBoy) { g.rewind = nil }
}

// NewGameBoy parses rom's header, constructs the matching mapper, and
// wires every subsystem together. Battery-backed RAM, if any, is
// restored from the host's save directory under the cartridge's
// content-addressed key.
func NewGameBoy(rom []byte, opts ...GameBoyOpt) (*GameBoy, error) {
	cart, err := cartridge.New(rom)
	if err != nil {
		return nil, err
	}

	logger := log.New()
	if data, ok, err := save.Load(rom); err != nil {
		logger.Warnf("save: could not load cartridge RAM: %v", err)
	} else if ok {
		cart.LoadRAM(data)
	}

	irq := interrupts.NewService()
	p := ppu.New(irq)
	t := timer.NewController(irq)
	j := joypad.New(irq)
	s := serial.NewController()
	bus := mmu.New(cart, p, t, j, s, irq)
	c := cpu.New(bus, irq)

	g := &GameBoy{
		CPU:       c,
		Bus:       bus,
		PPU:       p,
		Timer:     t,
		Joypad:    j,
		Serial:    s,
		Cartridge: cart,
		irq:       irq,
		log:       logger,
		rom:       rom,
	}
	g.rewind = rewind.New(g)

	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

// RunUntil steps the CPU until predicate reports true or maxDots worth
// of M-cycles have elapsed, whichever comes first. It returns whether
// the predicate was satisfied - false both when the budget ran out and
// when the CPU hit a fatal condition (STOP, an illegal opcode), per
// the engine's "errors bubble out of run_until" propagation rule.
func (g *GameBoy) RunUntil(predicate func() bool, maxDots int) bool {
	spent := 0
	for spent < maxDots {
		if predicate() {
			return true
		}
		if g.CPU.Stopped {
			if g.CPU.Err != nil {
				g.log.Errorf("cpu halted: %v", g.CPU.Err)
			}
			return false
		}
		cycles := g.CPU.Step()
		dots := cycles * 4
		spent += dots
		g.ticks += uint64(dots)
	}
	return predicate()
}

// RunToNextFrame runs until LY has passed through V-Blank and returned
// to its value at call time - one full frame, ending at the start of a
// frame when called at LY 0 - or until the one-frame dot budget runs
// out or a fatal CPU condition cuts the run short.
func (g *GameBoy) RunToNextFrame() bool {
	startLY := g.PPU.ReadRegister(types.LY)
	seenVBlank := false
	return g.RunUntil(func() bool {
		ly := g.PPU.ReadRegister(types.LY)
		if ly >= ppu.ScreenHeight {
			seenVBlank = true
		}
		return seenVBlank && ly == startLY
	}, ppu.DotsPerFrame+1)
}

// RunToNextScanline runs until LY changes from its value at call time.
func (g *GameBoy) RunToNextScanline() bool {
	startLY := g.PPU.ReadRegister(types.LY)
	return g.RunUntil(func() bool {
		return g.PPU.ReadRegister(types.LY) != startLY
	}, 456+1)
}

// Frame returns the current frame buffer of post-palette color indices.
func (g *GameBoy) Frame() [ppu.ScreenHeight][ppu.ScreenWidth]uint8 {
	return g.PPU.Frame()
}

// PressButton/ReleaseButton forward to the joypad.
func (g *GameBoy) PressButton(b joypad.Button)   { g.Joypad.Press(b) }
func (g *GameBoy) ReleaseButton(b joypad.Button) { g.Joypad.Release(b) }

// PushRewind snapshots the current state into the rewind buffer, a
// no-op if rewind was disabled via NoRewind.
func (g *GameBoy) PushRewind() {
	if g.rewind == nil {
		return
	}
	g.rewind.Push(g.ticks)
}

// PopRewind restores the most recently pushed rewind snapshot,
// reporting whether one was available.
func (g *GameBoy) PopRewind() bool {
	if g.rewind == nil {
		return false
	}
	return g.rewind.Pop()
}

// PersistRAM writes the cartridge's battery-backed RAM, if any, to the
// host save directory under its content-addressed key.
func (g *GameBoy) PersistRAM() error {
	ram := g.Cartridge.RAM()
	if ram == nil {
		return nil
	}
	if err := save.Store(g.rom, ram); err != nil {
		g.log.Errorf("save: could not persist cartridge RAM: %v", err)
		return err
	}
	return nil
}

var _ types.Stater = (*GameBoy)(nil)
var _ rewind.Snapshotter = (*GameBoy)(nil)

func (g *GameBoy) Save(st *types.State) {
	g.CPU.Save(st)
	g.Bus.Save(st)
	st.Write64(g.ticks)
}

func (g *GameBoy) Load(st *types.State) {
	g.CPU.Load(st)
	g.Bus.Load(st)
	g.ticks = st.Read64()
}
