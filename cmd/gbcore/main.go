// Command gbcore runs a cartridge headlessly for a bounded number of
// frames, optionally dumping the final frame buffer as an image and
// persisting battery-backed RAM on exit.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/bmp"

	"github.com/hhowser/gbcore/internal/gameboy"
	"github.com/hhowser/gbcore/internal/ppu"
	"github.com/hhowser/gbcore/pkg/log"
	"github.com/hhowser/gbcore/pkg/romfile"
)

func main() {
	frames := flag.Int("frames", 60, "number of frames to run before exiting")
	screenshot := flag.String("screenshot", "", "path to write the final frame buffer to (.png or .bmp)")
	rewindBucket := flag.Int("rewind-bucket", 60, "frames per rewind bucket")
	rewindEvery := flag.Int("rewind-every", 0, "push a rewind snapshot every N frames (0 disables rewind)")
	quiet := flag.Bool("quiet", false, "suppress all logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] rom\n\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	romFile := flag.Arg(0)

	rom, err := romfile.Load(romFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gbcore: loading rom: %v\n", err)
		os.Exit(1)
	}

	logger := log.New()
	if *quiet {
		logger = log.Null()
	}

	opts := []gameboy.GameBoyOpt{gameboy.WithLogger(logger)}
	if *rewindEvery <= 0 {
		opts = append(opts, gameboy.NoRewind())
	} else {
		opts = append(opts, gameboy.WithRewind(256*1024*1024, 100000, *rewindBucket))
	}

	gb, err := gameboy.NewGameBoy(rom, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gbcore: %v\n", err)
		os.Exit(1)
	}

	logger.Infof("loaded %q", gb.Cartridge.Header().Title)

	for frame := 0; frame < *frames; frame++ {
		if !gb.RunToNextFrame() {
			logger.Warnf("run stopped at frame %d: %v", frame, gb.CPU.Err)
			break
		}
		if *rewindEvery > 0 && frame % *rewindEvery == 0 {
			gb.PushRewind()
		}
	}

	if err := gb.PersistRAM(); err != nil {
		logger.Warnf("could not persist cartridge ram: %v", err)
	}

	if *screenshot != "" {
		if err := writeScreenshot(*screenshot, gb.Frame()); err != nil {
			fmt.Fprintf(os.Stderr, "gbcore: writing screenshot: %v\n", err)
			os.Exit(1)
		}
	}
}

// dmgPalette maps the 2-bit post-palette color index to the classic
// four-shade DMG green palette.
var dmgPalette = [4]color.RGBA{
	{0xE0, 0xF8, 0xD0, 0xFF},
	{0x88, 0xC0, 0x70, 0xFF},
	{0x34, 0x68, 0x56, 0xFF},
	{0x08, 0x18, 0x20, 0xFF},
}

func writeScreenshot(path string, frame [ppu.ScreenHeight][ppu.ScreenWidth]uint8) error {
	img := image.NewRGBA(image.Rect(0, 0, ppu.ScreenWidth, ppu.ScreenHeight))
	for y := 0; y < ppu.ScreenHeight; y++ {
		for x := 0; x < ppu.ScreenWidth; x++ {
			img.Set(x, y, dmgPalette[frame[y][x]])
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch filepath.Ext(path) {
	case ".bmp":
		return bmp.Encode(f, img)
	default:
		return png.Encode(f, img)
	}
}
