// Package save persists cartridge RAM to disk as a small sidecar file,
// separate from the full rewind snapshot stream: enough to keep a
// game's battery-backed progress across process runs without having
// to carry the whole engine state.
package save

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash"
)

const saveFolder = "saves"

// Key identifies a save file by the content hash of its cartridge ROM,
// not its title - two ROMs sharing a title (hacks, translations,
// revisions) never collide.
func Key(rom []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(rom))
}

// Path returns the on-disk path a save for the given ROM would live
// at, without touching the filesystem.
func Path(rom []byte) string {
	return filepath.Join(saveFolder, Key(rom)+".sav")
}

// Load reads the persisted RAM for rom, if any. A missing save file is
// not an error: it returns (nil, false, nil).
func Load(rom []byte) (data []byte, ok bool, err error) {
	path := Path(rom)
	data, err = os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Store writes ram to disk for rom, creating the save folder if
// necessary. Writes go to a temporary file first and are renamed into
// place, so a crash mid-write never corrupts the previous save.
func Store(rom []byte, ram []byte) error {
	if err := os.MkdirAll(saveFolder, 0o755); err != nil {
		return err
	}

	path := Path(rom)
	tmp, err := os.CreateTemp(saveFolder, filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(ram); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
