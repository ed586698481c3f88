// Package img provides reading functionality for GTA IMG archives.
//
// Version 1 archives (GTA III / Vice City) are a .img data file paired
// with a .dir table file; version 2 archives (San Andreas) embed the
// table behind a "VER2" header in the .img itself. Both address data in
// 2048-byte sectors with 32-byte entries.
package img

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/leodutra/bevy-city/pkg/gtaenc"
)

// SectorSize is the fixed addressing unit of IMG archives.
const SectorSize = 2048

// entrySize is the on-disk size of one directory entry.
const entrySize = 32

// Archive errors.
var (
	ErrMissingDirFile   = errors.New("version 1 archive has no .dir table file")
	ErrTruncatedDir     = errors.New("truncated directory table")
	ErrFileNotFound     = errors.New("file not found in archive")
	ErrEntryOutOfBounds = errors.New("entry lies outside archive data")
)

// Entry is one file entry in the archive. Offset and Size count
// sectors, not bytes.
type Entry struct {
	Name   string
	Offset uint32
	Size   uint32
}

// Archive represents an opened IMG archive.
type Archive struct {
	file     *os.File
	version  int
	dataSize int64
	fileList map[string]*Entry
}

// Open opens an IMG archive for reading. The path may name either the
// .img or, for version 1, the .dir file; the sibling is located by
// extension.
func Open(path string) (*Archive, error) {
	imgPath := path
	if strings.EqualFold(filepath.Ext(path), ".dir") {
		imgPath = path[:len(path)-4] + ".img"
	}

	file, err := os.Open(imgPath)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat archive: %w", err)
	}

	archive := &Archive{
		file:     file,
		dataSize: info.Size(),
		fileList: make(map[string]*Entry),
	}

	if err := archive.readDirectory(imgPath); err != nil {
		file.Close()
		return nil, fmt.Errorf("reading directory: %w", err)
	}

	return archive, nil
}

// Close closes the archive.
func (a *Archive) Close() error {
	if a.file != nil {
		return a.file.Close()
	}
	return nil
}

// Version returns the archive version (1 or 2).
func (a *Archive) Version() int {
	return a.version
}

func (a *Archive) readDirectory(imgPath string) error {
	var magic [4]byte
	if n, _ := a.file.ReadAt(magic[:], 0); n == 4 && string(magic[:]) == "VER2" {
		return a.readDirectoryV2()
	}
	return a.readDirectoryV1(imgPath)
}

// readDirectoryV1 loads the external .dir table: a bare entry array
// with no header.
func (a *Archive) readDirectoryV1(imgPath string) error {
	a.version = 1

	dirPath := strings.TrimSuffix(imgPath, filepath.Ext(imgPath)) + ".dir"
	table, err := os.ReadFile(dirPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrMissingDirFile, dirPath)
		}
		return fmt.Errorf("reading table: %w", err)
	}

	if len(table)%entrySize != 0 {
		return fmt.Errorf("%w: %d bytes is not a whole number of entries", ErrTruncatedDir, len(table))
	}

	for off := 0; off < len(table); off += entrySize {
		a.addEntry(&Entry{
			Offset: binary.LittleEndian.Uint32(table[off:]),
			Size:   binary.LittleEndian.Uint32(table[off+4:]),
			Name:   gtaenc.FixedString(table[off+8 : off+32]),
		})
	}
	return nil
}

// readDirectoryV2 loads the embedded table: "VER2" magic, an entry
// count, then the entry array. V2 entries split the size field into a
// streaming size and an (unused) archive size; the streaming size is
// authoritative.
func (a *Archive) readDirectoryV2() error {
	a.version = 2

	var head [8]byte
	if _, err := a.file.ReadAt(head[:], 0); err != nil {
		return fmt.Errorf("%w: header", ErrTruncatedDir)
	}
	count := binary.LittleEndian.Uint32(head[4:8])

	table := make([]byte, int(count)*entrySize)
	if _, err := a.file.ReadAt(table, 8); err != nil {
		return fmt.Errorf("%w: %d entries declared", ErrTruncatedDir, count)
	}

	for i := uint32(0); i < count; i++ {
		off := int(i) * entrySize
		size := uint32(binary.LittleEndian.Uint16(table[off+4:]))
		if size == 0 {
			size = uint32(binary.LittleEndian.Uint16(table[off+6:]))
		}
		a.addEntry(&Entry{
			Offset: binary.LittleEndian.Uint32(table[off:]),
			Size:   size,
			Name:   gtaenc.FixedString(table[off+8 : off+32]),
		})
	}
	return nil
}

func (a *Archive) addEntry(e *Entry) {
	if e.Name == "" {
		return
	}
	a.fileList[gtaenc.NormalizePath(e.Name)] = e
}

// List returns all file names in the archive.
func (a *Archive) List() []string {
	result := make([]string, 0, len(a.fileList))
	for name := range a.fileList {
		result = append(result, name)
	}
	return result
}

// Contains checks if a file exists, case-insensitively.
func (a *Archive) Contains(name string) bool {
	_, ok := a.fileList[gtaenc.NormalizePath(name)]
	return ok
}

// Stat returns the directory entry for a file.
func (a *Archive) Stat(name string) (*Entry, error) {
	entry, ok := a.fileList[gtaenc.NormalizePath(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, name)
	}
	return entry, nil
}

// Read reads a file from the archive. Data comes back padded to the
// sector boundary, exactly as stored; the contained format defines its
// own real length.
func (a *Archive) Read(name string) ([]byte, error) {
	entry, err := a.Stat(name)
	if err != nil {
		return nil, err
	}

	offset := int64(entry.Offset) * SectorSize
	length := int64(entry.Size) * SectorSize
	if offset+length > a.dataSize {
		return nil, fmt.Errorf("%w: %s at sector %d", ErrEntryOutOfBounds, entry.Name, entry.Offset)
	}

	data := make([]byte, length)
	if _, err := a.file.ReadAt(data, offset); err != nil {
		return nil, fmt.Errorf("reading %s: %w", entry.Name, err)
	}
	return data, nil
}
