package forms

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/team-dbx/dbx/internal/client/notify"
	"github.com/team-dbx/dbx/internal/common"
)

const (
	SlotDefault  = "default"
	SlotDarkmode = "darkmode"

	svgMediaType = "image/svg+xml"

	NotSVGMessage = "Selected file is not SVG.\nPlease choose SVG file! :)"
)

// SlotNames is the file-name vocabulary in payload order.
var SlotNames = common.FileNames

var (
	ErrUnknownSlot = errors.New("unknown file slot")
	ErrNotSVG      = errors.New("file is not svg")
)

// readFile is a test seam for os.ReadFile.
var readFile = os.ReadFile

// SlotFile is an accepted file.
type SlotFile struct {
	Path string
	SVG  string
}

// Slots holds at most one accepted SVG file per slot name.
type Slots struct {
	mu       sync.Mutex
	files    map[string]SlotFile
	notifier notify.Notifier
}

func NewSlots(n notify.Notifier) *Slots {
	return &Slots{files: make(map[string]SlotFile), notifier: n}
}

// MediaType returns the declared media type of path, derived from its
// extension, without parameters.
func MediaType(path string) string {
	t := mime.TypeByExtension(filepath.Ext(path))
	if t == "" {
		return "application/octet-stream"
	}
	mt, _, err := mime.ParseMediaType(t)
	if err != nil {
		return t
	}
	return mt
}

// Select validates path and, if it is an SVG file, stores its text in slot.
// A rejected file leaves the slot exactly as it was.
func (s *Slots) Select(slot, path string) error {
	if !common.IsFileName(slot) {
		return fmt.Errorf("%w: %q", ErrUnknownSlot, slot)
	}
	// .svgz also maps to image/svg+xml but is gzip, not text
	if MediaType(path) != svgMediaType || !strings.EqualFold(filepath.Ext(path), ".svg") {
		s.notifier.Error(NotSVGMessage)
		return fmt.Errorf("%w: %s", ErrNotSVG, path)
	}

	data, err := readFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		s.notifier.Error(NotSVGMessage)
		return fmt.Errorf("%w: %s is not text", ErrNotSVG, path)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[slot] = SlotFile{Path: path, SVG: string(data)}
	return nil
}

func (s *Slots) Clear(slot string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, slot)
}

// Preview returns the file currently held by slot.
func (s *Slots) Preview(slot string) (SlotFile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[slot]
	return f, ok
}

// Filled returns the names of the occupied slots in vocabulary order.
func (s *Slots) Filled() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, name := range SlotNames {
		if _, ok := s.files[name]; ok {
			out = append(out, name)
		}
	}
	return out
}
