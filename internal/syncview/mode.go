package syncview

import (
	"fmt"
	"strings"
)

// Mode selects which panes are shown and whether they follow each other.
type Mode int

const (
	Synced Mode = iota
	EditorOnly
	PreviewOnly
)

var modeNames = map[Mode]string{
	Synced:      "synced",
	EditorOnly:  "editor",
	PreviewOnly: "preview",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Next returns the mode that follows m when cycling.
func (m Mode) Next() Mode {
	switch m {
	case Synced:
		return EditorOnly
	case EditorOnly:
		return PreviewOnly
	default:
		return Synced
	}
}

// ShowsEditor reports whether the editor pane is visible in m.
func (m Mode) ShowsEditor() bool { return m != PreviewOnly }

// ShowsPreview reports whether the preview pane is visible in m.
func (m Mode) ShowsPreview() bool { return m != EditorOnly }

// ParseMode accepts the names used in configuration files.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "synced", "sync", "split":
		return Synced, nil
	case "editor", "editor-only":
		return EditorOnly, nil
	case "preview", "preview-only":
		return PreviewOnly, nil
	default:
		return Synced, fmt.Errorf("unknown window mode %q", s)
	}
}
