package notify

import (
	"os"
	"strconv"
	"strings"

	"github.com/kienohsung/an-ninh-noi-bo-final/internal/filex"
)

// MessagePointer is a single-slot store for the id of the live
// pending-list message, persisted as a flat file so it survives
// restarts. A channel has at most one such message at a time.
type MessagePointer struct {
	path string
}

func NewMessagePointer(path string) *MessagePointer {
	return &MessagePointer{path: path}
}

// Read returns the stored message id. A missing file or unparsable
// content reads as "no pointer"; the next refresh simply posts fresh.
func (p *MessagePointer) Read() (int64, bool) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (p *MessagePointer) Write(messageID int64) error {
	if _, err := filex.EnsureParentDir(p.path); err != nil {
		return err
	}
	return os.WriteFile(p.path, []byte(strconv.FormatInt(messageID, 10)), 0o600)
}

func (p *MessagePointer) Clear() error {
	err := os.Remove(p.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
