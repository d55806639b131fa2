package idea

import (
	"fmt"
	"path/filepath"
	"strings"
)

// AttachmentKey builds attachments/<ownerID>/<unixMilli>_<name> with name reduced to
// [A-Za-z0-9._-].
func AttachmentKey(ownerID string, unixMilli int64, fileName string) string {
	return fmt.Sprintf("attachments/%s/%d_%s", ownerID, unixMilli, sanitizeFileName(fileName))
}

func sanitizeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "file"
	}
	return out
}
