package migrate

import (
	"fmt"
	"strings"
)

// sqliteSignature is the start of the 16-byte header every SQLite database
// file begins with ("SQLite format 3\x00"); the first 13 bytes are enough to
// distinguish the format.
const sqliteSignature = "SQLite format"

// minFileSize is the smallest size that can hold the database file header.
const minFileSize = 16

// ValidateFile checks that an uploaded file looks like a legacy database
// before anything is parsed: accepted extension, plausible size, and the
// SQLite byte signature. Errors are user-facing messages; nothing has been
// touched when validation fails.
func ValidateFile(name string, data []byte) error {
	lower := strings.ToLower(name)
	if !strings.HasSuffix(lower, ".sqlite") && !strings.HasSuffix(lower, ".db") {
		return fmt.Errorf("invalid file format: please select a .sqlite or .db file")
	}
	if len(data) < minFileSize {
		return fmt.Errorf("file is too small to be a valid SQLite database")
	}
	if string(data[:len(sqliteSignature)]) != sqliteSignature {
		return fmt.Errorf("file does not appear to be a valid SQLite database")
	}
	return nil
}
