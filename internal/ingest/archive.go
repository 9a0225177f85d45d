package ingest

import (
	"archive/zip"
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/CSD-2025/coursehub-service/internal/models"
)

// ParseSheetArchive lists the file members of a zip archive as archive
// entries. The identifier token is the member's base name; the artifact
// reference keeps the full member path so storage glue can locate the file
// later. Directories and hidden bookkeeping entries are skipped.
func ParseSheetArchive(data []byte) ([]models.ArchiveEntry, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	entries := make([]models.ArchiveEntry, 0, len(reader.File))
	for _, member := range reader.File {
		if member.FileInfo().IsDir() {
			continue
		}
		name := path.Base(member.Name)
		if strings.HasPrefix(name, ".") || strings.HasPrefix(member.Name, "__MACOSX/") {
			continue
		}
		entries = append(entries, models.ArchiveEntry{
			IdentifierToken: name,
			ArtifactRef:     member.Name,
		})
	}

	return entries, nil
}
