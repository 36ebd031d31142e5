package drive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

var ErrNotFound = errors.New("drive: not found")

type fileStore interface {
	ListFiles(ctx context.Context, folderID string) ([]*File, error)
	DownloadFile(ctx context.Context, fileID string, w io.Writer) error
	FindFolderByPath(ctx context.Context, path string) (string, error)
}

// SalesExportFetcher pulls the latest sales export (CSV or XLSX) out of a
// Drive folder and returns it as CSV.
type SalesExportFetcher struct {
	files fileStore
}

func NewSalesExportFetcher(s *Service) *SalesExportFetcher {
	return &SalesExportFetcher{files: s}
}

// FetchCSV finds fileName inside folderPath. The name may omit its
// extension; an empty name picks the most recently modified export.
func (f *SalesExportFetcher) FetchCSV(ctx context.Context, folderPath, fileName string) ([]byte, string, error) {
	folderID, err := f.files.FindFolderByPath(ctx, folderPath)
	if err != nil {
		return nil, "", err
	}

	files, err := f.files.ListFiles(ctx, folderID)
	if err != nil {
		return nil, "", err
	}

	file := pickExport(files, fileName)
	if file == nil {
		return nil, "", fmt.Errorf("%w: sales export %q in %q", ErrNotFound, fileName, folderPath)
	}

	var raw bytes.Buffer
	if err := f.files.DownloadFile(ctx, file.ID, &raw); err != nil {
		return nil, "", fmt.Errorf("failed to download %s: %w", file.Name, err)
	}

	log.Info().Str("file", file.Name).Int("bytes", raw.Len()).Msg("sales export downloaded from drive")

	if strings.EqualFold(filepath.Ext(file.Name), ".csv") {
		return raw.Bytes(), file.Name, nil
	}

	var out bytes.Buffer
	if err := convertXLSXToCSV(&raw, &out); err != nil {
		return nil, "", fmt.Errorf("failed to convert %s to csv: %w", file.Name, err)
	}
	return out.Bytes(), file.Name, nil
}

func pickExport(files []*File, name string) *File {
	var latest *File
	for _, file := range files {
		ext := strings.ToLower(filepath.Ext(file.Name))
		if ext != ".csv" && ext != ".xlsx" {
			continue
		}
		if name != "" {
			if strings.EqualFold(file.Name, name) || strings.EqualFold(strings.TrimSuffix(file.Name, filepath.Ext(file.Name)), name) {
				return file
			}
			continue
		}
		// RFC 3339 timestamps order lexically.
		if latest == nil || file.ModifiedTime > latest.ModifiedTime {
			latest = file
		}
	}
	return latest
}
