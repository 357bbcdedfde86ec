// Package archive builds the zip packages produced for each project.
//
// Packages are assembled in layers: each Append call adds the files of one
// base directory, with entry names relative to that directory. When a layer
// adds a name that an earlier layer already wrote, the later file replaces the
// earlier one, so an archive never holds duplicate names and the last layer
// wins.
package archive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/dyluth/mcprebuild/internal/fileset"
)

// Append adds files from baseDir to the archive at archivePath, creating the
// archive if needed. files are baseDir-relative paths; nil means every file
// under baseDir. Returns the number of entries written by this call.
func Append(archivePath, baseDir string, files []string) (int, error) {
	if files == nil {
		all, err := fileset.Collect(baseDir, fileset.Options{Relative: true, Hidden: true})
		if err != nil {
			return 0, fmt.Errorf("failed to collect files under %s: %w", baseDir, err)
		}
		files = all.Sorted()
	}

	layer := make(map[string]string, len(files))
	for _, rel := range files {
		layer[entryName(rel)] = filepath.Join(baseDir, rel)
	}
	names := make([]string, 0, len(layer))
	for name := range layer {
		names = append(names, name)
	}
	sort.Strings(names)

	if err := os.MkdirAll(filepath.Dir(archivePath), 0755); err != nil {
		return 0, fmt.Errorf("failed to create directory for %s: %w", archivePath, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(archivePath), ".archive-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temporary archive: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	w := zip.NewWriter(tmp)

	if err := copyExisting(w, archivePath, layer); err != nil {
		tmp.Close()
		return 0, err
	}

	for _, name := range names {
		if err := addFile(w, name, layer[name]); err != nil {
			tmp.Close()
			return 0, err
		}
	}

	if err := w.Close(); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("failed to finalize %s: %w", archivePath, err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("failed to finalize %s: %w", archivePath, err)
	}
	if err := os.Rename(tmpName, archivePath); err != nil {
		return 0, fmt.Errorf("failed to replace %s: %w", archivePath, err)
	}

	return len(names), nil
}

// copyExisting rewrites the entries of an existing archive, dropping the ones
// about to be replaced.
func copyExisting(w *zip.Writer, archivePath string, replaced map[string]string) error {
	r, err := zip.OpenReader(archivePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", archivePath, err)
	}
	defer r.Close()

	for _, f := range r.File {
		if _, ok := replaced[f.Name]; ok {
			continue
		}

		header := &zip.FileHeader{
			Name:     f.Name,
			Method:   f.Method,
			Modified: f.Modified,
			Comment:  f.Comment,
		}
		header.SetMode(f.Mode())

		dst, err := w.CreateHeader(header)
		if err != nil {
			return fmt.Errorf("failed to copy entry %s: %w", f.Name, err)
		}
		src, err := f.Open()
		if err != nil {
			return fmt.Errorf("failed to read entry %s: %w", f.Name, err)
		}
		_, err = io.Copy(dst, src)
		src.Close()
		if err != nil {
			return fmt.Errorf("failed to copy entry %s: %w", f.Name, err)
		}
	}
	return nil
}

func addFile(w *zip.Writer, name, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("failed to build header for %s: %w", path, err)
	}
	header.Name = name
	header.Method = zip.Deflate

	dst, err := w.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to add %s: %w", name, err)
	}

	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer src.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// Entries lists the entry names of an archive in stored order.
func Entries(archivePath string) ([]string, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", archivePath, err)
	}
	defer r.Close()

	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	return names, nil
}

// ReadEntry returns the contents of one entry.
func ReadEntry(archivePath, name string) ([]byte, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", archivePath, err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to read entry %s: %w", name, err)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("entry %s not found in %s", name, archivePath)
}

// entryName converts a relative OS path to a zip entry name.
func entryName(rel string) string {
	return strings.TrimPrefix(filepath.ToSlash(filepath.Clean(rel)), "./")
}
