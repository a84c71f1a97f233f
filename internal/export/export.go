// Package export locates, unpacks and inspects the "Chart and Images"
// archive downloaded from the console.
package export

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var ErrNotFound = errors.New("export not found")

var archiveSuffixes = []string{".tar.gz", ".tgz", ".tar", ".zip"}

func isArchive(name string) bool {
	for _, s := range archiveSuffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

// FindArchive returns the newest archive in dir whose name starts with app.
func FindArchive(dir, app string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to list downloads: %w", err)
	}
	var best string
	var newest int64
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, app) || !isArchive(name) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return "", err
		}
		if mod := info.ModTime().UnixNano(); best == "" || mod > newest {
			best, newest = name, mod
		}
	}
	if best == "" {
		return "", fmt.Errorf("%w: no archive for %s in %s", ErrNotFound, app, dir)
	}
	return filepath.Join(dir, best), nil
}

// Extract unpacks a zip, tar or gzipped tar archive into dest. Entries
// that would land outside dest are rejected. Nested image archives are
// kept as files.
func Extract(path, dest string) error {
	root, err := filepath.Abs(dest)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", root, err)
	}
	if strings.HasSuffix(path, ".zip") {
		return extractZip(path, root)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") || strings.HasSuffix(path, ".tgz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("failed to read gzip stream: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read archive entry: %w", err)
		}
		target, err := within(root, hdr.Name)
		if err != nil {
			return err
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeFile(target, tr, hdr.FileInfo().Mode().Perm()); err != nil {
				return err
			}
		}
	}
}

func extractZip(path, root string) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer zr.Close()
	for _, zf := range zr.File {
		target, err := within(root, zf.Name)
		if err != nil {
			return err
		}
		if zf.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			return fmt.Errorf("failed to read archive entry: %w", err)
		}
		err = writeFile(target, rc, zf.Mode().Perm())
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// within joins name to root and rejects results outside root.
func within(root, name string) (string, error) {
	target := filepath.Join(root, name)
	if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %q escapes %s", name, root)
	}
	return target, nil
}

func writeFile(path string, r io.Reader, perm fs.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm|0o200)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("failed to extract %s: %w", path, err)
	}
	return out.Close()
}

// Contents is what CheckChartAndImages found.
type Contents struct {
	Charts []string
	Images []string
}

// CheckChartAndImages walks an extracted export and requires at least one
// Helm chart (a Chart.yaml or a packaged .tgz chart) and one image tarball.
func CheckChartAndImages(dir string) (*Contents, error) {
	c := &Contents{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, _ := filepath.Rel(dir, path)
		switch name := d.Name(); {
		case name == "Chart.yaml", strings.HasSuffix(name, ".tgz"):
			c.Charts = append(c.Charts, rel)
		case strings.HasSuffix(name, ".tar"):
			c.Images = append(c.Images, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to inspect %s: %w", dir, err)
	}
	var errs []error
	if len(c.Charts) == 0 {
		errs = append(errs, fmt.Errorf("%w: no helm chart in %s", ErrNotFound, dir))
	}
	if len(c.Images) == 0 {
		errs = append(errs, fmt.Errorf("%w: no image archive in %s", ErrNotFound, dir))
	}
	return c, errors.Join(errs...)
}
