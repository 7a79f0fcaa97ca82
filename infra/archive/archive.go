// Package archive bundles save files into a zip archive and reads them back,
// so that a save directory can be moved to another machine in one file.
// Every file is decoded as a save file on both ways, a corrupt save is
// never packed nor unpacked.
package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mzki/pluto/filesystem"
	"github.com/mzki/pluto/savefile"
)

// SaveExt is the extension of the files packed into an archive.
const SaveExt = ".sav"

// Pack archives saves of srcFsys into a zip file at outPath.
// It returns the cleaned output path.
// The outPath is with respect to outFsys and files are with respect to srcFsys respectively.
// The output is replaced only when every file is a valid save for cd.
func Pack(outFsys filesystem.FileSystem, outPath string, srcFsys fs.FS, files []string, cd savefile.Codec) (outputPath string, err error) {
	var archiveBaseName string
	if _, base := filepath.Split(outPath); len(base) == 0 {
		return "", fmt.Errorf("empty base name is not allowed for output path: %v", outPath)
	} else {
		outputPath = filepath.Clean(outPath)
		archiveBaseName = strings.TrimSuffix(base, filepath.Ext(base))
	}

	var buf bytes.Buffer
	if err := PackWriter(&buf, archiveBaseName, srcFsys, files, cd); err != nil {
		return "", err
	}
	if err := filesystem.WriteFile(outFsys, outputPath, buf.Bytes()); err != nil {
		return "", fmt.Errorf("could not write output file: %v: %w", outputPath, err)
	}
	return outputPath, nil
}

// PackWriter is alternative API with io.Writer for Pack.
// Entries are named archiveBaseName/<file> in the archive.
func PackWriter(w io.Writer, archiveBaseName string, srcFsys fs.FS, files []string, cd savefile.Codec) (err error) {
	zWriter := zip.NewWriter(w)
	defer func() {
		closeErr := zWriter.Close()
		err = errors.Join(err, closeErr)
	}()

	for _, f := range files {
		// use closure for deferring Close inside each iteration.
		err = func() error {
			srcFile, err := srcFsys.Open(filepath.ToSlash(f))
			if err != nil {
				return err
			}
			defer srcFile.Close()

			if err := addSave(zWriter, srcFile, archiveBaseName, filepath.ToSlash(f), cd); err != nil {
				return fmt.Errorf("failed to add %v into zip: %w", f, err)
			}
			return nil
		}()
		if err != nil {
			return
		}
	}
	return
}

func addSave(zWriter *zip.Writer, srcFile fs.File, archiveBaseName string, filePath string, cd savefile.Codec) error {
	finfo, err := srcFile.Stat()
	if err != nil {
		return err
	}
	p, err := readLimited(srcFile, filePath, MaxSaveSize)
	if err != nil {
		return err
	}
	if _, err := cd.Decode(p); err != nil {
		return err
	}

	header, err := zip.FileInfoHeader(finfo)
	if err != nil {
		return err
	}
	header.Name = path.Join(archiveBaseName, filePath)
	header.Method = zip.Deflate
	// check wthether potential of zip slip
	if !strings.HasPrefix(header.Name, archiveBaseName+"/") {
		return fmt.Errorf("potentially zip slip. archive file (%v) must be under %v, but points upper directory", header.Name, archiveBaseName)
	}

	w, err := zWriter.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = w.Write(p)
	return err
}

// CollectSaves returns the save files directly under relDir of fsys, sorted.
// files are relative path from the root of fsys.
// If user wants to collect files from the root of fsys, relDir can be ".".
func CollectSaves(fsys fs.FS, relDir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, relDir)
	if err != nil {
		return nil, fmt.Errorf("failed to search files in %v: %w", relDir, err)
	}
	files := make([]string, 0, len(entries))
	for _, d := range entries {
		if d.IsDir() || path.Ext(d.Name()) != SaveExt {
			continue
		}
		files = append(files, path.Join(relDir, d.Name()))
	}
	sort.Strings(files)
	return files, nil
}
