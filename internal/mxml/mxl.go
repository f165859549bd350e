package mxml

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

var zipMagic = []byte("PK\x03\x04")

// IsCompressed reports whether data looks like an MXL (zip) container.
func IsCompressed(data []byte) bool {
	return bytes.HasPrefix(data, zipMagic)
}

// ExtractCompressed pulls the score document out of an MXL container.
// The container's META-INF/container.xml names the root file; when the
// manifest is absent or broken, the first .musicxml or .xml entry
// outside META-INF is used instead.
func ExtractCompressed(data []byte) ([]byte, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open mxl container: %w", err)
	}

	if name := containerRootFile(reader); name != "" {
		if content, err := readZipEntry(reader, name); err == nil {
			return content, nil
		}
	}

	for _, f := range reader.File {
		if strings.HasPrefix(f.Name, "META-INF/") {
			continue
		}
		if strings.HasSuffix(f.Name, ".musicxml") || strings.HasSuffix(f.Name, ".xml") {
			return readZipEntry(reader, f.Name)
		}
	}
	return nil, errors.New("mxl container holds no score document")
}

func containerRootFile(reader *zip.Reader) string {
	content, err := readZipEntry(reader, "META-INF/container.xml")
	if err != nil {
		return ""
	}

	var manifest struct {
		Rootfiles []struct {
			FullPath string `xml:"full-path,attr"`
		} `xml:"rootfiles>rootfile"`
	}
	if err := xml.Unmarshal(content, &manifest); err != nil {
		return ""
	}
	if len(manifest.Rootfiles) == 0 {
		return ""
	}
	return manifest.Rootfiles[0].FullPath
}

func readZipEntry(reader *zip.Reader, name string) ([]byte, error) {
	for _, f := range reader.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("entry %s not found in container", name)
}
