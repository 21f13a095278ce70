// Package processors provides built-in post-processors for generated JVM sources.
package processors

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/cpcf/weftgen/lang"
)

// DefaultBanner marks a file as generated.
const DefaultBanner = "Code generated by weftgen. DO NOT EDIT."

// Header prepends a line comment banner to files with one of its extensions.
// Files that already start with the banner are left alone.
//
//	eng.AddPostProcessor(processors.NewHeader(lang.Scala))
type Header struct {
	// Banner is the comment text without the leading "//".
	Banner string
	// Extensions lists the file extensions, with dot, the header applies to.
	Extensions []string
}

// NewHeader returns a header processor for the extension of each language.
func NewHeader(languages ...lang.Language) *Header {
	h := &Header{Banner: DefaultBanner}
	for _, l := range languages {
		h.Extensions = append(h.Extensions, l.Extension())
	}
	return h
}

func (h *Header) Name() string {
	return "header"
}

func (h *Header) ProcessContent(filePath string, content []byte) ([]byte, error) {
	if !h.applies(filePath) {
		return content, nil
	}

	line := "// " + h.Banner + "\n"
	if bytes.HasPrefix(content, []byte(line)) {
		return content, nil
	}

	out := make([]byte, 0, len(line)+1+len(content))
	out = append(out, line...)
	out = append(out, '\n')
	return append(out, content...), nil
}

func (h *Header) applies(filePath string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	for _, e := range h.Extensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}
