package processors

import "bytes"

// Newline converts CRLF line endings to LF, strips trailing spaces and tabs
// from every line, and ends the file with exactly one newline.
type Newline struct{}

func NewNewline() *Newline {
	return &Newline{}
}

func (n *Newline) Name() string {
	return "newline"
}

func (n *Newline) ProcessContent(filePath string, content []byte) ([]byte, error) {
	if len(content) == 0 {
		return content, nil
	}

	content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	lines := bytes.Split(content, []byte("\n"))
	for i, line := range lines {
		lines[i] = bytes.TrimRight(line, " \t")
	}

	out := bytes.TrimRight(bytes.Join(lines, []byte("\n")), "\n")
	return append(out, '\n'), nil
}
