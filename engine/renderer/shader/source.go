package shader

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/Carmen-Shannon/creethor/engine/renderer"
)

// typeTag starts a line that opens a shader section, e.g. "#type vertex".
const typeTag = "#type"

const (
	sectionVertex   = "vertex"
	sectionFragment = "fragment"
)

// Source is a shader file split into its vertex and fragment sections.
type Source struct {
	// Name is the file path or label the source was read from, used in error reports.
	Name string
	// Vertex is the body of the "#type vertex" section.
	Vertex string
	// Fragment is the body of the "#type fragment" section.
	Fragment string
}

// Section returns the body compiled for the given stage.
//
// Parameters:
//   - stage: the pipeline stage
//
// Returns:
//   - string: the section body, empty for an unknown stage
func (s *Source) Section(stage renderer.ShaderStage) string {
	switch stage {
	case renderer.ShaderStageVertex:
		return s.Vertex
	case renderer.ShaderStageFragment:
		return s.Fragment
	default:
		return ""
	}
}

// Parse splits shader text into its vertex and fragment sections. A section starts at a line
// beginning with "#type <identifier>" and its body runs from after that line's terminator
// ("\n" or "\r\n") to the start of the next "#type" line or the end of the text.
// Text before the first tag is ignored. Sections may appear in either order.
//
// Parameters:
//   - name: the file path or label used in error reports
//   - text: the shader text
//
// Returns:
//   - *Source: the parsed sections
//   - error: *ParseError for an unknown, repeated or missing section
func Parse(name, text string) (*Source, error) {
	src := &Source{Name: name}
	seen := make(map[string]bool, 2)

	var (
		current   string
		bodyStart int
	)
	closeSection := func(end int) {
		switch current {
		case sectionVertex:
			src.Vertex = text[bodyStart:end]
		case sectionFragment:
			src.Fragment = text[bodyStart:end]
		}
	}

	lineNum := 0
	for pos := 0; pos < len(text); {
		lineNum++
		end := strings.IndexByte(text[pos:], '\n')
		next := len(text)
		if end >= 0 {
			end += pos
			next = end + 1
		} else {
			end = len(text)
		}
		line := strings.TrimSuffix(text[pos:end], "\r")

		tag, ok, err := parseTypeTag(name, line, lineNum)
		if err != nil {
			return nil, err
		}
		if ok {
			if current != "" {
				closeSection(pos)
			}
			if seen[tag] {
				return nil, &ParseError{File: name, Tag: tag, Line: lineNum, Duplicate: true}
			}
			seen[tag] = true
			current = tag
			bodyStart = next
		}
		pos = next
	}
	if current != "" {
		closeSection(len(text))
	}

	for _, required := range []string{sectionVertex, sectionFragment} {
		if !seen[required] {
			return nil, &ParseError{File: name, Missing: required}
		}
	}
	return src, nil
}

// parseTypeTag reports whether a line opens a section and returns the section identifier.
// Lines that do not begin with the tag return ok == false and no error.
func parseTypeTag(name, line string, lineNum int) (string, bool, error) {
	rest, ok := strings.CutPrefix(strings.TrimLeft(line, " \t"), typeTag)
	if !ok {
		return "", false, nil
	}
	// "#typedef" and similar are not tags.
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return "", false, nil
	}

	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return "", false, &ParseError{File: name, Line: lineNum}
	}
	switch fields[0] {
	case sectionVertex, sectionFragment:
		return fields[0], true, nil
	default:
		return "", false, &ParseError{File: name, Tag: fields[0], Line: lineNum}
	}
}

// Load reads and parses a shader file from the operating system's file system.
//
// Parameters:
//   - path: the path of the shader file
//
// Returns:
//   - *Source: the parsed sections
//   - error: *IOError if the file cannot be read, *ParseError if it is malformed
func Load(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Path: path, Err: err}
	}
	return Parse(path, string(data))
}

// LoadFS reads and parses a shader file from fsys, such as an embedded asset directory.
//
// Parameters:
//   - fsys: the file system to read from
//   - path: the slash-separated path within fsys
//
// Returns:
//   - *Source: the parsed sections
//   - error: *IOError if the file cannot be read, *ParseError if it is malformed
func LoadFS(fsys fs.FS, path string) (*Source, error) {
	if fsys == nil {
		return nil, &IOError{Path: path, Err: errors.New("nil file system")}
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, &IOError{Path: path, Err: err}
	}
	return Parse(path, string(data))
}
