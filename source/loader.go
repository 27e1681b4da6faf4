// Package source turns a list of file paths into the flat line stream,
// without blank or comment-only lines, that the rest of the pipeline
// consumes (a trailing "#" comment is left for the lexer), the way
// parser/file.go and parser/preprocessor.go turn files into parser input
// for the reference lexer — minus the include/conditional machinery this
// instruction set's assembler source has no use for.
package source

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/b-inary/gaia-software/diag"
)

// GeneratedFile is the pseudo-filename used for the synthetic lines of a
// -f end-of-program marker, which do not come from any real input file.
const GeneratedFile = "<generated>"

// Line is one trimmed, non-blank, non-comment source line tagged with its
// origin, the unit every later stage threads through as a diag.Pos.
type Line struct {
	Text string
	File string
	Num  int
}

// Cache holds every line of every loaded file, indexed the way the
// reference implementation's srcs[filename][lineno] dict does, so a
// diagnostic or a listing can echo the original text.
type Cache struct {
	files map[string]map[int]string
}

func newCache() *Cache {
	return &Cache{files: make(map[string]map[int]string)}
}

func (c *Cache) put(file string, num int, text string) {
	m, ok := c.files[file]
	if !ok {
		m = make(map[int]string)
		c.files[file] = m
	}
	m[num] = text
}

// Line returns the originally-logged text for a position, if any.
func (c *Cache) Line(pos diag.Pos) (string, bool) {
	m, ok := c.files[pos.File]
	if !ok {
		return "", false
	}
	s, ok := m[pos.Line]
	return s, ok
}

// Result is the loader's output: the flat stream plus enough bookkeeping
// to answer "is this file a library" and to echo source for diagnostics.
type Result struct {
	Lines     []Line
	Cache     *Cache
	Libraries map[string]bool
}

// Load reads libraryPaths followed by inputPaths (matching the CLI
// convention that -l files are logically prepended to the input list),
// drops blank and comment-only lines, and appends one trailing ".align 4"
// after the last file's lines so that any data
// directives at the tail of the program do not leave the instruction
// stream misaligned for whatever follows it in the address space.
func Load(libraryPaths, inputPaths []string) (*Result, error) {
	cache := newCache()
	libs := make(map[string]bool, len(libraryPaths))
	var lines []Line

	readOne := func(path string) error {
		rel, err := filepath.Rel(".", path)
		if err != nil {
			rel = path
		}
		f, err := os.Open(rel)
		if err != nil {
			if os.IsNotExist(err) {
				return &diag.Error{Kind: diag.KindFileNotFound, Message: fmt.Sprintf("file does not exist: %s", rel)}
			}
			return &diag.Error{Kind: diag.KindIOError, Message: err.Error()}
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		num := 0
		for scanner.Scan() {
			num++
			text := strings.TrimSpace(scanner.Text())
			if text == "" || text[0] == '#' {
				continue
			}
			cache.put(rel, num, text)
			lines = append(lines, Line{Text: text, File: rel, Num: num})
		}
		if err := scanner.Err(); err != nil {
			return &diag.Error{Kind: diag.KindIOError, Message: err.Error()}
		}
		return nil
	}

	for _, p := range libraryPaths {
		rel, err := filepath.Rel(".", p)
		if err != nil {
			rel = p
		}
		libs[rel] = true
		if err := readOne(p); err != nil {
			return nil, err
		}
	}
	for _, p := range inputPaths {
		if err := readOne(p); err != nil {
			return nil, err
		}
	}

	if len(lines) > 0 {
		last := lines[len(lines)-1]
		lines = append(lines, Line{Text: ".align 4", File: last.File, Num: last.Num})
	}

	return &Result{Lines: lines, Cache: cache, Libraries: libs}, nil
}

// AppendEndMarker appends the two synthetic lines the -f flag installs: a
// .global declaration and the label itself, both attributed to the
// generated pseudo-file so they can only ever be reached through the
// global lookup path, never through an own-file match.
func AppendEndMarker(lines []Line, label string) []Line {
	return append(lines,
		Line{Text: ".global " + label, File: GeneratedFile, Num: 0},
		Line{Text: label + ":", File: GeneratedFile, Num: 0},
	)
}
