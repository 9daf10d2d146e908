// Package todo finds to-do style annotations (TODO, FIXME, ...) in source
// comments.
package todo

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Annotation is one tagged comment line.
type Annotation struct {
	Line  int    `json:"line"` // 1-based
	Tag   string `json:"tag"`
	Owner string `json:"owner,omitempty"`
	Text  string `json:"text"`
}

// String renders the annotation the way it is sent to the UI.
func (a Annotation) String() string {
	tag := a.Tag
	if a.Owner != "" {
		tag += "(" + a.Owner + ")"
	}
	if a.Text == "" {
		return tag
	}
	return tag + ": " + a.Text
}

var tagPattern = regexp.MustCompile(`\b(TODO|FIXME|HACK|XXX|NOTE)(?:\(([^)]*)\))?(?::|\b)\s*(.*)$`)

// Scan returns the annotations in source. Files in a supported language
// only match inside comments; anything else is scanned line by line.
func Scan(source []byte, filename string) ([]Annotation, error) {
	lang := grammar(DetectLanguage(filename))
	if lang == nil {
		return scanLines(source, 1), nil
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang)

	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}
	defer tree.Close()

	var found []Annotation
	walk(tree.RootNode(), source, &found)
	return found, nil
}

// walk collects annotations from comment nodes.
func walk(node *sitter.Node, source []byte, found *[]Annotation) {
	if strings.Contains(node.Type(), "comment") {
		text := source[node.StartByte():node.EndByte()]
		*found = append(*found, scanLines(text, int(node.StartPoint().Row)+1)...)
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		walk(node.Child(i), source, found)
	}
}

func scanLines(text []byte, firstLine int) []Annotation {
	var found []Annotation

	sc := bufio.NewScanner(bytes.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := firstLine
	for sc.Scan() {
		if a, ok := parseLine(sc.Text()); ok {
			a.Line = line
			found = append(found, a)
		}
		line++
	}
	return found
}

func parseLine(s string) (Annotation, bool) {
	m := tagPattern.FindStringSubmatch(s)
	if m == nil {
		return Annotation{}, false
	}
	text := strings.TrimSpace(m[3])
	text = strings.TrimSpace(strings.TrimSuffix(text, "*/"))
	text = strings.TrimSpace(strings.TrimSuffix(text, "-->"))
	return Annotation{
		Tag:   m[1],
		Owner: strings.TrimSpace(m[2]),
		Text:  text,
	}, true
}
