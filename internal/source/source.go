// Package source reads stylesheets from CSS files and from the <style>
// elements of HTML documents.
package source

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Stdin is the path used for reading from standard input.
const Stdin = "-"

// Source is a single stylesheet within a file.
type Source struct {
	Path  string
	Index int // zero-based index of the <style> element, 0 for CSS files
	Text  string

	node *html.Node
}

// Name returns the path of the file, followed by the element index for
// stylesheets embedded in HTML.
func (s *Source) Name() string {
	if s.node == nil {
		return s.Path
	}
	return fmt.Sprintf("%s#style[%d]", s.Path, s.Index)
}

// File is a file holding one or more stylesheets.
type File struct {
	Path    string
	Size    int // length of the file contents in bytes
	Sources []*Source

	doc *goquery.Document
}

// IsHTML returns true if path names an HTML document.
func IsHTML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".xhtml":
		return true
	}
	return false
}

// Open reads the file at path. Stdin reads standard input as CSS.
func Open(path string) (*File, error) {
	if path == Stdin {
		return Load(os.Stdin, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f, path)
}

// Load reads a file from r. The path decides whether r is parsed as HTML.
func Load(r io.Reader, path string) (*File, error) {
	if IsHTML(path) {
		return LoadHTML(r, path)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return &File{Path: path, Size: len(b), Sources: []*Source{{Path: path, Text: string(b)}}}, nil
}

// LoadHTML parses an HTML document from r and extracts the text of every
// <style> element whose type is empty or text/css.
func LoadHTML(r io.Reader, path string) (*File, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	file := &File{Path: path, Size: len(b), doc: doc}
	doc.Find("style").Each(func(i int, s *goquery.Selection) {
		if typ, ok := s.Attr("type"); ok && !strings.EqualFold(strings.TrimSpace(typ), "text/css") {
			return
		}
		file.Sources = append(file.Sources, &Source{
			Path:  path,
			Index: i,
			Text:  s.Text(),
			node:  s.Get(0),
		})
	})
	return file, nil
}

// IsHTML returns true if the file was parsed as an HTML document.
func (f *File) IsHTML() bool { return f.doc != nil }

// Rewrite replaces the text of every source with the result of fn and
// returns the new file contents. HTML documents are rendered again in full,
// so markup outside <style> elements is normalized by the HTML parser.
func (f *File) Rewrite(fn func(s *Source) (string, error)) (string, error) {
	if f.doc == nil {
		var buf bytes.Buffer
		for _, s := range f.Sources {
			text, err := fn(s)
			if err != nil {
				return "", err
			}
			buf.WriteString(text)
		}
		return buf.String(), nil
	}

	for _, s := range f.Sources {
		text, err := fn(s)
		if err != nil {
			return "", err
		}
		setText(s.node, text)
	}
	return f.doc.Html()
}

// setText replaces the children of n with a single text node.
// Style elements are raw text so the text is rendered without escaping.
func setText(n *html.Node, text string) {
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}
