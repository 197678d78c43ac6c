package utils

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xlab/treeprint"
	"golang.org/x/net/html"
)

var contentExtensions = map[string]bool{
	".md":   true,
	".txt":  true,
	".html": true,
	".htm":  true,
}

// LoadFilesFromDir returns every content file under dir, sorted by path.
func LoadFilesFromDir(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if contentExtensions[strings.ToLower(filepath.Ext(path))] {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	sort.Strings(paths)
	return paths, nil
}

func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// HTMLToText keeps the visible text nodes of an HTML document, one per line.
func HTMLToText(src string) (string, error) {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return "", err
	}

	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style" || n.Data == "noscript") {
			return
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.Join(parts, "\n"), nil
}

// BuildTree renders the given file paths, relative to root, as a tree.
func BuildTree(root string, paths []string) string {
	tree := treeprint.New()
	tree.SetValue(filepath.Base(root))

	branches := map[string]treeprint.Tree{"": tree}
	for _, p := range paths {
		rel, err := filepath.Rel(root, p)
		if err != nil {
			rel = p
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		parent := ""
		for i, part := range parts {
			key := strings.Join(parts[:i+1], "/")
			if i == len(parts)-1 {
				branches[parent].AddNode(part)
				break
			}
			if _, ok := branches[key]; !ok {
				branches[key] = branches[parent].AddBranch(part)
			}
			parent = key
		}
	}
	return tree.String()
}
