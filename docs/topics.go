// Package docs holds the recon documentation, one markdown topic per file.
//
// readme.md is the index: it lists every topic as a "* name: summary" line, in reading
// order.
package docs

import (
	"bufio"
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"slices"
	"strings"
)

//go:embed *.md
var files embed.FS

const index = "readme"

// Topic is an entry of the documentation index.
type Topic struct {
	Name    string
	Summary string
}

var entry = regexp.MustCompile(`^\*\s+([^:\s]+):\s*(.*)$`)

// Topics returns the topics of the index, in reading order.
func Topics() ([]Topic, error) {
	data, err := files.ReadFile(index + ".md")
	if err != nil {
		return nil, err
	}
	var topics []Topic
	sc := bufio.NewScanner(strings.NewReader(string(data)))
	for sc.Scan() {
		if m := entry.FindStringSubmatch(sc.Text()); m != nil {
			topics = append(topics, Topic{Name: m[1], Summary: strings.TrimSpace(m[2])})
		}
	}
	return topics, sc.Err()
}

// Names returns the topic names, in reading order.
func Names() []string {
	topics, _ := Topics()
	names := make([]string, len(topics))
	for i, t := range topics {
		names[i] = t.Name
	}
	return names
}

// Get returns the markdown of the named topics, "*" standing for every topic, and
// "readme" for the index. Without name it returns the index.
func Get(names ...string) (string, error) {
	if len(names) == 0 {
		names = []string{index}
	}
	var b strings.Builder
	for _, name := range names {
		expanded := []string{name}
		if name == "*" {
			expanded = Names()
		}
		for _, n := range expanded {
			content, err := files.ReadFile(n + ".md")
			if err != nil {
				return "", fmt.Errorf("unknown topic %q, see 'recon topic' for the list", n)
			}
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.Write(content)
		}
	}
	return b.String(), nil
}

// Check reports the topics missing from the index, and the indexed topics without a file.
func Check() error {
	indexed := Names()
	var problems []string
	onDisk, err := fs.Glob(files, "*.md")
	if err != nil {
		return err
	}
	for _, f := range onDisk {
		name := strings.TrimSuffix(f, ".md")
		if name != index && !slices.Contains(indexed, name) {
			problems = append(problems, fmt.Sprintf("%s.md is not listed in %s.md", name, index))
		}
	}
	for _, name := range indexed {
		if !slices.Contains(onDisk, name+".md") {
			problems = append(problems, fmt.Sprintf("topic %q has no file", name))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("documentation index: %s", strings.Join(problems, "; "))
	}
	return nil
}
