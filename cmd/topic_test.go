package cmd

import (
	"strings"
	"testing"

	"github.com/etnz/commission/docs"
)

func TestTopicList(t *testing.T) {
	md, err := topicList()
	if err != nil {
		t.Fatalf("topicList() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(md), "\n")
	names := docs.Names()
	if len(lines) != len(names)+2 {
		t.Fatalf("topicList() has %d lines, want a header and %d topics:\n%s", len(lines), len(names), md)
	}
	for i, name := range names {
		if !strings.HasPrefix(lines[i+2], "| "+name+" | ") {
			t.Errorf("line %d = %q, want topic %q", i+2, lines[i+2], name)
		}
	}
}
