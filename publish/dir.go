// Package publish makes the rendered dashboard available to its readers.
package publish

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/commission"
	"github.com/google/uuid"
)

const (
	tokenFile = ".token"
	pageFile  = "index.html"
)

// Dir publishes the dashboard as <Root>/<token>/index.html.
//
// The token is a random uuid created on the first publication and kept in
// <Root>/.token, so that the page address is not guessable yet stable across runs.
// Root is meant to be served by a static web server or by the serve command.
type Dir struct {
	Root string
}

// Token returns the publication token, creating it if needed.
func (d *Dir) Token() (string, error) {
	path := filepath.Join(d.Root, tokenFile)
	data, err := os.ReadFile(path)
	if err == nil {
		token := strings.TrimSpace(string(data))
		if _, err := uuid.Parse(token); err != nil {
			return "", fmt.Errorf("invalid token in %q: %w", path, err)
		}
		return token, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}
	if err := os.MkdirAll(d.Root, 0755); err != nil {
		return "", err
	}
	token := uuid.NewString()
	if err := os.WriteFile(path, []byte(token+"\n"), 0600); err != nil {
		return "", err
	}
	return token, nil
}

// PagePath returns the path of the published page, relative to Root.
func (d *Dir) PagePath() (string, error) {
	token, err := d.Token()
	if err != nil {
		return "", err
	}
	return "/" + token + "/" + pageFile, nil
}

// Publish replaces the published page with page, and returns its path relative to Root.
// The previous page stays in place if anything fails.
func (d *Dir) Publish(ctx context.Context, page []byte) (string, error) {
	fail := func(err error) (string, error) {
		return "", &commission.TransportError{Target: d.Root, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	rel, err := d.PagePath()
	if err != nil {
		return fail(err)
	}
	path := filepath.Join(d.Root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fail(err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".index-*.html")
	if err != nil {
		return fail(err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(page); err != nil {
		tmp.Close()
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		return fail(err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fail(err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fail(err)
	}
	return rel, nil
}
