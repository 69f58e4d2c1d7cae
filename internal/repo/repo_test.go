package repo

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefWebURL(t *testing.T) {
	assert.Equal(t, "https://github.com/acme/widgets",
		Ref{Owner: "acme", Repo: "widgets", Type: TypeGitHub}.WebURL())
	assert.Equal(t, "https://gitlab.com/acme/widgets",
		Ref{Owner: "acme", Repo: "widgets", Type: TypeGitLab}.WebURL())
	assert.Equal(t, "https://bitbucket.org/acme/widgets",
		Ref{Owner: "acme", Repo: "widgets", Type: TypeBitbucket}.WebURL())
	assert.Equal(t, "https://example.com/acme/widgets",
		Ref{Owner: "acme", Repo: "widgets", Type: TypeGitHub, URL: "https://example.com/acme/widgets"}.WebURL())
}

func TestFileURL(t *testing.T) {
	gh := Ref{Owner: "acme", Repo: "widgets", Type: TypeGitHub}
	assert.Equal(t, "https://github.com/acme/widgets/blob/main/src/app.go", FileURL(gh, "", "src/app.go"))
	assert.Equal(t, "https://github.com/acme/widgets/blob/dev/src/app.go", FileURL(gh, "dev", "src/app.go"))

	gl := Ref{Owner: "acme", Repo: "widgets", Type: TypeGitLab}
	assert.Equal(t, "https://gitlab.com/acme/widgets/-/blob/main/src/app.go", FileURL(gl, "main", "src/app.go"))

	bb := Ref{Owner: "acme", Repo: "widgets", Type: TypeBitbucket}
	assert.Equal(t, "https://bitbucket.org/acme/widgets/src/main/src/app.go", FileURL(bb, "main", "src/app.go"))

	local := Ref{Type: TypeLocal, LocalPath: "/tmp/x"}
	assert.Equal(t, "src/app.go", FileURL(local, "main", "src/app.go"))
}

func TestLocalListerWalks(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "node_modules", "dep"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# Widgets\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "app.go"), []byte("package main\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "node_modules", "dep", "index.js"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), []byte("x"), 0644))

	listing, err := LocalLister{}.List(context.Background(), Ref{Type: TypeLocal, LocalPath: dir})
	require.NoError(t, err)

	assert.Equal(t, []string{"README.md", "src/app.go"}, listing.FilePaths)
	assert.Equal(t, "# Widgets\n", listing.Readme)
	assert.Equal(t, "README.md\nsrc/app.go", listing.FileTree())
}

func TestLocalListerMissingDir(t *testing.T) {
	_, err := LocalLister{}.List(context.Background(), Ref{Type: TypeLocal, LocalPath: "/nonexistent/repo"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory not found")
}

func TestLocalListerNoPath(t *testing.T) {
	_, err := LocalLister{}.List(context.Background(), Ref{Type: TypeLocal})
	require.Error(t, err)
}
