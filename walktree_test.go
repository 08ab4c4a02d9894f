package walktree_test

import (
	"archive/tar"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fulmenhq/walktree"
	"github.com/fulmenhq/walktree/attr"
)

// buildFixture lays out:
//
//	root/
//	  a.txt
//	  sub/
//	    b.txt
//	    inner.tar (contains c.txt, nested/d.txt)
//	  skip/
//	    e.txt
func buildFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	writeFile(t, filepath.Join(root, "a.txt"), "hello a")

	sub := filepath.Join(root, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("mkdir sub: %v", err)
	}
	writeFile(t, filepath.Join(sub, "b.txt"), "hello b")
	writeFile(t, filepath.Join(sub, "inner.tar"), string(buildTar(t)))

	skip := filepath.Join(root, "skip")
	if err := os.Mkdir(skip, 0o755); err != nil {
		t.Fatalf("mkdir skip: %v", err)
	}
	writeFile(t, filepath.Join(skip, "e.txt"), "hello e")

	return root
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func buildTar(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)

	entries := []struct {
		name string
		body string
	}{
		{"c.txt", "hello c"},
		{"nested/d.txt", "hello d"},
	}
	for _, e := range entries {
		hdr := &tar.Header{Name: e.name, Mode: 0o644, Size: int64(len(e.body))}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("write tar header: %v", err)
		}
		if _, err := tw.Write([]byte(e.body)); err != nil {
			t.Fatalf("write tar body: %v", err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("close tar: %v", err)
	}
	return buf.Bytes()
}

func TestWalkFlatListing(t *testing.T) {
	root := buildFixture(t)

	var paths []string
	err := walktree.New().Walk(root, func(displayPath string, _ walktree.Supplier, _ *walktree.Bundle) error {
		paths = append(paths, displayPath)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	want := []string{
		"a.txt",
		"sub/b.txt",
		"sub/inner.tar/c.txt",
		"sub/inner.tar/nested/d.txt",
		"skip/e.txt",
	}
	assertContainsAll(t, paths, want)
}

func TestWalkRecurseIntoArchivesDisabled(t *testing.T) {
	root := buildFixture(t)

	var paths []string
	err := walktree.New().RecurseIntoArchives(false).Walk(root, func(displayPath string, _ walktree.Supplier, _ *walktree.Bundle) error {
		paths = append(paths, displayPath)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	for _, p := range paths {
		if p == "sub/inner.tar/c.txt" {
			t.Fatalf("did not expect archive contents when RecurseIntoArchives(false): found %s", p)
		}
	}
	assertContainsAll(t, paths, []string{"sub/inner.tar"})
}

func TestWalkExclude(t *testing.T) {
	root := buildFixture(t)

	var paths []string
	err := walktree.New().Exclude("skip").Walk(root, func(displayPath string, _ walktree.Supplier, _ *walktree.Bundle) error {
		paths = append(paths, displayPath)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	for _, p := range paths {
		if p == "skip/e.txt" {
			t.Fatalf("expected skip/ subtree excluded, found %s", p)
		}
	}
	assertContainsAll(t, paths, []string{"a.txt", "sub/b.txt"})
}

func TestWalkInclude(t *testing.T) {
	root := buildFixture(t)

	var paths []string
	err := walktree.New().Include("*.tar").Walk(root, func(displayPath string, _ walktree.Supplier, attrs *walktree.Bundle) error {
		paths = append(paths, displayPath)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(paths) != 1 || paths[0] != "sub/inner.tar" {
		t.Fatalf("expected only sub/inner.tar to match *.tar, got %v", paths)
	}
}

func TestWalkMaxDepthZeroIsRootOnly(t *testing.T) {
	root := buildFixture(t)

	var paths []string
	err := walktree.New().MaxDepth(0).Walk(root, func(displayPath string, _ walktree.Supplier, _ *walktree.Bundle) error {
		paths = append(paths, displayPath)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(paths) != 1 || paths[0] != "" {
		t.Fatalf("max_depth(0) should show only the root entry %q, got %v", "", paths)
	}
}

func TestMakeTree(t *testing.T) {
	root := buildFixture(t)

	node, errs, err := walktree.New().MakeTree(root)
	if err != nil {
		t.Fatalf("MakeTree: %v", err)
	}
	if len(errs) != 0 {
		t.Fatalf("unexpected error records: %+v", errs)
	}

	sub, ok := node.Child("sub")
	if !ok {
		t.Fatalf("expected a 'sub' child at the tree root")
	}
	inner, ok := sub.Child("inner.tar")
	if !ok {
		t.Fatalf("expected 'sub/inner.tar' in the tree")
	}
	if _, ok := inner.Child("c.txt"); !ok {
		t.Fatalf("expected inner.tar's contents materialized as children")
	}
}

func TestWalkChecksum(t *testing.T) {
	root := buildFixture(t)

	found := false
	err := walktree.New().WithChecksum("sha256").Walk(root, func(displayPath string, _ walktree.Supplier, attrs *walktree.Bundle) error {
		if displayPath == "a.txt" {
			found = true
			if _, ok := attr.Get(attrs, attr.Checksum); !ok {
				t.Fatalf("expected CHECKSUM attribute on a.txt when WithChecksum is enabled")
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if !found {
		t.Fatalf("expected to visit a.txt")
	}
}

func assertContainsAll(t *testing.T, got []string, want []string) {
	t.Helper()
	set := make(map[string]bool, len(got))
	for _, g := range got {
		set[g] = true
	}
	for _, w := range want {
		if !set[w] {
			t.Errorf("expected %q among visited paths, got %v", w, got)
		}
	}
}
