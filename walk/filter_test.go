package walk

import "testing"

func TestNameCount(t *testing.T) {
	cases := map[string]int{
		"":              0,
		"root":          1,
		"root/a":        2,
		"root/a/b.txt":  3,
		"/root/a/":      2,
	}
	for path, want := range cases {
		if got := nameCount(path); got != want {
			t.Errorf("nameCount(%q) = %d, want %d", path, got, want)
		}
	}
}

func TestExtensionOf(t *testing.T) {
	cases := []struct {
		path    string
		wantExt string
		wantOK  bool
	}{
		{"archive.tar", "tar", true},
		{"archive.TAR", "TAR", true},
		{"no-extension", "", false},
		{"trailing.dot.", "", false},
		{"nested/path/file.gz", "gz", true},
	}
	for _, c := range cases {
		ext, ok := extensionOf(c.path)
		if ok != c.wantOK || ext != c.wantExt {
			t.Errorf("extensionOf(%q) = (%q, %v), want (%q, %v)", c.path, ext, ok, c.wantExt, c.wantOK)
		}
	}
}
