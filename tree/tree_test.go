package tree_test

import (
	"errors"
	"testing"

	"github.com/fulmenhq/walktree/attr"
	"github.com/fulmenhq/walktree/tree"
)

func fileBundle() *attr.Bundle {
	b := attr.NewBundle()
	attr.Put(b, attr.TYPE, attr.RegularFile)
	return b
}

func TestConsumeBuildsPlaceholders(t *testing.T) {
	b := tree.NewBuilder("root")

	if err := b.Consume("root/a/b/c.txt", nil, fileBundle()); err != nil {
		t.Fatalf("Consume: %v", err)
	}

	a, ok := b.Root().Child("a")
	if !ok {
		t.Fatalf("expected placeholder child 'a'")
	}
	if !a.IsPlaceholder() {
		t.Fatalf("expected 'a' to be a placeholder (never itself emitted)")
	}

	bb, ok := a.Child("b")
	if !ok || !bb.IsPlaceholder() {
		t.Fatalf("expected placeholder child 'a/b'")
	}

	c, ok := bb.Child("c.txt")
	if !ok {
		t.Fatalf("expected leaf child 'a/b/c.txt'")
	}
	if c.IsPlaceholder() {
		t.Fatalf("expected 'c.txt' to carry real attrs, not be a placeholder")
	}
}

func TestNodePath(t *testing.T) {
	b := tree.NewBuilder("root")
	if err := b.Consume("root/a/b/c.txt", nil, fileBundle()); err != nil {
		t.Fatalf("Consume: %v", err)
	}

	if got := b.Root().Path(); got != "" {
		t.Fatalf("root Path() = %q, want \"\"", got)
	}

	a, _ := b.Root().Child("a")
	if got, want := a.Path(), "a"; got != want {
		t.Fatalf("Path() = %q, want %q", got, want)
	}

	bNode, _ := a.Child("b")
	if got, want := bNode.Path(), "a/b"; got != want {
		t.Fatalf("Path() = %q, want %q", got, want)
	}

	c, _ := bNode.Child("c.txt")
	if got, want := c.Path(), "a/b/c.txt"; got != want {
		t.Fatalf("Path() = %q, want %q", got, want)
	}
}

func TestConsumeOrderPreserved(t *testing.T) {
	b := tree.NewBuilder("root")
	_ = b.Consume("root/z.txt", nil, fileBundle())
	_ = b.Consume("root/a.txt", nil, fileBundle())
	_ = b.Consume("root/m.txt", nil, fileBundle())

	var order []string
	for _, c := range b.Root().OrderedChildren() {
		order = append(order, c.Name)
	}
	want := []string{"z.txt", "a.txt", "m.txt"}
	if len(order) != len(want) {
		t.Fatalf("OrderedChildren() = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("OrderedChildren()[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestDuplicateLeafIsReentryFatal(t *testing.T) {
	b := tree.NewBuilder("root")
	if err := b.Consume("root/dup.txt", nil, fileBundle()); err != nil {
		t.Fatalf("first Consume: %v", err)
	}

	err := b.Consume("root/dup.txt", nil, fileBundle())
	if err == nil {
		t.Fatalf("expected an error re-adding the same leaf path")
	}

	// The engine's error-handling path would route this error through
	// OnError; Builder.OnError must re-raise it as fatal rather than
	// record it.
	reraised := b.OnError("root/dup.txt", nil, "duplicate emission", err)
	if reraised == nil {
		t.Fatalf("expected OnError to re-raise the reentry error as fatal")
	}
	if !errors.Is(reraised, err) && reraised != err {
		t.Fatalf("expected the same error instance to be re-raised")
	}
}

func TestOnErrorRecordsOrdinaryErrors(t *testing.T) {
	b := tree.NewBuilder("root")
	cause := errors.New("permission denied")

	if err := b.OnError("root/secret.txt", nil, "stat entry", cause); err != nil {
		t.Fatalf("OnError should swallow an ordinary error, got %v", err)
	}

	errs := b.Errors()
	if len(errs) != 1 {
		t.Fatalf("expected one recorded error, got %d", len(errs))
	}
	if errs[0].DisplayPath != "root/secret.txt" || !errors.Is(errs[0].Cause, cause) {
		t.Fatalf("unexpected recorded error: %+v", errs[0])
	}
}
