package chunktree

import (
	"errors"
	"io"
	"testing"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

type countingSource struct {
	data    []byte
	fetches int
	err     error
}

func (s *countingSource) Len() uint64 { return uint64(len(s.data)) }

func (s *countingSource) Fetch() ([]byte, error) {
	s.fetches++
	if s.err != nil {
		return nil, s.err
	}
	return s.data, nil
}

func sources(parts ...string) []*countingSource {
	srcs := make([]*countingSource, len(parts))
	for i, p := range parts {
		srcs[i] = &countingSource{data: []byte(p)}
	}
	return srcs
}

func lazyTree(srcs []*countingSource) *Tree {
	s := make([]Source, len(srcs))
	for i, src := range srcs {
		s[i] = src
	}
	return FromSources(Config{Width: 4}, s...)
}

func TestLazyTreeFaultsOnlyTouchedLeaves(t *testing.T) {
	gtrace.CoreTracer = gotestingadapter.New(t)
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	gtrace.CoreTracer.SetTraceLevel(tracing.LevelDebug)
	//
	srcs := sources("0123", "4567", "89ab", "cdef")
	tree := lazyTree(srcs)
	if tree.Len() != 16 {
		t.Fatalf("expected length 16, is %d", tree.Len())
	}
	if err := tree.Check(); err != nil {
		t.Fatal(err)
	}
	for i, s := range srcs {
		if s.fetches != 0 {
			t.Errorf("source %d fetched during construction", i)
		}
	}
	edited, err := tree.Insert(5, []byte("XY"))
	if err != nil {
		t.Fatal(err)
	}
	edited, err = edited.Remove(14, 16)
	if err != nil {
		t.Fatal(err)
	}
	expect := []int{0, 1, 0, 1}
	for i, s := range srcs {
		if s.fetches != expect[i] {
			t.Errorf("source %d fetched %d times, expected %d", i, s.fetches, expect[i])
		}
	}
	if s := content(t, edited); s != "01234XY56789abef" {
		t.Errorf("unexpected content %q", s)
	}
	if s := content(t, tree); s != "0123456789abcdef" {
		t.Errorf("original lazy tree changed to %q", s)
	}
}

func TestLazyTreeFetchError(t *testing.T) {
	srcs := sources("0123", "4567")
	broken := errors.New("disk on fire")
	srcs[1].err = broken
	tree := lazyTree(srcs)
	if _, err := tree.Insert(6, []byte("x")); !errors.Is(err, broken) {
		t.Errorf("expected fetch error to be propagated, have %v", err)
	}
	if _, err := tree.Remove(4, 5); !errors.Is(err, broken) {
		t.Errorf("expected fetch error to be propagated, have %v", err)
	}
	if _, err := tree.Bytes(); !errors.Is(err, broken) {
		t.Errorf("expected fetch error to be propagated, have %v", err)
	}
	// edits confined to the healthy leaf still work
	edited, err := tree.Insert(1, []byte("x"))
	if err != nil {
		t.Fatal(err)
	}
	if edited.Len() != 9 {
		t.Errorf("expected length 9, is %d", edited.Len())
	}
}

func TestLazyTreeSourceMismatch(t *testing.T) {
	src := &countingSource{data: []byte("0123")}
	tree := FromSources(Config{}, src)
	src.data = []byte("01")
	if _, err := tree.Insert(0, []byte("x")); !errors.Is(err, ErrSourceMismatch) {
		t.Errorf("expected ErrSourceMismatch, have %v", err)
	}
}

func TestCursorAllOffsets(t *testing.T) {
	gtrace.CoreTracer = gotestingadapter.New(t)
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	gtrace.CoreTracer.SetTraceLevel(tracing.LevelInfo)
	//
	tree := FromBytes(two, []byte("Hello World!"))
	tree, _ = tree.Insert(5, []byte(" beautiful"))
	tree, _ = tree.Remove(0, 1)
	text := "ello beautiful World!"
	for at := 0; at <= len(text); at++ {
		c, err := tree.NewCursor(uint64(at))
		if err != nil {
			t.Fatal(err)
		}
		var have []byte
		for {
			span, err := c.Next()
			if err == io.EOF {
				break
			} else if err != nil {
				t.Fatal(err)
			}
			if len(span) == 0 {
				t.Errorf("cursor returned empty span")
			}
			have = append(have, span...)
		}
		if string(have) != text[at:] {
			t.Errorf("cursor at %d: expected %q, have %q", at, text[at:], have)
		}
		if c.Pos() != uint64(len(text)) {
			t.Errorf("cursor at %d ended at %d", at, c.Pos())
		}
	}
	if _, err := tree.NewCursor(uint64(len(text) + 1)); !errors.Is(err, ErrIndexOutOfBounds) {
		t.Errorf("expected ErrIndexOutOfBounds, have %v", err)
	}
}

func TestCursorSurvivesEdits(t *testing.T) {
	tree := FromBytes(two, []byte("abcdef"))
	c, err := tree.NewCursor(2)
	if err != nil {
		t.Fatal(err)
	}
	first, err := c.Next()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tree.Remove(0, 6); err != nil {
		t.Fatal(err)
	}
	have := append([]byte(nil), first...)
	for {
		span, err := c.Next()
		if err != nil {
			break
		}
		have = append(have, span...)
	}
	if string(have) != "cdef" {
		t.Errorf("expected cursor to read pre-edit content 'cdef', have %q", have)
	}
}

func TestCursorRetriesAfterFetchError(t *testing.T) {
	srcs := sources("0123", "4567")
	srcs[1].err = errors.New("transient")
	tree := lazyTree(srcs)
	c, err := tree.NewCursor(2)
	if err != nil {
		t.Fatal(err)
	}
	if span, err := c.Next(); err != nil || string(span) != "23" {
		t.Fatalf("expected '23', have %q (%v)", span, err)
	}
	if _, err := c.Next(); err == nil {
		t.Fatalf("expected fetch error")
	}
	srcs[1].err = nil
	if span, err := c.Next(); err != nil || string(span) != "4567" {
		t.Errorf("expected '4567' after retry, have %q (%v)", span, err)
	}
}
