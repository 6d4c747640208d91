package chunktree

import (
	"bytes"
	"errors"
	"testing"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

var two = Config{Width: 2}

func content(t *testing.T, tree *Tree) string {
	t.Helper()
	b, err := tree.Bytes()
	if err != nil {
		t.Fatalf("unexpected error collecting bytes: %v", err)
	}
	return string(b)
}

func TestEmptyTree(t *testing.T) {
	gtrace.CoreTracer = gotestingadapter.New(t)
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	gtrace.CoreTracer.SetTraceLevel(tracing.LevelDebug)
	//
	tree := New(two)
	if !tree.IsEmpty() || tree.Len() != 0 {
		t.Errorf("expected empty tree, len is %d", tree.Len())
	}
	if s := content(t, tree); s != "" {
		t.Errorf("expected no bytes, have %q", s)
	}
	if err := tree.Check(); err != nil {
		t.Error(err)
	}
}

func TestFromBytes(t *testing.T) {
	gtrace.CoreTracer = gotestingadapter.New(t)
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	gtrace.CoreTracer.SetTraceLevel(tracing.LevelDebug)
	//
	data := []byte("Hello World!")
	tree := FromBytes(two, data)
	if tree.IsEmpty() || tree.Len() != uint64(len(data)) {
		t.Fatalf("expected tree of length %d, is %d", len(data), tree.Len())
	}
	if s := content(t, tree); s != "Hello World!" {
		t.Errorf("expected 'Hello World!', have %q", s)
	}
	data[0] = 'J'
	if s := content(t, tree); s != "Hello World!" {
		t.Errorf("tree aliases caller data: %q", s)
	}
	if err := tree.Check(); err != nil {
		t.Error(err)
	}
}

func TestFromBytesLeafWidth(t *testing.T) {
	gtrace.CoreTracer = gotestingadapter.New(t)
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	gtrace.CoreTracer.SetTraceLevel(tracing.LevelInfo)
	//
	tree := FromBytes(Config{Width: 4}, bytes.Repeat([]byte("x"), 100))
	err := tree.each(func(n node, _ uint64, _ int) error {
		if l, ok := n.(*leafNode); ok && l.len() > 4 {
			t.Errorf("leaf of %d bytes exceeds width 4", l.len())
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	// 100 -> 50 -> 25 -> 12/13 -> 6/7 -> 3/4
	if d := tree.Depth(); d != 6 {
		t.Errorf("expected depth 6, is %d", d)
	}
}

func TestDefaultWidth(t *testing.T) {
	tree := New(Config{})
	if tree.Config().Width != DefaultWidth {
		t.Errorf("expected default width %d, is %d", DefaultWidth, tree.Config().Width)
	}
}

func TestInsert(t *testing.T) {
	gtrace.CoreTracer = gotestingadapter.New(t)
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	gtrace.CoreTracer.SetTraceLevel(tracing.LevelDebug)
	//
	cases := []struct {
		initial string
		at      uint64
		data    string
		expect  string
	}{
		{"Hello World!", 5, " beautiful", "Hello beautiful World!"},
		{"World!", 0, "Hello ", "Hello World!"},
		{"Hello", 5, " World!", "Hello World!"},
		{"", 0, "Hello", "Hello"},
	}
	for _, c := range cases {
		tree, err := FromBytes(two, []byte(c.initial)).Insert(c.at, []byte(c.data))
		if err != nil {
			t.Fatalf("insert into %q: %v", c.initial, err)
		}
		if s := content(t, tree); s != c.expect {
			t.Errorf("expected %q, have %q", c.expect, s)
		}
		if err := tree.Check(); err != nil {
			t.Error(err)
		}
	}
}

func TestRemove(t *testing.T) {
	gtrace.CoreTracer = gotestingadapter.New(t)
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	gtrace.CoreTracer.SetTraceLevel(tracing.LevelDebug)
	//
	cases := []struct {
		initial    string
		start, end uint64
		expect     string
	}{
		{"Hello beautiful World!", 5, 15, "Hello World!"},
		{"Hello World!", 0, 6, "World!"},
		{"Hello World!", 5, 12, "Hello"},
	}
	for _, c := range cases {
		tree, err := FromBytes(two, []byte(c.initial)).Remove(c.start, c.end)
		if err != nil {
			t.Fatalf("remove from %q: %v", c.initial, err)
		}
		if s := content(t, tree); s != c.expect {
			t.Errorf("expected %q, have %q", c.expect, s)
		}
		if err := tree.Check(); err != nil {
			t.Error(err)
		}
	}
}

func TestInsertThenRemove(t *testing.T) {
	tree := FromBytes(two, []byte("Hello World!"))
	tree, err := tree.Insert(5, []byte(" beautiful"))
	if err != nil {
		t.Fatal(err)
	}
	if s := content(t, tree); s != "Hello beautiful World!" {
		t.Fatalf("unexpected content after insert: %q", s)
	}
	tree, err = tree.Remove(5, 15)
	if err != nil {
		t.Fatal(err)
	}
	if s := content(t, tree); s != "Hello World!" {
		t.Errorf("expected 'Hello World!' to be restored, have %q", s)
	}
}

func TestOutOfBounds(t *testing.T) {
	tree := FromBytes(two, []byte("Hello"))
	if _, err := tree.Insert(6, []byte(" World!")); !errors.Is(err, ErrIndexOutOfBounds) {
		t.Errorf("expected ErrIndexOutOfBounds for insert, have %v", err)
	}
	if _, err := tree.Remove(3, 6); !errors.Is(err, ErrIndexOutOfBounds) {
		t.Errorf("expected ErrIndexOutOfBounds for remove past end, have %v", err)
	}
	if _, err := tree.Remove(5, 5); !errors.Is(err, ErrIndexOutOfBounds) {
		t.Errorf("expected ErrIndexOutOfBounds for remove at end, have %v", err)
	}
	if _, err := tree.Remove(3, 2); !errors.Is(err, ErrIllegalRange) {
		t.Errorf("expected ErrIllegalRange, have %v", err)
	}
	empty, err := New(two).Remove(0, 0)
	if err != nil {
		t.Errorf("empty remove from empty tree should succeed, have %v", err)
	} else if !empty.IsEmpty() {
		t.Errorf("expected empty tree")
	}
}

func TestInsertAllRanges(t *testing.T) {
	initial := []byte("Hello World!")
	source := "0123456789abcdefgh"
	tree := FromBytes(two, initial)
	for pos := 0; pos <= len(initial); pos++ {
		for l := 0; l <= len(initial); l++ {
			data := []byte(source[:l])
			expect := string(initial[:pos]) + string(data) + string(initial[pos:])
			modified, err := tree.Insert(uint64(pos), data)
			if err != nil {
				t.Fatalf("insert %d bytes at %d: %v", l, pos, err)
			}
			have := content(t, modified)
			if have != expect {
				t.Fatalf("insert %d bytes at %d: expected %q, have %q", l, pos, expect, have)
			}
			if (l > 0) == (have == string(initial)) {
				t.Errorf("insert %d bytes at %d: unexpected change state", l, pos)
			}
			if err := modified.Check(); err != nil {
				t.Error(err)
			}
		}
	}
}

func TestRemoveAllRanges(t *testing.T) {
	initial := []byte("Hello World!")
	tree := FromBytes(two, initial)
	for pos := 0; pos < len(initial); pos++ {
		for l := 0; l <= len(initial); l++ {
			end := min(pos+l, len(initial))
			expect := string(initial[:pos]) + string(initial[end:])
			modified, err := tree.Remove(uint64(pos), uint64(end))
			if err != nil {
				t.Fatalf("remove [%d, %d): %v", pos, end, err)
			}
			have := content(t, modified)
			if have != expect {
				t.Fatalf("remove [%d, %d): expected %q, have %q", pos, end, expect, have)
			}
			if (end > pos) == (have == string(initial)) {
				t.Errorf("remove [%d, %d): unexpected change state", pos, end)
			}
			if err := modified.Check(); err != nil {
				t.Error(err)
			}
		}
	}
}

func TestRepeatedEdits(t *testing.T) {
	tree := New(Config{Width: 3})
	var ref []byte
	for i := range 50 {
		at := uint64(i*7) % (tree.Len() + 1)
		ins := []byte{byte('a' + i%26), byte('A' + i%26)}
		var err error
		tree, err = tree.Insert(at, ins)
		if err != nil {
			t.Fatal(err)
		}
		ref = append(ref[:at], append(ins, ref[at:]...)...)
		if i%3 == 2 {
			start := uint64(i) % tree.Len()
			end := min(start+3, tree.Len())
			if tree, err = tree.Remove(start, end); err != nil {
				t.Fatal(err)
			}
			ref = append(ref[:start], ref[end:]...)
		}
	}
	if s := content(t, tree); s != string(ref) {
		t.Errorf("expected %q, have %q", ref, s)
	}
	if err := tree.Check(); err != nil {
		t.Error(err)
	}
}

func TestStructuralSharing(t *testing.T) {
	t1 := FromBytes(two, []byte("Hello World!"))
	t2, err := t1.Insert(12, []byte(" Bye"))
	if err != nil {
		t.Fatal(err)
	}
	t3, err := t2.Remove(0, 6)
	if err != nil {
		t.Fatal(err)
	}
	if s := content(t, t1); s != "Hello World!" {
		t.Errorf("t1 changed to %q", s)
	}
	if s := content(t, t2); s != "Hello World! Bye" {
		t.Errorf("t2 is %q", s)
	}
	if s := content(t, t3); s != "World! Bye" {
		t.Errorf("t3 is %q", s)
	}
	r1 := t1.root.(*innerNode)
	r2 := t2.root.(*innerNode)
	if r1.left != r2.left {
		t.Errorf("expected untouched left subtree to be shared")
	}
	if r1.right == r2.right {
		t.Errorf("expected edited right subtree to be copied")
	}
}

func TestWriteDot(t *testing.T) {
	tree, _ := FromBytes(two, []byte("Hello")).Insert(2, []byte("--"))
	var buf bytes.Buffer
	if err := WriteDot(tree, &buf); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("strict digraph {")) {
		t.Errorf("unexpected DOT output:\n%s", buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte("->")) {
		t.Errorf("expected edges in DOT output")
	}
}
