package container_test

import (
	"bytes"
	"testing"

	"github.com/wippyai/script-runtime/container"
)

func testStore() *container.Store {
	return container.NewStore([]container.Record{
		{PreloadOnly: true, Data: []byte("dep-a")},
		{PreloadOnly: true, Data: []byte("dep-b")},
		{PreloadOnly: false, Data: []byte("entry-a")},
		{PreloadOnly: false, Data: []byte("entry-b")},
	})
}

func TestStorePreloadsInFileOrder(t *testing.T) {
	pre := testStore().Preloads()
	if len(pre) != 2 {
		t.Fatalf("expected 2 preloads, got %d", len(pre))
	}
	if !bytes.Equal(pre[0].Data, []byte("dep-a")) || !bytes.Equal(pre[1].Data, []byte("dep-b")) {
		t.Error("preloads out of file order")
	}
}

func TestStoreEntriesInFileOrder(t *testing.T) {
	entries := testStore().Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if !bytes.Equal(entries[0].Data, []byte("entry-a")) || !bytes.Equal(entries[1].Data, []byte("entry-b")) {
		t.Error("entries out of file order")
	}
}

func TestStoreEntryIsLastNonPreload(t *testing.T) {
	entry, ok := testStore().Entry()
	if !ok {
		t.Fatal("expected an entry record")
	}
	if !bytes.Equal(entry.Data, []byte("entry-b")) {
		t.Errorf("designated entry = %q, want entry-b", entry.Data)
	}
}

func TestStoreEntryAbsent(t *testing.T) {
	s := container.NewStore([]container.Record{
		{PreloadOnly: true, Data: []byte("dep")},
	})
	if _, ok := s.Entry(); ok {
		t.Error("expected no entry in preload-only store")
	}
}

func TestStoreRecordsCopyIsIndependent(t *testing.T) {
	s := testStore()
	recs := s.Records()
	recs[0] = container.Record{PreloadOnly: false, Data: []byte("clobbered")}
	if !s.Records()[0].PreloadOnly {
		t.Error("mutating the returned slice changed the store")
	}
}
