package container_test

import (
	"bytes"
	stderrors "errors"
	"testing"

	"github.com/wippyai/script-runtime/container"
	"github.com/wippyai/script-runtime/errors"
)

func TestParseEmptyContainer(t *testing.T) {
	s, err := container.Parse(nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("expected 0 records, got %d", s.Len())
	}
}

func TestParseSingleFrame(t *testing.T) {
	data := container.Build([]container.Record{
		{PreloadOnly: false, Data: []byte("entry bytes")},
	})

	s, err := container.Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 record, got %d", s.Len())
	}
	rec := s.Records()[0]
	if rec.PreloadOnly {
		t.Error("expected entry record, got preload-only")
	}
	if !bytes.Equal(rec.Data, []byte("entry bytes")) {
		t.Errorf("data = %q", rec.Data)
	}
}

func TestParseZeroLengthFrame(t *testing.T) {
	data := container.Build([]container.Record{
		{PreloadOnly: true, Data: nil},
	})

	s, err := container.Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 record, got %d", s.Len())
	}
	if len(s.Records()[0].Data) != 0 {
		t.Error("expected empty data")
	}
}

func TestRoundTrip(t *testing.T) {
	records := []container.Record{
		{PreloadOnly: true, Data: []byte{0xde, 0xad}},
		{PreloadOnly: false, Data: []byte("main module")},
		{PreloadOnly: true, Data: nil},
		{PreloadOnly: false, Data: bytes.Repeat([]byte{0x42}, 4096)},
	}

	s, err := container.Parse(container.Build(records))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got := s.Records()
	if len(got) != len(records) {
		t.Fatalf("expected %d records, got %d", len(records), len(got))
	}
	for i, want := range records {
		if got[i].PreloadOnly != want.PreloadOnly {
			t.Errorf("record %d: PreloadOnly = %v, want %v", i, got[i].PreloadOnly, want.PreloadOnly)
		}
		if !bytes.Equal(got[i].Data, want.Data) {
			t.Errorf("record %d: data mismatch", i)
		}
	}
}

func TestTruncatedHeader(t *testing.T) {
	full := container.Build([]container.Record{
		{PreloadOnly: false, Data: []byte("first")},
		{PreloadOnly: true, Data: []byte("second")},
	})

	// Cut the second frame's header short at every offset within its 9 bytes.
	secondStart := 9 + len("first")
	for cut := 1; cut < 9; cut++ {
		data := full[:secondStart+cut]
		_, err := container.Parse(data)
		if err == nil {
			t.Fatalf("cut %d: expected error", cut)
		}
		var e *errors.Error
		if !stderrors.As(err, &e) {
			t.Fatalf("cut %d: expected *errors.Error, got %T", cut, err)
		}
		if e.Kind != errors.KindTruncatedHeader {
			t.Errorf("cut %d: kind = %s, want truncated_header", cut, e.Kind)
		}
		if e.FrameIndex != 1 {
			t.Errorf("cut %d: frame = %d, want 1", cut, e.FrameIndex)
		}
	}
}

func TestTruncatedBody(t *testing.T) {
	full := container.Build([]container.Record{
		{PreloadOnly: false, Data: []byte("0123456789")},
	})

	for cut := 9; cut < len(full); cut++ {
		_, err := container.Parse(full[:cut])
		if err == nil {
			t.Fatalf("cut %d: expected error", cut)
		}
		var e *errors.Error
		if !stderrors.As(err, &e) {
			t.Fatalf("cut %d: expected *errors.Error, got %T", cut, err)
		}
		if e.Kind != errors.KindTruncatedBody {
			t.Errorf("cut %d: kind = %s, want truncated_body", cut, e.Kind)
		}
		if e.FrameIndex != 0 {
			t.Errorf("cut %d: frame = %d, want 0", cut, e.FrameIndex)
		}
	}
}

func TestEveryPrefixParsesOrFailsTyped(t *testing.T) {
	full := container.Build([]container.Record{
		{PreloadOnly: true, Data: []byte("lib")},
		{PreloadOnly: false, Data: []byte("main")},
	})

	for n := 0; n <= len(full); n++ {
		s, err := container.Parse(full[:n])
		if err != nil {
			var e *errors.Error
			if !stderrors.As(err, &e) {
				t.Errorf("prefix %d: untyped error %T", n, err)
			}
			continue
		}
		if s == nil {
			t.Errorf("prefix %d: nil store without error", n)
		}
	}
}

func TestOversizedModule(t *testing.T) {
	// Header declaring 1MB against an 11-byte limit; the guard must trip
	// before any attempt to allocate the declared size.
	data := []byte{0, 0x00, 0x00, 0x10, 0x00, 0x00, 0x00, 0x00, 0x00}

	_, err := container.NewParser(11).Parse(bytes.NewReader(data))
	if err == nil {
		t.Fatal("expected error")
	}
	var e *errors.Error
	if !stderrors.As(err, &e) {
		t.Fatalf("expected *errors.Error, got %T", err)
	}
	if e.Kind != errors.KindOversizedModule {
		t.Errorf("kind = %s, want oversized_module", e.Kind)
	}
	if e.FrameIndex != 0 {
		t.Errorf("frame = %d, want 0", e.FrameIndex)
	}
}

func TestOversizedAtLaterFrame(t *testing.T) {
	buf := container.Build([]container.Record{
		{PreloadOnly: true, Data: []byte("ok")},
	})
	buf = append(buf, 0)
	buf = append(buf, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x7f)

	_, err := container.Parse(buf)
	var e *errors.Error
	if !stderrors.As(err, &e) {
		t.Fatalf("expected *errors.Error, got %v", err)
	}
	if e.Kind != errors.KindOversizedModule || e.FrameIndex != 1 {
		t.Errorf("got kind=%s frame=%d, want oversized_module at frame 1", e.Kind, e.FrameIndex)
	}
}

func TestAllOrNothing(t *testing.T) {
	// First frame intact, second truncated: nothing is exposed.
	full := container.Build([]container.Record{
		{PreloadOnly: false, Data: []byte("good")},
		{PreloadOnly: false, Data: []byte("badly truncated")},
	})
	s, err := container.Parse(full[:len(full)-3])
	if err == nil {
		t.Fatal("expected error")
	}
	if s != nil {
		t.Error("partially parsed store exposed to caller")
	}
}
