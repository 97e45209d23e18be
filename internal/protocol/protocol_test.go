package protocol

import (
	"bytes"
	"testing"
)

// buildExpected constructs the expected wire bytes for a small-integer
// fixture by hand, independent of the encoder under test. Every integer
// used here is below 128, so its unsigned varint form is a single byte
// equal to the value itself — this keeps the fixture legible while
// still exercising the exact byte layout the wire format documents.
type buildExpected struct {
	buf []byte
}

func (b *buildExpected) u64(v uint64) *buildExpected {
	for i := 0; i < 8; i++ {
		b.buf = append(b.buf, byte(v>>(8*i)))
	}
	return b
}

func (b *buildExpected) i64(v int64) *buildExpected { return b.u64(uint64(v)) }

func (b *buildExpected) varint(v uint64) *buildExpected {
	if v >= 128 {
		panic("fixture helper only supports single-byte varints")
	}
	b.buf = append(b.buf, byte(v))
	return b
}

func (b *buildExpected) str(s string) *buildExpected {
	b.varint(uint64(len(s)))
	b.buf = append(b.buf, []byte(s)...)
	return b
}

func (b *buildExpected) bytes(d []byte) *buildExpected {
	b.varint(uint64(len(d)))
	b.buf = append(b.buf, d...)
	return b
}

func TestEncodeRequestGoldenGet(t *testing.T) {
	req := Request{RequestID: 1, Kind: RequestGet}
	want := (&buildExpected{}).u64(1).varint(uint64(RequestGet)).buf
	got := EncodeRequest(req)
	if !bytes.Equal(got, want) {
		t.Fatalf("EncodeRequest(Get) = %x, want %x", got, want)
	}
}

func TestEncodeRequestGoldenSet(t *testing.T) {
	req := Request{
		RequestID: 2,
		Kind:      RequestSet,
		Value: ClipboardValue{
			ContentType: ContentTypeText,
			Data:        []byte("hi"),
			CreatedAt:   1000,
		},
	}
	want := (&buildExpected{}).
		u64(2).
		varint(uint64(RequestSet)).
		str(ContentTypeText).
		bytes([]byte("hi")).
		i64(1000).buf
	got := EncodeRequest(req)
	if !bytes.Equal(got, want) {
		t.Fatalf("EncodeRequest(Set) = %x, want %x", got, want)
	}
}

func TestEncodeResponseGoldenOk(t *testing.T) {
	resp := OkResponse(1)
	want := (&buildExpected{}).u64(1).varint(uint64(ResponseOk)).buf
	got := EncodeResponse(resp)
	if !bytes.Equal(got, want) {
		t.Fatalf("EncodeResponse(Ok) = %x, want %x", got, want)
	}
}

func TestEncodeResponseGoldenEmpty(t *testing.T) {
	resp := EmptyResponse(5)
	want := (&buildExpected{}).u64(5).varint(uint64(ResponseEmpty)).buf
	got := EncodeResponse(resp)
	if !bytes.Equal(got, want) {
		t.Fatalf("EncodeResponse(Empty) = %x, want %x", got, want)
	}
}

func TestEncodeResponseGoldenValue(t *testing.T) {
	resp := ValueResponse(3, ClipboardValue{ContentType: ContentTypeText, Data: []byte("ok"), CreatedAt: 7})
	want := (&buildExpected{}).
		u64(3).
		varint(uint64(ResponseValue)).
		str(ContentTypeText).
		bytes([]byte("ok")).
		i64(7).buf
	got := EncodeResponse(resp)
	if !bytes.Equal(got, want) {
		t.Fatalf("EncodeResponse(Value) = %x, want %x", got, want)
	}
}

func TestEncodeResponseGoldenMeta(t *testing.T) {
	resp := MetaResponse(4, Meta{ContentType: ContentTypePNG, Size: 9, CreatedAt: 11})
	want := (&buildExpected{}).
		u64(4).
		varint(uint64(ResponseMeta)).
		str(ContentTypePNG).
		u64(9).
		i64(11).buf
	got := EncodeResponse(resp)
	if !bytes.Equal(got, want) {
		t.Fatalf("EncodeResponse(Meta) = %x, want %x", got, want)
	}
}

func TestEncodeResponseGoldenError(t *testing.T) {
	resp := ErrorResponse(6, ErrInvalidUTF8, "bad")
	want := (&buildExpected{}).
		u64(6).
		varint(uint64(ResponseError)).
		str(string(ErrInvalidUTF8)).
		str("bad").buf
	got := EncodeResponse(resp)
	if !bytes.Equal(got, want) {
		t.Fatalf("EncodeResponse(Error) = %x, want %x", got, want)
	}
}

func TestRequestRoundTrip(t *testing.T) {
	t.Parallel()
	cases := []Request{
		{RequestID: 1, Kind: RequestGet},
		{RequestID: 2, Kind: RequestPeekMeta},
		{RequestID: 3, Kind: RequestSet, Value: ClipboardValue{
			ContentType: ContentTypeText,
			Data:        []byte("hello, world"),
			CreatedAt:   1717000000123,
		}},
		{RequestID: 4, Kind: RequestSet, Value: ClipboardValue{
			ContentType: ContentTypePNG,
			Data:        []byte{0x89, 0x50, 0x4e, 0x47},
			CreatedAt:   0,
		}},
		{RequestID: 5, Kind: RequestSet, Value: ClipboardValue{
			ContentType: ContentTypeText,
			Data:        []byte{},
			CreatedAt:   1,
		}},
	}

	for _, want := range cases {
		encoded := EncodeRequest(want)
		got, err := DecodeRequest(encoded)
		if err != nil {
			t.Fatalf("DecodeRequest: %v", err)
		}
		if got.RequestID != want.RequestID || got.Kind != want.Kind {
			t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
		}
		if got.Kind == RequestSet {
			if got.Value.ContentType != want.Value.ContentType ||
				!bytes.Equal(got.Value.Data, want.Value.Data) ||
				got.Value.CreatedAt != want.Value.CreatedAt {
				t.Fatalf("value round trip mismatch: got %+v, want %+v", got.Value, want.Value)
			}
		}
	}
}

func TestResponseRoundTrip(t *testing.T) {
	t.Parallel()
	cases := []Response{
		OkResponse(1),
		EmptyResponse(2),
		ValueResponse(3, ClipboardValue{ContentType: ContentTypeText, Data: []byte("x"), CreatedAt: 99}),
		MetaResponse(4, Meta{ContentType: ContentTypePNG, Size: 1024, CreatedAt: 42}),
		ErrorResponse(5, ErrPayloadTooLarge, "too big"),
	}

	for _, want := range cases {
		encoded := EncodeResponse(want)
		got, err := DecodeResponse(encoded)
		if err != nil {
			t.Fatalf("DecodeResponse: %v", err)
		}
		if got.RequestID != want.RequestID || got.Kind != want.Kind {
			t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
		}
	}
}

func TestDecodeRequestRejectsTrailingBytes(t *testing.T) {
	encoded := EncodeRequest(Request{RequestID: 1, Kind: RequestGet})
	encoded = append(encoded, 0xff)
	if _, err := DecodeRequest(encoded); err == nil {
		t.Fatal("expected error for trailing bytes, got nil")
	}
}

func TestDecodeRequestRejectsOversizedLength(t *testing.T) {
	// A Set request whose declared content_type length exceeds what
	// remains in the buffer must fail, never allocate past the buffer.
	encoded := []byte{
		1, 0, 0, 0, 0, 0, 0, 0, // request_id = 1
		byte(RequestSet),       // kind
		100,                    // bogus content_type length (varint, >= buffer)
	}
	if _, err := DecodeRequest(encoded); err == nil {
		t.Fatal("expected error for oversized length prefix, got nil")
	}
}

func TestDecodeResponseRejectsUnknownKind(t *testing.T) {
	encoded := []byte{
		1, 0, 0, 0, 0, 0, 0, 0,
		99, // unknown kind tag
	}
	if _, err := DecodeResponse(encoded); err == nil {
		t.Fatal("expected error for unknown response kind, got nil")
	}
}

func TestNewRequestIDProducesDistinctValues(t *testing.T) {
	a := NewRequestID()
	b := NewRequestID()
	if a == b {
		t.Fatalf("got two identical request IDs %d; expected randomness", a)
	}
}
