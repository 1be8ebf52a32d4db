package storage

import (
	"bytes"
	"errors"
	"testing"
)

func TestPutGetRoundTrip(t *testing.T) {
	s := NewMemStore("disk")
	want := bytes.Repeat([]byte{0xAA, 0x55}, 256) // 512 bytes, a plausible sector
	if err := s.Put("sector-0", want); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := s.Get("sector-0")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("Get returned %d bytes, want %d matching Put", len(got), len(want))
	}
}

func TestGetMissingKeyIsErrNotExist(t *testing.T) {
	s := NewMemStore("disk")
	if _, err := s.Get("nope"); !errors.Is(err, ErrNotExist) {
		t.Fatalf("Get on missing key = %v, want ErrNotExist", err)
	}
}

func TestPutOverwritesExistingValue(t *testing.T) {
	s := NewMemStore("disk")
	if err := s.Put("sector-0", []byte("first")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put("sector-0", []byte("second")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := s.Get("sector-0")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "second" {
		t.Fatalf("Get = %q, want %q", got, "second")
	}
}

func TestDeleteThenGetIsErrNotExist(t *testing.T) {
	s := NewMemStore("disk")
	if err := s.Put("sector-0", []byte("data")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Delete("sector-0"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get("sector-0"); !errors.Is(err, ErrNotExist) {
		t.Fatalf("Get after Delete = %v, want ErrNotExist", err)
	}
}

func TestDeleteMissingKeyIsNoop(t *testing.T) {
	s := NewMemStore("disk")
	if err := s.Delete("never-existed"); err != nil {
		t.Fatalf("Delete on missing key = %v, want nil", err)
	}
}

func TestListReturnsSortedKeysMatchingPrefix(t *testing.T) {
	s := NewMemStore("disk")
	for _, k := range []string{"sector-10", "sector-2", "sector-1", "other-1"} {
		if err := s.Put(k, []byte("x")); err != nil {
			t.Fatalf("Put(%s): %v", k, err)
		}
	}
	keys, err := s.List("sector-")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"sector-1", "sector-10", "sector-2"}
	if len(keys) != len(want) {
		t.Fatalf("List = %v, want %v", keys, want)
	}
	for i, k := range want {
		if keys[i] != k {
			t.Fatalf("List = %v, want %v", keys, want)
		}
	}
}

func TestListOnEmptyStoreReturnsNoKeys(t *testing.T) {
	s := NewMemStore("disk")
	keys, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(keys) != 0 {
		t.Fatalf("List on empty store = %v, want empty", keys)
	}
}
