package fat12

import (
	"bytes"
	"testing"

	"github.com/tsandoval/minixt86/internal/storage"
)

func newTestFS(t *testing.T) *FileSystem {
	t.Helper()
	fs := New(storage.NewMemStore("disk"))
	if err := fs.Format("TESTVOL"); err != nil {
		t.Fatalf("Format: %v", err)
	}
	return fs
}

func TestFormatProducesBootJumpSignature(t *testing.T) {
	fs := newTestFS(t)
	if !fs.IsFormatted() {
		t.Fatal("IsFormatted() = false after Format")
	}
}

func TestFormatTwiceIsBitIdentical(t *testing.T) {
	store := storage.NewMemStore("disk")
	fs := New(store)

	if err := fs.Format("TESTVOL"); err != nil {
		t.Fatalf("Format: %v", err)
	}
	boot1 := fs.ReadSector(0)
	fat1a := fs.ReadSector(fat1Sector)

	if err := fs.Format("TESTVOL"); err != nil {
		t.Fatalf("Format: %v", err)
	}
	boot2 := fs.ReadSector(0)
	fat1b := fs.ReadSector(fat1Sector)

	if boot1 != boot2 {
		t.Error("boot sector differs between two Format calls with the same label")
	}
	if fat1a != fat1b {
		t.Error("FAT sector differs between two Format calls")
	}
}

func TestFormatWritesTwinIdenticalFATs(t *testing.T) {
	fs := newTestFS(t)
	fat1 := fs.ReadSector(fat1Sector)
	fat2 := fs.ReadSector(fat2Sector)
	if fat1 != fat2 {
		t.Fatal("fat1 and fat2 differ immediately after Format")
	}
}

func TestWriteFileThenReadFileRoundTrips(t *testing.T) {
	fs := newTestFS(t)
	data := bytes.Repeat([]byte("DOSDATA!"), 200) // spans multiple clusters
	if err := fs.WriteFile(nil, "FILE.TXT", data); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := fs.ReadFile(nil, "FILE.TXT")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("ReadFile returned %d bytes, want %d matching WriteFile", len(got), len(data))
	}
}

func TestWriteFileZeroLength(t *testing.T) {
	fs := newTestFS(t)
	if err := fs.WriteFile(nil, "EMPTY.TXT", nil); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := fs.ReadFile(nil, "EMPTY.TXT")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("ReadFile on zero-length file = %d bytes, want 0", len(got))
	}
}

func TestWriteFileOverwritesExisting(t *testing.T) {
	fs := newTestFS(t)
	if err := fs.WriteFile(nil, "FILE.TXT", []byte("first")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := fs.WriteFile(nil, "FILE.TXT", []byte("second, longer")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := fs.ReadFile(nil, "FILE.TXT")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "second, longer" {
		t.Fatalf("ReadFile = %q, want %q", got, "second, longer")
	}
}

func TestReadFileMissingReturnsErrNotFound(t *testing.T) {
	fs := newTestFS(t)
	if _, err := fs.ReadFile(nil, "NOPE.TXT"); err != ErrNotFound {
		t.Fatalf("ReadFile on missing file = %v, want ErrNotFound", err)
	}
}

func TestClusterChainLengthMatchesFileSize(t *testing.T) {
	fs := newTestFS(t)
	data := bytes.Repeat([]byte{0x42}, BytesPerSector*3+10) // needs 4 clusters
	if err := fs.WriteFile(nil, "BIG.BIN", data); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	entries, err := fs.ListDir(nil)
	if err != nil {
		t.Fatalf("ListDir: %v", err)
	}
	var head uint16
	found := false
	for _, e := range entries {
		if e.DisplayName() == "BIG.BIN" {
			head = e.FirstClus
			found = true
		}
	}
	if !found {
		t.Fatal("BIG.BIN not found in root directory listing")
	}

	wantClusters := (len(data) + BytesPerSector - 1) / BytesPerSector
	gotClusters := len(fs.chainSectors(head))
	if gotClusters != wantClusters {
		t.Fatalf("cluster chain length = %d, want %d for %d bytes", gotClusters, wantClusters, len(data))
	}
}

func TestMkdirAndCdIntoIt(t *testing.T) {
	fs := newTestFS(t)
	if err := fs.Mkdir(nil, "SUBDIR"); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	if err := fs.WriteFile([]string{"SUBDIR"}, "NESTED.TXT", []byte("hi")); err != nil {
		t.Fatalf("WriteFile into subdir: %v", err)
	}
	got, err := fs.ReadFile([]string{"SUBDIR"}, "NESTED.TXT")
	if err != nil {
		t.Fatalf("ReadFile from subdir: %v", err)
	}
	if string(got) != "hi" {
		t.Fatalf("ReadFile = %q, want %q", got, "hi")
	}
}

func TestMkdirDuplicateNameFails(t *testing.T) {
	fs := newTestFS(t)
	if err := fs.Mkdir(nil, "SUBDIR"); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	if err := fs.Mkdir(nil, "SUBDIR"); err != ErrAlreadyExists {
		t.Fatalf("second Mkdir = %v, want ErrAlreadyExists", err)
	}
}

func TestDeleteEntryFreesClusterChain(t *testing.T) {
	fs := newTestFS(t)
	data := bytes.Repeat([]byte{0x01}, BytesPerSector*3)
	if err := fs.WriteFile(nil, "FILE.BIN", data); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	before := fs.FreeClusters()

	found, err := fs.DeleteEntry(nil, "FILE.BIN")
	if err != nil {
		t.Fatalf("DeleteEntry: %v", err)
	}
	if !found {
		t.Fatal("DeleteEntry reported not found for an existing file")
	}

	after := fs.FreeClusters()
	if after <= before {
		t.Fatalf("FreeClusters after delete = %d, want more than %d", after, before)
	}
	if _, err := fs.ReadFile(nil, "FILE.BIN"); err != ErrNotFound {
		t.Fatalf("ReadFile after delete = %v, want ErrNotFound", err)
	}
}

func TestDeleteEntryMissingReturnsFalse(t *testing.T) {
	fs := newTestFS(t)
	found, err := fs.DeleteEntry(nil, "NOPE.TXT")
	if err != nil {
		t.Fatalf("DeleteEntry: %v", err)
	}
	if found {
		t.Fatal("DeleteEntry reported found for a nonexistent file")
	}
}

func TestRenameEntryPreservesData(t *testing.T) {
	fs := newTestFS(t)
	if err := fs.WriteFile(nil, "OLD.TXT", []byte("payload")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := fs.RenameEntry(nil, "OLD.TXT", "NEW.TXT"); err != nil {
		t.Fatalf("RenameEntry: %v", err)
	}
	if _, err := fs.ReadFile(nil, "OLD.TXT"); err != ErrNotFound {
		t.Fatalf("ReadFile(OLD.TXT) after rename = %v, want ErrNotFound", err)
	}
	got, err := fs.ReadFile(nil, "NEW.TXT")
	if err != nil {
		t.Fatalf("ReadFile(NEW.TXT): %v", err)
	}
	if string(got) != "payload" {
		t.Fatalf("ReadFile(NEW.TXT) = %q, want %q", got, "payload")
	}
}

func TestFreeClustersDecreasesThenRecoversAfterDelete(t *testing.T) {
	fs := newTestFS(t)
	initial := fs.FreeClusters()

	if err := fs.WriteFile(nil, "FILE.BIN", bytes.Repeat([]byte{0}, BytesPerSector*5)); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	afterWrite := fs.FreeClusters()
	if afterWrite != initial-5 {
		t.Fatalf("FreeClusters after 5-cluster write = %d, want %d", afterWrite, initial-5)
	}

	if _, err := fs.DeleteEntry(nil, "FILE.BIN"); err != nil {
		t.Fatalf("DeleteEntry: %v", err)
	}
	afterDelete := fs.FreeClusters()
	if afterDelete != initial {
		t.Fatalf("FreeClusters after delete = %d, want back to %d", afterDelete, initial)
	}
}
