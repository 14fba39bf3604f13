package source

import (
	"os"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("test.sg", []byte("hello world"), 0, KindModule)
	if id1 != 0 {
		t.Errorf("expected first FileID to be 0, got %d", id1)
	}

	latestID, exists := fs.GetLatest("test.sg")
	if !exists {
		t.Error("expected file to exist after Add")
	}
	if latestID != id1 {
		t.Errorf("expected latest ID to be %d, got %d", id1, latestID)
	}

	id2 := fs.Add("test.sg", []byte("hello universe"), 0, KindModule)
	if id2 != 1 {
		t.Errorf("expected second FileID to be 1, got %d", id2)
	}

	latestID, exists = fs.GetLatest("test.sg")
	if !exists {
		t.Error("expected file to exist after second Add")
	}
	if latestID != id2 {
		t.Errorf("expected latest ID to be %d, got %d", id2, latestID)
	}

	file1 := fs.Get(id1)
	if string(file1.Content) != "hello world" {
		t.Errorf("expected first file content 'hello world', got %q", string(file1.Content))
	}

	file2 := fs.Get(id2)
	if string(file2.Content) != "hello universe" {
		t.Errorf("expected second file content 'hello universe', got %q", string(file2.Content))
	}

	if file1.Path != "test.sg" || file2.Path != "test.sg" {
		t.Error("expected both files to have the same path")
	}
}

func TestAddVirtualLineIdx(t *testing.T) {
	fs := NewFileSet()

	id := fs.AddVirtual("a.sg", []byte("a\nb\n"), KindInteractive)
	file := fs.Get(id)

	expected := []uint32{1, 3}
	if len(file.LineIdx) != len(expected) {
		t.Errorf("expected LineIdx length %d, got %d", len(expected), len(file.LineIdx))
	}
	for i, val := range expected {
		if file.LineIdx[i] != val {
			t.Errorf("expected LineIdx[%d] = %d, got %d", i, val, file.LineIdx[i])
		}
	}

	if file.Flags&FileVirtual == 0 {
		t.Error("expected FileVirtual flag to be set")
	}
	if file.Kind != KindInteractive {
		t.Errorf("expected KindInteractive, got %v", file.Kind)
	}
}

func TestCRLFNormalization(t *testing.T) {
	fs := NewFileSet()

	original := []byte("a\r\nb\r\n")
	normalized, changed := normalizeCRLF(original)
	if !changed {
		t.Error("expected CRLF normalization to be detected")
	}

	expected := []byte("a\nb\n")
	if string(normalized) != string(expected) {
		t.Errorf("expected normalized content %q, got %q", string(expected), string(normalized))
	}

	originalLen := len(original)
	normalizedLen := len(normalized)
	expectedLen := originalLen - 2
	if normalizedLen != expectedLen {
		t.Errorf("expected length %d, got %d", expectedLen, normalizedLen)
	}

	id := fs.Add("test.sg", normalized, FileNormalizedCRLF, KindModule)
	file := fs.Get(id)
	if file.Flags&FileNormalizedCRLF == 0 {
		t.Error("expected FileNormalizedCRLF flag to be set")
	}
}

func TestBOMRemoval(t *testing.T) {
	fs := NewFileSet()

	bomContent := []byte{0xEF, 0xBB, 0xBF, 'x', '\n'}
	withoutBOM, hadBOM := removeBOM(bomContent)
	if !hadBOM {
		t.Error("expected BOM to be detected")
	}

	expected := []byte{'x', '\n'}
	if string(withoutBOM) != string(expected) {
		t.Errorf("expected content without BOM %q, got %q", string(expected), string(withoutBOM))
	}

	id := fs.Add("test.sg", withoutBOM, FileHadBOM, KindModule)
	file := fs.Get(id)
	if file.Flags&FileHadBOM == 0 {
		t.Error("expected FileHadBOM flag to be set")
	}
}

func TestResolveUTF8(t *testing.T) {
	fs := NewFileSet()

	content := []byte("α\n")
	id := fs.AddVirtual("test.sg", content, KindModule)

	span := Span{File: id, Start: 0, End: 1}
	start, end := fs.Resolve(span)

	expectedStart := LineCol{Line: 1, Col: 1}
	expectedEnd := LineCol{Line: 1, Col: 2}

	if start != expectedStart {
		t.Errorf("expected start %+v, got %+v", expectedStart, start)
	}
	if end != expectedEnd {
		t.Errorf("expected end %+v, got %+v", expectedEnd, end)
	}
}

func TestFileVersioning(t *testing.T) {
	fs := NewFileSet()

	content1 := []byte("version 1")
	id1 := fs.Add("test.sg", content1, 0, KindModule)

	latestID, exists := fs.GetLatest("test.sg")
	if !exists {
		t.Error("expected file to exist")
	}
	if latestID != id1 {
		t.Errorf("expected latest ID to be %d, got %d", id1, latestID)
	}

	content2 := []byte("version 2")
	id2 := fs.Add("test.sg", content2, 0, KindModule)

	if id2 == id1 {
		t.Error("expected different FileID for second Add")
	}

	latestID, exists = fs.GetLatest("test.sg")
	if !exists {
		t.Error("expected file to exist after second Add")
	}
	if latestID != id2 {
		t.Errorf("expected latest ID to be %d, got %d", id2, latestID)
	}

	file1 := fs.Get(id1)
	file2 := fs.Get(id2)

	if string(file1.Content) != "version 1" {
		t.Errorf("expected first file content 'version 1', got %q", string(file1.Content))
	}
	if string(file2.Content) != "version 2" {
		t.Errorf("expected second file content 'version 2', got %q", string(file2.Content))
	}
	if file1.Path != file2.Path {
		t.Error("expected both files to have the same path")
	}
}

func TestEdgeCases(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.AddVirtual("empty.sg", []byte{}, KindModule)
	file1 := fs.Get(id1)
	if len(file1.LineIdx) != 0 {
		t.Errorf("expected empty LineIdx for empty file, got length %d", len(file1.LineIdx))
	}

	id2 := fs.AddVirtual("no_newlines.sg", []byte("hello"), KindModule)
	file2 := fs.Get(id2)
	if len(file2.LineIdx) != 0 {
		t.Errorf("expected empty LineIdx for file without newlines, got length %d", len(file2.LineIdx))
	}

	id3 := fs.AddVirtual("only_newline.sg", []byte("\n"), KindModule)
	file3 := fs.Get(id3)
	expected := []uint32{0}
	if len(file3.LineIdx) != 1 || file3.LineIdx[0] != expected[0] {
		t.Errorf("expected LineIdx [0] for file with only newline, got %v", file3.LineIdx)
	}
}

func TestStageFlagsMonotonic(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.sg", []byte("x"), KindModule)

	if fs.Stage(id) != 0 {
		t.Fatalf("expected no stage flags initially, got %v", fs.Stage(id))
	}
	fs.AdvanceStage(id, StageParsed)
	fs.AdvanceStage(id, StageExpanded)
	got := fs.Stage(id)
	if !got.HasFlag(StageParsed) || !got.HasFlag(StageExpanded) {
		t.Fatalf("expected Parsed|Expanded, got %v", got)
	}
	if got.HasFlag(StageTypechecked) {
		t.Fatalf("did not expect Typechecked yet, got %v", got)
	}
}

func TestLoad(t *testing.T) {
	fs := NewFileSet()
	tempFile, err := os.CreateTemp("", "testdata")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tempFile.Name())

	if _, err = tempFile.WriteString("a\nb\n"); err != nil {
		t.Fatalf("failed to write to temp file: %v", err)
	}
	if err = tempFile.Close(); err != nil {
		t.Fatalf("failed to close temp file: %v", err)
	}

	if _, err := fs.Load(tempFile.Name()); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	file := fs.Get(0)
	if string(file.Content) != "a\nb\n" {
		t.Errorf("expected file content 'a\\nb\\n', got %q", string(file.Content))
	}
	if file.LineIdx[0] != 1 {
		t.Errorf("expected LineIdx[0] to be 1, got %d", file.LineIdx[0])
	}
	if file.LineIdx[1] != 3 {
		t.Errorf("expected LineIdx[1] to be 3, got %d", file.LineIdx[1])
	}
	if file.Kind != KindModule {
		t.Errorf("expected Load to produce KindModule, got %v", file.Kind)
	}
}

func TestLoadBOM(t *testing.T) {
	fs := NewFileSet()
	tempFile, err := os.CreateTemp("", "testdata")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tempFile.Name())
	if _, err = tempFile.WriteString("\xEF\xBB\xBFa\nb\n"); err != nil {
		t.Fatalf("failed to write to temp file: %v", err)
	}
	if err = tempFile.Close(); err != nil {
		t.Fatalf("failed to close temp file: %v", err)
	}

	if _, err := fs.Load(tempFile.Name()); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	file := fs.Get(0)
	if string(file.Content) != "a\nb\n" {
		t.Errorf("expected file content 'a\\nb\\n', got %q", string(file.Content))
	}
	if file.Flags&FileHadBOM == 0 {
		t.Error("expected FileHadBOM flag to be set")
	}
}

func TestLoadCRLF(t *testing.T) {
	fs := NewFileSet()
	tempFile, err := os.CreateTemp("", "testdata")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tempFile.Name())

	if _, err = tempFile.WriteString("a\r\nb\r\n"); err != nil {
		t.Fatalf("failed to write to temp file: %v", err)
	}
	if err = tempFile.Close(); err != nil {
		t.Fatalf("failed to close temp file: %v", err)
	}

	if _, err := fs.Load(tempFile.Name()); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	file := fs.Get(0)
	if string(file.Content) != "a\nb\n" {
		t.Errorf("expected file content 'a\\nb\\n', got %q", string(file.Content))
	}
	if file.Flags&FileNormalizedCRLF == 0 {
		t.Error("expected FileNormalizedCRLF flag to be set")
	}
}
