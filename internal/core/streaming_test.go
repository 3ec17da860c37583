package core

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestUTF8Reader(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "file with BOM",
			input:    append([]byte{0xEF, 0xBB, 0xBF}, []byte("hello,world")...),
			expected: "hello,world",
		},
		{
			name:     "file without BOM",
			input:    []byte("hello,world"),
			expected: "hello,world",
		},
		{
			name:     "empty file",
			input:    []byte{},
			expected: "",
		},
		{
			name:     "only BOM",
			input:    []byte{0xEF, 0xBB, 0xBF},
			expected: "",
		},
		{
			name:     "valid multibyte kept",
			input:    []byte("name\nZoë"),
			expected: "name\nZoë",
		},
		{
			name:     "invalid byte replaced",
			input:    []byte{'h', 'e', 0x80, 'l', 'o'},
			expected: "he\uFFFDlo",
		},
		{
			name:     "BOM later in file kept",
			input:    append([]byte("a"), 0xEF, 0xBB, 0xBF),
			expected: "a\uFEFF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := io.ReadAll(NewUTF8Reader(bytes.NewReader(tt.input)))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(result) != tt.expected {
				t.Errorf("got %q, want %q", string(result), tt.expected)
			}
		})
	}
}

func TestCountingReader(t *testing.T) {
	input := strings.Repeat("x", 1000)
	reader := NewCountingReader(strings.NewReader(input))

	// Read in chunks
	buf := make([]byte, 100)
	totalRead := 0
	for {
		n, err := reader.Read(buf)
		totalRead += n
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if totalRead != len(input) {
		t.Errorf("total read = %d, want %d", totalRead, len(input))
	}
	if reader.BytesRead != int64(len(input)) {
		t.Errorf("BytesRead = %d, want %d", reader.BytesRead, len(input))
	}
}

func TestOpenImportFile(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte("id,name\n1,ann\n")...)
	path := filepath.Join(t.TempDir(), "in.csv")
	if err := os.WriteFile(path, input, 0o600); err != nil {
		t.Fatal(err)
	}

	f, err := openImportFile("csv import", path)
	if err != nil {
		t.Fatalf("openImportFile() error = %v", err)
	}
	defer f.Close()

	result, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(result) != "id,name\n1,ann\n" {
		t.Errorf("got %q", string(result))
	}
	if f.Bytes() != int64(len(input)) {
		t.Errorf("Bytes() = %d, want %d", f.Bytes(), len(input))
	}
}

func TestOpenImportFile_Missing(t *testing.T) {
	_, err := openImportFile("csv import", filepath.Join(t.TempDir(), "nope.csv"))
	if KindFromError(err) != KindIO {
		t.Fatalf("error kind = %q, want %q", KindFromError(err), KindIO)
	}
	if MapError(err).Code != "FILE001" {
		t.Errorf("code = %q, want FILE001", MapError(err).Code)
	}
}
