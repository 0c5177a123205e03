package parser

import (
	"strings"
	"testing"

	"pdf-rag/internal/config"
	"pdf-rag/internal/models"
)

func newTestSplitter(t *testing.T) *Splitter {
	t.Helper()
	s, err := NewSplitter(config.Default().RAG)
	if err != nil {
		t.Fatalf("NewSplitter: %v", err)
	}
	return s
}

func TestSplitChunkCount(t *testing.T) {
	s := newTestSplitter(t)
	tests := []struct {
		length int
		want   int
	}{
		{length: 10, want: 1},
		{length: 1000, want: 1},
		{length: 1001, want: 2},
		{length: 1800, want: 2},
		{length: 2600, want: 3},
		{length: 4200, want: 5},
	}
	for _, tt := range tests {
		docs := []models.Document{{Content: strings.Repeat("a", tt.length), SourceFilename: "x.pdf", PageNumber: 1}}
		chunks, err := s.Split(docs)
		if err != nil {
			t.Fatalf("Split(%d): %v", tt.length, err)
		}
		if len(chunks) != tt.want {
			t.Errorf("Split(%d) = %d chunks, want %d", tt.length, len(chunks), tt.want)
		}
		for i, c := range chunks {
			if n := len([]rune(c.Content)); n > 1000 {
				t.Errorf("Split(%d) chunk %d has %d chars", tt.length, i, n)
			}
		}
	}
}

func TestSplitOverlapAndDeterminism(t *testing.T) {
	s := newTestSplitter(t)
	var b strings.Builder
	for i := 0; b.Len() < 3000; i++ {
		b.WriteByte(byte('a' + i%26))
	}
	docs := []models.Document{{Content: b.String(), SourceFilename: "x.pdf", PageNumber: 3}}

	first, err := s.Split(docs)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	second, err := s.Split(docs)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d differs between runs", i)
		}
	}

	for i := 1; i < len(first); i++ {
		prev := first[i-1].Content
		tail := prev[len(prev)-200:]
		if !strings.HasPrefix(first[i].Content, tail) {
			t.Errorf("chunk %d does not start with the 200-char tail of chunk %d", i, i-1)
		}
	}
	for i, c := range first {
		if c.ChunkID != i+1 || c.PageNumber != 3 || c.SourceFilename != "x.pdf" {
			t.Errorf("chunk %d metadata = %+v", i, c)
		}
	}
}

func TestSplitPreservesDocumentOrder(t *testing.T) {
	s := newTestSplitter(t)
	docs := []models.Document{
		{Content: "intro", SourceFilename: "a.pdf", PageNumber: 1},
		{Content: "   \n  ", SourceFilename: "a.pdf", PageNumber: 2},
		{Content: "body", SourceFilename: "a.pdf", PageNumber: 3},
		{Content: "conclusion", SourceFilename: "a.pdf", PageNumber: 4},
	}
	chunks, err := s.Split(docs)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	want := []string{"intro", "body", "conclusion"}
	if len(chunks) != len(want) {
		t.Fatalf("got %d chunks, want %d", len(chunks), len(want))
	}
	for i, w := range want {
		if chunks[i].Content != w {
			t.Errorf("chunk %d = %q, want %q", i, chunks[i].Content, w)
		}
	}
}

func TestSplitShortParagraphsStayTogether(t *testing.T) {
	s := newTestSplitter(t)
	text := "First paragraph.\n\nSecond paragraph."
	chunks, err := s.Split([]models.Document{{Content: text}})
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(chunks) != 1 || chunks[0].Content != text {
		t.Fatalf("chunks = %+v, want single chunk %q", chunks, text)
	}
}

func TestNewSplitterRejectsBadConfig(t *testing.T) {
	tests := []config.RAGConfig{
		{ChunkSize: 0, ChunkOverlap: 0},
		{ChunkSize: 100, ChunkOverlap: -1},
		{ChunkSize: 100, ChunkOverlap: 100},
	}
	for _, cfg := range tests {
		if _, err := NewSplitter(cfg); err == nil {
			t.Errorf("NewSplitter(%+v) succeeded, want error", cfg)
		}
	}
}
