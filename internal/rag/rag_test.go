package rag

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pdf-rag/internal/chat"
	"pdf-rag/internal/chromemdb"
	"pdf-rag/internal/config"
	"pdf-rag/internal/embedding"
	"pdf-rag/internal/models"
	"pdf-rag/internal/parser"
)

// fakeEmbedder maps known texts to fixed vectors; anything else gets a
// letter-count vector so results stay deterministic.
type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
	calls   int
}

func (f *fakeEmbedder) embed(text string) []float32 {
	if v, ok := f.vectors[text]; ok {
		return v
	}
	v := []float32{1, 0, 0}
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			v[int(r-'a')%3]++
		}
	}
	return v
}

func (f *fakeEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = f.embed(text)
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.embed(text), nil
}

type fakeClient struct {
	response string
	err      error
	modelID  string
	prompts  []string
}

func (f *fakeClient) Invoke(_ context.Context, modelID, text string) (string, error) {
	f.modelID = modelID
	f.prompts = append(f.prompts, text)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

type fixture struct {
	embedder *fakeEmbedder
	client   *fakeClient
	pipeline *Pipeline
	dir      string
}

func newFixture(t *testing.T, pages map[string][]string) *fixture {
	t.Helper()
	cfg := config.Default()

	dir := t.TempDir()
	for name := range pages {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	loader := &parser.Loader{Parse: func(path string) ([]models.Document, error) {
		name := filepath.Base(path)
		var docs []models.Document
		for i, text := range pages[name] {
			docs = append(docs, models.Document{Content: text, SourceFilename: name, PageNumber: i + 1, TotalPages: len(pages[name])})
		}
		return docs, nil
	}}
	splitter, err := parser.NewSplitter(cfg.RAG)
	if err != nil {
		t.Fatalf("NewSplitter: %v", err)
	}

	fe := &fakeEmbedder{vectors: map[string][]float32{
		"intro":               {1, 0, 0},
		"body":                {0, 1, 0},
		"conclusion":          {0, 0, 1},
		"What is this about?": {0.2, 0.9, 0.4},
	}}
	emb := embedding.NewEmbedder(fe)
	fc := &fakeClient{response: "It is a short report."}

	return &fixture{
		embedder: fe,
		client:   fc,
		pipeline: NewPipeline(NewBuilder(loader, splitter, emb, cfg.RAG.Collection), NewRAG(emb, fc, cfg)),
		dir:      dir,
	}
}

func TestThreePageScenario(t *testing.T) {
	f := newFixture(t, map[string][]string{"report.pdf": {"intro", "body", "conclusion"}})
	ctx := context.Background()

	idx, err := f.pipeline.BuildIndex(ctx, f.dir)
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	if idx.Len() != 3 {
		t.Fatalf("index has %d entries, want 3", idx.Len())
	}

	resp, err := f.pipeline.Answer(ctx, idx, "What is this about?")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if resp.Content == "" {
		t.Fatal("empty answer")
	}
	if len(resp.Sources) != 3 {
		t.Fatalf("got %d sources, want 3", len(resp.Sources))
	}
	wantOrder := []string{"body", "conclusion", "intro"}
	for i, w := range wantOrder {
		if resp.Sources[i].Text != w {
			t.Errorf("source %d = %q, want %q", i, resp.Sources[i].Text, w)
		}
	}
	if resp.Sources[0].Metadata["page"] != "2" || resp.Sources[0].Metadata["source"] != "report.pdf" {
		t.Errorf("source metadata = %v", resp.Sources[0].Metadata)
	}
	wantPrompt := "Context: body conclusion intro\n\nQuestion: What is this about?"
	if resp.Prompt != wantPrompt || f.client.prompts[0] != wantPrompt {
		t.Errorf("prompt = %q, want %q", f.client.prompts[0], wantPrompt)
	}
	if f.client.modelID != models.DefaultModelID {
		t.Errorf("model id = %q, want %q", f.client.modelID, models.DefaultModelID)
	}
}

func TestSingleChunkPromptIsExact(t *testing.T) {
	const c = "Golf is played with clubs and a ball."
	const q = "How is golf played?"
	f := newFixture(t, map[string][]string{"golf.pdf": {c}})
	ctx := context.Background()

	idx, err := f.pipeline.BuildIndex(ctx, f.dir)
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	if _, err := f.pipeline.Answer(ctx, idx, q); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if got, want := f.client.prompts[0], "Context: "+c+"\n\nQuestion: "+q; got != want {
		t.Fatalf("prompt = %q, want %q", got, want)
	}
}

func TestNoPDFsGivesEmptyIndex(t *testing.T) {
	f := newFixture(t, nil)
	if err := os.WriteFile(filepath.Join(f.dir, "readme.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	idx, err := f.pipeline.BuildIndex(ctx, f.dir)
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	if idx.Len() != 0 {
		t.Fatalf("index has %d entries, want 0", idx.Len())
	}
	results, err := idx.Search(ctx, []float32{1, 0, 0}, 4)
	if err != nil || len(results) != 0 {
		t.Fatalf("Search = %v, %v; want empty", results, err)
	}

	resp, err := f.pipeline.Answer(ctx, idx, "anything?")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if resp.Prompt != "Context: \n\nQuestion: anything?" {
		t.Errorf("prompt = %q", resp.Prompt)
	}
}

func TestBuildIndexPropagatesErrors(t *testing.T) {
	f := newFixture(t, map[string][]string{"a.pdf": {"intro"}})
	ctx := context.Background()

	if idx, err := f.pipeline.BuildIndex(ctx, filepath.Join(f.dir, "missing")); !errors.Is(err, models.ErrNotFound) || idx != nil {
		t.Fatalf("missing folder: idx = %v, err = %v", idx, err)
	}

	f.embedder.err = errors.New("access denied")
	if idx, err := f.pipeline.BuildIndex(ctx, f.dir); !errors.Is(err, models.ErrService) || idx != nil {
		t.Fatalf("embed failure: idx = %v, err = %v", idx, err)
	}
}

func TestAnswerPropagatesModelErrors(t *testing.T) {
	f := newFixture(t, map[string][]string{"a.pdf": {"intro"}})
	ctx := context.Background()
	idx, err := f.pipeline.BuildIndex(ctx, f.dir)
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}

	f.client.err = models.ErrMalformedResponse
	if _, err := f.pipeline.Answer(ctx, idx, "q"); !errors.Is(err, models.ErrMalformedResponse) {
		t.Fatalf("err = %v, want ErrMalformedResponse", err)
	}
}

func TestAnswerReembedsEveryCall(t *testing.T) {
	f := newFixture(t, map[string][]string{"a.pdf": {"intro"}})
	ctx := context.Background()
	idx, err := f.pipeline.BuildIndex(ctx, f.dir)
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	before := f.embedder.calls
	for i := 0; i < 2; i++ {
		if _, err := f.pipeline.Answer(ctx, idx, "same question"); err != nil {
			t.Fatalf("Answer: %v", err)
		}
	}
	if f.embedder.calls-before != 2 || len(f.client.prompts) != 2 {
		t.Fatalf("embed calls = %d, model calls = %d; want 2 and 2", f.embedder.calls-before, len(f.client.prompts))
	}
}

func TestAnswerNilIndex(t *testing.T) {
	f := newFixture(t, nil)
	var idx *chromemdb.Index
	resp, err := f.pipeline.Answer(context.Background(), idx, "q")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if len(resp.Sources) != 0 {
		t.Fatalf("got %d sources", len(resp.Sources))
	}
}

func TestConverse(t *testing.T) {
	f := newFixture(t, map[string][]string{"a.pdf": {"intro", "body"}})
	ctx := context.Background()
	idx, err := f.pipeline.BuildIndex(ctx, f.dir)
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}

	var history chat.Log
	history, answer, err := f.pipeline.Converse(ctx, idx, history, "What is this about?")
	if err != nil {
		t.Fatalf("Converse: %v", err)
	}
	if answer != f.client.response {
		t.Errorf("answer = %q", answer)
	}
	turns := history.Turns()
	if len(turns) != 2 {
		t.Fatalf("got %d turns, want 2", len(turns))
	}
	if turns[0] != (models.Turn{Role: models.RoleUser, Text: "What is this about?"}) {
		t.Errorf("turn 0 = %+v", turns[0])
	}
	if turns[1] != (models.Turn{Role: models.RoleAssistant, Text: f.client.response}) {
		t.Errorf("turn 1 = %+v", turns[1])
	}

	f.client.err = models.ErrService
	after, _, err := f.pipeline.Converse(ctx, idx, history, "again?")
	if !errors.Is(err, models.ErrService) {
		t.Fatalf("err = %v, want ErrService", err)
	}
	if after.Len() != 2 {
		t.Fatalf("failed turn changed the log: %d turns", after.Len())
	}
}
