package models

// Document is the plain text of a single PDF page
type Document struct {
	Content        string
	SourceFilename string
	SourcePath     string
	PageNumber     int
	TotalPages     int
}

// Chunk represents a split segment of a Document with its source metadata
type Chunk struct {
	Content        string
	SourceFilename string
	PageNumber     int
	ChunkID        int
}

// Turn is one entry of a conversation log
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// SearchResult is a vector index hit, ranked by similarity
type SearchResult struct {
	Text       string            `json:"text"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Similarity float32           `json:"similarity"`
}

type PromptResponse struct {
	Query   string
	Prompt  string
	Sources []SearchResult
	Content string
}
