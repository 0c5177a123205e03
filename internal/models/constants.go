package models

const (
	DefaultModelID        = "anthropic.claude-v1"
	DefaultEmbeddingModel = "amazon.titan-embed-text-v1"
	DefaultRegion         = "us-west-2"
	DefaultTopK           = 4
	DefaultChunkSize      = 1000
	DefaultChunkOverlap   = 200
	DefaultCollection     = "pdf_collection"
	ContextSeparator      = " "
	PDFExtension          = ".pdf"
)

var (
	// PromptTemplate takes the retrieved context and the question, in that order
	PromptTemplate = "Context: %s\n\nQuestion: %s"

	DefaultSeparators = []string{"\n\n", "\n", " ", ""}
)
