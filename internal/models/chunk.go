package models

// ChunkMetadata describes the origin of a content chunk. The summarization
// core ignores it; it is carried for API compatibility with upstream
// retrieval services.
type ChunkMetadata struct {
	FileName  string `json:"file_name,omitempty"`
	SourceURL string `json:"source_url,omitempty"`
	Tags      string `json:"tags,omitempty"`
}

// Chunk is a single content chunk record. Only Content is consumed by the
// summarization pipeline; identity is positional.
type Chunk struct {
	Metadata ChunkMetadata `json:"metadata,omitempty"`
	Score    float64       `json:"score,omitempty"`
	Content  string        `json:"content"`
}

// ChunkFile is the structured document shape accepted by the file-based
// entry point and the JSON API.
type ChunkFile struct {
	Success bool    `json:"success,omitempty"`
	Query   string  `json:"query,omitempty"`
	Data    []Chunk `json:"data"`
}

// Contents extracts the chunk texts in order. Empty chunks are kept to
// preserve positional identity.
func (f *ChunkFile) Contents() []string {
	contents := make([]string, 0, len(f.Data))
	for _, chunk := range f.Data {
		contents = append(contents, chunk.Content)
	}
	return contents
}
