package ai

// Analysis is the AI-generated metadata for a single bookmark.
type Analysis struct {
	Summary  string   `json:"summary"`
	Tags     []string `json:"tags"`
	Category string   `json:"category"`
}

// Fallback is the analysis recorded when the provider call fails.
func Fallback() Analysis {
	return Analysis{Summary: "Analysis failed.", Tags: []string{}, Category: "Uncategorized"}
}

// searchResult is the expected semantic search reply.
type searchResult struct {
	IDs []string `json:"ids"`
}

// candidate is the compact form of a bookmark sent for semantic search.
type candidate struct {
	ID      string   `json:"id"`
	Title   string   `json:"t"`
	Summary string   `json:"s"`
	Tags    []string `json:"tag"`
}

// chatRequest represents the chat completion request body.
type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

// chatResponse represents the chat completion response body.
type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}
