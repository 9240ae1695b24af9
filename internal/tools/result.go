package tools

// Content is one block of tool output. Only "text" blocks are produced.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Result is what every tool returns, successful or not. IsError marks a
// failure the caller should surface rather than a transport problem.
type Result struct {
	Content         []Content `json:"content"`
	IsError         bool      `json:"isError,omitempty"`
	ServerKnowledge *int64    `json:"serverKnowledge,omitempty"`

	kind string
}

func textResult(text string) Result {
	return Result{Content: []Content{{Type: "text", Text: text}}}
}

func notFoundResult(text string) Result {
	r := textResult(text)
	r.IsError = true
	r.kind = "not_found"
	return r
}

// Text returns the first text block, or "" for an empty result.
func (r Result) Text() string {
	if len(r.Content) == 0 {
		return ""
	}
	return r.Content[0].Text
}

// ErrorKind is the failure class behind an IsError result: one of the ynab
// error kinds, "not_found", or "" for successes.
func (r Result) ErrorKind() string {
	return r.kind
}

func (r Result) withKnowledge(k *int64) Result {
	r.ServerKnowledge = k
	return r
}
