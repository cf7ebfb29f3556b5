// Package gemini implements [lokalku.Provider] for the Google Gemini API.
//
// It wraps the google.golang.org/genai SDK, translating the flat
// "<Label>: <content>" history lines into Gemini conversation contents.
package gemini

const (
	defaultModel     = "gemini-2.5-flash"
	defaultMaxTokens = 2048
)
