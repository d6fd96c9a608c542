package research

// charsPerToken is the coarse character/token ratio for English text.
// Every budget comparison in this package goes through EstimateTokens so
// the ratio cannot drift between components.
const charsPerToken = 4

// EstimateTokens estimates the generation-model token count of text.
// ceil(len/4); the empty string costs zero.
func EstimateTokens(text string) int {
	return (len(text) + charsPerToken - 1) / charsPerToken
}
