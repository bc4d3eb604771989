package topic

import (
	"fmt"
	"strings"
)

// The user prompt doubles as the cache key, so both formats are frozen:
// any wording or whitespace change here orphans every existing cache entry.
const (
	userPromptFormat        = "Generate a JSON list of names and descriptions for things in this topic: %s"
	userPromptExcludeFormat = "Generate a JSON list of names and descriptions for things in this topic: %s but not any of these items: %s"
)

// The system prompt is not part of the cache address, but its wording still
// shapes every generated list.
const systemPrompt = "You are a helpful assistant that generates lists of names and descriptions of things from a given topic. Follow these guidelines:\n" +
	"* You always create a list of 20 names and descriptions.\n" +
	"* The name should always be a single word.\n" +
	"* The description should have 2 parts: " +
	"the first part is a short description about what it is in the context of the topic with no unnecessary adjectives. " +
	"The second part is another short sentence that describes objective attributes of the item with no unnecessary adjectives; " +
	"this sentence should be useful if I wanted to use this item to describe something else. " +
	"Here is an example: " +
	"Orion - A prominent constellation containing some very bright stars. It is a collection of things of different sizes. " +
	"Another example is: " +
	"Vega - One of the brightest stars we can see. It is large and bright.\n" +
	"* The description should be no more than 2 sentences and each sentence should be short and concise with no extra words or unnecessary adjectives.\n" +
	"* There should never be a single or double quote in any of the names or descriptions.\n" +
	"Your output should be a JSON object that follows this schema, it should not have any markdown: " +
	`[{"name": "name1", "desc": "description1"}, {"name": "name2", "desc": "description2"}, ...]`

// BuildSystemPrompt returns the fixed instruction string sent with every
// generation request. Byte-stable across calls.
func BuildSystemPrompt() string {
	return systemPrompt
}

// BuildUserPrompt renders the user prompt for a topic. A non-empty butnot
// value appends the exclusion clause; otherwise the plain form is used.
func BuildUserPrompt(topicName, butnot string) string {
	if strings.TrimSpace(butnot) == "" {
		return fmt.Sprintf(userPromptFormat, topicName)
	}
	return fmt.Sprintf(userPromptExcludeFormat, topicName, butnot)
}
