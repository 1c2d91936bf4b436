package enricher

import (
	"fmt"
	"strings"
)

// systemPrompt establishes the assistant role for every completion call.
const systemPrompt = "You are a business intelligence assistant who provides accurate, " +
	"structured facts about companies. Answer in the exact line format requested " +
	"and never invent data."

// Response keys. BuildPrompt and ParseFields both work from these, so the
// prompt layout and the parser cannot drift apart.
const (
	keyWebsite     = "website"
	keyIndustry    = "industry"
	keyCompanySize = "company_size"
	keyHQLocation  = "hq_location"
)

// promptFields fixes the field order and the hint shown for each key.
var promptFields = []struct {
	key  string
	hint string
}{
	{keyWebsite, "primary website domain"},
	{keyIndustry, "primary industry or sector"},
	{keyCompanySize, "approximate employee count or range"},
	{keyHQLocation, "headquarters city and country"},
}

// BuildPrompt returns the user prompt for one company. It is deterministic:
// the same name always yields the same prompt, which keeps the pipeline
// testable without a live provider.
func BuildPrompt(name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Provide the following details about the company %q.\n", name)
	b.WriteString("Respond with exactly one line per field, in the format \"key: value\", with no other text:\n\n")
	for _, f := range promptFields {
		fmt.Fprintf(&b, "%s: <%s>\n", f.key, f.hint)
	}
	b.WriteString("\nIf you are not certain about a field, answer \"unknown\" for that field instead of guessing.")
	return b.String()
}
