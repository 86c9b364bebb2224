package brochure

import "strings"

// Tone describes a writing style for the generated brochure. The prompt
// addition is appended to the base system prompt.
type Tone struct {
	// Key is the identifier used in requests and config.
	Key string
	// DisplayName is the human-readable name shown in pickers.
	DisplayName string
	// Description summarizes the style for presentation surfaces.
	Description string
	// promptAddition steers the generation model toward the style.
	promptAddition string
}

// DefaultTone is used when a request names no tone or an unknown one.
const DefaultTone = "professional"

// tones lists the built-in tones in display order.
var tones = []Tone{
	{
		Key:         "professional",
		DisplayName: "Professional",
		Description: "Formal and authoritative, suited to investors and stakeholders",
		promptAddition: `Use formal and authoritative language suitable for investors and stakeholders.
Maintain a professional and corporate tone throughout the brochure.
Focus on achievements, metrics, and business value.`,
	},
	{
		Key:         "friendly",
		DisplayName: "Friendly",
		Description: "Warm and approachable, for a general audience",
		promptAddition: `Use warm and approachable language that resonates with a general audience.
Make the content engaging and easy to understand.
Emphasize the human side of the company and its values.`,
	},
	{
		Key:         "humorous",
		DisplayName: "Humorous",
		Description: "Witty and entertaining while staying professional",
		promptAddition: `Use witty and entertaining language while maintaining professionalism.
Include light humor and creative wordplay where appropriate.
Keep the content fun and memorable without sacrificing important information.`,
	},
	{
		Key:         "technical",
		DisplayName: "Technical",
		Description: "Detailed and precise, for technical stakeholders",
		promptAddition: `Use detailed and precise language suitable for technical stakeholders.
Include technical details, technologies, and methodologies where relevant.
Focus on innovation, technical capabilities, and engineering excellence.`,
	},
	{
		Key:         "executive",
		DisplayName: "Executive",
		Description: "Concise and high-level, for C-suite readers",
		promptAddition: `Use concise and high-level language appropriate for C-suite readers.
Focus on strategic vision, market position, and key differentiators.
Keep it brief and impactful, highlighting only the most critical information.`,
	},
}

// Tones returns the built-in tones in display order.
func Tones() []Tone {
	out := make([]Tone, len(tones))
	copy(out, tones)
	return out
}

// ToneByKey finds a tone by its key.
func ToneByKey(key string) (Tone, bool) {
	for _, tone := range tones {
		if tone.Key == key {
			return tone, true
		}
	}
	return Tone{}, false
}

// ToneByDisplayName finds a tone by its display name (case-insensitive).
func ToneByDisplayName(name string) (Tone, bool) {
	for _, tone := range tones {
		if strings.EqualFold(tone.DisplayName, name) {
			return tone, true
		}
	}
	return Tone{}, false
}

// ResolveTone accepts a tone key or display name and returns the tone,
// falling back to the professional default for empty or unknown input.
func ResolveTone(nameOrKey string) Tone {
	if nameOrKey != "" {
		if tone, ok := ToneByKey(nameOrKey); ok {
			return tone
		}
		if tone, ok := ToneByDisplayName(nameOrKey); ok {
			return tone
		}
	}
	tone, _ := ToneByKey(DefaultTone)
	return tone
}
