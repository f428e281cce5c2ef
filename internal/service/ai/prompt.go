package ai

// The two personas are fixed by the product: every call site uses one of
// these verbatim, with an optional reply-language directive appended.

// ChatSystemPrompt restricts the companion to mental-wellbeing topics with a
// short-answer length constraint.
const ChatSystemPrompt = "You are a compassionate and supportive mental health assistant. " +
	"Only respond to queries related to mental well-being, stress, emotions, anxiety, self-care, or personal support. " +
	"Answer should be short and simple between 50–80 words max"

// TipSystemPrompt is the daily-tip variant: tighter length and novel phrasing
// on every call.
const TipSystemPrompt = "You are a compassionate and supportive mental health assistant. " +
	"Only respond to queries related to mental well-being, stress, emotions, anxiety, self-care, or personal support. " +
	"Answer should be short and simple between 25-35 words max. and always generate different answer"

// languageNames maps the reply-language codes offered by the client UI.
var languageNames = map[string]string{
	"en": "English",
	"hi": "Hindi",
	"mr": "Marathi",
	"pa": "Punjabi",
	"ta": "Tamil",
	"kn": "Kannada",
	"bn": "Bengali",
	"te": "Telugu",
	"gu": "Gujarati",
	"ml": "Malayalam",
	"or": "Odia",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"it": "Italian",
	"pt": "Portuguese",
	"ja": "Japanese",
	"zh": "Chinese",
	"ar": "Arabic",
}

// WithLanguage appends a reply-language directive to a system prompt.
// English and unknown codes leave the prompt unchanged.
func WithLanguage(systemPrompt, code string) string {
	if code == "" || code == "en" {
		return systemPrompt
	}
	name, ok := languageNames[code]
	if !ok {
		return systemPrompt
	}
	return systemPrompt + "\nRespond in " + name + "."
}
