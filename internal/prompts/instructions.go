package prompts

import "fmt"

const generalInstructions = `You are an assistant for someone with visual impairment.
Describe what is in this image in a clear, concise way. Focus on:
1. Main objects or people present
2. Any visible text (signs, labels, instructions)
3. Potential hazards or obstacles
4. Spatial layout if relevant

Keep your response natural and conversational, under 3 sentences.`

const textInstructions = `You are helping someone read text in their environment.
Extract and read ALL visible text in this image, including:
- Signs and labels
- Product names and descriptions
- Instructions or warnings
- Any other written content

If there's no text, say "I don't see any readable text in this image."
Read the text naturally, as you would aloud.`

const hazardInstructions = `You are a safety assistant for someone with visual impairment.
Analyze this image for potential hazards and safety risks.

Respond in this EXACT format with clear line breaks:

HAZARD_LEVEL: [0-4]

WHAT I SEE:
[Short 1-sentence description of the main hazard or "No hazards visible"]

WHERE IT IS:
[Location: "on your left", "directly ahead", "on the desk", etc.]

WHY IT'S RISKY:
[Brief explanation of the danger]

WHAT TO DO:
[Simple action: "Avoid touching", "Watch your step", "Safe to proceed", etc.]

Hazard Level Guide:
0 = No hazards - Safe environment
1 = Low risk - Minor concerns (clutter, small obstacles)
2 = Medium risk - Moderate hazards (wet floor, cables, small steps)
3 = High risk - Significant hazards (sharp objects like scissors/knives, stairs, heights)
4 = Critical - Immediate danger (fire, exposed wires, chemical spills, active traffic)

Examples for calibration:
- Scissors on desk = HAZARD_LEVEL: 3
- Kitchen knife = HAZARD_LEVEL: 3
- Cable on floor = HAZARD_LEVEL: 2
- Wet floor = HAZARD_LEVEL: 2
- Stairs = HAZARD_LEVEL: 3
- Fire/smoke = HAZARD_LEVEL: 4
- Clean space = HAZARD_LEVEL: 0

IMPORTANT:
- Use short, simple sentences
- Add a blank line between each section
- Be specific about location
- Keep "What to do" to 5 words or less
- Err on the side of safety`

// hazardReminder is appended when re-querying after a malformed hazard report.
const hazardReminder = `

Your previous answer did not follow the required format. Start with the line "HAZARD_LEVEL: <0-4>" and include all four sections exactly as shown.`

const transcriptionInstructions = `Transcribe the speech in this audio clip verbatim in %s.
Return only the spoken words as plain text, with no labels, timestamps, or commentary.
If there is no intelligible speech, return an empty response.`

var instructions = map[Mode]string{
	ModeGeneral: generalInstructions,
	ModeText:    textInstructions,
	ModeHazard:  hazardInstructions,
}

// For returns the instructions for mode, falling back to the general prompt
// for any mode without catalog text.
func For(mode Mode) string {
	if text, ok := instructions[mode]; ok {
		return text
	}
	return generalInstructions
}

// Retry returns the hazard prompt with a format reminder appended.
func Retry() string {
	return hazardInstructions + hazardReminder
}

// Transcription returns the speech-to-text instruction for a language code.
func Transcription(language string) string {
	return fmt.Sprintf(transcriptionInstructions, languageName(language))
}

var languages = map[string]string{
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"hi": "Hindi",
	"pt": "Portuguese",
	"it": "Italian",
	"ja": "Japanese",
	"zh": "Chinese",
}

func languageName(code string) string {
	if name, ok := languages[code]; ok {
		return name
	}
	return fmt.Sprintf("the language with code %q", code)
}
