package paper

import "fmt"

// MaxContextChars bounds how much extracted text is sent with the prompt.
const MaxContextChars = 7500

const promptTemplate = `Given the above text extracted from the first page of an academic pdf, I would like to generate a pdf filename for the paper with the format:

{Title with spaces between words}-{year}.pdf.

The year can also be in the following filename: %s. If the filename looks like 2402.07401.pdf, this is a pdf from arXiv and the year is 2024. If it were 2302.07401.pdf, the year would be 2023. Prefer the year from the filename. If the year is not present in either the filename or the text, use 0000. Use spaces to separates words in {title}. rather than dashes (-) ('This is a title' is a valid title, 'This-is-a-title' isn't, neither is 'This_is_a_title'.). The title should not be all CAPS or all lowercase. Do not output code to extract the filename. The new filename should only valid POSIX filename characters and end with the pdf extension. Your output should be just the new filename.`

const languageTemplate = ` The text is in %s, so please respond in %s.`

// BuildPrompt returns the instruction for the given original filename.
func BuildPrompt(filename, language string) string {
	prompt := fmt.Sprintf(promptTemplate, filename)
	if language != DefaultLanguage {
		prompt += fmt.Sprintf(languageTemplate, language, language)
	}
	return prompt
}

// BuildMessage returns the content of the single system message sent to the
// completion endpoint.
func BuildMessage(text, filename, language string) string {
	return truncate(text, MaxContextChars) + "\n\n" + BuildPrompt(filename, language)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
