package conversation

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	introducedNamePattern = regexp.MustCompile(`(?i)\b(?:my name is|my name's|name is|i am|i'm|im|this is|it's)\s+([a-z][a-z'\-]*(?:\s+[a-z][a-z'\-]*){0,3})`)
	capitalizedRunPattern = regexp.MustCompile(`\b([A-Z][a-z'\-]+(?:\s+[A-Z][a-z'\-]+){1,3})\b`)

	nameStopWords = map[string]bool{
		"and": true, "my": true, "mobile": true, "phone": true, "number": true,
		"email": true, "e-mail": true, "is": true, "at": true, "on": true,
		"with": true, "from": true, "you": true, "can": true, "reach": true,
		"me": true, "the": true, "here": true, "please": true,
	}
)

// NameFromQuery pulls a probable full name out of free-form text such as
// "my name is jane doe and my email is ...". It returns "" when nothing
// name-like is found.
func NameFromQuery(text string) string {
	if m := introducedNamePattern.FindStringSubmatch(text); m != nil {
		if name := trimAtStopWord(m[1]); name != "" {
			return cases.Title(language.Und).String(name)
		}
	}
	for _, m := range capitalizedRunPattern.FindAllStringSubmatch(text, -1) {
		if name := trimAtStopWord(m[1]); strings.Contains(name, " ") {
			return name
		}
	}
	return ""
}

func trimAtStopWord(candidate string) string {
	var kept []string
	for _, word := range strings.Fields(candidate) {
		if nameStopWords[strings.ToLower(word)] {
			break
		}
		kept = append(kept, word)
	}
	return strings.Join(kept, " ")
}
