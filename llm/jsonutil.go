package llm

import (
	"regexp"
	"strings"
)

// Pre-compiled patterns for JSON extraction from LLM responses.
var (
	// fencePattern matches JSON inside markdown code blocks: ```json { ... } ```
	fencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)```")
	// arrayPattern matches a JSON array (greedy fallback for ExtractJSONArray).
	arrayPattern = regexp.MustCompile(`(?s)\[[\s\S]*\]`)
	// trailingCommaPattern matches trailing commas before ] or }.
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
)

// ExtractJSON extracts a JSON object from an LLM response string.
// Classifier output commonly arrives wrapped in markdown fences with
// trailing prose or comment noise; this strips known wrappers, then scans
// for the first balanced brace-delimited object by depth counting.
// Returns "" when the content holds no object at all.
func ExtractJSON(content string) string {
	// Prefer the interior of a code fence when one is present.
	if m := fencePattern.FindStringSubmatch(content); len(m) > 1 {
		if obj := firstBalancedObject(m[1]); obj != "" {
			return cleanJSON(obj)
		}
	}
	if obj := firstBalancedObject(content); obj != "" {
		return cleanJSON(obj)
	}
	return ""
}

// ExtractJSONArray extracts a JSON array from an LLM response string.
func ExtractJSONArray(content string) string {
	if m := fencePattern.FindStringSubmatch(content); len(m) > 1 {
		if arr := arrayPattern.FindString(m[1]); arr != "" {
			return cleanJSON(arr)
		}
	}
	if arr := arrayPattern.FindString(content); arr != "" {
		return cleanJSON(arr)
	}
	return ""
}

// firstBalancedObject scans content for the first '{' and returns the
// substring through its matching '}', tracking brace depth and skipping
// braces inside string literals. Returns "" when no balanced object exists.
func firstBalancedObject(content string) string {
	start := strings.IndexByte(content, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(content); i++ {
		ch := content[i]
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return content[start : i+1]
				}
			}
		}
	}
	return ""
}

// cleanJSON removes JavaScript-style comments and trailing commas.
// LLMs commonly produce these invalid JSON artifacts.
func cleanJSON(raw string) string {
	lines := strings.Split(raw, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		cleaned = append(cleaned, stripLineComment(line))
	}
	result := strings.Join(cleaned, "\n")

	return trailingCommaPattern.ReplaceAllString(result, "$1")
}

// stripLineComment removes a // comment from a JSON line, respecting string
// values (a URL like "http://x" is not a comment).
func stripLineComment(line string) string {
	if !strings.Contains(line, "//") {
		return line
	}

	inString := false
	escaped := false
	for i := 0; i < len(line); i++ {
		ch := line[i]
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' && inString {
			escaped = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if !inString && ch == '/' && i+1 < len(line) && line[i+1] == '/' {
			return strings.TrimRight(line[:i], " \t")
		}
	}
	return line
}
