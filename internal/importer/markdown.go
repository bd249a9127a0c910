package importer

import (
	"bufio"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/qualgraph/qualgraph/pkg/types"
)

// ParsedNote is a single Markdown note converted into graph-ready pieces.
type ParsedNote struct {
	// RelativePath is the path relative to the import root directory.
	RelativePath string

	// Name is the entity name, from the "name" frontmatter field or the
	// filename when absent.
	Name string

	// EntityType comes from the "type" frontmatter field. Defaults to memo.
	EntityType string

	// Date is from the frontmatter "date" field, or zero when absent.
	Date time.Time

	// Tags is the tag list from frontmatter.
	Tags []string

	// Observations are the note's body paragraphs (wiki-links stripped),
	// preceded by a Date: line when the note carries a date.
	Observations []string

	// WikiLinks are all [[link]] targets referenced by the note body.
	WikiLinks []WikiLink
}

// ParseNote parses one Markdown note. relativePath supplies the fallback
// entity name. An unknown or missing "type" frontmatter value is an error so
// a typo in a transcript header cannot silently produce a misfiled entity.
func ParseNote(content []byte, relativePath string) (*ParsedNote, error) {
	fm, body, err := splitFrontmatter(string(content))
	if err != nil {
		return nil, fmt.Errorf("frontmatter parse error in %s: %w", relativePath, err)
	}

	name := frontmatterString(fm, "name")
	if name == "" {
		name = nameFromPath(relativePath)
	}
	if name == "" {
		return nil, fmt.Errorf("cannot derive an entity name for %s", relativePath)
	}

	entityType := frontmatterString(fm, "type")
	if entityType == "" {
		entityType = types.EntityTypeMemo
	}
	if !types.IsValidEntityType(entityType) {
		return nil, fmt.Errorf("unknown entity type %q in %s", entityType, relativePath)
	}

	note := &ParsedNote{
		RelativePath: relativePath,
		Name:         name,
		EntityType:   entityType,
		Date:         frontmatterDate(fm),
		Tags:         frontmatterTags(fm),
		WikiLinks:    ExtractWikiLinks(body),
	}

	if !note.Date.IsZero() {
		note.Observations = append(note.Observations,
			fmt.Sprintf("Date: %s", note.Date.Format("2006-01-02")))
	}
	note.Observations = append(note.Observations, bodyParagraphs(body)...)

	return note, nil
}

// splitFrontmatter separates YAML frontmatter (between --- delimiters) from
// the Markdown body. Returns an empty map and the full text when the note has
// no frontmatter block.
func splitFrontmatter(text string) (map[string]interface{}, string, error) {
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return map[string]interface{}{}, text, nil
	}

	closeIdx := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			closeIdx = i
			break
		}
	}
	if closeIdx == -1 {
		// No closing delimiter - treat the entire file as body.
		return map[string]interface{}{}, text, nil
	}

	fm := make(map[string]interface{})
	fmText := strings.Join(lines[1:closeIdx], "\n")
	if err := yaml.Unmarshal([]byte(fmText), &fm); err != nil {
		return nil, "", fmt.Errorf("invalid YAML: %w", err)
	}

	return fm, strings.Join(lines[closeIdx+1:], "\n"), nil
}

// bodyParagraphs splits the body into blank-line-separated paragraphs and
// strips wiki-link markup so observations read as plain prose.
func bodyParagraphs(body string) []string {
	var paragraphs []string
	for _, block := range strings.Split(body, "\n\n") {
		para := strings.TrimSpace(StripWikiLinks(block))
		if para != "" {
			paragraphs = append(paragraphs, para)
		}
	}
	return paragraphs
}

// nameFromPath derives an entity name from the filename, with dashes and
// underscores read as spaces.
func nameFromPath(rel string) string {
	base := filepath.Base(rel)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	name = strings.ReplaceAll(name, "-", " ")
	name = strings.ReplaceAll(name, "_", " ")
	return strings.TrimSpace(name)
}

// frontmatterString pulls a trimmed string value from frontmatter by key.
func frontmatterString(fm map[string]interface{}, key string) string {
	if s, ok := fm[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// frontmatterDate reads the "date" field and attempts several common layouts.
func frontmatterDate(fm map[string]interface{}) time.Time {
	raw, ok := fm["date"]
	if !ok {
		return time.Time{}
	}

	var s string
	switch v := raw.(type) {
	case time.Time:
		return v
	case string:
		s = v
	default:
		s = fmt.Sprintf("%v", v)
	}

	layouts := []string{
		"2006-01-02",
		time.RFC3339,
		"2006-01-02 15:04:05",
		"January 2, 2006",
		"Jan 2, 2006",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t
		}
	}
	return time.Time{}
}

// frontmatterTags reads tags from frontmatter, handling both list and
// comma-separated string forms.
func frontmatterTags(fm map[string]interface{}) []string {
	raw, ok := fm["tags"]
	if !ok {
		return nil
	}

	switch v := raw.(type) {
	case []interface{}:
		var tags []string
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				tags = append(tags, strings.TrimSpace(s))
			}
		}
		return tags
	case string:
		var tags []string
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
		return tags
	}
	return nil
}
