package utils

import "strings"

// NormalizeTags turns comma-separated tag input into the canonical tag list:
// pieces are trimmed, empty pieces dropped, inner whitespace runs collapsed
// to one space, and duplicates removed keeping the first occurrence.
func NormalizeTags(input string) []string {
	tags := make([]string, 0)
	seen := make(map[string]struct{})
	for _, piece := range strings.Split(input, ",") {
		// Fields splits on any whitespace run and drops leading/trailing space.
		tag := strings.Join(strings.Fields(piece), " ")
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// NormalizeTagList applies NormalizeTags to tags that are already split.
// Entries containing commas are split further.
func NormalizeTagList(tags []string) []string {
	return NormalizeTags(strings.Join(tags, ","))
}

// JoinTags renders tags back into the comma-separated form used by the note form.
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}
