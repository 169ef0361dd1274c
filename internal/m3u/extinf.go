package m3u

import (
	"regexp"
	"strconv"
	"strings"
)

// attrRE extracts key="value" attributes from an #EXTINF line. Unlike a
// looser quoted-or-bare pattern, the wire format only promises quoted
// values for the known keys (tvg-id, tvg-name, tvg-logo, group-title);
// unknown attributes are preserved but unused by callers.
var attrRE = regexp.MustCompile(`([\w-]+)="([^"]*)"`)

// durationRE matches the leading signed integer on an #EXTINF header.
var durationRE = regexp.MustCompile(`^-?\d+`)

// multiSpaceRE collapses runs of whitespace for normalization.
var multiSpaceRE = regexp.MustCompile(`\s{2,}`)

// extinf is the parsed content of an #EXTINF: line, before the URL line
// that follows it is known.
type extinf struct {
	duration   int
	attributes map[string]string
	title      string
}

// parseExtinf splits an #EXTINF: line into its duration, attribute map,
// and trailing title. It returns (extinf{}, false) if line does not carry the
// required "#EXTINF:" prefix and a comma separating header from title.
func parseExtinf(line string) (extinf, bool) {
	if !strings.HasPrefix(line, "#EXTINF:") {
		return extinf{}, false
	}
	content := line[len("#EXTINF:"):]

	comma := strings.Index(content, ",")
	if comma < 0 {
		return extinf{}, false
	}
	header := content[:comma]
	title := strings.TrimSpace(content[comma+1:])

	duration := -1
	if m := durationRE.FindString(header); m != "" {
		if n, err := strconv.Atoi(m); err == nil {
			duration = n
		}
	}

	attrs := make(map[string]string)
	for _, m := range attrRE.FindAllStringSubmatch(header, -1) {
		attrs[strings.ToLower(m[1])] = m[2]
	}

	return extinf{duration: duration, attributes: attrs, title: title}, true
}

// normalizeText trims and collapses internal whitespace runs to a single
// space.
func normalizeText(s string) string {
	return multiSpaceRE.ReplaceAllString(strings.TrimSpace(s), " ")
}
