package report

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// ===== Report parsing =====

var (
	statsRE     = regexp.MustCompile(`P0=(\d+) \| P1=(\d+) \| P2=(\d+) \| P3=(\d+)`)
	rawPathsRE  = regexp.MustCompile(`Total Raw Paths: (\d+)`)
	entryRE     = regexp.MustCompile(`(?m)^(P\d\.\d+) \(Length: (\d+)\):$`)
	startRE     = regexp.MustCompile(`^\((\w+)\)`)
	segmentRE   = regexp.MustCompile(`--\s*\[([^\]]+)\]\s*-->\s*\((\w+)\)`)
	skippedRE   = regexp.MustCompile(`\((\w+) --\[([^\]]+)\]--> (\w+)\)`)
	collapseRE  = regexp.MustCompile(`\n\s+`)
	truncatedRE = regexp.MustCompile(`(?m)^WARNING: Path enumeration truncated`)
)

// Parse reads a text report back into a Document.
//
// It accepts exactly the format Emitter produces. Actions are not present in
// the text form, so parsed segments carry empty Action fields, and bucket
// counts come from the section contents rather than the header line.
func Parse(r io.Reader) (*Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	text := string(raw)

	if !strings.Contains(text, MarkerP0) {
		return nil, fmt.Errorf("not a priority report: missing %q", MarkerP0)
	}

	doc := &Document{Truncated: truncatedRE.MatchString(text)}
	if m := rawPathsRE.FindStringSubmatch(text); m != nil {
		doc.TotalRawPaths, _ = strconv.Atoi(m[1])
	}
	if m := statsRE.FindStringSubmatch(text); m != nil {
		doc.Stats.P0, _ = strconv.Atoi(m[1])
		doc.Stats.P1, _ = strconv.Atoi(m[2])
		doc.Stats.P2, _ = strconv.Atoi(m[3])
		doc.Stats.P3, _ = strconv.Atoi(m[4])
		doc.Stats.TotalPaths = doc.Stats.P0 + doc.Stats.P1 + doc.Stats.P2 + doc.Stats.P3
	}

	doc.P0 = parseSection(text, MarkerP0, MarkerP1)
	doc.P1 = parseSection(text, MarkerP1, MarkerP2)
	doc.P2 = parseSection(text, MarkerP2, MarkerP3)
	doc.P3 = parseSection(text, MarkerP3, MarkerWarning)

	if wi := strings.Index(text, MarkerWarning); wi >= 0 {
		warning := text[wi:]
		doc.SkippedEdges = parseSkippedLine(warning, "Skipped Edges:")
		doc.SkippedLoops = parseSkippedLine(warning, "Skipped Loops:")
	}
	return doc, nil
}

// parseSection extracts the path entries between two marker lines.
func parseSection(text, marker, next string) []PathRecord {
	start := strings.Index(text, marker)
	if start < 0 {
		return nil
	}
	section := text[start+len(marker):]
	if end := strings.Index(section, next); end >= 0 {
		section = section[:end]
	}

	var records []PathRecord
	matches := entryRE.FindAllStringSubmatchIndex(section, -1)
	for i, m := range matches {
		id := section[m[2]:m[3]]
		length, _ := strconv.Atoi(section[m[4]:m[5]])
		bodyEnd := len(section)
		if i+1 < len(matches) {
			bodyEnd = matches[i+1][0]
		}
		body := section[m[1]:bodyEnd]
		if cut := strings.Index(body, "----"); cut >= 0 {
			body = body[:cut]
		}
		rec := PathRecord{ID: id, Length: length}
		rec.Start, rec.Segments = parsePathText(body)
		records = append(records, rec)
	}
	return records
}

// parsePathText turns "(A) --[x]--> (B)" (possibly wrapped) into segments.
func parsePathText(text string) (string, []Segment) {
	normalized := collapseRE.ReplaceAllString(strings.TrimSpace(text), " ")
	sm := startRE.FindStringSubmatch(normalized)
	if sm == nil {
		return "", nil
	}
	current := sm[1]
	start := current
	var segments []Segment
	for _, m := range segmentRE.FindAllStringSubmatch(normalized, -1) {
		segments = append(segments, Segment{From: current, Label: m[1], To: m[2]})
		current = m[2]
	}
	return start, segments
}

func parseSkippedLine(warning, prefix string) []EdgeRecord {
	for _, line := range strings.Split(warning, "\n") {
		if !strings.HasPrefix(line, prefix) {
			continue
		}
		var edges []EdgeRecord
		for _, m := range skippedRE.FindAllStringSubmatch(line, -1) {
			edges = append(edges, EdgeRecord{From: m[1], Label: m[2], To: m[3]})
		}
		return edges
	}
	return nil
}
