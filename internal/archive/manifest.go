package archive

import (
	"bytes"
	"sort"
	"unicode/utf8"
)

// ManifestPath is the reserved path of the generated manifest.
const ManifestPath = "META-INF/MANIFEST.MF"

// maxLineBytes is the manifest line limit, excluding the line break.
const maxLineBytes = 72

// CreatedBy is written into every manifest.
const CreatedBy = "jarsmith"

// Manifest renders the main section of a jar manifest. Main-Class is
// omitted when empty; extra attributes follow in key order.
func Manifest(mainClass string, attributes map[string]string) []byte {
	var buf bytes.Buffer
	writeAttribute(&buf, "Manifest-Version", "1.0")
	if mainClass != "" {
		writeAttribute(&buf, "Main-Class", mainClass)
	}
	writeAttribute(&buf, "Created-By", CreatedBy)

	keys := make([]string, 0, len(attributes))
	for k := range attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writeAttribute(&buf, k, attributes[k])
	}
	buf.WriteString("\r\n")
	return buf.Bytes()
}

// writeAttribute writes "name: value", continuing lines longer than 72
// bytes with a leading space. Multi-byte characters are never split.
func writeAttribute(buf *bytes.Buffer, name, value string) {
	line := name + ": " + value
	limit := maxLineBytes
	for len(line) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		buf.WriteString(line[:cut])
		buf.WriteString("\r\n ")
		line = line[cut:]
		limit = maxLineBytes - 1
	}
	buf.WriteString(line)
	buf.WriteString("\r\n")
}
