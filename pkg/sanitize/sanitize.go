package sanitize

import "strings"

// characters that are invalid or troublesome in file names on common
// filesystems, plus path separators
const illegalChars = "/\\?%*:|\"<>"

// Filename strips path separators, reserved characters and control
// characters from a name so it is safe to use as a single path element.
// Windows-style trailing dots and spaces are trimmed as well.
func Filename(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			continue
		}
		if strings.ContainsRune(illegalChars, r) {
			continue
		}
		b.WriteRune(r)
	}
	cleaned := strings.TrimRight(b.String(), ". ")
	if len(cleaned) > 255 {
		cleaned = cleaned[:255]
	}
	return cleaned
}
