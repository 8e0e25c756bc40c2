// SPDX-License-Identifier: GPL-3.0-or-later

package dnsfs

import "strings"

// SanitizeName lowercases raw and drops every character outside
// [a-z0-9-_]. It never fails: disallowed characters are silently
// removed, so distinct raw names may collapse to the same identifier
// and alias the same stored file. This is a known limitation of the
// protocol, kept on purpose.
func SanitizeName(raw string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		case r >= 'a' && r <= 'z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_':
			return r
		default:
			return -1
		}
	}, raw)
}
