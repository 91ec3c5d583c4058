// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

package transform

import "strings"

// skipTrivia returns the first offset at or after i that is not whitespace
// or part of a comment.
func skipTrivia(src string, i int) int {
	for i < len(src) {
		switch c := src[i]; {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f':
			i++
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			i += 2
			for i < len(src) && src[i] != '\n' && src[i] != '\r' {
				i++
			}
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				return len(src)
			}
			i += end + 4
		case c == 0xC2 && i+1 < len(src) && src[i+1] == 0xA0: // NBSP
			i += 2
		case c == 0xEF && i+2 < len(src) && src[i+1] == 0xBB && src[i+2] == 0xBF: // BOM
			i += 3
		case c == 0xE2 && i+2 < len(src) && src[i+1] == 0x80 && (src[i+2] == 0xA8 || src[i+2] == 0xA9):
			i += 3
		default:
			return i
		}
	}
	return i
}

// seek scans forward from i, skipping trivia and any byte in skip, and
// returns the offset of want. It fails on the first other byte.
func seek(src string, i int, want byte, skip string) (int, bool) {
	for {
		i = skipTrivia(src, i)
		if i >= len(src) {
			return 0, false
		}
		c := src[i]
		if c == want {
			return i, true
		}
		if strings.IndexByte(skip, c) < 0 {
			return 0, false
		}
		i++
	}
}

// keyword reports whether word starts at i.
func keyword(src string, i int, word string) bool {
	return i >= 0 && i+len(word) <= len(src) && src[i:i+len(word)] == word
}

// onlyOpeners reports whether src[from:to] holds nothing but trivia and
// opening parentheses.
func onlyOpeners(src string, from, to int) bool {
	if from > to {
		return false
	}
	for i := from; i < to; {
		j := skipTrivia(src, i)
		if j >= to {
			return true
		}
		if src[j] != '(' {
			return false
		}
		i = j + 1
	}
	return true
}
