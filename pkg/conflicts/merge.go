package conflicts

import (
	"bytes"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// hunk replaces base lines [i1, i2) by some lines, on one side of a merge
type hunk struct {
	side   int
	i1, i2 int
	lines  []string
}

func splitLines(b []byte) []string {
	if len(b) == 0 {
		return nil
	}
	lines := strings.SplitAfter(string(b), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func hunks(side int, base, other []string) []hunk {
	matcher := difflib.NewMatcherWithJunk(base, other, false, nil)
	var result []hunk
	for _, op := range matcher.GetOpCodes() {
		if op.Tag == 'e' {
			continue
		}
		result = append(result, hunk{side: side, i1: op.I1, i2: op.I2, lines: other[op.J1:op.J2]})
	}
	return result
}

// apply the hunks of one side to base lines [lo, hi)
func apply(base []string, lo, hi int, group []hunk, side int) []string {
	var out []string
	cursor := lo
	for _, h := range group {
		if h.side != side {
			continue
		}
		out = append(out, base[cursor:h.i1]...)
		out = append(out, h.lines...)
		cursor = h.i2
	}
	return append(out, base[cursor:hi]...)
}

func equalLines(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Merge performs a 3-way line merge of left and right, with base as their common ancestor
func Merge(base, left, right []byte) []byte {
	baseLines := splitLines(base)
	all := append(hunks(0, baseLines, splitLines(left)), hunks(1, baseLines, splitLines(right))...)
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].i1 != all[j].i1 {
			return all[i].i1 < all[j].i1
		}
		return all[i].i2 < all[j].i2
	})

	var out bytes.Buffer
	write := func(lines []string) {
		for _, line := range lines {
			out.WriteString(line)
		}
	}
	writeSection := func(marker string, lines []string) {
		out.WriteString(marker)
		write(lines)
		if n := len(lines); n > 0 && !strings.HasSuffix(lines[n-1], "\n") {
			out.WriteString("\n")
		}
	}

	pos := 0
	for i := 0; i < len(all); {
		lo, hi := all[i].i1, all[i].i2
		sides := [2]bool{}
		sides[all[i].side] = true
		j := i + 1
		for ; j < len(all) && (all[j].i1 < hi || all[j].i1 == lo); j++ {
			if all[j].i2 > hi {
				hi = all[j].i2
			}
			sides[all[j].side] = true
		}
		group := all[i:j]
		i = j

		write(baseLines[pos:lo])
		pos = hi

		leftLines := apply(baseLines, lo, hi, group, 0)
		rightLines := apply(baseLines, lo, hi, group, 1)
		switch {
		case !sides[1]:
			write(leftLines)
		case !sides[0]:
			write(rightLines)
		case equalLines(leftLines, rightLines):
			write(leftLines)
		default:
			out.WriteString(startMarker)
			writeSection(removeMarker, baseLines[lo:hi])
			writeSection(addMarker, leftLines)
			writeSection(addMarker, rightLines)
			out.WriteString(endMarker)
		}
	}
	write(baseLines[pos:])
	return out.Bytes()
}
