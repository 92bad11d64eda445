package query

import (
	"cmp"
	"slices"

	"github.com/starford/notestxt/internal/note"
)

// TagCount pairs a tag with the number of notes carrying it.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// TagCover splits the tags of notes into a covering set and the rest.
//
// Tags are ranked by how many notes carry them (ties by name) and scanned
// greedily: a tag joins strict when it covers a note not covered yet, so
// that strict together covers every tagged note. Tags scanned after full
// coverage, or adding nothing new, go to nonStrict. This is the greedy set
// cover heuristic; strict is small but not guaranteed to be minimal.
//
// Tags listed in excluded are left out entirely.
func TagCover(notes []*note.Note, excluded []string) (strict, nonStrict []TagCount) {
	byTag := make(map[string][]int)
	for i, n := range notes {
		for _, tag := range n.Tags() {
			if !slices.Contains(excluded, tag) {
				byTag[tag] = append(byTag[tag], i)
			}
		}
	}

	ranked := make([]TagCount, 0, len(byTag))
	for tag, idx := range byTag {
		ranked = append(ranked, TagCount{Tag: tag, Count: len(idx)})
	}
	slices.SortFunc(ranked, func(a, b TagCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Tag, b.Tag)
	})

	covered := make([]bool, len(notes))
	nCovered := 0
	for _, tc := range ranked {
		added := 0
		if nCovered < len(notes) {
			for _, i := range byTag[tc.Tag] {
				if !covered[i] {
					covered[i] = true
					added++
				}
			}
		}
		if added > 0 {
			nCovered += added
			strict = append(strict, tc)
		} else {
			nonStrict = append(nonStrict, tc)
		}
	}
	return strict, nonStrict
}
