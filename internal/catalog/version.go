package catalog

import (
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// CompareVersions returns -1, 0 or 1 as a is less than, equal to or greater
// than b. Semantic versions are compared with semver rules; anything else is
// compared part by part as dot-separated integers, missing parts counting as
// zero. An empty version is lower than any non-empty one.
func CompareVersions(a, b string) int {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	case b == "":
		return 1
	}

	va, vb := canonical(a), canonical(b)
	if semver.IsValid(va) && semver.IsValid(vb) {
		return semver.Compare(va, vb)
	}
	return compareNumeric(a, b)
}

// NeedsImport reports whether a remote version should replace the local
// one: always when nothing is stored, otherwise only when strictly newer.
func NeedsImport(local string, hasLocal bool, remote string) bool {
	if !hasLocal {
		return true
	}
	return CompareVersions(remote, local) > 0
}

func canonical(v string) string {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

func compareNumeric(a, b string) int {
	pa := strings.Split(strings.TrimPrefix(a, "v"), ".")
	pb := strings.Split(strings.TrimPrefix(b, "v"), ".")
	for i := range max(len(pa), len(pb)) {
		na, nb := part(pa, i), part(pb, i)
		if na != nb {
			if na < nb {
				return -1
			}
			return 1
		}
	}
	return 0
}

// part returns the i-th numeric part, or 0 when missing or not a number.
func part(parts []string, i int) int {
	if i >= len(parts) {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
	if err != nil {
		return 0
	}
	return n
}
