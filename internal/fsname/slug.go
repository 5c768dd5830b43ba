package fsname

import (
	"errors"
	"fmt"
	"strings"
)

// Characters that can never appear in a file name on the platforms we care
// about. The tilde is additionally reserved as the dedup suffix separator.
const forbiddenChars = `<>:"/|?*\`
const slugChars = forbiddenChars + "~"

// File names reserved by Windows regardless of extension.
var reservedNames = map[string]bool{
	"con": true, "prn": true, "aux": true, "nul": true,
	"com1": true, "com2": true, "com3": true, "com4": true, "com5": true,
	"com6": true, "com7": true, "com8": true, "com9": true,
	"lpt1": true, "lpt2": true, "lpt3": true, "lpt4": true, "lpt5": true,
	"lpt6": true, "lpt7": true, "lpt8": true, "lpt9": true,
}

// Name endings that would combine with a format extension into a compound
// extension and change how the artifact is classified on reload. A name
// "main.server" written as "main.server.lua" would read back as a server
// script whatever it was.
var dangerousSuffixes = []string{
	".server", ".client", ".meta", ".model",
}

// NeedsSlugify reports whether a raw instance name cannot be used as a
// filesystem name verbatim.
func NeedsSlugify(name string) bool {
	if name == "" {
		return true
	}
	if strings.HasPrefix(name, " ") || strings.HasSuffix(name, " ") || strings.HasSuffix(name, ".") {
		return true
	}
	for _, r := range name {
		if r < 0x20 || strings.ContainsRune(slugChars, r) {
			return true
		}
	}
	if hasDangerousSuffix(name) {
		return true
	}
	return reservedNames[strings.ToLower(name)]
}

func hasDangerousSuffix(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range dangerousSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

// Slugify converts a raw instance name into a safe filesystem name. It is
// pure and does not resolve collisions; pair it with Deduplicate.
func Slugify(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if r < 0x20 || strings.ContainsRune(slugChars, r) {
			b.WriteByte('_')
		} else {
			b.WriteRune(r)
		}
	}
	out := strings.TrimLeft(b.String(), " ")

	// Replacing the dot of one dangerous suffix can expose another
	// ("a.meta.server" loses ".server" first, then ".meta").
	for hasDangerousSuffix(out) {
		idx := strings.LastIndexByte(out, '.')
		if idx < 0 {
			break
		}
		out = out[:idx] + "_" + out[idx+1:]
	}

	// Trailing spaces and dots are invalid on Windows. Strip them before
	// the reserved-name check so "CON." still gets caught.
	out = strings.TrimRight(out, " .")

	if reservedNames[strings.ToLower(out)] {
		out += "_"
	}

	if out == "" || strings.Trim(out, "_") == "" {
		out = "instance"
	}
	return out
}

// ValidateFileName rejects names that cannot exist on at least one supported
// platform, with a reason.
func ValidateFileName(name string) error {
	if strings.HasSuffix(name, " ") {
		return errors.New("file names cannot end with a space")
	}
	if strings.HasSuffix(name, ".") {
		return errors.New("file names cannot end with '.'")
	}
	for _, r := range name {
		if strings.ContainsRune(forbiddenChars, r) {
			return fmt.Errorf("file names cannot contain any of %s", forbiddenChars)
		}
		if r < 0x20 {
			return errors.New("file names cannot contain control characters")
		}
	}
	if reservedNames[strings.ToLower(name)] {
		return fmt.Errorf("files cannot be named %s", name)
	}
	return nil
}

// Deduplicate returns base unchanged when it is free, otherwise the first
// "base~N" not in taken. Comparison is case-insensitive because the common
// desktop filesystems are; taken must hold lowercased entries.
func Deduplicate(base string, taken map[string]bool) string {
	if !taken[strings.ToLower(base)] {
		return base
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s~%d", base, i)
		if !taken[strings.ToLower(candidate)] {
			return candidate
		}
	}
}
