// Package fsname maps instances to canonical filesystem names and back.
// It is the single place that knows which artifact form a class takes;
// everything that needs a filesystem name (reference paths, dedup grouping,
// edit generation) goes through NameFor rather than re-deriving the mapping.
package fsname

import (
	"github.com/scenekit/scenesync/internal/scene"
)

// Format is the on-disk artifact form an instance maps to.
type Format int

const (
	// FormatDir is a plain directory named after the instance.
	FormatDir Format = iota
	// FormatServerScript is a single file with the server script extension.
	FormatServerScript
	// FormatClientScript is a single file with the client script extension.
	FormatClientScript
	// FormatModuleScript is a single file with the plain script extension.
	FormatModuleScript
	// FormatText is a single-value text file.
	FormatText
	// FormatDocument is a structured document for classes with no dedicated
	// file form.
	FormatDocument
)

var formatNames = []string{
	"dir",
	"server-script",
	"client-script",
	"module-script",
	"text",
	"document",
}

func (f Format) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return "unknown"
}

// Extension returns the compound file extension for the format, without the
// leading dot. Directory formats have no extension.
func (f Format) Extension() string {
	switch f {
	case FormatServerScript:
		return "server.lua"
	case FormatClientScript:
		return "client.lua"
	case FormatModuleScript:
		return "lua"
	case FormatText:
		return "txt"
	case FormatDocument:
		return "model.json"
	default:
		return ""
	}
}

// IsDir reports whether the format is a directory on disk.
func (f Format) IsDir() bool {
	return f == FormatDir
}

// RunContextProperty selects the script file extension for script classes.
const RunContextProperty = "RunContext"

var containerClasses = map[string]bool{
	"Folder":        true,
	"Model":         true,
	"ScreenGui":     true,
	"Frame":         true,
	"Configuration": true,
}

var scriptClasses = map[string]bool{
	"Script": true,
}

var textValueClasses = map[string]bool{
	"StringValue": true,
}

// FormatFor decides the artifact form for an instance. It is a pure function
// of the class, the presence of children, and the run-context property:
// container classes and any instance with children become directories, script
// classes pick an extension from RunContext, simple value holders become text
// files, and everything else becomes a structured document.
func FormatFor(inst *scene.Instance, hasChildren bool) Format {
	if containerClasses[inst.Class] || hasChildren {
		return FormatDir
	}
	if scriptClasses[inst.Class] {
		switch runContext(inst) {
		case "Server":
			return FormatServerScript
		case "Client":
			return FormatClientScript
		default:
			return FormatModuleScript
		}
	}
	if textValueClasses[inst.Class] {
		return FormatText
	}
	return FormatDocument
}

func runContext(inst *scene.Instance) string {
	value, ok := inst.Properties[RunContextProperty]
	if !ok {
		return ""
	}
	s, ok := value.(scene.String)
	if !ok {
		return ""
	}
	return string(s)
}
