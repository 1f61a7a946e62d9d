package project

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/leapstack-labs/dessist/internal/codegen"
	"github.com/leapstack-labs/dessist/internal/dtsx"
	"github.com/leapstack-labs/dessist/internal/naming"
)

// ScriptsDir is the folder of the generated project holding exported script
// task sources.
const ScriptsDir = "scripts"

// Script project element tags.
const (
	tagScriptProject = "ScriptProject"
	tagProjectItem   = "ProjectItem"
	tagBinaryItem    = "BinaryItem"
)

// ErrNoScriptProject is returned for a script task without an embedded
// project.
var ErrNoScriptProject = errors.New("script task has no embedded project")

// ScriptExporter copies the embedded sources of script tasks into the
// generated project. Script code is not translated.
type ScriptExporter struct {
	names *naming.Service
	files []File
}

// NewScriptExporter creates an exporter drawing folder names from names.
func NewScriptExporter(names *naming.Service) *ScriptExporter {
	return &ScriptExporter{names: names}
}

// EmitScriptProject exports the project items of task under
// scripts/<folder> and writes a pointer to them into the task function.
func (s *ScriptExporter) EmitScriptProject(task *dtsx.Node, w *codegen.Writer) error {
	project := task.Descend(dtsx.TagObjectData, tagScriptProject)
	if project == nil {
		return ErrNoScriptProject
	}
	items := project.FindChildrenByType(tagProjectItem)
	if len(items) == 0 {
		return fmt.Errorf("%w: project %q has no source items", ErrNoScriptProject, project.Attr("Name"))
	}

	folder := path.Join(ScriptsDir, s.names.FolderName(task))
	var exported []string
	for _, item := range items {
		name, err := itemPath(item.Attr("Name"))
		if err != nil {
			return err
		}
		s.files = append(s.files, File{Path: path.Join(folder, name), Data: []byte(item.Content)})
		exported = append(exported, name)
	}

	w.Comment("Script project %s exported to %s", project.Attr("Name"), folder)
	w.Comment("Items: %s", strings.Join(exported, ", "))
	if n := len(project.FindChildrenByType(tagBinaryItem)); n > 0 {
		w.Comment("%d binary items not exported", n)
	}
	return nil
}

// Files returns the exported sources.
func (s *ScriptExporter) Files() []File {
	out := make([]File, len(s.files))
	copy(out, s.files)
	return out
}

// itemPath turns a project item name into a relative slash path that stays
// inside its folder.
func itemPath(name string) (string, error) {
	p := path.Clean(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	p = strings.TrimPrefix(p, "/")
	if p == "" || p == "." || p == ".." || strings.HasPrefix(p, "../") {
		return "", fmt.Errorf("script project item %q has no usable path", name)
	}
	return p, nil
}
