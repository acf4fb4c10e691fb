// pattern: Functional Core

package stack

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// nodeManifest is the subset of package.json the node rules consult.
type nodeManifest struct {
	deps    map[string]gjson.Result
	devDeps map[string]gjson.Result
}

// parseNodeManifest reports false when data is not a JSON document.
func parseNodeManifest(data []byte) (nodeManifest, bool) {
	if !gjson.ValidBytes(data) {
		return nodeManifest{}, false
	}
	doc := gjson.ParseBytes(data)
	return nodeManifest{
		deps:    objectMembers(doc.Get("dependencies")),
		devDeps: objectMembers(doc.Get("devDependencies")),
	}, true
}

// objectMembers returns the members of an object result. Keys are taken
// literally, so scoped names like @angular/core need no path escaping.
func objectMembers(r gjson.Result) map[string]gjson.Result {
	if !r.IsObject() {
		return nil
	}
	members := make(map[string]gjson.Result)
	r.ForEach(func(key, value gjson.Result) bool {
		members[key.String()] = value
		return true
	})
	return members
}

func (m nodeManifest) has(scope depScope, pkg string) bool {
	_, inDeps := m.deps[pkg]
	_, inDev := m.devDeps[pkg]
	switch scope {
	case depsOnly:
		return inDeps
	case devOnly:
		return inDev
	default:
		return inDeps || inDev
	}
}

// declaresTypeScript reports whether typescript appears with a version string.
func (m nodeManifest) declaresTypeScript() bool {
	return m.deps["typescript"].Type == gjson.String || m.devDeps["typescript"].Type == gjson.String
}

// composerRequires reports whether composer.json requires pkg. The second
// result is false when data is not valid JSON.
func composerRequires(data []byte, pkg string) (bool, bool) {
	if !gjson.ValidBytes(data) {
		return false, false
	}
	_, ok := objectMembers(gjson.GetBytes(data, "require"))[pkg]
	return ok, true
}

// requirementName extracts the normalized distribution name from a PEP 508
// requirement ("Django>=4.2; python_version>'3.8'" gives "django").
func requirementName(line string) string {
	line = strings.TrimSpace(line)
	end := strings.IndexFunc(line, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_' || r == '.')
	})
	if end >= 0 {
		line = line[:end]
	}
	return strings.ReplaceAll(strings.ToLower(line), "_", "-")
}

// requirementsNames lists the packages named in a requirements.txt.
// Comments, blank lines and pip options are skipped.
func requirementsNames(data []byte) []string {
	var names []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if i := strings.Index(line, "#"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if line == "" || strings.HasPrefix(line, "-") {
			continue
		}
		if name := requirementName(line); name != "" {
			names = append(names, name)
		}
	}
	return names
}

type pyprojectFile struct {
	Project struct {
		Dependencies         []string            `toml:"dependencies"`
		OptionalDependencies map[string][]string `toml:"optional-dependencies"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Dependencies    map[string]any `toml:"dependencies"`
			DevDependencies map[string]any `toml:"dev-dependencies"`
			Group           map[string]struct {
				Dependencies map[string]any `toml:"dependencies"`
			} `toml:"group"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

// pyprojectNames lists the packages declared by a pyproject.toml in either
// PEP 621 or Poetry form.
func pyprojectNames(data []byte) ([]string, error) {
	var py pyprojectFile
	if _, err := toml.Decode(string(data), &py); err != nil {
		return nil, err
	}

	var names []string
	for _, req := range py.Project.Dependencies {
		names = append(names, requirementName(req))
	}
	for _, reqs := range py.Project.OptionalDependencies {
		for _, req := range reqs {
			names = append(names, requirementName(req))
		}
	}
	poetry := py.Tool.Poetry
	for name := range poetry.Dependencies {
		names = append(names, requirementName(name))
	}
	for name := range poetry.DevDependencies {
		names = append(names, requirementName(name))
	}
	for _, g := range poetry.Group {
		for name := range g.Dependencies {
			names = append(names, requirementName(name))
		}
	}
	return names, nil
}

// pythonFrameworks is checked in order; the first framework named wins.
var pythonFrameworks = []string{TagFastAPI, TagDjango, TagFlask}

// pythonFramework picks a framework from declared package names. A package
// counts when its name starts with the framework's, which covers plugins
// (flask-cors) and extensions (djangorestframework).
func pythonFramework(names []string) (string, bool) {
	for _, fw := range pythonFrameworks {
		for _, name := range names {
			if strings.HasPrefix(name, fw) {
				return fw, true
			}
		}
	}
	return "", false
}

// usesFlutterSDK reports whether a pubspec.yaml declares
// dependencies.flutter.sdk: flutter.
func usesFlutterSDK(data []byte) bool {
	var pubspec struct {
		Dependencies map[string]yaml.Node `yaml:"dependencies"`
	}
	if err := yaml.Unmarshal(data, &pubspec); err != nil {
		return false
	}
	node, ok := pubspec.Dependencies["flutter"]
	if !ok {
		return false
	}
	var dep struct {
		SDK string `yaml:"sdk"`
	}
	if err := node.Decode(&dep); err != nil {
		return false
	}
	return dep.SDK == "flutter"
}

// pomUsesSpring streams a pom.xml and reports whether any groupId or
// artifactId mentions Spring. A document that fails to parse reports false.
func pomUsesSpring(data []byte) bool {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true

	var current string
	found := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return found
		}
		if err != nil {
			return false
		}
		switch t := tok.(type) {
		case xml.StartElement:
			current = t.Name.Local
		case xml.EndElement:
			current = ""
		case xml.CharData:
			if current != "groupId" && current != "artifactId" {
				continue
			}
			v := strings.ToLower(string(t))
			if strings.Contains(v, "spring-boot") || strings.Contains(v, "springframework") {
				found = true
			}
		}
	}
}
