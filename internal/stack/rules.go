// pattern: Functional Core

package stack

// Rule is one entry of the precedence table. Detect returns the tag and true
// when the rule claims the directory.
type Rule struct {
	Name   string
	Detect func(p *probe) (string, bool)
}

// marker builds a rule that matches when any of names exists.
func marker(tag string, names ...string) Rule {
	return Rule{Name: tag, Detect: func(p *probe) (string, bool) {
		return tag, p.exists(names...)
	}}
}

// extension builds a rule that matches a top-level entry with one of exts.
func extension(tag string, exts ...string) Rule {
	return Rule{Name: tag, Detect: func(p *probe) (string, bool) {
		return tag, p.hasExt(exts...)
	}}
}

// Rules is evaluated top to bottom; the first match wins.
var Rules = []Rule{
	marker(TagTauri, "tauri.conf.json", "src-tauri"),
	marker(TagRust, "Cargo.toml"),
	marker(TagDeno, "deno.json", "deno.jsonc"),
	marker(TagBun, "bun.lockb"),
	{Name: "flutter/dart", Detect: detectPubspec},
	extension(TagXcode, "xcodeproj", "xcworkspace"),
	{Name: TagAndroid, Detect: func(p *probe) (string, bool) {
		return TagAndroid, p.all("app", "gradle")
	}},
	{Name: TagUnity, Detect: func(p *probe) (string, bool) {
		return TagUnity, p.all("Assets", "ProjectSettings")
	}},
	extension(TagUnreal, "uproject"),
	marker(TagGodot, "project.godot"),
	{Name: "node", Detect: detectNode},
	marker(TagTypeScript, "tsconfig.json"),
	{Name: TagPython, Detect: detectPython},
	marker(TagGo, "go.mod"),
	{Name: "rails/ruby", Detect: detectRuby},
	{Name: "laravel/php", Detect: detectPHP},
	extension(TagDotnet, "csproj", "sln", "fsproj"),
	{Name: "spring/maven", Detect: detectMaven},
	{Name: "kotlin/gradle", Detect: detectGradle},
	marker(TagScala, "build.sbt"),
	marker(TagElixir, "mix.exs"),
	{Name: TagHaskell, Detect: func(p *probe) (string, bool) {
		return TagHaskell, p.hasExt("cabal") || p.exists("stack.yaml")
	}},
	marker(TagZig, "build.zig"),
	{Name: "cpp/c", Detect: detectCMake},
	extension(TagCpp, "vcxproj"),
	marker(TagLua, "init.lua", "main.lua", ".luarc.json"),
	extension(TagJupyter, "ipynb"),
	marker(TagDocker, "Dockerfile", "docker-compose.yml", "docker-compose.yaml"),
}

func detectPubspec(p *probe) (string, bool) {
	data, ok := p.read("pubspec.yaml")
	if !ok {
		if p.exists("pubspec.yaml") {
			return TagDart, true
		}
		return "", false
	}
	if usesFlutterSDK(data) {
		return TagFlutter, true
	}
	return TagDart, true
}

type depScope int

const (
	anyDeps depScope = iota
	depsOnly
	devOnly
)

// nodeRule matches when one of configs exists or pkg is declared in scope.
type nodeRule struct {
	tag     string
	configs []string
	pkg     string
	scope   depScope
}

// nodeRules is the framework table consulted once package.json parses.
var nodeRules = []nodeRule{
	{tag: TagNuxt, configs: []string{"nuxt.config.js", "nuxt.config.ts"}, pkg: "nuxt"},
	{tag: TagNextJS, pkg: "next"},
	{tag: TagRemix, pkg: "@remix-run/react"},
	{tag: TagAstro, configs: []string{"astro.config.mjs", "astro.config.ts", "astro.config.js"}, pkg: "astro"},
	{tag: TagSvelte, configs: []string{"svelte.config.js", "svelte.config.ts"}, pkg: "svelte"},
	{tag: TagQwik, pkg: "@builder.io/qwik"},
	{tag: TagSolidJS, pkg: "solid-js"},
	{tag: TagAngular, configs: []string{"angular.json"}, pkg: "@angular/core", scope: depsOnly},
	{tag: TagNest, pkg: "@nestjs/core", scope: depsOnly},
	{tag: TagVue, configs: []string{"vue.config.js"}, pkg: "vue", scope: depsOnly},
	{tag: TagReact, pkg: "react", scope: depsOnly},
	{tag: TagElectron, pkg: "electron"},
	{tag: TagHexo, pkg: "hexo", scope: depsOnly},
	{tag: TagVite, pkg: "vite", scope: devOnly},
}

// detectNode claims any directory with a parseable package.json. An
// unreadable or malformed manifest lets later rules decide.
func detectNode(p *probe) (string, bool) {
	data, ok := p.read("package.json")
	if !ok {
		return "", false
	}
	m, ok := parseNodeManifest(data)
	if !ok {
		return "", false
	}
	for _, r := range nodeRules {
		if !p.exists(r.configs...) && !m.has(r.scope, r.pkg) {
			continue
		}
		if r.tag == TagReact && m.declaresTypeScript() {
			return TagReactTS, true
		}
		return r.tag, true
	}
	return TagJavaScript, true
}

func detectPython(p *probe) (string, bool) {
	if p.exists("requirements.txt") {
		if data, ok := p.read("requirements.txt"); ok {
			if fw, ok := pythonFramework(requirementsNames(data)); ok {
				return fw, true
			}
		}
		return TagPython, true
	}
	if p.exists("pyproject.toml") {
		if data, ok := p.read("pyproject.toml"); ok {
			if names, err := pyprojectNames(data); err == nil {
				if fw, ok := pythonFramework(names); ok {
					return fw, true
				}
			}
		}
		return TagPython, true
	}
	if p.exists("manage.py") {
		return TagDjango, true
	}
	return TagPython, p.exists("setup.py", "Pipfile")
}

func detectRuby(p *probe) (string, bool) {
	if !p.exists("Gemfile") {
		return "", false
	}
	if p.exists("config/routes.rb") {
		return TagRails, true
	}
	return TagRuby, true
}

func detectPHP(p *probe) (string, bool) {
	if !p.exists("composer.json") {
		return "", false
	}
	data, ok := p.read("composer.json")
	if !ok {
		return TagPHP, true
	}
	requires, valid := composerRequires(data, "laravel/framework")
	if valid && (requires || p.exists("artisan")) {
		return TagLaravel, true
	}
	return TagPHP, true
}

func detectMaven(p *probe) (string, bool) {
	if !p.exists("pom.xml") {
		return "", false
	}
	if data, ok := p.read("pom.xml"); ok && pomUsesSpring(data) {
		return TagSpring, true
	}
	return TagMaven, true
}

func detectGradle(p *probe) (string, bool) {
	if !p.exists("build.gradle", "build.gradle.kts") {
		return "", false
	}
	if p.hasSource("kt") && !p.exists("app") {
		return TagKotlin, true
	}
	return TagGradle, true
}

func detectCMake(p *probe) (string, bool) {
	if !p.exists("CMakeLists.txt") {
		return "", false
	}
	if p.hasSource("cpp", "cxx", "cc") {
		return TagCpp, true
	}
	if p.hasSource("c") {
		return TagC, true
	}
	return TagCpp, true
}
