// pattern: Functional Core

package stack

// Stack tags. Exactly one is assigned per project; TagUnknown means the
// directory exists but no rule matched.
const (
	TagTauri      = "tauri"
	TagRust       = "rust"
	TagDeno       = "deno"
	TagBun        = "bun"
	TagFlutter    = "flutter"
	TagDart       = "dart"
	TagXcode      = "xcode"
	TagAndroid    = "android"
	TagUnity      = "unity"
	TagUnreal     = "unreal"
	TagGodot      = "godot"
	TagNuxt       = "nuxt"
	TagNextJS     = "nextjs"
	TagRemix      = "remix"
	TagAstro      = "astro"
	TagSvelte     = "svelte"
	TagQwik       = "qwik"
	TagSolidJS    = "solidjs"
	TagAngular    = "angular"
	TagNest       = "nest"
	TagVue        = "vue"
	TagReact      = "react"
	TagReactTS    = "react_ts"
	TagElectron   = "electron"
	TagHexo       = "hexo"
	TagVite       = "vite"
	TagJavaScript = "javascript"
	TagTypeScript = "typescript"
	TagFastAPI    = "fastapi"
	TagDjango     = "django"
	TagFlask      = "flask"
	TagPython     = "python"
	TagGo         = "go"
	TagRails      = "rails"
	TagRuby       = "ruby"
	TagLaravel    = "laravel"
	TagPHP        = "php"
	TagDotnet     = "dotnet"
	TagSpring     = "spring"
	TagMaven      = "maven"
	TagKotlin     = "kotlin"
	TagGradle     = "gradle"
	TagScala      = "scala"
	TagElixir     = "elixir"
	TagHaskell    = "haskell"
	TagZig        = "zig"
	TagCpp        = "cpp"
	TagC          = "c"
	TagLua        = "lua"
	TagJupyter    = "jupyter"
	TagDocker     = "docker"
	TagUnknown    = "unknown"
)
