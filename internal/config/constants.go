package config

// Version is the toolchain version checked against liger_version constraints.
const Version = "0.4.0"

const SourceFileExt = ".lig"

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".lig"}

// Built-in function names
const (
	ResizeFuncName  = "resize"
	SizeofFuncName  = "sizeof"
	PrintFuncName   = "print"
	GetcharFuncName = "getchar"
)

const MainFuncName = "main"

// ReturnSymbolName is the pseudo-binding holding the enclosing function's
// return type. The leading '$' keeps it out of the identifier space.
const ReturnSymbolName = "$return"

// DefaultMaxDepth bounds parser and checker recursion.
const DefaultMaxDepth = 1000

// Config file names, searched in this order.
const (
	ConfigFileName    = "liger.yaml"
	AltConfigFileName = "liger.yml"
)

// Color modes for terminal output.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Report formats for `liger check`.
const (
	FormatText = "text"
	FormatYAML = "yaml"
)
