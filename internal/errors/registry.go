package errors

import (
	"maps"
	"slices"
)

// docBase is the documentation root. Codes without an explicit DocURL
// link to docBase + code.
const docBase = "https://signals.vango.dev/errors/"

// ErrorTemplate holds the fixed parts of a registered error code.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
	DocURL     string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// Reactive Core Errors (R001-R099)

	"R001": {
		Category:   CategoryContext,
		Message:    "Missing context provider",
		Detail:     "No scope between the current one and the root provides a value for this context key.",
		Suggestion: "Provide the value on an ancestor scope before mounting consumers, or use TryGet for optional values",
	},
	"R002": {
		Category:   CategoryCollection,
		Message:    "Duplicate key",
		Detail:     "A keyed list already holds an entry with this key. Keys identify entries across inserts and removals and must be unique.",
		Suggestion: "Generate keys with the list's Sequence or remove the existing entry first",
	},
	"R003": {
		Category:   CategoryReactive,
		Message:    "Circular dependency detected",
		Detail:     "A derived signal read itself while computing its own value. This is a configuration error and can never settle.",
		Suggestion: "Break the cycle by reading one of the values with Peek or Untracked",
	},
	"R004": {
		Category:   CategoryReactive,
		Message:    "Use after teardown",
		Detail:     "The scope that owns this value has been torn down. This usually means a view kept a reference to state of an unmounted subtree.",
		Suggestion: "Drop references to scope-owned values when the scope is disposed (see Owner.OnCleanup)",
	},
	"R005": {
		Category: CategoryReactive,
		Message:  "Type mismatch",
		Detail:   "The value has a different dynamic type than the signal holds.",
	},
	"R006": {
		Category: CategoryCollection,
		Message:  "Unknown key",
		Detail:   "The keyed list has no entry with this key.",
	},

	// Configuration Errors (C100-C149)

	"C100": {
		Category:   CategoryConfig,
		Message:    "Configuration file not found",
		Suggestion: "Create reactor.yaml or pass --config with an explicit path",
	},
	"C101": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "The configuration file could not be parsed.",
	},
	"C102": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
	},
	"C103": {
		Category: CategoryConfig,
		Message:  "Unsupported configuration format",
		Detail:   "Configuration files must end in .yaml, .yml, .json or .jsonc.",
	},

	// Snapshot Errors (S200-S249)

	"S200": {
		Category: CategorySnapshot,
		Message:  "Not a snapshot",
		Detail:   "The data does not start with the snapshot magic bytes.",
	},
	"S201": {
		Category: CategorySnapshot,
		Message:  "Unsupported snapshot version",
	},
	"S202": {
		Category: CategorySnapshot,
		Message:  "Unknown compression",
	},
	"S203": {
		Category:   CategorySnapshot,
		Message:    "Snapshot digest mismatch",
		Detail:     "The payload digest does not match the header. The snapshot is corrupt or was modified.",
		Suggestion: "Restore from another snapshot",
	},
	"S204": {
		Category: CategorySnapshot,
		Message:  "Snapshot not found",
	},
	"S205": {
		Category: CategorySnapshot,
		Message:  "Snapshot store failure",
	},
	"S206": {
		Category: CategorySnapshot,
		Message:  "Snapshot value could not be restored",
	},

	// Inspector Errors (I300-I349)

	"I300": {
		Category: CategoryInspector,
		Message:  "Unknown signal",
	},
	"I301": {
		Category: CategoryInspector,
		Message:  "Invalid signal value",
	},

	// CLI Errors (E400-E449)

	"E400": {
		Category: CategoryCLI,
		Message:  "Unknown snapshot store",
		Detail:   "Snapshot store must be one of: file, memory, s3.",
	},
	"E401": {
		Category: CategoryCLI,
		Message:  "Invalid argument",
	},
}

// GetAllCodes returns the registered codes in sorted order.
func GetAllCodes() []string {
	return slices.Sorted(maps.Keys(registry))
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
