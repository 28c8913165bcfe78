package preset_configs

import (
	"embed"
)

// FS provides embedded default table config YAMLs for external usage.
//
//go:embed *.yaml
var FS embed.FS
