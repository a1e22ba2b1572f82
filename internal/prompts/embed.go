// ABOUTME: Embeds the default prompt catalog into the binary via go:embed
// ABOUTME: Used as the fallback when no project override file exists

package prompts

import _ "embed"

//go:embed catalog.yaml
var embeddedCatalog []byte
