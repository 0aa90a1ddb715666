// Package prompt embeds the model-facing templates and renders them with
// {token} substitution.
package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/extractor.txt
	extractorRaw string

	//go:embed template/responder.txt
	responderRaw string
)

// Set holds loaded prompt content.
type Set struct {
	Extractor string
	Responder string
}

// Load returns the trimmed templates. Safe to call concurrently; the embed is
// compile-time.
func Load() Set {
	return Set{
		Extractor: strings.TrimSpace(extractorRaw),
		Responder: strings.TrimSpace(responderRaw),
	}
}

// Render substitutes {key} tokens. Unknown tokens in the template are left
// as-is; unused vars are ignored.
func Render(template string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
