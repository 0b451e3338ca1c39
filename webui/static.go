package webui

import _ "embed"

// indexHTML is the single-page dashboard served at /.
//
//go:embed static/index.html
var indexHTML []byte
