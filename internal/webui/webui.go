// Package webui embeds the browser rendition of the token counter widget.
package webui

import (
	"embed"
	"fmt"
	"strconv"
)

// WidgetURI is the resource URI hosts use to fetch the widget.
const WidgetURI = "ui://widget/token-counter.html"

// WidgetMIMEType marks the resource as an apps widget template.
const WidgetMIMEType = "text/html+skybridge"

//go:embed assets
var assets embed.FS

func asset(name string) (string, error) {
	data, err := assets.ReadFile("assets/" + name)
	if err != nil {
		return "", fmt.Errorf("widget asset %s: %w", name, err)
	}
	return string(data), nil
}

// ResourceHTML returns the widget fragment served as an MCP resource. The
// host is expected to inject window.openai before the script runs.
func ResourceHTML() (string, error) {
	js, err := asset("widget.js")
	if err != nil {
		return "", err
	}
	css, err := asset("widget.css")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("<div id=\"root\"></div>\n<style>%s</style>\n<script type=\"module\">\n%s</script>", css, js), nil
}

// ErrorHTML is served in place of the widget when its assets are missing.
func ErrorHTML(err error) string {
	return fmt.Sprintf("<h1>Error loading widget</h1><p>%s</p>", err)
}

// StandalonePage returns a full HTML page running the widget outside an apps
// host. A stub bridge keeps state in memory and sends recompute calls to
// apiPath.
func StandalonePage(apiPath string) (string, error) {
	js, err := asset("widget.js")
	if err != nil {
		return "", err
	}
	css, err := asset("widget.css")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(standaloneTemplate, css, strconv.Quote(apiPath), js), nil
}

const standaloneTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Token Counter</title>
<style>%s</style>
</head>
<body>
<div id="root"></div>
<script type="module">
window.openai = {
  toolOutput: null,
  toolInput: null,
  widgetState: {},
  setWidgetState: function (state) { this.widgetState = state; },
  notifyIntrinsicHeight: function () {},
  callTool: async function (name, args) {
    const res = await fetch(%s, {
      method: "POST",
      headers: { "Content-Type": "application/json" },
      body: JSON.stringify(args),
    });
    if (!res.ok) throw new Error("token_counter: HTTP " + res.status);
    return { toolOutput: await res.json() };
  },
};
%s
</script>
</body>
</html>`
