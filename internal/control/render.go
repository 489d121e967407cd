package control

import (
	"fmt"
	"strings"

	"github.com/jangala-dev/nb-esp32-firmware/internal/x/strx"
)

// renderIndex produces the GET / bootstrap page: AP/client IP summary plus
// peripheral-init status (spec §4.3).
func renderIndex(d *Deps) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	fmt.Fprintf(&b, "<p>Access point: %s</p>", strx.Coalesce(d.APIP(), "not yet assigned"))
	if ip := d.ClientIP(); ip != "" {
		fmt.Fprintf(&b, "<p>Connected: %s</p>", ip)
	} else {
		b.WriteString("<p>Not Connected</p>")
	}

	status := d.Status()
	b.WriteString("<ul>")
	for _, entry := range status.Menu {
		fmt.Fprintf(&b, "<li>%s: %s</li>", entry.Kind, strings.Join(entry.Ops, ", "))
	}
	for _, e := range status.Errors {
		fmt.Fprintf(&b, "<li class=\"error\">%s %s: %s (%s)</li>", e.Kind, e.Name, e.Message, e.Code.Error())
	}
	b.WriteString("</ul></body></html>")
	return b.String()
}

// renderExtensionJS renders the NetsBlox extension shim: it points at the
// device over HTTPS using the client IP and exposes the computed syscall
// menu as callable blocks (spec §4.3).
func renderExtensionJS(d *Deps) string {
	var b strings.Builder
	fmt.Fprintf(&b, "const DEVICE_BASE = \"https://%s\";\n", d.ClientIP())
	b.WriteString("const MENU = [\n")
	for _, entry := range d.Status().Menu {
		fmt.Fprintf(&b, "  {kind: %q, ops: %s},\n", entry.Kind, quoteList(entry.Ops))
	}
	b.WriteString("];\n")
	return b.String()
}

func quoteList(ss []string) string {
	quoted := make([]string, len(ss))
	for i, s := range ss {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
