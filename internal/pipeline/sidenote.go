package pipeline

import (
	"fmt"
	"regexp"
	"strings"
)

// (:sidenote text sidenote:) may span lines.
var sidenotePattern = regexp.MustCompile(`(?s)\(:sidenote(.*?)sidenote:\)`)

// sidenoteTemplate renders a margin note with a toggle for narrow screens.
// The id is repeated for the label and the checkbox.
const sidenoteTemplate = `<label for="%[1]s" class="margin-toggle">&#8853;</label>` +
	`<input type="checkbox" id="%[1]s" class="margin-toggle"/>` +
	`<span class="marginnote">%[2]s</span>`

// ProcessSidenotes replaces every sidenote marker in rendered HTML with
// margin note markup. Notes are numbered mn-1, mn-2, ... in document order.
func ProcessSidenotes(htmlContent string) string {
	counter := 0
	return sidenotePattern.ReplaceAllStringFunc(htmlContent, func(match string) string {
		counter++
		text := strings.TrimSpace(sidenotePattern.FindStringSubmatch(match)[1])
		return fmt.Sprintf(sidenoteTemplate, fmt.Sprintf("mn-%d", counter), text)
	})
}
