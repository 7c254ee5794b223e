package pipeline

import (
	"fmt"
	"strings"

	"github.com/cognicore/senrich/pkg/senrich/progress"
	"github.com/cognicore/senrich/pkg/senrich/runlog"
)

const ruleWidth = 50

func (c *Controller) title() {
	fmt.Fprintf(c.console, "\n%s\n%s\n\n\n", runlog.Title, strings.Repeat("=", len(runlog.Title)))
}

func (c *Controller) banner(name string) {
	fmt.Fprintf(c.console, "> %s:\n", name)
	c.rule(false)
}

func (c *Controller) rule(closing bool) {
	fmt.Fprint(c.console, strings.Repeat(".", ruleWidth))
	if closing {
		fmt.Fprint(c.console, "\n\n\n")
		return
	}
	fmt.Fprintln(c.console)
}

func (c *Controller) summary(s runlog.Summary) {
	fmt.Fprintln(c.console, "> Log:")
	c.rule(false)
	fmt.Fprintf(c.console, "- Time: %s\n", progress.FormatDuration(s.Elapsed))
	fmt.Fprintf(c.console, "- Input files: %d\n", s.Files)
	fmt.Fprintf(c.console, "- Input paragraphs: %d\n", s.Paragraphs)
	fmt.Fprintf(c.console, "- Input sentences: %d\n", s.Sentences)
	fmt.Fprintf(c.console, "- Babelfy requests: %d\n", s.Requests)
	fmt.Fprintf(c.console, "- Babelfy wait time: %s\n", progress.FormatDuration(s.Wait))
	c.rule(false)
	fmt.Fprintln(c.console)
}
