package layout

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/field"
)

const (
	// DefaultColumns is the width of a row in grid columns.
	DefaultColumns = 12
	// DefaultTemplate renders a column width into a class name.
	DefaultTemplate = "col-sm-{width}"
	// WidthPlaceholder is substituted with the computed width.
	WidthPlaceholder = "{width}"
)

// Widths splits total columns across n children. Every child receives
// floor(total/n) and the last child absorbs the remainder, so the widths
// always sum to total. n <= 0 yields nil.
func Widths(n, total int) []int {
	if n <= 0 {
		return nil
	}
	base := total / n
	widths := make([]int, n)
	for i := range widths {
		widths[i] = base
	}
	widths[n-1] = base + (total - n*base)
	return widths
}

// Distributor assigns column classes to the children of row containers.
type Distributor struct {
	Columns  int
	Template string
}

// New returns a Distributor. Non-positive columns and empty templates fall
// back to the defaults.
func New(columns int, template string) Distributor {
	d := Distributor{Columns: columns, Template: template}
	return d.normalized()
}

func (d Distributor) normalized() Distributor {
	if d.Columns <= 0 {
		d.Columns = DefaultColumns
	}
	if strings.TrimSpace(d.Template) == "" {
		d.Template = DefaultTemplate
	}
	return d
}

// Class renders the class for a column width.
func (d Distributor) Class(width int) string {
	d = d.normalized()
	return strings.ReplaceAll(d.Template, WidthPlaceholder, strconv.Itoa(width))
}

// Plan returns the class each child should carry, by position. Children with
// an explicit class keep it.
func (d Distributor) Plan(children []field.Field) []string {
	if len(children) == 0 {
		return nil
	}
	d = d.normalized()
	widths := Widths(len(children), d.Columns)
	classes := make([]string, len(children))
	for i, child := range children {
		if strings.TrimSpace(child.CSSClass) != "" {
			classes[i] = child.CSSClass
			continue
		}
		classes[i] = d.Class(widths[i])
	}
	return classes
}

// Assign writes the plan into children in place. Only children without an
// explicit class are modified.
func (d Distributor) Assign(children []field.Field) {
	for i, class := range d.Plan(children) {
		if strings.TrimSpace(children[i].CSSClass) == "" {
			children[i].CSSClass = class
		}
	}
}
