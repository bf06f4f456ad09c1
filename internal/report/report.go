// Package report renders a project as a paginated PDF and writes it to a
// destination chosen by a DestinationPicker.
package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/nhle/todo-projects/internal/model"
)

// Page geometry in millimetres (A4 portrait).
const (
	pageWidth    = 210.0
	pageHeight   = 297.0
	marginLeft   = 15.0
	marginTop    = 15.0
	marginBottom = 20.0

	// lineAdvance is millimetres of vertical space per point of font size.
	lineAdvance = 0.45
)

// Wrap widths in characters.
const (
	titleWrap  = 90
	detailWrap = 95
)

// Font sizes in points.
const (
	sizeHeading = 20.7
	sizeName    = 17.3
	sizeMeta    = 11.5
	sizeSection = 16.1
	sizeSummary = 12.7
	sizeGroup   = 15.0
	sizeTask    = 13.8
	sizeDesc    = 11.5
	sizeSubtask = 12.7
)

const (
	indent     = "    "
	dateLayout = "2006-01-02 15:04"
)

// Line is one line of report text with its font.
type Line struct {
	Text string
	Size float64
	Bold bool
}

// Options controls rendering.
type Options struct {
	// Now is printed as the generation time and stamped as the document
	// creation date. Zero means time.Now.
	Now time.Time
}

func (o Options) now() time.Time {
	if o.Now.IsZero() {
		return time.Now()
	}
	return o.Now
}

// Summary holds the counters printed in the report's summary block.
type Summary struct {
	Tasks      int
	Completed  int
	Active     int
	Subtasks   int
	Completion float64
}

// Summarize computes the summary counters for p.
func Summarize(p model.Project) Summary {
	st := p.Stats()
	return Summary{
		Tasks:      st.Total,
		Completed:  st.Completed,
		Active:     st.Active,
		Subtasks:   st.Subtasks,
		Completion: st.CompletionPercent(),
	}
}

func (s Summary) String() string {
	return fmt.Sprintf("Tasks: %d  •  Completed: %d  •  Active: %d  •  Subtasks: %d  •  Completion: %.1f%%",
		s.Tasks, s.Completed, s.Active, s.Subtasks, s.Completion)
}

// Lines lays out the report text for p: a header, the summary, then the
// active tasks followed by the completed ones. Each task is followed by
// its description and subtasks.
func Lines(p model.Project, now time.Time) []Line {
	sum := Summarize(p)
	lines := []Line{
		{Text: "Project Report", Size: sizeHeading, Bold: true},
		{Text: p.Name, Size: sizeName},
		{Text: "Generated: " + now.Format(dateLayout), Size: sizeMeta},
		{Size: 9.2},
		{Text: "Summary", Size: sizeSection, Bold: true},
		{Text: sum.String(), Size: sizeSummary},
		{Size: 6.9},
	}

	if sum.Active > 0 {
		lines = append(lines, Line{Text: "Active Tasks", Size: sizeGroup, Bold: true})
		lines = appendTodos(lines, model.Visible(p.Todos, model.FilterActive))
		lines = append(lines, Line{Size: 6.9})
	}
	if sum.Completed > 0 {
		lines = append(lines, Line{Text: "Completed Tasks", Size: sizeGroup, Bold: true})
		lines = appendTodos(lines, model.Visible(p.Todos, model.FilterCompleted))
	}
	return lines
}

func appendTodos(lines []Line, todos []model.Todo) []Line {
	for _, t := range todos {
		lines = appendWrapped(lines, checkbox(t.Completed)+" "+t.Title, "", titleWrap, sizeTask)
		if desc := strings.TrimSpace(t.Description); desc != "" {
			for _, l := range WrapText("— "+desc, detailWrap) {
				lines = append(lines, Line{Text: indent + l, Size: sizeDesc})
			}
		}
		for _, s := range t.Subtasks {
			lines = appendWrapped(lines, checkbox(s.Completed)+" "+s.Title, indent, detailWrap, sizeSubtask)
		}
	}
	return lines
}

// appendWrapped wraps text and prefixes the first line with lead and
// every continuation line with an extra indent.
func appendWrapped(lines []Line, text, lead string, width int, size float64) []Line {
	for i, l := range WrapText(text, width) {
		prefix := lead
		if i > 0 {
			prefix += indent
		}
		lines = append(lines, Line{Text: prefix + l, Size: size})
	}
	return lines
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

// Render returns the PDF report for p.
func Render(p model.Project, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteTo(&buf, p, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteTo renders the PDF report for p into w. Equal input and Now give
// byte-identical output.
func WriteTo(w io.Writer, p model.Project, opts Options) error {
	now := opts.now()
	doc := newDocument(p, now)

	tr := doc.UnicodeTranslatorFromDescriptor("")
	y := marginTop
	for _, l := range Lines(p, now) {
		if y > pageHeight-marginBottom {
			doc.AddPage()
			y = marginTop
		}
		style := ""
		if l.Bold {
			style = "B"
		}
		doc.SetFont("Helvetica", style, l.Size)
		if l.Text != "" {
			doc.Text(marginLeft, y, tr(l.Text))
		}
		y += l.Size * lineAdvance
	}

	if err := doc.Output(w); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}
	return nil
}

func newDocument(p model.Project, now time.Time) *fpdf.Fpdf {
	doc := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: pageWidth, Ht: pageHeight},
	})
	doc.SetTitle("Project Report — "+p.Name, true)
	doc.SetCreator(model.AppName, false)
	doc.SetCreationDate(now)
	doc.SetModificationDate(now)
	doc.SetCatalogSort(true)
	doc.SetMargins(marginLeft, marginTop, marginLeft)
	doc.SetAutoPageBreak(false, 0)
	doc.AddPage()
	return doc
}
