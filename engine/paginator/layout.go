package paginator

import "strings"

// Layout holds the fixed geometry of a study guide. Vertical positions are
// in PDF user space: points measured up from the bottom edge of the page.
type Layout struct {
	PageWidth  float64
	PageHeight float64

	HeaderHeight  float64
	TitleBaseline float64 // distance from the top edge
	BodyStart     float64 // distance from the top edge on the first page
	TopMargin     float64 // distance from the top edge on continuation pages
	BottomMargin  float64
	LeftMargin    float64
	RightMargin   float64
	FooterY       float64

	LineHeight float64
	BlankGap   float64

	TitleSize  float64
	BodySize   float64
	FooterSize float64
}

// A4 is the study guide layout on an ISO A4 page.
var A4 = Layout{
	PageWidth:     595.28,
	PageHeight:    841.89,
	HeaderHeight:  50,
	TitleBaseline: 35,
	BodyStart:     100,
	TopMargin:     50,
	BottomMargin:  50,
	LeftMargin:    50,
	RightMargin:   50,
	FooterY:       30,
	LineHeight:    15,
	BlankGap:      5,
	TitleSize:     20,
	BodySize:      12,
	FooterSize:    10,
}

// StepKind says whether a body line was drawn or only advanced the cursor.
type StepKind int

const (
	StepDraw StepKind = iota
	StepGap
)

func (k StepKind) String() string {
	if k == StepDraw {
		return "draw"
	}
	return "gap"
}

// Step is one body line. Y is the baseline the line is drawn at (or would
// have been, for a gap) and Page is 1-based.
type Step struct {
	Kind StepKind
	Page int
	Y    float64
	Text string
}

// Plan is the pagination of a guide before anything is drawn.
type Plan struct {
	Steps []Step
	Pages int
}

// Lines splits a guide into body lines. Empty lines are kept.
func Lines(guide string) []string {
	return strings.Split(guide, "\n")
}

// Plan walks the guide with a running cursor. A new page starts after any
// line that leaves the cursor strictly below the bottom margin, even when no
// lines follow.
func (l Layout) Plan(guide string) Plan {
	lines := Lines(guide)
	plan := Plan{Steps: make([]Step, 0, len(lines)), Pages: 1}

	cursor := l.PageHeight - l.BodyStart
	for _, line := range lines {
		step := Step{Page: plan.Pages, Y: cursor}
		if strings.TrimSpace(line) != "" {
			step.Kind = StepDraw
			step.Text = line
			cursor -= l.LineHeight
		} else {
			step.Kind = StepGap
			cursor -= l.BlankGap
		}
		plan.Steps = append(plan.Steps, step)

		if cursor < l.BottomMargin {
			plan.Pages++
			cursor = l.PageHeight - l.TopMargin
		}
	}
	return plan
}

// Drawn returns the steps that put text on a page.
func (p Plan) Drawn() []Step {
	drawn := make([]Step, 0, len(p.Steps))
	for _, step := range p.Steps {
		if step.Kind == StepDraw {
			drawn = append(drawn, step)
		}
	}
	return drawn
}
