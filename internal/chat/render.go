package chat

import (
	"strings"

	"github.com/noah-isme/course-progress-api/internal/models"
)

// ViewKind selects the visual block used for a message.
type ViewKind string

const (
	ViewText   ViewKind = "text"
	ViewTable  ViewKind = "table"
	ViewNoData ViewKind = "no_data"
	ViewYesNo  ViewKind = "yes_no"
	ViewInfo   ViewKind = "info"
)

// Variant distinguishes yes/no answers. Anything that is neither is VariantOther.
type Variant string

const (
	VariantYes   Variant = "yes"
	VariantNo    Variant = "no"
	VariantOther Variant = "other"
)

// NoDataText is shown in place of an empty or malformed table.
const NoDataText = "No data available for this query."

// View is the display-ready form of a chat message.
type View struct {
	ID          string          `json:"id"`
	Role        models.ChatRole `json:"role"`
	Kind        ViewKind        `json:"kind"`
	Text        string          `json:"text,omitempty"`
	Label       string          `json:"label,omitempty"`
	Answer      string          `json:"answer,omitempty"`
	Variant     Variant         `json:"variant,omitempty"`
	Explanation string          `json:"explanation,omitempty"`
	Columns     []string        `json:"columns,omitempty"`
	Rows        [][]string      `json:"rows,omitempty"`
}

// AnswerVariant maps an answer onto the three-way yes/no display state.
func AnswerVariant(answer string) Variant {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "yes":
		return VariantYes
	case "no":
		return VariantNo
	default:
		return VariantOther
	}
}

// Render builds the view for a message.
func Render(msg models.ChatMessage) View {
	r := renderer{view: View{ID: msg.ID, Role: msg.Role}}
	payload := msg.Payload
	if payload == nil {
		payload = models.TextPayload{}
	}
	payload.Accept(&r)
	return r.view
}

// RenderAll renders a log in order.
func RenderAll(log []models.ChatMessage) []View {
	views := make([]View, 0, len(log))
	for _, msg := range log {
		views = append(views, Render(msg))
	}
	return views
}

type renderer struct {
	view View
}

var _ models.PayloadVisitor = (*renderer)(nil)

func (r *renderer) VisitText(p models.TextPayload) {
	r.view.Kind = ViewText
	r.view.Text = p.Text
}

func (r *renderer) VisitTable(p models.TablePayload) {
	r.view.Explanation = strings.TrimSpace(p.Explanation)
	if len(p.Rows) == 0 {
		r.view.Kind = ViewNoData
		r.view.Text = NoDataText
		return
	}
	r.view.Kind = ViewTable
	r.view.Columns = p.Columns
	r.view.Rows = make([][]string, 0, len(p.Rows))
	for _, row := range p.Rows {
		cells := make([]string, 0, len(row))
		for _, cell := range row {
			cells = append(cells, stringOf(cell))
		}
		r.view.Rows = append(r.view.Rows, cells)
	}
}

func (r *renderer) VisitYesNo(p models.YesNoPayload) {
	r.view.Kind = ViewYesNo
	r.view.Answer = p.Answer
	r.view.Variant = AnswerVariant(p.Answer)
	r.view.Explanation = strings.TrimSpace(p.Explanation)
}

func (r *renderer) VisitDataType(p models.DataTypePayload) {
	r.view.Kind = ViewInfo
	r.view.Label = "Information"
	r.view.Answer = p.Information
	r.view.Explanation = strings.TrimSpace(p.Explanation)
}

func (r *renderer) VisitGeneral(p models.GeneralPayload) {
	r.view.Kind = ViewInfo
	r.view.Label = "Answer"
	r.view.Answer = p.Answer
	r.view.Explanation = strings.TrimSpace(p.Explanation)
}
