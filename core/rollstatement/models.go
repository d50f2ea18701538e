package rollstatement

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/brightloop/brightloop/core"
	"github.com/brightloop/brightloop/core/school"
	"github.com/brightloop/brightloop/core/student"
)

const (
	DefaultPageSize = 9

	// DraftRefNo is shown in place of a missing reference number.
	DraftRefNo = "Draft"
)

type (
	Row struct {
		ID        string `json:"id"`
		ClassName string `json:"className" validate:"required,notblank"`
		Boys      int    `json:"boys" validate:"min=0"`
		Girls     int    `json:"girls" validate:"min=0"`
	}

	// Fields are the parts of a statement edited by the school admin.
	Fields struct {
		Month string `json:"month" validate:"required,month"`
		Year  string `json:"year" validate:"required,digits=4"`
		RefNo string `json:"refNo" validate:"max=60"`
		Note  string `json:"note" validate:"max=1000"`
		Rows  []Row  `json:"rows" validate:"required,min=1,dive"`
	}

	Statement struct {
		ID       string `json:"id"`
		SchoolID string `json:"schoolId"`
		Fields
		CreatedAt time.Time `json:"createdAt"` // UTC
		UpdatedAt time.Time `json:"updatedAt"` // UTC
	}

	Totals struct {
		Boys  int `json:"boys"`
		Girls int `json:"girls"`
		Total int `json:"total"`
	}
)

func (r Row) Total() int { return r.Boys + r.Girls }

func (f Fields) Totals() Totals {
	var t Totals
	for _, r := range f.Rows {
		t.Boys += r.Boys
		t.Girls += r.Girls
	}
	t.Total = t.Boys + t.Girls
	return t
}

// DisplayRefNo returns the reference number, or "Draft" when there is none yet.
func (f Fields) DisplayRefNo() string {
	if f.RefNo == "" {
		return DraftRefNo
	}
	return f.RefNo
}

func (f *Fields) Clean() {
	f.Month = cleanMonth(f.Month)
	f.Year = core.CleanString(f.Year)
	f.RefNo = core.CleanString(f.RefNo)
	f.Note = core.CleanString(f.Note)
	for i := range f.Rows {
		f.Rows[i].ClassName = core.CleanString(f.Rows[i].ClassName)
		if f.Rows[i].ID == "" {
			f.Rows[i].ID = uuid.NewString()
		}
	}
}

func (f *Fields) Validate(validate *validator.Validate) error {
	f.Clean()
	return validate.Struct(f)
}

// cleanMonth capitalises a month name ("june" -> "June"); unknown names are only trimmed.
func cleanMonth(s string) string {
	s = core.CleanString(s)
	for m := time.January; m <= time.December; m++ {
		if strings.EqualFold(m.String(), s) {
			return m.String()
		}
	}
	return s
}

func isMonth(s string) bool {
	for m := time.January; m <= time.December; m++ {
		if m.String() == s {
			return true
		}
	}
	return false
}

// DefaultNote is the covering note of a new statement.
func DefaultNote(zone string) string {
	if zone == "" {
		zone = "_______"
	}
	return fmt.Sprintf("Submitted in original to the Zonal Education Office %s for information and necessary action.", zone)
}

// NewDraft prepares the statement of the current month for a school: one row per roll
// class, in master-list order, counting the boys and girls on the register.
func NewDraft(p school.Profile, counts map[string]student.ClassCount) Fields {
	now := core.NowFunc()
	classes := p.RollClasses()
	rows := make([]Row, 0, len(classes))
	for _, class := range classes {
		c := counts[class]
		rows = append(rows, Row{
			ID:        uuid.NewString(),
			ClassName: class,
			Boys:      c.Boys,
			Girls:     c.Girls,
		})
	}
	return Fields{
		Month: now.Month().String(),
		Year:  strconv.Itoa(now.Year()),
		Note:  DefaultNote(p.Zone),
		Rows:  rows,
	}
}

type QueryFilter struct {
	Search string `query:"search"`
}

func (qf *QueryFilter) Clean() { qf.Search = core.CleanString(qf.Search) }

// Match searches the month and reference number (ignoring case) and the year.
func (qf QueryFilter) Match(s Statement) bool {
	return qf.Search == "" ||
		core.ContainsFold(s.Month, qf.Search) ||
		strings.Contains(s.Year, qf.Search) ||
		core.ContainsFold(s.RefNo, qf.Search)
}
