// Package document renders the printable (A4) school documents as HTML.
package document

import (
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/pkg/errors"

	"github.com/brightloop/brightloop/core"
	"github.com/brightloop/brightloop/core/admission"
	"github.com/brightloop/brightloop/core/rollstatement"
	"github.com/brightloop/brightloop/core/school"
	"github.com/brightloop/brightloop/core/words"
	appfs "github.com/brightloop/brightloop/fs"
)

const (
	templatesDir = "templates/documents"

	tmplAdmissionForm  = "admission_form"
	tmplDOBCertificate = "dob_certificate"
	tmplRollStatement  = "roll_statement"

	printDateLayout = "02/01/2006"
)

var funcs = template.FuncMap{
	"dmy":   words.FormatDMY,
	"upper": strings.ToUpper,
	"inc":   func(i int) int { return i + 1 },
}

// Renderer holds the parsed document templates. It is safe for concurrent use.
type Renderer struct {
	tmpls map[string]*template.Template
}

// NewRenderer parses every document template along with the _base layout.
func NewRenderer() (*Renderer, error) {
	entries, err := fs.ReadDir(appfs.FS, templatesDir)
	if err != nil {
		return nil, errors.Wrap(err, "reading document templates")
	}

	base := path.Join(templatesDir, "_base.gohtml")
	r := &Renderer{tmpls: make(map[string]*template.Template)}
	for _, de := range entries {
		fname := de.Name()
		if strings.HasPrefix(fname, "_") || path.Ext(fname) != ".gohtml" {
			continue
		}
		tmpl, err := template.New("_base.gohtml").Funcs(funcs).ParseFS(appfs.FS, base, path.Join(templatesDir, fname))
		if err != nil {
			return nil, errors.Wrapf(err, "parsing document template %s", fname)
		}
		r.tmpls[strings.TrimSuffix(fname, ".gohtml")] = tmpl.Option("missingkey=error")
	}
	return r, nil
}

func (r *Renderer) render(w io.Writer, name string, data interface{}) error {
	tmpl, ok := r.tmpls[name]
	if !ok {
		return errors.Errorf("document template %q not found", name)
	}
	return errors.Wrapf(tmpl.Execute(w, data), "rendering %s", name)
}

// Letterhead is the data every document shares: the school header and the watermark.
type Letterhead struct {
	School        school.Profile
	Watermark     string
	TitleFontSize float64
}

func newLetterhead(p school.Profile, watermark string) Letterhead {
	return Letterhead{School: p, Watermark: watermark, TitleFontSize: TitleFontSize(p.Name)}
}

// TitleFontSize is the letterhead font size (px) fitting the school name on one line:
// 32 up to 25 characters, 0.7 less for every extra character, never below 16.
func TitleFontSize(name string) float64 {
	n := len([]rune(name))
	if n <= 25 {
		return 32
	}
	size := 32 - float64(n-25)*0.7
	if size < 16 {
		return 16
	}
	return size
}

func (r *Renderer) AdmissionForm(w io.Writer, p school.Profile, f admission.Form) error {
	return r.render(w, tmplAdmissionForm, struct {
		Letterhead
		Form admission.Form
		NEP  *admission.AgeProjection
	}{
		Letterhead: newLetterhead(p, school.WatermarkName(f.SchoolName)),
		Form:       f,
		NEP:        admission.CalculateNEPAge(f.DOB, f.Session, f.AdmissionClass),
	})
}

func (r *Renderer) DOBCertificate(w io.Writer, p school.Profile, c Certificate) error {
	return r.render(w, tmplDOBCertificate, struct {
		Letterhead
		Cert     Certificate
		Relation string
		Pronoun  string
		DOBWords string
	}{
		Letterhead: newLetterhead(p, p.Watermark()),
		Cert:       c,
		Relation:   Relation(c.Gender),
		Pronoun:    Pronoun(c.Gender),
		DOBWords:   words.DateToWords(c.DOB),
	})
}

// RollStatement prints s dated today.
func (r *Renderer) RollStatement(w io.Writer, p school.Profile, s rollstatement.Statement) error {
	return r.render(w, tmplRollStatement, struct {
		Letterhead
		Statement rollstatement.Statement
		Totals    rollstatement.Totals
		Date      string
	}{
		Letterhead: newLetterhead(p, school.WatermarkName(p.Name)),
		Statement:  s,
		Totals:     s.Totals(),
		Date:       core.NowFunc().Format(printDateLayout),
	})
}
