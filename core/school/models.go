package school

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/brightloop/brightloop/core"
)

type Type string

const (
	TypePrimary         Type = "Primary"
	TypeMiddle          Type = "Middle"
	TypeSecondary       Type = "Secondary"
	TypeHigherSecondary Type = "Higher Secondary"
)

const (
	ManagementGovt    = "GOVT"
	ManagementPrivate = "PRIVATE"
)

const DefaultThemeColor = "indigo"

var (
	AllTypes       = []Type{TypePrimary, TypeMiddle, TypeSecondary, TypeHigherSecondary}
	AllManagements = []string{ManagementGovt, ManagementPrivate}

	ThemeColors = []string{"indigo", "blue", "emerald", "rose", "violet", "amber", "slate"}

	Facilities = []string{
		"Smart Classrooms", "Science Lab", "Computer Lab", "Library",
		"Sports Complex", "Transport", "CCTV Security", "Cafeteria",
		"Auditorium", "Medical Room", "Wi-Fi Campus", "Art Studio",
	}
)

type (
	SocialLinks struct {
		Facebook  string `json:"facebook,omitempty" validate:"omitempty,url"`
		Instagram string `json:"instagram,omitempty" validate:"omitempty,url"`
		Twitter   string `json:"twitter,omitempty" validate:"omitempty,url"`
		Linkedin  string `json:"linkedin,omitempty" validate:"omitempty,url"`
		Youtube   string `json:"youtube,omitempty" validate:"omitempty,url"`
	}

	Notification struct {
		ID    string `json:"id"`
		Title string `json:"title" validate:"notblank"`
		Date  string `json:"date" validate:"omitempty,date"` // YYYY-MM-DD
		Link  string `json:"link,omitempty" validate:"omitempty,url"`
	}

	WebsiteConfig struct {
		WelcomeMessage string         `json:"welcomeMessage"`
		Abbreviation   string         `json:"abbreviation"`
		HeroImageURL   string         `json:"heroImageUrl,omitempty"`
		LogoURL        string         `json:"logoUrl,omitempty"`
		AboutText      string         `json:"aboutText,omitempty"`
		Facilities     []string       `json:"facilities" validate:"dive,facility"`
		SocialLinks    SocialLinks    `json:"socialLinks"`
		AdmissionOpen  bool           `json:"admissionOpen"`
		ThemeColor     string         `json:"themeColor" validate:"omitempty,themecolor"`
		Notifications  []Notification `json:"notifications" validate:"dive"`
		ContactEmail   string         `json:"contactEmail" validate:"omitempty,email"`
		ContactPhone   string         `json:"contactPhone"`
	}

	Profile struct {
		ID                   string        `json:"id"`
		OwnerUID             string        `json:"ownerUid"`
		Name                 string        `json:"name"`
		Zone                 string        `json:"zone"`
		District             string        `json:"district"`
		State                string        `json:"state"`
		Address              string        `json:"address"`
		UDISECode            string        `json:"udiseCode"`
		Type                 Type          `json:"type"`
		Management           string        `json:"management"`
		RegNo                string        `json:"regNo,omitempty"`
		HeadmasterName       string        `json:"headmasterName"`
		WatermarkText        string        `json:"watermarkText,omitempty"`
		Slug                 string        `json:"slug"`
		SignatureURL         string        `json:"signatureUrl,omitempty"`
		RollStatementClasses []string      `json:"rollStatementClasses"`
		Website              WebsiteConfig `json:"websiteConfig"`
		CreatedAt            time.Time     `json:"createdAt"` // UTC
		UpdatedAt            time.Time     `json:"updatedAt"` // UTC
	}
)

// Watermark is the text printed behind generated documents.
func (p Profile) Watermark() string {
	if p.WatermarkText != "" {
		return p.WatermarkText
	}
	return p.Name
}

// RollClasses returns the classes listed on roll statements, in master-list order.
func (p Profile) RollClasses() []string {
	if len(p.RollStatementClasses) > 0 {
		return SortClasses(p.RollStatementClasses)
	}
	return DefaultRollClasses(p.Type)
}

// PublicProfile is what anonymous visitors of the school website may see.
type PublicProfile struct {
	Name           string        `json:"name"`
	Slug           string        `json:"slug"`
	Zone           string        `json:"zone"`
	District       string        `json:"district"`
	State          string        `json:"state"`
	Address        string        `json:"address"`
	UDISECode      string        `json:"udiseCode"`
	Type           Type          `json:"type"`
	Management     string        `json:"management"`
	HeadmasterName string        `json:"headmasterName"`
	Website        WebsiteConfig `json:"websiteConfig"`
}

func (p Profile) Public() PublicProfile {
	return PublicProfile{
		Name:           p.Name,
		Slug:           p.Slug,
		Zone:           p.Zone,
		District:       p.District,
		State:          p.State,
		Address:        p.Address,
		UDISECode:      p.UDISECode,
		Type:           p.Type,
		Management:     p.Management,
		HeadmasterName: p.HeadmasterName,
		Website:        p.Website,
	}
}

// ProfileData holds the editable school details, used on setup and on profile updates.
type ProfileData struct {
	Name                 string   `json:"name" validate:"required,notblank,max=200"`
	Zone                 string   `json:"zone"`
	District             string   `json:"district"`
	State                string   `json:"state"`
	Address              string   `json:"address"`
	UDISECode            string   `json:"udiseCode" validate:"omitempty,max=20"`
	Type                 Type     `json:"type" validate:"required,schooltype"`
	Management           string   `json:"management" validate:"omitempty,management"`
	RegNo                string   `json:"regNo"`
	HeadmasterName       string   `json:"headmasterName"`
	WatermarkText        string   `json:"watermarkText" validate:"max=60"`
	RollStatementClasses []string `json:"rollStatementClasses" validate:"dive,classname"`
}

func (pd *ProfileData) Clean() {
	pd.Name = core.CleanString(pd.Name)
	pd.Zone = core.CleanString(pd.Zone)
	pd.District = core.CleanString(pd.District)
	pd.State = core.CleanString(pd.State)
	pd.Address = core.CleanString(pd.Address)
	pd.UDISECode = core.CleanString(pd.UDISECode)
	pd.RegNo = core.CleanString(pd.RegNo)
	pd.HeadmasterName = core.CleanString(pd.HeadmasterName)
	pd.WatermarkText = core.CleanString(pd.WatermarkText)
	if pd.Management == "" {
		pd.Management = ManagementGovt
	}
	if pd.Management != ManagementPrivate {
		pd.RegNo = ""
	}
	pd.RollStatementClasses = SortClasses(pd.RollStatementClasses)
}

func (pd *ProfileData) Validate(validate *validator.Validate) error {
	pd.Clean()
	return validate.Struct(pd)
}

func (pd ProfileData) apply(p *Profile) {
	p.Name = pd.Name
	p.Zone = pd.Zone
	p.District = pd.District
	p.State = pd.State
	p.Address = pd.Address
	p.UDISECode = pd.UDISECode
	p.Type = pd.Type
	p.Management = pd.Management
	p.RegNo = pd.RegNo
	p.HeadmasterName = pd.HeadmasterName
	p.WatermarkText = pd.WatermarkText
	p.RollStatementClasses = pd.RollStatementClasses
}

func (wc *WebsiteConfig) Clean() {
	wc.WelcomeMessage = core.CleanString(wc.WelcomeMessage)
	wc.Abbreviation = core.CleanString(wc.Abbreviation)
	wc.AboutText = core.CleanString(wc.AboutText)
	wc.ContactEmail = core.CleanString(wc.ContactEmail, true /* lower */)
	wc.ContactPhone = core.CleanString(wc.ContactPhone)
	if wc.ThemeColor == "" {
		wc.ThemeColor = DefaultThemeColor
	}
	if wc.Facilities == nil {
		wc.Facilities = []string{}
	}
	if wc.Notifications == nil {
		wc.Notifications = []Notification{}
	}
	for i := range wc.Notifications {
		wc.Notifications[i].Title = core.CleanString(wc.Notifications[i].Title)
	}
}

func (wc *WebsiteConfig) Validate(validate *validator.Validate) error {
	wc.Clean()
	return validate.Struct(wc)
}

type QueryFilter struct {
	Search string `query:"search"`
}

func (qf *QueryFilter) Clean() { qf.Search = core.CleanString(qf.Search) }

// Match does a case-insensitive match on the name, slug, district and UDISE code.
func (qf QueryFilter) Match(p Profile) bool {
	if qf.Search == "" {
		return true
	}
	return core.ContainsFold(p.Name, qf.Search) ||
		core.ContainsFold(p.Slug, qf.Search) ||
		core.ContainsFold(p.District, qf.Search) ||
		core.ContainsFold(p.UDISECode, qf.Search)
}
