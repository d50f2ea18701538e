package website

import (
	"io"

	"github.com/emersion/go-vcard"
	"github.com/pkg/errors"

	"github.com/brightloop/brightloop/core/school"
)

// Contact writes the school's vCard (4.0).
func Contact(w io.Writer, p school.Profile, siteURL string) error {
	card := make(vcard.Card)
	card.SetValue(vcard.FieldFormattedName, p.Name)
	card.SetValue(vcard.FieldOrganization, p.Name)
	card.SetKind(vcard.KindOrganization)
	card.SetValue(vcard.FieldURL, siteURL)
	if email := p.Website.ContactEmail; email != "" {
		card.SetValue(vcard.FieldEmail, email)
	}
	if phone := p.Website.ContactPhone; phone != "" {
		card.SetValue(vcard.FieldTelephone, phone)
	}
	if p.Address != "" || p.District != "" || p.State != "" {
		card.AddAddress(&vcard.Address{
			StreetAddress: p.Address,
			Locality:      p.District,
			Region:        p.State,
			Country:       "India",
		})
	}
	if logo := p.Website.LogoURL; logo != "" {
		card.SetValue(vcard.FieldLogo, logo)
	}
	vcard.ToV4(card)

	return errors.Wrap(vcard.NewEncoder(w).Encode(card), "encoding contact card")
}
