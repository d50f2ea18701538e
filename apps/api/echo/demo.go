package echoapi

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/brightloop/brightloop/core"
	"github.com/brightloop/brightloop/core/school"
	"github.com/brightloop/brightloop/core/student"
	"github.com/brightloop/brightloop/core/user"
)

const (
	DemoEmail = "demo@brightloop.school"
	DemoSlug  = "demo-school"
)

var demoStudents = []student.Fields{
	{Name: "Aarav Sharma", RollNo: "1", Class: "1st", FatherName: "Rakesh Sharma", Gender: student.GenderMale, DOB: "2018-05-14"},
	{Name: "Zoya Mir", RollNo: "2", Class: "1st", FatherName: "Bilal Mir", Gender: student.GenderFemale, DOB: "2018-09-02"},
	{Name: "Kabir Singh", RollNo: "1", Class: "2nd", FatherName: "Harpreet Singh", Gender: student.GenderMale, DOB: "2017-01-23"},
	{Name: "Inaya Wani", RollNo: "2", Class: "2nd", FatherName: "Tariq Wani", Gender: student.GenderFemale, DOB: "2017-11-30"},
	{Name: "Rehan Dar", RollNo: "1", Class: "5th", FatherName: "Imran Dar", Gender: student.GenderMale, DOB: "2014-03-08"},
}

// SeedDemo creates the demo account with its school and a few students.
// It does nothing when the demo account exists already. The demo school is served under DemoSlug.
func SeedDemo(ctx context.Context, deps ServerDeps, schoolRepo school.Repository) error {
	if _, err := deps.UserSvc.GetByEmail(ctx, DemoEmail); err == nil {
		return nil
	} else if !core.IsNotFound(err) {
		return errors.Wrap(err, "finding demo user")
	}

	// nobody logs in with this password: demo sessions come from the demo login
	usr, err := deps.UserSvc.Create(ctx, DemoEmail, uuid.NewString(), user.RoleSchoolAdmin, true)
	if err != nil {
		return errors.Wrap(err, "creating demo user")
	}
	p, err := deps.SchoolSvc.Setup(ctx, usr, school.ProfileData{
		Name:           "Govt Model Primary School Demo",
		Zone:           "Demo Zone",
		District:       "Srinagar",
		State:          "Jammu & Kashmir",
		Address:        "Main Road, Srinagar",
		UDISECode:      "01020300101",
		Type:           school.TypePrimary,
		Management:     school.ManagementGovt,
		HeadmasterName: "Demo Headmaster",
	})
	if err != nil {
		return errors.Wrap(err, "setting up demo school")
	}

	p.Slug = DemoSlug
	p.Website.AdmissionOpen = true
	p.Website.Facilities = []string{"Library", "Computer Lab", "Sports Complex"}
	p.Website.Notifications = []school.Notification{
		{ID: uuid.NewString(), Title: "Admissions open for the new session", Date: core.NowFunc().Format(core.DateLayout)},
	}
	if _, err = schoolRepo.UpdateSchool(ctx, p); err != nil {
		return errors.Wrap(err, "updating demo school")
	}

	for _, f := range demoStudents {
		f.Clean()
		if _, err = deps.StudentSvc.Create(ctx, p.ID, f); err != nil {
			return errors.Wrap(err, "creating demo student")
		}
	}
	return nil
}
