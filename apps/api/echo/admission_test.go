package echoapi

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightloop/brightloop/core"
	"github.com/brightloop/brightloop/core/admission"
	"github.com/brightloop/brightloop/core/undo"
)

func newAdmissionFields(name, admissionNo string) admission.Fields {
	return admission.Fields{
		SchoolName:     "Govt Boys High School Kupwara",
		Session:        "2025-26",
		FullName:       name,
		DOB:            "2019-04-12",
		Aadhaar:        "1234 5678 9012",
		Category:       "OM",
		FatherName:     "Ghulam Rasool",
		MotherName:     "Haleema Begum",
		Residence:      "Kupwara",
		Phone:          "9876543210",
		BankAccount:    "0123456789",
		IFSC:           "jakA0kupwar",
		AdmissionClass: "1st",
		AdmissionNo:    admissionNo,
	}
}

func createAdmission(t *testing.T, app *Server, token string, f admission.Fields) admission.Detail {
	req, rec := newAuthRequest(http.MethodPost, "/v1/admissions", token, marchallObj(t, f))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var d admission.Detail
	decode(t, rec, &d)
	return d
}

func Test_admissionApi_prefill(t *testing.T) {
	app := setup(t)
	fx := seed(t)

	core.NowFunc = func() time.Time { return time.Date(2025, time.April, 2, 10, 0, 0, 0, time.UTC) }
	defer func() { core.NowFunc = time.Now }()

	req, rec := newAuthRequest(http.MethodGet, "/v1/admissions/prefill", getToken(t, fx.principal))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var f admission.Fields
	decode(t, rec, &f)
	assert.Equal(t, fx.school.Name, f.SchoolName)
	assert.Equal(t, "Zone 1", f.Zone)
	assert.Equal(t, fx.school.UDISECode, f.UDISECode)
	assert.Equal(t, "2025-26", f.Session)
	assert.Equal(t, "2025-04-02", f.AdmissionDate)
	assert.Equal(t, admission.DefaultCategory, f.Category)
	assert.Equal(t, fx.principal.Email, f.SchoolEmail, "the account email stands in for the school's")
}

func Test_admissionApi_create(t *testing.T) {
	app := setup(t)
	fx := seed(t)
	token := getToken(t, fx.principal)

	d := createAdmission(t, app, token, newAdmissionFields(" aamir ahmad ", "A-101"))
	assert.Equal(t, "AAMIR AHMAD", d.FullName)
	assert.Equal(t, "JAKA0KUPWAR", d.IFSC)
	assert.Equal(t, "123456789012", d.Aadhaar)
	assert.Equal(t, "12th of April, Two Thousand and Nineteen", d.DOBWords)
	assert.Equal(t, fx.school.ID, d.SchoolID)
	require.NotNil(t, d.NEP)
	assert.Equal(t, 2034, d.NEP.TargetYear)
	assert.Equal(t, 15, d.NEP.AgeYears)
	assert.False(t, d.NEP.IsEligible)

	t.Run("validation", func(t *testing.T) {
		f := newAdmissionFields("A", "A-102")
		f.Aadhaar = "1234"
		f.Category = "lol"
		f.AdmissionClass = "13th"
		req, rec := newAuthRequest(http.MethodPost, "/v1/admissions", token, marchallObj(t, f))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"aadhaar":        "must contain 12 digits",
				"category":       "must be one of OM, ST, SC, OBC, RBA or Other",
				"admissionClass": "not a class students can be admitted to",
			}),
		}, rec)
	})

	t.Run("retrieve and update", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/admissions/"+d.ID, token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, d)}, rec)

		f := d.Fields
		f.AdmissionClass = "10th"
		req, rec = newAuthRequest(http.MethodPut, "/v1/admissions/"+d.ID, token, marchallObj(t, f))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got admission.Detail
		decode(t, rec, &got)
		assert.Equal(t, "10th", got.AdmissionClass)
		require.NotNil(t, got.NEP)
		assert.Equal(t, 2025, got.NEP.TargetYear)
	})

	t.Run("photo", func(t *testing.T) {
		req, rec := newUploadRequest(t, "/v1/admissions/"+d.ID+"/photo", token, "image/jpeg", []byte("jpeg"))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got admission.Detail
		decode(t, rec, &got)
		assert.Equal(t, "/media/schools/"+fx.school.ID+"/admissions/"+d.ID+"/photo", got.Photo)
	})

	t.Run("print", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/admissions/"+d.ID+"/print", token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html"))
		assert.Contains(t, rec.Body.String(), "AAMIR AHMAD")
	})
}

func Test_admissionApi_query(t *testing.T) {
	app := setup(t)
	fx := seed(t)
	token := getToken(t, fx.principal)

	base := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	defer func() { core.NowFunc = time.Now }()
	for i, name := range []string{"AAMIR", "BILAL", "SANA"} {
		core.NowFunc = func() time.Time { return base.Add(time.Duration(i) * time.Hour) }
		createAdmission(t, app, token, newAdmissionFields(name, "A-"+name))
	}

	req, rec := newAuthRequest(http.MethodGet, "/v1/admissions", token)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var res core.PageResult[admission.Form]
	decode(t, rec, &res)
	require.Equal(t, 3, res.Count)
	assert.Equal(t, "SANA", res.Results[0].FullName, "newest first")

	req, rec = newAuthRequest(http.MethodGet, "/v1/admissions?search=a-bil", token)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &res)
	require.Equal(t, 1, res.Count)
	assert.Equal(t, "BILAL", res.Results[0].FullName)
}

func Test_admissionApi_deleteAndUndo(t *testing.T) {
	app := setup(t)
	fx := seed(t)
	token := getToken(t, fx.principal)

	a := createAdmission(t, app, token, newAdmissionFields("AAMIR", "A-1"))
	b := createAdmission(t, app, token, newAdmissionFields("BILAL", "A-2"))

	req, rec := newAuthRequest(http.MethodDelete, "/v1/admissions?id="+a.ID+"&id="+b.ID, token)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	var batch undo.Batch
	decode(t, rec, &batch)
	assert.ElementsMatch(t, []string{a.ID, b.ID}, batch.IDs)
	assert.NotEmpty(t, batch.Token)

	// pending deletions are hidden
	req, rec = newAuthRequest(http.MethodGet, "/v1/admissions/"+a.ID, token)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	tests := []httpTest{
		{
			name: "token required", body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"token": "this field is required"}),
		},
		{
			name: "restores the batch", body: marchallObj(t, UndoRequest{Token: batch.Token}),
			wantData: marchallObj(t, UndoResponse{Restored: batch.IDs}),
		},
		{
			name: "nothing left to undo", body: marchallObj(t, UndoRequest{Token: batch.Token}), wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "nothing to undo"}),
		},
	}
	for i := range tests {
		tests[i].method = http.MethodPost
		tests[i].path = "/v1/admissions/undo"
		tests[i].token = token
	}
	runHTTPTests(t, app, tests)

	req, rec = newAuthRequest(http.MethodGet, "/v1/admissions/"+a.ID, token)
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	t.Run("committed when the window ends", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/admissions/"+b.ID, token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

		scheduler.Flush(context.Background())
		_, err := app.deps.AdmissionSvc.Get(context.Background(), fx.school.ID, b.ID)
		assert.True(t, core.IsNotFound(err), "form not deleted: %v", err)
		_, pending := scheduler.Pending(undo.Owner("admission_forms", fx.school.ID))
		assert.False(t, pending)

		req, rec = newAuthRequest(http.MethodGet, "/v1/admissions/"+a.ID, token)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
