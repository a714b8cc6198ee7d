package service_test

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/cleanforms/cleanforms-backend/internal/model"
	"github.com/cleanforms/cleanforms-backend/internal/service"
)

func testSubmission(data model.FieldMap) *model.Submission {
	submittedAt, _ := time.Parse("2006-01-02 15:04:05", "2024-01-01 10:00:00")
	return &model.Submission{
		FormID:      1,
		Data:        data,
		UserAgent:   "Mozilla/5.0",
		IPAddress:   "203.0.113.9",
		RefererURL:  "https://site.test/contact",
		SubmittedAt: submittedAt,
	}
}

func TestRenderFieldsRoundTrip(t *testing.T) {
	sub := testSubmission(model.FieldMap{"name": "Jane"})

	got := service.RenderFields("Hello [name], time [CF_TIMESTAMP]", sub, service.EscapeNone)
	want := "Hello Jane, time 2024-01-01 10:00:00"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRenderFieldsUnknownPlaceholderLeftVerbatim(t *testing.T) {
	sub := testSubmission(model.FieldMap{"name": "Jane"})

	got := service.RenderFields("Hi [name], [nickname]", sub, service.EscapeNone)
	if got != "Hi Jane, [nickname]" {
		t.Errorf("unknown placeholder should stay verbatim, got %q", got)
	}
}

func TestRenderFieldsPseudoFields(t *testing.T) {
	sub := testSubmission(model.FieldMap{})

	got := service.RenderFields("[CF_IP_ADDRESS] [CF_USER_AGENT] [CF_REFERRER_URL]", sub, service.EscapeNone)
	want := "203.0.113.9 Mozilla/5.0 https://site.test/contact"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRenderFieldsArrayJoins(t *testing.T) {
	sub := testSubmission(model.FieldMap{
		"topics": []interface{}{"sales", "support"},
	})

	got := service.RenderFields("Topics: [topics]", sub, service.EscapeNone)
	if got != "Topics: sales, support" {
		t.Errorf("expected joined array, got %q", got)
	}
}

func TestRenderFieldsFileValue(t *testing.T) {
	sub := testSubmission(model.FieldMap{
		"attachment": map[string]interface{}{
			"url":  "https://site.test/uploads/cv.pdf",
			"name": "cv.pdf",
			"size": float64(2048),
		},
	})

	got := service.RenderFields("File: [attachment]", sub, service.EscapeNone)
	if got != "File: https://site.test/uploads/cv.pdf (2.0 KB)" {
		t.Errorf("unexpected file rendering: %q", got)
	}
}

func TestRenderFieldsAll(t *testing.T) {
	sub := testSubmission(model.FieldMap{
		"email": "jane@test.com",
		"name":  "Jane",
	})

	got := service.RenderFields("[ALL]", sub, service.EscapeNone)
	// sorted by field name
	want := "email: jane@test.com\nname: Jane"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRenderFieldsEscapesHTML(t *testing.T) {
	sub := testSubmission(model.FieldMap{"name": `<b>Jane</b>`})

	got := service.RenderFields("[name]", sub, service.EscapeHTML)
	if strings.Contains(got, "<b>") {
		t.Errorf("HTML should be escaped, got %q", got)
	}

	got = service.RenderFields("[name]", sub, service.StripTags)
	if got != "Jane" {
		t.Errorf("tags should be stripped, got %q", got)
	}
}

func TestTagSubstitution(t *testing.T) {
	tags := service.NewTagRegistry(
		service.UserTagResolver{},
		service.QueryTagResolver{},
	)
	ctx := &service.RequestContext{
		UserEmail: "jane@test.com",
		Query:     url.Values{"ref": {"newsletter"}},
	}

	got := tags.Substitute("{{user.email}} via {{query.ref}}", ctx)
	if got != "jane@test.com via newsletter" {
		t.Errorf("unexpected substitution: %q", got)
	}
}

func TestTagSubstitutionDefaultFallback(t *testing.T) {
	tags := service.NewTagRegistry(service.QueryTagResolver{})
	ctx := &service.RequestContext{Query: url.Values{}}

	got := tags.Substitute("{{query.ref||direct}}", ctx)
	if got != "direct" {
		t.Errorf("expected default fallback, got %q", got)
	}
}

func TestTagSubstitutionUnknownTagLeftVerbatim(t *testing.T) {
	tags := service.NewTagRegistry(service.UserTagResolver{})
	ctx := &service.RequestContext{}

	got := tags.Substitute("before {{unknown.tag}} after", ctx)
	if got != "before {{unknown.tag}} after" {
		t.Errorf("unknown tag should stay verbatim, got %q", got)
	}
}

func TestRenderFieldsURLEscape(t *testing.T) {
	sub := testSubmission(model.FieldMap{"topic": "pricing & plans"})

	got := service.RenderFields("https://hooks.site.test/x?topic=[topic]", sub, service.EscapeURL)
	want := "https://hooks.site.test/x?topic=pricing+%26+plans"
	if got != want {
		t.Errorf("expected query-escaped value, got %q", got)
	}
}
