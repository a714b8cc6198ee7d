package service_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/cleanforms/cleanforms-backend/internal/model"
	"github.com/cleanforms/cleanforms-backend/internal/service"
)

func TestBuildResponseSuccessShape(t *testing.T) {
	form := formWithSettings(model.FormSettings{RedirectURL: "https://site.test/thanks?n=[name]"})
	sub := testSubmission(model.FieldMap{"name": "Jane"})

	res := service.BuildResponse("", form, sub, &service.RequestContext{}, testTags())

	if res.Message.Type != "success" {
		t.Fatalf("expected success, got %q", res.Message.Type)
	}
	if res.Message.RedirectURL != "https://site.test/thanks?n=Jane" {
		t.Errorf("expected templated redirect, got %q", res.Message.RedirectURL)
	}

	// hide_form is a fixed member of the payload even when false
	raw, err := json.Marshal(res)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), `"hide_form":false`) {
		t.Errorf("expected hide_form key in payload, got %s", raw)
	}
}

func TestBuildResponseSpamLooksLikeSuccess(t *testing.T) {
	form := formWithSettings(model.FormSettings{})

	res := service.BuildResponse(service.CodeSpam, form, nil, &service.RequestContext{}, testTags())

	if res.Message.Type != "success" {
		t.Errorf("spam must answer with the success shape, got %q", res.Message.Type)
	}
}

func TestBuildResponseErrorUsesFormMessage(t *testing.T) {
	form := formWithSettings(model.FormSettings{})
	form.Messages = model.Messages{"invalid_email": "That address looks wrong."}

	res := service.BuildResponse(service.CodeInvalidEmail, form, nil, &service.RequestContext{}, testTags())

	if res.Message.Type != "error" {
		t.Fatalf("expected error, got %q", res.Message.Type)
	}
	if res.Message.Text != "That address looks wrong." {
		t.Errorf("expected configured message, got %q", res.Message.Text)
	}
}
