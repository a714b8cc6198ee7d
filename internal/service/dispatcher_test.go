package service_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/cleanforms/cleanforms-backend/internal/model"
	"github.com/cleanforms/cleanforms-backend/internal/service"
)

func testTags() *service.TagRegistry {
	return service.NewTagRegistry(
		service.UserTagResolver{},
		service.PostTagResolver{},
		service.QueryTagResolver{},
	)
}

func emailAction(to string) model.Action {
	return model.Action{
		Type: model.ActionTypeEmail,
		Email: &model.EmailAction{
			From:    "noreply@site.test",
			To:      to,
			Subject: "New submission from [name]",
			Message: "[ALL]",
		},
	}
}

func webhookAction(url string) model.Action {
	return model.Action{
		Type:    model.ActionTypeWebhook,
		Webhook: &model.WebhookAction{URL: url, ContentType: "json"},
	}
}

func TestChannelIsolationWebhookFailureDoesNotBlockEmail(t *testing.T) {
	logRepo := NewMockDeliveryLogRepo()
	tags := testTags()

	dispatcher := service.NewDispatcher(
		&service.EmailHandler{
			Log:  logRepo,
			Send: func(e *model.DeliveryLogEntry) error { return nil },
			Tags: tags,
		},
		&service.WebhookHandler{
			Client: resty.New().SetTimeout(2 * time.Second),
			Tags:   tags,
		},
	)

	form := formWithSettings(model.FormSettings{Actions: []model.Action{
		// port 1 refuses connections: a pure transport failure
		webhookAction("http://127.0.0.1:1/hook"),
		emailAction("admin@site.test"),
	}})
	form.Settings.Actions[0].Index = 0
	form.Settings.Actions[1].Index = 1

	sub := testSubmission(model.FieldMap{"name": "Jane"})
	results := dispatcher.Dispatch(form, sub, &service.RequestContext{})

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Outcome != service.OutcomeFailed {
		t.Errorf("webhook should fail, got %q", results[0].Outcome)
	}
	if results[1].Outcome != service.OutcomeSent {
		t.Errorf("email should still send, got %q (err %q)", results[1].Outcome, results[1].Err)
	}

	entry, _ := logRepo.GetByID(1)
	if entry == nil || entry.Status != model.DeliveryStatusSent {
		t.Errorf("email delivery log row should be sent despite webhook failure, got %+v", entry)
	}
}

func TestWebhookNonSuccessStatusCountsAsDelivered(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	handler := &service.WebhookHandler{
		Client: resty.New().SetTimeout(2 * time.Second),
		Tags:   testTags(),
	}

	form := formWithSettings(model.FormSettings{})
	result := handler.Process(webhookAction(srv.URL), testSubmission(model.FieldMap{"name": "Jane"}), form, &service.RequestContext{})

	if result.Outcome != service.OutcomeSent {
		t.Errorf("remote 500 is the remote's business, expected sent, got %q", result.Outcome)
	}
}

func TestWebhookAuthHeaderAndBody(t *testing.T) {
	var gotAuth string
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("X-Api-Key")
		gotContentType = r.Header.Get("Content-Type")
	}))
	defer srv.Close()

	handler := &service.WebhookHandler{
		Client: resty.New().SetTimeout(2 * time.Second),
		Tags:   testTags(),
	}

	action := model.Action{
		Type: model.ActionTypeWebhook,
		Webhook: &model.WebhookAction{
			URL:             srv.URL,
			ContentType:     "form",
			AuthHeaderName:  "X-Api-Key",
			AuthHeaderValue: "secret123",
		},
	}

	result := handler.Process(action, testSubmission(model.FieldMap{"name": "Jane"}), formWithSettings(model.FormSettings{}), &service.RequestContext{})
	if result.Outcome != service.OutcomeSent {
		t.Fatalf("expected sent, got %q", result.Outcome)
	}
	if gotAuth != "secret123" {
		t.Errorf("auth header not attached, got %q", gotAuth)
	}
	if gotContentType != "application/x-www-form-urlencoded" {
		t.Errorf("expected form encoding, got %q", gotContentType)
	}
}

func TestAutoresponderSkipsWithoutValidRecipient(t *testing.T) {
	logRepo := NewMockDeliveryLogRepo()
	sendCalled := false

	handler := &service.AutoresponderHandler{
		Log:  logRepo,
		Send: func(e *model.DeliveryLogEntry) error { sendCalled = true; return nil },
		Tags: testTags(),
	}

	action := model.Action{
		Type: model.ActionTypeAutoresponder,
		Autoresponder: &model.AutoresponderAction{
			From:       "noreply@site.test",
			EmailField: "email",
			Subject:    "Thanks [name]",
			Message:    "We got it.",
		},
	}
	form := formWithSettings(model.FormSettings{})

	// field absent
	result := handler.Process(action, testSubmission(model.FieldMap{"name": "Jane"}), form, &service.RequestContext{})
	if result.Outcome != service.OutcomeSkipped {
		t.Errorf("missing field should skip, got %q", result.Outcome)
	}

	// field present but invalid
	result = handler.Process(action, testSubmission(model.FieldMap{"email": "nope"}), form, &service.RequestContext{})
	if result.Outcome != service.OutcomeSkipped {
		t.Errorf("invalid address should skip, got %q", result.Outcome)
	}

	if sendCalled {
		t.Error("transport must not be called for skipped autoresponders")
	}
	if len(logRepo.Entries) != 0 {
		t.Errorf("skipped autoresponders must not pollute the delivery log, got %d rows", len(logRepo.Entries))
	}
}

func TestAutoresponderSendsToSubmitter(t *testing.T) {
	logRepo := NewMockDeliveryLogRepo()

	handler := &service.AutoresponderHandler{
		Log:  logRepo,
		Send: func(e *model.DeliveryLogEntry) error { return nil },
		Tags: testTags(),
	}

	action := model.Action{
		Type: model.ActionTypeAutoresponder,
		Autoresponder: &model.AutoresponderAction{
			From:       "noreply@site.test",
			EmailField: "email",
			Subject:    "Thanks [name]",
			Message:    "We got it.",
		},
	}

	sub := testSubmission(model.FieldMap{"name": "Jane", "email": "jane@test.com"})
	result := handler.Process(action, sub, formWithSettings(model.FormSettings{}), &service.RequestContext{})

	if result.Outcome != service.OutcomeSent {
		t.Fatalf("expected sent, got %q", result.Outcome)
	}
	entry, _ := logRepo.GetByID(1)
	if entry == nil || entry.ToEmail != "jane@test.com" {
		t.Errorf("expected log row addressed to submitter, got %+v", entry)
	}
	if entry.ActionType != model.ActionTypeAutoresponder {
		t.Errorf("expected autoresponder action type, got %q", entry.ActionType)
	}
}

func TestEmailFailureIsRecordedOnLogRow(t *testing.T) {
	logRepo := NewMockDeliveryLogRepo()

	handler := &service.EmailHandler{
		Log:  logRepo,
		Send: func(e *model.DeliveryLogEntry) error { return fmt.Errorf("smtp: connection refused") },
		Tags: testTags(),
	}

	result := handler.Process(emailAction("admin@site.test"), testSubmission(model.FieldMap{"name": "Jane"}), formWithSettings(model.FormSettings{}), &service.RequestContext{})

	if result.Outcome != service.OutcomeFailed {
		t.Fatalf("expected failed, got %q", result.Outcome)
	}
	entry, _ := logRepo.GetByID(1)
	if entry.Status != model.DeliveryStatusFailed {
		t.Errorf("expected failed status on log row, got %q", entry.Status)
	}
	if entry.ErrorMessage != "smtp: connection refused" {
		t.Errorf("transport error should be captured, got %q", entry.ErrorMessage)
	}
}

// panicHandler blows up to prove the dispatcher isolates it.
type panicHandler struct{}

func (panicHandler) Type() string { return "explosive" }
func (panicHandler) Process(action model.Action, sub *model.Submission, form *model.Form, ctx *service.RequestContext) service.DispatchResult {
	panic("boom")
}

func TestDispatcherIsolatesPanics(t *testing.T) {
	logRepo := NewMockDeliveryLogRepo()
	dispatcher := service.NewDispatcher(
		panicHandler{},
		&service.EmailHandler{
			Log:  logRepo,
			Send: func(e *model.DeliveryLogEntry) error { return nil },
			Tags: testTags(),
		},
	)

	form := formWithSettings(model.FormSettings{Actions: []model.Action{
		{Type: "explosive", Index: 0, Webhook: &model.WebhookAction{URL: "unused"}},
		emailAction("admin@site.test"),
	}})
	form.Settings.Actions[1].Index = 1

	results := dispatcher.Dispatch(form, testSubmission(model.FieldMap{"name": "Jane"}), &service.RequestContext{})

	if results[0].Outcome != service.OutcomeFailed {
		t.Errorf("panicking handler should report failed, got %q", results[0].Outcome)
	}
	if results[1].Outcome != service.OutcomeSent {
		t.Errorf("later handler should still run, got %q", results[1].Outcome)
	}
}

func TestDispatcherUnknownActionType(t *testing.T) {
	dispatcher := service.NewDispatcher()
	form := formWithSettings(model.FormSettings{Actions: []model.Action{
		{Type: "carrier-pigeon", Webhook: &model.WebhookAction{URL: "unused"}},
	}})

	results := dispatcher.Dispatch(form, testSubmission(model.FieldMap{}), &service.RequestContext{})
	if len(results) != 1 || results[0].Outcome != service.OutcomeFailed {
		t.Errorf("unknown type should produce a failed result, got %+v", results)
	}
}

func TestEmailAbortsWhenDeliveryLogUnavailable(t *testing.T) {
	logRepo := NewMockDeliveryLogRepo()
	logRepo.CreateErr = fmt.Errorf("connection refused")

	sendCalled := false
	handler := &service.EmailHandler{
		Log:  logRepo,
		Send: func(e *model.DeliveryLogEntry) error { sendCalled = true; return nil },
		Tags: testTags(),
	}

	form := formWithSettings(model.FormSettings{})
	result := handler.Process(emailAction("admin@site.test"), testSubmission(model.FieldMap{"name": "Jane"}), form, &service.RequestContext{})

	if result.Outcome != service.OutcomeFailed {
		t.Errorf("expected failed dispatch when the pending row cannot be written, got %q", result.Outcome)
	}
	if sendCalled {
		t.Error("transport must not run without a pending delivery log row")
	}
}

func TestWebhookURLFieldValuesAreQueryEscaped(t *testing.T) {
	var gotTopic string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTopic = r.URL.Query().Get("topic")
	}))
	defer srv.Close()

	handler := &service.WebhookHandler{
		Client: resty.New().SetTimeout(2 * time.Second),
		Tags:   testTags(),
	}

	sub := testSubmission(model.FieldMap{"topic": "pricing & plans"})
	result := handler.Process(webhookAction(srv.URL+"/hook?topic=[topic]"), sub, formWithSettings(model.FormSettings{}), &service.RequestContext{})

	if result.Outcome != service.OutcomeSent {
		t.Fatalf("expected sent, got %q (err %q)", result.Outcome, result.Err)
	}
	if gotTopic != "pricing & plans" {
		t.Errorf("field value should survive the query string intact, got %q", gotTopic)
	}
}
