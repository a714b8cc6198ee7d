// internal/service/response.go
package service

import "github.com/cleanforms/cleanforms-backend/internal/model"

// ResponseMessage is the user-facing payload shape.
type ResponseMessage struct {
    Type        string `json:"type"`
    Text        string `json:"text"`
    HideForm    bool   `json:"hide_form"`
    RedirectURL string `json:"redirect_url,omitempty"`
}

// Response wraps the message the way script consumers expect it.
type Response struct {
    Message ResponseMessage `json:"message"`
}

// BuildResponse maps the terminal error code to the user-facing payload.
// The spam code deliberately lands in the success branch so bots get no
// signal that they were caught.
func BuildResponse(code string, form *model.Form, sub *model.Submission, ctx *RequestContext, tags *TagRegistry) *Response {
    if code == "" || code == CodeSpam {
        redirect := form.Settings.RedirectURL
        if redirect != "" {
            redirect = RenderFields(tags.Substitute(redirect, ctx), sub, EscapeNone)
        }
        return &Response{Message: ResponseMessage{
            Type:        "success",
            Text:        form.Messages.Text("success"),
            HideForm:    form.Settings.HideAfterSuccess,
            RedirectURL: redirect,
        }}
    }
    return &Response{Message: ResponseMessage{
        Type: "error",
        Text: form.Messages.Text(code),
    }}
}
