// internal/service/spamcheck.go
package service

import (
    "encoding/json"
    "fmt"
    "log"
    "sort"
    "strconv"
    "strings"
    "time"

    "github.com/go-resty/resty/v2"

    "github.com/cleanforms/cleanforms-backend/internal/model"
)

// Working field names the captcha widgets post alongside the form. They
// never reach the data map; validators read them from ctx.Raw.
const (
    RecaptchaResponseField = "g-recaptcha-response"
    TurnstileResponseField = "cf-turnstile-response"
    MathCaptchaField       = "cf_math_captcha"
)

// VerifyTimeout bounds every outbound verification call. Verification
// that cannot complete fails closed.
const VerifyTimeout = 10 * time.Second

// NewVerifyClient builds the resty client the anti-abuse validators
// share.
func NewVerifyClient() *resty.Client {
    return resty.New().SetTimeout(VerifyTimeout)
}

func rawField(ctx *RequestContext, name string) string {
    if ctx == nil || ctx.Raw == nil {
        return ""
    }
    s, _ := ctx.Raw[name].(string)
    return strings.TrimSpace(s)
}

// RecaptchaValidator verifies a reCAPTCHA v3 response token against
// Google's siteverify endpoint and rejects low scores.
type RecaptchaValidator struct {
    Secret    string
    VerifyURL string
    Client    *resty.Client
}

const recaptchaVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

func (v RecaptchaValidator) Validate(code string, form *model.Form, data model.FieldMap, ctx *RequestContext) string {
    if code != "" || !form.Settings.EnableRecaptcha {
        return code
    }

    token := rawField(ctx, RecaptchaResponseField)
    if token == "" {
        return CodeRecaptchaFailed
    }

    verifyURL := v.VerifyURL
    if verifyURL == "" {
        verifyURL = recaptchaVerifyURL
    }

    var result struct {
        Success bool    `json:"success"`
        Score   float64 `json:"score"`
    }
    resp, err := v.Client.R().
        SetFormData(map[string]string{
            "secret":   v.Secret,
            "response": token,
            "remoteip": ctx.IPAddress,
        }).
        SetResult(&result).
        Post(verifyURL)
    if err != nil {
        log.Println("⚠️ recaptcha verify failed:", err)
        return CodeRecaptchaFailed
    }
    if resp.IsError() || !result.Success {
        return CodeRecaptchaFailed
    }

    minScore := form.Settings.RecaptchaMinScore
    if minScore == 0 {
        minScore = 0.5
    }
    if result.Score < minScore {
        return CodeRecaptchaLowScore
    }
    return ""
}

// TurnstileValidator verifies a Cloudflare Turnstile response token.
type TurnstileValidator struct {
    Secret    string
    VerifyURL string
    Client    *resty.Client
}

const turnstileVerifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

func (v TurnstileValidator) Validate(code string, form *model.Form, data model.FieldMap, ctx *RequestContext) string {
    if code != "" || !form.Settings.EnableTurnstile {
        return code
    }

    token := rawField(ctx, TurnstileResponseField)
    if token == "" {
        return CodeTurnstileFailed
    }

    verifyURL := v.VerifyURL
    if verifyURL == "" {
        verifyURL = turnstileVerifyURL
    }

    var result struct {
        Success bool `json:"success"`
    }
    resp, err := v.Client.R().
        SetFormData(map[string]string{
            "secret":   v.Secret,
            "response": token,
            "remoteip": ctx.IPAddress,
        }).
        SetResult(&result).
        Post(verifyURL)
    if err != nil {
        log.Println("⚠️ turnstile verify failed:", err)
        return CodeTurnstileFailed
    }
    if resp.IsError() || !result.Success {
        return CodeTurnstileFailed
    }
    return ""
}

// MathCaptchaValidator checks the basic-math challenge answer against the
// expected result carried in the consumed session token. No network.
type MathCaptchaValidator struct{}

func (MathCaptchaValidator) Validate(code string, form *model.Form, data model.FieldMap, ctx *RequestContext) string {
    if code != "" || !form.Settings.EnableMathCaptcha {
        return code
    }
    if !ctx.HasMathAnswer {
        return CodeMathCaptchaFailed
    }
    answer, err := strconv.Atoi(rawField(ctx, MathCaptchaField))
    if err != nil || answer != ctx.MathAnswer {
        return CodeMathCaptchaFailed
    }
    return ""
}

// SpamCheckValidator posts the submission content to a reputation
// service shaped like Postmark's spamcheck API and rejects high scores.
type SpamCheckValidator struct {
    URL       string
    Threshold float64
    Client    *resty.Client
}

func (v SpamCheckValidator) Validate(code string, form *model.Form, data model.FieldMap, ctx *RequestContext) string {
    if code != "" || !form.Settings.EnableSpamCheck || v.URL == "" {
        return code
    }

    payload, err := json.Marshal(map[string]string{
        "email":   spamCheckDocument(data, ctx),
        "options": "short",
    })
    if err != nil {
        return CodeSpam
    }

    var result struct {
        Success bool   `json:"success"`
        Score   string `json:"score"`
    }
    resp, err := v.Client.R().
        SetHeader("Content-Type", "application/json").
        SetBody(payload).
        SetResult(&result).
        Post(v.URL)
    if err != nil {
        log.Println("⚠️ spam check failed:", err)
        return CodeSpam
    }
    if resp.IsError() || !result.Success {
        return CodeSpam
    }

    threshold := v.Threshold
    if threshold == 0 {
        threshold = 5.0
    }
    score, err := strconv.ParseFloat(result.Score, 64)
    if err != nil {
        return CodeSpam
    }
    if score >= threshold {
        return CodeSpam
    }
    return ""
}

// spamCheckDocument renders the submission as a minimal message the
// reputation service can score.
func spamCheckDocument(data model.FieldMap, ctx *RequestContext) string {
    names := make([]string, 0, len(data))
    for name := range data {
        names = append(names, name)
    }
    sort.Strings(names)

    var b strings.Builder
    fmt.Fprintf(&b, "From: %s\r\n", ctx.IPAddress)
    b.WriteString("Subject: form submission\r\n\r\n")
    for _, name := range names {
        fmt.Fprintf(&b, "%s: %s\r\n", name, FormatFieldValue(data[name]))
    }
    return b.String()
}
