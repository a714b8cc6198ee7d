// internal/service/gate.go
package service

import (
    "strings"

    "github.com/cleanforms/cleanforms-backend/internal/model"
)

// Honeypot and session-token working field names. Both carry the
// IgnoredPrefix, so the normalizer strips them from the data map.
const (
    HoneypotPrefix    = "cf_hp"
    SessionTokenField = "cf_token"
)

// Gate rejects obviously automated traffic before any other work
// happens.
type Gate struct {
    Tokens *TokenStore
}

func NewGate(tokens *TokenStore) *Gate {
    return &Gate{Tokens: tokens}
}

// CheckHoneypot reports whether the submission passes the honeypot
// contract: at least one field named with the honeypot prefix must be
// present and every such field must be empty. A missing field or any
// filled one means a bot. The caller aborts silently on false; bots get
// no feedback to adapt to.
func (g *Gate) CheckHoneypot(raw model.FieldMap) bool {
    found := false
    for name, value := range raw {
        if !strings.HasPrefix(name, HoneypotPrefix) {
            continue
        }
        found = true
        s, ok := value.(string)
        if !ok || strings.TrimSpace(s) != "" {
            return false
        }
    }
    return found
}

// VerifySessionToken checks the anti-replay token when the form requires
// one (explicitly, or implicitly because the math captcha carries its
// expected answer in the token). Returns the error code to respond with,
// or "" on pass. The consumed token's math answer is stashed on the
// request context for the math-captcha validator.
func (g *Gate) VerifySessionToken(form *model.Form, raw model.FieldMap, ctx *RequestContext) string {
    required := form.Settings.RequireSessionToken || form.Settings.EnableMathCaptcha
    if !required {
        return ""
    }

    token, _ := raw[SessionTokenField].(string)
    tok, ok := g.Tokens.Consume(token)
    if !ok {
        return CodeStaleSession
    }

    ctx.MathAnswer = tok.MathAnswer
    ctx.HasMathAnswer = true
    return ""
}
