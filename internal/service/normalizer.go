// internal/service/normalizer.go
package service

import (
    "strings"

    "github.com/cleanforms/cleanforms-backend/internal/model"
)

// IgnoredPrefix marks internal working fields (honeypot, captcha answer,
// session token). Anything with this prefix never reaches the data map.
const IgnoredPrefix = "cf_"

// Normalizer turns the raw request field map into the clean data map
// every downstream component works with. It touches no network and no
// storage; given the same input and context it always produces the same
// output.
type Normalizer struct {
    // Ignored holds exact field names contributed by extensions, on top
    // of the IgnoredPrefix convention.
    Ignored []string
    Tags    *TagRegistry
}

func NewNormalizer(tags *TagRegistry, ignored ...string) *Normalizer {
    return &Normalizer{Ignored: ignored, Tags: tags}
}

// Normalize drops ignored fields, trims and unslashes every value, and
// resolves {{tag.param}} placeholders inside submitted values.
func (n *Normalizer) Normalize(raw model.FieldMap, ctx *RequestContext) model.FieldMap {
    data := make(model.FieldMap, len(raw))
    for name, value := range raw {
        if n.isIgnored(name) {
            continue
        }
        data[name] = n.cleanValue(value, ctx)
    }
    return data
}

func (n *Normalizer) isIgnored(name string) bool {
    if strings.HasPrefix(name, IgnoredPrefix) {
        return true
    }
    for _, ignored := range n.Ignored {
        if name == ignored {
            return true
        }
    }
    return false
}

func (n *Normalizer) cleanValue(value interface{}, ctx *RequestContext) interface{} {
    switch v := value.(type) {
    case string:
        s := unslash(strings.TrimSpace(v))
        return n.Tags.Substitute(s, ctx)
    case []interface{}:
        out := make([]interface{}, len(v))
        for i, item := range v {
            out[i] = n.cleanValue(item, ctx)
        }
        return out
    case []string:
        out := make([]interface{}, len(v))
        for i, item := range v {
            out[i] = n.cleanValue(item, ctx)
        }
        return out
    default:
        // file metadata objects and non-string scalars pass through
        return v
    }
}

// unslash reverses the backslash escaping applied in transit. Only
// quote and backslash escapes are unescaped; a backslash before any
// other character is literal data and stays put, so a path like
// C:\Users\jane survives a second normalization unchanged.
func unslash(s string) string {
    if !strings.Contains(s, `\`) {
        return s
    }
    var b strings.Builder
    b.Grow(len(s))
    for i := 0; i < len(s); i++ {
        c := s[i]
        if c == '\\' && i+1 < len(s) {
            switch s[i+1] {
            case '"', '\'', '\\':
                b.WriteByte(s[i+1])
                i++
                continue
            }
        }
        b.WriteByte(c)
    }
    return b.String()
}
