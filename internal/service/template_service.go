// internal/service/template_service.go
package service

import (
    "fmt"
    "html"
    "net/url"
    "regexp"
    "sort"
    "strings"

    "github.com/cleanforms/cleanforms-backend/internal/model"
)

// EscapeMode controls how substituted field values are escaped, per call
// site: HTML email bodies escape, plain-text destinations strip tags,
// URL call sites query-escape, webhook payloads take values as-is.
type EscapeMode int

const (
    EscapeNone EscapeMode = iota
    EscapeHTML
    StripTags
    EscapeURL
)

// Computed pseudo-fields available in every template alongside the
// submission's own fields.
const (
    FieldTimestamp  = "CF_TIMESTAMP"
    FieldUserAgent  = "CF_USER_AGENT"
    FieldIPAddress  = "CF_IP_ADDRESS"
    FieldRefererURL = "CF_REFERRER_URL"
    FieldAll        = "ALL"
)

const timestampLayout = "2006-01-02 15:04:05"

// RenderFields substitutes [FieldName] and [ALL] placeholders in template
// with the submission's data plus the computed pseudo-fields. Placeholders
// that match no field are left verbatim.
func RenderFields(template string, sub *model.Submission, mode EscapeMode) string {
    if sub == nil || !strings.Contains(template, "[") {
        return template
    }

    result := template
    for name, value := range sub.Data {
        result = strings.ReplaceAll(result, "["+name+"]", escapeValue(FormatFieldValue(value), mode))
    }

    result = strings.ReplaceAll(result, "["+FieldTimestamp+"]", escapeValue(sub.SubmittedAt.Format(timestampLayout), mode))
    result = strings.ReplaceAll(result, "["+FieldUserAgent+"]", escapeValue(sub.UserAgent, mode))
    result = strings.ReplaceAll(result, "["+FieldIPAddress+"]", escapeValue(sub.IPAddress, mode))
    result = strings.ReplaceAll(result, "["+FieldRefererURL+"]", escapeValue(sub.RefererURL, mode))

    if strings.Contains(result, "["+FieldAll+"]") {
        result = strings.ReplaceAll(result, "["+FieldAll+"]", renderAllFields(sub, mode))
    }

    return result
}

// FormatFieldValue renders one submitted value as text: arrays join with
// ", ", file-metadata objects render as a link-and-size string.
func FormatFieldValue(value interface{}) string {
    switch v := value.(type) {
    case nil:
        return ""
    case string:
        return v
    case []interface{}:
        parts := make([]string, 0, len(v))
        for _, item := range v {
            parts = append(parts, FormatFieldValue(item))
        }
        return strings.Join(parts, ", ")
    case []string:
        return strings.Join(v, ", ")
    case map[string]interface{}:
        return formatFileValue(v)
    default:
        return fmt.Sprintf("%v", v)
    }
}

func formatFileValue(file map[string]interface{}) string {
    url, _ := file["url"].(string)
    if url == "" {
        return FormatFieldValue(file["name"])
    }
    size, ok := file["size"].(float64)
    if !ok || size <= 0 {
        return url
    }
    return fmt.Sprintf("%s (%s)", url, humanSize(int64(size)))
}

func humanSize(n int64) string {
    switch {
    case n >= 1<<20:
        return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
    case n >= 1<<10:
        return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
    }
    return fmt.Sprintf("%d B", n)
}

// renderAllFields builds the "name: value" listing [ALL] expands to.
// Field names are sorted so the listing is stable between renders.
func renderAllFields(sub *model.Submission, mode EscapeMode) string {
    names := make([]string, 0, len(sub.Data))
    for name := range sub.Data {
        names = append(names, name)
    }
    sort.Strings(names)

    var b strings.Builder
    sep := "\n"
    if mode == EscapeHTML {
        sep = "<br>\n"
    }
    for i, name := range names {
        if i > 0 {
            b.WriteString(sep)
        }
        b.WriteString(name)
        b.WriteString(": ")
        b.WriteString(escapeValue(FormatFieldValue(sub.Data[name]), mode))
    }
    return b.String()
}

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

func escapeValue(s string, mode EscapeMode) string {
    switch mode {
    case EscapeHTML:
        return html.EscapeString(s)
    case StripTags:
        return htmlTagPattern.ReplaceAllString(s, "")
    case EscapeURL:
        return url.QueryEscape(s)
    }
    return s
}
