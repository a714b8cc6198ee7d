// internal/service/tags.go
package service

import (
    "regexp"
    "strconv"
    "strings"
)

// TagResolver resolves one {{tag.param}} namespace. Resolvers returning
// "" fall through to the ||default, when one is given.
type TagResolver interface {
    Tag() string
    Resolve(param string, ctx *RequestContext) string
}

// TagRegistry holds the resolvers in registration order. It is built
// explicitly at startup and passed into the pipeline.
type TagRegistry struct {
    resolvers []TagResolver
}

func NewTagRegistry(resolvers ...TagResolver) *TagRegistry {
    return &TagRegistry{resolvers: resolvers}
}

var tagPattern = regexp.MustCompile(`\{\{([a-zA-Z_][a-zA-Z0-9_]*)\.([a-zA-Z0-9_-]+)(\|\|([^{}]*))?\}\}`)

// Substitute resolves every {{tag.param}} and {{tag.param||default}} in s.
// Unknown tags are left verbatim so templates stay forward-compatible
// with resolvers registered by other extensions.
func (r *TagRegistry) Substitute(s string, ctx *RequestContext) string {
    if r == nil || !strings.Contains(s, "{{") {
        return s
    }
    return tagPattern.ReplaceAllStringFunc(s, func(match string) string {
        parts := tagPattern.FindStringSubmatch(match)
        tag, param, def := parts[1], parts[2], parts[4]

        for _, resolver := range r.resolvers {
            if resolver.Tag() != tag {
                continue
            }
            value := resolver.Resolve(param, ctx)
            if value == "" {
                return def
            }
            return value
        }
        return match
    })
}

// UserTagResolver resolves {{user.id}}, {{user.name}} and {{user.email}}
// from the authenticated user on the request.
type UserTagResolver struct{}

func (UserTagResolver) Tag() string { return "user" }

func (UserTagResolver) Resolve(param string, ctx *RequestContext) string {
    switch param {
    case "id":
        if ctx.UserID == 0 {
            return ""
        }
        return strconv.Itoa(ctx.UserID)
    case "name":
        return ctx.UserName
    case "email":
        return ctx.UserEmail
    }
    return ""
}

// PostTagResolver resolves {{post.id}}, {{post.title}} and {{post.url}}
// from the page the form was rendered on.
type PostTagResolver struct{}

func (PostTagResolver) Tag() string { return "post" }

func (PostTagResolver) Resolve(param string, ctx *RequestContext) string {
    switch param {
    case "id":
        if ctx.PostID == 0 {
            return ""
        }
        return strconv.Itoa(ctx.PostID)
    case "title":
        return ctx.PostTitle
    case "url":
        return ctx.PostURL
    }
    return ""
}

// QueryTagResolver resolves {{query.param}} from the request query string.
type QueryTagResolver struct{}

func (QueryTagResolver) Tag() string { return "query" }

func (QueryTagResolver) Resolve(param string, ctx *RequestContext) string {
    if ctx.Query == nil {
        return ""
    }
    return ctx.Query.Get(param)
}
