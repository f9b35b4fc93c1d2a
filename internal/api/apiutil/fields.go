package apiutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"newsdesk/internal/domain/content"

	"github.com/gin-gonic/gin"
)

// Kind says how a partial-update field is decoded and cleaned.
type Kind int

const (
	// Text is plain text; any markup is stripped.
	Text Kind = iota
	// HTML is rich content run through the UGC sanitizer.
	HTML
	// Raw strings are stored as sent (URLs, emails, enum values).
	Raw
	Time
	Bool
	Int
	Float
	StringList
	JSON
)

// Fields whitelists the body keys an update endpoint accepts.
type Fields map[string]Kind

type FieldError struct {
	Field string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("Invalid value for %s", e.Field)
}

// Decode keeps whitelisted keys and converts them to storable values. Other keys are ignored.
func (f Fields) Decode(body map[string]json.RawMessage) (map[string]any, error) {
	out := make(map[string]any, len(body))
	for name, raw := range body {
		kind, ok := f[name]
		if !ok {
			continue
		}
		v, err := decodeValue(kind, raw)
		if err != nil {
			return nil, &FieldError{Field: name}
		}
		out[name] = v
	}
	return out, nil
}

func decodeValue(kind Kind, raw json.RawMessage) (any, error) {
	isNull := bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
	switch kind {
	case Text, HTML, Raw:
		var s string
		if !isNull {
			if err := json.Unmarshal(raw, &s); err != nil {
				return nil, err
			}
		}
		switch kind {
		case Text:
			return content.StripTags(s), nil
		case HTML:
			return content.SanitizeHTML(s), nil
		}
		return strings.TrimSpace(s), nil
	case Time:
		if isNull {
			return nil, nil
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return ParseTime(s)
	case Bool:
		var b bool
		err := json.Unmarshal(raw, &b)
		return b, err
	case Int:
		var n int64
		err := json.Unmarshal(raw, &n)
		return n, err
	case Float:
		var n float64
		err := json.Unmarshal(raw, &n)
		return n, err
	case StringList:
		list := []string{}
		if !isNull {
			if err := json.Unmarshal(raw, &list); err != nil {
				return nil, err
			}
		}
		for i := range list {
			list[i] = content.StripTags(list[i])
		}
		return list, nil
	case JSON:
		var v any
		err := json.Unmarshal(raw, &v)
		return v, err
	}
	return nil, fmt.Errorf("unknown field kind %d", kind)
}

// ParseTime accepts RFC 3339 timestamps and plain dates.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// BindFields decodes the JSON body through f, writing 400 on failure.
func BindFields(c *gin.Context, f Fields) (map[string]any, bool) {
	var body map[string]json.RawMessage
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return nil, false
	}
	fields, err := f.Decode(body)
	if err != nil {
		RespondError(c, err, "")
		return nil, false
	}
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No updatable fields"})
		return nil, false
	}
	return fields, true
}
