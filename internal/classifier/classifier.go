package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/robalyx/igsheet/internal/export/types"
)

// ErrParse indicates the input is not valid JSON or its top-level value is not an array.
var ErrParse = errors.New("invalid JSON document")

// Input field names read from each entry.
const (
	FieldEmail    = "email"
	FieldUsername = "username"
	FieldPassword = "password"
	FieldAuthCode = "auth_code"
)

var (
	phonePattern = regexp.MustCompile(`^\+?[0-9]+$`)

	// decoder keeps numbers as their literal text so numeric phone values survive intact.
	decoder = sonic.Config{UseNumber: true, SortMapKeys: true}.Froze()
)

// Result holds the partitioned groups. A group is nil when it received no records.
type Result struct {
	Phone *types.Group
	Email *types.Group
}

// Empty reports whether neither group received any record.
func (r *Result) Empty() bool {
	return r.Phone == nil && r.Email == nil
}

// Groups returns the non-nil groups, phone first.
func (r *Result) Groups() []*types.Group {
	groups := make([]*types.Group, 0, 2)
	if r.Phone != nil {
		groups = append(groups, r.Phone)
	}
	if r.Email != nil {
		groups = append(groups, r.Email)
	}
	return groups
}

// Classify decodes raw as a JSON array and partitions its entries into phone and
// email groups, preserving input order within each group.
func Classify(raw []byte) (*Result, error) {
	var data any
	if err := decoder.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	entries, ok := data.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: top-level value is not an array", ErrParse)
	}

	var phoneRecords, emailRecords []*types.Record

	for _, entry := range entries {
		// Non-object entries read as if every field were missing
		fields, _ := entry.(map[string]any)

		identity := strings.TrimSpace(field(fields, FieldEmail))
		record := &types.Record{
			Username: field(fields, FieldUsername),
			Password: field(fields, FieldPassword),
			AuthCode: field(fields, FieldAuthCode),
			Identity: identity,
		}

		if IsPhoneNumber(identity) {
			phoneRecords = append(phoneRecords, record)
		} else {
			emailRecords = append(emailRecords, record)
		}
	}

	result := &Result{}
	if len(phoneRecords) > 0 {
		result.Phone = &types.Group{Kind: types.KindPhone, Records: phoneRecords}
	}
	if len(emailRecords) > 0 {
		result.Email = &types.Group{Kind: types.KindEmail, Records: emailRecords}
	}

	return result, nil
}

// IsPhoneNumber reports whether s, after trimming, is an optional "+" followed by
// one or more ASCII digits. Empty values are never phone numbers.
func IsPhoneNumber(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	return phonePattern.MatchString(s)
}

// field reads a key from an entry and coerces it to a string.
// Missing keys and JSON null become an empty string.
func field(fields map[string]any, key string) string {
	value, ok := fields[key]
	if !ok {
		return ""
	}
	return stringify(value)
}

// stringify renders a decoded JSON value as text.
func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case map[string]any, []any:
		out, err := decoder.MarshalToString(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return out
	default:
		return fmt.Sprint(v)
	}
}
