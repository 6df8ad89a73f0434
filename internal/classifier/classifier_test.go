package classifier_test

import (
	"testing"

	"github.com/robalyx/igsheet/internal/classifier"
	"github.com/robalyx/igsheet/internal/export/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identities(g *types.Group) []string {
	if g == nil {
		return nil
	}

	out := make([]string, 0, len(g.Records))
	for _, r := range g.Records {
		out = append(out, r.Identity)
	}

	return out
}

func TestClassify(t *testing.T) {
	t.Parallel()

	input := `[
		{"email":"+8801711000000","username":"u1","password":"p1","auth_code":"123456"},
		{"email":"user@x.com","username":"u2","password":"p2","auth_code":""},
		{"username":"u3","password":"p3"}
	]`

	result, err := classifier.Classify([]byte(input))
	require.NoError(t, err)
	require.NotNil(t, result.Phone)
	require.NotNil(t, result.Email)

	assert.Equal(t, types.KindPhone, result.Phone.Kind)
	assert.Equal(t, types.KindEmail, result.Email.Kind)

	require.Len(t, result.Phone.Records, 1)
	assert.Equal(t, &types.Record{
		Username: "u1",
		Password: "p1",
		AuthCode: "123456",
		Identity: "+8801711000000",
	}, result.Phone.Records[0])

	require.Len(t, result.Email.Records, 2)
	assert.Equal(t, "user@x.com", result.Email.Records[0].Identity)
	assert.Equal(t, "u2", result.Email.Records[0].Username)
	assert.Equal(t, &types.Record{Username: "u3", Password: "p3"}, result.Email.Records[1])
}

func TestClassify_Partition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		wantPhone []string
		wantEmail []string
	}{
		{
			name:      "empty array",
			input:     `[]`,
			wantPhone: nil,
			wantEmail: nil,
		},
		{
			name:      "only phones",
			input:     `[{"email":"123"},{"email":"+1"}]`,
			wantPhone: []string{"123", "+1"},
		},
		{
			name:      "whitespace is stripped before matching",
			input:     `[{"email":"  +447700900000 \n"}]`,
			wantPhone: []string{"+447700900000"},
		},
		{
			name:      "empty and blank values go to email",
			input:     `[{"email":""},{"email":"   "},{}]`,
			wantEmail: []string{"", "", ""},
		},
		{
			name:      "phone-like but not phone",
			input:     `[{"email":"+"},{"email":"++1"},{"email":"12 34"},{"email":"1-800"},{"email":"1+2"}]`,
			wantEmail: []string{"+", "++1", "12 34", "1-800", "1+2"},
		},
		{
			name:      "numeric email value keeps its digits",
			input:     `[{"email":8801711000000}]`,
			wantPhone: []string{"8801711000000"},
		},
		{
			name:      "null email is empty",
			input:     `[{"email":null}]`,
			wantEmail: []string{""},
		},
		{
			name:      "non-object elements are tolerated",
			input:     `[1,"x",null,{"email":"42"}]`,
			wantPhone: []string{"42"},
			wantEmail: []string{"", "", ""},
		},
		{
			name:      "order is preserved across interleaved groups",
			input:     `[{"email":"a@x"},{"email":"1"},{"email":"b@x"},{"email":"2"},{"email":"c@x"}]`,
			wantPhone: []string{"1", "2"},
			wantEmail: []string{"a@x", "b@x", "c@x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := classifier.Classify([]byte(tt.input))
			require.NoError(t, err)

			assert.Equal(t, tt.wantPhone, identities(result.Phone))
			assert.Equal(t, tt.wantEmail, identities(result.Email))
			assert.Equal(t, tt.wantPhone == nil && tt.wantEmail == nil, result.Empty())
			wantGroups := 0
			if tt.wantPhone != nil {
				wantGroups++
			}
			if tt.wantEmail != nil {
				wantGroups++
			}
			assert.Len(t, result.Groups(), wantGroups)
		})
	}
}

func TestClassify_TotalPartition(t *testing.T) {
	t.Parallel()

	input := `[{"email":"1"},{"email":"x"},{},{"email":"+2"},{"email":" "},5,{"email":"a@b"}]`

	result, err := classifier.Classify([]byte(input))
	require.NoError(t, err)

	assert.Equal(t, 7, result.Phone.Len()+result.Email.Len())

	for _, r := range result.Email.Records {
		assert.False(t, classifier.IsPhoneNumber(r.Identity))
	}
	for _, r := range result.Phone.Records {
		assert.True(t, classifier.IsPhoneNumber(r.Identity))
		assert.NotEmpty(t, r.Identity)
	}
}

func TestClassify_Idempotent(t *testing.T) {
	t.Parallel()

	input := []byte(`[{"email":"1","username":"a"},{"email":"x@y","username":"b"},{"email":"2","username":"c"}]`)

	first, err := classifier.Classify(input)
	require.NoError(t, err)

	second, err := classifier.Classify(input)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestClassify_FieldCoercion(t *testing.T) {
	t.Parallel()

	input := `[{"email":"a@b","username":12,"password":true,"auth_code":{"k":"v"}}]`

	result, err := classifier.Classify([]byte(input))
	require.NoError(t, err)
	require.Equal(t, 1, result.Email.Len())

	record := result.Email.Records[0]
	assert.Equal(t, "12", record.Username)
	assert.Equal(t, "true", record.Password)
	assert.JSONEq(t, `{"k":"v"}`, record.AuthCode)
}

func TestClassify_ParseError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{name: "empty input", input: ""},
		{name: "truncated", input: `[{"email":`},
		{name: "not json", input: `hello`},
		{name: "object top level", input: `{"a":1}`},
		{name: "string top level", input: `"[]"`},
		{name: "number top level", input: `42`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := classifier.Classify([]byte(tt.input))
			require.ErrorIs(t, err, classifier.ErrParse)
			assert.Nil(t, result)
		})
	}
}

func TestIsPhoneNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{"", false},
		{" ", false},
		{"0", true},
		{"+0", true},
		{" +123 ", true},
		{"+", false},
		{"abc", false},
		{"١٢٣", false}, // non-ASCII digits
		{"12a", false},
		{"user@example.com", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, classifier.IsPhoneNumber(tt.input), "input %q", tt.input)
	}
}
