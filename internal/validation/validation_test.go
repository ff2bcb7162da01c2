package validation

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSchema = Schema{
	{Name: "username", Rules: []Rule{
		Required("username is required"),
		Length(3, 20, "username must be 3-20 characters"),
		Matches(regexp.MustCompile(`^[a-zA-Z0-9_]+$`), "letters, digits and underscores only"),
	}},
	{Name: "email", Rules: []Rule{Required("email is required"), Email("invalid email")}},
	{Name: "password", Rules: []Rule{Length(6, 128, "password too short")}},
	{Name: "password2", Rules: []Rule{EqualTo("password", "passwords do not match")}},
	{Name: "size", Rules: []Rule{IntRange(1, 256, "size out of range")}},
}

func TestSchema_Valid(t *testing.T) {
	errs := testSchema.Validate(Values{
		"username":  "pixel_fan",
		"email":     "fan@example.com",
		"password":  "secret1",
		"password2": "secret1",
		"size":      "16",
	})
	assert.Nil(t, errs)
}

func TestSchema_FirstFailingRulePerField(t *testing.T) {
	errs := testSchema.Validate(Values{
		"username":  "",
		"email":     "nope",
		"password":  "123",
		"password2": "456",
		"size":      "999",
	})

	require.Len(t, errs, 5)
	assert.Equal(t, "username", errs[0].Field)
	assert.Equal(t, "username is required", errs[0].Description)
	assert.Equal(t, "invalid email", errs.Get("email"))
	assert.Equal(t, "password too short", errs.Get("password"))
	assert.Equal(t, "passwords do not match", errs.Get("password2"))
	assert.Equal(t, "size out of range", errs.Get("size"))
	assert.Contains(t, errs.Error(), "username: username is required")
}

func TestSchema_PatternAndLength(t *testing.T) {
	cases := []struct{ in, want string }{
		{"ab", "username must be 3-20 characters"},
		{"this_name_is_far_too_long", "username must be 3-20 characters"},
		{"bad name", "letters, digits and underscores only"},
		{"good_name1", ""},
	}
	for _, c := range cases {
		errs := testSchema[:1].Validate(Values{"username": c.in})
		assert.Equal(t, c.want, errs.Get("username"), "input %q", c.in)
	}
}

func TestErrors_Map(t *testing.T) {
	errs := Errors{{Field: "a", Description: "x"}, {Field: "b", Description: "y"}}
	assert.Equal(t, map[string]string{"a": "x", "b": "y"}, errs.Map())
}

func TestMaxBytes_CountsBytesNotRunes(t *testing.T) {
	rule := MaxBytes(8, "too long")

	assert.True(t, rule.Check("12345678", nil))
	assert.False(t, rule.Check("123456789", nil))
	// Two runes, eight bytes.
	assert.True(t, rule.Check("😀😀", nil))
	assert.False(t, rule.Check("😀😀😀", nil))
}

func TestIntRange(t *testing.T) {
	rule := IntRange(1, 256, "out of range")

	for _, v := range []string{"1", "256", " 32 "} {
		assert.True(t, rule.Check(v, nil), "input %q", v)
	}
	for _, v := range []string{"", "0", "257", "abc", "1.5"} {
		assert.False(t, rule.Check(v, nil), "input %q", v)
	}
}
