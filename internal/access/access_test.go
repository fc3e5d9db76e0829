package access

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, body string) Fields {
	t.Helper()
	f, err := DecodeFields(strings.NewReader(body))
	require.NoError(t, err)
	return f
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(NotFound("Task not found")))
	assert.Equal(t, KindValidation, KindOf(fmt.Errorf("wrapped: %w", Invalid("bad"))))
	assert.Equal(t, KindConflict, KindOf(Conflict("dup")))
	assert.Equal(t, KindUnauthorized, KindOf(Unauthorized()))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, KindInternal, KindOf(Internal("Failed to list tasks", errors.New("boom"))))
}

func TestInternalUnwraps(t *testing.T) {
	cause := errors.New("disk full")
	err := Internal("Failed to create task", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Failed to create task", MessageOf(err, "x"))
	assert.Equal(t, "fallback", MessageOf(cause, "fallback"))
}

func TestDecodeFieldsRejectsNonObject(t *testing.T) {
	for _, body := range []string{`[1,2]`, `"x"`, `{bad`, `null`} {
		_, err := DecodeFields(strings.NewReader(body))
		assert.Equal(t, KindValidation, KindOf(err), "body %s", body)
	}
	f, err := DecodeFields(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, f)
}

func TestTextThreeStates(t *testing.T) {
	f := decode(t, `{"a": "x", "b": null}`)

	a, err := f.Text("a")
	require.NoError(t, err)
	v, ok := a.Get()
	require.True(t, ok)
	require.NotNil(t, v)
	assert.Equal(t, "x", *v)

	b, err := f.Text("b")
	require.NoError(t, err)
	v, ok = b.Get()
	assert.True(t, ok)
	assert.Nil(t, v)

	c, err := f.Text("c")
	require.NoError(t, err)
	assert.False(t, c.IsPresent())
}

func TestTextTypeMismatch(t *testing.T) {
	f := decode(t, `{"title": 42}`)
	_, err := f.Text("title")
	require.Error(t, err)
	assert.Equal(t, "title must be a string", MessageOf(err, ""))
}

func TestRequiredText(t *testing.T) {
	tests := []struct {
		body    string
		want    string
		wantErr bool
	}{
		{`{"name": "  Smiths  "}`, "Smiths", false},
		{`{"name": "   "}`, "", true},
		{`{"name": null}`, "", true},
		{`{}`, "", true},
		{`{"name": 3}`, "", true},
	}
	for _, tt := range tests {
		got, err := decode(t, tt.body).RequiredText("name", "Family name is required")
		if tt.wantErr {
			require.Error(t, err, tt.body)
			assert.Equal(t, "Family name is required", MessageOf(err, ""))
			continue
		}
		require.NoError(t, err, tt.body)
		assert.Equal(t, tt.want, got)
	}
}

func TestTextUpdateAbsentIsNone(t *testing.T) {
	opt, err := decode(t, `{}`).TextUpdate("title", "Title is required")
	require.NoError(t, err)
	assert.False(t, opt.IsPresent())

	_, err = decode(t, `{"title": ""}`).TextUpdate("title", "Title is required")
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestOptionalTextBlankBecomesNull(t *testing.T) {
	opt, err := decode(t, `{"description": "   "}`).OptionalText("description")
	require.NoError(t, err)
	v, ok := opt.Get()
	assert.True(t, ok)
	assert.Nil(t, v)

	opt, err = decode(t, `{"description": " hi "}`).OptionalText("description")
	require.NoError(t, err)
	v, _ = opt.Get()
	require.NotNil(t, v)
	assert.Equal(t, "hi", *v)
}

func TestRange(t *testing.T) {
	msg := "Invalid latitude. Must be between -90 and 90"

	opt, err := decode(t, `{"latitude": 0}`).Range("latitude", -90, 90, true, msg)
	require.NoError(t, err)
	v, _ := opt.Get()
	require.NotNil(t, v)
	assert.Equal(t, 0.0, *v)

	for _, body := range []string{`{"latitude": 91}`, `{"latitude": -90.5}`, `{"latitude": "10"}`} {
		_, err := decode(t, body).Range("latitude", -90, 90, true, msg)
		assert.Equal(t, msg, MessageOf(err, ""), body)
	}

	_, err = decode(t, `{"latitude": null}`).Range("latitude", -90, 90, false, msg)
	assert.Error(t, err)
	opt, err = decode(t, `{"latitude": null}`).Range("latitude", -90, 90, true, msg)
	require.NoError(t, err)
	v, ok := opt.Get()
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestOneOf(t *testing.T) {
	allowed := []string{"PUSH", "EMAIL", "SMS"}
	msg := "Invalid channel. Must be PUSH, EMAIL, or SMS"

	opt, err := decode(t, `{"channel": "SMS"}`).OneOf("channel", allowed, msg)
	require.NoError(t, err)
	assert.Equal(t, "SMS", opt.MustGet())

	_, err = decode(t, `{"channel": "PIGEON"}`).OneOf("channel", allowed, msg)
	assert.Equal(t, msg, MessageOf(err, ""))

	opt, err = decode(t, `{}`).OneOf("channel", allowed, msg)
	require.NoError(t, err)
	assert.Equal(t, "PUSH", opt.OrElse("PUSH"))
}

func TestInt(t *testing.T) {
	opt, err := decode(t, `{"position": 3}`).Int("position")
	require.NoError(t, err)
	v, _ := opt.Get()
	require.NotNil(t, v)
	assert.Equal(t, 3, *v)

	_, err = decode(t, `{"position": 1.5}`).Int("position")
	assert.Error(t, err)
}

func TestTimeFormats(t *testing.T) {
	f := decode(t, `{"a": "2026-03-01T10:30:00Z", "b": "2026-03-01", "c": "tomorrow", "d": "2026-03-01T12:30:00+02:00"}`)

	a, err := f.Time("a")
	require.NoError(t, err)
	assert.True(t, a.MustGet().Equal(time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)))

	b, err := f.Time("b")
	require.NoError(t, err)
	assert.True(t, b.MustGet().Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))

	_, err = f.Time("c")
	assert.Equal(t, "Invalid c", MessageOf(err, ""))

	d, err := f.Time("d")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, d.MustGet().Location())
	assert.Equal(t, 10, d.MustGet().Hour())
}

func TestIDBlankIsNull(t *testing.T) {
	opt, err := decode(t, `{"locationId": ""}`).ID("locationId")
	require.NoError(t, err)
	v, ok := opt.Get()
	assert.True(t, ok)
	assert.Nil(t, v)

	_, err = decode(t, `{"familyId": ""}`).RequiredID("familyId", "Family ID is required")
	assert.Equal(t, "Family ID is required", MessageOf(err, ""))
}

func TestOptionalTimeBlankIsNull(t *testing.T) {
	opt, err := decode(t, `{"deadline": ""}`).OptionalTime("deadline")
	require.NoError(t, err)
	v, ok := opt.Get()
	assert.True(t, ok)
	assert.Nil(t, v)

	_, err = decode(t, `{"deadline": "soon"}`).OptionalTime("deadline")
	assert.Equal(t, "Invalid deadline", MessageOf(err, ""))
}

func TestFlag(t *testing.T) {
	opt, err := decode(t, `{"completed": null}`).Flag("completed")
	require.NoError(t, err)
	assert.False(t, opt.MustGet())

	opt, err = decode(t, `{"completed": true}`).Flag("completed")
	require.NoError(t, err)
	assert.True(t, opt.MustGet())

	_, err = decode(t, `{"completed": "yes"}`).Flag("completed")
	assert.Equal(t, "completed must be a boolean", MessageOf(err, ""))
}
