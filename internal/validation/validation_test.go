package validation

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yakoovad/studygroups/internal/model"
)

func TestIsStudentID(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"1234567890", true},
		{"12345", false},
		{"12345678901", false},
		{"12345abcde", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsStudentID(tt.in))
		})
	}
}

func TestIsEmail(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"a@b", true},
		{"kim.s+study@uni.ac.kr", true},
		{"noatsign", false},
		{"", false},
		{"@domain", false},
		{"local@", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsEmail(tt.in))
		})
	}
}

func TestIsPersonName(t *testing.T) {
	assert.True(t, IsPersonName("Kim"))
	assert.True(t, IsPersonName("김민수"))
	assert.True(t, IsPersonName("Ada Lovelace"))
	assert.False(t, IsPersonName("R2D2"))
	assert.False(t, IsPersonName("kim_s"))
	assert.False(t, IsPersonName(" "))
}

func TestValidator_Member(t *testing.T) {
	tests := []struct {
		name    string
		rules   Rules
		member  *model.Member
		wantErr string
	}{
		{
			name:   "email accepted",
			rules:  Rules{Identifier: model.IdentifierEmail},
			member: &model.Member{Name: "Kim 1", ID: "a@b"},
		},
		{
			name:    "email rejected",
			rules:   Rules{Identifier: model.IdentifierEmail},
			member:  &model.Member{Name: "Kim", ID: "noatsign"},
			wantErr: "id must be an email address",
		},
		{
			name:   "student id accepted",
			rules:  Rules{Identifier: model.IdentifierStudentID, LettersOnlyNames: true},
			member: &model.Member{Name: "김민수", ID: "1234567890"},
		},
		{
			name:    "student id too short",
			rules:   Rules{Identifier: model.IdentifierStudentID},
			member:  &model.Member{Name: "Kim", ID: "12345"},
			wantErr: "id must be a 10-digit student ID",
		},
		{
			name:    "digits in name",
			rules:   Rules{Identifier: model.IdentifierStudentID, LettersOnlyNames: true},
			member:  &model.Member{Name: "Kim2", ID: "1234567890"},
			wantErr: "name must contain only letters",
		},
		{
			name:    "empty name",
			rules:   Rules{Identifier: model.IdentifierEmail},
			member:  &model.Member{Name: "", ID: "a@b"},
			wantErr: "name is required",
		},
		{
			name:    "empty id",
			rules:   Rules{Identifier: model.IdentifierEmail},
			member:  &model.Member{Name: "Kim", ID: ""},
			wantErr: "id is required",
		},
		{
			name:    "nil member",
			rules:   Rules{Identifier: model.IdentifierEmail},
			wantErr: "member is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := New(tt.rules)
			require.NoError(t, err)

			err = v.Member(tt.member)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
			assert.True(t, errors.Is(err, ErrInvalid))
		})
	}
}

func TestValidator_Struct(t *testing.T) {
	v, err := New(Rules{Identifier: model.IdentifierEmail})
	require.NoError(t, err)

	err = v.Struct(&model.Group{Name: "algo"})
	require.Error(t, err)
	assert.Equal(t, "subject is required", err.Error())

	err = v.Struct(&model.Group{Name: "algo\nclub", Subject: "Math"})
	require.Error(t, err)
	assert.Equal(t, "group_name must not contain line breaks", err.Error())

	assert.NoError(t, v.Struct(&model.Group{Name: "algo", Subject: "Math"}))
}

func TestIsSingleLine(t *testing.T) {
	assert.True(t, IsSingleLine("algo, advanced"))
	assert.False(t, IsSingleLine("two\nlines"))
	assert.False(t, IsSingleLine("cr\r"))
}

func TestNew_UnknownIdentifier(t *testing.T) {
	_, err := New(Rules{Identifier: "phone"})
	assert.Error(t, err)
}
