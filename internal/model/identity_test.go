package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIdentity(t *testing.T) {
	tests := []struct {
		name      string
		studentID string
		national  string
		wantKind  IdentityKind
		wantValue string
		wantErr   bool
	}{
		{name: "student", studentID: "12345", wantKind: IdentityStudent, wantValue: "12345"},
		{name: "external upper-cased", national: "ab12cd3", wantKind: IdentityExternal, wantValue: "AB12CD3"},
		{name: "both", studentID: "12345", national: "AB12CD3", wantErr: true},
		{name: "neither", wantErr: true},
		{name: "student too short", studentID: "1234", wantErr: true},
		{name: "student letters", studentID: "12a45", wantErr: true},
		{name: "national too long", national: "AB12CD34", wantErr: true},
		{name: "national symbol", national: "AB-2CD3", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := NewIdentity(tt.studentID, tt.national)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, id)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, id.Kind())
			assert.Equal(t, tt.wantValue, id.Value())
		})
	}
}

func TestNewIdentity_Errors(t *testing.T) {
	_, err := NewIdentity("", "  ")
	assert.ErrorIs(t, err, ErrIdentityMissing)
	_, err = NewIdentity("12345", "AB12CD3")
	assert.ErrorIs(t, err, ErrIdentityAmbiguous)
}

func TestParseIdentity_UnknownKind(t *testing.T) {
	_, err := ParseIdentity("PASSPORT", "X")
	require.Error(t, err)
}

func TestIdentity_Variants(t *testing.T) {
	var id Identity = UniversityStudent{StudentID: "54321"}
	switch v := id.(type) {
	case UniversityStudent:
		assert.Equal(t, "54321", v.StudentID)
	default:
		t.Fatalf("unexpected variant %T", v)
	}
}
